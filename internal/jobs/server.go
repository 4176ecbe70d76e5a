// Package jobs procesa en segundo plano las tareas encoladas en asynq.
package jobs

import (
	"context"
	"errors"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/pasteops-api/internal/infrastructure/queue"
	"github.com/jhoicas/pasteops-api/pkg/logger"
)

// WorkerConfig dependencias del worker.
type WorkerConfig struct {
	RedisOpts   asynq.RedisClientOpt
	Concurrency int
	Queue       string
	Logger      *logger.Logger
	LowStock    *LowStockHandler
}

// Worker envuelve el servidor asynq.
type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	log    *logger.Logger
}

// NewWorker registra los handlers de tareas.
func NewWorker(cfg WorkerConfig) (*Worker, error) {
	if cfg.LowStock == nil {
		return nil, errors.New("worker: falta el handler de stock bajo")
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}
	if cfg.Queue == "" {
		cfg.Queue = queue.QueueDefault
	}
	log := cfg.Logger
	if log == nil {
		log = logger.Nop()
	}
	srv := asynq.NewServer(cfg.RedisOpts, asynq.Config{
		Concurrency: cfg.Concurrency,
		Queues:      map[string]int{cfg.Queue: 1},
		ErrorHandler: asynq.ErrorHandlerFunc(func(ctx context.Context, task *asynq.Task, err error) {
			log.Error().Err(err).Str("task", task.Type()).Msg("tarea fallida")
		}),
	})
	mux := asynq.NewServeMux()
	mux.Handle(queue.TaskLowStockCheck, cfg.LowStock)
	return &Worker{server: srv, mux: mux, log: log}, nil
}

// Run procesa tareas hasta que se cancela ctx.
func (w *Worker) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		errCh <- w.server.Run(w.mux)
	}()
	select {
	case <-ctx.Done():
		w.server.Shutdown()
		return ctx.Err()
	case err := <-errCh:
		return err
	}
}
