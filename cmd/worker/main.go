// worker procesa las revisiones de stock bajo encoladas por la API.
//
// Requiere REDIS_ADDR y STORE=postgres: el store en memoria no se comparte entre procesos.
package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/pasteops-api/internal/application/ledger"
	"github.com/jhoicas/pasteops-api/internal/infrastructure/metrics"
	"github.com/jhoicas/pasteops-api/internal/infrastructure/storage"
	"github.com/jhoicas/pasteops-api/internal/jobs"
	"github.com/jhoicas/pasteops-api/pkg/config"
	"github.com/jhoicas/pasteops-api/pkg/logger"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic("cargar configuración: " + err.Error())
	}
	log := logger.New(logger.Config{Env: cfg.App.Env, Level: cfg.App.LogLevel})

	if !cfg.Redis.Enabled() {
		log.Fatal().Msg("REDIS_ADDR es obligatorio para el worker")
	}
	if cfg.Store != config.StorePostgres {
		log.Fatal().Str("store", cfg.Store).Msg("el worker requiere STORE=postgres")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	backend, err := storage.Open(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("almacenamiento")
	}
	defer backend.Close()

	m := metrics.New()
	l := ledger.New(backend.Repos, backend.TxRunner)
	lowStock := jobs.NewLowStockHandler(backend.Repos.Materials, l, log, m.Registerer())

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		},
		Concurrency: cfg.Worker.Concurrency,
		Queue:       cfg.Worker.Queue,
		Logger:      log.Component("worker"),
		LowStock:    lowStock,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("worker")
	}

	if cfg.Worker.MetricsAddr != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", m.Handler())
		srv := &http.Server{Addr: cfg.Worker.MetricsAddr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error().Err(err).Msg("servidor de métricas")
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = srv.Shutdown(shutdownCtx)
		}()
	}

	log.Info().
		Str("queue", cfg.Worker.Queue).
		Int("concurrency", cfg.Worker.Concurrency).
		Msg("worker iniciado")
	if err := worker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Error().Err(err).Msg("worker finalizado")
	}
	log.Info().Msg("worker detenido")
}
