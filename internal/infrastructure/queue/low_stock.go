// Package queue publica en asynq las tareas derivadas de movimientos del libro.
package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/hibiken/asynq"

	"github.com/jhoicas/pasteops-api/internal/application/ledger"
	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/pkg/logger"
)

const (
	// QueueDefault cola por defecto.
	QueueDefault = "default"
	// TaskLowStockCheck revisa si un material quedó por debajo de su mínimo.
	TaskLowStockCheck = "stock:low_check"
)

// LowStockPayload material a revisar.
type LowStockPayload struct {
	MaterialID string `json:"material_id"`
}

// NewLowStockTask construye la tarea para un material.
func NewLowStockTask(materialID, queue string) (*asynq.Task, error) {
	body, err := json.Marshal(LowStockPayload{MaterialID: materialID})
	if err != nil {
		return nil, err
	}
	if queue == "" {
		queue = QueueDefault
	}
	return asynq.NewTask(TaskLowStockCheck, body, asynq.Queue(queue), asynq.MaxRetry(3)), nil
}

// Enqueuer lo cumple *asynq.Client.
type Enqueuer interface {
	EnqueueContext(ctx context.Context, task *asynq.Task, opts ...asynq.Option) (*asynq.TaskInfo, error)
}

var _ ledger.Observer = (*LowStockPublisher)(nil)

// LowStockPublisher encola una revisión por cada material con salidas confirmadas.
type LowStockPublisher struct {
	client Enqueuer
	queue  string
	dedupe time.Duration
	log    *logger.Logger
}

// NewLowStockPublisher construye el observador. Dentro de la ventana dedupe se
// encola como máximo una revisión por material.
func NewLowStockPublisher(client Enqueuer, queue string, log *logger.Logger) *LowStockPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &LowStockPublisher{client: client, queue: queue, dedupe: 30 * time.Second, log: log.Component("low_stock_queue")}
}

func (p *LowStockPublisher) Committed(ctx context.Context, movements []*entity.StockMovement) {
	seen := make(map[string]bool)
	for _, m := range movements {
		if m.Direction != entity.DirectionOut || seen[m.MaterialID] {
			continue
		}
		seen[m.MaterialID] = true
		task, err := NewLowStockTask(m.MaterialID, p.queue)
		if err != nil {
			p.log.Warn().Err(err).Str("material_id", m.MaterialID).Msg("construir tarea de stock bajo")
			continue
		}
		if _, err := p.client.EnqueueContext(ctx, task, asynq.Unique(p.dedupe)); err != nil && !errors.Is(err, asynq.ErrDuplicateTask) {
			p.log.Warn().Err(err).Str("material_id", m.MaterialID).Msg("encolar revisión de stock bajo")
		}
	}
}

func (p *LowStockPublisher) Rejected(context.Context, *domain.InsufficientStockError) {}
