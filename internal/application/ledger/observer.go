package ledger

import (
	"context"

	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/pkg/logger"
)

// Observer recibe los eventos del libro una vez resuelta la transacción.
// Las implementaciones no deben bloquear ni fallar: son efectos secundarios
// (métricas, caché, tareas en cola, logs).
type Observer interface {
	Committed(ctx context.Context, movements []*entity.StockMovement)
	Rejected(ctx context.Context, err *domain.InsufficientStockError)
}

// LogObserver registra en el log cada movimiento confirmado y cada rechazo.
type LogObserver struct {
	log *logger.Logger
}

// NewLogObserver construye el observador de log.
func NewLogObserver(log *logger.Logger) *LogObserver {
	return &LogObserver{log: log}
}

func (o *LogObserver) Committed(_ context.Context, movements []*entity.StockMovement) {
	for _, m := range movements {
		o.log.Info().
			Str("movement_id", m.ID).
			Str("type", m.Type).
			Str("direction", m.Direction).
			Str("material_id", m.MaterialID).
			Str("lot_id", m.LotID).
			Str("batch_id", m.BatchID).
			Str("quantity", m.Quantity.String()).
			Msg("movimiento de stock registrado")
	}
}

func (o *LogObserver) Rejected(_ context.Context, err *domain.InsufficientStockError) {
	o.log.Warn().
		Str("material_id", err.MaterialID).
		Str("material_code", err.MaterialCode).
		Str("required", err.Required.String()).
		Str("available", err.Available.String()).
		Msg("operación rechazada por stock insuficiente")
}
