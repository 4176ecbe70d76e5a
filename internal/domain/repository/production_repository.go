package repository

import (
	"context"

	"github.com/jhoicas/pasteops-api/internal/domain/entity"
)

// ProductionOrderRepository puerto de persistencia de órdenes de producción.
type ProductionOrderRepository interface {
	Create(ctx context.Context, o *entity.ProductionOrder) error
	GetByID(ctx context.Context, id string) (*entity.ProductionOrder, error)
	GetByNumber(ctx context.Context, number string) (*entity.ProductionOrder, error)
	UpdateStatus(ctx context.Context, id, status string) error
	List(ctx context.Context, f OrderFilter) ([]*entity.ProductionOrder, error)
}

// ProductionBatchRepository puerto de persistencia de lotes de producción.
// No hay borrado: los movimientos del libro referencian al lote.
type ProductionBatchRepository interface {
	// Create inserta solo la cabecera.
	Create(ctx context.Context, b *entity.ProductionBatch) error
	// GetByID devuelve el lote con consumos y parámetros (sin movimientos).
	GetByID(ctx context.Context, id string) (*entity.ProductionBatch, error)
	GetByNumber(ctx context.Context, number string) (*entity.ProductionBatch, error)
	AddUsage(ctx context.Context, u *entity.MaterialUsage) error
	AddParameter(ctx context.Context, p *entity.BatchParameter) error
	UpdateStatus(ctx context.Context, id, status string) error
	List(ctx context.Context, f BatchFilter) ([]*entity.ProductionBatch, error)
}
