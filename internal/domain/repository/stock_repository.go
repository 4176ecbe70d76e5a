package repository

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pasteops-api/internal/domain/entity"
)

// StockLotRepository puerto de persistencia de lotes de stock.
type StockLotRepository interface {
	Create(ctx context.Context, lot *entity.StockLot) error
	GetByID(ctx context.Context, id string) (*entity.StockLot, error)
	// GetForUpdate bloquea la fila del lote hasta el fin de la transacción.
	GetForUpdate(ctx context.Context, id string) (*entity.StockLot, error)
	// ListByMaterial devuelve todos los lotes en orden FIFO (received_date, id).
	ListByMaterial(ctx context.Context, materialID string) ([]*entity.StockLot, error)
	// ListAvailableForUpdate devuelve y bloquea los lotes con cantidad > 0 en orden FIFO.
	ListAvailableForUpdate(ctx context.Context, materialID string) ([]*entity.StockLot, error)
	// ListNewestForUpdate devuelve y bloquea todos los lotes del más reciente al más antiguo.
	ListNewestForUpdate(ctx context.Context, materialID string) ([]*entity.StockLot, error)
	UpdateQuantity(ctx context.Context, id string, qty decimal.Decimal) error
	SumByMaterial(ctx context.Context, materialID string) (decimal.Decimal, error)
}

// MovementTotals sumas del libro por dirección para un material.
type MovementTotals struct {
	In  decimal.Decimal
	Out decimal.Decimal
}

// StockMovementRepository puerto del libro de movimientos (solo inserción).
type StockMovementRepository interface {
	Create(ctx context.Context, mov *entity.StockMovement) error
	List(ctx context.Context, f MovementFilter) ([]*entity.StockMovement, error)
	Totals(ctx context.Context, materialID string) (MovementTotals, error)
}
