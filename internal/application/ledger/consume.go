package ledger

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/inventory"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

// ConsumeInput consumo de material. BatchID o ServiceOrderID identifican la causa.
type ConsumeInput struct {
	MaterialID     string
	Quantity       decimal.Decimal
	BatchID        string
	ServiceOrderID string
	DocumentNumber string
	Notes          string
	CreatedBy      string
}

// ConsumeFIFO consume en su propia transacción.
func (l *Ledger) ConsumeFIFO(ctx context.Context, in ConsumeInput) ([]*entity.StockMovement, error) {
	var movs []*entity.StockMovement
	err := l.txRunner.Run(ctx, func(ctx context.Context, tx repository.Repos) error {
		var err error
		movs, err = l.ConsumeFIFOInTx(ctx, tx, in)
		return err
	})
	if err != nil {
		l.Rejected(ctx, err)
		return nil, err
	}
	l.Publish(ctx, movs)
	return movs, nil
}

// ConsumeFIFOInTx bloquea los lotes con existencia del material en orden FIFO, vuelve a
// validar la suma bajo bloqueo y descuenta lote a lote, escribiendo un movimiento
// CONSUMPTION por cada lote tocado. Si no alcanza devuelve *domain.InsufficientStockError
// sin haber escrito nada.
func (l *Ledger) ConsumeFIFOInTx(ctx context.Context, tx repository.Repos, in ConsumeInput) ([]*entity.StockMovement, error) {
	if !in.Quantity.IsPositive() {
		return nil, fmt.Errorf("cantidad a consumir debe ser positiva: %w", domain.ErrInvalidInput)
	}
	if err := checkScale(in.Quantity); err != nil {
		return nil, err
	}
	m, err := loadMaterial(ctx, tx, in.MaterialID)
	if err != nil {
		return nil, err
	}
	lots, err := tx.Lots.ListAvailableForUpdate(ctx, m.ID)
	if err != nil {
		return nil, err
	}
	plan, err := inventory.PlanFIFO(lots, in.Quantity)
	if errors.Is(err, domain.ErrInsufficientStock) {
		return nil, &domain.InsufficientStockError{
			MaterialID:   m.ID,
			MaterialCode: m.Code,
			Required:     in.Quantity,
			Available:    inventory.Available(lots),
			Unit:         m.Unit,
		}
	}
	if err != nil {
		return nil, err
	}

	now := l.now()
	movs := make([]*entity.StockMovement, 0, len(plan))
	for _, a := range plan {
		if err := tx.Lots.UpdateQuantity(ctx, a.LotID, a.Remaining); err != nil {
			return nil, err
		}
		mov := &entity.StockMovement{
			ID:             uuid.New().String(),
			MaterialID:     m.ID,
			LotID:          a.LotID,
			Type:           entity.MovementConsumption,
			Direction:      entity.DirectionOut,
			Quantity:       a.Quantity,
			Unit:           m.Unit,
			BatchID:        in.BatchID,
			ServiceOrderID: in.ServiceOrderID,
			DocumentNumber: in.DocumentNumber,
			Notes:          in.Notes,
			CreatedBy:      in.CreatedBy,
			CreatedAt:      now,
		}
		if err := tx.Movements.Create(ctx, mov); err != nil {
			return nil, err
		}
		movs = append(movs, mov)
	}
	return movs, nil
}
