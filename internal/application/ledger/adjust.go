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

// Notas por defecto de los ajustes.
const (
	NoteSurplus  = "Sobrante de inventario"
	NoteShortage = "Faltante de inventario"
)

// AdjustInput corrección con signo de la existencia de un material.
// Con LotID se ajusta ese lote; sin él, los lotes del más reciente al más antiguo.
type AdjustInput struct {
	MaterialID     string
	LotID          string
	Delta          decimal.Decimal
	DocumentNumber string
	Notes          string
	CreatedBy      string
}

// Adjust ajusta en su propia transacción.
func (l *Ledger) Adjust(ctx context.Context, in AdjustInput) (*entity.StockMovement, error) {
	var mov *entity.StockMovement
	err := l.txRunner.Run(ctx, func(ctx context.Context, tx repository.Repos) error {
		var err error
		mov, err = l.AdjustInTx(ctx, tx, in)
		return err
	})
	if err != nil {
		l.Rejected(ctx, err)
		return nil, err
	}
	l.Publish(ctx, []*entity.StockMovement{mov})
	return mov, nil
}

// AdjustInTx aplica Delta y escribe exactamente un movimiento ADJUSTMENT con cantidad |Delta|.
func (l *Ledger) AdjustInTx(ctx context.Context, tx repository.Repos, in AdjustInput) (*entity.StockMovement, error) {
	if in.Delta.IsZero() {
		return nil, fmt.Errorf("ajuste sin diferencia: %w", domain.ErrInvalidInput)
	}
	if err := checkScale(in.Delta); err != nil {
		return nil, err
	}
	m, err := loadMaterial(ctx, tx, in.MaterialID)
	if err != nil {
		return nil, err
	}

	var lotRef string
	if in.LotID != "" {
		lotRef, err = l.adjustLot(ctx, tx, m, in)
	} else {
		lotRef, err = l.adjustNewest(ctx, tx, m, in)
	}
	if err != nil {
		return nil, err
	}

	direction, note := entity.DirectionIn, NoteSurplus
	if in.Delta.IsNegative() {
		direction, note = entity.DirectionOut, NoteShortage
	}
	if in.Notes != "" {
		note = note + ": " + in.Notes
	}
	mov := &entity.StockMovement{
		ID:             uuid.New().String(),
		MaterialID:     m.ID,
		LotID:          lotRef,
		Type:           entity.MovementAdjustment,
		Direction:      direction,
		Quantity:       in.Delta.Abs(),
		Unit:           m.Unit,
		DocumentNumber: in.DocumentNumber,
		Notes:          note,
		CreatedBy:      in.CreatedBy,
		CreatedAt:      l.now(),
	}
	if err := tx.Movements.Create(ctx, mov); err != nil {
		return nil, err
	}
	return mov, nil
}

func (l *Ledger) adjustLot(ctx context.Context, tx repository.Repos, m *entity.Material, in AdjustInput) (string, error) {
	lot, err := tx.Lots.GetForUpdate(ctx, in.LotID)
	if err != nil {
		return "", err
	}
	if lot == nil || lot.MaterialID != m.ID {
		return "", domain.NotFound("lot", in.LotID)
	}
	next := lot.Quantity.Add(in.Delta)
	if next.IsNegative() {
		return "", &domain.InsufficientStockError{
			MaterialID:   m.ID,
			MaterialCode: m.Code,
			Required:     in.Delta.Abs(),
			Available:    lot.Quantity,
			Unit:         m.Unit,
		}
	}
	return lot.ID, tx.Lots.UpdateQuantity(ctx, lot.ID, next)
}

// adjustNewest reparte el ajuste sobre los lotes. El movimiento apunta al lote solo
// cuando el ajuste tocó exactamente uno.
func (l *Ledger) adjustNewest(ctx context.Context, tx repository.Repos, m *entity.Material, in AdjustInput) (string, error) {
	lots, err := tx.Lots.ListNewestForUpdate(ctx, m.ID)
	if err != nil {
		return "", err
	}
	plan, err := inventory.PlanAdjustment(lots, in.Delta)
	if errors.Is(err, domain.ErrInsufficientStock) {
		return "", &domain.InsufficientStockError{
			MaterialID:   m.ID,
			MaterialCode: m.Code,
			Required:     in.Delta.Abs(),
			Available:    inventory.Available(lots),
			Unit:         m.Unit,
		}
	}
	if err != nil {
		return "", err
	}

	if len(plan) == 0 {
		now := l.now()
		lot := &entity.StockLot{
			ID:           uuid.New().String(),
			MaterialID:   m.ID,
			LotNumber:    in.DocumentNumber,
			Quantity:     in.Delta,
			Unit:         m.Unit,
			ReceivedDate: now,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		if err := tx.Lots.Create(ctx, lot); err != nil {
			return "", err
		}
		return lot.ID, nil
	}

	for _, a := range plan {
		if err := tx.Lots.UpdateQuantity(ctx, a.LotID, a.Remaining); err != nil {
			return "", err
		}
	}
	if len(plan) == 1 {
		return plan[0].LotID, nil
	}
	return "", nil
}
