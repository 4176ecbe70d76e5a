package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

// ReceiveInput recepción de material en un lote nuevo.
type ReceiveInput struct {
	MaterialID     string
	Quantity       decimal.Decimal
	Unit           string // vacío = unidad del material
	LotNumber      string
	SupplierID     string
	ExpiryDate     *time.Time
	ReceivedDate   time.Time // cero = ahora
	DocumentNumber string
	Notes          string
	CreatedBy      string
}

// Receive crea un lote y su movimiento RECEIPT en una sola transacción.
func (l *Ledger) Receive(ctx context.Context, in ReceiveInput) (*entity.StockLot, error) {
	var (
		lot *entity.StockLot
		mov *entity.StockMovement
	)
	err := l.txRunner.Run(ctx, func(ctx context.Context, tx repository.Repos) error {
		var err error
		lot, mov, err = l.ReceiveInTx(ctx, tx, in)
		return err
	})
	if err != nil {
		return nil, err
	}
	l.Publish(ctx, []*entity.StockMovement{mov})
	return lot, nil
}

// ReceiveInTx igual que Receive usando la transacción del llamador.
func (l *Ledger) ReceiveInTx(ctx context.Context, tx repository.Repos, in ReceiveInput) (*entity.StockLot, *entity.StockMovement, error) {
	if !in.Quantity.IsPositive() {
		return nil, nil, fmt.Errorf("cantidad recibida debe ser positiva: %w", domain.ErrInvalidInput)
	}
	if err := checkScale(in.Quantity); err != nil {
		return nil, nil, err
	}
	m, err := loadMaterial(ctx, tx, in.MaterialID)
	if err != nil {
		return nil, nil, err
	}
	unit := in.Unit
	if unit == "" {
		unit = m.Unit
	}
	if unit != m.Unit {
		return nil, nil, fmt.Errorf("unidad %q distinta a la del material (%s): %w", unit, m.Unit, domain.ErrInvalidInput)
	}

	now := l.now()
	received := in.ReceivedDate
	if received.IsZero() {
		received = now
	}
	lot := &entity.StockLot{
		ID:           uuid.New().String(),
		MaterialID:   m.ID,
		LotNumber:    in.LotNumber,
		Quantity:     in.Quantity,
		Unit:         unit,
		ExpiryDate:   in.ExpiryDate,
		ReceivedDate: received,
		SupplierID:   in.SupplierID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := tx.Lots.Create(ctx, lot); err != nil {
		return nil, nil, err
	}
	mov := &entity.StockMovement{
		ID:             uuid.New().String(),
		MaterialID:     m.ID,
		LotID:          lot.ID,
		Type:           entity.MovementReceipt,
		Direction:      entity.DirectionIn,
		Quantity:       in.Quantity,
		Unit:           unit,
		DocumentNumber: in.DocumentNumber,
		Notes:          in.Notes,
		CreatedBy:      in.CreatedBy,
		CreatedAt:      now,
	}
	if err := tx.Movements.Create(ctx, mov); err != nil {
		return nil, nil, err
	}
	return lot, mov, nil
}
