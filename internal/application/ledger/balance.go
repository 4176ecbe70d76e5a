package ledger

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pasteops-api/internal/domain"
)

// Balance contraste entre el saldo reconstruido del libro y la suma de los lotes.
type Balance struct {
	MaterialID    string
	Received      decimal.Decimal // Σ movimientos de entrada
	Issued        decimal.Decimal // Σ movimientos de salida
	FromMovements decimal.Decimal // Received - Issued
	OnHand        decimal.Decimal // Σ lotes
	Consistent    bool
}

// Balance reconstruye el saldo del material desde el libro de movimientos.
// Consistent es false si el saldo no coincide con la suma de los lotes.
func (l *Ledger) Balance(ctx context.Context, materialID string) (*Balance, error) {
	m, err := l.repos.Materials.GetByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFound("material", materialID)
	}
	totals, err := l.repos.Movements.Totals(ctx, materialID)
	if err != nil {
		return nil, err
	}
	onHand, err := l.repos.Lots.SumByMaterial(ctx, materialID)
	if err != nil {
		return nil, err
	}
	fromLog := totals.In.Sub(totals.Out)
	return &Balance{
		MaterialID:    materialID,
		Received:      totals.In,
		Issued:        totals.Out,
		FromMovements: fromLog,
		OnHand:        onHand,
		Consistent:    fromLog.Equal(onHand),
	}, nil
}
