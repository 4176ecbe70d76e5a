// Package ledger implementa el libro de stock: lotes, consumo FIFO, ajustes y el
// registro inmutable de movimientos. Todas las mutaciones corren dentro de un
// repository.TxRunner; las variantes *InTx permiten componerlas en una transacción
// más amplia (creación de lotes de producción, cierre de conteos).
package ledger

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

// Ledger servicio del libro de stock.
type Ledger struct {
	repos     repository.Repos
	txRunner  repository.TxRunner
	observers []Observer
	now       func() time.Time
}

// New construye el libro. repos se usa para lecturas fuera de transacción.
func New(repos repository.Repos, txRunner repository.TxRunner, observers ...Observer) *Ledger {
	return &Ledger{
		repos:     repos,
		txRunner:  txRunner,
		observers: observers,
		now:       time.Now,
	}
}

// Publish notifica a los observadores los movimientos ya confirmados.
// Debe llamarse después del commit, nunca dentro de la transacción.
func (l *Ledger) Publish(ctx context.Context, movements []*entity.StockMovement) {
	if len(movements) == 0 {
		return
	}
	for _, o := range l.observers {
		o.Committed(ctx, movements)
	}
}

// Rejected notifica una operación abortada por falta de stock. Otros errores se ignoran.
func (l *Ledger) Rejected(ctx context.Context, err error) {
	var stockErr *domain.InsufficientStockError
	if !errors.As(err, &stockErr) {
		return
	}
	for _, o := range l.observers {
		o.Rejected(ctx, stockErr)
	}
}

// AvailableQuantity suma las cantidades de los lotes del material. Es una lectura
// sin bloqueo y puede quedar obsoleta de inmediato.
func (l *Ledger) AvailableQuantity(ctx context.Context, materialID string) (decimal.Decimal, error) {
	m, err := l.repos.Materials.GetByID(ctx, materialID)
	if err != nil {
		return decimal.Zero, err
	}
	if m == nil {
		return decimal.Zero, domain.NotFound("material", materialID)
	}
	return l.repos.Lots.SumByMaterial(ctx, materialID)
}

// Lots lista los lotes del material en orden FIFO.
func (l *Ledger) Lots(ctx context.Context, materialID string) ([]*entity.StockLot, error) {
	m, err := l.repos.Materials.GetByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFound("material", materialID)
	}
	return l.repos.Lots.ListByMaterial(ctx, materialID)
}

// Lot obtiene un lote por ID.
func (l *Ledger) Lot(ctx context.Context, id string) (*entity.StockLot, error) {
	lot, err := l.repos.Lots.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if lot == nil {
		return nil, domain.NotFound("lot", id)
	}
	return lot, nil
}

// Movements consulta el libro con un filtro validado.
func (l *Ledger) Movements(ctx context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	f.Page = f.Page.Normalize()
	return l.repos.Movements.List(ctx, f)
}

// loadMaterial obtiene el material dentro de la transacción.
func loadMaterial(ctx context.Context, tx repository.Repos, id string) (*entity.Material, error) {
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	m, err := tx.Materials.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFound("material", id)
	}
	return m, nil
}

// checkScale rechaza cantidades que la base guardaría redondeadas.
func checkScale(q decimal.Decimal) error {
	if !domain.FitsQuantityScale(q) {
		return fmt.Errorf("cantidad %s con más de %d decimales: %w", q.String(), domain.QuantityScale, domain.ErrInvalidInput)
	}
	return nil
}
