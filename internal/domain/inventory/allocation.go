package inventory

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
)

// Allocation cantidad que se mueve de (o hacia) un lote y su saldo resultante.
type Allocation struct {
	LotID     string
	Quantity  decimal.Decimal // siempre positiva
	Remaining decimal.Decimal
}

// Available suma la cantidad de los lotes.
func Available(lots []*entity.StockLot) decimal.Decimal {
	total := decimal.Zero
	for _, l := range lots {
		total = total.Add(l.Quantity)
	}
	return total
}

// SortFIFO ordena los lotes por fecha de recepción y, a igual fecha, por ID.
func SortFIFO(lots []*entity.StockLot) {
	sort.SliceStable(lots, func(i, j int) bool {
		a, b := lots[i], lots[j]
		if !a.ReceivedDate.Equal(b.ReceivedDate) {
			return a.ReceivedDate.Before(b.ReceivedDate)
		}
		return a.ID < b.ID
	})
}

// PlanFIFO reparte required entre los lotes empezando por el más antiguo.
// Los lotes sin cantidad se ignoran. No modifica los lotes recibidos.
// Si la suma no alcanza devuelve domain.ErrInsufficientStock y ninguna asignación.
func PlanFIFO(lots []*entity.StockLot, required decimal.Decimal) ([]Allocation, error) {
	if !required.IsPositive() {
		return nil, domain.ErrInvalidInput
	}
	ordered := make([]*entity.StockLot, 0, len(lots))
	for _, l := range lots {
		if l.Quantity.IsPositive() {
			ordered = append(ordered, l)
		}
	}
	if Available(ordered).LessThan(required) {
		return nil, domain.ErrInsufficientStock
	}
	SortFIFO(ordered)

	remaining := required
	plan := make([]Allocation, 0, len(ordered))
	for _, l := range ordered {
		if !remaining.IsPositive() {
			break
		}
		take := decimal.Min(l.Quantity, remaining)
		plan = append(plan, Allocation{LotID: l.ID, Quantity: take, Remaining: l.Quantity.Sub(take)})
		remaining = remaining.Sub(take)
	}
	return plan, nil
}

// PlanAdjustment aplica una diferencia con signo sobre lotes ordenados del más reciente
// al más antiguo. Un sobrante va completo al primer lote; un faltante se descuenta
// lote a lote hasta cubrirse. Sin lotes y con sobrante devuelve un plan vacío: el
// llamador debe crear un lote nuevo.
func PlanAdjustment(newestFirst []*entity.StockLot, delta decimal.Decimal) ([]Allocation, error) {
	switch {
	case delta.IsZero():
		return nil, domain.ErrInvalidInput
	case delta.IsPositive():
		if len(newestFirst) == 0 {
			return nil, nil
		}
		l := newestFirst[0]
		return []Allocation{{LotID: l.ID, Quantity: delta, Remaining: l.Quantity.Add(delta)}}, nil
	}

	shortage := delta.Abs()
	if Available(newestFirst).LessThan(shortage) {
		return nil, domain.ErrInsufficientStock
	}
	plan := make([]Allocation, 0, len(newestFirst))
	for _, l := range newestFirst {
		if !shortage.IsPositive() {
			break
		}
		if !l.Quantity.IsPositive() {
			continue
		}
		take := decimal.Min(l.Quantity, shortage)
		plan = append(plan, Allocation{LotID: l.ID, Quantity: take, Remaining: l.Quantity.Sub(take)})
		shortage = shortage.Sub(take)
	}
	return plan, nil
}
