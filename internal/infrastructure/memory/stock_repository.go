package memory

import (
	"context"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/inventory"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

var (
	_ repository.StockLotRepository      = (*StockLotRepo)(nil)
	_ repository.StockMovementRepository = (*StockMovementRepo)(nil)
)

// StockLotRepo lotes en memoria. Los *ForUpdate no bloquean nada adicional: la
// transacción ya tiene el candado exclusivo del store.
type StockLotRepo struct {
	a *access
}

func (r *StockLotRepo) Create(_ context.Context, lot *entity.StockLot) error {
	return r.a.update(func(d *dataset) error {
		if _, ok := d.lots[lot.ID]; ok {
			return domain.ErrDuplicate
		}
		if _, ok := d.materials[lot.MaterialID]; !ok {
			return domain.NotFound("material", lot.MaterialID)
		}
		d.lots[lot.ID] = *lot
		return nil
	})
}

func (r *StockLotRepo) GetByID(_ context.Context, id string) (*entity.StockLot, error) {
	var out *entity.StockLot
	r.a.view(func(d *dataset) {
		if l, ok := d.lots[id]; ok {
			out = &l
		}
	})
	return out, nil
}

func (r *StockLotRepo) GetForUpdate(ctx context.Context, id string) (*entity.StockLot, error) {
	return r.GetByID(ctx, id)
}

func (r *StockLotRepo) ListByMaterial(_ context.Context, materialID string) ([]*entity.StockLot, error) {
	list := r.collect(materialID, false)
	inventory.SortFIFO(list)
	return list, nil
}

func (r *StockLotRepo) ListAvailableForUpdate(_ context.Context, materialID string) ([]*entity.StockLot, error) {
	list := r.collect(materialID, true)
	inventory.SortFIFO(list)
	return list, nil
}

func (r *StockLotRepo) ListNewestForUpdate(_ context.Context, materialID string) ([]*entity.StockLot, error) {
	list := r.collect(materialID, false)
	sort.SliceStable(list, func(i, j int) bool {
		a, b := list[i], list[j]
		if !a.ReceivedDate.Equal(b.ReceivedDate) {
			return a.ReceivedDate.After(b.ReceivedDate)
		}
		return a.ID > b.ID
	})
	return list, nil
}

func (r *StockLotRepo) collect(materialID string, positiveOnly bool) []*entity.StockLot {
	var list []*entity.StockLot
	r.a.view(func(d *dataset) {
		for _, l := range d.lots {
			if l.MaterialID != materialID {
				continue
			}
			if positiveOnly && !l.Quantity.IsPositive() {
				continue
			}
			list = append(list, &l)
		}
	})
	return list
}

func (r *StockLotRepo) UpdateQuantity(_ context.Context, id string, qty decimal.Decimal) error {
	if qty.IsNegative() {
		return domain.ErrInsufficientStock
	}
	return r.a.update(func(d *dataset) error {
		l, ok := d.lots[id]
		if !ok {
			return domain.NotFound("lot", id)
		}
		l.Quantity = qty
		d.lots[id] = l
		return nil
	})
}

func (r *StockLotRepo) SumByMaterial(_ context.Context, materialID string) (decimal.Decimal, error) {
	total := decimal.Zero
	r.a.view(func(d *dataset) {
		for _, l := range d.lots {
			if l.MaterialID == materialID {
				total = total.Add(l.Quantity)
			}
		}
	})
	return total, nil
}

// StockMovementRepo libro de movimientos en memoria, en orden de inserción.
type StockMovementRepo struct {
	a *access
}

func (r *StockMovementRepo) Create(_ context.Context, mov *entity.StockMovement) error {
	return r.a.update(func(d *dataset) error {
		if mov.ServiceOrderID != "" {
			if _, ok := d.serviceOrders[mov.ServiceOrderID]; !ok {
				return domain.NotFound("service order", mov.ServiceOrderID)
			}
		}
		d.movements = append(d.movements, *mov)
		return nil
	})
}

func (r *StockMovementRepo) List(_ context.Context, f repository.MovementFilter) ([]*entity.StockMovement, error) {
	var list []*entity.StockMovement
	r.a.view(func(d *dataset) {
		for _, m := range d.movements {
			if f.MaterialID != "" && m.MaterialID != f.MaterialID {
				continue
			}
			if f.LotID != "" && m.LotID != f.LotID {
				continue
			}
			if f.Type != "" && m.Type != f.Type {
				continue
			}
			if f.BatchID != "" && m.BatchID != f.BatchID {
				continue
			}
			if f.ServiceOrderID != "" && m.ServiceOrderID != f.ServiceOrderID {
				continue
			}
			if f.From != nil && m.CreatedAt.Before(*f.From) {
				continue
			}
			if f.To != nil && m.CreatedAt.After(*f.To) {
				continue
			}
			list = append(list, &m)
		}
	})
	return paginate(list, f.Page), nil
}

func (r *StockMovementRepo) Totals(_ context.Context, materialID string) (repository.MovementTotals, error) {
	t := repository.MovementTotals{In: decimal.Zero, Out: decimal.Zero}
	r.a.view(func(d *dataset) {
		for _, m := range d.movements {
			if m.MaterialID != materialID {
				continue
			}
			if m.Direction == entity.DirectionOut {
				t.Out = t.Out.Add(m.Quantity)
			} else {
				t.In = t.In.Add(m.Quantity)
			}
		}
	})
	return t, nil
}
