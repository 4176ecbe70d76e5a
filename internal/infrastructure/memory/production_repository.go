package memory

import (
	"context"

	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

var (
	_ repository.ProductionOrderRepository = (*ProductionOrderRepo)(nil)
	_ repository.ProductionBatchRepository = (*ProductionBatchRepo)(nil)
)

// ProductionOrderRepo órdenes de producción en memoria.
type ProductionOrderRepo struct {
	a *access
}

func (r *ProductionOrderRepo) Create(_ context.Context, o *entity.ProductionOrder) error {
	return r.a.update(func(d *dataset) error {
		for _, x := range d.orders {
			if x.ID == o.ID || x.OrderNumber == o.OrderNumber {
				return domain.ErrDuplicate
			}
		}
		if _, ok := d.recipes[o.RecipeID]; !ok {
			return domain.NotFound("recipe", o.RecipeID)
		}
		d.orders[o.ID] = *o
		return nil
	})
}

func (r *ProductionOrderRepo) GetByID(_ context.Context, id string) (*entity.ProductionOrder, error) {
	var out *entity.ProductionOrder
	r.a.view(func(d *dataset) {
		if o, ok := d.orders[id]; ok {
			out = &o
		}
	})
	return out, nil
}

func (r *ProductionOrderRepo) GetByNumber(_ context.Context, number string) (*entity.ProductionOrder, error) {
	var out *entity.ProductionOrder
	r.a.view(func(d *dataset) {
		for _, o := range d.orders {
			if o.OrderNumber == number {
				out = &o
				return
			}
		}
	})
	return out, nil
}

func (r *ProductionOrderRepo) UpdateStatus(_ context.Context, id, status string) error {
	return r.a.update(func(d *dataset) error {
		o, ok := d.orders[id]
		if !ok {
			return domain.NotFound("order", id)
		}
		o.Status = status
		d.orders[id] = o
		return nil
	})
}

func (r *ProductionOrderRepo) List(_ context.Context, f repository.OrderFilter) ([]*entity.ProductionOrder, error) {
	var list []*entity.ProductionOrder
	r.a.view(func(d *dataset) {
		for _, o := range d.orders {
			if f.Status != "" && o.Status != f.Status {
				continue
			}
			if f.RecipeID != "" && o.RecipeID != f.RecipeID {
				continue
			}
			list = append(list, &o)
		}
	})
	sortByCreatedDesc(list,
		func(o *entity.ProductionOrder) int64 { return o.CreatedAt.UnixNano() },
		func(o *entity.ProductionOrder) string { return o.OrderNumber })
	return paginate(list, f.Page), nil
}

// ProductionBatchRepo lotes de producción en memoria.
type ProductionBatchRepo struct {
	a *access
}

func (r *ProductionBatchRepo) Create(_ context.Context, b *entity.ProductionBatch) error {
	return r.a.update(func(d *dataset) error {
		for _, x := range d.batches {
			if x.ID == b.ID || x.BatchNumber == b.BatchNumber {
				return domain.ErrDuplicate
			}
		}
		if _, ok := d.recipes[b.RecipeID]; !ok {
			return domain.NotFound("recipe", b.RecipeID)
		}
		if b.OrderID != "" {
			if _, ok := d.orders[b.OrderID]; !ok {
				return domain.NotFound("order", b.OrderID)
			}
		}
		header := *b
		header.MaterialUsage = nil
		header.Parameters = nil
		header.Movements = nil
		d.batches[b.ID] = header
		return nil
	})
}

func (r *ProductionBatchRepo) GetByID(_ context.Context, id string) (*entity.ProductionBatch, error) {
	var out *entity.ProductionBatch
	r.a.view(func(d *dataset) {
		if b, ok := d.batches[id]; ok {
			c := cloneBatch(b)
			out = &c
		}
	})
	return out, nil
}

func (r *ProductionBatchRepo) GetByNumber(_ context.Context, number string) (*entity.ProductionBatch, error) {
	var out *entity.ProductionBatch
	r.a.view(func(d *dataset) {
		for _, b := range d.batches {
			if b.BatchNumber == number {
				c := cloneBatch(b)
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (r *ProductionBatchRepo) AddUsage(_ context.Context, u *entity.MaterialUsage) error {
	return r.a.update(func(d *dataset) error {
		b, ok := d.batches[u.BatchID]
		if !ok {
			return domain.NotFound("batch", u.BatchID)
		}
		b.MaterialUsage = append(b.MaterialUsage, *u)
		d.batches[b.ID] = b
		return nil
	})
}

func (r *ProductionBatchRepo) AddParameter(_ context.Context, p *entity.BatchParameter) error {
	return r.a.update(func(d *dataset) error {
		b, ok := d.batches[p.BatchID]
		if !ok {
			return domain.NotFound("batch", p.BatchID)
		}
		b.Parameters = append(b.Parameters, *p)
		d.batches[b.ID] = b
		return nil
	})
}

func (r *ProductionBatchRepo) UpdateStatus(_ context.Context, id, status string) error {
	return r.a.update(func(d *dataset) error {
		b, ok := d.batches[id]
		if !ok {
			return domain.NotFound("batch", id)
		}
		b.Status = status
		d.batches[id] = b
		return nil
	})
}

func (r *ProductionBatchRepo) List(_ context.Context, f repository.BatchFilter) ([]*entity.ProductionBatch, error) {
	var list []*entity.ProductionBatch
	r.a.view(func(d *dataset) {
		for _, b := range d.batches {
			if f.Status != "" && b.Status != f.Status {
				continue
			}
			if f.OrderID != "" && b.OrderID != f.OrderID {
				continue
			}
			if f.RecipeID != "" && b.RecipeID != f.RecipeID {
				continue
			}
			c := cloneBatch(b)
			list = append(list, &c)
		}
	})
	sortByCreatedDesc(list,
		func(b *entity.ProductionBatch) int64 { return b.CreatedAt.UnixNano() },
		func(b *entity.ProductionBatch) string { return b.BatchNumber })
	return paginate(list, f.Page), nil
}
