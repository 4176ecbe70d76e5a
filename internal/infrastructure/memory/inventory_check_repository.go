package memory

import (
	"context"
	"time"

	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

var _ repository.InventoryCheckRepository = (*InventoryCheckRepo)(nil)

// InventoryCheckRepo conteos físicos en memoria.
type InventoryCheckRepo struct {
	a *access
}

func (r *InventoryCheckRepo) Create(_ context.Context, c *entity.InventoryCheck) error {
	return r.a.update(func(d *dataset) error {
		for _, x := range d.checks {
			if x.ID == c.ID || x.CheckNumber == c.CheckNumber {
				return domain.ErrDuplicate
			}
		}
		d.checks[c.ID] = cloneCheck(*c)
		return nil
	})
}

func (r *InventoryCheckRepo) GetByID(_ context.Context, id string) (*entity.InventoryCheck, error) {
	var out *entity.InventoryCheck
	r.a.view(func(d *dataset) {
		if c, ok := d.checks[id]; ok {
			cc := cloneCheck(c)
			out = &cc
		}
	})
	return out, nil
}

func (r *InventoryCheckRepo) GetForUpdate(ctx context.Context, id string) (*entity.InventoryCheck, error) {
	return r.GetByID(ctx, id)
}

func (r *InventoryCheckRepo) GetByNumber(_ context.Context, number string) (*entity.InventoryCheck, error) {
	var out *entity.InventoryCheck
	r.a.view(func(d *dataset) {
		for _, c := range d.checks {
			if c.CheckNumber == number {
				cc := cloneCheck(c)
				out = &cc
				return
			}
		}
	})
	return out, nil
}

func (r *InventoryCheckRepo) AddItem(_ context.Context, it *entity.InventoryCheckItem) error {
	return r.a.update(func(d *dataset) error {
		c, ok := d.checks[it.CheckID]
		if !ok {
			return domain.NotFound("check", it.CheckID)
		}
		if _, ok := d.materials[it.MaterialID]; !ok {
			return domain.NotFound("material", it.MaterialID)
		}
		if c.HasMaterial(it.MaterialID) {
			return domain.ErrDuplicate
		}
		c.Items = append(c.Items, *it)
		d.checks[c.ID] = c
		return nil
	})
}

func (r *InventoryCheckRepo) UpdateItem(_ context.Context, it *entity.InventoryCheckItem) error {
	return r.a.update(func(d *dataset) error {
		c, ok := d.checks[it.CheckID]
		if !ok {
			return domain.NotFound("check", it.CheckID)
		}
		for i := range c.Items {
			if c.Items[i].ID == it.ID {
				c.Items[i] = *it
				d.checks[c.ID] = c
				return nil
			}
		}
		return domain.NotFound("item", it.ID)
	})
}

func (r *InventoryCheckRepo) Complete(_ context.Context, id string, at time.Time) error {
	return r.a.update(func(d *dataset) error {
		c, ok := d.checks[id]
		if !ok {
			return domain.NotFound("check", id)
		}
		c.Status = entity.CheckStatusCompleted
		c.CompletedAt = &at
		c.UpdatedAt = at
		d.checks[id] = c
		return nil
	})
}

func (r *InventoryCheckRepo) Delete(_ context.Context, id string) error {
	return r.a.update(func(d *dataset) error {
		if _, ok := d.checks[id]; !ok {
			return domain.NotFound("check", id)
		}
		delete(d.checks, id)
		return nil
	})
}

func (r *InventoryCheckRepo) List(_ context.Context, f repository.CheckFilter) ([]*entity.InventoryCheck, error) {
	var list []*entity.InventoryCheck
	r.a.view(func(d *dataset) {
		for _, c := range d.checks {
			if f.Status != "" && c.Status != f.Status {
				continue
			}
			cc := cloneCheck(c)
			list = append(list, &cc)
		}
	})
	sortByCreatedDesc(list,
		func(c *entity.InventoryCheck) int64 { return c.CreatedAt.UnixNano() },
		func(c *entity.InventoryCheck) string { return c.CheckNumber })
	return paginate(list, f.Page), nil
}
