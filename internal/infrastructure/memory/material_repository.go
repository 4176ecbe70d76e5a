package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

var _ repository.MaterialRepository = (*MaterialRepo)(nil)

// MaterialRepo catálogo de materiales en memoria.
type MaterialRepo struct {
	a *access
}

func (r *MaterialRepo) Create(_ context.Context, m *entity.Material) error {
	return r.a.update(func(d *dataset) error {
		if _, ok := d.materials[m.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, x := range d.materials {
			if x.Code == m.Code {
				return domain.ErrDuplicate
			}
		}
		d.materials[m.ID] = *m
		return nil
	})
}

func (r *MaterialRepo) GetByID(_ context.Context, id string) (*entity.Material, error) {
	var out *entity.Material
	r.a.view(func(d *dataset) {
		if m, ok := d.materials[id]; ok {
			out = &m
		}
	})
	return out, nil
}

func (r *MaterialRepo) GetByCode(_ context.Context, code string) (*entity.Material, error) {
	var out *entity.Material
	r.a.view(func(d *dataset) {
		for _, m := range d.materials {
			if m.Code == code {
				out = &m
				return
			}
		}
	})
	return out, nil
}

func (r *MaterialRepo) Update(_ context.Context, m *entity.Material) error {
	return r.a.update(func(d *dataset) error {
		if _, ok := d.materials[m.ID]; !ok {
			return domain.NotFound("material", m.ID)
		}
		for _, x := range d.materials {
			if x.Code == m.Code && x.ID != m.ID {
				return domain.ErrDuplicate
			}
		}
		d.materials[m.ID] = *m
		return nil
	})
}

func (r *MaterialRepo) List(_ context.Context, f repository.MaterialFilter) ([]*entity.Material, error) {
	var list []*entity.Material
	r.a.view(func(d *dataset) {
		for _, m := range d.materials {
			if f.Category != "" && m.Category != f.Category {
				continue
			}
			if f.ActiveOnly && !m.IsActive {
				continue
			}
			list = append(list, &m)
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return paginate(list, f.Page), nil
}

func (r *MaterialRepo) IsReferenced(_ context.Context, id string) (bool, error) {
	found := false
	r.a.view(func(d *dataset) {
		for _, l := range d.lots {
			if l.MaterialID == id {
				found = true
				return
			}
		}
		for _, rc := range d.recipes {
			for _, ing := range rc.Ingredients {
				if ing.MaterialID == id {
					found = true
					return
				}
			}
		}
	})
	return found, nil
}

func (r *MaterialRepo) Delete(_ context.Context, id string) error {
	return r.a.update(func(d *dataset) error {
		if _, ok := d.materials[id]; !ok {
			return domain.NotFound("material", id)
		}
		delete(d.materials, id)
		return nil
	})
}
