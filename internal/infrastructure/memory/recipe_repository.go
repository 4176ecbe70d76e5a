package memory

import (
	"context"
	"sort"

	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

var _ repository.RecipeRepository = (*RecipeRepo)(nil)

// RecipeRepo recetas en memoria.
type RecipeRepo struct {
	a *access
}

func (r *RecipeRepo) Create(_ context.Context, rc *entity.Recipe) error {
	return r.a.update(func(d *dataset) error {
		if _, ok := d.recipes[rc.ID]; ok {
			return domain.ErrDuplicate
		}
		for _, x := range d.recipes {
			if x.Code == rc.Code {
				return domain.ErrDuplicate
			}
		}
		for _, ing := range rc.Ingredients {
			if _, ok := d.materials[ing.MaterialID]; !ok {
				return domain.NotFound("material", ing.MaterialID)
			}
		}
		d.recipes[rc.ID] = cloneRecipe(*rc)
		return nil
	})
}

func (r *RecipeRepo) GetByID(_ context.Context, id string) (*entity.Recipe, error) {
	var out *entity.Recipe
	r.a.view(func(d *dataset) {
		if rc, ok := d.recipes[id]; ok {
			c := cloneRecipe(rc)
			out = &c
		}
	})
	return out, nil
}

func (r *RecipeRepo) GetByCode(_ context.Context, code string) (*entity.Recipe, error) {
	var out *entity.Recipe
	r.a.view(func(d *dataset) {
		for _, rc := range d.recipes {
			if rc.Code == code {
				c := cloneRecipe(rc)
				out = &c
				return
			}
		}
	})
	return out, nil
}

func (r *RecipeRepo) Update(_ context.Context, rc *entity.Recipe) error {
	return r.a.update(func(d *dataset) error {
		cur, ok := d.recipes[rc.ID]
		if !ok {
			return domain.NotFound("recipe", rc.ID)
		}
		for _, x := range d.recipes {
			if x.Code == rc.Code && x.ID != rc.ID {
				return domain.ErrDuplicate
			}
		}
		cur.Code = rc.Code
		cur.Name = rc.Name
		cur.Description = rc.Description
		cur.Version = rc.Version
		cur.IsActive = rc.IsActive
		cur.UpdatedAt = rc.UpdatedAt
		d.recipes[rc.ID] = cur
		return nil
	})
}

func (r *RecipeRepo) AddIngredient(_ context.Context, ing *entity.RecipeIngredient) error {
	return r.a.update(func(d *dataset) error {
		rc, ok := d.recipes[ing.RecipeID]
		if !ok {
			return domain.NotFound("recipe", ing.RecipeID)
		}
		if _, ok := d.materials[ing.MaterialID]; !ok {
			return domain.NotFound("material", ing.MaterialID)
		}
		rc.Ingredients = append(rc.Ingredients, *ing)
		d.recipes[rc.ID] = rc
		return nil
	})
}

func (r *RecipeRepo) AddParameter(_ context.Context, p *entity.RecipeParameter) error {
	return r.a.update(func(d *dataset) error {
		rc, ok := d.recipes[p.RecipeID]
		if !ok {
			return domain.NotFound("recipe", p.RecipeID)
		}
		if _, exists := rc.Parameter(p.Name); exists {
			return domain.ErrDuplicate
		}
		rc.Parameters = append(rc.Parameters, *p)
		d.recipes[rc.ID] = rc
		return nil
	})
}

func (r *RecipeRepo) List(_ context.Context, f repository.RecipeFilter) ([]*entity.Recipe, error) {
	var list []*entity.Recipe
	r.a.view(func(d *dataset) {
		for _, rc := range d.recipes {
			if f.ActiveOnly && !rc.IsActive {
				continue
			}
			c := cloneRecipe(rc)
			list = append(list, &c)
		}
	})
	sort.Slice(list, func(i, j int) bool { return list[i].Code < list[j].Code })
	return paginate(list, f.Page), nil
}
