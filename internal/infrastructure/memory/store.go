// Package memory implementa los repositorios en memoria. Se usa con STORE=memory
// para desarrollo local y como backend de las pruebas de casos de uso.
//
// Cada transacción toma el candado exclusivo del store durante toda su duración y
// trabaja sobre una copia de los datos que solo se publica en el commit, así que
// las transacciones son serializables y el rollback es descartar la copia.
package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

var _ repository.TxRunner = (*Store)(nil)

// Store base de datos en memoria.
type Store struct {
	mu   sync.RWMutex
	data *dataset
}

// NewStore crea un store vacío.
func NewStore() *Store {
	return &Store{data: newDataset()}
}

// Repos devuelve repositorios en modo autocommit. No usarlos dentro de Run:
// el candado del store no es reentrante.
func (s *Store) Repos() repository.Repos {
	return reposFor(&access{store: s})
}

// Run ejecuta fn sobre una copia de los datos y la publica solo si fn no falla.
func (s *Store) Run(ctx context.Context, fn func(ctx context.Context, tx repository.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	work := s.data.clone()
	if err := fn(ctx, reposFor(&access{store: s, tx: work})); err != nil {
		return err
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	s.data = work
	return nil
}

func reposFor(a *access) repository.Repos {
	return repository.Repos{
		Materials: &MaterialRepo{a: a},
		Lots:      &StockLotRepo{a: a},
		Movements: &StockMovementRepo{a: a},
		Recipes:   &RecipeRepo{a: a},
		Orders:    &ProductionOrderRepo{a: a},
		Batches:   &ProductionBatchRepo{a: a},
		Checks:    &InventoryCheckRepo{a: a},

		ServiceOrders: &ServiceOrderRepo{a: a},
	}
}

// access resuelve sobre qué datos opera un repositorio: la copia de la transacción
// en curso o los datos publicados (con su candado).
type access struct {
	store *Store
	tx    *dataset
}

func (a *access) view(fn func(d *dataset)) {
	if a.tx != nil {
		fn(a.tx)
		return
	}
	a.store.mu.RLock()
	defer a.store.mu.RUnlock()
	fn(a.store.data)
}

func (a *access) update(fn func(d *dataset) error) error {
	if a.tx != nil {
		return fn(a.tx)
	}
	a.store.mu.Lock()
	defer a.store.mu.Unlock()
	return fn(a.store.data)
}

type dataset struct {
	materials map[string]entity.Material
	lots      map[string]entity.StockLot
	movements []entity.StockMovement
	recipes   map[string]entity.Recipe
	orders    map[string]entity.ProductionOrder
	batches   map[string]entity.ProductionBatch
	checks    map[string]entity.InventoryCheck

	serviceOrders map[string]entity.ServiceOrder
}

func newDataset() *dataset {
	return &dataset{
		materials: map[string]entity.Material{},
		lots:      map[string]entity.StockLot{},
		recipes:   map[string]entity.Recipe{},
		orders:    map[string]entity.ProductionOrder{},
		batches:   map[string]entity.ProductionBatch{},
		checks:    map[string]entity.InventoryCheck{},

		serviceOrders: map[string]entity.ServiceOrder{},
	}
}

func (d *dataset) clone() *dataset {
	c := newDataset()
	for k, v := range d.materials {
		c.materials[k] = v
	}
	for k, v := range d.lots {
		c.lots[k] = v
	}
	c.movements = append(make([]entity.StockMovement, 0, len(d.movements)+8), d.movements...)
	for k, v := range d.recipes {
		c.recipes[k] = cloneRecipe(v)
	}
	for k, v := range d.orders {
		c.orders[k] = v
	}
	for k, v := range d.batches {
		c.batches[k] = cloneBatch(v)
	}
	for k, v := range d.checks {
		c.checks[k] = cloneCheck(v)
	}
	for k, v := range d.serviceOrders {
		c.serviceOrders[k] = cloneServiceOrder(v)
	}
	return c
}

func cloneRecipe(r entity.Recipe) entity.Recipe {
	r.Ingredients = append([]entity.RecipeIngredient(nil), r.Ingredients...)
	r.Parameters = append([]entity.RecipeParameter(nil), r.Parameters...)
	return r
}

func cloneBatch(b entity.ProductionBatch) entity.ProductionBatch {
	b.MaterialUsage = append([]entity.MaterialUsage(nil), b.MaterialUsage...)
	b.Parameters = append([]entity.BatchParameter(nil), b.Parameters...)
	b.Movements = nil
	return b
}

func cloneCheck(c entity.InventoryCheck) entity.InventoryCheck {
	c.Items = append([]entity.InventoryCheckItem(nil), c.Items...)
	return c
}

func cloneServiceOrder(o entity.ServiceOrder) entity.ServiceOrder {
	o.Assignments = append([]entity.ServiceAssignment(nil), o.Assignments...)
	o.WorkLogs = append([]entity.WorkLog(nil), o.WorkLogs...)
	return o
}

// paginate aplica offset y límite sobre un listado ya ordenado.
func paginate[T any](items []T, p repository.Page) []T {
	p = p.Normalize()
	if p.Offset >= len(items) {
		return []T{}
	}
	end := p.Offset + p.Limit
	if end > len(items) {
		end = len(items)
	}
	return items[p.Offset:end]
}

func sortByCreatedDesc[T any](items []T, created func(T) int64, key func(T) string) {
	sort.SliceStable(items, func(i, j int) bool {
		ci, cj := created(items[i]), created(items[j])
		if ci != cj {
			return ci > cj
		}
		return key(items[i]) < key(items[j])
	})
}
