package repository

import (
	"context"
	"time"

	"github.com/jhoicas/pasteops-api/internal/domain/entity"
)

// InventoryCheckRepository puerto de persistencia de conteos físicos.
type InventoryCheckRepository interface {
	Create(ctx context.Context, c *entity.InventoryCheck) error
	// GetByID devuelve el conteo con sus ítems.
	GetByID(ctx context.Context, id string) (*entity.InventoryCheck, error)
	// GetForUpdate igual que GetByID pero bloquea la cabecera del conteo.
	GetForUpdate(ctx context.Context, id string) (*entity.InventoryCheck, error)
	GetByNumber(ctx context.Context, number string) (*entity.InventoryCheck, error)
	AddItem(ctx context.Context, it *entity.InventoryCheckItem) error
	UpdateItem(ctx context.Context, it *entity.InventoryCheckItem) error
	Complete(ctx context.Context, id string, at time.Time) error
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, f CheckFilter) ([]*entity.InventoryCheck, error)
}
