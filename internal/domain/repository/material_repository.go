package repository

import (
	"context"

	"github.com/jhoicas/pasteops-api/internal/domain/entity"
)

// MaterialRepository puerto de persistencia del catálogo de materiales.
// Los Get devuelven (nil, nil) cuando no existe el registro.
type MaterialRepository interface {
	Create(ctx context.Context, m *entity.Material) error
	GetByID(ctx context.Context, id string) (*entity.Material, error)
	GetByCode(ctx context.Context, code string) (*entity.Material, error)
	Update(ctx context.Context, m *entity.Material) error
	List(ctx context.Context, f MaterialFilter) ([]*entity.Material, error)
	// IsReferenced indica si algún lote o ingrediente de receta apunta al material.
	IsReferenced(ctx context.Context, id string) (bool, error)
	Delete(ctx context.Context, id string) error
}
