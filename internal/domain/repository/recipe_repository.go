package repository

import (
	"context"

	"github.com/jhoicas/pasteops-api/internal/domain/entity"
)

// RecipeRepository puerto de persistencia de recetas con ingredientes y parámetros.
type RecipeRepository interface {
	// Create inserta cabecera, ingredientes y parámetros.
	Create(ctx context.Context, r *entity.Recipe) error
	// GetByID devuelve la receta hidratada (ingredientes y parámetros).
	GetByID(ctx context.Context, id string) (*entity.Recipe, error)
	GetByCode(ctx context.Context, code string) (*entity.Recipe, error)
	// Update actualiza solo la cabecera.
	Update(ctx context.Context, r *entity.Recipe) error
	AddIngredient(ctx context.Context, ing *entity.RecipeIngredient) error
	AddParameter(ctx context.Context, p *entity.RecipeParameter) error
	List(ctx context.Context, f RecipeFilter) ([]*entity.Recipe, error)
}
