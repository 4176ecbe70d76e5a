package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pasteops-api/internal/application/dto"
	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

// RecipeUseCase alta y mantenimiento de recetas.
type RecipeUseCase struct {
	repos    repository.Repos
	txRunner repository.TxRunner
	now      func() time.Time
}

// NewRecipeUseCase construye el caso de uso.
func NewRecipeUseCase(repos repository.Repos, txRunner repository.TxRunner) *RecipeUseCase {
	return &RecipeUseCase{repos: repos, txRunner: txRunner, now: time.Now}
}

// Create registra la receta con sus ingredientes y parámetros en una transacción.
// La unidad de cada ingrediente debe coincidir con la del material.
func (uc *RecipeUseCase) Create(ctx context.Context, in dto.CreateRecipeRequest) (*dto.RecipeResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	now := uc.now()
	r := &entity.Recipe{
		ID:          uuid.New().String(),
		Code:        in.Code,
		Name:        in.Name,
		Description: in.Description,
		Version:     in.Version,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if r.Version == "" {
		r.Version = "1"
	}
	if in.IsActive != nil {
		r.IsActive = *in.IsActive
	}
	for _, ing := range in.Ingredients {
		ri, err := uc.ingredient(ctx, r.ID, ing)
		if err != nil {
			return nil, err
		}
		r.Ingredients = append(r.Ingredients, *ri)
	}
	for _, p := range in.Parameters {
		r.Parameters = append(r.Parameters, *parameter(r.ID, p))
	}

	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Repos) error {
		existing, err := tx.Recipes.GetByCode(ctx, r.Code)
		if err != nil {
			return err
		}
		if existing != nil {
			return fmt.Errorf("receta %s: %w", r.Code, domain.ErrDuplicate)
		}
		return tx.Recipes.Create(ctx, r)
	})
	if err != nil {
		return nil, err
	}
	resp := dto.ToRecipeResponse(r)
	return &resp, nil
}

func (uc *RecipeUseCase) ingredient(ctx context.Context, recipeID string, in dto.IngredientInput) (*entity.RecipeIngredient, error) {
	m, err := uc.repos.Materials.GetByID(ctx, in.MaterialID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFound("material", in.MaterialID)
	}
	unit := in.Unit
	if unit == "" {
		unit = m.Unit
	}
	if unit != m.Unit {
		return nil, fmt.Errorf("ingrediente %s en %s, el material se maneja en %s: %w", m.Code, unit, m.Unit, domain.ErrInvalidInput)
	}
	return &entity.RecipeIngredient{
		ID:         uuid.New().String(),
		RecipeID:   recipeID,
		MaterialID: m.ID,
		Quantity:   in.Quantity,
		Unit:       unit,
	}, nil
}

func parameter(recipeID string, in dto.ParameterInput) *entity.RecipeParameter {
	return &entity.RecipeParameter{
		ID:       uuid.New().String(),
		RecipeID: recipeID,
		Name:     in.Name,
		Value:    in.Value,
		Unit:     in.Unit,
		MinValue: in.MinValue,
		MaxValue: in.MaxValue,
	}
}

// GetByID obtiene la receta hidratada.
func (uc *RecipeUseCase) GetByID(ctx context.Context, id string) (*dto.RecipeResponse, error) {
	r, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.ToRecipeResponse(r)
	return &resp, nil
}

func (uc *RecipeUseCase) load(ctx context.Context, id string) (*entity.Recipe, error) {
	r, err := uc.repos.Recipes.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if r == nil {
		return nil, domain.NotFound("recipe", id)
	}
	return r, nil
}

// List lista recetas.
func (uc *RecipeUseCase) List(ctx context.Context, f repository.RecipeFilter) ([]dto.RecipeResponse, error) {
	list, err := uc.repos.Recipes.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.RecipeResponse, 0, len(list))
	for _, r := range list {
		out = append(out, dto.ToRecipeResponse(r))
	}
	return out, nil
}

// Update cambia la cabecera. Desactivar una receta impide nuevas órdenes y lotes.
func (uc *RecipeUseCase) Update(ctx context.Context, id string, in dto.UpdateRecipeRequest) (*dto.RecipeResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	r, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		r.Name = *in.Name
	}
	if in.Description != nil {
		r.Description = *in.Description
	}
	if in.Version != nil {
		r.Version = *in.Version
	}
	if in.IsActive != nil {
		r.IsActive = *in.IsActive
	}
	r.UpdatedAt = uc.now()
	if err := uc.repos.Recipes.Update(ctx, r); err != nil {
		return nil, err
	}
	resp := dto.ToRecipeResponse(r)
	return &resp, nil
}

// AddIngredient agrega un ingrediente. Un material repetido se suma al resolver la receta.
func (uc *RecipeUseCase) AddIngredient(ctx context.Context, id string, in dto.AddIngredientRequest) (*dto.RecipeResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	r, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	ing, err := uc.ingredient(ctx, r.ID, in.IngredientInput)
	if err != nil {
		return nil, err
	}
	if err := uc.repos.Recipes.AddIngredient(ctx, ing); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}

// AddParameter agrega un parámetro de proceso con nombre único en la receta.
func (uc *RecipeUseCase) AddParameter(ctx context.Context, id string, in dto.AddRecipeParameterRequest) (*dto.RecipeResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	r, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	if _, exists := r.Parameter(in.Name); exists {
		return nil, fmt.Errorf("parámetro %s: %w", in.Name, domain.ErrDuplicate)
	}
	if err := uc.repos.Recipes.AddParameter(ctx, parameter(r.ID, in.ParameterInput)); err != nil {
		return nil, err
	}
	return uc.GetByID(ctx, id)
}
