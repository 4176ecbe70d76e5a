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

// MaterialUseCase CRUD del catálogo de materiales. La existencia se maneja vía el libro de stock.
type MaterialUseCase struct {
	repo repository.MaterialRepository
	now  func() time.Time
}

// NewMaterialUseCase construye el caso de uso.
func NewMaterialUseCase(repo repository.MaterialRepository) *MaterialUseCase {
	return &MaterialUseCase{repo: repo, now: time.Now}
}

// Create crea un material activo con código único.
func (uc *MaterialUseCase) Create(ctx context.Context, in dto.CreateMaterialRequest) (*dto.MaterialResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	existing, err := uc.repo.GetByCode(ctx, in.Code)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("material %s: %w", in.Code, domain.ErrDuplicate)
	}
	now := uc.now()
	m := &entity.Material{
		ID:          uuid.New().String(),
		Code:        in.Code,
		Name:        in.Name,
		Category:    in.Category,
		Unit:        in.Unit,
		MinStock:    in.MinStock,
		Description: in.Description,
		IsActive:    true,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.repo.Create(ctx, m); err != nil {
		return nil, err
	}
	resp := dto.ToMaterialResponse(m)
	return &resp, nil
}

// GetByID obtiene un material.
func (uc *MaterialUseCase) GetByID(ctx context.Context, id string) (*dto.MaterialResponse, error) {
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFound("material", id)
	}
	resp := dto.ToMaterialResponse(m)
	return &resp, nil
}

// Update actualiza los datos descriptivos. Código y unidad son inmutables.
func (uc *MaterialUseCase) Update(ctx context.Context, id string, in dto.UpdateMaterialRequest) (*dto.MaterialResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFound("material", id)
	}
	if in.Name != nil {
		m.Name = *in.Name
	}
	if in.Category != nil {
		m.Category = *in.Category
	}
	if in.MinStock != nil {
		m.MinStock = in.MinStock
	}
	if in.Description != nil {
		m.Description = *in.Description
	}
	if in.IsActive != nil {
		m.IsActive = *in.IsActive
	}
	m.UpdatedAt = uc.now()
	if err := uc.repo.Update(ctx, m); err != nil {
		return nil, err
	}
	resp := dto.ToMaterialResponse(m)
	return &resp, nil
}

// List lista materiales por categoría.
func (uc *MaterialUseCase) List(ctx context.Context, f repository.MaterialFilter) ([]dto.MaterialResponse, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	list, err := uc.repo.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.MaterialResponse, 0, len(list))
	for _, m := range list {
		out = append(out, dto.ToMaterialResponse(m))
	}
	return out, nil
}

// Delete elimina un material sin lotes ni recetas que lo usen. Con historia, desactivarlo.
func (uc *MaterialUseCase) Delete(ctx context.Context, id string) error {
	m, err := uc.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if m == nil {
		return domain.NotFound("material", id)
	}
	used, err := uc.repo.IsReferenced(ctx, id)
	if err != nil {
		return err
	}
	if used {
		return fmt.Errorf("material %s tiene lotes o recetas asociadas: %w", m.Code, domain.ErrConflict)
	}
	return uc.repo.Delete(ctx, id)
}
