package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateMaterialRequest body para POST /api/materials.
type CreateMaterialRequest struct {
	Code        string           `json:"code" validate:"required,max=50"`
	Name        string           `json:"name" validate:"required,max=200"`
	Category    string           `json:"category" validate:"required,oneof=RAW_MATERIAL COMPONENT SPARE_PART"`
	Unit        string           `json:"unit" validate:"required,oneof=kg g l ml pcs"`
	MinStock    *decimal.Decimal `json:"min_stock,omitempty"`
	Description string           `json:"description,omitempty" validate:"max=1000"`
}

// Validate verifica el cuerpo.
func (r CreateMaterialRequest) Validate() error {
	errs := check(r)
	errs.nonNegative("min_stock", r.MinStock)
	return errs.orNil()
}

// UpdateMaterialRequest body para PUT /api/materials/:id. Campos nil no cambian.
// La unidad no se puede cambiar: los lotes existentes quedarían inconsistentes.
type UpdateMaterialRequest struct {
	Name        *string          `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Category    *string          `json:"category,omitempty" validate:"omitempty,oneof=RAW_MATERIAL COMPONENT SPARE_PART"`
	MinStock    *decimal.Decimal `json:"min_stock,omitempty"`
	Description *string          `json:"description,omitempty" validate:"omitempty,max=1000"`
	IsActive    *bool            `json:"is_active,omitempty"`
}

// Validate verifica el cuerpo.
func (r UpdateMaterialRequest) Validate() error {
	errs := check(r)
	errs.nonNegative("min_stock", r.MinStock)
	return errs.orNil()
}

// MaterialResponse material en respuestas.
type MaterialResponse struct {
	ID          string           `json:"id"`
	Code        string           `json:"code"`
	Name        string           `json:"name"`
	Category    string           `json:"category"`
	Unit        string           `json:"unit"`
	MinStock    *decimal.Decimal `json:"min_stock,omitempty"`
	Description string           `json:"description,omitempty"`
	IsActive    bool             `json:"is_active"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

// MaterialStockResponse existencia de un material con sus lotes en orden FIFO.
type MaterialStockResponse struct {
	Material  MaterialResponse `json:"material"`
	Available decimal.Decimal  `json:"available"`
	LowStock  bool             `json:"low_stock"`
	Lots      []LotResponse    `json:"lots"`
}
