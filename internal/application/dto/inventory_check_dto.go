package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateCheckRequest body para POST /api/inventory/checks.
type CreateCheckRequest struct {
	CheckNumber string     `json:"check_number" validate:"required,max=50"`
	CheckDate   *time.Time `json:"check_date,omitempty"`
	Notes       string     `json:"notes,omitempty" validate:"max=1000"`
}

// Validate verifica el cuerpo.
func (r CreateCheckRequest) Validate() error {
	return check(r).orNil()
}

// AddCheckItemRequest body para POST /api/inventory/checks/:id/items.
// SystemQty nil toma la existencia actual del libro.
type AddCheckItemRequest struct {
	MaterialID string           `json:"material_id" validate:"required"`
	SystemQty  *decimal.Decimal `json:"system_qty,omitempty"`
	ActualQty  decimal.Decimal  `json:"actual_qty"`
	Notes      string           `json:"notes,omitempty" validate:"max=1000"`
}

// Validate verifica el cuerpo.
func (r AddCheckItemRequest) Validate() error {
	errs := check(r)
	errs.nonNegative("system_qty", r.SystemQty)
	errs.nonNegative("actual_qty", &r.ActualQty)
	return errs.orNil()
}

// UpdateCheckItemRequest body para PUT /api/inventory/checks/:id/items/:itemId.
type UpdateCheckItemRequest struct {
	SystemQty *decimal.Decimal `json:"system_qty,omitempty"`
	ActualQty *decimal.Decimal `json:"actual_qty,omitempty"`
	Notes     *string          `json:"notes,omitempty" validate:"omitempty,max=1000"`
}

// Validate verifica el cuerpo.
func (r UpdateCheckItemRequest) Validate() error {
	errs := check(r)
	errs.nonNegative("system_qty", r.SystemQty)
	errs.nonNegative("actual_qty", r.ActualQty)
	return errs.orNil()
}

// CheckItemResponse línea de conteo en respuestas.
type CheckItemResponse struct {
	ID         string          `json:"id"`
	MaterialID string          `json:"material_id"`
	SystemQty  decimal.Decimal `json:"system_qty"`
	ActualQty  decimal.Decimal `json:"actual_qty"`
	Difference decimal.Decimal `json:"difference"`
	Unit       string          `json:"unit"`
	Notes      string          `json:"notes,omitempty"`
}

// CheckResponse conteo físico en respuestas.
type CheckResponse struct {
	ID          string              `json:"id"`
	CheckNumber string              `json:"check_number"`
	CheckDate   time.Time           `json:"check_date"`
	Status      string              `json:"status"`
	Notes       string              `json:"notes,omitempty"`
	CompletedAt *time.Time          `json:"completed_at,omitempty"`
	Items       []CheckItemResponse `json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
}

// CompleteCheckResponse resultado del cierre: conteo y ajustes aplicados.
type CompleteCheckResponse struct {
	Check       CheckResponse      `json:"check"`
	Adjustments []MovementResponse `json:"adjustments"`
}
