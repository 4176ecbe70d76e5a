package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// CreateOrderRequest body para POST /api/production/orders.
type CreateOrderRequest struct {
	OrderNumber string          `json:"order_number" validate:"required,max=50"`
	RecipeID    string          `json:"recipe_id" validate:"required"`
	PlannedQty  decimal.Decimal `json:"planned_qty"`
	Unit        string          `json:"unit" validate:"required,oneof=kg g l ml pcs"`
	PlannedDate time.Time       `json:"planned_date" validate:"required"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
	Notes       string          `json:"notes,omitempty" validate:"max=1000"`
}

// Validate verifica el cuerpo.
func (r CreateOrderRequest) Validate() error {
	errs := check(r)
	errs.positive("planned_qty", r.PlannedQty)
	if r.Deadline != nil && r.Deadline.Before(r.PlannedDate) {
		errs.add("deadline", "anterior a planned_date")
	}
	return errs.orNil()
}

// OrderResponse orden de producción en respuestas.
type OrderResponse struct {
	ID          string          `json:"id"`
	OrderNumber string          `json:"order_number"`
	RecipeID    string          `json:"recipe_id"`
	PlannedQty  decimal.Decimal `json:"planned_qty"`
	Unit        string          `json:"unit"`
	PlannedDate time.Time       `json:"planned_date"`
	Deadline    *time.Time      `json:"deadline,omitempty"`
	Status      string          `json:"status"`
	Notes       string          `json:"notes,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// BatchParameterInput valor de proceso medido. IsInRange nil = evaluarlo contra la receta.
type BatchParameterInput struct {
	Name      string `json:"name" validate:"required,max=100"`
	Value     string `json:"value" validate:"required,max=100"`
	Unit      string `json:"unit,omitempty" validate:"max=20"`
	IsInRange *bool  `json:"is_in_range,omitempty"`
}

// CreateBatchRequest body para POST /api/production/batches.
type CreateBatchRequest struct {
	BatchNumber    string                `json:"batch_number" validate:"required,max=50"`
	OrderID        string                `json:"order_id,omitempty"`
	RecipeID       string                `json:"recipe_id" validate:"required"`
	ProducedQty    decimal.Decimal       `json:"produced_qty"`
	Unit           string                `json:"unit,omitempty" validate:"omitempty,oneof=kg g l ml pcs"`
	ProductionDate *time.Time            `json:"production_date,omitempty"`
	Notes          string                `json:"notes,omitempty" validate:"max=1000"`
	Parameters     []BatchParameterInput `json:"parameters,omitempty" validate:"dive"`
}

// Validate verifica el cuerpo.
func (r CreateBatchRequest) Validate() error {
	errs := check(r)
	errs.positive("produced_qty", r.ProducedQty)
	seen := map[string]bool{}
	for i, p := range r.Parameters {
		if seen[p.Name] {
			errs.add(fmt.Sprintf("parameters[%d].name", i), "repetido")
		}
		seen[p.Name] = true
	}
	return errs.orNil()
}

// AddBatchParameterRequest body para POST /api/production/batches/:id/parameters.
type AddBatchParameterRequest struct {
	BatchParameterInput
}

// Validate verifica el cuerpo.
func (r AddBatchParameterRequest) Validate() error {
	return check(r).orNil()
}

// MaterialUsageResponse consumo total de un material en el lote.
type MaterialUsageResponse struct {
	MaterialID string          `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit"`
}

// BatchParameterResponse parámetro medido en respuestas.
type BatchParameterResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Value     string `json:"value"`
	Unit      string `json:"unit,omitempty"`
	IsInRange bool   `json:"is_in_range"`
}

// BatchResponse lote de producción hidratado.
type BatchResponse struct {
	ID             string                   `json:"id"`
	BatchNumber    string                   `json:"batch_number"`
	OrderID        string                   `json:"order_id,omitempty"`
	RecipeID       string                   `json:"recipe_id"`
	ProducedQty    decimal.Decimal          `json:"produced_qty"`
	Unit           string                   `json:"unit"`
	ProductionDate time.Time                `json:"production_date"`
	ProducedBy     string                   `json:"produced_by,omitempty"`
	Status         string                   `json:"status"`
	Notes          string                   `json:"notes,omitempty"`
	MaterialUsage  []MaterialUsageResponse  `json:"material_usage"`
	Parameters     []BatchParameterResponse `json:"parameters"`
	Movements      []MovementResponse       `json:"movements,omitempty"`
	CreatedAt      time.Time                `json:"created_at"`
}
