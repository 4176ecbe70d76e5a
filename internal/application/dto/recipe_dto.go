package dto

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// IngredientInput ingrediente en el alta de receta.
type IngredientInput struct {
	MaterialID string          `json:"material_id" validate:"required"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit,omitempty" validate:"omitempty,oneof=kg g l ml pcs"`
}

// ParameterInput parámetro de proceso en el alta de receta.
type ParameterInput struct {
	Name     string           `json:"name" validate:"required,max=100"`
	Value    string           `json:"value" validate:"required,max=100"`
	Unit     string           `json:"unit,omitempty" validate:"max=20"`
	MinValue *decimal.Decimal `json:"min_value,omitempty"`
	MaxValue *decimal.Decimal `json:"max_value,omitempty"`
}

func (p ParameterInput) checkRange(errs *ValidationError, prefix string) {
	errs.scaled(prefix+"min_value", p.MinValue)
	errs.scaled(prefix+"max_value", p.MaxValue)
	if p.MinValue != nil && p.MaxValue != nil && p.MinValue.GreaterThan(*p.MaxValue) {
		errs.add(prefix+"min_value", "mayor que max_value")
	}
}

// CreateRecipeRequest body para POST /api/recipes.
type CreateRecipeRequest struct {
	Code        string            `json:"code" validate:"required,max=50"`
	Name        string            `json:"name" validate:"required,max=200"`
	Description string            `json:"description,omitempty" validate:"max=1000"`
	Version     string            `json:"version,omitempty" validate:"max=20"`
	IsActive    *bool             `json:"is_active,omitempty"`
	Ingredients []IngredientInput `json:"ingredients" validate:"required,min=1,dive"`
	Parameters  []ParameterInput  `json:"parameters,omitempty" validate:"dive"`
}

// Validate verifica el cuerpo.
func (r CreateRecipeRequest) Validate() error {
	errs := check(r)
	for i, ing := range r.Ingredients {
		errs.positive(fmt.Sprintf("ingredients[%d].quantity", i), ing.Quantity)
	}
	seen := map[string]bool{}
	for i, p := range r.Parameters {
		p.checkRange(errs, fmt.Sprintf("parameters[%d].", i))
		if seen[p.Name] {
			errs.add(fmt.Sprintf("parameters[%d].name", i), "repetido")
		}
		seen[p.Name] = true
	}
	return errs.orNil()
}

// UpdateRecipeRequest body para PUT /api/recipes/:id. Campos nil no cambian.
type UpdateRecipeRequest struct {
	Name        *string `json:"name,omitempty" validate:"omitempty,min=1,max=200"`
	Description *string `json:"description,omitempty" validate:"omitempty,max=1000"`
	Version     *string `json:"version,omitempty" validate:"omitempty,max=20"`
	IsActive    *bool   `json:"is_active,omitempty"`
}

// Validate verifica el cuerpo.
func (r UpdateRecipeRequest) Validate() error {
	return check(r).orNil()
}

// AddIngredientRequest body para POST /api/recipes/:id/ingredients.
type AddIngredientRequest struct {
	IngredientInput
}

// Validate verifica el cuerpo.
func (r AddIngredientRequest) Validate() error {
	errs := check(r)
	errs.positive("quantity", r.Quantity)
	return errs.orNil()
}

// AddRecipeParameterRequest body para POST /api/recipes/:id/parameters.
type AddRecipeParameterRequest struct {
	ParameterInput
}

// Validate verifica el cuerpo.
func (r AddRecipeParameterRequest) Validate() error {
	errs := check(r)
	r.checkRange(errs, "")
	return errs.orNil()
}

// IngredientResponse ingrediente en respuestas.
type IngredientResponse struct {
	ID         string          `json:"id"`
	MaterialID string          `json:"material_id"`
	Quantity   decimal.Decimal `json:"quantity"`
	Unit       string          `json:"unit"`
}

// RecipeParameterResponse parámetro en respuestas.
type RecipeParameterResponse struct {
	ID       string           `json:"id"`
	Name     string           `json:"name"`
	Value    string           `json:"value"`
	Unit     string           `json:"unit,omitempty"`
	MinValue *decimal.Decimal `json:"min_value,omitempty"`
	MaxValue *decimal.Decimal `json:"max_value,omitempty"`
}

// RecipeResponse receta hidratada en respuestas.
type RecipeResponse struct {
	ID          string                    `json:"id"`
	Code        string                    `json:"code"`
	Name        string                    `json:"name"`
	Description string                    `json:"description,omitempty"`
	Version     string                    `json:"version"`
	IsActive    bool                      `json:"is_active"`
	Ingredients []IngredientResponse      `json:"ingredients"`
	Parameters  []RecipeParameterResponse `json:"parameters"`
	CreatedAt   time.Time                 `json:"created_at"`
	UpdatedAt   time.Time                 `json:"updated_at"`
}

// RequirementLine demanda de un material con su disponibilidad actual.
type RequirementLine struct {
	MaterialID string          `json:"material_id"`
	Code       string          `json:"code"`
	Required   decimal.Decimal `json:"required"`
	Available  decimal.Decimal `json:"available"`
	Unit       string          `json:"unit"`
	Sufficient bool            `json:"sufficient"`
}

// RequirementsResponse vista previa de consumo para producir una cantidad.
type RequirementsResponse struct {
	RecipeID    string            `json:"recipe_id"`
	ProducedQty decimal.Decimal   `json:"produced_qty"`
	Feasible    bool              `json:"feasible"`
	Lines       []RequirementLine `json:"lines"`
}
