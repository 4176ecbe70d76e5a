package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Recipe es la fórmula de un producto: cantidad de cada material por unidad producida
// y los parámetros de proceso esperados.
type Recipe struct {
	ID          string
	Code        string // único
	Name        string
	Description string
	Version     string
	IsActive    bool
	Ingredients []RecipeIngredient
	Parameters  []RecipeParameter
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// RecipeIngredient cantidad de un material por unidad producida.
type RecipeIngredient struct {
	ID         string
	RecipeID   string
	MaterialID string
	Quantity   decimal.Decimal
	Unit       string
}

// RecipeParameter parámetro de proceso (temperatura, viscosidad...) con rango opcional.
type RecipeParameter struct {
	ID       string
	RecipeID string
	Name     string
	Value    string
	Unit     string
	MinValue *decimal.Decimal
	MaxValue *decimal.Decimal
}

// Parameter busca un parámetro por nombre.
func (r *Recipe) Parameter(name string) (RecipeParameter, bool) {
	for _, p := range r.Parameters {
		if p.Name == name {
			return p, true
		}
	}
	return RecipeParameter{}, false
}

// InRange evalúa un valor medido contra el rango declarado. Sin rango, o con un valor
// no numérico, se considera dentro de rango.
func (p RecipeParameter) InRange(value string) bool {
	v, err := decimal.NewFromString(value)
	if err != nil {
		return true
	}
	if p.MinValue != nil && v.LessThan(*p.MinValue) {
		return false
	}
	if p.MaxValue != nil && v.GreaterThan(*p.MaxValue) {
		return false
	}
	return true
}
