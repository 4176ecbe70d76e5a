package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Categorías de material.
const (
	MaterialCategoryRaw       = "RAW_MATERIAL"
	MaterialCategoryComponent = "COMPONENT"
	MaterialCategorySparePart = "SPARE_PART"
)

// Unidades de medida admitidas.
const (
	UnitKG  = "kg"
	UnitG   = "g"
	UnitL   = "l"
	UnitML  = "ml"
	UnitPCS = "pcs"
)

// Material es un artículo de inventario: materia prima, componente o repuesto.
// La existencia no vive aquí: es la suma de sus lotes.
type Material struct {
	ID          string
	Code        string // único
	Name        string
	Category    string
	Unit        string
	MinStock    *decimal.Decimal // umbral de stock bajo (opcional)
	Description string
	IsActive    bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// IsLowStock indica si la cantidad disponible está por debajo del mínimo configurado.
func (m *Material) IsLowStock(available decimal.Decimal) bool {
	return m.MinStock != nil && available.LessThan(*m.MinStock)
}

// ValidCategory reporta si c es una categoría conocida.
func ValidCategory(c string) bool {
	switch c {
	case MaterialCategoryRaw, MaterialCategoryComponent, MaterialCategorySparePart:
		return true
	}
	return false
}

// ValidUnit reporta si u es una unidad conocida.
func ValidUnit(u string) bool {
	switch u {
	case UnitKG, UnitG, UnitL, UnitML, UnitPCS:
		return true
	}
	return false
}
