package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados del conteo físico.
const (
	CheckStatusInProgress = "IN_PROGRESS"
	CheckStatusCompleted  = "COMPLETED"
)

// InventoryCheck conteo físico de inventario.
type InventoryCheck struct {
	ID          string
	CheckNumber string
	CheckDate   time.Time
	Status      string
	Notes       string
	CompletedAt *time.Time
	Items       []InventoryCheckItem
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// InventoryCheckItem línea de conteo de un material. Difference = ActualQty - SystemQty.
type InventoryCheckItem struct {
	ID         string
	CheckID    string
	MaterialID string
	SystemQty  decimal.Decimal
	ActualQty  decimal.Decimal
	Difference decimal.Decimal
	Unit       string
	Notes      string
}

// Recompute actualiza Difference a partir de las cantidades.
func (i *InventoryCheckItem) Recompute() {
	i.Difference = i.ActualQty.Sub(i.SystemQty)
}

// IsCompleted indica si el conteo ya fue cerrado.
func (c *InventoryCheck) IsCompleted() bool {
	return c.Status == CheckStatusCompleted
}

// HasMaterial reporta si el conteo ya incluye una línea para el material.
func (c *InventoryCheck) HasMaterial(materialID string) bool {
	for _, it := range c.Items {
		if it.MaterialID == materialID {
			return true
		}
	}
	return false
}
