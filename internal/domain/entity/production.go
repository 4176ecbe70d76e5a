package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de orden de producción.
const (
	OrderStatusPlanned    = "PLANNED"
	OrderStatusInProgress = "IN_PROGRESS"
	OrderStatusCompleted  = "COMPLETED"
	OrderStatusCancelled  = "CANCELLED"
)

// Estados de lote de producción.
const (
	BatchStatusInProgress = "IN_PROGRESS"
	BatchStatusCompleted  = "COMPLETED"
	BatchStatusDefective  = "DEFECTIVE"
)

// ProductionOrder plan de producción de una receta.
type ProductionOrder struct {
	ID          string
	OrderNumber string
	RecipeID    string
	PlannedQty  decimal.Decimal
	Unit        string
	PlannedDate time.Time
	Deadline    *time.Time
	Status      string
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ValidOrderStatus reporta si s es un estado de orden conocido.
func ValidOrderStatus(s string) bool {
	switch s {
	case OrderStatusPlanned, OrderStatusInProgress, OrderStatusCompleted, OrderStatusCancelled:
		return true
	}
	return false
}

// ProductionBatch ejecución concreta de una receta. Existe si y solo si sus consumos
// quedaron registrados en el libro de stock.
type ProductionBatch struct {
	ID             string
	BatchNumber    string
	OrderID        string
	RecipeID       string
	ProducedQty    decimal.Decimal
	Unit           string
	ProductionDate time.Time
	ProducedBy     string
	Status         string
	Notes          string
	MaterialUsage  []MaterialUsage
	Parameters     []BatchParameter
	Movements      []*StockMovement
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// MaterialUsage cantidad total requerida de un material para el lote.
type MaterialUsage struct {
	ID         string
	BatchID    string
	MaterialID string
	Quantity   decimal.Decimal
	Unit       string
}

// BatchParameter valor de proceso medido durante el lote.
type BatchParameter struct {
	ID        string
	BatchID   string
	Name      string
	Value     string
	Unit      string
	IsInRange bool
}

// ValidBatchStatus reporta si s es un estado de lote conocido.
func ValidBatchStatus(s string) bool {
	switch s {
	case BatchStatusInProgress, BatchStatusCompleted, BatchStatusDefective:
		return true
	}
	return false
}
