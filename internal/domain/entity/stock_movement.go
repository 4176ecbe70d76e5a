package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de movimiento del libro de stock.
const (
	MovementReceipt     = "RECEIPT"
	MovementConsumption = "CONSUMPTION"
	MovementAdjustment  = "ADJUSTMENT"
	MovementTransfer    = "TRANSFER" // reservado: hay una sola ubicación de stock
)

// Dirección del movimiento respecto a la existencia.
const (
	DirectionIn  = "IN"
	DirectionOut = "OUT"
)

// StockMovement es un asiento inmutable del libro de stock.
// Quantity siempre es positiva; el signo lo da Direction.
type StockMovement struct {
	ID             string
	MaterialID     string
	LotID          string // vacío si el movimiento no apunta a un lote concreto
	Type           string
	Direction      string
	Quantity       decimal.Decimal
	Unit           string
	BatchID        string
	ServiceOrderID string
	DocumentNumber string
	Notes          string
	CreatedBy      string
	CreatedAt      time.Time
}

// Signed devuelve la cantidad con signo (+ entrada, - salida).
func (m *StockMovement) Signed() decimal.Decimal {
	if m.Direction == DirectionOut {
		return m.Quantity.Neg()
	}
	return m.Quantity
}

// ValidMovementType reporta si t es un tipo de movimiento conocido.
func ValidMovementType(t string) bool {
	switch t {
	case MovementReceipt, MovementConsumption, MovementAdjustment, MovementTransfer:
		return true
	}
	return false
}
