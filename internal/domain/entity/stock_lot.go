package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// StockLot es una cantidad recibida de un material. Quantity nunca es negativa y
// solo cambia a través de operaciones del libro de movimientos.
type StockLot struct {
	ID           string
	MaterialID   string
	LotNumber    string
	Quantity     decimal.Decimal
	Unit         string
	ExpiryDate   *time.Time
	ReceivedDate time.Time
	SupplierID   string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
