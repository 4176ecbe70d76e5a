package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// ReceiveStockRequest body para POST /api/inventory/lots.
type ReceiveStockRequest struct {
	MaterialID     string          `json:"material_id" validate:"required"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit,omitempty" validate:"omitempty,oneof=kg g l ml pcs"`
	LotNumber      string          `json:"lot_number,omitempty" validate:"max=100"`
	SupplierID     string          `json:"supplier_id,omitempty"`
	ExpiryDate     *time.Time      `json:"expiry_date,omitempty"`
	ReceivedDate   *time.Time      `json:"received_date,omitempty"`
	DocumentNumber string          `json:"document_number,omitempty" validate:"max=100"`
	Notes          string          `json:"notes,omitempty" validate:"max=1000"`
}

// Validate verifica el cuerpo.
func (r ReceiveStockRequest) Validate() error {
	errs := check(r)
	errs.positive("quantity", r.Quantity)
	if r.ExpiryDate != nil && r.ReceivedDate != nil && r.ExpiryDate.Before(*r.ReceivedDate) {
		errs.add("expiry_date", "anterior a la fecha de recepción")
	}
	return errs.orNil()
}

// ConsumeStockRequest body para POST /api/inventory/consumptions (órdenes de servicio).
type ConsumeStockRequest struct {
	MaterialID     string          `json:"material_id" validate:"required"`
	Quantity       decimal.Decimal `json:"quantity"`
	ServiceOrderID string          `json:"service_order_id" validate:"required"`
	Notes          string          `json:"notes,omitempty" validate:"max=1000"`
}

// Validate verifica el cuerpo.
func (r ConsumeStockRequest) Validate() error {
	errs := check(r)
	errs.positive("quantity", r.Quantity)
	return errs.orNil()
}

// AdjustStockRequest body para POST /api/inventory/adjustments. Delta con signo.
type AdjustStockRequest struct {
	MaterialID     string          `json:"material_id" validate:"required"`
	LotID          string          `json:"lot_id,omitempty"`
	Delta          decimal.Decimal `json:"delta"`
	DocumentNumber string          `json:"document_number,omitempty" validate:"max=100"`
	Notes          string          `json:"notes" validate:"required,max=1000"`
}

// Validate verifica el cuerpo.
func (r AdjustStockRequest) Validate() error {
	errs := check(r)
	if r.Delta.IsZero() {
		errs.add("delta", "no puede ser cero")
	}
	errs.scaled("delta", &r.Delta)
	return errs.orNil()
}

// MovementQuery filtros de GET /api/inventory/movements.
type MovementQuery struct {
	MaterialID     string `query:"material_id"`
	LotID          string `query:"lot_id"`
	Type           string `query:"type" validate:"omitempty,oneof=RECEIPT CONSUMPTION ADJUSTMENT TRANSFER"`
	BatchID        string `query:"batch_id"`
	ServiceOrderID string `query:"service_order_id"`
	From           string `query:"from"`
	To             string `query:"to"`
	PageRequest
}

// Validate verifica los filtros y devuelve las fechas interpretadas (RFC3339 o AAAA-MM-DD).
func (q MovementQuery) Validate() (from, to *time.Time, err error) {
	errs := check(q)
	from = parseDate(errs, "from", q.From)
	to = parseDate(errs, "to", q.To)
	if to != nil && q.To != "" && len(q.To) == len("2006-01-02") {
		end := to.Add(24*time.Hour - time.Nanosecond)
		to = &end
	}
	return from, to, errs.orNil()
}

func parseDate(errs *ValidationError, field, s string) *time.Time {
	if s == "" {
		return nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return &t
		}
	}
	errs.add(field, "fecha inválida (RFC3339 o AAAA-MM-DD)")
	return nil
}

// LotResponse lote en respuestas.
type LotResponse struct {
	ID           string          `json:"id"`
	MaterialID   string          `json:"material_id"`
	LotNumber    string          `json:"lot_number,omitempty"`
	Quantity     decimal.Decimal `json:"quantity"`
	Unit         string          `json:"unit"`
	ExpiryDate   *time.Time      `json:"expiry_date,omitempty"`
	ReceivedDate time.Time       `json:"received_date"`
	SupplierID   string          `json:"supplier_id,omitempty"`
}

// MovementResponse asiento del libro en respuestas.
type MovementResponse struct {
	ID             string          `json:"id"`
	MaterialID     string          `json:"material_id"`
	LotID          string          `json:"lot_id,omitempty"`
	Type           string          `json:"type"`
	Direction      string          `json:"direction"`
	Quantity       decimal.Decimal `json:"quantity"`
	Unit           string          `json:"unit"`
	BatchID        string          `json:"batch_id,omitempty"`
	ServiceOrderID string          `json:"service_order_id,omitempty"`
	DocumentNumber string          `json:"document_number,omitempty"`
	Notes          string          `json:"notes,omitempty"`
	CreatedBy      string          `json:"created_by,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// StockSummaryItem existencia agregada de un material activo.
type StockSummaryItem struct {
	MaterialID string           `json:"material_id"`
	Code       string           `json:"code"`
	Name       string           `json:"name"`
	Category   string           `json:"category"`
	Unit       string           `json:"unit"`
	Available  decimal.Decimal  `json:"available"`
	MinStock   *decimal.Decimal `json:"min_stock,omitempty"`
	LowStock   bool             `json:"low_stock"`
	Shortage   decimal.Decimal  `json:"shortage"`
}

// LedgerBalanceResponse contraste libro vs lotes de un material.
type LedgerBalanceResponse struct {
	MaterialID    string          `json:"material_id"`
	Received      decimal.Decimal `json:"received"`
	Issued        decimal.Decimal `json:"issued"`
	FromMovements decimal.Decimal `json:"from_movements"`
	OnHand        decimal.Decimal `json:"on_hand"`
	Consistent    bool            `json:"consistent"`
}
