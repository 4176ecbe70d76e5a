package inventory

import (
	"context"

	"github.com/jhoicas/pasteops-api/internal/application/dto"
)

// SummaryCache guarda el resumen de existencias entre movimientos del libro.
// Un fallo del caché nunca debe impedir responder: Get devuelve ok=false.
type SummaryCache interface {
	GetSummary(ctx context.Context) ([]dto.StockSummaryItem, bool)
	SetSummary(ctx context.Context, items []dto.StockSummaryItem)
}
