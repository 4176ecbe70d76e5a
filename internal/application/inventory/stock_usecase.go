package inventory

import (
	"context"
	"fmt"
	"sort"

	"github.com/jhoicas/pasteops-api/internal/application/dto"
	"github.com/jhoicas/pasteops-api/internal/application/ledger"
	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

// StockUseCase operaciones HTTP sobre el libro de stock: recepciones, consumos por
// orden de servicio, ajustes manuales y consultas de existencia.
type StockUseCase struct {
	ledger   *ledger.Ledger
	repos    repository.Repos
	txRunner repository.TxRunner
	cache    SummaryCache
}

// NewStockUseCase construye el caso de uso. cache puede ser nil.
func NewStockUseCase(l *ledger.Ledger, repos repository.Repos, txRunner repository.TxRunner, cache SummaryCache) *StockUseCase {
	return &StockUseCase{ledger: l, repos: repos, txRunner: txRunner, cache: cache}
}

// Receive registra la entrada de un lote.
func (uc *StockUseCase) Receive(ctx context.Context, userID string, in dto.ReceiveStockRequest) (*dto.LotResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	rin := ledger.ReceiveInput{
		MaterialID:     in.MaterialID,
		Quantity:       in.Quantity,
		Unit:           in.Unit,
		LotNumber:      in.LotNumber,
		SupplierID:     in.SupplierID,
		ExpiryDate:     in.ExpiryDate,
		DocumentNumber: in.DocumentNumber,
		Notes:          in.Notes,
		CreatedBy:      userID,
	}
	if in.ReceivedDate != nil {
		rin.ReceivedDate = *in.ReceivedDate
	}
	lot, err := uc.ledger.Receive(ctx, rin)
	if err != nil {
		return nil, err
	}
	resp := dto.ToLotResponse(lot)
	return &resp, nil
}

// Consume descuenta material para una orden de servicio abierta. La orden queda
// bloqueada hasta el commit: un cierre concurrente espera al consumo o lo rechaza.
func (uc *StockUseCase) Consume(ctx context.Context, userID string, in dto.ConsumeStockRequest) ([]dto.MovementResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	var movs []*entity.StockMovement
	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Repos) error {
		o, err := tx.ServiceOrders.GetForUpdate(ctx, in.ServiceOrderID)
		if err != nil {
			return err
		}
		if o == nil {
			return domain.NotFound("service order", in.ServiceOrderID)
		}
		if o.IsClosed() {
			return fmt.Errorf("orden de servicio %s en estado %s: %w", o.OrderNumber, o.Status, domain.ErrConflict)
		}
		movs, err = uc.ledger.ConsumeFIFOInTx(ctx, tx, ledger.ConsumeInput{
			MaterialID:     in.MaterialID,
			Quantity:       in.Quantity,
			ServiceOrderID: o.ID,
			DocumentNumber: o.OrderNumber,
			Notes:          in.Notes,
			CreatedBy:      userID,
		})
		return err
	})
	if err != nil {
		uc.ledger.Rejected(ctx, err)
		return nil, err
	}
	uc.ledger.Publish(ctx, movs)
	return dto.ToMovementResponses(movs), nil
}

// Adjust corrección manual con signo.
func (uc *StockUseCase) Adjust(ctx context.Context, userID string, in dto.AdjustStockRequest) (*dto.MovementResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	mov, err := uc.ledger.Adjust(ctx, ledger.AdjustInput{
		MaterialID:     in.MaterialID,
		LotID:          in.LotID,
		Delta:          in.Delta,
		DocumentNumber: in.DocumentNumber,
		Notes:          in.Notes,
		CreatedBy:      userID,
	})
	if err != nil {
		return nil, err
	}
	resp := dto.ToMovementResponse(mov)
	return &resp, nil
}

// Lots lotes del material en orden FIFO.
func (uc *StockUseCase) Lots(ctx context.Context, materialID string) ([]dto.LotResponse, error) {
	lots, err := uc.ledger.Lots(ctx, materialID)
	if err != nil {
		return nil, err
	}
	return dto.ToLotResponses(lots), nil
}

// Lot obtiene un lote.
func (uc *StockUseCase) Lot(ctx context.Context, id string) (*dto.LotResponse, error) {
	lot, err := uc.ledger.Lot(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.ToLotResponse(lot)
	return &resp, nil
}

// Movements consulta el libro con filtros.
func (uc *StockUseCase) Movements(ctx context.Context, q dto.MovementQuery) ([]dto.MovementResponse, error) {
	from, to, err := q.Validate()
	if err != nil {
		return nil, err
	}
	movs, err := uc.ledger.Movements(ctx, repository.MovementFilter{
		MaterialID: q.MaterialID,
		LotID:      q.LotID,
		Type:       q.Type,
		BatchID:    q.BatchID,
		From:       from,
		To:         to,
		Page:       repository.Page{Limit: q.Limit, Offset: q.Offset},

		ServiceOrderID: q.ServiceOrderID,
	})
	if err != nil {
		return nil, err
	}
	return dto.ToMovementResponses(movs), nil
}

// MaterialStock existencia y lotes de un material.
func (uc *StockUseCase) MaterialStock(ctx context.Context, materialID string) (*dto.MaterialStockResponse, error) {
	m, err := uc.repos.Materials.GetByID(ctx, materialID)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, domain.NotFound("material", materialID)
	}
	lots, err := uc.ledger.Lots(ctx, materialID)
	if err != nil {
		return nil, err
	}
	avail, err := uc.ledger.AvailableQuantity(ctx, materialID)
	if err != nil {
		return nil, err
	}
	return &dto.MaterialStockResponse{
		Material:  dto.ToMaterialResponse(m),
		Available: avail,
		LowStock:  m.IsLowStock(avail),
		Lots:      dto.ToLotResponses(lots),
	}, nil
}

// Summary existencia agregada de todos los materiales activos, ordenada por código.
func (uc *StockUseCase) Summary(ctx context.Context) ([]dto.StockSummaryItem, error) {
	if uc.cache != nil {
		if items, ok := uc.cache.GetSummary(ctx); ok {
			return items, nil
		}
	}
	var items []dto.StockSummaryItem
	page := repository.Page{Limit: repository.MaxPageLimit}
	for {
		list, err := uc.repos.Materials.List(ctx, repository.MaterialFilter{ActiveOnly: true, Page: page})
		if err != nil {
			return nil, err
		}
		for _, m := range list {
			item, err := uc.summaryItem(ctx, m)
			if err != nil {
				return nil, err
			}
			items = append(items, item)
		}
		if len(list) < page.Limit {
			break
		}
		page.Offset += page.Limit
	}
	sort.Slice(items, func(i, j int) bool { return items[i].Code < items[j].Code })
	if items == nil {
		items = []dto.StockSummaryItem{}
	}
	if uc.cache != nil {
		uc.cache.SetSummary(ctx, items)
	}
	return items, nil
}

func (uc *StockUseCase) summaryItem(ctx context.Context, m *entity.Material) (dto.StockSummaryItem, error) {
	avail, err := uc.ledger.AvailableQuantity(ctx, m.ID)
	if err != nil {
		return dto.StockSummaryItem{}, err
	}
	item := dto.StockSummaryItem{
		MaterialID: m.ID,
		Code:       m.Code,
		Name:       m.Name,
		Category:   m.Category,
		Unit:       m.Unit,
		Available:  avail,
		MinStock:   m.MinStock,
		LowStock:   m.IsLowStock(avail),
	}
	if item.LowStock {
		item.Shortage = m.MinStock.Sub(avail)
	}
	return item, nil
}

// LowStock materiales activos por debajo de su mínimo, mayor faltante primero.
func (uc *StockUseCase) LowStock(ctx context.Context) ([]dto.StockSummaryItem, error) {
	all, err := uc.Summary(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]dto.StockSummaryItem, 0)
	for _, it := range all {
		if it.LowStock {
			out = append(out, it)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Shortage.GreaterThan(out[j].Shortage) })
	return out, nil
}

// Balance contraste libro vs lotes de un material.
func (uc *StockUseCase) Balance(ctx context.Context, materialID string) (*dto.LedgerBalanceResponse, error) {
	b, err := uc.ledger.Balance(ctx, materialID)
	if err != nil {
		return nil, err
	}
	return &dto.LedgerBalanceResponse{
		MaterialID:    b.MaterialID,
		Received:      b.Received,
		Issued:        b.Issued,
		FromMovements: b.FromMovements,
		OnHand:        b.OnHand,
		Consistent:    b.Consistent,
	}, nil
}
