package inventory

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/jhoicas/pasteops-api/internal/application/dto"
	"github.com/jhoicas/pasteops-api/internal/application/ledger"
	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

// ReconciliationUseCase conteos físicos de inventario y su cierre contra el libro.
type ReconciliationUseCase struct {
	repos    repository.Repos
	txRunner repository.TxRunner
	ledger   *ledger.Ledger
	now      func() time.Time
}

// NewReconciliationUseCase construye el caso de uso.
func NewReconciliationUseCase(repos repository.Repos, txRunner repository.TxRunner, l *ledger.Ledger) *ReconciliationUseCase {
	return &ReconciliationUseCase{repos: repos, txRunner: txRunner, ledger: l, now: time.Now}
}

// Create abre un conteo IN_PROGRESS.
func (uc *ReconciliationUseCase) Create(ctx context.Context, in dto.CreateCheckRequest) (*dto.CheckResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	existing, err := uc.repos.Checks.GetByNumber(ctx, in.CheckNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("conteo %s: %w", in.CheckNumber, domain.ErrDuplicate)
	}
	now := uc.now()
	c := &entity.InventoryCheck{
		ID:          uuid.New().String(),
		CheckNumber: in.CheckNumber,
		CheckDate:   now,
		Status:      entity.CheckStatusInProgress,
		Notes:       in.Notes,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if in.CheckDate != nil {
		c.CheckDate = *in.CheckDate
	}
	if err := uc.repos.Checks.Create(ctx, c); err != nil {
		return nil, err
	}
	resp := dto.ToCheckResponse(c)
	return &resp, nil
}

// Get obtiene el conteo con sus ítems.
func (uc *ReconciliationUseCase) Get(ctx context.Context, id string) (*dto.CheckResponse, error) {
	c, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.ToCheckResponse(c)
	return &resp, nil
}

func (uc *ReconciliationUseCase) load(ctx context.Context, id string) (*entity.InventoryCheck, error) {
	c, err := uc.repos.Checks.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("check", id)
	}
	return c, nil
}

// List lista conteos.
func (uc *ReconciliationUseCase) List(ctx context.Context, f repository.CheckFilter) ([]dto.CheckResponse, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	list, err := uc.repos.Checks.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.CheckResponse, 0, len(list))
	for _, c := range list {
		out = append(out, dto.ToCheckResponse(c))
	}
	return out, nil
}

// AddItem agrega la línea de un material. Sin system_qty se toma la existencia actual.
func (uc *ReconciliationUseCase) AddItem(ctx context.Context, checkID string, in dto.AddCheckItemRequest) (*dto.CheckResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Repos) error {
		c, err := lockOpenCheck(ctx, tx, checkID)
		if err != nil {
			return err
		}
		if c.HasMaterial(in.MaterialID) {
			return fmt.Errorf("material %s ya contado: %w", in.MaterialID, domain.ErrDuplicate)
		}
		m, err := tx.Materials.GetByID(ctx, in.MaterialID)
		if err != nil {
			return err
		}
		if m == nil {
			return domain.NotFound("material", in.MaterialID)
		}
		it := &entity.InventoryCheckItem{
			ID:         uuid.New().String(),
			CheckID:    c.ID,
			MaterialID: m.ID,
			ActualQty:  in.ActualQty,
			Unit:       m.Unit,
			Notes:      in.Notes,
		}
		if in.SystemQty != nil {
			it.SystemQty = *in.SystemQty
		} else if it.SystemQty, err = tx.Lots.SumByMaterial(ctx, m.ID); err != nil {
			return err
		}
		it.Recompute()
		return tx.Checks.AddItem(ctx, it)
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, checkID)
}

// UpdateItem corrige cantidades o notas de una línea de un conteo abierto.
func (uc *ReconciliationUseCase) UpdateItem(ctx context.Context, checkID, itemID string, in dto.UpdateCheckItemRequest) (*dto.CheckResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Repos) error {
		c, err := lockOpenCheck(ctx, tx, checkID)
		if err != nil {
			return err
		}
		var it *entity.InventoryCheckItem
		for i := range c.Items {
			if c.Items[i].ID == itemID {
				it = &c.Items[i]
				break
			}
		}
		if it == nil {
			return domain.NotFound("check item", itemID)
		}
		if in.SystemQty != nil {
			it.SystemQty = *in.SystemQty
		}
		if in.ActualQty != nil {
			it.ActualQty = *in.ActualQty
		}
		if in.Notes != nil {
			it.Notes = *in.Notes
		}
		it.Recompute()
		return tx.Checks.UpdateItem(ctx, it)
	})
	if err != nil {
		return nil, err
	}
	return uc.Get(ctx, checkID)
}

// Delete elimina un conteo que aún no se ha cerrado.
func (uc *ReconciliationUseCase) Delete(ctx context.Context, id string) error {
	return uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Repos) error {
		if _, err := lockOpenCheck(ctx, tx, id); err != nil {
			return err
		}
		return tx.Checks.Delete(ctx, id)
	})
}

// lockOpenCheck bloquea la cabecera del conteo y exige que siga IN_PROGRESS.
// Serializa las ediciones con Complete.
func lockOpenCheck(ctx context.Context, tx repository.Repos, id string) (*entity.InventoryCheck, error) {
	c, err := tx.Checks.GetForUpdate(ctx, id)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nil, domain.NotFound("check", id)
	}
	if c.IsCompleted() {
		return nil, domain.ErrAlreadyCompleted
	}
	return c, nil
}

// Complete cierra el conteo: por cada línea con diferencia escribe un ajuste con el
// número del conteo como documento, y marca el conteo COMPLETED. Todo o nada.
func (uc *ReconciliationUseCase) Complete(ctx context.Context, userID, id string) (*dto.CompleteCheckResponse, error) {
	var (
		check *entity.InventoryCheck
		movs  []*entity.StockMovement
	)
	err := uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Repos) error {
		movs = nil
		c, err := lockOpenCheck(ctx, tx, id)
		if err != nil {
			return err
		}
		if len(c.Items) == 0 {
			return domain.ErrEmptyCheck
		}
		for _, it := range c.Items {
			if it.Difference.IsZero() {
				continue
			}
			mov, err := uc.ledger.AdjustInTx(ctx, tx, ledger.AdjustInput{
				MaterialID:     it.MaterialID,
				Delta:          it.Difference,
				DocumentNumber: c.CheckNumber,
				Notes:          it.Notes,
				CreatedBy:      userID,
			})
			if err != nil {
				return err
			}
			movs = append(movs, mov)
		}
		at := uc.now()
		if err := tx.Checks.Complete(ctx, c.ID, at); err != nil {
			return err
		}
		c.Status = entity.CheckStatusCompleted
		c.CompletedAt = &at
		check = c
		return nil
	})
	if err != nil {
		uc.ledger.Rejected(ctx, err)
		return nil, err
	}
	uc.ledger.Publish(ctx, movs)
	return &dto.CompleteCheckResponse{
		Check:       dto.ToCheckResponse(check),
		Adjustments: dto.ToMovementResponses(movs),
	}, nil
}
