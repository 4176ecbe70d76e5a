package production

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/jhoicas/pasteops-api/internal/application/dto"
	"github.com/jhoicas/pasteops-api/internal/application/ledger"
	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
)

var batchTransitions = map[string][]string{
	entity.BatchStatusInProgress: {entity.BatchStatusCompleted, entity.BatchStatusDefective},
}

// BatchUseCase orquesta la creación de lotes de producción: valida, calcula la demanda
// de materiales con la receta y consume todo en una sola transacción.
type BatchUseCase struct {
	repos    repository.Repos
	txRunner repository.TxRunner
	ledger   *ledger.Ledger
	renderer RecordRenderer
	now      func() time.Time
}

// NewBatchUseCase construye el orquestador. renderer puede ser nil si no se exponen hojas PDF.
func NewBatchUseCase(repos repository.Repos, txRunner repository.TxRunner, l *ledger.Ledger, renderer RecordRenderer) *BatchUseCase {
	return &BatchUseCase{repos: repos, txRunner: txRunner, ledger: l, renderer: renderer, now: time.Now}
}

// Create crea el lote y registra sus consumos FIFO. Si cualquier material no alcanza,
// no queda nada escrito y se devuelve *domain.InsufficientStockError.
func (uc *BatchUseCase) Create(ctx context.Context, userID string, in dto.CreateBatchRequest) (*dto.BatchResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}

	existing, err := uc.repos.Batches.GetByNumber(ctx, in.BatchNumber)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, fmt.Errorf("lote %s: %w", in.BatchNumber, domain.ErrDuplicate)
	}
	recipe, err := uc.repos.Recipes.GetByID(ctx, in.RecipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, domain.NotFound("recipe", in.RecipeID)
	}
	var order *entity.ProductionOrder
	if in.OrderID != "" {
		if order, err = uc.repos.Orders.GetByID(ctx, in.OrderID); err != nil {
			return nil, err
		}
		if order == nil {
			return nil, domain.NotFound("order", in.OrderID)
		}
		if order.Status == entity.OrderStatusCancelled || order.Status == entity.OrderStatusCompleted {
			return nil, fmt.Errorf("orden %s en estado %s: %w", order.OrderNumber, order.Status, domain.ErrConflict)
		}
	}

	demands, err := RequiredMaterials(recipe, in.ProducedQty)
	if err != nil {
		return nil, err
	}
	if err := uc.precheck(ctx, demands); err != nil {
		uc.ledger.Rejected(ctx, err)
		return nil, err
	}

	batch := uc.newBatch(userID, in, order)
	// Orden global de bloqueo: dos lotes con recetas distintas nunca se esperan en ciclo.
	sort.SliceStable(demands, func(i, j int) bool { return demands[i].MaterialID < demands[j].MaterialID })

	var movs []*entity.StockMovement
	err = uc.txRunner.Run(ctx, func(ctx context.Context, tx repository.Repos) error {
		movs = nil
		if err := tx.Batches.Create(ctx, batch); err != nil {
			return err
		}
		for _, d := range demands {
			consumed, err := uc.ledger.ConsumeFIFOInTx(ctx, tx, ledger.ConsumeInput{
				MaterialID:     d.MaterialID,
				Quantity:       d.Quantity,
				BatchID:        batch.ID,
				DocumentNumber: batch.BatchNumber,
				Notes:          "Consumo de producción " + batch.BatchNumber,
				CreatedBy:      userID,
			})
			if err != nil {
				return err
			}
			movs = append(movs, consumed...)
			unit := d.Unit
			if unit == "" && len(consumed) > 0 {
				unit = consumed[0].Unit
			}
			if err := tx.Batches.AddUsage(ctx, &entity.MaterialUsage{
				ID:         uuid.New().String(),
				BatchID:    batch.ID,
				MaterialID: d.MaterialID,
				Quantity:   d.Quantity,
				Unit:       unit,
			}); err != nil {
				return err
			}
		}
		for _, p := range in.Parameters {
			if err := tx.Batches.AddParameter(ctx, newBatchParameter(recipe, batch.ID, p)); err != nil {
				return err
			}
		}
		if order != nil && order.Status == entity.OrderStatusPlanned {
			return tx.Orders.UpdateStatus(ctx, order.ID, entity.OrderStatusInProgress)
		}
		return nil
	})
	if err != nil {
		uc.ledger.Rejected(ctx, err)
		return nil, err
	}
	uc.ledger.Publish(ctx, movs)
	return uc.Get(ctx, batch.ID)
}

// precheck verificación previa, sin bloqueo, de la existencia de cada material.
// La verificación definitiva ocurre bajo bloqueo dentro de la transacción.
func (uc *BatchUseCase) precheck(ctx context.Context, demands []MaterialDemand) error {
	for _, d := range demands {
		avail, err := uc.ledger.AvailableQuantity(ctx, d.MaterialID)
		if err != nil {
			return err
		}
		if avail.LessThan(d.Quantity) {
			stockErr := &domain.InsufficientStockError{
				MaterialID: d.MaterialID,
				Required:   d.Quantity,
				Available:  avail,
				Unit:       d.Unit,
			}
			if m, _ := uc.repos.Materials.GetByID(ctx, d.MaterialID); m != nil {
				stockErr.MaterialCode = m.Code
				stockErr.Unit = m.Unit
			}
			return stockErr
		}
	}
	return nil
}

func (uc *BatchUseCase) newBatch(userID string, in dto.CreateBatchRequest, order *entity.ProductionOrder) *entity.ProductionBatch {
	now := uc.now()
	produced := now
	if in.ProductionDate != nil {
		produced = *in.ProductionDate
	}
	unit := in.Unit
	if unit == "" && order != nil {
		unit = order.Unit
	}
	if unit == "" {
		unit = entity.UnitKG
	}
	b := &entity.ProductionBatch{
		ID:             uuid.New().String(),
		BatchNumber:    in.BatchNumber,
		RecipeID:       in.RecipeID,
		ProducedQty:    in.ProducedQty,
		Unit:           unit,
		ProductionDate: produced,
		ProducedBy:     userID,
		Status:         entity.BatchStatusInProgress,
		Notes:          in.Notes,
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	if order != nil {
		b.OrderID = order.ID
	}
	return b
}

func newBatchParameter(recipe *entity.Recipe, batchID string, in dto.BatchParameterInput) *entity.BatchParameter {
	inRange := true
	if in.IsInRange != nil {
		inRange = *in.IsInRange
	} else if rp, ok := recipe.Parameter(in.Name); ok {
		inRange = rp.InRange(in.Value)
	}
	unit := in.Unit
	if unit == "" {
		if rp, ok := recipe.Parameter(in.Name); ok {
			unit = rp.Unit
		}
	}
	return &entity.BatchParameter{
		ID:        uuid.New().String(),
		BatchID:   batchID,
		Name:      in.Name,
		Value:     in.Value,
		Unit:      unit,
		IsInRange: inRange,
	}
}

// Get devuelve el lote con consumos, parámetros y movimientos del libro.
func (uc *BatchUseCase) Get(ctx context.Context, id string) (*dto.BatchResponse, error) {
	b, err := uc.load(ctx, id)
	if err != nil {
		return nil, err
	}
	resp := dto.ToBatchResponse(b)
	return &resp, nil
}

func (uc *BatchUseCase) load(ctx context.Context, id string) (*entity.ProductionBatch, error) {
	b, err := uc.repos.Batches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.NotFound("batch", id)
	}
	movs, err := uc.repos.Movements.List(ctx, repository.MovementFilter{
		BatchID: id,
		Page:    repository.Page{Limit: repository.MaxPageLimit},
	})
	if err != nil {
		return nil, err
	}
	b.Movements = movs
	return b, nil
}

// List lista lotes de producción.
func (uc *BatchUseCase) List(ctx context.Context, f repository.BatchFilter) ([]dto.BatchResponse, error) {
	if err := f.Validate(); err != nil {
		return nil, err
	}
	list, err := uc.repos.Batches.List(ctx, f)
	if err != nil {
		return nil, err
	}
	out := make([]dto.BatchResponse, 0, len(list))
	for _, b := range list {
		out = append(out, dto.ToBatchResponse(b))
	}
	return out, nil
}

// UpdateStatus cierra un lote en curso como COMPLETED o DEFECTIVE.
func (uc *BatchUseCase) UpdateStatus(ctx context.Context, id string, in dto.StatusRequest) (*dto.BatchResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	if !entity.ValidBatchStatus(in.Status) {
		return nil, fmt.Errorf("estado %q: %w", in.Status, domain.ErrInvalidInput)
	}
	b, err := uc.repos.Batches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.NotFound("batch", id)
	}
	if !allowed(batchTransitions, b.Status, in.Status) {
		return nil, fmt.Errorf("lote %s de %s a %s: %w", b.BatchNumber, b.Status, in.Status, domain.ErrConflict)
	}
	if err := uc.repos.Batches.UpdateStatus(ctx, id, in.Status); err != nil {
		return nil, err
	}
	return uc.Get(ctx, id)
}

// AddParameter registra un parámetro medido después de crear el lote.
func (uc *BatchUseCase) AddParameter(ctx context.Context, id string, in dto.AddBatchParameterRequest) (*dto.BatchResponse, error) {
	if err := in.Validate(); err != nil {
		return nil, err
	}
	b, err := uc.repos.Batches.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if b == nil {
		return nil, domain.NotFound("batch", id)
	}
	for _, p := range b.Parameters {
		if p.Name == in.Name {
			return nil, fmt.Errorf("parámetro %s: %w", in.Name, domain.ErrDuplicate)
		}
	}
	recipe, err := uc.repos.Recipes.GetByID(ctx, b.RecipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, domain.NotFound("recipe", b.RecipeID)
	}
	if err := uc.repos.Batches.AddParameter(ctx, newBatchParameter(recipe, id, in.BatchParameterInput)); err != nil {
		return nil, err
	}
	return uc.Get(ctx, id)
}

// Requirements calcula, sin efectos, los materiales que exigiría producir qty con la receta
// y si la existencia actual alcanza.
func (uc *BatchUseCase) Requirements(ctx context.Context, recipeID string, qty decimal.Decimal) (*dto.RequirementsResponse, error) {
	recipe, err := uc.repos.Recipes.GetByID(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	if recipe == nil {
		return nil, domain.NotFound("recipe", recipeID)
	}
	demands, err := RequiredMaterials(recipe, qty)
	if err != nil {
		return nil, err
	}
	resp := &dto.RequirementsResponse{RecipeID: recipe.ID, ProducedQty: qty, Feasible: true}
	for _, d := range demands {
		avail, err := uc.ledger.AvailableQuantity(ctx, d.MaterialID)
		if err != nil {
			return nil, err
		}
		line := dto.RequirementLine{
			MaterialID: d.MaterialID,
			Required:   d.Quantity,
			Available:  avail,
			Unit:       d.Unit,
			Sufficient: avail.GreaterThanOrEqual(d.Quantity),
		}
		if m, _ := uc.repos.Materials.GetByID(ctx, d.MaterialID); m != nil {
			line.Code = m.Code
		}
		resp.Feasible = resp.Feasible && line.Sufficient
		resp.Lines = append(resp.Lines, line)
	}
	return resp, nil
}

// Record genera la hoja de registro PDF del lote.
func (uc *BatchUseCase) Record(ctx context.Context, id string) ([]byte, string, error) {
	if uc.renderer == nil {
		return nil, "", fmt.Errorf("hoja de registro no disponible: %w", domain.ErrConflict)
	}
	b, err := uc.load(ctx, id)
	if err != nil {
		return nil, "", err
	}
	recipe, err := uc.repos.Recipes.GetByID(ctx, b.RecipeID)
	if err != nil {
		return nil, "", err
	}
	if recipe == nil {
		return nil, "", domain.NotFound("recipe", b.RecipeID)
	}
	rec := BatchRecord{Batch: b, Recipe: recipe, Materials: map[string]*entity.Material{}}
	if b.OrderID != "" {
		if rec.Order, err = uc.repos.Orders.GetByID(ctx, b.OrderID); err != nil {
			return nil, "", err
		}
	}
	for _, u := range b.MaterialUsage {
		m, err := uc.repos.Materials.GetByID(ctx, u.MaterialID)
		if err != nil {
			return nil, "", err
		}
		if m != nil {
			rec.Materials[m.ID] = m
		}
	}
	pdf, err := uc.renderer.RenderBatchRecord(rec)
	if err != nil {
		return nil, "", fmt.Errorf("generar hoja de lote %s: %w", b.BatchNumber, err)
	}
	return pdf, "lote-" + b.BatchNumber + ".pdf", nil
}
