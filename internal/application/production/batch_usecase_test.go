package production_test

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/pasteops-api/internal/application/dto"
	"github.com/jhoicas/pasteops-api/internal/application/ledger"
	"github.com/jhoicas/pasteops-api/internal/application/production"
	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
	"github.com/jhoicas/pasteops-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type fixture struct {
	repos   repository.Repos
	l       *ledger.Ledger
	batches *production.BatchUseCase
	orders  *production.OrderUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	l := ledger.New(store.Repos(), store)
	return &fixture{
		repos:   store.Repos(),
		l:       l,
		batches: production.NewBatchUseCase(store.Repos(), store, l, nil),
		orders:  production.NewOrderUseCase(store.Repos().Orders, store.Repos().Recipes),
	}
}

func (f *fixture) material(t *testing.T, id, code string) {
	t.Helper()
	require.NoError(t, f.repos.Materials.Create(context.Background(), &entity.Material{
		ID: id, Code: code, Name: code,
		Category: entity.MaterialCategoryRaw, Unit: entity.UnitKG, IsActive: true,
	}))
}

func (f *fixture) receive(t *testing.T, materialID string, qty string, day int) {
	t.Helper()
	_, err := f.l.Receive(context.Background(), ledger.ReceiveInput{
		MaterialID:   materialID,
		Quantity:     decimal.RequireFromString(qty),
		ReceivedDate: time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}

func (f *fixture) recipe(t *testing.T, id string, active bool, ingredients map[string]string) *entity.Recipe {
	t.Helper()
	r := &entity.Recipe{ID: id, Code: "RC-" + id, Name: id, Version: "1", IsActive: active}
	for mat, qty := range ingredients {
		r.Ingredients = append(r.Ingredients, entity.RecipeIngredient{
			ID: id + "-" + mat, RecipeID: id, MaterialID: mat,
			Quantity: decimal.RequireFromString(qty), Unit: entity.UnitKG,
		})
	}
	lo, hi := decimal.NewFromInt(150), decimal.NewFromInt(200)
	r.Parameters = []entity.RecipeParameter{{ID: id + "-visc", RecipeID: id, Name: "viscosity", Value: "180", MinValue: &lo, MaxValue: &hi}}
	require.NoError(t, f.repos.Recipes.Create(context.Background(), r))
	return r
}

func (f *fixture) available(t *testing.T, materialID string) decimal.Decimal {
	t.Helper()
	q, err := f.l.AvailableQuantity(context.Background(), materialID)
	require.NoError(t, err)
	return q
}

func batchReq(number, recipeID string, qty int64) dto.CreateBatchRequest {
	return dto.CreateBatchRequest{BatchNumber: number, RecipeID: recipeID, ProducedQty: decimal.NewFromInt(qty)}
}

// ──────────────────────────────────────────────────────────────────────────────
// CreateBatch
// ──────────────────────────────────────────────────────────────────────────────

func TestCreateBatch_ConsumesFIFOAndRecordsUsage(t *testing.T) {
	f := newFixture(t)
	f.material(t, "sn", "SN63")
	f.material(t, "flux", "FLX")
	f.receive(t, "sn", "40", 1)
	f.receive(t, "sn", "40", 2)
	f.receive(t, "flux", "10", 1)
	f.recipe(t, "paste", true, map[string]string{"sn": "0.6", "flux": "0.05"})

	req := batchReq("B-001", "paste", 100)
	req.Parameters = []dto.BatchParameterInput{{Name: "viscosity", Value: "210"}}
	b, err := f.batches.Create(context.Background(), "u1", req)
	require.NoError(t, err)

	assert.Equal(t, entity.BatchStatusInProgress, b.Status)
	assert.Equal(t, "u1", b.ProducedBy)
	require.Len(t, b.MaterialUsage, 2)
	assert.Equal(t, "flux", b.MaterialUsage[0].MaterialID, "consumos en orden de material")
	assert.True(t, b.MaterialUsage[1].Quantity.Equal(decimal.NewFromInt(60)))

	// 60 kg de SN: 40 del lote del día 1 y 20 del día 2, más 5 kg de flux.
	require.Len(t, b.Movements, 3)
	for _, m := range b.Movements {
		assert.Equal(t, entity.MovementConsumption, m.Type)
		assert.Equal(t, b.ID, m.BatchID)
		assert.Equal(t, "B-001", m.DocumentNumber)
	}
	assert.True(t, f.available(t, "sn").Equal(decimal.NewFromInt(20)))
	assert.True(t, f.available(t, "flux").Equal(decimal.NewFromInt(5)))

	require.Len(t, b.Parameters, 1)
	assert.False(t, b.Parameters[0].IsInRange, "210 fuera de 150..200")
}

func TestCreateBatch_FractionalDemandKeepsLedgerConsistent(t *testing.T) {
	f := newFixture(t)
	f.material(t, "flux", "FLX")
	f.receive(t, "flux", "1", 1)
	f.recipe(t, "paste", true, map[string]string{"flux": "0.333333"})

	req := dto.CreateBatchRequest{BatchNumber: "B-F1", RecipeID: "paste", ProducedQty: decimal.RequireFromString("0.5")}
	b, err := f.batches.Create(context.Background(), "u1", req)
	require.NoError(t, err)

	require.Len(t, b.Movements, 1)
	assert.Equal(t, "0.166667", b.Movements[0].Quantity.String())
	assert.Equal(t, "0.833333", f.available(t, "flux").String())

	bal, err := f.l.Balance(context.Background(), "flux")
	require.NoError(t, err)
	assert.True(t, bal.Consistent, "libro %s vs lotes %s", bal.FromMovements, bal.OnHand)
}

func TestCreateBatch_InsufficientStockLeavesNoTrace(t *testing.T) {
	f := newFixture(t)
	f.material(t, "sn", "SN63")
	f.material(t, "flux", "FLX")
	f.receive(t, "sn", "100", 1)
	f.receive(t, "flux", "1", 1)
	f.recipe(t, "paste", true, map[string]string{"sn": "0.6", "flux": "0.05"})

	_, err := f.batches.Create(context.Background(), "u1", batchReq("B-002", "paste", 100))
	require.Error(t, err)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "flux", stockErr.MaterialID)
	assert.Equal(t, "FLX", stockErr.MaterialCode)
	assert.True(t, stockErr.Required.Equal(decimal.NewFromInt(5)))
	assert.True(t, stockErr.Available.Equal(decimal.NewFromInt(1)))

	assert.True(t, f.available(t, "sn").Equal(decimal.NewFromInt(100)), "SN no debe tocarse")
	b, err := f.repos.Batches.GetByNumber(context.Background(), "B-002")
	require.NoError(t, err)
	assert.Nil(t, b)
}

func TestCreateBatch_InactiveRecipe(t *testing.T) {
	f := newFixture(t)
	f.material(t, "sn", "SN63")
	f.receive(t, "sn", "100", 1)
	f.recipe(t, "old", false, map[string]string{"sn": "0.6"})

	_, err := f.batches.Create(context.Background(), "u1", batchReq("B-003", "old", 10))
	assert.ErrorIs(t, err, domain.ErrInactiveRecipe)
	assert.True(t, f.available(t, "sn").Equal(decimal.NewFromInt(100)))
}

func TestCreateBatch_DuplicateNumber(t *testing.T) {
	f := newFixture(t)
	f.material(t, "sn", "SN63")
	f.receive(t, "sn", "100", 1)
	f.recipe(t, "paste", true, map[string]string{"sn": "0.1"})

	_, err := f.batches.Create(context.Background(), "u1", batchReq("B-004", "paste", 10))
	require.NoError(t, err)
	_, err = f.batches.Create(context.Background(), "u1", batchReq("B-004", "paste", 10))
	assert.ErrorIs(t, err, domain.ErrDuplicate)
	assert.True(t, f.available(t, "sn").Equal(decimal.NewFromInt(99)))
}

func TestCreateBatch_UnknownRecipe(t *testing.T) {
	f := newFixture(t)
	_, err := f.batches.Create(context.Background(), "u1", batchReq("B-005", "nope", 10))
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCreateBatch_ConcurrentRequestsNeverOversell(t *testing.T) {
	f := newFixture(t)
	f.material(t, "sn", "SN63")
	f.receive(t, "sn", "100", 1)
	f.recipe(t, "paste", true, map[string]string{"sn": "0.6"})

	var ok, short atomic.Int32
	g, ctx := errgroup.WithContext(context.Background())
	for _, n := range []string{"B-A", "B-B"} {
		g.Go(func() error {
			_, err := f.batches.Create(ctx, "u1", batchReq(n, "paste", 100))
			switch {
			case err == nil:
				ok.Add(1)
			case errors.Is(err, domain.ErrInsufficientStock):
				short.Add(1)
			default:
				return err
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Equal(t, int32(1), ok.Load())
	assert.Equal(t, int32(1), short.Load())
	assert.True(t, f.available(t, "sn").Equal(decimal.NewFromInt(40)))
}

func TestCreateBatch_StartsPlannedOrder(t *testing.T) {
	f := newFixture(t)
	f.material(t, "sn", "SN63")
	f.receive(t, "sn", "100", 1)
	f.recipe(t, "paste", true, map[string]string{"sn": "0.5"})

	o, err := f.orders.Create(context.Background(), dto.CreateOrderRequest{
		OrderNumber: "OP-1", RecipeID: "paste", PlannedQty: decimal.NewFromInt(50),
		Unit: entity.UnitKG, PlannedDate: time.Date(2026, 2, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusPlanned, o.Status)

	req := batchReq("B-006", "paste", 10)
	req.OrderID = o.ID
	b, err := f.batches.Create(context.Background(), "u1", req)
	require.NoError(t, err)
	assert.Equal(t, o.ID, b.OrderID)
	assert.Equal(t, entity.UnitKG, b.Unit)

	got, err := f.orders.Get(context.Background(), o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusInProgress, got.Status)
}

// ──────────────────────────────────────────────────────────────────────────────
// Estado, parámetros y vista previa
// ──────────────────────────────────────────────────────────────────────────────

func TestUpdateBatchStatus_Transitions(t *testing.T) {
	f := newFixture(t)
	f.material(t, "sn", "SN63")
	f.receive(t, "sn", "100", 1)
	f.recipe(t, "paste", true, map[string]string{"sn": "0.1"})
	b, err := f.batches.Create(context.Background(), "u1", batchReq("B-007", "paste", 10))
	require.NoError(t, err)

	_, err = f.batches.UpdateStatus(context.Background(), b.ID, dto.StatusRequest{Status: "LOST"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	done, err := f.batches.UpdateStatus(context.Background(), b.ID, dto.StatusRequest{Status: entity.BatchStatusCompleted})
	require.NoError(t, err)
	assert.Equal(t, entity.BatchStatusCompleted, done.Status)

	_, err = f.batches.UpdateStatus(context.Background(), b.ID, dto.StatusRequest{Status: entity.BatchStatusDefective})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAddBatchParameter(t *testing.T) {
	f := newFixture(t)
	f.material(t, "sn", "SN63")
	f.receive(t, "sn", "100", 1)
	f.recipe(t, "paste", true, map[string]string{"sn": "0.1"})
	b, err := f.batches.Create(context.Background(), "u1", batchReq("B-008", "paste", 10))
	require.NoError(t, err)

	in := dto.AddBatchParameterRequest{BatchParameterInput: dto.BatchParameterInput{Name: "viscosity", Value: "175"}}
	got, err := f.batches.AddParameter(context.Background(), b.ID, in)
	require.NoError(t, err)
	require.Len(t, got.Parameters, 1)
	assert.True(t, got.Parameters[0].IsInRange)

	_, err = f.batches.AddParameter(context.Background(), b.ID, in)
	assert.ErrorIs(t, err, domain.ErrDuplicate)
}

func TestRequirements_PreviewHasNoSideEffects(t *testing.T) {
	f := newFixture(t)
	f.material(t, "sn", "SN63")
	f.material(t, "flux", "FLX")
	f.receive(t, "sn", "100", 1)
	f.recipe(t, "paste", true, map[string]string{"sn": "0.6", "flux": "0.05"})

	resp, err := f.batches.Requirements(context.Background(), "paste", decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.False(t, resp.Feasible)
	require.Len(t, resp.Lines, 2)
	for _, line := range resp.Lines {
		switch line.MaterialID {
		case "sn":
			assert.True(t, line.Sufficient)
			assert.True(t, line.Required.Equal(decimal.NewFromInt(60)))
		case "flux":
			assert.False(t, line.Sufficient)
			assert.Equal(t, "FLX", line.Code)
		}
	}
	assert.True(t, f.available(t, "sn").Equal(decimal.NewFromInt(100)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Órdenes
// ──────────────────────────────────────────────────────────────────────────────

func TestOrder_CreateAndTransitions(t *testing.T) {
	f := newFixture(t)
	f.material(t, "sn", "SN63")
	f.recipe(t, "paste", true, map[string]string{"sn": "0.5"})
	f.recipe(t, "old", false, map[string]string{"sn": "0.5"})
	ctx := context.Background()
	req := dto.CreateOrderRequest{
		OrderNumber: "OP-2", RecipeID: "paste", PlannedQty: decimal.NewFromInt(10),
		Unit: entity.UnitKG, PlannedDate: time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC),
	}

	o, err := f.orders.Create(ctx, req)
	require.NoError(t, err)

	_, err = f.orders.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	req.OrderNumber, req.RecipeID = "OP-3", "old"
	_, err = f.orders.Create(ctx, req)
	assert.ErrorIs(t, err, domain.ErrInactiveRecipe)

	_, err = f.orders.UpdateStatus(ctx, o.ID, dto.StatusRequest{Status: entity.OrderStatusCompleted})
	assert.ErrorIs(t, err, domain.ErrConflict, "PLANNED no pasa directo a COMPLETED")

	c, err := f.orders.UpdateStatus(ctx, o.ID, dto.StatusRequest{Status: entity.OrderStatusCancelled})
	require.NoError(t, err)
	assert.Equal(t, entity.OrderStatusCancelled, c.Status)

	list, err := f.orders.List(ctx, repository.OrderFilter{Status: entity.OrderStatusCancelled})
	require.NoError(t, err)
	assert.Len(t, list, 1)
}
