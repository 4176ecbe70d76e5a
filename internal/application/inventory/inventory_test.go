package inventory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/pasteops-api/internal/application/dto"
	"github.com/jhoicas/pasteops-api/internal/application/inventory"
	"github.com/jhoicas/pasteops-api/internal/application/ledger"
	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
	"github.com/jhoicas/pasteops-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Fixture
// ──────────────────────────────────────────────────────────────────────────────

type fakeCache struct {
	items []dto.StockSummaryItem
	hits  int
	sets  int
}

func (c *fakeCache) GetSummary(context.Context) ([]dto.StockSummaryItem, bool) {
	if c.items == nil {
		return nil, false
	}
	c.hits++
	return c.items, true
}

func (c *fakeCache) SetSummary(_ context.Context, items []dto.StockSummaryItem) {
	c.sets++
	c.items = items
}

type fixture struct {
	repos  repository.Repos
	l      *ledger.Ledger
	stock  *inventory.StockUseCase
	checks *inventory.ReconciliationUseCase
	cache  *fakeCache
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	l := ledger.New(store.Repos(), store)
	cache := &fakeCache{}
	return &fixture{
		repos:  store.Repos(),
		l:      l,
		stock:  inventory.NewStockUseCase(l, store.Repos(), store, cache),
		checks: inventory.NewReconciliationUseCase(store.Repos(), store, l),
		cache:  cache,
	}
}

func (f *fixture) material(t *testing.T, id, code string, minStock *decimal.Decimal) {
	t.Helper()
	require.NoError(t, f.repos.Materials.Create(context.Background(), &entity.Material{
		ID: id, Code: code, Name: code, Category: entity.MaterialCategoryRaw,
		Unit: entity.UnitKG, MinStock: minStock, IsActive: true,
	}))
}

func (f *fixture) receive(t *testing.T, materialID string, qty int64, day int) {
	t.Helper()
	received := time.Date(2026, 1, day, 0, 0, 0, 0, time.UTC)
	_, err := f.stock.Receive(context.Background(), "u1", dto.ReceiveStockRequest{
		MaterialID: materialID, Quantity: decimal.NewFromInt(qty), ReceivedDate: &received,
	})
	require.NoError(t, err)
}

func (f *fixture) available(t *testing.T, materialID string) decimal.Decimal {
	t.Helper()
	q, err := f.l.AvailableQuantity(context.Background(), materialID)
	require.NoError(t, err)
	return q
}

func (f *fixture) adjustments(t *testing.T) []*entity.StockMovement {
	t.Helper()
	movs, err := f.l.Movements(context.Background(), repository.MovementFilter{Type: entity.MovementAdjustment})
	require.NoError(t, err)
	return movs
}

// interleavingRunner ejecuta before una sola vez justo antes de la primera transacción.
type interleavingRunner struct {
	inner  repository.TxRunner
	before func()
	once   sync.Once
}

func (r *interleavingRunner) Run(ctx context.Context, fn func(ctx context.Context, tx repository.Repos) error) error {
	r.once.Do(r.before)
	return r.inner.Run(ctx, fn)
}

func ptr(v int64) *decimal.Decimal {
	d := decimal.NewFromInt(v)
	return &d
}

// ──────────────────────────────────────────────────────────────────────────────
// Stock
// ──────────────────────────────────────────────────────────────────────────────

func (f *fixture) serviceOrder(t *testing.T, id, number, status string) {
	t.Helper()
	require.NoError(t, f.repos.ServiceOrders.Create(context.Background(), &entity.ServiceOrder{
		ID: id, OrderNumber: number, Priority: entity.PriorityMedium, Status: status,
	}))
}

func TestConsume_ServiceOrder(t *testing.T) {
	f := newFixture(t)
	f.material(t, "belt", "BELT-01", nil)
	f.receive(t, "belt", 3, 1)
	f.serviceOrder(t, "so-77", "OS-77", entity.ServiceStatusInProgress)

	movs, err := f.stock.Consume(context.Background(), "u1", dto.ConsumeStockRequest{
		MaterialID: "belt", Quantity: decimal.NewFromInt(2), ServiceOrderID: "so-77",
	})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, "so-77", movs[0].ServiceOrderID)
	assert.Equal(t, "OS-77", movs[0].DocumentNumber)
	assert.Equal(t, entity.DirectionOut, movs[0].Direction)

	_, err = f.stock.Consume(context.Background(), "u1", dto.ConsumeStockRequest{
		MaterialID: "belt", Quantity: decimal.NewFromInt(2), ServiceOrderID: "so-77",
	})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)
	assert.True(t, f.available(t, "belt").Equal(decimal.NewFromInt(1)))
}

func TestConsume_RejectsUnknownOrClosedServiceOrder(t *testing.T) {
	f := newFixture(t)
	f.material(t, "belt", "BELT-01", nil)
	f.receive(t, "belt", 3, 1)
	f.serviceOrder(t, "done", "OS-1", entity.ServiceStatusCompleted)
	f.serviceOrder(t, "void", "OS-2", entity.ServiceStatusCancelled)
	ctx := context.Background()

	_, err := f.stock.Consume(ctx, "u1", dto.ConsumeStockRequest{
		MaterialID: "belt", Quantity: decimal.NewFromInt(1), ServiceOrderID: "nope",
	})
	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "service order", nf.Entity)

	for _, id := range []string{"done", "void"} {
		_, err = f.stock.Consume(ctx, "u1", dto.ConsumeStockRequest{
			MaterialID: "belt", Quantity: decimal.NewFromInt(1), ServiceOrderID: id,
		})
		assert.ErrorIs(t, err, domain.ErrConflict, id)
	}

	_, err = f.stock.Consume(ctx, "u1", dto.ConsumeStockRequest{MaterialID: "belt", Quantity: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	assert.True(t, f.available(t, "belt").Equal(decimal.NewFromInt(3)))
	movs, err := f.l.Movements(ctx, repository.MovementFilter{Type: entity.MovementConsumption})
	require.NoError(t, err)
	assert.Empty(t, movs)
}

func TestSummaryAndLowStock(t *testing.T) {
	f := newFixture(t)
	f.material(t, "a", "A-1", ptr(10))
	f.material(t, "b", "B-1", ptr(50))
	f.material(t, "c", "C-1", nil)
	f.receive(t, "a", 4, 1)
	f.receive(t, "b", 20, 1)
	f.receive(t, "c", 1, 1)

	low, err := f.stock.LowStock(context.Background())
	require.NoError(t, err)
	require.Len(t, low, 2)
	assert.Equal(t, "b", low[0].MaterialID, "mayor faltante primero")
	assert.True(t, low[0].Shortage.Equal(decimal.NewFromInt(30)))
	assert.True(t, low[1].Shortage.Equal(decimal.NewFromInt(6)))
	assert.Equal(t, 1, f.cache.sets)

	all, err := f.stock.Summary(context.Background())
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, 1, f.cache.hits)
}

func TestMaterialStock_UnknownMaterial(t *testing.T) {
	f := newFixture(t)
	_, err := f.stock.MaterialStock(context.Background(), "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestMovements_FilterByType(t *testing.T) {
	f := newFixture(t)
	f.material(t, "a", "A-1", nil)
	f.receive(t, "a", 10, 1)
	_, err := f.stock.Adjust(context.Background(), "u1", dto.AdjustStockRequest{
		MaterialID: "a", Delta: decimal.NewFromInt(-2), Notes: "merma",
	})
	require.NoError(t, err)

	movs, err := f.stock.Movements(context.Background(), dto.MovementQuery{MaterialID: "a", Type: entity.MovementAdjustment})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, ledger.NoteShortage+": merma", movs[0].Notes)

	b, err := f.stock.Balance(context.Background(), "a")
	require.NoError(t, err)
	assert.True(t, b.Consistent)
	assert.True(t, b.OnHand.Equal(decimal.NewFromInt(8)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Conteos físicos
// ──────────────────────────────────────────────────────────────────────────────

func TestCompleteCheck_ShortageWritesOneAdjustment(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.material(t, "a", "A-1", nil)
	f.material(t, "b", "B-1", nil)
	f.receive(t, "a", 30, 1)
	f.receive(t, "a", 20, 2)
	f.receive(t, "b", 5, 1)

	c, err := f.checks.Create(ctx, dto.CreateCheckRequest{CheckNumber: "INV-2026-01"})
	require.NoError(t, err)
	c, err = f.checks.AddItem(ctx, c.ID, dto.AddCheckItemRequest{MaterialID: "a", ActualQty: decimal.NewFromInt(47)})
	require.NoError(t, err)
	c, err = f.checks.AddItem(ctx, c.ID, dto.AddCheckItemRequest{MaterialID: "b", ActualQty: decimal.NewFromInt(5)})
	require.NoError(t, err)
	require.Len(t, c.Items, 2)
	assert.True(t, c.Items[0].SystemQty.Equal(decimal.NewFromInt(50)), "toma la existencia del libro")
	assert.True(t, c.Items[0].Difference.Equal(decimal.NewFromInt(-3)))

	res, err := f.checks.Complete(ctx, "u1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CheckStatusCompleted, res.Check.Status)
	require.NotNil(t, res.Check.CompletedAt)
	require.Len(t, res.Adjustments, 1, "sin ajuste para diferencias en cero")

	adj := res.Adjustments[0]
	assert.Equal(t, entity.MovementAdjustment, adj.Type)
	assert.Equal(t, entity.DirectionOut, adj.Direction)
	assert.True(t, adj.Quantity.Equal(decimal.NewFromInt(3)))
	assert.Equal(t, "INV-2026-01", adj.DocumentNumber)
	assert.NotEmpty(t, adj.LotID, "un solo lote tocado (el más reciente)")

	assert.True(t, f.available(t, "a").Equal(decimal.NewFromInt(47)))

	adjustments := f.adjustments(t)
	require.Len(t, adjustments, 1)

	_, err = f.checks.Complete(ctx, "u1", c.ID)
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
	assert.True(t, f.available(t, "a").Equal(decimal.NewFromInt(47)), "cerrar dos veces no ajusta dos veces")
	assert.Len(t, f.adjustments(t), len(adjustments), "el segundo cierre no escribe movimientos")
}

func TestCompleteCheck_SurplusWithoutLotsCreatesLot(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.material(t, "a", "A-1", nil)

	c, err := f.checks.Create(ctx, dto.CreateCheckRequest{CheckNumber: "INV-2"})
	require.NoError(t, err)
	_, err = f.checks.AddItem(ctx, c.ID, dto.AddCheckItemRequest{MaterialID: "a", ActualQty: decimal.NewFromInt(4)})
	require.NoError(t, err)

	res, err := f.checks.Complete(ctx, "u1", c.ID)
	require.NoError(t, err)
	require.Len(t, res.Adjustments, 1)
	assert.Equal(t, entity.DirectionIn, res.Adjustments[0].Direction)

	lots, err := f.stock.Lots(ctx, "a")
	require.NoError(t, err)
	require.Len(t, lots, 1)
	assert.True(t, lots[0].Quantity.Equal(decimal.NewFromInt(4)))
}

func TestCompleteCheck_EmptyAndUnknown(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	c, err := f.checks.Create(ctx, dto.CreateCheckRequest{CheckNumber: "INV-3"})
	require.NoError(t, err)
	_, err = f.checks.Complete(ctx, "u1", c.ID)
	assert.ErrorIs(t, err, domain.ErrEmptyCheck)

	_, err = f.checks.Complete(ctx, "u1", "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCompleteCheck_ShortageBeyondStockRollsBack(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.material(t, "a", "A-1", nil)
	f.material(t, "b", "B-1", nil)
	f.receive(t, "a", 10, 1)
	f.receive(t, "b", 10, 1)

	c, err := f.checks.Create(ctx, dto.CreateCheckRequest{CheckNumber: "INV-4"})
	require.NoError(t, err)
	_, err = f.checks.AddItem(ctx, c.ID, dto.AddCheckItemRequest{MaterialID: "a", ActualQty: decimal.NewFromInt(12)})
	require.NoError(t, err)
	// Sistema declarado mayor que la existencia real: el faltante no puede aplicarse.
	_, err = f.checks.AddItem(ctx, c.ID, dto.AddCheckItemRequest{MaterialID: "b", SystemQty: ptr(30), ActualQty: decimal.NewFromInt(5)})
	require.NoError(t, err)

	_, err = f.checks.Complete(ctx, "u1", c.ID)
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	assert.True(t, f.available(t, "a").Equal(decimal.NewFromInt(10)), "el sobrante de A no se aplicó")
	got, err := f.checks.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CheckStatusInProgress, got.Status)
}

func TestCheckEditsBlockedAfterCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.material(t, "a", "A-1", nil)
	f.material(t, "b", "B-1", nil)
	f.receive(t, "a", 10, 1)

	c, err := f.checks.Create(ctx, dto.CreateCheckRequest{CheckNumber: "INV-5"})
	require.NoError(t, err)
	c, err = f.checks.AddItem(ctx, c.ID, dto.AddCheckItemRequest{MaterialID: "a", ActualQty: decimal.NewFromInt(10)})
	require.NoError(t, err)

	_, err = f.checks.AddItem(ctx, c.ID, dto.AddCheckItemRequest{MaterialID: "a", ActualQty: decimal.NewFromInt(9)})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	actual := decimal.NewFromInt(8)
	upd, err := f.checks.UpdateItem(ctx, c.ID, c.Items[0].ID, dto.UpdateCheckItemRequest{ActualQty: &actual})
	require.NoError(t, err)
	assert.True(t, upd.Items[0].Difference.Equal(decimal.NewFromInt(-2)))

	_, err = f.checks.Complete(ctx, "u1", c.ID)
	require.NoError(t, err)

	_, err = f.checks.AddItem(ctx, c.ID, dto.AddCheckItemRequest{MaterialID: "b", ActualQty: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
	_, err = f.checks.UpdateItem(ctx, c.ID, c.Items[0].ID, dto.UpdateCheckItemRequest{ActualQty: &actual})
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)
	assert.ErrorIs(t, f.checks.Delete(ctx, c.ID), domain.ErrAlreadyCompleted)
}

func TestAddItem_CompletionWinsOverPendingEdit(t *testing.T) {
	store := memory.NewStore()
	l := ledger.New(store.Repos(), store)
	f := &fixture{repos: store.Repos(), l: l, stock: inventory.NewStockUseCase(l, store.Repos(), store, nil),
		checks: inventory.NewReconciliationUseCase(store.Repos(), store, l)}
	ctx := context.Background()
	f.material(t, "a", "A-1", nil)
	f.material(t, "b", "B-1", nil)
	f.receive(t, "a", 10, 1)
	f.receive(t, "b", 10, 1)

	c, err := f.checks.Create(ctx, dto.CreateCheckRequest{CheckNumber: "INV-7"})
	require.NoError(t, err)
	_, err = f.checks.AddItem(ctx, c.ID, dto.AddCheckItemRequest{MaterialID: "a", ActualQty: decimal.NewFromInt(9)})
	require.NoError(t, err)

	// Otro usuario cierra el conteo mientras esta edición espera su transacción.
	late := inventory.NewReconciliationUseCase(store.Repos(), &interleavingRunner{
		inner: store,
		before: func() {
			_, err := f.checks.Complete(ctx, "u2", c.ID)
			require.NoError(t, err)
		},
	}, l)

	_, err = late.AddItem(ctx, c.ID, dto.AddCheckItemRequest{MaterialID: "b", ActualQty: decimal.NewFromInt(4)})
	assert.ErrorIs(t, err, domain.ErrAlreadyCompleted)

	got, err := f.checks.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CheckStatusCompleted, got.Status)
	require.Len(t, got.Items, 1, "ninguna línea entra en un conteo cerrado")
	assert.True(t, f.available(t, "b").Equal(decimal.NewFromInt(10)))
}

func TestCheckEdits_ConcurrentWithCompletion(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	const n = 8
	for i := 0; i < n; i++ {
		id := fmt.Sprintf("m%d", i)
		f.material(t, id, "C-"+id, nil)
		f.receive(t, id, 10, 1)
	}
	f.material(t, "seed", "SEED", nil)

	c, err := f.checks.Create(ctx, dto.CreateCheckRequest{CheckNumber: "INV-8"})
	require.NoError(t, err)
	_, err = f.checks.AddItem(ctx, c.ID, dto.AddCheckItemRequest{MaterialID: "seed", ActualQty: decimal.Zero})
	require.NoError(t, err)

	added := make([]bool, n)
	var g errgroup.Group
	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			_, err := f.checks.AddItem(ctx, c.ID, dto.AddCheckItemRequest{
				MaterialID: fmt.Sprintf("m%d", i), ActualQty: decimal.NewFromInt(4),
			})
			if errors.Is(err, domain.ErrAlreadyCompleted) {
				return nil
			}
			added[i] = err == nil
			return err
		})
	}
	g.Go(func() error {
		_, err := f.checks.Complete(ctx, "u1", c.ID)
		return err
	})
	require.NoError(t, g.Wait())

	got, err := f.checks.Get(ctx, c.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.CheckStatusCompleted, got.Status)
	assert.Len(t, got.Items, 1+countTrue(added))
	for i := 0; i < n; i++ {
		want := decimal.NewFromInt(10)
		if added[i] {
			want = decimal.NewFromInt(4)
		}
		avail := f.available(t, fmt.Sprintf("m%d", i))
		assert.True(t, avail.Equal(want), "m%d: %s", i, avail)
	}
	assert.Len(t, f.adjustments(t), countTrue(added), "cada línea aceptada recibe su ajuste")
}

func countTrue(v []bool) int {
	n := 0
	for _, b := range v {
		if b {
			n++
		}
	}
	return n
}

func TestDeleteOpenCheck(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	c, err := f.checks.Create(ctx, dto.CreateCheckRequest{CheckNumber: "INV-6"})
	require.NoError(t, err)

	_, err = f.checks.Create(ctx, dto.CreateCheckRequest{CheckNumber: "INV-6"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	require.NoError(t, f.checks.Delete(ctx, c.ID))
	_, err = f.checks.Get(ctx, c.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
