package ledger_test

import (
	"context"
	"math/rand"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pasteops-api/internal/application/ledger"
	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
	"github.com/jhoicas/pasteops-api/internal/infrastructure/memory"
)

// ──────────────────────────────────────────────────────────────────────────────
// Helpers
// ──────────────────────────────────────────────────────────────────────────────

type recordingObserver struct {
	committed []*entity.StockMovement
	rejected  []*domain.InsufficientStockError
}

func (o *recordingObserver) Committed(_ context.Context, movs []*entity.StockMovement) {
	o.committed = append(o.committed, movs...)
}

func (o *recordingObserver) Rejected(_ context.Context, err *domain.InsufficientStockError) {
	o.rejected = append(o.rejected, err)
}

type fixture struct {
	store *memory.Store
	repos repository.Repos
	l     *ledger.Ledger
	obs   *recordingObserver
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	obs := &recordingObserver{}
	return &fixture{
		store: store,
		repos: store.Repos(),
		l:     ledger.New(store.Repos(), store, obs),
		obs:   obs,
	}
}

func (f *fixture) material(t *testing.T, id, code string) *entity.Material {
	t.Helper()
	m := &entity.Material{
		ID: id, Code: code, Name: code,
		Category: entity.MaterialCategoryRaw, Unit: entity.UnitKG, IsActive: true,
	}
	require.NoError(t, f.repos.Materials.Create(context.Background(), m))
	return m
}

func (f *fixture) receive(t *testing.T, materialID string, qty int64, received time.Time) *entity.StockLot {
	t.Helper()
	lot, err := f.l.Receive(context.Background(), ledger.ReceiveInput{
		MaterialID:   materialID,
		Quantity:     decimal.NewFromInt(qty),
		ReceivedDate: received,
	})
	require.NoError(t, err)
	return lot
}

func day(d int) time.Time { return time.Date(2026, 1, d, 0, 0, 0, 0, time.UTC) }

func dec(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func assertConsistent(t *testing.T, f *fixture, materialID string) {
	t.Helper()
	b, err := f.l.Balance(context.Background(), materialID)
	require.NoError(t, err)
	assert.True(t, b.Consistent, "libro %s vs lotes %s", b.FromMovements, b.OnHand)

	lots, err := f.l.Lots(context.Background(), materialID)
	require.NoError(t, err)
	for _, l := range lots {
		assert.False(t, l.Quantity.IsNegative(), "lote %s negativo", l.ID)
	}
}

// ──────────────────────────────────────────────────────────────────────────────
// Receive / AvailableQuantity
// ──────────────────────────────────────────────────────────────────────────────

func TestReceive_CreatesLotAndReceipt(t *testing.T) {
	f := newFixture(t)
	f.material(t, "m1", "SN63")

	lot := f.receive(t, "m1", 25, day(3))
	assert.Equal(t, entity.UnitKG, lot.Unit)

	avail, err := f.l.AvailableQuantity(context.Background(), "m1")
	require.NoError(t, err)
	assert.True(t, avail.Equal(dec(25)))

	movs, err := f.l.Movements(context.Background(), repository.MovementFilter{MaterialID: "m1"})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, entity.MovementReceipt, movs[0].Type)
	assert.Equal(t, lot.ID, movs[0].LotID)
	assert.Len(t, f.obs.committed, 1)
}

func TestReceive_Validation(t *testing.T) {
	f := newFixture(t)
	f.material(t, "m1", "SN63")
	ctx := context.Background()

	_, err := f.l.Receive(ctx, ledger.ReceiveInput{MaterialID: "nope", Quantity: dec(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.l.Receive(ctx, ledger.ReceiveInput{MaterialID: "m1", Quantity: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.l.Receive(ctx, ledger.ReceiveInput{MaterialID: "m1", Quantity: dec(1), Unit: entity.UnitPCS})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.l.Receive(ctx, ledger.ReceiveInput{MaterialID: "m1", Quantity: decimal.RequireFromString("0.1666665")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestConsumeAndAdjust_RejectUnstorableScale(t *testing.T) {
	f := newFixture(t)
	f.material(t, "m1", "SN63")
	f.receive(t, "m1", 1, day(1))
	ctx := context.Background()

	_, err := f.l.ConsumeFIFO(ctx, ledger.ConsumeInput{MaterialID: "m1", Quantity: decimal.RequireFromString("0.1666665")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	_, err = f.l.Adjust(ctx, ledger.AdjustInput{MaterialID: "m1", Delta: decimal.RequireFromString("-0.0000001")})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	avail, err := f.l.AvailableQuantity(ctx, "m1")
	require.NoError(t, err)
	assert.True(t, avail.Equal(dec(1)))
	assertConsistent(t, f, "m1")
}

func TestAvailableQuantity_UnknownMaterial(t *testing.T) {
	f := newFixture(t)
	_, err := f.l.AvailableQuantity(context.Background(), "missing")

	var nf *domain.NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "material", nf.Entity)
}

// ──────────────────────────────────────────────────────────────────────────────
// ConsumeFIFO
// ──────────────────────────────────────────────────────────────────────────────

func TestConsumeFIFO_OldestLotFirst(t *testing.T) {
	f := newFixture(t)
	f.material(t, "m1", "SN63")
	l2 := f.receive(t, "m1", 10, day(5))
	l1 := f.receive(t, "m1", 10, day(1))

	movs, err := f.l.ConsumeFIFO(context.Background(), ledger.ConsumeInput{
		MaterialID: "m1", Quantity: dec(15), BatchID: "B-1",
	})
	require.NoError(t, err)
	require.Len(t, movs, 2)

	assert.Equal(t, l1.ID, movs[0].LotID)
	assert.True(t, movs[0].Quantity.Equal(dec(10)))
	assert.Equal(t, l2.ID, movs[1].LotID)
	assert.True(t, movs[1].Quantity.Equal(dec(5)))
	for _, m := range movs {
		assert.Equal(t, entity.MovementConsumption, m.Type)
		assert.Equal(t, "B-1", m.BatchID)
	}

	got1, err := f.l.Lot(context.Background(), l1.ID)
	require.NoError(t, err)
	got2, err := f.l.Lot(context.Background(), l2.ID)
	require.NoError(t, err)
	assert.True(t, got1.Quantity.IsZero())
	assert.True(t, got2.Quantity.Equal(dec(5)))

	// El libro conserva el orden de escritura.
	logged, err := f.l.Movements(context.Background(), repository.MovementFilter{
		MaterialID: "m1", Type: entity.MovementConsumption,
	})
	require.NoError(t, err)
	require.Len(t, logged, 2)
	assert.Equal(t, l1.ID, logged[0].LotID)
	assert.Equal(t, l2.ID, logged[1].LotID)
	assertConsistent(t, f, "m1")
}

func TestConsumeFIFO_AllOrNothing(t *testing.T) {
	f := newFixture(t)
	f.material(t, "m1", "SN63")
	f.receive(t, "m1", 50, day(1))
	f.receive(t, "m1", 30, day(2))

	_, err := f.l.ConsumeFIFO(context.Background(), ledger.ConsumeInput{MaterialID: "m1", Quantity: dec(100)})
	require.ErrorIs(t, err, domain.ErrInsufficientStock)

	var stockErr *domain.InsufficientStockError
	require.ErrorAs(t, err, &stockErr)
	assert.Equal(t, "m1", stockErr.MaterialID)
	assert.Equal(t, "SN63", stockErr.MaterialCode)
	assert.True(t, stockErr.Required.Equal(dec(100)))
	assert.True(t, stockErr.Available.Equal(dec(80)))

	avail, err := f.l.AvailableQuantity(context.Background(), "m1")
	require.NoError(t, err)
	assert.True(t, avail.Equal(dec(80)), "ningún lote debe cambiar")

	consumed, err := f.l.Movements(context.Background(), repository.MovementFilter{Type: entity.MovementConsumption})
	require.NoError(t, err)
	assert.Empty(t, consumed)
	assert.Len(t, f.obs.rejected, 1)
}

func TestConsumeFIFO_ServiceOrderReference(t *testing.T) {
	f := newFixture(t)
	f.material(t, "m1", "FUSE-5A")
	f.receive(t, "m1", 4, day(1))
	require.NoError(t, f.repos.ServiceOrders.Create(context.Background(), &entity.ServiceOrder{
		ID: "so-77", OrderNumber: "SO-77", Priority: entity.PriorityMedium, Status: entity.ServiceStatusInProgress,
	}))

	movs, err := f.l.ConsumeFIFO(context.Background(), ledger.ConsumeInput{
		MaterialID: "m1", Quantity: dec(1), ServiceOrderID: "so-77", DocumentNumber: "SO-77",
	})
	require.NoError(t, err)
	require.Len(t, movs, 1)
	assert.Equal(t, "so-77", movs[0].ServiceOrderID)
	assert.Empty(t, movs[0].BatchID)

	linked, err := f.l.Movements(context.Background(), repository.MovementFilter{ServiceOrderID: "so-77"})
	require.NoError(t, err)
	assert.Len(t, linked, 1)
}

func TestConsumeFIFO_UnknownServiceOrderRollsBack(t *testing.T) {
	f := newFixture(t)
	f.material(t, "m1", "FUSE-5A")
	f.receive(t, "m1", 4, day(1))

	_, err := f.l.ConsumeFIFO(context.Background(), ledger.ConsumeInput{
		MaterialID: "m1", Quantity: dec(1), ServiceOrderID: "missing",
	})
	assert.ErrorIs(t, err, domain.ErrNotFound)
	avail, err := f.l.AvailableQuantity(context.Background(), "m1")
	require.NoError(t, err)
	assert.True(t, avail.Equal(dec(4)))
}

// ──────────────────────────────────────────────────────────────────────────────
// Adjust
// ──────────────────────────────────────────────────────────────────────────────

func TestAdjust_ShortageOnNewestLot(t *testing.T) {
	f := newFixture(t)
	f.material(t, "m1", "SN63")
	old := f.receive(t, "m1", 30, day(1))
	newest := f.receive(t, "m1", 20, day(4))

	mov, err := f.l.Adjust(context.Background(), ledger.AdjustInput{
		MaterialID: "m1", Delta: dec(-3), DocumentNumber: "INV-1",
	})
	require.NoError(t, err)
	assert.Equal(t, entity.MovementAdjustment, mov.Type)
	assert.Equal(t, entity.DirectionOut, mov.Direction)
	assert.True(t, mov.Quantity.Equal(dec(3)))
	assert.Equal(t, newest.ID, mov.LotID)
	assert.Contains(t, mov.Notes, ledger.NoteShortage)

	got, _ := f.l.Lot(context.Background(), newest.ID)
	assert.True(t, got.Quantity.Equal(dec(17)))
	got, _ = f.l.Lot(context.Background(), old.ID)
	assert.True(t, got.Quantity.Equal(dec(30)))
	assertConsistent(t, f, "m1")
}

func TestAdjust_SurplusWithoutLotsCreatesLot(t *testing.T) {
	f := newFixture(t)
	f.material(t, "m1", "SN63")

	mov, err := f.l.Adjust(context.Background(), ledger.AdjustInput{MaterialID: "m1", Delta: dec(7)})
	require.NoError(t, err)
	assert.Equal(t, entity.DirectionIn, mov.Direction)
	assert.Contains(t, mov.Notes, ledger.NoteSurplus)
	require.NotEmpty(t, mov.LotID)

	avail, err := f.l.AvailableQuantity(context.Background(), "m1")
	require.NoError(t, err)
	assert.True(t, avail.Equal(dec(7)))
	assertConsistent(t, f, "m1")
}

func TestAdjust_ExplicitLotCannotGoNegative(t *testing.T) {
	f := newFixture(t)
	f.material(t, "m1", "SN63")
	lot := f.receive(t, "m1", 2, day(1))

	_, err := f.l.Adjust(context.Background(), ledger.AdjustInput{MaterialID: "m1", LotID: lot.ID, Delta: dec(-5)})
	assert.ErrorIs(t, err, domain.ErrInsufficientStock)

	_, err = f.l.Adjust(context.Background(), ledger.AdjustInput{MaterialID: "m1", LotID: "other", Delta: dec(1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = f.l.Adjust(context.Background(), ledger.AdjustInput{MaterialID: "m1", Delta: decimal.Zero})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
	assertConsistent(t, f, "m1")
}

// ──────────────────────────────────────────────────────────────────────────────
// Conservación
// ──────────────────────────────────────────────────────────────────────────────

func TestLedger_ConservationUnderMixedOperations(t *testing.T) {
	f := newFixture(t)
	f.material(t, "m1", "SN63")
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 200; i++ {
		qty := dec(int64(rng.Intn(20) + 1))
		switch rng.Intn(3) {
		case 0:
			_, err := f.l.Receive(ctx, ledger.ReceiveInput{MaterialID: "m1", Quantity: qty, ReceivedDate: day(1 + rng.Intn(28))})
			require.NoError(t, err)
		case 1:
			_, err := f.l.ConsumeFIFO(ctx, ledger.ConsumeInput{MaterialID: "m1", Quantity: qty})
			if err != nil {
				require.ErrorIs(t, err, domain.ErrInsufficientStock)
			}
		case 2:
			if rng.Intn(2) == 0 {
				qty = qty.Neg()
			}
			_, err := f.l.Adjust(ctx, ledger.AdjustInput{MaterialID: "m1", Delta: qty})
			if err != nil {
				require.ErrorIs(t, err, domain.ErrInsufficientStock)
			}
		}
		assertConsistent(t, f, "m1")
	}
}

func TestMovements_InvalidFilter(t *testing.T) {
	f := newFixture(t)
	_, err := f.l.Movements(context.Background(), repository.MovementFilter{Type: "LOAN"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	from, to := day(5), day(1)
	_, err = f.l.Movements(context.Background(), repository.MovementFilter{From: &from, To: &to})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
