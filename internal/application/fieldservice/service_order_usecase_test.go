package fieldservice_test

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pasteops-api/internal/application/dto"
	"github.com/jhoicas/pasteops-api/internal/application/fieldservice"
	"github.com/jhoicas/pasteops-api/internal/application/inventory"
	"github.com/jhoicas/pasteops-api/internal/application/ledger"
	"github.com/jhoicas/pasteops-api/internal/domain"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
	"github.com/jhoicas/pasteops-api/internal/domain/repository"
	"github.com/jhoicas/pasteops-api/internal/infrastructure/memory"
)

type fixture struct {
	repos repository.Repos
	uc    *fieldservice.ServiceOrderUseCase
	stock *inventory.StockUseCase
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	store := memory.NewStore()
	l := ledger.New(store.Repos(), store)
	return &fixture{
		repos: store.Repos(),
		uc:    fieldservice.NewServiceOrderUseCase(store.Repos(), store),
		stock: inventory.NewStockUseCase(l, store.Repos(), store, nil),
	}
}

func (f *fixture) order(t *testing.T, number string) *dto.ServiceOrderResponse {
	t.Helper()
	o, err := f.uc.Create(context.Background(), dto.CreateServiceOrderRequest{
		OrderNumber: number, EquipmentType: "Impresora de stencil", Location: "Línea 2",
	})
	require.NoError(t, err)
	return o
}

func (f *fixture) status(t *testing.T, id, status string) *dto.ServiceOrderResponse {
	t.Helper()
	o, err := f.uc.UpdateStatus(context.Background(), id, dto.StatusRequest{Status: status})
	require.NoError(t, err)
	return o
}

func (f *fixture) stockFor(t *testing.T, materialID string, qty int64) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.repos.Materials.Create(ctx, &entity.Material{
		ID: materialID, Code: materialID, Name: materialID, Category: entity.MaterialCategoryComponent,
		Unit: entity.UnitPCS, IsActive: true,
	}))
	_, err := f.stock.Receive(ctx, "u1", dto.ReceiveStockRequest{MaterialID: materialID, Quantity: decimal.NewFromInt(qty)})
	require.NoError(t, err)
}

func TestCreate_DefaultsAndDuplicateNumber(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, "OS-100")
	assert.Equal(t, entity.ServiceStatusPlanned, o.Status)
	assert.Equal(t, entity.PriorityMedium, o.Priority)
	assert.Empty(t, o.Assignments)

	_, err := f.uc.Create(context.Background(), dto.CreateServiceOrderRequest{OrderNumber: "OS-100"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	_, err = f.uc.Create(context.Background(), dto.CreateServiceOrderRequest{OrderNumber: "OS-101", Priority: "SOON"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)

	start := time.Date(2026, 3, 2, 8, 0, 0, 0, time.UTC)
	end := start.Add(-time.Hour)
	_, err = f.uc.Create(context.Background(), dto.CreateServiceOrderRequest{
		OrderNumber: "OS-102", PlannedStart: &start, PlannedEnd: &end,
	})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestUpdateStatus_Transitions(t *testing.T) {
	tests := []struct {
		name    string
		path    []string
		to      string
		wantErr error
	}{
		{name: "planned a completed", to: entity.ServiceStatusCompleted, wantErr: domain.ErrConflict},
		{name: "planned a in progress", to: entity.ServiceStatusInProgress},
		{name: "on hold vuelve a assigned", path: []string{entity.ServiceStatusOnHold}, to: entity.ServiceStatusAssigned},
		{name: "in progress a completed", path: []string{entity.ServiceStatusInProgress}, to: entity.ServiceStatusCompleted},
		{name: "completed es final", path: []string{entity.ServiceStatusInProgress, entity.ServiceStatusCompleted},
			to: entity.ServiceStatusInProgress, wantErr: domain.ErrConflict},
		{name: "cancelled es final", path: []string{entity.ServiceStatusCancelled},
			to: entity.ServiceStatusPlanned, wantErr: domain.ErrConflict},
		{name: "estado desconocido", to: "DONE", wantErr: domain.ErrInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			o := f.order(t, "OS-1")
			for _, s := range tt.path {
				f.status(t, o.ID, s)
			}
			got, err := f.uc.UpdateStatus(context.Background(), o.ID, dto.StatusRequest{Status: tt.to})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.to, got.Status)
		})
	}
}

func TestUpdateStatus_RecordsActualDates(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, "OS-1")

	started := f.status(t, o.ID, entity.ServiceStatusInProgress)
	require.NotNil(t, started.ActualStart)
	assert.Nil(t, started.ActualEnd)

	f.status(t, o.ID, entity.ServiceStatusOnHold)
	resumed := f.status(t, o.ID, entity.ServiceStatusInProgress)
	assert.True(t, started.ActualStart.Equal(*resumed.ActualStart))

	done := f.status(t, o.ID, entity.ServiceStatusCompleted)
	require.NotNil(t, done.ActualEnd)
	assert.False(t, done.ActualEnd.Before(*done.ActualStart))
}

func TestUpdate_ClosedOrderRejected(t *testing.T) {
	f := newFixture(t)
	o := f.order(t, "OS-1")
	loc := "Línea 4"
	got, err := f.uc.Update(context.Background(), o.ID, dto.UpdateServiceOrderRequest{Location: &loc})
	require.NoError(t, err)
	assert.Equal(t, "Línea 4", got.Location)
	assert.Equal(t, "Impresora de stencil", got.EquipmentType)

	f.status(t, o.ID, entity.ServiceStatusCancelled)
	_, err = f.uc.Update(context.Background(), o.ID, dto.UpdateServiceOrderRequest{Location: &loc})
	assert.ErrorIs(t, err, domain.ErrConflict)

	_, err = f.uc.Update(context.Background(), "nope", dto.UpdateServiceOrderRequest{Location: &loc})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestAssignEngineer(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.order(t, "OS-1")

	got, err := f.uc.AssignEngineer(ctx, o.ID, dto.AssignEngineerRequest{EngineerID: "eng-1"})
	require.NoError(t, err)
	assert.Equal(t, entity.ServiceStatusAssigned, got.Status)
	require.Len(t, got.Assignments, 1)

	_, err = f.uc.AssignEngineer(ctx, o.ID, dto.AssignEngineerRequest{EngineerID: "eng-1"})
	assert.ErrorIs(t, err, domain.ErrDuplicate)

	got, err = f.uc.AssignEngineer(ctx, o.ID, dto.AssignEngineerRequest{EngineerID: "eng-2"})
	require.NoError(t, err)
	assert.Len(t, got.Assignments, 2)

	require.NoError(t, f.uc.RemoveEngineer(ctx, o.ID, got.Assignments[0].ID))
	assert.ErrorIs(t, f.uc.RemoveEngineer(ctx, o.ID, got.Assignments[0].ID), domain.ErrNotFound)
	detail, err := f.uc.Get(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, detail.Assignments, 1)
	assert.Equal(t, "eng-2", detail.Assignments[0].EngineerID)

	f.status(t, o.ID, entity.ServiceStatusCancelled)
	_, err = f.uc.AssignEngineer(ctx, o.ID, dto.AssignEngineerRequest{EngineerID: "eng-3"})
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestAddWorkLog(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	o := f.order(t, "OS-1")
	start := time.Date(2026, 3, 2, 8, 30, 0, 0, time.UTC)
	in := dto.AddWorkLogRequest{StartTime: start, Description: "Calibración de cabezal"}

	_, err := f.uc.AddWorkLog(ctx, "eng-1", o.ID, in)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = f.uc.AssignEngineer(ctx, o.ID, dto.AssignEngineerRequest{EngineerID: "eng-1"})
	require.NoError(t, err)
	w, err := f.uc.AddWorkLog(ctx, "eng-1", o.ID, in)
	require.NoError(t, err)
	assert.Equal(t, entity.WorkLogInProgress, w.Status)
	assert.Equal(t, time.Date(2026, 3, 2, 0, 0, 0, 0, time.UTC), w.WorkDate)

	detail, err := f.uc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.ServiceStatusInProgress, detail.Status)
	require.NotNil(t, detail.ActualStart)
	assert.True(t, detail.ActualStart.Equal(start))
	assert.Len(t, detail.WorkLogs, 1)

	f.status(t, o.ID, entity.ServiceStatusCompleted)
	_, err = f.uc.AddWorkLog(ctx, "eng-1", o.ID, in)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestGet_IncludesServiceMovements(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stockFor(t, "squeegee", 5)
	f.stockFor(t, "wipe", 100)
	o := f.order(t, "OS-1")
	other := f.order(t, "OS-2")

	_, err := f.stock.Consume(ctx, "eng-1", dto.ConsumeStockRequest{MaterialID: "squeegee", Quantity: decimal.NewFromInt(2), ServiceOrderID: o.ID})
	require.NoError(t, err)
	_, err = f.stock.Consume(ctx, "eng-1", dto.ConsumeStockRequest{MaterialID: "wipe", Quantity: decimal.NewFromInt(10), ServiceOrderID: o.ID})
	require.NoError(t, err)
	_, err = f.stock.Consume(ctx, "eng-1", dto.ConsumeStockRequest{MaterialID: "wipe", Quantity: decimal.NewFromInt(1), ServiceOrderID: other.ID})
	require.NoError(t, err)

	detail, err := f.uc.Get(ctx, o.ID)
	require.NoError(t, err)
	require.Len(t, detail.Movements, 2)
	for _, m := range detail.Movements {
		assert.Equal(t, o.ID, m.ServiceOrderID)
		assert.Equal(t, "OS-1", m.DocumentNumber)
		assert.Equal(t, entity.MovementConsumption, m.Type)
	}

	_, err = f.uc.Get(ctx, "nope")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestConsume_AfterCompletionRejected(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stockFor(t, "squeegee", 5)
	o := f.order(t, "OS-1")
	f.status(t, o.ID, entity.ServiceStatusInProgress)
	f.status(t, o.ID, entity.ServiceStatusCompleted)

	_, err := f.stock.Consume(ctx, "eng-1", dto.ConsumeStockRequest{MaterialID: "squeegee", Quantity: decimal.NewFromInt(1), ServiceOrderID: o.ID})
	assert.ErrorIs(t, err, domain.ErrConflict)
	detail, err := f.uc.Get(ctx, o.ID)
	require.NoError(t, err)
	assert.Empty(t, detail.Movements)
}

func TestDelete(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.stockFor(t, "squeegee", 5)
	used := f.order(t, "OS-1")
	unused := f.order(t, "OS-2")
	_, err := f.stock.Consume(ctx, "eng-1", dto.ConsumeStockRequest{MaterialID: "squeegee", Quantity: decimal.NewFromInt(1), ServiceOrderID: used.ID})
	require.NoError(t, err)

	assert.ErrorIs(t, f.uc.Delete(ctx, used.ID), domain.ErrConflict)
	require.NoError(t, f.uc.Delete(ctx, unused.ID))
	assert.ErrorIs(t, f.uc.Delete(ctx, unused.ID), domain.ErrNotFound)
}

func TestList_FiltersByStatusAndPriority(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.order(t, "OS-1")
	_, err := f.uc.Create(ctx, dto.CreateServiceOrderRequest{OrderNumber: "OS-2", Priority: entity.PriorityUrgent})
	require.NoError(t, err)
	o3 := f.order(t, "OS-3")
	f.status(t, o3.ID, entity.ServiceStatusOnHold)

	all, err := f.uc.List(ctx, repository.ServiceOrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	urgent, err := f.uc.List(ctx, repository.ServiceOrderFilter{Priority: entity.PriorityUrgent})
	require.NoError(t, err)
	require.Len(t, urgent, 1)
	assert.Equal(t, "OS-2", urgent[0].OrderNumber)

	held, err := f.uc.List(ctx, repository.ServiceOrderFilter{Status: entity.ServiceStatusOnHold})
	require.NoError(t, err)
	require.Len(t, held, 1)
	assert.Equal(t, "OS-3", held[0].OrderNumber)

	_, err = f.uc.List(ctx, repository.ServiceOrderFilter{Status: "DONE"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}
