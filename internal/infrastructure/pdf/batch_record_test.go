package pdf

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pasteops-api/internal/application/production"
	"github.com/jhoicas/pasteops-api/internal/domain/entity"
)

func sampleRecord() production.BatchRecord {
	lo, hi := decimal.NewFromInt(150), decimal.NewFromInt(200)
	return production.BatchRecord{
		Recipe: &entity.Recipe{
			ID: "r1", Code: "SAC305-T4", Name: "Pasta SAC305 tipo 4", Version: "2",
			Parameters: []entity.RecipeParameter{{Name: "viscosity", MinValue: &lo, MaxValue: &hi}},
		},
		Order: &entity.ProductionOrder{OrderNumber: "OP-7"},
		Batch: &entity.ProductionBatch{
			ID:             "b1",
			BatchNumber:    "B-2026-001",
			RecipeID:       "r1",
			ProducedQty:    decimal.NewFromInt(100),
			Unit:           entity.UnitKG,
			ProductionDate: time.Date(2026, 3, 4, 0, 0, 0, 0, time.UTC),
			ProducedBy:     "u1",
			Status:         entity.BatchStatusCompleted,
			MaterialUsage:  []entity.MaterialUsage{{MaterialID: "sn", Quantity: decimal.NewFromInt(60), Unit: entity.UnitKG}},
			Parameters: []entity.BatchParameter{
				{Name: "viscosity", Value: "210", Unit: "Pa.s", IsInRange: false},
			},
			Movements: []*entity.StockMovement{
				{Type: entity.MovementConsumption, MaterialID: "sn", LotID: "lot-1", Quantity: decimal.NewFromInt(40), Unit: entity.UnitKG},
				{Type: entity.MovementConsumption, MaterialID: "sn", LotID: "lot-2", Quantity: decimal.NewFromInt(20), Unit: entity.UnitKG},
			},
		},
		Materials: map[string]*entity.Material{"sn": {ID: "sn", Code: "SN96", Name: "Estaño SAC305"}},
	}
}

func TestBatchRecordGenerator_Render(t *testing.T) {
	out, err := NewBatchRecordGenerator("PasteOps").RenderBatchRecord(sampleRecord())
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))
}

func TestBatchRecordGenerator_RequiresBatchAndRecipe(t *testing.T) {
	_, err := NewBatchRecordGenerator("").RenderBatchRecord(production.BatchRecord{})
	assert.Error(t, err)
}

func TestRangeLabel(t *testing.T) {
	lo, hi := decimal.NewFromInt(1), decimal.NewFromInt(3)
	assert.Equal(t, "1 - 3", rangeLabel(entity.RecipeParameter{MinValue: &lo, MaxValue: &hi}))
	assert.Equal(t, ">= 1", rangeLabel(entity.RecipeParameter{MinValue: &lo}))
	assert.Equal(t, "<= 3", rangeLabel(entity.RecipeParameter{MaxValue: &hi}))
	assert.Equal(t, "", rangeLabel(entity.RecipeParameter{}))
}
