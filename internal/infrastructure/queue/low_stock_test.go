package queue

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/hibiken/asynq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/pasteops-api/internal/domain/entity"
)

type fakeEnqueuer struct {
	tasks []*asynq.Task
}

func (f *fakeEnqueuer) EnqueueContext(_ context.Context, task *asynq.Task, _ ...asynq.Option) (*asynq.TaskInfo, error) {
	f.tasks = append(f.tasks, task)
	return &asynq.TaskInfo{Type: task.Type()}, nil
}

func TestLowStockPublisher_OnlyOutgoingOncePerMaterial(t *testing.T) {
	enq := &fakeEnqueuer{}
	p := NewLowStockPublisher(enq, "", nil)

	p.Committed(context.Background(), []*entity.StockMovement{
		{MaterialID: "sn", Direction: entity.DirectionOut},
		{MaterialID: "sn", Direction: entity.DirectionOut},
		{MaterialID: "flux", Direction: entity.DirectionIn},
		{MaterialID: "ipa", Direction: entity.DirectionOut},
	})

	require.Len(t, enq.tasks, 2)
	var got []string
	for _, task := range enq.tasks {
		assert.Equal(t, TaskLowStockCheck, task.Type())
		var p LowStockPayload
		require.NoError(t, json.Unmarshal(task.Payload(), &p))
		got = append(got, p.MaterialID)
	}
	assert.Equal(t, []string{"sn", "ipa"}, got)
}
