package async

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPoolExecute(t *testing.T) {
	tasks := []Task{
		{Name: "a", Execute: func() (interface{}, error) { return 1, nil }},
		{Name: "b", Execute: func() (interface{}, error) { return "two", nil }},
		{Name: "c", Execute: func() (interface{}, error) { return nil, errors.New("boom") }},
	}

	results := NewPool(2).Execute(context.Background(), tasks)

	require.Len(t, results, 3)
	assert.Equal(t, 1, results["a"].Data)
	assert.NoError(t, results["a"].Err)
	assert.Equal(t, "two", results["b"].Data)
	assert.EqualError(t, results["c"].Err, "boom")
}

func TestPoolBoundsConcurrency(t *testing.T) {
	var running, peak int32

	task := func() (interface{}, error) {
		n := atomic.AddInt32(&running, 1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		atomic.AddInt32(&running, -1)
		return nil, nil
	}

	tasks := make([]Task, 20)
	for i := range tasks {
		tasks[i] = Task{Name: string(rune('a' + i)), Execute: task}
	}

	results := NewPool(3).Execute(context.Background(), tasks)

	assert.Len(t, results, 20)
	assert.LessOrEqual(t, peak, int32(3))
}

func TestPoolCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results := NewPool(1).Execute(ctx, []Task{
		{Name: "a", Execute: func() (interface{}, error) { return 1, nil }},
	})

	// Tasks not queued before cancellation are simply absent.
	assert.LessOrEqual(t, len(results), 1)
}

func TestNewPoolFloorsWorkerCount(t *testing.T) {
	results := NewPool(0).Execute(context.Background(), []Task{
		{Name: "a", Execute: func() (interface{}, error) { return 1, nil }},
	})
	assert.Len(t, results, 1)
}
