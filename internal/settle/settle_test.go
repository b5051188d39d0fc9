package settle

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAll_Empty(t *testing.T) {
	results := All[int](context.Background(), 0, nil)
	assert.Empty(t, results)
}

func TestAll_KeepsOrderAndIsolatesFailures(t *testing.T) {
	boom := errors.New("boom")
	tasks := []Task[int]{
		func(context.Context) (int, error) { return 1, nil },
		func(context.Context) (int, error) { return 0, boom },
		func(ctx context.Context) (int, error) {
			time.Sleep(10 * time.Millisecond)
			return 3, ctx.Err()
		},
	}

	results := All(context.Background(), 0, tasks)

	require.Len(t, results, 3)
	assert.Equal(t, Result[int]{Value: 1}, results[0])
	assert.ErrorIs(t, results[1].Err, boom)
	assert.Equal(t, Result[int]{Value: 3}, results[2], "a failed sibling must not cancel the others")
	assert.Equal(t, 1, Failed(results))
}

func TestAll_Unbounded_StartsEverythingTogether(t *testing.T) {
	const n = 6
	var started sync.WaitGroup
	started.Add(n)
	release := make(chan struct{})

	tasks := make([]Task[int], n)
	for i := range tasks {
		i := i
		tasks[i] = func(context.Context) (int, error) {
			started.Done()
			<-release
			return i, nil
		}
	}

	done := make(chan []Result[int])
	go func() { done <- All(context.Background(), 0, tasks) }()

	// Every task must be running before any is allowed to finish.
	started.Wait()
	close(release)

	results := <-done
	for i, r := range results {
		assert.Equal(t, i, r.Value)
	}
}

func TestAll_LimitBoundsConcurrency(t *testing.T) {
	const limit = 2
	var running, peak atomic.Int32

	tasks := make([]Task[struct{}], 8)
	for i := range tasks {
		tasks[i] = func(context.Context) (struct{}, error) {
			now := running.Add(1)
			for {
				old := peak.Load()
				if now <= old || peak.CompareAndSwap(old, now) {
					break
				}
			}
			time.Sleep(5 * time.Millisecond)
			running.Add(-1)
			return struct{}{}, nil
		}
	}

	results := All(context.Background(), limit, tasks)

	assert.Len(t, results, 8)
	assert.LessOrEqual(t, peak.Load(), int32(limit))
	assert.Zero(t, Failed(results))
}
