package concurrent

import (
	"context"
	"sort"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRun(t *testing.T) {
	jobs := make([]int, 100)
	for i := range jobs {
		jobs[i] = i
	}

	got, err := Run[int, int](context.Background(), 4, jobs, func(job int) int {
		return job * job
	})
	require.NoError(t, err)
	require.Len(t, got, len(jobs))

	sort.Ints(got)
	for i, v := range got {
		assert.Equal(t, i*i, v)
	}
}

func TestRunNoJobs(t *testing.T) {
	got, err := Run[int, int](context.Background(), 4, nil, func(job int) int { return job })
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	got, err := Run[int, int](ctx, 2, []int{1, 2, 3}, func(job int) int { return job })
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, got)
}

func TestWorkerPoolZeroWorkers(t *testing.T) {
	wp := NewWorkerPool[string, int](0, 2)
	wp.Start(context.Background(), func(job string) int { return len(job) })
	wp.AddJob("ab")
	wp.AddJob("abcd")
	wp.Close()
	wp.Wait()

	total := 0
	for res := range wp.CollectResults() {
		total += res
	}
	assert.Equal(t, 6, total)
}
