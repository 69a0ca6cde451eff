package cart

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutor_RunsInSubmissionOrder(t *testing.T) {
	e := newExecutor(4)
	defer e.close()

	var (
		mu    sync.Mutex
		order []int
	)
	futures := make([]*Future[int], 0, 50)
	for i := 0; i < 50; i++ {
		i := i
		futures = append(futures, submit(e, func() (int, error) {
			mu.Lock()
			order = append(order, i)
			mu.Unlock()
			return i, nil
		}))
	}

	for i, f := range futures {
		got, err := f.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}
	for i, v := range order {
		assert.Equal(t, i, v)
	}
}

func TestExecutor_CloseDrainsQueuedJobs(t *testing.T) {
	e := newExecutor(8)
	release := make(chan struct{})

	first := submit(e, func() (struct{}, error) {
		<-release
		return struct{}{}, nil
	})
	queued := make([]*Future[int], 5)
	for i := range queued {
		i := i
		queued[i] = submit(e, func() (int, error) { return i, nil })
	}

	closed := make(chan struct{})
	go func() {
		e.close()
		close(closed)
	}()
	close(release)
	<-closed

	_, err := first.Await(context.Background())
	require.NoError(t, err)
	for i, f := range queued {
		select {
		case <-f.Done():
		default:
			t.Fatalf("job %d not run before close returned", i)
		}
		got, err := f.Await(context.Background())
		require.NoError(t, err)
		assert.Equal(t, i, got)
	}
}

func TestExecutor_SubmitAfterClose(t *testing.T) {
	e := newExecutor(1)
	e.close()

	ran := false
	_, err := submit(e, func() (int, error) {
		ran = true
		return 1, nil
	}).Await(context.Background())
	assert.ErrorIs(t, err, ErrClosed)
	assert.False(t, ran)
}

func TestExecutor_PanicResolvesWithError(t *testing.T) {
	e := newExecutor(1)
	defer e.close()

	_, err := submit(e, func() (int, error) { panic("boom") }).Await(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")

	got, err := submit(e, func() (int, error) { return 7, nil }).Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 7, got)
}

func TestFuture_AwaitHonoursContextButJobCompletes(t *testing.T) {
	e := newExecutor(1)
	defer e.close()

	release := make(chan struct{})
	finished := make(chan struct{})
	f := submit(e, func() (int, error) {
		<-release
		close(finished)
		return 1, nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	_, err := f.Await(ctx)
	assert.True(t, errors.Is(err, context.DeadlineExceeded))

	close(release)
	<-finished
	got, err := f.Await(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, got)
}
