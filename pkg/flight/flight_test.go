package flight

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

func TestDoCachesSuccess(t *testing.T) {
	c := NewCache[string, int]()
	var calls atomic.Int32
	work := func(context.Context) (int, error) {
		calls.Add(1)
		return 7, nil
	}

	for range 3 {
		v, err := c.Do(context.Background(), "k", work)
		require.NoError(t, err)
		assert.Equal(t, 7, v)
	}
	assert.EqualValues(t, 1, calls.Load())

	c.Forget("k")
	_, err := c.Do(context.Background(), "k", work)
	require.NoError(t, err)
	assert.EqualValues(t, 2, calls.Load())
}

func TestDoDoesNotCacheErrors(t *testing.T) {
	c := NewCache[string, int]()
	var calls atomic.Int32
	boom := errors.New("boom")
	work := func(context.Context) (int, error) {
		calls.Add(1)
		return 0, boom
	}

	_, err := c.Do(context.Background(), "k", work)
	assert.ErrorIs(t, err, boom)
	_, err = c.Do(context.Background(), "k", work)
	assert.ErrorIs(t, err, boom)
	assert.EqualValues(t, 2, calls.Load())
}

func TestDoCoalescesConcurrentCalls(t *testing.T) {
	c := NewCache[string, int]()
	var calls atomic.Int32
	release := make(chan struct{})
	started := make(chan struct{})
	work := func(context.Context) (int, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return 42, nil
	}

	var wg sync.WaitGroup
	results := make([]int, 5)
	wg.Add(1)
	go func() {
		defer wg.Done()
		results[0], _ = c.Do(context.Background(), "k", work)
	}()
	<-started
	for i := 1; i < len(results); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i], _ = c.Do(context.Background(), "k", work)
		}()
	}
	time.Sleep(20 * time.Millisecond)
	close(release)
	wg.Wait()

	assert.EqualValues(t, 1, calls.Load())
	for _, r := range results {
		assert.Equal(t, 42, r)
	}
}

func TestJoinerHonoursContext(t *testing.T) {
	c := NewCache[string, int]()
	release := make(chan struct{})
	started := make(chan struct{})
	go func() {
		_, _ = c.Do(context.Background(), "k", func(context.Context) (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()
	<-started
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Do(ctx, "k", func(context.Context) (int, error) { return 2, nil })
	assert.ErrorIs(t, err, context.Canceled)
}

func TestWorkOutlivesTheCallerThatStartedIt(t *testing.T) {
	c := NewCache[string, int]()
	release := make(chan struct{})
	started := make(chan struct{})
	work := func(ctx context.Context) (int, error) {
		close(started)
		select {
		case <-release:
			return 3, nil
		case <-ctx.Done():
			return 0, ctx.Err()
		}
	}

	leaderCtx, cancelLeader := context.WithCancel(context.Background())
	leaderErr := make(chan error, 1)
	go func() {
		_, err := c.Do(leaderCtx, "k", work)
		leaderErr <- err
	}()
	<-started

	joined := make(chan int, 1)
	go func() {
		v, err := c.Do(context.Background(), "k", work)
		assert.NoError(t, err)
		joined <- v
	}()
	require.Eventually(t, func() bool {
		c.pmu.Lock()
		defer c.pmu.Unlock()
		return c.pending["k"] != nil && c.pending["k"].waiters == 2
	}, time.Second, 5*time.Millisecond)

	cancelLeader()
	assert.ErrorIs(t, <-leaderErr, context.Canceled)

	close(release)
	select {
	case v := <-joined:
		assert.Equal(t, 3, v)
	case <-time.After(time.Second):
		t.Fatal("joiner never received the result")
	}
}

func TestWorkCancelledWhenEveryCallerLeaves(t *testing.T) {
	c := NewCache[string, int]()
	started := make(chan struct{})
	stopped := make(chan error, 1)
	work := func(ctx context.Context) (int, error) {
		close(started)
		<-ctx.Done()
		stopped <- ctx.Err()
		return 0, ctx.Err()
	}

	ctx, cancel := context.WithCancel(context.Background())
	go func() {
		<-started
		cancel()
	}()
	_, err := c.Do(ctx, "k", work)
	assert.ErrorIs(t, err, context.Canceled)

	select {
	case err := <-stopped:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(time.Second):
		t.Fatal("work kept running with nobody waiting")
	}

	v, err := c.Do(context.Background(), "k", func(context.Context) (int, error) { return 9, nil })
	require.NoError(t, err)
	assert.Equal(t, 9, v)
}
