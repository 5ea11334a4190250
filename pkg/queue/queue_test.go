package queue

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"veoprompt/pkg/inference"
	"veoprompt/pkg/schema"
)

type fakeAnalyzer struct {
	running atomic.Int32
	peak    atomic.Int32
	release chan struct{}
	err     error
}

func (f *fakeAnalyzer) Extract(ctx context.Context, img inference.Image) (schema.ImageAttributes, error) {
	n := f.running.Add(1)
	defer f.running.Add(-1)
	for {
		p := f.peak.Load()
		if n <= p || f.peak.CompareAndSwap(p, n) {
			break
		}
	}
	if f.release != nil {
		<-f.release
	}
	if f.err != nil {
		return schema.ImageAttributes{}, f.err
	}
	return schema.ImageAttributes{Race: string(img.Data)}, nil
}

func img(s string) inference.Image {
	return inference.Image{Data: []byte(s), MIMEType: "image/png"}
}

func TestQueueRunsOneAtATime(t *testing.T) {
	a := &fakeAnalyzer{release: make(chan struct{})}
	q := New(a, 8)
	q.Start()
	defer q.Stop()

	var wg sync.WaitGroup
	results := make([]string, 3)
	for i, name := range []string{"a", "b", "c"} {
		wg.Add(1)
		go func() {
			defer wg.Done()
			attrs, err := q.Extract(context.Background(), img(name))
			assert.NoError(t, err)
			results[i] = attrs.Race
		}()
	}

	for range 3 {
		time.Sleep(10 * time.Millisecond)
		a.release <- struct{}{}
	}
	wg.Wait()

	assert.EqualValues(t, 1, a.peak.Load())
	assert.Equal(t, []string{"a", "b", "c"}, results)
}

func TestQueueReportsErrors(t *testing.T) {
	boom := errors.New("model offline")
	q := New(&fakeAnalyzer{err: boom}, 1)
	q.Start()
	defer q.Stop()

	_, err := q.Extract(context.Background(), img("x"))
	assert.ErrorIs(t, err, boom)
}

func TestQueueFull(t *testing.T) {
	q := New(&fakeAnalyzer{}, 1)

	_, _, err := q.Add(context.Background(), img("a"))
	require.NoError(t, err)
	assert.Equal(t, 1, q.Len())
	_, _, err = q.Add(context.Background(), img("b"))
	assert.ErrorIs(t, err, ErrFull)
}

func TestQueueSkipsAbandonedItems(t *testing.T) {
	a := &fakeAnalyzer{}
	q := New(a, 2)

	ctx, cancel := context.WithCancel(context.Background())
	_, errCh, err := q.Add(ctx, img("late"))
	require.NoError(t, err)
	cancel()

	q.Start()
	defer q.Stop()
	assert.ErrorIs(t, <-errCh, context.Canceled)
	assert.Zero(t, a.peak.Load())
}

func TestAnalyzerFunc(t *testing.T) {
	q := New(AnalyzerFunc(func(_ context.Context, img inference.Image) (schema.ImageAttributes, error) {
		return schema.ImageAttributes{Gender: string(img.Data)}, nil
	}), 1)
	q.Start()
	defer q.Stop()

	attrs, err := q.Extract(context.Background(), img("Wanita"))
	require.NoError(t, err)
	assert.Equal(t, "Wanita", attrs.Gender)
	assert.Zero(t, q.Len())
}
