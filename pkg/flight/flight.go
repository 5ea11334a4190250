package flight

import (
	"context"
	"sync"
	"sync/atomic"
	"time"
	"weak"
)

// Cache coalesces concurrent work on the same key and remembers successful
// results. Errors are never cached.
type Cache[K comparable, V any] struct {
	// finished holds completed results. Each entry keeps a strong reference
	// until its deadline passes, after which only the weak pointer remains.
	finished map[K]*entry[V]
	fmu      sync.RWMutex

	pending map[K]*job[V]
	pmu     sync.Mutex

	// ttl stores the strong-hold duration in nanoseconds.
	// <= 0 means infinite (never drop the strong reference).
	ttl atomic.Int64
}

type entry[V any] struct {
	w        weak.Pointer[V]
	strong   *V        // non-nil while within the strong-hold window
	deadline time.Time // zero => infinite
}

type job[V any] struct {
	val  V
	err  error
	done chan struct{}

	// waiters counts callers still waiting on done, guarded by pmu.
	waiters int
	cancel  context.CancelFunc
}

func NewCache[K comparable, V any]() *Cache[K, V] {
	c := &Cache[K, V]{
		finished: make(map[K]*entry[V]),
		pending:  make(map[K]*job[V]),
	}
	c.ttl.Store(int64(time.Hour))
	return c
}

// Expiry sets the strong-hold duration for future writes.
// d <= 0 keeps a permanent strong reference.
func (p *Cache[K, V]) Expiry(d time.Duration) {
	if d <= 0 {
		p.ttl.Store(0)
		return
	}
	p.ttl.Store(int64(d))
}

// Do returns the cached value for k, joins in-flight work for k, or starts
// work. Work runs on a context detached from whichever caller started it, so
// callers stop waiting independently when their own ctx is done. The work
// context is cancelled once every caller has stopped waiting.
func (p *Cache[K, V]) Do(ctx context.Context, k K, work func(context.Context) (V, error)) (V, error) {
	p.pmu.Lock()

	if v, ok := p.lookup(k); ok {
		p.pmu.Unlock()
		return v, nil
	}

	j, ok := p.pending[k]
	if !ok {
		wctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
		j = &job[V]{done: make(chan struct{}), cancel: cancel}
		p.pending[k] = j
		go p.run(wctx, k, j, work)
	}
	j.waiters++
	p.pmu.Unlock()

	select {
	case <-j.done:
		return j.val, j.err
	case <-ctx.Done():
		p.leave(k, j)
		var zero V
		return zero, ctx.Err()
	}
}

func (p *Cache[K, V]) run(ctx context.Context, k K, j *job[V], work func(context.Context) (V, error)) {
	defer j.cancel()

	j.val, j.err = work(ctx)
	if j.err == nil {
		p.store(k, j.val)
	}

	p.pmu.Lock()
	if p.pending[k] == j {
		delete(p.pending, k)
	}
	p.pmu.Unlock()
	close(j.done)
}

// leave drops a waiter and cancels the work when nobody is left to receive it.
func (p *Cache[K, V]) leave(k K, j *job[V]) {
	p.pmu.Lock()
	defer p.pmu.Unlock()

	j.waiters--
	if j.waiters > 0 {
		return
	}
	j.cancel()
	if p.pending[k] == j {
		delete(p.pending, k)
	}
}

// Forget drops any finished result for k.
func (p *Cache[K, V]) Forget(k K) {
	p.fmu.Lock()
	delete(p.finished, k)
	p.fmu.Unlock()
}

// lookup returns a live finished value, dropping expired strong references and
// collected entries along the way.
func (p *Cache[K, V]) lookup(k K) (V, bool) {
	var zero V

	p.fmu.Lock()
	defer p.fmu.Unlock()

	e, ok := p.finished[k]
	if !ok {
		return zero, false
	}
	if !e.deadline.IsZero() && time.Now().After(e.deadline) {
		e.strong = nil
	}
	vp := e.w.Value()
	if vp == nil {
		delete(p.finished, k)
		return zero, false
	}
	return *vp, true
}

func (p *Cache[K, V]) store(k K, val V) {
	// Dedicated heap cell so the weak pointer refers to a stable address.
	v := new(V)
	*v = val

	e := &entry[V]{w: weak.Make(v), strong: v}
	if d := time.Duration(p.ttl.Load()); d > 0 {
		e.deadline = time.Now().Add(d)
	}

	p.fmu.Lock()
	p.finished[k] = e
	p.fmu.Unlock()
}
