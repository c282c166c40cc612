// usage:
//
// import (
//
//	"log/slog"
//
//	"github.com/unkn0wn-root/casbucket"
//	"github.com/unkn0wn-root/casbucket/hooks/async"
//	"github.com/unkn0wn-root/casbucket/sloghooks"
//
// )
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{
//	    SwapLostEvery: 10, // sample: ~every 10th lost swap
//	})
//
// hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
// defer hooks.Close()
//
//	mgr, _ := casbucket.New(casbucket.Options{
//	    Backend: backend,
//	    Hooks:   hooks, // or `raw` if you don't want async
//	})
package asynchook

import (
	"sync"

	"github.com/unkn0wn-root/casbucket"
)

type Hooks struct {
	inner casbucket.Hooks
	q     chan func()
	wg    sync.WaitGroup
	once  sync.Once
}

var _ casbucket.Hooks = (*Hooks)(nil)

func New(inner casbucket.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: inner, q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

func (h *Hooks) try(f func()) {
	select {
	case h.q <- f:
	default: // drop
	}
}

func (h *Hooks) SwapLost(k []byte, create bool) { h.try(func() { h.inner.SwapLost(k, create) }) }
func (h *Hooks) ProtocolViolation(k []byte, reply any) {
	h.try(func() { h.inner.ProtocolViolation(k, reply) })
}
func (h *Hooks) RetriesExhausted(k []byte, attempts int) {
	h.try(func() { h.inner.RetriesExhausted(k, attempts) })
}
