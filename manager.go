package casbucket

import (
	"context"
	"fmt"
	"time"

	be "github.com/unkn0wn-root/casbucket/backend"
	"github.com/unkn0wn-root/casbucket/internal/script"
)

const defaultMaxAttempts = 64

type manager struct {
	backend be.Backend
	exp     ExpirationStrategy
	clock   Clock
	log     Logger
	hooks   Hooks

	maxAttempts int
}

var _ Manager = (*manager)(nil)

func newManager(opts Options) (*manager, error) {
	if opts.Backend == nil {
		return nil, fmt.Errorf("casbucket: backend is required")
	}
	if opts.MaxAttempts < 0 {
		return nil, fmt.Errorf("casbucket: MaxAttempts must be >= 0, got %d", opts.MaxAttempts)
	}

	m := &manager{
		backend:     opts.Backend,
		maxAttempts: coalesce[int](opts.MaxAttempts, defaultMaxAttempts),
	}
	m.exp = coalesce[ExpirationStrategy](opts.Expiration, NoExpiration())
	m.clock = coalesce[Clock](opts.Clock, SystemClock{})
	m.log = coalesce[Logger](opts.Logger, NopLogger{})
	m.hooks = coalesce[Hooks](opts.Hooks, NopHooks{})
	return m, nil
}

func (m *manager) ReadCurrent(ctx context.Context, key []byte) (Value, error) {
	b, ok, err := m.backend.Get(ctx, key)
	if err != nil {
		return Absent(), err
	}
	if !ok {
		return Absent(), nil
	}
	return Present(b), nil
}

func (m *manager) AttemptSwap(ctx context.Context, key []byte, original Value, next []byte, state State) (bool, error) {
	if next == nil {
		return false, ErrNilPayload
	}

	// fresh clock read per attempt so the TTL tracks the latest activity
	ttl := ttlMillis(m.exp.TimeToLive(state, m.clock.NowNanos()))

	var (
		reply any
		err   error
	)
	create := !original.IsPresent()
	switch {
	case create && ttl > 0:
		reply, err = m.backend.Eval(ctx, script.CreateIfAbsentTTL, key, next, ttl)
	case create:
		reply, err = m.backend.Eval(ctx, script.CreateIfAbsent, key, next)
	case ttl > 0:
		reply, err = m.backend.Eval(ctx, script.CompareAndSwapTTL, key, original.Bytes(), next, ttl)
	default:
		reply, err = m.backend.Eval(ctx, script.CompareAndSwap, key, original.Bytes(), next)
	}
	if err != nil {
		return false, err
	}

	ok, err := decodeReply(reply)
	if err != nil {
		m.hooks.ProtocolViolation(key, reply)
		m.log.Error("conditional write returned undecodable reply", Fields{"reply": reply})
		return false, err
	}
	if !ok {
		m.hooks.SwapLost(key, create)
		m.log.Debug("conditional write lost the race", Fields{"create": create})
	}
	return ok, nil
}

func (m *manager) Remove(ctx context.Context, key []byte) error {
	return m.backend.Del(ctx, key)
}

func (m *manager) Execute(ctx context.Context, key []byte, fn TransformFunc) error {
	for attempt := 1; attempt <= m.maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		cur, err := m.ReadCurrent(ctx, key)
		if err != nil {
			return err
		}
		next, state, err := fn(cur)
		if err != nil {
			return err
		}
		ok, err := m.AttemptSwap(ctx, key, cur, next, state)
		if err != nil {
			return err
		}
		if ok {
			if attempt > 1 {
				m.log.Debug("swap converged", Fields{"attempts": attempt})
			}
			return nil
		}
		// lost the race; loop re-reads - retrying with the stale original
		// would never succeed
	}

	m.hooks.RetriesExhausted(key, m.maxAttempts)
	return &ContentionError{Key: key, Attempts: m.maxAttempts}
}

// AsyncSupported reports false: this manager is strictly synchronous.
func (m *manager) AsyncSupported() bool { return false }

func (m *manager) ExecuteAsync(context.Context, []byte, TransformFunc) (<-chan error, error) {
	return nil, ErrAsyncUnsupported
}

func (m *manager) Close(ctx context.Context) error {
	return m.backend.Close(ctx)
}

// ttlMillis rounds a TTL up to whole milliseconds (the script PX unit).
// Rounding down could turn a sub-millisecond TTL into "no expiry".
func ttlMillis(d time.Duration) int64 {
	if d <= 0 {
		return 0
	}
	ms := d.Milliseconds()
	if d%time.Millisecond != 0 {
		ms++
	}
	return ms
}

// decodeReply maps a script reply onto the CAS outcome. Absent replies and
// zero counts are failures; any other integer is success; everything else
// violates the script contract.
func decodeReply(reply any) (bool, error) {
	switch r := reply.(type) {
	case nil:
		return false, nil
	case int64:
		return r != 0, nil
	default:
		return false, &ProtocolError{Reply: reply}
	}
}
