package bucket

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/casbucket"
	"github.com/unkn0wn-root/casbucket/codec"
)

// Limiter is the proxy-side consumer of the CAS core: it decodes the bucket
// from the latest read (or starts a fresh one on first use), applies the
// token arithmetic, and lets Manager.Execute converge the conditional
// write. Safe for concurrent use across processes sharing the same keys.
type Limiter struct {
	mgr   casbucket.Manager
	cfg   Config
	codec codec.Codec[State]
	clock casbucket.Clock
}

// LimiterOptions configure a Limiter. Manager and Config are required.
type LimiterOptions struct {
	Manager casbucket.Manager
	Config  Config
	Codec   codec.Codec[State] // nil => codec.Msgpack[State]{}
	Clock   casbucket.Clock    // nil => casbucket.SystemClock{}
}

func NewLimiter(opts LimiterOptions) (*Limiter, error) {
	if opts.Manager == nil {
		return nil, fmt.Errorf("bucket: manager is required")
	}
	if err := opts.Config.validate(); err != nil {
		return nil, err
	}
	l := &Limiter{mgr: opts.Manager, cfg: opts.Config, codec: opts.Codec, clock: opts.Clock}
	if l.codec == nil {
		l.codec = codec.Msgpack[State]{}
	}
	if l.clock == nil {
		l.clock = casbucket.SystemClock{}
	}
	return l, nil
}

// TryConsume takes tokens from the bucket at key, creating the bucket full
// on first use. The consumption decision comes from the attempt that
// actually won the swap, so concurrent callers can never overspend.
func (l *Limiter) TryConsume(ctx context.Context, key []byte, tokens int64) (bool, error) {
	if tokens <= 0 {
		return false, fmt.Errorf("bucket: tokens must be positive, got %d", tokens)
	}

	var allowed bool
	err := l.mgr.Execute(ctx, key, func(cur casbucket.Value) ([]byte, casbucket.State, error) {
		now := l.clock.NowNanos()

		var st State
		if cur.IsPresent() {
			decoded, err := l.codec.Decode(cur.Bytes())
			if err != nil {
				return nil, nil, fmt.Errorf("bucket: decode state: %w", err)
			}
			st = decoded
		} else {
			st = NewState(l.cfg, now)
		}

		allowed = st.TryConsume(tokens, now)
		b, err := l.codec.Encode(st)
		if err != nil {
			return nil, nil, fmt.Errorf("bucket: encode state: %w", err)
		}
		return b, st, nil
	})
	if err != nil {
		return false, err
	}
	return allowed, nil
}

// Available reports the tokens a caller would find right now. Read-only;
// the stored state is not touched.
func (l *Limiter) Available(ctx context.Context, key []byte) (int64, error) {
	cur, err := l.mgr.ReadCurrent(ctx, key)
	if err != nil {
		return 0, err
	}
	if !cur.IsPresent() {
		return l.cfg.Capacity, nil
	}
	st, err := l.codec.Decode(cur.Bytes())
	if err != nil {
		return 0, fmt.Errorf("bucket: decode state: %w", err)
	}
	st.Refill(l.clock.NowNanos())
	return st.Available, nil
}

// Reset deletes the stored bucket; the next consumer recreates it full.
func (l *Limiter) Reset(ctx context.Context, key []byte) error {
	return l.mgr.Remove(ctx, key)
}
