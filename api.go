package casbucket

import (
	"context"

	be "github.com/unkn0wn-root/casbucket/backend"
)

// TransformFunc recomputes the bucket from the value just read. It returns
// the encoded payload to store plus the logical state the expiration
// strategy will query. Execute calls it once per attempt, always with the
// freshest read, so it must be safe to call repeatedly.
type TransformFunc func(current Value) (next []byte, state State, err error)

// Manager is the per-key synchronization engine. Each swap attempt costs
// exactly two backend round-trips: one plain read, one atomic conditional
// write. The new payload is computed caller-side between the two, which is
// why they are never fused into a single script.
type Manager interface {
	// ReadCurrent returns the stored bytes, or an absent Value when the key
	// does not exist. No interpretation of the payload.
	ReadCurrent(ctx context.Context, key []byte) (Value, error)

	// AttemptSwap performs one conditional write. With original absent it
	// creates the key only if still absent; otherwise it replaces the value
	// only if it still equals original. false means another writer won the
	// race - re-read before retrying. Errors are transport or protocol
	// faults only, never contention.
	AttemptSwap(ctx context.Context, key []byte, original Value, next []byte, state State) (bool, error)

	// Remove unconditionally deletes the key. Idempotent.
	Remove(ctx context.Context, key []byte) error

	// Execute drives read -> fn -> AttemptSwap until a swap succeeds, fn or
	// the backend errors, ctx is done, or Options.MaxAttempts is exhausted
	// (surfaced as *ContentionError).
	Execute(ctx context.Context, key []byte, fn TransformFunc) error

	// AsyncSupported reports whether the async entry points work. When it
	// is false they fail immediately with ErrAsyncUnsupported instead of
	// silently blocking.
	AsyncSupported() bool

	// ExecuteAsync is the non-blocking counterpart of Execute. Check
	// AsyncSupported first; unsupported managers return ErrAsyncUnsupported
	// without touching the backend.
	ExecuteAsync(ctx context.Context, key []byte, fn TransformFunc) (<-chan error, error)

	// Close releases the backend.
	Close(ctx context.Context) error
}

// Options configure a Manager. Only Backend is required.
type Options struct {
	// Required.
	Backend be.Backend

	Expiration  ExpirationStrategy // nil => NoExpiration()
	Clock       Clock              // nil => SystemClock{}
	Logger      Logger             // nil => NopLogger{}
	Hooks       Hooks              // nil => NopHooks{}
	MaxAttempts int                // Execute bound; 0 => 64
}

// New builds a synchronous Manager over the given backend.
func New(opts Options) (Manager, error) {
	return newManager(opts)
}
