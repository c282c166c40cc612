// Package backend defines the capability port the CAS protocol requires
// from a remote key-value store: a plain read, an atomic single-key script
// evaluation, and an idempotent delete.
//
// Implementations MUST be byte-for-byte transparent: Get must return exactly
// the []byte a previously successful script wrote for the key (no
// prepended/appended metadata, no re-encoding, no mutation). The comparison
// operand of the swap scripts is compared against stored bytes verbatim, so
// any transform a store applies internally must be fully reversed.
//
// Adapters over different client libraries (pooled single-node client,
// cluster client, other stores with equivalent atomic scripting) differ only
// in connection handling, never in these semantics.
package backend

import "context"

// Backend is the minimal store contract.
// Must be safe for concurrent use.
type Backend interface {
	// Get returns (value, true, nil) on hit; (nil, false, nil) when the key
	// is absent. Absence is the only legal "no value" signal - a present
	// key always carries the exact bytes last written, never a partial
	// write.
	Get(ctx context.Context, key []byte) ([]byte, bool, error)

	// Eval executes one of the internal/script variants against key with
	// single-key atomicity: no other writer's operation may interleave
	// mid-script. The reply is the script's own result; a nil reply (with
	// nil error) is legal and means the precondition did not hold.
	Eval(ctx context.Context, script string, key []byte, args ...any) (any, error)

	// Del removes the key. No error when it is already absent.
	Del(ctx context.Context, key []byte) error

	// Close releases resources.
	Close(ctx context.Context) error
}
