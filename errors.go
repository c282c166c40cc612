package casbucket

import (
	"errors"
	"fmt"
)

var (
	// ErrNilPayload rejects a swap whose new payload is nil. Absence is the
	// reserved "no state" sentinel in the store, so it can never be written
	// as a value. An empty (zero-length, non-nil) payload is legal.
	ErrNilPayload = errors.New("casbucket: nil payload is not a writable value")

	// ErrAsyncUnsupported is returned by async-style entry points on
	// managers whose AsyncSupported reports false. It fails fast instead of
	// degrading into a blocking call.
	ErrAsyncUnsupported = errors.New("casbucket: asynchronous execution not supported")
)

// ContentionError reports that Execute exhausted its attempt budget without
// ever winning the conditional write. The key stayed correct throughout;
// this writer just kept losing.
type ContentionError struct {
	Key      []byte
	Attempts int
}

func (e *ContentionError) Error() string {
	return fmt.Sprintf("casbucket: key %q still contended after %d attempts", e.Key, e.Attempts)
}

// ProtocolError reports a script reply outside the documented encoding
// (nil or integer). It is a backend/protocol fault and is never coerced
// into a plain CAS failure.
type ProtocolError struct {
	Reply any
}

func (e *ProtocolError) Error() string {
	return fmt.Sprintf("casbucket: unexpected script reply %v (%T)", e.Reply, e.Reply)
}
