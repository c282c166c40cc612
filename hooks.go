package casbucket

// Hooks are lightweight callbacks for high-signal events. Implementations
// MUST be cheap and non-blocking; the engine calls them on hot paths.
// Wrap with hooks/async to decouple slow sinks.
type Hooks interface {
	// A conditional write lost the race to another writer. Normal under
	// contention, not an error; create=true means the create-if-absent
	// branch lost (someone else created the key first).
	SwapLost(key []byte, create bool)

	// A script reply fell outside the documented nil/integer encoding.
	ProtocolViolation(key []byte, reply any)

	// Execute gave up after its configured attempt budget.
	RetriesExhausted(key []byte, attempts int)
}

// NopHooks is the default no-op.
type NopHooks struct{}

func (NopHooks) SwapLost([]byte, bool)         {}
func (NopHooks) ProtocolViolation([]byte, any) {}
func (NopHooks) RetriesExhausted([]byte, int)  {}
