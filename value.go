package casbucket

// Value is the result of reading a bucket key: either absent, or present
// with the exact bytes last written. Present-with-empty-payload and absent
// are distinct states; a nil sentinel is never used to mean "missing".
type Value struct {
	b       []byte
	present bool
}

// Present wraps bytes read from (or about to be compared against) the store.
// b may be empty; it must not be mutated afterwards.
func Present(b []byte) Value { return Value{b: b, present: true} }

// Absent is the "no state exists yet" reading.
func Absent() Value { return Value{} }

func (v Value) IsPresent() bool { return v.present }

// Bytes returns the payload. It is nil for absent values; callers should
// check IsPresent first rather than testing for nil.
func (v Value) Bytes() []byte { return v.b }
