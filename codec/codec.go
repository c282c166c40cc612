// Package codec serializes bucket state (or any payload type) to the byte
// slices the CAS protocol stores. The core never inspects these bytes; the
// only requirement is that Encode is deterministic enough for your own
// comparison needs and that Decode(Encode(v)) round-trips.
package codec

// Codec encodes/decodes values V to []byte for storage.
type Codec[V any] interface {
	Encode(V) ([]byte, error)
	Decode([]byte) (V, error)
}
