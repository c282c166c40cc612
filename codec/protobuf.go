package codec

import "google.golang.org/protobuf/proto"

// Protobuf serializes generated proto messages. The constructor closure
// produces a fresh concrete message for Decode, e.g.
// NewProtobuf(func() *pb.BucketState { return &pb.BucketState{} }).
//
// Note: proto encoding is not canonical across library versions; prefer a
// deterministic codec when payload bytes double as the CAS comparison
// operand for mixed-version writers.
type Protobuf[T proto.Message] struct {
	new func() T
}

func NewProtobuf[T proto.Message](ctor func() T) Protobuf[T] {
	return Protobuf[T]{new: ctor}
}

func (c Protobuf[T]) Encode(v T) ([]byte, error) {
	return proto.Marshal(v)
}
func (c Protobuf[T]) Decode(b []byte) (T, error) {
	m := c.new()
	err := proto.Unmarshal(b, m)
	return m, err
}
