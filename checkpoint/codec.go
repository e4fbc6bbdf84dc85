package checkpoint

import "google.golang.org/protobuf/proto"

type (
	// Codec converts values to and from their checkpoint encoding.
	Codec[T any] interface {
		Marshal(T) ([]byte, error)
		Unmarshal([]byte) (T, error)
	}
	// Bytes stores byte slices as they are.
	Bytes struct{}
	// Proto encodes protocol buffer messages.
	// New must return an empty message to decode into.
	Proto[M proto.Message] struct {
		New func() M
	}
)

func (Bytes) Marshal(value []byte) ([]byte, error) { return value, nil }
func (Bytes) Unmarshal(data []byte) ([]byte, error) { return data, nil }

func (Proto[M]) Marshal(message M) ([]byte, error) {
	return proto.Marshal(message)
}

func (p Proto[M]) Unmarshal(data []byte) (M, error) {
	message := p.New()
	if err := proto.Unmarshal(data, message); err != nil {
		var zero M
		return zero, err
	}
	return message, nil
}
