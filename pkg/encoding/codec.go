package encoding

import (
	"bytes"
	"encoding/gob"
	"encoding/json"
	"fmt"

	"github.com/driftsync/driftsync/pkg/generic"
)

// Codec serializes values of one concrete type for the wire.
//
// Implementations must round-trip: Decode(Encode(v)) == v for every valid v,
// and must be stable across processes running the same type definitions.
type Codec[T any] interface {
	Encode(value T) ([]byte, error)
	Decode(data []byte) (T, error)
}

var buffers = generic.NewPool(func() *bytes.Buffer {
	return &bytes.Buffer{}
})

// gobCodec is the default binary codec.
type gobCodec[T any] struct{}

// Gob returns the default binary codec for T.
func Gob[T any]() Codec[T] {
	return gobCodec[T]{}
}

func (gobCodec[T]) Encode(value T) ([]byte, error) {
	buf := buffers.Get()
	defer func() {
		buf.Reset()
		buffers.Put(buf)
	}()
	if err := gob.NewEncoder(buf).Encode(&value); err != nil {
		return nil, fmt.Errorf("gob encode: %w", err)
	}
	out := make([]byte, buf.Len())
	copy(out, buf.Bytes())
	return out, nil
}

func (gobCodec[T]) Decode(data []byte) (T, error) {
	var value T
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&value); err != nil {
		return value, fmt.Errorf("gob decode: %w", err)
	}
	return value, nil
}

// jsonCodec trades compactness for a human-readable wire format.
// Useful when inspecting traffic or talking to non-Go peers.
type jsonCodec[T any] struct{}

// JSON returns a JSON codec for T.
func JSON[T any]() Codec[T] {
	return jsonCodec[T]{}
}

func (jsonCodec[T]) Encode(value T) ([]byte, error) {
	return json.Marshal(value)
}

func (jsonCodec[T]) Decode(data []byte) (T, error) {
	var value T
	if err := json.Unmarshal(data, &value); err != nil {
		return value, fmt.Errorf("json decode: %w", err)
	}
	return value, nil
}
