// Package wireformat implements the length-prefixed framing and the
// named-field MessagePack payload encoding used to move values across the
// host/guest WASM boundary.
package wireformat

import (
	"encoding/binary"
	"fmt"

	"github.com/mangayouknow/extcore/domain"
	"github.com/vmihailenco/msgpack/v5"
)

// Frame prepends a little-endian uint32 length prefix to payload, producing
// the exact byte layout a guest's alloc/dealloc pair is expected to manage:
// [u32_le size][bytes].
func Frame(payload []byte) []byte {
	out := make([]byte, 4+len(payload))
	binary.LittleEndian.PutUint32(out[:4], uint32(len(payload)))
	copy(out[4:], payload)
	return out
}

// Unframe strips a length prefix produced by Frame, validating that the
// prefix matches the number of bytes actually available.
func Unframe(data []byte) ([]byte, error) {
	if len(data) < 4 {
		return nil, fmt.Errorf("wireformat: frame too short: %d bytes", len(data))
	}
	size := binary.LittleEndian.Uint32(data[:4])
	if int(size) > len(data)-4 {
		return nil, fmt.Errorf("wireformat: frame declares %d bytes but only %d available", size, len(data)-4)
	}
	return data[4 : 4+size], nil
}

// Encode serializes v as named-field MessagePack: fields are addressed by
// name (via the msgpack struct tags on domain types), not by positional
// array index, so guests compiled against a slightly different field order
// still decode correctly.
func Encode(v any) ([]byte, error) {
	b, err := msgpack.Marshal(v)
	if err != nil {
		return nil, domain.WrapSerializationError("encode payload", err)
	}
	return b, nil
}

// Decode deserializes named-field MessagePack into v.
func Decode(data []byte, v any) error {
	if err := msgpack.Unmarshal(data, v); err != nil {
		return domain.WrapSerializationError("decode payload", err)
	}
	return nil
}

// EncodeFramed is Encode followed by Frame, producing the [u32_le size][bytes]
// layout. The executor does not use it for call parameters, which are
// written unframed with their length passed as a separate argument.
func EncodeFramed(v any) ([]byte, error) {
	payload, err := Encode(v)
	if err != nil {
		return nil, err
	}
	return Frame(payload), nil
}

// DecodeFramed is Unframe followed by Decode, the shape read back out of
// guest memory for a single call's result.
func DecodeFramed(data []byte, v any) error {
	payload, err := Unframe(data)
	if err != nil {
		return domain.WrapSerializationError("unframe payload", err)
	}
	return Decode(payload, v)
}
