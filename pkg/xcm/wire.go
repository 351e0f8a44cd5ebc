package xcm

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Klingon-tech/klingsign/pkg/types"
	"github.com/holiman/uint256"
)

// The helpers below assemble wire bytes directly instead of going through
// json.Marshal, so raw payloads captured at decode time are written back
// unchanged.

var nullJSON = json.RawMessage("null")

// Encoder is implemented by values whose wire form depends on the version.
type Encoder interface {
	EncodeXCM(v Version) (json.RawMessage, error)
}

// Decoder is implemented by pointers to values decodable against a version.
type Decoder interface {
	DecodeXCM(data json.RawMessage, v Version) error
}

// Encode returns the exact wire bytes of e under version v.
func Encode(e Encoder, v Version) ([]byte, error) {
	if !v.Valid() {
		return nil, fmt.Errorf("encode: %w: %d", ErrUnknownVersion, uint8(v))
	}
	return e.EncodeXCM(v)
}

// Decode decodes data into d under version v.
func Decode(data []byte, d Decoder, v Version) error {
	if !v.Valid() {
		return fmt.Errorf("decode: %w: %d", ErrUnknownVersion, uint8(v))
	}
	return d.DecodeXCM(data, v)
}

func quote(s string) []byte {
	b, _ := json.Marshal(s)
	return b
}

// variant encodes a tagged enum value as [tag, payload].
func variant(tag string, payload json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	buf.WriteByte('[')
	buf.Write(quote(tag))
	buf.WriteByte(',')
	if len(payload) == 0 {
		buf.Write(nullJSON)
	} else {
		buf.Write(payload)
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

// array encodes items as a JSON array.
func array(items []json.RawMessage) json.RawMessage {
	var buf bytes.Buffer
	buf.WriteByte('[')
	for i, item := range items {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(item)
	}
	buf.WriteByte(']')
	return buf.Bytes()
}

type field struct {
	name  string
	value json.RawMessage
}

// object encodes fields in the given order.
func object(fields ...field) json.RawMessage {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, f := range fields {
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.Write(quote(f.name))
		buf.WriteByte(':')
		buf.Write(f.value)
	}
	buf.WriteByte('}')
	return buf.Bytes()
}

// isNull reports whether raw is the JSON null literal (or empty).
func isNull(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) == 0 || bytes.Equal(trimmed, nullJSON)
}

// decodeVariant splits a [tag, payload] pair.
func decodeVariant(raw json.RawMessage) (string, json.RawMessage, error) {
	var pair []json.RawMessage
	if err := json.Unmarshal(raw, &pair); err != nil || len(pair) != 2 {
		return "", nil, ErrMalformedVariant
	}
	var tag string
	if err := json.Unmarshal(pair[0], &tag); err != nil {
		return "", nil, ErrMalformedVariant
	}
	return tag, pair[1], nil
}

func decodeArray(raw json.RawMessage) ([]json.RawMessage, error) {
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func decodeObject(raw json.RawMessage) (map[string]json.RawMessage, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		return nil, fmt.Errorf("expected object")
	}
	return fields, nil
}

// requireField returns the named field or an error.
func requireField(fields map[string]json.RawMessage, name string) (json.RawMessage, error) {
	raw, ok := fields[name]
	if !ok {
		return nil, fmt.Errorf("missing field %q", name)
	}
	return raw, nil
}

// Numbers are written as decimal strings. Decoding also accepts bare JSON
// numbers and 0x-prefixed hex strings.

func encodeUint(n uint64) json.RawMessage {
	return quote(strconv.FormatUint(n, 10))
}

func encodeBig(n *uint256.Int) json.RawMessage {
	return quote(n.Dec())
}

func numberText(raw json.RawMessage) (string, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return "", ErrMalformedNumber
	}
	if trimmed[0] == '"' {
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return "", ErrMalformedNumber
		}
		return s, nil
	}
	return string(trimmed), nil
}

func decodeBig(raw json.RawMessage) (uint256.Int, error) {
	s, err := numberText(raw)
	if err != nil {
		return uint256.Int{}, err
	}
	var n *uint256.Int
	if strings.HasPrefix(s, "0x") {
		n, err = uint256.FromHex(s)
	} else {
		n, err = uint256.FromDecimal(s)
	}
	if err != nil {
		return uint256.Int{}, fmt.Errorf("%w: %q", ErrMalformedNumber, s)
	}
	return *n, nil
}

func decodeUint(raw json.RawMessage, bits int) (uint64, error) {
	n, err := decodeBig(raw)
	if err != nil {
		return 0, err
	}
	if n.BitLen() > bits {
		return 0, fmt.Errorf("%w: value exceeds %d bits", ErrMalformedNumber, bits)
	}
	return n.Uint64(), nil
}

func encodeBytes(b []byte) json.RawMessage {
	return quote(types.EncodeHex(b))
}

func decodeBytes(raw json.RawMessage) ([]byte, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("expected hex string")
	}
	return types.DecodeHex(s)
}
