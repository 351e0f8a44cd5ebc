package xcm

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// MaxJunctions is the longest interior any version can express (X8).
const MaxJunctions = 8

// Junctions is an ordered location interior. An empty value is "Here".
type Junctions []Junction

// Equal reports whether both interiors hold the same junctions.
func (js Junctions) Equal(o Junctions) bool {
	if len(js) != len(o) {
		return false
	}
	for i := range js {
		if !js[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// Appending returns a copy of js with more junctions at the end.
func (js Junctions) Appending(more ...Junction) Junctions {
	out := make(Junctions, 0, len(js)+len(more))
	return append(append(out, js...), more...)
}

// Prepending returns a copy of js with more junctions at the front.
func (js Junctions) Prepending(more ...Junction) Junctions {
	out := make(Junctions, 0, len(js)+len(more))
	return append(append(out, more...), js...)
}

// EncodeXCM implements Encoder. Before V4 a multi-junction interior is an
// object keyed by position; from V4 on it is an array.
func (js Junctions) EncodeXCM(v Version) (json.RawMessage, error) {
	if len(js) == 0 {
		return variant("Here", nil), nil
	}
	if len(js) > MaxJunctions {
		return nil, fmt.Errorf("xcm: %d junctions: %w", len(js), ErrTooManyJunctions)
	}
	items := make([]json.RawMessage, len(js))
	for i, j := range js {
		raw, err := j.EncodeXCM(v)
		if err != nil {
			return nil, err
		}
		items[i] = raw
	}
	tag := "X" + strconv.Itoa(len(js))
	if !v.legacyJunctions() {
		return variant(tag, array(items)), nil
	}
	if len(items) == 1 {
		return variant(tag, items[0]), nil
	}
	fields := make([]field, len(items))
	for i, raw := range items {
		fields[i] = field{strconv.Itoa(i), raw}
	}
	return variant(tag, object(fields...)), nil
}

// DecodeXCM implements Decoder.
func (js *Junctions) DecodeXCM(data json.RawMessage, v Version) error {
	tag, payload, err := decodeVariant(data)
	if err != nil {
		return decodeErr("junctions", v, data, err)
	}
	if tag == "Here" {
		*js = Junctions{}
		return nil
	}
	count, err := junctionCount(tag)
	if err != nil {
		return decodeErr("junctions", v, data, err)
	}
	items, err := junctionItems(payload, count, v)
	if err != nil {
		return decodeErr("junctions", v, data, err)
	}
	out := make(Junctions, count)
	for i, raw := range items {
		if err := out[i].DecodeXCM(raw, v); err != nil {
			return err
		}
	}
	*js = out
	return nil
}

func junctionCount(tag string) (int, error) {
	digits, ok := strings.CutPrefix(tag, "X")
	if !ok || len(digits) != 1 {
		return 0, fmt.Errorf("%w: tag %q", ErrMalformedJunctions, tag)
	}
	n := int(digits[0] - '0')
	if n < 1 || n > MaxJunctions {
		return 0, fmt.Errorf("%w: tag %q", ErrMalformedJunctions, tag)
	}
	return n, nil
}

func junctionItems(payload json.RawMessage, count int, v Version) ([]json.RawMessage, error) {
	if !v.legacyJunctions() {
		items, err := decodeArray(payload)
		if err != nil || len(items) != count {
			return nil, fmt.Errorf("%w: expected array of %d", ErrMalformedJunctions, count)
		}
		return items, nil
	}
	if count == 1 {
		return []json.RawMessage{payload}, nil
	}
	fields, err := decodeObject(payload)
	if err != nil || len(fields) != count {
		return nil, fmt.Errorf("%w: expected object of %d", ErrMalformedJunctions, count)
	}
	items := make([]json.RawMessage, count)
	for i := range items {
		raw, ok := fields[strconv.Itoa(i)]
		if !ok {
			return nil, fmt.Errorf("%w: missing index %d", ErrMalformedJunctions, i)
		}
		items[i] = raw
	}
	return items, nil
}
