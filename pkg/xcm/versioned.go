package xcm

import (
	"encoding/json"
	"fmt"
)

// Versioned pairs an entity with the version it is encoded under. The wire
// form is ["Vn", payload].
type Versioned[T Encoder] struct {
	Version Version
	Entity  T
}

// Versioned value aliases used across the wallet.
type (
	VersionedLocation = Versioned[Location]
	VersionedAsset    = Versioned[Asset]
	VersionedAssets   = Versioned[Assets]
	VersionedMessage  = Versioned[Message]
)

// NewVersioned wraps entity at version v.
func NewVersioned[T Encoder](entity T, v Version) Versioned[T] {
	return Versioned[T]{Version: v, Entity: entity}
}

// Convert returns the same entity tagged with another version.
func (x Versioned[T]) Convert(v Version) Versioned[T] {
	return Versioned[T]{Version: v, Entity: x.Entity}
}

// EncodeXCM implements Encoder. The argument is ignored: the wrapper
// always encodes under its own version.
func (x Versioned[T]) EncodeXCM(Version) (json.RawMessage, error) {
	if !x.Version.Valid() {
		return nil, fmt.Errorf("xcm: %w: %d", ErrUnknownVersion, uint8(x.Version))
	}
	raw, err := x.Entity.EncodeXCM(x.Version)
	if err != nil {
		return nil, err
	}
	return variant(x.Version.String(), raw), nil
}

// Bytes returns the exact wire bytes.
func (x Versioned[T]) Bytes() ([]byte, error) {
	return x.EncodeXCM(x.Version)
}

// DecodeXCM implements Decoder. The version tag in data wins over v.
func (x *Versioned[T]) DecodeXCM(data json.RawMessage, _ Version) error {
	tag, payload, err := decodeVariant(data)
	if err != nil {
		return decodeErr("versioned", 0, data, err)
	}
	v, err := ParseVersion(tag)
	if err != nil {
		return decodeErr("versioned", 0, data, err)
	}
	dec, ok := any(&x.Entity).(Decoder)
	if !ok {
		return fmt.Errorf("xcm: %T is not decodable", x.Entity)
	}
	if err := dec.DecodeXCM(payload, v); err != nil {
		return err
	}
	x.Version = v
	return nil
}

// MarshalJSON implements json.Marshaler. Callers that need byte-exact
// output should use Bytes, since encoding/json re-compacts the result.
func (x Versioned[T]) MarshalJSON() ([]byte, error) {
	return x.Bytes()
}

// UnmarshalJSON implements json.Unmarshaler.
func (x *Versioned[T]) UnmarshalJSON(data []byte) error {
	return x.DecodeXCM(data, LatestVersion)
}

// DecodeVersioned decodes a versioned entity in one step.
func DecodeVersioned[T Encoder](data []byte) (Versioned[T], error) {
	var x Versioned[T]
	err := x.DecodeXCM(data, LatestVersion)
	return x, err
}
