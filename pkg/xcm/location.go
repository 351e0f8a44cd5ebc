package xcm

import (
	"encoding/json"
	"fmt"

	"github.com/Klingon-tech/klingsign/pkg/types"
	"github.com/holiman/uint256"
)

// Location is a relative XCM location.
type Location struct {
	Parents  uint8
	Interior Junctions
}

// Here is the location of the current context.
var Here = Location{}

// NewLocation returns a location with the given parents and interior.
func NewLocation(parents uint8, interior ...Junction) Location {
	return Location{Parents: parents, Interior: Junctions(interior).Appending()}
}

// Equal reports whether two locations are identical.
func (l Location) Equal(o Location) bool {
	return l.Parents == o.Parents && l.Interior.Equal(o.Interior)
}

// EncodeXCM implements Encoder.
func (l Location) EncodeXCM(v Version) (json.RawMessage, error) {
	interior, err := l.Interior.EncodeXCM(v)
	if err != nil {
		return nil, err
	}
	return object(
		field{"parents", encodeUint(uint64(l.Parents))},
		field{"interior", interior},
	), nil
}

// DecodeXCM implements Decoder.
func (l *Location) DecodeXCM(data json.RawMessage, v Version) error {
	fields, err := decodeObject(data)
	if err != nil {
		return decodeErr("location", v, data, err)
	}
	parentsRaw, err := requireField(fields, "parents")
	if err != nil {
		return decodeErr("location", v, data, err)
	}
	parents, err := decodeUint(parentsRaw, 8)
	if err != nil {
		return decodeErr("location", v, data, err)
	}
	interiorRaw, err := requireField(fields, "interior")
	if err != nil {
		return decodeErr("location", v, data, err)
	}
	var interior Junctions
	if err := interior.DecodeXCM(interiorRaw, v); err != nil {
		return err
	}
	*l = Location{Parents: uint8(parents), Interior: interior}
	return nil
}

// AbsoluteLocation is a location anchored at the relay chain.
type AbsoluteLocation struct {
	Interior Junctions
}

// NewAbsoluteLocation returns the location of a chain. A nil paraID is the
// relay chain itself.
func NewAbsoluteLocation(paraID *uint32) AbsoluteLocation {
	if paraID == nil {
		return AbsoluteLocation{Interior: Junctions{}}
	}
	return AbsoluteLocation{Interior: Junctions{Parachain(*paraID)}}
}

// RawPath describes an asset location the way chain registries list it.
type RawPath struct {
	ParachainID    *uint32      `json:"parachainId,omitempty"`
	PalletInstance *uint8       `json:"palletInstance,omitempty"`
	GeneralKey     string       `json:"generalKey,omitempty"`
	GeneralIndex   *uint256.Int `json:"generalIndex,omitempty"`
}

// AbsoluteLocationFromRawPath builds an absolute location from a raw path.
// A general key takes precedence over a general index.
func AbsoluteLocationFromRawPath(path RawPath) (AbsoluteLocation, error) {
	interior := Junctions{}
	if path.ParachainID != nil {
		interior = append(interior, Parachain(*path.ParachainID))
	}
	if path.PalletInstance != nil {
		interior = append(interior, PalletInstance(*path.PalletInstance))
	}
	switch {
	case path.GeneralKey != "":
		key, err := types.DecodeHex(path.GeneralKey)
		if err != nil {
			return AbsoluteLocation{}, fmt.Errorf("general key: %w", err)
		}
		interior = append(interior, GeneralKey(key))
	case path.GeneralIndex != nil:
		interior = append(interior, GeneralIndex(path.GeneralIndex))
	}
	return AbsoluteLocation{Interior: interior}, nil
}

// Equal reports whether two absolute locations are identical.
func (a AbsoluteLocation) Equal(o AbsoluteLocation) bool {
	return a.Interior.Equal(o.Interior)
}

// AppendingAccountID returns the location of an account on this chain.
func (a AbsoluteLocation) AppendingAccountID(id types.AccountID, ethereumBased bool) AbsoluteLocation {
	if ethereumBased {
		return AbsoluteLocation{Interior: a.Interior.Appending(AccountKey20(AnyNetwork, id))}
	}
	return AbsoluteLocation{Interior: a.Interior.Appending(AccountID32(AnyNetwork, id))}
}

// FromPointOfView returns a relative to the given location: one parent per
// junction of other beyond the common prefix, followed by the rest of a.
func (a AbsoluteLocation) FromPointOfView(other AbsoluteLocation) Location {
	common := 0
	for common < len(a.Interior) && common < len(other.Interior) &&
		a.Interior[common].Equal(other.Interior[common]) {
		common++
	}
	return Location{
		Parents:  uint8(len(other.Interior) - common),
		Interior: a.Interior[common:].Appending(),
	}
}

// FromChainPointOfView is FromPointOfView relative to a chain location.
func (a AbsoluteLocation) FromChainPointOfView(paraID *uint32) Location {
	return a.FromPointOfView(NewAbsoluteLocation(paraID))
}
