package xcm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/holiman/uint256"
)

// AssetInstanceKind enumerates non-fungible instance identifiers.
type AssetInstanceKind uint8

// Asset instance kinds.
const (
	InstanceUndefined AssetInstanceKind = iota
	InstanceIndex
	InstanceArray4
	InstanceArray8
	InstanceArray16
	InstanceArray32
)

var instanceSizes = map[AssetInstanceKind]int{
	InstanceArray4: 4, InstanceArray8: 8, InstanceArray16: 16, InstanceArray32: 32,
}

var instanceTags = map[AssetInstanceKind]string{
	InstanceUndefined: "Undefined",
	InstanceIndex:     "Index",
	InstanceArray4:    "Array4",
	InstanceArray8:    "Array8",
	InstanceArray16:   "Array16",
	InstanceArray32:   "Array32",
}

// AssetInstance identifies one non-fungible item.
type AssetInstance struct {
	Kind  AssetInstanceKind
	Index uint256.Int
	Data  []byte
}

// Equal reports whether two instances are identical.
func (ai AssetInstance) Equal(o AssetInstance) bool {
	return ai.Kind == o.Kind && ai.Index.Eq(&o.Index) && bytes.Equal(ai.Data, o.Data)
}

// EncodeXCM implements Encoder.
func (ai AssetInstance) EncodeXCM(Version) (json.RawMessage, error) {
	switch ai.Kind {
	case InstanceUndefined:
		return variant("Undefined", nil), nil
	case InstanceIndex:
		return variant("Index", encodeBig(&ai.Index)), nil
	}
	size, ok := instanceSizes[ai.Kind]
	if !ok {
		return nil, fmt.Errorf("xcm: asset instance kind %d: %w", ai.Kind, ErrUnknownVariant)
	}
	if len(ai.Data) != size {
		return nil, fmt.Errorf("xcm: %s needs %d bytes, got %d", instanceTags[ai.Kind], size, len(ai.Data))
	}
	return variant(instanceTags[ai.Kind], encodeBytes(ai.Data)), nil
}

// DecodeXCM implements Decoder.
func (ai *AssetInstance) DecodeXCM(data json.RawMessage, v Version) error {
	tag, payload, err := decodeVariant(data)
	if err != nil {
		return decodeErr("asset instance", v, data, err)
	}
	switch tag {
	case "Undefined":
		*ai = AssetInstance{Kind: InstanceUndefined}
		return nil
	case "Index":
		index, err := decodeBig(payload)
		if err != nil {
			return decodeErr("asset instance", v, data, err)
		}
		*ai = AssetInstance{Kind: InstanceIndex, Index: index}
		return nil
	}
	for kind, name := range instanceTags {
		size, sized := instanceSizes[kind]
		if name != tag || !sized {
			continue
		}
		b, err := decodeBytes(payload)
		if err != nil || len(b) != size {
			return decodeErr("asset instance", v, data, fmt.Errorf("%s needs %d bytes", tag, size))
		}
		*ai = AssetInstance{Kind: kind, Data: b}
		return nil
	}
	return decodeErr("asset instance", v, data, fmt.Errorf("%w: %q", ErrUnknownVariant, tag))
}

// Fungibility is either a fungible amount or a non-fungible instance.
type Fungibility struct {
	NonFungible bool
	Amount      uint256.Int
	Instance    AssetInstance
}

// Fungible returns a fungible amount.
func Fungible(amount *uint256.Int) Fungibility {
	return Fungibility{Amount: *amount}
}

// NonFungible returns a non-fungible instance.
func NonFungible(instance AssetInstance) Fungibility {
	return Fungibility{NonFungible: true, Instance: instance}
}

// Equal reports whether two fungibilities are identical.
func (f Fungibility) Equal(o Fungibility) bool {
	if f.NonFungible != o.NonFungible {
		return false
	}
	if f.NonFungible {
		return f.Instance.Equal(o.Instance)
	}
	return f.Amount.Eq(&o.Amount)
}

// EncodeXCM implements Encoder.
func (f Fungibility) EncodeXCM(v Version) (json.RawMessage, error) {
	if !f.NonFungible {
		return variant("Fungible", encodeBig(&f.Amount)), nil
	}
	instance, err := f.Instance.EncodeXCM(v)
	if err != nil {
		return nil, err
	}
	return variant("NonFungible", instance), nil
}

// DecodeXCM implements Decoder.
func (f *Fungibility) DecodeXCM(data json.RawMessage, v Version) error {
	tag, payload, err := decodeVariant(data)
	if err != nil {
		return decodeErr("fungibility", v, data, err)
	}
	switch tag {
	case "Fungible":
		amount, err := decodeBig(payload)
		if err != nil {
			return decodeErr("fungibility", v, data, err)
		}
		*f = Fungible(&amount)
		return nil
	case "NonFungible":
		var instance AssetInstance
		if err := instance.DecodeXCM(payload, v); err != nil {
			return err
		}
		*f = NonFungible(instance)
		return nil
	}
	return decodeErr("fungibility", v, data, fmt.Errorf("%w: %q", ErrUnknownVariant, tag))
}

// encodeAssetID writes an asset id, wrapped in Concrete before V4.
func encodeAssetID(id Location, v Version) (json.RawMessage, error) {
	raw, err := id.EncodeXCM(v)
	if err != nil {
		return nil, err
	}
	if v.concreteAssetID() {
		return variant("Concrete", raw), nil
	}
	return raw, nil
}

func decodeAssetID(data json.RawMessage, v Version) (Location, error) {
	raw := data
	if v.concreteAssetID() {
		tag, payload, err := decodeVariant(data)
		if err != nil {
			return Location{}, decodeErr("asset id", v, data, err)
		}
		if tag != "Concrete" {
			return Location{}, decodeErr("asset id", v, data, fmt.Errorf("%w: asset id %q", ErrUnknownVariant, tag))
		}
		raw = payload
	}
	var id Location
	if err := id.DecodeXCM(raw, v); err != nil {
		return Location{}, err
	}
	return id, nil
}

// Asset is an asset id with an amount or instance.
type Asset struct {
	ID  Location
	Fun Fungibility
}

// NewAsset returns a fungible asset.
func NewAsset(id Location, amount *uint256.Int) Asset {
	return Asset{ID: id, Fun: Fungible(amount)}
}

// Equal reports whether two assets are identical.
func (a Asset) Equal(o Asset) bool {
	return a.ID.Equal(o.ID) && a.Fun.Equal(o.Fun)
}

// Half returns the asset with its fungible amount halved. Non-fungible
// assets are returned unchanged.
func (a Asset) Half() Asset {
	if a.Fun.NonFungible {
		return a
	}
	var half uint256.Int
	half.Rsh(&a.Fun.Amount, 1)
	return NewAsset(a.ID, &half)
}

// EncodeXCM implements Encoder.
func (a Asset) EncodeXCM(v Version) (json.RawMessage, error) {
	id, err := encodeAssetID(a.ID, v)
	if err != nil {
		return nil, err
	}
	fun, err := a.Fun.EncodeXCM(v)
	if err != nil {
		return nil, err
	}
	return object(field{"id", id}, field{"fun", fun}), nil
}

// DecodeXCM implements Decoder.
func (a *Asset) DecodeXCM(data json.RawMessage, v Version) error {
	fields, err := decodeObject(data)
	if err != nil {
		return decodeErr("asset", v, data, err)
	}
	idRaw, err := requireField(fields, "id")
	if err != nil {
		return decodeErr("asset", v, data, err)
	}
	funRaw, err := requireField(fields, "fun")
	if err != nil {
		return decodeErr("asset", v, data, err)
	}
	id, err := decodeAssetID(idRaw, v)
	if err != nil {
		return err
	}
	var fun Fungibility
	if err := fun.DecodeXCM(funRaw, v); err != nil {
		return err
	}
	*a = Asset{ID: id, Fun: fun}
	return nil
}

// Assets is an ordered list of assets.
type Assets []Asset

// Equal reports whether both lists hold the same assets in the same order.
func (as Assets) Equal(o Assets) bool {
	if len(as) != len(o) {
		return false
	}
	for i := range as {
		if !as[i].Equal(o[i]) {
			return false
		}
	}
	return true
}

// EncodeXCM implements Encoder.
func (as Assets) EncodeXCM(v Version) (json.RawMessage, error) {
	items := make([]json.RawMessage, len(as))
	for i, a := range as {
		raw, err := a.EncodeXCM(v)
		if err != nil {
			return nil, err
		}
		items[i] = raw
	}
	return array(items), nil
}

// DecodeXCM implements Decoder.
func (as *Assets) DecodeXCM(data json.RawMessage, v Version) error {
	items, err := decodeArray(data)
	if err != nil {
		return decodeErr("assets", v, data, err)
	}
	out := make(Assets, len(items))
	for i, raw := range items {
		if err := out[i].DecodeXCM(raw, v); err != nil {
			return err
		}
	}
	*as = out
	return nil
}

// WildKind enumerates wildcard asset selectors.
type WildKind uint8

// Wildcard kinds. The counted forms exist from V3 on.
const (
	WildAll WildKind = iota
	WildAllOf
	WildAllCounted
	WildAllOfCounted
)

// WildAsset selects holding register assets by wildcard.
type WildAsset struct {
	Kind        WildKind
	ID          Location
	NonFungible bool
	Count       uint32
}

// Equal reports whether two wildcards are identical.
func (w WildAsset) Equal(o WildAsset) bool {
	return w.Kind == o.Kind && w.ID.Equal(o.ID) && w.NonFungible == o.NonFungible && w.Count == o.Count
}

func encodeWildFungibility(nonFungible bool) json.RawMessage {
	if nonFungible {
		return variant("NonFungible", nil)
	}
	return variant("Fungible", nil)
}

func decodeWildFungibility(data json.RawMessage) (bool, error) {
	tag, _, err := decodeVariant(data)
	if err != nil {
		return false, err
	}
	switch tag {
	case "Fungible":
		return false, nil
	case "NonFungible":
		return true, nil
	}
	return false, fmt.Errorf("%w: wild fungibility %q", ErrUnknownVariant, tag)
}

// EncodeXCM implements Encoder.
func (w WildAsset) EncodeXCM(v Version) (json.RawMessage, error) {
	switch w.Kind {
	case WildAll:
		return variant("All", nil), nil
	case WildAllCounted:
		if v < V3 {
			return nil, unsupported("wild AllCounted", v)
		}
		return variant("AllCounted", encodeUint(uint64(w.Count))), nil
	case WildAllOf, WildAllOfCounted:
		id, err := encodeAssetID(w.ID, v)
		if err != nil {
			return nil, err
		}
		fields := []field{{"id", id}, {"fun", encodeWildFungibility(w.NonFungible)}}
		if w.Kind == WildAllOf {
			return variant("AllOf", object(fields...)), nil
		}
		if v < V3 {
			return nil, unsupported("wild AllOfCounted", v)
		}
		fields = append(fields, field{"count", encodeUint(uint64(w.Count))})
		return variant("AllOfCounted", object(fields...)), nil
	}
	return nil, fmt.Errorf("xcm: wild kind %d: %w", w.Kind, ErrUnknownVariant)
}

// DecodeXCM implements Decoder.
func (w *WildAsset) DecodeXCM(data json.RawMessage, v Version) error {
	tag, payload, err := decodeVariant(data)
	if err != nil {
		return decodeErr("wild asset", v, data, err)
	}
	switch tag {
	case "All":
		*w = WildAsset{Kind: WildAll}
		return nil
	case "AllCounted":
		count, err := decodeUint(payload, 32)
		if err != nil {
			return decodeErr("wild asset", v, data, err)
		}
		*w = WildAsset{Kind: WildAllCounted, Count: uint32(count)}
		return nil
	case "AllOf", "AllOfCounted":
		fields, err := decodeObject(payload)
		if err != nil {
			return decodeErr("wild asset", v, data, err)
		}
		out := WildAsset{Kind: WildAllOf}
		if out.ID, err = decodeAssetID(fields["id"], v); err != nil {
			return err
		}
		if out.NonFungible, err = decodeWildFungibility(fields["fun"]); err != nil {
			return decodeErr("wild asset", v, data, err)
		}
		if tag == "AllOfCounted" {
			out.Kind = WildAllOfCounted
			count, err := decodeUint(fields["count"], 32)
			if err != nil {
				return decodeErr("wild asset", v, data, err)
			}
			out.Count = uint32(count)
		}
		*w = out
		return nil
	}
	return decodeErr("wild asset", v, data, fmt.Errorf("%w: %q", ErrUnknownVariant, tag))
}

// AssetFilter is either a definite asset list or a wildcard.
type AssetFilter struct {
	Wild     bool
	Definite Assets
	Wildcard WildAsset
}

// Definite returns a filter over a concrete asset list.
func Definite(assets ...Asset) AssetFilter {
	return AssetFilter{Definite: assets}
}

// Wild returns a wildcard filter.
func Wild(w WildAsset) AssetFilter {
	return AssetFilter{Wild: true, Wildcard: w}
}

// AllCounted returns the wildcard matching up to count assets.
func AllCounted(count uint32) AssetFilter {
	return Wild(WildAsset{Kind: WildAllCounted, Count: count})
}

// All returns the wildcard matching everything.
func All() AssetFilter {
	return Wild(WildAsset{Kind: WildAll})
}

// Equal reports whether two filters are identical.
func (f AssetFilter) Equal(o AssetFilter) bool {
	if f.Wild != o.Wild {
		return false
	}
	if f.Wild {
		return f.Wildcard.Equal(o.Wildcard)
	}
	return f.Definite.Equal(o.Definite)
}

// EncodeXCM implements Encoder.
func (f AssetFilter) EncodeXCM(v Version) (json.RawMessage, error) {
	if f.Wild {
		raw, err := f.Wildcard.EncodeXCM(v)
		if err != nil {
			return nil, err
		}
		return variant("Wild", raw), nil
	}
	raw, err := f.Definite.EncodeXCM(v)
	if err != nil {
		return nil, err
	}
	return variant("Definite", raw), nil
}

// DecodeXCM implements Decoder.
func (f *AssetFilter) DecodeXCM(data json.RawMessage, v Version) error {
	tag, payload, err := decodeVariant(data)
	if err != nil {
		return decodeErr("asset filter", v, data, err)
	}
	switch tag {
	case "Wild":
		var w WildAsset
		if err := w.DecodeXCM(payload, v); err != nil {
			return err
		}
		*f = Wild(w)
		return nil
	case "Definite":
		var assets Assets
		if err := assets.DecodeXCM(payload, v); err != nil {
			return err
		}
		*f = Definite(assets...)
		return nil
	}
	return decodeErr("asset filter", v, data, fmt.Errorf("%w: %q", ErrUnknownVariant, tag))
}
