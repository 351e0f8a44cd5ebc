package xcm

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/holiman/uint256"
)

// Weight is a two-dimensional execution weight.
type Weight struct {
	RefTime   uint256.Int
	ProofSize uint256.Int
}

// NewWeight returns a weight from its two components.
func NewWeight(refTime, proofSize uint64) Weight {
	var w Weight
	w.RefTime.SetUint64(refTime)
	w.ProofSize.SetUint64(proofSize)
	return w
}

// Equal reports whether two weights are identical.
func (w Weight) Equal(o Weight) bool {
	return w.RefTime.Eq(&o.RefTime) && w.ProofSize.Eq(&o.ProofSize)
}

// Legacy returns the single-dimension weight, saturating at the u64 max.
func (w Weight) Legacy() uint64 {
	if w.RefTime.IsUint64() {
		return w.RefTime.Uint64()
	}
	return math.MaxUint64
}

// EncodeXCM implements Encoder. Before V3 only the saturated ref time is
// written.
func (w Weight) EncodeXCM(v Version) (json.RawMessage, error) {
	if !v.weightV2() {
		return encodeUint(w.Legacy()), nil
	}
	return object(
		field{"ref_time", encodeBig(&w.RefTime)},
		field{"proof_size", encodeBig(&w.ProofSize)},
	), nil
}

// DecodeXCM implements Decoder.
func (w *Weight) DecodeXCM(data json.RawMessage, v Version) error {
	if !v.weightV2() {
		refTime, err := decodeUint(data, 64)
		if err != nil {
			return decodeErr("weight", v, data, err)
		}
		*w = NewWeight(refTime, 0)
		return nil
	}
	fields, err := decodeObject(data)
	if err != nil {
		return decodeErr("weight", v, data, err)
	}
	var out Weight
	for name, dst := range map[string]*uint256.Int{"ref_time": &out.RefTime, "proof_size": &out.ProofSize} {
		raw, err := requireField(fields, name)
		if err != nil {
			return decodeErr("weight", v, data, err)
		}
		n, err := decodeBig(raw)
		if err != nil {
			return decodeErr("weight", v, data, err)
		}
		*dst = n
	}
	*w = out
	return nil
}

// WeightLimit bounds execution of a BuyExecution.
type WeightLimit struct {
	Limited bool
	Weight  Weight
}

// Unlimited is the unbounded weight limit.
var Unlimited = WeightLimit{}

// Limited returns a weight limit bounded by w.
func Limited(w Weight) WeightLimit {
	return WeightLimit{Limited: true, Weight: w}
}

// Equal reports whether two limits are identical.
func (l WeightLimit) Equal(o WeightLimit) bool {
	return l.Limited == o.Limited && (!l.Limited || l.Weight.Equal(o.Weight))
}

// EncodeXCM implements Encoder.
func (l WeightLimit) EncodeXCM(v Version) (json.RawMessage, error) {
	if !l.Limited {
		return variant("Unlimited", nil), nil
	}
	raw, err := l.Weight.EncodeXCM(v)
	if err != nil {
		return nil, err
	}
	return variant("Limited", raw), nil
}

// DecodeXCM implements Decoder.
func (l *WeightLimit) DecodeXCM(data json.RawMessage, v Version) error {
	tag, payload, err := decodeVariant(data)
	if err != nil {
		return decodeErr("weight limit", v, data, err)
	}
	switch tag {
	case "Unlimited":
		*l = Unlimited
		return nil
	case "Limited":
		var w Weight
		if err := w.DecodeXCM(payload, v); err != nil {
			return err
		}
		*l = Limited(w)
		return nil
	}
	return decodeErr("weight limit", v, data, fmt.Errorf("%w: %q", ErrUnknownVariant, tag))
}
