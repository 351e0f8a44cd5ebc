package xcm

import (
	"bytes"
	"encoding/json"
)

// Instruction tags.
const (
	TagWithdrawAsset           = "WithdrawAsset"
	TagReserveAssetDeposited   = "ReserveAssetDeposited"
	TagReceiveTeleportedAsset  = "ReceiveTeleportedAsset"
	TagBurnAsset               = "BurnAsset"
	TagClearOrigin             = "ClearOrigin"
	TagBuyExecution            = "BuyExecution"
	TagDepositAsset            = "DepositAsset"
	TagDepositReserveAsset     = "DepositReserveAsset"
	TagInitiateReserveWithdraw = "InitiateReserveWithdraw"
	TagInitiateTeleport        = "InitiateTeleport"
)

// Instruction is one XCM instruction. Unrecognised instructions decode to
// Other and are written back unchanged.
type Instruction interface {
	Encoder
	Name() string
}

// WithdrawAsset moves assets from the origin into the holding register.
type WithdrawAsset struct{ Assets Assets }

// ReserveAssetDeposited credits derivative assets backed by a reserve.
type ReserveAssetDeposited struct{ Assets Assets }

// ReceiveTeleportedAsset credits teleported assets.
type ReceiveTeleportedAsset struct{ Assets Assets }

// BurnAsset destroys assets in the holding register. V3 and later.
type BurnAsset struct{ Assets Assets }

// ClearOrigin drops the message origin.
type ClearOrigin struct{}

// BuyExecution pays for execution from the holding register.
type BuyExecution struct {
	Fees        Asset
	WeightLimit WeightLimit
}

// DepositAsset deposits holding register assets to a beneficiary.
// MaxAssets is only carried before V3 and reads as 1 afterwards.
type DepositAsset struct {
	Assets      AssetFilter
	MaxAssets   uint32
	Beneficiary Location
}

// DepositReserveAsset deposits assets to dest and notifies it with xcm.
type DepositReserveAsset struct {
	Assets    AssetFilter
	MaxAssets uint32
	Dest      Location
	XCM       Message
}

// InitiateReserveWithdraw withdraws assets at a reserve and runs xcm there.
type InitiateReserveWithdraw struct {
	Assets  AssetFilter
	Reserve Location
	XCM     Message
}

// InitiateTeleport teleports assets to dest and runs xcm there.
type InitiateTeleport struct {
	Assets AssetFilter
	Dest   Location
	XCM    Message
}

// Other carries an instruction the codec does not model.
type Other struct {
	Tag     string
	Payload json.RawMessage
}

func (WithdrawAsset) Name() string           { return TagWithdrawAsset }
func (ReserveAssetDeposited) Name() string   { return TagReserveAssetDeposited }
func (ReceiveTeleportedAsset) Name() string  { return TagReceiveTeleportedAsset }
func (BurnAsset) Name() string               { return TagBurnAsset }
func (ClearOrigin) Name() string             { return TagClearOrigin }
func (BuyExecution) Name() string            { return TagBuyExecution }
func (DepositAsset) Name() string            { return TagDepositAsset }
func (DepositReserveAsset) Name() string     { return TagDepositReserveAsset }
func (InitiateReserveWithdraw) Name() string { return TagInitiateReserveWithdraw }
func (InitiateTeleport) Name() string        { return TagInitiateTeleport }
func (o Other) Name() string                 { return o.Tag }

func encodeAssetsInstruction(tag string, assets Assets, v Version) (json.RawMessage, error) {
	raw, err := assets.EncodeXCM(v)
	if err != nil {
		return nil, err
	}
	return variant(tag, raw), nil
}

func (i WithdrawAsset) EncodeXCM(v Version) (json.RawMessage, error) {
	return encodeAssetsInstruction(TagWithdrawAsset, i.Assets, v)
}

func (i ReserveAssetDeposited) EncodeXCM(v Version) (json.RawMessage, error) {
	return encodeAssetsInstruction(TagReserveAssetDeposited, i.Assets, v)
}

func (i ReceiveTeleportedAsset) EncodeXCM(v Version) (json.RawMessage, error) {
	return encodeAssetsInstruction(TagReceiveTeleportedAsset, i.Assets, v)
}

func (i BurnAsset) EncodeXCM(v Version) (json.RawMessage, error) {
	if v < V3 {
		return nil, unsupported(TagBurnAsset, v)
	}
	return encodeAssetsInstruction(TagBurnAsset, i.Assets, v)
}

func (ClearOrigin) EncodeXCM(Version) (json.RawMessage, error) {
	return variant(TagClearOrigin, nil), nil
}

func (i BuyExecution) EncodeXCM(v Version) (json.RawMessage, error) {
	fees, err := i.Fees.EncodeXCM(v)
	if err != nil {
		return nil, err
	}
	limit, err := i.WeightLimit.EncodeXCM(v)
	if err != nil {
		return nil, err
	}
	return variant(TagBuyExecution, object(field{"fees", fees}, field{"weight_limit", limit})), nil
}

type namedValue struct {
	name  string
	value Encoder
}

// encodeInstruction encodes the asset filter followed by each named value,
// inserting max_assets after the filter for versions that carry it.
func encodeInstruction(tag string, v Version, filter AssetFilter, maxAssets *uint32, rest ...namedValue) (json.RawMessage, error) {
	assets, err := filter.EncodeXCM(v)
	if err != nil {
		return nil, err
	}
	if maxAssets != nil && *maxAssets == 0 {
		return nil, ErrZeroMaxAssets
	}
	fields := []field{{"assets", assets}}
	if maxAssets != nil && v.hasMaxAssets() {
		fields = append(fields, field{"max_assets", encodeUint(uint64(*maxAssets))})
	}
	for _, nv := range rest {
		raw, err := nv.value.EncodeXCM(v)
		if err != nil {
			return nil, err
		}
		fields = append(fields, field{nv.name, raw})
	}
	return variant(tag, object(fields...)), nil
}

func (i DepositAsset) EncodeXCM(v Version) (json.RawMessage, error) {
	return encodeInstruction(TagDepositAsset, v, i.Assets, &i.MaxAssets,
		namedValue{"beneficiary", i.Beneficiary})
}

func (i DepositReserveAsset) EncodeXCM(v Version) (json.RawMessage, error) {
	return encodeInstruction(TagDepositReserveAsset, v, i.Assets, &i.MaxAssets,
		namedValue{"dest", i.Dest}, namedValue{"xcm", i.XCM})
}

func (i InitiateReserveWithdraw) EncodeXCM(v Version) (json.RawMessage, error) {
	return encodeInstruction(TagInitiateReserveWithdraw, v, i.Assets, nil,
		namedValue{"reserve", i.Reserve}, namedValue{"xcm", i.XCM})
}

func (i InitiateTeleport) EncodeXCM(v Version) (json.RawMessage, error) {
	return encodeInstruction(TagInitiateTeleport, v, i.Assets, nil,
		namedValue{"dest", i.Dest}, namedValue{"xcm", i.XCM})
}

// EncodeXCM writes the captured payload verbatim.
func (o Other) EncodeXCM(Version) (json.RawMessage, error) {
	return variant(o.Tag, o.payload()), nil
}

// payload returns the captured bytes, with an empty payload read as null.
func (o Other) payload() json.RawMessage {
	if len(o.Payload) == 0 {
		return nullJSON
	}
	return o.Payload
}

// Equal reports whether two passthrough instructions carry the same bytes.
func (o Other) Equal(x Other) bool {
	return o.Tag == x.Tag && bytes.Equal(o.payload(), x.payload())
}

// Message is an ordered XCM program.
type Message []Instruction

// Names returns the instruction tags in order.
func (m Message) Names() []string {
	names := make([]string, len(m))
	for i, instr := range m {
		names[i] = instr.Name()
	}
	return names
}

// EncodeXCM implements Encoder.
func (m Message) EncodeXCM(v Version) (json.RawMessage, error) {
	items := make([]json.RawMessage, len(m))
	for i, instr := range m {
		raw, err := instr.EncodeXCM(v)
		if err != nil {
			return nil, err
		}
		items[i] = raw
	}
	return array(items), nil
}

// DecodeXCM implements Decoder.
func (m *Message) DecodeXCM(data json.RawMessage, v Version) error {
	items, err := decodeArray(data)
	if err != nil {
		return decodeErr("message", v, data, err)
	}
	out := make(Message, len(items))
	for i, raw := range items {
		instr, err := decodeInstruction(raw, v)
		if err != nil {
			return err
		}
		out[i] = instr
	}
	*m = out
	return nil
}

type instructionFields map[string]json.RawMessage

func (f instructionFields) decode(name string, dst Decoder, v Version) error {
	raw, err := requireField(f, name)
	if err != nil {
		return err
	}
	return dst.DecodeXCM(raw, v)
}

// maxAssets reads max_assets where the version carries it and defaults to 1.
func (f instructionFields) maxAssets(v Version) (uint32, error) {
	if !v.hasMaxAssets() {
		return 1, nil
	}
	raw, ok := f["max_assets"]
	if !ok {
		return 1, nil
	}
	n, err := decodeUint(raw, 32)
	if err != nil {
		return 0, err
	}
	if n == 0 {
		return 0, ErrZeroMaxAssets
	}
	return uint32(n), nil
}

func decodeInstruction(data json.RawMessage, v Version) (Instruction, error) {
	tag, payload, err := decodeVariant(data)
	if err != nil {
		return nil, decodeErr("instruction", v, data, err)
	}
	instr, err := decodeKnownInstruction(tag, payload, v)
	if err != nil {
		return nil, decodeErr(tag, v, data, err)
	}
	return instr, nil
}

func decodeKnownInstruction(tag string, payload json.RawMessage, v Version) (Instruction, error) {
	switch tag {
	case TagWithdrawAsset, TagReserveAssetDeposited, TagReceiveTeleportedAsset, TagBurnAsset:
		if tag == TagBurnAsset && v < V3 {
			return nil, unsupported(TagBurnAsset, v)
		}
		var assets Assets
		if err := assets.DecodeXCM(payload, v); err != nil {
			return nil, err
		}
		switch tag {
		case TagWithdrawAsset:
			return WithdrawAsset{Assets: assets}, nil
		case TagReserveAssetDeposited:
			return ReserveAssetDeposited{Assets: assets}, nil
		case TagReceiveTeleportedAsset:
			return ReceiveTeleportedAsset{Assets: assets}, nil
		}
		return BurnAsset{Assets: assets}, nil
	case TagClearOrigin:
		return ClearOrigin{}, nil
	case TagBuyExecution, TagDepositAsset, TagDepositReserveAsset, TagInitiateReserveWithdraw, TagInitiateTeleport:
	default:
		return Other{Tag: tag, Payload: bytes.Clone(payload)}, nil
	}

	obj, err := decodeObject(payload)
	if err != nil {
		return nil, err
	}
	f := instructionFields(obj)
	switch tag {
	case TagBuyExecution:
		var i BuyExecution
		if err := f.decode("fees", &i.Fees, v); err != nil {
			return nil, err
		}
		if err := f.decode("weight_limit", &i.WeightLimit, v); err != nil {
			return nil, err
		}
		return i, nil
	case TagDepositAsset:
		var i DepositAsset
		if err := f.decode("assets", &i.Assets, v); err != nil {
			return nil, err
		}
		if i.MaxAssets, err = f.maxAssets(v); err != nil {
			return nil, err
		}
		if err := f.decode("beneficiary", &i.Beneficiary, v); err != nil {
			return nil, err
		}
		return i, nil
	case TagDepositReserveAsset:
		var i DepositReserveAsset
		if err := f.decode("assets", &i.Assets, v); err != nil {
			return nil, err
		}
		if i.MaxAssets, err = f.maxAssets(v); err != nil {
			return nil, err
		}
		if err := f.decode("dest", &i.Dest, v); err != nil {
			return nil, err
		}
		if err := f.decode("xcm", &i.XCM, v); err != nil {
			return nil, err
		}
		return i, nil
	case TagInitiateReserveWithdraw:
		var i InitiateReserveWithdraw
		if err := f.decode("assets", &i.Assets, v); err != nil {
			return nil, err
		}
		if err := f.decode("reserve", &i.Reserve, v); err != nil {
			return nil, err
		}
		if err := f.decode("xcm", &i.XCM, v); err != nil {
			return nil, err
		}
		return i, nil
	}
	var i InitiateTeleport
	if err := f.decode("assets", &i.Assets, v); err != nil {
		return nil, err
	}
	if err := f.decode("dest", &i.Dest, v); err != nil {
		return nil, err
	}
	if err := f.decode("xcm", &i.XCM, v); err != nil {
		return nil, err
	}
	return i, nil
}
