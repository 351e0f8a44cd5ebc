package runtime

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/Klingon-tech/klingsign/pkg/types"
	"github.com/Klingon-tech/klingsign/pkg/xcm"
)

// Pallet and call names used by delegated signing and XCM transfers.
const (
	ModuleProxy    = "Proxy"
	ModuleMultisig = "Multisig"
	ModuleUtility  = "Utility"

	// Relay chains expose the XCM pallet as XcmPallet, parachains as
	// PolkadotXcm.
	ModuleXcmPallet   = "XcmPallet"
	ModulePolkadotXcm = "PolkadotXcm"
)

// Well-known call paths.
var (
	ProxyPath             = NewCallCodingPath(ModuleProxy, "proxy")
	AsMultiPath           = NewCallCodingPath(ModuleMultisig, "as_multi")
	AsMultiThreshold1Path = NewCallCodingPath(ModuleMultisig, "as_multi_threshold_1")
	BatchAllPath          = NewCallCodingPath(ModuleUtility, "batch_all")
	BatchPath             = NewCallCodingPath(ModuleUtility, "batch")
	ForceBatchPath        = NewCallCodingPath(ModuleUtility, "force_batch")
)

// IsBatch reports whether p is one of the Utility batch calls.
func IsBatch(p CallCodingPath) bool {
	return p == BatchAllPath || p == BatchPath || p == ForceBatchPath
}

// Address is an account reference inside call arguments. Substrate chains
// use MultiAddress::Id, Ethereum-based chains the bare 20-byte key.
type Address struct {
	ID            types.AccountID
	EthereumBased bool
}

// MarshalJSON implements json.Marshaler.
func (a Address) MarshalJSON() ([]byte, error) {
	if a.EthereumBased {
		return json.Marshal(a.ID.Hex())
	}
	return json.Marshal([]string{"Id", a.ID.Hex()})
}

// UnmarshalJSON accepts both address forms.
func (a *Address) UnmarshalJSON(data []byte) error {
	var hexID string
	if err := json.Unmarshal(data, &hexID); err == nil {
		id, err := types.HexToAccountID(hexID)
		if err != nil {
			return err
		}
		*a = Address{ID: id, EthereumBased: true}
		return nil
	}
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil || len(pair) != 2 {
		return fmt.Errorf("address: expected [\"Id\", hex] or hex")
	}
	var tag string
	if err := json.Unmarshal(pair[0], &tag); err != nil || tag != "Id" {
		return fmt.Errorf("address: unsupported variant %s", pair[0])
	}
	if err := json.Unmarshal(pair[1], &hexID); err != nil {
		return fmt.Errorf("address: %w", err)
	}
	id, err := types.HexToAccountID(hexID)
	if err != nil {
		return err
	}
	*a = Address{ID: id}
	return nil
}

// unitVariant encodes a field-less enum value as [tag, null].
type unitVariant string

func (u unitVariant) MarshalJSON() ([]byte, error) {
	return json.Marshal([]any{string(u), nil})
}

func (u *unitVariant) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil || len(pair) != 2 {
		return fmt.Errorf("expected [tag, null]")
	}
	var tag string
	if err := json.Unmarshal(pair[0], &tag); err != nil {
		return err
	}
	*u = unitVariant(tag)
	return nil
}

// decString is an integer written as a decimal string.
type decString uint64

func (d decString) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatUint(uint64(d), 10))
}

func (d *decString) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		var n uint64
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("expected integer")
		}
		*d = decString(n)
		return nil
	}
	n, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return err
	}
	*d = decString(n)
	return nil
}

// ProxyArgs are the arguments of Proxy.proxy.
type ProxyArgs struct {
	Real      Address
	ProxyType ProxyType // empty means no forced type
	Call      Call
}

type proxyWire struct {
	Real           Address      `json:"real"`
	ForceProxyType *unitVariant `json:"force_proxy_type"`
	Call           Call         `json:"call"`
}

// ProxyCall wraps call in Proxy.proxy dispatched as real.
func ProxyCall(args ProxyArgs) (Call, error) {
	w := proxyWire{Real: args.Real, Call: args.Call}
	if args.ProxyType != "" {
		t := unitVariant(args.ProxyType)
		w.ForceProxyType = &t
	}
	return NewCall(ModuleProxy, ProxyPath.Call, w)
}

// DecodeProxyCall extracts the arguments of a Proxy.proxy call.
func DecodeProxyCall(c Call) (ProxyArgs, error) {
	if !c.Is(ProxyPath) {
		return ProxyArgs{}, fmt.Errorf("%s is not %s", c.Path(), ProxyPath)
	}
	var w proxyWire
	if err := json.Unmarshal(c.Args, &w); err != nil {
		return ProxyArgs{}, fmt.Errorf("decode %s: %w", ProxyPath, err)
	}
	args := ProxyArgs{Real: w.Real, Call: w.Call}
	if w.ForceProxyType != nil {
		args.ProxyType = ProxyType(*w.ForceProxyType)
	}
	return args, nil
}

// Timepoint locates the first approval of a pending multisig operation.
type Timepoint struct {
	Height uint32 `json:"height"`
	Index  uint32 `json:"index"`
}

// MultisigArgs are the arguments of Multisig.as_multi and
// Multisig.as_multi_threshold_1.
type MultisigArgs struct {
	Threshold        uint16
	OtherSignatories []types.AccountID
	Timepoint        *Timepoint
	Call             Call
	MaxWeight        xcm.Weight
}

type asMultiWire struct {
	Threshold        decString         `json:"threshold"`
	OtherSignatories []types.AccountID `json:"other_signatories"`
	MaybeTimepoint   *Timepoint        `json:"maybe_timepoint"`
	Call             Call              `json:"call"`
	MaxWeight        json.RawMessage   `json:"max_weight"`
}

type asMultiThreshold1Wire struct {
	OtherSignatories []types.AccountID `json:"other_signatories"`
	Call             Call              `json:"call"`
}

// AsMultiCall builds Multisig.as_multi, or Multisig.as_multi_threshold_1
// when the threshold is 1. Other signatories are sorted as the pallet
// requires.
func AsMultiCall(args MultisigArgs) (Call, error) {
	others := append([]types.AccountID{}, args.OtherSignatories...)
	types.SortAccountIDs(others)
	if args.Threshold <= 1 {
		return NewCall(ModuleMultisig, AsMultiThreshold1Path.Call, asMultiThreshold1Wire{
			OtherSignatories: others,
			Call:             args.Call,
		})
	}
	weight, err := args.MaxWeight.EncodeXCM(xcm.V3)
	if err != nil {
		return Call{}, err
	}
	return NewCall(ModuleMultisig, AsMultiPath.Call, asMultiWire{
		Threshold:        decString(args.Threshold),
		OtherSignatories: others,
		MaybeTimepoint:   args.Timepoint,
		Call:             args.Call,
		MaxWeight:        weight,
	})
}

// DecodeMultisigCall extracts the arguments of either multisig call.
func DecodeMultisigCall(c Call) (MultisigArgs, error) {
	switch {
	case c.Is(AsMultiThreshold1Path):
		var w asMultiThreshold1Wire
		if err := json.Unmarshal(c.Args, &w); err != nil {
			return MultisigArgs{}, fmt.Errorf("decode %s: %w", c.Path(), err)
		}
		return MultisigArgs{Threshold: 1, OtherSignatories: w.OtherSignatories, Call: w.Call}, nil
	case c.Is(AsMultiPath):
		var w asMultiWire
		if err := json.Unmarshal(c.Args, &w); err != nil {
			return MultisigArgs{}, fmt.Errorf("decode %s: %w", c.Path(), err)
		}
		args := MultisigArgs{
			Threshold:        uint16(w.Threshold),
			OtherSignatories: w.OtherSignatories,
			Timepoint:        w.MaybeTimepoint,
			Call:             w.Call,
		}
		if err := args.MaxWeight.DecodeXCM(w.MaxWeight, xcm.V3); err != nil {
			return MultisigArgs{}, err
		}
		return args, nil
	}
	return MultisigArgs{}, fmt.Errorf("%s is not a multisig call", c.Path())
}

type batchWire struct {
	Calls []Call `json:"calls"`
}

// BatchAll wraps calls in Utility.batch_all.
func BatchAll(calls []Call) (Call, error) {
	return NewCall(ModuleUtility, BatchAllPath.Call, batchWire{Calls: calls})
}

// DecodeBatch returns the inner calls of any Utility batch call.
func DecodeBatch(c Call) ([]Call, error) {
	if !IsBatch(c.Path()) {
		return nil, fmt.Errorf("%s is not a batch call", c.Path())
	}
	var w batchWire
	if err := json.Unmarshal(c.Args, &w); err != nil {
		return nil, fmt.Errorf("decode %s: %w", c.Path(), err)
	}
	return w.Calls, nil
}

// XcmExecuteCall wraps a versioned message in <module>.execute.
func XcmExecuteCall(module string, message xcm.VersionedMessage, maxWeight xcm.Weight) (Call, error) {
	msg, err := message.Bytes()
	if err != nil {
		return Call{}, fmt.Errorf("encode xcm message: %w", err)
	}
	weight, err := maxWeight.EncodeXCM(xcm.V3)
	if err != nil {
		return Call{}, err
	}
	return NewCall(module, "execute", struct {
		Message   json.RawMessage `json:"message"`
		MaxWeight json.RawMessage `json:"max_weight"`
	}{msg, weight})
}
