package xcm

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Klingon-tech/klingsign/pkg/types"
	"github.com/holiman/uint256"
)

// JunctionKind enumerates the junction variants.
type JunctionKind uint8

// Junction kinds.
const (
	JunctionParachain JunctionKind = iota
	JunctionAccountID32
	JunctionAccountIndex64
	JunctionAccountKey20
	JunctionPalletInstance
	JunctionGeneralIndex
	JunctionGeneralKey
	JunctionOnlyChild
	JunctionGlobalConsensus
)

var junctionTags = [...]string{
	JunctionParachain:       "Parachain",
	JunctionAccountID32:     "AccountId32",
	JunctionAccountIndex64:  "AccountIndex64",
	JunctionAccountKey20:    "AccountKey20",
	JunctionPalletInstance:  "PalletInstance",
	JunctionGeneralIndex:    "GeneralIndex",
	JunctionGeneralKey:      "GeneralKey",
	JunctionOnlyChild:       "OnlyChild",
	JunctionGlobalConsensus: "GlobalConsensus",
}

// generalKeySize is the fixed data slot of a sized GeneralKey.
const generalKeySize = 32

// Junction is one hop of a location interior. Only the fields relevant to
// Kind are set.
type Junction struct {
	Kind           JunctionKind
	ParaID         uint32
	Network        NetworkID
	AccountID      types.AccountID
	Index          uint64
	PalletInstance uint8
	GeneralIndex   uint256.Int
	GeneralKey     []byte
}

// Parachain returns a Parachain junction.
func Parachain(id uint32) Junction {
	return Junction{Kind: JunctionParachain, ParaID: id}
}

// AccountID32 returns an AccountId32 junction.
func AccountID32(network NetworkID, id types.AccountID) Junction {
	return Junction{Kind: JunctionAccountID32, Network: network, AccountID: id}
}

// AccountKey20 returns an AccountKey20 junction.
func AccountKey20(network NetworkID, key types.AccountID) Junction {
	return Junction{Kind: JunctionAccountKey20, Network: network, AccountID: key}
}

// AccountIndex64 returns an AccountIndex64 junction.
func AccountIndex64(network NetworkID, index uint64) Junction {
	return Junction{Kind: JunctionAccountIndex64, Network: network, Index: index}
}

// PalletInstance returns a PalletInstance junction.
func PalletInstance(index uint8) Junction {
	return Junction{Kind: JunctionPalletInstance, PalletInstance: index}
}

// GeneralIndex returns a GeneralIndex junction.
func GeneralIndex(index *uint256.Int) Junction {
	return Junction{Kind: JunctionGeneralIndex, GeneralIndex: *index}
}

// GeneralKey returns a GeneralKey junction.
func GeneralKey(key []byte) Junction {
	return Junction{Kind: JunctionGeneralKey, GeneralKey: bytes.Clone(key)}
}

// OnlyChild returns an OnlyChild junction.
func OnlyChild() Junction {
	return Junction{Kind: JunctionOnlyChild}
}

// GlobalConsensus returns a GlobalConsensus junction.
func GlobalConsensus(network NetworkID) Junction {
	return Junction{Kind: JunctionGlobalConsensus, Network: network}
}

// Equal reports whether two junctions are identical.
func (j Junction) Equal(o Junction) bool {
	if j.Kind != o.Kind {
		return false
	}
	switch j.Kind {
	case JunctionParachain:
		return j.ParaID == o.ParaID
	case JunctionAccountID32, JunctionAccountKey20:
		return j.Network.Equal(o.Network) && j.AccountID == o.AccountID
	case JunctionAccountIndex64:
		return j.Network.Equal(o.Network) && j.Index == o.Index
	case JunctionPalletInstance:
		return j.PalletInstance == o.PalletInstance
	case JunctionGeneralIndex:
		return j.GeneralIndex.Eq(&o.GeneralIndex)
	case JunctionGeneralKey:
		return bytes.Equal(j.GeneralKey, o.GeneralKey)
	case JunctionGlobalConsensus:
		return j.Network.Equal(o.Network)
	}
	return true
}

func (j Junction) String() string {
	switch j.Kind {
	case JunctionParachain:
		return fmt.Sprintf("Parachain(%d)", j.ParaID)
	case JunctionAccountID32, JunctionAccountKey20:
		return fmt.Sprintf("%s(%s)", junctionTags[j.Kind], j.AccountID.Hex())
	case JunctionPalletInstance:
		return fmt.Sprintf("PalletInstance(%d)", j.PalletInstance)
	case JunctionGeneralIndex:
		return "GeneralIndex(" + j.GeneralIndex.Dec() + ")"
	case JunctionGeneralKey:
		return "GeneralKey(" + types.EncodeHex(j.GeneralKey) + ")"
	}
	if int(j.Kind) < len(junctionTags) {
		return junctionTags[j.Kind]
	}
	return fmt.Sprintf("Junction(%d)", j.Kind)
}

// EncodeXCM implements Encoder.
func (j Junction) EncodeXCM(v Version) (json.RawMessage, error) {
	switch j.Kind {
	case JunctionParachain:
		return variant("Parachain", encodeUint(uint64(j.ParaID))), nil
	case JunctionAccountID32, JunctionAccountKey20, JunctionAccountIndex64:
		network, err := j.Network.EncodeXCM(v)
		if err != nil {
			return nil, err
		}
		var body json.RawMessage
		switch j.Kind {
		case JunctionAccountID32:
			if j.AccountID.Len() != types.SubstrateAccountIDSize {
				return nil, fmt.Errorf("xcm: AccountId32 needs %d bytes, got %d", types.SubstrateAccountIDSize, j.AccountID.Len())
			}
			body = object(field{"network", network}, field{"id", encodeBytes(j.AccountID.Bytes())})
		case JunctionAccountKey20:
			if j.AccountID.Len() != types.EthereumAccountIDSize {
				return nil, fmt.Errorf("xcm: AccountKey20 needs %d bytes, got %d", types.EthereumAccountIDSize, j.AccountID.Len())
			}
			body = object(field{"network", network}, field{"key", encodeBytes(j.AccountID.Bytes())})
		default:
			body = object(field{"network", network}, field{"index", encodeUint(j.Index)})
		}
		return variant(junctionTags[j.Kind], body), nil
	case JunctionPalletInstance:
		return variant("PalletInstance", encodeUint(uint64(j.PalletInstance))), nil
	case JunctionGeneralIndex:
		return variant("GeneralIndex", encodeBig(&j.GeneralIndex)), nil
	case JunctionGeneralKey:
		if !v.sizedGeneralKey() {
			return variant("GeneralKey", encodeBytes(j.GeneralKey)), nil
		}
		key := j.GeneralKey
		if len(key) > generalKeySize {
			key = key[:generalKeySize]
		}
		data := make([]byte, generalKeySize)
		copy(data, key)
		return variant("GeneralKey", object(
			field{"length", encodeUint(uint64(len(key)))},
			field{"data", encodeBytes(data)},
		)), nil
	case JunctionOnlyChild:
		return variant("OnlyChild", nil), nil
	case JunctionGlobalConsensus:
		if !v.optionalNetwork() {
			return nil, unsupported("junction GlobalConsensus", v)
		}
		if j.Network.Kind == NetworkAny {
			return nil, fmt.Errorf("xcm: GlobalConsensus requires a concrete network")
		}
		network, err := j.Network.EncodeXCM(v)
		if err != nil {
			return nil, err
		}
		return variant("GlobalConsensus", network), nil
	}
	return nil, fmt.Errorf("xcm: junction kind %d: %w", j.Kind, ErrUnknownVariant)
}

// DecodeXCM implements Decoder.
func (j *Junction) DecodeXCM(data json.RawMessage, v Version) error {
	tag, payload, err := decodeVariant(data)
	if err != nil {
		return decodeErr("junction", v, data, err)
	}
	out, err := decodeJunction(tag, payload, v)
	if err != nil {
		return decodeErr("junction", v, data, err)
	}
	*j = out
	return nil
}

func decodeJunction(tag string, payload json.RawMessage, v Version) (Junction, error) {
	switch tag {
	case "Parachain":
		id, err := decodeUint(payload, 32)
		return Parachain(uint32(id)), err
	case "AccountId32", "AccountKey20", "AccountIndex64":
		fields, err := decodeObject(payload)
		if err != nil {
			return Junction{}, err
		}
		var network NetworkID
		if err := network.DecodeXCM(fields["network"], v); err != nil {
			return Junction{}, err
		}
		switch tag {
		case "AccountId32":
			id, err := decodeAccount(fields, "id", types.SubstrateAccountIDSize)
			return AccountID32(network, id), err
		case "AccountKey20":
			key, err := decodeAccount(fields, "key", types.EthereumAccountIDSize)
			return AccountKey20(network, key), err
		}
		raw, err := requireField(fields, "index")
		if err != nil {
			return Junction{}, err
		}
		index, err := decodeUint(raw, 64)
		return AccountIndex64(network, index), err
	case "PalletInstance":
		index, err := decodeUint(payload, 8)
		return PalletInstance(uint8(index)), err
	case "GeneralIndex":
		index, err := decodeBig(payload)
		return GeneralIndex(&index), err
	case "GeneralKey":
		key, err := decodeGeneralKey(payload, v)
		return Junction{Kind: JunctionGeneralKey, GeneralKey: key}, err
	case "OnlyChild":
		return OnlyChild(), nil
	case "GlobalConsensus":
		var network NetworkID
		err := network.DecodeXCM(payload, v)
		return GlobalConsensus(network), err
	}
	return Junction{}, fmt.Errorf("%w: junction %q", ErrUnknownVariant, tag)
}

func decodeAccount(fields map[string]json.RawMessage, name string, size int) (types.AccountID, error) {
	raw, err := requireField(fields, name)
	if err != nil {
		return "", err
	}
	b, err := decodeBytes(raw)
	if err != nil {
		return "", err
	}
	if len(b) != size {
		return "", fmt.Errorf("%s must be %d bytes, got %d", name, size, len(b))
	}
	return types.NewAccountID(b), nil
}

func decodeGeneralKey(payload json.RawMessage, v Version) ([]byte, error) {
	if !v.sizedGeneralKey() {
		return decodeBytes(payload)
	}
	fields, err := decodeObject(payload)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGeneralKey, err)
	}
	lengthRaw, err := requireField(fields, "length")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGeneralKey, err)
	}
	dataRaw, err := requireField(fields, "data")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGeneralKey, err)
	}
	length, err := decodeUint(lengthRaw, 8)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGeneralKey, err)
	}
	data, err := decodeBytes(dataRaw)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedGeneralKey, err)
	}
	if len(data) != generalKeySize || length > generalKeySize {
		return nil, fmt.Errorf("%w: length %d, data %d bytes", ErrMalformedGeneralKey, length, len(data))
	}
	return data[:length], nil
}
