package xcm

import (
	"encoding/json"
	"fmt"

	"github.com/Klingon-tech/klingsign/pkg/types"
)

// NetworkKind enumerates consensus systems a junction can be scoped to.
type NetworkKind uint8

// Network kinds. Named is only representable before V3, ByGenesis and
// Ethereum only from V3 on.
const (
	NetworkAny NetworkKind = iota
	NetworkNamed
	NetworkPolkadot
	NetworkKusama
	NetworkWestend
	NetworkRococo
	NetworkByGenesis
	NetworkEthereum
	NetworkBitcoinCore
	NetworkBitcoinCash
)

var networkTags = map[NetworkKind]string{
	NetworkAny:         "Any",
	NetworkNamed:       "Named",
	NetworkPolkadot:    "Polkadot",
	NetworkKusama:      "Kusama",
	NetworkWestend:     "Westend",
	NetworkRococo:      "Rococo",
	NetworkByGenesis:   "ByGenesis",
	NetworkEthereum:    "Ethereum",
	NetworkBitcoinCore: "BitcoinCore",
	NetworkBitcoinCash: "BitcoinCash",
}

// NetworkID identifies a consensus system.
type NetworkID struct {
	Kind    NetworkKind
	Name    []byte     // Named
	Genesis types.Hash // ByGenesis
	ChainID uint64     // Ethereum
}

// AnyNetwork is the wildcard network.
var AnyNetwork = NetworkID{Kind: NetworkAny}

// Equal reports whether two network ids are identical.
func (n NetworkID) Equal(o NetworkID) bool {
	return n.Kind == o.Kind && string(n.Name) == string(o.Name) &&
		n.Genesis == o.Genesis && n.ChainID == o.ChainID
}

func (n NetworkID) String() string {
	return networkTags[n.Kind]
}

// EncodeXCM implements Encoder.
func (n NetworkID) EncodeXCM(v Version) (json.RawMessage, error) {
	switch n.Kind {
	case NetworkAny:
		if v.optionalNetwork() {
			return nullJSON, nil
		}
		return variant("Any", nil), nil
	case NetworkNamed:
		if v.optionalNetwork() {
			return nil, unsupported("network Named", v)
		}
		return variant("Named", encodeBytes(n.Name)), nil
	case NetworkPolkadot, NetworkKusama:
		return variant(networkTags[n.Kind], nil), nil
	case NetworkByGenesis:
		if !v.optionalNetwork() {
			return nil, unsupported("network ByGenesis", v)
		}
		return variant("ByGenesis", encodeBytes(n.Genesis[:])), nil
	case NetworkEthereum:
		if !v.optionalNetwork() {
			return nil, unsupported("network Ethereum", v)
		}
		return variant("Ethereum", object(field{"chainId", encodeUint(n.ChainID)})), nil
	case NetworkWestend, NetworkRococo, NetworkBitcoinCore, NetworkBitcoinCash:
		if !v.optionalNetwork() {
			return nil, unsupported("network "+networkTags[n.Kind], v)
		}
		return variant(networkTags[n.Kind], nil), nil
	}
	return nil, fmt.Errorf("xcm: network kind %d: %w", n.Kind, ErrUnknownVariant)
}

// DecodeXCM implements Decoder. A bare null is Any in every version.
func (n *NetworkID) DecodeXCM(data json.RawMessage, v Version) error {
	if isNull(data) {
		*n = AnyNetwork
		return nil
	}
	tag, payload, err := decodeVariant(data)
	if err != nil {
		return decodeErr("network", v, data, err)
	}
	out := NetworkID{}
	switch tag {
	case "Any":
		out.Kind = NetworkAny
	case "Named":
		name, err := decodeBytes(payload)
		if err != nil {
			return decodeErr("network", v, data, err)
		}
		out.Kind, out.Name = NetworkNamed, name
	case "ByGenesis":
		raw, err := decodeBytes(payload)
		if err != nil || len(raw) != types.HashSize {
			return decodeErr("network", v, data, fmt.Errorf("genesis must be %d bytes", types.HashSize))
		}
		out.Kind = NetworkByGenesis
		copy(out.Genesis[:], raw)
	case "Ethereum":
		fields, err := decodeObject(payload)
		if err != nil {
			return decodeErr("network", v, data, err)
		}
		chainRaw, err := requireField(fields, "chainId")
		if err != nil {
			return decodeErr("network", v, data, err)
		}
		out.Kind = NetworkEthereum
		if out.ChainID, err = decodeUint(chainRaw, 64); err != nil {
			return decodeErr("network", v, data, err)
		}
	default:
		kind, ok := networkKindByTag(tag)
		if !ok {
			return decodeErr("network", v, data, fmt.Errorf("%w: %q", ErrUnknownVariant, tag))
		}
		out.Kind = kind
	}
	*n = out
	return nil
}

func networkKindByTag(tag string) (NetworkKind, bool) {
	for kind, name := range networkTags {
		if name == tag {
			return kind, true
		}
	}
	return 0, false
}
