package delegation

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/Klingon-tech/klingsign/pkg/runtime"
	"github.com/Klingon-tech/klingsign/pkg/types"
	"github.com/Klingon-tech/klingsign/pkg/xcm"
)

// PathValue is the part of a delegation edge needed to build its
// dispatch call.
type PathValue struct {
	Kind        RelationType      `json:"type"`
	ProxyType   runtime.ProxyType `json:"proxy_type,omitempty"`
	Threshold   uint16            `json:"threshold,omitempty"`
	Signatories []types.AccountID `json:"signatories,omitempty"`
}

// Equal reports whether two values build the same wrapping call.
func (v PathValue) Equal(o PathValue) bool {
	return v.Kind == o.Kind && v.ProxyType == o.ProxyType &&
		v.Threshold == o.Threshold && slices.Equal(v.Signatories, o.Signatories)
}

// DelaysCallExecution reports whether the wrapped call waits for
// further approvals.
func (v PathValue) DelaysCallExecution() bool {
	return v.Kind == RelationMultisig && v.Threshold > 1
}

// WrapCall nests call in the dispatch call of key. The delegate submits
// the result on behalf of key.Delegated.
func (v PathValue) WrapCall(call runtime.Call, key DelegationKey, ethereumBased bool) (runtime.Call, error) {
	if key.Relation != v.Kind {
		return runtime.Call{}, fmt.Errorf("wrap %s call with %s key", v.Kind, key.Relation)
	}
	switch v.Kind {
	case RelationProxy:
		return runtime.ProxyCall(runtime.ProxyArgs{
			Real:      runtime.Address{ID: key.Delegated, EthereumBased: ethereumBased},
			ProxyType: v.ProxyType,
			Call:      call,
		})
	case RelationMultisig:
		others := make([]types.AccountID, 0, len(v.Signatories))
		for _, s := range v.Signatories {
			if s != key.Delegate {
				others = append(others, s)
			}
		}
		return runtime.AsMultiCall(runtime.MultisigArgs{
			Threshold:        v.Threshold,
			OtherSignatories: others,
			Call:             call,
			MaxWeight:        xcm.Weight{},
		})
	}
	return runtime.Call{}, fmt.Errorf("unknown delegation type %q", v.Kind)
}

// PathComponent is one hop of a GraphPath: Delegate acts through Node
// for the previous account in the path.
type PathComponent struct {
	Delegate types.AccountID
	Node     Node
}

// MarshalJSON implements json.Marshaler.
func (c PathComponent) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Delegate   types.AccountID `json:"delegate"`
		Delegation PathValue       `json:"delegation"`
	}{c.Delegate, c.Node.PathValue()})
}

// GraphPath is a delegation chain starting at the account next to the
// delegated source. The last component is the outermost signer.
type GraphPath []PathComponent

// AccountIDs returns the delegate ids in order.
func (p GraphPath) AccountIDs() []types.AccountID {
	ids := make([]types.AccountID, len(p))
	for i, c := range p {
		ids[i] = c.Delegate
	}
	return ids
}

// Last returns the outermost delegate.
func (p GraphPath) Last() types.AccountID {
	if len(p) == 0 {
		return ""
	}
	return p[len(p)-1].Delegate
}

// First returns the delegate acting directly for the source.
func (p GraphPath) First() types.AccountID {
	if len(p) == 0 {
		return ""
	}
	return p[0].Delegate
}

func comparePaths(a, b GraphPath) int {
	if d := len(a) - len(b); d != 0 {
		return d
	}
	for i := range a {
		if d := a[i].Delegate.Compare(b[i].Delegate); d != 0 {
			return d
		}
	}
	return 0
}
