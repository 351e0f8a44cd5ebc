// Package delegation resolves which wallet can sign calls on behalf of a
// proxied or multisig account, and rewrites the calls so they dispatch
// through the resolved chain of delegates.
//
// Resolution runs in four stages over a fresh snapshot of the wallets:
// a Graph of proxy and multisig edges is searched per call, a PathMerger
// narrows the candidates to delegates able to authorize every call, a
// PathFinder picks the signing account by wallet type preference, and
// the calls are folded into nested Proxy.proxy and Multisig.as_multi
// dispatches.
package delegation

import (
	"cmp"
	"slices"

	"github.com/Klingon-tech/klingsign/pkg/runtime"
	"github.com/Klingon-tech/klingsign/pkg/types"
)

// RelationType is the on-chain mechanism behind a delegation edge.
type RelationType string

// Relation types.
const (
	RelationProxy    RelationType = "proxy"
	RelationMultisig RelationType = "multisig"
)

// DelegationKey identifies one directed edge: Delegate may act for
// Delegated through Relation.
type DelegationKey struct {
	Delegate  types.AccountID
	Delegated types.AccountID
	Relation  RelationType
}

// Node is the payload of a delegation edge.
type Node interface {
	Relation() RelationType

	// NestedValue returns the node restricted to what can authorize path
	// at the given wrapping depth, or false when the edge cannot be used.
	NestedValue(path runtime.CallCodingPath, depth int) (Node, bool)

	// Merge combines two nodes recorded for the same key.
	Merge(other Node) Node

	// DelaysCallExecution reports whether dispatch waits for further
	// on-chain approvals.
	DelaysCallExecution() bool

	// PathValue returns the data needed to build the wrapping call.
	PathValue() PathValue
}

// ProxyNode is a proxy edge carrying the proxy types granted to the
// delegate.
type ProxyNode struct {
	OwnerID    string
	ProxyTypes []runtime.ProxyType
}

// NewProxyNode returns a node with types deduplicated and ordered.
func NewProxyNode(ownerID string, proxyTypes ...runtime.ProxyType) *ProxyNode {
	return &ProxyNode{OwnerID: ownerID, ProxyTypes: normalizeProxyTypes(proxyTypes)}
}

func normalizeProxyTypes(in []runtime.ProxyType) []runtime.ProxyType {
	out := slices.Clone(in)
	slices.SortFunc(out, func(a, b runtime.ProxyType) int {
		if d := cmp.Compare(a.Rank(), b.Rank()); d != 0 {
			return d
		}
		return cmp.Compare(a, b)
	})
	return slices.Compact(out)
}

// Relation implements Node.
func (n *ProxyNode) Relation() RelationType { return RelationProxy }

// NestedValue keeps the proxy types allowed to dispatch path. Nested
// wrapping calls are only reachable through Any and NonTransfer.
func (n *ProxyNode) NestedValue(path runtime.CallCodingPath, depth int) (Node, bool) {
	allowed := nestedProxyTypes
	if depth == 0 {
		allowed = ProxyTypesForCall(path)
	}
	var kept []runtime.ProxyType
	for _, t := range n.ProxyTypes {
		if slices.Contains(allowed, t) {
			kept = append(kept, t)
		}
	}
	if len(kept) == 0 {
		return nil, false
	}
	return &ProxyNode{OwnerID: n.OwnerID, ProxyTypes: kept}, true
}

// Merge unions the proxy types of both nodes.
func (n *ProxyNode) Merge(other Node) Node {
	o, ok := other.(*ProxyNode)
	if !ok {
		return n
	}
	return &ProxyNode{
		OwnerID:    n.OwnerID,
		ProxyTypes: normalizeProxyTypes(append(slices.Clone(n.ProxyTypes), o.ProxyTypes...)),
	}
}

// DelaysCallExecution implements Node. Announced proxies are not
// modelled, so proxy dispatch is immediate.
func (n *ProxyNode) DelaysCallExecution() bool { return false }

// PathValue forces the first proxy type in declaration order.
func (n *ProxyNode) PathValue() PathValue {
	v := PathValue{Kind: RelationProxy}
	if len(n.ProxyTypes) > 0 {
		v.ProxyType = n.ProxyTypes[0]
	}
	return v
}

// MultisigNode is a multisig edge from one signatory to the multisig
// account.
type MultisigNode struct {
	OwnerID     string
	Threshold   uint16
	Signatories []types.AccountID
}

// Relation implements Node.
func (n *MultisigNode) Relation() RelationType { return RelationMultisig }

// NestedValue implements Node. Multisig accounts have no call filter.
func (n *MultisigNode) NestedValue(runtime.CallCodingPath, int) (Node, bool) {
	return n, true
}

// Merge keeps the first recorded multisig.
func (n *MultisigNode) Merge(Node) Node { return n }

// DelaysCallExecution is true when other signatories must approve.
func (n *MultisigNode) DelaysCallExecution() bool { return n.Threshold > 1 }

// PathValue implements Node.
func (n *MultisigNode) PathValue() PathValue {
	return PathValue{
		Kind:        RelationMultisig,
		Threshold:   n.Threshold,
		Signatories: slices.Clone(n.Signatories),
	}
}
