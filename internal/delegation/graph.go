package delegation

import (
	"cmp"
	"slices"

	"github.com/Klingon-tech/klingsign/internal/wallet"
	"github.com/Klingon-tech/klingsign/pkg/runtime"
	"github.com/Klingon-tech/klingsign/pkg/types"
)

// Graph holds the delegation edges of one chain. It is built per
// resolution and never mutated after construction.
type Graph struct {
	edges map[DelegationKey]Node
	// delegated account -> keys of edges pointing at it, sorted
	incoming map[types.AccountID][]DelegationKey
}

// NewGraph returns an empty graph.
func NewGraph() *Graph {
	return &Graph{
		edges:    make(map[DelegationKey]Node),
		incoming: make(map[types.AccountID][]DelegationKey),
	}
}

// BuildGraph collects the proxy and multisig edges of wallets on chain.
// Revoked delegations and pallets the chain lacks produce no edges.
func BuildGraph(wallets []*wallet.MetaAccount, chain types.Chain) *Graph {
	g := NewGraph()
	for _, w := range wallets {
		ca, ok := w.FetchChainAccount(chain)
		if !ok {
			continue
		}
		switch w.Type {
		case wallet.TypeProxied:
			if !chain.HasProxy || ca.Proxy == nil || !ca.Proxy.Status.Usable() {
				continue
			}
			g.AddEdge(DelegationKey{
				Delegate:  ca.Proxy.AccountID,
				Delegated: ca.AccountID,
				Relation:  RelationProxy,
			}, NewProxyNode(w.MetaID, ca.Proxy.Type))
		case wallet.TypeMultisig:
			if !chain.HasMultisig || ca.Multisig == nil || !ca.Multisig.Status.Usable() {
				continue
			}
			g.AddEdge(DelegationKey{
				Delegate:  ca.Multisig.Signatory,
				Delegated: ca.AccountID,
				Relation:  RelationMultisig,
			}, &MultisigNode{
				OwnerID:     w.MetaID,
				Threshold:   ca.Multisig.Threshold,
				Signatories: ca.Multisig.Signatories(),
			})
		}
	}
	return g
}

// AddEdge records node under key, merging with an existing edge.
func (g *Graph) AddEdge(key DelegationKey, node Node) {
	if prev, ok := g.edges[key]; ok {
		g.edges[key] = prev.Merge(node)
		return
	}
	g.edges[key] = node
	keys := append(g.incoming[key.Delegated], key)
	slices.SortFunc(keys, compareKeys)
	g.incoming[key.Delegated] = keys
}

func compareKeys(a, b DelegationKey) int {
	if d := a.Delegate.Compare(b.Delegate); d != 0 {
		return d
	}
	return cmp.Compare(a.Relation, b.Relation)
}

// Edge returns the node stored for key.
func (g *Graph) Edge(key DelegationKey) (Node, bool) {
	n, ok := g.edges[key]
	return n, ok
}

// Len returns the number of edges.
func (g *Graph) Len() int {
	return len(g.edges)
}

// Delegates returns the accounts with an edge to delegated, sorted.
func (g *Graph) Delegates(delegated types.AccountID) []types.AccountID {
	var out []types.AccountID
	for _, k := range g.incoming[delegated] {
		if len(out) == 0 || out[len(out)-1] != k.Delegate {
			out = append(out, k.Delegate)
		}
	}
	return out
}

// searchContext is copied into every branch so siblings never share
// visited state.
type searchContext struct {
	path    GraphPath
	visited []types.AccountID
}

func (c searchContext) extend(comp PathComponent) searchContext {
	return searchContext{
		path:    append(slices.Clip(c.path), comp),
		visited: append(slices.Clip(c.visited), comp.Delegate),
	}
}

// ResolveDelegations returns every delegation chain that can authorize
// path for delegated, depth first. Each chain is reported together with
// all of its prefixes since every delegate on it can sign directly. A
// chain never revisits an account, including the source.
func (g *Graph) ResolveDelegations(delegated types.AccountID, path runtime.CallCodingPath) []GraphPath {
	var out []GraphPath
	g.search(delegated, path, searchContext{visited: []types.AccountID{delegated}}, &out)
	return out
}

func (g *Graph) search(current types.AccountID, path runtime.CallCodingPath, ctx searchContext, out *[]GraphPath) {
	depth := len(ctx.path)
	for _, key := range g.incoming[current] {
		if slices.Contains(ctx.visited, key.Delegate) {
			continue
		}
		nested, ok := g.edges[key].NestedValue(path, depth)
		if !ok {
			continue
		}
		next := ctx.extend(PathComponent{Delegate: key.Delegate, Node: nested})
		*out = append(*out, next.path)
		g.search(key.Delegate, path, next, out)
	}
}
