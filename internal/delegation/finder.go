package delegation

import (
	"cmp"
	"encoding/json"
	"errors"
	"slices"
	"strings"

	"github.com/Klingon-tech/klingsign/internal/wallet"
	"github.com/Klingon-tech/klingsign/pkg/runtime"
	"github.com/Klingon-tech/klingsign/pkg/types"
)

// Path finder errors.
var (
	ErrNoAccount  = errors.New("no wallet account for any delegate")
	ErrNoSolution = errors.New("no delegate can sign every call")
)

// PathFinderComponent is one resolved hop: the wallet account of the
// delegate and how it wraps the call.
type PathFinderComponent struct {
	Account    wallet.MetaChainAccountResponse `json:"account"`
	Delegation PathValue                       `json:"delegation"`
}

// AccountID returns the delegate account id.
func (c PathFinderComponent) AccountID() types.AccountID {
	return c.Account.ChainAccount.AccountID
}

// PathFinderPath is a resolved delegation chain, innermost delegate
// first.
type PathFinderPath struct {
	Components []PathFinderComponent `json:"components"`
}

// AccountIDs returns the delegate ids in order.
func (p PathFinderPath) AccountIDs() []types.AccountID {
	ids := make([]types.AccountID, len(p.Components))
	for i, c := range p.Components {
		ids[i] = c.AccountID()
	}
	return ids
}

// Signer returns the outermost delegate, which submits the extrinsic.
func (p PathFinderPath) Signer() (wallet.MetaChainAccountResponse, bool) {
	if len(p.Components) == 0 {
		return wallet.MetaChainAccountResponse{}, false
	}
	return p.Components[len(p.Components)-1].Account, true
}

// Equal reports whether both paths wrap calls identically.
func (p PathFinderPath) Equal(o PathFinderPath) bool {
	return slices.EqualFunc(p.Components, o.Components, func(a, b PathFinderComponent) bool {
		return a.AccountID() == b.AccountID() && a.Delegation.Equal(b.Delegation)
	})
}

// DelaysCallExecution reports whether any hop waits for approvals.
func (p PathFinderPath) DelaysCallExecution() bool {
	for _, c := range p.Components {
		if c.Delegation.DelaysCallExecution() {
			return true
		}
	}
	return false
}

// WrapCall folds call through every hop, starting from origin.
func (p PathFinderPath) WrapCall(call runtime.Call, origin types.AccountID, ethereumBased bool) (runtime.Call, error) {
	return foldCall(call, p.Components, origin, ethereumBased)
}

func foldCall(call runtime.Call, comps []PathFinderComponent, origin types.AccountID, ethereumBased bool) (runtime.Call, error) {
	last := origin
	for _, c := range comps {
		key := DelegationKey{Delegate: c.AccountID(), Delegated: last, Relation: c.Delegation.Kind}
		wrapped, err := c.Delegation.WrapCall(call, key, ethereumBased)
		if err != nil {
			return runtime.Call{}, err
		}
		call = wrapped
		last = key.Delegate
	}
	return call, nil
}

// PathFinderResult is the chosen signer and the path used per call.
type PathFinderResult struct {
	Delegate   wallet.MetaChainAccountResponse
	CallToPath map[runtime.CallCodingPath]PathFinderPath
}

type callPath struct {
	Call runtime.CallCodingPath `json:"call"`
	Path PathFinderPath         `json:"path"`
}

func sortedCallPaths(m map[runtime.CallCodingPath]PathFinderPath) []callPath {
	out := make([]callPath, 0, len(m))
	for c, p := range m {
		out = append(out, callPath{Call: c, Path: p})
	}
	slices.SortFunc(out, func(a, b callPath) int { return a.Call.Compare(b.Call) })
	return out
}

// MarshalJSON renders CallToPath as a list ordered by call.
func (r PathFinderResult) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Delegate wallet.MetaChainAccountResponse `json:"delegate"`
		Paths    []callPath                      `json:"paths"`
	}{r.Delegate, sortedCallPaths(r.CallToPath)})
}

// AccountPredicate selects wallet accounts eligible to sign.
type AccountPredicate func(wallet.MetaChainAccountResponse) bool

// Signer preference tiers, tried in order.
var (
	SecretsOnly AccountPredicate = func(a wallet.MetaChainAccountResponse) bool {
		return a.Type == wallet.TypeSecrets
	}
	NonWatchOnlyNonDelegated AccountPredicate = func(a wallet.MetaChainAccountResponse) bool {
		return a.Type != wallet.TypeWatchOnly && !a.Type.IsDelegated()
	}
	AnyAccount AccountPredicate = func(wallet.MetaChainAccountResponse) bool { return true }
)

var preferenceTiers = []AccountPredicate{SecretsOnly, NonWatchOnlyNonDelegated, AnyAccount}

// PathFinder picks the signer for merged candidates.
type PathFinder struct {
	calls    []runtime.CallCodingPath
	paths    map[runtime.CallCodingPath][]GraphPath
	accounts map[types.AccountID][]wallet.MetaChainAccountResponse
}

// NewPathFinder prepares a finder over the state of merger. Wallets are
// considered in name order, then meta id.
func NewPathFinder(merger *PathMerger, wallets []*wallet.MetaAccount, chain types.Chain) *PathFinder {
	f := &PathFinder{
		calls:    merger.Calls(),
		paths:    make(map[runtime.CallCodingPath][]GraphPath),
		accounts: make(map[types.AccountID][]wallet.MetaChainAccountResponse),
	}
	for _, c := range f.calls {
		f.paths[c] = merger.Paths(c)
	}

	ordered := slices.Clone(wallets)
	slices.SortStableFunc(ordered, func(a, b *wallet.MetaAccount) int {
		return cmp.Or(strings.Compare(a.Name, b.Name), strings.Compare(a.MetaID, b.MetaID))
	})
	for _, w := range ordered {
		acc, ok := w.FetchMetaChainAccount(chain)
		if !ok {
			continue
		}
		id := acc.ChainAccount.AccountID
		f.accounts[id] = append(f.accounts[id], acc)
	}
	return f
}

// Find tries each preference tier and returns the first solution.
func (f *PathFinder) Find() (*PathFinderResult, error) {
	if len(f.calls) == 0 {
		return nil, ErrNoSolution
	}
	err := ErrNoAccount
	for _, tier := range preferenceTiers {
		res, tierErr := f.find(tier)
		if tierErr == nil {
			return res, nil
		}
		if errors.Is(tierErr, ErrNoSolution) {
			err = ErrNoSolution
		}
	}
	return nil, err
}

func (f *PathFinder) accountsFor(pred AccountPredicate) map[types.AccountID]wallet.MetaChainAccountResponse {
	out := make(map[types.AccountID]wallet.MetaChainAccountResponse)
	for id, accs := range f.accounts {
		for _, a := range accs {
			if pred(a) {
				out[id] = a
				break
			}
		}
	}
	return out
}

func (f *PathFinder) find(pred AccountPredicate) (*PathFinderResult, error) {
	signers := f.accountsFor(pred)
	if len(signers) == 0 {
		return nil, ErrNoAccount
	}

	merger := NewPathMerger()
	for _, c := range f.calls {
		var eligible []GraphPath
		for _, p := range f.paths[c] {
			if _, ok := signers[p.Last()]; ok {
				eligible = append(eligible, p)
			}
		}
		if err := merger.Combine(c, eligible); err != nil {
			if errors.Is(err, ErrEmptyPaths) {
				return nil, ErrNoAccount
			}
			return nil, ErrNoSolution
		}
	}
	return f.buildResult(merger, signers)
}

// buildResult keeps, per call and delegate, the shortest path (ties go
// to the smallest account id chain) and picks the delegate with the
// smallest total path length over all calls, then the smallest id.
func (f *PathFinder) buildResult(merger *PathMerger, signers map[types.AccountID]wallet.MetaChainAccountResponse) (*PathFinderResult, error) {
	best := make(map[runtime.CallCodingPath]map[types.AccountID]GraphPath, len(f.calls))
	for _, c := range f.calls {
		perDelegate := make(map[types.AccountID]GraphPath)
		for _, p := range merger.Paths(c) {
			if old, ok := perDelegate[p.Last()]; ok && comparePaths(old, p) <= 0 {
				continue
			}
			perDelegate[p.Last()] = p
		}
		best[c] = perDelegate
	}

	var (
		chosen   types.AccountID
		chosenLn = -1
	)
	for _, d := range merger.AvailableDelegates() {
		total := 0
		for _, c := range f.calls {
			total += len(best[c][d])
		}
		if chosenLn < 0 || total < chosenLn {
			chosen, chosenLn = d, total
		}
	}
	if chosenLn < 0 {
		return nil, ErrNoSolution
	}

	res := &PathFinderResult{
		Delegate:   signers[chosen],
		CallToPath: make(map[runtime.CallCodingPath]PathFinderPath, len(f.calls)),
	}
	for _, c := range f.calls {
		gp := best[c][chosen]
		path := PathFinderPath{Components: make([]PathFinderComponent, len(gp))}
		for i, comp := range gp {
			acc, ok := signers[comp.Delegate]
			if i < len(gp)-1 || !ok {
				acc, ok = f.anyAccount(comp.Delegate)
			}
			if !ok {
				return nil, ErrNoAccount
			}
			path.Components[i] = PathFinderComponent{Account: acc, Delegation: comp.Node.PathValue()}
		}
		res.CallToPath[c] = path
	}
	return res, nil
}

func (f *PathFinder) anyAccount(id types.AccountID) (wallet.MetaChainAccountResponse, bool) {
	accs := f.accounts[id]
	if len(accs) == 0 {
		return wallet.MetaChainAccountResponse{}, false
	}
	return accs[0], true
}
