package delegation

import (
	"encoding/json"
	"fmt"
	"slices"

	"github.com/Klingon-tech/klingsign/internal/log"
	"github.com/Klingon-tech/klingsign/internal/wallet"
	"github.com/Klingon-tech/klingsign/pkg/crypto"
	"github.com/Klingon-tech/klingsign/pkg/runtime"
	"github.com/Klingon-tech/klingsign/pkg/types"
	"github.com/hashicorp/go-multierror"
	"github.com/rs/zerolog"
)

// Request asks for the signer of builders on behalf of Delegated.
type Request struct {
	Delegated wallet.ChainAccountResponse
	// DelegateAccountID, when set, anchors every path at this first hop.
	DelegateAccountID types.AccountID
	Builders          []*runtime.Builder
	// Batch collapses each builder into a single call through the
	// CallWrapper of the delegated account type.
	Batch bool
}

// ResolutionFailure records a call no common delegate could authorize.
type ResolutionFailure struct {
	Call  runtime.CallCodingPath
	Paths []GraphPath
	Err   error
}

func (f ResolutionFailure) Error() string {
	return fmt.Sprintf("resolve %s: %v", f.Call, f.Err)
}

func (f ResolutionFailure) Unwrap() error { return f.Err }

// MarshalJSON implements json.Marshaler.
func (f ResolutionFailure) MarshalJSON() ([]byte, error) {
	paths := f.Paths
	if paths == nil {
		paths = []GraphPath{}
	}
	return json.Marshal(struct {
		Call  runtime.CallCodingPath `json:"call"`
		Paths []GraphPath            `json:"candidate_paths"`
		Error string                 `json:"error"`
	}{f.Call, paths, f.Err.Error()})
}

// ResolvedDelegate is the outcome for the sender. Delegate is nil when
// no wallet can sign; Failures still explain why.
type ResolvedDelegate struct {
	Delegate  *wallet.MetaChainAccountResponse
	Delegated wallet.ChainAccountResponse
	Paths     map[runtime.CallCodingPath]PathFinderPath
	Chain     types.Chain
	Wallets   []*wallet.MetaAccount
	Failures  []ResolutionFailure
	// FindErr is the path finder error when Delegate is nil.
	FindErr error
}

// Resolution pairs the resolved sender with the rewritten builders.
// Unresolved resolutions carry the original builders.
type Resolution struct {
	Sender   ResolvedDelegate
	Builders []*runtime.Builder
}

// Resolved reports whether a signer was found.
func (r *Resolution) Resolved() bool {
	return r.Sender.Delegate != nil
}

// Err aggregates every failure, nil when all calls resolved.
func (r *Resolution) Err() error {
	var result *multierror.Error
	for _, f := range r.Sender.Failures {
		result = multierror.Append(result, f)
	}
	if r.Sender.Delegate == nil && r.Sender.FindErr != nil {
		result = multierror.Append(result, r.Sender.FindErr)
	}
	return result.ErrorOrNil()
}

// DelaysCallExecution reports whether dispatch waits for multisig
// approvals on any path.
func (r *Resolution) DelaysCallExecution() bool {
	for _, p := range r.Sender.Paths {
		if p.DelaysCallExecution() {
			return true
		}
	}
	return false
}

// Fingerprint identifies the signer together with the rewritten calls.
func (r *Resolution) Fingerprint() types.Hash {
	var parts [][]byte
	if r.Sender.Delegate != nil {
		parts = append(parts, r.Sender.Delegate.ChainAccount.AccountID.Bytes())
	} else {
		parts = append(parts, nil)
	}
	for _, b := range r.Builders {
		for _, c := range b.Calls() {
			parts = append(parts, c.Bytes())
		}
	}
	return crypto.Fingerprint(parts...)
}

// MarshalJSON implements json.Marshaler.
func (r *Resolution) MarshalJSON() ([]byte, error) {
	failures := r.Sender.Failures
	if failures == nil {
		failures = []ResolutionFailure{}
	}
	var errText string
	if err := r.Err(); err != nil {
		errText = err.Error()
	}
	return json.Marshal(struct {
		Signer          *wallet.MetaChainAccountResponse `json:"signer"`
		Delegated       wallet.ChainAccountResponse      `json:"delegated"`
		Paths           []callPath                       `json:"paths"`
		Failures        []ResolutionFailure              `json:"failures"`
		Builders        []*runtime.Builder               `json:"builders"`
		Fingerprint     types.Hash                       `json:"fingerprint"`
		DelaysExecution bool                             `json:"delays_execution"`
		Error           string                           `json:"error,omitempty"`
	}{
		Signer:          r.Sender.Delegate,
		Delegated:       r.Sender.Delegated,
		Paths:           sortedCallPaths(r.Sender.Paths),
		Failures:        failures,
		Builders:        r.Builders,
		Fingerprint:     r.Fingerprint(),
		DelaysExecution: r.DelaysCallExecution(),
		Error:           errText,
	})
}

// Resolver finds the delegate signing for a delegated account. It holds
// an immutable snapshot of the wallets of one chain.
type Resolver struct {
	wallets []*wallet.MetaAccount
	chain   types.Chain
	logger  zerolog.Logger
}

// NewResolver creates a resolver over wallets for chain.
func NewResolver(wallets []*wallet.MetaAccount, chain types.Chain) *Resolver {
	return &Resolver{
		wallets: wallets,
		chain:   chain,
		logger:  log.Delegation.With().Str("chain_id", chain.ChainID).Logger(),
	}
}

// Resolve builds the graph, merges the per-call paths, picks the signer
// and rewrites the builders. Calls that cannot be authorized become
// failures on the result instead of an error; the error return is for
// requests that cannot be resolved at all.
func (r *Resolver) Resolve(req Request) (*Resolution, error) {
	if !req.Delegated.Type.IsDelegated() {
		return nil, fmt.Errorf("%w: %s is %s", ErrUnsupportedDelegatedAccount, req.Delegated.AccountID, req.Delegated.Type)
	}

	graph := BuildGraph(r.wallets, r.chain)
	merger := NewPathMerger()
	var failures []ResolutionFailure

	var calls []runtime.CallCodingPath
	for _, b := range req.Builders {
		for _, p := range b.Paths() {
			if !slices.Contains(calls, p) {
				calls = append(calls, p)
			}
		}
	}
	if len(calls) == 0 {
		return nil, runtime.ErrNoCalls
	}

	for _, call := range calls {
		paths := graph.ResolveDelegations(req.Delegated.AccountID, call)
		if !req.DelegateAccountID.IsZero() {
			paths = anchoredAt(paths, req.DelegateAccountID)
		}
		r.logger.Debug().Str("call", call.String()).Int("candidates", len(paths)).Msg("Delegation paths")
		if err := merger.Combine(call, paths); err != nil {
			r.logger.Debug().Err(err).Msg("Delegation merge failed")
			failures = append(failures, ResolutionFailure{Call: call, Paths: paths, Err: err})
		}
	}

	sender := ResolvedDelegate{
		Delegated: req.Delegated,
		Chain:     r.chain,
		Wallets:   r.wallets,
		Failures:  failures,
	}

	var (
		result  *PathFinderResult
		findErr error = ErrNoSolution
	)
	if !merger.Empty() {
		result, findErr = NewPathFinder(merger, r.wallets, r.chain).Find()
	}
	if findErr != nil {
		sender.FindErr = findErr
		r.logger.Warn().
			Str("delegated", req.Delegated.AccountID.Hex()).
			Int("failures", len(failures)).
			Err(findErr).
			Msg("No delegate found")
		return &Resolution{Sender: sender, Builders: req.Builders}, nil
	}

	builders, err := r.rewrite(req, result)
	if err != nil {
		return nil, err
	}
	delegate := result.Delegate
	sender.Delegate = &delegate
	sender.Paths = result.CallToPath

	r.logger.Info().
		Str("delegated", req.Delegated.AccountID.Hex()).
		Str("signer", delegate.ChainAccount.AccountID.Hex()).
		Int("calls", len(calls)).
		Int("failures", len(failures)).
		Msg("Delegate resolved")
	return &Resolution{Sender: sender, Builders: builders}, nil
}

// rewrite folds every call through its own path, or collapses each
// builder through the account's CallWrapper when batching. Calls left
// without a path stay unwrapped.
func (r *Resolver) rewrite(req Request, result *PathFinderResult) ([]*runtime.Builder, error) {
	out := make([]*runtime.Builder, 0, len(req.Builders))
	if req.Batch {
		wrapper, err := NewCallWrapper(req.Delegated, r.chain)
		if err != nil {
			return nil, err
		}
		for _, b := range req.Builders {
			wb, err := wrapper.WrapCalls(b, result)
			if err != nil {
				return nil, err
			}
			out = append(out, wb)
		}
		return out, nil
	}

	for _, b := range req.Builders {
		calls := b.Calls()
		for i, c := range calls {
			path, ok := result.CallToPath[c.Path()]
			if !ok {
				continue
			}
			wrapped, err := path.WrapCall(c, req.Delegated.AccountID, r.chain.EthereumBased)
			if err != nil {
				return nil, fmt.Errorf("wrap %s: %w", c.Path(), err)
			}
			calls[i] = wrapped
		}
		out = append(out, b.WithCalls(calls...))
	}
	return out, nil
}

func anchoredAt(paths []GraphPath, first types.AccountID) []GraphPath {
	var kept []GraphPath
	for _, p := range paths {
		if p.First() == first {
			kept = append(kept, p)
		}
	}
	return kept
}
