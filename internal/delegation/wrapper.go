package delegation

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingsign/internal/wallet"
	"github.com/Klingon-tech/klingsign/pkg/runtime"
	"github.com/Klingon-tech/klingsign/pkg/types"
)

// Wrapper errors.
var (
	ErrNoSinglePath                = errors.New("calls do not share a single delegation path")
	ErrUnsupportedDelegatedAccount = errors.New("account is neither proxied nor multisig")
)

// CallWrapper rewrites a builder so all of its calls dispatch through
// one resolved delegation path as a single call.
type CallWrapper interface {
	WrapCalls(b *runtime.Builder, result *PathFinderResult) (*runtime.Builder, error)
}

// NewCallWrapper returns the wrapper for the type of the delegated
// account.
func NewCallWrapper(delegated wallet.ChainAccountResponse, chain types.Chain) (CallWrapper, error) {
	base := callWrapper{delegated: delegated.AccountID, ethereumBased: chain.EthereumBased}
	switch delegated.Type {
	case wallet.TypeProxied:
		return &ProxyCallWrapper{base}, nil
	case wallet.TypeMultisig:
		return &MultisigCallWrapper{base}, nil
	}
	return nil, fmt.Errorf("%w: %s is %s", ErrUnsupportedDelegatedAccount, delegated.AccountID, delegated.Type)
}

type callWrapper struct {
	delegated     types.AccountID
	ethereumBased bool
}

// reduction is what remains to fold after the outer calls were
// collapsed into one.
type reduction struct {
	call      runtime.Call
	remaining []PathFinderComponent
	origin    types.AccountID
}

type reducer func(calls []runtime.Call, path PathFinderPath) (reduction, error)

// singlePath returns the path shared by every call of b.
func singlePath(b *runtime.Builder, result *PathFinderResult) (PathFinderPath, error) {
	var (
		path  PathFinderPath
		found bool
	)
	for _, p := range b.Paths() {
		candidate, ok := result.CallToPath[p]
		if !ok {
			return PathFinderPath{}, fmt.Errorf("%w: %s has no path", ErrNoSinglePath, p)
		}
		if found && !candidate.Equal(path) {
			return PathFinderPath{}, fmt.Errorf("%w: %s resolves differently", ErrNoSinglePath, p)
		}
		path, found = candidate, true
	}
	if !found {
		return PathFinderPath{}, runtime.ErrNoCalls
	}
	return path, nil
}

func (w callWrapper) wrap(b *runtime.Builder, result *PathFinderResult, reduce reducer) (*runtime.Builder, error) {
	path, err := singlePath(b, result)
	if err != nil {
		return nil, err
	}
	red, err := reduce(b.Calls(), path)
	if err != nil {
		return nil, err
	}
	if len(red.remaining) == 0 {
		return b.WithCalls(red.call), nil
	}
	call, err := foldCall(red.call, red.remaining, red.origin, w.ethereumBased)
	if err != nil {
		return nil, err
	}
	return b.WithCalls(call), nil
}

// MultisigCallWrapper batches all calls so a single as_multi carries
// them, then folds the whole path.
type MultisigCallWrapper struct {
	callWrapper
}

// WrapCalls implements CallWrapper.
func (w *MultisigCallWrapper) WrapCalls(b *runtime.Builder, result *PathFinderResult) (*runtime.Builder, error) {
	return w.wrap(b, result, func(calls []runtime.Call, path PathFinderPath) (reduction, error) {
		call, err := runtime.NewBuilder(calls...).Reduce()
		if err != nil {
			return reduction{}, err
		}
		return reduction{call: call, remaining: path.Components, origin: w.delegated}, nil
	})
}

// ProxyCallWrapper batches the calls and wraps the batch in a single
// Proxy.proxy for the first hop, which is consumed. The proxy account
// then becomes the origin for the remaining hops.
type ProxyCallWrapper struct {
	callWrapper
}

// WrapCalls implements CallWrapper.
func (w *ProxyCallWrapper) WrapCalls(b *runtime.Builder, result *PathFinderResult) (*runtime.Builder, error) {
	return w.wrap(b, result, func(calls []runtime.Call, path PathFinderPath) (reduction, error) {
		call, err := runtime.NewBuilder(calls...).Reduce()
		if err != nil {
			return reduction{}, err
		}
		if len(calls) == 1 || len(path.Components) == 0 {
			return reduction{call: call, remaining: path.Components, origin: w.delegated}, nil
		}

		first := path.Components[0]
		if first.Delegation.Kind != RelationProxy {
			return reduction{}, fmt.Errorf("%w: first hop is %s", ErrUnsupportedDelegatedAccount, first.Delegation.Kind)
		}
		key := DelegationKey{Delegate: first.AccountID(), Delegated: w.delegated, Relation: RelationProxy}
		proxied, err := first.Delegation.WrapCall(call, key, w.ethereumBased)
		if err != nil {
			return reduction{}, err
		}
		return reduction{call: proxied, remaining: path.Components[1:], origin: first.AccountID()}, nil
	})
}
