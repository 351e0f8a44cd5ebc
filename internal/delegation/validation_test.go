package delegation

import (
	"errors"
	"testing"

	"github.com/Klingon-tech/klingsign/internal/wallet"
	"github.com/Klingon-tech/klingsign/pkg/runtime"
	"github.com/Klingon-tech/klingsign/pkg/types"
	"github.com/google/go-cmp/cmp"
)

type nodeSummary struct {
	Kind    ValidationNodeKind
	Account string
	Call    runtime.CallCodingPath
}

func summarize(seq *ValidationSequence) []nodeSummary {
	out := make([]nodeSummary, len(seq.Nodes))
	for i, n := range seq.Nodes {
		out[i] = nodeSummary{Kind: n.Kind, Account: n.Account.Name, Call: n.Call.Path()}
	}
	return out
}

func TestValidationSequence_Proxy(t *testing.T) {
	d, p := account(0xd0), account(0x01)
	path := PathFinderPath{Components: []PathFinderComponent{
		component("p", p, PathValue{Kind: RelationProxy, ProxyType: runtime.ProxyAny}),
	}}
	call, err := path.WrapCall(testCall(t, transferPath, "1"), d, false)
	if err != nil {
		t.Fatalf("WrapCall: %v", err)
	}

	seq, err := ValidationSequenceFor(call, delegatedAccount(d, wallet.TypeProxied), path)
	if err != nil {
		t.Fatalf("ValidationSequenceFor: %v", err)
	}
	want := []nodeSummary{
		{ValidationConfirmation, "p", runtime.ProxyPath},
		{ValidationFee, "p", runtime.ProxyPath},
	}
	if diff := cmp.Diff(want, summarize(seq)); diff != "" {
		t.Errorf("sequence mismatch (-want +got):\n%s", diff)
	}
}

func TestValidationSequence_MultisigBehindProxy(t *testing.T) {
	d, m, p := account(0xd0), account(0x01), account(0x02)
	path := PathFinderPath{Components: []PathFinderComponent{
		component("m", m, PathValue{Kind: RelationMultisig, Threshold: 2, Signatories: []types.AccountID{m, account(0x09)}}),
		component("p", p, PathValue{Kind: RelationProxy, ProxyType: runtime.ProxyAny}),
	}}
	origin := delegatedAccount(d, wallet.TypeMultisig)
	call, err := path.WrapCall(testCall(t, transferPath, "1"), d, false)
	if err != nil {
		t.Fatalf("WrapCall: %v", err)
	}

	seq, err := ValidationSequenceFor(call, origin, path)
	if err != nil {
		t.Fatalf("ValidationSequenceFor: %v", err)
	}
	want := []nodeSummary{
		{ValidationConfirmation, "m", transferPath},
		{ValidationMultisigOperation, "m", transferPath},
		{ValidationConfirmation, "p", runtime.ProxyPath},
		{ValidationFee, "p", runtime.ProxyPath},
	}
	if diff := cmp.Diff(want, summarize(seq)); diff != "" {
		t.Errorf("sequence mismatch (-want +got):\n%s", diff)
	}
	if ms := seq.Nodes[1].Multisig; ms == nil || ms.AccountID != d {
		t.Errorf("multisig operation account = %v, want %s", ms, d)
	}
}

func TestValidationSequence_NestedMultisig(t *testing.T) {
	// d <- m1 (multisig) <- s (multisig of m1)
	d, m1, s := account(0xd0), account(0x01), account(0x02)
	path := PathFinderPath{Components: []PathFinderComponent{
		component("m1", m1, PathValue{Kind: RelationMultisig, Threshold: 2, Signatories: []types.AccountID{m1, account(0x08)}}),
		component("s", s, PathValue{Kind: RelationMultisig, Threshold: 2, Signatories: []types.AccountID{s, account(0x09)}}),
	}}
	call, err := path.WrapCall(testCall(t, remarkPath, "1"), d, false)
	if err != nil {
		t.Fatalf("WrapCall: %v", err)
	}

	seq, err := ValidationSequenceFor(call, delegatedAccount(d, wallet.TypeMultisig), path)
	if err != nil {
		t.Fatalf("ValidationSequenceFor: %v", err)
	}
	var multisigs []types.AccountID
	for _, n := range seq.Nodes {
		if n.Kind == ValidationMultisigOperation {
			multisigs = append(multisigs, n.Multisig.AccountID)
		}
	}
	// The outer signatory approves for m1, the inner one for d.
	if diff := cmp.Diff([]types.AccountID{d, m1}, multisigs); diff != "" {
		t.Errorf("multisig accounts mismatch (-want +got):\n%s", diff)
	}
	if last := seq.Nodes[len(seq.Nodes)-1]; last.Kind != ValidationFee || last.Account.Name != "s" {
		t.Errorf("last node = %s by %s, want fee by s", last.Kind, last.Account.Name)
	}
}

func TestValidationSequence_Errors(t *testing.T) {
	d, p := account(0xd0), account(0x01)
	path := PathFinderPath{Components: []PathFinderComponent{
		component("p", p, PathValue{Kind: RelationProxy, ProxyType: runtime.ProxyAny}),
	}}
	origin := delegatedAccount(d, wallet.TypeProxied)
	transfer := testCall(t, transferPath, "1")

	asMulti, err := runtime.AsMultiCall(runtime.MultisigArgs{Threshold: 2, OtherSignatories: []types.AccountID{d}, Call: transfer})
	if err != nil {
		t.Fatalf("AsMultiCall: %v", err)
	}
	once, err := path.WrapCall(transfer, d, false)
	if err != nil {
		t.Fatalf("WrapCall: %v", err)
	}
	twice, err := path.WrapCall(once, d, false)
	if err != nil {
		t.Fatalf("WrapCall: %v", err)
	}

	t.Run("wrong relation", func(t *testing.T) {
		_, err := ValidationSequenceFor(asMulti, origin, path)
		var e *UnexpectedDelegationTypeError
		if !errors.As(err, &e) || e.Depth != 0 || e.Relation != RelationProxy {
			t.Errorf("error = %v, want unexpected proxy at depth 0", err)
		}
	})
	t.Run("plain call", func(t *testing.T) {
		_, err := ValidationSequenceFor(transfer, origin, path)
		var e *UnexpectedDelegationTypeError
		if !errors.As(err, &e) {
			t.Errorf("error = %v, want UnexpectedDelegationTypeError", err)
		}
	})
	t.Run("end of chain", func(t *testing.T) {
		_, err := ValidationSequenceFor(twice, origin, path)
		var e *UnexpectedEndOfChainError
		if !errors.As(err, &e) || e.Depth != 1 {
			t.Errorf("error = %v, want end of chain at depth 1", err)
		}
	})
}
