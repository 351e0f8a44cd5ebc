package delegation

import (
	"errors"
	"testing"

	"github.com/Klingon-tech/klingsign/internal/wallet"
	"github.com/Klingon-tech/klingsign/pkg/runtime"
	"github.com/Klingon-tech/klingsign/pkg/types"
	"github.com/google/go-cmp/cmp"
)

func mergeAll(t *testing.T, wallets []*wallet.MetaAccount, delegated types.AccountID, calls ...runtime.CallCodingPath) *PathMerger {
	t.Helper()
	g := BuildGraph(wallets, testChain)
	m := NewPathMerger()
	for _, c := range calls {
		if err := m.Combine(c, g.ResolveDelegations(delegated, c)); err != nil {
			t.Fatalf("Combine(%s): %v", c, err)
		}
	}
	return m
}

func TestPathFinder_PrefersSecrets(t *testing.T) {
	d, p := account(0xd0), account(0x01)
	wallets := []*wallet.MetaAccount{
		proxiedWallet("delegated", d, p, runtime.ProxyAny),
		// Sorts first by name, so only the tier ordering can skip it.
		plainWallet("a-watch", wallet.TypeWatchOnly, p),
		plainWallet("b-secrets", wallet.TypeSecrets, p),
	}
	res, err := NewPathFinder(mergeAll(t, wallets, d, transferPath), wallets, testChain).Find()
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if res.Delegate.Type != wallet.TypeSecrets || res.Delegate.Name != "b-secrets" {
		t.Errorf("Delegate = %s (%s), want b-secrets", res.Delegate.Name, res.Delegate.Type)
	}
	signer, _ := res.CallToPath[transferPath].Signer()
	if signer.Name != "b-secrets" {
		t.Errorf("path signer = %s, want b-secrets", signer.Name)
	}
}

func TestPathFinder_Tiers(t *testing.T) {
	d, p := account(0xd0), account(0x01)
	tests := []struct {
		name string
		typ  wallet.AccountType
	}{
		{"hardware wallet before watch-only", wallet.TypeLedger},
		{"watch-only as a last resort", wallet.TypeWatchOnly},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wallets := []*wallet.MetaAccount{
				proxiedWallet("delegated", d, p, runtime.ProxyAny),
				plainWallet("a-watch", wallet.TypeWatchOnly, p),
				plainWallet("b-candidate", tt.typ, p),
			}
			res, err := NewPathFinder(mergeAll(t, wallets, d, transferPath), wallets, testChain).Find()
			if err != nil {
				t.Fatalf("Find: %v", err)
			}
			if res.Delegate.Type != tt.typ {
				t.Errorf("Delegate type = %s, want %s", res.Delegate.Type, tt.typ)
			}
		})
	}
}

func TestPathFinder_ShortestPath(t *testing.T) {
	d, p, s := account(0xd0), account(0x01), account(0x02)
	wallets := []*wallet.MetaAccount{
		proxiedWallet("d-by-p", d, p, runtime.ProxyAny),
		proxiedWallet("p-by-s", p, s, runtime.ProxyAny),
		proxiedWallet("d-by-s", d, s, runtime.ProxyAny),
		plainWallet("s", wallet.TypeSecrets, s),
	}
	res, err := NewPathFinder(mergeAll(t, wallets, d, transferPath), wallets, testChain).Find()
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if got := res.Delegate.ChainAccount.AccountID; got != s {
		t.Errorf("Delegate = %s, want %s", got, s)
	}
	got := res.CallToPath[transferPath].AccountIDs()
	if diff := cmp.Diff([]types.AccountID{s}, got); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}

func TestPathFinder_IntermediateAccounts(t *testing.T) {
	d, m, p := account(0xd0), account(0x01), account(0x02)
	wallets := []*wallet.MetaAccount{
		multisigWallet("multi", d, m, 2, account(0x09)),
		proxiedWallet("proxied", m, p, runtime.ProxyAny),
		plainWallet("signer", wallet.TypeSecrets, p),
	}
	res, err := NewPathFinder(mergeAll(t, wallets, d, remarkPath), wallets, testChain).Find()
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	path := res.CallToPath[remarkPath]
	if len(path.Components) != 2 {
		t.Fatalf("got %d components, want 2", len(path.Components))
	}
	first, last := path.Components[0], path.Components[1]
	if first.Account.Name != "proxied" || first.Delegation.Kind != RelationMultisig {
		t.Errorf("first hop = %s via %s, want proxied via multisig", first.Account.Name, first.Delegation.Kind)
	}
	if last.Account.Name != "signer" || last.Delegation.ProxyType != runtime.ProxyAny {
		t.Errorf("last hop = %s via %s, want signer via Any", last.Account.Name, last.Delegation.ProxyType)
	}
	if !path.DelaysCallExecution() {
		t.Error("2-of-n multisig should delay execution")
	}
}

func TestPathFinder_NoAccount(t *testing.T) {
	d, p := account(0xd0), account(0x01)
	wallets := []*wallet.MetaAccount{proxiedWallet("delegated", d, p, runtime.ProxyAny)}

	_, err := NewPathFinder(mergeAll(t, wallets, d, transferPath), wallets, testChain).Find()
	if !errors.Is(err, ErrNoAccount) {
		t.Errorf("Find() error = %v, want ErrNoAccount", err)
	}
}

func TestPathFinder_NoCalls(t *testing.T) {
	_, err := NewPathFinder(NewPathMerger(), nil, testChain).Find()
	if !errors.Is(err, ErrNoSolution) {
		t.Errorf("Find() error = %v, want ErrNoSolution", err)
	}
}

func TestPathFinder_FallsBackWhenTierIsIncomplete(t *testing.T) {
	// The secrets wallet y can only bond, so the ledger z signing both
	// calls wins in the next tier.
	d, y, z := account(0xd0), account(0x02), account(0x03)
	wallets := []*wallet.MetaAccount{
		proxiedWallet("d-by-y", d, y, runtime.ProxyStaking),
		proxiedWallet("d-by-z", d, z, runtime.ProxyAny),
		plainWallet("y", wallet.TypeSecrets, y),
		plainWallet("z", wallet.TypeLedger, z),
	}
	res, err := NewPathFinder(mergeAll(t, wallets, d, bondPath, transferPath), wallets, testChain).Find()
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if res.Delegate.Name != "z" {
		t.Errorf("Delegate = %s, want z", res.Delegate.Name)
	}
	for _, c := range []runtime.CallCodingPath{bondPath, transferPath} {
		if diff := cmp.Diff([]types.AccountID{z}, res.CallToPath[c].AccountIDs()); diff != "" {
			t.Errorf("%s path mismatch (-want +got):\n%s", c, diff)
		}
	}
}
