package rpcclient

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/Klingon-tech/klingsign/config"
	"github.com/Klingon-tech/klingsign/internal/delegation"
	klog "github.com/Klingon-tech/klingsign/internal/log"
	"github.com/Klingon-tech/klingsign/internal/rpc"
	"github.com/Klingon-tech/klingsign/internal/storage"
	"github.com/Klingon-tech/klingsign/internal/wallet"
	"github.com/Klingon-tech/klingsign/pkg/runtime"
	"github.com/Klingon-tech/klingsign/pkg/types"
	"github.com/google/go-cmp/cmp"
)

type testEnv struct {
	server *rpc.Server
	client *Client
}

func setupTestEnv(t *testing.T) *testEnv {
	t.Helper()
	klog.Init("error", false, "")

	repo := wallet.NewRepository(storage.NewMemory())
	srv := rpc.New("127.0.0.1:0", repo, config.DefaultChains())
	if err := srv.Start(); err != nil {
		t.Fatalf("start rpc: %v", err)
	}
	t.Cleanup(func() { srv.Stop() })

	return &testEnv{
		server: srv,
		client: New(fmt.Sprintf("http://%s/", srv.Addr())),
	}
}

func TestClient_ChainList(t *testing.T) {
	env := setupTestEnv(t)

	chains, err := env.client.ChainList()
	if err != nil {
		t.Fatalf("ChainList: %v", err)
	}
	if len(chains) != len(config.DefaultChains()) {
		t.Errorf("got %d chains, want %d", len(chains), len(config.DefaultChains()))
	}
}

func TestClient_WalletRoundTrip(t *testing.T) {
	env := setupTestEnv(t)

	id := types.NewAccountID(bytes.Repeat([]byte{7}, types.SubstrateAccountIDSize))
	w := &wallet.MetaAccount{Name: "watch", Type: wallet.TypeWatchOnly, SubstrateAccountID: id}

	metaID, err := env.client.AddWallet(w)
	if err != nil {
		t.Fatalf("AddWallet: %v", err)
	}

	all, err := env.client.WalletList("")
	if err != nil {
		t.Fatalf("WalletList: %v", err)
	}
	if len(all) != 1 || all[0].MetaID != metaID || all[0].SubstrateAccountID != id {
		t.Fatalf("wallets = %+v", all)
	}

	onChain, err := env.client.WalletList("polkadot")
	if err != nil {
		t.Fatalf("WalletList(polkadot): %v", err)
	}
	if len(onChain) != 1 || onChain[0].Account == nil || onChain[0].Account.AccountID != id {
		t.Fatalf("polkadot wallets = %+v", onChain)
	}

	if err := env.client.DeleteWallet(metaID); err != nil {
		t.Fatalf("DeleteWallet: %v", err)
	}
	if all, err = env.client.WalletList(""); err != nil || len(all) != 0 {
		t.Fatalf("after delete: wallets = %+v, err = %v", all, err)
	}
}

func TestClient_XcmConvert_PreservesBytes(t *testing.T) {
	env := setupTestEnv(t)

	res, err := env.client.XcmConvert("location", json.RawMessage(`["V4",{"parents":"1","interior":["Here",null]}]`), "V3")
	if err != nil {
		t.Fatalf("XcmConvert: %v", err)
	}
	if res.FromVersion != "V4" || res.Version != "V3" {
		t.Errorf("versions = %s -> %s, want V4 -> V3", res.FromVersion, res.Version)
	}
	if want := `["V3",{"parents":"1","interior":["Here",null]}]`; string(res.Data) != want {
		t.Errorf("data = %s, want %s", res.Data, want)
	}
}

func TestClient_WalletDelete_NotFound(t *testing.T) {
	env := setupTestEnv(t)

	err := env.client.DeleteWallet("missing")
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected RPCError, got %T: %v", err, err)
	}
	if rpcErr.Code != rpc.CodeNotFound {
		t.Errorf("error code = %d, want %d", rpcErr.Code, rpc.CodeNotFound)
	}
}

func TestClient_Call_InvalidEndpoint(t *testing.T) {
	client := New("http://127.0.0.1:1/") // nothing listens on port 1

	var chains []types.Chain
	if err := client.Call("chain_list", nil, &chains); err == nil {
		t.Fatal("expected connection error")
	}
}

func TestClient_Call_MethodNotFound(t *testing.T) {
	env := setupTestEnv(t)

	var raw json.RawMessage
	err := env.client.Call("nonexistent_method", nil, &raw)
	if err == nil {
		t.Fatal("expected error for unknown method")
	}

	rpcErr, ok := err.(*RPCError)
	if !ok {
		t.Fatalf("expected RPCError, got %T: %v", err, err)
	}
	if rpcErr.Code != -32601 {
		t.Errorf("error code = %d, want -32601", rpcErr.Code)
	}
}

func TestClient_ResolveAndValidateDelegation(t *testing.T) {
	env := setupTestEnv(t)
	delegated := types.NewAccountID(bytes.Repeat([]byte{0xd0}, types.SubstrateAccountIDSize))
	proxy := types.NewAccountID(bytes.Repeat([]byte{0x01}, types.SubstrateAccountIDSize))
	for _, w := range []*wallet.MetaAccount{
		{
			Name: "treasury",
			Type: wallet.TypeProxied,
			ChainAccounts: []wallet.ChainAccount{{
				ChainID:   "polkadot",
				AccountID: delegated,
				Proxy:     &wallet.ProxyAccount{AccountID: proxy, Type: runtime.ProxyAny, Status: wallet.StatusActive},
			}},
		},
		{Name: "hot", Type: wallet.TypeSecrets, SubstrateAccountID: proxy},
	} {
		if _, err := env.client.AddWallet(w); err != nil {
			t.Fatalf("AddWallet(%s): %v", w.Name, err)
		}
	}

	remark, err := runtime.NewCall("System", "remark", map[string]string{"remark": "0x01"})
	if err != nil {
		t.Fatalf("NewCall: %v", err)
	}
	raw, err := env.client.ResolveDelegation(rpc.ResolveParam{
		ChainID:          "polkadot",
		DelegatedAccount: delegated,
		Builders:         [][]runtime.Call{{remark}},
	})
	if err != nil {
		t.Fatalf("ResolveDelegation: %v", err)
	}
	var res struct {
		Builders [][]runtime.Call `json:"builders"`
		Paths    []struct {
			Path delegation.PathFinderPath `json:"path"`
		} `json:"paths"`
	}
	if err := json.Unmarshal(raw, &res); err != nil {
		t.Fatalf("decode resolution: %v", err)
	}
	if len(res.Builders) != 1 || len(res.Builders[0]) != 1 || len(res.Paths) != 1 {
		t.Fatalf("resolution = %s", raw)
	}

	seq, err := env.client.ValidateDelegation(rpc.ValidateParam{
		ChainID:          "polkadot",
		DelegatedAccount: delegated,
		Call:             res.Builders[0][0],
		Path:             res.Paths[0].Path,
	})
	if err != nil {
		t.Fatalf("ValidateDelegation: %v", err)
	}
	var kinds []delegation.ValidationNodeKind
	for _, n := range seq.Nodes {
		kinds = append(kinds, n.Kind)
	}
	want := []delegation.ValidationNodeKind{delegation.ValidationConfirmation, delegation.ValidationFee}
	if diff := cmp.Diff(want, kinds); diff != "" {
		t.Errorf("validation kinds mismatch (-want +got):\n%s", diff)
	}
}

func TestClient_ErrorCarriesCode(t *testing.T) {
	env := setupTestEnv(t)

	_, err := env.client.ResolveDelegation(rpc.ResolveParam{ChainID: "nope"})
	var rpcErr *RPCError
	if !errors.As(err, &rpcErr) {
		t.Fatalf("expected RPCError, got %T: %v", err, err)
	}
	if rpcErr.Code != rpc.CodeNotFound {
		t.Errorf("error code = %d, want %d", rpcErr.Code, rpc.CodeNotFound)
	}
}

func TestClient_ConcurrentCalls(t *testing.T) {
	env := setupTestEnv(t)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := env.client.ChainList(); err != nil {
				errs <- err
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("ChainList: %v", err)
	}
}
