package node

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/Klingon-tech/klingsign/config"
	"github.com/Klingon-tech/klingsign/internal/rpcclient"
	"github.com/Klingon-tech/klingsign/internal/wallet"
	"github.com/Klingon-tech/klingsign/pkg/types"
)

func TestExpandHome(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("no home dir")
	}
	tests := []struct {
		input, want string
	}{
		{"~/foo/bar", filepath.Join(home, "foo/bar")},
		{"~/.klingsign/keystore", filepath.Join(home, ".klingsign/keystore")},
		{"~", home},
		{"~other/keys", "~other/keys"},
		{"/absolute/path", "/absolute/path"},
		{"relative/path", "relative/path"},
		{"", ""},
	}
	for _, tt := range tests {
		got := expandHome(tt.input)
		if got != tt.want {
			t.Errorf("expandHome(%q) = %q, want %q", tt.input, got, tt.want)
		}
	}
}

func TestResolvePaths(t *testing.T) {
	cfg := config.Default()
	cfg.DataDir = t.TempDir()

	p, err := resolvePaths(cfg)
	if err != nil {
		t.Fatalf("resolvePaths: %v", err)
	}
	if want := filepath.Join(cfg.LogsDir(), "klingsign.log"); p.logFile != want {
		t.Errorf("logFile = %q, want %q", p.logFile, want)
	}
	if info, err := os.Stat(cfg.LogsDir()); err != nil || !info.IsDir() {
		t.Errorf("logs dir not created: %v", err)
	}
	if p.wallets != cfg.WalletsDir() || p.keystore != cfg.KeystorePath() || p.chains != cfg.ChainsPath() {
		t.Errorf("paths = %+v", p)
	}

	cfg.Log.File = "/var/log/klingsign.log"
	if p, err = resolvePaths(cfg); err != nil || p.logFile != cfg.Log.File {
		t.Errorf("explicit log file: got %q, err %v", p.logFile, err)
	}
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.DataDir = t.TempDir()
	cfg.RPC.Port = 0
	cfg.Log.Level = "error"
	if err := config.EnsureDataDirs(cfg); err != nil {
		t.Fatalf("EnsureDataDirs: %v", err)
	}
	return cfg
}

func TestNode_StartStop(t *testing.T) {
	cfg := testConfig(t)

	n, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := n.Start(); err != nil {
		n.Stop()
		t.Fatalf("Start: %v", err)
	}
	defer n.Stop()

	if len(n.Chains()) != len(config.DefaultChains()) {
		t.Errorf("got %d chains, want the defaults", len(n.Chains()))
	}

	client := rpcclient.New(fmt.Sprintf("http://%s/", n.RPCAddr()))
	var chains []types.Chain
	if err := client.Call("chain_list", nil, &chains); err != nil {
		t.Fatalf("chain_list: %v", err)
	}
	if len(chains) != len(n.Chains()) {
		t.Errorf("rpc returned %d chains, want %d", len(chains), len(n.Chains()))
	}
}

func TestNode_WalletsPersist(t *testing.T) {
	cfg := testConfig(t)
	cfg.RPC.Enabled = false

	n, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if n.RPCAddr() != "" {
		t.Errorf("RPCAddr = %q with RPC disabled", n.RPCAddr())
	}
	w := &wallet.MetaAccount{
		Name:            "watch",
		Type:            wallet.TypeWatchOnly,
		EthereumAddress: types.MustHexToAccountID("0x00112233445566778899aabbccddeeff00112233"),
	}
	if err := n.Wallets().Save(w); err != nil {
		t.Fatalf("Save: %v", err)
	}
	n.Stop()

	reopened, err := New(cfg)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Stop()
	got, err := reopened.Wallets().FetchByID(w.MetaID)
	if err != nil {
		t.Fatalf("FetchByID after reopen: %v", err)
	}
	if got.Name != "watch" {
		t.Errorf("name = %q, want watch", got.Name)
	}
}

func TestNode_MissingChains(t *testing.T) {
	cfg := testConfig(t)
	cfg.ChainsFile = "missing.json"

	if _, err := New(cfg); err == nil {
		t.Fatal("expected error for missing chains file")
	}
}
