package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Klingon-tech/klingsign/pkg/types"
)

func TestDefaultChains_Valid(t *testing.T) {
	if err := ValidateChains(DefaultChains()); err != nil {
		t.Fatalf("ValidateChains(DefaultChains()) error: %v", err)
	}
}

func TestLoadChains(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chains.json")
	data := `[
  {"chain_id": "polkadot", "name": "Polkadot", "has_proxy": true, "has_multisig": true},
  {"chain_id": "moonbeam", "name": "Moonbeam", "ethereum_based": true, "para_id": 2004}
]`
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatal(err)
	}
	chains, err := LoadChains(path)
	if err != nil {
		t.Fatalf("LoadChains() error: %v", err)
	}
	if len(chains) != 2 {
		t.Fatalf("got %d chains, want 2", len(chains))
	}
	if !chains[0].IsRelay() || chains[0].AccountIDSize() != types.SubstrateAccountIDSize {
		t.Errorf("polkadot = %+v", chains[0])
	}
	if chains[1].ParaID == nil || *chains[1].ParaID != 2004 || chains[1].AccountIDSize() != types.EthereumAccountIDSize {
		t.Errorf("moonbeam = %+v", chains[1])
	}
}

func TestLoadChains_Invalid(t *testing.T) {
	dir := t.TempDir()
	cases := map[string]string{
		"empty.json":     `[]`,
		"dup.json":       `[{"chain_id":"a"},{"chain_id":"a"}]`,
		"noid.json":      `[{"name":"x"}]`,
		"malformed.json": `{`,
	}
	for name, body := range cases {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte(body), 0644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadChains(path); err == nil {
			t.Errorf("LoadChains(%s) should fail", name)
		}
	}
	if _, err := LoadChains(filepath.Join(dir, "missing.json")); err == nil {
		t.Error("LoadChains(missing) should fail")
	}
}

func TestSaveChains_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "chains.json")
	if err := SaveChains(path, DefaultChains()); err != nil {
		t.Fatalf("SaveChains() error: %v", err)
	}
	chains, err := LoadChains(path)
	if err != nil {
		t.Fatalf("LoadChains() error: %v", err)
	}
	if len(chains) != len(DefaultChains()) {
		t.Errorf("got %d chains, want %d", len(chains), len(DefaultChains()))
	}
}
