package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/Klingon-tech/klingsign/pkg/types"
)

func paraID(id uint32) *uint32 { return &id }

// DefaultChains returns the descriptors written to a fresh data directory.
func DefaultChains() []types.Chain {
	return []types.Chain{
		{ChainID: "polkadot", Name: "Polkadot", HasProxy: true, HasMultisig: true},
		{ChainID: "kusama", Name: "Kusama", HasProxy: true, HasMultisig: true},
		{ChainID: "polkadot-asset-hub", Name: "Polkadot Asset Hub", ParaID: paraID(1000), HasProxy: true, HasMultisig: true},
		{ChainID: "moonbeam", Name: "Moonbeam", EthereumBased: true, ParaID: paraID(2004), HasProxy: true, HasMultisig: true},
		{ChainID: "astar", Name: "Astar", ParaID: paraID(2006), HasProxy: true, HasMultisig: true},
	}
}

// LoadChains reads and validates a chain descriptor file.
func LoadChains(path string) ([]types.Chain, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading chains file: %w", err)
	}
	var chains []types.Chain
	if err := json.Unmarshal(data, &chains); err != nil {
		return nil, fmt.Errorf("parsing chains file: %w", err)
	}
	if err := ValidateChains(chains); err != nil {
		return nil, fmt.Errorf("invalid chains file: %w", err)
	}
	return chains, nil
}

// SaveChains writes chain descriptors to path.
func SaveChains(path string, chains []types.Chain) error {
	data, err := json.MarshalIndent(chains, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding chains: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing chains file: %w", err)
	}
	return nil
}

// ValidateChains checks chain ids are present and unique.
func ValidateChains(chains []types.Chain) error {
	if len(chains) == 0 {
		return fmt.Errorf("no chains defined")
	}
	ids := make(map[string]struct{}, len(chains))
	for i, c := range chains {
		if c.ChainID == "" {
			return fmt.Errorf("chains[%d]: chain_id is empty", i)
		}
		if _, ok := ids[c.ChainID]; ok {
			return fmt.Errorf("chains[%d]: duplicate chain_id %q", i, c.ChainID)
		}
		ids[c.ChainID] = struct{}{}
	}
	return nil
}
