package types

// Chain describes a chain the wallet signs for.
type Chain struct {
	ChainID       string  `json:"chain_id"`
	Name          string  `json:"name"`
	EthereumBased bool    `json:"ethereum_based,omitempty"`
	ParaID        *uint32 `json:"para_id,omitempty"`
	HasProxy      bool    `json:"has_proxy,omitempty"`
	HasMultisig   bool    `json:"has_multisig,omitempty"`
}

// AccountIDSize returns the byte length of account ids on the chain.
func (c Chain) AccountIDSize() int {
	if c.EthereumBased {
		return EthereumAccountIDSize
	}
	return SubstrateAccountIDSize
}

// IsRelay reports whether the chain is a relay chain.
func (c Chain) IsRelay() bool {
	return c.ParaID == nil
}
