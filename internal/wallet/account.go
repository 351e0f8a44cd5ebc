package wallet

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Klingon-tech/klingsign/pkg/crypto"
	"github.com/Klingon-tech/klingsign/pkg/runtime"
	"github.com/Klingon-tech/klingsign/pkg/types"
)

// AccountType classifies how a wallet can sign.
type AccountType string

// Account types.
const (
	TypeSecrets       AccountType = "secrets"
	TypeWatchOnly     AccountType = "watchOnly"
	TypeParitySigner  AccountType = "paritySigner"
	TypeLedger        AccountType = "ledger"
	TypeGenericLedger AccountType = "genericLedger"
	TypePolkadotVault AccountType = "polkadotVault"
	TypeProxied       AccountType = "proxied"
	TypeMultisig      AccountType = "multisig"
)

var accountTypes = []AccountType{
	TypeSecrets, TypeWatchOnly, TypeParitySigner, TypeLedger,
	TypeGenericLedger, TypePolkadotVault, TypeProxied, TypeMultisig,
}

// Valid reports whether t is a known account type.
func (t AccountType) Valid() bool {
	return slices.Contains(accountTypes, t)
}

// IsDelegated reports whether the wallet signs through another account.
func (t AccountType) IsDelegated() bool {
	return t == TypeProxied || t == TypeMultisig
}

// Status is the lifecycle state of a discovered delegation.
type Status string

// Delegation statuses. Revoked delegations stay on record for display
// but can no longer be used.
const (
	StatusNew     Status = "new"
	StatusActive  Status = "active"
	StatusRevoked Status = "revoked"
)

// Usable reports whether the delegation can authorize calls.
func (s Status) Usable() bool {
	return s != StatusRevoked
}

// Common wallet model errors.
var (
	ErrInvalidAccountType = errors.New("invalid account type")
	ErrMissingDelegation  = errors.New("delegated wallet has no delegation record")
	ErrMultisigMismatch   = errors.New("multisig account id does not match signatories")
	ErrWalletNotFound     = errors.New("wallet not found")
)

// ProxyAccount records that AccountID may act for the owning chain account.
type ProxyAccount struct {
	AccountID types.AccountID   `json:"account_id"`
	Type      runtime.ProxyType `json:"type"`
	Status    Status            `json:"status,omitempty"`
}

// MultisigAccount records a multisig the wallet's Signatory belongs to.
type MultisigAccount struct {
	AccountID        types.AccountID   `json:"account_id"`
	Signatory        types.AccountID   `json:"signatory"`
	OtherSignatories []types.AccountID `json:"other_signatories"`
	Threshold        uint16            `json:"threshold"`
	Status           Status            `json:"status,omitempty"`
}

// Signatories returns all signatories in sorted order.
func (m MultisigAccount) Signatories() []types.AccountID {
	all := append([]types.AccountID{m.Signatory}, m.OtherSignatories...)
	types.SortAccountIDs(all)
	return all
}

// Validate checks the recorded multisig id against its derivation.
func (m MultisigAccount) Validate(size int) error {
	if m.Threshold == 0 || int(m.Threshold) > len(m.OtherSignatories)+1 {
		return fmt.Errorf("multisig threshold %d out of range for %d signatories", m.Threshold, len(m.OtherSignatories)+1)
	}
	derived, err := crypto.MultisigAccountID(m.Signatories(), m.Threshold, size)
	if err != nil {
		return err
	}
	if derived != m.AccountID {
		return fmt.Errorf("%w: recorded %s, derived %s", ErrMultisigMismatch, m.AccountID, derived)
	}
	return nil
}

// ChainAccount is a chain-specific account of a wallet.
type ChainAccount struct {
	ChainID   string           `json:"chain_id"`
	AccountID types.AccountID  `json:"account_id"`
	Proxy     *ProxyAccount    `json:"proxy,omitempty"`
	Multisig  *MultisigAccount `json:"multisig,omitempty"`
}

// MetaAccount is one wallet as the user sees it, possibly spanning chains.
type MetaAccount struct {
	MetaID             string          `json:"meta_id"`
	Name               string          `json:"name"`
	Type               AccountType     `json:"type"`
	SubstrateAccountID types.AccountID `json:"substrate_account_id,omitempty"`
	EthereumAddress    types.AccountID `json:"ethereum_address,omitempty"`
	ChainAccounts      []ChainAccount  `json:"chain_accounts,omitempty"`
}

// Validate checks the wallet is internally consistent.
func (m *MetaAccount) Validate() error {
	if !m.Type.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidAccountType, m.Type)
	}
	if m.SubstrateAccountID.IsZero() && m.EthereumAddress.IsZero() && len(m.ChainAccounts) == 0 {
		return fmt.Errorf("wallet %q has no accounts", m.Name)
	}
	for _, ca := range m.ChainAccounts {
		if ca.ChainID == "" {
			return fmt.Errorf("wallet %q: chain account without chain id", m.Name)
		}
		switch m.Type {
		case TypeProxied:
			if ca.Proxy == nil {
				return fmt.Errorf("%w: proxied wallet %q on %s", ErrMissingDelegation, m.Name, ca.ChainID)
			}
		case TypeMultisig:
			if ca.Multisig == nil {
				return fmt.Errorf("%w: multisig wallet %q on %s", ErrMissingDelegation, m.Name, ca.ChainID)
			}
			if err := ca.Multisig.Validate(ca.AccountID.Len()); err != nil {
				return fmt.Errorf("wallet %q on %s: %w", m.Name, ca.ChainID, err)
			}
		}
	}
	if m.Type.IsDelegated() && len(m.ChainAccounts) == 0 {
		return fmt.Errorf("%w: wallet %q", ErrMissingDelegation, m.Name)
	}
	return nil
}

// ChainAccountResponse is a wallet's account materialized for one chain.
type ChainAccountResponse struct {
	MetaID    string           `json:"meta_id"`
	ChainID   string           `json:"chain_id"`
	AccountID types.AccountID  `json:"account_id"`
	Name      string           `json:"name"`
	Type      AccountType      `json:"type"`
	Delegated bool             `json:"delegated"`
	Proxy     *ProxyAccount    `json:"proxy,omitempty"`
	Multisig  *MultisigAccount `json:"multisig,omitempty"`
}

// MetaChainAccountResponse pairs a chain account with its wallet.
type MetaChainAccountResponse struct {
	MetaID       string               `json:"meta_id"`
	Name         string               `json:"name"`
	Type         AccountType          `json:"type"`
	ChainAccount ChainAccountResponse `json:"chain_account"`
}

// FetchChainAccount resolves the wallet's account on chain. A
// chain-specific account wins over the wallet's base account of the
// matching family.
func (m *MetaAccount) FetchChainAccount(chain types.Chain) (ChainAccountResponse, bool) {
	resp := ChainAccountResponse{
		MetaID:    m.MetaID,
		ChainID:   chain.ChainID,
		Name:      m.Name,
		Type:      m.Type,
		Delegated: m.Type.IsDelegated(),
	}
	for _, ca := range m.ChainAccounts {
		if ca.ChainID == chain.ChainID {
			resp.AccountID = ca.AccountID
			resp.Proxy = ca.Proxy
			resp.Multisig = ca.Multisig
			return resp, true
		}
	}
	base := m.SubstrateAccountID
	if chain.EthereumBased {
		base = m.EthereumAddress
	}
	if base.IsZero() {
		return ChainAccountResponse{}, false
	}
	resp.AccountID = base
	return resp, true
}

// FetchMetaChainAccount is FetchChainAccount wrapped with wallet identity.
func (m *MetaAccount) FetchMetaChainAccount(chain types.Chain) (MetaChainAccountResponse, bool) {
	ca, ok := m.FetchChainAccount(chain)
	if !ok {
		return MetaChainAccountResponse{}, false
	}
	return MetaChainAccountResponse{MetaID: m.MetaID, Name: m.Name, Type: m.Type, ChainAccount: ca}, true
}
