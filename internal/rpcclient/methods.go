package rpcclient

import (
	"encoding/json"

	"github.com/Klingon-tech/klingsign/internal/delegation"
	"github.com/Klingon-tech/klingsign/internal/rpc"
	"github.com/Klingon-tech/klingsign/internal/wallet"
	"github.com/Klingon-tech/klingsign/pkg/types"
)

// ChainList returns the chains the daemon serves.
func (c *Client) ChainList() ([]types.Chain, error) {
	var chains []types.Chain
	if err := c.Call("chain_list", nil, &chains); err != nil {
		return nil, err
	}
	return chains, nil
}

// WalletList returns every wallet. With a chain id, only wallets with an
// account on that chain are returned, each carrying the account.
func (c *Client) WalletList(chainID string) ([]rpc.WalletResult, error) {
	var params interface{}
	if chainID != "" {
		params = rpc.WalletListParam{ChainID: chainID}
	}
	var wallets []rpc.WalletResult
	if err := c.Call("wallet_list", params, &wallets); err != nil {
		return nil, err
	}
	return wallets, nil
}

// AddWallet stores a wallet record and returns its meta id.
func (c *Client) AddWallet(m *wallet.MetaAccount) (string, error) {
	var res rpc.WalletAddResult
	if err := c.Call("wallet_add", rpc.WalletAddParam{Wallet: m}, &res); err != nil {
		return "", err
	}
	return res.MetaID, nil
}

// DeleteWallet removes a wallet and its stored secret.
func (c *Client) DeleteWallet(metaID string) error {
	return c.Call("wallet_delete", rpc.WalletIDParam{MetaID: metaID}, nil)
}

// ResolveDelegation resolves the signer for delegated calls. The
// resolution is returned as sent so call arguments keep their bytes.
func (c *Client) ResolveDelegation(p rpc.ResolveParam) (json.RawMessage, error) {
	var res json.RawMessage
	if err := c.Call("delegation_resolve", p, &res); err != nil {
		return nil, err
	}
	return res, nil
}

// ValidateDelegation returns the checks a wrapped delegated call needs.
func (c *Client) ValidateDelegation(p rpc.ValidateParam) (*delegation.ValidationSequence, error) {
	var seq delegation.ValidationSequence
	if err := c.Call("delegation_validate", p, &seq); err != nil {
		return nil, err
	}
	return &seq, nil
}

// XcmConvert re-encodes a versioned XCM value. An empty version selects
// the daemon default.
func (c *Client) XcmConvert(kind string, data json.RawMessage, version string) (*rpc.XcmConvertResult, error) {
	var res rpc.XcmConvertResult
	err := c.Call("xcm_convert", rpc.XcmConvertParam{Kind: kind, Data: data, Version: version}, &res)
	if err != nil {
		return nil, err
	}
	return &res, nil
}

// XcmTransferCall builds the execute call for a cross-chain transfer.
func (c *Client) XcmTransferCall(p rpc.XcmTransferParam) (*rpc.XcmTransferResult, error) {
	var res rpc.XcmTransferResult
	if err := c.Call("xcm_transferCall", p, &res); err != nil {
		return nil, err
	}
	return &res, nil
}
