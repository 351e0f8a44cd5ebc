package rpc

import (
	"encoding/json"

	"github.com/Klingon-tech/klingsign/internal/delegation"
	"github.com/Klingon-tech/klingsign/internal/wallet"
	"github.com/Klingon-tech/klingsign/pkg/runtime"
	"github.com/Klingon-tech/klingsign/pkg/types"
	"github.com/Klingon-tech/klingsign/pkg/xcm"
)

// JSON-RPC 2.0 error codes.
const (
	CodeParseError     = -32700
	CodeInvalidRequest = -32600
	CodeMethodNotFound = -32601
	CodeInvalidParams  = -32602
	CodeInternalError  = -32603
	CodeNotFound       = -32000
)

// Request is a JSON-RPC 2.0 request. Params are kept raw so call
// arguments reach the handlers byte for byte.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
	ID      interface{}     `json:"id"`
}

// Response is a JSON-RPC 2.0 response.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	Result  interface{} `json:"result,omitempty"`
	Error   *Error      `json:"error,omitempty"`
	ID      interface{} `json:"id"`
}

// Error is a JSON-RPC 2.0 error object.
type Error struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

// ── Param types ─────────────────────────────────────────────────────────

// WalletListParam is used by wallet_list. With a chain id, each wallet
// carries its account on that chain.
type WalletListParam struct {
	ChainID string `json:"chain_id,omitempty"`
}

// WalletAddParam is used by wallet_add.
type WalletAddParam struct {
	Wallet *wallet.MetaAccount `json:"wallet"`
}

// WalletImportParam is used by wallet_import.
type WalletImportParam struct {
	Name               string          `json:"name"`
	Mnemonic           string          `json:"mnemonic"`
	Passphrase         string          `json:"passphrase,omitempty"`
	Password           string          `json:"password"`
	SubstrateAccountID types.AccountID `json:"substrate_account_id,omitempty"`
}

// WalletIDParam is used by wallet_delete.
type WalletIDParam struct {
	MetaID string `json:"meta_id"`
}

// ResolveParam is used by delegation_resolve. Each builder is the call
// list of one extrinsic.
type ResolveParam struct {
	ChainID          string           `json:"chain_id"`
	DelegatedAccount types.AccountID  `json:"delegated_account"`
	DelegateAccount  types.AccountID  `json:"delegate_account,omitempty"`
	Builders         [][]runtime.Call `json:"builders"`
	Batch            bool             `json:"batch,omitempty"`
}

// ValidateParam is used by delegation_validate.
type ValidateParam struct {
	ChainID          string                    `json:"chain_id"`
	DelegatedAccount types.AccountID           `json:"delegated_account"`
	Call             runtime.Call              `json:"call"`
	Path             delegation.PathFinderPath `json:"path"`
}

// XcmConvertParam is used by xcm_convert.
type XcmConvertParam struct {
	Kind    string          `json:"kind"`
	Data    json.RawMessage `json:"data"`
	Version string          `json:"version"`
}

// WeightParam is a two-dimensional weight in request params.
type WeightParam struct {
	RefTime   uint64 `json:"ref_time"`
	ProofSize uint64 `json:"proof_size"`
}

// XcmTransferParam is used by xcm_transferCall.
type XcmTransferParam struct {
	Origin        xcm.ChainLocation `json:"origin"`
	Destination   xcm.ChainLocation `json:"destination"`
	Reserve       xcm.ChainLocation `json:"reserve"`
	AssetLocation xcm.RawPath       `json:"asset_location"`
	Amount        string            `json:"amount"`
	Beneficiary   types.AccountID   `json:"beneficiary"`
	UtilityAsset  bool              `json:"utility_asset,omitempty"`
	Version       string            `json:"version,omitempty"`
	MaxWeight     *WeightParam      `json:"max_weight,omitempty"`
}

// ── Result types ────────────────────────────────────────────────────────

// WalletResult is one entry of wallet_list.
type WalletResult struct {
	*wallet.MetaAccount
	HasSecrets bool                         `json:"has_secrets"`
	Account    *wallet.ChainAccountResponse `json:"account,omitempty"`
}

// WalletAddResult is returned by wallet_add and wallet_import.
type WalletAddResult struct {
	MetaID string `json:"meta_id"`
}

// WalletDeleteResult is returned by wallet_delete.
type WalletDeleteResult struct {
	Deleted bool `json:"deleted"`
}

// XcmConvertResult is returned by xcm_convert.
type XcmConvertResult struct {
	Kind        string          `json:"kind"`
	FromVersion string          `json:"from_version"`
	Version     string          `json:"version"`
	Data        json.RawMessage `json:"data"`
}

// XcmTransferResult is returned by xcm_transferCall.
type XcmTransferResult struct {
	Type     string          `json:"type"`
	Version  string          `json:"version"`
	Message  json.RawMessage `json:"message"`
	Call     runtime.Call    `json:"call"`
	CallHash types.Hash      `json:"call_hash"`
}
