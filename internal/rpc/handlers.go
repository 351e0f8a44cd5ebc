package rpc

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingsign/config"
	"github.com/Klingon-tech/klingsign/internal/delegation"
	"github.com/Klingon-tech/klingsign/internal/wallet"
	"github.com/Klingon-tech/klingsign/pkg/runtime"
	"github.com/Klingon-tech/klingsign/pkg/types"
	"github.com/Klingon-tech/klingsign/pkg/xcm"
	"github.com/holiman/uint256"
)

// ── Chains ──────────────────────────────────────────────────────────────

func (s *Server) handleChainList(_ *Request) (interface{}, *Error) {
	chains := s.chains
	if chains == nil {
		chains = []types.Chain{}
	}
	return chains, nil
}

// ── Delegation ──────────────────────────────────────────────────────────

// delegatedAccount returns the delegated wallet owning id on chain, with
// the snapshot of all wallets.
func (s *Server) delegatedAccount(chain types.Chain, id types.AccountID) (wallet.ChainAccountResponse, []*wallet.MetaAccount, *Error) {
	if id.IsZero() {
		return wallet.ChainAccountResponse{}, nil, &Error{Code: CodeInvalidParams, Message: "delegated_account is required"}
	}
	wallets, err := s.wallets.FetchAll()
	if err != nil {
		return wallet.ChainAccountResponse{}, nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	for _, w := range wallets {
		if !w.Type.IsDelegated() {
			continue
		}
		if ca, ok := w.FetchChainAccount(chain); ok && ca.AccountID == id {
			return ca, wallets, nil
		}
	}
	return wallet.ChainAccountResponse{}, nil, &Error{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("no delegated wallet for %s on %s", id, chain.ChainID),
	}
}

func (s *Server) handleDelegationResolve(req *Request) (interface{}, *Error) {
	var p ResolveParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	chain, rpcErr := s.resolveChain(p.ChainID)
	if rpcErr != nil {
		return nil, rpcErr
	}
	delegated, wallets, rpcErr := s.delegatedAccount(chain, p.DelegatedAccount)
	if rpcErr != nil {
		return nil, rpcErr
	}

	builders := make([]*runtime.Builder, 0, len(p.Builders))
	for _, calls := range p.Builders {
		builders = append(builders, runtime.NewBuilder(calls...))
	}

	resolution, err := delegation.NewResolver(wallets, chain).Resolve(delegation.Request{
		Delegated:         delegated,
		DelegateAccountID: p.DelegateAccount,
		Builders:          builders,
		Batch:             p.Batch,
	})
	if err != nil {
		if errors.Is(err, runtime.ErrNoCalls) || errors.Is(err, delegation.ErrUnsupportedDelegatedAccount) ||
			errors.Is(err, delegation.ErrNoSinglePath) {
			return nil, &Error{Code: CodeInvalidParams, Message: err.Error()}
		}
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}
	return resolution, nil
}

func (s *Server) handleDelegationValidate(req *Request) (interface{}, *Error) {
	var p ValidateParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	chain, rpcErr := s.resolveChain(p.ChainID)
	if rpcErr != nil {
		return nil, rpcErr
	}
	delegated, _, rpcErr := s.delegatedAccount(chain, p.DelegatedAccount)
	if rpcErr != nil {
		return nil, rpcErr
	}

	seq, err := delegation.ValidationSequenceFor(p.Call, delegated, p.Path)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: err.Error()}
	}
	return seq, nil
}

// ── XCM ─────────────────────────────────────────────────────────────────

// requestVersion parses an optional version, falling back to the
// server default.
func (s *Server) requestVersion(raw string) (xcm.Version, *Error) {
	if raw == "" {
		return s.xcmVersion, nil
	}
	v, err := config.ParseXcmVersion(raw)
	if err != nil {
		return 0, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid version: %v", err)}
	}
	return v, nil
}

// convertVersioned decodes data as a versioned T and re-encodes it at v.
func convertVersioned[T xcm.Encoder](kind string, data []byte, v xcm.Version) (*XcmConvertResult, error) {
	decoded, err := xcm.DecodeVersioned[T](data)
	if err != nil {
		return nil, err
	}
	out, err := decoded.Convert(v).Bytes()
	if err != nil {
		return nil, err
	}
	return &XcmConvertResult{
		Kind:        kind,
		FromVersion: decoded.Version.String(),
		Version:     v.String(),
		Data:        out,
	}, nil
}

func (s *Server) handleXcmConvert(req *Request) (interface{}, *Error) {
	var p XcmConvertParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	if len(p.Data) == 0 {
		return nil, &Error{Code: CodeInvalidParams, Message: "data is required"}
	}
	v, rpcErr := s.requestVersion(p.Version)
	if rpcErr != nil {
		return nil, rpcErr
	}

	var (
		result *XcmConvertResult
		err    error
	)
	switch p.Kind {
	case "location":
		result, err = convertVersioned[xcm.Location](p.Kind, p.Data, v)
	case "asset":
		result, err = convertVersioned[xcm.Asset](p.Kind, p.Data, v)
	case "assets":
		result, err = convertVersioned[xcm.Assets](p.Kind, p.Data, v)
	case "message":
		result, err = convertVersioned[xcm.Message](p.Kind, p.Data, v)
	default:
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("unknown kind %q", p.Kind)}
	}
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: err.Error()}
	}
	return result, nil
}

func (s *Server) handleXcmTransferCall(req *Request) (interface{}, *Error) {
	var p XcmTransferParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	if p.Beneficiary.IsZero() {
		return nil, &Error{Code: CodeInvalidParams, Message: "beneficiary is required"}
	}
	amount, err := uint256.FromDecimal(p.Amount)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid amount: %v", err)}
	}
	if amount.IsZero() {
		return nil, &Error{Code: CodeInvalidParams, Message: "amount must be positive"}
	}
	asset, err := xcm.AbsoluteLocationFromRawPath(p.AssetLocation)
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid asset_location: %v", err)}
	}
	v, rpcErr := s.requestVersion(p.Version)
	if rpcErr != nil {
		return nil, rpcErr
	}

	transfer := xcm.TransferRequest{
		Origin:        p.Origin,
		Destination:   p.Destination,
		Reserve:       p.Reserve,
		AssetLocation: asset,
		Amount:        *amount,
		Beneficiary:   p.Beneficiary,
		UtilityAsset:  p.UtilityAsset,
	}
	message := xcm.NewVersioned(xcm.TransferProgram(transfer), v)
	msgBytes, err := message.Bytes()
	if err != nil {
		return nil, &Error{Code: CodeInvalidParams, Message: err.Error()}
	}

	module := runtime.ModulePolkadotXcm
	if p.Origin.ParaID == nil {
		module = runtime.ModuleXcmPallet
	}
	var maxWeight xcm.Weight
	if p.MaxWeight != nil {
		maxWeight = xcm.NewWeight(p.MaxWeight.RefTime, p.MaxWeight.ProofSize)
	}
	call, err := runtime.XcmExecuteCall(module, message, maxWeight)
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}

	s.logger.Debug().
		Str("type", transfer.Type().String()).
		Str("version", v.String()).
		Str("module", module).
		Msg("Built XCM transfer call")

	return &XcmTransferResult{
		Type:     transfer.Type().String(),
		Version:  v.String(),
		Message:  json.RawMessage(msgBytes),
		Call:     call,
		CallHash: call.Hash(),
	}, nil
}
