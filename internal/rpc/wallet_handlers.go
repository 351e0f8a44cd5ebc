package rpc

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingsign/internal/wallet"
	"github.com/Klingon-tech/klingsign/pkg/types"
)

func (s *Server) requireKeystore() *Error {
	if s.keystore == nil {
		return &Error{Code: CodeInternalError, Message: "keystore not available"}
	}
	return nil
}

// walletError maps repository errors to RPC errors.
func walletError(err error) *Error {
	switch {
	case errors.Is(err, wallet.ErrWalletNotFound):
		return &Error{Code: CodeNotFound, Message: err.Error()}
	case errors.Is(err, wallet.ErrDuplicateName),
		errors.Is(err, wallet.ErrInvalidAccountType),
		errors.Is(err, wallet.ErrMissingDelegation),
		errors.Is(err, wallet.ErrMultisigMismatch):
		return &Error{Code: CodeInvalidParams, Message: err.Error()}
	}
	return &Error{Code: CodeInternalError, Message: err.Error()}
}

func (s *Server) handleWalletList(req *Request) (interface{}, *Error) {
	var p WalletListParam
	if len(req.Params) > 0 && string(req.Params) != "null" {
		if err := parseParams(req, &p); err != nil {
			return nil, err
		}
	}

	var chain types.Chain
	if p.ChainID != "" {
		c, rpcErr := s.resolveChain(p.ChainID)
		if rpcErr != nil {
			return nil, rpcErr
		}
		chain = c
	}

	wallets, err := s.wallets.FetchAll()
	if err != nil {
		return nil, &Error{Code: CodeInternalError, Message: err.Error()}
	}

	results := make([]WalletResult, 0, len(wallets))
	for _, w := range wallets {
		r := WalletResult{MetaAccount: w}
		if s.keystore != nil && w.Type == wallet.TypeSecrets {
			r.HasSecrets = s.keystore.HasSecrets(w.MetaID)
		}
		if p.ChainID != "" {
			ca, ok := w.FetchChainAccount(chain)
			if !ok {
				continue
			}
			r.Account = &ca
		}
		results = append(results, r)
	}
	return results, nil
}

func (s *Server) handleWalletAdd(req *Request) (interface{}, *Error) {
	var p WalletAddParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	if p.Wallet == nil {
		return nil, &Error{Code: CodeInvalidParams, Message: "wallet is required"}
	}
	if err := s.wallets.Save(p.Wallet); err != nil {
		return nil, walletError(err)
	}
	s.logger.Info().Str("meta_id", p.Wallet.MetaID).Str("type", string(p.Wallet.Type)).Msg("Wallet added")
	return &WalletAddResult{MetaID: p.Wallet.MetaID}, nil
}

func (s *Server) handleWalletImport(req *Request) (interface{}, *Error) {
	if err := s.requireKeystore(); err != nil {
		return nil, err
	}
	var p WalletImportParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	if p.Name == "" || p.Mnemonic == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "name and mnemonic are required"}
	}
	if p.Password == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "password is required"}
	}

	m, err := wallet.ImportEthereumMnemonic(s.wallets, s.keystore, wallet.ImportRequest{
		Name:               p.Name,
		Mnemonic:           p.Mnemonic,
		Passphrase:         p.Passphrase,
		Password:           []byte(p.Password),
		SubstrateAccountID: p.SubstrateAccountID,
		Params:             wallet.DefaultParams(),
	})
	if err != nil {
		if errors.Is(err, wallet.ErrWalletNotFound) || errors.Is(err, wallet.ErrDuplicateName) {
			return nil, walletError(err)
		}
		return nil, &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("import wallet: %v", err)}
	}
	s.logger.Info().Str("meta_id", m.MetaID).Msg("Wallet imported")
	return &WalletAddResult{MetaID: m.MetaID}, nil
}

func (s *Server) handleWalletDelete(req *Request) (interface{}, *Error) {
	var p WalletIDParam
	if err := parseParams(req, &p); err != nil {
		return nil, err
	}
	if p.MetaID == "" {
		return nil, &Error{Code: CodeInvalidParams, Message: "meta_id is required"}
	}
	if err := s.wallets.Delete(p.MetaID); err != nil {
		return nil, walletError(err)
	}
	if s.keystore != nil && s.keystore.HasSecrets(p.MetaID) {
		if err := s.keystore.Delete(p.MetaID); err != nil {
			s.logger.Warn().Err(err).Str("meta_id", p.MetaID).Msg("Failed to delete wallet secret")
		}
	}
	return &WalletDeleteResult{Deleted: true}, nil
}
