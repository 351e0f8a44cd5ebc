package wallet

import (
	"fmt"

	"github.com/Klingon-tech/klingsign/pkg/types"
)

// ImportRequest describes a secrets wallet imported from a mnemonic.
type ImportRequest struct {
	Name       string
	Mnemonic   string
	Passphrase string
	Password   []byte
	// SubstrateAccountID is taken as given; sr25519 derivation happens
	// in the signer, not here.
	SubstrateAccountID types.AccountID
	Params             EncryptionParams
}

// ImportEthereumMnemonic derives the Ethereum account of req.Mnemonic, saves a
// secrets wallet and stores the encrypted mnemonic under its meta id.
func ImportEthereumMnemonic(repo *Repository, ks *Keystore, req ImportRequest) (*MetaAccount, error) {
	eth, err := EthereumAddressFromMnemonic(req.Mnemonic, req.Passphrase)
	if err != nil {
		return nil, err
	}
	m := &MetaAccount{
		Name:               req.Name,
		Type:               TypeSecrets,
		SubstrateAccountID: req.SubstrateAccountID,
		EthereumAddress:    eth,
	}
	if err := repo.Save(m); err != nil {
		return nil, err
	}
	if err := ks.Store(m.MetaID, req.Mnemonic, req.Password, req.Params); err != nil {
		if derr := repo.Delete(m.MetaID); derr != nil {
			return nil, fmt.Errorf("store secret: %w (rollback: %v)", err, derr)
		}
		return nil, fmt.Errorf("store secret: %w", err)
	}
	return m, nil
}
