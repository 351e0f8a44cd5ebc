package wallet

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrSecretExists is returned when storing over an existing secret.
var ErrSecretExists = errors.New("secret already exists")

// ErrSecretNotFound is returned for wallets without a stored secret.
var ErrSecretNotFound = errors.New("secret not found")

const (
	keystoreVersion = 1
	secretExt       = ".secret"
)

// keystoreFile is the on-disk JSON format for an encrypted secret.
type keystoreFile struct {
	Version           int       `json:"version"`
	CreatedAt         time.Time `json:"created_at"`
	EncryptedMnemonic []byte    `json:"encrypted_mnemonic"`
}

// Keystore keeps the encrypted mnemonics of secrets wallets on disk,
// one file per wallet meta id.
type Keystore struct {
	path string
}

// NewKeystore creates a keystore that reads/writes to the given directory.
// The directory is created if it doesn't exist.
func NewKeystore(path string) (*Keystore, error) {
	if err := os.MkdirAll(path, 0700); err != nil {
		return nil, fmt.Errorf("create keystore dir: %w", err)
	}
	return &Keystore{path: path}, nil
}

func (ks *Keystore) secretPath(metaID string) (string, error) {
	if metaID == "" || strings.ContainsAny(metaID, `/\.`) {
		return "", fmt.Errorf("invalid meta id %q", metaID)
	}
	return filepath.Join(ks.path, metaID+secretExt), nil
}

// Store encrypts mnemonic under password for metaID.
func (ks *Keystore) Store(metaID, mnemonic string, password []byte, params EncryptionParams) error {
	path, err := ks.secretPath(metaID)
	if err != nil {
		return err
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrSecretExists, metaID)
	}
	mnemonic = NormalizeMnemonic(mnemonic)
	if !ValidateMnemonic(mnemonic) {
		return ErrInvalidMnemonic
	}

	encrypted, err := Encrypt([]byte(mnemonic), password, params)
	if err != nil {
		return fmt.Errorf("encrypt mnemonic: %w", err)
	}
	kf := keystoreFile{
		Version:           keystoreVersion,
		CreatedAt:         time.Now().UTC(),
		EncryptedMnemonic: encrypted,
	}
	data, err := json.MarshalIndent(&kf, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal secret: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("write secret: %w", err)
	}
	return nil
}

// Load decrypts and returns the mnemonic of metaID.
func (ks *Keystore) Load(metaID string, password []byte) (string, error) {
	path, err := ks.secretPath(metaID)
	if err != nil {
		return "", err
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return "", fmt.Errorf("%w: %s", ErrSecretNotFound, metaID)
	}
	if err != nil {
		return "", fmt.Errorf("read secret: %w", err)
	}
	var kf keystoreFile
	if err := json.Unmarshal(data, &kf); err != nil {
		return "", fmt.Errorf("parse secret: %w", err)
	}
	if kf.Version != keystoreVersion {
		return "", fmt.Errorf("unsupported keystore version: %d", kf.Version)
	}
	plain, err := Decrypt(kf.EncryptedMnemonic, password)
	if err != nil {
		return "", fmt.Errorf("decrypt %s: %w", metaID, err)
	}
	return string(plain), nil
}

// HasSecrets reports whether a secret is stored for metaID.
func (ks *Keystore) HasSecrets(metaID string) bool {
	path, err := ks.secretPath(metaID)
	if err != nil {
		return false
	}
	_, err = os.Stat(path)
	return err == nil
}

// Delete removes the secret of metaID.
func (ks *Keystore) Delete(metaID string) error {
	path, err := ks.secretPath(metaID)
	if err != nil {
		return err
	}
	if err := os.Remove(path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrSecretNotFound, metaID)
		}
		return fmt.Errorf("remove secret: %w", err)
	}
	return nil
}

// List returns the meta ids with stored secrets, sorted.
func (ks *Keystore) List() ([]string, error) {
	entries, err := os.ReadDir(ks.path)
	if err != nil {
		return nil, fmt.Errorf("read keystore dir: %w", err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		if name, ok := strings.CutSuffix(e.Name(), secretExt); ok {
			ids = append(ids, name)
		}
	}
	sort.Strings(ids)
	return ids, nil
}
