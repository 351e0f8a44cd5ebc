package crypto

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingsign/pkg/types"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

// multisigPrefix is the pallet_multisig derivation prefix.
var multisigPrefix = []byte("modlpy/utilisuba")

// ErrNoSignatories is returned when deriving a multisig with no signatories.
var ErrNoSignatories = errors.New("multisig requires at least one signatory")

// EthereumAccountID derives the 20-byte account id from a secp256k1 public key
// (compressed or uncompressed): keccak256(X || Y)[12:].
func EthereumAccountID(pubKey []byte) (types.AccountID, error) {
	key, err := secp256k1.ParsePubKey(pubKey)
	if err != nil {
		return "", fmt.Errorf("parse public key: %w", err)
	}
	uncompressed := key.SerializeUncompressed()
	hash := Keccak256(uncompressed[1:])
	return types.NewAccountID(hash[12:]), nil
}

// MultisigAccountID derives the pallet_multisig account id for a set of
// signatories and a threshold:
//
//	blake2b_256("modlpy/utilisuba" ++ compact(len) ++ sorted(signatories) ++ u16le(threshold))
//
// The result is truncated to size bytes (20 for Ethereum-based chains).
func MultisigAccountID(signatories []types.AccountID, threshold uint16, size int) (types.AccountID, error) {
	if len(signatories) == 0 {
		return "", ErrNoSignatories
	}
	if size <= 0 || size > types.HashSize {
		return "", fmt.Errorf("invalid account id size %d", size)
	}

	sorted := make([]types.AccountID, len(signatories))
	copy(sorted, signatories)
	types.SortAccountIDs(sorted)

	buf := make([]byte, 0, len(multisigPrefix)+5+len(sorted)*types.SubstrateAccountIDSize+2)
	buf = append(buf, multisigPrefix...)
	buf = AppendCompact(buf, uint64(len(sorted)))
	for _, s := range sorted {
		buf = append(buf, s.Bytes()...)
	}
	buf = binary.LittleEndian.AppendUint16(buf, threshold)

	hash := Blake2b256(buf)
	return types.NewAccountID(hash[:size]), nil
}

// AppendCompact appends the SCALE compact encoding of n to buf.
func AppendCompact(buf []byte, n uint64) []byte {
	switch {
	case n < 1<<6:
		return append(buf, byte(n<<2))
	case n < 1<<14:
		return binary.LittleEndian.AppendUint16(buf, uint16(n<<2)|0b01)
	case n < 1<<30:
		return binary.LittleEndian.AppendUint32(buf, uint32(n<<2)|0b10)
	}
	var raw [8]byte
	binary.LittleEndian.PutUint64(raw[:], n)
	size := 8
	for size > 4 && raw[size-1] == 0 {
		size--
	}
	buf = append(buf, byte((size-4)<<2)|0b11)
	return append(buf, raw[:size]...)
}
