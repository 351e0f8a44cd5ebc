// Package crypto provides the hashing primitives used for account
// derivation, call hashing and resolution fingerprints.
package crypto

import (
	"encoding/binary"

	"github.com/Klingon-tech/klingsign/pkg/types"
	"github.com/zeebo/blake3"
	"golang.org/x/crypto/blake2b"
	"golang.org/x/crypto/sha3"
)

// Blake2b256 computes the 32-byte BLAKE2b hash used by substrate runtimes
// for call hashes and derived account ids.
func Blake2b256(data []byte) types.Hash {
	return blake2b.Sum256(data)
}

// Keccak256 computes the legacy Keccak-256 hash used by Ethereum.
func Keccak256(data []byte) types.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write(data)
	var out types.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// Fingerprint computes a BLAKE3-256 digest over the concatenation of parts.
// Each part is length-prefixed so that boundaries are unambiguous.
func Fingerprint(parts ...[]byte) types.Hash {
	h := blake3.New()
	var lenBuf []byte
	for _, p := range parts {
		lenBuf = binary.LittleEndian.AppendUint64(lenBuf[:0], uint64(len(p)))
		h.Write(lenBuf)
		h.Write(p)
	}
	var out types.Hash
	copy(out[:], h.Sum(nil))
	return out
}

// CallHash returns the blake2b-256 hash of SCALE or canonical call bytes,
// as expected by Multisig.approve_as_multi.
func CallHash(call []byte) types.Hash {
	return Blake2b256(call)
}
