// derive_key.go prints the pubkey and Ethereum account id for a hex-encoded private key file.
// Usage: go run scripts/derive_key.go <keyfile>
package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"github.com/Klingon-tech/klingsign/pkg/crypto"
	"github.com/decred/dcrd/dcrec/secp256k1/v4"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: derive_key <keyfile>")
		os.Exit(1)
	}
	data, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	keyHex := strings.TrimPrefix(strings.TrimSpace(string(data)), "0x")
	keyBytes, err := hex.DecodeString(keyHex)
	if err != nil || len(keyBytes) != secp256k1.PrivKeyBytesLen {
		fmt.Fprintln(os.Stderr, "key file must hold a 32-byte hex private key")
		os.Exit(1)
	}
	pub := secp256k1.PrivKeyFromBytes(keyBytes).PubKey().SerializeCompressed()
	account, err := crypto.EthereumAccountID(pub)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	fmt.Printf("pubkey=%s\n", hex.EncodeToString(pub))
	fmt.Printf("account=%s\n", account.Hex())
}
