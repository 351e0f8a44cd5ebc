package types

import (
	"bytes"
	"encoding/json"
	"fmt"
	"slices"
)

// Account id sizes used by the supported chain families.
const (
	// SubstrateAccountIDSize is the length of an sr25519/ed25519 AccountId32.
	SubstrateAccountIDSize = 32

	// EthereumAccountIDSize is the length of an AccountId20 (H160).
	EthereumAccountIDSize = 20
)

// AccountID is an immutable chain account identifier.
// The underlying string holds the raw bytes, which keeps the type
// comparable and usable as a map key.
type AccountID string

// NewAccountID copies b into an AccountID.
func NewAccountID(b []byte) AccountID {
	return AccountID(b)
}

// HexToAccountID parses a 0x-prefixed (or bare) hex account id.
// Only 20 and 32 byte ids are accepted.
func HexToAccountID(s string) (AccountID, error) {
	b, err := DecodeHex(s)
	if err != nil {
		return "", err
	}
	if len(b) != SubstrateAccountIDSize && len(b) != EthereumAccountIDSize {
		return "", fmt.Errorf("account id must be %d or %d bytes, got %d",
			SubstrateAccountIDSize, EthereumAccountIDSize, len(b))
	}
	return AccountID(b), nil
}

// MustHexToAccountID is like HexToAccountID but panics on error.
// Intended for tests and static tables.
func MustHexToAccountID(s string) AccountID {
	id, err := HexToAccountID(s)
	if err != nil {
		panic(err)
	}
	return id
}

// IsZero returns true for the empty id.
func (a AccountID) IsZero() bool {
	return len(a) == 0
}

// Len returns the byte length of the id.
func (a AccountID) Len() int {
	return len(a)
}

// Bytes returns a copy of the raw id bytes.
func (a AccountID) Bytes() []byte {
	return []byte(a)
}

// Hex returns the 0x-prefixed hex encoding.
func (a AccountID) Hex() string {
	return EncodeHex([]byte(a))
}

// String implements fmt.Stringer.
func (a AccountID) String() string {
	return a.Hex()
}

// Compare orders account ids by their raw bytes.
func (a AccountID) Compare(b AccountID) int {
	return bytes.Compare([]byte(a), []byte(b))
}

// MarshalJSON encodes the id as a 0x-prefixed hex string. The zero id
// encodes as "".
func (a AccountID) MarshalJSON() ([]byte, error) {
	if a.IsZero() {
		return []byte(`""`), nil
	}
	return json.Marshal(a.Hex())
}

// UnmarshalJSON decodes a hex string into an id. "" and "0x" decode to
// the zero id.
func (a *AccountID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == "" || s == "0x" || s == "0X" {
		*a = ""
		return nil
	}
	id, err := HexToAccountID(s)
	if err != nil {
		return err
	}
	*a = id
	return nil
}

// AccountIDSet is a set of account ids.
type AccountIDSet map[AccountID]struct{}

// NewAccountIDSet builds a set from ids.
func NewAccountIDSet(ids ...AccountID) AccountIDSet {
	s := make(AccountIDSet, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Has reports whether id is in the set.
func (s AccountIDSet) Has(id AccountID) bool {
	_, ok := s[id]
	return ok
}

// Add inserts id.
func (s AccountIDSet) Add(id AccountID) {
	s[id] = struct{}{}
}

// Intersect returns a new set holding the ids present in both sets.
func (s AccountIDSet) Intersect(other AccountIDSet) AccountIDSet {
	out := make(AccountIDSet)
	for id := range s {
		if other.Has(id) {
			out[id] = struct{}{}
		}
	}
	return out
}

// Sorted returns the ids in ascending byte order.
func (s AccountIDSet) Sorted() []AccountID {
	out := make([]AccountID, 0, len(s))
	for id := range s {
		out = append(out, id)
	}
	SortAccountIDs(out)
	return out
}

// SortAccountIDs sorts ids in place in ascending byte order.
func SortAccountIDs(ids []AccountID) {
	slices.SortFunc(ids, AccountID.Compare)
}
