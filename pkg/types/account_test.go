package types

import (
	"encoding/json"
	"strings"
	"testing"
)

func TestHexToAccountID(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantLen int
		wantErr bool
	}{
		{name: "substrate id", input: "0x" + strings.Repeat("11", 32), wantLen: 32},
		{name: "ethereum id", input: strings.Repeat("22", 20), wantLen: 20},
		{name: "wrong size", input: "0x" + strings.Repeat("33", 16), wantErr: true},
		{name: "invalid hex", input: "0xzz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, err := HexToAccountID(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("HexToAccountID(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if !tt.wantErr && id.Len() != tt.wantLen {
				t.Errorf("Len() = %d, want %d", id.Len(), tt.wantLen)
			}
		})
	}
}

func TestAccountID_MapKey(t *testing.T) {
	a := NewAccountID([]byte{1, 2, 3})
	b := NewAccountID([]byte{1, 2, 3})

	m := map[AccountID]int{a: 1}
	if m[b] != 1 {
		t.Error("equal byte content should map to the same key")
	}
}

func TestAccountID_JSON_Roundtrip(t *testing.T) {
	id := MustHexToAccountID("0x" + strings.Repeat("ab", 32))
	data, err := json.Marshal(id)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if !strings.HasPrefix(string(data), `"0xab`) {
		t.Errorf("Marshal = %s, want 0x-prefixed hex", data)
	}

	var got AccountID
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if got != id {
		t.Errorf("roundtrip mismatch: got %s, want %s", got, id)
	}
}

func TestAccountID_JSON_Zero(t *testing.T) {
	type holder struct {
		ID AccountID `json:"id"`
	}
	data, err := json.Marshal(holder{})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `{"id":""}` {
		t.Errorf("Marshal = %s, want empty id", data)
	}

	for _, input := range []string{string(data), `{"id":"0x"}`} {
		got := holder{ID: MustHexToAccountID("0x" + strings.Repeat("cd", 20))}
		if err := json.Unmarshal([]byte(input), &got); err != nil {
			t.Fatalf("Unmarshal(%s): %v", input, err)
		}
		if !got.ID.IsZero() {
			t.Errorf("Unmarshal(%s) = %s, want zero id", input, got.ID)
		}
	}
}

func TestAccountIDSet_IntersectSorted(t *testing.T) {
	x := NewAccountID([]byte{3})
	y := NewAccountID([]byte{1})
	z := NewAccountID([]byte{2})

	left := NewAccountIDSet(x, y)
	right := NewAccountIDSet(y, z)

	got := left.Intersect(right)
	if len(got) != 1 || !got.Has(y) {
		t.Fatalf("Intersect = %v, want {y}", got.Sorted())
	}

	all := NewAccountIDSet(x, y, z).Sorted()
	if all[0] != y || all[1] != z || all[2] != x {
		t.Errorf("Sorted() = %v, want ascending byte order", all)
	}
}
