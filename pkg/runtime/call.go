// Package runtime models runtime calls as a JSON tree, the extrinsic
// builder that carries them to signing, and the well-known pallet calls
// delegated signing wraps them in.
package runtime

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/Klingon-tech/klingsign/pkg/crypto"
	"github.com/Klingon-tech/klingsign/pkg/types"
)

// CallCodingPath identifies a call by pallet and function name.
type CallCodingPath struct {
	Module string `json:"module"`
	Call   string `json:"call"`
}

// NewCallCodingPath returns the path for module.call.
func NewCallCodingPath(module, call string) CallCodingPath {
	return CallCodingPath{Module: module, Call: call}
}

func (p CallCodingPath) String() string {
	return p.Module + "." + p.Call
}

// Compare orders paths by module, then call.
func (p CallCodingPath) Compare(o CallCodingPath) int {
	switch {
	case p.Module < o.Module:
		return -1
	case p.Module > o.Module:
		return 1
	case p.Call < o.Call:
		return -1
	case p.Call > o.Call:
		return 1
	}
	return 0
}

// Call is a runtime call with opaque, already-encoded arguments.
type Call struct {
	Module   string          `json:"module"`
	Function string          `json:"call"`
	Args     json.RawMessage `json:"args"`
}

// NewCall builds a call by JSON-encoding args.
func NewCall(module, function string, args any) (Call, error) {
	raw, err := json.Marshal(args)
	if err != nil {
		return Call{}, fmt.Errorf("encode %s.%s args: %w", module, function, err)
	}
	return Call{Module: module, Function: function, Args: raw}, nil
}

// Path returns the coding path of the call.
func (c Call) Path() CallCodingPath {
	return CallCodingPath{Module: c.Module, Call: c.Function}
}

// Is reports whether the call has the given path.
func (c Call) Is(p CallCodingPath) bool {
	return c.Module == p.Module && c.Function == p.Call
}

// Equal reports whether two calls are structurally identical. Argument
// JSON is compared after compaction.
func (c Call) Equal(o Call) bool {
	if c.Module != o.Module || c.Function != o.Function {
		return false
	}
	return bytes.Equal(compact(c.Args), compact(o.Args))
}

// Bytes returns the canonical encoding of the call.
func (c Call) Bytes() []byte {
	b, _ := json.Marshal(Call{Module: c.Module, Function: c.Function, Args: compact(c.Args)})
	return b
}

// Hash returns the blake2b-256 hash of the canonical encoding.
func (c Call) Hash() types.Hash {
	return crypto.CallHash(c.Bytes())
}

func (c Call) String() string {
	return c.Path().String()
}

func compact(raw json.RawMessage) json.RawMessage {
	if len(raw) == 0 {
		return json.RawMessage("null")
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return raw
	}
	return buf.Bytes()
}
