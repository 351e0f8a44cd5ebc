package delegation

import (
	"fmt"
	"slices"

	"github.com/Klingon-tech/klingsign/internal/wallet"
	"github.com/Klingon-tech/klingsign/pkg/runtime"
)

// ValidationNodeKind identifies a check to run before signing.
type ValidationNodeKind string

const (
	// ValidationFee checks the account can pay fees for Call.
	ValidationFee ValidationNodeKind = "fee"
	// ValidationConfirmation asks the account owner to confirm Call.
	ValidationConfirmation ValidationNodeKind = "confirmation"
	// ValidationMultisigOperation checks no identical operation is
	// pending for the multisig.
	ValidationMultisigOperation ValidationNodeKind = "multisig_operation"
)

// ValidationNode is one check of a ValidationSequence.
type ValidationNode struct {
	Kind       ValidationNodeKind              `json:"kind"`
	Account    wallet.MetaChainAccountResponse `json:"account"`
	Call       runtime.Call                    `json:"call"`
	Delegation PathValue                       `json:"delegation"`
	// Multisig is set for multisig operation nodes only.
	Multisig *wallet.ChainAccountResponse `json:"multisig,omitempty"`
}

// ValidationSequence lists checks in execution order, innermost call
// first.
type ValidationSequence struct {
	Nodes []ValidationNode `json:"nodes"`
}

// UnexpectedDelegationTypeError is returned when the wrapped call does
// not match the delegation at Depth, counted from the signer.
type UnexpectedDelegationTypeError struct {
	Depth    int
	Relation RelationType
}

func (e *UnexpectedDelegationTypeError) Error() string {
	return fmt.Sprintf("unexpected delegation type %s at depth %d", e.Relation, e.Depth)
}

// UnexpectedEndOfChainError is returned when the call is nested deeper
// than the path.
type UnexpectedEndOfChainError struct {
	Depth int
}

func (e *UnexpectedEndOfChainError) Error() string {
	return fmt.Sprintf("unexpected end of delegation chain at depth %d", e.Depth)
}

type sequenceBuilder struct {
	origin wallet.ChainAccountResponse
	// path runs from the signer inward, the order calls unwrap in.
	path  []PathFinderComponent
	nodes []ValidationNode
}

// ValidationSequenceFor unwraps call, as produced by path for origin,
// and returns the checks each hop needs.
func ValidationSequenceFor(call runtime.Call, origin wallet.ChainAccountResponse, path PathFinderPath) (*ValidationSequence, error) {
	b := &sequenceBuilder{origin: origin, path: slices.Clone(path.Components)}
	slices.Reverse(b.path)
	if err := b.process(call, 0); err != nil {
		return nil, err
	}
	return &ValidationSequence{Nodes: b.nodes}, nil
}

func (b *sequenceBuilder) process(call runtime.Call, depth int) error {
	switch call.Path() {
	case runtime.AsMultiPath:
		return b.processAsMulti(call, depth)
	case runtime.AsMultiThreshold1Path:
		return b.processAsMultiThreshold1(call, depth)
	case runtime.ProxyPath:
		return b.processProxy(call, depth)
	}
	if depth < len(b.path) {
		return &UnexpectedDelegationTypeError{Depth: depth, Relation: b.path[depth].Delegation.Kind}
	}
	return nil
}

func (b *sequenceBuilder) ensureRelation(depth int, want RelationType) error {
	if depth >= len(b.path) {
		return &UnexpectedEndOfChainError{Depth: depth}
	}
	if got := b.path[depth].Delegation.Kind; got != want {
		return &UnexpectedDelegationTypeError{Depth: depth, Relation: got}
	}
	return nil
}

func (b *sequenceBuilder) processAsMulti(call runtime.Call, depth int) error {
	if err := b.ensureRelation(depth, RelationMultisig); err != nil {
		return err
	}
	comp := b.path[depth]
	multisig := b.origin
	if depth+1 < len(b.path) {
		multisig = b.path[depth+1].Account.ChainAccount
	}

	args, err := runtime.DecodeMultisigCall(call)
	if err != nil {
		return err
	}
	if err := b.process(args.Call, depth+1); err != nil {
		return err
	}

	b.add(ValidationConfirmation, comp, args.Call)
	b.nodes = append(b.nodes, ValidationNode{
		Kind:       ValidationMultisigOperation,
		Account:    comp.Account,
		Call:       args.Call,
		Delegation: comp.Delegation,
		Multisig:   &multisig,
	})
	if depth == 0 {
		b.add(ValidationFee, comp, call)
	}
	return nil
}

func (b *sequenceBuilder) processAsMultiThreshold1(call runtime.Call, depth int) error {
	if err := b.ensureRelation(depth, RelationMultisig); err != nil {
		return err
	}
	comp := b.path[depth]

	args, err := runtime.DecodeMultisigCall(call)
	if err != nil {
		return err
	}
	if err := b.process(args.Call, depth+1); err != nil {
		return err
	}
	if depth == 0 {
		b.add(ValidationFee, comp, call)
	}
	return nil
}

func (b *sequenceBuilder) processProxy(call runtime.Call, depth int) error {
	if err := b.ensureRelation(depth, RelationProxy); err != nil {
		return err
	}
	comp := b.path[depth]

	args, err := runtime.DecodeProxyCall(call)
	if err != nil {
		return err
	}
	if err := b.process(args.Call, depth+1); err != nil {
		return err
	}
	if depth == 0 {
		b.add(ValidationConfirmation, comp, call)
		b.add(ValidationFee, comp, call)
	}
	return nil
}

func (b *sequenceBuilder) add(kind ValidationNodeKind, comp PathFinderComponent, call runtime.Call) {
	b.nodes = append(b.nodes, ValidationNode{
		Kind:       kind,
		Account:    comp.Account,
		Call:       call,
		Delegation: comp.Delegation,
	})
}
