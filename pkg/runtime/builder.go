package runtime

import (
	"encoding/json"
	"errors"
	"slices"
)

// ErrNoCalls is returned when a builder without calls is reduced.
var ErrNoCalls = errors.New("builder has no calls")

// Builder collects the calls of one extrinsic.
type Builder struct {
	calls []Call
}

// NewBuilder creates a builder holding the given calls.
func NewBuilder(calls ...Call) *Builder {
	return &Builder{calls: slices.Clone(calls)}
}

// AddCall appends a call.
func (b *Builder) AddCall(c Call) *Builder {
	b.calls = append(b.calls, c)
	return b
}

// Calls returns a copy of the collected calls.
func (b *Builder) Calls() []Call {
	return slices.Clone(b.calls)
}

// Len returns the number of calls.
func (b *Builder) Len() int {
	return len(b.calls)
}

// Paths returns the distinct call paths in first-seen order.
func (b *Builder) Paths() []CallCodingPath {
	var paths []CallCodingPath
	for _, c := range b.calls {
		if p := c.Path(); !slices.Contains(paths, p) {
			paths = append(paths, p)
		}
	}
	return paths
}

// WithCalls returns a new builder carrying calls instead of b's.
func (b *Builder) WithCalls(calls ...Call) *Builder {
	return NewBuilder(calls...)
}

// Reduce collapses the calls into one: a single call is returned as-is,
// several are wrapped in Utility.batch_all.
func (b *Builder) Reduce() (Call, error) {
	switch len(b.calls) {
	case 0:
		return Call{}, ErrNoCalls
	case 1:
		return b.calls[0], nil
	}
	return BatchAll(b.calls)
}

// MarshalJSON encodes the builder as its call list.
func (b *Builder) MarshalJSON() ([]byte, error) {
	if b.calls == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(b.calls)
}

// UnmarshalJSON decodes a call list.
func (b *Builder) UnmarshalJSON(data []byte) error {
	var calls []Call
	if err := json.Unmarshal(data, &calls); err != nil {
		return err
	}
	b.calls = calls
	return nil
}
