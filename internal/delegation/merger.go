package delegation

import (
	"errors"
	"fmt"

	"github.com/Klingon-tech/klingsign/pkg/runtime"
	"github.com/Klingon-tech/klingsign/pkg/types"
)

// Merge failure sentinels, matched through MergeError.
var (
	ErrEmptyPaths    = errors.New("no delegation path")
	ErrDisjointPaths = errors.New("no delegate common to all calls")
)

// MergeError reports the call that made the merge fail.
type MergeError struct {
	Call runtime.CallCodingPath
	Err  error // ErrEmptyPaths or ErrDisjointPaths
}

func (e *MergeError) Error() string {
	return fmt.Sprintf("%s: %v", e.Call, e.Err)
}

func (e *MergeError) Unwrap() error { return e.Err }

// PathMerger folds per-call candidates into the set of delegates able
// to authorize every call combined so far.
type PathMerger struct {
	available types.AccountIDSet // nil until the first call
	paths     map[runtime.CallCodingPath][]GraphPath
	calls     []runtime.CallCodingPath
}

// NewPathMerger returns an empty merger.
func NewPathMerger() *PathMerger {
	return &PathMerger{paths: make(map[runtime.CallCodingPath][]GraphPath)}
}

// Combine adds the candidates of call and prunes every recorded call to
// the delegates still common to all. On error the merger is left as it
// was before the call.
func (m *PathMerger) Combine(call runtime.CallCodingPath, paths []GraphPath) error {
	if len(paths) == 0 {
		return &MergeError{Call: call, Err: ErrEmptyPaths}
	}

	delegates := types.NewAccountIDSet()
	for _, p := range paths {
		delegates.Add(p.Last())
	}
	available := delegates
	if m.available != nil {
		available = m.available.Intersect(delegates)
	}
	if len(available) == 0 {
		return &MergeError{Call: call, Err: ErrDisjointPaths}
	}

	calls := m.calls
	if _, seen := m.paths[call]; !seen {
		calls = append(calls[:len(calls):len(calls)], call)
	}
	pruned := make(map[runtime.CallCodingPath][]GraphPath, len(calls))
	for _, c := range calls {
		candidates := m.paths[c]
		if c == call {
			candidates = paths
		}
		kept := filterByLast(candidates, available)
		if len(kept) == 0 {
			return &MergeError{Call: call, Err: ErrDisjointPaths}
		}
		pruned[c] = kept
	}

	m.available = available
	m.paths = pruned
	m.calls = calls
	return nil
}

func filterByLast(paths []GraphPath, delegates types.AccountIDSet) []GraphPath {
	var kept []GraphPath
	for _, p := range paths {
		if delegates.Has(p.Last()) {
			kept = append(kept, p)
		}
	}
	return kept
}

// AvailableDelegates returns the common delegates, sorted.
func (m *PathMerger) AvailableDelegates() []types.AccountID {
	return m.available.Sorted()
}

// Calls returns the combined calls in combine order.
func (m *PathMerger) Calls() []runtime.CallCodingPath {
	return append([]runtime.CallCodingPath(nil), m.calls...)
}

// Paths returns the candidates retained for call.
func (m *PathMerger) Paths(call runtime.CallCodingPath) []GraphPath {
	return m.paths[call]
}

// Empty reports whether no call has been combined.
func (m *PathMerger) Empty() bool {
	return len(m.calls) == 0
}
