package delegation

import (
	"errors"
	"testing"

	"github.com/Klingon-tech/klingsign/pkg/runtime"
	"github.com/Klingon-tech/klingsign/pkg/types"
	"github.com/google/go-cmp/cmp"
)

func proxyPath(ids ...types.AccountID) GraphPath {
	p := make(GraphPath, len(ids))
	for i, id := range ids {
		p[i] = PathComponent{Delegate: id, Node: NewProxyNode("w", runtime.ProxyAny)}
	}
	return p
}

func TestPathMerger_Intersection(t *testing.T) {
	x, y, z, h := account(0x01), account(0x02), account(0x03), account(0x04)

	m := NewPathMerger()
	if err := m.Combine(transferPath, []GraphPath{proxyPath(x), proxyPath(h, y), proxyPath(y)}); err != nil {
		t.Fatalf("Combine(call1): %v", err)
	}
	if err := m.Combine(bondPath, []GraphPath{proxyPath(y), proxyPath(z)}); err != nil {
		t.Fatalf("Combine(call2): %v", err)
	}

	if diff := cmp.Diff([]types.AccountID{y}, m.AvailableDelegates()); diff != "" {
		t.Errorf("AvailableDelegates() mismatch (-want +got):\n%s", diff)
	}
	want := [][]types.AccountID{{h, y}, {y}}
	if diff := cmp.Diff(want, pathIDs(m.Paths(transferPath))); diff != "" {
		t.Errorf("pruned call1 paths mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([][]types.AccountID{{y}}, pathIDs(m.Paths(bondPath))); diff != "" {
		t.Errorf("call2 paths mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]runtime.CallCodingPath{transferPath, bondPath}, m.Calls()); diff != "" {
		t.Errorf("Calls() mismatch (-want +got):\n%s", diff)
	}
}

func TestPathMerger_Disjoint(t *testing.T) {
	x, z := account(0x01), account(0x03)

	m := NewPathMerger()
	if err := m.Combine(transferPath, []GraphPath{proxyPath(x)}); err != nil {
		t.Fatalf("Combine(call1): %v", err)
	}
	err := m.Combine(bondPath, []GraphPath{proxyPath(z)})
	if !errors.Is(err, ErrDisjointPaths) {
		t.Fatalf("Combine(call2) error = %v, want ErrDisjointPaths", err)
	}
	var me *MergeError
	if !errors.As(err, &me) || me.Call != bondPath {
		t.Errorf("error should name %s, got %v", bondPath, err)
	}

	// Failed combines leave the merger untouched.
	if diff := cmp.Diff([]types.AccountID{x}, m.AvailableDelegates()); diff != "" {
		t.Errorf("AvailableDelegates() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]runtime.CallCodingPath{transferPath}, m.Calls()); diff != "" {
		t.Errorf("Calls() mismatch (-want +got):\n%s", diff)
	}
}

func TestPathMerger_Empty(t *testing.T) {
	m := NewPathMerger()
	if !m.Empty() {
		t.Error("new merger should be empty")
	}
	err := m.Combine(transferPath, nil)
	if !errors.Is(err, ErrEmptyPaths) {
		t.Fatalf("Combine(nil) error = %v, want ErrEmptyPaths", err)
	}
	if !m.Empty() {
		t.Error("merger should stay empty after a failed combine")
	}
}

func TestPathMerger_RepeatedCall(t *testing.T) {
	x, y := account(0x01), account(0x02)

	m := NewPathMerger()
	if err := m.Combine(transferPath, []GraphPath{proxyPath(x), proxyPath(y)}); err != nil {
		t.Fatalf("Combine: %v", err)
	}
	if err := m.Combine(transferPath, []GraphPath{proxyPath(y)}); err != nil {
		t.Fatalf("Combine again: %v", err)
	}
	if diff := cmp.Diff([]runtime.CallCodingPath{transferPath}, m.Calls()); diff != "" {
		t.Errorf("Calls() mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]types.AccountID{y}, m.AvailableDelegates()); diff != "" {
		t.Errorf("AvailableDelegates() mismatch (-want +got):\n%s", diff)
	}
}
