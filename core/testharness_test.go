package core

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/arvonet/dualroute/state"
	"github.com/google/go-cmp/cmp"
)

// harnessEvent records one side effect emitted by the DualEngine
// through the Router interface. mockRouter below is a Router
// implementation that records actions instead of performing them, so
// engine-level tests can assert on exactly what was emitted.
type harnessEvent struct {
	kind string
	args []any
}

func event(kind string, args ...any) harnessEvent {
	return harnessEvent{kind: kind, args: args}
}

type harnessEvents []harnessEvent

func (h harnessEvents) String() string {
	lines := make([]string, 0, len(h))
	for _, e := range h {
		line := e.kind
		for _, a := range e.args {
			line += " " + fmt.Sprint(a)
		}
		lines = append(lines, line)
	}
	slices.Sort(lines)
	return strings.Join(lines, "\n")
}

func (h harnessEvents) contains(kind string, args ...any) bool {
	for _, e := range h {
		if e.kind != kind || len(e.args) < len(args) {
			continue
		}
		match := true
		for i, a := range args {
			if !cmp.Equal(e.args[i], a) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func (h harnessEvents) assertContains(t *testing.T, kind string, args ...any) {
	t.Helper()
	if !h.contains(kind, args...) {
		t.Fatalf("expected event %s %v not found in:\n%s", kind, args, h)
	}
}

func (h harnessEvents) assertNotContains(t *testing.T, kind string, args ...any) {
	t.Helper()
	if h.contains(kind, args...) {
		t.Fatalf("unexpected event %s %v found in:\n%s", kind, args, h)
	}
}

type mockRouter struct {
	actions []harnessEvent
}

func (m *mockRouter) SendUpdate(to, dest state.NodeId, rd state.Metric) {
	m.actions = append(m.actions, event("UPDATE", to, dest, rd))
}

func (m *mockRouter) SendQuery(to, dest state.NodeId, originatorFD state.Metric) {
	m.actions = append(m.actions, event("QUERY", to, dest, originatorFD))
}

func (m *mockRouter) SendReply(to, dest state.NodeId, ad state.Metric) {
	m.actions = append(m.actions, event("REPLY", to, dest, ad))
}

func (m *mockRouter) Log(event RouterEvent, desc string, args ...any) {
	// logs are not asserted on in these tests
}

func (m *mockRouter) drain() harnessEvents {
	out := m.actions
	m.actions = nil
	return out
}

// linkNeighbors sets a finite link cost to each of ids, as if they had
// all been configured via ConfigureLink.
func linkNeighbors(s *state.RouterState, costs map[state.NodeId]state.Metric) {
	for id, cost := range costs {
		s.LinkCost[id] = cost
	}
}
