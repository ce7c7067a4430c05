package core

import (
	"io"
	"log/slog"
	"testing"

	"github.com/arvonet/dualroute/state"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func silentLog() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// newTestBus returns an empty Bus that is closed when the test ends;
// each test below registers and links its own routers.
func newTestBus(t *testing.T) *Bus {
	t.Helper()
	b := NewBus(silentLog())
	t.Cleanup(b.Close)
	return b
}

func requireNoErr(t *testing.T, err error) {
	t.Helper()
	require.NoError(t, err)
}

// TestScenarioLinearConvergence verifies that a chain R1-R2-R3-R4 with
// unit link costs converges so that R1 has a passive route toward every
// router on the chain, each distance matching the chain's hop count.
func TestScenarioLinearConvergence(t *testing.T) {
	b := newTestBus(t)
	for _, id := range []state.NodeId{"R1", "R2", "R3", "R4"} {
		b.Register(id)
	}
	requireNoErr(t, b.ConfigureLink("R1", "R2", 1))
	requireNoErr(t, b.ConfigureLink("R2", "R1", 1))
	requireNoErr(t, b.ConfigureLink("R2", "R3", 1))
	requireNoErr(t, b.ConfigureLink("R3", "R2", 1))
	requireNoErr(t, b.ConfigureLink("R3", "R4", 1))
	requireNoErr(t, b.ConfigureLink("R4", "R3", 1))

	for b.Drain() > 0 {
	}

	tableR1 := b.RoutingTable("R1")
	dist := map[state.NodeId]state.Metric{}
	for _, r := range tableR1 {
		dist[r.Destination] = r.ReportedDistance
	}
	assert.Equal(t, state.Metric(0), dist["R1"])
	assert.Equal(t, state.Metric(1), dist["R2"])
	assert.Equal(t, state.Metric(2), dist["R3"])
	assert.Equal(t, state.Metric(3), dist["R4"])

	for _, r := range b.RoutingTable("R1") {
		assert.False(t, r.Active, "destination %s left active after convergence", r.Destination)
	}
}

// TestScenarioLinkFailureReroutesToAlternatePath verifies that when the
// shortest path fails, the router settles on the longer alternate path.
// C's advertised distance (3) is not below A's feasible distance (2), so
// A reaches it through a diffusing computation.
func TestScenarioLinkFailureReroutesToAlternatePath(t *testing.T) {
	b := newTestBus(t)
	for _, id := range []state.NodeId{"A", "B", "C", "D"} {
		b.Register(id)
	}
	// A-B-D is the short path (cost 2), A-C-D is longer (cost 4).
	requireNoErr(t, b.ConfigureLink("A", "B", 1))
	requireNoErr(t, b.ConfigureLink("B", "A", 1))
	requireNoErr(t, b.ConfigureLink("B", "D", 1))
	requireNoErr(t, b.ConfigureLink("D", "B", 1))
	requireNoErr(t, b.ConfigureLink("A", "C", 1))
	requireNoErr(t, b.ConfigureLink("C", "A", 1))
	requireNoErr(t, b.ConfigureLink("C", "D", 3))
	requireNoErr(t, b.ConfigureLink("D", "C", 3))
	for b.Drain() > 0 {
	}

	routeToD := func() RouteInfo {
		for _, r := range b.RoutingTable("A") {
			if r.Destination == "D" {
				return r
			}
		}
		t.Fatal("no route to D")
		return RouteInfo{}
	}

	before := routeToD()
	assert.Equal(t, state.NodeId("B"), before.Successor)
	assert.Equal(t, state.Metric(2), before.ReportedDistance)

	b.LinkChange("A", "B", state.INF)
	for b.Drain() > 0 {
	}

	after := routeToD()
	assert.Equal(t, state.NodeId("C"), after.Successor)
	assert.Equal(t, state.Metric(4), after.ReportedDistance)
	assert.False(t, after.Active)
}

// TestScenarioUnreachableTerminal verifies that a two-router
// topology whose only link fails leaves the destination unreachable
// (RD=INF) rather than stuck active forever.
func TestScenarioUnreachableTerminal(t *testing.T) {
	b := newTestBus(t)
	b.Register("A")
	b.Register("B")
	requireNoErr(t, b.ConfigureLink("A", "B", 1))
	requireNoErr(t, b.ConfigureLink("B", "A", 1))
	for b.Drain() > 0 {
	}

	b.LinkChange("A", "B", state.INF)
	b.LinkChange("B", "A", state.INF)
	for b.Drain() > 0 {
	}

	for _, r := range b.RoutingTable("A") {
		if r.Destination == "B" {
			assert.True(t, r.ReportedDistance.IsInf())
			assert.False(t, r.Active)
			return
		}
	}
	t.Fatal("no route entry for B")
}

// TestScenarioSymmetricQueryForPhantomDestination verifies that when R1
// previously learned a phantom destination X from R2; R2 then
// withdraws it, R1 goes active and queries R2, R2 has no other source
// for X and replies INF, and R1 settles to RD(X)=INF passive.
func TestScenarioSymmetricQueryForPhantomDestination(t *testing.T) {
	b := newTestBus(t)
	b.Register("R1")
	b.Register("R2")
	requireNoErr(t, b.ConfigureLink("R1", "R2", 1))
	requireNoErr(t, b.ConfigureLink("R2", "R1", 1))
	for b.Drain() > 0 {
	}

	// R2 previously advertised X at distance 5 (phantom: nothing else in
	// this topology actually originates X).
	b.dispatchSync(func() {
		b.routers["R1"].OnUpdate("R2", "X", 5)
	})
	for b.Drain() > 0 {
	}
	r1X := func() RouteInfo {
		for _, r := range b.RoutingTable("R1") {
			if r.Destination == "X" {
				return r
			}
		}
		t.Fatal("no route entry for X on R1")
		return RouteInfo{}
	}
	require.True(t, r1X().HasSuccessor)
	require.Equal(t, state.NodeId("R2"), r1X().Successor)

	// R2 withdraws X.
	b.dispatchSync(func() {
		b.routers["R1"].OnUpdate("R2", "X", state.INF)
	})
	for b.Drain() > 0 {
	}

	final := r1X()
	assert.True(t, final.ReportedDistance.IsInf())
	assert.False(t, final.Active)
	assert.False(t, final.HasSuccessor)
}

// TestScenarioTieBreakIsDeterministic verifies that two equal-
// cost neighbors advertising the same destination must always resolve
// to the lexicographically smaller one.
func TestScenarioTieBreakIsDeterministic(t *testing.T) {
	b := newTestBus(t)
	for _, id := range []state.NodeId{"R1", "RX", "RY", "D"} {
		b.Register(id)
	}
	requireNoErr(t, b.ConfigureLink("R1", "RX", 1))
	requireNoErr(t, b.ConfigureLink("RX", "R1", 1))
	requireNoErr(t, b.ConfigureLink("R1", "RY", 1))
	requireNoErr(t, b.ConfigureLink("RY", "R1", 1))
	requireNoErr(t, b.ConfigureLink("RX", "D", 1))
	requireNoErr(t, b.ConfigureLink("D", "RX", 1))
	requireNoErr(t, b.ConfigureLink("RY", "D", 1))
	requireNoErr(t, b.ConfigureLink("D", "RY", 1))
	for b.Drain() > 0 {
	}

	for _, r := range b.RoutingTable("R1") {
		if r.Destination == "D" {
			assert.Equal(t, state.NodeId("RX"), r.Successor)
			return
		}
	}
	t.Fatal("no route entry for D")
}

func TestBusRejectsLinkToUnregisteredNeighbor(t *testing.T) {
	b := newTestBus(t)
	b.Register("A")
	err := b.ConfigureLink("A", "Ghost", 1)
	assert.ErrorIs(t, err, state.ErrUnknownNeighbor)
}

func TestBusStepDeliversOneMessageAtATime(t *testing.T) {
	b := newTestBus(t)
	b.Register("A")
	b.Register("B")
	requireNoErr(t, b.ConfigureLink("A", "B", 1))
	requireNoErr(t, b.ConfigureLink("B", "A", 1))

	assert.True(t, b.QueueLen() > 0)
	delivered := 0
	for b.Step() {
		delivered++
		if delivered > 1000 {
			t.Fatal("did not converge")
		}
	}
	assert.Equal(t, 0, b.QueueLen())
}

func TestBusClosesDispatcherGoroutineCleanly(t *testing.T) {
	defer goleak.VerifyNone(t)
	b := NewBus(silentLog())
	b.Register("A")
	b.Close()
}
