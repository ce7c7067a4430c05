package core

import (
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/arvonet/dualroute/state"
)

// RouterNode owns one router's link costs, topology table and routing
// table, and dispatches inbound events to the DualEngine, emitting
// outbound messages through a Bus, generalized from Babel's
// seqno/feasibility-distance bookkeeping to DUAL's successor/FD/RD/active
// state machine.
type RouterNode struct {
	State  *state.RouterState
	Bus    *Bus
	logger *slog.Logger
}

// NewRouterNode constructs a node with the given identity, registered
// against bus. The node always has a self-route with RD=FD=0 once
// OnLinkChange or ConfigureLink establishes it; construction alone does
// not advertise anything; the self-route is ensured lazily.
func NewRouterNode(id state.NodeId, bus *Bus, log *slog.Logger) *RouterNode {
	return &RouterNode{
		State:  state.NewRouterState(id),
		Bus:    bus,
		logger: log.With("router", string(id)),
	}
}

func (n *RouterNode) SendUpdate(to, dest state.NodeId, rd state.Metric) {
	n.Bus.enqueue(state.Update(n.State.Id, to, dest, rd))
}

func (n *RouterNode) SendQuery(to, dest state.NodeId, originatorFD state.Metric) {
	n.Bus.enqueue(state.Query(n.State.Id, to, dest, originatorFD))
}

func (n *RouterNode) SendReply(to, dest state.NodeId, ad state.Metric) {
	n.Bus.enqueue(state.Reply(n.State.Id, to, dest, ad))
}

// Log implements the Router interface's side-effect logging sink.
func (n *RouterNode) Log(event RouterEvent, desc string, args ...any) {
	n.logger.Debug(event.String()+" "+desc, args...)
}

// ConfigureLink records neighbor and cost. The MessageBus must already
// know about neighbor; re-configuring an existing neighbor
// with a new cost is equivalent to OnLinkChange.
func (n *RouterNode) ConfigureLink(neighbor state.NodeId, cost state.Metric) error {
	if !n.Bus.knowsRouter(neighbor) {
		n.logger.Warn("configure_link to unknown router", "neighbor", neighbor)
		return state.ErrUnknownNeighbor
	}
	n.OnLinkChange(neighbor, cost)
	return nil
}

// OnLinkChange sets the link cost to neighbor; if the new cost is INF,
// purges neighbor from the topology table; then recomputes every
// destination currently known, and ensures the self-route. A neighbor
// whose link has just come up is sent the self-route advertisement even
// when the self-route itself is unchanged.
func (n *RouterNode) OnLinkChange(neighbor state.NodeId, newCost state.Metric) {
	s := n.State
	wasUp := s.IsNeighbor(neighbor)
	s.LinkCost[neighbor] = newCost

	if newCost.IsInf() {
		s.Topology.ForgetNeighbor(neighbor)
		n.resolveOutstandingFrom(neighbor)
	}

	for _, dest := range s.KnownDestinations() {
		Recompute(s, n, dest)
	}

	if !n.ensureSelfRoute() && !wasUp && !newCost.IsInf() {
		n.SendUpdate(neighbor, s.Id, 0)
	}
}

// ensureSelfRoute inserts/repairs the self route with RD=FD=0,
// successor=self, and advertises it if this is new or changed. It
// reports whether it advertised.
func (n *RouterNode) ensureSelfRoute() bool {
	s := n.State
	self := s.Route(s.Id)
	changed := !self.HasSuccessor || self.Successor != s.Id || self.ReportedDistance != 0
	if !changed {
		return false
	}
	self.SetSuccessor(s.Id)
	self.ReportedDistance = 0
	self.FeasibleDistance = 0
	self.Active = false
	clear(self.OutstandingReplies)

	// Advertise directly: advertise() in engine.go suppresses
	// self-destination updates (it exists to stop a route advertising
	// itself back to its successor), but here we genuinely need
	// neighbors to learn "I am reachable at cost 0 via me".
	for _, neigh := range s.Neighbors() {
		cost, ok := s.LinkCost[neigh]
		if !ok || cost.IsInf() {
			continue
		}
		n.SendUpdate(neigh, s.Id, 0)
	}
	return true
}

// resolveOutstandingFrom synthesizes a Reply(INF) for every active route
// that is still waiting on neighbor, so a downed link can never leave a
// diffusing computation stuck waiting forever.
func (n *RouterNode) resolveOutstandingFrom(neighbor state.NodeId) {
	for _, route := range n.State.Routes {
		if !route.Active {
			continue
		}
		if _, waiting := route.OutstandingReplies[neighbor]; waiting {
			n.OnReply(neighbor, route.Destination, state.INF)
		}
	}
}

// DumpTable renders a deterministic, sorted textual summary of n's
// routing table. Truly-unreachable, never-active entries are skipped.
func (n *RouterNode) DumpTable() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "--- Routing Table Summary for %s ---\n", n.State.Id)

	dests := make([]state.NodeId, 0, len(n.State.Routes))
	for d := range n.State.Routes {
		dests = append(dests, d)
	}
	sort.Slice(dests, func(i, j int) bool { return dests[i] < dests[j] })

	for _, dest := range dests {
		r := n.State.Routes[dest]
		if r.ReportedDistance.IsInf() && !r.HasSuccessor && !r.Active {
			continue
		}
		succ := "None"
		if r.HasSuccessor {
			succ = string(r.Successor)
		}
		stateLabel := "Passive"
		if r.Active {
			stateLabel = fmt.Sprintf("ACTIVE (wait:%d)", len(r.OutstandingReplies))
		}
		fmt.Fprintf(&sb, "Dest: %s | Succ: %s | RD: %s | FD: %s | State: %s\n",
			dest, succ, r.ReportedDistance, r.FeasibleDistance, stateLabel)
	}
	sb.WriteString("------------------------------------")
	return sb.String()
}

// OnUpdate handles an inbound Update(from, dest, ad). Rejected if from
// is not a current direct neighbor.
func (n *RouterNode) OnUpdate(from, dest state.NodeId, ad state.Metric) {
	s := n.State
	if !s.IsNeighbor(from) {
		n.logger.Warn(DroppedInvalidSender.String(), "from", from, "dest", dest, "err", state.ErrInvalidSender)
		return
	}
	s.Topology.Set(dest, from, ad)
	Recompute(s, n, dest)
}

// OnQuery handles an inbound Query(from, dest, originatorFD).
func (n *RouterNode) OnQuery(from, dest state.NodeId, originatorFD state.Metric) {
	s := n.State
	if dest == s.Id {
		n.SendReply(from, dest, 0)
		return
	}

	route := s.Route(dest)
	if route.Active {
		if route.HadPriorSuccessor && route.PriorSuccessor == from {
			n.logger.Debug(SuccessorInvalidatedAsReplySource.String(), "dest", dest, "from", from)
		}
		// Defer the reply until this node's own diffusing computation
		// settles; a silent drop here would leave from's
		// computation waiting on a reply that never arrives.
		route.PendingQueriers[from] = struct{}{}
		return
	}

	RecomputeExcluding(s, n, dest, from)
	if route.Active {
		// The query itself triggered a fresh diffusing computation; defer
		// the reply until it settles rather than guessing an answer now.
		route.PendingQueriers[from] = struct{}{}
		return
	}
	rd := state.INF
	if route.HasSuccessor {
		rd = route.ReportedDistance
	}
	n.SendReply(from, dest, rd)
}

// OnReply handles an inbound Reply(from, dest, ad).
func (n *RouterNode) OnReply(from, dest state.NodeId, ad state.Metric) {
	s := n.State
	route := s.Route(dest)
	if !route.Active {
		n.logger.Debug(DroppedStaleReply.String(), "from", from, "dest", dest, "err", state.ErrStaleReply)
		return
	}

	s.Topology.Set(dest, from, ad)
	delete(route.OutstandingReplies, from)

	if len(route.OutstandingReplies) == 0 {
		Recompute(s, n, dest)
	}
}
