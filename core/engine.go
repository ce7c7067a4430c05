package core

import (
	"slices"

	"github.com/arvonet/dualroute/state"
)

// candidate is a potential successor and the total cost through it.
type candidate struct {
	neighbor state.NodeId
	total    state.Metric
	ok       bool
}

// bestCandidate enumerates every neighbor with a finite link cost and a
// finite advertisement for dest.
// Ties are broken by the lexicographically smallest neighbor id, which
// is what makes route selection deterministic and test-reproducible.
func bestCandidate(s *state.RouterState, dest state.NodeId) candidate {
	if dest == s.Id {
		// Self-destination short-circuit.
		return candidate{neighbor: s.Id, total: 0, ok: true}
	}

	var best candidate
	neighbors := s.Neighbors()
	slices.Sort(neighbors)
	for _, n := range neighbors {
		if n == s.Id {
			continue // excluded unless dest == self, handled above
		}
		linkCost, ok := s.LinkCost[n]
		if !ok || linkCost.IsInf() {
			continue
		}
		adv := s.Topology.Get(dest, n)
		if adv.IsInf() {
			continue
		}
		total := linkCost.Add(adv)
		if !best.ok || total.Less(best.total) {
			best = candidate{neighbor: n, total: total, ok: true}
		}
		// neighbors is sorted ascending, so the first minimal total seen
		// already carries the lexicographically smallest id; a later
		// neighbor can only replace it by being strictly better.
	}
	return best
}

// advertisedDistance returns the AD the candidate itself reports for
// dest, 0 when the candidate is self advertising itself.
func advertisedDistance(s *state.RouterState, dest state.NodeId, best candidate) state.Metric {
	if best.neighbor == s.Id && dest == s.Id {
		return 0
	}
	return s.Topology.Get(dest, best.neighbor)
}

// feasible implements the Feasibility Condition: any of the three
// clauses makes best a safe successor to adopt without a diffusing
// computation. Guards on a non-empty (ok) candidate: an empty candidate
// can never be feasible.
func feasible(route *state.RouteEntry, best candidate, ad state.Metric) bool {
	if !best.ok {
		return false
	}
	if ad.Less(route.FeasibleDistance) {
		return true // clause 1: classical FC
	}
	if route.HasSuccessor && best.neighbor == route.Successor && best.total.Less(route.ReportedDistance) {
		return true // clause 2: same successor, strictly improving
	}
	if !route.HasSuccessor && !best.total.IsInf() {
		return true // clause 3: bootstrap
	}
	return false
}

// Recompute is the DualEngine's single pure entry point for destination
// dest. It consults LinkCost and the TopologyTable, reads
// the current RouteEntry, and either returns to passive with a
// (possibly new) successor, or transitions to active and emits Queries.
func Recompute(s *state.RouterState, r Router, dest state.NodeId) {
	if dest == s.Id {
		// The self route is owned entirely by ensureSelfRoute: it is
		// always passive with successor=self, RD=FD=0, and recomputing it
		// here would spuriously flip it active (best.total==0 never beats
		// route.FeasibleDistance==0 under any clause) and send Queries to
		// every neighbor for a destination that's never actually down.
		return
	}

	route := s.Route(dest)

	oldRD := route.ReportedDistance
	oldHasSuccessor := route.HasSuccessor
	oldSuccessor := route.Successor

	best := bestCandidate(s, dest)
	ad := advertisedDistance(s, dest, best)

	if route.Active {
		if len(route.OutstandingReplies) > 0 {
			return // still waiting; only a draining OnReply may proceed
		}
		// All replies are in. goActiveOrUnreachable already cleared the
		// successor when this diffusing computation started, so clause 3
		// admits any remaining candidate as feasible; if none exists the
		// destination has genuinely become unreachable and must be
		// finalized as such rather than left active forever.
		if feasible(route, best, ad) {
			goPassive(s, r, route, best, oldRD, oldHasSuccessor, oldSuccessor)
			return
		}
		goUnreachable(s, r, route, oldRD, oldHasSuccessor)
		return
	}

	if feasible(route, best, ad) {
		goPassive(s, r, route, best, oldRD, oldHasSuccessor, oldSuccessor)
		return
	}

	goActiveOrUnreachable(s, r, route, oldRD, oldHasSuccessor, oldSuccessor, "")
}

// RecomputeExcluding behaves like Recompute for a route that is not
// already active, but never sends a Query back to exclude if a diffusing
// computation turns out to be necessary. OnQuery uses this so a node
// never re-queries the neighbor whose own Query triggered the
// computation — the split-horizon principle applied to the diffusing
// phase itself, without which two neighbors with no other path can query
// each other forever and never conclude.
func RecomputeExcluding(s *state.RouterState, r Router, dest state.NodeId, exclude state.NodeId) {
	if dest == s.Id {
		return // see Recompute: the self route is owned by ensureSelfRoute
	}

	route := s.Route(dest)
	if route.Active {
		return // already diffusing; the caller defers separately
	}

	oldRD := route.ReportedDistance
	oldHasSuccessor := route.HasSuccessor
	oldSuccessor := route.Successor

	best := bestCandidate(s, dest)
	ad := advertisedDistance(s, dest, best)

	if feasible(route, best, ad) {
		goPassive(s, r, route, best, oldRD, oldHasSuccessor, oldSuccessor)
		return
	}

	goActiveOrUnreachable(s, r, route, oldRD, oldHasSuccessor, oldSuccessor, exclude)
}

func goPassive(s *state.RouterState, r Router, route *state.RouteEntry, best candidate, oldRD state.Metric, oldHasSuccessor bool, oldSuccessor state.NodeId) {
	route.SetSuccessor(best.neighbor)
	route.ReportedDistance = best.total
	if best.total.Less(route.FeasibleDistance) {
		route.FeasibleDistance = best.total
	}
	route.Active = false
	clear(route.OutstandingReplies)

	r.Log(RoutePassive, "passive", "dest", route.Destination, "successor", route.Successor, "rd", route.ReportedDistance, "fd", route.FeasibleDistance)

	if route.ReportedDistance != oldRD || !oldHasSuccessor || oldSuccessor != route.Successor {
		advertise(s, r, route)
	}
	flushPendingQueries(r, route)
}

// flushPendingQueries answers every neighbor whose Query arrived while
// route was active, now that it has settled on route.ReportedDistance.
func flushPendingQueries(r Router, route *state.RouteEntry) {
	for querier := range route.PendingQueriers {
		r.SendReply(querier, route.Destination, route.ReportedDistance)
	}
	clear(route.PendingQueriers)
}

func goActiveOrUnreachable(s *state.RouterState, r Router, route *state.RouteEntry, oldRD state.Metric, oldHasSuccessor bool, oldSuccessor state.NodeId, exclude state.NodeId) {
	route.Active = true
	route.PriorSuccessor = oldSuccessor
	route.HadPriorSuccessor = oldHasSuccessor
	route.ClearSuccessor()
	clear(route.OutstandingReplies)

	queried := false
	neighbors := s.Neighbors()
	slices.Sort(neighbors)
	for _, n := range neighbors {
		if exclude != "" && n == exclude {
			continue
		}
		cost, ok := s.LinkCost[n]
		if !ok || cost.IsInf() {
			continue
		}
		r.SendQuery(n, route.Destination, route.FeasibleDistance)
		route.OutstandingReplies[n] = struct{}{}
		queried = true
	}

	if queried {
		r.Log(RouteActive, "active, querying neighbors", "dest", route.Destination, "fd", route.FeasibleDistance, "outstanding", len(route.OutstandingReplies))
		return
	}

	// No one to query: fall back to passive-but-unreachable.
	goUnreachable(s, r, route, oldRD, oldHasSuccessor)
}

// goUnreachable finalizes route as passive with RD=INF: either no
// neighbor could be queried, or every queried neighbor's reply left no
// feasible candidate at all.
func goUnreachable(s *state.RouterState, r Router, route *state.RouteEntry, oldRD state.Metric, oldHasSuccessor bool) {
	route.Active = false
	route.ReportedDistance = state.INF
	clear(route.OutstandingReplies)

	r.Log(RouteUnreachable, "unreachable", "dest", route.Destination)

	if route.ReportedDistance != oldRD || oldHasSuccessor {
		advertise(s, r, route)
	}
	flushPendingQueries(r, route)
}

// advertise sends Update(self, dest, rd) to every neighbor with a finite
// link cost, except the current successor (split horizon).
// Self-to-self advertisements are suppressed; no poison reverse is sent.
func advertise(s *state.RouterState, r Router, route *state.RouteEntry) {
	if route.Destination == s.Id {
		return
	}
	neighbors := s.Neighbors()
	slices.Sort(neighbors)
	for _, n := range neighbors {
		cost, ok := s.LinkCost[n]
		if !ok || cost.IsInf() {
			continue
		}
		if route.HasSuccessor && n == route.Successor {
			continue // split horizon
		}
		r.SendUpdate(n, route.Destination, route.ReportedDistance)
	}
	r.Log(RouteAdvertised, "advertised", "dest", route.Destination, "rd", route.ReportedDistance)
}
