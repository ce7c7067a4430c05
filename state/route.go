package state

// RouteEntry is the per-destination state of a DUAL route: the
// successor choice, the feasible/reported distances, the active flag,
// and the set of neighbors a diffusing computation is still waiting on.
// It generalizes Babel's (seqno, metric) feasibility pair to DUAL's
// feasible-distance bound.
type RouteEntry struct {
	Destination NodeId

	// Successor is the current next hop, or "" when unreachable or active.
	Successor    NodeId
	HasSuccessor bool

	// FeasibleDistance is the lowest RD ever held for this destination
	// during the current passive epoch.
	FeasibleDistance Metric
	// ReportedDistance is the total cost to Destination via Successor.
	ReportedDistance Metric

	Active bool
	// OutstandingReplies is non-empty iff Active is true.
	OutstandingReplies map[NodeId]struct{}

	// PriorSuccessor remembers the successor that was in place right
	// before this entry last transitioned to active, so a Query handler
	// can tell whether the querying neighbor had been serving as the
	// successor. It carries no algorithmic weight.
	PriorSuccessor    NodeId
	HadPriorSuccessor bool

	// PendingQueriers holds neighbors whose Query arrived while this
	// entry was already active. They are owed a Reply once the current
	// diffusing computation settles, not a silent drop — otherwise the
	// querier's own computation can never conclude either.
	PendingQueriers map[NodeId]struct{}
}

// NewRouteEntry creates the lazily-initialized state for a
// newly-mentioned destination: unreachable, passive, no successor.
func NewRouteEntry(dest NodeId) *RouteEntry {
	return &RouteEntry{
		Destination:        dest,
		FeasibleDistance:   INF,
		ReportedDistance:   INF,
		OutstandingReplies: make(map[NodeId]struct{}),
		PendingQueriers:    make(map[NodeId]struct{}),
	}
}

// ClearSuccessor marks the entry as having no successor.
func (r *RouteEntry) ClearSuccessor() {
	r.Successor = ""
	r.HasSuccessor = false
}

// SetSuccessor records n as the entry's next hop.
func (r *RouteEntry) SetSuccessor(n NodeId) {
	r.Successor = n
	r.HasSuccessor = true
}

// RouterState is the full per-router state that the DualEngine and
// RouterNode operate on: link costs, the topology table, and the
// per-destination routing table.
type RouterState struct {
	Id NodeId

	// LinkCost maps a configured neighbor to its current link cost.
	// Absence means the neighbor has never been configured; an INF
	// entry means the link is administratively or operationally down
	// but still remembered.
	LinkCost map[NodeId]Metric

	Topology *TopologyTable
	Routes   map[NodeId]*RouteEntry
}

// NewRouterState constructs an empty router with the given identity.
func NewRouterState(id NodeId) *RouterState {
	return &RouterState{
		Id:       id,
		LinkCost: make(map[NodeId]Metric),
		Topology: NewTopologyTable(),
		Routes:   make(map[NodeId]*RouteEntry),
	}
}

// Route returns the RouteEntry for dest, lazily creating it if this is
// the first mention of the destination.
func (s *RouterState) Route(dest NodeId) *RouteEntry {
	r, ok := s.Routes[dest]
	if !ok {
		r = NewRouteEntry(dest)
		s.Routes[dest] = r
	}
	return r
}

// IsNeighbor reports whether n has a finite link cost, i.e. is a current
// direct neighbor.
func (s *RouterState) IsNeighbor(n NodeId) bool {
	cost, ok := s.LinkCost[n]
	return ok && !cost.IsInf()
}

// Known reports whether n has ever been configured, regardless of
// whether the link is currently up.
func (s *RouterState) Known(n NodeId) bool {
	_, ok := s.LinkCost[n]
	return ok
}

// Neighbors returns every configured neighbor, whether the link is
// currently up or down.
func (s *RouterState) Neighbors() []NodeId {
	neighs := make([]NodeId, 0, len(s.LinkCost))
	for n := range s.LinkCost {
		neighs = append(neighs, n)
	}
	return neighs
}

// KnownDestinations returns the union of destinations known from the
// topology table and the routing table: the stable iteration set a
// link-change recomputation needs so a destination known only via one
// table is never skipped.
func (s *RouterState) KnownDestinations() []NodeId {
	seen := make(map[NodeId]struct{})
	for _, d := range s.Topology.Destinations() {
		seen[d] = struct{}{}
	}
	for d := range s.Routes {
		seen[d] = struct{}{}
	}
	dests := make([]NodeId, 0, len(seen))
	for d := range seen {
		dests = append(dests, d)
	}
	return dests
}
