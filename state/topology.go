package state

// TopologyTable holds, per destination, the most recent distance each
// neighbor has advertised toward it. It is a pure function of the most
// recent advertisement per (dest, neighbor) pair — no ordering is
// observable.
type TopologyTable struct {
	table map[NodeId]map[NodeId]Metric
}

// NewTopologyTable returns an empty table.
func NewTopologyTable() *TopologyTable {
	return &TopologyTable{table: make(map[NodeId]map[NodeId]Metric)}
}

// Set records that neighbor most recently advertised metric as its
// distance to dest.
func (t *TopologyTable) Set(dest, neighbor NodeId, metric Metric) {
	row, ok := t.table[dest]
	if !ok {
		row = make(map[NodeId]Metric)
		t.table[dest] = row
	}
	row[neighbor] = metric
}

// Get returns the metric neighbor most recently advertised for dest, or
// INF if no advertisement has ever been recorded for that pair.
func (t *TopologyTable) Get(dest, neighbor NodeId) Metric {
	row, ok := t.table[dest]
	if !ok {
		return INF
	}
	m, ok := row[neighbor]
	if !ok {
		return INF
	}
	return m
}

// ForgetNeighbor removes neighbor's entry across every destination,
// preserving the invariant that a neighbor with an INF link cost has no
// topology table entries.
func (t *TopologyTable) ForgetNeighbor(neighbor NodeId) {
	for dest, row := range t.table {
		delete(row, neighbor)
		if len(row) == 0 {
			delete(t.table, dest)
		}
	}
}

// Destinations returns every destination with at least one recorded
// advertisement.
func (t *TopologyTable) Destinations() []NodeId {
	dests := make([]NodeId, 0, len(t.table))
	for dest := range t.table {
		dests = append(dests, dest)
	}
	return dests
}

// Neighbors returns the set of neighbors with a recorded advertisement
// for dest, in no particular order.
func (t *TopologyTable) Neighbors(dest NodeId) []NodeId {
	row, ok := t.table[dest]
	if !ok {
		return nil
	}
	neighs := make([]NodeId, 0, len(row))
	for n := range row {
		neighs = append(neighs, n)
	}
	return neighs
}
