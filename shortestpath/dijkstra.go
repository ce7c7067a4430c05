package shortestpath

import (
	"container/heap"
	"math"
)

// Result is the outcome of a single-source Dijkstra run: the minimum
// distance to every vertex (math.Inf(1) if unreachable) and enough parent
// bookkeeping to reconstruct the path to any of them.
type Result struct {
	Source int
	dist   []float64
	parent []int
}

// Distance returns the minimum cost from the source to v, or
// math.Inf(1) if v is unreachable or out of range.
func (r *Result) Distance(v int) float64 {
	if v < 1 || v >= len(r.dist) {
		return math.Inf(1)
	}
	return r.dist[v]
}

// Reachable reports whether v has a finite distance from the source.
func (r *Result) Reachable(v int) bool {
	return v >= 1 && v < len(r.dist) && !math.IsInf(r.dist[v], 1)
}

// Path reconstructs the vertex sequence from the source to v, following
// parent pointers. Returns nil if v is unreachable or out of range.
func (r *Result) Path(v int) []int {
	if !r.Reachable(v) {
		return nil
	}
	var rev []int
	for at := v; at != 0; at = r.parent[at] {
		rev = append(rev, at)
		if at == r.Source {
			break
		}
	}
	path := make([]int, len(rev))
	for i, v := range rev {
		path[len(rev)-1-i] = v
	}
	return path
}

// heapItem is one entry in the min-priority queue: a candidate distance
// to a vertex, possibly stale by the time it is popped.
type heapItem struct {
	vertex int
	dist   float64
}

type priorityQueue []heapItem

func (pq priorityQueue) Len() int            { return len(pq) }
func (pq priorityQueue) Less(i, j int) bool  { return pq[i].dist < pq[j].dist }
func (pq priorityQueue) Swap(i, j int)       { pq[i], pq[j] = pq[j], pq[i] }
func (pq *priorityQueue) Push(x any)         { *pq = append(*pq, x.(heapItem)) }
func (pq *priorityQueue) Pop() any {
	old := *pq
	n := len(old)
	item := old[n-1]
	*pq = old[:n-1]
	return item
}

// Dijkstra computes the minimum-distance tree from source over g using a
// min-priority relaxation, skipping any queue entry that has gone stale
// since a shorter path to the same vertex was already found.
func Dijkstra(g *Graph, source int) *Result {
	dist := make([]float64, g.n+1)
	parent := make([]int, g.n+1)
	for v := 1; v <= g.n; v++ {
		dist[v] = math.Inf(1)
	}
	dist[source] = 0

	pq := &priorityQueue{{vertex: source, dist: 0}}
	heap.Init(pq)

	for pq.Len() > 0 {
		cur := heap.Pop(pq).(heapItem)
		if cur.dist > dist[cur.vertex] {
			continue // stale: a shorter path already relaxed this vertex
		}
		for _, edge := range g.adj[cur.vertex] {
			nd := dist[cur.vertex] + float64(edge.weight)
			if nd < dist[edge.to] {
				dist[edge.to] = nd
				parent[edge.to] = cur.vertex
				heap.Push(pq, heapItem{vertex: edge.to, dist: nd})
			}
		}
	}

	return &Result{Source: source, dist: dist, parent: parent}
}
