package kernel

import "container/heap"

// ResidualFunc reports the residual (usable) capacity of an edge. SPF skips
// any edge whose residual is <= Epsilon. Passing nil makes SPF use the
// edge's nominal Capacity, i.e. a plain unfiltered shortest-path run.
type ResidualFunc func(e *Edge) float64

// SPFResult is the output of a single-source shortest-path run with
// equal-cost-multipath (ECMP) tracking.
type SPFResult struct {
	// Dist maps each visited node to its minimum cost from the source.
	// Nodes never registered via AddNode/AddEdge are simply absent.
	Dist map[NodeID]float64
	// Preds maps v to, for every predecessor p on some shortest path to v,
	// the list of parallel edges p->v that each individually achieve
	// dist(p)+cost(e) == dist(v). The source itself has no entry.
	Preds map[NodeID]map[NodeID][]EdgeID
}

type spfItem struct {
	node NodeID
	dist float64
}

type spfQueue []spfItem

func (q spfQueue) Len() int { return len(q) }
func (q spfQueue) Less(i, j int) bool {
	if q[i].dist != q[j].dist {
		return q[i].dist < q[j].dist
	}
	return q[i].node < q[j].node
}
func (q spfQueue) Swap(i, j int)      { q[i], q[j] = q[j], q[i] }
func (q *spfQueue) Push(x any)        { *q = append(*q, x.(spfItem)) }
func (q *spfQueue) Pop() any {
	old := *q
	n := len(old)
	item := old[n-1]
	*q = old[:n-1]
	return item
}

// SPF runs Dijkstra from source over g, recording every equally-shortest
// predecessor edge for ECMP-aware callers (max-flow, path enumeration).
// Ties are broken deterministically by (dist, node-id) in the heap, and
// edges out of a node are relaxed in the order they were added to g.
func SPF(g *Graph, source NodeID, residual ResidualFunc) *SPFResult {
	res := &SPFResult{
		Dist:  make(map[NodeID]float64, g.NodeCount()),
		Preds: make(map[NodeID]map[NodeID][]EdgeID),
	}
	for _, n := range g.Nodes() {
		res.Dist[n] = Infinity
	}
	if !g.HasNode(source) {
		return res
	}
	res.Dist[source] = 0

	pq := make(spfQueue, 0, g.NodeCount())
	heap.Push(&pq, spfItem{node: source, dist: 0})

	for pq.Len() > 0 {
		cur := heap.Pop(&pq).(spfItem)
		u := cur.node
		if cur.dist > res.Dist[u]+Epsilon {
			continue // stale entry, a better path to u was already found
		}

		for _, e := range g.Out(u) {
			cap := e.Capacity
			if residual != nil {
				cap = residual(e)
			}
			if cap <= Epsilon {
				continue
			}
			v := e.To
			nd := res.Dist[u] + e.Cost

			switch {
			case nd < res.Dist[v]-Epsilon:
				res.Dist[v] = nd
				res.Preds[v] = map[NodeID][]EdgeID{u: {e.ID}}
				heap.Push(&pq, spfItem{node: v, dist: nd})
			case nd <= res.Dist[v]+Epsilon:
				if res.Preds[v] == nil {
					res.Preds[v] = make(map[NodeID][]EdgeID)
				}
				res.Preds[v][u] = append(res.Preds[v][u], e.ID)
			}
		}
	}
	return res
}
