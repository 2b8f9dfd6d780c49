package kernel

import (
	"container/heap"
	"math"
	"sort"
)

// reserved edge-id prefix for the synthetic super-source/super-sink edges a
// MaxFlow call introduces; real edge ids (caller-supplied) are assumed not
// to start with a NUL byte. The network layer does not check this.
const virtualPrefix = "\x00"

// FlowStats reports supplementary detail about one MaxFlow computation.
type FlowStats struct {
	// CostDistribution maps a shortest-path cost level (the dist(sink) of
	// one augmentation phase) to the flow volume pushed at that level.
	CostDistribution map[float64]float64
	// MinCutEdges lists the real edges crossing the min cut (source side
	// reachable, sink side not, in the final residual graph).
	MinCutEdges []EdgeID
	// EdgeFlow maps each real edge that carried flow to the amount pushed.
	EdgeFlow map[EdgeID]float64
}

// MaxFlowResult is the outcome of one MaxFlow call.
type MaxFlowResult struct {
	Value float64
	Stats *FlowStats
}

// flowNetwork augments a base Graph with a virtual super-source/super-sink
// pair and tracks flow pushed on every edge (real or virtual) without
// mutating the base graph.
type flowNetwork struct {
	base      *Graph
	sigma, tau NodeID
	extraOut  map[NodeID][]*Edge // sigma's fan-out, and each sink's extra edge to tau
	flow      map[EdgeID]float64
}

func newFlowNetwork(g *Graph, sources, sinks []NodeID) *flowNetwork {
	fn := &flowNetwork{
		base:     g,
		sigma:    NodeID(virtualPrefix + "sigma"),
		tau:      NodeID(virtualPrefix + "tau"),
		extraOut: make(map[NodeID][]*Edge),
		flow:     make(map[EdgeID]float64),
	}
	sigmaOut := make([]*Edge, 0, len(sources))
	for _, s := range sources {
		sigmaOut = append(sigmaOut, &Edge{
			ID: EdgeID(virtualPrefix + "sigma->" + string(s)), From: fn.sigma, To: s,
			Capacity: math.Inf(1), Cost: 0,
		})
	}
	fn.extraOut[fn.sigma] = sigmaOut
	for _, t := range sinks {
		fn.extraOut[t] = append(fn.extraOut[t], &Edge{
			ID: EdgeID(virtualPrefix + string(t) + "->tau"), From: t, To: fn.tau,
			Capacity: math.Inf(1), Cost: 0,
		})
	}
	return fn
}

func (fn *flowNetwork) Nodes() []NodeID {
	return append(append([]NodeID{}, fn.base.Nodes()...), fn.sigma, fn.tau)
}

func (fn *flowNetwork) Out(u NodeID) []*Edge {
	if u == fn.sigma {
		return fn.extraOut[fn.sigma]
	}
	base := fn.base.Out(u)
	extra := fn.extraOut[u]
	if len(extra) == 0 {
		return base
	}
	combined := make([]*Edge, 0, len(base)+len(extra))
	combined = append(combined, base...)
	combined = append(combined, extra...)
	return combined
}

func (fn *flowNetwork) residual(e *Edge) float64 {
	return e.Capacity - fn.flow[e.ID]
}

// spf is SPF generalized to a flowNetwork's combined adjacency,
// mirroring kernel.SPF but over the augmented node/edge set.
func (fn *flowNetwork) spf() *SPFResult {
	res := &SPFResult{
		Dist:  make(map[NodeID]float64),
		Preds: make(map[NodeID]map[NodeID][]EdgeID),
	}
	nodes := fn.Nodes()
	for _, n := range nodes {
		res.Dist[n] = Infinity
	}
	res.Dist[fn.sigma] = 0

	pq := make(spfQueue, 0, len(nodes))
	heap.Push(&pq, spfItem{node: fn.sigma, dist: 0})

	for pq.Len() > 0 {
		cur := heap.Pop(&pq).(spfItem)
		u := cur.node
		if cur.dist > res.Dist[u]+Epsilon {
			continue
		}
		for _, e := range fn.Out(u) {
			cap := fn.residual(e)
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

// MaxFlow computes shortest-path-constrained max flow from sources to sinks
// on g. Sources/sinks are connected through a zero-cost, infinite-capacity
// virtual super-source/super-sink pair, so a single call covers both
// "combine" mode (many sources, many sinks) and a direct pairwise call
// (one source, one sink). If the source and sink sets share a node the
// value is 0. withStats requests the FlowStats detail; skip it when only
// the scalar value is needed.
func MaxFlow(g *Graph, sources, sinks []NodeID, withStats bool) *MaxFlowResult {
	return maxFlow(g, sources, sinks, math.Inf(1), withStats)
}

// MaxFlowCapped runs the same SPF-guided augmentation as MaxFlow but stops
// once the accumulated value reaches limit, splitting the final blocking
// phase's push so the total never exceeds it. Used to place a bounded
// traffic demand rather than saturate all available capacity.
func MaxFlowCapped(g *Graph, sources, sinks []NodeID, limit float64, withStats bool) *MaxFlowResult {
	return maxFlow(g, sources, sinks, limit, withStats)
}

func maxFlow(g *Graph, sources, sinks []NodeID, limit float64, withStats bool) *MaxFlowResult {
	fn := newFlowNetwork(g, sources, sinks)

	result := &MaxFlowResult{}
	var costDist map[float64]float64
	if withStats {
		costDist = make(map[float64]float64)
	}

	// A node that is both a source and a sink would give an infinite
	// sigma->n->tau path; overlapping sets push nothing, so (n,n) is 0.
	sinkSet := make(map[NodeID]bool, len(sinks))
	for _, t := range sinks {
		sinkSet[t] = true
	}
	overlap := false
	for _, s := range sources {
		overlap = overlap || sinkSet[s]
	}

	for !overlap && result.Value < limit-Epsilon {
		spf := fn.spf()
		d := spf.Dist[fn.tau]
		if d >= Infinity {
			break
		}
		pushed := fn.blockingFlow(spf, limit-result.Value)
		if pushed <= Epsilon {
			break
		}
		result.Value += pushed
		if withStats {
			costDist[d] += pushed
		}
	}

	if withStats {
		stats := &FlowStats{
			CostDistribution: costDist,
			EdgeFlow:         make(map[EdgeID]float64),
		}
		for id, f := range fn.flow {
			if len(string(id)) > 0 && id[0] == 0 {
				continue // synthetic sigma/tau edge, not a real link
			}
			if f > Epsilon {
				stats.EdgeFlow[id] = f
			}
		}
		stats.MinCutEdges = fn.minCut()
		result.Stats = stats
	}
	return result
}

// blockingFlow pushes the maximum flow placeable through the admissible
// subgraph at cost level d (edges (u,v) with dist(u)+cost(e)==dist(v) and
// positive residual) via repeated DFS, each call finding one sigma->tau path
// and pushing its bottleneck, pruning nodes proven to be dead ends. The push
// never exceeds room, so a capped caller's total never overshoots its limit.
func (fn *flowNetwork) blockingFlow(spf *SPFResult, room float64) float64 {
	dead := make(map[NodeID]bool)
	var total float64
	for room-total > Epsilon {
		path := fn.findAdmissiblePath(spf, dead)
		if path == nil {
			break
		}
		bottleneck := room - total
		for _, e := range path {
			if r := fn.residual(e); r < bottleneck {
				bottleneck = r
			}
		}
		if bottleneck <= Epsilon {
			break
		}
		for _, e := range path {
			fn.flow[e.ID] += bottleneck
		}
		total += bottleneck
	}
	return total
}

// findAdmissiblePath runs a DFS from sigma to tau using only admissible
// edges (on a current shortest path, positive residual). Nodes marked dead
// by a prior failed search are skipped without re-exploring them.
func (fn *flowNetwork) findAdmissiblePath(spf *SPFResult, dead map[NodeID]bool) []*Edge {
	var path []*Edge
	visited := make(map[NodeID]bool)

	var dfs func(u NodeID) bool
	dfs = func(u NodeID) bool {
		if u == fn.tau {
			return true
		}
		if visited[u] || dead[u] {
			return false
		}
		visited[u] = true
		for _, e := range fn.Out(u) {
			if fn.residual(e) <= Epsilon {
				continue
			}
			v := e.To
			if math.Abs(spf.Dist[u]+e.Cost-spf.Dist[v]) > Epsilon {
				continue
			}
			if dead[v] {
				continue
			}
			path = append(path, e)
			if dfs(v) {
				return true
			}
			path = path[:len(path)-1]
		}
		dead[u] = true
		return false
	}

	if dfs(fn.sigma) {
		return path
	}
	return nil
}

// minCut returns the real edges crossing the cut between nodes reachable
// from sigma and nodes not reachable, in the final residual graph (plain
// reachability via edges with positive residual, ignoring cost).
func (fn *flowNetwork) minCut() []EdgeID {
	reachable := make(map[NodeID]bool)
	queue := []NodeID{fn.sigma}
	reachable[fn.sigma] = true
	for len(queue) > 0 {
		u := queue[0]
		queue = queue[1:]
		for _, e := range fn.Out(u) {
			if fn.residual(e) <= Epsilon || reachable[e.To] {
				continue
			}
			reachable[e.To] = true
			queue = append(queue, e.To)
		}
	}

	var cut []EdgeID
	for _, u := range fn.base.Nodes() {
		if !reachable[u] {
			continue
		}
		for _, e := range fn.base.Out(u) {
			if !reachable[e.To] {
				cut = append(cut, e.ID)
			}
		}
	}
	sort.Slice(cut, func(i, j int) bool { return cut[i] < cut[j] })
	return cut
}
