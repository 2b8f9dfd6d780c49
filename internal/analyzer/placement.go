package analyzer

import (
	"sort"

	"netgraph/internal/demand"
	"netgraph/internal/kernel"
	"netgraph/internal/network"
)

// PlacementAnalyzer attempts to place each declared demand's traffic on the
// view's graph, higher priority first, input order within a priority.
// Demands share the view's capacity: an earlier placement consumes edges
// that a later, lower-priority demand would otherwise have used.
type PlacementAnalyzer struct {
	Demands            []demand.TrafficDemand
	IncludeFlowDetails bool
}

type orderedSubDemand struct {
	sub   demand.SubDemand
	order int
}

func (a *PlacementAnalyzer) Run(v *network.View) ([]FlowResult, error) {
	var all []orderedSubDemand
	for _, d := range a.Demands {
		subs, err := demand.Expand(v, d)
		if err != nil {
			return nil, err
		}
		for _, s := range subs {
			all = append(all, orderedSubDemand{sub: s, order: len(all)})
		}
	}
	sort.SliceStable(all, func(i, j int) bool { return all[i].sub.Priority > all[j].sub.Priority })

	g := v.ToStrictMultiDigraph()
	out := make([]FlowResult, 0, len(all))
	for _, it := range all {
		sub := it.sub
		srcGroups, err := v.SelectNodeGroupsByPath(sub.SourcePath)
		if err != nil {
			return nil, err
		}
		sinkGroups, err := v.SelectNodeGroupsByPath(sub.SinkPath)
		if err != nil {
			return nil, err
		}
		sources := groupNodeIDs(srcGroups)
		sinks := groupNodeIDs(sinkGroups)

		res := kernel.MaxFlowCapped(g, sources, sinks, sub.Demand, true)
		consumeCapacity(g, res.Stats.EdgeFlow)

		ratio := 1.0
		if sub.Demand > 0 {
			ratio = clamp01(res.Value / sub.Demand)
		}

		rec := FlowResult{
			Src:      sub.SourceLabel,
			Dst:      sub.SinkLabel,
			Metric:   MetricPlacementRatio,
			Value:    ratio,
			Priority: intPtr(sub.Priority),
		}
		if a.IncludeFlowDetails {
			rec.Stats = &FlowStats{
				CostDistribution: res.Stats.CostDistribution,
				Edges:            usedEdges(res.Stats),
				EdgesKind:        "used",
			}
		}
		out = append(out, rec)
	}
	return out, nil
}

func groupNodeIDs(groups []network.NodeGroup) []kernel.NodeID {
	var out []kernel.NodeID
	for _, g := range groups {
		for _, n := range g.Nodes {
			out = append(out, kernel.NodeID(n.Name))
		}
	}
	return out
}

// consumeCapacity reduces each used edge's remaining capacity in place, so
// the next demand placed against g sees only what is left.
func consumeCapacity(g *kernel.Graph, edgeFlow map[kernel.EdgeID]float64) {
	for id, flow := range edgeFlow {
		e, ok := g.Edge(id)
		if !ok {
			continue
		}
		e.Capacity -= flow
		if e.Capacity < 0 {
			e.Capacity = 0
		}
	}
}
