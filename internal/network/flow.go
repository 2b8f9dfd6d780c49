package network

import (
	"netgraph/internal/kernel"
	"netgraph/pkg/apperror"
)

// FlowMode selects how multiple matched source/sink groups combine for a
// single max-flow call.
type FlowMode string

const (
	// ModeCombine pools every matched source node into one super-source and
	// every matched sink node into one super-sink: a single flow value.
	ModeCombine FlowMode = "combine"
	// ModePairwise computes one flow value per (source_group, sink_group)
	// pair.
	ModePairwise FlowMode = "pairwise"
)

// PairFlow is one (source_label, sink_label) max-flow outcome.
type PairFlow struct {
	SourceLabel string
	SinkLabel   string
	Result      *kernel.MaxFlowResult
}

// MaxFlow selects node groups via srcPattern/sinkPattern on the base
// network, materializes the view into a kernel graph, and runs max-flow per
// mode. Group labels come from the base, so they do not change with what
// the view hides; hidden nodes carry no flow, and a group whose nodes are
// all hidden gives a value of 0. It is an error only when a pattern matches
// no node of the base. combine collapses all matched sources/sinks into one
// super-source/super-sink pair; pairwise runs one max-flow call per
// (source group, sink group) combination.
func (v *View) MaxFlow(srcPattern, sinkPattern string, mode FlowMode, withStats bool) ([]PairFlow, error) {
	srcGroups, err := v.base.SelectNodeGroupsByPath(srcPattern)
	if err != nil {
		return nil, err
	}
	sinkGroups, err := v.base.SelectNodeGroupsByPath(sinkPattern)
	if err != nil {
		return nil, err
	}
	if len(srcGroups) == 0 || len(sinkGroups) == 0 {
		return nil, apperror.New(apperror.CodeUnresolvedGroup, "source or sink pattern matched no nodes").
			WithDetails("src_pattern", srcPattern).WithDetails("sink_pattern", sinkPattern)
	}

	g := v.ToStrictMultiDigraph()
	visible := func(groups ...NodeGroup) []kernel.NodeID {
		var out []kernel.NodeID
		for _, id := range namesOf(flattenGroups(groups)) {
			if v.IsNodeVisible(string(id)) {
				out = append(out, id)
			}
		}
		return out
	}

	switch mode {
	case ModeCombine:
		sources := visible(srcGroups...)
		sinks := visible(sinkGroups...)
		res := kernel.MaxFlow(g, sources, sinks, withStats)
		return []PairFlow{{
			SourceLabel: joinLabels(srcGroups),
			SinkLabel:   joinLabels(sinkGroups),
			Result:      res,
		}}, nil

	case ModePairwise:
		out := make([]PairFlow, 0, len(srcGroups)*len(sinkGroups))
		for _, sg := range srcGroups {
			for _, tg := range sinkGroups {
				res := kernel.MaxFlow(g, visible(sg), visible(tg), withStats)
				out = append(out, PairFlow{SourceLabel: sg.Label, SinkLabel: tg.Label, Result: res})
			}
		}
		return out, nil

	default:
		return nil, apperror.New(apperror.CodeInvalidArgument, "unknown flow mode").WithDetails("mode", string(mode))
	}
}

// PlaceDemand attempts to place up to limit units of flow from the matched
// source nodes to the matched sink nodes, using the same admissible-subgraph
// augmentation as MaxFlow but stopping once limit is reached.
func (v *View) PlaceDemand(srcPattern, sinkPattern string, limit float64, withStats bool) (*kernel.MaxFlowResult, error) {
	srcGroups, err := v.SelectNodeGroupsByPath(srcPattern)
	if err != nil {
		return nil, err
	}
	sinkGroups, err := v.SelectNodeGroupsByPath(sinkPattern)
	if err != nil {
		return nil, err
	}
	if len(srcGroups) == 0 || len(sinkGroups) == 0 {
		return nil, apperror.New(apperror.CodeUnresolvedGroup, "source or sink pattern matched no nodes").
			WithDetails("src_pattern", srcPattern).WithDetails("sink_pattern", sinkPattern)
	}
	g := v.ToStrictMultiDigraph()
	sources := namesOf(flattenGroups(srcGroups))
	sinks := namesOf(flattenGroups(sinkGroups))
	return kernel.MaxFlowCapped(g, sources, sinks, limit, withStats), nil
}

func flattenGroups(groups []NodeGroup) []*Node {
	var out []*Node
	for _, g := range groups {
		out = append(out, g.Nodes...)
	}
	return out
}

func namesOf(nodes []*Node) []kernel.NodeID {
	out := make([]kernel.NodeID, len(nodes))
	for i, n := range nodes {
		out[i] = kernel.NodeID(n.Name)
	}
	return out
}

func joinLabels(groups []NodeGroup) string {
	if len(groups) == 1 {
		return groups[0].Label
	}
	s := ""
	for i, g := range groups {
		if i > 0 {
			s += "|"
		}
		s += g.Label
	}
	return s
}
