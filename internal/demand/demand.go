// Package demand expands a declared TrafficDemand against a network view
// into the concrete source/sink node sets the placement analyzer measures
// against, mirroring the group-resolution the capacity analyzer already
// performs via network.View.MaxFlow.
package demand

import (
	"regexp"
	"sort"

	"netgraph/internal/network"
	"netgraph/pkg/apperror"
)

// Mode selects how a demand's matched source/sink groups expand into
// concrete sub-demands.
type Mode string

const (
	// ModeCombine treats every matched source node as one aggregate and
	// every matched sink node as one aggregate: a single sub-demand.
	ModeCombine Mode = "combine"
	// ModePairwise produces one sub-demand per (source_group, sink_group)
	// combination, each group being a regex capture-group bucket.
	ModePairwise Mode = "pairwise"
	// ModeFullMesh produces one sub-demand per individual (source_node,
	// sink_node) pair, ignoring capture-group boundaries.
	ModeFullMesh Mode = "full_mesh"
)

// TrafficDemand is a declared traffic requirement between two node
// selections, expanded per Mode before placement.
type TrafficDemand struct {
	SourcePath string
	SinkPath   string
	Priority   int
	Demand     float64
	Mode       Mode
	Attrs      map[string]any
}

// SubDemand is one concrete source->sink placement unit produced by
// expanding a TrafficDemand.
type SubDemand struct {
	SourceLabel string
	SinkLabel   string
	Priority    int
	Demand      float64
	SourcePath  string // a regex matching exactly this sub-demand's source node(s)
	SinkPath    string
}

// Expand resolves d's source/sink patterns against v and returns the
// concrete sub-demands to place, in a stable order: by Mode, group
// discovery order for combine/pairwise, and source-then-sink node order for
// full_mesh.
func Expand(v *network.View, d TrafficDemand) ([]SubDemand, error) {
	srcGroups, err := v.SelectNodeGroupsByPath(d.SourcePath)
	if err != nil {
		return nil, err
	}
	sinkGroups, err := v.SelectNodeGroupsByPath(d.SinkPath)
	if err != nil {
		return nil, err
	}
	if len(srcGroups) == 0 || len(sinkGroups) == 0 {
		return nil, apperror.New(apperror.CodeUnresolvedGroup, "demand source or sink pattern matched no nodes").
			WithDetails("source_path", d.SourcePath).WithDetails("sink_path", d.SinkPath)
	}

	switch d.Mode {
	case ModeCombine, "":
		return []SubDemand{{
			SourceLabel: joinLabels(srcGroups),
			SinkLabel:   joinLabels(sinkGroups),
			Priority:    d.Priority,
			Demand:      d.Demand,
			SourcePath:  exactPattern(namesOf(flattenGroups(srcGroups))),
			SinkPath:    exactPattern(namesOf(flattenGroups(sinkGroups))),
		}}, nil

	case ModePairwise:
		out := make([]SubDemand, 0, len(srcGroups)*len(sinkGroups))
		for _, sg := range srcGroups {
			for _, tg := range sinkGroups {
				out = append(out, SubDemand{
					SourceLabel: sg.Label,
					SinkLabel:   tg.Label,
					Priority:    d.Priority,
					Demand:      d.Demand,
					SourcePath:  exactPattern(namesOf(sg.Nodes)),
					SinkPath:    exactPattern(namesOf(tg.Nodes)),
				})
			}
		}
		return out, nil

	case ModeFullMesh:
		srcNodes := namesOf(flattenGroups(srcGroups))
		sinkNodes := namesOf(flattenGroups(sinkGroups))
		sort.Strings(srcNodes)
		sort.Strings(sinkNodes)
		out := make([]SubDemand, 0, len(srcNodes)*len(sinkNodes))
		for _, s := range srcNodes {
			for _, t := range sinkNodes {
				out = append(out, SubDemand{
					SourceLabel: s,
					SinkLabel:   t,
					Priority:    d.Priority,
					Demand:      d.Demand,
					SourcePath:  exactPattern([]string{s}),
					SinkPath:    exactPattern([]string{t}),
				})
			}
		}
		return out, nil

	default:
		return nil, apperror.New(apperror.CodeInvalidArgument, "unknown demand mode").WithDetails("mode", string(d.Mode))
	}
}

func flattenGroups(groups []network.NodeGroup) []*network.Node {
	var out []*network.Node
	for _, g := range groups {
		out = append(out, g.Nodes...)
	}
	return out
}

func namesOf(nodes []*network.Node) []string {
	out := make([]string, len(nodes))
	for i, n := range nodes {
		out[i] = n.Name
	}
	return out
}

func joinLabels(groups []network.NodeGroup) string {
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

// exactPattern builds a regex matching exactly the given node names, for
// feeding back into the group-selection based flow/placement helpers.
func exactPattern(names []string) string {
	if len(names) == 0 {
		return "$^" // matches nothing
	}
	pattern := "^("
	for i, n := range names {
		if i > 0 {
			pattern += "|"
		}
		pattern += regexp.QuoteMeta(n)
	}
	pattern += ")$"
	return pattern
}
