// Package analyzer implements the per-iteration functions the engine's
// worker pool runs against a NetworkView: the capacity-envelope analyzer
// (max-flow between matched node groups) and the traffic-matrix placement
// analyzer (demand placement capped by available capacity).
package analyzer

import (
	"sort"

	"netgraph/internal/kernel"
	"netgraph/internal/network"
)

// Metric names a FlowResult's measurement kind.
type Metric string

const (
	MetricCapacity       Metric = "capacity"
	MetricPlacementRatio Metric = "placement_ratio"
)

// FlowResult is one analyzer record for a single iteration.
type FlowResult struct {
	Src      string
	Dst      string
	Metric   Metric
	Value    float64
	Priority *int
	Stats    *FlowStats
}

// FlowStats carries the optional supplementary detail an analyzer may
// attach to a FlowResult, shaped after the kernel's own FlowStats but with
// an explicit edges/edges_kind label for serialization.
type FlowStats struct {
	CostDistribution map[float64]float64
	Edges            []string
	EdgesKind        string // "min_cut" or "used"
}

// Analyzer is the capability the engine dispatches per iteration: run
// against a view with the given parameters and return zero or more
// records.
type Analyzer interface {
	Run(v *network.View) ([]FlowResult, error)
}

func fromKernelStats(ks *kernel.FlowStats, edgesKind string) *FlowStats {
	if ks == nil {
		return nil
	}
	edges := make([]string, 0, len(ks.MinCutEdges))
	for _, e := range ks.MinCutEdges {
		edges = append(edges, string(e))
	}
	return &FlowStats{
		CostDistribution: ks.CostDistribution,
		Edges:            edges,
		EdgesKind:        edgesKind,
	}
}

func usedEdges(ks *kernel.FlowStats) []string {
	if ks == nil {
		return nil
	}
	edges := make([]string, 0, len(ks.EdgeFlow))
	for id := range ks.EdgeFlow {
		edges = append(edges, string(id))
	}
	sort.Strings(edges)
	return edges
}

func intPtr(v int) *int { return &v }

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
