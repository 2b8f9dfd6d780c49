package analyzer

import "netgraph/internal/network"

// CapacityAnalyzer computes max-flow between matched source/sink groups on
// each iteration's view.
type CapacityAnalyzer struct {
	SourcePattern string
	SinkPattern   string
	Mode          network.FlowMode
	// IncludeFlowDetails requests cost_distribution/min_cut detail on each
	// record; skip it when only the scalar capacity value is needed, since
	// stats collection walks every edge carrying flow.
	IncludeFlowDetails bool
}

func (a *CapacityAnalyzer) Run(v *network.View) ([]FlowResult, error) {
	pairs, err := v.MaxFlow(a.SourcePattern, a.SinkPattern, a.Mode, a.IncludeFlowDetails)
	if err != nil {
		return nil, err
	}
	out := make([]FlowResult, 0, len(pairs))
	for _, p := range pairs {
		rec := FlowResult{
			Src:    p.SourceLabel,
			Dst:    p.SinkLabel,
			Metric: MetricCapacity,
			Value:  p.Result.Value,
		}
		if a.IncludeFlowDetails {
			rec.Stats = fromKernelStats(p.Result.Stats, "min_cut")
		}
		out = append(out, rec)
	}
	return out, nil
}
