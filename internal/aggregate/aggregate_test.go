package aggregate

import (
	"math"
	"testing"

	"netgraph/internal/analyzer"
)

func TestAggregator_CapacityEnvelope_HistogramInvariant(t *testing.T) {
	a := New(false)
	a.AddRecords("", []analyzer.FlowResult{{Src: "S", Dst: "L", Metric: analyzer.MetricCapacity, Value: 400}})
	a.AddRecords("", []analyzer.FlowResult{{Src: "S", Dst: "L", Metric: analyzer.MetricCapacity, Value: 400}})
	a.AddRecords("", []analyzer.FlowResult{{Src: "S", Dst: "L", Metric: analyzer.MetricCapacity, Value: 200}})

	envs := a.CapacityEnvelopes()
	env, ok := envs["S->L"]
	if !ok {
		t.Fatal("missing envelope S->L")
	}
	var sum int
	for _, c := range env.Frequencies {
		sum += c
	}
	if sum != env.TotalSamples {
		t.Errorf("sum(frequencies) = %d, want total_samples %d", sum, env.TotalSamples)
	}
	if env.TotalSamples != 3 {
		t.Errorf("TotalSamples = %d, want 3", env.TotalSamples)
	}
	if env.Min > env.Mean || env.Mean > env.Max {
		t.Errorf("min<=mean<=max violated: %v %v %v", env.Min, env.Mean, env.Max)
	}
	wantMean := (400.0 + 400.0 + 200.0) / 3
	if math.Abs(env.Mean-wantMean) > 1e-9 {
		t.Errorf("Mean = %v, want %v", env.Mean, wantMean)
	}
}

func TestAggregator_OrderInsensitive(t *testing.T) {
	recs := []analyzer.FlowResult{
		{Src: "S", Dst: "L", Metric: analyzer.MetricCapacity, Value: 100},
		{Src: "S", Dst: "L", Metric: analyzer.MetricCapacity, Value: 200},
		{Src: "S", Dst: "L", Metric: analyzer.MetricCapacity, Value: 300},
	}

	a1 := New(false)
	for _, r := range recs {
		a1.AddRecords("", []analyzer.FlowResult{r})
	}
	a2 := New(false)
	reversed := []analyzer.FlowResult{recs[2], recs[0], recs[1]}
	for _, r := range reversed {
		a2.AddRecords("", []analyzer.FlowResult{r})
	}

	e1 := a1.CapacityEnvelopes()["S->L"]
	e2 := a2.CapacityEnvelopes()["S->L"]
	if e1.Mean != e2.Mean || e1.Stdev != e2.Stdev || e1.TotalSamples != e2.TotalSamples {
		t.Errorf("aggregation order affected result: %+v vs %+v", e1, e2)
	}
}

func TestAggregator_SingleValue_StdevZero(t *testing.T) {
	a := New(false)
	a.AddRecords("", []analyzer.FlowResult{{Src: "A", Dst: "B", Metric: analyzer.MetricCapacity, Value: 50}})
	env := a.CapacityEnvelopes()["A->B"]
	if env.Min != env.Max || env.Stdev != 0 {
		t.Errorf("single-sample envelope should have stdev 0, got min=%v max=%v stdev=%v", env.Min, env.Max, env.Stdev)
	}
}

func TestAggregator_PlacementEnvelope_KeyedByPriority(t *testing.T) {
	a := New(false)
	p1, p2 := 1, 2
	a.AddRecords("", []analyzer.FlowResult{{Src: "A", Dst: "B", Metric: analyzer.MetricPlacementRatio, Value: 1.0, Priority: &p1}})
	a.AddRecords("", []analyzer.FlowResult{{Src: "A", Dst: "B", Metric: analyzer.MetricPlacementRatio, Value: 0.5, Priority: &p2}})

	envs := a.PlacementEnvelopes()
	if len(envs) != 2 {
		t.Fatalf("len(envs) = %d, want 2 (distinct priorities)", len(envs))
	}
	for _, v := range envs {
		if v.Min < 0 || v.Max > 1 {
			t.Errorf("placement ratio out of [0,1]: %+v", v)
		}
	}
}

func TestAggregator_Patterns_DedupesByHash(t *testing.T) {
	a := New(true)
	hash := PatternHash([]string{"N1"}, nil)
	a.AddPattern(hash, []string{"N1"}, nil, false)
	a.AddPattern(hash, []string{"N1"}, nil, false)
	a.AddPattern(hash, []string{"N1"}, nil, true)

	patterns := a.Patterns()
	rec, ok := patterns[hash]
	if !ok {
		t.Fatal("missing pattern record")
	}
	if rec.Count != 3 {
		t.Errorf("Count = %d, want 3", rec.Count)
	}
	if !rec.IsBaseline {
		t.Error("IsBaseline should be true once any iteration with that pattern was baseline")
	}
}

func TestAggregator_Patterns_NoOpWhenStoringDisabled(t *testing.T) {
	a := New(false)
	a.AddPattern("h", []string{"N1"}, nil, false)
	if len(a.Patterns()) != 0 {
		t.Error("AddPattern should be a no-op when storePatterns is false")
	}
}

func TestPatternHash_OrderIndependent(t *testing.T) {
	h1 := PatternHash([]string{"N2", "N1"}, []string{"L1"})
	h2 := PatternHash([]string{"N1", "N2"}, []string{"L1"})
	if h1 != h2 {
		t.Error("pattern hash must be independent of input slice order")
	}
}

func TestAggregator_FlowSummaryStats_FoldsCostDistributionAndEdges(t *testing.T) {
	a := New(false)
	stats := &analyzer.FlowStats{
		CostDistribution: map[float64]float64{1: 50, 2: 50},
		Edges:             []string{"e1", "e2"},
		EdgesKind:         "min_cut",
	}
	a.AddRecords("", []analyzer.FlowResult{{Src: "A", Dst: "B", Metric: analyzer.MetricCapacity, Value: 100, Stats: stats}})

	env, ok := a.capacity["A->B"]
	if !ok {
		t.Fatal("missing envelope")
	}
	if env.flowSummary == nil {
		t.Fatal("expected flow summary to be populated")
	}
	if env.flowSummary.TotalFlowSummaries != 1 {
		t.Errorf("TotalFlowSummaries = %d, want 1", env.flowSummary.TotalFlowSummaries)
	}
	if env.flowSummary.MinCutFrequencies["e1"] != 1 || env.flowSummary.MinCutFrequencies["e2"] != 1 {
		t.Errorf("MinCutFrequencies = %+v", env.flowSummary.MinCutFrequencies)
	}
}
