package analyzer

import (
	"testing"

	"netgraph/internal/network"
)

func buildFabric(t *testing.T) *network.View {
	t.Helper()
	n := network.New()
	for _, name := range []string{"S1", "S2", "L1", "L2"} {
		_ = n.AddNode(&network.Node{Name: name})
	}
	links := [][3]string{{"S1", "L1", "l1"}, {"S1", "L2", "l2"}, {"S2", "L1", "l3"}, {"S2", "L2", "l4"}}
	for _, l := range links {
		_ = n.AddLink(&network.Link{ID: l[2], Source: l[0], Target: l[1], Capacity: 100, Cost: 1})
	}
	return network.FromExcludedSets(n, nil, nil)
}

func TestCapacityAnalyzer_Run_Combine(t *testing.T) {
	v := buildFabric(t)
	a := &CapacityAnalyzer{SourcePattern: "^S", SinkPattern: "^L", Mode: network.ModeCombine}
	records, err := a.Run(v)
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("len(records) = %d, want 1", len(records))
	}
	if records[0].Metric != MetricCapacity || records[0].Value != 400 {
		t.Errorf("record = %+v, want capacity=400", records[0])
	}
}

func TestCapacityAnalyzer_Run_WithFlowDetails(t *testing.T) {
	v := buildFabric(t)
	a := &CapacityAnalyzer{SourcePattern: "^S", SinkPattern: "^L", Mode: network.ModeCombine, IncludeFlowDetails: true}
	records, err := a.Run(v)
	if err != nil {
		t.Fatal(err)
	}
	if records[0].Stats == nil {
		t.Fatal("expected stats with IncludeFlowDetails")
	}
	if records[0].Stats.EdgesKind != "min_cut" {
		t.Errorf("EdgesKind = %q, want min_cut", records[0].Stats.EdgesKind)
	}
}
