package kernel

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool { return math.Abs(a-b) < 1e-6 }

func TestMaxFlow_Scenario1_ParallelEdgeBottleneck(t *testing.T) {
	g := buildScenario1(t)
	res := MaxFlow(g, []NodeID{"A"}, []NodeID{"C"}, true)
	if !almostEqual(res.Value, 4) {
		t.Errorf("Value = %v, want 4", res.Value)
	}
	if res.Stats == nil {
		t.Fatal("expected stats")
	}
	if f := res.Stats.EdgeFlow["e1"] + res.Stats.EdgeFlow["e2"]; !almostEqual(f, 4) {
		t.Errorf("e1+e2 flow = %v, want 4", f)
	}
}

// buildClosFabric constructs spec scenario 2: spines S1,S2 each linked to
// leaves L1,L2 with capacity 100, cost 1 (four undirected links -> eight
// directed edges).
func buildClosFabric(t *testing.T) *Graph {
	t.Helper()
	g := NewGraph()
	pairs := [][2]NodeID{{"S1", "L1"}, {"S1", "L2"}, {"S2", "L1"}, {"S2", "L2"}}
	id := 0
	for _, p := range pairs {
		id++
		if err := g.AddEdge(&Edge{ID: EdgeID(edgeName(id)), From: p[0], To: p[1], Capacity: 100, Cost: 1}); err != nil {
			t.Fatal(err)
		}
		id++
		if err := g.AddEdge(&Edge{ID: EdgeID(edgeName(id)), From: p[1], To: p[0], Capacity: 100, Cost: 1}); err != nil {
			t.Fatal(err)
		}
	}
	return g
}

func edgeName(i int) string {
	const letters = "0123456789"
	return "e" + string(letters[i%10]) + string(letters[(i/10)%10])
}

func TestMaxFlow_Scenario2_ECMPCombine(t *testing.T) {
	g := buildClosFabric(t)
	res := MaxFlow(g, []NodeID{"S1", "S2"}, []NodeID{"L1", "L2"}, false)
	if !almostEqual(res.Value, 400) {
		t.Errorf("Value = %v, want 400", res.Value)
	}
}

func TestMaxFlow_Scenario3_SingleNodeExclusion(t *testing.T) {
	// Rebuild the fabric without S1 (simulating a view that excludes it).
	g := NewGraph()
	pairs := [][2]NodeID{{"S2", "L1"}, {"S2", "L2"}}
	id := 0
	for _, p := range pairs {
		id++
		_ = g.AddEdge(&Edge{ID: EdgeID(edgeName(id)), From: p[0], To: p[1], Capacity: 100, Cost: 1})
		id++
		_ = g.AddEdge(&Edge{ID: EdgeID(edgeName(id)), From: p[1], To: p[0], Capacity: 100, Cost: 1})
	}
	res := MaxFlow(g, []NodeID{"S2"}, []NodeID{"L1", "L2"}, false)
	if !almostEqual(res.Value, 200) {
		t.Errorf("Value = %v, want 200", res.Value)
	}
}

func TestMaxFlow_SingleNodeGraph_IsZero(t *testing.T) {
	g := NewGraph()
	g.AddNode("N")
	res := MaxFlow(g, []NodeID{"N"}, []NodeID{"N"}, false)
	if res.Value != 0 {
		t.Errorf("Value = %v, want 0", res.Value)
	}
}

func TestMaxFlow_DisconnectedGraph_IsZero(t *testing.T) {
	g := NewGraph()
	g.AddNode("A")
	g.AddNode("B")
	res := MaxFlow(g, []NodeID{"A"}, []NodeID{"B"}, true)
	if res.Value != 0 {
		t.Errorf("Value = %v, want 0", res.Value)
	}
	if len(res.Stats.EdgeFlow) != 0 {
		t.Errorf("EdgeFlow = %v, want empty", res.Stats.EdgeFlow)
	}
}

func TestMaxFlow_MinCut_ReportsBottleneckEdges(t *testing.T) {
	g := buildScenario1(t)
	res := MaxFlow(g, []NodeID{"A"}, []NodeID{"C"}, true)
	if len(res.Stats.MinCutEdges) != 2 {
		t.Fatalf("MinCutEdges = %v, want 2 edges (e1,e2)", res.Stats.MinCutEdges)
	}
}

// TestMaxFlowCapped_StopsAtLimit checks that a cap well below the fabric's
// uncapped max flow (400, per TestMaxFlow_Scenario2_ECMPCombine) is honored
// exactly rather than saturating all available capacity.
func TestMaxFlowCapped_StopsAtLimit(t *testing.T) {
	g := buildClosFabric(t)
	res := MaxFlowCapped(g, []NodeID{"S1", "S2"}, []NodeID{"L1", "L2"}, 150, false)
	if !almostEqual(res.Value, 150) {
		t.Errorf("Value = %v, want 150 (fabric capacity 400 exceeds cap)", res.Value)
	}
}

func TestMaxFlowCapped_BottleneckBelowLimit(t *testing.T) {
	g := buildScenario1(t)
	res := MaxFlowCapped(g, []NodeID{"A"}, []NodeID{"C"}, 150, true)
	if !almostEqual(res.Value, 4) {
		t.Errorf("Value = %v, want 4 (bottleneck below the 150 cap)", res.Value)
	}
}

func TestMaxFlowCapped_UncappedWhenLimitIsInfinite(t *testing.T) {
	g := buildClosFabric(t)
	res := MaxFlowCapped(g, []NodeID{"S1", "S2"}, []NodeID{"L1", "L2"}, math.Inf(1), false)
	if !almostEqual(res.Value, 400) {
		t.Errorf("Value = %v, want 400", res.Value)
	}
}
