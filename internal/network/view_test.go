package network

import "testing"

func TestView_ExcludingNodeHidesTouchingLinks(t *testing.T) {
	n := buildSimpleNet(t)
	v := FromExcludedSets(n, []string{"B"}, nil)

	if v.IsNodeVisible("B") {
		t.Error("B should be excluded")
	}
	if v.IsLinkVisible("l1") || v.IsLinkVisible("l2") {
		t.Error("links touching excluded node B must be hidden")
	}
	visibleNodes := v.Nodes()
	if len(visibleNodes) != 2 {
		t.Fatalf("len(Nodes()) = %d, want 2 (A, C)", len(visibleNodes))
	}
	if len(v.Links()) != 0 {
		t.Errorf("len(Links()) = %d, want 0", len(v.Links()))
	}
}

func TestView_DisabledNodeAlsoHidden(t *testing.T) {
	n := New()
	_ = n.AddNode(&Node{Name: "A"})
	_ = n.AddNode(&Node{Name: "B", Disabled: true})
	_ = n.AddLink(&Link{ID: "l1", Source: "A", Target: "B", Capacity: 1})

	v := FromExcludedSets(n, nil, nil)
	if v.IsNodeVisible("B") {
		t.Error("disabled node must not be visible even with an empty exclusion set")
	}
	if v.IsLinkVisible("l1") {
		t.Error("link touching a disabled node must be hidden")
	}
}

func TestView_IndependentOverSameBase(t *testing.T) {
	n := buildSimpleNet(t)
	v1 := FromExcludedSets(n, []string{"A"}, nil)
	v2 := FromExcludedSets(n, []string{"C"}, nil)

	if v1.IsNodeVisible("A") {
		t.Error("v1 must exclude A")
	}
	if !v2.IsNodeVisible("A") {
		t.Error("v2 must still see A")
	}
	if v2.IsNodeVisible("C") {
		t.Error("v2 must exclude C")
	}
	if !v1.IsNodeVisible("C") {
		t.Error("v1 must still see C")
	}
}

func TestView_ToStrictMultiDigraph_MaterializesBothDirections(t *testing.T) {
	n := buildSimpleNet(t)
	v := FromExcludedSets(n, nil, nil)
	g := v.ToStrictMultiDigraph()

	if g.EdgeCount() != 4 {
		t.Fatalf("EdgeCount() = %d, want 4 (2 links x 2 directions)", g.EdgeCount())
	}
	fwd, ok := g.Edge("l1#fwd")
	if !ok || fwd.From != "A" || fwd.To != "B" {
		t.Errorf("l1#fwd = %+v", fwd)
	}
	rev, ok := g.Edge("l1#rev")
	if !ok || rev.From != "B" || rev.To != "A" {
		t.Errorf("l1#rev = %+v", rev)
	}
}

func TestView_MaxFlow_Combine(t *testing.T) {
	n := New()
	for _, name := range []string{"S1", "S2", "L1", "L2"} {
		_ = n.AddNode(&Node{Name: name})
	}
	links := [][3]string{{"S1", "L1", "l1"}, {"S1", "L2", "l2"}, {"S2", "L1", "l3"}, {"S2", "L2", "l4"}}
	for _, l := range links {
		_ = n.AddLink(&Link{ID: l[2], Source: l[0], Target: l[1], Capacity: 100, Cost: 1})
	}
	v := FromExcludedSets(n, nil, nil)
	flows, err := v.MaxFlow("^S", "^L", ModeCombine, false)
	if err != nil {
		t.Fatalf("MaxFlow error = %v", err)
	}
	if len(flows) != 1 {
		t.Fatalf("len(flows) = %d, want 1", len(flows))
	}
	if flows[0].Result.Value != 400 {
		t.Errorf("Value = %v, want 400", flows[0].Result.Value)
	}
}

func TestView_MaxFlow_UnresolvedGroupErrors(t *testing.T) {
	n := buildSimpleNet(t)
	v := FromExcludedSets(n, nil, nil)
	if _, err := v.MaxFlow("^nope$", "^C$", ModeCombine, false); err == nil {
		t.Error("expected error when source pattern matches nothing")
	}
}

// TestView_PlaceDemand_ClampsAtCapacity mirrors spec scenario 6: a demand of
// 150 units against a fabric whose combine-mode max flow is 100 should
// place only 100.
func TestView_PlaceDemand_ClampsAtCapacity(t *testing.T) {
	n := New()
	for _, name := range []string{"A", "B"} {
		_ = n.AddNode(&Node{Name: name})
	}
	_ = n.AddLink(&Link{ID: "l1", Source: "A", Target: "B", Capacity: 100, Cost: 1})
	v := FromExcludedSets(n, nil, nil)

	res, err := v.PlaceDemand("^A$", "^B$", 150, false)
	if err != nil {
		t.Fatalf("PlaceDemand error = %v", err)
	}
	if res.Value != 100 {
		t.Errorf("Value = %v, want 100", res.Value)
	}
}

func TestView_PlaceDemand_UnresolvedGroupErrors(t *testing.T) {
	n := buildSimpleNet(t)
	v := FromExcludedSets(n, nil, nil)
	if _, err := v.PlaceDemand("^nope$", "^C$", 10, false); err == nil {
		t.Error("expected error when source pattern matches nothing")
	}
}

func TestLinkIDFromEdgeID(t *testing.T) {
	if got := LinkIDFromEdgeID("l1#fwd"); got != "l1" {
		t.Errorf("LinkIDFromEdgeID(l1#fwd) = %q, want l1", got)
	}
	if got := LinkIDFromEdgeID("l1#rev"); got != "l1" {
		t.Errorf("LinkIDFromEdgeID(l1#rev) = %q, want l1", got)
	}
}
