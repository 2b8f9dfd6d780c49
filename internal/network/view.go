package network

import "netgraph/internal/kernel"

// View is an immutable, filtered window over a base Network: visible nodes
// are base nodes minus disabled-or-excluded, and visible links are base
// links minus disabled-or-excluded-or-touching-an-excluded-node. It never
// copies the base's nodes or links; filtering is computed on demand, so
// many views may coexist over the same base concurrently without
// interfering with each other or with the base.
type View struct {
	base          *Network
	excludedNodes map[string]struct{}
	excludedLinks map[string]struct{}
}

// FromExcludedSets is the only constructor the engine uses: it builds a
// view over base with the given excluded node/link names. Excluding a node
// implicitly hides every link touching it.
func FromExcludedSets(base *Network, excludedNodes, excludedLinks []string) *View {
	v := &View{
		base:          base,
		excludedNodes: make(map[string]struct{}, len(excludedNodes)),
		excludedLinks: make(map[string]struct{}, len(excludedLinks)),
	}
	for _, n := range excludedNodes {
		v.excludedNodes[n] = struct{}{}
	}
	for _, l := range excludedLinks {
		v.excludedLinks[l] = struct{}{}
	}
	return v
}

// Base returns the underlying network this view filters.
func (v *View) Base() *Network { return v.base }

// ExcludedNodes returns the node names this view hides directly (not
// counting nodes hidden only because they're Disabled in the base).
func (v *View) ExcludedNodes() []string {
	out := make([]string, 0, len(v.excludedNodes))
	for n := range v.excludedNodes {
		out = append(out, n)
	}
	return out
}

// IsNodeVisible reports whether a node is neither disabled nor excluded.
func (v *View) IsNodeVisible(name string) bool {
	node, ok := v.base.nodes[name]
	if !ok || node.Disabled {
		return false
	}
	_, excluded := v.excludedNodes[name]
	return !excluded
}

// IsLinkVisible reports whether a link is neither disabled, excluded, nor
// touching an excluded/disabled node.
func (v *View) IsLinkVisible(id string) bool {
	link, ok := v.base.links[id]
	if !ok || link.Disabled {
		return false
	}
	if _, excluded := v.excludedLinks[id]; excluded {
		return false
	}
	return v.IsNodeVisible(link.Source) && v.IsNodeVisible(link.Target)
}

// Nodes returns the visible nodes, in base insertion order.
func (v *View) Nodes() []*Node {
	out := make([]*Node, 0, len(v.base.nodeOrder))
	for _, name := range v.base.nodeOrder {
		if v.IsNodeVisible(name) {
			out = append(out, v.base.nodes[name])
		}
	}
	return out
}

// Links returns the visible links, in base insertion order.
func (v *View) Links() []*Link {
	out := make([]*Link, 0, len(v.base.linkOrder))
	for _, id := range v.base.linkOrder {
		if v.IsLinkVisible(id) {
			out = append(out, v.base.links[id])
		}
	}
	return out
}

// SelectNodeGroupsByPath delegates to the base but only returns visible
// nodes within each group; groups left empty are dropped.
func (v *View) SelectNodeGroupsByPath(pattern string) ([]NodeGroup, error) {
	groups, err := v.base.SelectNodeGroupsByPath(pattern)
	if err != nil {
		return nil, err
	}
	out := make([]NodeGroup, 0, len(groups))
	for _, g := range groups {
		visible := make([]*Node, 0, len(g.Nodes))
		for _, node := range g.Nodes {
			if v.IsNodeVisible(node.Name) {
				visible = append(visible, node)
			}
		}
		if len(visible) > 0 {
			out = append(out, NodeGroup{Label: g.Label, Nodes: visible})
		}
	}
	return out, nil
}

// ToStrictMultiDigraph materializes the view into a kernel.Graph: every
// visible undirected Link becomes two directed edges, one per direction,
// sharing capacity and cost. Edge IDs are "<link-id>#fwd" / "<link-id>#rev"
// so the kernel's min-cut/edge-flow output can be mapped back to link ids.
func (v *View) ToStrictMultiDigraph() *kernel.Graph {
	g := kernel.NewGraph()
	for _, node := range v.Nodes() {
		g.AddNode(kernel.NodeID(node.Name))
	}
	for _, link := range v.Links() {
		_ = g.AddEdge(&kernel.Edge{
			ID: kernel.EdgeID(link.ID + "#fwd"), From: kernel.NodeID(link.Source), To: kernel.NodeID(link.Target),
			Capacity: link.Capacity, Cost: link.Cost,
		})
		_ = g.AddEdge(&kernel.Edge{
			ID: kernel.EdgeID(link.ID + "#rev"), From: kernel.NodeID(link.Target), To: kernel.NodeID(link.Source),
			Capacity: link.Capacity, Cost: link.Cost,
		})
	}
	return g
}

// LinkIDFromEdgeID strips the directional suffix ToStrictMultiDigraph adds,
// recovering the model-level link id from a kernel edge id.
func LinkIDFromEdgeID(id kernel.EdgeID) string {
	s := string(id)
	if len(s) > 4 && (s[len(s)-4:] == "#fwd" || s[len(s)-4:] == "#rev") {
		return s[:len(s)-4]
	}
	return s
}
