// Package network holds the materialized topology the engine analyzes:
// Node, Link, RiskGroup, the base Network, and the read-only NetworkView the
// engine builds once per Monte Carlo iteration.
package network

import (
	"fmt"
	"regexp"
	"sort"

	"netgraph/pkg/apperror"
)

// Attrs is a free-form attribute bag (string, float64, bool, or nil values).
type Attrs map[string]any

// Node is an immutable vertex of the topology once the network is built.
// Disabled is a scenario-level attribute distinct from the per-view
// exclusion a NetworkView applies.
type Node struct {
	Name       string
	Disabled   bool
	Attrs      Attrs
	RiskGroups []string
}

// Link is an undirected model-level edge; the graph kernel materializes it
// as two directed edges sharing Capacity and Cost.
type Link struct {
	ID         string
	Source     string
	Target     string
	Capacity   float64
	Cost       float64
	Disabled   bool
	Attrs      Attrs
	RiskGroups []string
}

// RiskGroup is a named tag shared by zero or more nodes and links, usable as
// an atomic failure unit.
type RiskGroup struct {
	Name string
}

// Network is the base, immutable-after-build topology. It is shared
// read-only across all Monte Carlo workers.
type Network struct {
	nodes      map[string]*Node
	nodeOrder  []string
	links      map[string]*Link
	linkOrder  []string
	riskGroups map[string]*RiskGroup
	// linksBetween indexes links by unordered endpoint pair for
	// GetLinksBetween, populated as links are added.
	linksBetween map[pairKey][]string
}

type pairKey struct{ a, b string }

func newPairKey(u, v string) pairKey {
	if u <= v {
		return pairKey{u, v}
	}
	return pairKey{v, u}
}

// New returns an empty Network ready for AddNode/AddLink calls.
func New() *Network {
	return &Network{
		nodes:        make(map[string]*Node),
		links:        make(map[string]*Link),
		riskGroups:   make(map[string]*RiskGroup),
		linksBetween: make(map[pairKey][]string),
	}
}

// AddNode registers a node. Build-phase only: callers must not call this
// once the network is handed to the engine.
func (n *Network) AddNode(node *Node) error {
	if node == nil || node.Name == "" {
		return apperror.New(apperror.CodeInvalidArgument, "node must have a non-empty name")
	}
	if _, dup := n.nodes[node.Name]; dup {
		return apperror.New(apperror.CodeDuplicateNode, "duplicate node name").WithField("name").WithDetails("name", node.Name)
	}
	n.nodes[node.Name] = node
	n.nodeOrder = append(n.nodeOrder, node.Name)
	for _, rg := range node.RiskGroups {
		n.ensureRiskGroup(rg)
	}
	return nil
}

// AddLink registers a link. Both endpoints must already exist.
func (n *Network) AddLink(link *Link) error {
	if link == nil || link.ID == "" {
		return apperror.New(apperror.CodeInvalidArgument, "link must have a non-empty id")
	}
	if _, dup := n.links[link.ID]; dup {
		return apperror.New(apperror.CodeDuplicateLink, "duplicate link id").WithField("id").WithDetails("id", link.ID)
	}
	if _, ok := n.nodes[link.Source]; !ok {
		return apperror.New(apperror.CodeDanglingLink, "link references unknown source node").
			WithField("source").WithDetails("id", link.ID).WithDetails("source", link.Source)
	}
	if _, ok := n.nodes[link.Target]; !ok {
		return apperror.New(apperror.CodeDanglingLink, "link references unknown target node").
			WithField("target").WithDetails("id", link.ID).WithDetails("target", link.Target)
	}
	n.links[link.ID] = link
	n.linkOrder = append(n.linkOrder, link.ID)
	key := newPairKey(link.Source, link.Target)
	n.linksBetween[key] = append(n.linksBetween[key], link.ID)
	for _, rg := range link.RiskGroups {
		n.ensureRiskGroup(rg)
	}
	return nil
}

func (n *Network) ensureRiskGroup(name string) {
	if _, ok := n.riskGroups[name]; !ok {
		n.riskGroups[name] = &RiskGroup{Name: name}
	}
}

// Node returns a node by name.
func (n *Network) Node(name string) (*Node, bool) {
	node, ok := n.nodes[name]
	return node, ok
}

// Link returns a link by id.
func (n *Network) Link(id string) (*Link, bool) {
	link, ok := n.links[id]
	return link, ok
}

// Nodes returns all nodes in insertion order.
func (n *Network) Nodes() []*Node {
	out := make([]*Node, len(n.nodeOrder))
	for i, name := range n.nodeOrder {
		out[i] = n.nodes[name]
	}
	return out
}

// Links returns all links in insertion order.
func (n *Network) Links() []*Link {
	out := make([]*Link, len(n.linkOrder))
	for i, id := range n.linkOrder {
		out[i] = n.links[id]
	}
	return out
}

// RiskGroupMembers returns the nodes and links tagged with the given risk
// group name.
func (n *Network) RiskGroupMembers(name string) (nodes []*Node, links []*Link) {
	for _, nm := range n.nodeOrder {
		node := n.nodes[nm]
		if containsString(node.RiskGroups, name) {
			nodes = append(nodes, node)
		}
	}
	for _, id := range n.linkOrder {
		link := n.links[id]
		if containsString(link.RiskGroups, name) {
			links = append(links, link)
		}
	}
	return nodes, links
}

func containsString(ss []string, s string) bool {
	for _, x := range ss {
		if x == s {
			return true
		}
	}
	return false
}

// GetLinksBetween returns all link ids between u and v, in either
// direction, in the order they were added.
func (n *Network) GetLinksBetween(u, v string) []string {
	return append([]string{}, n.linksBetween[newPairKey(u, v)]...)
}

// NodeGroup is one labeled group produced by SelectNodeGroupsByPath.
type NodeGroup struct {
	Label string
	Nodes []*Node
}

// SelectNodeGroupsByPath matches node names against pattern and buckets
// them by label: the first capture group if the pattern has one, else the
// full match. Groups preserve first-encounter order; nodes within a group
// are sorted by name.
func (n *Network) SelectNodeGroupsByPath(pattern string) ([]NodeGroup, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidRegex, "invalid node-path regex").
			WithField("pattern").WithDetails("pattern", pattern)
	}

	order := make([]string, 0)
	byLabel := make(map[string][]*Node)
	for _, name := range n.nodeOrder {
		m := re.FindStringSubmatch(name)
		if m == nil {
			continue
		}
		label := m[0]
		if len(m) > 1 && m[1] != "" {
			label = m[1]
		}
		if _, seen := byLabel[label]; !seen {
			order = append(order, label)
		}
		byLabel[label] = append(byLabel[label], n.nodes[name])
	}

	groups := make([]NodeGroup, 0, len(order))
	for _, label := range order {
		nodes := byLabel[label]
		sort.Slice(nodes, func(i, j int) bool { return nodes[i].Name < nodes[j].Name })
		groups = append(groups, NodeGroup{Label: label, Nodes: nodes})
	}
	return groups, nil
}

// Validate checks the structural invariants §3 requires at build time.
func (n *Network) Validate() error {
	for _, link := range n.links {
		if _, ok := n.nodes[link.Source]; !ok {
			return apperror.New(apperror.CodeDanglingLink, "link references unknown source node").
				WithField("id").WithDetails("id", link.ID)
		}
		if _, ok := n.nodes[link.Target]; !ok {
			return apperror.New(apperror.CodeDanglingLink, "link references unknown target node").
				WithField("id").WithDetails("id", link.ID)
		}
	}
	return nil
}

// String implements fmt.Stringer for debugging/log output.
func (n *Network) String() string {
	return fmt.Sprintf("Network(nodes=%d, links=%d, risk_groups=%d)", len(n.nodes), len(n.links), len(n.riskGroups))
}
