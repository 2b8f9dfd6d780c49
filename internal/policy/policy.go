// Package policy implements the declarative failure-sampling DSL: weighted
// modes composed of rules that select nodes, links, and risk groups to
// exclude for one Monte Carlo iteration.
package policy

import (
	"math/rand"
	"sort"

	"netgraph/internal/network"
	"netgraph/pkg/apperror"
)

// Operator is a FailureCondition comparison operator.
type Operator string

const (
	OpEqual        Operator = "=="
	OpNotEqual     Operator = "!="
	OpLess         Operator = "<"
	OpLessEqual    Operator = "<="
	OpGreater      Operator = ">"
	OpGreaterEqual Operator = ">="
	OpContains     Operator = "contains"
	OpNotContains  Operator = "not_contains"
	OpAnyValue     Operator = "any_value"
	OpNoValue      Operator = "no_value"
)

// Condition is one (attribute, operator, value) test against a candidate
// entity's merged attribute map.
type Condition struct {
	Attr     string
	Operator Operator
	Value    any
}

// Logic combines multiple conditions within one rule.
type Logic string

const (
	LogicAnd Logic = "and"
	LogicOr  Logic = "or"
)

// EntityScope selects what population a rule draws candidates from.
type EntityScope string

const (
	ScopeNode      EntityScope = "node"
	ScopeLink      EntityScope = "link"
	ScopeRiskGroup EntityScope = "risk_group"
)

// RuleType selects how the matched set is sampled.
type RuleType string

const (
	RuleAll    RuleType = "all"
	RuleChoice RuleType = "choice"
	RuleRandom RuleType = "random"
)

// Rule evaluates Conditions against every candidate entity in scope, then
// samples the matched set according to Type.
type Rule struct {
	EntityScope EntityScope
	Conditions  []Condition
	Logic       Logic
	Type        RuleType
	Count       int     // required for RuleChoice
	Probability float64 // required for RuleRandom
	WeightBy    string  // optional, for RuleChoice
}

// Mode is one weighted failure scenario: a policy samples exactly one mode
// per iteration, with probability proportional to Weight.
type Mode struct {
	Weight float64
	Rules  []Rule
}

// Policy is an ordered list of modes.
type Policy struct {
	Modes []Mode
}

// candidate is one entity (node, link, or risk-group-as-entity) with its
// merged attribute map, ready for condition evaluation.
type candidate struct {
	id    string // node name, link id, or risk-group name
	attrs map[string]any
}

// Validate checks the structural preconditions §7 ValidationError lists:
// unknown operator, missing count for choice, negative probability.
func (p *Policy) Validate() error {
	for mi, mode := range p.Modes {
		if mode.Weight <= 0 {
			return apperror.New(apperror.CodeInvalidPolicy, "mode weight must be > 0").WithDetails("mode_index", mi)
		}
		for ri, rule := range mode.Rules {
			if err := validateRule(rule); err != nil {
				return apperror.Wrap(err, apperror.CodeInvalidPolicy, "invalid rule").
					WithDetails("mode_index", mi).WithDetails("rule_index", ri)
			}
		}
	}
	return nil
}

func validateRule(r Rule) error {
	switch r.EntityScope {
	case ScopeNode, ScopeLink, ScopeRiskGroup:
	default:
		return apperror.New(apperror.CodeInvalidPolicy, "unknown entity_scope").WithDetails("entity_scope", string(r.EntityScope))
	}
	for _, c := range r.Conditions {
		switch c.Operator {
		case OpEqual, OpNotEqual, OpLess, OpLessEqual, OpGreater, OpGreaterEqual,
			OpContains, OpNotContains, OpAnyValue, OpNoValue:
		default:
			return apperror.New(apperror.CodeInvalidOperator, "unknown operator").WithDetails("operator", string(c.Operator))
		}
	}
	switch r.Type {
	case RuleAll:
	case RuleChoice:
		if r.Count <= 0 {
			return apperror.New(apperror.CodeMissingCount, "rule_type 'choice' requires count > 0")
		}
	case RuleRandom:
		if r.Probability < 0 || r.Probability > 1 {
			return apperror.New(apperror.CodeInvalidProbability, "rule_type 'random' requires 0 <= probability <= 1")
		}
	default:
		return apperror.New(apperror.CodeInvalidRuleType, "unknown rule_type").WithDetails("rule_type", string(r.Type))
	}
	return nil
}

// ExcludedSet is the output of applying a policy: the node and link
// identifiers to exclude for one iteration.
type ExcludedSet struct {
	Nodes []string
	Links []string
}

// Apply samples one mode (weighted by Mode.Weight, via rng), evaluates its
// rules against base, and returns the union of excluded node/link ids. An
// empty policy (no modes) always returns an empty set. Risk-group
// selections expand to every node and link tagged with that group.
func (p *Policy) Apply(base *network.Network, rng *rand.Rand) (ExcludedSet, error) {
	if len(p.Modes) == 0 {
		return ExcludedSet{}, nil
	}
	mode := p.sampleMode(rng)

	excludedNodes := make(map[string]struct{})
	excludedLinks := make(map[string]struct{})

	for _, rule := range mode.Rules {
		selected, err := applyRule(rule, base, rng)
		if err != nil {
			return ExcludedSet{}, err
		}
		for _, id := range selected {
			switch rule.EntityScope {
			case ScopeNode:
				excludedNodes[id] = struct{}{}
			case ScopeLink:
				excludedLinks[id] = struct{}{}
			case ScopeRiskGroup:
				nodes, links := base.RiskGroupMembers(id)
				for _, n := range nodes {
					excludedNodes[n.Name] = struct{}{}
				}
				for _, l := range links {
					excludedLinks[l.ID] = struct{}{}
				}
			}
		}
	}

	return ExcludedSet{Nodes: sortedKeys(excludedNodes), Links: sortedKeys(excludedLinks)}, nil
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// sampleMode draws one mode with probability proportional to its weight:
// uniform over [0, sum(weight)), locate the interval it falls in.
func (p *Policy) sampleMode(rng *rand.Rand) Mode {
	var total float64
	for _, m := range p.Modes {
		total += m.Weight
	}
	draw := rng.Float64() * total
	var cum float64
	for _, m := range p.Modes {
		cum += m.Weight
		if draw < cum {
			return m
		}
	}
	return p.Modes[len(p.Modes)-1]
}

// applyRule builds the candidate set for rule.EntityScope, evaluates
// conditions, and samples the matched set per rule.Type.
func applyRule(rule Rule, base *network.Network, rng *rand.Rand) ([]string, error) {
	candidates := buildCandidates(rule.EntityScope, base)

	var matched []candidate
	for _, c := range candidates {
		if evaluate(c.attrs, rule.Conditions, rule.Logic) {
			matched = append(matched, c)
		}
	}

	switch rule.Type {
	case RuleAll:
		return idsOf(matched), nil

	case RuleChoice:
		return choiceSample(matched, rule.Count, rule.WeightBy, rng), nil

	case RuleRandom:
		var out []string
		for _, c := range matched {
			if rng.Float64() < rule.Probability {
				out = append(out, c.id)
			}
		}
		return out, nil

	default:
		return nil, apperror.New(apperror.CodeInvalidRuleType, "unknown rule_type").WithDetails("rule_type", string(rule.Type))
	}
}

func idsOf(cs []candidate) []string {
	out := make([]string, len(cs))
	for i, c := range cs {
		out[i] = c.id
	}
	return out
}

func buildCandidates(scope EntityScope, base *network.Network) []candidate {
	switch scope {
	case ScopeNode:
		nodes := base.Nodes()
		out := make([]candidate, len(nodes))
		for i, n := range nodes {
			out[i] = candidate{id: n.Name, attrs: mergeNodeAttrs(n)}
		}
		return out

	case ScopeLink:
		links := base.Links()
		out := make([]candidate, len(links))
		for i, l := range links {
			out[i] = candidate{id: l.ID, attrs: mergeLinkAttrs(l)}
		}
		return out

	case ScopeRiskGroup:
		// Synthetic attributes from the first associated entity, per spec:
		// a risk group's candidate attrs are drawn from whichever node or
		// link first references it.
		seen := make(map[string]bool)
		var out []candidate
		for _, n := range base.Nodes() {
			for _, rg := range n.RiskGroups {
				if seen[rg] {
					continue
				}
				seen[rg] = true
				out = append(out, candidate{id: rg, attrs: mergeNodeAttrs(n)})
			}
		}
		for _, l := range base.Links() {
			for _, rg := range l.RiskGroups {
				if seen[rg] {
					continue
				}
				seen[rg] = true
				out = append(out, candidate{id: rg, attrs: mergeLinkAttrs(l)})
			}
		}
		return out
	}
	return nil
}

func mergeNodeAttrs(n *network.Node) map[string]any {
	m := map[string]any{}
	for k, v := range n.Attrs {
		m[k] = v
	}
	m["name"] = n.Name
	m["disabled"] = n.Disabled
	return m
}

func mergeLinkAttrs(l *network.Link) map[string]any {
	m := map[string]any{}
	for k, v := range l.Attrs {
		m[k] = v
	}
	m["id"] = l.ID
	m["capacity"] = l.Capacity
	m["cost"] = l.Cost
	m["disabled"] = l.Disabled
	return m
}
