// Package policyio loads the serialized failure_policy_set YAML document
// (the wire form of internal/policy.Policy) using the same koanf/yaml stack
// the operational config loader uses, kept separate because this document
// has a different root shape and is loaded per-scenario rather than once at
// process startup.
package policyio

import (
	"fmt"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/rawbytes"
	"github.com/knadh/koanf/v2"

	"netgraph/internal/policy"
	"netgraph/pkg/apperror"
)

type conditionDoc struct {
	Attr     string `koanf:"attr"`
	Operator string `koanf:"operator"`
	Value    any    `koanf:"value"`
}

type ruleDoc struct {
	EntityScope string         `koanf:"entity_scope"`
	Logic       string         `koanf:"logic"`
	Conditions  []conditionDoc `koanf:"conditions"`
	RuleType    string         `koanf:"rule_type"`
	Count       int            `koanf:"count"`
	Probability float64        `koanf:"probability"`
	WeightBy    string         `koanf:"weight_by"`
}

type modeDoc struct {
	Weight float64   `koanf:"weight"`
	Rules  []ruleDoc `koanf:"rules"`
}

type policySetDoc struct {
	FailurePolicySet map[string]struct {
		Modes []modeDoc `koanf:"modes"`
	} `koanf:"failure_policy_set"`
}

// LoadFile parses a failure_policy_set YAML file and returns the named
// policies as domain Policy values, keyed by their name in the document.
func LoadFile(path string) (map[string]*policy.Policy, error) {
	k := koanf.New(".")
	if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidPolicy, "failed to read failure policy file").
			WithDetails("path", path)
	}
	return unmarshal(k)
}

// LoadBytes parses an in-memory failure_policy_set YAML document, e.g. one
// embedded in a larger scenario file already read by the caller.
func LoadBytes(data []byte) (map[string]*policy.Policy, error) {
	k := koanf.New(".")
	if err := k.Load(rawbytes.Provider(data), yaml.Parser()); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidPolicy, "failed to parse failure policy document")
	}
	return unmarshal(k)
}

func unmarshal(k *koanf.Koanf) (map[string]*policy.Policy, error) {
	var doc policySetDoc
	if err := k.Unmarshal("", &doc); err != nil {
		return nil, apperror.Wrap(err, apperror.CodeInvalidPolicy, "failed to unmarshal failure policy document")
	}

	out := make(map[string]*policy.Policy, len(doc.FailurePolicySet))
	for name, raw := range doc.FailurePolicySet {
		p := &policy.Policy{}
		for _, m := range raw.Modes {
			mode := policy.Mode{Weight: m.Weight}
			for _, r := range m.Rules {
				rule, err := toRule(r)
				if err != nil {
					return nil, apperror.Wrap(err, apperror.CodeInvalidPolicy, "invalid rule").WithDetails("policy", name)
				}
				mode.Rules = append(mode.Rules, rule)
			}
			p.Modes = append(p.Modes, mode)
		}
		if err := p.Validate(); err != nil {
			return nil, fmt.Errorf("policy %q: %w", name, err)
		}
		out[name] = p
	}
	return out, nil
}

func toRule(r ruleDoc) (policy.Rule, error) {
	rule := policy.Rule{
		EntityScope: policy.EntityScope(r.EntityScope),
		Logic:       policy.Logic(r.Logic),
		Type:        policy.RuleType(r.RuleType),
		Count:       r.Count,
		Probability: r.Probability,
		WeightBy:    r.WeightBy,
	}
	if rule.Logic == "" {
		rule.Logic = policy.LogicAnd
	}
	for _, c := range r.Conditions {
		rule.Conditions = append(rule.Conditions, policy.Condition{
			Attr: c.Attr, Operator: policy.Operator(c.Operator), Value: c.Value,
		})
	}
	return rule, nil
}
