package policy

import "testing"

func TestEvaluateOne_AnyValueAndNoValue(t *testing.T) {
	attrs := map[string]any{"tier": "edge"}
	if !evaluateOne(attrs, Condition{Attr: "tier", Operator: OpAnyValue}) {
		t.Error("any_value should be true when key exists")
	}
	if evaluateOne(attrs, Condition{Attr: "missing", Operator: OpAnyValue}) {
		t.Error("any_value should be false when key is absent")
	}
	if !evaluateOne(attrs, Condition{Attr: "missing", Operator: OpNoValue}) {
		t.Error("no_value should be true when key is absent")
	}
	attrs["nullish"] = nil
	if !evaluateOne(attrs, Condition{Attr: "nullish", Operator: OpNoValue}) {
		t.Error("no_value should be true when value is nil")
	}
}

func TestEvaluateOne_NumericComparisonOnMissingKeyIsFalse(t *testing.T) {
	attrs := map[string]any{}
	if evaluateOne(attrs, Condition{Attr: "capacity", Operator: OpGreater, Value: 10.0}) {
		t.Error("numeric comparison on missing key must be false")
	}
}

func TestEvaluateOne_NotEqualAndNotContainsOnMissingKeyIsTrue(t *testing.T) {
	attrs := map[string]any{}
	if !evaluateOne(attrs, Condition{Attr: "node_type", Operator: OpNotEqual, Value: "spine"}) {
		t.Error("!= on a missing key must be true: a null value is never equal to a non-null one")
	}
	if !evaluateOne(attrs, Condition{Attr: "tags", Operator: OpNotContains, Value: "spine"}) {
		t.Error("not_contains on a missing key must be true: a null value never contains anything")
	}
	if evaluateOne(attrs, Condition{Attr: "capacity", Operator: OpEqual, Value: 10.0}) {
		t.Error("== on a missing key must still be false")
	}
	if evaluateOne(attrs, Condition{Attr: "tags", Operator: OpContains, Value: "spine"}) {
		t.Error("contains on a missing key must still be false")
	}
}

func TestEvaluateOne_Comparisons(t *testing.T) {
	attrs := map[string]any{"capacity": 50.0, "tier": "core"}
	cases := []struct {
		op   Operator
		val  any
		want bool
	}{
		{OpEqual, 50.0, true},
		{OpNotEqual, 50.0, false},
		{OpLess, 100.0, true},
		{OpLessEqual, 50.0, true},
		{OpGreater, 10.0, true},
		{OpGreaterEqual, 50.0, true},
		{OpEqual, "core", false},
	}
	for _, c := range cases {
		got := evaluateOne(attrs, Condition{Attr: "capacity", Operator: c.op, Value: c.val})
		if got != c.want {
			t.Errorf("evaluateOne(capacity %s %v) = %v, want %v", c.op, c.val, got, c.want)
		}
	}
	if !evaluateOne(attrs, Condition{Attr: "tier", Operator: OpEqual, Value: "core"}) {
		t.Error("string equality should match")
	}
}

func TestEvaluateOne_ContainsOnString(t *testing.T) {
	attrs := map[string]any{"name": "spine-01"}
	if !evaluateOne(attrs, Condition{Attr: "name", Operator: OpContains, Value: "spine"}) {
		t.Error("contains should match substring")
	}
	if evaluateOne(attrs, Condition{Attr: "name", Operator: OpNotContains, Value: "spine"}) {
		t.Error("not_contains should be false when substring present")
	}
}

func TestEvaluate_AndOrLogic(t *testing.T) {
	attrs := map[string]any{"a": 1.0, "b": 2.0}
	and := []Condition{{Attr: "a", Operator: OpEqual, Value: 1.0}, {Attr: "b", Operator: OpEqual, Value: 99.0}}
	if evaluate(attrs, and, LogicAnd) {
		t.Error("AND should fail when one condition fails")
	}
	if !evaluate(attrs, and, LogicOr) {
		t.Error("OR should succeed when one condition passes")
	}
}
