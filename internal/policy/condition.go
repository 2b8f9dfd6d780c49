package policy

// evaluate applies conditions to attrs, combining results with logic.
// An empty condition list matches everything (logic has nothing to combine).
func evaluate(attrs map[string]any, conditions []Condition, logic Logic) bool {
	if len(conditions) == 0 {
		return true
	}
	if logic == LogicOr {
		for _, c := range conditions {
			if evaluateOne(attrs, c) {
				return true
			}
		}
		return false
	}
	for _, c := range conditions {
		if !evaluateOne(attrs, c) {
			return false
		}
	}
	return true
}

func evaluateOne(attrs map[string]any, c Condition) bool {
	value, present := attrs[c.Attr]

	switch c.Operator {
	case OpAnyValue:
		return present
	case OpNoValue:
		return !present || value == nil
	}

	if !present || value == nil {
		// A missing/null attribute behaves as if its value were null: null
		// != anything non-null is true, and null never "contains" anything,
		// so not_contains is true. Every other operator stays false.
		switch c.Operator {
		case OpNotEqual, OpNotContains:
			return true
		default:
			return false
		}
	}

	switch c.Operator {
	case OpEqual:
		return equalValues(value, c.Value)
	case OpNotEqual:
		return !equalValues(value, c.Value)
	case OpLess, OpLessEqual, OpGreater, OpGreaterEqual:
		a, aok := asFloat(value)
		b, bok := asFloat(c.Value)
		if !aok || !bok {
			return false
		}
		switch c.Operator {
		case OpLess:
			return a < b
		case OpLessEqual:
			return a <= b
		case OpGreater:
			return a > b
		case OpGreaterEqual:
			return a >= b
		}
	case OpContains:
		return containsValue(value, c.Value)
	case OpNotContains:
		return !containsValue(value, c.Value)
	}
	return false
}

func equalValues(a, b any) bool {
	af, aok := asFloat(a)
	bf, bok := asFloat(b)
	if aok && bok {
		return af == bf
	}
	return a == b
}

func containsValue(haystack, needle any) bool {
	switch h := haystack.(type) {
	case string:
		s, ok := needle.(string)
		return ok && contains(h, s)
	case []string:
		s, ok := needle.(string)
		if !ok {
			return false
		}
		for _, v := range h {
			if v == s {
				return true
			}
		}
		return false
	case []any:
		for _, v := range h {
			if equalValues(v, needle) {
				return true
			}
		}
		return false
	}
	return false
}

func contains(haystack, needle string) bool {
	return len(needle) == 0 || indexOf(haystack, needle) >= 0
}

func indexOf(s, sub string) int {
	n, m := len(s), len(sub)
	for i := 0; i+m <= n; i++ {
		if s[i:i+m] == sub {
			return i
		}
	}
	return -1
}

func asFloat(v any) (float64, bool) {
	switch x := v.(type) {
	case float64:
		return x, true
	case float32:
		return float64(x), true
	case int:
		return float64(x), true
	case int64:
		return float64(x), true
	case bool:
		if x {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}
