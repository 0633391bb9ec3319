package logic

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
)

// Evaluate computes the set of field ids the given rules hide for the current
// field values. Rules are evaluated in list order and, for any given target
// field, the action of the last rule whose conditions hold wins: a later show
// removes a hide recorded by an earlier rule and vice versa. Rules whose
// conditions do not hold contribute nothing. The function keeps no state and
// returns the same set for the same inputs on every call.
func Evaluate(rules []Rule, values map[string]any) map[string]bool {
	hidden := make(map[string]bool)
	for _, rule := range rules {
		if !ruleSatisfied(rule, values) {
			continue
		}
		for _, action := range rule.Actions {
			if action.FieldID == "" {
				continue
			}
			switch action.Type {
			case ActionHide:
				hidden[action.FieldID] = true
			case ActionShow:
				delete(hidden, action.FieldID)
			}
		}
	}
	return hidden
}

// HiddenWithDescendants expands an explicit hidden set with every field whose
// group chain resolves to a hidden field. parents maps a field id to its
// group id (empty or absent for top-level fields). Cycles in the parent map
// terminate the walk rather than recursing forever.
func HiddenWithDescendants(hidden map[string]bool, parents map[string]string) map[string]bool {
	out := make(map[string]bool, len(hidden))
	for id := range hidden {
		out[id] = true
	}
	for id := range parents {
		seen := map[string]bool{id: true}
		for cur := parents[id]; cur != ""; cur = parents[cur] {
			if hidden[cur] {
				out[id] = true
				break
			}
			if seen[cur] {
				break
			}
			seen[cur] = true
		}
	}
	return out
}

func ruleSatisfied(rule Rule, values map[string]any) bool {
	if len(rule.Conditions) == 0 {
		return false
	}
	for _, cond := range rule.Conditions {
		ok := conditionHolds(cond, values)
		if rule.Combinator == CombinatorOr {
			if ok {
				return true
			}
			continue
		}
		// "and" is the default for unknown combinators.
		if !ok {
			return false
		}
	}
	return rule.Combinator != CombinatorOr
}

// conditionHolds never panics on malformed input: an empty field id, an
// unknown operator, or a failing expression all read as not satisfied.
func conditionHolds(cond Condition, values map[string]any) bool {
	if cond.Operator == OperatorExpression {
		return expressionHolds(cond.Value, values)
	}
	if cond.FieldID == "" {
		return false
	}
	value, present := values[cond.FieldID]

	switch cond.Operator {
	case OperatorEquals:
		return coerceString(value) == cond.Value
	case OperatorNotEquals:
		return coerceString(value) != cond.Value
	case OperatorContains:
		return strings.Contains(coerceString(value), cond.Value)
	case OperatorIsEmpty:
		return !present || isEmpty(value)
	case OperatorIsNotEmpty:
		return present && !isEmpty(value)
	default:
		return false
	}
}

// expressionHolds compiles and runs an expr-lang expression against the value
// map. Compile errors, runtime errors, and non-boolean results fail closed.
func expressionHolds(source string, values map[string]any) bool {
	source = strings.TrimSpace(source)
	if source == "" {
		return false
	}
	env := values
	if env == nil {
		env = map[string]any{}
	}
	program, err := expr.Compile(source, expr.Env(env), expr.AllowUndefinedVariables())
	if err != nil {
		return false
	}
	output, err := expr.Run(program, env)
	if err != nil {
		return false
	}
	result, ok := output.(bool)
	return ok && result
}

func isEmpty(value any) bool {
	if value == nil {
		return true
	}
	switch v := value.(type) {
	case string:
		return strings.TrimSpace(v) == ""
	case []any:
		return len(v) == 0
	case []string:
		return len(v) == 0
	case map[string]any:
		return len(v) == 0
	default:
		return false
	}
}

func coerceString(value any) string {
	if value == nil {
		return ""
	}
	switch v := value.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case bool:
		if v {
			return "true"
		}
		return "false"
	case []string:
		return strings.Join(v, ",")
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			parts = append(parts, coerceString(item))
		}
		return strings.Join(parts, ",")
	case float64:
		// %g renders whole floats without a trailing ".0" so numeric answers
		// compare equal to the string forms rule authors type.
		return fmt.Sprintf("%g", v)
	case float32:
		return fmt.Sprintf("%g", v)
	default:
		return fmt.Sprint(value)
	}
}
