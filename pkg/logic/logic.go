// Package logic defines conditional-visibility rules for form documents and
// the pure evaluator that decides which fields a set of rules hides for a
// given map of field values.
package logic

// Operator enumerates the comparisons a condition can apply to a field value.
// OperatorExpression is an extension that evaluates an expr-lang expression
// against the whole value map instead of a single field.
type Operator string

const (
	OperatorEquals     Operator = "equals"
	OperatorNotEquals  Operator = "not-equals"
	OperatorContains   Operator = "contains"
	OperatorIsEmpty    Operator = "is-empty"
	OperatorIsNotEmpty Operator = "is-not-empty"
	OperatorExpression Operator = "expression"
)

// Combinator joins the condition results of a rule.
type Combinator string

const (
	CombinatorAnd Combinator = "and"
	CombinatorOr  Combinator = "or"
)

// ActionType is the effect a satisfied rule applies to its target fields.
type ActionType string

const (
	ActionShow ActionType = "show"
	ActionHide ActionType = "hide"
)

// Condition compares the current value of a field against Value using
// Operator. For is-empty/is-not-empty the Value is ignored; for expression
// the Value is the expression source.
type Condition struct {
	ID       string   `json:"id"`
	FieldID  string   `json:"fieldId"`
	Operator Operator `json:"operator"`
	Value    string   `json:"value,omitempty"`
}

// Action targets a field with a show or hide effect.
type Action struct {
	ID      string     `json:"id"`
	Type    ActionType `json:"type"`
	FieldID string     `json:"fieldId"`
}

// Rule is a named condition group plus the actions applied when the group is
// satisfied. Conditions combine per the rule's Combinator; an empty condition
// list never satisfies the rule.
type Rule struct {
	ID         string      `json:"id"`
	Name       string      `json:"name,omitempty"`
	Combinator Combinator  `json:"combinator"`
	Conditions []Condition `json:"conditions"`
	Actions    []Action    `json:"actions"`
}
