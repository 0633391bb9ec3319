package session

import (
	"github.com/google/uuid"

	"github.com/goliatone/go-formedit/pkg/document"
	"github.com/goliatone/go-formedit/pkg/logic"
)

// Rule-editing operations. Deleting a field deliberately does not purge it
// from rule conditions or actions; dangling references are tolerated until
// evaluation, where they fail closed.

// AddRule appends a logic rule to the document and returns it. A blank rule
// id gets a fresh one; a blank combinator defaults to "and".
func (s *Session) AddRule(rule logic.Rule) logic.Rule {
	if rule.ID == "" {
		rule.ID = uuid.NewString()
	}
	if rule.Combinator == "" {
		rule.Combinator = logic.CombinatorAnd
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	next := document.Clone(s.form)
	next.Rules = append(next.Rules, rule)
	s.commitLocked(next)
	return rule
}

// UpdateRule replaces the rule with the matching id. Unknown ids are a
// no-op.
func (s *Session) UpdateRule(id string, rule logic.Rule) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := document.Clone(s.form)
	for i := range next.Rules {
		if next.Rules[i].ID == id {
			rule.ID = id
			next.Rules[i] = rule
			s.commitLocked(next)
			return
		}
	}
}

// DeleteRule removes the rule with the matching id. Unknown ids are a no-op.
func (s *Session) DeleteRule(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := document.Clone(s.form)
	for i := range next.Rules {
		if next.Rules[i].ID == id {
			next.Rules = append(next.Rules[:i], next.Rules[i+1:]...)
			s.commitLocked(next)
			return
		}
	}
}

// AddFieldCondition appends a legacy field-pair condition. Conditions whose
// source or target field does not exist are dropped by normalization on the
// next structural mutation; here they are rejected up front as a no-op with
// a zero value.
func (s *Session) AddFieldCondition(cond document.FieldCondition) document.FieldCondition {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.form.FieldByID(cond.FieldID) == nil || s.form.FieldByID(cond.TargetID) == nil {
		return document.FieldCondition{}
	}
	if cond.ID == "" {
		cond.ID = uuid.NewString()
	}
	next := document.Clone(s.form)
	next.Conditions = append(next.Conditions, cond)
	s.commitLocked(next)
	return cond
}

// DeleteFieldCondition removes the legacy condition with the matching id.
func (s *Session) DeleteFieldCondition(id string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := document.Clone(s.form)
	for i := range next.Conditions {
		if next.Conditions[i].ID == id {
			next.Conditions = append(next.Conditions[:i], next.Conditions[i+1:]...)
			s.commitLocked(next)
			return
		}
	}
}
