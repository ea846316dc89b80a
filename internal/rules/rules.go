// Package rules evaluates the minimal boolean rule language used by
// conditions: equality/inequality over variable references and literals,
// plus short-circuit and/or. There is no not, no ranges, and no side
// effects; anything richer belongs in actions.
package rules

import (
	"reflect"

	"github.com/spf13/cast"

	"github.com/wayfarerhq/wayfarer/pkg/domain"
)

// Evaluate resolves a rule against the merged state context. It never
// errors: a nil rule is vacuously true (an always-on condition), and an
// unknown operator fails closed so malformed or future syntax degrades a
// single condition instead of halting the run.
func Evaluate(rule *domain.Rule, ctx map[string]any) bool {
	if rule == nil {
		return true
	}

	switch rule.Op {
	case domain.OpEquals:
		return looseEqual(resolve(rule.Left, ctx), resolve(rule.Right, ctx))
	case domain.OpNotEquals:
		return !looseEqual(resolve(rule.Left, ctx), resolve(rule.Right, ctx))
	case domain.OpAnd:
		for _, sub := range rule.Rules {
			if !Evaluate(sub, ctx) {
				return false
			}
		}
		return true
	case domain.OpOr:
		for _, sub := range rule.Rules {
			if Evaluate(sub, ctx) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// AllPass reports whether every condition's rule holds (AND semantics).
// An empty list passes.
func AllPass(conds []domain.Condition, ctx map[string]any) bool {
	for i := range conds {
		if !Evaluate(conds[i].When, ctx) {
			return false
		}
	}
	return true
}

// resolve turns an operand into a value. A variable reference resolves to
// the context value or nil when absent; it never errors.
func resolve(op *domain.Operand, ctx map[string]any) any {
	if op == nil {
		return nil
	}
	if op.Var != "" {
		return ctx[op.Var]
	}
	return op.Value
}

// looseEqual compares with the authoring-friendly semantics: nil and the
// empty string are equal to each other and to a missing key, so a single
// "not set" check covers absent keys and blanked text fields. Scalars of
// different types compare through string coercion (1 == "1", true == "true").
func looseEqual(a, b any) bool {
	if isEmpty(a) && isEmpty(b) {
		return true
	}
	if isEmpty(a) != isEmpty(b) {
		return false
	}
	if reflect.DeepEqual(a, b) {
		return true
	}

	as, aerr := cast.ToStringE(a)
	bs, berr := cast.ToStringE(b)
	if aerr != nil || berr != nil {
		// Non-scalar values (slices, maps) only match via DeepEqual above.
		return false
	}
	return as == bs
}

func isEmpty(v any) bool {
	return v == nil || v == ""
}
