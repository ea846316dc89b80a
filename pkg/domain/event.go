package domain

// Trigger tags describe what raises an event. The set is open: the
// dispatcher matches by id, not by trigger, so an unknown trigger is inert
// rather than invalid.
const (
	TriggerSelection         = "selection"
	TriggerToggle            = "toggle"
	TriggerValueChange       = "value_change"
	TriggerCustom            = "custom"
	TriggerAnimationComplete = "animation_complete"
	TriggerDelay             = "delay"
)

// Event is a named, condition-gated trigger that runs an action list.
type Event struct {
	ID      string `json:"id" yaml:"id" mapstructure:"id"`
	Trigger string `json:"trigger,omitempty" yaml:"trigger,omitempty" mapstructure:"trigger"`

	// DelayMS applies to delay-triggered events: the timer elapses this many
	// milliseconds after the owning screen becomes current.
	DelayMS int `json:"delay_ms,omitempty" yaml:"delay_ms,omitempty" mapstructure:"delay_ms"`

	// Conditions must all pass (AND) for the event to fire.
	Conditions []Condition `json:"conditions,omitempty" yaml:"conditions,omitempty" mapstructure:"conditions"`

	Actions []Action `json:"actions,omitempty" yaml:"actions,omitempty" mapstructure:"actions"`
}

// Condition pairs a rule with a state patch. On events the patch is unused
// and only the rule gates firing; on elements a true rule contributes the
// patch to the element's effective state without mutating run state.
type Condition struct {
	When  *Rule          `json:"when,omitempty" yaml:"when,omitempty" mapstructure:"when"`
	Patch map[string]any `json:"patch,omitempty" yaml:"patch,omitempty" mapstructure:"patch"`
}

// Rule operators. Anything outside this set fails closed: evaluation
// returns false instead of erroring, so future syntax degrades a single
// condition rather than the run.
const (
	OpEquals    = "=="
	OpNotEquals = "!="
	OpAnd       = "and"
	OpOr        = "or"
)

// Rule is one node of the minimal boolean expression tree. Comparisons use
// Left/Right operands; combinators use Rules.
type Rule struct {
	Op    string   `json:"op" yaml:"op" mapstructure:"op"`
	Left  *Operand `json:"left,omitempty" yaml:"left,omitempty" mapstructure:"left"`
	Right *Operand `json:"right,omitempty" yaml:"right,omitempty" mapstructure:"right"`
	Rules []*Rule  `json:"rules,omitempty" yaml:"rules,omitempty" mapstructure:"rules"`
}

// Operand is a comparison input: either a variable reference resolved
// against the merged state, or a literal value. Var takes precedence.
type Operand struct {
	Var   string `json:"var,omitempty" yaml:"var,omitempty" mapstructure:"var"`
	Value any    `json:"value,omitempty" yaml:"value,omitempty" mapstructure:"value"`
}

// Eq builds an equality rule comparing a variable to a literal.
// Convenience for tests and programmatic journey construction.
func Eq(varName string, value any) *Rule {
	return &Rule{Op: OpEquals, Left: &Operand{Var: varName}, Right: &Operand{Value: value}}
}

// Ne builds an inequality rule comparing a variable to a literal.
func Ne(varName string, value any) *Rule {
	return &Rule{Op: OpNotEquals, Left: &Operand{Var: varName}, Right: &Operand{Value: value}}
}

// And combines sub-rules with short-circuit conjunction.
func And(rules ...*Rule) *Rule { return &Rule{Op: OpAnd, Rules: rules} }

// Or combines sub-rules with short-circuit disjunction.
func Or(rules ...*Rule) *Rule { return &Rule{Op: OpOr, Rules: rules} }
