package topo

import (
	"fmt"
	"strings"

	"github.com/justyntemme/plugcore/pkg/framework/param"
)

// Op is the comparison a Selector applies to a parameter's plain value.
type Op uint8

const (
	// OpIn holds when the value equals one of Values.
	OpIn Op = iota
	// OpNotIn holds when the value equals none of Values.
	OpNotIn
	// OpLess holds when the value is below Values[0].
	OpLess
	// OpGreater holds when the value is above Values[0].
	OpGreater
)

// String returns the operator name.
func (o Op) String() string {
	switch o {
	case OpIn:
		return "in"
	case OpNotIn:
		return "not_in"
	case OpLess:
		return "less"
	case OpGreater:
		return "greater"
	default:
		return fmt.Sprintf("op(%d)", uint8(o))
	}
}

// ParseOp maps an operator name to an Op.
func ParseOp(s string) (Op, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "in", "eq", "==":
		return OpIn, true
	case "not_in", "ne", "!=":
		return OpNotIn, true
	case "less", "lt", "<":
		return OpLess, true
	case "greater", "gt", ">":
		return OpGreater, true
	default:
		return 0, false
	}
}

// Selector names a parameter of the same module (by topology index) and a
// predicate over its plain value. Parameters with several slots are read at
// slot 0.
type Selector struct {
	Param  int
	Op     Op
	Values []float64
}

// Holds evaluates the predicate.
func (s Selector) Holds(v param.PlainValue) bool {
	f := v.Real()
	switch s.Op {
	case OpIn, OpNotIn:
		found := false
		for _, want := range s.Values {
			if f == want {
				found = true
				break
			}
		}
		return found == (s.Op == OpIn)
	case OpLess:
		return len(s.Values) > 0 && f < s.Values[0]
	case OpGreater:
		return len(s.Values) > 0 && f > s.Values[0]
	default:
		return false
	}
}

// Binding is a conjunction of selectors controlling visibility or enabled
// state of a section or parameter.
type Binding struct {
	Selectors []Selector
}

// When creates a binding holding when p's value is one of values.
func When(p int, values ...float64) *Binding {
	return &Binding{Selectors: []Selector{{Param: p, Op: OpIn, Values: values}}}
}

// Unless creates a binding holding when p's value is none of values.
func Unless(p int, values ...float64) *Binding {
	return &Binding{Selectors: []Selector{{Param: p, Op: OpNotIn, Values: values}}}
}

// And returns a binding holding when both b and the selectors of o hold.
func (b *Binding) And(o *Binding) *Binding {
	out := &Binding{}
	if b != nil {
		out.Selectors = append(out.Selectors, b.Selectors...)
	}
	if o != nil {
		out.Selectors = append(out.Selectors, o.Selectors...)
	}
	return out
}

// Params returns the topology indices the binding watches.
func (b *Binding) Params() []int {
	if b == nil {
		return nil
	}
	out := make([]int, 0, len(b.Selectors))
	for _, s := range b.Selectors {
		out = append(out, s.Param)
	}
	return out
}

// Eval evaluates the binding against the values returned by get. A nil
// binding always holds.
func (b *Binding) Eval(get func(index int) param.PlainValue) bool {
	if b == nil {
		return true
	}
	for _, s := range b.Selectors {
		if !s.Holds(get(s.Param)) {
			return false
		}
	}
	return true
}
