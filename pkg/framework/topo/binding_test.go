package topo

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/justyntemme/plugcore/pkg/framework/param"
)

func TestSelectorHolds(t *testing.T) {
	tests := []struct {
		name string
		sel  Selector
		v    param.PlainValue
		want bool
	}{
		{"in hit", Selector{Op: OpIn, Values: []float64{1, 2}}, param.Step(2), true},
		{"in miss", Selector{Op: OpIn, Values: []float64{1, 2}}, param.Step(3), false},
		{"not in", Selector{Op: OpNotIn, Values: []float64{0}}, param.Step(3), true},
		{"bool", Selector{Op: OpIn, Values: []float64{1}}, param.Bool(true), true},
		{"less", Selector{Op: OpLess, Values: []float64{10}}, param.Real(9.5), true},
		{"greater", Selector{Op: OpGreater, Values: []float64{10}}, param.Real(9.5), false},
		{"greater no operand", Selector{Op: OpGreater}, param.Real(1), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.sel.Holds(tt.v))
		})
	}
}

func TestBindingEval(t *testing.T) {
	values := map[int]param.PlainValue{
		0: param.Bool(true),
		1: param.Step(2),
	}
	get := func(i int) param.PlainValue { return values[i] }

	assert.True(t, (*Binding)(nil).Eval(get))
	assert.True(t, When(0, 1).Eval(get))
	assert.False(t, Unless(1, 2).Eval(get))
	assert.True(t, When(0, 1).And(When(1, 1, 2)).Eval(get))
	assert.False(t, When(0, 1).And(When(1, 0)).Eval(get))
	assert.Equal(t, []int{0, 1}, When(0, 1).And(When(1, 0)).Params())
}

func TestParseOp(t *testing.T) {
	op, ok := ParseOp("NE")
	assert.True(t, ok)
	assert.Equal(t, OpNotIn, op)
	assert.Equal(t, "greater", OpGreater.String())
	_, ok = ParseOp("between")
	assert.False(t, ok)
}
