// Package param holds the value side of plugin parameters: plain values,
// their domains and the conversions between plain and normalized form.
package param

import (
	"fmt"
	"math"
)

// Kind tags which alternative a PlainValue holds.
type Kind uint8

const (
	// KindBool holds a toggle state.
	KindBool Kind = iota + 1
	// KindStep holds a signed integer step (stepped and list parameters).
	KindStep
	// KindReal holds a real number.
	KindReal
)

// String returns the kind name used in diagnostics.
func (k Kind) String() string {
	switch k {
	case KindBool:
		return "bool"
	case KindStep:
		return "step"
	case KindReal:
		return "real"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// PlainValue is a parameter value in its natural domain. The payload is kept
// as raw bits so a value can be moved through a single atomic word.
type PlainValue struct {
	kind Kind
	bits uint64
}

// Bool creates a toggle value.
func Bool(b bool) PlainValue {
	if b {
		return PlainValue{kind: KindBool, bits: 1}
	}
	return PlainValue{kind: KindBool}
}

// Step creates an integer step value.
func Step(i int) PlainValue {
	return PlainValue{kind: KindStep, bits: uint64(int64(i))}
}

// Real creates a real value.
func Real(r float64) PlainValue {
	return PlainValue{kind: KindReal, bits: math.Float64bits(r)}
}

// FromBits rebuilds a value stored with Bits.
func FromBits(kind Kind, bits uint64) PlainValue {
	return PlainValue{kind: kind, bits: bits}
}

// Kind returns the tag of the value. The zero PlainValue has kind 0.
func (v PlainValue) Kind() Kind {
	return v.kind
}

// IsZero reports whether v is the zero (untagged) value.
func (v PlainValue) IsZero() bool {
	return v.kind == 0
}

// Bits returns the raw payload.
func (v PlainValue) Bits() uint64 {
	return v.bits
}

// Bool returns the toggle state. Non-bool values report whether they are non-zero.
func (v PlainValue) Bool() bool {
	switch v.kind {
	case KindReal:
		return math.Float64frombits(v.bits) != 0
	default:
		return v.bits != 0
	}
}

// Step returns the integer step. Real values are rounded.
func (v PlainValue) Step() int {
	switch v.kind {
	case KindReal:
		return int(math.Round(math.Float64frombits(v.bits)))
	case KindBool:
		return int(v.bits)
	default:
		return int(int64(v.bits))
	}
}

// Real returns the real payload, widening bool and step values.
func (v PlainValue) Real() float64 {
	switch v.kind {
	case KindReal:
		return math.Float64frombits(v.bits)
	case KindBool:
		return float64(v.bits)
	default:
		return float64(int64(v.bits))
	}
}

// String formats the value without domain knowledge.
func (v PlainValue) String() string {
	switch v.kind {
	case KindBool:
		if v.Bool() {
			return "true"
		}
		return "false"
	case KindStep:
		return fmt.Sprintf("%d", v.Step())
	case KindReal:
		return fmt.Sprintf("%g", v.Real())
	default:
		return "<none>"
	}
}
