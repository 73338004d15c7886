package param

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Type is the declared parameter type.
type Type uint8

const (
	// TypeToggle is an on/off switch.
	TypeToggle Type = iota + 1
	// TypeStep is an integer in [Min, Max].
	TypeStep
	// TypeList selects one of Items by index.
	TypeList
	// TypeReal is a continuous value in [Min, Max].
	TypeReal
)

// String returns the type name.
func (t Type) String() string {
	switch t {
	case TypeToggle:
		return "toggle"
	case TypeStep:
		return "step"
	case TypeList:
		return "list"
	case TypeReal:
		return "real"
	default:
		return fmt.Sprintf("type(%d)", uint8(t))
	}
}

// Kind returns the PlainValue kind used to hold values of this type.
func (t Type) Kind() Kind {
	switch t {
	case TypeToggle:
		return KindBool
	case TypeStep, TypeList:
		return KindStep
	default:
		return KindReal
	}
}

// Item is one entry of a list parameter. ID is persisted, Name is displayed.
type Item struct {
	ID   string
	Name string
}

// Domain describes the value space of a parameter and how it is displayed.
// Min, Max and Default are plain values; for toggles and lists they are
// derived from the type.
type Domain struct {
	Type      Type
	Min       float64
	Max       float64
	Default   float64
	Items     []Item
	Unit      string
	Precision int

	// Format and Parse override the default text conversion. Both work on
	// plain values.
	Format func(float64) string
	Parse  func(string) (float64, error)
}

// Errors reported by Validate.
var (
	ErrEmptyRange   = errors.New("param: min must be less than max")
	ErrFractional   = errors.New("param: step bounds must be integers")
	ErrNoItems      = errors.New("param: list needs at least one item")
	ErrDuplicateID  = errors.New("param: duplicate list item id")
	ErrDefaultRange = errors.New("param: default out of range")
	ErrUnknownType  = errors.New("param: unknown type")
)

// Validate checks local constraints of the domain.
func (d Domain) Validate() error {
	switch d.Type {
	case TypeToggle:
		if d.Default != 0 && d.Default != 1 {
			return fmt.Errorf("%w: toggle default %g", ErrDefaultRange, d.Default)
		}
		return nil
	case TypeList:
		if len(d.Items) == 0 {
			return ErrNoItems
		}
		seen := make(map[string]bool, len(d.Items))
		for _, it := range d.Items {
			if it.ID == "" || seen[it.ID] {
				return fmt.Errorf("%w: %q", ErrDuplicateID, it.ID)
			}
			seen[it.ID] = true
		}
	case TypeStep:
		if d.Min != math.Trunc(d.Min) || d.Max != math.Trunc(d.Max) {
			return fmt.Errorf("%w: [%g, %g]", ErrFractional, d.Min, d.Max)
		}
		if d.Min >= d.Max {
			return fmt.Errorf("%w: [%g, %g]", ErrEmptyRange, d.Min, d.Max)
		}
	case TypeReal:
		if !(d.Min < d.Max) {
			return fmt.Errorf("%w: [%g, %g]", ErrEmptyRange, d.Min, d.Max)
		}
	default:
		return fmt.Errorf("%w: %d", ErrUnknownType, d.Type)
	}
	lo, hi := d.Bounds()
	if d.Default < lo || d.Default > hi || math.IsNaN(d.Default) {
		return fmt.Errorf("%w: %g not in [%g, %g]", ErrDefaultRange, d.Default, lo, hi)
	}
	if d.Type != TypeReal && d.Default != math.Trunc(d.Default) {
		return fmt.Errorf("%w: %g is not a step", ErrDefaultRange, d.Default)
	}
	return nil
}

// Bounds returns the plain range of the domain.
func (d Domain) Bounds() (float64, float64) {
	switch d.Type {
	case TypeToggle:
		return 0, 1
	case TypeList:
		return 0, float64(len(d.Items) - 1)
	default:
		return d.Min, d.Max
	}
}

// Steps returns the number of discrete steps for hosts; 0 means continuous.
func (d Domain) Steps() int {
	if d.Type == TypeReal {
		return 0
	}
	lo, hi := d.Bounds()
	return int(hi - lo)
}

// DefaultValue returns the declared default as a PlainValue.
func (d Domain) DefaultValue() PlainValue {
	return d.FromFloat(d.Default)
}

// FromFloat converts a plain number to a value of this domain, rounding
// discrete types and clamping into range.
func (d Domain) FromFloat(f float64) PlainValue {
	lo, hi := d.Bounds()
	if math.IsNaN(f) {
		f = lo
	}
	f = math.Max(lo, math.Min(hi, f))
	switch d.Type {
	case TypeToggle:
		return Bool(f >= 0.5)
	case TypeStep, TypeList:
		return Step(int(math.Round(f)))
	default:
		return Real(f)
	}
}

// Clamp coerces v into the domain. A value of another kind is converted
// through its numeric form.
func (d Domain) Clamp(v PlainValue) PlainValue {
	return d.FromFloat(v.Real())
}

// Contains reports whether v has this domain's kind and lies in range.
func (d Domain) Contains(v PlainValue) bool {
	if v.Kind() != d.Type.Kind() {
		return false
	}
	lo, hi := d.Bounds()
	f := v.Real()
	return f >= lo && f <= hi
}

// Normalize maps a plain value to [0, 1].
func (d Domain) Normalize(v PlainValue) float64 {
	lo, hi := d.Bounds()
	if hi <= lo {
		return 0
	}
	n := (d.Clamp(v).Real() - lo) / (hi - lo)
	return math.Max(0, math.Min(1, n))
}

// Denormalize maps a normalized value in [0, 1] to a plain value. Discrete
// types snap to the nearest step.
func (d Domain) Denormalize(n float64) PlainValue {
	if math.IsNaN(n) {
		n = 0
	}
	n = math.Max(0, math.Min(1, n))
	lo, hi := d.Bounds()
	switch d.Type {
	case TypeToggle:
		return Bool(n >= 0.5)
	case TypeStep, TypeList:
		return Step(int(lo + math.Round(n*(hi-lo))))
	default:
		return Real(lo + n*(hi-lo))
	}
}

// ItemIndex returns the index of the list item with the given id.
func (d Domain) ItemIndex(id string) (int, bool) {
	for i, it := range d.Items {
		if it.ID == id {
			return i, true
		}
	}
	return 0, false
}

// Text renders v for display.
func (d Domain) Text(v PlainValue) string {
	v = d.Clamp(v)
	if d.Format != nil {
		return d.Format(v.Real())
	}
	switch d.Type {
	case TypeToggle:
		return OnOffFormatter(v.Real())
	case TypeList:
		return d.Items[v.Step()].Name
	case TypeStep:
		return withUnit(strconv.Itoa(v.Step()), d.Unit)
	default:
		return withUnit(strconv.FormatFloat(v.Real(), 'f', d.Precision, 64), d.Unit)
	}
}

// ParseText converts display text back into a clamped plain value.
func (d Domain) ParseText(s string) (PlainValue, error) {
	if d.Parse != nil {
		f, err := d.Parse(s)
		if err != nil {
			return PlainValue{}, err
		}
		return d.FromFloat(f), nil
	}
	s = strings.TrimSpace(s)
	switch d.Type {
	case TypeToggle:
		f, err := OnOffParser(s)
		if err != nil {
			return PlainValue{}, err
		}
		return Bool(f != 0), nil
	case TypeList:
		for i, it := range d.Items {
			if strings.EqualFold(s, it.Name) || strings.EqualFold(s, it.ID) {
				return Step(i), nil
			}
		}
		return PlainValue{}, fmt.Errorf("unknown option: %s", s)
	}
	if d.Unit != "" {
		s = strings.TrimSpace(strings.TrimSuffix(s, d.Unit))
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return PlainValue{}, fmt.Errorf("invalid number: %s", s)
	}
	return d.FromFloat(f), nil
}

func withUnit(s, unit string) string {
	if unit == "" {
		return s
	}
	if unit == "%" {
		return s + unit
	}
	return s + " " + unit
}
