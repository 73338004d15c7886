package param

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func waveforms() Domain {
	return Domain{
		Type: TypeList,
		Items: []Item{
			{ID: "sine", Name: "Sine"},
			{ID: "saw", Name: "Saw"},
			{ID: "square", Name: "Square"},
			{ID: "noise", Name: "Noise"},
		},
		Default: 1,
	}
}

func TestPlainValueKinds(t *testing.T) {
	assert.Equal(t, KindBool, Bool(true).Kind())
	assert.True(t, Bool(true).Bool())
	assert.False(t, Bool(false).Bool())

	assert.Equal(t, KindStep, Step(-3).Kind())
	assert.Equal(t, -3, Step(-3).Step())
	assert.Equal(t, -3.0, Step(-3).Real())

	assert.Equal(t, KindReal, Real(0.25).Kind())
	assert.Equal(t, 0.25, Real(0.25).Real())

	v := Real(12.5)
	assert.Equal(t, v, FromBits(v.Kind(), v.Bits()))
	assert.True(t, PlainValue{}.IsZero())
}

func TestDomainValidate(t *testing.T) {
	tests := []struct {
		name    string
		domain  Domain
		wantErr error
	}{
		{"toggle", Domain{Type: TypeToggle}, nil},
		{"toggle bad default", Domain{Type: TypeToggle, Default: 0.5}, ErrDefaultRange},
		{"step", Domain{Type: TypeStep, Min: -2, Max: 2}, nil},
		{"step empty", Domain{Type: TypeStep, Min: 2, Max: 2, Default: 2}, ErrEmptyRange},
		{"step fractional", Domain{Type: TypeStep, Min: 0.5, Max: 2, Default: 1}, ErrFractional},
		{"real", Domain{Type: TypeReal, Min: 0, Max: 100, Default: 50}, nil},
		{"real inverted", Domain{Type: TypeReal, Min: 1, Max: 0}, ErrEmptyRange},
		{"real default out", Domain{Type: TypeReal, Min: 0, Max: 1, Default: 2}, ErrDefaultRange},
		{"list", waveforms(), nil},
		{"list empty", Domain{Type: TypeList}, ErrNoItems},
		{"list dup", Domain{Type: TypeList, Items: []Item{{ID: "a"}, {ID: "a"}}}, ErrDuplicateID},
		{"unknown", Domain{}, ErrUnknownType},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.domain.Validate()
			if tt.wantErr == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestDiscreteRoundTripIsExact(t *testing.T) {
	domains := map[string]Domain{
		"toggle": {Type: TypeToggle},
		"step":   {Type: TypeStep, Min: -24, Max: 24},
		"list":   waveforms(),
	}
	for name, d := range domains {
		t.Run(name, func(t *testing.T) {
			lo, hi := d.Bounds()
			for f := lo; f <= hi; f++ {
				v := d.FromFloat(f)
				n := d.Normalize(v)
				require.GreaterOrEqual(t, n, 0.0)
				require.LessOrEqual(t, n, 1.0)
				assert.Equal(t, v, d.Denormalize(n), "plain %g", f)
			}
		})
	}
}

func TestRealRoundTripWithinQuantum(t *testing.T) {
	d := Domain{Type: TypeReal, Min: 20, Max: 20000, Default: 1000}
	for _, f := range []float64{20, 20.0001, 440, 1234.5678, 19999.999, 20000} {
		got := d.Denormalize(d.Normalize(Real(f))).Real()
		assert.InDelta(t, f, got, 1e-9*(d.Max-d.Min))
	}
}

func TestNormalizationIsMonotonic(t *testing.T) {
	d := Domain{Type: TypeStep, Min: 0, Max: 10}
	prev := -1.0
	for i := 0; i <= 10; i++ {
		n := d.Normalize(Step(i))
		assert.Greater(t, n, prev)
		prev = n
	}
}

func TestClamp(t *testing.T) {
	d := Domain{Type: TypeReal, Min: 0, Max: 100, Default: 50}
	assert.Equal(t, Real(100), d.Clamp(Real(250)))
	assert.Equal(t, Real(0), d.Clamp(Real(-1)))

	s := Domain{Type: TypeStep, Min: 1, Max: 8, Default: 1}
	assert.Equal(t, Step(8), s.Clamp(Step(99)))
	assert.Equal(t, Step(1), s.Clamp(Step(-5)))

	assert.Equal(t, 0.0, d.Denormalize(-3).Real())
	assert.Equal(t, 100.0, d.Denormalize(7).Real())
}

func TestContains(t *testing.T) {
	d := Domain{Type: TypeStep, Min: 0, Max: 4}
	assert.True(t, d.Contains(Step(4)))
	assert.False(t, d.Contains(Step(5)))
	assert.False(t, d.Contains(Real(2)))
}

func TestSteps(t *testing.T) {
	assert.Equal(t, 1, Domain{Type: TypeToggle}.Steps())
	assert.Equal(t, 3, waveforms().Steps())
	assert.Equal(t, 12, Domain{Type: TypeStep, Min: -6, Max: 6}.Steps())
	assert.Equal(t, 0, Domain{Type: TypeReal, Min: 0, Max: 1}.Steps())
}

func TestTextAndParse(t *testing.T) {
	t.Run("List", func(t *testing.T) {
		d := waveforms()
		assert.Equal(t, "Square", d.Text(Step(2)))
		v, err := d.ParseText("saw")
		require.NoError(t, err)
		assert.Equal(t, Step(1), v)
		_, err = d.ParseText("triangle")
		assert.Error(t, err)
	})

	t.Run("Toggle", func(t *testing.T) {
		d := Domain{Type: TypeToggle}
		assert.Equal(t, "On", d.Text(Bool(true)))
		v, err := d.ParseText("off")
		require.NoError(t, err)
		assert.Equal(t, Bool(false), v)
	})

	t.Run("RealWithUnit", func(t *testing.T) {
		d := Domain{Type: TypeReal, Min: 0, Max: 100, Default: 50, Unit: "%", Precision: 1}
		assert.Equal(t, "50.0%", d.Text(Real(50)))
		v, err := d.ParseText("75 %")
		require.NoError(t, err)
		assert.Equal(t, Real(75), v)
	})

	t.Run("StepClampsParsed", func(t *testing.T) {
		d := Domain{Type: TypeStep, Min: -12, Max: 12, Unit: "st"}
		assert.Equal(t, "3 st", d.Text(Step(3)))
		v, err := d.ParseText("40 st")
		require.NoError(t, err)
		assert.Equal(t, Step(12), v)
	})

	t.Run("Override", func(t *testing.T) {
		d := Domain{Type: TypeReal, Min: 20, Max: 20000, Default: 1000,
			Format: FrequencyFormatter, Parse: FrequencyParser}
		assert.Equal(t, "1.00 kHz", d.Text(Real(1000)))
		v, err := d.ParseText("2.5 kHz")
		require.NoError(t, err)
		assert.InDelta(t, 2500, v.Real(), 1e-9)
	})
}
