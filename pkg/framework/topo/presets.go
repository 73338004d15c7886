package topo

import (
	"fmt"

	"github.com/justyntemme/plugcore/pkg/framework/param"
)

// Common parameter declarations.

// Gain declares a -60..+12 dB gain parameter at 0 dB.
func Gain(id, name string) *Builder {
	return Linear(id, name, -60, 12, 0).
		Unit("dB").
		Formatter(param.DecibelFormatter, param.DecibelParser)
}

// Frequency declares a frequency parameter in Hz.
func Frequency(id, name string, min, max, def float64) *Builder {
	return Linear(id, name, min, max, def).
		Unit("Hz").
		Formatter(param.FrequencyFormatter, param.FrequencyParser)
}

// Time declares a time parameter in milliseconds.
func Time(id, name string, minMs, maxMs, defMs float64) *Builder {
	return Linear(id, name, minMs, maxMs, defMs).
		Unit("ms").
		Formatter(param.TimeFormatter, param.TimeParser)
}

// Pan declares a -1..1 stereo pan parameter at center.
func Pan(id, name string) *Builder {
	return Linear(id, name, -1, 1, 0).
		Formatter(param.PanFormatter, param.PanParser)
}

// Note declares a MIDI note number parameter.
func Note(id, name string, def int) *Builder {
	return Stepped(id, name, 0, 127, def).
		Formatter(param.NoteFormatter, param.NoteParser)
}

// Semitones declares a ±range semitone transpose parameter.
func Semitones(id, name string, rng int) *Builder {
	return Stepped(id, name, -rng, rng, 0).
		Formatter(func(v float64) string {
			return fmt.Sprintf("%+.0f st", v)
		}, nil).
		Unit("st")
}

// On declares the usual module on/off switch.
func On(id string, def bool) *Builder {
	return Toggle(id, "On", def)
}

// Items builds list items from id/name pairs.
func Items(pairs ...string) []param.Item {
	items := make([]param.Item, 0, len(pairs)/2)
	for i := 0; i+1 < len(pairs); i += 2 {
		items = append(items, param.Item{ID: pairs[i], Name: pairs[i+1]})
	}
	return items
}
