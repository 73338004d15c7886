package param

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Formatter and parser pairs for Domain.Format / Domain.Parse. All of them
// work on plain values.

// FrequencyFormatter formats frequency values with Hz/kHz.
func FrequencyFormatter(hz float64) string {
	if hz >= 1000 {
		return fmt.Sprintf("%.2f kHz", hz/1000)
	}
	return fmt.Sprintf("%.1f Hz", hz)
}

// FrequencyParser parses "440", "440 Hz" or "1.2 kHz".
func FrequencyParser(str string) (float64, error) {
	if num, ok := cutUnit(str, "khz"); ok {
		v, err := parseNumber(num)
		return v * 1000, err
	}
	num, _ := cutUnit(str, "hz")
	return parseNumber(num)
}

// DecibelFormatter formats dB values, showing -inf at or below -60 dB.
func DecibelFormatter(db float64) string {
	if db <= -60 {
		return "-∞ dB"
	}
	return fmt.Sprintf("%.1f dB", db)
}

// DecibelParser parses dB strings.
func DecibelParser(str string) (float64, error) {
	if strings.Contains(str, "∞") || strings.Contains(strings.ToLower(str), "inf") {
		return -96.0, nil
	}
	num, _ := cutUnit(str, "db")
	return parseNumber(num)
}

// PercentFormatter formats percentage values.
func PercentFormatter(value float64) string {
	return fmt.Sprintf("%.0f%%", value)
}

// PercentParser parses percentage strings.
func PercentParser(str string) (float64, error) {
	num, _ := cutUnit(str, "%")
	return parseNumber(num)
}

// TimeFormatter formats millisecond values with µs/ms/s units.
func TimeFormatter(ms float64) string {
	switch {
	case ms < 1:
		return fmt.Sprintf("%.2f µs", ms*1000)
	case ms < 1000:
		return fmt.Sprintf("%.1f ms", ms)
	default:
		return fmt.Sprintf("%.2f s", ms/1000)
	}
}

// TimeParser parses time strings into milliseconds.
func TimeParser(str string) (float64, error) {
	for _, u := range []struct {
		suffix string
		scale  float64
	}{{"µs", 0.001}, {"us", 0.001}, {"ms", 1}, {"s", 1000}} {
		if num, ok := cutUnit(str, u.suffix); ok {
			v, err := parseNumber(num)
			return v * u.scale, err
		}
	}
	return parseNumber(str)
}

// PanFormatter formats a pan position in [-1, 1].
func PanFormatter(pan float64) string {
	switch {
	case math.Abs(pan) < 0.01:
		return "C"
	case pan < 0:
		return fmt.Sprintf("%.0fL", -pan*100)
	default:
		return fmt.Sprintf("%.0fR", pan*100)
	}
}

// PanParser parses "C", "30L" or "30R".
func PanParser(str string) (float64, error) {
	s := strings.ToUpper(strings.TrimSpace(str))
	if s == "C" || s == "CENTER" {
		return 0, nil
	}
	if num, ok := cutUnit(s, "l"); ok {
		v, err := parseNumber(num)
		return -v / 100, err
	}
	if num, ok := cutUnit(s, "r"); ok {
		v, err := parseNumber(num)
		return v / 100, err
	}
	return parseNumber(s)
}

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// NoteFormatter formats MIDI note numbers as note names (60 = C4).
func NoteFormatter(noteNumber float64) string {
	n := int(noteNumber)
	return fmt.Sprintf("%s%d", noteNames[((n%12)+12)%12], n/12-1)
}

// NoteParser parses note names like "C#4" into MIDI note numbers.
func NoteParser(str string) (float64, error) {
	s := strings.ToUpper(strings.TrimSpace(str))
	split := strings.IndexFunc(s, func(r rune) bool { return r == '-' || (r >= '0' && r <= '9') })
	if split <= 0 {
		return 0, fmt.Errorf("no octave number found in note: %s", str)
	}
	name, octStr := s[:split], s[split:]
	offset := -1
	for i, n := range noteNames {
		if n == name {
			offset = i
		}
	}
	if offset < 0 {
		return 0, fmt.Errorf("unknown note name: %s", name)
	}
	octave, err := strconv.Atoi(octStr)
	if err != nil {
		return 0, fmt.Errorf("invalid octave number: %s", octStr)
	}
	return float64((octave+1)*12 + offset), nil
}

// OnOffFormatter formats a toggle as On/Off.
func OnOffFormatter(value float64) string {
	if value > 0.5 {
		return "On"
	}
	return "Off"
}

// OnOffParser parses On/Off strings.
func OnOffParser(str string) (float64, error) {
	switch strings.ToLower(strings.TrimSpace(str)) {
	case "on", "yes", "true", "1":
		return 1, nil
	case "off", "no", "false", "0":
		return 0, nil
	default:
		return 0, fmt.Errorf("expected 'on' or 'off', got: %s", str)
	}
}

// cutUnit strips a case-insensitive unit suffix.
func cutUnit(str, unit string) (string, bool) {
	s := strings.TrimSpace(str)
	if len(s) < len(unit) || !strings.EqualFold(s[len(s)-len(unit):], unit) {
		return s, false
	}
	return strings.TrimSpace(s[:len(s)-len(unit)]), true
}

func parseNumber(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, fmt.Errorf("invalid number: %s", s)
	}
	return v, nil
}
