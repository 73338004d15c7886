package debug

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"
)

// Profiler collects timing statistics for named sections such as state
// encode and decode passes.
type Profiler struct {
	mu       sync.Mutex
	sections map[string]*section
	enabled  atomic.Bool
	window   int
}

type section struct {
	stats   Stats
	samples []time.Duration // ring of the last window timings
	next    int
}

// Stats is a snapshot of one section's timings.
type Stats struct {
	Name  string
	Count uint64
	Total time.Duration
	Min   time.Duration
	Max   time.Duration
	Last  time.Duration

	recent []time.Duration
}

// NewProfiler creates an enabled profiler keeping the last window samples
// of every section for percentiles.
func NewProfiler(window int) *Profiler {
	if window <= 0 {
		window = 1
	}
	p := &Profiler{sections: make(map[string]*section), window: window}
	p.enabled.Store(true)
	return p
}

// SetEnabled turns recording on or off.
func (p *Profiler) SetEnabled(enabled bool) {
	p.enabled.Store(enabled)
}

// Start begins timing name; call the returned func to stop.
func (p *Profiler) Start(name string) func() {
	if !p.enabled.Load() {
		return func() {}
	}
	start := time.Now()
	return func() { p.Record(name, time.Since(start)) }
}

// Time runs fn and records its duration under name.
func (p *Profiler) Time(name string, fn func()) {
	stop := p.Start(name)
	defer stop()
	fn()
}

// Record adds one timing to name.
func (p *Profiler) Record(name string, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()

	s, ok := p.sections[name]
	if !ok {
		s = &section{stats: Stats{Name: name, Min: d, Max: d}, samples: make([]time.Duration, 0, p.window)}
		p.sections[name] = s
	}
	s.stats.Count++
	s.stats.Total += d
	s.stats.Last = d
	s.stats.Min = min(s.stats.Min, d)
	s.stats.Max = max(s.stats.Max, d)
	if len(s.samples) < p.window {
		s.samples = append(s.samples, d)
	} else {
		s.samples[s.next] = d
	}
	s.next = (s.next + 1) % p.window
}

// Stats returns a snapshot of name.
func (p *Profiler) Stats(name string) (Stats, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	s, ok := p.sections[name]
	if !ok {
		return Stats{}, false
	}
	return s.snapshot(), true
}

// All returns snapshots of every section sorted by name.
func (p *Profiler) All() []Stats {
	p.mu.Lock()
	out := make([]Stats, 0, len(p.sections))
	for _, s := range p.sections {
		out = append(out, s.snapshot())
	}
	p.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Reset drops all sections.
func (p *Profiler) Reset() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.sections = make(map[string]*section)
}

// Report renders one line per section.
func (p *Profiler) Report() string {
	all := p.All()
	if len(all) == 0 {
		return "no measurements recorded\n"
	}
	var b strings.Builder
	for _, s := range all {
		fmt.Fprintf(&b, "%-12s n=%-6d avg=%-10v min=%-10v p95=%-10v max=%v\n",
			s.Name, s.Count, s.Average(), s.Min, s.Percentile(95), s.Max)
	}
	return b.String()
}

func (s *section) snapshot() Stats {
	st := s.stats
	st.recent = append([]time.Duration(nil), s.samples...)
	return st
}

// Average returns the mean duration.
func (s Stats) Average() time.Duration {
	if s.Count == 0 {
		return 0
	}
	return s.Total / time.Duration(s.Count)
}

// Percentile returns the pct-th percentile (0-100) over the recent window.
func (s Stats) Percentile(pct float64) time.Duration {
	if len(s.recent) == 0 {
		return 0
	}
	sorted := append([]time.Duration(nil), s.recent...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	pct = max(0, min(100, pct))
	return sorted[int(float64(len(sorted)-1)*pct/100)]
}
