package pipeline

import (
	"fmt"
	"strings"
	"sync"
	"time"
)

type traceEntry struct {
	invocations int
	total       time.Duration
}

// Tracer accumulates how often and for how long each named phase ran.
type Tracer struct {
	mu      sync.Mutex
	order   []string
	entries map[string]*traceEntry

	now func() time.Time
}

func NewTracer() *Tracer {
	return &Tracer{entries: make(map[string]*traceEntry), now: time.Now}
}

// Start begins timing a phase; call the returned func when it ends.
//
//	defer tracer.Start("ffprobe")()
func (t *Tracer) Start(name string) func() {
	began := t.now()
	return func() { t.Add(name, t.now().Sub(began)) }
}

// Add records one invocation of a phase.
func (t *Tracer) Add(name string, d time.Duration) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e, ok := t.entries[name]
	if !ok {
		e = &traceEntry{}
		t.entries[name] = e
		t.order = append(t.order, name)
	}
	e.invocations++
	e.total += d
}

// Invocations returns how many times a phase was recorded.
func (t *Tracer) Invocations(name string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.entries[name]; ok {
		return e.invocations
	}
	return 0
}

// Summary renders one line per phase, in the order phases were first seen.
func (t *Tracer) Summary() string {
	t.mu.Lock()
	defer t.mu.Unlock()

	var b strings.Builder
	b.WriteString("Traces:")
	for _, name := range t.order {
		e := t.entries[name]
		avg := e.total / time.Duration(e.invocations)
		fmt.Fprintf(&b, "\n%-20s invocations: %4d,    total_time: %9.2fs (%.2fs avg)",
			name, e.invocations, e.total.Seconds(), avg.Seconds())
	}
	return b.String()
}
