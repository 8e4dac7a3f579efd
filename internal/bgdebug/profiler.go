// Package bgdebug holds optional debugging instruments for a behavior
// graph: per-behavior timing stats and detection of "undeclared demands"
// — a behavior reading a resource's value without having declared it as a
// demand, which works by accident today (the value happens to be up to
// date) but breaks the moment ordering changes.
//
// Profiler is an ordinary value attached per-graph via bg.Graph.SetObserver
// rather than a process-wide singleton: a Go program can run more than one
// Graph in a process (e.g. in tests) without the instruments colliding.
package bgdebug

import (
	"fmt"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/behaviorgraph/bg/internal/bg"
)

// Profiler collects run-phase and ordering-pass timing, and optionally
// flags undeclared demands, for a single graph.
type Profiler struct {
	mu sync.Mutex

	behaviorTimes map[string][]time.Duration
	orderingTimes []time.Duration

	// TestUndeclaredDemands mirrors BGProfiler.testUndeclaredDemands: when
	// set, UndeclaredDemand records are kept (FoundUndeclaredDemands /
	// UndeclaredDemands) instead of being ignored.
	TestUndeclaredDemands bool

	undeclared []UndeclaredDemand
}

// UndeclaredDemand records one instance of a behavior reading a resource it
// did not declare as a demand.
type UndeclaredDemand struct {
	Behavior string
	Resource string
}

// New creates a Profiler ready to attach to a graph with g.SetObserver(p).
func New() *Profiler {
	return &Profiler{behaviorTimes: make(map[string][]time.Duration)}
}

var _ bg.Observer = (*Profiler)(nil)

func (p *Profiler) BehaviorStarted(b *bg.Behavior) {}

func (p *Profiler) BehaviorFinished(b *bg.Behavior, d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.behaviorTimes[b.DebugName()] = append(p.behaviorTimes[b.DebugName()], d)
}

func (p *Profiler) OrderingPass(d time.Duration) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.orderingTimes = append(p.orderingTimes, d)
}

func (p *Profiler) UndeclaredDemand(b *bg.Behavior, resourceName string) {
	if !p.TestUndeclaredDemands {
		return
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.undeclared = append(p.undeclared, UndeclaredDemand{Behavior: b.DebugName(), Resource: resourceName})
}

// FoundUndeclaredDemands reports whether any undeclared-demand reads have
// been recorded since the profiler was created.
func (p *Profiler) FoundUndeclaredDemands() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.undeclared) > 0
}

// UndeclaredDemands returns a copy of every undeclared-demand read recorded
// so far.
func (p *Profiler) UndeclaredDemands() []UndeclaredDemand {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]UndeclaredDemand(nil), p.undeclared...)
}

type stats struct {
	count              int
	mean, min, max, sd time.Duration
}

func summarize(durations []time.Duration) stats {
	if len(durations) == 0 {
		return stats{}
	}
	var sum time.Duration
	min, max := durations[0], durations[0]
	for _, d := range durations {
		sum += d
		if d < min {
			min = d
		}
		if d > max {
			max = d
		}
	}
	mean := sum / time.Duration(len(durations))

	var variance float64
	for _, d := range durations {
		diff := float64(d - mean)
		variance += diff * diff
	}
	variance /= float64(len(durations))
	sd := time.Duration(math.Sqrt(variance))

	return stats{count: len(durations), mean: mean, min: min, max: max, sd: sd}
}

// CycleTimeStats renders per-behavior run-time statistics (count, mean,
// min, max, standard deviation), one line per behavior, sorted by debug
// name for a stable report across runs.
func (p *Profiler) CycleTimeStats() string {
	p.mu.Lock()
	defer p.mu.Unlock()

	names := make([]string, 0, len(p.behaviorTimes))
	for name := range p.behaviorTimes {
		names = append(names, name)
	}
	sort.Strings(names)

	out := ""
	for _, name := range names {
		s := summarize(p.behaviorTimes[name])
		out += fmt.Sprintf("%s: n=%d mean=%s min=%s max=%s sd=%s\n", name, s.count, s.mean, s.min, s.max, s.sd)
	}
	return out
}

// SortTimeStats renders aggregate statistics for the topological ordering
// pass's wall-clock time across every event it ran in.
func (p *Profiler) SortTimeStats() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	s := summarize(p.orderingTimes)
	return fmt.Sprintf("ordering: n=%d mean=%s min=%s max=%s sd=%s\n", s.count, s.mean, s.min, s.max, s.sd)
}
