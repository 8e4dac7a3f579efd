package bg

import "time"

// Observer receives event-loop instrumentation callbacks. It exists so that
// debugging aids like internal/bgdebug's Profiler can attach to a graph
// without the core event loop taking a dependency on them: accept an
// interface here, let the debug package implement it.
type Observer interface {
	// BehaviorStarted is called immediately before a behavior's run block
	// runs.
	BehaviorStarted(b *Behavior)
	// BehaviorFinished is called immediately after, with the wall-clock
	// duration of the run block.
	BehaviorFinished(b *Behavior, d time.Duration)
	// OrderingPass is called after every topological ordering pass, with
	// its wall-clock duration.
	OrderingPass(d time.Duration)
	// UndeclaredDemand is called when a behavior reads a resource's value
	// while that resource is not in the behavior's declared demand set.
	UndeclaredDemand(b *Behavior, resourceName string)
}

// SetObserver attaches o to this graph, replacing any previously attached
// observer. Pass nil to detach.
func (g *Graph) SetObserver(o Observer) { g.observer = o }

// noteRead is called by resourceCore.Value/TraceValue whenever a resource
// is read while a behavior is running, to support Observer.UndeclaredDemand.
func (g *Graph) noteRead(r resourceNode) {
	if g.observer == nil || g.currentBehavior == nil {
		return
	}
	if _, ok := g.currentBehavior.demands[r]; ok {
		return
	}
	if _, ok := g.currentBehavior.supplies[r]; ok {
		return
	}
	g.observer.UndeclaredDemand(g.currentBehavior, r.name())
}
