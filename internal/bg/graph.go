package bg

import (
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-hclog"
)

type namedSideEffect struct {
	name  string
	block func()
}

type pendingAction struct {
	impulse string
	block   func()
}

// Graph is the single-threaded, cooperative event loop: it owns the
// priority queue, the topological order, and every resource/behavior ever
// added to it, and is the only thing allowed to advance the current event
// (spec.md 4, 5). A *Graph is not safe for concurrent use; a host driving
// it from more than one goroutine must serialize calls itself.
type Graph struct {
	id uuid.UUID

	logger hclog.Logger
	now    func() time.Time

	// AssertOnLeakedSideEffects controls whether SideEffect/Extent.SideEffect
	// called with no event in progress panics (ErrLeakedSideEffect) or is
	// silently dropped. Defaults to true; a host embedding bg in a context
	// where that's merely a logging matter can turn it off.
	AssertOnLeakedSideEffects bool

	eventSeq    uint64
	behaviorSeq uint64

	inProgressEvent *Event
	completedEvent  Event
	currentBehavior *Behavior
	sideEffectName  *string

	queue                   *priorityQueue
	needsOrdering           behaviorSet
	modifiedDemandBehaviors behaviorSet
	untrackedBehaviors      []*Behavior
	allBehaviors            []*Behavior

	activatedResources []resourceNode
	sideEffects        []namedSideEffect
	pendingActions     []pendingAction
	actionInProgress   bool

	observer Observer

	// rootExtent, mainNode and currentEventResource implement spec.md 6's
	// Graph.currentEventResource: a synthetic root behavior, owned by a
	// synthetic root extent that is always considered added, supplies a
	// State[Event] that every event's stamp is force-pushed onto before the
	// action block runs. It exists purely so hosts (and other behaviors)
	// can demand "the current/last event" like any other resource, without
	// every Graph needing a bespoke one of its own.
	rootExtent           *Extent
	mainNode             *Behavior
	currentEventResource *State[Event]
}

// NewGraph creates an empty, unstarted graph.
func NewGraph() *Graph {
	g := &Graph{
		id:                        uuid.New(),
		logger:                    hclog.NewNullLogger(),
		now:                       time.Now,
		AssertOnLeakedSideEffects: true,
		queue:                     newPriorityQueue(),
		needsOrdering:             newBehaviorSet(),
		modifiedDemandBehaviors:   newBehaviorSet(),
	}
	g.initRoot()
	return g
}

// initRoot builds the synthetic root extent, mainNode and
// currentEventResource described on the Graph struct. It bypasses the
// normal AddToGraph/NewBehavior admission path (there is no event in
// progress yet, and never needs to be one for this bookkeeping): the root
// extent is marked added directly, and mainNode is wired as
// currentEventResource's supplier and given order 0 by hand, the same
// order any behavior with no demands would be assigned.
func (g *Graph) initRoot() {
	g.rootExtent = NewExtent(g, "<root>")
	g.rootExtent.isAddedFlag = true

	g.currentEventResource = NewState(g.rootExtent, UnknownPast, "<root>.currentEvent")

	g.mainNode = newBehavior(g.rootExtent, nil, []resourceNode{g.currentEventResource}, nil, "<mainNode>")
	g.mainNode.order = 0
	g.mainNode.orderingState = orderingOrdered
	g.currentEventResource.setSupplierOf(g.mainNode)

	g.rootExtent.behaviors = append(g.rootExtent.behaviors, g.mainNode)
	g.allBehaviors = append(g.allBehaviors, g.mainNode)
}

// SetLogger attaches a logger used for structure-phase and event-loop
// tracing. The zero value logs nothing.
func (g *Graph) SetLogger(l hclog.Logger) {
	if l == nil {
		l = hclog.NewNullLogger()
	}
	g.logger = l
}

// SetClock overrides the function used to stamp new events, for
// deterministic tests.
func (g *Graph) SetClock(now func() time.Time) {
	if now == nil {
		now = time.Now
	}
	g.now = now
}

// DebugID returns a stable identifier for this graph.
func (g *Graph) DebugID() string { return g.id.String() }

// CurrentEventResource is a State[Event] supplied by the graph's synthetic
// root (spec.md 6): it is force-updated to the new event at the start of
// every Action/ActionAsync, before the action block runs, so a behavior
// anywhere can demand it like any other resource to be re-run on every
// event, or read its Value()/TraceValue() to inspect the current or last
// event without needing its own direct line to the graph.
func (g *Graph) CurrentEventResource() *State[Event] { return g.currentEventResource }

// CurrentEvent returns the event currently being processed, or
// UnknownPast, false if no event is in progress.
func (g *Graph) CurrentEvent() (Event, bool) {
	if g.inProgressEvent == nil {
		return UnknownPast, false
	}
	return *g.inProgressEvent, true
}

// LastEvent returns the most recently completed event, or UnknownPast if
// no event has completed yet. Unlike CurrentEvent, it keeps returning the
// same value after Action/ActionAsync returns, for hosts that want to
// inspect "what just happened" outside of any behavior or side effect.
func (g *Graph) LastEvent() Event { return g.completedEvent }

// CurrentBehavior returns the behavior whose run block is currently
// executing, or nil if none is (e.g. from inside an action block before
// the run phase, or a side effect, both of which run with no behavior
// current).
func (g *Graph) CurrentBehavior() *Behavior { return g.currentBehavior }

func (g *Graph) currentEvent() *Event { return g.inProgressEvent }

func (g *Graph) nextBehaviorSeq() uint64 {
	g.behaviorSeq++
	return g.behaviorSeq
}

// markUntracked stages a freshly constructed behavior for admission (edge
// wiring + inclusion in the topological order) during the next structure
// phase.
func (g *Graph) markUntracked(b *Behavior) {
	g.untrackedBehaviors = append(g.untrackedBehaviors, b)
	g.allBehaviors = append(g.allBehaviors, b)
}

func (g *Graph) markModifiedDemands(b *Behavior) {
	g.modifiedDemandBehaviors.add(b)
}

// resourceUpdated is called by resourceCore.rawForceUpdate once a
// resource's new value and event stamp are already in place: it schedules
// every subsequent behavior to run this event, and remembers transient
// resources so they can be cleared once the event ends.
func (g *Graph) resourceUpdated(r resourceNode) {
	if r.isTransient() {
		g.activatedResources = append(g.activatedResources, r)
	}
	for b := range r.subsequentsOf() {
		g.scheduleBehavior(b)
	}
}

func (g *Graph) scheduleBehavior(b *Behavior) {
	if b.Removed() || g.inProgressEvent == nil {
		return
	}
	if b.enqueuedSequence == g.inProgressEvent.sequence {
		return
	}
	b.enqueuedSequence = g.inProgressEvent.sequence
	g.queue.insert(b)
}

// removeBehavior tears down b's edges (its demands no longer list it as a
// subsequent, its supplies lose it as their supplier) and marks it
// permanently inert. Called by Extent.RemoveFromGraph.
func (g *Graph) removeBehavior(b *Behavior, ev Event) {
	if b.Removed() {
		return
	}
	b.removedSequence = ev.sequence
	for d := range b.demands {
		d.removeSubsequent(b)
	}
	for s := range b.supplies {
		if s.supplierOf() == b {
			s.setSupplierOf(nil)
		}
	}
	b.demands = map[resourceNode]struct{}{}
	b.supplies = map[resourceNode]struct{}{}
	g.needsOrdering.remove(b)
	g.modifiedDemandBehaviors.remove(b)
}

// SideEffect enqueues a deferred block, identified by name for logging and
// error reporting, to run after the current event's propagation completes
// (spec.md 4.6, 6). Legal from inside a behavior's run block, or (if
// AssertOnLeakedSideEffects is false) harmlessly dropped outside any event.
func (g *Graph) SideEffect(name string, block func()) {
	if g.currentEvent() == nil {
		if g.AssertOnLeakedSideEffects {
			panic(ErrLeakedSideEffect{Name: name})
		}
		return
	}
	g.sideEffects = append(g.sideEffects, namedSideEffect{name: name, block: block})
}

// Action submits impulse as a new event. If requireSync is true and an
// event is already in progress, it panics ErrSyncActionInsideEvent;
// otherwise the action is queued and drained by whichever call currently
// owns the event loop (spec.md 4, 5's "synchronous vs. queued" action
// split).
func (g *Graph) action(impulse string, requireSync bool, block func()) {
	if requireSync {
		if g.actionInProgress {
			panic(ErrSyncActionInsideEvent{})
		}
		g.runQueued(impulse, block)
		return
	}
	g.pendingActions = append(g.pendingActions, pendingAction{impulse: impulse, block: block})
	if !g.actionInProgress {
		g.drainPendingActions()
	}
}

// Action runs block synchronously as a new event. Panics
// ErrSyncActionInsideEvent if called reentrantly from inside an event
// already in progress (e.g. from a behavior's run block or a side effect);
// use ActionAsync from those contexts instead.
func (g *Graph) Action(impulse string, block func()) {
	g.action(impulse, true, block)
}

// ActionAsync queues block to run as its own event once the event loop is
// free, including from inside a behavior's run block or a side effect. If
// the event loop is already idle, it runs (and any further actions it
// queues) immediately, before ActionAsync returns.
func (g *Graph) ActionAsync(impulse string, block func()) {
	g.action(impulse, false, block)
}

func (g *Graph) drainPendingActions() {
	for len(g.pendingActions) > 0 {
		next := g.pendingActions[0]
		g.pendingActions = g.pendingActions[1:]
		g.runQueued(next.impulse, next.block)
	}
}

// runQueued runs a single action as a complete event: the action block
// itself, the structure/run phases it triggers, the deferred side effects,
// and end-of-event cleanup, then drains any further actions queued via
// ActionAsync while processing this one.
func (g *Graph) runQueued(impulse string, block func()) {
	g.actionInProgress = true
	defer func() { g.actionInProgress = false }()

	g.eventSeq++
	ev := Event{sequence: g.eventSeq, timestamp: g.now(), impulse: impulse}
	g.inProgressEvent = &ev
	g.currentBehavior = nil
	g.currentEventResource.rawForceUpdate(ev)

	if block != nil {
		block()
	}

	if err := g.processStructuralChanges(); err != nil {
		g.endEvent()
		panic(err)
	}
	if err := g.runPhase(); err != nil {
		g.endEvent()
		panic(err)
	}

	g.runSideEffects()
	g.endEvent()

	g.drainPendingActions()
}

func (g *Graph) endEvent() {
	for _, r := range g.activatedResources {
		r.clearTransient()
	}
	g.activatedResources = nil
	if g.inProgressEvent != nil {
		g.completedEvent = *g.inProgressEvent
	}
	g.inProgressEvent = nil
	g.currentBehavior = nil
}

// processStructuralChanges admits freshly constructed behaviors, applies
// staged demand/supply edits, and recomputes Order for anything
// needsOrdering names, repeating until admission and edits stop producing
// more of each other (spec.md 4.6).
func (g *Graph) processStructuralChanges() error {
	for len(g.untrackedBehaviors) > 0 || len(g.modifiedDemandBehaviors) > 0 {
		untracked := g.untrackedBehaviors
		g.untrackedBehaviors = nil
		for _, b := range untracked {
			g.admitBehavior(b)
		}

		modified := g.modifiedDemandBehaviors.slice()
		g.modifiedDemandBehaviors.clear()
		for _, b := range modified {
			g.applyModifiedDemands(b)
		}
	}

	if len(g.needsOrdering) == 0 {
		return nil
	}
	toOrder := g.needsOrdering.slice()
	start := g.now()
	err := g.runOrderingPass(toOrder)
	if g.observer != nil {
		g.observer.OrderingPass(g.now().Sub(start))
	}
	if err != nil {
		return err
	}
	g.needsOrdering.clear()
	g.queue.markDirty()

	// Re-activation: a reordered behavior that has not run this event but
	// demands a resource already updated this event is scheduled now.
	seq := g.inProgressEvent.sequence
	for _, b := range toOrder {
		if b.Removed() || b.lastUpdateSequence == seq {
			continue
		}
		for d := range b.demands {
			if d.currentEventOf().sequence == seq {
				g.scheduleBehavior(b)
				break
			}
		}
	}
	return nil
}

// admitBehavior wires a freshly constructed behavior's declared demand and
// supply edges into its neighboring resources (a supply that had no
// supplier before folds its existing subsequents into needsOrdering, as
// applyModifiedDemands does), and schedules it to run
// this event if any of its demands already updated earlier in the event
// (so that admitting an extent mid-event doesn't miss updates that already
// happened).
func (g *Graph) admitBehavior(b *Behavior) {
	for d := range b.demands {
		d.assertAdded()
		d.addSubsequent(b)
	}
	for s := range b.supplies {
		s.assertAdded()
		if existing := s.supplierOf(); existing != nil && existing != b {
			panic(ErrMultipleSuppliers{Resource: s.name(), Existing: existing.DebugName(), New: b.DebugName()})
		}
		if s.supplierOf() == nil {
			for sub := range s.subsequentsOf() {
				g.needsOrdering.add(sub)
			}
		}
		s.setSupplierOf(b)
	}
	g.needsOrdering.add(b)

	if g.inProgressEvent != nil {
		for d := range b.demands {
			if d.currentEventOf().sequence == g.inProgressEvent.sequence {
				g.scheduleBehavior(b)
				break
			}
		}
	}
}

// applyModifiedDemands applies a behavior's staged SetDemands/SetSupplies
// edit: it diffs the old and new edge sets, updates the affected
// resources' subsequents/supplier fields, and implements the
// re-activation rule for newly claimed supplies — a resource that just
// gained a supplier folds its existing subsequents back into
// needsOrdering, since their order may now depend on the new supplier's
// order, for the same structure-phase pass that assigned it.
func (g *Graph) applyModifiedDemands(b *Behavior) {
	if b.demandsStaged {
		old := b.demands
		newSet := make(map[resourceNode]struct{}, len(b.pendingDemands))
		for _, d := range b.pendingDemands {
			newSet[d] = struct{}{}
		}
		for d := range old {
			if _, ok := newSet[d]; !ok {
				d.removeSubsequent(b)
			}
		}
		for d := range newSet {
			if _, ok := old[d]; !ok {
				d.addSubsequent(b)
			}
		}
		b.demands = newSet
		b.demandsStaged = false
		b.pendingDemands = nil
		g.needsOrdering.add(b)
	}

	if b.suppliesStaged {
		old := b.supplies
		newSet := make(map[resourceNode]struct{}, len(b.pendingSupplies))
		for _, s := range b.pendingSupplies {
			newSet[s] = struct{}{}
		}
		for s := range old {
			if _, ok := newSet[s]; !ok {
				if s.supplierOf() == b {
					s.setSupplierOf(nil)
				}
			}
		}
		for s := range newSet {
			if _, ok := old[s]; ok {
				continue
			}
			if existing := s.supplierOf(); existing != nil && existing != b {
				panic(ErrMultipleSuppliers{Resource: s.name(), Existing: existing.DebugName(), New: b.DebugName()})
			}
			s.setSupplierOf(b)
			for sub := range s.subsequentsOf() {
				g.needsOrdering.add(sub)
			}
		}
		b.supplies = newSet
		b.suppliesStaged = false
		b.pendingSupplies = nil
		g.needsOrdering.add(b)
	}
}

// runPhase repeatedly settles any pending structural changes and runs the
// lowest-order queued behavior, until both the queue and the structural
// staging areas are empty.
func (g *Graph) runPhase() error {
	for {
		if err := g.processStructuralChanges(); err != nil {
			return err
		}
		b, ok := g.queue.popLowest()
		if !ok {
			return nil
		}
		if b.Removed() {
			continue
		}
		g.runBehavior(b)
	}
}

func (g *Graph) runBehavior(b *Behavior) {
	prev := g.currentBehavior
	g.currentBehavior = b
	b.lastUpdateSequence = g.inProgressEvent.sequence

	g.logger.Trace("running behavior", "behavior", b.DebugName(), "order", b.order)
	if g.observer != nil {
		g.observer.BehaviorStarted(b)
	}
	start := g.now()
	if b.runBlock != nil {
		b.runBlock()
	}
	if g.observer != nil {
		g.observer.BehaviorFinished(b, g.now().Sub(start))
	}

	g.currentBehavior = prev
	if b.links != nil {
		b.relink()
	}
}

func (g *Graph) runSideEffects() {
	for len(g.sideEffects) > 0 {
		effects := g.sideEffects
		g.sideEffects = nil
		for _, e := range effects {
			name := e.name
			g.sideEffectName = &name
			e.block()
			g.sideEffectName = nil
		}
	}
}
