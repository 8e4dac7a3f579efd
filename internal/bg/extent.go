package bg

import "github.com/google/uuid"

// Extent is an ownership aggregate for a related set of resources and
// behaviors: they are admitted to (AddToGraph) and removed from
// (RemoveFromGraph) the graph as a unit. A host typically defines its own
// struct embedding *Extent alongside its own *State/*Moment/*Behavior
// fields (see internal/bgexamples/login for a worked example) rather than
// using a bare *Extent directly.
type Extent struct {
	graph *Graph
	id    uuid.UUID

	resources []resourceNode
	behaviors []*Behavior

	// added fires once, the event this extent is admitted to the graph, so
	// that behaviors elsewhere can demand "has this extent shown up yet".
	added *Resource

	isAddedFlag bool
	removedFlag bool
	addedEvent  Event

	debugName string
}

// NewExtent creates a new, not-yet-added extent owned by g.
func NewExtent(g *Graph, debugName string) *Extent {
	e := &Extent{
		graph:     g,
		id:        uuid.New(),
		debugName: debugName,
	}
	e.added = NewResource(e, debugName+".added")
	return e
}

// Graph returns the graph that owns this extent.
func (e *Extent) Graph() *Graph { return e.graph }

// DebugName returns the static debug name given to this extent at creation
// time.
func (e *Extent) DebugName() string {
	if e.debugName != "" {
		return e.debugName
	}
	return "<unnamed extent>"
}

// DebugID returns a stable identifier for this extent, suitable for
// correlating log lines across hosts where pointer identity isn't visible
// (e.g. structured log output).
func (e *Extent) DebugID() string { return e.id.String() }

// Added is a resource that fires the event this extent is admitted to the
// graph.
func (e *Extent) Added() *Resource { return e.added }

func (e *Extent) isAdded() bool { return e.isAddedFlag && !e.removedFlag }

func (e *Extent) addResource(r resourceNode) {
	e.resources = append(e.resources, r)
}

// NewBehavior constructs a behavior owned by this extent with a fixed
// demand and supply set. If the extent has already been added to the
// graph, the new behavior is registered with the graph immediately;
// otherwise it is registered when AddToGraph runs.
func (e *Extent) NewBehavior(demands, supplies []resourceNode, run func(), debugName string) *Behavior {
	b := newBehavior(e, demands, supplies, run, debugName)
	e.behaviors = append(e.behaviors, b)
	if e.isAdded() {
		e.graph.markUntracked(b)
	}
	return b
}

// NewDynamicBehavior constructs a behavior whose demand and/or supply sets
// can change at runtime (spec.md 4.4). dynamics is invoked once, at
// construction time, to collect the switch resources and the callbacks
// that compute the dynamic portion of the edge sets; staticDemands and
// staticSupplies are always included alongside whatever those callbacks
// report. The switch resources are folded into the behavior's static
// demand set so that updating a switch schedules a re-link.
func (e *Extent) NewDynamicBehavior(staticDemands, staticSupplies []resourceNode, dynamics func(*DynamicLinks), run func(), debugName string) *Behavior {
	links := &DynamicLinks{}
	if dynamics != nil {
		dynamics(links)
	}
	allDemands := append(append([]resourceNode(nil), staticDemands...), links.allSwitches()...)
	b := e.NewBehavior(dedupeResources(allDemands), staticSupplies, run, debugName)
	b.links = links
	b.staticDemands = staticDemands
	b.staticSupplies = staticSupplies
	return b
}

// SideEffect enqueues deferred work, delegating to e.Graph().SideEffect.
func (e *Extent) SideEffect(name string, block func()) {
	e.graph.SideEffect(name, block)
}

// Action submits a stimulus, delegating to e.Graph().action.
func (e *Extent) Action(impulse string, requireSync bool, block func()) {
	e.graph.action(impulse, requireSync, block)
}

// AddToGraph admits this extent: every resource it owns is stamped with the
// current event as its "added" event, and every behavior it owns is staged
// for admission in the next structure phase. Legal only from inside an
// action (spec.md 4.5).
func (e *Extent) AddToGraph() {
	g := e.graph
	ev := g.currentEvent()
	if ev == nil {
		panic(ErrGraphMutationOutsideAction{Operation: "AddToGraph on extent " + e.DebugName()})
	}
	if e.isAddedFlag {
		return
	}
	e.isAddedFlag = true
	e.addedEvent = *ev
	for _, r := range e.resources {
		r.markAdded(*ev)
	}
	for _, b := range e.behaviors {
		g.markUntracked(b)
	}
	// The extent's own "added" moment is fired by internal machinery, not a
	// user action or behavior, so it bypasses the normal supplier/action
	// validation that Resource.Update performs.
	e.added.rawForceUpdate(struct{}{})
}

// RemoveFromGraph marks every behavior this extent owns as removed: their
// edges are dropped from neighboring resources' subsequents/supplier
// fields, and they become permanently inert. Legal only from inside an
// action.
func (e *Extent) RemoveFromGraph() {
	g := e.graph
	ev := g.currentEvent()
	if ev == nil {
		panic(ErrGraphMutationOutsideAction{Operation: "RemoveFromGraph on extent " + e.DebugName()})
	}
	if e.removedFlag || !e.isAddedFlag {
		return
	}
	e.removedFlag = true
	for _, b := range e.behaviors {
		g.removeBehavior(b, *ev)
	}
}
