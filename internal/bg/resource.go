package bg

// resourceNode is the type-erased view of a resource that the graph,
// behaviors and extents need for bookkeeping, independent of the resource's
// value type. Concrete resources ([State], [Moment], [Resource]) satisfy it
// through the embedded [resourceBase] / [resourceCore]: the type-erased
// interface carries everything the scheduler needs, and the generic wrapper
// adds the typed accessors a caller wants.
//
// Node is the exported name for resourceNode: the common type of every
// resource kind ([State], [Moment], [Resource]), used in demand/supply
// slice literals by callers outside this package (see
// internal/bgexamples/login for example usage). It carries no exported
// methods of its own — callers only ever produce values of it by passing a
// concrete *State[T]/*Moment[T], never by implementing it themselves.
type Node = resourceNode

type resourceNode interface {
	graphOf() *Graph
	extentOf() *Extent
	supplierOf() *Behavior
	setSupplierOf(*Behavior)
	subsequentsOf() map[*Behavior]struct{}
	addSubsequent(*Behavior)
	removeSubsequent(*Behavior)
	addedEvent() Event
	markAdded(Event)
	currentEventOf() Event
	name() string
	clearTransient()
	isTransient() bool
	assertAdded()
}

// resourceBase holds the bookkeeping every resource needs regardless of its
// value type: owning graph/extent, supplier and subsequents edges, and the
// added/current/previous event stamps.
type resourceBase struct {
	graph       *Graph
	extent      *Extent
	supplier    *Behavior
	subsequents map[*Behavior]struct{}

	added         Event
	event         Event
	previousEvent Event

	debugName string
	transient bool
}

func newResourceBase(e *Extent, debugName string, transient bool) resourceBase {
	return resourceBase{
		extent:      e,
		graph:       e.graph,
		subsequents: make(map[*Behavior]struct{}),
		debugName:   debugName,
		transient:   transient,
	}
}

func (r *resourceBase) graphOf() *Graph    { return r.graph }
func (r *resourceBase) extentOf() *Extent  { return r.extent }
func (r *resourceBase) supplierOf() *Behavior {
	return r.supplier
}
func (r *resourceBase) setSupplierOf(b *Behavior) { r.supplier = b }

func (r *resourceBase) subsequentsOf() map[*Behavior]struct{} { return r.subsequents }

func (r *resourceBase) addSubsequent(b *Behavior) { r.subsequents[b] = struct{}{} }

func (r *resourceBase) removeSubsequent(b *Behavior) { delete(r.subsequents, b) }

func (r *resourceBase) addedEvent() Event { return r.added }

func (r *resourceBase) markAdded(e Event) { r.added = e }

func (r *resourceBase) currentEventOf() Event { return r.event }

func (r *resourceBase) name() string {
	if r.debugName != "" {
		return r.debugName
	}
	return "<unnamed resource>"
}

func (r *resourceBase) isTransient() bool { return r.transient }

// Graph returns the graph that owns this resource.
func (r *resourceBase) Graph() *Graph { return r.graph }

// Extent returns the extent that owns this resource.
func (r *resourceBase) Extent() *Extent { return r.extent }

// DebugName returns the static debug name given to this resource at
// creation time, or a placeholder if none was given.
func (r *resourceBase) DebugName() string { return r.name() }

// Event is the event at which this resource's value was last updated.
func (r *resourceBase) Event() Event { return r.event }

// JustAdded reports whether this resource's owning extent was admitted to
// the graph during the current event.
func (r *resourceBase) JustAdded() bool {
	g := r.graph
	return g.currentEvent() != nil && r.added.sequence == g.currentEvent().sequence
}

// JustUpdated reports whether this resource was updated during the current
// event.
func (r *resourceBase) JustUpdated() bool {
	g := r.graph
	return g.currentEvent() != nil && r.event.sequence == g.currentEvent().sequence
}

// HasUpdated reports whether this resource has ever been updated since it
// was created with UnknownPast.
func (r *resourceBase) HasUpdated() bool { return r.event.sequence > 0 }

// Timestamped is implemented by every resource kind ([State], [Moment],
// [Resource]); it is the minimal surface HasUpdatedSince needs to compare
// two resources of possibly different value types.
type Timestamped interface {
	Event() Event
}

// HasUpdatedSince reports whether this resource was updated more recently
// than other.
func (r *resourceBase) HasUpdatedSince(other Timestamped) bool {
	return r.event.sequence > other.Event().sequence
}

// TraceEvent is the snapshot of Event as of the start of the current event:
// the previous event if this resource was updated this event, else the
// current event.
func (r *resourceBase) TraceEvent() Event {
	if r.JustUpdated() {
		return r.previousEvent
	}
	return r.event
}

// assertAdded panics with ErrResourceNotAdded if this resource's extent
// has not been admitted to the graph it claims to belong to. Demand and
// supply registration call this during behavior admission.
func (r *resourceBase) assertAdded() {
	if r.extent == nil || !r.extent.isAdded() {
		panic(ErrResourceNotAdded{Resource: r.name()})
	}
}
