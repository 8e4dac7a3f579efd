package bg

import "fmt"

// resourceCore holds the value bookkeeping shared by [State] and [Moment]:
// the current and previous value, layered on top of [resourceBase] for the
// edge/event bookkeeping that doesn't depend on the value type.
type resourceCore[T any] struct {
	resourceBase
	value         T
	previousValue T
}

func newResourceCore[T any](e *Extent, initial T, debugName string, transient bool) resourceCore[T] {
	return resourceCore[T]{
		resourceBase: newResourceBase(e, debugName, transient),
		value:        initial,
	}
}

// clearTransient implements resourceNode.clearTransient: for a transient
// (Moment) resource, the value is reset to its zero value after the event
// loop returns, per spec.md 4.2's clearTransient contract.
func (c *resourceCore[T]) clearTransient() {
	if !c.transient {
		return
	}
	var zero T
	c.value = zero
}

func (c *resourceCore[T]) validateUpdate() {
	g := c.graph
	if g.currentEvent() == nil {
		panic(ErrGraphMutationOutsideAction{Operation: fmt.Sprintf("update of resource %q", c.name())})
	}
	cur := g.currentBehavior
	switch {
	case c.supplier != nil && cur == c.supplier:
		return
	case c.supplier != nil && cur == nil:
		panic(ErrUpdatedOutsideBehavior{Resource: c.name()})
	case c.supplier != nil:
		panic(ErrUpdatedByNonSupplier{Resource: c.name(), Behavior: cur.DebugName()})
	case c.supplier == nil && cur == nil:
		return
	default:
		panic(ErrUpdatedByNonSupplier{Resource: c.name(), Behavior: cur.DebugName()})
	}
}

// rawForceUpdate applies a new value unconditionally: it captures the trace
// (previous value/event), stamps the current event, and schedules every
// subsequent behavior that isn't already guaranteed to run this event.
func (c *resourceCore[T]) rawForceUpdate(v T) {
	c.previousValue = c.value
	c.previousEvent = c.event
	c.value = v
	c.event = *c.graph.currentEvent()
	c.graph.resourceUpdated(c)
}

// Value is the current value of this resource.
func (c *resourceCore[T]) Value() T {
	c.graph.noteRead(c)
	return c.value
}

// TraceValue is the value as of the start of the current event: the
// previous value if this resource was updated this event, else the
// current value.
func (c *resourceCore[T]) TraceValue() T {
	c.graph.noteRead(c)
	if c.JustUpdated() {
		return c.previousValue
	}
	return c.value
}
