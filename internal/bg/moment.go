package bg

// Moment is a transient resource: it holds an optional value only during
// the event that updated it, and is cleared (reset to T's zero value)
// before the event loop returns control to the caller of Action.
type Moment[T any] struct {
	resourceCore[T]
}

// NewMoment creates a new transient resource owned by e.
func NewMoment[T any](e *Extent, debugName string) *Moment[T] {
	var zero T
	m := &Moment[T]{resourceCore: newResourceCore(e, zero, debugName, true)}
	e.addResource(m)
	return m
}

// Update fires this moment with T's zero value. Moments have no equality
// coalescing: every call schedules subsequents.
func (m *Moment[T]) Update() {
	m.validateUpdate()
	var zero T
	m.rawForceUpdate(zero)
}

// UpdateValue fires this moment carrying value v.
func (m *Moment[T]) UpdateValue(v T) {
	m.validateUpdate()
	m.rawForceUpdate(v)
}

// Resource is a plain, event-only resource: a pure dependency hook with no
// payload, used when a behavior needs to react to something happening
// without caring about an associated value. It is defined as a Moment
// carrying an empty struct so that it shares the same scheduling and
// clearing behavior as any other transient resource, without duplicating
// that bookkeeping.
type Resource = Moment[struct{}]

// NewResource creates a new plain resource owned by e.
func NewResource(e *Extent, debugName string) *Resource {
	return NewMoment[struct{}](e, debugName)
}
