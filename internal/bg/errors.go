package bg

import (
	"fmt"
	"strings"
)

// Each error below indicates a programmer mistake in how the graph was
// built or mutated, not a recoverable runtime condition: a small struct
// implementing error, panicked at the call site rather than returned,
// since there is no defined recovery path other than tearing the graph
// down. Use Recover in a top-level defer to convert one of these panics
// back into a plain error instead of crashing.

// ErrGraphMutationOutsideAction is raised when a behavior's edges, an
// extent's membership, or a resource's value is mutated while no event is
// in progress.
type ErrGraphMutationOutsideAction struct {
	Operation string
}

func (e ErrGraphMutationOutsideAction) Error() string {
	return fmt.Sprintf("bg: %s attempted outside an action", e.Operation)
}

// ErrSyncActionInsideEvent is raised when Graph.Action is called with
// requireSync true while an event is already in progress.
type ErrSyncActionInsideEvent struct{}

func (ErrSyncActionInsideEvent) Error() string {
	return "bg: synchronous action requested while an event is in progress"
}

// ErrMultipleSuppliers is raised when two behaviors are admitted (or
// edited) to claim the same resource as a supply simultaneously.
type ErrMultipleSuppliers struct {
	Resource string
	Existing string
	New      string
}

func (e ErrMultipleSuppliers) Error() string {
	return fmt.Sprintf("bg: resource %q already has supplier %q, cannot also be supplied by %q", e.Resource, e.Existing, e.New)
}

// ErrDependencyCycle is raised when the topological ordering pass
// encounters a behavior already on its own DFS stack.
type ErrDependencyCycle struct {
	// Members names the behaviors found on the DFS stack at the point the
	// cycle was detected. This is a superset of the true cycle (it includes
	// everything between the repeated node and the top of the stack), never
	// a subset.
	Members []string
}

func (e ErrDependencyCycle) Error() string {
	return fmt.Sprintf("bg: dependency cycle among behaviors: %s", strings.Join(e.Members, " -> "))
}

// ErrUpdatedByNonSupplier is raised when a resource is updated from inside
// a behavior's run block other than the resource's declared supplier.
type ErrUpdatedByNonSupplier struct {
	Resource string
	Behavior string
}

func (e ErrUpdatedByNonSupplier) Error() string {
	return fmt.Sprintf("bg: resource %q updated by behavior %q, which is not its supplier", e.Resource, e.Behavior)
}

// ErrUpdatedOutsideBehavior is raised when a resource that has a declared
// supplier is updated directly from an action block.
type ErrUpdatedOutsideBehavior struct {
	Resource string
}

func (e ErrUpdatedOutsideBehavior) Error() string {
	return fmt.Sprintf("bg: resource %q has a supplier and cannot be updated from an action block", e.Resource)
}

// ErrLeakedSideEffect is raised when Graph.SideEffect or Extent.SideEffect
// is called while no event is active, and the graph has
// AssertOnLeakedSideEffects enabled.
type ErrLeakedSideEffect struct {
	Name string
}

func (e ErrLeakedSideEffect) Error() string {
	return fmt.Sprintf("bg: side effect %q created outside any event", e.Name)
}

// ErrResourceNotAdded is raised when a behavior demands or supplies a
// resource whose owning extent has not (yet) been added to the graph.
type ErrResourceNotAdded struct {
	Resource string
}

func (e ErrResourceNotAdded) Error() string {
	return fmt.Sprintf("bg: resource %q belongs to an extent that is not in the graph", e.Resource)
}

// Recover converts one of this package's fatal-assertion panics (see above)
// into a plain error written to *errOut, for hosts that would rather log and
// exit cleanly than crash. Use it in a top-level defer around a call into
// the graph:
//
//	defer bg.Recover(&err)
//	graph.Action("...", func() { ... })
//
// Any other panic value is re-panicked unchanged.
func Recover(errOut *error) {
	r := recover()
	if r == nil {
		return
	}
	switch err := r.(type) {
	case ErrGraphMutationOutsideAction, ErrSyncActionInsideEvent, ErrMultipleSuppliers,
		ErrDependencyCycle, ErrUpdatedByNonSupplier, ErrUpdatedOutsideBehavior,
		ErrLeakedSideEffect, ErrResourceNotAdded:
		*errOut = err.(error)
	default:
		panic(r)
	}
}
