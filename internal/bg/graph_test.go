package bg

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateUpdateCoalescesEqualValues(t *testing.T) {
	g := NewGraph()
	e := NewExtent(g, "e")
	s := NewState(e, 0, "s")
	ran := 0
	e.NewBehavior([]Node{s}, nil, func() { ran++ }, "b")
	g.Action("add", func() { e.AddToGraph() })

	g.Action("same value", func() { s.UpdateValue(0) })
	assert.Equal(t, 0, ran, "behavior should not run when the new value equals the old one")

	g.Action("new value", func() { s.UpdateValue(1) })
	assert.Equal(t, 1, ran)

	g.Action("force", func() { s.UpdateValueForce(1) })
	assert.Equal(t, 2, ran, "UpdateValueForce bypasses equality coalescing")
}

func TestMomentNeverCoalesces(t *testing.T) {
	g := NewGraph()
	e := NewExtent(g, "e")
	m := NewMoment[int](e, "m")
	ran := 0
	e.NewBehavior([]Node{m}, nil, func() { ran++ }, "b")
	g.Action("add", func() { e.AddToGraph() })

	g.Action("fire 1", func() { m.UpdateValue(5) })
	g.Action("fire 2", func() { m.UpdateValue(5) })
	assert.Equal(t, 2, ran, "every moment update schedules subsequents, regardless of value")
}

func TestMomentClearsAfterEvent(t *testing.T) {
	g := NewGraph()
	e := NewExtent(g, "e")
	m := NewMoment[int](e, "m")
	g.Action("add", func() { e.AddToGraph() })

	g.Action("fire", func() { m.UpdateValue(7) })
	assert.Equal(t, 0, m.Value(), "a moment's value is cleared once the event that set it ends")
}

func TestBehaviorOrderFollowsDependencyChain(t *testing.T) {
	g := NewGraph()
	e := NewExtent(g, "e")
	a := NewState(e, 0, "a")
	b := NewState(e, 0, "b")
	c := NewState(e, 0, "c")

	var order []string
	bc := e.NewBehavior([]Node{b}, []Node{c}, func() { order = append(order, "b->c"); c.UpdateValue(b.Value()) }, "b->c")
	ab := e.NewBehavior([]Node{a}, []Node{b}, func() { order = append(order, "a->b"); b.UpdateValue(a.Value()) }, "a->b")
	_ = bc
	_ = ab

	g.Action("add", func() { e.AddToGraph() })
	g.Action("update a", func() { a.UpdateValue(42) })

	require.Equal(t, []string{"a->b", "b->c"}, order, "a behavior must run after every supplier of its demands")
	assert.Equal(t, 42, c.Value())
	assert.True(t, ab.Order() < bc.Order())
}

func TestDependencyCycleIsRejected(t *testing.T) {
	g := NewGraph()
	e := NewExtent(g, "e")
	x := NewState(e, 0, "x")
	y := NewState(e, 0, "y")

	e.NewBehavior([]Node{x}, []Node{y}, func() { y.UpdateValue(x.Value() + 1) }, "x->y")
	e.NewBehavior([]Node{y}, []Node{x}, func() { x.UpdateValue(y.Value() + 1) }, "y->x")

	var err error
	func() {
		defer Recover(&err)
		g.Action("add", func() { e.AddToGraph() })
	}()
	require.Error(t, err)
	require.IsType(t, ErrDependencyCycle{}, err)

	// Member order depends on which node the DFS happened to start from,
	// not on anything callers should rely on, so compare as sets.
	got := err.(ErrDependencyCycle).Members
	want := []string{"x->y", "y->x"}
	if diff := cmp.Diff(want, got, cmpopts.SortSlices(func(a, b string) bool { return a < b })); diff != "" {
		t.Errorf("cycle members mismatch (-want +got):\n%s", diff)
	}
}

func TestUpdateBySupplierOnlyIsEnforced(t *testing.T) {
	g := NewGraph()
	e := NewExtent(g, "e")
	s := NewState(e, 0, "s")
	e.NewBehavior(nil, []Node{s}, func() {}, "supplier")
	g.Action("add", func() { e.AddToGraph() })

	var err error
	func() {
		defer Recover(&err)
		g.Action("bad write", func() { s.UpdateValue(1) })
	}()
	require.Error(t, err)
	assert.IsType(t, ErrUpdatedOutsideBehavior{}, err)
}

func TestUpdateByNonSupplierIsEnforced(t *testing.T) {
	g := NewGraph()
	e := NewExtent(g, "e")
	s := NewState(e, 0, "s")
	e.NewBehavior(nil, []Node{s}, func() {}, "supplier")
	trigger := NewResource(e, "trigger")
	e.NewBehavior([]Node{trigger}, nil, func() { s.UpdateValue(9) }, "interloper")
	g.Action("add", func() { e.AddToGraph() })

	var err error
	func() {
		defer Recover(&err)
		g.Action("bad write", func() { trigger.Update() })
	}()
	require.Error(t, err)
	assert.IsType(t, ErrUpdatedByNonSupplier{}, err)
}

func TestMultipleSuppliersIsRejected(t *testing.T) {
	g := NewGraph()
	e := NewExtent(g, "e")
	s := NewState(e, 0, "s")
	e.NewBehavior(nil, []Node{s}, func() {}, "first")
	e.NewBehavior(nil, []Node{s}, func() {}, "second")

	var err error
	func() {
		defer Recover(&err)
		g.Action("add", func() { e.AddToGraph() })
	}()
	require.Error(t, err)
	assert.IsType(t, ErrMultipleSuppliers{}, err)
}

func TestMutationOutsideActionPanics(t *testing.T) {
	g := NewGraph()
	e := NewExtent(g, "e")
	s := NewState(e, 0, "s")
	_ = s

	var err error
	func() {
		defer Recover(&err)
		e.AddToGraph()
	}()
	require.Error(t, err)
	assert.IsType(t, ErrGraphMutationOutsideAction{}, err)
}

func TestSyncActionInsideEventPanics(t *testing.T) {
	g := NewGraph()
	e := NewExtent(g, "e")
	g.Action("add", func() { e.AddToGraph() })

	var err error
	func() {
		defer Recover(&err)
		g.Action("outer", func() {
			g.Action("nested", func() {})
		})
	}()
	require.Error(t, err)
	assert.IsType(t, ErrSyncActionInsideEvent{}, err)
}

func TestActionAsyncQueuesDuringSideEffect(t *testing.T) {
	g := NewGraph()
	e := NewExtent(g, "e")
	trigger := NewResource(e, "trigger")
	done := NewState(e, false, "done")

	e.NewBehavior([]Node{trigger}, nil, func() {
		e.SideEffect("schedule completion", func() {
			g.ActionAsync("complete", func() { done.UpdateValue(true) })
		})
	}, "trigger handler")

	g.Action("add", func() { e.AddToGraph() })
	g.Action("fire", func() { trigger.Update() })

	assert.True(t, done.Value())
}

func TestDynamicDemandSwitch(t *testing.T) {
	g := NewGraph()
	e := NewExtent(g, "e")
	useA := NewState(e, true, "useA")
	a := NewState(e, 1, "a")
	b := NewState(e, 2, "b")
	out := NewState(e, 0, "out")

	e.NewDynamicBehavior(
		[]Node{e.Added()}, []Node{out},
		func(links *DynamicLinks) {
			links.DemandSwitches([]Node{useA}, func() []Node {
				if useA.Value() {
					return []Node{a}
				}
				return []Node{b}
			})
		},
		func() {
			if useA.Value() {
				out.UpdateValue(a.Value())
			} else {
				out.UpdateValue(b.Value())
			}
		},
		"dynamicDemand",
	)

	g.Action("add", func() { e.AddToGraph() })
	assert.Equal(t, 1, out.Value())

	g.Action("switch", func() { useA.UpdateValue(false) })
	assert.Equal(t, 2, out.Value())

	g.Action("update b", func() { b.UpdateValue(20) })
	assert.Equal(t, 20, out.Value(), "after the switch flips, the behavior should demand b, not a")
}

func TestRemovedBehaviorStopsRunning(t *testing.T) {
	g := NewGraph()
	root := NewExtent(g, "root")
	g.Action("add root", func() { root.AddToGraph() })

	e := NewExtent(g, "child")
	trigger := NewResource(e, "trigger")
	ran := 0
	e.NewBehavior([]Node{trigger}, nil, func() { ran++ }, "handler")

	g.Action("add child", func() { e.AddToGraph() })
	g.Action("fire", func() { trigger.Update() })
	assert.Equal(t, 1, ran)

	g.Action("remove", func() { e.RemoveFromGraph() })
	g.Action("fire again", func() { trigger.Update() })
	assert.Equal(t, 1, ran, "a removed behavior must not run again")
}

func TestResourceNotAddedIsRejected(t *testing.T) {
	g := NewGraph()
	unadded := NewExtent(g, "unadded") // never added to the graph
	s := NewState(unadded, 0, "s")

	other := NewExtent(g, "other")
	other.NewBehavior([]Node{s}, nil, func() {}, "demandsUnaddedResource")

	var err error
	func() {
		defer Recover(&err)
		g.Action("add other", func() { other.AddToGraph() })
	}()
	require.Error(t, err)
	assert.IsType(t, ErrResourceNotAdded{}, err)
}

func TestExtentAddedFiresOnce(t *testing.T) {
	g := NewGraph()
	e := NewExtent(g, "e")
	fired := 0
	e.NewBehavior([]Node{e.Added()}, nil, func() { fired++ }, "onAdded")

	g.Action("add", func() { e.AddToGraph() })
	assert.Equal(t, 1, fired)

	g.Action("unrelated", func() {})
	assert.Equal(t, 1, fired, "Added fires exactly once, the event the extent was admitted")
}

func TestLastEventSurvivesActionReturning(t *testing.T) {
	g := NewGraph()

	_, ok := g.CurrentEvent()
	assert.False(t, ok, "no event has run yet")
	assert.Equal(t, UnknownPast, g.LastEvent())

	g.Action("first", func() {})
	first := g.LastEvent()
	assert.Equal(t, "first", first.Impulse())

	_, ok = g.CurrentEvent()
	assert.False(t, ok, "no event is in progress once Action has returned")

	g.Action("second", func() {})
	second := g.LastEvent()
	assert.Equal(t, "second", second.Impulse())
	assert.True(t, second.HappenedSince(first.Sequence()))
}

func TestCurrentBehaviorIsSetDuringRunAndClearedAfter(t *testing.T) {
	g := NewGraph()
	e := NewExtent(g, "e")
	x := NewState(e, 0, "x")

	var observed *Behavior
	b := e.NewBehavior([]Node{e.Added()}, []Node{x}, func() {
		observed = g.CurrentBehavior()
	}, "recordsCurrentBehavior")

	assert.Nil(t, g.CurrentBehavior())
	g.Action("add", func() { e.AddToGraph() })
	assert.Same(t, b, observed)
	assert.Nil(t, g.CurrentBehavior(), "cleared once the event ends")
}

func TestCurrentEventResourceUpdatesEveryEvent(t *testing.T) {
	g := NewGraph()
	e := NewExtent(g, "e")

	runs := 0
	var seenImpulse string
	e.NewBehavior([]Node{g.CurrentEventResource()}, nil, func() {
		runs++
		seenImpulse = g.CurrentEventResource().Value().Impulse()
	}, "watchesCurrentEvent")

	g.Action("add", func() { e.AddToGraph() })
	assert.Equal(t, 1, runs, "admission updates currentEventResource, so the watcher runs immediately")
	assert.Equal(t, "add", seenImpulse)

	g.Action("unrelated", func() {})
	assert.Equal(t, 2, runs, "currentEventResource is force-updated every event")
	assert.Equal(t, "unrelated", seenImpulse)
}
