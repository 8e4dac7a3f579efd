package bg

// orderingState is the tri-color DFS marker used by the topological
// ordering pass (spec.md 4.6.1): Unordered is white, Ordering is gray (on
// the current DFS stack), Ordered is black. It is reset to Unordered at the
// start of every ordering pass; it does not persist across events the way
// Order does.
type orderingState uint8

const (
	orderingUnordered orderingState = iota
	orderingInProgress
	orderingOrdered
)

// Behavior is a runnable graph node: it demands some resources, supplies
// others, and runs a block that reads its demands and updates its
// supplies. Its Order is recomputed by the graph's topological ordering
// pass whenever its edges (or an upstream supplier's edges) change, and
// determines where it sits in the run queue.
type Behavior struct {
	graph  *Graph
	extent *Extent

	demands  map[resourceNode]struct{}
	supplies map[resourceNode]struct{}

	order         int
	orderingState orderingState

	enqueuedSequence   uint64
	lastUpdateSequence uint64
	removedSequence    uint64

	runBlock func()
	links    *DynamicLinks
	staticDemands  []resourceNode
	staticSupplies []resourceNode

	debugName string
	createdAt uint64 // tie-break for the priority queue and cycle reports
	heapIndex int

	// pendingDemands/pendingSupplies stage an edge-set replacement requested
	// via SetDemands/AddDemand/RemoveDemand/SetSupplies during the current
	// event. The graph applies them during the next structure phase and
	// clears the staged flag.
	pendingDemands      []resourceNode
	demandsStaged       bool
	pendingSupplies     []resourceNode
	suppliesStaged      bool
}

func newBehavior(e *Extent, demands, supplies []resourceNode, run func(), debugName string) *Behavior {
	b := &Behavior{
		graph:     e.graph,
		extent:    e,
		demands:   make(map[resourceNode]struct{}, len(demands)),
		supplies:  make(map[resourceNode]struct{}, len(supplies)),
		runBlock:  run,
		debugName: debugName,
		createdAt: e.graph.nextBehaviorSeq(),
		heapIndex: -1,
	}
	for _, d := range demands {
		b.demands[d] = struct{}{}
	}
	for _, s := range supplies {
		b.supplies[s] = struct{}{}
	}
	return b
}

// DebugName returns the static debug name given to this behavior at
// creation time, or a placeholder if none was given.
func (b *Behavior) DebugName() string {
	if b == nil {
		return "<nil behavior>"
	}
	if b.debugName != "" {
		return b.debugName
	}
	return "<unnamed behavior>"
}

// Graph returns the graph that owns this behavior.
func (b *Behavior) Graph() *Graph { return b.graph }

// Extent returns the extent that owns this behavior.
func (b *Behavior) Extent() *Extent { return b.extent }

// Order is this behavior's position in the topological order: every demand
// with a supplier is guaranteed to have a strictly lower order.
func (b *Behavior) Order() int { return b.order }

// Removed reports whether this behavior's extent has been removed from the
// graph. A removed behavior is inert: it will not run and its edges have
// been cleared, but it remains safe to hold a reference to.
func (b *Behavior) Removed() bool { return b.removedSequence != 0 }

func (b *Behavior) demandsSnapshot() []resourceNode {
	if b.demandsStaged {
		return append([]resourceNode(nil), b.pendingDemands...)
	}
	out := make([]resourceNode, 0, len(b.demands))
	for d := range b.demands {
		out = append(out, d)
	}
	return out
}

func (b *Behavior) suppliesSnapshot() []resourceNode {
	if b.suppliesStaged {
		return append([]resourceNode(nil), b.pendingSupplies...)
	}
	out := make([]resourceNode, 0, len(b.supplies))
	for s := range b.supplies {
		out = append(out, s)
	}
	return out
}

func (b *Behavior) assertMutable(operation string) {
	if b.graph.currentEvent() == nil {
		panic(ErrGraphMutationOutsideAction{Operation: operation})
	}
}

// SetDemands replaces this behavior's demand set. The change is staged and
// applied by the graph during the next structure phase (spec.md 4.6); it is
// not visible to other behaviors (or reflected in Order) until then.
func (b *Behavior) SetDemands(demands []resourceNode) {
	b.assertMutable("SetDemands on behavior " + b.DebugName())
	b.pendingDemands = append([]resourceNode(nil), demands...)
	b.demandsStaged = true
	b.graph.markModifiedDemands(b)
}

// AddDemand adds a single resource to this behavior's demand set.
func (b *Behavior) AddDemand(d resourceNode) {
	cur := b.demandsSnapshot()
	for _, existing := range cur {
		if existing == d {
			return
		}
	}
	b.SetDemands(append(cur, d))
}

// RemoveDemand removes a single resource from this behavior's demand set.
func (b *Behavior) RemoveDemand(d resourceNode) {
	cur := b.demandsSnapshot()
	out := cur[:0]
	for _, existing := range cur {
		if existing != d {
			out = append(out, existing)
		}
	}
	b.SetDemands(out)
}

// SetSupplies replaces this behavior's supply set. Like SetDemands, this is
// staged and applied during the next structure phase.
func (b *Behavior) SetSupplies(supplies []resourceNode) {
	b.assertMutable("SetSupplies on behavior " + b.DebugName())
	b.pendingSupplies = append([]resourceNode(nil), supplies...)
	b.suppliesStaged = true
	b.graph.markModifiedDemands(b)
}
