package bg

import "sort"

// runOrderingPass recomputes Order for every behavior reachable from
// needsOrdering, via a depth-first walk of the demand/supplier chain
// (spec.md 4.6.1). Order is the length of the longest supplier chain
// leading to a behavior: a behavior with no demand that has a supplier gets
// order 0, the same fixed order the graph's synthetic mainNode is given at
// construction (see Graph.initRoot); otherwise order is one more than the
// highest order among its demands' suppliers, so a behavior demanding
// Graph.currentEventResource lands at order 1 or higher.
//
// orderingState is reset to white (Unordered) for every behavior the graph
// knows about before the walk starts, since the tri-color marks from a
// previous pass don't carry meaning here: only order itself persists across
// events. A behavior goes gray (InProgress) when the walk enters it and
// black (Ordered) when it leaves; revisiting a gray behavior is a
// dependency cycle, reported with every behavior still on the DFS stack
// from the cycle's first member onward.
func (g *Graph) runOrderingPass(needsOrdering []*Behavior) error {
	for _, b := range g.allBehaviors {
		b.orderingState = orderingUnordered
	}

	sorted := append([]*Behavior(nil), needsOrdering...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].createdAt < sorted[j].createdAt })

	var stack []*Behavior
	var cycleErr error

	var visit func(b *Behavior) int
	visit = func(b *Behavior) int {
		switch b.orderingState {
		case orderingOrdered:
			return b.order
		case orderingInProgress:
			start := 0
			for i, s := range stack {
				if s == b {
					start = i
					break
				}
			}
			members := append([]*Behavior(nil), stack[start:]...)
			names := make([]string, 0, len(members))
			for _, m := range members {
				names = append(names, m.DebugName())
			}
			cycleErr = ErrDependencyCycle{Members: names}
			return b.order
		}

		b.orderingState = orderingInProgress
		stack = append(stack, b)

		maxOrder := -1
		for d := range b.demands {
			if cycleErr != nil {
				break
			}
			supplier := d.supplierOf()
			if supplier == nil || supplier.Removed() {
				continue
			}
			so := visit(supplier)
			if cycleErr != nil {
				break
			}
			if so > maxOrder {
				maxOrder = so
			}
		}

		stack = stack[:len(stack)-1]
		b.order = maxOrder + 1
		b.orderingState = orderingOrdered
		return b.order
	}

	for _, b := range sorted {
		if cycleErr != nil {
			break
		}
		if b.Removed() {
			continue
		}
		visit(b)
	}
	return cycleErr
}
