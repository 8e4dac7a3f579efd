package bg

// DynamicLinks is attached to a behavior at creation time to let its demand
// and/or supply edges change over time in response to "switch" resources,
// rather than being fixed forever. It is a pluggable callback attached to
// the behavior (spec.md 9's Design Notes call this out explicitly) rather
// than, say, a behavior subclass.
//
// The switch resources are automatically folded into the behavior's static
// demand set, so an update to any of them schedules the behavior; after the
// behavior's run block returns, the graph recomputes the dynamic portion of
// its demands/supplies and stages the change, the same way any other edge
// mutation from inside a run block is staged (spec.md 4.3, 4.6).
type DynamicLinks struct {
	demandSwitches []resourceNode
	supplySwitches []resourceNode

	dynamicDemands  func() []resourceNode
	dynamicSupplies func() []resourceNode
}

// DemandSwitches declares the resources that, when updated, should cause
// resources() to be re-run to compute this behavior's non-switch demands.
func (d *DynamicLinks) DemandSwitches(switches []resourceNode, resources func() []resourceNode) {
	d.demandSwitches = switches
	d.dynamicDemands = resources
}

// SupplySwitches is the supply-side analog of DemandSwitches.
func (d *DynamicLinks) SupplySwitches(switches []resourceNode, resources func() []resourceNode) {
	d.supplySwitches = switches
	d.dynamicSupplies = resources
}

func (d *DynamicLinks) allSwitches() []resourceNode {
	out := make([]resourceNode, 0, len(d.demandSwitches)+len(d.supplySwitches))
	out = append(out, d.demandSwitches...)
	out = append(out, d.supplySwitches...)
	return out
}

// relink recomputes b's demand and supply sets from its DynamicLinks (the
// switch resources plus whatever the dynamic callbacks currently report)
// and stages the result. Called by the graph immediately after a dynamic
// behavior's run block returns.
func (b *Behavior) relink() {
	links := b.links
	if links == nil {
		return
	}
	if links.dynamicDemands != nil {
		newDemands := append(append([]resourceNode(nil), b.staticDemands...), links.allSwitches()...)
		newDemands = append(newDemands, links.dynamicDemands()...)
		b.SetDemands(dedupeResources(newDemands))
	}
	if links.dynamicSupplies != nil {
		newSupplies := append(append([]resourceNode(nil), b.staticSupplies...), links.dynamicSupplies()...)
		b.SetSupplies(dedupeResources(newSupplies))
	}
}

func dedupeResources(in []resourceNode) []resourceNode {
	seen := make(map[resourceNode]struct{}, len(in))
	out := make([]resourceNode, 0, len(in))
	for _, r := range in {
		if r == nil {
			continue
		}
		if _, ok := seen[r]; ok {
			continue
		}
		seen[r] = struct{}{}
		out = append(out, r)
	}
	return out
}
