package bg

import (
	"fmt"
	"sort"
	"strings"

	"github.com/behaviorgraph/bg/internal/collections"
)

// behaviorSet is the graph's staged bookkeeping set (needsOrdering,
// modifiedDemandBehaviors) specialized to *Behavior. It's a defined type
// over collections.Set, a generic map-backed set, so construction goes
// through collections.NewSet while this package adds the
// add/remove/clear/slice operations the structure phase actually needs
// on top.
type behaviorSet collections.Set[*Behavior]

func newBehaviorSet() behaviorSet {
	return behaviorSet(collections.NewSet[*Behavior]())
}

func (s behaviorSet) add(b *Behavior) { s[b] = struct{}{} }

func (s behaviorSet) remove(b *Behavior) { delete(s, b) }

func (s behaviorSet) clear() {
	for b := range s {
		delete(s, b)
	}
}

func (s behaviorSet) slice() []*Behavior {
	out := make([]*Behavior, 0, len(s))
	for b := range s {
		out = append(out, b)
	}
	return out
}

// String renders the set's members sorted by debug name for deterministic
// logging. collections.Set's own String sorts by fmt's %v of the member,
// which for a *Behavior is its pointer address, not useful here — so this
// builds a name list instead of delegating to it.
func (s behaviorSet) String() string {
	names := make([]string, 0, len(s))
	for b := range s {
		names = append(names, b.DebugName())
	}
	sort.Strings(names)
	return fmt.Sprintf("{%s}", strings.Join(names, ", "))
}
