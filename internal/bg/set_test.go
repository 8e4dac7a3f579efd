package bg

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBehaviorSetAddRemove(t *testing.T) {
	s := newBehaviorSet()
	a := newTestBehavior(0, 1)
	b := newTestBehavior(0, 2)

	assert.NotContains(t, s.slice(), a)
	s.add(a)
	assert.Contains(t, s.slice(), a)
	assert.NotContains(t, s.slice(), b)

	s.remove(a)
	assert.NotContains(t, s.slice(), a)
}

func TestBehaviorSetClear(t *testing.T) {
	s := newBehaviorSet()
	s.add(newTestBehavior(0, 1))
	s.add(newTestBehavior(0, 2))
	assert.Len(t, s.slice(), 2)

	s.clear()
	assert.Empty(t, s.slice())
}

func TestBehaviorSetStringIsSortedAndDeterministic(t *testing.T) {
	s := newBehaviorSet()
	a := newTestBehavior(0, 1)
	a.debugName = "zeta"
	b := newTestBehavior(0, 2)
	b.debugName = "alpha"
	s.add(a)
	s.add(b)

	assert.Equal(t, "{alpha, zeta}", s.String())
}
