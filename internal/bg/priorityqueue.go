package bg

import "container/heap"

// priorityQueue is the run phase's ready list: behaviors that need to run
// this event, ordered by Order (ties broken by creation sequence so that
// behaviors at the same order run in the order they were declared). It is
// "lazily resorted": inserting while the queue already holds entries whose
// Order may have just changed doesn't re-sort eagerly on every push, only
// when a pop is about to observe a dirty queue (spec.md 3.1).
type priorityQueue struct {
	items  []*Behavior
	dirty  bool
}

func newPriorityQueue() *priorityQueue {
	pq := &priorityQueue{}
	heap.Init(pq)
	return pq
}

// Len, Less, Swap, Push, Pop implement container/heap.Interface.

func (pq *priorityQueue) Len() int { return len(pq.items) }

func (pq *priorityQueue) Less(i, j int) bool {
	a, b := pq.items[i], pq.items[j]
	if a.order != b.order {
		return a.order < b.order
	}
	return a.createdAt < b.createdAt
}

func (pq *priorityQueue) Swap(i, j int) {
	pq.items[i], pq.items[j] = pq.items[j], pq.items[i]
	pq.items[i].heapIndex = i
	pq.items[j].heapIndex = j
}

func (pq *priorityQueue) Push(x any) {
	b := x.(*Behavior)
	b.heapIndex = len(pq.items)
	pq.items = append(pq.items, b)
}

func (pq *priorityQueue) Pop() any {
	old := pq.items
	n := len(old)
	b := old[n-1]
	old[n-1] = nil
	b.heapIndex = -1
	pq.items = old[:n-1]
	return b
}

// insert adds b to the queue if it isn't already present. Safe to call
// multiple times for the same behavior within an event; re-insertion is a
// no-op.
func (pq *priorityQueue) insert(b *Behavior) {
	if b.heapIndex >= 0 {
		// Already queued; its order may have changed since, so mark the
		// queue dirty rather than re-pushing a duplicate entry.
		pq.dirty = true
		return
	}
	heap.Push(pq, b)
}

// needsResort reports whether the ordering pass has changed any queued
// behavior's order since the last pop, requiring a full re-heapify before
// the next pop can trust heap invariants.
func (pq *priorityQueue) needsResort() bool { return pq.dirty }

func (pq *priorityQueue) resort() {
	heap.Init(pq)
	pq.dirty = false
}

// popLowest removes and returns the lowest-order queued behavior, resorting
// first if the ordering pass has dirtied the heap. Returns nil, false if the
// queue is empty.
func (pq *priorityQueue) popLowest() (*Behavior, bool) {
	if pq.dirty {
		pq.resort()
	}
	if len(pq.items) == 0 {
		return nil, false
	}
	return heap.Pop(pq).(*Behavior), true
}

func (pq *priorityQueue) empty() bool { return len(pq.items) == 0 }

// markDirty flags that some queued behavior's order may be stale, forcing a
// resort before the next pop. Called by the ordering pass after it
// recomputes orders.
func (pq *priorityQueue) markDirty() { pq.dirty = true }
