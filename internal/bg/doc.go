// Package bg implements a deterministic, topologically ordered dataflow
// runtime: clients declare resources (typed cells of state or event
// signals) and behaviors (computations that depend on some resources and
// supply others), and a [Graph] computes the transitive update closure of
// an external stimulus in dependency order, exactly once per resource per
// event, deferring side effects until propagation completes.
//
// The event loop is single-threaded and cooperative: all mutation happens
// on whatever goroutine currently holds the event loop, and a [Graph] does
// not serialize calls itself. A host driving a Graph from multiple
// goroutines must funnel action submissions through its own serialization
// (a single worker goroutine, a mutex, a channel) before calling into this
// package.
package bg
