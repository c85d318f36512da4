// Package graph provides the general node/edge composition structure of the
// cardplay engine.
//
// # Overview
//
// A Graph wires cards together in an arbitrary directed topology. Unlike a
// stack (the restricted linear form, see the stack package), a graph may
// fan out, fan in, and even be transiently cyclic or disconnected while it
// is being edited. Validity is checked on demand with [Graph.Validate],
// never enforced per mutation.
//
// # Value Semantics
//
// Every mutator is pure: it returns a new Graph and never modifies its
// receiver. Undo/redo and diffing therefore reduce to plain value
// operations, with [Graph.Snapshot] as a deep copy:
//
//	g := graph.New(nil)
//	g, _ = g.AddNode(graph.NewNodeFor(osc))
//	g, _ = g.AddNode(graph.NewNodeFor(filter))
//	g, _ = g.Connect(a.ID, "out", b.ID, "in")
//
// # Compilation
//
// [Graph.Compile] runs Kahn's topological sort and yields an execution
// [Plan]; [Graph.ToCard] goes further and produces a single runnable card
// whose Process invokes each node exactly once in topological order. Both
// return nil for cyclic graphs - an expected editing-time outcome, not an
// error. A compiled card satisfies card.Card and can be re-embedded as a
// node of an outer graph, nesting to arbitrary depth.
//
// # Layout and Inspection
//
// [Graph.AutoLayout] assigns positions by longest-path layering so no edge
// points backward; [Graph.Minimap] projects the result into a proportional
// bounding box; [Graph.Inspect] reports per-node and per-edge diagnostics
// including adapter-path compatibility.
//
// # Concurrency
//
// Graph values are plain data; distinct values can be used freely from
// different goroutines. Sharing one value across goroutines is safe because
// mutators never modify their receiver.
package graph
