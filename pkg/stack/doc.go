// Package stack provides the linear composition form of the cardplay
// engine: an ordered list of cards combined serially or in parallel, with
// per-entry bypass, solo and dry/wet mix state.
//
// A stack is the restricted counterpart of a graph (see the graph package).
// Every stack converts losslessly to a graph with [Stack.ToGraph]; the
// reverse direction, [FromGraph], succeeds only for graphs that form a
// single simple path and returns nil otherwise. [Stack.Compile] flattens a
// stack into one runnable card, so stacks nest inside stacks and graphs to
// arbitrary depth.
//
// Like graphs, stacks have value semantics: every mutator returns a new
// Stack, making snapshot, restore and [Compare] plain value operations.
package stack
