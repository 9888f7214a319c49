// Package explain answers "why did the decision come out this way" for
// a single case against a built decision graph.
//
// The engine reads the graph exclusively through the graph.Store
// interface and never writes to it, so explanation requests are safe to
// run concurrently against a shared store and are structurally
// incapable of corrupting it. The one write path, Materialize, is a
// separate explicit operation that records a finished trace as a
// case-scoped subgraph.
//
// Explanation walks the rules producing the target attribute in
// precedence order. The first rule whose conditions all hold justifies
// the outcome; later producers of the same attribute are recorded as
// shadowed without being evaluated. Conditions over derived attributes
// recurse into the rules producing them, bounded by a visited set.
//
// Rendering is split from tracing: Render turns a Trace into prose and
// touches neither the store nor the case.
package explain
