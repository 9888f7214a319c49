// Package resolver links dangling references in a loaded decision model.
//
// The loader records cross-document references (condition to attribute,
// rule to rule, rule to service) by qualified name only. Resolve walks
// every reference and fills in its target via qualified-name lookup.
// References that cannot be matched are collected into a single
// UnresolvedReferenceError listing every offender, because a model
// author wants all resolution failures in one pass.
//
// Resolution only fills target pointers; it never alters names,
// positions, or structure, and resolving an already-resolved model is a
// no-op. There is no shared registry: the model to resolve is passed
// explicitly.
package resolver
