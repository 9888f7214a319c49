// Package ast defines the in-memory representation of a decision model:
// data attributes, conditions, rules, rule sets, and services.
//
// A decision model is loaded from one or more model documents (see the
// parser package) and is immutable after load, with one exception: the
// resolver package fills in the Target fields of references. References
// between sub-models (a condition naming an attribute declared in another
// document) are carried as qualified names at load time and linked to
// their targets in a separate resolution pass, so the loader never needs
// to see all documents at once.
//
// All identity in the model is by qualified name ("model.name" for
// attributes, "model/name" for rule sets). Nothing in this package holds
// process-wide state; a *DecisionModel is passed explicitly through every
// call that needs one.
package ast
