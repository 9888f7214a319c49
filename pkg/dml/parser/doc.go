// Package parser loads decision model documents into an ast.DecisionModel.
//
// Model documents are YAML, one document per sub-model, each declaring
// its kind (data, rules, or service). The parser consumes the documents
// as generic trees of typed nodes via yaml.Node, preserving line numbers
// for error reporting and preserving source order: a rule's position in
// its document is exactly its evaluation precedence.
//
// Loading is deliberately tolerant of unresolved cross-document
// references, such as a condition naming an attribute declared in a
// different document. The loader records such references by qualified
// name and leaves linking to the resolver package. Structural problems (a rule
// without a consequence, a condition without an operator, an attribute
// without a type) and duplicate attribute definitions are fatal to the
// model and are accumulated into an errors.ErrorList, never returned
// one at a time.
package parser
