// Causeway turns tree-structured decision models into property
// knowledge graphs and explains decision outcomes for input cases.
//
// It loads YAML model documents (data attributes, ordered rule sets,
// services), resolves cross-model references, builds a persistent
// property graph with deterministic identities, and answers "why did
// this case get this outcome" with an ordered rule trace.
//
// Usage:
//
//	# Validate a model directory (load, resolve, health checks)
//	causeway validate models/
//
//	# Build or refresh the knowledge graph
//	causeway build models/
//
//	# Explain an outcome for a case
//	causeway explain models/ --case case.csv --target applicant.eligible
//
//	# Remove graph entities the model no longer contains
//	causeway cleanup models/
//
//	# Watch the model directory and rebuild on change
//	causeway watch models/
//
//	# Show version information
//	causeway version
package main

func main() {
	Execute()
}
