// Package lint runs health checks over a resolved decision model.
//
// The checks are reachability and usage diagnostics: attributes no rule
// or service ever assigns, attributes nothing reads, service inputs
// with no rule path to any service output, and service outputs no input
// can reach. Findings are warnings, never errors: a model that lints
// dirty still loads, builds, and explains.
package lint
