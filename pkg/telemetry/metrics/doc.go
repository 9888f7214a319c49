// Package metrics exposes Prometheus metrics for graph builds, cleanup
// runs, and explanation requests.
//
// A Collector owns its registry, so tests and embedders never collide
// on the global default registry. Handler serves the standard
// exposition format for scraping.
package metrics
