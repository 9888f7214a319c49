// Package source provides model document sources for the loader.
//
// A source is responsible for producing model documents and, where the
// backing medium supports it, watching for changes. The file source
// reads a directory of YAML documents and watches it with fsnotify so
// a long-running process can rebuild its graph when the model changes.
// The in-memory source backs tests.
package source
