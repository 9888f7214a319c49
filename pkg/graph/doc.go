// Package graph maps a resolved decision model into a property graph
// and provides the store boundary the rest of the system builds on.
//
// # Store boundary
//
// The Store interface is a generic property-graph capability: upsert a
// node by identity, upsert a typed edge, fetch a node, query by pattern.
// Nothing in this package assumes a specific graph product. Two
// implementations are provided:
//
//   - MemoryStore: in-memory, for tests and ephemeral case subgraphs
//   - SQLiteStore: persistent single-file store (WAL mode, schema
//     versioning) for graphs that live across research sessions
//
// # Identity and idempotence
//
// Every entity is keyed by a deterministic identity derived from its
// qualified name: attributes as "model.name", rule sets and services as
// "model/name", rules as "ruleset/name", and conditions as the owning
// rule's identity plus "#ordinal". Building the same model twice is a
// no-op against an existing store: upserts overwrite properties but
// preserve identity and any externally-added edges, and the builder
// never deletes. Stale-entity removal is the explicit Cleanup operation,
// optionally run on a cron schedule by Scheduler.
package graph
