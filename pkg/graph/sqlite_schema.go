package graph

// SchemaVersion is the current graph store schema version.
const SchemaVersion = 1

// Schema creates the graph tables and indexes. Nodes are keyed by their
// deterministic identity; edges by the (from, type, to) triple. Labels
// and properties are stored as JSON so the store stays generic over
// entity classes.
const Schema = `
CREATE TABLE IF NOT EXISTS nodes (
	identity   TEXT PRIMARY KEY,
	labels     TEXT NOT NULL DEFAULT '[]',
	properties TEXT NOT NULL DEFAULT '{}'
);

CREATE TABLE IF NOT EXISTS edges (
	from_identity TEXT NOT NULL,
	to_identity   TEXT NOT NULL,
	edge_type     TEXT NOT NULL,
	properties    TEXT NOT NULL DEFAULT '{}',
	PRIMARY KEY (from_identity, edge_type, to_identity)
);

CREATE INDEX IF NOT EXISTS idx_edges_to ON edges(to_identity, edge_type);
CREATE INDEX IF NOT EXISTS idx_edges_type ON edges(edge_type);

CREATE TABLE IF NOT EXISTS schema_version (
	version    INTEGER PRIMARY KEY,
	applied_at TEXT NOT NULL DEFAULT (datetime('now'))
);
`

// InsertSchemaVersion records the schema version (idempotent).
const InsertSchemaVersion = `
INSERT OR IGNORE INTO schema_version (version) VALUES (?);
`

// GetSchemaVersion reads the highest applied schema version.
const GetSchemaVersion = `
SELECT MAX(version) FROM schema_version;
`
