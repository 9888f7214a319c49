package graph

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "modernc.org/sqlite" // SQLite driver
)

// SQLiteConfig contains configuration for the SQLite graph store.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// MaxOpenConns is the maximum number of open connections.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/graph.db",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements the Store interface on a single-file SQLite
// database. Graphs built into it survive across research sessions;
// rebuilds upsert against existing identities.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore opens (or creates) a SQLite graph store and applies
// the schema.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}

	logger := slog.Default().With("component", "graph.sqlite")

	db, err := sql.Open("sqlite", config.Path)
	if err != nil {
		return nil, fmt.Errorf("open graph store: %w", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{db: db, config: config, logger: logger}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite graph store initialized",
		"path", config.Path,
		"wal_mode", config.WALMode,
	)

	return s, nil
}

func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		if _, err := s.db.Exec("PRAGMA journal_mode=WAL;"); err != nil {
			return fmt.Errorf("enable WAL: %w", err)
		}
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	if _, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs)); err != nil {
		return fmt.Errorf("set busy timeout: %w", err)
	}

	if _, err := s.db.Exec(Schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	if _, err := s.db.Exec(InsertSchemaVersion, SchemaVersion); err != nil {
		return fmt.Errorf("insert schema version: %w", err)
	}

	var version int
	if err := s.db.QueryRow(GetSchemaVersion).Scan(&version); err != nil && err != sql.ErrNoRows {
		return fmt.Errorf("get schema version: %w", err)
	}
	if version != SchemaVersion {
		return fmt.Errorf("schema version mismatch: expected %d, got %d", SchemaVersion, version)
	}

	return nil
}

// UpsertNode creates the node or overwrites its labels and properties.
// Existing edges are untouched, which is what makes rebuilds idempotent.
func (s *SQLiteStore) UpsertNode(ctx context.Context, identity string, labels []string, properties map[string]interface{}) (bool, error) {
	labelsJSON, err := json.Marshal(labels)
	if err != nil {
		return false, fmt.Errorf("marshal labels for %q: %w", identity, err)
	}
	propsJSON, err := json.Marshal(orEmpty(properties))
	if err != nil {
		return false, fmt.Errorf("marshal properties for %q: %w", identity, err)
	}

	var exists int
	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM nodes WHERE identity = ?", identity).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check node %q: %w", identity, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO nodes (identity, labels, properties) VALUES (?, ?, ?)
		ON CONFLICT(identity) DO UPDATE SET labels = excluded.labels, properties = excluded.properties`,
		identity, string(labelsJSON), string(propsJSON))
	if err != nil {
		return false, fmt.Errorf("upsert node %q: %w", identity, err)
	}

	return exists == 0, nil
}

// UpsertEdge creates the edge or overwrites its properties.
func (s *SQLiteStore) UpsertEdge(ctx context.Context, from, to string, edgeType EdgeType, properties map[string]interface{}) (bool, error) {
	propsJSON, err := json.Marshal(orEmpty(properties))
	if err != nil {
		return false, fmt.Errorf("marshal edge properties: %w", err)
	}

	var exists int
	err = s.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM edges WHERE from_identity = ? AND edge_type = ? AND to_identity = ?",
		from, string(edgeType), to).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("check edge %s-[%s]->%s: %w", from, edgeType, to, err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO edges (from_identity, to_identity, edge_type, properties) VALUES (?, ?, ?, ?)
		ON CONFLICT(from_identity, edge_type, to_identity) DO UPDATE SET properties = excluded.properties`,
		from, to, string(edgeType), string(propsJSON))
	if err != nil {
		return false, fmt.Errorf("upsert edge %s-[%s]->%s: %w", from, edgeType, to, err)
	}

	return exists == 0, nil
}

// Node fetches a node by identity, returning nil when absent.
func (s *SQLiteStore) Node(ctx context.Context, identity string) (*Node, error) {
	var labelsJSON, propsJSON string
	err := s.db.QueryRowContext(ctx,
		"SELECT labels, properties FROM nodes WHERE identity = ?", identity).
		Scan(&labelsJSON, &propsJSON)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("fetch node %q: %w", identity, err)
	}
	return decodeNode(identity, labelsJSON, propsJSON)
}

// Query returns matching nodes or edges in deterministic order.
func (s *SQLiteStore) Query(ctx context.Context, pattern Pattern) ([]Match, error) {
	if pattern.IsEdgeQuery() {
		return s.queryEdges(ctx, pattern)
	}
	return s.queryNodes(ctx, pattern)
}

func (s *SQLiteStore) queryNodes(ctx context.Context, pattern Pattern) ([]Match, error) {
	query := "SELECT identity, labels, properties FROM nodes"
	var args []interface{}
	if pattern.Identity != "" {
		query += " WHERE identity = ?"
		args = append(args, pattern.Identity)
	}
	query += " ORDER BY identity"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query nodes: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var identity, labelsJSON, propsJSON string
		if err := rows.Scan(&identity, &labelsJSON, &propsJSON); err != nil {
			return nil, fmt.Errorf("scan node row: %w", err)
		}
		node, err := decodeNode(identity, labelsJSON, propsJSON)
		if err != nil {
			return nil, err
		}
		// Label filtering happens here: labels are a JSON array, and the
		// store stays free of JSON1 so it works on any SQLite build.
		if pattern.Label != "" && !node.HasLabel(pattern.Label) {
			continue
		}
		matches = append(matches, Match{Node: node})
	}
	return matches, rows.Err()
}

func (s *SQLiteStore) queryEdges(ctx context.Context, pattern Pattern) ([]Match, error) {
	query := "SELECT from_identity, to_identity, edge_type, properties FROM edges WHERE 1=1"
	var args []interface{}
	if pattern.EdgeType != "" {
		query += " AND edge_type = ?"
		args = append(args, string(pattern.EdgeType))
	}
	if pattern.From != "" {
		query += " AND from_identity = ?"
		args = append(args, pattern.From)
	}
	if pattern.To != "" {
		query += " AND to_identity = ?"
		args = append(args, pattern.To)
	}
	query += " ORDER BY from_identity, edge_type, to_identity"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query edges: %w", err)
	}
	defer rows.Close()

	var matches []Match
	for rows.Next() {
		var from, to, edgeType, propsJSON string
		if err := rows.Scan(&from, &to, &edgeType, &propsJSON); err != nil {
			return nil, fmt.Errorf("scan edge row: %w", err)
		}
		props := make(map[string]interface{})
		if err := json.Unmarshal([]byte(propsJSON), &props); err != nil {
			return nil, fmt.Errorf("decode edge properties: %w", err)
		}
		matches = append(matches, Match{Edge: &Edge{
			From:       from,
			To:         to,
			Type:       EdgeType(edgeType),
			Properties: props,
		}})
	}
	return matches, rows.Err()
}

// DeleteNode removes a node and every edge incident to it.
func (s *SQLiteStore) DeleteNode(ctx context.Context, identity string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete of %q: %w", identity, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		"DELETE FROM edges WHERE from_identity = ? OR to_identity = ?", identity, identity); err != nil {
		return fmt.Errorf("delete edges of %q: %w", identity, err)
	}
	if _, err := tx.ExecContext(ctx,
		"DELETE FROM nodes WHERE identity = ?", identity); err != nil {
		return fmt.Errorf("delete node %q: %w", identity, err)
	}

	return tx.Commit()
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func decodeNode(identity, labelsJSON, propsJSON string) (*Node, error) {
	var labels []string
	if err := json.Unmarshal([]byte(labelsJSON), &labels); err != nil {
		return nil, fmt.Errorf("decode labels of %q: %w", identity, err)
	}
	props := make(map[string]interface{})
	if err := json.Unmarshal([]byte(propsJSON), &props); err != nil {
		return nil, fmt.Errorf("decode properties of %q: %w", identity, err)
	}
	return &Node{Identity: identity, Labels: labels, Properties: props}, nil
}

func orEmpty(props map[string]interface{}) map[string]interface{} {
	if props == nil {
		return map[string]interface{}{}
	}
	return props
}
