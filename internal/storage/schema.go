package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"

	"github.com/Masterminds/semver/v3"
	"go.uber.org/zap"
)

const (
	// CurrentStorageVersion identifies the shape of the on-disk tables. A
	// database stamped with any other value is incompatible and must be
	// rebuilt from source.
	CurrentStorageVersion = 1

	metaKeyStorageVersion     = "storage_version"
	metaKeyApplicationVersion = "application_version"
)

// ApplicationVersion is the release version stamped into the meta table by
// SetVersion, distinct from the storage schema version. Embedding
// applications overwrite it at startup.
var ApplicationVersion = "0.1.0"

const createMetaTable = `
CREATE TABLE IF NOT EXISTS meta(
	id INTEGER,
	key TEXT,
	value TEXT,
	PRIMARY KEY(id)
);`

// Table creation statements in dependency order. Node and edge draw their
// identifiers from element; everything downstream cascades from there.
var createTableStatements = []string{
	`CREATE TABLE IF NOT EXISTS element(
		id INTEGER,
		PRIMARY KEY(id)
	);`,
	`CREATE TABLE IF NOT EXISTS node(
		id INTEGER NOT NULL,
		kind INTEGER NOT NULL,
		serialized_name TEXT NOT NULL DEFAULT '',
		definition_kind INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY(id),
		FOREIGN KEY(id) REFERENCES element(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS edge(
		id INTEGER NOT NULL,
		kind INTEGER NOT NULL,
		source_node_id INTEGER NOT NULL,
		target_node_id INTEGER NOT NULL,
		PRIMARY KEY(id),
		FOREIGN KEY(id) REFERENCES element(id) ON DELETE CASCADE,
		FOREIGN KEY(source_node_id) REFERENCES node(id) ON DELETE CASCADE,
		FOREIGN KEY(target_node_id) REFERENCES node(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS file(
		id INTEGER NOT NULL,
		path TEXT NOT NULL DEFAULT '',
		modification_time TIMESTAMP,
		line_count INTEGER NOT NULL DEFAULT 0,
		content TEXT NOT NULL DEFAULT '',
		PRIMARY KEY(id),
		FOREIGN KEY(id) REFERENCES node(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS local_symbol(
		id INTEGER NOT NULL,
		name TEXT NOT NULL,
		PRIMARY KEY(id),
		FOREIGN KEY(id) REFERENCES element(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS source_location(
		id INTEGER,
		element_id INTEGER,
		file_node_id INTEGER NOT NULL,
		start_line INTEGER NOT NULL,
		start_column INTEGER NOT NULL,
		end_line INTEGER NOT NULL,
		end_column INTEGER NOT NULL,
		kind INTEGER NOT NULL,
		PRIMARY KEY(id),
		FOREIGN KEY(element_id) REFERENCES element(id) ON DELETE CASCADE,
		FOREIGN KEY(file_node_id) REFERENCES node(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS component_access(
		id INTEGER,
		edge_id INTEGER NOT NULL,
		kind INTEGER NOT NULL,
		PRIMARY KEY(id),
		FOREIGN KEY(edge_id) REFERENCES edge(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS comment_location(
		id INTEGER,
		file_node_id INTEGER NOT NULL,
		start_line INTEGER NOT NULL,
		start_column INTEGER NOT NULL,
		end_line INTEGER NOT NULL,
		end_column INTEGER NOT NULL,
		PRIMARY KEY(id),
		FOREIGN KEY(file_node_id) REFERENCES node(id) ON DELETE CASCADE
	);`,
	`CREATE TABLE IF NOT EXISTS error(
		id INTEGER,
		message TEXT NOT NULL,
		fatal INTEGER NOT NULL,
		file_path TEXT NOT NULL DEFAULT '',
		line_number INTEGER NOT NULL DEFAULT 0,
		column_number INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY(id)
	);`,
	// Full-text index over node names, kept in sync by triggers.
	`CREATE VIRTUAL TABLE IF NOT EXISTS node_fts USING fts5(
		serialized_name,
		content='node',
		content_rowid='id'
	);`,
	`CREATE TRIGGER IF NOT EXISTS node_fts_insert AFTER INSERT ON node BEGIN
		INSERT INTO node_fts(rowid, serialized_name)
		VALUES (new.id, new.serialized_name);
	END;`,
	`CREATE TRIGGER IF NOT EXISTS node_fts_delete AFTER DELETE ON node BEGIN
		INSERT INTO node_fts(node_fts, rowid, serialized_name)
		VALUES ('delete', old.id, old.serialized_name);
	END;`,
}

// Drop statements in reverse dependency order, meta last.
var dropTableStatements = []string{
	`DROP TRIGGER IF EXISTS node_fts_delete;`,
	`DROP TRIGGER IF EXISTS node_fts_insert;`,
	`DROP TABLE IF EXISTS node_fts;`,
	`DROP TABLE IF EXISTS error;`,
	`DROP TABLE IF EXISTS comment_location;`,
	`DROP TABLE IF EXISTS component_access;`,
	`DROP TABLE IF EXISTS source_location;`,
	`DROP TABLE IF EXISTS local_symbol;`,
	`DROP TABLE IF EXISTS file;`,
	`DROP TABLE IF EXISTS edge;`,
	`DROP TABLE IF EXISTS node;`,
	`DROP TABLE IF EXISTS element;`,
	`DROP TABLE IF EXISTS meta;`,
}

// Setup creates all tables and triggers. It is idempotent and safe to call
// on an existing compatible database. Failure to create the meta table is
// fatal; remaining tables are created best-effort and logged, matching the
// store's degrade-to-empty error policy.
func (s *Store) Setup(ctx context.Context) error {
	if _, err := s.exec(ctx, "PRAGMA foreign_keys=ON"); err != nil {
		s.log.Error("failed to enable foreign keys", zap.Error(err))
	}

	if _, err := s.exec(ctx, createMetaTable); err != nil {
		return fmt.Errorf("failed to create meta table: %w", err)
	}

	for _, stmt := range createTableStatements {
		if _, err := s.exec(ctx, stmt); err != nil {
			s.log.Error("failed to create table", zap.Error(err))
		}
	}

	s.mode = ModeUnknown
	return nil
}

// Clear drops every table, including meta, and re-runs Setup. Used when the
// stored schema version does not match CurrentStorageVersion.
func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.exec(ctx, "PRAGMA foreign_keys=OFF"); err != nil {
		s.log.Error("failed to disable foreign keys", zap.Error(err))
	}
	for _, stmt := range dropTableStatements {
		if _, err := s.exec(ctx, stmt); err != nil {
			s.log.Error("failed to drop table", zap.Error(err))
		}
	}
	return s.Setup(ctx)
}

// IsEmpty reports whether the database carries no version stamps at all: no
// storage version and no application version. Presence is judged on the raw
// meta values, so a malformed stamp still marks the database as used and
// routes it through the incompatible-rebuild path instead of a re-setup.
func (s *Store) IsEmpty(ctx context.Context) bool {
	if s.metaValue(ctx, metaKeyStorageVersion) != "" {
		return false
	}
	return s.metaValue(ctx, metaKeyApplicationVersion) == ""
}

// IsIncompatible reports whether the stored schema version differs from the
// version this build expects. A missing stamp counts as incompatible, so a
// half-written database is rebuilt rather than mistaken for empty.
func (s *Store) IsIncompatible(ctx context.Context) bool {
	v := s.storageVersionStamp(ctx)
	return v == 0 || v != CurrentStorageVersion
}

// SetVersion writes both version stamps. Both keys are written together so
// a compatible database always carries a complete pair.
func (s *Store) SetVersion(ctx context.Context) error {
	if err := s.setMetaValue(ctx, metaKeyStorageVersion, strconv.Itoa(CurrentStorageVersion)); err != nil {
		return err
	}
	return s.setMetaValue(ctx, metaKeyApplicationVersion, ApplicationVersion)
}

// StoredApplicationVersion returns the release version that last stamped
// this database, or the empty string when absent or unparseable.
func (s *Store) StoredApplicationVersion(ctx context.Context) string {
	v := s.applicationVersionStamp(ctx)
	if v == nil {
		return ""
	}
	return v.String()
}

func (s *Store) storageVersionStamp(ctx context.Context) int {
	v := s.metaValue(ctx, metaKeyStorageVersion)
	if v == "" {
		return 0
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		s.log.Warn("malformed storage version stamp", zap.String("value", v))
		return 0
	}
	return n
}

// applicationVersionStamp returns the stored application version, or nil
// when absent or unparseable.
func (s *Store) applicationVersionStamp(ctx context.Context) *semver.Version {
	v := s.metaValue(ctx, metaKeyApplicationVersion)
	if v == "" {
		return nil
	}
	parsed, err := semver.NewVersion(v)
	if err != nil {
		s.log.Warn("malformed application version stamp", zap.String("value", v))
		return nil
	}
	return parsed
}

func (s *Store) hasTable(ctx context.Context, name string) bool {
	var found string
	err := s.querier().QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='table' AND name = ?", name).Scan(&found)
	if err == sql.ErrNoRows {
		return false
	}
	if err != nil {
		s.log.Error("failed to inspect schema", zap.Error(wrapEngineError(err)))
		return false
	}
	return found == name
}

// metaValue returns the value stored under key, or "" when the meta table
// or the key is absent. Engine failures are logged and degrade to "".
func (s *Store) metaValue(ctx context.Context, key string) string {
	if !s.hasTable(ctx, "meta") {
		return ""
	}
	var value string
	err := s.querier().QueryRowContext(ctx, "SELECT value FROM meta WHERE key = ?", key).Scan(&value)
	if err == sql.ErrNoRows {
		return ""
	}
	if err != nil {
		s.log.Error("failed to read meta value", zap.String("key", key), zap.Error(wrapEngineError(err)))
		return ""
	}
	return value
}

func (s *Store) setMetaValue(ctx context.Context, key, value string) error {
	_, err := s.exec(ctx,
		"INSERT OR REPLACE INTO meta(id, key, value) VALUES ((SELECT id FROM meta WHERE key = ?), ?, ?)",
		key, key, value)
	return err
}
