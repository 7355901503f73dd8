package storage

import (
	"context"
	"database/sql"
	"fmt"
)

// StorageMode names a query-serving scenario. Each secondary index is
// tagged with the set of modes under which it should exist: read-serving
// indices slow bulk writes, and write-serving indices are dead weight
// during interactive querying.
type StorageMode uint8

const (
	ModeUnknown StorageMode = 0
	ModeRead    StorageMode = 1 << 0
	ModeWrite   StorageMode = 1 << 1
	ModeClear   StorageMode = 1 << 2
)

// indexDef describes one secondary index and the modes it serves.
type indexDef struct {
	name    string
	table   string
	columns string
	modes   StorageMode
}

func (d indexDef) servesMode(m StorageMode) bool {
	return d.modes&m != 0
}

var storeIndices = []indexDef{
	{"node_serialized_name_index", "node", "serialized_name", ModeRead | ModeWrite},
	{"file_path_index", "file", "path", ModeRead | ModeWrite},
	{"local_symbol_name_index", "local_symbol", "name", ModeRead | ModeWrite},
	{"error_all_data_index", "error", "message, fatal, file_path, line_number, column_number", ModeRead | ModeWrite},
	{"edge_source_node_id_index", "edge", "source_node_id", ModeRead | ModeClear},
	{"edge_target_node_id_index", "edge", "target_node_id", ModeRead | ModeClear},
	{"source_location_element_id_index", "source_location", "element_id", ModeRead | ModeClear},
	{"source_location_file_node_id_index", "source_location", "file_node_id", ModeRead | ModeClear},
	{"comment_location_file_node_id_index", "comment_location", "file_node_id", ModeRead | ModeClear},
	{"component_access_edge_id_index", "component_access", "edge_id", ModeRead | ModeClear},
}

// SetMode transitions the index set to the given mode: indices tagged with
// the mode are created, all others dropped. A no-op when mode equals the
// current mode.
func (s *Store) SetMode(ctx context.Context, mode StorageMode) error {
	if mode == s.mode {
		return nil
	}
	for _, idx := range storeIndices {
		var err error
		if idx.servesMode(mode) {
			_, err = s.exec(ctx, fmt.Sprintf(
				"CREATE INDEX IF NOT EXISTS %s ON %s(%s)", idx.name, idx.table, idx.columns))
		} else {
			_, err = s.exec(ctx, fmt.Sprintf("DROP INDEX IF EXISTS %s", idx.name))
		}
		if err != nil {
			return fmt.Errorf("failed to transition index %s: %w", idx.name, err)
		}
	}
	s.mode = mode
	return nil
}

// Mode returns the StorageMode the index set was last transitioned to.
func (s *Store) Mode() StorageMode {
	return s.mode
}

// indexExists reports whether a named index is present in the schema.
func (s *Store) indexExists(ctx context.Context, name string) (bool, error) {
	var found string
	err := s.querier().QueryRowContext(ctx,
		"SELECT name FROM sqlite_master WHERE type='index' AND name = ?", name).Scan(&found)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, wrapEngineError(err)
	}
	return true, nil
}
