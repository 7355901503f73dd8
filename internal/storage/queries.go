package storage

import (
	"context"
	"database/sql"

	"codegraph/pkg/types"
)

// Point lookups return (nil, nil) when nothing matches; absence is not an
// error. A non-nil error always means the engine failed.

// GetNodeByID fetches a single node by identifier.
func (s *Store) GetNodeByID(ctx context.Context, id int64) (*Node, error) {
	var n Node
	err := s.querier().QueryRowContext(ctx,
		"SELECT id, kind, serialized_name, definition_kind FROM node WHERE id = ?", id).
		Scan(&n.ID, &n.Kind, &n.SerializedName, &n.DefinitionKind)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapEngineError(err)
	}
	return &n, nil
}

// GetNodeBySerializedName fetches a node by its serialized qualified name.
func (s *Store) GetNodeBySerializedName(ctx context.Context, serializedName string) (*Node, error) {
	var n Node
	err := s.querier().QueryRowContext(ctx,
		"SELECT id, kind, serialized_name, definition_kind FROM node WHERE serialized_name = ?", serializedName).
		Scan(&n.ID, &n.Kind, &n.SerializedName, &n.DefinitionKind)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapEngineError(err)
	}
	return &n, nil
}

// GetNodesByIDs fetches the nodes whose identifiers are in ids; missing
// identifiers are simply absent from the result.
func (s *Store) GetNodesByIDs(ctx context.Context, ids []int64) ([]Node, error) {
	nodes := []Node{}
	if len(ids) == 0 {
		return nodes, nil
	}
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	rows, err := s.querier().QueryContext(ctx,
		"SELECT id, kind, serialized_name, definition_kind FROM node WHERE id IN ("+placeholders(len(ids))+")",
		args...)
	if err != nil {
		return nil, wrapEngineError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var n Node
		if err := rows.Scan(&n.ID, &n.Kind, &n.SerializedName, &n.DefinitionKind); err != nil {
			return nil, wrapEngineError(err)
		}
		nodes = append(nodes, n)
	}
	return nodes, wrapEngineError(rows.Err())
}

// GetEdgeByID fetches a single edge by identifier.
func (s *Store) GetEdgeByID(ctx context.Context, id int64) (*Edge, error) {
	var e Edge
	err := s.querier().QueryRowContext(ctx,
		"SELECT id, kind, source_node_id, target_node_id FROM edge WHERE id = ?", id).
		Scan(&e.ID, &e.Kind, &e.SourceNodeID, &e.TargetNodeID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapEngineError(err)
	}
	return &e, nil
}

// GetEdgesBySourceID fetches all edges originating at the given node.
func (s *Store) GetEdgesBySourceID(ctx context.Context, sourceNodeID int64) ([]Edge, error) {
	return s.edgesWhere(ctx, "source_node_id = ?", sourceNodeID)
}

// GetEdgesByTargetID fetches all edges pointing at the given node.
func (s *Store) GetEdgesByTargetID(ctx context.Context, targetNodeID int64) ([]Edge, error) {
	return s.edgesWhere(ctx, "target_node_id = ?", targetNodeID)
}

func (s *Store) edgesWhere(ctx context.Context, cond string, args ...interface{}) ([]Edge, error) {
	edges := []Edge{}
	rows, err := s.querier().QueryContext(ctx,
		"SELECT id, kind, source_node_id, target_node_id FROM edge WHERE "+cond, args...)
	if err != nil {
		return nil, wrapEngineError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var e Edge
		if err := rows.Scan(&e.ID, &e.Kind, &e.SourceNodeID, &e.TargetNodeID); err != nil {
			return nil, wrapEngineError(err)
		}
		edges = append(edges, e)
	}
	return edges, wrapEngineError(rows.Err())
}

// GetFileByPath fetches a stored file by its path.
func (s *Store) GetFileByPath(ctx context.Context, path string) (*File, error) {
	var f File
	err := s.querier().QueryRowContext(ctx,
		"SELECT id, path, modification_time, line_count, content FROM file WHERE path = ?", path).
		Scan(&f.ID, &f.Path, &f.ModificationTime, &f.LineCount, &f.Content)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapEngineError(err)
	}
	return &f, nil
}

// GetFileByID fetches a stored file by its node identifier.
func (s *Store) GetFileByID(ctx context.Context, id int64) (*File, error) {
	var f File
	err := s.querier().QueryRowContext(ctx,
		"SELECT id, path, modification_time, line_count, content FROM file WHERE id = ?", id).
		Scan(&f.ID, &f.Path, &f.ModificationTime, &f.LineCount, &f.Content)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapEngineError(err)
	}
	return &f, nil
}

// GetLocalSymbolByName fetches a local symbol by its deduplication name.
func (s *Store) GetLocalSymbolByName(ctx context.Context, name string) (*LocalSymbol, error) {
	var l LocalSymbol
	err := s.querier().QueryRowContext(ctx,
		"SELECT id, name FROM local_symbol WHERE name = ?", name).Scan(&l.ID, &l.Name)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapEngineError(err)
	}
	return &l, nil
}

// GetComponentAccessByEdgeID fetches the access specifier recorded for an
// edge, if any.
func (s *Store) GetComponentAccessByEdgeID(ctx context.Context, edgeID int64) (*ComponentAccess, error) {
	var a ComponentAccess
	err := s.querier().QueryRowContext(ctx,
		"SELECT id, edge_id, kind FROM component_access WHERE edge_id = ?", edgeID).
		Scan(&a.ID, &a.EdgeID, &a.Kind)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, wrapEngineError(err)
	}
	return &a, nil
}

// GetTokenLocationsForFile fetches the token-kind source locations in the
// named file. An unknown path returns an empty result without querying
// further.
func (s *Store) GetTokenLocationsForFile(ctx context.Context, path string) ([]SourceLocation, error) {
	file, err := s.GetFileByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return []SourceLocation{}, nil
	}
	return s.locationsWhere(ctx, "file_node_id = ? AND kind = ?", file.ID, int(types.LocationToken))
}

// GetSourceLocationsForElement fetches every location attributed to an
// element, across all files.
func (s *Store) GetSourceLocationsForElement(ctx context.Context, elementID int64) ([]SourceLocation, error) {
	return s.locationsWhere(ctx, "element_id = ?", elementID)
}

func (s *Store) locationsWhere(ctx context.Context, cond string, args ...interface{}) ([]SourceLocation, error) {
	locations := []SourceLocation{}
	rows, err := s.querier().QueryContext(ctx,
		`SELECT id, element_id, file_node_id, start_line, start_column, end_line, end_column, kind
		 FROM source_location WHERE `+cond, args...)
	if err != nil {
		return nil, wrapEngineError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var l SourceLocation
		var element sql.NullInt64
		if err := rows.Scan(&l.ID, &element, &l.FileNodeID,
			&l.StartLine, &l.StartColumn, &l.EndLine, &l.EndColumn, &l.Kind); err != nil {
			return nil, wrapEngineError(err)
		}
		if element.Valid {
			l.ElementID = element.Int64
		}
		locations = append(locations, l)
	}
	return locations, wrapEngineError(rows.Err())
}

// GetCommentLocationsForFile fetches the comment spans recorded for the
// named file, empty when the path is unknown.
func (s *Store) GetCommentLocationsForFile(ctx context.Context, path string) ([]CommentLocation, error) {
	comments := []CommentLocation{}
	file, err := s.GetFileByPath(ctx, path)
	if err != nil {
		return nil, err
	}
	if file == nil {
		return comments, nil
	}
	rows, err := s.querier().QueryContext(ctx,
		`SELECT id, file_node_id, start_line, start_column, end_line, end_column
		 FROM comment_location WHERE file_node_id = ?`, file.ID)
	if err != nil {
		return nil, wrapEngineError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var c CommentLocation
		if err := rows.Scan(&c.ID, &c.FileNodeID, &c.StartLine, &c.StartColumn, &c.EndLine, &c.EndColumn); err != nil {
			return nil, wrapEngineError(err)
		}
		comments = append(comments, c)
	}
	return comments, wrapEngineError(rows.Err())
}

// GetErrors fetches all recorded collection diagnostics.
func (s *Store) GetErrors(ctx context.Context) ([]StorageError, error) {
	errs := []StorageError{}
	rows, err := s.querier().QueryContext(ctx,
		"SELECT id, message, fatal, file_path, line_number, column_number FROM error")
	if err != nil {
		return nil, wrapEngineError(err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var e StorageError
		if err := rows.Scan(&e.ID, &e.Message, &e.Fatal, &e.FilePath, &e.LineNumber, &e.ColumnNumber); err != nil {
			return nil, wrapEngineError(err)
		}
		errs = append(errs, e)
	}
	return errs, wrapEngineError(rows.Err())
}

// Aggregate counts.

func (s *Store) NodeCount(ctx context.Context) (int, error) {
	return s.scalarInt(ctx, "SELECT COUNT(*) FROM node")
}

func (s *Store) EdgeCount(ctx context.Context) (int, error) {
	return s.scalarInt(ctx, "SELECT COUNT(*) FROM edge")
}

func (s *Store) FileCount(ctx context.Context) (int, error) {
	return s.scalarInt(ctx, "SELECT COUNT(*) FROM file")
}

// FileLOCCount sums the precomputed line counts of all stored files.
func (s *Store) FileLOCCount(ctx context.Context) (int, error) {
	return s.scalarInt(ctx, "SELECT COALESCE(SUM(line_count), 0) FROM file")
}

func (s *Store) SourceLocationCount(ctx context.Context) (int, error) {
	return s.scalarInt(ctx, "SELECT COUNT(*) FROM source_location")
}

func (s *Store) ErrorCount(ctx context.Context) (int, error) {
	return s.scalarInt(ctx, "SELECT COUNT(*) FROM error")
}
