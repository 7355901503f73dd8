package storage

import (
	"context"
	"database/sql"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"
)

// Node is a symbol or file in the graph. Kind and DefinitionKind are
// caller-supplied tags; the store persists and filters on them without
// interpreting their meaning.
type Node struct {
	ID             int64
	Kind           int
	SerializedName string
	DefinitionKind int
}

// Edge is a typed directed relationship between two nodes.
type Edge struct {
	ID           int64
	Kind         int
	SourceNodeID int64
	TargetNodeID int64
}

// File is a node specialization holding the full text of a source file.
type File struct {
	ID               int64
	Path             string
	ModificationTime time.Time
	LineCount        int
	Content          string
}

// LocalSymbol is a name-scoped symbol, deduplicated by name.
type LocalSymbol struct {
	ID   int64
	Name string
}

// SourceLocation is an inclusive span inside a file, attributed to the
// element it marks. ElementID is zero for locations not tied to an element.
type SourceLocation struct {
	ID          int64
	ElementID   int64
	FileNodeID  int64
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
	Kind        int
}

// ComponentAccess is an access-specifier annotation on a member edge.
type ComponentAccess struct {
	ID     int64
	EdgeID int64
	Kind   int
}

// CommentLocation marks a source comment, independent of any symbol.
type CommentLocation struct {
	ID          int64
	FileNodeID  int64
	StartLine   int
	StartColumn int
	EndLine     int
	EndColumn   int
}

// StorageError is a diagnostic emitted during fact collection.
type StorageError struct {
	ID           int64
	Message      string
	Fatal        bool
	FilePath     string
	LineNumber   int
	ColumnNumber int
}

// addElement allocates the next identifier in the shared element space.
func (s *Store) addElement(ctx context.Context) (int64, error) {
	return s.insert(ctx, "INSERT INTO element(id) VALUES (NULL)")
}

// AddNode inserts a node and returns its identifier. The element row is
// inserted first so nodes and edges share one identifier space; callers
// wrap bulk collection in a transaction to keep the pair atomic.
func (s *Store) AddNode(ctx context.Context, kind int, serializedName string, definitionKind int) (int64, error) {
	id, err := s.addElement(ctx)
	if err != nil {
		return 0, err
	}
	_, err = s.exec(ctx,
		"INSERT INTO node(id, kind, serialized_name, definition_kind) VALUES (?, ?, ?, ?)",
		id, kind, serializedName, definitionKind)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// AddEdge inserts a typed edge between two existing nodes.
func (s *Store) AddEdge(ctx context.Context, kind int, sourceNodeID, targetNodeID int64) (int64, error) {
	id, err := s.addElement(ctx)
	if err != nil {
		return 0, err
	}
	_, err = s.exec(ctx,
		"INSERT INTO edge(id, kind, source_node_id, target_node_id) VALUES (?, ?, ?, ?)",
		id, kind, sourceNodeID, targetNodeID)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// AddFile attaches file content to the node named serializedName, creating
// the node if the collector has not added it yet. The content is read from
// path; an unreadable file is stored with empty content and logged.
func (s *Store) AddFile(ctx context.Context, serializedName, path string, modificationTime time.Time) (int64, error) {
	node, err := s.GetNodeBySerializedName(ctx, serializedName)
	if err != nil {
		return 0, err
	}
	var id int64
	if node != nil {
		id = node.ID
	} else {
		id, err = s.AddNode(ctx, 0, serializedName, 0)
		if err != nil {
			return 0, err
		}
	}

	content := ""
	lineCount := 0
	if data, err := os.ReadFile(path); err == nil {
		content = string(data)
		lineCount = countLines(content)
	} else {
		s.log.Warn("file content unavailable", zap.String("path", path), zap.Error(err))
	}

	_, err = s.exec(ctx,
		"INSERT INTO file(id, path, modification_time, line_count, content) VALUES (?, ?, ?, ?, ?)",
		id, path, modificationTime, lineCount, content)
	if err != nil {
		return 0, err
	}
	return id, nil
}

// AddLocalSymbol inserts a local symbol, returning the existing identifier
// when the name is already stored.
func (s *Store) AddLocalSymbol(ctx context.Context, name string) (int64, error) {
	existing, err := s.GetLocalSymbolByName(ctx, name)
	if err != nil {
		return 0, err
	}
	if existing != nil {
		return existing.ID, nil
	}
	id, err := s.addElement(ctx)
	if err != nil {
		return 0, err
	}
	if _, err := s.exec(ctx, "INSERT INTO local_symbol(id, name) VALUES (?, ?)", id, name); err != nil {
		return 0, err
	}
	return id, nil
}

// AddSourceLocation records a span in a file. elementID zero stores NULL,
// for locations not tied to a specific element.
func (s *Store) AddSourceLocation(ctx context.Context, elementID, fileNodeID int64, startLine, startColumn, endLine, endColumn, kind int) (int64, error) {
	var element interface{}
	if elementID != 0 {
		element = elementID
	}
	return s.insert(ctx,
		`INSERT INTO source_location(element_id, file_node_id, start_line, start_column, end_line, end_column, kind)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		element, fileNodeID, startLine, startColumn, endLine, endColumn, kind)
}

// AddComponentAccess records an access specifier for a member edge.
func (s *Store) AddComponentAccess(ctx context.Context, edgeID int64, kind int) (int64, error) {
	return s.insert(ctx, "INSERT INTO component_access(edge_id, kind) VALUES (?, ?)", edgeID, kind)
}

// AddCommentLocation records a comment span in a file.
func (s *Store) AddCommentLocation(ctx context.Context, fileNodeID int64, startLine, startColumn, endLine, endColumn int) (int64, error) {
	return s.insert(ctx,
		`INSERT INTO comment_location(file_node_id, start_line, start_column, end_line, end_column)
		 VALUES (?, ?, ?, ?, ?)`,
		fileNodeID, startLine, startColumn, endLine, endColumn)
}

// AddError records a collection diagnostic. An error with identical
// message, severity, path, line and column is stored once; repeated adds
// return the existing identifier.
func (s *Store) AddError(ctx context.Context, message string, fatal bool, filePath string, line, column int) (int64, error) {
	var id int64
	err := s.querier().QueryRowContext(ctx,
		`SELECT id FROM error
		 WHERE message = ? AND fatal = ? AND file_path = ? AND line_number = ? AND column_number = ?`,
		message, fatal, filePath, line, column).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, wrapEngineError(err)
	}
	return s.insert(ctx,
		"INSERT INTO error(message, fatal, file_path, line_number, column_number) VALUES (?, ?, ?, ?, ?)",
		message, fatal, filePath, line, column)
}

// RemoveElement deletes an element; foreign keys cascade to the owning
// node or edge row and everything referencing it.
func (s *Store) RemoveElement(ctx context.Context, id int64) error {
	_, err := s.exec(ctx, "DELETE FROM element WHERE id = ?", id)
	return err
}

// RemoveElements deletes a batch of elements in one statement.
func (s *Store) RemoveElements(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	args := make([]interface{}, len(ids))
	for i, id := range ids {
		args[i] = id
	}
	_, err := s.exec(ctx, "DELETE FROM element WHERE id IN ("+placeholders(len(ids))+")", args...)
	return err
}

// RemoveElementsWithLocationInFiles removes every source location in the
// given files, then collects elements orphaned by the removal: an element
// is deleted only when its last location disappears, so elements with
// surviving locations in other files are preserved.
func (s *Store) RemoveElementsWithLocationInFiles(ctx context.Context, fileIDs []int64) error {
	if len(fileIDs) == 0 {
		return nil
	}
	args := make([]interface{}, len(fileIDs))
	for i, id := range fileIDs {
		args[i] = id
	}
	in := placeholders(len(fileIDs))

	rows, err := s.querier().QueryContext(ctx,
		"SELECT DISTINCT element_id FROM source_location WHERE element_id IS NOT NULL AND file_node_id IN ("+in+")",
		args...)
	if err != nil {
		return wrapEngineError(err)
	}
	var candidates []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			_ = rows.Close()
			return wrapEngineError(err)
		}
		candidates = append(candidates, id)
	}
	if err := rows.Err(); err != nil {
		return wrapEngineError(err)
	}
	_ = rows.Close()

	if _, err := s.exec(ctx, "DELETE FROM source_location WHERE file_node_id IN ("+in+")", args...); err != nil {
		return err
	}

	if len(candidates) == 0 {
		return nil
	}
	candidateArgs := make([]interface{}, len(candidates))
	for i, id := range candidates {
		candidateArgs[i] = id
	}
	_, err = s.exec(ctx,
		`DELETE FROM element WHERE id IN (`+placeholders(len(candidates))+`)
		 AND NOT EXISTS (SELECT 1 FROM source_location WHERE element_id = element.id)`,
		candidateArgs...)
	return err
}

// RemoveErrorsInFiles deletes diagnostics recorded against the given paths.
func (s *Store) RemoveErrorsInFiles(ctx context.Context, filePaths []string) error {
	if len(filePaths) == 0 {
		return nil
	}
	args := make([]interface{}, len(filePaths))
	for i, p := range filePaths {
		args[i] = p
	}
	_, err := s.exec(ctx, "DELETE FROM error WHERE file_path IN ("+placeholders(len(filePaths))+")", args...)
	return err
}

// countLines reports the number of lines in content, counting a trailing
// fragment without a newline as a line.
func countLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}
