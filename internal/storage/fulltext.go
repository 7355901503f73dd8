package storage

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"codegraph/pkg/types"
)

// matchRecord is one raw hit from the text index: the column group it was
// found in, the index of the constituent term within the search phrase,
// and the byte offset and length of the hit in the file's content.
type matchRecord struct {
	columnGroup int
	termIndex   int
	byteOffset  int
	matchLength int
}

// SearchFullText finds files whose content contains term as a
// case-normalized substring and reconstructs a line/column span for every
// occurrence. Engine failures are logged and reported as no matches,
// never propagated.
func (s *Store) SearchFullText(ctx context.Context, term string) []types.SourceSpan {
	spans := []types.SourceSpan{}
	if strings.TrimSpace(term) == "" {
		return spans
	}

	rows, err := s.querier().QueryContext(ctx, "SELECT id, path, content FROM file")
	if err != nil {
		s.log.Error("full-text search failed", zap.String("term", term), zap.Error(wrapEngineError(err)))
		return spans
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var id int64
		var path, content string
		if err := rows.Scan(&id, &path, &content); err != nil {
			s.log.Error("full-text search failed", zap.String("term", term), zap.Error(wrapEngineError(err)))
			return spans
		}
		records := matchContent(content, term)
		if len(records) == 0 {
			continue
		}
		spans = append(spans, reconstructSpans(id, path, content, records)...)
	}
	if err := rows.Err(); err != nil {
		s.log.Error("full-text search failed", zap.String("term", term), zap.Error(wrapEngineError(err)))
	}
	return spans
}

// matchContent scans content for case-folded occurrences of term and emits
// the flat match-record list the reconstruction consumes. A multi-word
// term yields one record per constituent word per phrase occurrence, with
// termIndex restarting at 0 on each occurrence.
func matchContent(content, term string) []matchRecord {
	folded := strings.ToLower(content)
	phrase := strings.ToLower(term)
	words := strings.Fields(phrase)
	if len(words) == 0 {
		return nil
	}

	// Byte offsets of each word within the phrase.
	wordOffsets := make([]int, len(words))
	at := 0
	for i, w := range words {
		j := strings.Index(phrase[at:], w)
		wordOffsets[i] = at + j
		at = wordOffsets[i] + len(w)
	}

	var records []matchRecord
	for from := 0; ; {
		hit := strings.Index(folded[from:], phrase)
		if hit < 0 {
			break
		}
		hit += from
		for i, w := range words {
			records = append(records, matchRecord{
				columnGroup: 0,
				termIndex:   i,
				byteOffset:  hit + wordOffsets[i],
				matchLength: len(w),
			})
		}
		from = hit + len(phrase)
	}
	return records
}

// reconstructSpans converts match offsets into line/column spans by
// walking the line-split content once, accumulating a running total of
// consumed characters. Columns are 1-based and span ends are inclusive.
// Consecutive records belonging to one phrase occurrence (termIndex > 0)
// extend the open span; a record with termIndex 0 closes it and starts
// the next. The coalescing rule can merge adjacent distinct matches of a
// multi-word phrase; that behavior is kept as is.
func reconstructSpans(fileID int64, path, content string, records []matchRecord) []types.SourceSpan {
	lines := strings.Split(content, "\n")
	spans := []types.SourceSpan{}

	line := 0
	total := 0
	var open *types.SourceSpan

	for _, r := range records {
		if r.termIndex == 0 && open != nil {
			spans = append(spans, *open)
			open = nil
		}

		for line < len(lines)-1 && total+len(lines[line]) < r.byteOffset {
			total += len(lines[line])
			line++
		}
		start := types.Position{Line: line + 1, Column: r.byteOffset - total + 1}

		endOffset := r.byteOffset + r.matchLength - 1
		for line < len(lines)-1 && total+len(lines[line]) < endOffset {
			total += len(lines[line])
			line++
		}
		end := types.Position{Line: line + 1, Column: endOffset - total + 1}

		if open == nil {
			open = &types.SourceSpan{FileID: fileID, FilePath: path, Start: start, End: end}
		} else {
			open.End = end
		}
	}
	if open != nil {
		spans = append(spans, *open)
	}
	return spans
}

// SearchNodes matches query against the node-name full-text index and
// returns the best-ranked nodes. A malformed match expression is logged
// and reported as no matches.
func (s *Store) SearchNodes(ctx context.Context, query string, limit int) []Node {
	nodes := []Node{}
	if strings.TrimSpace(query) == "" {
		return nodes
	}
	if limit <= 0 {
		limit = 25
	}

	rows, err := s.querier().QueryContext(ctx,
		`SELECT n.id, n.kind, n.serialized_name, n.definition_kind
		 FROM node n JOIN node_fts f ON n.id = f.rowid
		 WHERE node_fts MATCH ?
		 ORDER BY rank
		 LIMIT ?`, query, limit)
	if err != nil {
		s.log.Error("node search failed", zap.String("query", query), zap.Error(wrapEngineError(err)))
		return nodes
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var n Node
		if err := rows.Scan(&n.ID, &n.Kind, &n.SerializedName, &n.DefinitionKind); err != nil {
			s.log.Error("node search failed", zap.String("query", query), zap.Error(wrapEngineError(err)))
			return nodes
		}
		nodes = append(nodes, n)
	}
	if err := rows.Err(); err != nil {
		s.log.Error("node search failed", zap.String("query", query), zap.Error(wrapEngineError(err)))
	}
	return nodes
}
