package types

import "fmt"

// Position is a 1-based line/column coordinate in a source file.
type Position struct {
	Line   int
	Column int
}

// SourceSpan is an inclusive range of source text inside a stored file.
// Full-text search results are reported as spans.
type SourceSpan struct {
	FileID   int64
	FilePath string
	Start    Position
	End      Position
}

func (s SourceSpan) String() string {
	return fmt.Sprintf("%s:%d:%d-%d:%d", s.FilePath, s.Start.Line, s.Start.Column, s.End.Line, s.End.Column)
}
