//go:build sqlite_cgo && fts5
// +build sqlite_cgo,fts5

package storage

// This file is compiled when building with CGO and the sqlite_cgo tag.
// It uses the C SQLite implementation for faster bulk writes.
//
// Build command:
//   CGO_ENABLED=1 go build -tags "sqlite_cgo,fts5" ./...
//
// The fts5 tag is required: the driver compiles SQLite without FTS5
// unless it is set, and the schema's node_fts virtual table and its
// insert trigger make FTS5 support load-bearing for every node write.
// Requiring the tag in the build constraint turns a misbuild into a
// compile failure instead of a runtime one.

import (
	"errors"

	sqlite3 "github.com/mattn/go-sqlite3"
)

const (
	// DriverName is the SQLite driver to use
	DriverName = "sqlite3"

	// BuildMode describes the current build configuration
	BuildMode = "cgo"
)

// engineErrorCode extracts the SQLite result code from a driver error.
func engineErrorCode(err error) int {
	var serr sqlite3.Error
	if errors.As(err, &serr) {
		return int(serr.Code)
	}
	return 0
}
