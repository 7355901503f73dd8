// Package storage persists a code graph in a single SQLite database file
// and answers structured and full-text queries over it.
//
// The graph is produced by external language collectors: symbols and files
// become nodes, typed relationships become edges, and both draw their
// identifiers from a shared element table so that any record can be removed
// generically by id. Source locations, access specifiers, comment spans and
// collection diagnostics hang off the graph through cascading foreign keys.
//
// # Schema lifecycle
//
// A database carries two version stamps in its meta table: a numeric
// storage_version describing the table shape and a free-form
// application_version string. Schema evolution is handled by full rebuild
// (Clear then re-collect), never by in-place migration; the database is a
// disposable cache regenerated from source.
//
//	s, err := storage.Open(path)
//	if err != nil { ... }
//	defer s.Close()
//
//	if s.IsEmpty(ctx) || s.IsIncompatible(ctx) {
//	    s.Clear(ctx)
//	    s.SetVersion(ctx)
//	}
//
// # Transactions
//
// The store is single-writer. Bulk collection wraps its writes in one
// caller-managed transaction:
//
//	s.BeginTransaction(ctx)
//	id, _ := s.AddNode(ctx, kind, name, defKind)
//	s.AddSourceLocation(ctx, id, fileID, 4, 1, 9, 2, locKind)
//	s.CommitTransaction()
//
// Transactions do not nest; a second BeginTransaction before the first is
// closed returns ErrTransactionOpen.
//
// # Index modes
//
// Secondary indices are tagged with the storage modes under which they pay
// for themselves. SetMode(ModeWrite) drops the read-serving indices before
// a bulk collection; SetMode(ModeRead) rebuilds them for interactive
// querying.
package storage
