package storage

import (
	"errors"
	"fmt"
)

var (
	// ErrTransactionOpen is returned by BeginTransaction when a transaction
	// is already open; transactions do not nest.
	ErrTransactionOpen = errors.New("transaction already open")
	// ErrNoTransaction is returned by Commit/RollbackTransaction when no
	// transaction is open.
	ErrNoTransaction = errors.New("no open transaction")
)

// EngineError reports a failure inside the SQLite engine: a malformed
// statement, a constraint violation, or an I/O failure. Callers decide
// whether to log and fall back to an empty result or to propagate.
type EngineError struct {
	Code    int
	Message string
}

func (e *EngineError) Error() string {
	if e.Code != 0 {
		return fmt.Sprintf("sqlite error %d: %s", e.Code, e.Message)
	}
	return "sqlite error: " + e.Message
}

// wrapEngineError converts a driver error into an EngineError, preserving
// the engine-provided result code when one is available.
func wrapEngineError(err error) error {
	if err == nil {
		return nil
	}
	var ee *EngineError
	if errors.As(err, &ee) {
		return err
	}
	return &EngineError{Code: engineErrorCode(err), Message: err.Error()}
}
