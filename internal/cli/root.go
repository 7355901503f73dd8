// Package cli implements the codegraph command-line interface.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"codegraph/internal/storage"
)

// Exit codes.
const (
	exitUserError = 1
	exitSysError  = 2
)

// rootFlags holds global flag values accessible to all subcommands.
type rootFlags struct {
	dbPath   string
	logLevel string
}

var flags rootFlags

// NewRootCmd creates the top-level "codegraph" command with global flags
// and all subcommands registered.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "codegraph",
		Short: "Query and maintain a code graph database",
		Long: "Codegraph stores symbols, relationships, source locations and file\n" +
			"contents of an indexed codebase in a single SQLite file and answers\n" +
			"graph and full-text queries over it.",
		// Do not print usage on errors returned by subcommands; Execute
		// prints the error once and maps it to an exit code.
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.dbPath, "db", "", "database file (default: ~/.codegraph/graph.db)")
	root.PersistentFlags().StringVar(&flags.logLevel, "log-level", "", "log level: debug, info, warn or error (default: warn)")

	root.AddCommand(newVersionCmd())
	root.AddCommand(newStatsCmd())
	root.AddCommand(newSearchCmd())
	root.AddCommand(newVacuumCmd())
	root.AddCommand(newClearCmd())
	root.AddCommand(newServeCmd())

	return root
}

// Execute runs the root command and exits with the appropriate code.
func Execute() {
	root := NewRootCmd()
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		var ce *codedError
		if errors.As(err, &ce) {
			os.Exit(ce.code)
		}
		os.Exit(exitUserError)
	}
}

// resolveDBPath returns the database file from flag, env, config, or default.
func resolveDBPath() string {
	if flags.dbPath != "" {
		return flags.dbPath
	}
	if v := os.Getenv("CODEGRAPH_DB_PATH"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil {
		if v := cfg.GetString(cfgKeyDBPath); v != "" {
			return v
		}
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "graph.db"
	}
	return filepath.Join(home, ".codegraph", "graph.db")
}

// resolveLogLevel returns the log level from flag, env, config, or default.
func resolveLogLevel() string {
	if flags.logLevel != "" {
		return flags.logLevel
	}
	if v := os.Getenv("CODEGRAPH_LOG_LEVEL"); v != "" {
		return v
	}
	cfg, err := loadConfig()
	if err == nil {
		if v := cfg.GetString(cfgKeyLogLevel); v != "" {
			return v
		}
	}
	return "warn"
}

// newLogger builds a console logger on stderr. Stdout stays reserved for
// command output and the MCP protocol.
func newLogger(level string) *zap.Logger {
	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.WarnLevel
	}
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(lvl)
	cfg.OutputPaths = []string{"stderr"}
	cfg.ErrorOutputPaths = []string{"stderr"}
	logger, err := cfg.Build()
	if err != nil {
		return zap.NewNop()
	}
	return logger
}

// openStore opens the resolved database and makes sure its schema is
// usable: a fresh file is set up and an incompatible one is rebuilt.
func openStore(ctx context.Context, logger *zap.Logger) (*storage.Store, error) {
	path := resolveDBPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}

	store, err := storage.Open(path, storage.WithLogger(logger))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if store.IsEmpty(ctx) {
		if err := store.Setup(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("set up database: %w", err)
		}
		if err := store.SetVersion(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("stamp database: %w", err)
		}
		return store, nil
	}

	if store.IsIncompatible(ctx) {
		logger.Warn("rebuilding incompatible database", zap.String("path", store.DBFilePath()))
		if err := store.Clear(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("rebuild database: %w", err)
		}
		if err := store.SetVersion(ctx); err != nil {
			_ = store.Close()
			return nil, fmt.Errorf("stamp database: %w", err)
		}
	}
	return store, nil
}

// codedError is a command failure carrying its process exit code. Execute
// unwraps it after cobra returns.
type codedError struct {
	code int
	msg  string
}

func (e *codedError) Error() string {
	return e.msg
}

// exitError wraps a failure message with the exit code Execute should use.
func exitError(code int, msg string) error {
	return &codedError{code: code, msg: msg}
}
