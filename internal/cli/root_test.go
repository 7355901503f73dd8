package cli

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func runCommand(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	require.NoError(t, root.Execute())
	return out.String()
}

func testDBFlag(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "graph.db")
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	root := NewRootCmd()

	var names []string
	for _, c := range root.Commands() {
		names = append(names, c.Name())
	}
	for _, want := range []string{"version", "stats", "search", "vacuum", "clear", "serve"} {
		assert.Contains(t, names, want)
	}
}

func TestVersionCommand(t *testing.T) {
	out := runCommand(t, "version")
	assert.Contains(t, out, "codegraph v")
	assert.Contains(t, out, "sqlite driver:")
}

func TestStatsCommandOnFreshDatabase(t *testing.T) {
	out := runCommand(t, "stats", "--db", testDBFlag(t))
	assert.Contains(t, out, "nodes:")
	assert.Contains(t, out, "0")
}

func TestSearchCommandNoMatches(t *testing.T) {
	out := runCommand(t, "search", "absent", "--db", testDBFlag(t))
	assert.Contains(t, out, "0 matches")
}

func TestSearchNodesCommandNoMatches(t *testing.T) {
	out := runCommand(t, "search", "absent", "--nodes", "--db", testDBFlag(t))
	assert.Contains(t, out, "0 symbols")
}

func TestClearCommandRequiresForce(t *testing.T) {
	var out bytes.Buffer
	root := NewRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs([]string{"clear", "--db", testDBFlag(t)})

	err := root.Execute()
	require.Error(t, err)

	// The failure reaches the caller as an error carrying its exit code
	// rather than terminating the process inside the command.
	var ce *codedError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, exitUserError, ce.code)
}

func TestClearCommandWithForce(t *testing.T) {
	out := runCommand(t, "clear", "--force", "--db", testDBFlag(t))
	assert.Contains(t, out, "Cleared")
}

func TestVacuumCommand(t *testing.T) {
	out := runCommand(t, "vacuum", "--db", testDBFlag(t))
	assert.Contains(t, out, "compacted")
}
