package storage

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/sync/errgroup"

	"codegraph/pkg/types"
)

func TestIdentifierUniquenessAcrossNodesAndEdges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	seen := map[int64]bool{}
	var nodeIDs []int64
	for i := 0; i < 10; i++ {
		id, err := s.AddNode(ctx, 1, fmt.Sprintf("node%d", i), 1)
		require.NoError(t, err)
		assert.False(t, seen[id], "identifier %d issued twice", id)
		seen[id] = true
		nodeIDs = append(nodeIDs, id)
	}
	for i := 0; i < 9; i++ {
		id, err := s.AddEdge(ctx, 1, nodeIDs[i], nodeIDs[i+1])
		require.NoError(t, err)
		assert.False(t, seen[id], "identifier %d issued twice", id)
		seen[id] = true
	}
}

func TestIdentifierUniquenessConcurrentAdds(t *testing.T) {
	s := newTestStore(t)

	var mu sync.Mutex
	seen := map[int64]int{}

	g, ctx := errgroup.WithContext(context.Background())
	for w := 0; w < 4; w++ {
		g.Go(func() error {
			for i := 0; i < 25; i++ {
				id, err := s.AddNode(ctx, 1, "", 1)
				if err != nil {
					return err
				}
				mu.Lock()
				seen[id]++
				mu.Unlock()
			}
			return nil
		})
	}
	require.NoError(t, g.Wait())

	assert.Len(t, seen, 100)
	for id, n := range seen {
		assert.Equal(t, 1, n, "identifier %d issued %d times", id, n)
	}
}

func TestRemoveNodeCascadesToIncidentEdges(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	a, err := s.AddNode(ctx, 1, "a", 1)
	require.NoError(t, err)
	b, err := s.AddNode(ctx, 1, "b", 1)
	require.NoError(t, err)
	ab, err := s.AddEdge(ctx, 1, a, b)
	require.NoError(t, err)
	ba, err := s.AddEdge(ctx, 1, b, a)
	require.NoError(t, err)
	_, err = s.AddComponentAccess(ctx, ab, int(types.AccessPublic))
	require.NoError(t, err)

	require.NoError(t, s.RemoveElement(ctx, a))

	for _, id := range []int64{ab, ba} {
		edge, err := s.GetEdgeByID(ctx, id)
		require.NoError(t, err)
		assert.Nil(t, edge)
	}
	access, err := s.GetComponentAccessByEdgeID(ctx, ab)
	require.NoError(t, err)
	assert.Nil(t, access)

	node, err := s.GetNodeByID(ctx, b)
	require.NoError(t, err)
	assert.NotNil(t, node)
}

func TestRemoveFileCascadesToLocations(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fileID, _ := addTestFile(t, s, "a.c", "int x;\n")
	sym, err := s.AddNode(ctx, 1, "x", 1)
	require.NoError(t, err)
	_, err = s.AddSourceLocation(ctx, sym, fileID, 1, 5, 1, 5, int(types.LocationToken))
	require.NoError(t, err)
	_, err = s.AddCommentLocation(ctx, fileID, 1, 1, 1, 6)
	require.NoError(t, err)

	require.NoError(t, s.RemoveElement(ctx, fileID))

	count, err := s.SourceLocationCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, count)

	file, err := s.GetFileByID(ctx, fileID)
	require.NoError(t, err)
	assert.Nil(t, file)
}

func TestRemoveElements(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	var ids []int64
	for i := 0; i < 5; i++ {
		id, err := s.AddNode(ctx, 1, fmt.Sprintf("n%d", i), 1)
		require.NoError(t, err)
		ids = append(ids, id)
	}
	require.NoError(t, s.RemoveElements(ctx, ids[:3]))

	count, err := s.NodeCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestOrphanCollectionOnFileRemoval(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fileA, err := s.AddNode(ctx, int(types.NodeFile), "fileA", 1)
	require.NoError(t, err)
	fileB, err := s.AddNode(ctx, int(types.NodeFile), "fileB", 1)
	require.NoError(t, err)

	// shared has locations in both files; confined only in fileA.
	shared, err := s.AddNode(ctx, 1, "shared", 1)
	require.NoError(t, err)
	confined, err := s.AddNode(ctx, 1, "confined", 1)
	require.NoError(t, err)

	_, err = s.AddSourceLocation(ctx, shared, fileA, 1, 1, 1, 5, int(types.LocationToken))
	require.NoError(t, err)
	_, err = s.AddSourceLocation(ctx, shared, fileB, 7, 1, 7, 5, int(types.LocationToken))
	require.NoError(t, err)
	_, err = s.AddSourceLocation(ctx, confined, fileA, 2, 1, 2, 8, int(types.LocationToken))
	require.NoError(t, err)

	require.NoError(t, s.RemoveElementsWithLocationInFiles(ctx, []int64{fileA}))

	node, err := s.GetNodeByID(ctx, confined)
	require.NoError(t, err)
	assert.Nil(t, node, "element with locations only in removed files must be collected")

	node, err = s.GetNodeByID(ctx, shared)
	require.NoError(t, err)
	assert.NotNil(t, node, "element with a surviving location must be preserved")

	locs, err := s.GetSourceLocationsForElement(ctx, shared)
	require.NoError(t, err)
	require.Len(t, locs, 1)
	assert.Equal(t, fileB, locs[0].FileNodeID)
}

func TestAddErrorDeduplicates(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.AddError(ctx, "expected ';'", false, "/src/a.c", 12, 3)
	require.NoError(t, err)
	second, err := s.AddError(ctx, "expected ';'", false, "/src/a.c", 12, 3)
	require.NoError(t, err)
	assert.Equal(t, first, second)

	count, err := s.ErrorCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, count)

	// Any differing field makes it a distinct diagnostic.
	third, err := s.AddError(ctx, "expected ';'", false, "/src/a.c", 12, 4)
	require.NoError(t, err)
	assert.NotEqual(t, first, third)
}

func TestRemoveErrorsInFiles(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.AddError(ctx, "bad", true, "/src/a.c", 1, 1)
	require.NoError(t, err)
	_, err = s.AddError(ctx, "bad", true, "/src/b.c", 1, 1)
	require.NoError(t, err)

	require.NoError(t, s.RemoveErrorsInFiles(ctx, []string{"/src/a.c"}))

	errs, err := s.GetErrors(ctx)
	require.NoError(t, err)
	require.Len(t, errs, 1)
	assert.Equal(t, "/src/b.c", errs[0].FilePath)
}

func TestAddLocalSymbolDeduplicatesByName(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	first, err := s.AddLocalSymbol(ctx, "main:i")
	require.NoError(t, err)
	second, err := s.AddLocalSymbol(ctx, "main:i")
	require.NoError(t, err)
	assert.Equal(t, first, second)

	other, err := s.AddLocalSymbol(ctx, "main:j")
	require.NoError(t, err)
	assert.NotEqual(t, first, other)
}

func TestAddFileComputesLineCount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	fileID, path := addTestFile(t, s, "a.c", "abc\ndefgh\nij")

	file, err := s.GetFileByPath(ctx, path)
	require.NoError(t, err)
	require.NotNil(t, file)
	assert.Equal(t, fileID, file.ID)
	assert.Equal(t, 3, file.LineCount)
	assert.Equal(t, "abc\ndefgh\nij", file.Content)
}

func TestAddFileReusesCollectedNode(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	path := writeTestFile(t, "a.c", "int x;\n")
	nodeID, err := s.AddNode(ctx, int(types.NodeFile), path, 1)
	require.NoError(t, err)

	fileID, err := s.AddFile(ctx, path, path, time.Now())
	require.NoError(t, err)
	assert.Equal(t, nodeID, fileID)
}

// Scenario: a member edge disappears with its owning class, while the
// member and its location survive.
func TestMemberEdgeRemovalScenario(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	class, err := s.AddNode(ctx, int(types.NodeClass), "Widget", int(types.DefinitionExplicit))
	require.NoError(t, err)
	method, err := s.AddNode(ctx, int(types.NodeMethod), "Widget::draw", int(types.DefinitionExplicit))
	require.NoError(t, err)
	member, err := s.AddEdge(ctx, int(types.EdgeMember), class, method)
	require.NoError(t, err)

	fileID, _ := addTestFile(t, s, "widget.cpp", "void draw() {}\n")
	_, err = s.AddSourceLocation(ctx, method, fileID, 1, 6, 1, 9, int(types.LocationToken))
	require.NoError(t, err)

	require.NoError(t, s.RemoveElement(ctx, class))

	edge, err := s.GetEdgeByID(ctx, member)
	require.NoError(t, err)
	assert.Nil(t, edge)

	node, err := s.GetNodeByID(ctx, method)
	require.NoError(t, err)
	require.NotNil(t, node)

	locs, err := s.GetSourceLocationsForElement(ctx, method)
	require.NoError(t, err)
	assert.Len(t, locs, 1)
}
