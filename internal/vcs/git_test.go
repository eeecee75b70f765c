package vcs

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func requireGit(t *testing.T) {
	t.Helper()
	if !(Git{}).Available() {
		t.Skip("git not installed")
	}
}

func initRepo(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, args := range [][]string{
		{"init", "-q"},
		{"config", "user.email", "dev@example.com"},
		{"config", "user.name", "dev"},
	} {
		cmd := exec.Command("git", args...)
		cmd.Dir = dir
		out, err := cmd.CombinedOutput()
		require.NoError(t, err, string(out))
	}
	return dir
}

// =============================================================================
// PORCELAIN PARSING TESTS
// =============================================================================

func TestParsePorcelain(t *testing.T) {
	t.Parallel()

	out := []byte(" M src/map/npc.cpp\n?? src/new.cpp\nR  old.cpp -> renamed.cpp\nA  \"with space.cpp\"\n\n")
	got := parsePorcelain(out)

	assert.Equal(t, []Change{
		{Status: " M", Path: "src/map/npc.cpp"},
		{Status: "??", Path: "src/new.cpp"},
		{Status: "R ", Path: "renamed.cpp"},
		{Status: "A ", Path: "with space.cpp"},
	}, got)
}

// =============================================================================
// WORK TREE TESTS
// =============================================================================

func TestGit_NotAWorkTree(t *testing.T) {
	t.Parallel()
	requireGit(t)

	g := Git{Dir: t.TempDir()}
	assert.False(t, g.IsWorkTree(context.Background()))

	_, err := g.Dirty(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}

func TestGit_DirtyTracksChanges(t *testing.T) {
	t.Parallel()
	requireGit(t)

	dir := initRepo(t)
	g := Git{Dir: dir}
	ctx := context.Background()
	require.True(t, g.IsWorkTree(ctx))

	dirty, err := g.Dirty(ctx)
	require.NoError(t, err)
	assert.False(t, dirty)

	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "npc.cpp"), []byte("int a;\n"), 0o644))

	changes, err := g.Status(ctx, "src")
	require.NoError(t, err)
	require.Len(t, changes, 1)
	assert.Equal(t, "??", changes[0].Status)

	dirty, err = g.Dirty(ctx, "conf")
	require.NoError(t, err)
	assert.False(t, dirty)
}

func TestGit_BranchWithoutCommits(t *testing.T) {
	t.Parallel()
	requireGit(t)

	g := Git{Dir: initRepo(t)}
	branch, err := g.Branch(context.Background())
	require.NoError(t, err)
	assert.Empty(t, branch)

	_, err = Git{Dir: t.TempDir()}.Branch(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
