package diff

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orchestra/internal/registry"
	"orchestra/internal/writer"
)

func setupSynced(t *testing.T) (home, name string, root string) {
	t.Helper()
	home = t.TempDir()
	root = t.TempDir()
	name = "demo"
	require.NoError(t, registry.SaveCodebase(home, &registry.Codebase{
		Name: name, Project: "p", Root: root, Type: registry.TypeBackend,
	}))
	require.NoError(t, writer.SyncCodebase(home, name, false).Err)
	return home, name, root
}

func TestDiffCodebase_EmptyWhenFreshlySynced(t *testing.T) {
	home, name, _ := setupSynced(t)
	result, err := DiffCodebase(name, home)
	require.NoError(t, err)
	assert.Empty(t, result.Files)
}

func TestDiffCodebase_ShowsManualEdit(t *testing.T) {
	home, name, root := setupSynced(t)

	target := filepath.Join(root, "CLAUDE.md")
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(target, append(data, []byte("XYZZY\n")...), 0600))

	result, err := DiffCodebase(name, home)
	require.NoError(t, err)
	require.NotEmpty(t, result.Files)

	found := false
	for _, f := range result.Files {
		if f.Path == "CLAUDE.md" {
			assert.Contains(t, f.UnifiedDiff, "+XYZZY")
			found = true
		}
	}
	assert.True(t, found)
}

func TestDiffCodebase_MissingFileTreatedAsEmpty(t *testing.T) {
	home, name, root := setupSynced(t)
	require.NoError(t, os.Remove(filepath.Join(root, "CLAUDE.md")))

	result, err := DiffCodebase(name, home)
	require.NoError(t, err)
	require.NotEmpty(t, result.Files)
}
