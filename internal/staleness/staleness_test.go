package staleness

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orchestra/internal/hashstore"
	"orchestra/internal/registry"
	"orchestra/internal/writer"
)

func setup(t *testing.T) (home, name string) {
	t.Helper()
	home = t.TempDir()
	root := t.TempDir()
	name = "demo"
	require.NoError(t, registry.SaveCodebase(home, &registry.Codebase{
		Name: name, Project: "p", Root: root, Type: registry.TypeBackend,
	}))
	return home, name
}

func TestCheck_NeverSynced(t *testing.T) {
	home, name := setup(t)
	res, err := Check(home, "p", name)
	require.NoError(t, err)
	assert.Equal(t, NeverSynced, res.Signal)
}

func TestCheck_CurrentAfterSync(t *testing.T) {
	home, name := setup(t)
	require.NoError(t, writer.SyncCodebase(home, name, false).Err)

	res, err := Check(home, "p", name)
	require.NoError(t, err)
	assert.Equal(t, Current, res.Signal)
}

func TestCheck_StaleWhenManagedFileMissing(t *testing.T) {
	home, name := setup(t)
	require.NoError(t, writer.SyncCodebase(home, name, false).Err)

	cb, err := registry.FindCodebase(home, name)
	require.NoError(t, err)
	require.NoError(t, os.Remove(filepath.Join(cb.Root, "CLAUDE.md")))

	res, err := Check(home, "p", name)
	require.NoError(t, err)
	assert.Equal(t, Stale, res.Signal)
}

func TestCheck_StaleWhenRegistryBumped(t *testing.T) {
	home, name := setup(t)
	require.NoError(t, writer.SyncCodebase(home, name, false).Err)

	cb, err := registry.FindCodebase(home, name)
	require.NoError(t, err)
	future := time.Now().Add(time.Hour)
	require.NoError(t, os.Chtimes(cb.Path(), future, future))

	res, err := Check(home, "p", name)
	require.NoError(t, err)
	assert.Equal(t, Stale, res.Signal)
}

func TestCheck_ModifiedWhenFileEdited(t *testing.T) {
	home, name := setup(t)
	require.NoError(t, writer.SyncCodebase(home, name, false).Err)

	cb, err := registry.FindCodebase(home, name)
	require.NoError(t, err)
	target := filepath.Join(cb.Root, "CLAUDE.md")
	data, err := os.ReadFile(target)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(target, append(data, []byte("XYZZY\n")...), 0600))

	res, err := Check(home, "p", name)
	require.NoError(t, err)
	assert.Equal(t, Modified, res.Signal)
	assert.Contains(t, res.Paths, "CLAUDE.md")
}

func TestCheck_ModifiedCRLFOnlyEditIsCurrent(t *testing.T) {
	home, name := setup(t)
	require.NoError(t, writer.SyncCodebase(home, name, false).Err)

	cb, err := registry.FindCodebase(home, name)
	require.NoError(t, err)
	target := filepath.Join(cb.Root, "CLAUDE.md")
	data, err := os.ReadFile(target)
	require.NoError(t, err)

	crlf := make([]byte, 0, len(data)*2)
	for _, b := range data {
		if b == '\n' {
			crlf = append(crlf, '\r', '\n')
		} else {
			crlf = append(crlf, b)
		}
	}
	require.NoError(t, os.WriteFile(target, crlf, 0600))

	res, err := Check(home, "p", name)
	require.NoError(t, err)
	assert.Equal(t, Current, res.Signal)
}

func TestCheck_OrphanWhenManagedFileUntracked(t *testing.T) {
	home, name := setup(t)
	require.NoError(t, writer.SyncCodebase(home, name, false).Err)

	store, err := hashstore.Load(home, name)
	require.NoError(t, err)
	delete(store.Files, ".claude/skills.md")
	require.NoError(t, hashstore.Save(home, name, store))

	res, err := Check(home, "p", name)
	require.NoError(t, err)
	assert.Equal(t, Orphan, res.Signal)
	assert.Contains(t, res.Paths, ".claude/skills.md")
}

func TestCheck_EvaluationOrder_StaleBeatsModified(t *testing.T) {
	home, name := setup(t)
	require.NoError(t, writer.SyncCodebase(home, name, false).Err)

	cb, err := registry.FindCodebase(home, name)
	require.NoError(t, err)

	skillsPath := filepath.Join(cb.Root, ".claude", "skills.md")
	data, err := os.ReadFile(skillsPath)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(skillsPath, append(data, []byte("edit\n")...), 0600))
	require.NoError(t, os.Remove(filepath.Join(cb.Root, "CLAUDE.md")))

	res, err := Check(home, "p", name)
	require.NoError(t, err)
	assert.Equal(t, Stale, res.Signal)
}
