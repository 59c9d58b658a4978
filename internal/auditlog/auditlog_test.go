package auditlog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orchestra/internal/writer"
)

func TestRecordSync_AndRecent(t *testing.T) {
	home := t.TempDir()
	log, err := Open(home)
	require.NoError(t, err)
	defer log.Close()

	results := []writer.SyncResult{
		{Codebase: "demo", Written: 3, Unchanged: 0},
	}
	require.NoError(t, log.RecordSync("all", results, 42*time.Millisecond))

	events, err := log.Recent(10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, "demo", events[0].Codebase)
	assert.Equal(t, 3, events[0].Written)
	assert.Equal(t, "all", events[0].Scope)
}

func TestRecent_NewestFirst(t *testing.T) {
	home := t.TempDir()
	log, err := Open(home)
	require.NoError(t, err)
	defer log.Close()

	require.NoError(t, log.RecordSync("all", []writer.SyncResult{{Codebase: "a"}}, 0))
	require.NoError(t, log.RecordSync("all", []writer.SyncResult{{Codebase: "b"}}, 0))

	events, err := log.Recent(10)
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.Equal(t, "b", events[0].Codebase)
}
