package hashstore

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileIsNeverSynced(t *testing.T) {
	home := t.TempDir()
	s, err := Load(home, "demo")
	require.NoError(t, err)
	assert.Empty(t, s.Files)
	assert.Nil(t, s.SyncedAt)
}

func TestSaveLoad_RoundTrip(t *testing.T) {
	home := t.TempDir()
	s := New()
	s.Set("CLAUDE.md", Hash([]byte("hello\n")))
	now := time.Now().UTC().Truncate(time.Second)
	s.SyncedAt = &now

	require.NoError(t, Save(home, "demo", s))

	loaded, err := Load(home, "demo")
	require.NoError(t, err)
	h, ok := loaded.Get("CLAUDE.md")
	require.True(t, ok)
	assert.Equal(t, s.Files["CLAUDE.md"], h)
	require.NotNil(t, loaded.SyncedAt)
	assert.True(t, now.Equal(*loaded.SyncedAt))
}

func TestHash_CRLFNormalizesToLF(t *testing.T) {
	lf := Hash([]byte("a\nb\nc\n"))
	crlf := Hash([]byte("a\r\nb\r\nc\r\n"))
	assert.Equal(t, lf, crlf)
}

func TestIter_SortedByPath(t *testing.T) {
	s := New()
	s.Set("z.md", "h1")
	s.Set("a.md", "h2")
	entries := s.Iter()
	require.Len(t, entries, 2)
	assert.Equal(t, "a.md", entries[0].Path)
	assert.Equal(t, "z.md", entries[1].Path)
}
