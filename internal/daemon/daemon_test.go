package daemon

import (
	"net"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"orchestra/internal/daemon/protocol"
	"orchestra/internal/pipeline"
)

func TestWatcher_DebounceDropsBurst(t *testing.T) {
	home := t.TempDir()
	jobs := make(chan Job, JobQueueCapacity)
	w, err := NewWatcher(home, jobs, 500*time.Millisecond)
	require.NoError(t, err)
	defer w.fsw.Close()

	path := filepath.Join(home, "projects", "p", "demo.yaml")
	assert.True(t, w.accept(path))
	assert.False(t, w.accept(path))
	assert.False(t, w.accept(path))
}

func TestWatcher_DebounceIsPerPath(t *testing.T) {
	home := t.TempDir()
	jobs := make(chan Job, JobQueueCapacity)
	w, err := NewWatcher(home, jobs, 500*time.Millisecond)
	require.NoError(t, err)
	defer w.fsw.Close()

	assert.True(t, w.accept(filepath.Join(home, "projects", "p", "a.yaml")))
	assert.True(t, w.accept(filepath.Join(home, "projects", "p", "b.yaml")))
}

func TestWatcher_DebouncePrunesOldEntries(t *testing.T) {
	home := t.TempDir()
	jobs := make(chan Job, JobQueueCapacity)
	w, err := NewWatcher(home, jobs, 100*time.Millisecond)
	require.NoError(t, err)
	defer w.fsw.Close()

	stale := filepath.Join(home, "projects", "p", "old.yaml")
	w.lastAccepted[stale] = time.Now().Add(-time.Minute)

	assert.True(t, w.accept(filepath.Join(home, "projects", "p", "new.yaml")))
	_, present := w.lastAccepted[stale]
	assert.False(t, present)
}

func TestScopeForPath_ProjectYAMLMeansAll(t *testing.T) {
	scope := scopeForPath("/x/projects/p/project.yaml")
	_, single := pipeline.ScopeCodebase(scope)
	assert.False(t, single)
}

func TestScopeForPath_StemNamesCodebase(t *testing.T) {
	scope := scopeForPath("/x/projects/p/demo.yaml")
	name, single := pipeline.ScopeCodebase(scope)
	require.True(t, single)
	assert.Equal(t, "demo", name)
}

func TestServer_DispatchUnknownCmd(t *testing.T) {
	home := t.TempDir()
	s := NewServer(home, "", NewRegistryCache(home), make(chan Job, 1), nil)

	resp := s.dispatch(protocol.Request{Cmd: "frobnicate"})
	assert.False(t, resp.OK)
	assert.Contains(t, resp.Error, "unknown cmd")
}

func TestServer_StaleSocketIsReplaced(t *testing.T) {
	home := t.TempDir()
	sock := filepath.Join(home, "daemon.sock")
	require.NoError(t, os.WriteFile(sock, nil, 0600))

	s := NewServer(home, "", NewRegistryCache(home), make(chan Job, 1), nil)
	ln, err := s.Listen()
	require.NoError(t, err)
	defer ln.Close()
	defer os.Remove(sock)

	conn, err := net.Dial("unix", sock)
	require.NoError(t, err)
	conn.Close()

	info, err := os.Stat(sock)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}

func TestServer_LiveSocketRefusesDoubleBind(t *testing.T) {
	home := t.TempDir()
	s1 := NewServer(home, "", NewRegistryCache(home), make(chan Job, 1), nil)
	ln, err := s1.Listen()
	require.NoError(t, err)
	defer ln.Close()

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			conn.Close()
		}
	}()

	s2 := NewServer(home, "", NewRegistryCache(home), make(chan Job, 1), nil)
	_, err = s2.Listen()
	assert.Error(t, err)
}

func TestTailLogs_MissingFileIsEmpty(t *testing.T) {
	lines, err := TailLogs(t.TempDir(), 10)
	require.NoError(t, err)
	assert.Empty(t, lines)
}

func TestTailLogs_ReturnsLastN(t *testing.T) {
	home := t.TempDir()
	dir := filepath.Join(home, "logs")
	require.NoError(t, os.MkdirAll(dir, 0700))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "daemon.log"),
		[]byte("one\ntwo\nthree\nfour\n"), 0600))

	lines, err := TailLogs(home, 2)
	require.NoError(t, err)
	assert.Equal(t, []string{"three", "four"}, lines)
}

func TestService_SpecPointsAtHome(t *testing.T) {
	home := t.TempDir()
	spec := Service(home)
	assert.Equal(t, home, spec.WorkingDir)
	assert.Contains(t, spec.Args, "--home")
	assert.Equal(t, filepath.Join(home, "logs", "daemon.log"), spec.StdoutPath)
}
