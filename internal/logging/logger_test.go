package logging

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func resetState(t *testing.T) string {
	t.Helper()
	tempDir := t.TempDir()

	CloseAll()
	loggers = make(map[Category]*Logger)
	logsDir = ""
	home = ""
	configLoaded = false
	cfg = loggingConfig{}

	return tempDir
}

func writeConfig(t *testing.T, homeDir, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(homeDir, "config.yaml"), []byte(content), 0600))
}

func TestAllCategoriesLog(t *testing.T) {
	tempDir := resetState(t)
	writeConfig(t, tempDir, `
logging:
  level: debug
  debug_mode: true
  categories:
    registry: true
    render: true
    writer: true
    staleness: true
    diff: true
    pipeline: true
    daemon: true
    watcher: true
    socket: true
`)

	require.NoError(t, Initialize(tempDir))
	assert.True(t, IsDebugMode())

	categories := []Category{
		CategoryRegistry, CategoryRender, CategoryWriter, CategoryStaleness,
		CategoryDiff, CategoryPipeline, CategoryDaemon, CategoryWatcher, CategorySocket,
	}

	for _, cat := range categories {
		assert.True(t, IsCategoryEnabled(cat), "category %s should be enabled", cat)
		logger := Get(cat)
		logger.Info("info message for %s", cat)
		logger.Debug("debug message for %s", cat)
		logger.Warn("warn message for %s", cat)
		logger.Error("error message for %s", cat)
	}

	CloseAll()

	entries, err := os.ReadDir(filepath.Join(tempDir, "logs"))
	require.NoError(t, err)

	for _, cat := range categories {
		found := false
		for _, entry := range entries {
			if strings.Contains(entry.Name(), string(cat)+".log") {
				found = true
				content, err := os.ReadFile(filepath.Join(tempDir, "logs", entry.Name()))
				require.NoError(t, err)
				assert.NotEmpty(t, content)
				break
			}
		}
		assert.True(t, found, "expected log file for category %s", cat)
	}
}

func TestDebugModeDisabled(t *testing.T) {
	tempDir := resetState(t)
	writeConfig(t, tempDir, `
logging:
  level: debug
  debug_mode: false
  categories:
    daemon: true
`)

	require.NoError(t, Initialize(tempDir))
	assert.False(t, IsDebugMode())
	assert.False(t, IsCategoryEnabled(CategoryDaemon))

	Get(CategoryDaemon).Info("should not be logged")
	CloseAll()

	_, err := os.Stat(filepath.Join(tempDir, "logs"))
	assert.True(t, os.IsNotExist(err), "logs directory should not be created in production mode")
}

func TestCategoryToggle(t *testing.T) {
	tempDir := resetState(t)
	writeConfig(t, tempDir, `
logging:
  level: debug
  debug_mode: true
  categories:
    daemon: true
    watcher: false
`)

	require.NoError(t, Initialize(tempDir))

	assert.True(t, IsCategoryEnabled(CategoryDaemon))
	assert.False(t, IsCategoryEnabled(CategoryWatcher))
	// Category not mentioned in config defaults to enabled.
	assert.True(t, IsCategoryEnabled(CategorySocket))

	Get(CategoryDaemon).Info("logged")
	Get(CategoryWatcher).Info("not logged")
	CloseAll()

	entries, err := os.ReadDir(filepath.Join(tempDir, "logs"))
	require.NoError(t, err)

	hasDaemon, hasWatcher := false, false
	for _, e := range entries {
		if strings.Contains(e.Name(), "daemon") {
			hasDaemon = true
		}
		if strings.Contains(e.Name(), "watcher") {
			hasWatcher = true
		}
	}
	assert.True(t, hasDaemon)
	assert.False(t, hasWatcher)
}

func TestTimerLogging(t *testing.T) {
	tempDir := resetState(t)
	writeConfig(t, tempDir, "logging:\n  level: debug\n  debug_mode: true\n")
	require.NoError(t, Initialize(tempDir))

	timer := StartTimer(CategoryPipeline, "TestOperation")
	time.Sleep(time.Millisecond)
	elapsed := timer.Stop()

	assert.Greater(t, elapsed, time.Duration(0))
	CloseAll()
}
