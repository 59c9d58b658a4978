package diff

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestComputeDiff_SimpleAddition(t *testing.T) {
	old := "line one\nline two\n"
	new := "line one\nline two\nline three\n"

	fd := ComputeDiff("a.md", "a.md", old, new)
	require.Len(t, fd.Hunks, 1)

	var added []string
	for _, line := range fd.Hunks[0].Lines {
		if line.Type == LineAdded {
			added = append(added, line.Content)
		}
	}
	assert.Equal(t, []string{"line three"}, added)
}

func TestComputeDiff_SimpleDeletion(t *testing.T) {
	old := "keep\ndrop\nkeep too\n"
	new := "keep\nkeep too\n"

	fd := ComputeDiff("a.md", "a.md", old, new)
	require.Len(t, fd.Hunks, 1)

	var removed []string
	for _, line := range fd.Hunks[0].Lines {
		if line.Type == LineRemoved {
			removed = append(removed, line.Content)
		}
	}
	assert.Equal(t, []string{"drop"}, removed)
}

func TestComputeDiff_NewFile(t *testing.T) {
	fd := ComputeDiff("a.md", "a.md", "", "content\n")
	assert.True(t, fd.IsNew)
	assert.False(t, fd.IsDelete)
	require.NotEmpty(t, fd.Hunks)
}

func TestComputeDiff_DeletedFile(t *testing.T) {
	fd := ComputeDiff("a.md", "a.md", "content\n", "")
	assert.True(t, fd.IsDelete)
	require.NotEmpty(t, fd.Hunks)
}

func TestComputeDiff_NoChanges(t *testing.T) {
	content := "same\ncontent\n"
	fd := ComputeDiff("a.md", "a.md", content, content)
	assert.Empty(t, fd.Hunks)
}

func TestComputeDiff_MultipleHunks(t *testing.T) {
	var oldLines, newLines []string
	for i := 0; i < 30; i++ {
		line := fmt.Sprintf("line %d", i)
		oldLines = append(oldLines, line)
		newLines = append(newLines, line)
	}
	newLines[2] = "changed near top"
	newLines[27] = "changed near bottom"

	fd := ComputeDiff("a.md", "a.md",
		strings.Join(oldLines, "\n")+"\n",
		strings.Join(newLines, "\n")+"\n")
	assert.Len(t, fd.Hunks, 2)
}

func TestComputeDiff_ContextLinesBoundHunk(t *testing.T) {
	var lines []string
	for i := 0; i < 20; i++ {
		lines = append(lines, fmt.Sprintf("line %d", i))
	}
	changed := make([]string, len(lines))
	copy(changed, lines)
	changed[10] = "modified"

	fd := ComputeDiff("a.md", "a.md",
		strings.Join(lines, "\n")+"\n",
		strings.Join(changed, "\n")+"\n")
	require.Len(t, fd.Hunks, 1)

	var context int
	for _, line := range fd.Hunks[0].Lines {
		if line.Type == LineContext {
			context++
		}
	}
	// 3 lines of context on each side of the single change.
	assert.Equal(t, 6, context)
}

func TestComputeDiff_HunkCounts(t *testing.T) {
	old := "a\nb\nc\nd\n"
	new := "a\nB\nc\nd\n"

	fd := ComputeDiff("a.md", "a.md", old, new)
	require.Len(t, fd.Hunks, 1)

	h := fd.Hunks[0]
	assert.Equal(t, 4, h.OldCount)
	assert.Equal(t, 4, h.NewCount)
	assert.Equal(t, 1, h.OldStart)
	assert.Equal(t, 1, h.NewStart)
}

func TestUnified_EmptyDiffRendersEmpty(t *testing.T) {
	fd := ComputeDiff("a.md", "a.md", "same\n", "same\n")
	assert.Empty(t, Unified(fd))
}

func TestUnified_ShowsHeadersAndMarkers(t *testing.T) {
	fd := ComputeDiff("a.md", "a.md", "one\n", "one\ntwo\n")
	text := Unified(fd)
	assert.Contains(t, text, "--- a.md")
	assert.Contains(t, text, "+++ a.md")
	assert.Contains(t, text, "+two")
	assert.Contains(t, text, "@@")
}

func TestUnified_NewFileUsesDevNull(t *testing.T) {
	fd := ComputeDiff("a.md", "a.md", "", "fresh\n")
	text := Unified(fd)
	assert.Contains(t, text, "--- /dev/null")
}
