// Package diff computes line-level, hunked diffs between a rendered
// candidate and its on-disk counterpart, using the sergi/go-diff
// library rather than a hand-rolled LCS.
package diff

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// contextLines is the number of unchanged lines kept on each side of a
// hunk's changes.
const contextLines = 3

// LineType classifies a single diff line.
type LineType int

const (
	LineContext LineType = iota
	LineAdded
	LineRemoved
)

// Line is one line in a hunk.
type Line struct {
	Content string
	Type    LineType
}

// Hunk is a contiguous group of changes plus surrounding context.
type Hunk struct {
	OldStart int
	OldCount int
	NewStart int
	NewCount int
	Lines    []Line
}

// FileDiff is the structured diff of one managed path. IsNew marks an
// empty old side (the content exists only on the new side); IsDelete
// marks an empty new side.
type FileDiff struct {
	OldPath  string
	NewPath  string
	Hunks    []Hunk
	IsNew    bool
	IsDelete bool
}

// Engine wraps a diffmatchpatch instance tuned for accuracy over speed:
// registry files and rendered outputs are small, so the timeout is
// disabled entirely.
type Engine struct {
	dmp *diffmatchpatch.DiffMatchPatch
}

// NewEngine creates a diff engine.
func NewEngine() *Engine {
	dmp := diffmatchpatch.New()
	dmp.DiffTimeout = 0
	return &Engine{dmp: dmp}
}

var defaultEngine = NewEngine()

// ComputeDiff diffs oldContent against newContent using the default
// engine. Identical inputs yield a FileDiff with no hunks.
func ComputeDiff(oldPath, newPath, oldContent, newContent string) *FileDiff {
	return defaultEngine.ComputeDiff(oldPath, newPath, oldContent, newContent)
}

// ComputeDiff diffs oldContent against newContent. A line-level
// reduction runs before the character diff so hunk boundaries always
// fall on newlines.
func (e *Engine) ComputeDiff(oldPath, newPath, oldContent, newContent string) *FileDiff {
	fd := &FileDiff{
		OldPath:  oldPath,
		NewPath:  newPath,
		IsNew:    oldContent == "",
		IsDelete: newContent == "",
	}

	a, b, lineArray := e.dmp.DiffLinesToChars(oldContent, newContent)
	diffs := e.dmp.DiffMain(a, b, false)
	diffs = e.dmp.DiffCleanupSemantic(diffs)
	diffs = e.dmp.DiffCharsToLines(diffs, lineArray)

	fd.Hunks = groupIntoHunks(diffsToOperations(diffs))
	return fd
}

// operation is a single line with its position on each side; -1 marks a
// side the line does not exist on.
type operation struct {
	typ     LineType
	oldLine int
	newLine int
	content string
}

// diffsToOperations flattens diffmatchpatch runs into per-line
// operations with old/new line positions.
func diffsToOperations(diffs []diffmatchpatch.Diff) []operation {
	var ops []operation
	oldLine, newLine := 0, 0

	for _, d := range diffs {
		lines := strings.Split(d.Text, "\n")
		if len(lines) > 0 && lines[len(lines)-1] == "" {
			lines = lines[:len(lines)-1]
		}

		for _, line := range lines {
			switch d.Type {
			case diffmatchpatch.DiffEqual:
				ops = append(ops, operation{LineContext, oldLine, newLine, line})
				oldLine++
				newLine++
			case diffmatchpatch.DiffDelete:
				ops = append(ops, operation{LineRemoved, oldLine, -1, line})
				oldLine++
			case diffmatchpatch.DiffInsert:
				ops = append(ops, operation{LineAdded, -1, newLine, line})
				newLine++
			}
		}
	}

	return ops
}

// groupIntoHunks splits the operation stream into hunks, keeping
// contextLines of unchanged lines around each run of changes.
func groupIntoHunks(ops []operation) []Hunk {
	if len(ops) == 0 {
		return nil
	}

	var hunks []Hunk
	var current *Hunk
	lastChangeIdx := -1

	for i, op := range ops {
		if op.typ != LineContext {
			if current == nil {
				current = &Hunk{}
				start := i - contextLines
				if start < 0 {
					start = 0
				}
				for j := start; j < i; j++ {
					if ops[j].typ == LineContext {
						current.Lines = append(current.Lines, Line{Content: ops[j].content, Type: LineContext})
					}
				}
				current.OldStart = ops[start].oldLine + 1
				current.NewStart = ops[start].newLine + 1
				if ops[start].oldLine < 0 {
					current.OldStart = 0
				}
				if ops[start].newLine < 0 {
					current.NewStart = 0
				}
			}
			lastChangeIdx = i
		}

		if current == nil {
			continue
		}
		current.Lines = append(current.Lines, Line{Content: op.content, Type: op.typ})

		// Close the hunk once enough trailing context has accumulated.
		if op.typ == LineContext && i-lastChangeIdx > contextLines {
			trimTo := len(current.Lines) - (i - lastChangeIdx - contextLines)
			if trimTo > 0 && trimTo < len(current.Lines) {
				current.Lines = current.Lines[:trimTo]
			}
			computeHunkCounts(current)
			hunks = append(hunks, *current)
			current = nil
		}
	}

	if current != nil && len(current.Lines) > 0 {
		computeHunkCounts(current)
		hunks = append(hunks, *current)
	}

	return hunks
}

func computeHunkCounts(h *Hunk) {
	for _, line := range h.Lines {
		if line.Type != LineAdded {
			h.OldCount++
		}
		if line.Type != LineRemoved {
			h.NewCount++
		}
	}
}
