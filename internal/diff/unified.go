package diff

import "fmt"

// Unified renders a FileDiff as a standard unified-diff text block.
// An empty-hunk FileDiff renders to an empty string.
func Unified(fd *FileDiff) string {
	if fd == nil || len(fd.Hunks) == 0 {
		return ""
	}

	out := fmt.Sprintf("--- %s\n+++ %s\n", displayPath(fd.OldPath, fd.IsNew), displayPath(fd.NewPath, fd.IsDelete))
	for _, h := range fd.Hunks {
		out += fmt.Sprintf("@@ -%d,%d +%d,%d @@\n", h.OldStart, h.OldCount, h.NewStart, h.NewCount)
		for _, line := range h.Lines {
			switch line.Type {
			case LineContext:
				out += " " + line.Content + "\n"
			case LineAdded:
				out += "+" + line.Content + "\n"
			case LineRemoved:
				out += "-" + line.Content + "\n"
			}
		}
	}
	return out
}

func displayPath(path string, missing bool) string {
	if missing || path == "" {
		return "/dev/null"
	}
	return path
}
