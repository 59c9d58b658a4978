package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleContext() TemplateContext {
	return TemplateContext{
		Codebase: "demo",
		Project:  "p",
		Type:     "backend",
		Tasks:    []TaskView{{ID: "t1", Title: "write docs", Status: "open"}},
	}
}

func TestRenderAll_Deterministic(t *testing.T) {
	home := t.TempDir()
	engine := NewEngine(home)
	r := NewRenderer(engine)

	out1, err := r.RenderAll(sampleContext(), Enabled(nil))
	require.NoError(t, err)
	out2, err := r.RenderAll(sampleContext(), Enabled(nil))
	require.NoError(t, err)

	require.Equal(t, len(out1), len(out2))
	for i := range out1 {
		assert.Equal(t, out1[i].Path, out2[i].Path)
		assert.Equal(t, out1[i].Data, out2[i].Data)
	}
}

func TestRenderAll_CanonicalOrder(t *testing.T) {
	home := t.TempDir()
	r := NewRenderer(NewEngine(home))
	out, err := r.RenderAll(sampleContext(), Enabled(nil))
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "CLAUDE.md", out[0].Path)
}

func TestRenderAll_UserTemplateOverride(t *testing.T) {
	home := t.TempDir()
	require.NoError(t, writeUserTemplate(home, "claude_md.tmpl", "custom for {{.Codebase}}"))

	r := NewRenderer(NewEngine(home))
	out, err := r.RenderAll(sampleContext(), []AgentKind{KindClaude})
	require.NoError(t, err)
	require.NotEmpty(t, out)
	assert.Equal(t, "custom for demo", string(out[0].Data))
}

func TestManagedPaths_PureFunctionOfKind(t *testing.T) {
	a := ManagedPaths(KindClaude)
	b := ManagedPaths(KindClaude)
	assert.Equal(t, a, b)
	assert.NotEmpty(t, a)
}

func writeUserTemplate(home, name, body string) error {
	dir := filepath.Join(home, "templates")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(dir, name), []byte(body), 0600)
}
