package render

import (
	"bytes"
	"embed"
	"os"
	"path/filepath"
	"sync"
	"text/template"

	"orchestra/internal/logging"
	"orchestra/internal/orcherr"
)

// defaultTemplates bakes Orchestra's built-in per-agent templates
// into the binary. User templates of the same name take precedence.
//
//go:embed templates/*.tmpl
var defaultTemplates embed.FS

// Engine renders named templates against a TemplateContext. User-supplied
// templates under <home>/templates/<name> take precedence over the
// embedded defaults of the same name.
type Engine struct {
	home string

	mu    sync.RWMutex
	cache map[string]*template.Template
}

// NewEngine builds an Engine rooted at the Orchestra home directory used
// to look up user template overrides.
func NewEngine(home string) *Engine {
	return &Engine{home: home, cache: make(map[string]*template.Template)}
}

// Render executes the named template against ctx, returning the rendered
// bytes. Output is deterministic: the same ctx and template always
// produce byte-identical output.
func (e *Engine) Render(name string, ctx TemplateContext) ([]byte, error) {
	tmpl, err := e.load(name)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return nil, orcherr.Fmt(orcherr.KindRender, "execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}

func (e *Engine) load(name string) (*template.Template, error) {
	e.mu.RLock()
	if t, ok := e.cache[name]; ok {
		e.mu.RUnlock()
		return t, nil
	}
	e.mu.RUnlock()

	e.mu.Lock()
	defer e.mu.Unlock()
	if t, ok := e.cache[name]; ok {
		return t, nil
	}

	var src []byte
	userPath := filepath.Join(e.home, "templates", name)
	if data, err := os.ReadFile(userPath); err == nil {
		logging.Get(logging.CategoryRender).Info("using user template override %s", userPath)
		src = data
	} else {
		data, err := defaultTemplates.ReadFile("templates/" + name)
		if err != nil {
			return nil, orcherr.Fmt(orcherr.KindRender, "no template named %s: %w", name, err)
		}
		src = data
	}

	t, err := template.New(name).Parse(string(src))
	if err != nil {
		return nil, orcherr.Fmt(orcherr.KindRender, "parse template %s: %w", name, err)
	}
	e.cache[name] = t
	return t, nil
}
