// Package prompt renders the system-prompt template with the mapped job fields.
package prompt

import (
	_ "embed"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"
)

//go:embed templates/prompt_template.txt
var defaultTemplate string

// Config selects the template source. An empty Path uses the built-in template.
type Config struct {
	Path  string
	Watch bool
}

// Renderer renders the prompt template. Without Watch, a configured file is
// re-read on every render so edits take effect immediately and a deleted
// file is reported as an error.
type Renderer struct {
	cfg    Config
	logger *slog.Logger

	mu     sync.RWMutex
	cached *pongo2.Template
}

func NewRenderer(cfg Config, logger *slog.Logger) (*Renderer, error) {
	if logger == nil {
		logger = slog.Default()
	}
	r := &Renderer{cfg: cfg, logger: logger}

	if cfg.Path == "" {
		tpl, err := compile(defaultTemplate, "builtin")
		if err != nil {
			return nil, err
		}
		r.cached = tpl
		return r, nil
	}
	if cfg.Watch {
		if err := r.reload(); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Source names where the template comes from.
func (r *Renderer) Source() string {
	if r.cfg.Path == "" {
		return "builtin"
	}
	return r.cfg.Path
}

// Render substitutes data into the template.
func (r *Renderer) Render(data map[string]any) (string, error) {
	tpl, err := r.template()
	if err != nil {
		return "", err
	}
	out, err := tpl.Execute(pongo2.Context(data))
	if err != nil {
		return "", fmt.Errorf("render prompt template %s: %w", r.Source(), err)
	}
	r.logger.Debug("prompt.render.ok", "source", r.Source(), "chars", len(out))
	return strings.TrimSuffix(out, "\n"), nil
}

func (r *Renderer) template() (*pongo2.Template, error) {
	if r.cfg.Path == "" || r.cfg.Watch {
		r.mu.RLock()
		defer r.mu.RUnlock()
		return r.cached, nil
	}
	return load(r.cfg.Path)
}

func (r *Renderer) reload() error {
	tpl, err := load(r.cfg.Path)
	if err != nil {
		return err
	}
	r.mu.Lock()
	r.cached = tpl
	r.mu.Unlock()
	return nil
}

func load(path string) (*pongo2.Template, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt template: %w", err)
	}
	return compile(string(b), path)
}

// compile parses src with autoescaping off; the output is plain text.
func compile(src, name string) (*pongo2.Template, error) {
	tpl, err := pongo2.FromString("{% autoescape off %}" + src + "{% endautoescape %}")
	if err != nil {
		return nil, fmt.Errorf("parse prompt template %s: %w", name, err)
	}
	return tpl, nil
}
