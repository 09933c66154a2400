package themes

import (
	"sort"
	"strings"
)

type Registry struct {
	themes map[string]Theme
}

func NewRegistry(themes ...Theme) *Registry {
	r := &Registry{themes: make(map[string]Theme, len(themes))}
	for _, t := range themes {
		r.themes[normalizeSlug(t.Slug)] = t.clone()
	}
	return r
}

// DefaultRegistry holds the built-in designs.
func DefaultRegistry() *Registry {
	return NewRegistry(Builtins()...)
}

func normalizeSlug(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Resolve returns the theme for slug with cfg overrides applied. A slug that is not registered
// resolves only when cfg.Base names a registered theme.
func (r *Registry) Resolve(slug string, cfg Config) (Theme, bool) {
	if t, ok := r.themes[normalizeSlug(slug)]; ok {
		return cfg.apply(t), true
	}
	if cfg.Base == "" {
		return Theme{}, false
	}
	base, ok := r.themes[normalizeSlug(cfg.Base)]
	if !ok {
		return Theme{}, false
	}
	t := cfg.apply(base)
	t.Slug = normalizeSlug(slug)
	return t, true
}

// Slugs lists the registered designs, sorted. Stored templates may name any of them as their base.
func (r *Registry) Slugs() []string {
	out := make([]string, 0, len(r.themes))
	for s := range r.themes {
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
