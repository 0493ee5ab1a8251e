package parsers

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/Vodeneev/propline/internal/pkg/config"
	"github.com/Vodeneev/propline/internal/pkg/interfaces"
)

// Factory builds a parser from the shared config.
type Factory func(cfg *config.Config) interfaces.Parser

// Registry maps lower-case parser names to factories.
type Registry struct {
	mu        sync.RWMutex
	factories map[string]Factory
}

func NewRegistry() *Registry {
	return &Registry{factories: make(map[string]Factory)}
}

// Default is filled by the init functions of parser packages (see package all).
var Default = NewRegistry()

func normalize(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// Register panics on empty names, nil factories and duplicates: all three
// are programming errors caught at init.
func (r *Registry) Register(name string, f Factory) {
	n := normalize(name)
	if n == "" {
		panic("parsers: empty name in Register")
	}
	if f == nil {
		panic("parsers: nil factory in Register for " + n)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.factories[n]; exists {
		panic("parsers: duplicate registration for " + n)
	}
	r.factories[n] = f
}

func (r *Registry) Factory(name string) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.factories[normalize(name)]
	return f, ok
}

// Names returns registered names, sorted.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.factories))
	for k := range r.factories {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// Build creates the parsers listed in parser.enabled_parsers, in that order,
// skipping blanks and repeats.
func (r *Registry) Build(cfg *config.Config) ([]interfaces.Parser, error) {
	var out []interfaces.Parser
	seen := make(map[string]bool)
	for _, name := range cfg.Parser.EnabledParsers {
		n := normalize(name)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		f, ok := r.Factory(n)
		if !ok {
			return nil, fmt.Errorf("parsers: unknown parser %q (available: %v)", name, r.Names())
		}
		out = append(out, f(cfg))
	}
	return out, nil
}

func Register(name string, f Factory) { Default.Register(name, f) }

func FactoryByName(name string) (Factory, bool) { return Default.Factory(name) }

func AvailableNames() []string { return Default.Names() }

func Build(cfg *config.Config) ([]interfaces.Parser, error) { return Default.Build(cfg) }
