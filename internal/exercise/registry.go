package exercise

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"unicode"

	log "github.com/sirupsen/logrus"
)

// Registry resolves exercise names to configurations. It is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	configs  map[string]Config
	fallback string
}

// NewRegistry returns a registry loaded with the built-in exercises.
func NewRegistry() *Registry {
	r := &Registry{
		configs:  make(map[string]Config),
		fallback: FallbackName,
	}
	for _, c := range builtins() {
		if err := r.Register(c); err != nil {
			panic(fmt.Sprintf("builtin exercise %q: %v", c.Name, err))
		}
	}
	return r
}

// Register validates c and adds it under its normalized name, replacing any
// existing entry.
func (r *Registry) Register(c Config) error {
	c.Name = Normalize(c.Name)
	if c.Phases == nil {
		c.Phases = PhasesFor(c.Archetype)
	}
	if err := c.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.configs[c.Name] = c
	return nil
}

// Get returns the config registered under name.
func (r *Registry) Get(name string) (Config, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	c, ok := r.configs[Normalize(name)]
	if !ok {
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownExercise, name)
	}
	return c, nil
}

// Lookup returns the config for name. Unknown names resolve to the fallback
// exercise; fellBack reports when that happened so callers can surface it.
func (r *Registry) Lookup(name string) (c Config, fellBack bool) {
	c, err := r.Get(name)
	if err == nil {
		return c, false
	}

	log.Warnf("exercise %q not recognized, using %q", name, r.fallback)
	c, err = r.Get(r.fallback)
	if err != nil {
		panic(fmt.Sprintf("fallback exercise %q not registered", r.fallback))
	}
	return c, true
}

// List returns every registered config sorted by name.
func (r *Registry) List() []Config {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Config, 0, len(r.configs))
	for _, c := range r.configs {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Normalize strips emoji and symbols, collapses whitespace and lower-cases a name.
func Normalize(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case unicode.IsLetter(r), unicode.IsDigit(r), unicode.IsSpace(r):
			return r
		case strings.ContainsRune("()-'/", r):
			return r
		}
		return -1
	}, name)
	return strings.ToLower(strings.Join(strings.Fields(cleaned), " "))
}
