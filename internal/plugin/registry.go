package plugin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/boxbuild/boxbuild/internal/logger"
	boxerrors "github.com/boxbuild/boxbuild/pkg/errors"
)

// Registry maps step kinds to their plugin implementations.
type Registry struct {
	mu      sync.RWMutex
	plugins map[string]Plugin
	log     *logger.Logger
}

// NewRegistry creates an empty plugin registry.
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{plugins: make(map[string]Plugin), log: log}
}

// Register adds a plugin implementation for the provided step kind.
func (r *Registry) Register(kind string, p Plugin) error {
	if p == nil {
		return boxerrors.NewPluginError(kind, fmt.Errorf("plugin is nil"))
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.plugins[kind]; exists {
		return boxerrors.NewPluginError(kind, fmt.Errorf("plugin already registered"))
	}

	r.plugins[kind] = p
	r.log.WithFields(map[string]any{"kind": kind}).Debug("registered step plugin")
	return nil
}

// Get retrieves a plugin by step kind.
func (r *Registry) Get(kind string) (Plugin, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.plugins[kind]
	if !ok {
		return nil, boxerrors.NewPluginError(kind, fmt.Errorf("no plugin registered"))
	}

	return p, nil
}

// Kinds lists the registered step kinds in sorted order.
func (r *Registry) Kinds() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]string, 0, len(r.plugins))
	for kind := range r.plugins {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	return kinds
}
