// Package plugin is the host side of the parser plugin boundary: a registry
// of element parsers keyed by tag, and the object store that carries parsed
// elements between them.
package plugin

import (
	"fmt"
	"sort"
	"sync"

	"github.com/kingrea/arbitrary-partials/internal/document"
	"github.com/kingrea/arbitrary-partials/internal/logging"
)

// Scope resolves idref attributes to previously parsed objects.
type Scope interface {
	Lookup(id string) (any, bool)
}

// Parser turns one document element into an object.
type Parser interface {
	// Name is the element tag the parser handles.
	Name() string
	Description() string
	// Returns names the type of object Parse produces.
	Returns() string
	// Rules are evaluated against the element before Parse is called.
	Rules() []document.Rule
	Parse(scope Scope, node *document.Node) (any, error)
}

// Plugin bundles a set of parsers for installation.
type Plugin interface {
	Parsers() []Parser
}

// Option customizes a Registry.
type Option func(*Registry)

// WithLogger attaches a logger for element outcomes.
func WithLogger(l *logging.Logger) Option {
	return func(r *Registry) {
		if l != nil {
			r.logger = l
		}
	}
}

// Registry maintains known parsers.
type Registry struct {
	mu      sync.RWMutex
	parsers map[string]Parser
	logger  *logging.Logger
}

// NewRegistry returns an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{parsers: map[string]Parser{}, logger: logging.Noop()}
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// Register installs a parser. Returns an error if the name already exists.
func (r *Registry) Register(p Parser) error {
	if p == nil {
		return fmt.Errorf("plugin: parser is required")
	}
	name := p.Name()
	if name == "" {
		return fmt.Errorf("plugin: parser name is required")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.parsers[name]; exists {
		return fmt.Errorf("plugin: %s already registered", name)
	}
	r.parsers[name] = p
	return nil
}

// MustRegister panics if registration fails.
func (r *Registry) MustRegister(p Parser) {
	if err := r.Register(p); err != nil {
		panic(err)
	}
}

// Install registers every parser contributed by the plugins.
func (r *Registry) Install(plugins ...Plugin) error {
	for _, pl := range plugins {
		if pl == nil {
			continue
		}
		for _, p := range pl.Parsers() {
			if err := r.Register(p); err != nil {
				return err
			}
		}
	}
	return nil
}

// Lookup returns the parser registered for tag.
func (r *Registry) Lookup(tag string) (Parser, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.parsers[tag]
	return p, ok
}

// Names returns a sorted list of registered parser names.
func (r *Registry) Names() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.parsers))
	for name := range r.parsers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Parse validates node against its parser's rules and runs the parser.
func (r *Registry) Parse(scope Scope, node *document.Node) (any, error) {
	p, ok := r.Lookup(node.Tag)
	if !ok {
		return nil, document.Errorf(node, "unknown element %q", node.Tag)
	}
	if err := document.Evaluate(node, p.Rules()); err != nil {
		return nil, err
	}
	if scope == nil {
		scope = NewStore()
	}
	return p.Parse(scope, node)
}

// ParseDocument parses every top-level element of root in document order.
// Elements carrying an id are stored so later elements can refer to them.
// The first failure aborts the whole document.
func (r *Registry) ParseDocument(root *document.Node) (*Store, error) {
	store := NewStore()
	for _, child := range root.Children() {
		value, err := r.Parse(store, child)
		r.logger.LogElement(child.Tag, child.ID(), err)
		if err != nil {
			return nil, err
		}
		if err := store.Put(child.ID(), child.Tag, value); err != nil {
			return nil, document.NewStructuralError(child, "register element", err)
		}
	}
	return store, nil
}
