package gopick

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"github.com/a-peyrard/gopick/option"
	"github.com/rs/zerolog"
)

type (
	// Tree holds scopes by name. Names are unique inside a tree, a closed scope frees its name.
	Tree struct {
		mu     sync.RWMutex
		scopes map[string]*Scope
		roots  []*Scope

		locator *locator
		logger  zerolog.Logger
		config  Configuration
	}

	TreeOptions struct {
		discovery Discovery
		logger    zerolog.Logger
		config    Configuration
	}
)

// WithDiscovery sets where factories and member injectors are found, DefaultRegistry by default.
func WithDiscovery(discovery Discovery) option.Option[TreeOptions] {
	return func(opts *TreeOptions) {
		opts.discovery = discovery
	}
}

func WithRegistry(registry *Registry) option.Option[TreeOptions] {
	return WithDiscovery(registry)
}

func WithLogger(logger zerolog.Logger) option.Option[TreeOptions] {
	return func(opts *TreeOptions) {
		opts.logger = logger
	}
}

func WithConfiguration(config Configuration) option.Option[TreeOptions] {
	return func(opts *TreeOptions) {
		opts.config = config
	}
}

func NewTree(opts ...option.Option[TreeOptions]) *Tree {
	options := option.Build(&TreeOptions{
		discovery: DefaultRegistry,
		logger:    zerolog.Nop(),
	}, opts...)

	logger := options.logger
	if level, ok := options.config.level(); ok {
		logger = logger.Level(level)
	}

	return &Tree{
		scopes:  make(map[string]*Scope),
		locator: newLocator(options.discovery),
		logger:  logger,
		config:  options.config,
	}
}

// OpenScope returns the open scope named name, or opens it as a new root scope.
func (t *Tree) OpenScope(name string) (*Scope, error) {
	return t.openScope(nil, name)
}

// OpenScopes opens a chain of scopes, each one a child of the previous one, and returns the last.
func (t *Tree) OpenScopes(names ...string) (*Scope, error) {
	if len(names) == 0 {
		return nil, errors.New("at least one scope name is required")
	}
	scope, err := t.OpenScope(names[0])
	if err != nil {
		return nil, err
	}
	for _, name := range names[1:] {
		if scope, err = scope.OpenChild(name); err != nil {
			return nil, err
		}
	}
	return scope, nil
}

func (t *Tree) openScope(parent *Scope, name string) (*Scope, error) {
	if name == "" {
		return nil, errors.New("scope name cannot be empty")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if existing, found := t.scopes[name]; found {
		if parent != nil && existing.parent != parent {
			return nil, fmt.Errorf("failed to open scope %q under %q:\n\t%w", name, parent.name, ErrDuplicateScope)
		}
		return existing, nil
	}

	if parent == nil {
		if t.config.PreventMultipleRootScopes && len(t.roots) > 0 {
			return nil, fmt.Errorf("failed to open root scope %q, %q is already a root:\n\t%w", name, t.roots[0].name, ErrMultipleRootScopes)
		}
		scope := newScope(t, nil, name)
		t.scopes[name] = scope
		t.roots = append(t.roots, scope)
		scope.logger.Debug().Msg("Root scope opened")
		return scope, nil
	}

	if err := parent.checkOpen(); err != nil {
		return nil, err
	}
	scope := newScope(t, parent, name)
	parent.mu.Lock()
	parent.children[name] = scope
	parent.mu.Unlock()
	t.scopes[name] = scope
	scope.logger.Debug().Str("parent", parent.name).Msg("Scope opened")
	return scope, nil
}

// Scope returns the open scope named name.
func (t *Tree) Scope(name string) (*Scope, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	scope, found := t.scopes[name]
	if !found {
		return nil, fmt.Errorf("failed to find scope %q:\n\t%w", name, ErrScopeNotFound)
	}
	return scope, nil
}

// CloseScope closes the scope named name with its subtree. Closing an unknown scope does nothing.
func (t *Tree) CloseScope(name string) error {
	t.mu.RLock()
	scope, found := t.scopes[name]
	t.mu.RUnlock()
	if !found {
		return nil
	}
	return scope.Close()
}

// Roots returns the open root scopes, sorted by name.
func (t *Tree) Roots() []*Scope {
	t.mu.RLock()
	defer t.mu.RUnlock()
	roots := append([]*Scope(nil), t.roots...)
	sort.Slice(roots, func(i, j int) bool {
		return roots[i].name < roots[j].name
	})
	return roots
}

// Reset closes every scope of the tree.
func (t *Tree) Reset() error {
	var closeErrors []error
	for _, root := range t.Roots() {
		if err := root.Close(); err != nil {
			closeErrors = append(closeErrors, err)
		}
	}
	return errors.Join(closeErrors...)
}

func (t *Tree) forget(scope *Scope) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.scopes[scope.name] == scope {
		delete(t.scopes, scope.name)
	}
	for i, root := range t.roots {
		if root == scope {
			t.roots = append(t.roots[:i], t.roots[i+1:]...)
			break
		}
	}
}
