package gopick

import (
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// Scope is a node of a Tree. It owns the bindings of the modules installed in it and caches the
// singletons it owns. Resolutions walk from a scope up to the root, the nearest binding wins.
type Scope struct {
	id     uuid.UUID
	name   string
	tree   *Tree
	parent *Scope
	logger zerolog.Logger

	mu       sync.RWMutex
	children map[string]*Scope
	bindings map[Key]Binding
	modules  []string

	store  *store
	flight singleflight.Group

	sealed atomic.Bool
	closed atomic.Bool
}

func newScope(tree *Tree, parent *Scope, name string) *Scope {
	id := uuid.New()
	return &Scope{
		id:     id,
		name:   name,
		tree:   tree,
		parent: parent,
		logger: tree.logger.With().
			Str("scope", name).
			Str("scope_id", id.String()).
			Logger(),
		children: make(map[string]*Scope),
		bindings: make(map[Key]Binding),
		store:    newStore(),
	}
}

func (s *Scope) Name() string {
	return s.name
}

func (s *Scope) ID() uuid.UUID {
	return s.id
}

// Parent returns nil for a root scope.
func (s *Scope) Parent() *Scope {
	return s.parent
}

func (s *Scope) Root() *Scope {
	root := s
	for root.parent != nil {
		root = root.parent
	}
	return root
}

// Children returns the open children of the scope, sorted by name.
func (s *Scope) Children() []*Scope {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.childrenLocked()
}

func (s *Scope) childrenLocked() []*Scope {
	children := make([]*Scope, 0, len(s.children))
	for _, child := range s.children {
		children = append(children, child)
	}
	sort.Slice(children, func(i, j int) bool {
		return children[i].name < children[j].name
	})
	return children
}

// OpenChild opens a child scope named name, or returns it if it is already open under this scope.
func (s *Scope) OpenChild(name string) (*Scope, error) {
	return s.tree.openScope(s, name)
}

// Install registers the bindings of modules in the scope. Modules are applied in order, a binding
// for a key already bound in the scope replaces the previous one. Installing fails once the scope
// served a resolution.
func (s *Scope) Install(modules ...*Module) error {
	if err := s.checkOpen(); err != nil {
		return err
	}

	var bindings []Binding
	names := make([]string, 0, len(modules))
	for _, m := range modules {
		if m == nil {
			return fmt.Errorf("failed to install modules in scope %q:\n\tnil module", s.name)
		}
		for _, b := range m.Bindings() {
			if b.invalid != "" {
				return &InvalidBindingError{Module: m.Name(), Key: b.key, Reason: b.invalid}
			}
			bindings = append(bindings, b)
		}
		names = append(names, m.Name())
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.sealed.Load() {
		return fmt.Errorf("failed to install modules %v in scope %q:\n\t%w", names, s.name, ErrScopeSealed)
	}
	for _, b := range bindings {
		if previous, found := s.bindings[b.key]; found {
			s.logger.Debug().
				Stringer("previous", previous).
				Stringer("binding", b).
				Msg("Binding overridden")
		}
		s.bindings[b.key] = b
	}
	s.modules = append(s.modules, names...)

	s.logger.Debug().
		Strs("modules", names).
		Int("bindings", len(bindings)).
		Msg("Modules installed")
	return nil
}

// Injector returns an injector resolving from this scope.
func (s *Scope) Injector() *Injector {
	return &Injector{scope: s}
}

// injectorFor returns the injector handed to factories building on the chain followed by t.
func (s *Scope) injectorFor(t *tracker) *Injector {
	return &Injector{scope: s, tracker: t}
}

func (s *Scope) IsClosed() bool {
	return s.closed.Load()
}

// Close closes the scope and its whole subtree, children first. The singletons cached by closed
// scopes are discarded, the ones implementing io.Closer are closed. Closing twice does nothing.
func (s *Scope) Close() error {
	if !s.closed.CompareAndSwap(false, true) {
		return nil
	}

	// children are listed under the tree lock, no child can be opened past this point
	s.tree.mu.RLock()
	children := s.Children()
	s.tree.mu.RUnlock()

	var closeErrors []error
	for _, child := range children {
		if err := child.Close(); err != nil {
			closeErrors = append(closeErrors, err)
		}
	}
	if err := s.store.close(); err != nil {
		closeErrors = append(closeErrors, fmt.Errorf("failed to close singletons of scope %q:\n\t%w", s.name, err))
	}

	if s.parent != nil {
		s.parent.removeChild(s)
	}
	s.tree.forget(s)

	s.logger.Debug().Msg("Scope closed")
	return errors.Join(closeErrors...)
}

func (s *Scope) removeChild(child *Scope) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.children[child.name] == child {
		delete(s.children, child.name)
	}
}

func (s *Scope) checkOpen() error {
	if s.closed.Load() {
		return s.closedError()
	}
	return nil
}

func (s *Scope) closedError() error {
	return &ClosedScopeError{Scope: s.name, ID: s.id.String()}
}

func (s *Scope) String() string {
	return fmt.Sprintf("Scope(%s)", s.name)
}
