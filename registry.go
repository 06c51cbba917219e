package gopick

import (
	"reflect"
	"sync"
)

const (
	factorySuffix        = "$$Factory"
	memberInjectorSuffix = "$$MemberInjector"
)

type (
	// Discovery locates the generated artifacts of a concrete type. Implementations must be safe for
	// concurrent use.
	Discovery interface {
		// FindFactory returns the Factory of t, found is false when t has none.
		FindFactory(t reflect.Type) (f Factory, found bool)
		// FindMemberInjector returns the MemberInjector of t. It returns (nil, nil) when t is known
		// to have no injectable members, and ErrMemberInjectorNotFound when t is unknown.
		FindMemberInjector(t reflect.Type) (MemberInjector, error)
	}

	// Registry stores generated artifacts under deterministic names derived from the fully
	// qualified name of their type (see FactoryName and MemberInjectorName).
	Registry struct {
		mu              sync.RWMutex
		factories       map[string]Factory
		memberInjectors map[string]MemberInjector
		noMembers       map[string]struct{}
	}

	// locator caches discovery answers, the mapping from type to artifacts being static.
	locator struct {
		discovery       Discovery
		factories       sync.Map // reflect.Type -> Factory
		memberInjectors sync.Map // reflect.Type -> memberInjectorLookup
	}

	memberInjectorLookup struct {
		mi MemberInjector
	}
)

// DefaultRegistry receives the registrations of generated code.
var DefaultRegistry = NewRegistry()

func NewRegistry() *Registry {
	return &Registry{
		factories:       make(map[string]Factory),
		memberInjectors: make(map[string]MemberInjector),
		noMembers:       make(map[string]struct{}),
	}
}

// FactoryName is the name under which the Factory of t is registered.
func FactoryName(t reflect.Type) string {
	return qualifiedName(t) + factorySuffix
}

// MemberInjectorName is the name under which the MemberInjector of t is registered.
func MemberInjectorName(t reflect.Type) string {
	return qualifiedName(t) + memberInjectorSuffix
}

// RegisterFactory registers the Factory of T, replacing any previous one.
func RegisterFactory[T any](r *Registry, f Factory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.factories[FactoryName(TypeOf[T]())] = f
}

// RegisterMemberInjector registers the MemberInjector of T, replacing any previous one.
func RegisterMemberInjector[T any](r *Registry, mi MemberInjector) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.memberInjectors[MemberInjectorName(TypeOf[T]())] = mi
}

// RegisterNoMembers declares T as a type without injectable members: injecting it is a no-op.
// Types having a registered Factory are implicitly declared so.
func RegisterNoMembers[T any](r *Registry) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.noMembers[MemberInjectorName(TypeOf[T]())] = struct{}{}
}

func (r *Registry) FindFactory(t reflect.Type) (Factory, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, found := r.factories[FactoryName(t)]
	return f, found
}

func (r *Registry) FindMemberInjector(t reflect.Type) (MemberInjector, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	name := MemberInjectorName(t)
	if mi, found := r.memberInjectors[name]; found {
		return mi, nil
	}
	if _, found := r.noMembers[name]; found {
		return nil, nil
	}
	if _, found := r.factories[FactoryName(t)]; found {
		return nil, nil
	}
	return nil, ErrMemberInjectorNotFound
}

func newLocator(discovery Discovery) *locator {
	return &locator{discovery: discovery}
}

// findFactory only caches hits, so an artifact registered after a miss is still found.
func (l *locator) findFactory(t reflect.Type) (Factory, bool) {
	if cached, found := l.factories.Load(t); found {
		return cached.(Factory), true
	}
	f, found := l.discovery.FindFactory(t)
	if !found || f == nil {
		return nil, false
	}
	actual, _ := l.factories.LoadOrStore(t, f)
	return actual.(Factory), true
}

func (l *locator) findMemberInjector(t reflect.Type) (MemberInjector, error) {
	if cached, found := l.memberInjectors.Load(t); found {
		return cached.(memberInjectorLookup).mi, nil
	}
	mi, err := l.discovery.FindMemberInjector(t)
	if err != nil {
		return nil, err
	}
	actual, _ := l.memberInjectors.LoadOrStore(t, memberInjectorLookup{mi: mi})
	return actual.(memberInjectorLookup).mi, nil
}
