package gopick

import (
	"sync"

	"github.com/a-peyrard/gopick/option"
)

// Module is a named set of bindings, installed in exactly one scope.
//
// A module holds at most one binding per key: binding a key twice replaces the first binding
// (last registration wins) without any error. The builder returned by the first Bind is detached
// and no longer affects the module.
type Module struct {
	name string

	mu       sync.Mutex
	order    []Key
	bindings map[Key]*Binding
}

func NewModule(name string) *Module {
	return &Module{
		name:     name,
		bindings: make(map[Key]*Binding),
	}
}

func (m *Module) Name() string {
	return m.name
}

// Bind registers a binding for T (qualified by opts) in the module. Without further calls on the
// returned builder, T is bound to its own class.
func Bind[T any](m *Module, opts ...option.Option[KeyOptions]) *BindingBuilder[T] {
	key := KeyOf[T](opts...)
	b := newBinding[T](key)

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, exists := m.bindings[key]; !exists {
		m.order = append(m.order, key)
	}
	m.bindings[key] = b

	return &BindingBuilder[T]{binding: b}
}

// Bindings returns a snapshot of the module bindings, in first registration order of their keys.
func (m *Module) Bindings() []Binding {
	m.mu.Lock()
	defer m.mu.Unlock()

	bindings := make([]Binding, 0, len(m.order))
	for _, key := range m.order {
		bindings = append(bindings, *m.bindings[key])
	}
	return bindings
}

// Len returns the number of distinct keys bound in the module.
func (m *Module) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.bindings)
}
