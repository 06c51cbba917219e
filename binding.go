package gopick

import (
	"fmt"
	"reflect"
)

// BindingMode tells how a binding produces its value.
type BindingMode int

const (
	// ModeClass builds the value with the Factory of the bound class. A binding without any
	// explicit target is a class binding to its own key type.
	ModeClass BindingMode = iota
	// ModeInstance returns an already built value.
	ModeInstance
	// ModeProviderClass builds a Provider with the Factory of the bound class, then asks it for the value.
	ModeProviderClass
	// ModeProviderInstance asks an already built Provider for the value.
	ModeProviderInstance
)

func (m BindingMode) String() string {
	switch m {
	case ModeClass:
		return "class"
	case ModeInstance:
		return "instance"
	case ModeProviderClass:
		return "provider-class"
	case ModeProviderInstance:
		return "provider-instance"
	default:
		return fmt.Sprintf("BindingMode(%d)", int(m))
	}
}

type (
	// Binding declares how a key is satisfied. Bindings are values: the copies handed out by
	// Module.Bindings and held by scopes never change.
	Binding struct {
		key  Key
		mode BindingMode

		target   Key
		instance any
		provider Provider[any]
		// asProvider converts the object built for a provider class into a Provider of the key type.
		asProvider   func(v any) (Provider[any], bool)
		providerType reflect.Type

		singleton         bool
		providesSingleton bool

		invalid string
	}

	// BindingBuilder completes a binding registered by Bind. Every call mutates the binding held
	// by the module, until the builder is detached by a later Bind for the same key.
	BindingBuilder[T any] struct {
		binding *Binding
	}
)

func (b Binding) Key() Key {
	return b.key
}

func (b Binding) Mode() BindingMode {
	return b.mode
}

// Target is the class built by ModeClass and ModeProviderClass bindings.
func (b Binding) Target() Key {
	return b.target
}

func (b Binding) Instance() any {
	return b.instance
}

// IsSingleton reports whether the built value (class binding) or the built provider (provider
// class binding) is cached by the scope owning the binding.
func (b Binding) IsSingleton() bool {
	return b.singleton
}

// ProvidesSingleton reports whether the value returned by the provider is cached by the scope.
func (b Binding) ProvidesSingleton() bool {
	return b.providesSingleton
}

func (b Binding) String() string {
	switch b.mode {
	case ModeClass, ModeProviderClass:
		return fmt.Sprintf("%s -> %s(%s)%s", b.key, b.mode, b.target, b.flags())
	default:
		return fmt.Sprintf("%s -> %s%s", b.key, b.mode, b.flags())
	}
}

func (b Binding) flags() string {
	switch {
	case b.singleton && b.providesSingleton:
		return " [singleton, provides singleton]"
	case b.singleton:
		return " [singleton]"
	case b.providesSingleton:
		return " [provides singleton]"
	default:
		return ""
	}
}

func newBinding[T any](key Key) *Binding {
	return &Binding{
		key:          key,
		mode:         ModeClass,
		target:       Key{typ: key.typ},
		asProvider:   providerAdapter[T](),
		providerType: TypeOf[Provider[T]](),
	}
}

// To binds the key to a class built by its own Factory. The class must be assignable to T.
func (bb *BindingBuilder[T]) To(class Key) *BindingBuilder[T] {
	b := bb.binding
	b.mode = ModeClass
	b.target = class
	b.invalid = ""
	if class.IsZero() {
		b.invalid = "class binding to a nil type"
	} else if !class.typ.AssignableTo(b.key.typ) {
		b.invalid = fmt.Sprintf("%s is not assignable to %s", class, b.key.typ)
	}
	return bb
}

// ToInstance binds the key to an already built value, returned as-is by every resolution.
func (bb *BindingBuilder[T]) ToInstance(instance T) *BindingBuilder[T] {
	b := bb.binding
	b.mode = ModeInstance
	b.instance = instance
	b.invalid = ""
	return bb
}

// ToProvider binds the key to a provider class, built by its own Factory. The built object must
// implement Provider[T].
func (bb *BindingBuilder[T]) ToProvider(providerClass Key) *BindingBuilder[T] {
	b := bb.binding
	b.mode = ModeProviderClass
	b.target = providerClass
	b.invalid = ""
	if providerClass.IsZero() {
		b.invalid = "provider binding to a nil type"
	} else if !providerClass.typ.Implements(b.providerType) {
		b.invalid = fmt.Sprintf("%s does not implement %s", providerClass, qualifiedName(b.providerType))
	}
	return bb
}

// ToProviderInstance binds the key to an already built provider, asked for a value on every
// resolution (unless ProvidesSingleton is set).
func (bb *BindingBuilder[T]) ToProviderInstance(provider Provider[T]) *BindingBuilder[T] {
	b := bb.binding
	b.mode = ModeProviderInstance
	b.invalid = ""
	if provider == nil {
		b.invalid = "nil provider instance"
		return bb
	}
	b.provider = ProviderFunc[any](func() (any, error) {
		return provider.Get()
	})
	return bb
}

// Singleton makes the owning scope cache the value built for a class binding, or the provider
// built for a provider class binding.
func (bb *BindingBuilder[T]) Singleton() *BindingBuilder[T] {
	bb.binding.singleton = true
	return bb
}

// ProvidesSingleton makes the owning scope cache the first value returned by the provider.
func (bb *BindingBuilder[T]) ProvidesSingleton() *BindingBuilder[T] {
	bb.binding.providesSingleton = true
	return bb
}

func providerAdapter[T any]() func(v any) (Provider[any], bool) {
	return func(v any) (Provider[any], bool) {
		typed, ok := v.(Provider[T])
		if !ok {
			return nil, false
		}
		return ProviderFunc[any](func() (any, error) {
			return typed.Get()
		}), true
	}
}
