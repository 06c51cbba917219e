package gopick

import (
	"fmt"
	"sync"

	"github.com/a-peyrard/gopick/option"
)

type (
	// Factory builds one concrete type without reflection. One Factory is generated per injectable
	// type: it calls the type constructor, asking the injector for each of its parameters.
	Factory interface {
		CreateInstance(injector *Injector) (any, error)
		// HasSingletonAnnotation reports whether the built value is cached by the scope owning it.
		HasSingletonAnnotation() bool
		// HasProducesSingletonAnnotation reports, for a type implementing Provider, whether the values
		// it provides are cached by the scope owning it.
		HasProducesSingletonAnnotation() bool
	}

	// MemberInjector fills the injectable members of one concrete type, without reflection.
	MemberInjector interface {
		InjectMembers(target any, injector *Injector) error
	}

	FactoryOptions struct {
		singleton         bool
		producesSingleton bool
	}

	// FactoryFunc is the Factory emitted by the code generator, wrapping the constructor call.
	FactoryFunc[T any] struct {
		create  func(injector *Injector) (T, error)
		options FactoryOptions
	}

	memberInjectorFunc[T any] struct {
		inject func(target T, injector *Injector) error
	}

	// chainedMemberInjector injects the embedded type members through the embedded type own
	// MemberInjector first, then the members declared by T.
	chainedMemberInjector[T any, S any] struct {
		super    MemberInjector
		embedded func(target T) S
		inject   func(target T, injector *Injector) error
	}

	lazyMemberInjector struct {
		typName string
		find    func() (MemberInjector, error)
	}
)

// AsSingleton marks the type as singleton: the scope owning it builds it at most once.
func AsSingleton() option.Option[FactoryOptions] {
	return func(opts *FactoryOptions) {
		opts.singleton = true
	}
}

// AsProducesSingleton marks a provider type as producing a singleton.
func AsProducesSingleton() option.Option[FactoryOptions] {
	return func(opts *FactoryOptions) {
		opts.producesSingleton = true
	}
}

func NewFactory[T any](create func(injector *Injector) (T, error), opts ...option.Option[FactoryOptions]) *FactoryFunc[T] {
	return &FactoryFunc[T]{
		create:  create,
		options: option.Value(opts...),
	}
}

func (f *FactoryFunc[T]) CreateInstance(injector *Injector) (any, error) {
	v, err := f.create(injector)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (f *FactoryFunc[T]) HasSingletonAnnotation() bool {
	return f.options.singleton
}

func (f *FactoryFunc[T]) HasProducesSingletonAnnotation() bool {
	return f.options.producesSingleton
}

func (f *FactoryFunc[T]) String() string {
	return fmt.Sprintf("Factory[%s]", qualifiedName(TypeOf[T]()))
}

// NewMemberInjector wraps the generated member assignments of T.
func NewMemberInjector[T any](inject func(target T, injector *Injector) error) MemberInjector {
	return memberInjectorFunc[T]{inject: inject}
}

func (m memberInjectorFunc[T]) InjectMembers(target any, injector *Injector) error {
	typed, err := castTarget[T](target)
	if err != nil {
		return err
	}
	return m.inject(typed, injector)
}

// NewChainedMemberInjector wraps the generated member assignments of T, a type embedding S which
// has injectable members too. super is the MemberInjector of S (see LookupMemberInjector) and
// embedded projects a T onto its embedded S. The members of S are injected first.
func NewChainedMemberInjector[T any, S any](
	super MemberInjector,
	embedded func(target T) S,
	inject func(target T, injector *Injector) error,
) MemberInjector {
	return chainedMemberInjector[T, S]{
		super:    super,
		embedded: embedded,
		inject:   inject,
	}
}

func (m chainedMemberInjector[T, S]) InjectMembers(target any, injector *Injector) error {
	typed, err := castTarget[T](target)
	if err != nil {
		return err
	}
	if m.super != nil {
		if err := m.super.InjectMembers(m.embedded(typed), injector); err != nil {
			return fmt.Errorf("failed to inject embedded %s members of %T:\n\t%w", qualifiedName(TypeOf[S]()), target, err)
		}
	}
	if m.inject == nil {
		return nil
	}
	return m.inject(typed, injector)
}

// LookupMemberInjector references the MemberInjector of S, looked up from discovery on first use,
// so generated code does not depend on registration order.
func LookupMemberInjector[S any](discovery Discovery) MemberInjector {
	typ := TypeOf[S]()
	return &lazyMemberInjector{
		typName: qualifiedName(typ),
		find: sync.OnceValues(func() (MemberInjector, error) {
			return discovery.FindMemberInjector(typ)
		}),
	}
}

func (m *lazyMemberInjector) InjectMembers(target any, injector *Injector) error {
	mi, err := m.find()
	if err != nil {
		return fmt.Errorf("failed to find member injector of %s:\n\t%w", m.typName, err)
	}
	if mi == nil {
		return nil
	}
	return mi.InjectMembers(target, injector)
}

func castTarget[T any](target any) (T, error) {
	typed, ok := target.(T)
	if !ok {
		return typed, &TypeMismatchError{
			Key:      KeyOf[T](),
			Expected: TypeOf[T](),
			Actual:   typeOfValue(target),
		}
	}
	return typed, nil
}
