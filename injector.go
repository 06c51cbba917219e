package gopick

import (
	"errors"
	"fmt"
	"reflect"

	"github.com/a-peyrard/gopick/option"
)

// Kind selects how a resolved key is handed to the caller.
type Kind int

const (
	// KindInstance resolves the value synchronously.
	KindInstance Kind = iota
	// KindProvider returns a Provider[any], resolving again on every Get.
	KindProvider
	// KindLazy returns a Lazy[any], resolving once on the first Get.
	KindLazy
	// KindFuture returns a Future[any], resolving on another goroutine.
	KindFuture
)

func (k Kind) String() string {
	switch k {
	case KindInstance:
		return "instance"
	case KindProvider:
		return "provider"
	case KindLazy:
		return "lazy"
	case KindFuture:
		return "future"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Injector resolves keys and injects members on behalf of one scope. It holds no cache, all
// singletons live in scopes.
type Injector struct {
	scope   *Scope
	tracker *tracker
}

func (inj *Injector) Scope() *Scope {
	return inj.scope
}

// Resolve resolves key from the injector scope, wrapped according to kind.
func (inj *Injector) Resolve(key Key, kind Kind) (any, error) {
	if key.IsZero() {
		return nil, errors.New("cannot resolve the zero key")
	}
	if err := inj.scope.checkOpen(); err != nil {
		return nil, err
	}

	switch kind {
	case KindInstance:
		return inj.instance(key)
	case KindProvider:
		return newProvider(inj.scope, key), nil
	case KindLazy:
		return newLazy(inj.scope, key), nil
	case KindFuture:
		return newFuture(inj.scope, key), nil
	default:
		return nil, fmt.Errorf("unknown resolution kind %s", kind)
	}
}

func (inj *Injector) instance(key Key) (any, error) {
	t := inj.tracker.fork()
	defer t.reset()

	v, err := inj.scope.resolveValue(key, t)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve %s from scope %q:\n\t%w", key, inj.scope.name, err)
	}
	return v, nil
}

// Inject fills the injectable members of target using its generated MemberInjector. Injecting a
// type known to have no injectable members does nothing; injecting a type unknown to discovery
// fails with ErrMemberInjectorNotFound.
func (inj *Injector) Inject(target any) error {
	if target == nil {
		return errors.New("cannot inject members of nil")
	}
	if err := inj.scope.checkOpen(); err != nil {
		return err
	}

	typ := reflect.TypeOf(target)
	mi, err := inj.scope.tree.locator.findMemberInjector(typ)
	if err != nil {
		return fmt.Errorf("failed to inject members of %s:\n\t%w", qualifiedName(typ), err)
	}
	if mi == nil {
		return nil
	}
	return mi.InjectMembers(target, inj)
}

// GetInstance resolves T (qualified by opts) from the injector.
func GetInstance[T any](inj *Injector, opts ...option.Option[KeyOptions]) (v T, err error) {
	key := KeyOf[T](opts...)
	raw, err := inj.Resolve(key, KindInstance)
	if err != nil {
		return v, err
	}
	return cast[T](key, raw)
}

// GetProvider returns a Provider of T, resolving T again on every call.
func GetProvider[T any](inj *Injector, opts ...option.Option[KeyOptions]) (Provider[T], error) {
	key := KeyOf[T](opts...)
	raw, err := inj.Resolve(key, KindProvider)
	if err != nil {
		return nil, err
	}
	inner := raw.(Provider[any])
	return ProviderFunc[T](func() (v T, err error) {
		resolved, err := inner.Get()
		if err != nil {
			return v, err
		}
		return cast[T](key, resolved)
	}), nil
}

// GetLazy returns a Lazy of T, resolving T once, on first access.
func GetLazy[T any](inj *Injector, opts ...option.Option[KeyOptions]) (Lazy[T], error) {
	key := KeyOf[T](opts...)
	raw, err := inj.Resolve(key, KindLazy)
	if err != nil {
		return nil, err
	}
	inner := raw.(Lazy[any])
	return ProviderFunc[T](func() (v T, err error) {
		resolved, err := inner.Get()
		if err != nil {
			return v, err
		}
		return cast[T](key, resolved)
	}), nil
}

// GetFuture starts resolving T on another goroutine.
func GetFuture[T any](inj *Injector, opts ...option.Option[KeyOptions]) (Future[T], error) {
	key := KeyOf[T](opts...)
	raw, err := inj.Resolve(key, KindFuture)
	if err != nil {
		return nil, err
	}
	return typedFuture[T]{key: key, inner: raw.(Future[any])}, nil
}
