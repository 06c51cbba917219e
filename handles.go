package gopick

import (
	"context"
	"reflect"
	"sync"
)

type (
	// Provider returns a value for a key each time it is asked. Providers obtained from an injector
	// perform a full resolution on every call: unscoped keys get a fresh instance each time while
	// singletons come from the owning scope cache.
	Provider[T any] interface {
		Get() (T, error)
	}

	// ProviderFunc adapts a function to a Provider.
	ProviderFunc[T any] func() (T, error)

	// Lazy resolves its key on the first Get and keeps the value for its own lifetime. A failed
	// resolution is not kept: the next Get resolves again. It is safe for concurrent use.
	Lazy[T any] interface {
		Get() (T, error)
	}

	// Future resolves its key on another goroutine. Get blocks until the resolution completes or
	// ctx is done; cancelling ctx only stops the wait, never the resolution itself.
	Future[T any] interface {
		Get(ctx context.Context) (T, error)
		Done() <-chan struct{}
	}

	lazyHandle[T any] struct {
		scope   *Scope
		resolve func() (T, error)

		mu       sync.Mutex
		resolved bool
		value    T
	}

	futureHandle[T any] struct {
		done  chan struct{}
		value T
		err   error
	}

	// typedFuture narrows an untyped future to T.
	typedFuture[T any] struct {
		key   Key
		inner Future[any]
	}
)

func (f ProviderFunc[T]) Get() (T, error) {
	return f()
}

func newProvider(scope *Scope, key Key) Provider[any] {
	return ProviderFunc[any](func() (any, error) {
		return scope.Injector().instance(key)
	})
}

func newLazy(scope *Scope, key Key) Lazy[any] {
	return &lazyHandle[any]{
		scope: scope,
		resolve: func() (any, error) {
			return scope.Injector().instance(key)
		},
	}
}

// Get fails once the scope is closed, even when the value was already resolved.
func (l *lazyHandle[T]) Get() (v T, err error) {
	if err := l.scope.checkOpen(); err != nil {
		return v, err
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if l.resolved {
		return l.value, nil
	}
	if v, err = l.resolve(); err != nil {
		return v, err
	}
	l.value, l.resolved = v, true
	return v, nil
}

func newFuture(scope *Scope, key Key) Future[any] {
	f := &futureHandle[any]{done: make(chan struct{})}
	injector := scope.Injector()
	go func() {
		defer close(f.done)
		f.value, f.err = injector.instance(key)
	}()
	return f
}

func (f *futureHandle[T]) Get(ctx context.Context) (v T, err error) {
	select {
	case <-f.done:
		return f.value, f.err
	case <-ctx.Done():
		return v, ctx.Err()
	}
}

func (f *futureHandle[T]) Done() <-chan struct{} {
	return f.done
}

func (f typedFuture[T]) Get(ctx context.Context) (v T, err error) {
	raw, err := f.inner.Get(ctx)
	if err != nil {
		return v, err
	}
	return cast[T](f.key, raw)
}

func (f typedFuture[T]) Done() <-chan struct{} {
	return f.inner.Done()
}

// cast narrows a resolved value to T; a nil value gives the zero T.
func cast[T any](key Key, v any) (res T, err error) {
	if v == nil {
		return res, nil
	}
	res, ok := v.(T)
	if !ok {
		return res, &TypeMismatchError{
			Key:      key,
			Expected: TypeOf[T](),
			Actual:   reflect.TypeOf(v),
		}
	}
	return res, nil
}

func typeOfValue(v any) reflect.Type {
	return reflect.TypeOf(v)
}
