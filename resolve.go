package gopick

import (
	"io"
)

// resolveValue resolves key from s: the nearest binding walking up to the root wins, unbound keys
// fall back on the just-in-time factory of their type.
func (s *Scope) resolveValue(key Key, t *tracker) (any, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	if owner, binding, found := s.lookup(key); found {
		return owner.provideBinding(s, binding, t)
	}
	return s.provideJustInTime(key, t)
}

// lookup seals every scope it walks: their bindings took part in a resolution.
func (s *Scope) lookup(key Key) (owner *Scope, b Binding, found bool) {
	for current := s; current != nil; current = current.parent {
		current.sealed.Store(true)

		current.mu.RLock()
		b, found = current.bindings[key]
		current.mu.RUnlock()
		if found {
			return current, b, true
		}
	}
	return nil, Binding{}, false
}

// provideBinding serves b on behalf of caller. Cached components are built with the injector of
// s, the owner of b, other ones with the injector of caller so its own bindings apply.
func (s *Scope) provideBinding(caller *Scope, b Binding, t *tracker) (any, error) {
	if err := s.checkOpen(); err != nil {
		return nil, err
	}
	ck := cacheKey{key: b.key, slot: slotValue}

	switch b.mode {
	case ModeInstance:
		return b.instance, nil

	case ModeProviderInstance:
		get := func() (any, error) {
			return provide(b.key, b.provider)
		}
		if b.providesSingleton {
			return s.singleton(ck, t, get)
		}
		return s.build(ck, t, get)

	case ModeClass:
		f, found := s.tree.locator.findFactory(b.target.typ)
		if !found {
			return nil, &UnresolvableBindingError{Key: b.target, Scope: s.name}
		}
		if b.singleton || f.HasSingletonAnnotation() {
			return s.singleton(ck, t, s.creator(b.key, f, t))
		}
		return caller.build(ck, t, caller.creator(b.key, f, t))

	case ModeProviderClass:
		f, found := s.tree.locator.findFactory(b.target.typ)
		if !found {
			return nil, &UnresolvableBindingError{Key: b.target, Scope: s.name}
		}
		cached := b.providesSingleton || f.HasProducesSingletonAnnotation()
		builder := caller
		if cached {
			builder = s
		}
		get := func() (any, error) {
			provider, err := s.providerOf(builder, b, f, t)
			if err != nil {
				return nil, err
			}
			return provide(b.key, provider)
		}
		if cached {
			return s.singleton(ck, t, get)
		}
		return caller.build(ck, t, get)

	default:
		return nil, &InvalidBindingError{Key: b.key, Reason: "unknown binding mode " + b.mode.String()}
	}
}

// providerOf fetches from the cache of s, the owner of b, the provider object of a provider class
// binding. A provider object which is not cached is built with the injector of builder.
func (s *Scope) providerOf(builder *Scope, b Binding, f Factory, t *tracker) (Provider[any], error) {
	pk := cacheKey{key: b.key, slot: slotProvider}

	var (
		raw any
		err error
	)
	if b.singleton || f.HasSingletonAnnotation() {
		raw, err = s.singleton(pk, t, s.creator(b.target, f, t))
	} else {
		raw, err = builder.build(pk, t, builder.creator(b.target, f, t))
	}
	if err != nil {
		return nil, err
	}

	provider, ok := b.asProvider(raw)
	if !ok {
		return nil, &TypeMismatchError{
			Key:      b.target,
			Expected: b.providerType,
			Actual:   typeOfValue(raw),
		}
	}
	return provider, nil
}

// provideJustInTime builds an unbound key with the factory of its type. The binding is rooted in
// s: a singleton lands in s cache, unless s or an ancestor already holds one.
func (s *Scope) provideJustInTime(key Key, t *tracker) (any, error) {
	if key.IsQualified() || s.tree.config.DisableJustInTime {
		return nil, &UnresolvableBindingError{Key: key, Scope: s.name}
	}
	f, found := s.tree.locator.findFactory(key.typ)
	if !found {
		return nil, &UnresolvableBindingError{Key: key, Scope: s.name}
	}

	ck := cacheKey{key: key, slot: slotValue}
	create := s.creator(key, f, t)
	if !f.HasSingletonAnnotation() {
		return s.build(ck, t, create)
	}
	for scope := s; scope != nil; scope = scope.parent {
		if v, found := scope.store.get(ck); found {
			return v, nil
		}
	}
	return s.singleton(ck, t, create)
}

// singleton returns the component cached under ck, creating it at most once per scope. Concurrent
// first resolutions share the same flight.
func (s *Scope) singleton(ck cacheKey, t *tracker, create func() (any, error)) (any, error) {
	if v, found := s.store.get(ck); found {
		return v, nil
	}
	// pushed before entering the flight: a cycle would otherwise wait on itself
	if err := t.push(ck); err != nil {
		return nil, err
	}
	defer t.pop()

	v, err, _ := s.flight.Do(ck.String(), func() (any, error) {
		if v, found := s.store.get(ck); found {
			return v, nil
		}
		v, err := create()
		if err != nil {
			return nil, err
		}
		actual, ok := s.store.put(ck, v)
		if !ok {
			if closer, isCloser := v.(io.Closer); isCloser {
				_ = closer.Close()
			}
			return nil, s.closedError()
		}
		s.logger.Debug().Stringer("key", ck).Msg("Singleton created")
		return actual, nil
	})
	return v, err
}

func (s *Scope) build(ck cacheKey, t *tracker, create func() (any, error)) (any, error) {
	if err := t.push(ck); err != nil {
		return nil, err
	}
	defer t.pop()
	return create()
}

// creator runs f with an injector of s, following the chain of t.
func (s *Scope) creator(key Key, f Factory, t *tracker) func() (any, error) {
	return func() (any, error) {
		v, err := f.CreateInstance(s.injectorFor(t))
		if err != nil {
			return nil, constructionFailure(key, err)
		}
		return v, nil
	}
}

func provide(key Key, provider Provider[any]) (any, error) {
	v, err := provider.Get()
	if err != nil {
		return nil, constructionFailure(key, err)
	}
	return v, nil
}
