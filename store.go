package gopick

import (
	"errors"
	"fmt"
	"io"
	"sync"
)

type (
	slot int

	cacheKey struct {
		key  Key
		slot slot
	}

	// store is the singleton cache of one scope.
	store struct {
		inner sync.Map // cacheKey -> any

		mu     sync.RWMutex
		order  []cacheKey
		closed bool
	}
)

const (
	// slotValue holds the value resolved for a key.
	slotValue slot = iota
	// slotProvider holds the provider built for a provider class binding.
	slotProvider
)

func (c cacheKey) String() string {
	if c.slot == slotProvider {
		return c.key.String() + "#provider"
	}
	return c.key.String()
}

func newStore() *store {
	return &store{}
}

func (s *store) get(k cacheKey) (comp any, found bool) {
	return s.inner.Load(k)
}

// put stores comp unless k already holds a component, which is then returned instead. It fails
// once the store is closed.
func (s *store) put(k cacheKey, comp any) (actual any, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, false
	}
	actual, loaded := s.inner.LoadOrStore(k, comp)
	if !loaded {
		s.order = append(s.order, k)
	}
	return actual, true
}

func (s *store) keys() []cacheKey {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]cacheKey(nil), s.order...)
}

func (s *store) len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// close discards the cache, closing the io.Closer components in reverse creation order.
func (s *store) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	var closeErrors []error
	for i := len(s.order) - 1; i >= 0; i-- {
		k := s.order[i]
		raw, _ := s.inner.LoadAndDelete(k)
		if closer, ok := raw.(io.Closer); ok {
			if err := closer.Close(); err != nil {
				closeErrors = append(closeErrors, fmt.Errorf("failed to close component %s:\n\t%w", k, err))
			}
		}
	}
	s.order = nil

	return errors.Join(closeErrors...)
}
