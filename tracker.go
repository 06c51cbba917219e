package gopick

import "sync"

type (
	// tracker follows what is being constructed along one resolution chain.
	//
	// Each resolution works on its own fork, and resets it when done: an injector kept by a built
	// component starts fresh chains afterward.
	tracker struct {
		mu    sync.Mutex
		stack []cacheKey
	}
)

func newTracker() *tracker {
	return &tracker{}
}

func (t *tracker) fork() *tracker {
	if t == nil {
		return newTracker()
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	return &tracker{stack: append([]cacheKey(nil), t.stack...)}
}

func (t *tracker) push(k cacheKey) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	for i, visited := range t.stack {
		if visited == k {
			path := make([]Key, 0, len(t.stack)-i+1)
			for _, v := range t.stack[i:] {
				path = append(path, v.key)
			}
			return &CycleError{Path: append(path, k.key)}
		}
	}
	t.stack = append(t.stack, k)
	return nil
}

func (t *tracker) pop() cacheKey {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.stack) == 0 {
		panic("tracker: pop from empty stack")
	}
	k := t.stack[len(t.stack)-1]
	t.stack = t.stack[:len(t.stack)-1]
	return k
}

func (t *tracker) reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.stack = nil
}

func (t *tracker) depth() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.stack)
}
