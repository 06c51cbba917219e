package gopick

import (
	"fmt"
	"sort"

	"gopkg.in/yaml.v3"
)

// ScopeSnapshot describes the state of a scope and its subtree at one point in time.
type ScopeSnapshot struct {
	Name       string          `yaml:"name"`
	ID         string          `yaml:"id"`
	Sealed     bool            `yaml:"sealed"`
	Modules    []string        `yaml:"modules,omitempty"`
	Bindings   []string        `yaml:"bindings,omitempty"`
	Singletons []string        `yaml:"singletons,omitempty"`
	Children   []ScopeSnapshot `yaml:"children,omitempty"`
}

// Snapshot captures the scope and its open children. Bindings are sorted by key, singletons listed
// in creation order.
func (s *Scope) Snapshot() ScopeSnapshot {
	s.mu.RLock()
	snapshot := ScopeSnapshot{
		Name:    s.name,
		ID:      s.id.String(),
		Sealed:  s.sealed.Load(),
		Modules: append([]string(nil), s.modules...),
	}
	for _, b := range s.sortedBindingsLocked() {
		snapshot.Bindings = append(snapshot.Bindings, b.String())
	}
	children := s.childrenLocked()
	s.mu.RUnlock()

	for _, k := range s.store.keys() {
		snapshot.Singletons = append(snapshot.Singletons, k.String())
	}
	for _, child := range children {
		snapshot.Children = append(snapshot.Children, child.Snapshot())
	}
	return snapshot
}

func (s *Scope) sortedBindingsLocked() []Binding {
	bindings := make([]Binding, 0, len(s.bindings))
	for _, b := range s.bindings {
		bindings = append(bindings, b)
	}
	sort.Slice(bindings, func(i, j int) bool {
		return bindings[i].key.String() < bindings[j].key.String()
	})
	return bindings
}

// Dump renders every open scope of the tree as YAML.
func (t *Tree) Dump() (string, error) {
	roots := t.Roots()
	snapshots := make([]ScopeSnapshot, 0, len(roots))
	for _, root := range roots {
		snapshots = append(snapshots, root.Snapshot())
	}

	out, err := yaml.Marshal(struct {
		Scopes []ScopeSnapshot `yaml:"scopes"`
	}{Scopes: snapshots})
	if err != nil {
		return "", fmt.Errorf("failed to dump scope tree:\n\t%w", err)
	}
	return string(out), nil
}
