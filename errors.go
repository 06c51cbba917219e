package gopick

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
)

var (
	// ErrUnresolvableBinding is returned when neither a binding nor a factory exists for a key.
	ErrUnresolvableBinding = errors.New("unresolvable binding")
	// ErrScopeClosed is returned by any resolution against a closed scope.
	ErrScopeClosed = errors.New("scope is closed")
	// ErrMemberInjectorNotFound is returned when injecting members on a type unknown to discovery.
	// Types known to have no injectable members are not an error, injecting them is a no-op.
	ErrMemberInjectorNotFound = errors.New("member injector not found")
	ErrCycle                  = errors.New("dependency cycle")
	// ErrScopeSealed is returned when installing modules in a scope that already served a resolution.
	ErrScopeSealed        = errors.New("scope is sealed, modules must be installed before the first resolution")
	ErrTypeMismatch       = errors.New("type mismatch")
	ErrInvalidBinding     = errors.New("invalid binding")
	ErrScopeNotFound      = errors.New("scope not found")
	ErrMultipleRootScopes = errors.New("multiple root scopes")
	ErrDuplicateScope     = errors.New("scope already exists")
)

type (
	UnresolvableBindingError struct {
		Key   Key
		Scope string
	}

	ClosedScopeError struct {
		Scope string
		ID    string
	}

	CycleError struct {
		Path []Key
	}

	TypeMismatchError struct {
		Key      Key
		Expected reflect.Type
		Actual   reflect.Type
	}

	InvalidBindingError struct {
		Module string
		Key    Key
		Reason string
	}

	// ConstructionError wraps the failure of a Factory or Provider. It is attached once, at the
	// innermost failing key, and travels unchanged through the factories depending on it.
	ConstructionError struct {
		Key Key
		Err error
	}
)

func (e *UnresolvableBindingError) Error() string {
	return fmt.Sprintf("no binding and no factory found for %s (requested from scope %q)", e.Key, e.Scope)
}

func (e *UnresolvableBindingError) Is(target error) bool {
	return target == ErrUnresolvableBinding
}

func (e *ClosedScopeError) Error() string {
	return fmt.Sprintf("scope %q (%s) is closed", e.Scope, e.ID)
}

func (e *ClosedScopeError) Is(target error) bool {
	return target == ErrScopeClosed
}

func (e *CycleError) Error() string {
	var b strings.Builder
	b.WriteString("dependency cycle found:\n")
	for i, k := range e.Path {
		b.WriteString(strings.Repeat("\t", i))
		if i > 0 {
			b.WriteString(" -> ")
		}
		b.WriteString(k.String())
		b.WriteString("\n")
	}
	return b.String()
}

func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("value resolved for %s is a %v, not a %v", e.Key, e.Actual, e.Expected)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

func (e *InvalidBindingError) Error() string {
	return fmt.Sprintf("invalid binding for %s in module %q: %s", e.Key, e.Module, e.Reason)
}

func (e *InvalidBindingError) Is(target error) bool {
	return target == ErrInvalidBinding
}

func (e *ConstructionError) Error() string {
	return fmt.Sprintf("failed to construct %s:\n\t%v", e.Key, e.Err)
}

func (e *ConstructionError) Unwrap() error {
	return e.Err
}

// constructionFailure wraps err for key unless a ConstructionError is already in its chain.
func constructionFailure(key Key, err error) error {
	var ce *ConstructionError
	if errors.As(err, &ce) {
		return err
	}
	return &ConstructionError{Key: key, Err: err}
}
