// Package option implements the variadic functional options pattern used across gopick.
package option

// Option mutates an options struct of type T.
type Option[T any] func(opts *T)

// Build applies opts, in order, on top of defaults and returns defaults.
// Nil options are skipped.
func Build[T any](defaults *T, opts ...Option[T]) *T {
	for _, opt := range opts {
		if opt != nil {
			opt(defaults)
		}
	}
	return defaults
}

// Value builds a T from its zero value.
func Value[T any](opts ...Option[T]) T {
	var v T
	return *Build(&v, opts...)
}
