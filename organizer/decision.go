// Package organizer holds the rule-based decisions applied to every incoming
// message: classification, tagging, priority, archival, reply drafting and
// thread ordering. Every operation is total. Failures surface as a degraded
// Decision carrying the component's documented default, never as a panic or
// an error return.
package organizer

import "fmt"

// Decision is the outcome of one component call.
type Decision[T any] struct {
	Value    T
	Degraded bool
	Err      error
}

func decided[T any](v T) Decision[T] {
	return Decision[T]{Value: v}
}

func degraded[T any](v T, err error) Decision[T] {
	return Decision[T]{Value: v, Degraded: true, Err: err}
}

// guard runs fn and turns a panic into the fallback value.
func guard[T any](fallback T, fn func() (T, error)) (d Decision[T]) {
	defer func() {
		if r := recover(); r != nil {
			d = degraded(fallback, fmt.Errorf("recovered: %v", r))
		}
	}()
	v, err := fn()
	if err != nil {
		return degraded(fallback, err)
	}
	return decided(v)
}
