package flow

type outcomeState int

const (
	stateResolved outcomeState = iota
	stateSuspended
	stateEscaped
)

// Outcome is Resolved(value), Suspended (the step has no result yet) or
// Escaped (the flow bailed out).
type Outcome[T any] struct {
	state outcomeState
	value T
}

// Resolved wraps a final or intermediate value.
func Resolved[T any](value T) Outcome[T] {
	return Outcome[T]{state: stateResolved, value: value}
}

// Escape aborts the current pass without touching the backstack.
func Escape[T any]() Outcome[T] {
	return Outcome[T]{state: stateEscaped}
}

// Suspended reports that the pass is waiting on a step.
func Suspended[T any]() Outcome[T] {
	return Outcome[T]{state: stateSuspended}
}

// Halt carries a non-resolved outcome across types, so a step function can
// return early with whatever stopped it:
//
//	if !out.IsResolved() {
//	    return flow.Halt[Result](out)
//	}
//
// Halting on a resolved outcome is treated as a suspension.
func Halt[T, U any](o Outcome[U]) Outcome[T] {
	if o.state == stateEscaped {
		return Escape[T]()
	}
	return Suspended[T]()
}

// Value returns the value and true when resolved.
func (o Outcome[T]) Value() (T, bool) {
	if o.state != stateResolved {
		var zero T
		return zero, false
	}
	return o.value, true
}

func (o Outcome[T]) IsResolved() bool  { return o.state == stateResolved }
func (o Outcome[T]) IsSuspended() bool { return o.state == stateSuspended }
func (o Outcome[T]) IsEscaped() bool   { return o.state == stateEscaped }
