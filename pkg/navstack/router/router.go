package router

import (
	"fmt"
	"log/slog"

	"github.com/BrandonKowalski/navstack/pkg/navstack"
	"github.com/BrandonKowalski/navstack/pkg/navstack/constants"
	"github.com/BrandonKowalski/navstack/pkg/navstack/internal"
)

// MetadataResume holds the resume state a screen attached to its instruction.
var MetadataResume = navstack.NewMetadataKey[any](constants.MetadataNamespace + "router.resume")

// Host is the part of a navstack.Container the router drives.
type Host interface {
	ID() string
	Active() (navstack.Instruction, bool)
	Open(instruction navstack.Instruction) navstack.Result
	Close(instructionID string) navstack.Result
	CompleteWithResult(instructionID string, result any) navstack.Result
	Update(instruction navstack.Instruction) navstack.Result
}

// ScreenFunc shows the screen for the active instruction and blocks until the
// user leaves it.
type ScreenFunc func(in navstack.Instruction) (Outcome, error)

type action int

const (
	actionBack action = iota
	actionComplete
	actionOpen
	actionStay
	actionExit
)

// Outcome is what the user did on a screen.
type Outcome struct {
	action    action
	result    any
	next      navstack.Instruction
	resume    any
	hasResume bool
}

// Back closes the screen.
func Back() Outcome {
	return Outcome{action: actionBack}
}

// Complete closes the screen with a result, delivered to the instruction's
// result binding.
func Complete(result any) Outcome {
	return Outcome{action: actionComplete, result: result}
}

// Open shows next on top of the screen.
func Open(next navstack.Instruction) Outcome {
	return Outcome{action: actionOpen, next: next}
}

// Stay shows the same screen again. Combine with WithResume to refresh its
// state.
func Stay() Outcome {
	return Outcome{action: actionStay}
}

// Exit stops the router, leaving the backstack as it is.
func Exit() Outcome {
	return Outcome{action: actionExit}
}

// WithResume stores state on the screen's instruction before the outcome is
// applied. It is ignored by Back and Complete, which remove the instruction.
func (o Outcome) WithResume(state any) Outcome {
	o.resume = state
	o.hasResume = true
	return o
}

// Resume reads resume state of type T from an instruction.
func Resume[T any](in navstack.Instruction) (T, bool) {
	raw, ok := MetadataResume.Get(in)
	if !ok {
		var zero T
		return zero, false
	}
	v, ok := raw.(T)
	return v, ok
}

// Router shows the active instruction of a host until there is nothing left to
// show.
type Router struct {
	host    Host
	screens map[string]ScreenFunc
	logger  *slog.Logger
}

// New creates a router for host.
func New(host Host) *Router {
	return &Router{
		host:    host,
		screens: make(map[string]ScreenFunc),
		logger:  internal.GetInternalLogger().With("router", host.ID()),
	}
}

// Register adds the screen for destinations of kind.
func (r *Router) Register(kind string, fn ScreenFunc) *Router {
	r.screens[kind] = fn
	return r
}

// Run opens start, unless it is the zero Instruction, and then shows the
// active instruction in a loop. It returns nil when the backstack empties, a
// screen exits, or the host's parent is asked to close.
func (r *Router) Run(start navstack.Instruction) error {
	if !start.IsZero() {
		if done, err := r.check(r.host.Open(start), "open", start); done || err != nil {
			return err
		}
	}

	for {
		active, ok := r.host.Active()
		if !ok {
			r.logger.Debug("backstack empty, router done")
			return nil
		}

		kind := "<nil>"
		if active.Key() != nil {
			kind = active.Key().Kind()
		}
		fn, ok := r.screens[kind]
		if !ok {
			return fmt.Errorf("router: screen %q not registered", kind)
		}

		out, err := fn(active)
		if err != nil {
			return fmt.Errorf("router: screen %q error: %w", kind, err)
		}

		done, err := r.apply(active, out)
		if done || err != nil {
			return err
		}
	}
}

func (r *Router) apply(active navstack.Instruction, out Outcome) (bool, error) {
	if out.hasResume && (out.action == actionOpen || out.action == actionStay) {
		if done, err := r.check(r.host.Update(MetadataResume.Set(active, out.resume)), "update", active); done || err != nil {
			return done, err
		}
	}

	switch out.action {
	case actionBack:
		return r.check(r.host.Close(active.ID()), "close", active)
	case actionComplete:
		return r.check(r.host.CompleteWithResult(active.ID(), out.result), "result", active)
	case actionOpen:
		return r.check(r.host.Open(out.next), "open", out.next)
	case actionStay:
		return false, nil
	case actionExit:
		r.logger.Debug("screen exited", "instruction", active.String())
		return true, nil
	}
	return false, fmt.Errorf("router: unknown outcome %d", out.action)
}

// check turns an operation result into loop control. Cancelled operations are
// not errors: the active screen is simply shown again.
func (r *Router) check(res navstack.Result, op string, in navstack.Instruction) (bool, error) {
	switch res.Status {
	case navstack.StatusParentClosed:
		r.logger.Debug("parent closed, router done", "op", op)
		return true, nil
	case navstack.StatusCancelled:
		r.logger.Debug("operation cancelled", "op", op, "instruction", in.String())
		return false, nil
	}
	if !res.OK() {
		return true, fmt.Errorf("router: %s %s: %w", op, in, res.Err)
	}
	return false, nil
}
