package navstack

import (
	"errors"
	"fmt"
)

// Sentinel errors for recoverable outcomes. These are returned inside a Result,
// never panicked.
var (
	// ErrNotFound indicates an operation referenced an instruction id that is not
	// in the target backstack. The backstack is left unchanged.
	ErrNotFound = errors.New("instruction not found in backstack")

	// ErrRejectedByContainer indicates no container in the tree accepts the
	// proposed key/direction combination. This is a configuration error in the
	// host application; navstack does not guess a fallback host.
	ErrRejectedByContainer = errors.New("no container accepts instruction")

	// ErrInterceptorCancelled indicates an interceptor vetoed the operation.
	// Cancellation is a normal outcome, not a failure.
	ErrInterceptorCancelled = errors.New("operation cancelled by interceptor")

	// ErrQueueOverflow indicates operations kept enqueueing further operations
	// past the dispatcher limit, which almost always means an interceptor or
	// flow is looping.
	ErrQueueOverflow = errors.New("navigation queue overflow")
)

// InterceptorFaultError is produced when an interceptor panics. The operation is
// aborted as cancelled and the fault is escalated to the registry's ErrorHandler,
// since it indicates a defect in registered policy code.
type InterceptorFaultError struct {
	Interceptor string // Name of the interceptor that panicked
	Op          string // "open", "close" or "result"
	Recovered   any    // Value passed to panic
	Stack       []byte
}

func (e *InterceptorFaultError) Error() string {
	return fmt.Sprintf("navstack: interceptor %q panicked during %s: %v", e.Interceptor, e.Op, e.Recovered)
}

func (e *InterceptorFaultError) Unwrap() error {
	if err, ok := e.Recovered.(error); ok {
		return err
	}
	return nil
}

// FlowInvariantError reports a flow state that cannot be continued safely: an
// ambiguous step identity or a stored result read back as an incompatible type.
type FlowInvariantError struct {
	StepID string
	Reason string
	Err    error
}

func (e *FlowInvariantError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("navstack: flow step %q: %s: %v", e.StepID, e.Reason, e.Err)
	}
	return fmt.Sprintf("navstack: flow step %q: %s", e.StepID, e.Reason)
}

func (e *FlowInvariantError) Unwrap() error {
	return e.Err
}

// NewFlowInvariantError creates a new flow invariant error.
func NewFlowInvariantError(stepID, reason string, err error) *FlowInvariantError {
	return &FlowInvariantError{StepID: stepID, Reason: reason, Err: err}
}

// IsNotFound checks if an error indicates a missing instruction.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsRejected checks if an error indicates no container accepted an instruction.
func IsRejected(err error) bool {
	return errors.Is(err, ErrRejectedByContainer)
}

// IsCancelled checks if an error indicates an interceptor veto.
func IsCancelled(err error) bool {
	return errors.Is(err, ErrInterceptorCancelled)
}

// IsInterceptorFault checks if an error is an interceptor fault.
func IsInterceptorFault(err error) bool {
	var fault *InterceptorFaultError
	return errors.As(err, &fault)
}

// IsFlowInvariantViolation checks if an error is a flow invariant violation.
func IsFlowInvariantViolation(err error) bool {
	var violation *FlowInvariantError
	return errors.As(err, &violation)
}

// IsQueueOverflow checks if an error indicates a dispatcher queue overflow.
func IsQueueOverflow(err error) bool {
	return errors.Is(err, ErrQueueOverflow)
}

// ErrorHandler receives errors that must be surfaced to the host application
// rather than absorbed: interceptor faults and flow invariant violations.
type ErrorHandler func(err error)
