package navstack

import "fmt"

// Operation is a proposed mutation submitted to a container. The set of
// operations is closed: OpenOperation, CloseOperation, ResultOperation,
// UpdateOperation and SetBackstackOperation.
type Operation interface {
	Name() string
	isOperation()
}

// OpenOperation places an instruction according to its direction.
type OpenOperation struct {
	Instruction Instruction
}

// CloseOperation removes the instruction with the given id.
type CloseOperation struct {
	InstructionID string
}

// ResultOperation completes the instruction with the given id with a result.
type ResultOperation struct {
	InstructionID string
	Result        any
}

// UpdateOperation replaces an instruction in place, keeping its identity. Used
// for metadata-only changes; interceptors are not consulted.
type UpdateOperation struct {
	Instruction Instruction
}

// SetBackstackOperation replaces the whole backstack. It bypasses interceptors
// and exists for bulk changes such as flow replay.
type SetBackstackOperation struct {
	Backstack Backstack
}

func (OpenOperation) Name() string         { return "open" }
func (CloseOperation) Name() string        { return "close" }
func (ResultOperation) Name() string       { return "result" }
func (UpdateOperation) Name() string       { return "update" }
func (SetBackstackOperation) Name() string { return "set_backstack" }

func (OpenOperation) isOperation()         {}
func (CloseOperation) isOperation()        {}
func (ResultOperation) isOperation()       {}
func (UpdateOperation) isOperation()       {}
func (SetBackstackOperation) isOperation() {}

// Status is the discriminant of a Result.
type Status int

const (
	StatusCommitted    Status = iota // A new backstack was committed
	StatusQueued                     // Another operation was running; this one will run after it
	StatusDelivered                  // A result was delivered and the destination kept open
	StatusCancelled                  // An interceptor or empty-behavior action vetoed the operation
	StatusNotFound                   // The referenced instruction is not in the backstack
	StatusRejected                   // No container accepts the instruction
	StatusParentClosed               // The backstack would have emptied; the hosting node was asked to close instead
	StatusFault                      // An interceptor panicked or the queue overflowed
)

// String returns a string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusCommitted:
		return "committed"
	case StatusQueued:
		return "queued"
	case StatusDelivered:
		return "delivered"
	case StatusCancelled:
		return "cancelled"
	case StatusNotFound:
		return "not_found"
	case StatusRejected:
		return "rejected"
	case StatusParentClosed:
		return "parent_closed"
	case StatusFault:
		return "fault"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Result is the discriminated outcome of submitting an operation.
type Result struct {
	Status     Status
	Transition Transition // Set when Status is StatusCommitted
	Err        error      // Set for every status except committed, queued and delivered
}

// OK reports whether the operation went ahead (or will, once queued work drains).
func (r Result) OK() bool {
	switch r.Status {
	case StatusCommitted, StatusQueued, StatusDelivered, StatusParentClosed:
		return true
	default:
		return false
	}
}
