package internal

import (
	"strconv"

	"github.com/google/uuid"
	"go.uber.org/atomic"
)

var sequence atomic.Uint64

// NewID returns a random identifier suitable for instructions and owners.
// Identifiers are never reused within a process.
func NewID() string {
	return uuid.NewString()
}

// NextSequence returns a process-wide monotonically increasing number.
func NextSequence() uint64 {
	return sequence.Inc()
}

// NewScopedID returns an identifier of the form "<prefix>-<n>", useful for
// readable container and tree names in logs.
func NewScopedID(prefix string) string {
	return prefix + "-" + strconv.FormatUint(NextSequence(), 10)
}
