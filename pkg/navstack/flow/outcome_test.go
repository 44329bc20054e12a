package flow

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint(t *testing.T) {
	assert.Equal(t, int64(1), Fingerprint(), "no dependencies")
	assert.Equal(t, Fingerprint("a", 1), Fingerprint("a", 1))
	assert.NotEqual(t, Fingerprint(1, 2), Fingerprint(2, 1), "order matters")
	assert.NotEqual(t, Fingerprint(1), Fingerprint("1"), "type matters")
	assert.NotEqual(t, Fingerprint(nil), Fingerprint())

	type plan struct {
		Name  string
		Price int
	}
	assert.Equal(t, Fingerprint(plan{"pro", 10}), Fingerprint(plan{"pro", 10}))
	assert.NotEqual(t, Fingerprint(plan{"pro", 10}), Fingerprint(plan{"pro", 11}))
}

func TestOutcome(t *testing.T) {
	v, ok := Resolved(3).Value()
	assert.True(t, ok)
	assert.Equal(t, 3, v)

	_, ok = Suspended[int]().Value()
	assert.False(t, ok)

	assert.True(t, Halt[string](Suspended[int]()).IsSuspended())
	assert.True(t, Halt[string](Escape[int]()).IsEscaped())
	assert.True(t, Halt[string](Resolved(1)).IsSuspended())
}
