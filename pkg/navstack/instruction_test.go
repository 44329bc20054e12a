package navstack

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInstructionIDsAreUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		in := Push(homeKey{})
		require.False(t, seen[in.ID()])
		seen[in.ID()] = true
	}
}

func TestMetadataKeyAbsentVersusNil(t *testing.T) {
	ptr := NewMetadataKey[*string]("test.ptr")
	in := Push(homeKey{})

	_, ok := ptr.Get(in)
	assert.False(t, ok)
	assert.False(t, ptr.Has(in))

	withNil := in.WithRawMetadata(ptr.Name(), nil)
	v, ok := ptr.Get(withNil)
	assert.True(t, ok)
	assert.Nil(t, v)
	assert.True(t, ptr.Has(withNil))

	assert.False(t, ptr.Has(ptr.Remove(withNil)))
}

func TestMetadataKeyTypeMismatch(t *testing.T) {
	count := NewMetadataKey[int]("test.count")
	in := Push(homeKey{}, WithRawMetadata("test.count", "three"))

	_, ok := count.Get(in)
	assert.False(t, ok)
	assert.Equal(t, 7, count.GetOrDefault(in, 7))
}

func TestInstructionWithMetadataCopies(t *testing.T) {
	note := NewMetadataKey[string]("test.note")
	original := Push(homeKey{}, WithInstructionID("a"))

	changed := note.Set(original, "x")
	assert.False(t, note.Has(original))
	assert.Equal(t, original.ID(), changed.ID())
	assert.False(t, original.Equal(changed))
	assert.True(t, original.Equal(note.Remove(changed)))
}

func TestInstructionResultBinding(t *testing.T) {
	in := Push(homeKey{})
	_, ok := in.ResultBinding()
	assert.False(t, ok)

	bound := in.WithResultBinding(ResultBinding{OwnerID: "o", ResultKeyID: "k"})
	b, ok := bound.ResultBinding()
	require.True(t, ok)
	assert.Equal(t, "o", b.OwnerID)
	_, ok = in.ResultBinding()
	assert.False(t, ok)
}

func TestKeysEqualIsStructural(t *testing.T) {
	assert.True(t, KeysEqual(detailKey{ID: 1}, detailKey{ID: 1}))
	assert.False(t, KeysEqual(detailKey{ID: 1}, detailKey{ID: 2}))
	assert.False(t, KeysEqual(homeKey{}, detailKey{}))
}

func TestParseDirection(t *testing.T) {
	for _, d := range []Direction{DirectionPush, DirectionPresent, DirectionForward, DirectionReplaceRoot} {
		parsed, err := ParseDirection(d.String())
		require.NoError(t, err)
		assert.Equal(t, d, parsed)
	}
	_, err := ParseDirection("sideways")
	assert.Error(t, err)
}
