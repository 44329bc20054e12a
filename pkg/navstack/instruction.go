package navstack

import (
	"fmt"
	"maps"
	"reflect"

	"github.com/BrandonKowalski/navstack/pkg/navstack/internal"
)

// Direction describes how an instruction is placed relative to what is already
// on screen.
type Direction int

const (
	DirectionPush        Direction = iota // Stack-like navigation within the same container
	DirectionPresent                      // Modal, layered above the current content
	DirectionForward                      // Replaces the current top entry without growing depth
	DirectionReplaceRoot                  // Discards the whole backstack and starts a new one
)

// String returns a string representation of the direction.
func (d Direction) String() string {
	switch d {
	case DirectionPush:
		return "push"
	case DirectionPresent:
		return "present"
	case DirectionForward:
		return "forward"
	case DirectionReplaceRoot:
		return "replace_root"
	default:
		return fmt.Sprintf("direction(%d)", int(d))
	}
}

// ParseDirection is the inverse of Direction.String.
func ParseDirection(s string) (Direction, error) {
	switch s {
	case "push":
		return DirectionPush, nil
	case "present":
		return DirectionPresent, nil
	case "forward":
		return DirectionForward, nil
	case "replace_root", "replaceRoot":
		return DirectionReplaceRoot, nil
	}
	return 0, fmt.Errorf("navstack: unknown direction %q", s)
}

func (d Direction) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Direction) UnmarshalText(text []byte) error {
	parsed, err := ParseDirection(string(text))
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// DestinationKey describes what to show. Applications define their own key
// types; navstack only compares keys structurally and reads Kind for routing.
//
// Keys should be plain values (structs of comparable or serializable fields) so
// they can be persisted and compared.
type DestinationKey interface {
	Kind() string
}

// KeysEqual reports whether two keys are structurally equal.
func KeysEqual(a, b DestinationKey) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return reflect.DeepEqual(a, b)
}

// ResultBinding identifies who receives the result when the destination of an
// instruction completes.
type ResultBinding struct {
	OwnerID     string
	ResultKeyID string
}

// Instruction is one entry that can appear in a backstack. It is an immutable
// value: the With* methods and MetadataKey.Set return modified copies that keep
// the same identity.
type Instruction struct {
	id            string
	direction     Direction
	key           DestinationKey
	metadata      map[string]any
	resultBinding *ResultBinding
}

// InstructionOption customizes an instruction at construction time.
type InstructionOption func(*Instruction)

// WithInstructionID overrides the generated identifier. Intended for restoring
// saved state and for tests.
func WithInstructionID(id string) InstructionOption {
	return func(i *Instruction) {
		i.id = id
	}
}

// WithResultBinding binds the instruction's result to an owner.
func WithResultBinding(binding ResultBinding) InstructionOption {
	return func(i *Instruction) {
		b := binding
		i.resultBinding = &b
	}
}

// WithRawMetadata sets an untyped metadata entry. Prefer MetadataKey.Set.
func WithRawMetadata(name string, value any) InstructionOption {
	return func(i *Instruction) {
		if i.metadata == nil {
			i.metadata = make(map[string]any)
		}
		i.metadata[name] = value
	}
}

// NewInstruction creates an instruction with a fresh, never reused identifier.
func NewInstruction(direction Direction, key DestinationKey, opts ...InstructionOption) Instruction {
	i := Instruction{
		id:        internal.NewID(),
		direction: direction,
		key:       key,
	}
	for _, opt := range opts {
		opt(&i)
	}
	return i
}

func Push(key DestinationKey, opts ...InstructionOption) Instruction {
	return NewInstruction(DirectionPush, key, opts...)
}

func Present(key DestinationKey, opts ...InstructionOption) Instruction {
	return NewInstruction(DirectionPresent, key, opts...)
}

func Forward(key DestinationKey, opts ...InstructionOption) Instruction {
	return NewInstruction(DirectionForward, key, opts...)
}

func ReplaceRoot(key DestinationKey, opts ...InstructionOption) Instruction {
	return NewInstruction(DirectionReplaceRoot, key, opts...)
}

func (i Instruction) ID() string           { return i.id }
func (i Instruction) Direction() Direction { return i.direction }
func (i Instruction) Key() DestinationKey  { return i.key }

// IsZero reports whether i is the zero Instruction.
func (i Instruction) IsZero() bool {
	return i.id == ""
}

// ResultBinding returns the result binding, if any.
func (i Instruction) ResultBinding() (ResultBinding, bool) {
	if i.resultBinding == nil {
		return ResultBinding{}, false
	}
	return *i.resultBinding, true
}

// WithResultBinding returns a copy bound to the given owner.
func (i Instruction) WithResultBinding(binding ResultBinding) Instruction {
	out := i.clone()
	b := binding
	out.resultBinding = &b
	return out
}

// Metadata returns a copy of the raw metadata bag.
func (i Instruction) Metadata() map[string]any {
	return maps.Clone(i.metadata)
}

// RawMetadata looks up an untyped metadata entry. The boolean distinguishes a
// missing entry from a stored nil.
func (i Instruction) RawMetadata(name string) (any, bool) {
	v, ok := i.metadata[name]
	return v, ok
}

// WithRawMetadata returns a copy with the entry set.
func (i Instruction) WithRawMetadata(name string, value any) Instruction {
	out := i.clone()
	if out.metadata == nil {
		out.metadata = make(map[string]any, 1)
	}
	out.metadata[name] = value
	return out
}

// WithoutMetadata returns a copy with the entry removed.
func (i Instruction) WithoutMetadata(name string) Instruction {
	if _, ok := i.metadata[name]; !ok {
		return i
	}
	out := i.clone()
	delete(out.metadata, name)
	return out
}

// Equal reports whether both instructions have the same identity and content.
func (i Instruction) Equal(other Instruction) bool {
	if i.id != other.id || i.direction != other.direction {
		return false
	}
	if !KeysEqual(i.key, other.key) {
		return false
	}
	if !reflect.DeepEqual(i.resultBinding, other.resultBinding) {
		return false
	}
	if len(i.metadata) != len(other.metadata) {
		return false
	}
	return len(i.metadata) == 0 || reflect.DeepEqual(i.metadata, other.metadata)
}

func (i Instruction) String() string {
	kind := "<nil>"
	if i.key != nil {
		kind = i.key.Kind()
	}
	return fmt.Sprintf("%s(%s %s)", i.direction, kind, i.id)
}

func (i Instruction) clone() Instruction {
	out := i
	out.metadata = maps.Clone(i.metadata)
	if i.resultBinding != nil {
		b := *i.resultBinding
		out.resultBinding = &b
	}
	return out
}

// MetadataKey is a type-safe, namespaced key into an instruction's metadata.
type MetadataKey[T any] struct {
	name string
}

// NewMetadataKey creates a metadata key. Names should be namespaced
// ("myapp.selectedTab") to avoid collisions.
func NewMetadataKey[T any](name string) MetadataKey[T] {
	return MetadataKey[T]{name: name}
}

// Name returns the key's name.
func (k MetadataKey[T]) Name() string {
	return k.name
}

// Get reads the value for k. The boolean is false when the entry is absent or
// holds a value of a different type.
func (k MetadataKey[T]) Get(i Instruction) (T, bool) {
	raw, ok := i.metadata[k.name]
	if !ok {
		var zero T
		return zero, false
	}
	if raw == nil {
		var zero T
		return zero, true
	}
	v, ok := raw.(T)
	return v, ok
}

// GetOrDefault reads the value for k or returns defaultVal.
func (k MetadataKey[T]) GetOrDefault(i Instruction, defaultVal T) T {
	if v, ok := k.Get(i); ok {
		return v
	}
	return defaultVal
}

// Has reports whether the entry is present, including a stored nil.
func (k MetadataKey[T]) Has(i Instruction) bool {
	_, ok := i.metadata[k.name]
	return ok
}

// Set returns a copy of i with the entry set.
func (k MetadataKey[T]) Set(i Instruction, value T) Instruction {
	return i.WithRawMetadata(k.name, value)
}

// Remove returns a copy of i without the entry.
func (k MetadataKey[T]) Remove(i Instruction) Instruction {
	return i.WithoutMetadata(k.name)
}
