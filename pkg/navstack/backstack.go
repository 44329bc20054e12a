package navstack

import "slices"

// Backstack is an immutable, ordered, identity-unique sequence of instructions.
// Every operation returns a new Backstack; values are freely shared.
type Backstack struct {
	entries []Instruction
}

// NewBackstack builds a backstack from the given instructions. When ids repeat,
// the later entry wins and takes the later position.
func NewBackstack(instructions ...Instruction) Backstack {
	return Backstack{}.SetAll(instructions)
}

// Len returns the number of entries.
func (b Backstack) Len() int {
	return len(b.entries)
}

// IsEmpty returns true if the backstack has no entries.
func (b Backstack) IsEmpty() bool {
	return len(b.entries) == 0
}

// Instructions returns a copy of the entries in order, bottom first.
func (b Backstack) Instructions() []Instruction {
	return slices.Clone(b.entries)
}

// IDs returns the instruction ids in order.
func (b Backstack) IDs() []string {
	ids := make([]string, len(b.entries))
	for i, e := range b.entries {
		ids[i] = e.id
	}
	return ids
}

// IndexOf returns the position of the instruction with the given id, or -1.
func (b Backstack) IndexOf(id string) int {
	for i, e := range b.entries {
		if e.id == id {
			return i
		}
	}
	return -1
}

// Contains reports whether an instruction with the given id is present.
func (b Backstack) Contains(id string) bool {
	return b.IndexOf(id) >= 0
}

// Get returns the instruction with the given id.
func (b Backstack) Get(id string) (Instruction, bool) {
	if idx := b.IndexOf(id); idx >= 0 {
		return b.entries[idx], true
	}
	return Instruction{}, false
}

// Active returns the topmost entry: whatever the user is looking at. When the
// top entries were presented, this is the top of the overlay.
func (b Backstack) Active() (Instruction, bool) {
	if len(b.entries) == 0 {
		return Instruction{}, false
	}
	return b.entries[len(b.entries)-1], true
}

// Content returns the last entry that was not presented: the content visible
// beneath any overlay.
func (b Backstack) Content() (Instruction, bool) {
	for i := len(b.entries) - 1; i >= 0; i-- {
		if b.entries[i].direction != DirectionPresent {
			return b.entries[i], true
		}
	}
	return Instruction{}, false
}

// Overlay returns the trailing run of presented entries, bottom first.
func (b Backstack) Overlay() []Instruction {
	start := len(b.entries)
	for start > 0 && b.entries[start-1].direction == DirectionPresent {
		start--
	}
	return slices.Clone(b.entries[start:])
}

// Push places an instruction according to its direction:
//   - Push and Present append.
//   - Forward replaces the top entry.
//   - ReplaceRoot discards every entry.
//
// An entry already present with the same id is moved rather than duplicated.
func (b Backstack) Push(instruction Instruction) Backstack {
	base := b.without(instruction.id)

	switch instruction.direction {
	case DirectionReplaceRoot:
		return Backstack{entries: []Instruction{instruction}}
	case DirectionForward:
		if n := len(base); n > 0 {
			base = base[:n-1]
		}
	case DirectionPush, DirectionPresent:
	}

	next := make([]Instruction, 0, len(base)+1)
	next = append(next, base...)
	next = append(next, instruction)
	return Backstack{entries: next}
}

// Close removes the instruction with the given id. Closing a presented entry
// uncovers whatever sits beneath it; this is purely a function of order. The
// boolean is false, and b is returned unchanged, when the id is absent.
func (b Backstack) Close(id string) (Backstack, bool) {
	if !b.Contains(id) {
		return b, false
	}
	return Backstack{entries: b.without(id)}, true
}

// ReplaceRoot discards every entry and starts over with instruction.
func (b Backstack) ReplaceRoot(instruction Instruction) Backstack {
	return Backstack{entries: []Instruction{instruction}}
}

// SetAll replaces the whole sequence. Duplicate ids keep the later entry.
func (b Backstack) SetAll(instructions []Instruction) Backstack {
	seen := make(map[string]struct{}, len(instructions))
	out := make([]Instruction, 0, len(instructions))
	for i := len(instructions) - 1; i >= 0; i-- {
		in := instructions[i]
		if _, dup := seen[in.id]; dup {
			continue
		}
		seen[in.id] = struct{}{}
		out = append(out, in)
	}
	slices.Reverse(out)
	return Backstack{entries: out}
}

// Update replaces the entry sharing instruction's id in place. The boolean is
// false when no such entry exists.
func (b Backstack) Update(instruction Instruction) (Backstack, bool) {
	idx := b.IndexOf(instruction.id)
	if idx < 0 {
		return b, false
	}
	next := slices.Clone(b.entries)
	next[idx] = instruction
	return Backstack{entries: next}, true
}

// Equal reports whether both backstacks hold equal instructions in the same order.
func (b Backstack) Equal(other Backstack) bool {
	return slices.EqualFunc(b.entries, other.entries, Instruction.Equal)
}

// SameIdentities reports whether both backstacks hold the same ids in the same order.
func (b Backstack) SameIdentities(other Backstack) bool {
	return slices.Equal(b.IDs(), other.IDs())
}

func (b Backstack) without(id string) []Instruction {
	out := make([]Instruction, 0, len(b.entries))
	for _, e := range b.entries {
		if e.id != id {
			out = append(out, e)
		}
	}
	return out
}
