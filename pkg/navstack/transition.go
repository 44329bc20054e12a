package navstack

import (
	"slices"

	"k8s.io/apimachinery/pkg/util/sets"
)

// Transition is the difference between two backstack states.
type Transition struct {
	Previous Backstack
	Active   Backstack

	// Added holds instructions present in Active but not Previous, in Active order.
	Added []Instruction
	// Removed holds instructions present in Previous but not Active, in reverse
	// visual order (topmost first) so exiting entries are torn down above the
	// entries beneath them.
	Removed []Instruction
	// DirectUpdate is true when no instruction was added or removed. Renderers
	// must not animate direct updates.
	DirectUpdate bool
}

// ComputeTransition diffs two backstacks by instruction id in O(n).
func ComputeTransition(previous, next Backstack) Transition {
	prevIDs := sets.New[string](previous.IDs()...)
	nextIDs := sets.New[string](next.IDs()...)

	t := Transition{
		Previous: previous,
		Active:   next,
	}

	for _, in := range next.entries {
		if !prevIDs.Has(in.id) {
			t.Added = append(t.Added, in)
		}
	}
	for i := len(previous.entries) - 1; i >= 0; i-- {
		in := previous.entries[i]
		if !nextIDs.Has(in.id) {
			t.Removed = append(t.Removed, in)
		}
	}

	t.DirectUpdate = len(t.Added) == 0 && len(t.Removed) == 0
	return t
}

// Changed reports whether the two states differ in any way, including
// metadata-only or ordering changes.
func (t Transition) Changed() bool {
	return !t.Previous.Equal(t.Active)
}

// Reordered reports whether instructions kept across the transition changed
// relative order.
func (t Transition) Reordered() bool {
	keptPrev := slices.DeleteFunc(t.Previous.IDs(), func(id string) bool { return !t.Active.Contains(id) })
	keptNext := slices.DeleteFunc(t.Active.IDs(), func(id string) bool { return !t.Previous.Contains(id) })
	return !slices.Equal(keptPrev, keptNext)
}

// ActiveInstruction returns the top of the new state.
func (t Transition) ActiveInstruction() (Instruction, bool) {
	return t.Active.Active()
}

// WasAdded reports whether the instruction with the given id entered in this
// transition.
func (t Transition) WasAdded(id string) bool {
	return slices.ContainsFunc(t.Added, func(in Instruction) bool { return in.id == id })
}

// WasRemoved reports whether the instruction with the given id left in this
// transition.
func (t Transition) WasRemoved(id string) bool {
	return slices.ContainsFunc(t.Removed, func(in Instruction) bool { return in.id == id })
}
