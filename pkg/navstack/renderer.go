package navstack

// Renderer is implemented by platform glue. Calls must be idempotent: a direct
// update transition may repeat SetActive with no actual change.
type Renderer interface {
	Mount(instruction Instruction)
	Unmount(instruction Instruction)
	SetActive(instruction Instruction)
}

// Reconciliation is what a renderer must do to move from one backstack state to
// the next.
type Reconciliation struct {
	Unmount   []Instruction // Topmost first
	Mount     []Instruction // Bottom first
	Active    Instruction   // Zero when the new state is empty
	Animated  bool          // False for direct updates
	HasActive bool
}

// PlanReconciliation turns a transition into renderer work.
func PlanReconciliation(t Transition) Reconciliation {
	r := Reconciliation{
		Unmount:  t.Removed,
		Mount:    t.Added,
		Animated: !t.DirectUpdate,
	}
	r.Active, r.HasActive = t.Active.Active()
	return r
}

// Reconcile applies a transition to renderer: removed entries are unmounted
// topmost first, added entries are mounted bottom first, then the active entry
// is made interactive.
func Reconcile(renderer Renderer, t Transition) {
	if renderer == nil {
		return
	}
	plan := PlanReconciliation(t)
	for _, in := range plan.Unmount {
		renderer.Unmount(in)
	}
	for _, in := range plan.Mount {
		renderer.Mount(in)
	}
	if plan.HasActive {
		renderer.SetActive(plan.Active)
	}
}

// Observer is notified about every container outcome. Observers must not mutate
// navigation state directly; submitting an operation from an observer queues it.
type Observer interface {
	ObserveTransition(container *Container, t Transition)
	ObserveResult(container *Container, op Operation, result Result)
}

// ObserverFuncs adapts plain functions to Observer. Nil fields are ignored.
type ObserverFuncs struct {
	OnTransition func(container *Container, t Transition)
	OnResult     func(container *Container, op Operation, result Result)
}

func (o ObserverFuncs) ObserveTransition(container *Container, t Transition) {
	if o.OnTransition != nil {
		o.OnTransition(container, t)
	}
}

func (o ObserverFuncs) ObserveResult(container *Container, op Operation, result Result) {
	if o.OnResult != nil {
		o.OnResult(container, op, result)
	}
}
