package flow

import (
	"log/slog"
	"maps"
	"slices"

	"go.uber.org/atomic"

	"github.com/BrandonKowalski/navstack/pkg/navstack"
	"github.com/BrandonKowalski/navstack/pkg/navstack/internal"
)

// Metadata written onto every instruction a flow materializes.
var (
	MetadataStepID      = navstack.NewMetadataKey[string]("navstack.flow.stepId")
	MetadataFingerprint = navstack.NewMetadataKey[int64]("navstack.flow.fingerprint")
	MetadataTransient   = navstack.NewMetadataKey[bool]("navstack.flow.transient")
)

// StepFunc declares the steps of a flow. It is re-run from the top on every
// pass and must not have side effects other than Open calls.
type StepFunc[T any] func(s *Scope) Outcome[T]

// Options configures a Manager.
type Options[T any] struct {
	ID           string        // Result owner id; generated when empty
	OnCompleted  func(value T) // Called when a pass resolves with no step left to show
	OnEscaped    func()        // Called when a pass escapes
	ErrorHandler navstack.ErrorHandler
	Logger       *slog.Logger
}

// State is the serializable part of a running flow.
type State struct {
	Steps   []Step          `json:"steps"`
	Results []CompletedStep `json:"results"`
}

type state struct {
	results map[string]CompletedStep
	passes  atomic.Uint64
	logger  *slog.Logger
}

// Manager owns the backstack of one container and keeps it in line with the
// steps its StepFunc declares. The container should not host anything else.
type Manager[T any] struct {
	id        string
	container *navstack.Container
	steps     StepFunc[T]
	opts      Options[T]
	st        *state
	logger    *slog.Logger

	records      []Step
	instructions map[string]navstack.Instruction
	expected     []string
}

// New binds a flow to container. Nothing is shown until Start is called.
func New[T any](container *navstack.Container, steps StepFunc[T], opts Options[T]) *Manager[T] {
	m := &Manager[T]{
		id:           opts.ID,
		container:    container,
		steps:        steps,
		opts:         opts,
		instructions: make(map[string]navstack.Instruction),
	}
	if m.id == "" {
		m.id = internal.NewScopedID("flow")
	}

	m.logger = opts.Logger
	if m.logger == nil {
		m.logger = internal.GetInternalLogger()
	}
	m.logger = m.logger.With("flow", m.id, "container", container.ID())
	m.st = &state{results: make(map[string]CompletedStep), logger: m.logger}

	container.Results().Register(m.id, m.onResult)
	container.Pipeline().Add(navstack.NewInterceptor(navstack.InterceptorFuncs{
		Name:     "flow:" + m.id,
		Priority: navstack.PriorityExactMatch,
		Match:    m.owns,
		OnResult: func(*navstack.InterceptContext, navstack.Instruction, any) navstack.ResultOutcome {
			// The pass decides what is shown next.
			return navstack.DeliverResultAndCancelClose()
		},
	}))
	container.AddObserver(navstack.ObserverFuncs{OnTransition: m.onTransition})

	return m
}

// ID returns the result owner id of the flow.
func (m *Manager[T]) ID() string {
	return m.id
}

// Steps returns the steps recorded by the last pass, in declaration order.
func (m *Manager[T]) Steps() []Step {
	return slices.Clone(m.records)
}

// Start runs the first pass.
func (m *Manager[T]) Start() error {
	return m.Update()
}

// Update re-runs the step function and reconciles the container's backstack
// with the steps it declared.
func (m *Manager[T]) Update() error {
	m.st.passes.Inc()
	s := newScope(m.st)
	out := m.steps(s)

	if s.violation != nil {
		m.report(s.violation)
		return s.violation
	}

	switch {
	case out.IsEscaped():
		m.logger.Debug("flow escaped", "pass", m.st.passes.Load())
		if m.opts.OnEscaped != nil {
			m.opts.OnEscaped()
		}
		return nil
	case out.IsResolved() && s.pending < 0:
		m.records = m.withLiveIDs(s.declared)
		value, _ := out.Value()
		m.logger.Debug("flow completed", "steps", len(s.declared))
		if m.opts.OnCompleted != nil {
			m.opts.OnCompleted(value)
		}
		return nil
	}

	return m.apply(s.declared)
}

// Results returns the stored step results ordered by step id.
func (m *Manager[T]) Results() []CompletedStep {
	out := make([]CompletedStep, 0, len(m.st.results))
	for _, id := range slices.Sorted(maps.Keys(m.st.results)) {
		out = append(out, m.st.results[id])
	}
	return out
}

// Snapshot captures the recorded steps and stored results.
func (m *Manager[T]) Snapshot() State {
	return State{Steps: m.Steps(), Results: m.Results()}
}

// Restore replaces the flow state with st. The container's backstack is
// expected to be restored separately; call Update afterwards to reconcile.
func (m *Manager[T]) Restore(st State) {
	m.records = slices.Clone(st.Steps)
	m.st.results = make(map[string]CompletedStep, len(st.Results))
	for _, done := range st.Results {
		m.st.results[done.StepID] = done
	}
	clear(m.instructions)
	m.expected = nil
}

func (m *Manager[T]) owns(in navstack.Instruction) bool {
	binding, ok := in.ResultBinding()
	return ok && binding.OwnerID == m.id
}

func (m *Manager[T]) apply(declared []Step) error {
	live := m.container.Backstack()
	target := make([]navstack.Instruction, 0, len(declared))
	records := make([]Step, 0, len(declared))

	for i, step := range declared {
		if step.Transient && i < len(declared)-1 {
			if _, done := m.st.results[step.ID]; done {
				records = append(records, step)
				continue
			}
		}
		in := m.instructionFor(step, live)
		step.InstructionID = in.ID()
		records = append(records, step)
		target = append(target, in)
	}
	m.records = records

	next := navstack.NewBackstack(target...)
	if next.Equal(live) {
		return nil
	}

	m.expected = next.IDs()
	m.logger.Debug("applying flow backstack", "steps", len(records), "entries", next.Len())
	res := m.container.SetBackstack(next)
	if res.Status == navstack.StatusFault {
		m.expected = nil
		return res.Err
	}
	return nil
}

func (m *Manager[T]) instructionFor(step Step, live navstack.Backstack) navstack.Instruction {
	matches := func(in navstack.Instruction) bool {
		id, _ := MetadataStepID.Get(in)
		fp, _ := MetadataFingerprint.Get(in)
		return m.owns(in) && id == step.ID && fp == step.Fingerprint
	}

	for _, in := range live.Instructions() {
		if matches(in) {
			return in
		}
	}
	if in, ok := m.instructions[step.ID]; ok && matches(in) {
		return in
	}

	in := navstack.NewInstruction(step.Direction, step.Key,
		navstack.WithResultBinding(navstack.ResultBinding{OwnerID: m.id, ResultKeyID: step.ID}),
		navstack.WithRawMetadata(MetadataStepID.Name(), step.ID),
		navstack.WithRawMetadata(MetadataFingerprint.Name(), step.Fingerprint),
	)
	if step.Transient {
		in = MetadataTransient.Set(in, true)
	}
	m.instructions[step.ID] = in
	return in
}

// withLiveIDs fills InstructionID for declared steps still on the backstack.
func (m *Manager[T]) withLiveIDs(declared []Step) []Step {
	live := m.container.Backstack()
	out := slices.Clone(declared)
	for i := range out {
		for _, in := range live.Instructions() {
			if id, _ := MetadataStepID.Get(in); id == out[i].ID && m.owns(in) {
				out[i].InstructionID = in.ID()
				break
			}
		}
	}
	return out
}

func (m *Manager[T]) onResult(binding navstack.ResultBinding, result any) {
	idx := slices.IndexFunc(m.records, func(s Step) bool { return s.ID == binding.ResultKeyID })
	if idx < 0 {
		m.logger.Warn("result for unknown step dropped", "step", binding.ResultKeyID)
		return
	}

	m.st.results[binding.ResultKeyID] = CompletedStep{
		StepID:      binding.ResultKeyID,
		Fingerprint: m.records[idx].Fingerprint,
		Result:      result,
	}
	if err := m.Update(); err != nil {
		m.logger.Debug("pass after result failed", "step", binding.ResultKeyID, "error", err)
	}
}

// onTransition trims the recorded steps when one of them left the backstack
// without the flow asking for it, which is what going back looks like.
func (m *Manager[T]) onTransition(_ *navstack.Container, t navstack.Transition) {
	if m.expected != nil && slices.Equal(m.expected, t.Active.IDs()) {
		m.expected = nil
		return
	}

	cut := slices.IndexFunc(m.records, func(s Step) bool {
		return s.InstructionID != "" && !t.Active.Contains(s.InstructionID)
	})
	if cut < 0 {
		return
	}

	kept := m.records[:cut]
	for len(kept) > 0 {
		last := kept[len(kept)-1]
		if !last.Transient || (last.InstructionID != "" && t.Active.Contains(last.InstructionID)) {
			break
		}
		kept = kept[:len(kept)-1]
	}

	for _, dropped := range m.records[len(kept):] {
		if !dropped.Transient {
			delete(m.st.results, dropped.ID)
		}
		delete(m.instructions, dropped.ID)
	}
	m.logger.Debug("flow steps trimmed", "from", len(m.records), "to", len(kept))
	m.records = slices.Clone(kept)

	target := make([]navstack.Instruction, 0, len(kept))
	for _, step := range kept {
		if in, ok := t.Active.Get(step.InstructionID); ok {
			target = append(target, in)
		}
	}
	next := navstack.NewBackstack(target...)
	if next.SameIdentities(t.Active) {
		return
	}
	m.expected = next.IDs()
	m.container.SetBackstack(next)
}

func (m *Manager[T]) report(err error) {
	if m.opts.ErrorHandler != nil {
		m.opts.ErrorHandler(err)
		return
	}
	m.logger.Error("flow invariant violated", "error", err)
}
