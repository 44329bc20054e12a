package navstack

import (
	"github.com/BrandonKowalski/navstack/pkg/navstack/constants"
)

// Interceptor priority tiers. Higher priority runs first; equal priorities run
// in registration order. The pipeline itself only sorts by number, the tiers
// are applied by ForKey, ForKind and ForDirection.
const (
	PriorityDefault       = constants.PriorityDefault
	PriorityDirectionOnly = constants.PriorityDirectionOnly
	PriorityPartialMatch  = constants.PriorityPartialMatch
	PriorityExactMatch    = constants.PriorityExactMatch
)

// Interceptor observes a proposed operation and decides whether it goes ahead
// unchanged, is cancelled, or is replaced. Implementations must be pure with
// respect to navigation state: anything that should happen afterwards goes
// through InterceptContext.Defer.
type Interceptor interface {
	Name() string
	Priority() int
	InterceptOpen(ctx *InterceptContext, instruction Instruction) OpenOutcome
	InterceptClose(ctx *InterceptContext, instruction Instruction) CloseOutcome
	InterceptResult(ctx *InterceptContext, instruction Instruction, result any) ResultOutcome
}

// BaseInterceptor allows everything. Embed it and override the hooks you need.
type BaseInterceptor struct {
	name     string
	priority int
}

// NewBaseInterceptor creates a base interceptor with the given name and priority.
func NewBaseInterceptor(name string, priority int) BaseInterceptor {
	return BaseInterceptor{name: name, priority: priority}
}

func (b *BaseInterceptor) Name() string  { return b.name }
func (b *BaseInterceptor) Priority() int { return b.priority }

func (b *BaseInterceptor) InterceptOpen(_ *InterceptContext, instruction Instruction) OpenOutcome {
	return AllowOpen(instruction)
}

func (b *BaseInterceptor) InterceptClose(_ *InterceptContext, _ Instruction) CloseOutcome {
	return AllowClose()
}

func (b *BaseInterceptor) InterceptResult(_ *InterceptContext, _ Instruction, _ any) ResultOutcome {
	return DeliverResult()
}

// InterceptContext is handed to every interceptor for a single operation.
type InterceptContext struct {
	container *Container
	backstack Backstack
	effects   []func()
	onCommit  func()
}

func newInterceptContext(c *Container) *InterceptContext {
	return &InterceptContext{container: c, backstack: c.backstack}
}

// Container returns the container the operation targets.
func (c *InterceptContext) Container() *Container {
	return c.container
}

// ContainerID returns the id of the container the operation targets.
func (c *InterceptContext) ContainerID() string {
	return c.container.id
}

// Backstack returns the committed backstack as it was before the operation.
func (c *InterceptContext) Backstack() Backstack {
	return c.backstack
}

// Defer enqueues a side effect that runs after the operation commits, in
// enqueue order. Effects of cancelled operations are discarded.
func (c *InterceptContext) Defer(fn func()) {
	c.effects = append(c.effects, fn)
}

// OpenDecision is the verdict of an open interceptor.
type OpenDecision int

const (
	OpenAllow OpenDecision = iota
	OpenCancel
	OpenReplace
)

// OpenOutcome is returned by InterceptOpen.
type OpenOutcome struct {
	Decision    OpenDecision
	Instruction Instruction
}

func AllowOpen(instruction Instruction) OpenOutcome {
	return OpenOutcome{Decision: OpenAllow, Instruction: instruction}
}

func CancelOpen() OpenOutcome {
	return OpenOutcome{Decision: OpenCancel}
}

func ReplaceOpen(instruction Instruction) OpenOutcome {
	return OpenOutcome{Decision: OpenReplace, Instruction: instruction}
}

// CloseDecision is the verdict of a close interceptor.
type CloseDecision int

const (
	CloseAllow CloseDecision = iota
	CloseCancel
	CloseReplace // Close, then open Instruction in the same commit
)

// CloseOutcome is returned by InterceptClose.
type CloseOutcome struct {
	Decision    CloseDecision
	Instruction Instruction
}

func AllowClose() CloseOutcome {
	return CloseOutcome{Decision: CloseAllow}
}

func CancelClose() CloseOutcome {
	return CloseOutcome{Decision: CloseCancel}
}

// ReplaceClose turns a close into "close and then open instruction".
func ReplaceClose(instruction Instruction) CloseOutcome {
	return CloseOutcome{Decision: CloseReplace, Instruction: instruction}
}

// ResultDecision is the verdict of a result interceptor.
type ResultDecision int

const (
	ResultDeliver               ResultDecision = iota // Deliver to the bound owner, then close
	ResultDeliverAndCancelClose                       // Deliver, keep the destination open
	ResultCancel                                      // Neither deliver nor close
)

// ResultOutcome is returned by InterceptResult.
type ResultOutcome struct {
	Decision ResultDecision
}

func DeliverResult() ResultOutcome {
	return ResultOutcome{Decision: ResultDeliver}
}

func DeliverResultAndCancelClose() ResultOutcome {
	return ResultOutcome{Decision: ResultDeliverAndCancelClose}
}

func CancelResult() ResultOutcome {
	return ResultOutcome{Decision: ResultCancel}
}

// InterceptorFuncs builds an interceptor from plain functions. Nil hooks allow.
type InterceptorFuncs struct {
	Name     string
	Priority int
	// Match limits the interceptor to matching instructions; nil matches all.
	Match    func(Instruction) bool
	OnOpen   func(ctx *InterceptContext, instruction Instruction) OpenOutcome
	OnClose  func(ctx *InterceptContext, instruction Instruction) CloseOutcome
	OnResult func(ctx *InterceptContext, instruction Instruction, result any) ResultOutcome
}

type funcInterceptor struct {
	fns InterceptorFuncs
}

// NewInterceptor wraps fns as an Interceptor.
func NewInterceptor(fns InterceptorFuncs) Interceptor {
	return &funcInterceptor{fns: fns}
}

// ForKey builds an interceptor that only sees instructions whose key is
// structurally equal to key. Runs in the exact-match tier.
func ForKey(key DestinationKey, fns InterceptorFuncs) Interceptor {
	fns.Priority = PriorityExactMatch
	fns.Match = func(in Instruction) bool { return KeysEqual(in.key, key) }
	if fns.Name == "" {
		kind := "<nil>"
		if key != nil {
			kind = key.Kind()
		}
		fns.Name = "key:" + kind
	}
	return NewInterceptor(fns)
}

// ForKind builds an interceptor that only sees instructions of one key kind.
// Runs in the partial-match tier.
func ForKind(kind string, fns InterceptorFuncs) Interceptor {
	fns.Priority = PriorityPartialMatch
	fns.Match = func(in Instruction) bool { return in.key != nil && in.key.Kind() == kind }
	if fns.Name == "" {
		fns.Name = "kind:" + kind
	}
	return NewInterceptor(fns)
}

// ForDirection builds an interceptor that only sees instructions opened with
// one direction. Runs in the direction-only tier.
func ForDirection(direction Direction, fns InterceptorFuncs) Interceptor {
	fns.Priority = PriorityDirectionOnly
	fns.Match = func(in Instruction) bool { return in.direction == direction }
	if fns.Name == "" {
		fns.Name = "direction:" + direction.String()
	}
	return NewInterceptor(fns)
}

func (f *funcInterceptor) Name() string  { return f.fns.Name }
func (f *funcInterceptor) Priority() int { return f.fns.Priority }

func (f *funcInterceptor) matches(in Instruction) bool {
	return f.fns.Match == nil || f.fns.Match(in)
}

func (f *funcInterceptor) InterceptOpen(ctx *InterceptContext, instruction Instruction) OpenOutcome {
	if f.fns.OnOpen == nil || !f.matches(instruction) {
		return AllowOpen(instruction)
	}
	return f.fns.OnOpen(ctx, instruction)
}

func (f *funcInterceptor) InterceptClose(ctx *InterceptContext, instruction Instruction) CloseOutcome {
	if f.fns.OnClose == nil || !f.matches(instruction) {
		return AllowClose()
	}
	return f.fns.OnClose(ctx, instruction)
}

func (f *funcInterceptor) InterceptResult(ctx *InterceptContext, instruction Instruction, result any) ResultOutcome {
	if f.fns.OnResult == nil || !f.matches(instruction) {
		return DeliverResult()
	}
	return f.fns.OnResult(ctx, instruction, result)
}
