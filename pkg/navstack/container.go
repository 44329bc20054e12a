package navstack

import (
	"fmt"
	"log/slog"

	"github.com/BrandonKowalski/navstack/pkg/navstack/internal"
)

type emptyKind int

const (
	emptyAllow emptyKind = iota
	emptyCloseParent
	emptyAction
)

// EmptyBehavior decides what happens when a commit would leave a container's
// backstack empty. It runs as part of the commit, so it can veto the operation.
type EmptyBehavior struct {
	kind   emptyKind
	action func() bool
}

// AllowEmpty commits the empty backstack.
func AllowEmpty() EmptyBehavior {
	return EmptyBehavior{kind: emptyAllow}
}

// CloseParent keeps the backstack as it is and asks whatever hosts the
// container to close instead.
func CloseParent() EmptyBehavior {
	return EmptyBehavior{kind: emptyCloseParent}
}

// Action runs decide; returning false cancels the emptying operation.
func Action(decide func() bool) EmptyBehavior {
	return EmptyBehavior{kind: emptyAction, action: decide}
}

// String returns a string representation of the behavior.
func (e EmptyBehavior) String() string {
	switch e.kind {
	case emptyCloseParent:
		return "close_parent"
	case emptyAction:
		return "action"
	default:
		return "allow_empty"
	}
}

// ContainerConfig configures a new container.
type ContainerConfig struct {
	ID               string                    // Generated when empty
	AcceptsKey       func(DestinationKey) bool // nil accepts every key
	AcceptsDirection func(Direction) bool      // nil accepts every direction
	EmptyBehavior    EmptyBehavior             // Zero value allows empty
	Interceptors     []Interceptor
	Renderer         Renderer
	Observers        []Observer
	Initial          []Instruction // Initial backstack, committed without interception
	OnCloseParent    func(c *Container)
	ErrorHandler     ErrorHandler
	Logger           *slog.Logger
}

// Container is a region that shows a stack of destinations. It exclusively owns
// its backstack; callers only submit operations.
type Container struct {
	id               string
	backstack        Backstack
	acceptsKey       func(DestinationKey) bool
	acceptsDirection func(Direction) bool
	emptyBehavior    EmptyBehavior
	pipeline         *Pipeline
	renderer         Renderer
	observers        []Observer
	dispatcher       *dispatcher
	results          *ResultRouter
	onCloseParent    func(c *Container)
	errorHandler     ErrorHandler
	logger           *slog.Logger

	node *Node
}

// NewContainer creates a container from cfg.
func NewContainer(cfg ContainerConfig) *Container {
	c := &Container{
		id:               cfg.ID,
		backstack:        NewBackstack(cfg.Initial...),
		acceptsKey:       cfg.AcceptsKey,
		acceptsDirection: cfg.AcceptsDirection,
		emptyBehavior:    cfg.EmptyBehavior,
		pipeline:         NewPipeline(cfg.Interceptors...),
		renderer:         cfg.Renderer,
		observers:        append([]Observer(nil), cfg.Observers...),
		dispatcher:       newDispatcher(),
		results:          NewResultRouter(),
		onCloseParent:    cfg.OnCloseParent,
		errorHandler:     cfg.ErrorHandler,
		logger:           cfg.Logger,
	}
	if c.id == "" {
		c.id = internal.NewScopedID("container")
	}
	if c.logger == nil {
		c.logger = internal.GetInternalLogger()
	}
	c.logger = c.logger.With("container", c.id)
	if c.errorHandler == nil {
		c.errorHandler = func(err error) {
			c.logger.Error("navigation fault", "error", err)
		}
	}
	return c
}

func (c *Container) ID() string                   { return c.id }
func (c *Container) Backstack() Backstack         { return c.backstack }
func (c *Container) Pipeline() *Pipeline          { return c.pipeline }
func (c *Container) EmptyBehavior() EmptyBehavior { return c.emptyBehavior }
func (c *Container) Results() *ResultRouter       { return c.results }

// Node returns the context tree node for this container, or nil when unmounted.
func (c *Container) Node() *Node {
	return c.node
}

// Active returns the top of the backstack.
func (c *Container) Active() (Instruction, bool) {
	return c.backstack.Active()
}

// SetRenderer replaces the renderer. The current state is mounted on the new
// renderer immediately.
func (c *Container) SetRenderer(r Renderer) {
	c.renderer = r
	Reconcile(r, ComputeTransition(Backstack{}, c.backstack))
}

// AddObserver registers an observer.
func (c *Container) AddObserver(o Observer) {
	c.observers = append(c.observers, o)
}

// AcceptsKey reports whether the container is willing to host key.
func (c *Container) AcceptsKey(key DestinationKey) bool {
	return c.acceptsKey == nil || c.acceptsKey(key)
}

// AcceptsDirection reports whether the container is willing to host an
// instruction opened with direction.
func (c *Container) AcceptsDirection(direction Direction) bool {
	return c.acceptsDirection == nil || c.acceptsDirection(direction)
}

// Accepts combines AcceptsKey and AcceptsDirection.
func (c *Container) Accepts(instruction Instruction) bool {
	return c.AcceptsKey(instruction.key) && c.AcceptsDirection(instruction.direction)
}

// Open submits an OpenOperation.
func (c *Container) Open(instruction Instruction) Result {
	return c.Submit(OpenOperation{Instruction: instruction})
}

// Close submits a CloseOperation.
func (c *Container) Close(instructionID string) Result {
	return c.Submit(CloseOperation{InstructionID: instructionID})
}

// CompleteWithResult submits a ResultOperation.
func (c *Container) CompleteWithResult(instructionID string, result any) Result {
	return c.Submit(ResultOperation{InstructionID: instructionID, Result: result})
}

// Update submits an UpdateOperation.
func (c *Container) Update(instruction Instruction) Result {
	return c.Submit(UpdateOperation{Instruction: instruction})
}

// SetBackstack submits a SetBackstackOperation.
func (c *Container) SetBackstack(b Backstack) Result {
	return c.Submit(SetBackstackOperation{Backstack: b})
}

// Submit processes op. Operations are handled strictly in submission order; an
// operation submitted while another is processing (for example from a side
// effect or an observer) is queued and reported as StatusQueued.
func (c *Container) Submit(op Operation) Result {
	var res Result
	ran, err := c.dispatcher.run(func() {
		res = c.process(op)
	})
	if err != nil {
		res = Result{Status: StatusFault, Err: err}
		c.errorHandler(err)
		c.notifyResult(op, res)
		return res
	}
	if !ran {
		c.logger.Debug("operation queued", "op", op.Name())
		return Result{Status: StatusQueued}
	}
	return res
}

func (c *Container) process(op Operation) Result {
	var res Result
	switch o := op.(type) {
	case OpenOperation:
		res = c.processOpen(o)
	case CloseOperation:
		res = c.processClose(o)
	case ResultOperation:
		res = c.processResult(o)
	case UpdateOperation:
		res = c.processUpdate(o)
	case SetBackstackOperation:
		res = c.commit(newInterceptContext(c), o.Backstack)
	default:
		res = Result{Status: StatusFault, Err: fmt.Errorf("navstack: unsupported operation %T", op)}
	}

	c.logger.Debug("operation processed", "op", op.Name(), "status", res.Status.String())
	c.notifyResult(op, res)
	return res
}

func (c *Container) processOpen(o OpenOperation) Result {
	if !c.Accepts(o.Instruction) {
		return Result{
			Status: StatusRejected,
			Err:    fmt.Errorf("%w: container %q cannot host %s", ErrRejectedByContainer, c.id, o.Instruction),
		}
	}

	ctx := newInterceptContext(c)
	out, err := c.pipeline.Open(ctx, o.Instruction)
	if err != nil {
		return c.fault(err)
	}
	if out.Decision == OpenCancel {
		return cancelled()
	}
	return c.commit(ctx, c.backstack.Push(out.Instruction))
}

func (c *Container) processClose(o CloseOperation) Result {
	instruction, ok := c.backstack.Get(o.InstructionID)
	if !ok {
		return notFound(c.id, o.InstructionID)
	}

	ctx := newInterceptContext(c)
	next, res, ok := c.closeNext(ctx, instruction)
	if !ok {
		return res
	}
	return c.commit(ctx, next)
}

// closeNext runs the close pipeline for instruction and returns the backstack
// the close would commit. When ok is false the operation ends with res.
func (c *Container) closeNext(ctx *InterceptContext, instruction Instruction) (next Backstack, res Result, ok bool) {
	out, err := c.pipeline.Close(ctx, instruction)
	if err != nil {
		return Backstack{}, c.fault(err), false
	}

	next, _ = c.backstack.Close(instruction.id)
	switch out.Decision {
	case CloseCancel:
		return Backstack{}, cancelled(), false
	case CloseReplace:
		replacement, err := c.pipeline.Open(ctx, out.Instruction)
		if err != nil {
			return Backstack{}, c.fault(err), false
		}
		if replacement.Decision != OpenCancel {
			next = next.Push(replacement.Instruction)
		}
	case CloseAllow:
	}
	return next, Result{}, true
}

// processResult delivers a result and closes the instruction that produced it.
// Delivery and deferred effects only happen once the close goes through, so a
// vetoed close leaves the owner untouched.
func (c *Container) processResult(o ResultOperation) Result {
	instruction, ok := c.backstack.Get(o.InstructionID)
	if !ok {
		return notFound(c.id, o.InstructionID)
	}

	ctx := newInterceptContext(c)
	out, err := c.pipeline.Result(ctx, instruction, o.Result)
	if err != nil {
		return c.fault(err)
	}
	if out.Decision == ResultCancel {
		return cancelled()
	}

	deliver := func() {
		binding, bound := instruction.ResultBinding()
		if bound && !c.results.Deliver(binding, o.Result) {
			c.logger.Warn("result dropped, owner not registered", "owner", binding.OwnerID, "instruction", instruction.id)
		}
	}

	if out.Decision == ResultDeliverAndCancelClose {
		deliver()
		runEffects(ctx.effects)
		return Result{Status: StatusDelivered}
	}

	next, res, ok := c.closeNext(ctx, instruction)
	if !ok {
		return res
	}
	ctx.onCommit = deliver
	res = c.commit(ctx, next)
	if res.Status == StatusParentClosed {
		deliver()
		runEffects(ctx.effects)
	}
	return res
}

func (c *Container) processUpdate(o UpdateOperation) Result {
	next, ok := c.backstack.Update(o.Instruction)
	if !ok {
		return notFound(c.id, o.Instruction.id)
	}
	return c.commit(newInterceptContext(c), next)
}

// commit swaps in next, unless the empty behavior says otherwise. Nothing is
// observable until the transition has been computed and the swap done.
func (c *Container) commit(ctx *InterceptContext, next Backstack) Result {
	if next.IsEmpty() && !c.backstack.IsEmpty() {
		switch c.emptyBehavior.kind {
		case emptyAllow:
		case emptyCloseParent:
			c.logger.Debug("backstack would empty, closing parent")
			if c.onCloseParent != nil {
				c.onCloseParent(c)
			}
			return Result{Status: StatusParentClosed}
		case emptyAction:
			if c.emptyBehavior.action != nil && !c.emptyBehavior.action() {
				return cancelled()
			}
		}
	}

	t := ComputeTransition(c.backstack, next)
	c.backstack = next

	if c.node != nil {
		c.node.syncDestinations(t)
	}
	Reconcile(c.renderer, t)
	for _, o := range c.observers {
		o.ObserveTransition(c, t)
	}
	if ctx.onCommit != nil {
		ctx.onCommit()
	}
	runEffects(ctx.effects)

	return Result{Status: StatusCommitted, Transition: t}
}

func (c *Container) fault(err error) Result {
	c.errorHandler(err)
	return Result{Status: StatusFault, Err: err}
}

func (c *Container) notifyResult(op Operation, res Result) {
	for _, o := range c.observers {
		o.ObserveResult(c, op, res)
	}
}

func runEffects(effects []func()) {
	for _, fn := range effects {
		fn()
	}
}

func cancelled() Result {
	return Result{Status: StatusCancelled, Err: ErrInterceptorCancelled}
}

func notFound(containerID, instructionID string) Result {
	return Result{
		Status: StatusNotFound,
		Err:    fmt.Errorf("%w: %q in container %q", ErrNotFound, instructionID, containerID),
	}
}
