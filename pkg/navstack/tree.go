package navstack

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"k8s.io/apimachinery/pkg/util/sets"

	"github.com/BrandonKowalski/navstack/pkg/navstack/constants"
	"github.com/BrandonKowalski/navstack/pkg/navstack/internal"
)

// MetadataPreviouslyActiveContainer records which sibling container was active
// when an instruction was routed to a different container, so it can be made
// active again once the instruction closes.
var MetadataPreviouslyActiveContainer = NewMetadataKey[string](constants.MetadataNamespace + "previouslyActiveContainer")

// TreeOptions configures a context tree.
type TreeOptions struct {
	ID string // Generated when empty

	// OnRootEmpty is called when a container mounted directly under the root
	// asks its parent to close (EmptyBehavior CloseParent). Typically the host
	// finishes the screen or exits.
	OnRootEmpty func(c *Container)

	// OnActiveChanged is called whenever the active leaf changes.
	OnActiveChanged func(leaf *Node)

	// DisablePreviouslyActiveRestore skips installing the interceptor that
	// restores the previously active sibling container on close.
	DisablePreviouslyActiveRestore bool

	ErrorHandler ErrorHandler
	Logger       *slog.Logger
}

// Tree is the live hierarchy of mounted containers and their destinations.
type Tree struct {
	id         string
	root       *Node
	containers map[string]*Container
	dispatcher *dispatcher
	results    *ResultRouter
	opts       TreeOptions
	lastLeaf   *Node
	logger     *slog.Logger
}

// NewTree creates a standalone tree. Trees that should share ordering and
// result routing with others are created through a Registry instead.
func NewTree(opts TreeOptions) *Tree {
	return newTree(opts, newDispatcher(), NewResultRouter())
}

func newTree(opts TreeOptions, d *dispatcher, results *ResultRouter) *Tree {
	if opts.ID == "" {
		opts.ID = internal.NewScopedID("tree")
	}
	logger := opts.Logger
	if logger == nil {
		logger = internal.GetInternalLogger()
	}
	t := &Tree{
		id:         opts.ID,
		containers: make(map[string]*Container),
		dispatcher: d,
		results:    results,
		opts:       opts,
		logger:     logger.With("tree", opts.ID),
	}
	t.root = &Node{id: opts.ID, kind: NodeKindRoot, tree: t}
	return t
}

func (t *Tree) ID() string             { return t.id }
func (t *Tree) Root() *Node            { return t.root }
func (t *Tree) Results() *ResultRouter { return t.results }

// ActiveLeaf returns the one node the user is currently looking at.
func (t *Tree) ActiveLeaf() *Node {
	return t.root.ActiveLeaf()
}

// ActiveInstruction returns the instruction of the active leaf when the leaf is
// a destination.
func (t *Tree) ActiveInstruction() (Instruction, bool) {
	return t.ActiveLeaf().Instruction()
}

// Container looks up a mounted container by id.
func (t *Tree) Container(id string) (*Container, bool) {
	c, ok := t.containers[id]
	return c, ok
}

// Containers returns every mounted container, ordered by id.
func (t *Tree) Containers() []*Container {
	out := make([]*Container, 0, len(t.containers))
	for _, c := range t.containers {
		out = append(out, c)
	}
	slices.SortFunc(out, func(a, b *Container) int {
		return cmp.Compare(a.id, b.id)
	})
	return out
}

// MountContainer mounts c directly under the root.
func (t *Tree) MountContainer(c *Container) (*Node, error) {
	return t.root.MountContainer(c)
}

// Navigate routes instruction to the nearest container that accepts it,
// starting at from (the active leaf when nil) and walking towards the root.
// A destination's own containers are tried before its parent's, and the
// active container before its siblings. The chosen container is made active
// in root once the open goes ahead.
func (t *Tree) Navigate(from *Node, instruction Instruction) Result {
	if from == nil {
		from = t.ActiveLeaf()
	}

	visited := sets.New[string]()
	for n := from; n != nil; n = n.parent {
		for _, c := range n.candidates() {
			if visited.Has(c.id) {
				continue
			}
			visited.Insert(c.id)
			if !c.Accepts(instruction) {
				continue
			}

			res := c.Open(t.recordPreviouslyActive(c, instruction))
			switch res.Status {
			case StatusCommitted, StatusQueued:
				if c.node != nil {
					c.node.RequestActiveInRoot()
				}
			}
			return res
		}
	}

	t.logger.Warn("no container accepts instruction", "instruction", instruction.String())
	return Result{
		Status: StatusRejected,
		Err:    fmt.Errorf("%w: %s", ErrRejectedByContainer, instruction),
	}
}

// Close closes a node: a destination is closed in its container, a container
// asks its host to close. Closing the root is a not-found no-op.
func (t *Tree) Close(n *Node) Result {
	switch n.kind {
	case NodeKindDestination:
		if n.parent == nil {
			return notFound("", n.id)
		}
		return n.parent.container.Close(n.id)
	case NodeKindContainer:
		t.closeHost(n.container)
		return Result{Status: StatusParentClosed}
	case NodeKindRoot:
	}
	return notFound("", n.id)
}

// CompleteWithResult completes a destination node with a result.
func (t *Tree) CompleteWithResult(n *Node, result any) Result {
	switch n.kind {
	case NodeKindDestination:
		if n.parent != nil {
			return n.parent.container.CompleteWithResult(n.id, result)
		}
	case NodeKindRoot, NodeKindContainer:
	}
	return notFound("", n.id)
}

// closeHost propagates a close request from an emptied container to whatever
// hosts it.
func (t *Tree) closeHost(c *Container) {
	n := c.node
	if n == nil || n.parent == nil {
		return
	}
	host := n.parent
	switch host.kind {
	case NodeKindDestination:
		if host.parent != nil {
			host.parent.container.Close(host.id)
		}
	case NodeKindRoot:
		if t.opts.OnRootEmpty != nil {
			t.opts.OnRootEmpty(c)
		}
	case NodeKindContainer:
	}
}

func (t *Tree) recordPreviouslyActive(target *Container, instruction Instruction) Instruction {
	if t.opts.DisablePreviouslyActiveRestore || target.node == nil || target.node.parent == nil {
		return instruction
	}
	if MetadataPreviouslyActiveContainer.Has(instruction) {
		return instruction
	}
	current := target.node.parent.activeChild
	if current == nil || current == target.node || current.kind != NodeKindContainer {
		return instruction
	}
	return MetadataPreviouslyActiveContainer.Set(instruction, current.id)
}

// attach wires a freshly mounted container into the tree.
func (t *Tree) attach(c *Container, node *Node) {
	c.node = node
	c.dispatcher = t.dispatcher
	view := t.results.share()
	for owner, handler := range c.results.handlers {
		view.Register(owner, handler)
	}
	c.results = view
	c.onCloseParent = t.closeHost
	if t.opts.ErrorHandler != nil {
		c.errorHandler = t.opts.ErrorHandler
	}
	if !t.opts.DisablePreviouslyActiveRestore {
		c.pipeline.Remove(previouslyActiveInterceptorName)
		c.pipeline.Add(newPreviouslyActiveInterceptor(t))
	}
	t.containers[c.id] = c
	t.logger.Debug("container mounted", "container", c.id, "path", node.Path())
}

// release undoes attach when a container node is torn down.
func (t *Tree) release(c *Container) {
	delete(t.containers, c.id)
	c.pipeline.Remove(previouslyActiveInterceptorName)
	c.node = nil
	c.onCloseParent = nil
	c.dispatcher = newDispatcher()
	c.results = c.results.detach()
	t.logger.Debug("container unmounted", "container", c.id)
}

func (t *Tree) notifyActive() {
	leaf := t.root.ActiveLeaf()
	if leaf == t.lastLeaf {
		return
	}
	t.lastLeaf = leaf
	if t.opts.OnActiveChanged != nil {
		t.opts.OnActiveChanged(leaf)
	}
}

// candidates returns the containers a navigation starting at n may target.
func (n *Node) candidates() []*Container {
	switch n.kind {
	case NodeKindRoot, NodeKindDestination:
		return n.ContainerChildren()
	case NodeKindContainer:
		return []*Container{n.container}
	}
	return nil
}

const previouslyActiveInterceptorName = "navstack.previouslyActive"

// previouslyActiveInterceptor makes the recorded sibling container active again
// after an instruction carrying MetadataPreviouslyActiveContainer closes.
type previouslyActiveInterceptor struct {
	BaseInterceptor
	tree *Tree
}

func newPreviouslyActiveInterceptor(t *Tree) *previouslyActiveInterceptor {
	return &previouslyActiveInterceptor{
		BaseInterceptor: NewBaseInterceptor(previouslyActiveInterceptorName, PriorityDefault),
		tree:            t,
	}
}

func (p *previouslyActiveInterceptor) InterceptClose(ctx *InterceptContext, instruction Instruction) CloseOutcome {
	id, ok := MetadataPreviouslyActiveContainer.Get(instruction)
	if !ok || id == "" {
		return AllowClose()
	}
	ctx.Defer(func() {
		if c, ok := p.tree.containers[id]; ok && c.node != nil {
			c.node.RequestActive()
		}
	})
	return AllowClose()
}
