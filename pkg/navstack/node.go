package navstack

import (
	"fmt"
	"slices"
)

// NodeKind is the closed set of context tree node variants.
type NodeKind int

const (
	NodeKindRoot        NodeKind = iota // No parent; unconditionally active in root
	NodeKindContainer                   // Parent is Root or a Destination; children are Destinations
	NodeKindDestination                 // Parent is a Container; children are Containers
)

// String returns a string representation of the kind.
func (k NodeKind) String() string {
	switch k {
	case NodeKindRoot:
		return "root"
	case NodeKindContainer:
		return "container"
	case NodeKindDestination:
		return "destination"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Node is one entry in the live context tree. Parents own their children; the
// parent pointer is a non-owning back-reference that is cleared on detach.
type Node struct {
	id          string
	kind        NodeKind
	tree        *Tree
	parent      *Node
	children    []*Node
	activeChild *Node

	container   *Container  // NodeKindContainer only
	instruction Instruction // NodeKindDestination only
}

func (n *Node) ID() string     { return n.id }
func (n *Node) Kind() NodeKind { return n.kind }
func (n *Node) Tree() *Tree    { return n.tree }

// Parent returns the parent node, or nil for the root and detached nodes.
func (n *Node) Parent() *Node {
	return n.parent
}

// Children returns the children in order.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// ActiveChild returns the child marked active, or nil.
func (n *Node) ActiveChild() *Node {
	return n.activeChild
}

// Container returns the container for a container node, nil otherwise.
func (n *Node) Container() *Container {
	return n.container
}

// Instruction returns the instruction for a destination node.
func (n *Node) Instruction() (Instruction, bool) {
	if n.kind != NodeKindDestination {
		return Instruction{}, false
	}
	return n.instruction, true
}

// IsActive reports whether n is the active child of its parent.
func (n *Node) IsActive() bool {
	switch n.kind {
	case NodeKindRoot:
		return true
	case NodeKindContainer, NodeKindDestination:
		return n.parent != nil && n.parent.activeChild == n
	}
	return false
}

// IsActiveInRoot reports whether n and every ancestor are active.
func (n *Node) IsActiveInRoot() bool {
	switch n.kind {
	case NodeKindRoot:
		return true
	case NodeKindContainer, NodeKindDestination:
		return n.IsActive() && n.parent.IsActiveInRoot()
	}
	return false
}

// RequestActive asks for n to become its parent's active child. A container
// is marked directly; a destination cannot choose itself (its container's
// backstack decides), so the request is forwarded to its container.
func (n *Node) RequestActive() {
	switch n.kind {
	case NodeKindRoot:
	case NodeKindContainer:
		if n.parent != nil {
			n.parent.setActiveChild(n)
		}
	case NodeKindDestination:
		if n.parent != nil {
			n.parent.RequestActive()
		}
	}
}

// RequestActiveInRoot makes n and every ancestor active.
func (n *Node) RequestActiveInRoot() {
	n.RequestActive()
	if n.parent != nil {
		n.parent.RequestActiveInRoot()
	}
}

// ActiveLeaf follows active children down to a node without one.
func (n *Node) ActiveLeaf() *Node {
	leaf := n
	for leaf.activeChild != nil {
		leaf = leaf.activeChild
	}
	return leaf
}

// Path returns the ids from the root down to n.
func (n *Node) Path() []string {
	var path []string
	for cur := n; cur != nil; cur = cur.parent {
		path = append(path, cur.id)
	}
	slices.Reverse(path)
	return path
}

// MountContainer attaches c below n. Containers can be mounted under the root
// or under a destination. The first container mounted under a node becomes
// its active child.
func (n *Node) MountContainer(c *Container) (*Node, error) {
	switch n.kind {
	case NodeKindRoot, NodeKindDestination:
	case NodeKindContainer:
		return nil, fmt.Errorf("navstack: cannot mount container %q inside container %q", c.id, n.id)
	}
	if c.node != nil {
		return nil, fmt.Errorf("navstack: container %q is already mounted", c.id)
	}
	if _, dup := n.tree.containers[c.id]; dup {
		return nil, fmt.Errorf("navstack: container id %q already in tree %q", c.id, n.tree.id)
	}

	node := &Node{
		id:        c.id,
		kind:      NodeKindContainer,
		tree:      n.tree,
		parent:    n,
		container: c,
	}
	n.children = append(n.children, node)
	n.tree.attach(c, node)

	node.syncDestinations(ComputeTransition(Backstack{}, c.backstack))
	if n.activeChild == nil {
		n.setActiveChild(node)
	}
	return node, nil
}

// Unmount detaches a container node and everything below it.
func (n *Node) Unmount() error {
	switch n.kind {
	case NodeKindContainer:
	case NodeKindRoot, NodeKindDestination:
		return fmt.Errorf("navstack: only container nodes can be unmounted, %q is a %s", n.id, n.kind)
	}
	parent := n.parent
	n.detach()
	if parent != nil {
		n.tree.notifyActive()
	}
	return nil
}

// ContainerChildren returns the container children of a root or destination
// node, active one first.
func (n *Node) ContainerChildren() []*Container {
	var out []*Container
	if n.activeChild != nil && n.activeChild.kind == NodeKindContainer {
		out = append(out, n.activeChild.container)
	}
	for _, child := range n.children {
		if child.kind == NodeKindContainer && child != n.activeChild {
			out = append(out, child.container)
		}
	}
	return out
}

// setActiveChild swaps the active child in a single assignment, so no reader
// can observe zero or two active children during the change.
func (n *Node) setActiveChild(child *Node) {
	if n.activeChild == child {
		return
	}
	n.activeChild = child
	n.tree.notifyActive()
}

// detach removes n from its parent and tears down its subtree.
func (n *Node) detach() {
	n.teardown()
	if p := n.parent; p != nil {
		p.children = slices.DeleteFunc(p.children, func(c *Node) bool { return c == n })
		if p.activeChild == n {
			p.activeChild = nil
		}
	}
	n.parent = nil
}

func (n *Node) teardown() {
	for _, child := range n.children {
		child.teardown()
		child.parent = nil
	}
	n.children = nil
	n.activeChild = nil

	if n.kind == NodeKindContainer {
		n.tree.release(n.container)
	}
}

// syncDestinations mirrors a committed transition into destination nodes.
func (n *Node) syncDestinations(t Transition) {
	byID := make(map[string]*Node, len(n.children))
	for _, child := range n.children {
		byID[child.id] = child
	}
	for _, removed := range t.Removed {
		if child, ok := byID[removed.id]; ok {
			child.detach()
			delete(byID, removed.id)
		}
	}

	children := make([]*Node, 0, t.Active.Len())
	for _, in := range t.Active.entries {
		child, ok := byID[in.id]
		if !ok {
			child = &Node{
				id:   in.id,
				kind: NodeKindDestination,
				tree: n.tree,
			}
		}
		child.parent = n
		child.instruction = in
		children = append(children, child)
	}
	n.children = children

	var active *Node
	if len(children) > 0 {
		active = children[len(children)-1]
	}
	n.activeChild = active
	n.tree.notifyActive()
}
