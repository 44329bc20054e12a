package navstack

import (
	"cmp"
	"fmt"
	"log/slog"
	"slices"

	"github.com/BrandonKowalski/navstack/pkg/navstack/internal"
)

// RegistryOptions configures a Registry.
type RegistryOptions struct {
	ErrorHandler ErrorHandler
	Logger       *slog.Logger
}

// Registry is an explicitly scoped table of context trees. Trees created through
// the same registry share one dispatcher, so every operation across them is
// processed in submission order, and one result router.
type Registry struct {
	trees      map[string]*Tree
	dispatcher *dispatcher
	results    *ResultRouter
	opts       RegistryOptions
	logger     *slog.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(opts RegistryOptions) *Registry {
	logger := opts.Logger
	if logger == nil {
		logger = internal.GetInternalLogger()
	}
	return &Registry{
		trees:      make(map[string]*Tree),
		dispatcher: newDispatcher(),
		results:    NewResultRouter(),
		opts:       opts,
		logger:     logger,
	}
}

// CreateTree creates and registers a tree.
func (r *Registry) CreateTree(opts TreeOptions) (*Tree, error) {
	if opts.ID != "" {
		if _, dup := r.trees[opts.ID]; dup {
			return nil, fmt.Errorf("navstack: tree %q already registered", opts.ID)
		}
	}
	if opts.ErrorHandler == nil {
		opts.ErrorHandler = r.opts.ErrorHandler
	}
	if opts.Logger == nil {
		opts.Logger = r.logger
	}
	t := newTree(opts, r.dispatcher, r.results)
	r.trees[t.id] = t
	r.logger.Debug("tree registered", "tree", t.id)
	return t, nil
}

// Tree looks up a registered tree.
func (r *Registry) Tree(id string) (*Tree, bool) {
	t, ok := r.trees[id]
	return t, ok
}

// Trees returns every registered tree ordered by id.
func (r *Registry) Trees() []*Tree {
	out := make([]*Tree, 0, len(r.trees))
	for _, t := range r.trees {
		out = append(out, t)
	}
	slices.SortFunc(out, func(a, b *Tree) int { return cmp.Compare(a.id, b.id) })
	return out
}

// Unregister unmounts every container of the tree and forgets it.
func (r *Registry) Unregister(id string) bool {
	t, ok := r.trees[id]
	if !ok {
		return false
	}
	for _, child := range t.root.Children() {
		if err := child.Unmount(); err != nil {
			r.logger.Warn("unmount failed", "tree", id, "node", child.ID(), "error", err)
		}
	}
	delete(r.trees, id)
	r.logger.Debug("tree unregistered", "tree", id)
	return true
}

// Container finds a mounted container by id across all trees.
func (r *Registry) Container(id string) (*Container, bool) {
	for _, t := range r.trees {
		if c, ok := t.containers[id]; ok {
			return c, true
		}
	}
	return nil, false
}

// Results returns the shared result router.
func (r *Registry) Results() *ResultRouter {
	return r.results
}
