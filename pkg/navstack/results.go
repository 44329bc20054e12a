package navstack

import "k8s.io/apimachinery/pkg/util/sets"

// ResultHandler receives a result for a binding owned by the registrant.
type ResultHandler func(binding ResultBinding, result any)

// ResultRouter delivers results to whoever owns an instruction's ResultBinding.
type ResultRouter struct {
	handlers map[string]ResultHandler
	owned    sets.Set[string] // set on a mounted container's view of its tree's router
}

// NewResultRouter creates an empty router.
func NewResultRouter() *ResultRouter {
	return &ResultRouter{handlers: make(map[string]ResultHandler)}
}

// Register installs the handler for ownerID, replacing any previous one.
func (r *ResultRouter) Register(ownerID string, handler ResultHandler) {
	r.handlers[ownerID] = handler
	if r.owned != nil {
		r.owned.Insert(ownerID)
	}
}

// Unregister removes the handler for ownerID.
func (r *ResultRouter) Unregister(ownerID string) {
	delete(r.handlers, ownerID)
	if r.owned != nil {
		r.owned.Delete(ownerID)
	}
}

// Deliver hands result to the binding owner. It reports false when nobody is
// registered for the owner; the result is dropped.
func (r *ResultRouter) Deliver(binding ResultBinding, result any) bool {
	handler, ok := r.handlers[binding.OwnerID]
	if !ok {
		return false
	}
	handler(binding, result)
	return true
}

// share returns a view on r's handlers that remembers which owners were
// registered through it.
func (r *ResultRouter) share() *ResultRouter {
	return &ResultRouter{handlers: r.handlers, owned: sets.New[string]()}
}

// detach moves the owners registered through a shared view out of the shared
// handlers and into a standalone router.
func (r *ResultRouter) detach() *ResultRouter {
	own := NewResultRouter()
	for owner := range r.owned {
		if handler, ok := r.handlers[owner]; ok {
			own.handlers[owner] = handler
			delete(r.handlers, owner)
		}
	}
	return own
}
