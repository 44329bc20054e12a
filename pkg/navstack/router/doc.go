// Package router runs screens as blocking functions on top of a navstack
// container.
//
// Hosts that draw one screen at a time, and block until the user leaves it,
// do not need a renderer that mounts and unmounts. They register a ScreenFunc
// per destination kind and let Run show whatever instruction is active. Each
// screen returns an Outcome saying what the user did, and the router turns it
// into a container operation, so interceptors, result bindings and flows all
// apply as usual.
//
// # Basic Usage
//
//	main := navstack.NewContainer(navstack.ContainerConfig{ID: "main"})
//
//	r := router.New(main)
//
//	r.Register("list", func(in navstack.Instruction) (router.Outcome, error) {
//	    resume, _ := router.Resume[ListResume](in)
//	    selected, ok := listScreen(resume)
//	    if !ok {
//	        return router.Back(), nil
//	    }
//	    return router.Open(navstack.Push(DetailKey{ID: selected.ID})).
//	        WithResume(ListResume{SelectedIndex: selected.Index}), nil
//	})
//
//	r.Register("detail", func(in navstack.Instruction) (router.Outcome, error) {
//	    detailScreen(in.Key().(DetailKey))
//	    return router.Back(), nil
//	})
//
//	err := r.Run(navstack.Push(ListKey{}))
//
// # Resume State
//
// A screen that opens another can attach resume state (a selected index, a
// scroll position) to its own instruction with Outcome.WithResume. When the
// user comes back, the same instruction is active again and Resume reads the
// state back.
//
// Run returns when the backstack is empty, a screen returns Exit, or the
// container asks its parent to close.
package router
