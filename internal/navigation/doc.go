// Package navigation is the router façade of the navigation engine.
//
// A Router owns the route table, the controller, composite and shell
// factories, the filters and one event loop goroutine. Every activation step
// runs on that goroutine: Navigate only queues work, and a controller that
// suspends in Bind resumes by posting its continuation back onto the loop.
//
//	r := navigation.New(navigation.Options{StartRoute: "/app/home", ErrorRoute: "/app/error"})
//	// configure r.Table(), register creators on r.Controllers() and r.Shells()
//	if err := r.Start(ctx); err != nil {
//		return err
//	}
//	defer r.Stop()
//
//	res, err := r.Boot(history.NewMemory("", 0)).Wait(ctx)
//
// Navigations overlap: a navigation queued while an older one waits for its
// controller's continuation supersedes it, and the older continuation has no
// effect when it eventually fires. Tokens that do not parse or match are sent
// to the error route when one is configured; otherwise the navigation aborts
// and the previous controllers stay active.
package navigation
