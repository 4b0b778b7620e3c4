// Package mvc defines the capabilities the navigation engine sequences:
// controllers, their components, composites and shells.
//
// The engine never renders anything itself. It creates units through
// registered creators, calls Bind, Render and the lifecycle hooks in a fixed
// order and hands rendered handles to the shell.
package mvc

import "view-router/internal/routing"

// Handle is the displayable result of Component.Render. It is opaque to the
// engine and passed unchanged to Shell.Mount or CompositeHost.AttachComposite.
type Handle interface{}

// Navigator is the part of the router that controllers may drive.
type Navigator interface {
	// Goto queues navigation to a raw token.
	Goto(token string)
	// GotoRoute formats a token for the route pattern and queues navigation.
	GotoRoute(route string, params ...string) error
}

// Env carries the shared application objects injected into every unit. The
// same Env value is handed to every unit of one router.
type Env struct {
	Context  interface{}
	EventBus interface{}
	Router   Navigator
}

// Meta describes where a unit was activated.
type Meta struct {
	Type     routing.TypeID
	Shell    string
	Route    string
	Selector string
}

// Lifecycle hooks. Start runs once after the first activation of an
// instance, Activate on every activation, Deactivate when the instance leaves
// its slot and Stop before a non-cached instance is discarded.
type Lifecycle interface {
	Start()
	Activate()
	Deactivate()
	Stop()
}

// Loader is the single-shot continuation handed to Controller.Bind. Exactly
// one of Continue or Interrupt takes effect; later calls are ignored.
type Loader interface {
	Continue()
	Interrupt(err error)
}

// Controller is a routed, non-visual unit owning one component.
type Controller interface {
	Lifecycle

	// Init injects the environment and activation metadata once, right
	// after construction.
	Init(env Env, meta Meta)
	// Bind may suspend activation. It must eventually call loader.Continue
	// or loader.Interrupt, from any goroutine.
	Bind(loader Loader)
	// SetParameter receives one positional route parameter.
	SetParameter(setter, value string) error
}

// Composite is a reusable unit embedded into a controller's component.
type Composite interface {
	Lifecycle

	Init(env Env, meta Meta)
	SetParameter(setter, value string) error
}

// Component is the view of a controller or composite.
type Component interface {
	// Render produces the displayable handle. A nil handle is an error.
	Render() (Handle, error)
	// Bind wires event handlers after Render.
	Bind() error
	// RemoveHandlers releases what Bind wired.
	RemoveHandlers()
}

// CompositeHost is implemented by components that embed composites. The
// engine calls AttachComposite before Render.
type CompositeHost interface {
	AttachComposite(selector string, handle Handle) error
}

// Shell is a top-level layout owning named selector slots.
type Shell interface {
	// Attach makes the shell the visible layout.
	Attach() error
	// Detach removes the shell when another shell becomes current.
	Detach()
	// Mount places a rendered handle into a selector slot.
	Mount(selector string, handle Handle) error
}
