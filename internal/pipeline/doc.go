// Package pipeline implements the activation state machine that turns a
// matched route into a rendered, active controller.
//
// # States
//
//	Idle → FilterEvaluation → ShellResolution → ControllerResolution →
//	ControllerBinding (async) → ComponentCreation → CompositeAttachment →
//	Render → ComponentBinding → Settled
//
// Aborted is reachable from every step. A filter redirect restarts the
// machine from FilterEvaluation with the new token; more than MaxRedirects
// consecutive redirects abort with a redirect_loop error.
//
// # Suspension
//
// ControllerBinding is the only suspension point. The controller receives a
// single-shot mvc.Loader; calling it posts the resume onto the Scheduler, so
// every step runs on the scheduler's goroutine. Each activation carries a
// generation number. Beginning a new activation completes a suspended one
// with a superseded error, and a continuation whose generation is no longer
// current does nothing.
//
// # Ordering
//
// For one activation, composites attach before render, render precedes
// component binding and component binding precedes parameter delivery.
// Cached controllers skip binding, component creation, composite attachment
// and render; parameters are delivered again.
//
// Errors before Settled leave the previously active controllers untouched.
package pipeline
