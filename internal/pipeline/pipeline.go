package pipeline

import (
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"view-router/internal/common/errors"
	"view-router/internal/common/logging"
	"view-router/internal/factory"
	"view-router/internal/filter"
	"view-router/internal/mvc"
	"view-router/internal/routing"
)

// DefaultMaxRedirects caps consecutive filter redirects of one navigation.
const DefaultMaxRedirects = 8

// Scheduler runs functions on the goroutine that owns the pipeline. Post
// returns false when the function was dropped because the owner stopped.
type Scheduler interface {
	Post(fn func()) bool
}

// Resolver parses a raw token and matches it against the route table.
type Resolver func(raw string) (*routing.Match, error)

// Options configures a Pipeline.
type Options struct {
	Table        *routing.Table
	Resolve      Resolver
	Filters      []filter.Filter
	Controllers  *factory.ControllerFactory
	Composites   *factory.CompositeFactory
	Shells       *factory.ShellFactory
	Scheduler    Scheduler
	MaxRedirects int
	Logger       logging.Logger
}

// Pipeline runs activations. Every method except Registry, Metrics and
// Generation must be called from the scheduler's goroutine.
type Pipeline struct {
	opts       Options
	logger     logging.Logger
	registry   *Registry
	metrics    metricsRecorder
	generation atomic.Uint64

	pending *Activation
	shellID string
	shell   mvc.Shell
}

// New creates a pipeline.
func New(opts Options) (*Pipeline, error) {
	switch {
	case opts.Table == nil:
		return nil, errors.ConfigError("pipeline requires a route table")
	case opts.Resolve == nil:
		return nil, errors.ConfigError("pipeline requires a resolver")
	case opts.Controllers == nil || opts.Composites == nil || opts.Shells == nil:
		return nil, errors.ConfigError("pipeline requires controller, composite and shell factories")
	case opts.Scheduler == nil:
		return nil, errors.ConfigError("pipeline requires a scheduler")
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = DefaultMaxRedirects
	}
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}

	return &Pipeline{
		opts:     opts,
		logger:   opts.Logger.WithFields(logging.String("component", "pipeline")),
		registry: newRegistry(),
	}, nil
}

// Registry returns the active controller registry.
func (p *Pipeline) Registry() *Registry {
	return p.registry
}

// Metrics returns a snapshot of the activation counters.
func (p *Pipeline) Metrics() Metrics {
	return p.metrics.snapshot()
}

// Generation returns the generation of the most recent activation.
func (p *Pipeline) Generation() uint64 {
	return p.generation.Load()
}

// Suspended reports whether an activation waits for its controller's bind
// continuation.
func (p *Pipeline) Suspended() bool {
	return p.pending != nil
}

// CurrentShell returns the id of the attached shell.
func (p *Pipeline) CurrentShell() string {
	return p.shellID
}

// Begin starts an activation for raw. A suspended older activation is
// completed with a superseded error first; its continuation becomes a no-op.
// done is called once when the activation reaches a terminal state, which
// may happen before Begin returns.
func (p *Pipeline) Begin(id, raw string, done func(*Activation)) *Activation {
	a := &Activation{
		ID:         id,
		Generation: p.generation.Add(1),
		Requested:  raw,
		StartedAt:  time.Now(),
		done:       done,
	}
	p.metrics.begin()

	if prev := p.pending; prev != nil {
		p.pending = nil
		p.finish(prev, errors.SupersededError(prev.Generation))
	}

	p.log(a).Debug("activation started", logging.String("token", raw))

	if err := p.prepare(a, raw); err != nil {
		p.finish(a, err)
		return a
	}

	inst := a.Instance
	if inst.Cached {
		p.complete(a)
		return a
	}

	a.enter(StateControllerBinding)
	p.pending = a
	inst.Controller.Bind(&continuation{p: p, a: a, source: inst.Type.String()})
	return a
}

// prepare runs filter evaluation, shell resolution and controller resolution.
// A filter redirect restarts from the new token.
func (p *Pipeline) prepare(a *Activation, raw string) error {
	for {
		match, err := p.opts.Resolve(raw)
		if err != nil {
			return err
		}
		a.Token = match.Token
		a.Route = match.Route

		a.enter(StateFilterEvaluation)
		redirect, err := p.runFilters(a)
		if err != nil {
			return err
		}
		if redirect == "" {
			break
		}

		a.Redirects = append(a.Redirects, redirect)
		p.metrics.redirect()
		p.log(a).Debug("filter redirect", logging.String("from", raw), logging.String("to", redirect))
		if len(a.Redirects) > p.opts.MaxRedirects {
			return errors.RedirectLoopError(append([]string{a.Requested}, a.Redirects...))
		}
		raw = redirect
	}

	a.enter(StateShellResolution)
	shellCfg, err := p.opts.Table.Shell(a.Route.ShellID)
	if err != nil {
		return err
	}
	shell, err := p.opts.Shells.Resolve(shellCfg)
	if err != nil {
		return err
	}
	a.shellCfg = shellCfg
	a.shell = shell

	a.enter(StateControllerResolution)
	inst, err := p.opts.Controllers.Resolve(a.Route.Controller, a.Route)
	if err != nil {
		return err
	}
	a.Instance = inst
	return nil
}

func (p *Pipeline) runFilters(a *Activation) (string, error) {
	for _, f := range p.opts.Filters {
		decision, err := f.Execute(a.Token)
		if err != nil {
			return "", errors.Interception(filter.NameOf(f), err)
		}
		if decision.IsRedirect() {
			return decision.Redirect(), nil
		}
	}
	return "", nil
}

// resume continues a suspended activation. Continuations of any activation
// other than the current pending one are ignored.
func (p *Pipeline) resume(a *Activation, err error) {
	if p.pending != a || a.Generation != p.generation.Load() {
		p.log(a).Debug("stale continuation ignored", logging.Uint64("current", p.generation.Load()))
		return
	}
	p.pending = nil

	if err != nil {
		p.finish(a, err)
		return
	}
	p.complete(a)
}

// complete runs component creation through parameter delivery and settles.
// Cached instances go straight to parameter delivery.
func (p *Pipeline) complete(a *Activation) {
	if !a.Instance.Cached {
		if err := p.build(a); err != nil {
			p.discard(a)
			p.finish(a, err)
			return
		}
	}
	if err := p.applyParameters(a); err != nil {
		p.discard(a)
		p.finish(a, err)
		return
	}
	p.settle(a)
}

// discard releases a freshly built instance of an activation that aborted
// before it was mounted. Cached instances stay with the cache.
func (p *Pipeline) discard(a *Activation) {
	if a.Instance == nil || a.Instance.Cached {
		return
	}
	p.release(a.Instance)
	p.logger.Debug("controller discarded", logging.String("type", a.Instance.Type.String()))
}

func (p *Pipeline) build(a *Activation) error {
	inst := a.Instance
	log := p.log(a)

	a.enter(StateComponentCreation)
	component, err := p.opts.Controllers.NewComponent(inst)
	if err != nil {
		return err
	}
	inst.Component = component

	a.enter(StateCompositeAttachment)
	if err := p.attachComposites(a, component); err != nil {
		return err
	}

	a.enter(StateRender)
	handle, err := render(inst.Type, component)
	if err != nil {
		return err
	}
	inst.Handle = handle

	a.enter(StateComponentBinding)
	if err := component.Bind(); err != nil {
		return errors.InternalError(fmt.Sprintf("bind component of %s", inst.Type), err)
	}

	log.Debug("component rendered", logging.String("type", inst.Type.String()), logging.Int("composites", len(inst.Composites)))
	return nil
}

func (p *Pipeline) attachComposites(a *Activation, component mvc.Component) error {
	inst := a.Instance
	refs := p.opts.Table.CompositesFor(inst.Type)
	if len(refs) == 0 {
		return nil
	}

	host, ok := component.(mvc.CompositeHost)
	if !ok {
		return errors.ConfigError(fmt.Sprintf("component of %s cannot host composites", inst.Type))
	}

	inst.Composites = nil
	for _, ref := range refs {
		if !ref.ShouldLoad(a.Token) {
			continue
		}

		ci, err := p.opts.Composites.Resolve(ref, inst.Meta)
		if err != nil {
			return err
		}
		if !ci.Cached {
			cc, err := p.opts.Composites.NewComponent(ci)
			if err != nil {
				return err
			}
			ci.Component = cc
			if ci.Handle, err = render(ci.Type, cc); err != nil {
				return err
			}
			if err := cc.Bind(); err != nil {
				return errors.InternalError(fmt.Sprintf("bind component of %s", ci.Type), err)
			}
		}

		if err := host.AttachComposite(ref.Selector, ci.Handle); err != nil {
			return errors.InternalError(fmt.Sprintf("attach %s to %s", ci.Type, inst.Type), err)
		}
		inst.Composites = append(inst.Composites, ci)
	}
	return nil
}

func render(id routing.TypeID, component mvc.Component) (mvc.Handle, error) {
	handle, err := component.Render()
	if err != nil {
		return nil, errors.InternalError(fmt.Sprintf("render %s", id), err)
	}
	if handle == nil {
		return nil, errors.InternalError(fmt.Sprintf("render %s produced no handle", id), nil)
	}
	return handle, nil
}

// applyParameters delivers the token's parameter values in declared acceptor
// order. Acceptors whose position has no value are skipped.
func (p *Pipeline) applyParameters(a *Activation) error {
	values := a.Token.ParameterValues
	inst := a.Instance

	if err := deliver(inst.Type, inst.Controller, a.Route.ParameterAcceptors, values); err != nil {
		return err
	}
	for _, ci := range inst.Composites {
		if err := deliver(ci.Type, ci.Composite, ci.Acceptors, values); err != nil {
			return err
		}
	}
	return nil
}

type parameterSink interface {
	SetParameter(setter, value string) error
}

func deliver(id routing.TypeID, sink parameterSink, acceptors []routing.ParameterAcceptor, values []string) error {
	for _, acc := range acceptors {
		if acc.Index < 0 || acc.Index >= len(values) {
			continue
		}
		if err := sink.SetParameter(acc.Setter, values[acc.Index]); err != nil {
			return errors.Interception(id.String(), err)
		}
	}
	return nil
}

// settle mounts the new controller, supersedes the previous occupant of its
// slot (every slot when the shell changes) and records it in the registry.
func (p *Pipeline) settle(a *Activation) {
	inst := a.Instance
	slot := Slot{Shell: a.shellCfg.ShellID, Selector: a.Route.Selector}
	switching := p.shellID != slot.Shell

	if switching {
		if err := a.shell.Attach(); err != nil {
			p.discard(a)
			p.finish(a, errors.InternalError("attach shell "+slot.Shell, err))
			return
		}
	}
	if err := a.shell.Mount(slot.Selector, inst.Handle); err != nil {
		if switching {
			a.shell.Detach()
		}
		p.discard(a)
		p.finish(a, errors.InternalError(fmt.Sprintf("mount %s into %s", inst.Type, slot.Selector), err))
		return
	}

	if switching {
		for _, s := range p.registry.inShell(p.shellID) {
			if old, ok := p.registry.Get(s); ok {
				p.deactivate(old)
			}
			p.registry.remove(s)
		}
		if p.shell != nil {
			p.shell.Detach()
		}
		p.shellID, p.shell = slot.Shell, a.shell
	} else if old, ok := p.registry.Get(slot); ok && !old.Same(inst) {
		p.deactivate(old)
	}
	p.registry.set(slot, inst)

	if !inst.Started {
		inst.Controller.Start()
		inst.Started = true
	}
	for _, ci := range inst.Composites {
		if !ci.Started {
			ci.Composite.Start()
			ci.Started = true
		}
	}
	inst.Controller.Activate()
	for _, ci := range inst.Composites {
		ci.Composite.Activate()
	}

	if inst.Cacheable {
		p.opts.Controllers.Store(inst)
	}
	for _, ci := range inst.Composites {
		if ci.Cacheable {
			p.opts.Composites.Store(ci)
		}
	}

	a.enter(StateSettled)
	p.finish(a, nil)
}

// deactivate takes a controller out of its slot. Controllers the cache no
// longer holds release their handlers and stop, along with their composites
// that are not cached either.
func (p *Pipeline) deactivate(old *factory.ControllerInstance) {
	old.Controller.Deactivate()
	for _, ci := range old.Composites {
		ci.Composite.Deactivate()
	}
	if p.retained(old) {
		p.logger.Debug("controller deactivated", logging.String("type", old.Type.String()))
		return
	}

	p.release(old)
	p.logger.Debug("controller stopped", logging.String("type", old.Type.String()))
}

func (p *Pipeline) release(inst *factory.ControllerInstance) {
	if inst.Component != nil {
		inst.Component.RemoveHandlers()
	}
	inst.Controller.Stop()
	for _, ci := range inst.Composites {
		if p.compositeRetained(ci) {
			continue
		}
		if ci.Component != nil {
			ci.Component.RemoveHandlers()
		}
		ci.Composite.Stop()
	}
}

// retained reports whether inst is the instance the controller cache holds.
func (p *Pipeline) retained(inst *factory.ControllerInstance) bool {
	if !inst.Cacheable {
		return false
	}
	stored, ok := p.opts.Controllers.Lookup(inst.Type)
	return ok && stored.Same(inst)
}

func (p *Pipeline) compositeRetained(ci *factory.CompositeInstance) bool {
	if !ci.Cacheable {
		return false
	}
	stored, ok := p.opts.Composites.Lookup(ci.Type)
	return ok && stored.Same(ci)
}

func (p *Pipeline) finish(a *Activation, err error) {
	if a.finished {
		return
	}
	a.finished = true

	if err != nil {
		a.Err = err
		a.enter(StateAborted)
	}
	a.Duration = time.Since(a.StartedAt)
	a.Trace = append(a.Trace, Step{State: a.State})

	superseded := errors.IsType(err, errors.ErrTypeSuperseded)
	p.metrics.finish(a, superseded)

	log := p.log(a)
	switch {
	case err == nil:
		route := ""
		if a.Route != nil {
			route = a.Route.RouteID
		}
		log.Info("navigation settled",
			logging.String("token", a.Final()),
			logging.String("route", route),
			logging.String("controller", a.Instance.Type.String()),
			logging.Bool("cached", a.Cached()),
			logging.Duration("duration", a.Duration))
	case superseded:
		log.Debug("navigation superseded", logging.String("token", a.Requested))
	case errors.IsFatal(err):
		log.Error("navigation failed", err, logging.String("token", a.Requested))
	default:
		log.Info("navigation intercepted", logging.String("token", a.Requested), logging.Err(err))
	}

	if a.done != nil {
		a.done(a)
	}
}

func (p *Pipeline) log(a *Activation) logging.Logger {
	return p.logger.WithFields(
		logging.String(string(logging.NavigationIDKey), a.ID),
		logging.Uint64("generation", a.Generation))
}

// continuation is the single-shot loader handed to Controller.Bind. The
// resume always runs on the scheduler's goroutine.
type continuation struct {
	once   sync.Once
	p      *Pipeline
	a      *Activation
	source string
}

func (c *continuation) Continue() {
	c.once.Do(func() {
		c.post(nil)
	})
}

func (c *continuation) Interrupt(err error) {
	c.once.Do(func() {
		if err == nil {
			err = errors.RoutingInterceptionError(c.source, "activation interrupted", nil)
		}
		c.post(errors.Interception(c.source, err))
	})
}

func (c *continuation) post(err error) {
	if !c.p.opts.Scheduler.Post(func() { c.p.resume(c.a, err) }) {
		c.p.logger.Debug("continuation dropped, scheduler stopped", logging.String("source", c.source))
	}
}
