package navigation

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"view-router/internal/common/errors"
	"view-router/internal/common/logging"
	"view-router/internal/factory"
	"view-router/internal/filter"
	"view-router/internal/mvc"
	"view-router/internal/pipeline"
	"view-router/internal/routing"
	"view-router/internal/tracker"
)

// History supplies the token to boot from and records settled tokens.
type History interface {
	CurrentToken() string
	Push(token string)
}

// Options configures a Router.
type Options struct {
	Dialect routing.Dialect
	// StartRoute is navigated to by Boot when the history has no token.
	StartRoute string
	// ErrorRoute absorbs tokens that do not parse or match. Without it
	// such tokens abort with a fatal error.
	ErrorRoute     string
	MaxRedirects   int
	SkipValidation bool

	Context  interface{}
	EventBus interface{}

	Logger  logging.Logger
	Tracker tracker.Tracker
	// OnFatal is called on the loop goroutine for every navigation that
	// aborted with a fatal error.
	OnFatal func(token string, err error)
}

// ActiveController describes the controller occupying one slot.
type ActiveController struct {
	Shell      string `json:"shell"`
	Selector   string `json:"selector"`
	Controller string `json:"controller"`
	Route      string `json:"route"`
	Cacheable  bool   `json:"cacheable"`
}

// Router is the navigation engine. It owns the route table, the factories
// and the event loop every activation runs on.
type Router struct {
	opts        Options
	logger      logging.Logger
	table       *routing.Table
	parser      *routing.Parser
	controllers *factory.ControllerFactory
	composites  *factory.CompositeFactory
	shells      *factory.ShellFactory

	mu       sync.Mutex
	running  bool
	filters  []filter.Filter
	loop     *loop
	pipeline *pipeline.Pipeline
	history  History
	inflight map[string]*Navigation
	current  *routing.NavigationToken
	lastErr  *RoutingError
}

// New creates a router with an empty table.
func New(opts Options) *Router {
	if opts.Logger == nil {
		opts.Logger = logging.NewNop()
	}
	if opts.MaxRedirects <= 0 {
		opts.MaxRedirects = pipeline.DefaultMaxRedirects
	}

	r := &Router{
		opts:     opts,
		logger:   opts.Logger.WithFields(logging.String("component", "router")),
		table:    routing.NewTable(),
		parser:   routing.NewParser(opts.Dialect),
		inflight: make(map[string]*Navigation),
	}

	env := mvc.Env{Context: opts.Context, EventBus: opts.EventBus, Router: r}
	r.controllers = factory.NewControllerFactory(env, opts.Logger)
	r.composites = factory.NewCompositeFactory(env, opts.Logger)
	r.shells = factory.NewShellFactory(env, opts.Logger)
	return r
}

// Table returns the route table to configure before Start.
func (r *Router) Table() *routing.Table {
	return r.table
}

// Parser returns the token parser of the configured dialect.
func (r *Router) Parser() *routing.Parser {
	return r.parser
}

// Controllers returns the factory controller types are registered with.
func (r *Router) Controllers() *factory.ControllerFactory {
	return r.controllers
}

// Composites returns the factory composite types are registered with.
func (r *Router) Composites() *factory.CompositeFactory {
	return r.composites
}

// Shells returns the factory shell types are registered with.
func (r *Router) Shells() *factory.ShellFactory {
	return r.shells
}

// AddFilter appends a filter. Filters run in the order they were added.
func (r *Router) AddFilter(f filter.Filter) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return errors.ConfigError("filters cannot be added to a running router")
	}
	r.filters = append(r.filters, f)
	return nil
}

// Start validates the configuration and starts the event loop.
func (r *Router) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return ErrAlreadyRunning
	}
	if err := r.validate(); err != nil {
		return err
	}

	l := newLoop(r.logger)
	p, err := pipeline.New(pipeline.Options{
		Table:        r.table,
		Resolve:      r.resolve,
		Filters:      append([]filter.Filter(nil), r.filters...),
		Controllers:  r.controllers,
		Composites:   r.composites,
		Shells:       r.shells,
		Scheduler:    l,
		MaxRedirects: r.opts.MaxRedirects,
		Logger:       r.opts.Logger,
	})
	if err != nil {
		return err
	}

	r.loop, r.pipeline = l, p
	l.start()
	r.running = true

	r.logger.Info("router started",
		logging.String("dialect", r.parser.Dialect().String()),
		logging.Int("routes", len(r.table.Routes())),
		logging.Int("filters", len(r.filters)))
	return nil
}

// Stop stops the event loop. Navigations still in flight complete with
// ErrStopped.
func (r *Router) Stop() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return ErrNotRunning
	}
	r.running = false
	l := r.loop
	r.mu.Unlock()

	dropped := l.stop()

	r.mu.Lock()
	pending := r.inflight
	r.inflight = make(map[string]*Navigation)
	r.mu.Unlock()

	for _, nav := range pending {
		nav.complete(&Result{ID: nav.ID, Requested: nav.Token, State: pipeline.StateAborted, Err: ErrStopped})
	}

	r.logger.Info("router stopped",
		logging.Int("dropped", dropped),
		logging.Int("aborted", len(pending)))
	return nil
}

// IsRunning reports whether the event loop runs.
func (r *Router) IsRunning() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.running
}

// validate checks the table and that every type it names has a creator.
// Called with r.mu held.
func (r *Router) validate() error {
	if !r.opts.SkipValidation {
		if err := r.table.Validate(); err != nil {
			return err
		}
	}

	for _, shell := range r.table.Shells() {
		if !r.shells.IsRegistered(shell.ShellType) {
			return errors.UnknownShellError(shell.ShellID).WithContext("type", shell.ShellType.String())
		}
	}
	for _, route := range r.table.Routes() {
		if !r.controllers.IsRegistered(route.Controller) {
			return errors.UnknownControllerError(route.Controller.String()).
				WithContext("route", "/"+route.ShellID+route.Pattern())
		}
		for _, ref := range r.table.CompositesFor(route.Controller) {
			if !r.composites.IsRegistered(ref.Composite) {
				return errors.UnknownControllerError(ref.Composite.String()).
					WithContext("provider", ref.Provider.String())
			}
		}
	}

	for _, check := range []struct{ name, token string }{
		{"start", r.opts.StartRoute},
		{"error", r.opts.ErrorRoute},
	} {
		if check.token == "" {
			continue
		}
		m, err := r.match(check.token)
		if err == nil {
			_, err = r.table.Shell(m.Route.ShellID)
		}
		if err != nil {
			return errors.ConfigError(fmt.Sprintf("%s route %q does not resolve: %v", check.name, check.token, err))
		}
	}
	return nil
}

// Navigate queues navigation to token and returns its handle. Navigations
// run in the order they were queued; a newer one supersedes an older one
// still waiting for its controller.
func (r *Router) Navigate(token string) *Navigation {
	nav := newNavigation(uuid.NewString(), token)

	r.mu.Lock()
	l, p, running := r.loop, r.pipeline, r.running
	if running {
		r.inflight[nav.ID] = nav
	}
	r.mu.Unlock()

	if !running || !l.Post(func() { r.begin(p, nav) }) {
		r.forget(nav)
		nav.complete(&Result{ID: nav.ID, Requested: token, State: pipeline.StateAborted, Err: ErrNotRunning})
	}
	return nav
}

// Route formats a token for route ("/shell/pattern") with params in the
// router's dialect and navigates to it.
func (r *Router) Route(route string, params ...string) (*Navigation, error) {
	shell, pattern := splitRoute(route)
	if shell == "" {
		return nil, errors.ValidationError(fmt.Sprintf("route %q names no shell", route))
	}
	raw, err := r.parser.Format(shell, pattern, params...)
	if err != nil {
		return nil, err
	}
	return r.Navigate(raw), nil
}

// Goto implements mvc.Navigator.
func (r *Router) Goto(token string) {
	r.Navigate(token)
}

// GotoRoute implements mvc.Navigator.
func (r *Router) GotoRoute(route string, params ...string) error {
	_, err := r.Route(route, params...)
	return err
}

// Boot remembers h and navigates to its current token, or to the start
// route when the history is empty.
func (r *Router) Boot(h History) *Navigation {
	r.mu.Lock()
	r.history = h
	r.mu.Unlock()

	token := ""
	if h != nil {
		token = h.CurrentToken()
	}
	if token == "" {
		token = r.opts.StartRoute
	}
	if token == "" {
		nav := newNavigation(uuid.NewString(), "")
		nav.complete(&Result{ID: nav.ID, State: pipeline.StateAborted, Err: errors.ConfigError("no history token and no start route")})
		return nav
	}

	r.logger.Info("booting", logging.String("token", token))
	return r.Navigate(token)
}

// Sync waits until every navigation and continuation queued so far ran.
func (r *Router) Sync(ctx context.Context) error {
	r.mu.Lock()
	l, running := r.loop, r.running
	r.mu.Unlock()

	if !running {
		return ErrNotRunning
	}
	return l.sync(ctx)
}

// CurrentRoute returns the token of the last settled navigation.
func (r *Router) CurrentRoute() (routing.NavigationToken, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return routing.NavigationToken{}, false
	}
	return *r.current, true
}

// LastRoutingError returns the last token absorbed by the error route.
func (r *Router) LastRoutingError() *RoutingError {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}

// Active lists the controllers occupying the slots of the current shell.
func (r *Router) Active() []ActiveController {
	r.mu.Lock()
	p := r.pipeline
	r.mu.Unlock()

	if p == nil {
		return nil
	}

	reg := p.Registry()
	var out []ActiveController
	for _, slot := range reg.Slots() {
		inst, ok := reg.Get(slot)
		if !ok {
			continue
		}
		out = append(out, ActiveController{
			Shell:      slot.Shell,
			Selector:   slot.Selector,
			Controller: inst.Type.String(),
			Route:      inst.Meta.Route,
			Cacheable:  inst.Cacheable,
		})
	}
	return out
}

// Metrics returns the activation counters.
func (r *Router) Metrics() pipeline.Metrics {
	r.mu.Lock()
	p := r.pipeline
	r.mu.Unlock()

	if p == nil {
		return pipeline.Metrics{}
	}
	return p.Metrics()
}

func (r *Router) begin(p *pipeline.Pipeline, nav *Navigation) {
	p.Begin(nav.ID, nav.Token, func(a *pipeline.Activation) {
		r.finish(nav, a)
	})
}

func (r *Router) finish(nav *Navigation, a *pipeline.Activation) {
	res := resultOf(a)

	if a.Err == nil {
		tok := a.Token
		absorbed := r.isErrorRoute(a.Route)
		r.mu.Lock()
		r.current = &tok
		if !absorbed {
			r.lastErr = nil
		}
		h := r.history
		r.mu.Unlock()

		if h != nil {
			h.Push(res.Final)
		}
		r.track(res)
	} else if errors.IsFatal(a.Err) && r.opts.OnFatal != nil {
		r.opts.OnFatal(nav.Token, a.Err)
	}

	r.forget(nav)
	nav.complete(res)
}

func (r *Router) forget(nav *Navigation) {
	r.mu.Lock()
	delete(r.inflight, nav.ID)
	r.mu.Unlock()
}

func (r *Router) track(res *Result) {
	if r.opts.Tracker == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := r.opts.Tracker.Track(ctx, tracker.Event{
		NavigationID: res.ID,
		Token:        res.Final,
		Route:        res.Route,
		Controller:   res.Controller,
		Cached:       res.Cached,
		Redirects:    len(res.Redirects),
		Duration:     res.Duration,
	})
	if err != nil {
		r.logger.Warn("failed to track navigation",
			logging.String(string(logging.NavigationIDKey), res.ID),
			logging.Err(err))
	}
}

func (r *Router) match(raw string) (*routing.Match, error) {
	tok, err := r.parser.Parse(raw)
	if err != nil {
		return nil, err
	}
	return r.table.Match(tok)
}

// isErrorRoute reports whether route is the route ErrorRoute resolves to.
func (r *Router) isErrorRoute(route *routing.RouteConfig) bool {
	if r.opts.ErrorRoute == "" || route == nil {
		return false
	}
	em, err := r.match(r.opts.ErrorRoute)
	if err != nil {
		return false
	}
	return em.Route.ShellID == route.ShellID && em.Route.RouteID == route.RouteID
}

// resolve is the pipeline's resolver. Tokens that do not parse or match are
// absorbed by the error route when one is configured.
func (r *Router) resolve(raw string) (*routing.Match, error) {
	m, err := r.match(raw)
	if err == nil {
		return m, nil
	}
	if r.opts.ErrorRoute == "" ||
		!(errors.IsType(err, errors.ErrTypeRouteNotFound) || errors.IsType(err, errors.ErrTypeMalformedToken)) {
		return nil, err
	}

	em, eerr := r.match(r.opts.ErrorRoute)
	if eerr != nil {
		r.logger.Error("error route does not resolve", eerr, logging.String("error_route", r.opts.ErrorRoute))
		return nil, err
	}

	r.mu.Lock()
	r.lastErr = &RoutingError{Token: raw, Err: err}
	r.mu.Unlock()

	r.logger.Info("token absorbed by error route",
		logging.String("token", raw),
		logging.String("error_route", r.opts.ErrorRoute),
		logging.Err(err))
	return em, nil
}

// splitRoute splits "/shell/pattern" into its shell and pattern.
func splitRoute(route string) (string, string) {
	s := strings.TrimPrefix(strings.TrimSpace(route), "/")
	shell, rest, found := strings.Cut(s, "/")
	if !found {
		return shell, "/"
	}
	return shell, "/" + rest
}
