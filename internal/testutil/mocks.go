package testutil

import (
	"sync"

	"view-router/internal/common/base"
	"view-router/internal/mvc"
	"view-router/internal/routing"
)

// Fakes builds recording controllers, composites, components and shells that
// share one Journal. Journal entries use "<name>.<call>"; components are named
// "<name>View" and shells "shell:<id>".
type Fakes struct {
	Journal *Journal

	// Control error injection, keyed "<name>.<Method>" (for example
	// "UsersView.Render" or "Users.Bind").
	ErrorOnMethod map[string]error

	mu          sync.Mutex
	hold        map[string]bool
	controllers map[string][]*FakeController
	composites  map[string][]*FakeComposite
	components  map[string][]*FakeComponent
	shells      map[string]*FakeShell
}

// NewFakes creates an empty fake set
func NewFakes() *Fakes {
	return &Fakes{
		Journal:       &Journal{},
		ErrorOnMethod: make(map[string]error),
		hold:          make(map[string]bool),
		controllers:   make(map[string][]*FakeController),
		composites:    make(map[string][]*FakeComposite),
		components:    make(map[string][]*FakeComponent),
		shells:        make(map[string]*FakeShell),
	}
}

func (f *Fakes) errorOn(key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ErrorOnMethod[key]
}

// SetError injects err for key
func (f *Fakes) SetError(key string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ErrorOnMethod[key] = err
}

// HoldBind makes controllers named name keep their loader instead of
// continuing. Use Loader to resume them.
func (f *Fakes) HoldBind(name string, hold bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hold[name] = hold
}

func (f *Fakes) holds(name string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.hold[name]
}

// Controller returns a constructor for fake controllers named name
func (f *Fakes) Controller(name string) func() mvc.Controller {
	return func() mvc.Controller {
		c := &FakeController{Name: name, fakes: f, Params: make(map[string]string)}
		f.mu.Lock()
		f.controllers[name] = append(f.controllers[name], c)
		f.mu.Unlock()
		f.Journal.Record("%s.create", name)
		return c
	}
}

// ControllerComponent returns a component constructor for controllers named name
func (f *Fakes) ControllerComponent(name string) func(mvc.Controller) mvc.Component {
	return func(mvc.Controller) mvc.Component {
		return f.newComponent(name + "View")
	}
}

// Composite returns a constructor for fake composites named name
func (f *Fakes) Composite(name string) func() mvc.Composite {
	return func() mvc.Composite {
		c := &FakeComposite{Name: name, fakes: f, Params: make(map[string]string)}
		f.mu.Lock()
		f.composites[name] = append(f.composites[name], c)
		f.mu.Unlock()
		f.Journal.Record("%s.create", name)
		return c
	}
}

// CompositeComponent returns a component constructor for composites named name
func (f *Fakes) CompositeComponent(name string) func(mvc.Composite) mvc.Component {
	return func(mvc.Composite) mvc.Component {
		return f.newComponent(name + "View")
	}
}

func (f *Fakes) newComponent(name string) *FakeComponent {
	c := &FakeComponent{Name: name, fakes: f, Attached: make(map[string]mvc.Handle)}
	f.mu.Lock()
	f.components[name] = append(f.components[name], c)
	f.mu.Unlock()
	f.Journal.Record("%s.create", name)
	return c
}

// Shell is a shell creator producing one FakeShell per shell id
func (f *Fakes) Shell(env mvc.Env, cfg *routing.ShellConfig) (mvc.Shell, error) {
	name := "shell:" + cfg.ShellID
	if err := f.errorOn(name + ".Create"); err != nil {
		return nil, err
	}
	s := &FakeShell{Name: name, Env: env, fakes: f, Mounted: make(map[string]mvc.Handle)}
	f.mu.Lock()
	f.shells[cfg.ShellID] = s
	f.mu.Unlock()
	f.Journal.Record("%s.create", name)
	return s, nil
}

// Controllers returns every controller constructed under name
func (f *Fakes) Controllers(name string) []*FakeController {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeController(nil), f.controllers[name]...)
}

// LastController returns the most recently constructed controller named name
func (f *Fakes) LastController(name string) *FakeController {
	all := f.Controllers(name)
	if len(all) == 0 {
		return nil
	}
	return all[len(all)-1]
}

// Composites returns every composite constructed under name
func (f *Fakes) Composites(name string) []*FakeComposite {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeComposite(nil), f.composites[name]...)
}

// Components returns every component constructed under name
func (f *Fakes) Components(name string) []*FakeComponent {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]*FakeComponent(nil), f.components[name]...)
}

// ShellFor returns the shell created for id
func (f *Fakes) ShellFor(id string) *FakeShell {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.shells[id]
}

// FakeController is a recording controller
type FakeController struct {
	base.Unit
	Name string

	fakes  *Fakes
	mu     sync.Mutex
	Params map[string]string
	loader mvc.Loader
}

// Init records the injection
func (c *FakeController) Init(env mvc.Env, meta mvc.Meta) {
	c.Unit.Init(env, meta)
	c.fakes.Journal.Record("%s.init", c.Name)
}

// Bind continues, interrupts with an injected error or holds the loader
func (c *FakeController) Bind(loader mvc.Loader) {
	c.fakes.Journal.Record("%s.bind", c.Name)
	if err := c.fakes.errorOn(c.Name + ".Bind"); err != nil {
		loader.Interrupt(err)
		return
	}
	if c.fakes.holds(c.Name) {
		c.mu.Lock()
		c.loader = loader
		c.mu.Unlock()
		return
	}
	loader.Continue()
}

// Loader returns the loader held by Bind
func (c *FakeController) Loader() mvc.Loader {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loader
}

// SetParameter records the parameter
func (c *FakeController) SetParameter(setter, value string) error {
	c.fakes.Journal.Record("%s.param %s=%s", c.Name, setter, value)
	if err := c.fakes.errorOn(c.Name + ".SetParameter"); err != nil {
		return err
	}
	c.mu.Lock()
	c.Params[setter] = value
	c.mu.Unlock()
	return nil
}

// Param returns the last value set for setter
func (c *FakeController) Param(setter string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Params[setter]
}

// Start records the call
func (c *FakeController) Start() {
	c.Unit.Start()
	c.fakes.Journal.Record("%s.start", c.Name)
}

// Activate records the call
func (c *FakeController) Activate() {
	c.Unit.Activate()
	c.fakes.Journal.Record("%s.activate", c.Name)
}

// Deactivate records the call
func (c *FakeController) Deactivate() {
	c.Unit.Deactivate()
	c.fakes.Journal.Record("%s.deactivate", c.Name)
}

// Stop records the call
func (c *FakeController) Stop() {
	c.Unit.Stop()
	c.fakes.Journal.Record("%s.stop", c.Name)
}

// FakeComposite is a recording composite
type FakeComposite struct {
	base.Unit
	Name string

	fakes  *Fakes
	mu     sync.Mutex
	Params map[string]string
}

// Init records the injection
func (c *FakeComposite) Init(env mvc.Env, meta mvc.Meta) {
	c.Unit.Init(env, meta)
	c.fakes.Journal.Record("%s.init", c.Name)
}

// SetParameter records the parameter
func (c *FakeComposite) SetParameter(setter, value string) error {
	c.fakes.Journal.Record("%s.param %s=%s", c.Name, setter, value)
	c.mu.Lock()
	c.Params[setter] = value
	c.mu.Unlock()
	return nil
}

// Param returns the last value set for setter
func (c *FakeComposite) Param(setter string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.Params[setter]
}

// Start records the call
func (c *FakeComposite) Start() {
	c.Unit.Start()
	c.fakes.Journal.Record("%s.start", c.Name)
}

// Activate records the call
func (c *FakeComposite) Activate() {
	c.Unit.Activate()
	c.fakes.Journal.Record("%s.activate", c.Name)
}

// Deactivate records the call
func (c *FakeComposite) Deactivate() {
	c.Unit.Deactivate()
	c.fakes.Journal.Record("%s.deactivate", c.Name)
}

// Stop records the call
func (c *FakeComposite) Stop() {
	c.Unit.Stop()
	c.fakes.Journal.Record("%s.stop", c.Name)
}

// FakeComponent is a recording component that can host composites
type FakeComponent struct {
	Name string

	fakes    *Fakes
	mu       sync.Mutex
	Attached map[string]mvc.Handle
}

// Render records the call and returns "<name>-handle"
func (c *FakeComponent) Render() (mvc.Handle, error) {
	c.fakes.Journal.Record("%s.render", c.Name)
	if err := c.fakes.errorOn(c.Name + ".Render"); err != nil {
		return nil, err
	}
	return c.Name + "-handle", nil
}

// Bind records the call
func (c *FakeComponent) Bind() error {
	c.fakes.Journal.Record("%s.bind", c.Name)
	return c.fakes.errorOn(c.Name + ".Bind")
}

// RemoveHandlers records the call
func (c *FakeComponent) RemoveHandlers() {
	c.fakes.Journal.Record("%s.removeHandlers", c.Name)
}

// AttachComposite records the attached handle
func (c *FakeComponent) AttachComposite(selector string, handle mvc.Handle) error {
	c.fakes.Journal.Record("%s.attach %s", c.Name, selector)
	c.mu.Lock()
	c.Attached[selector] = handle
	c.mu.Unlock()
	return nil
}

// FakeShell is a recording shell
type FakeShell struct {
	Name string
	Env  mvc.Env

	fakes    *Fakes
	mu       sync.Mutex
	Mounted  map[string]mvc.Handle
	attached bool
}

// Attach records the call
func (s *FakeShell) Attach() error {
	s.fakes.Journal.Record("%s.attach", s.Name)
	if err := s.fakes.errorOn(s.Name + ".Attach"); err != nil {
		return err
	}
	s.mu.Lock()
	s.attached = true
	s.mu.Unlock()
	return nil
}

// Detach records the call
func (s *FakeShell) Detach() {
	s.fakes.Journal.Record("%s.detach", s.Name)
	s.mu.Lock()
	s.attached = false
	s.mu.Unlock()
}

// Mount records the mounted handle
func (s *FakeShell) Mount(selector string, handle mvc.Handle) error {
	s.fakes.Journal.Record("%s.mount %s", s.Name, selector)
	if err := s.fakes.errorOn(s.Name + ".Mount"); err != nil {
		return err
	}
	s.mu.Lock()
	s.Mounted[selector] = handle
	s.mu.Unlock()
	return nil
}

// IsAttached returns whether the shell is attached
func (s *FakeShell) IsAttached() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.attached
}

// MountedAt returns the handle mounted into selector
func (s *FakeShell) MountedAt(selector string) mvc.Handle {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Mounted[selector]
}
