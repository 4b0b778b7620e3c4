// Package views provides headless controllers, composites and shells that
// render into plain data. The server binary registers them for every type
// its manifest names, so a manifest can be served without compiled views.
package views

import (
	"fmt"
	"sort"
	"sync"

	"view-router/internal/common/base"
	"view-router/internal/common/errors"
	"view-router/internal/mvc"
)

// View is the rendered handle of a page or part. Parameters delivered after
// render update it in place.
type View struct {
	mu       sync.RWMutex
	typ      string
	route    string
	params   map[string]string
	children map[string]*View
}

func newView(meta mvc.Meta) *View {
	return &View{
		typ:      meta.Type.String(),
		route:    meta.Route,
		params:   make(map[string]string),
		children: make(map[string]*View),
	}
}

func (v *View) set(name, value string) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.params[name] = value
}

func (v *View) attach(selector string, child *View) {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.children[selector] = child
}

// Snapshot is a point-in-time copy of a View.
type Snapshot struct {
	Type       string              `json:"type"`
	Route      string              `json:"route,omitempty"`
	Parameters map[string]string   `json:"parameters,omitempty"`
	Composites map[string]Snapshot `json:"composites,omitempty"`
}

// Snapshot copies the view and its attached composites.
func (v *View) Snapshot() Snapshot {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s := Snapshot{Type: v.typ, Route: v.route}
	if len(v.params) > 0 {
		s.Parameters = make(map[string]string, len(v.params))
		for k, val := range v.params {
			s.Parameters[k] = val
		}
	}
	if len(v.children) > 0 {
		s.Composites = make(map[string]Snapshot, len(v.children))
		for sel, child := range v.children {
			s.Composites[sel] = child.Snapshot()
		}
	}
	return s
}

// String renders the view as "type(k=v, ...)".
func (v *View) String() string {
	s := v.Snapshot()
	keys := make([]string, 0, len(s.Parameters))
	for k := range s.Parameters {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := s.Type + "("
	for i, k := range keys {
		if i > 0 {
			out += ", "
		}
		out += fmt.Sprintf("%s=%s", k, s.Parameters[k])
	}
	return out + ")"
}

// unit is the controller and composite implementation. It accepts every
// parameter name.
type unit struct {
	base.Unit
	view *View
}

func (u *unit) Init(env mvc.Env, meta mvc.Meta) {
	u.Unit.Init(env, meta)
	u.view = newView(meta)
}

func (u *unit) SetParameter(name, value string) error {
	if u.view == nil {
		return errors.InternalError(fmt.Sprintf("parameter %q set before init", name), nil)
	}
	u.view.set(name, value)
	return nil
}

// Page is the headless controller.
type Page struct {
	unit
}

// Part is the headless composite.
type Part struct {
	unit
}

// component renders its unit's view and hosts composites.
type component struct {
	base.Component
	view *View
}

func (c *component) Render() (mvc.Handle, error) {
	if c.view == nil {
		return nil, nil
	}
	return c.view, nil
}

func (c *component) AttachComposite(selector string, handle mvc.Handle) error {
	child, ok := handle.(*View)
	if !ok || c.view == nil {
		return errors.ValidationError(fmt.Sprintf("cannot attach %T at %q", handle, selector))
	}
	c.view.attach(selector, child)
	return nil
}

var (
	_ mvc.Controller    = (*Page)(nil)
	_ mvc.Composite     = (*Part)(nil)
	_ mvc.CompositeHost = (*component)(nil)
)

// NewPage returns a new headless controller.
func NewPage() mvc.Controller {
	return &Page{}
}

// PageComponent returns the component of a Page.
func PageComponent(c mvc.Controller) mvc.Component {
	page, _ := c.(*Page)
	if page == nil {
		return &component{}
	}
	return &component{view: page.view}
}

// NewPart returns a new headless composite.
func NewPart() mvc.Composite {
	return &Part{}
}

// PartComponent returns the component of a Part.
func PartComponent(c mvc.Composite) mvc.Component {
	part, _ := c.(*Part)
	if part == nil {
		return &component{}
	}
	return &component{view: part.view}
}
