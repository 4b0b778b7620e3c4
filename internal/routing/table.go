package routing

import (
	"fmt"
	"strings"
	"sync"

	"view-router/internal/common/errors"
)

// Match is the result of matching a token against the table: the route and
// the token with parameter positions bound to the route's placeholders.
type Match struct {
	Route *RouteConfig
	Token NavigationToken
}

// Table holds the route, shell and composite configuration of one router.
// Entries are copied on registration and never mutated afterwards.
type Table struct {
	mu         sync.RWMutex
	routes     []*RouteConfig
	shells     map[string]*ShellConfig
	shellOrder []string
	composites []CompositeReference
}

// NewTable creates an empty table.
func NewTable() *Table {
	return &Table{shells: make(map[string]*ShellConfig)}
}

// AddShell registers a shell. Shell ids are unique.
func (t *Table) AddShell(cfg ShellConfig) error {
	if cfg.ShellID == "" {
		return errors.ConfigError("shell id is required")
	}

	t.mu.Lock()
	defer t.mu.Unlock()

	if _, exists := t.shells[cfg.ShellID]; exists {
		return errors.ConfigError(fmt.Sprintf("shell %q already registered", cfg.ShellID))
	}

	shell := cfg
	shell.Selectors = append([]string(nil), cfg.Selectors...)
	t.shells[cfg.ShellID] = &shell
	t.shellOrder = append(t.shellOrder, cfg.ShellID)
	return nil
}

// AddRoute registers a route. Placeholders written as ":name" are normalized
// to "*"; when the route declares no acceptors, one acceptor per named
// placeholder is derived in order.
func (t *Table) AddRoute(cfg RouteConfig) error {
	segments, names, err := normalizePattern(cfg.RouteID)
	if err != nil {
		return err
	}

	route := cfg
	route.segments = segments
	route.placeholders = names
	route.ParameterAcceptors = append([]ParameterAcceptor(nil), cfg.ParameterAcceptors...)
	if len(route.ParameterAcceptors) == 0 {
		for i, name := range names {
			if name != "" {
				route.ParameterAcceptors = append(route.ParameterAcceptors, ParameterAcceptor{Index: i, Setter: name})
			}
		}
	}

	t.mu.Lock()
	t.routes = append(t.routes, &route)
	t.mu.Unlock()
	return nil
}

// AddComposite registers a composite reference.
func (t *Table) AddComposite(ref CompositeReference) error {
	if ref.Provider.IsZero() || ref.Composite.IsZero() {
		return errors.ConfigError("composite reference needs a provider and a composite type")
	}

	ref.ParameterAcceptors = append([]ParameterAcceptor(nil), ref.ParameterAcceptors...)

	t.mu.Lock()
	t.composites = append(t.composites, ref)
	t.mu.Unlock()
	return nil
}

// Routes returns the routes in registration order.
func (t *Table) Routes() []*RouteConfig {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*RouteConfig, len(t.routes))
	copy(out, t.routes)
	return out
}

// Shell returns the shell registered under id.
func (t *Table) Shell(id string) (*ShellConfig, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	shell, ok := t.shells[id]
	if !ok {
		return nil, errors.UnknownShellError(id)
	}
	return shell, nil
}

// Shells returns the shells in registration order.
func (t *Table) Shells() []*ShellConfig {
	t.mu.RLock()
	defer t.mu.RUnlock()

	out := make([]*ShellConfig, 0, len(t.shellOrder))
	for _, id := range t.shellOrder {
		out = append(out, t.shells[id])
	}
	return out
}

// CompositesFor returns the composite references declared by provider, in
// registration order.
func (t *Table) CompositesFor(provider TypeID) []CompositeReference {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []CompositeReference
	for _, ref := range t.composites {
		if ref.Provider == provider {
			out = append(out, ref)
		}
	}
	return out
}

// Match finds the route for token. A pattern matches when the shell is the
// same, the segment counts are equal and every literal equals the token
// segment at its position. Placeholders accept any segment in slash tokens
// and only parameter segments in colon tokens.
//
// When more than one route matches, the first registered one wins. This is a
// precedence policy for tables that skipped Validate, not a guarantee.
func (t *Table) Match(token NavigationToken) (*Match, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	for _, route := range t.routes {
		if route.ShellID != token.ShellID || len(route.segments) != len(token.segments) {
			continue
		}
		if bound, ok := bind(route, token); ok {
			return &Match{Route: route, Token: bound}, nil
		}
	}

	name := token.Raw
	if name == "" {
		name = token.Route()
	}
	return nil, errors.RouteNotFoundError(name)
}

func bind(route *RouteConfig, token NavigationToken) (NavigationToken, bool) {
	for i, seg := range route.segments {
		got := token.segments[i]
		if seg == placeholder {
			if token.explicit && !got.Param {
				return NavigationToken{}, false
			}
			continue
		}
		if got.Param || got.Value != seg {
			return NavigationToken{}, false
		}
	}

	bound := token
	bound.RoutePath = joinPath(route.segments)
	bound.segments = make([]Segment, len(token.segments))
	bound.ParameterValues = make([]string, 0, len(route.placeholders))
	for i, seg := range token.segments {
		param := route.segments[i] == placeholder
		bound.segments[i] = Segment{Value: seg.Value, Param: param}
		if param {
			bound.ParameterValues = append(bound.ParameterValues, seg.Value)
		}
	}
	return bound, true
}

// Validate checks the table for configuration defects: routes on unknown
// shells or selectors, missing types, acceptors beyond the pattern,
// duplicate patterns and ambiguous patterns that would match the same token.
func (t *Table) Validate() error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var problems []string
	add := func(format string, args ...interface{}) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	for _, id := range t.shellOrder {
		shell := t.shells[id]
		if shell.ShellType.IsZero() {
			add("shell %q has no type", id)
		}
		if len(shell.Selectors) == 0 {
			add("shell %q provides no selectors", id)
		}
	}

	for i, route := range t.routes {
		name := route.ShellID + route.Pattern()
		shell, ok := t.shells[route.ShellID]
		switch {
		case !ok:
			add("route %q: shell %q is not configured", name, route.ShellID)
		case !shell.Provides(route.Selector):
			add("route %q: shell %q has no selector %q", name, route.ShellID, route.Selector)
		}
		if route.Controller.IsZero() {
			add("route %q has no controller type", name)
		}
		for _, acc := range route.ParameterAcceptors {
			if acc.Setter == "" {
				add("route %q: acceptor %d has no setter", name, acc.Index)
			}
			if acc.Index < 0 || acc.Index >= len(route.placeholders) {
				add("route %q: acceptor %q reads parameter %d of %d", name, acc.Setter, acc.Index, len(route.placeholders))
			}
		}

		for _, prev := range t.routes[:i] {
			if prev.ShellID != route.ShellID || len(prev.segments) != len(route.segments) {
				continue
			}
			if prev.Pattern() == route.Pattern() {
				add("route %q is registered twice", name)
			} else if overlaps(prev.segments, route.segments) {
				add("routes %q and %q match the same tokens", prev.ShellID+prev.Pattern(), name)
			}
		}
	}

	for _, ref := range t.composites {
		if ref.Selector == "" {
			add("composite %q of %q has no selector", ref.Composite, ref.Provider)
		}
		for _, acc := range ref.ParameterAcceptors {
			if acc.Setter == "" || acc.Index < 0 {
				add("composite %q: invalid acceptor %d", ref.Composite, acc.Index)
			}
		}
	}

	if len(problems) > 0 {
		return errors.ConfigError("invalid route table: "+strings.Join(problems, "; ")).
			WithContext("problems", len(problems))
	}
	return nil
}

func overlaps(a, b []string) bool {
	for i := range a {
		if a[i] != placeholder && b[i] != placeholder && a[i] != b[i] {
			return false
		}
	}
	return true
}

// ValidPattern reports whether pattern is a well-formed route pattern.
func ValidPattern(pattern string) bool {
	_, _, err := normalizePattern(pattern)
	return err == nil
}

// normalizePattern splits a route pattern into segments, replacing ":name"
// placeholders with "*". names has one entry per placeholder; "*" entries
// are unnamed.
func normalizePattern(pattern string) (segments []string, names []string, err error) {
	s := strings.TrimSpace(pattern)
	s = strings.TrimPrefix(s, "/")
	s = strings.TrimSuffix(s, "/")
	if s == "" {
		return []string{}, nil, nil
	}

	for _, part := range strings.Split(s, "/") {
		switch {
		case part == "":
			return nil, nil, errors.ConfigError(fmt.Sprintf("route pattern %q has an empty segment", pattern))
		case part == placeholder:
			segments = append(segments, placeholder)
			names = append(names, "")
		case strings.HasPrefix(part, ":"):
			name := part[1:]
			if name == "" || strings.ContainsAny(name, ":;*") {
				return nil, nil, errors.ConfigError(fmt.Sprintf("route pattern %q has an invalid placeholder %q", pattern, part))
			}
			segments = append(segments, placeholder)
			names = append(names, name)
		case strings.ContainsAny(part, ":;*"):
			return nil, nil, errors.ConfigError(fmt.Sprintf("route pattern %q: segment %q contains a reserved character", pattern, part))
		default:
			segments = append(segments, part)
		}
	}
	return segments, names, nil
}
