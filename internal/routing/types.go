package routing

import (
	"strings"

	"gopkg.in/yaml.v3"
)

// TypeID is the stable identifier of a controller, composite or shell type.
// It is assigned once when configuration is loaded; the zero value names no type.
type TypeID struct {
	name string
}

// NewTypeID creates the identifier for a fully-qualified type name such as
// "app.users.UsersController".
func NewTypeID(name string) TypeID {
	return TypeID{name: strings.TrimSpace(name)}
}

// String returns the fully-qualified type name.
func (t TypeID) String() string {
	return t.name
}

// Key returns the cache-safe form of the type name: dots are replaced so the
// key never collides with separators reserved by cache backends.
func (t TypeID) Key() string {
	return strings.ReplaceAll(t.name, ".", "_")
}

// IsZero reports whether t names no type.
func (t TypeID) IsZero() bool {
	return t.name == ""
}

// UnmarshalYAML reads a TypeID from a scalar node.
func (t *TypeID) UnmarshalYAML(value *yaml.Node) error {
	var name string
	if err := value.Decode(&name); err != nil {
		return err
	}
	*t = NewTypeID(name)
	return nil
}

// MarshalYAML writes the type name as a scalar.
func (t TypeID) MarshalYAML() (interface{}, error) {
	return t.name, nil
}

// ParameterAcceptor binds the positional parameter at Index to the setter
// named Setter on the activated controller or composite.
type ParameterAcceptor struct {
	Index  int    `yaml:"index" json:"index" validate:"min=0"`
	Setter string `yaml:"setter" json:"setter" validate:"required"`
}

// RouteConfig describes one navigable route. RouteID is the pattern below the
// shell ("/users/*" or "/users/:id"); the full token form is "/<shell><route>".
type RouteConfig struct {
	RouteID            string              `yaml:"route" json:"route" validate:"required,route_pattern"`
	ShellID            string              `yaml:"shell" json:"shell" validate:"required"`
	Controller         TypeID              `yaml:"controller" json:"-" validate:"required,type_id"`
	Component          string              `yaml:"component,omitempty" json:"component,omitempty"`
	Selector           string              `yaml:"selector" json:"selector" validate:"required"`
	ParameterAcceptors []ParameterAcceptor `yaml:"parameters,omitempty" json:"parameters,omitempty" validate:"dive"`

	segments     []string
	placeholders []string
}

// Pattern returns the normalized route pattern with every placeholder as "*".
func (r *RouteConfig) Pattern() string {
	return joinPath(r.segments)
}

// Placeholders returns how many parameter positions the pattern has.
func (r *RouteConfig) Placeholders() int {
	return len(r.placeholders)
}

// ShellConfig describes a top-level layout and the selectors it provides.
type ShellConfig struct {
	ShellID   string   `yaml:"id" json:"id" validate:"required"`
	ShellType TypeID   `yaml:"type" json:"-" validate:"required,type_id"`
	Selectors []string `yaml:"selectors" json:"selectors" validate:"required,min=1,dive,required"`
}

// Provides reports whether the shell owns the named selector slot.
func (s *ShellConfig) Provides(selector string) bool {
	for _, name := range s.Selectors {
		if name == selector {
			return true
		}
	}
	return false
}

// CompositeCondition decides per navigation whether a composite is loaded.
type CompositeCondition interface {
	Load(token NavigationToken) bool
}

// ConditionFunc adapts a function to CompositeCondition.
type ConditionFunc func(token NavigationToken) bool

// Load implements CompositeCondition.
func (f ConditionFunc) Load(token NavigationToken) bool {
	return f(token)
}

// CompositeReference declares that controllers of type Provider embed the
// composite Composite into the component slot Selector. When holds the source
// of Condition when the reference was loaded from a manifest.
type CompositeReference struct {
	Provider           TypeID              `yaml:"provider" json:"-" validate:"required,type_id"`
	Composite          TypeID              `yaml:"composite" json:"-" validate:"required,type_id"`
	Interface          string              `yaml:"interface,omitempty" json:"interface,omitempty"`
	Selector           string              `yaml:"selector" json:"selector" validate:"required"`
	ParameterAcceptors []ParameterAcceptor `yaml:"parameters,omitempty" json:"parameters,omitempty" validate:"dive"`
	When               string              `yaml:"when,omitempty" json:"when,omitempty"`
	Condition          CompositeCondition  `yaml:"-" json:"-"`
}

// ShouldLoad applies the reference's condition; no condition means always.
func (c CompositeReference) ShouldLoad(token NavigationToken) bool {
	if c.Condition == nil {
		return true
	}
	return c.Condition.Load(token)
}

// Segment is one path position of a parsed token.
type Segment struct {
	Value string
	Param bool
}

// NavigationToken is a parsed route token. RoutePath uses "*" at parameter
// positions once the positions are known (always in the colon dialect, after
// matching in the slash dialect).
type NavigationToken struct {
	Raw             string
	ShellID         string
	RoutePath       string
	ParameterValues []string

	segments []Segment
	explicit bool
}

// Route returns "/<shell><routePath>", the form Format and Router.Route accept.
func (t NavigationToken) Route() string {
	if t.RoutePath == "/" {
		return "/" + t.ShellID
	}
	return "/" + t.ShellID + t.RoutePath
}

func joinPath(segments []string) string {
	return "/" + strings.Join(segments, "/")
}
