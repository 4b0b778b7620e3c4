// Package manifest loads the route, shell and composite configuration of a
// router from YAML.
//
//	dialect: slash
//	start_route: /app/home
//	error_route: /app/error
//	shells:
//	  - id: app
//	    type: app.Shell
//	    selectors: [content, sidebar]
//	routes:
//	  - route: /users/:id
//	    shell: app
//	    controller: app.users.UserController
//	    selector: content
//	cacheable: [app.users.UserController]
//	composites:
//	  - provider: app.users.UserController
//	    composite: app.search.SearchComposite
//	    selector: search
//	    when: len(params) > 0
//	    parameters:
//	      - {index: 0, setter: query}
package manifest

import (
	"bytes"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"view-router/internal/common/errors"
	"view-router/internal/common/validation"
	"view-router/internal/condition"
	"view-router/internal/routing"
)

// Manifest is the decoded configuration document.
type Manifest struct {
	Dialect    string                       `yaml:"dialect,omitempty" validate:"omitempty,oneof=slash colon"`
	StartRoute string                       `yaml:"start_route,omitempty" validate:"omitempty,route_token"`
	ErrorRoute string                       `yaml:"error_route,omitempty" validate:"omitempty,route_token"`
	Shells     []routing.ShellConfig        `yaml:"shells" validate:"required,min=1,dive"`
	Routes     []routing.RouteConfig        `yaml:"routes" validate:"required,min=1,dive"`
	Composites []routing.CompositeReference `yaml:"composites,omitempty" validate:"dive"`
	Cacheable  []routing.TypeID             `yaml:"cacheable,omitempty"`
}

// Load reads and validates the manifest at path.
func Load(path string) (*Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.ConfigError(fmt.Sprintf("failed to open manifest %s", path)).WithContext("cause", err.Error())
	}
	defer f.Close()

	m, err := Decode(f)
	if err != nil {
		return nil, err
	}
	return m, nil
}

// Parse decodes and validates a manifest document.
func Parse(data []byte) (*Manifest, error) {
	return Decode(bytes.NewReader(data))
}

// Decode reads one manifest document from r. Unknown keys are rejected.
func Decode(r io.Reader) (*Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var m Manifest
	if err := dec.Decode(&m); err != nil {
		if err == io.EOF {
			return nil, errors.ConfigError("manifest is empty")
		}
		return nil, errors.ConfigError(fmt.Sprintf("invalid manifest: %v", err))
	}

	if err := validation.ValidateStruct(m); err != nil {
		return nil, errors.ConfigError(err.Error())
	}

	for i, ref := range m.Composites {
		if ref.When == "" {
			continue
		}
		cond, err := condition.Compile(ref.When)
		if err != nil {
			return nil, errors.ConfigError(fmt.Sprintf("composite %s: %v", ref.Composite, err))
		}
		m.Composites[i].Condition = cond
	}
	return &m, nil
}

// ParsedDialect returns the manifest's token dialect.
func (m *Manifest) ParsedDialect() (routing.Dialect, error) {
	return routing.ParseDialect(m.Dialect)
}

// Apply registers the manifest's shells, routes and composites in table, in
// document order.
func (m *Manifest) Apply(table *routing.Table) error {
	for _, shell := range m.Shells {
		if err := table.AddShell(shell); err != nil {
			return err
		}
	}
	for _, route := range m.Routes {
		if err := table.AddRoute(route); err != nil {
			return err
		}
	}
	for _, ref := range m.Composites {
		if err := table.AddComposite(ref); err != nil {
			return err
		}
	}
	return nil
}

// IsCacheable reports whether instances of id are kept after they leave
// their slot.
func (m *Manifest) IsCacheable(id routing.TypeID) bool {
	for _, c := range m.Cacheable {
		if c == id {
			return true
		}
	}
	return false
}

// Types returns every controller, composite and shell type the manifest
// names, without duplicates.
func (m *Manifest) Types() []routing.TypeID {
	seen := make(map[routing.TypeID]bool)
	var out []routing.TypeID
	add := func(id routing.TypeID) {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}

	for _, s := range m.Shells {
		add(s.ShellType)
	}
	for _, r := range m.Routes {
		add(r.Controller)
	}
	for _, c := range m.Composites {
		add(c.Composite)
	}
	return out
}
