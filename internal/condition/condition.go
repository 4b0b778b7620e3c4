// Package condition compiles the "when" expressions of composite references
// with expr. An expression sees the matched navigation token as
//
//	shell   string    shell id
//	route   string    route path, "*" at parameter positions
//	params  []string  positional parameter values
//	token   string    raw token
//
// and must evaluate to a bool:
//
//	len(params) > 0 && params[0] != "new"
package condition

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	gocache "github.com/patrickmn/go-cache"

	"view-router/internal/common/errors"
	"view-router/internal/routing"
)

// Compiled programs are shared by every reference using the same source.
var programs = gocache.New(gocache.NoExpiration, 0)

// Expression is a compiled condition. It implements
// routing.CompositeCondition.
type Expression struct {
	source  string
	program *vm.Program
}

// Compile type-checks source against the token environment.
func Compile(source string) (*Expression, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return nil, errors.ValidationError("condition is empty")
	}

	if cached, ok := programs.Get(source); ok {
		if program, ok := cached.(*vm.Program); ok {
			return &Expression{source: source, program: program}, nil
		}
	}

	program, err := expr.Compile(source, expr.Env(environment(routing.NavigationToken{})), expr.AsBool())
	if err != nil {
		return nil, errors.ValidationError(fmt.Sprintf("invalid condition %q: %v", source, err))
	}
	programs.Set(source, program, gocache.NoExpiration)

	return &Expression{source: source, program: program}, nil
}

// MustCompile is like Compile but panics on error.
func MustCompile(source string) *Expression {
	e, err := Compile(source)
	if err != nil {
		panic(err)
	}
	return e
}

// Eval runs the expression against token.
func (e *Expression) Eval(token routing.NavigationToken) (bool, error) {
	out, err := expr.Run(e.program, environment(token))
	if err != nil {
		return false, fmt.Errorf("condition %q: %w", e.source, err)
	}
	b, ok := out.(bool)
	if !ok {
		return false, fmt.Errorf("condition %q returned %T", e.source, out)
	}
	return b, nil
}

// Load reports whether the composite is loaded for token. Runtime errors,
// such as indexing a missing parameter, count as false.
func (e *Expression) Load(token routing.NavigationToken) bool {
	ok, err := e.Eval(token)
	return err == nil && ok
}

// String returns the expression source.
func (e *Expression) String() string {
	return e.source
}

func environment(token routing.NavigationToken) map[string]interface{} {
	params := token.ParameterValues
	if params == nil {
		params = []string{}
	}
	return map[string]interface{}{
		"shell":  token.ShellID,
		"route":  token.RoutePath,
		"params": params,
		"token":  token.Raw,
	}
}
