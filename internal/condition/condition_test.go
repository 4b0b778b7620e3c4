package condition

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"view-router/internal/common/errors"
	"view-router/internal/routing"
)

func token(shell, route string, params ...string) routing.NavigationToken {
	return routing.NavigationToken{
		Raw:             "/" + shell + route,
		ShellID:         shell,
		RoutePath:       route,
		ParameterValues: params,
	}
}

func TestCompile(t *testing.T) {
	tests := []struct {
		name   string
		source string
		tok    routing.NavigationToken
		want   bool
	}{
		{"shell equality", `shell == "admin"`, token("admin", "/dashboard"), true},
		{"shell mismatch", `shell == "admin"`, token("app", "/home"), false},
		{"route prefix", `route startsWith "/users"`, token("app", "/users/*", "7"), true},
		{"param value", `len(params) > 0 && params[0] != "new"`, token("app", "/users/*", "42"), true},
		{"param excluded", `len(params) > 0 && params[0] != "new"`, token("app", "/users/*", "new"), false},
		{"no params", `len(params) > 0`, token("app", "/home"), false},
		{"raw token", `token contains "users"`, token("app", "/users/*", "1"), true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := Compile(tt.source)
			require.NoError(t, err)
			assert.Equal(t, tt.want, e.Load(tt.tok))
			assert.Equal(t, tt.source, e.String())
		})
	}
}

func TestCompile_Errors(t *testing.T) {
	for _, source := range []string{"", "   ", `shell +`, `len(params)`, `unknown == 1`} {
		_, err := Compile(source)
		require.Error(t, err, source)
		assert.True(t, errors.IsType(err, errors.ErrTypeValidation), source)
	}
}

func TestExpression_RuntimeErrorIsFalse(t *testing.T) {
	e := MustCompile(`params[1] == "x"`)

	ok, err := e.Eval(token("app", "/users/*", "1"))
	assert.Error(t, err)
	assert.False(t, ok)
	assert.False(t, e.Load(token("app", "/users/*", "1")))
	assert.True(t, e.Load(token("app", "/users/*/*", "1", "x")))
}

func TestCompile_SharesPrograms(t *testing.T) {
	a := MustCompile(`shell == "app"`)
	b := MustCompile(` shell == "app" `)
	assert.Same(t, a.program, b.program)
}

func TestExpression_IsCompositeCondition(t *testing.T) {
	ref := routing.CompositeReference{Condition: MustCompile(`shell == "app"`)}
	assert.True(t, ref.ShouldLoad(token("app", "/home")))
	assert.False(t, ref.ShouldLoad(token("admin", "/home")))
}
