package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"view-router/internal/common/errors"
	"view-router/internal/common/logging"
	"view-router/internal/mvc"
	"view-router/internal/routing"
	"view-router/internal/testutil"
)

var (
	usersType = routing.NewTypeID("app.users.UsersController")
	homeType  = routing.NewTypeID("app.HomeController")
)

func usersRoute() *routing.RouteConfig {
	return &routing.RouteConfig{RouteID: "/users/*", ShellID: "app", Controller: usersType, Selector: "content"}
}

func newControllerFactory(t *testing.T, fakes *testutil.Fakes, env mvc.Env) *ControllerFactory {
	t.Helper()

	f := NewControllerFactory(env, logging.NewNop())
	require.NoError(t, f.Register(usersType, ControllerCreator{
		New:       fakes.Controller("Users"),
		Component: fakes.ControllerComponent("Users"),
		Cacheable: true,
	}))
	require.NoError(t, f.Register(homeType, ControllerCreator{
		New:       fakes.Controller("Home"),
		Component: fakes.ControllerComponent("Home"),
	}))
	return f
}

func TestControllerFactory_ResolveInjectsEnvAndMeta(t *testing.T) {
	fakes := testutil.NewFakes()
	env := mvc.Env{Context: "app-context", EventBus: "bus"}
	f := newControllerFactory(t, fakes, env)

	inst, err := f.Resolve(usersType, usersRoute())
	require.NoError(t, err)
	assert.False(t, inst.Cached)
	assert.True(t, inst.Cacheable)
	assert.Equal(t, "app_users_UsersController", inst.Key())

	c := fakes.LastController("Users")
	require.NotNil(t, c)
	assert.Same(t, c, inst.Controller)
	assert.Equal(t, env, c.Env())
	assert.Equal(t, mvc.Meta{Type: usersType, Shell: "app", Route: "/users/*", Selector: "content"}, c.Meta())
}

func TestControllerFactory_CacheLifecycle(t *testing.T) {
	fakes := testutil.NewFakes()
	f := newControllerFactory(t, fakes, mvc.Env{})

	first, err := f.Resolve(usersType, usersRoute())
	require.NoError(t, err)

	// nothing is cached until the pipeline stores the settled instance
	again, err := f.Resolve(usersType, usersRoute())
	require.NoError(t, err)
	assert.False(t, again.Cached)
	assert.NotSame(t, first.Controller, again.Controller)

	f.Store(first)
	assert.Equal(t, []string{"app_users_UsersController"}, f.CachedKeys())

	hit, err := f.Resolve(usersType, usersRoute())
	require.NoError(t, err)
	assert.True(t, hit.Cached)
	assert.Same(t, first.Controller, hit.Controller)
	assert.True(t, hit.Same(first))
	assert.False(t, first.Cached, "the stored copy must not be mutated by a hit")

	assert.False(t, f.Evict(again), "evicting an instance that is not cached is a no-op")
	assert.True(t, f.Evict(hit))

	fresh, err := f.Resolve(usersType, usersRoute())
	require.NoError(t, err)
	assert.False(t, fresh.Cached)
	assert.NotSame(t, first.Controller, fresh.Controller)
}

func TestControllerFactory_NonCacheableNeverHits(t *testing.T) {
	fakes := testutil.NewFakes()
	f := newControllerFactory(t, fakes, mvc.Env{})

	first, err := f.Resolve(homeType, nil)
	require.NoError(t, err)
	f.Store(first)

	second, err := f.Resolve(homeType, nil)
	require.NoError(t, err)
	assert.False(t, second.Cached)
	assert.Len(t, fakes.Controllers("Home"), 2)
}

func TestControllerFactory_Errors(t *testing.T) {
	fakes := testutil.NewFakes()
	f := newControllerFactory(t, fakes, mvc.Env{})

	_, err := f.Resolve(routing.NewTypeID("app.Missing"), nil)
	require.Error(t, err)
	assert.True(t, errors.IsType(err, errors.ErrTypeUnknownController))

	err = f.Register(usersType, ControllerCreator{New: fakes.Controller("X"), Component: fakes.ControllerComponent("X")})
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))

	err = f.Register(routing.NewTypeID("app.Half"), ControllerCreator{New: fakes.Controller("X")})
	assert.True(t, errors.IsType(err, errors.ErrTypeConfig))

	require.NoError(t, f.Register(routing.NewTypeID("app.Nil"), ControllerCreator{
		New:       func() mvc.Controller { return nil },
		Component: func(mvc.Controller) mvc.Component { return nil },
	}))
	_, err = f.Resolve(routing.NewTypeID("app.Nil"), nil)
	assert.True(t, errors.IsType(err, errors.ErrTypeInternal))
}

func TestControllerFactory_NewComponentAndClear(t *testing.T) {
	fakes := testutil.NewFakes()
	f := newControllerFactory(t, fakes, mvc.Env{})

	inst, err := f.Resolve(usersType, usersRoute())
	require.NoError(t, err)

	component, err := f.NewComponent(inst)
	require.NoError(t, err)
	assert.Same(t, fakes.Components("UsersView")[0], component)

	f.Store(inst)
	_, ok := f.Lookup(usersType)
	assert.True(t, ok)

	f.Clear()
	_, ok = f.Lookup(usersType)
	assert.False(t, ok)
	assert.True(t, f.IsRegistered(usersType))
	assert.Equal(t, []routing.TypeID{usersType, homeType}, f.Types())
}

func TestControllerFactory_KeyCollision(t *testing.T) {
	fakes := testutil.NewFakes()
	f := NewControllerFactory(mvc.Env{}, nil)
	first := routing.NewTypeID("app.a_b.Ctl")
	second := routing.NewTypeID("app.a.b_Ctl")
	require.Equal(t, first.Key(), second.Key())

	for name, id := range map[string]routing.TypeID{"First": first, "Second": second} {
		require.NoError(t, f.Register(id, ControllerCreator{
			New:       fakes.Controller(name),
			Component: fakes.ControllerComponent(name),
			Cacheable: true,
		}))
	}

	a, err := f.Resolve(first, nil)
	require.NoError(t, err)
	f.Store(a)

	b, err := f.Resolve(second, nil)
	require.NoError(t, err)
	assert.False(t, b.Cached)
	assert.Equal(t, second, b.Type)
	assert.Same(t, fakes.LastController("Second"), b.Controller)

	_, ok := f.Lookup(second)
	assert.False(t, ok)
	assert.False(t, f.Evict(b))

	stored, ok := f.Lookup(first)
	require.True(t, ok)
	assert.True(t, stored.Same(a))
}

func TestCompositeFactory_KeyCollision(t *testing.T) {
	fakes := testutil.NewFakes()
	f := NewCompositeFactory(mvc.Env{}, nil)
	first := routing.NewTypeID("app.x_y.Panel")
	second := routing.NewTypeID("app.x.y_Panel")

	for name, id := range map[string]routing.TypeID{"First": first, "Second": second} {
		require.NoError(t, f.Register(id, CompositeCreator{
			New:       fakes.Composite(name),
			Component: fakes.CompositeComponent(name),
			Cacheable: true,
		}))
	}

	a, err := f.Resolve(routing.CompositeReference{Provider: usersType, Composite: first, Selector: "side"}, mvc.Meta{})
	require.NoError(t, err)
	f.Store(a)

	b, err := f.Resolve(routing.CompositeReference{Provider: usersType, Composite: second, Selector: "side"}, mvc.Meta{})
	require.NoError(t, err)
	assert.False(t, b.Cached)
	assert.Equal(t, second, b.Type)
	assert.Len(t, fakes.Composites("Second"), 1)
}

func TestCompositeFactory(t *testing.T) {
	fakes := testutil.NewFakes()
	env := mvc.Env{Context: "ctx"}
	searchType := routing.NewTypeID("app.SearchComposite")

	composites := NewCompositeFactory(env, nil)
	controllers := newControllerFactory(t, fakes, env)
	require.NoError(t, composites.Register(searchType, CompositeCreator{
		New:       fakes.Composite("Search"),
		Component: fakes.CompositeComponent("Search"),
		Cacheable: true,
	}))

	ref := routing.CompositeReference{Provider: usersType, Composite: searchType, Selector: "search"}
	parent := mvc.Meta{Type: usersType, Shell: "app", Route: "/users/*", Selector: "content"}

	inst, err := composites.Resolve(ref, parent)
	require.NoError(t, err)
	assert.False(t, inst.Cached)
	assert.Equal(t, mvc.Meta{Type: searchType, Shell: "app", Route: "/users/*", Selector: "search"}, fakes.Composites("Search")[0].Meta())

	component, err := composites.NewComponent(inst)
	require.NoError(t, err)
	assert.NotNil(t, component)

	composites.Store(inst)
	hit, err := composites.Resolve(ref, parent)
	require.NoError(t, err)
	assert.True(t, hit.Cached)
	assert.Same(t, inst.Composite, hit.Composite)

	t.Run("clear is independent of the controller cache", func(t *testing.T) {
		ctrl, err := controllers.Resolve(usersType, usersRoute())
		require.NoError(t, err)
		controllers.Store(ctrl)

		composites.Clear()
		_, ok := composites.Lookup(searchType)
		assert.False(t, ok)
		_, ok = controllers.Lookup(usersType)
		assert.True(t, ok)
	})

	t.Run("unknown composite", func(t *testing.T) {
		_, err := composites.Resolve(routing.CompositeReference{Provider: usersType, Composite: routing.NewTypeID("app.Nope")}, parent)
		assert.True(t, errors.IsType(err, errors.ErrTypeUnknownController))
	})

	t.Run("evict", func(t *testing.T) {
		inst, err := composites.Resolve(ref, parent)
		require.NoError(t, err)
		composites.Store(inst)
		assert.True(t, composites.Evict(inst))
		assert.False(t, composites.Evict(inst))
		assert.Empty(t, composites.CachedKeys())
	})
}

func TestShellFactory(t *testing.T) {
	fakes := testutil.NewFakes()
	env := mvc.Env{Context: "ctx"}
	shells := NewShellFactory(env, nil)
	shellType := routing.NewTypeID("app.Shell")

	require.NoError(t, shells.Register(shellType, fakes.Shell))
	assert.True(t, shells.IsRegistered(shellType))

	cfg := &routing.ShellConfig{ShellID: "app", ShellType: shellType, Selectors: []string{"content"}}
	first, err := shells.Resolve(cfg)
	require.NoError(t, err)
	second, err := shells.Resolve(cfg)
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, fakes.Journal.Count("shell:app.create"))
	assert.Equal(t, env, fakes.ShellFor("app").Env)

	_, err = shells.Resolve(&routing.ShellConfig{ShellID: "admin", ShellType: routing.NewTypeID("app.Other")})
	assert.True(t, errors.IsType(err, errors.ErrTypeUnknownShell))

	fakes.SetError("shell:broken.Create", testutil.ErrTestFailure)
	_, err = shells.Resolve(&routing.ShellConfig{ShellID: "broken", ShellType: shellType})
	assert.True(t, errors.IsType(err, errors.ErrTypeInternal))

	assert.Error(t, shells.Register(routing.NewTypeID("x"), nil))

	dotted, err := shells.Resolve(&routing.ShellConfig{ShellID: "main.app", ShellType: shellType})
	require.NoError(t, err)
	underscored, err := shells.Resolve(&routing.ShellConfig{ShellID: "main_app", ShellType: shellType})
	require.NoError(t, err)
	assert.NotSame(t, dotted, underscored)
	assert.Equal(t, 1, fakes.Journal.Count("shell:main_app.create"))

	shells.Clear()
	third, err := shells.Resolve(cfg)
	require.NoError(t, err)
	assert.NotSame(t, first, third)
}
