package factory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	commonErrors "view-router/internal/common/errors"
	"view-router/internal/routing"
)

type testCreator func() *testService

type testService struct {
	Name string
}

func TestFactory_Register(t *testing.T) {
	factory := NewFactory[testCreator, *testService]("service")
	id := routing.NewTypeID("app.Service")

	require.NoError(t, factory.Register(id, func() *testService { return &testService{Name: "a"} }))
	assert.True(t, factory.IsRegistered(id))
	assert.Equal(t, "service", factory.Kind())

	t.Run("duplicate registration", func(t *testing.T) {
		err := factory.Register(id, func() *testService { return nil })
		require.Error(t, err)
		assert.True(t, commonErrors.IsType(err, commonErrors.ErrTypeConfig))
	})

	t.Run("zero type", func(t *testing.T) {
		err := factory.Register(routing.TypeID{}, func() *testService { return nil })
		assert.True(t, commonErrors.IsType(err, commonErrors.ErrTypeConfig))
	})

	t.Run("creator lookup", func(t *testing.T) {
		creator, ok := factory.Creator(id)
		require.True(t, ok)
		assert.Equal(t, "a", creator().Name)

		_, ok = factory.Creator(routing.NewTypeID("app.Missing"))
		assert.False(t, ok)
	})

	assert.Equal(t, []routing.TypeID{id}, factory.Types())
}

func TestFactory_Cache(t *testing.T) {
	factory := NewFactory[testCreator, *testService]("service")
	instance := &testService{Name: "cached"}

	_, ok := factory.Cached("app_Service")
	assert.False(t, ok)

	factory.Store("app_Service", instance)
	got, ok := factory.Cached("app_Service")
	require.True(t, ok)
	assert.Same(t, instance, got)
	assert.Equal(t, []string{"app_Service"}, factory.CachedKeys())

	factory.Evict("app_Service")
	_, ok = factory.Cached("app_Service")
	assert.False(t, ok)

	factory.Store("a", instance)
	factory.Store("b", instance)
	require.NoError(t, factory.Register(routing.NewTypeID("kept"), func() *testService { return nil }))
	factory.Clear()
	assert.Empty(t, factory.CachedKeys())
	assert.True(t, factory.IsRegistered(routing.NewTypeID("kept")))
}
