package tracker

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"view-router/internal/redis"
)

func event(id, route string) Event {
	return Event{NavigationID: id, Token: route, Route: route, Controller: "app.Controller", Duration: time.Millisecond}
}

func exercise(t *testing.T, tr *Counter) {
	t.Helper()
	ctx := context.Background()

	require.NoError(t, tr.Track(ctx, event("1", "/app/home")))
	require.NoError(t, tr.Track(ctx, event("2", "/app/users/*")))
	require.NoError(t, tr.Track(ctx, event("3", "/app/home")))
	require.NoError(t, tr.Track(ctx, event("4", "/app/login")))

	stats, err := tr.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int64{"/app/home": 2, "/app/users/*": 1, "/app/login": 1}, stats.Hits)
	assert.Equal(t, []string{"/app/home", "/app/login", "/app/users/*"}, stats.RouteHits())

	require.Len(t, stats.Recent, 3)
	assert.Equal(t, "4", stats.Recent[0].NavigationID)
	assert.Equal(t, "2", stats.Recent[2].NavigationID)
	assert.False(t, stats.Recent[0].At.IsZero())

	assert.Error(t, tr.Track(ctx, Event{NavigationID: "5"}))
}

func TestCounter_Local(t *testing.T) {
	exercise(t, NewLocal(3, nil))
}

func TestCounter_Redis(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := redis.NewClient(&redis.Config{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	exercise(t, NewRedis(client, "nav:", 3, nil))

	assert.True(t, mr.Exists("nav:hits:/app/home"))
	assert.True(t, mr.Exists("nav:recent"))
}

func TestRedisRecent_Publishes(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	client, err := redis.NewClient(&redis.Config{Address: mr.Addr()})
	require.NoError(t, err)
	defer client.Close()

	ctx := context.Background()
	recent := NewRedisRecent(client, "nav:recent", 0)

	subscriber := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	defer subscriber.Close()

	sub := subscriber.Subscribe(ctx, recent.Channel())
	defer sub.Close()
	_, err = sub.Receive(ctx)
	require.NoError(t, err)

	require.NoError(t, recent.Push(ctx, event("1", "/app/home")))

	msg, err := sub.ReceiveMessage(ctx)
	require.NoError(t, err)
	assert.Contains(t, msg.Payload, `"route":"/app/home"`)
}

func TestMemoryRecent_DefaultLimit(t *testing.T) {
	m := NewMemoryRecent(0)
	for i := 0; i < DefaultRecentLimit+5; i++ {
		require.NoError(t, m.Push(context.Background(), event("x", "/app/home")))
	}
	events, err := m.List(context.Background())
	require.NoError(t, err)
	assert.Len(t, events, DefaultRecentLimit)
}
