package redis_test

import (
	"context"
	"testing"
	"time"

	redisclient "github.com/redis/go-redis/v9"
	redisadapter "github.com/robertarktes/bootcamp-booking/internal/adapters/redis"
	"github.com/robertarktes/bootcamp-booking/internal/idempotency"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func startRedis(t *testing.T) *redisclient.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("needs docker")
	}
	ctx := context.Background()
	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = container.Terminate(ctx) })

	addr, err := container.PortEndpoint(ctx, "6379/tcp", "")
	if err != nil {
		t.Fatal(err)
	}
	client := redisclient.NewClient(&redisclient.Options{Addr: addr})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestCache(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	cache := redisadapter.NewCache(client)

	if err := cache.Ping(ctx); err != nil {
		t.Fatal(err)
	}

	ok, err := cache.AcquireChargeLock(ctx, "ref-1", time.Minute)
	if err != nil || !ok {
		t.Fatalf("first lock = %v, %v", ok, err)
	}
	ok, _ = cache.AcquireChargeLock(ctx, "ref-1", time.Minute)
	if ok {
		t.Fatal("lock acquired twice")
	}
	if err := cache.ReleaseChargeLock(ctx, "ref-1"); err != nil {
		t.Fatal(err)
	}
	if ok, _ = cache.AcquireChargeLock(ctx, "ref-1", time.Minute); !ok {
		t.Fatal("lock not released")
	}

	for want := int64(1); want <= 3; want++ {
		n, err := cache.IncrWindow(ctx, "rl:test", time.Minute)
		if err != nil {
			t.Fatal(err)
		}
		if n != want {
			t.Fatalf("count = %d, want %d", n, want)
		}
	}
	if ttl := client.TTL(ctx, "rl:test").Val(); ttl <= 0 {
		t.Fatalf("window has no expiry: %v", ttl)
	}

	first, _ := cache.MarkOnce(ctx, "msg-1", time.Minute)
	second, _ := cache.MarkOnce(ctx, "msg-1", time.Minute)
	if !first || second {
		t.Fatalf("MarkOnce = %v then %v", first, second)
	}

	type payload struct{ Name string }
	if err := cache.SetJSON(ctx, "k", payload{Name: "x"}, time.Minute); err != nil {
		t.Fatal(err)
	}
	var got payload
	if err := cache.GetJSON(ctx, "k", &got); err != nil || got.Name != "x" {
		t.Fatalf("GetJSON = %+v, %v", got, err)
	}
}

func TestIdempotency(t *testing.T) {
	client := startRedis(t)
	ctx := context.Background()
	store := redisadapter.NewIdempotency(client)

	resp, err := store.Get(ctx, "key")
	if err != nil || resp != nil {
		t.Fatalf("Get on empty = %v, %v", resp, err)
	}
	ok, err := store.Begin(ctx, "key", time.Minute)
	if err != nil || !ok {
		t.Fatalf("Begin = %v, %v", ok, err)
	}
	if ok, _ = store.Begin(ctx, "key", time.Minute); ok {
		t.Fatal("second Begin succeeded while in flight")
	}
	want := idempotency.Response{Status: 200, ContentType: "application/json", Body: []byte(`{"ok":true}`)}
	if err := store.Set(ctx, "key", want, time.Minute); err != nil {
		t.Fatal(err)
	}
	if err := store.End(ctx, "key"); err != nil {
		t.Fatal(err)
	}
	resp, err = store.Get(ctx, "key")
	if err != nil || resp == nil || resp.Status != 200 || string(resp.Body) != `{"ok":true}` {
		t.Fatalf("Get = %+v, %v", resp, err)
	}
}
