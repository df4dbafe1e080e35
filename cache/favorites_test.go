package cache

import (
	"context"
	"fmt"
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

func exerciseFavorites(t *testing.T, store FavoriteStore) {
	t.Helper()
	ctx := context.Background()

	for _, id := range []string{"aaaaaaaaaaaaaaaaaaaaaaaa", "BBBBBBBBBBBBBBBBBBBBBBBB", "cccccccccccccccccccccccc"} {
		if err := store.Add(ctx, 7, id); err != nil {
			t.Fatalf("Add(%s) error = %v", id, err)
		}
	}
	// re-adding keeps the original position
	if err := store.Add(ctx, 7, "aaaaaaaaaaaaaaaaaaaaaaaa"); err != nil {
		t.Fatalf("Add() again error = %v", err)
	}

	got, err := store.List(ctx, 7)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	want := []string{"cccccccccccccccccccccccc", "bbbbbbbbbbbbbbbbbbbbbbbb", "aaaaaaaaaaaaaaaaaaaaaaaa"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("List() = %v, want %v", got, want)
	}

	if err := store.Remove(ctx, 7, "bbbbbbbbbbbbbbbbbbbbbbbb"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := store.Remove(ctx, 7, "bbbbbbbbbbbbbbbbbbbbbbbb"); err != nil {
		t.Fatalf("second Remove() error = %v", err)
	}
	got, _ = store.List(ctx, 7)
	if len(got) != 2 {
		t.Errorf("after Remove List() = %v", got)
	}

	other, err := store.List(ctx, 8)
	if err != nil || len(other) != 0 {
		t.Errorf("List(other user) = %v, %v; want empty", other, err)
	}
}

func TestMemoryFavorites(t *testing.T) {
	exerciseFavorites(t, NewMemoryFavorites())
}

func TestRedisFavorites(t *testing.T) {
	if os.Getenv("TEST_INTEGRATION") == "" {
		t.Skip("set TEST_INTEGRATION=1 to run against a real Redis")
	}
	ctx := context.Background()

	container, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: testcontainers.ContainerRequest{
			Image:        "redis:7-alpine",
			ExposedPorts: []string{"6379/tcp"},
			WaitingFor:   wait.ForLog("Ready to accept connections"),
		},
		Started: true,
	})
	if err != nil {
		t.Fatalf("start redis container: %v", err)
	}
	t.Cleanup(func() { _ = container.Terminate(context.Background()) })

	host, err := container.Host(ctx)
	if err != nil {
		t.Fatal(err)
	}
	port, err := container.MappedPort(ctx, "6379")
	if err != nil {
		t.Fatal(err)
	}

	client := redis.NewClient(&redis.Options{Addr: fmt.Sprintf("%s:%s", host, port.Port())})
	t.Cleanup(func() { _ = client.Close() })

	store := NewRedisFavorites(client)
	tick := time.UnixMilli(1700000000000)
	store.now = func() time.Time {
		tick = tick.Add(time.Millisecond)
		return tick
	}
	exerciseFavorites(t, store)
}
