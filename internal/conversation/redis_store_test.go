package conversation

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"consumo_wpp_backend/internal/consumption"
)

func newTestStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return NewRedisStore(client, 30*time.Minute), mr
}

func TestRedisStore_SaveAndLoad(t *testing.T) {
	store, _ := newTestStore(t)
	ctx := context.Background()

	history := []consumption.Turn{
		{Role: consumption.RoleUser, Content: "usei 5 litros de tordon"},
		{Role: consumption.RoleAssistant, Content: "Em qual talhão foi a aplicação?"},
	}
	if err := store.Save(ctx, "5511988887777", history); err != nil {
		t.Fatalf("save: %v", err)
	}

	loaded, err := store.Load(ctx, "5511988887777")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(loaded))
	}
	if loaded[0] != history[0] || loaded[1] != history[1] {
		t.Fatalf("round trip mismatch: %+v", loaded)
	}
}

func TestRedisStore_LoadMissingReturnsEmpty(t *testing.T) {
	store, _ := newTestStore(t)

	history, err := store.Load(context.Background(), "5511900000000")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if history != nil {
		t.Fatalf("expected nil history, got %+v", history)
	}
}

func TestRedisStore_LoadRefreshesTTL(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "5511988887777", []consumption.Turn{{Role: consumption.RoleUser, Content: "oi"}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	mr.FastForward(20 * time.Minute)
	if _, err := store.Load(ctx, "5511988887777"); err != nil {
		t.Fatalf("load: %v", err)
	}

	// Without the refresh the key would die 10 minutes from now.
	mr.FastForward(20 * time.Minute)
	if !mr.Exists(MemoryKey("5511988887777")) {
		t.Fatal("expected ttl refresh on load to keep the key alive")
	}
}

func TestRedisStore_ExpiryRemovesKey(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "5511988887777", []consumption.Turn{{Role: consumption.RoleUser, Content: "oi"}}); err != nil {
		t.Fatalf("save: %v", err)
	}

	mr.FastForward(31 * time.Minute)
	history, err := store.Load(ctx, "5511988887777")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if history != nil {
		t.Fatalf("expected expired conversation to be gone, got %+v", history)
	}
}

func TestRedisStore_Clear(t *testing.T) {
	store, mr := newTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, "5511988887777", []consumption.Turn{{Role: consumption.RoleUser, Content: "oi"}}); err != nil {
		t.Fatalf("save: %v", err)
	}
	if err := store.Clear(ctx, "5511988887777"); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if mr.Exists(MemoryKey("5511988887777")) {
		t.Fatal("expected key to be deleted")
	}
}

func TestMemoryKeyRoundTrip(t *testing.T) {
	key := MemoryKey("5511988887777")
	if key != "conversa:5511988887777" {
		t.Fatalf("unexpected key %q", key)
	}
	if phone := PhoneFromKey(key); phone != "5511988887777" {
		t.Fatalf("expected phone back, got %q", phone)
	}
	if phone := PhoneFromKey("outroprefixo:123"); phone != "" {
		t.Fatalf("foreign keys must not parse, got %q", phone)
	}
}
