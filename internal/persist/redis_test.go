package persist

import (
	"context"
	"errors"
	"reflect"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisKVGetSet(t *testing.T) {
	mr, client := newMiniredis(t)
	ctx := context.Background()
	kv := NewRedisKV(client, "board")

	if _, err := kv.Get(ctx, "tasks"); !errors.Is(err, ErrKeyNotFound) {
		t.Fatalf("expected ErrKeyNotFound, got %v", err)
	}

	if err := kv.Set(ctx, "tasks", []byte("[]")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	got, err := mr.Get("board:tasks")
	if err != nil {
		t.Fatalf("miniredis get: %v", err)
	}
	if got != "[]" {
		t.Errorf("stored value: got %q, want []", got)
	}

	data, err := kv.Get(ctx, "tasks")
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if string(data) != "[]" {
		t.Errorf("Get: got %q", data)
	}
}

func TestRedisKVDefaultPrefix(t *testing.T) {
	mr, client := newMiniredis(t)
	kv := NewRedisKV(client, "")

	if err := kv.SetMany(context.Background(), map[string][]byte{"nextId": []byte("3")}); err != nil {
		t.Fatalf("SetMany failed: %v", err)
	}
	if !mr.Exists(DefaultRedisPrefix + ":nextId") {
		t.Errorf("expected key %s:nextId", DefaultRedisPrefix)
	}
}

func TestRedisAdapterRoundTrip(t *testing.T) {
	mr, client := newMiniredis(t)
	ctx := context.Background()
	a := newAdapter(t, NewRedisKV(client, "rt"))
	want := sampleSnapshot()

	if err := a.Save(ctx, want); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if v, _ := mr.Get("rt:nextId"); v != "5" {
		t.Errorf("nextId entry: got %q, want 5", v)
	}

	got, err := a.Load(ctx)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("round trip mismatch:\n got  %+v\n want %+v", got, want)
	}
}

func TestRedisLoadFailureFallsBack(t *testing.T) {
	mr, client := newMiniredis(t)
	a := newAdapter(t, NewRedisKV(client, "down"))
	mr.Close()

	snap, err := a.Load(context.Background())
	var perr *Error
	if !errors.As(err, &perr) {
		t.Fatalf("expected *Error, got %v", err)
	}
	if len(snap.Tasks) != 0 || snap.NextID != 1 {
		t.Errorf("expected default snapshot, got %+v", snap)
	}
}

func TestOpenRedis(t *testing.T) {
	mr, _ := newMiniredis(t)
	ctx := context.Background()

	kv, closeFn, err := Open(ctx, Options{Backend: "redis", RedisAddr: mr.Addr(), RedisPrefix: "open"})
	if err != nil {
		t.Fatalf("Open(redis): %v", err)
	}
	defer closeFn()

	if err := kv.Set(ctx, "k", []byte("1")); err != nil {
		t.Fatalf("Set failed: %v", err)
	}
	if !mr.Exists("open:k") {
		t.Error("expected key open:k")
	}

	kv2, closeFn2, err := Open(ctx, Options{Backend: "redis", RedisAddr: "redis://" + mr.Addr() + "/0"})
	if err != nil {
		t.Fatalf("Open(redis url): %v", err)
	}
	defer closeFn2()
	if _, err := kv2.Get(ctx, "missing"); !errors.Is(err, ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}
