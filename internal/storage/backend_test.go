package storage

import (
	"context"
	"errors"
	"reflect"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

// exerciseBackend runs the behaviour every backend must share.
func exerciseBackend(t *testing.T, b Backend) {
	t.Helper()
	ctx := context.Background()

	if _, found, err := b.Get(ctx, "missing"); err != nil || found {
		t.Fatalf("Get(missing) found=%v err=%v", found, err)
	}
	if err := b.Set(ctx, "bookings", `{}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := b.Set(ctx, "user_profile", `{"fullName":"A"}`); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := b.Set(ctx, "bookings", `{"2025-06-01":[]}`); err != nil {
		t.Fatalf("overwrite: %v", err)
	}
	v, found, err := b.Get(ctx, "bookings")
	if err != nil || !found || v != `{"2025-06-01":[]}` {
		t.Fatalf("Get(bookings) = %q found=%v err=%v", v, found, err)
	}
	keys, err := b.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if want := []string{"bookings", "user_profile"}; !reflect.DeepEqual(keys, want) {
		t.Fatalf("Keys = %v, want %v", keys, want)
	}

	if err := b.Replace(ctx, map[string]string{"theme": "dark", "bookings": "{}"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	keys, _ = b.Keys(ctx)
	if want := []string{"bookings", "theme"}; !reflect.DeepEqual(keys, want) {
		t.Fatalf("Keys after Replace = %v, want %v", keys, want)
	}
	if _, found, _ := b.Get(ctx, "user_profile"); found {
		t.Fatal("Replace kept a key that was not in the entries")
	}

	if err := b.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	keys, _ = b.Keys(ctx)
	if len(keys) != 0 {
		t.Fatalf("Keys after Clear = %v", keys)
	}
}

func TestMemoryBackend(t *testing.T) {
	exerciseBackend(t, NewMemoryBackend(0))
}

func TestMemoryBackendQuota(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend(20)
	if err := b.Set(ctx, "k", "0123456789"); err != nil {
		t.Fatalf("Set within quota: %v", err)
	}
	if err := b.Set(ctx, "k2", "0123456789"); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded, got %v", err)
	}
	// overwriting an existing key only counts the difference
	if err := b.Set(ctx, "k", "01234567890123456"); err != nil {
		t.Fatalf("overwrite within quota: %v", err)
	}
	if err := b.Replace(ctx, map[string]string{"big": "012345678901234567890"}); !errors.Is(err, ErrQuotaExceeded) {
		t.Fatalf("expected ErrQuotaExceeded from Replace, got %v", err)
	}
	if v, _, _ := b.Get(ctx, "k"); v != "01234567890123456" {
		t.Fatalf("failed Replace changed contents: %q", v)
	}
}

func TestRedisBackend(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	// a foreign key outside the namespace must survive Clear
	mr.Set("other:app", "x")

	exerciseBackend(t, NewRedisBackend(rdb, "test"))

	if v, err := mr.Get("other:app"); err != nil || v != "x" {
		t.Fatalf("foreign key lost: %q %v", v, err)
	}
}

func TestRedisBackendPrefixesKeys(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	b := NewRedisBackend(rdb, "")
	if err := b.Set(context.Background(), "bookings", "{}"); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if !mr.Exists("daybook:bookings") {
		t.Fatal("expected key under default prefix")
	}
}

func TestUniqueSortedDropsScanDuplicates(t *testing.T) {
	got := uniqueSorted([]string{"daybook:theme", "daybook:bookings", "daybook:theme"}, "daybook:")
	want := []string{"bookings", "theme"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("uniqueSorted = %v, want %v", got, want)
	}
}

func TestMySQLSchemaUsesBinaryKeyCollation(t *testing.T) {
	if !strings.Contains(kvStoreSchema, "k VARCHAR(191) CHARACTER SET utf8mb4 COLLATE utf8mb4_bin") {
		t.Fatalf("kv_store key column is not byte-compared:\n%s", kvStoreSchema)
	}
}

func TestMemoryBackendKeepsCaseDistinctKeys(t *testing.T) {
	ctx := context.Background()
	b := NewMemoryBackend(0)
	if err := b.Replace(ctx, map[string]string{"Theme": "a", "theme": "b"}); err != nil {
		t.Fatalf("Replace: %v", err)
	}
	keys, err := b.Keys(ctx)
	if err != nil {
		t.Fatalf("Keys: %v", err)
	}
	if !reflect.DeepEqual(keys, []string{"Theme", "theme"}) {
		t.Fatalf("Keys = %v", keys)
	}
}
