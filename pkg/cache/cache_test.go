package cache

import (
	"context"
	"strings"
	"testing"
	"time"
)

func TestNullCache(t *testing.T) {
	ctx := context.Background()
	c := NewNullCache()

	if err := c.Set(ctx, "key", []byte("data"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, ok, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if ok || data != nil {
		t.Error("NullCache.Get should always miss")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("Delete() error = %v", err)
	}
	if err := c.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}

func TestFileCacheRoundTrip(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}

	if _, ok, _ := c.Get(ctx, "absent"); ok {
		t.Error("expected miss for absent key")
	}

	if err := c.Set(ctx, "key", []byte("a rendered book"), 0); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	data, ok, err := c.Get(ctx, "key")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if !ok || string(data) != "a rendered book" {
		t.Errorf("Get() = %q, %v", data, ok)
	}

	if err := c.Delete(ctx, "key"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if _, ok, _ := c.Get(ctx, "key"); ok {
		t.Error("expected miss after delete")
	}
	if err := c.Delete(ctx, "key"); err != nil {
		t.Errorf("deleting absent key should not error, got %v", err)
	}
}

func TestFileCacheExpiry(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	if err := c.Set(ctx, "key", []byte("data"), time.Nanosecond); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
	time.Sleep(10 * time.Millisecond)
	if _, ok, _ := c.Get(ctx, "key"); ok {
		t.Error("expected expired entry to miss")
	}
}

func TestFileCacheClear(t *testing.T) {
	ctx := context.Background()
	c, err := NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if err := c.Set(ctx, k, []byte(k), 0); err != nil {
			t.Fatalf("Set() error = %v", err)
		}
	}
	if err := c.Clear(); err != nil {
		t.Fatalf("Clear() error = %v", err)
	}
	for _, k := range []string{"a", "b", "c"} {
		if _, ok, _ := c.Get(ctx, k); ok {
			t.Errorf("key %q survived Clear", k)
		}
	}
}

func TestHash(t *testing.T) {
	h := Hash([]byte("content"))
	if len(h) != 64 {
		t.Errorf("hash length = %d, want 64", len(h))
	}
	if h != Hash([]byte("content")) {
		t.Error("hash not deterministic")
	}
	if h == Hash([]byte("different")) {
		t.Error("distinct inputs share a hash")
	}
}

func TestBookKey(t *testing.T) {
	type cfg struct{ Title string }

	base := BookKey("x = 1\n", cfg{"A"}, "v1")
	if !strings.HasPrefix(base, "book:") {
		t.Errorf("key %q missing prefix", base)
	}
	if base != BookKey("x = 1\n", cfg{"A"}, "v1") {
		t.Error("key not deterministic")
	}
	if base == BookKey("x = 2\n", cfg{"A"}, "v1") {
		t.Error("source change did not change key")
	}
	if base == BookKey("x = 1\n", cfg{"B"}, "v1") {
		t.Error("config change did not change key")
	}
	if base == BookKey("x = 1\n", cfg{"A"}, "v2") {
		t.Error("version change did not change key")
	}
}
