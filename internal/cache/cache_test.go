// file: internal/cache/cache_test.go
// version: 1.1.0
// guid: b2c3d4e5-f6a7-8b9c-0d1e-2f3a4b5c6d7e

package cache

import (
	"sync"
	"testing"
	"time"
)

func TestGetSet(t *testing.T) {
	c := New[string](time.Minute)
	c.Set("k", "v")
	v, ok := c.Get("k")
	if !ok || v != "v" {
		t.Fatalf("expected v, got %q ok=%v", v, ok)
	}
}

func TestExpiry(t *testing.T) {
	c := New[int](time.Millisecond)
	c.Set("k", 42)
	time.Sleep(5 * time.Millisecond)
	// Expired entries read as misses even without a sweep.
	_, ok := c.Get("k")
	if ok {
		t.Fatal("expected expired entry")
	}
}

func TestSetOverwrites(t *testing.T) {
	c := New[string](time.Minute)
	c.Set("k", "old")
	c.Set("k", "new")
	v, ok := c.Get("k")
	if !ok || v != "new" {
		t.Fatalf("expected last write to win, got %q ok=%v", v, ok)
	}
}

func TestSweep(t *testing.T) {
	c := New[int](time.Minute)
	c.SetWithTTL("dead", 1, time.Millisecond)
	c.Set("alive", 2)
	time.Sleep(5 * time.Millisecond)

	c.Sweep()

	if c.Len() != 1 {
		t.Fatalf("expected 1 entry after sweep, got %d", c.Len())
	}
	v, ok := c.Get("alive")
	if !ok || v != 2 {
		t.Fatal("expected unexpired entry to survive sweep")
	}
}

func TestInvalidate(t *testing.T) {
	c := New[string](time.Minute)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Invalidate("a")
	_, ok := c.Get("a")
	if ok {
		t.Fatal("expected a to be invalidated")
	}
	v, ok := c.Get("b")
	if !ok || v != "2" {
		t.Fatal("expected b to remain")
	}
}

func TestInvalidateAll(t *testing.T) {
	c := New[int](time.Minute)
	c.Set("a", 1)
	c.Set("b", 2)
	c.InvalidateAll()
	_, ok := c.Get("a")
	if ok {
		t.Fatal("expected all invalidated")
	}
}

func TestConcurrentAccess(t *testing.T) {
	c := New[[]string](time.Minute)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				c.Set("k", []string{"a", "b"})
				if v, ok := c.Get("k"); ok && len(v) != 2 {
					t.Error("observed partially written entry")
					return
				}
				c.Sweep()
			}
		}()
	}
	wg.Wait()
}
