package cache

import (
	"testing"
	"time"
)

type fakeClock struct{ t time.Time }

func (f *fakeClock) now() time.Time          { return f.t }
func (f *fakeClock) advance(d time.Duration) { f.t = f.t.Add(d) }

func TestLRUCacheExpiresAfterTTL(t *testing.T) {
	clk := &fakeClock{t: time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)}
	c := NewLRUCacheWithClock[int](4, time.Minute, clk.now)

	c.Set("PLTR", 30)
	if v, ok := c.Get("PLTR"); !ok || v != 30 {
		t.Fatalf("expected hit, got %v %v", v, ok)
	}

	clk.advance(59 * time.Second)
	if _, ok := c.Get("PLTR"); !ok {
		t.Fatal("expected hit before ttl")
	}

	clk.advance(time.Second)
	if _, ok := c.Get("PLTR"); ok {
		t.Fatal("expected miss at ttl")
	}
	if c.Size() != 0 {
		t.Fatalf("expired entry not removed, size=%d", c.Size())
	}
}

func TestLRUCacheEvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[string](2, time.Hour)
	c.Set("a", "1")
	c.Set("b", "2")
	c.Get("a") // b is now oldest
	c.Set("c", "3")

	if _, ok := c.Get("b"); ok {
		t.Fatal("expected b to be evicted")
	}
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a to survive")
	}
	if c.Size() != 2 {
		t.Fatalf("expected size 2, got %d", c.Size())
	}
}

func TestLRUCacheOverwriteAndDelete(t *testing.T) {
	c := NewLRUCache[int](2, time.Hour)
	c.Set("k", 1)
	c.Set("k", 2)
	if v, _ := c.Get("k"); v != 2 {
		t.Fatalf("expected overwritten value, got %d", v)
	}
	c.Delete("k")
	if _, ok := c.Get("k"); ok {
		t.Fatal("expected miss after delete")
	}
	c.Delete("missing")
}
