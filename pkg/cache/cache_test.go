package cache_test

import (
	"testing"

	"github.com/sandrolain/treepath/pkg/cache"
	"github.com/sandrolain/treepath/pkg/types"
)

func compiled(source string) *types.CompiledPath {
	return &types.CompiledPath{Source: source, Pool: types.NewValuePool(), Checked: true}
}

func TestCache_GetMissAndHit(t *testing.T) {
	c := cache.New(4)

	if _, ok := c.Get("/a"); ok {
		t.Fatal("expected miss on empty cache")
	}

	want := compiled("/a")
	c.Set("/a", want)

	got, ok := c.Get("/a")
	if !ok {
		t.Fatal("expected hit after Set")
	}
	if got != want {
		t.Errorf("got %v, want %v", got, want)
	}
}

func TestCache_SetReplacesExistingEntry(t *testing.T) {
	c := cache.New(4)
	c.Set("/a", compiled("/a"))

	replacement := compiled("/a replacement")
	c.Set("/a", replacement)

	got, ok := c.Get("/a")
	if !ok {
		t.Fatal("expected hit")
	}
	if got != replacement {
		t.Errorf("got %v, want the replacement", got)
	}
	if c.Len() != 1 {
		t.Errorf("Len() = %d, want 1 (replace must not grow the cache)", c.Len())
	}
}

func TestCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := cache.New(2)
	c.Set("/a", compiled("/a"))
	c.Set("/b", compiled("/b"))

	// Touch /a so /b becomes the least recently used entry.
	c.Get("/a")

	c.Set("/c", compiled("/c"))

	if _, ok := c.Get("/b"); ok {
		t.Error("expected /b to be evicted")
	}
	if _, ok := c.Get("/a"); !ok {
		t.Error("expected /a to survive eviction")
	}
	if _, ok := c.Get("/c"); !ok {
		t.Error("expected /c to be present")
	}
}

func TestCache_Invalidate(t *testing.T) {
	c := cache.New(4)
	c.Set("/a", compiled("/a"))
	c.Invalidate("/a")

	if _, ok := c.Get("/a"); ok {
		t.Error("expected /a to be gone after Invalidate")
	}
	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0", c.Len())
	}
}

func TestCache_Clear(t *testing.T) {
	c := cache.New(4)
	c.Set("/a", compiled("/a"))
	c.Set("/b", compiled("/b"))
	c.Clear()

	if c.Len() != 0 {
		t.Errorf("Len() = %d, want 0 after Clear", c.Len())
	}
	if _, ok := c.Get("/a"); ok {
		t.Error("expected /a to be gone after Clear")
	}
}

func TestCache_GetOrCompile(t *testing.T) {
	c := cache.New(4)
	calls := 0
	compile := func() (*types.CompiledPath, error) {
		calls++
		return compiled("/a"), nil
	}

	p1, err := c.GetOrCompile("/a", compile)
	if err != nil {
		t.Fatalf("GetOrCompile error: %v", err)
	}
	p2, err := c.GetOrCompile("/a", compile)
	if err != nil {
		t.Fatalf("GetOrCompile error: %v", err)
	}

	if p1 != p2 {
		t.Error("expected the same compiled path on both calls")
	}
	if calls != 1 {
		t.Errorf("compile called %d times, want exactly once", calls)
	}
}

func TestCache_DefaultCapacity(t *testing.T) {
	c := cache.New(0)
	if c.Capacity() != 256 {
		t.Errorf("Capacity() = %d, want the documented default of 256", c.Capacity())
	}
}
