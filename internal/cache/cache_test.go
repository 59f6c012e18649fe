package cache

import (
	"context"
	"fmt"
	"testing"
	"time"

	"finmodel/internal/core"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestLRUCache_EvictsLeastRecentlyUsed(t *testing.T) {
	c := NewLRUCache[int](2, 0)
	c.Set("a", 1)
	c.Set("b", 2)
	if _, ok := c.Get("a"); !ok {
		t.Fatal("expected a")
	}
	c.Set("c", 3)

	if _, ok := c.Get("b"); ok {
		t.Error("b should have been evicted")
	}
	if v, ok := c.Get("a"); !ok || v != 1 {
		t.Errorf("Get(a) = %d, %v", v, ok)
	}
	if c.Size() != 2 {
		t.Errorf("Size() = %d, want 2", c.Size())
	}
}

func TestLRUCache_Expiry(t *testing.T) {
	clock := &fakeClock{t: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	c := NewLRUCache[string](10, time.Minute)
	c.now = clock.now

	c.Set("old", "x")
	clock.advance(45 * time.Second)
	c.Set("new", "y")
	clock.advance(30 * time.Second)

	if _, ok := c.Get("old"); ok {
		t.Error("old entry should have expired")
	}
	if got := c.Values(); len(got) != 1 || got[0] != "y" {
		t.Errorf("Values() = %v", got)
	}

	clock.advance(time.Minute)
	if n := c.CleanExpired(); n != 1 {
		t.Errorf("CleanExpired() = %d, want 1", n)
	}
	if c.Size() != 0 {
		t.Errorf("Size() = %d after cleanup", c.Size())
	}
}

func TestLRUCache_SetOverwritesAndDelete(t *testing.T) {
	c := NewLRUCache[int](0, 0)
	c.Set("k", 1)
	c.Set("k", 2)
	if v, _ := c.Get("k"); v != 2 {
		t.Errorf("Get(k) = %d, want 2", v)
	}
	c.Delete("k")
	c.Delete("missing")
	if c.Size() != 0 {
		t.Errorf("Size() = %d", c.Size())
	}
}

func report(id string, at time.Time) *core.Report {
	return &core.Report{RunID: id, GeneratedAt: at}
}

func TestReportHistory(t *testing.T) {
	ctx := context.Background()
	h := NewReportHistory(3, 0)
	base := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	if _, ok := h.Latest(); ok {
		t.Fatal("empty history has no latest report")
	}
	for i := 0; i < 4; i++ {
		if err := h.Publish(ctx, report(fmt.Sprintf("run-%d", i), base.Add(time.Duration(i)*time.Minute))); err != nil {
			t.Fatal(err)
		}
	}

	if h.Len() != 3 {
		t.Fatalf("Len() = %d, want 3", h.Len())
	}
	if _, ok := h.Get("run-0"); ok {
		t.Error("run-0 should have been evicted")
	}
	latest, ok := h.Latest()
	if !ok || latest.RunID != "run-3" {
		t.Fatalf("Latest() = %v, %v", latest, ok)
	}

	// Reading an older report must not change the order.
	h.Get("run-1")
	list := h.List()
	var ids []string
	for _, r := range list {
		ids = append(ids, r.RunID)
	}
	if fmt.Sprint(ids) != "[run-3 run-2 run-1]" {
		t.Errorf("List() = %v", ids)
	}
}

func TestReportHistory_PublishCancelled(t *testing.T) {
	h := NewReportHistory(3, 0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := h.Publish(ctx, report("run", time.Now())); err == nil {
		t.Fatal("expected context error")
	}
	if h.Len() != 0 {
		t.Error("cancelled publish must not store the report")
	}
}

func TestManager_CleansRegisteredCaches(t *testing.T) {
	clock := &fakeClock{t: time.Now()}
	c := NewLRUCache[int](5, time.Second)
	c.now = clock.now
	c.Set("a", 1)
	c.Set("b", 2)
	clock.advance(2 * time.Second)

	m := NewManager(nil)
	m.Register(c)
	if n := m.CleanNow(); n != 2 {
		t.Errorf("CleanNow() = %d, want 2", n)
	}

	m.StartCleanup(10 * time.Millisecond)
	m.StartCleanup(10 * time.Millisecond)
	m.Stop()
	m.Stop()
}

func TestManager_StopWithoutStart(t *testing.T) {
	m := NewManager(nil)
	m.Stop()
}
