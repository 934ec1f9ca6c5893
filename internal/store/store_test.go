package store

import (
	"sync"
	"testing"
	"time"

	"github.com/Edneylin/factory-efficiency-analysis/internal/pipeline"
)

func analysis(id, name string) *Analysis {
	return &Analysis{ID: id, Name: name, Encoding: "utf-8", Result: &pipeline.Result{}}
}

// fixedClock returns a func() time.Time that always returns t.
func fixedClock(t time.Time) func() time.Time { return func() time.Time { return t } }

func TestPutAndGet(t *testing.T) {
	st := New(5 * time.Minute)
	st.Put(analysis("a1", "line-3.csv"))

	a, ok := st.Get("a1")
	if !ok {
		t.Fatal("Get: expected entry, got none")
	}
	if a.Name != "line-3.csv" {
		t.Errorf("Name: got %q, want line-3.csv", a.Name)
	}
	if a.CreatedAt.IsZero() {
		t.Error("CreatedAt: expected Put to stamp it")
	}
}

func TestGet_Missing(t *testing.T) {
	st := New(5 * time.Minute)
	_, ok := st.Get("unknown")
	if ok {
		t.Fatal("Get on empty store: expected false, got true")
	}
}

func TestPut_Overwrites(t *testing.T) {
	st := New(5 * time.Minute)
	st.Put(analysis("a1", "first.csv"))
	st.Put(analysis("a1", "second.csv"))

	a, ok := st.Get("a1")
	if !ok {
		t.Fatal("Get: expected entry after two Puts")
	}
	if a.Name != "second.csv" {
		t.Errorf("Name: got %q, want second.csv", a.Name)
	}
}

func TestList_NewestFirst(t *testing.T) {
	base := time.Now()
	st := New(time.Hour)

	st.now = fixedClock(base.Add(-2 * time.Minute))
	st.Put(analysis("oldest", "a.csv"))

	st.now = fixedClock(base)
	st.Put(analysis("newest", "b.csv"))

	st.now = fixedClock(base.Add(-time.Minute))
	st.Put(analysis("middle", "c.csv"))

	st.now = fixedClock(base)
	got := st.List()
	if len(got) != 3 {
		t.Fatalf("List: got %d entries, want 3", len(got))
	}
	want := []string{"newest", "middle", "oldest"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("List[%d].ID: got %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestList_ExcludesStale(t *testing.T) {
	base := time.Now()
	st := New(5 * time.Minute)

	st.now = fixedClock(base.Add(-10 * time.Minute)) // stale
	st.Put(analysis("old", "old.csv"))

	st.now = fixedClock(base) // live
	st.Put(analysis("new", "new.csv"))

	st.now = fixedClock(base)
	got := st.List()

	if len(got) != 1 {
		t.Fatalf("List: got %d entries, want 1", len(got))
	}
	if got[0].ID != "new" {
		t.Errorf("List[0].ID: got %q, want new", got[0].ID)
	}
}

func TestCount_IncludesStale(t *testing.T) {
	base := time.Now()
	st := New(5 * time.Minute)

	st.now = fixedClock(base.Add(-10 * time.Minute))
	st.Put(analysis("old", "old.csv"))

	st.now = fixedClock(base)
	st.Put(analysis("new", "new.csv"))

	if n := st.Count(); n != 2 {
		t.Errorf("Count: got %d, want 2", n)
	}
}

func TestEvict_RemovesStale(t *testing.T) {
	base := time.Now()
	st := New(5 * time.Minute)

	st.now = fixedClock(base.Add(-10 * time.Minute))
	st.Put(analysis("old1", "a.csv"))
	st.Put(analysis("old2", "b.csv"))

	st.now = fixedClock(base)
	st.Put(analysis("live", "c.csv"))

	removed := st.Evict(base)
	if removed != 2 {
		t.Errorf("Evict: removed %d, want 2", removed)
	}
	if st.Count() != 1 {
		t.Errorf("Count after evict: got %d, want 1", st.Count())
	}
}

func TestEvict_NoOp_AllLive(t *testing.T) {
	base := time.Now()
	st := New(5 * time.Minute)

	st.now = fixedClock(base)
	st.Put(analysis("a1", "a.csv"))

	removed := st.Evict(base)
	if removed != 0 {
		t.Errorf("Evict on live entry: removed %d, want 0", removed)
	}
}

func TestNewID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		id := NewID()
		if len(id) != 16 {
			t.Fatalf("NewID: got %q, want 16 hex chars", id)
		}
		if seen[id] {
			t.Fatalf("NewID: duplicate %q", id)
		}
		seen[id] = true
	}
}

func TestConcurrentPuts(t *testing.T) {
	st := New(5 * time.Minute)
	var wg sync.WaitGroup

	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			st.Put(analysis("same", "x.csv"))
		}()
	}
	wg.Wait()

	if st.Count() != 1 {
		t.Errorf("Count after concurrent puts: got %d, want 1", st.Count())
	}
}

func TestConcurrentMixedOps(t *testing.T) {
	st := New(5 * time.Minute)
	var wg sync.WaitGroup

	for i := 0; i < 50; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			st.Put(analysis("a", "a.csv"))
		}()
		go func() {
			defer wg.Done()
			st.List()
		}()
	}
	wg.Wait()
}
