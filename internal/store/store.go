package store

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/Edneylin/factory-efficiency-analysis/internal/pipeline"
)

// Analysis is one stored pipeline run: the dataset's identity plus the full
// result bundle. The bundle is immutable once stored.
type Analysis struct {
	ID        string           `json:"id"`
	Name      string           `json:"name"`
	Encoding  string           `json:"encoding"`
	CreatedAt time.Time        `json:"created_at"`
	Result    *pipeline.Result `json:"result"`
}

// Store is a thread-safe in-memory analysis store, keyed by analysis ID.
// A background goroutine (Run) periodically evicts entries older than the
// configured TTL.
type Store struct {
	mu   sync.RWMutex
	data map[string]*Analysis
	ttl  time.Duration
	now  func() time.Time // injectable for deterministic tests
}

// New creates a Store with the given TTL.
func New(ttl time.Duration) *Store {
	return &Store{
		data: make(map[string]*Analysis),
		ttl:  ttl,
		now:  time.Now,
	}
}

// NewID returns a fresh random analysis identifier.
func NewID() string {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		// crypto/rand never fails on supported platforms; fall back to a
		// timestamp so Put still works.
		return hex.EncodeToString([]byte(time.Now().Format("150405.000000")))
	}
	return hex.EncodeToString(b[:])
}

// Put stores a. Callers must not modify a.Result after calling Put.
func (s *Store) Put(a *Analysis) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	s.data[a.ID] = a
}

// Get returns the analysis for the given ID, if present. The entry may be
// stale if TTL has elapsed but eviction has not run yet.
func (s *Store) Get(id string) (*Analysis, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	a, ok := s.data[id]
	return a, ok
}

// List returns all analyses whose CreatedAt is within the TTL, newest first.
// Stale entries that have not yet been evicted are excluded.
func (s *Store) List() []*Analysis {
	s.mu.RLock()
	defer s.mu.RUnlock()
	cutoff := s.now().Add(-s.ttl)
	out := make([]*Analysis, 0, len(s.data))
	for _, a := range s.data {
		if a.CreatedAt.After(cutoff) {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ID < out[j].ID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Count returns the total number of entries currently held, including stale ones.
func (s *Store) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.data)
}

// TTL returns the configured retention period.
func (s *Store) TTL() time.Duration {
	return s.ttl
}

// Evict removes entries whose CreatedAt is older than now minus TTL.
// It returns the number of entries removed.
func (s *Store) Evict(now time.Time) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	cutoff := now.Add(-s.ttl)
	removed := 0
	for id, a := range s.data {
		if !a.CreatedAt.After(cutoff) {
			delete(s.data, id)
			removed++
		}
	}
	return removed
}

// Run starts the background TTL eviction loop. It ticks at half the TTL
// interval (minimum 1 second, maximum 1 minute) so entries are evicted
// promptly without busy-waiting on long retentions. Run blocks until ctx is
// cancelled.
func (s *Store) Run(ctx context.Context) {
	interval := s.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	if interval > time.Minute {
		interval = time.Minute
	}
	t := time.NewTicker(interval)
	defer t.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-t.C:
			if n := s.Evict(now); n > 0 {
				slog.Debug("store: evicted expired analyses", "count", n)
			}
		}
	}
}
