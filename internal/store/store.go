// Package store implements the bounded flag-decision cache and the
// single-entry bulk snapshot table shared by the evaluation path and the
// background refresher.
package store

import (
	"sync"
	"time"

	"github.com/flagvault/flagvault-go/internal/domain"
)

// entryOverhead approximates the fixed per-entry cost (timestamps, value,
// map bookkeeping) for the memory-usage estimate. It is not exact byte
// accounting.
const entryOverhead = 64

// Key identifies a cache entry: a flag key plus an optional subject
// identifier. Keys are case-sensitive and exact-match; two subjects never
// share an entry.
type Key struct {
	FlagKey  string
	TargetID string
}

// HasTarget reports whether the key carries a subject identifier.
func (k Key) HasTarget() bool {
	return k.TargetID != ""
}

// Entry is a cached boolean decision. Entries are value objects: a write
// replaces them rather than mutating in place, except that a background
// refresh may replace the value and extend the expiry.
type Entry struct {
	Value     bool
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Stats is a read-only snapshot of cache statistics.
type Stats struct {
	Size           int
	Hits           uint64
	Misses         uint64
	HitRate        float64
	ExpiredEntries int
	MemoryUsage    int64
}

// Snapshot holds the last full flag-definition fetch. At most one snapshot
// exists; a prefetch replaces it atomically.
type Snapshot struct {
	Flags     map[string]domain.FlagDefinition
	CreatedAt time.Time
	ExpiresAt time.Time
}

// Store is a bounded FIFO cache of flag decisions plus the bulk snapshot.
// One mutex guards both: operations are short and never perform I/O under
// the lock.
type Store struct {
	mu      sync.Mutex
	entries map[Key]Entry
	bulk    *Snapshot

	maxSize int
	ttl     time.Duration

	hits   uint64
	misses uint64
}

// New creates a store bounded to maxSize entries with the given entry TTL.
// The same TTL applies to the bulk snapshot.
func New(maxSize int, ttl time.Duration) *Store {
	return &Store{
		entries: make(map[Key]Entry),
		maxSize: maxSize,
		ttl:     ttl,
	}
}

// Get looks up a decision. An absent or expired entry is a miss; an expired
// entry stays in place (still countable as expired) until a write cycle
// removes it.
func (s *Store) Get(key Key) (Entry, bool) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok || now.After(entry.ExpiresAt) {
		s.misses++
		return Entry{}, false
	}

	s.hits++
	return entry, true
}

// Put inserts or replaces an entry with expiry now + TTL. When inserting a
// brand-new key over capacity, expired entries are swept first and then the
// single oldest-created entry is evicted, even if unexpired.
func (s *Store) Put(key Key, value bool) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.entries[key]; !exists && len(s.entries) >= s.maxSize {
		s.sweepExpiredLocked(now)
		for len(s.entries) >= s.maxSize {
			s.evictOldestLocked()
		}
	}

	s.entries[key] = Entry{
		Value:     value,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
}

// Refresh replaces an entry's value and extends its expiry from the current
// time. It is a no-op if the key is no longer present.
func (s *Store) Refresh(key Key, value bool) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	if !ok {
		return
	}

	entry.Value = value
	entry.ExpiresAt = now.Add(s.ttl)
	s.entries[key] = entry
}

// Keys returns a copy of the current cache keys, for callers that must
// release the lock before doing I/O.
func (s *Store) Keys() []Key {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := make([]Key, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}

// Clear removes all entries and drops the bulk snapshot. Cumulative hit and
// miss counters survive: statistics reflect client lifetime, not cache
// contents. Callers that want a stats reset call ResetStats explicitly.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries = make(map[Key]Entry)
	s.bulk = nil
}

// ResetStats zeroes the cumulative hit and miss counters.
func (s *Store) ResetStats() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.hits = 0
	s.misses = 0
}

// Stats computes a read-only statistics snapshot. It does not mutate state.
func (s *Store) Stats() Stats {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	expired := 0
	var memory int64
	for key, entry := range s.entries {
		if now.After(entry.ExpiresAt) {
			expired++
		}
		memory += int64(len(key.FlagKey)+len(key.TargetID)) + entryOverhead
	}

	var hitRate float64
	if total := s.hits + s.misses; total > 0 {
		hitRate = float64(s.hits) / float64(total)
	}

	return Stats{
		Size:           len(s.entries),
		Hits:           s.hits,
		Misses:         s.misses,
		HitRate:        hitRate,
		ExpiredEntries: expired,
		MemoryUsage:    memory,
	}
}

// Peek returns an entry without touching hit/miss counters and regardless of
// expiry, for debug introspection.
func (s *Store) Peek(key Key) (Entry, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry, ok := s.entries[key]
	return entry, ok
}

// SetSnapshot atomically replaces the bulk snapshot with the given
// definitions, all fetched in one remote call.
func (s *Store) SetSnapshot(flags map[string]domain.FlagDefinition) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	s.bulk = &Snapshot{
		Flags:     flags,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
}

// SnapshotLookup finds a definition in the bulk snapshot. It misses when no
// snapshot exists, the snapshot has expired, or the key is absent.
func (s *Store) SnapshotLookup(flagKey string) (domain.FlagDefinition, bool) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bulk == nil || now.After(s.bulk.ExpiresAt) {
		return domain.FlagDefinition{}, false
	}

	def, ok := s.bulk.Flags[flagKey]
	return def, ok
}

// SnapshotFresh reports whether an unexpired bulk snapshot exists.
func (s *Store) SnapshotFresh() bool {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.bulk != nil && !now.After(s.bulk.ExpiresAt)
}

// SnapshotFlags returns a copy of the current snapshot's definitions, or nil
// when no unexpired snapshot exists.
func (s *Store) SnapshotFlags() map[string]domain.FlagDefinition {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.bulk == nil || now.After(s.bulk.ExpiresAt) {
		return nil
	}

	flags := make(map[string]domain.FlagDefinition, len(s.bulk.Flags))
	for k, v := range s.bulk.Flags {
		flags[k] = v
	}
	return flags
}

func (s *Store) sweepExpiredLocked(now time.Time) {
	for key, entry := range s.entries {
		if now.After(entry.ExpiresAt) {
			delete(s.entries, key)
		}
	}
}

func (s *Store) evictOldestLocked() {
	var oldest Key
	var oldestAt time.Time
	first := true

	for key, entry := range s.entries {
		if first || entry.CreatedAt.Before(oldestAt) {
			oldest = key
			oldestAt = entry.CreatedAt
			first = false
		}
	}

	if !first {
		delete(s.entries, oldest)
	}
}
