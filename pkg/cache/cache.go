// Package cache is the process-wide listing cache with TTL expiry and
// an optional JSON snapshot on disk. One Store instance is shared by
// every provider in a process; inject it explicitly rather than
// reaching for a global.
package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// DefaultTTL is how long a listing stays fresh unless configured
// otherwise.
const DefaultTTL = 300 * time.Second

// SnapshotFile is the name of the durable snapshot inside the cache
// directory.
const SnapshotFile = "content_cache.json"

// Entry is one cached listing payload. Expiry is evaluated lazily
// against InsertedAt; an expired entry is logically absent even while
// it still occupies the table.
type Entry struct {
	Payload    string    `json:"payload"`
	InsertedAt time.Time `json:"inserted_at"`
	TTLSeconds int64     `json:"ttl_seconds"`
}

// Expired reports whether the entry is past its TTL.
func (e *Entry) Expired() bool {
	return time.Since(e.InsertedAt) > time.Duration(e.TTLSeconds)*time.Second
}

// TimeLeft returns the remaining TTL, or zero when expired.
func (e *Entry) TimeLeft() time.Duration {
	left := time.Duration(e.TTLSeconds)*time.Second - time.Since(e.InsertedAt)
	if left < 0 {
		return 0
	}
	return left
}

// Key derives the cache key for a remote path. The host keeps entries
// from different archives apart.
func Key(host, path string) string {
	return fmt.Sprintf("ftp://%s:%s", host, path)
}

// LocalKey derives a cache key for a local path. The prefix is
// distinct from the remote scheme so the two namespaces never collide.
func LocalKey(path string) string {
	return "local:" + path
}

// Store is a mutex-guarded key to listing-payload table.
type Store struct {
	dir string
	ttl time.Duration

	mu      sync.RWMutex
	entries map[string]*Entry
}

// Option configures a Store.
type Option func(*Store)

// WithTTL overrides the default entry TTL. Entries persist their TTL
// with one-second granularity; sub-second values round up to a second.
func WithTTL(ttl time.Duration) Option {
	return func(s *Store) { s.ttl = ttl }
}

// New creates a Store whose snapshot lives under dir.
func New(dir string, opts ...Option) *Store {
	s := &Store{
		dir:     dir,
		ttl:     DefaultTTL,
		entries: make(map[string]*Entry),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// TTL returns the TTL applied to new entries.
func (s *Store) TTL() time.Duration { return s.ttl }

// Get returns the payload for key if present and unexpired. Expired
// entries stay in the table until CleanupExpired or Clear runs.
func (s *Store) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok || entry.Expired() {
		return "", false
	}
	return entry.Payload, true
}

// Put stores payload under key with the store TTL, replacing any
// previous entry.
func (s *Store) Put(key, payload string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Round up so a sub-second TTL is not truncated to a born-expired
	// zero.
	ttlSeconds := int64((s.ttl + time.Second - 1) / time.Second)

	s.entries[key] = &Entry{
		Payload:    payload,
		InsertedAt: time.Now(),
		TTLSeconds: ttlSeconds,
	}
}

// IsCached reports whether key is present and unexpired.
func (s *Store) IsCached(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	return ok && !entry.Expired()
}

// Info returns the insertion time and remaining TTL for key, if the
// entry is physically present (expired or not).
func (s *Store) Info(key string) (time.Time, time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entry, ok := s.entries[key]
	if !ok {
		return time.Time{}, 0, false
	}
	return entry.InsertedAt, entry.TimeLeft(), true
}

// Stats returns the number of entries in the table and how many of
// them are expired but not yet swept.
func (s *Store) Stats() (total, expired int) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	total = len(s.entries)
	for _, entry := range s.entries {
		if entry.Expired() {
			expired++
		}
	}
	return total, expired
}

// CleanupExpired removes every expired entry and returns how many were
// removed. This is the only eager sweep; nothing runs in background.
func (s *Store) CleanupExpired() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	removed := 0
	for key, entry := range s.entries {
		if entry.Expired() {
			delete(s.entries, key)
			removed++
		}
	}
	return removed
}

// Clear drops every entry.
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = make(map[string]*Entry)
}

// SaveToDisk writes the full table to the snapshot file. The write is
// atomic (temp file then rename) so a crash never leaves a truncated
// snapshot.
func (s *Store) SaveToDisk() error {
	s.mu.RLock()
	data, err := json.MarshalIndent(s.entries, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("encode cache snapshot: %w", err)
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	path := filepath.Join(s.dir, SnapshotFile)
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write cache snapshot: %w", err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("rename cache snapshot: %w", err)
	}
	return nil
}

// LoadFromDisk replaces the in-memory table with the snapshot. TTL is
// re-evaluated against each entry's original insertion time, so a
// stale snapshot does not resurrect expired listings. On any failure
// the in-memory table is left untouched; a missing snapshot is not an
// error.
func (s *Store) LoadFromDisk() error {
	path := filepath.Join(s.dir, SnapshotFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("read cache snapshot: %w", err)
	}

	loaded := make(map[string]*Entry)
	if err := json.Unmarshal(data, &loaded); err != nil {
		return fmt.Errorf("decode cache snapshot: %w", err)
	}

	s.mu.Lock()
	s.entries = loaded
	s.mu.Unlock()
	return nil
}
