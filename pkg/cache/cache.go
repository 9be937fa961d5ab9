// Package cache stores computed rows per crate so that unchanged crates are
// not re-analysed. Entries live on disk as msgpack files, fronted by a small
// in-memory LRU.
package cache

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/vmihailenco/msgpack/v5"

	"github.com/l3aro/go-nll-facts/pkg/metrics"
)

// ErrMiss is returned when no entry exists for a key.
var ErrMiss = errors.New("cache miss")

// formatVersion changes whenever the Entry layout or row semantics change.
const formatVersion = 2

// Entry is the on-disk record for one crate.
type Entry struct {
	Version   int           `msgpack:"version"`
	Crate     string        `msgpack:"crate"`
	CreatedAt time.Time     `msgpack:"created_at"`
	Rows      []metrics.Row `msgpack:"rows"`

	// FunctionsSkipped counts the functions that produced no row.
	FunctionsSkipped int `msgpack:"functions_skipped"`
}

// Options configures the cache.
type Options struct {
	// Dir holds one file per entry. It is created on first write.
	Dir string

	// MemoryEntries is the number of entries kept in memory.
	// 0 means 64.
	MemoryEntries int
}

// Stats represents cache statistics
type Stats struct {
	Hits   int64
	Misses int64
	Writes int64
}

// RowCache maps crate fingerprints to their rows.
type RowCache struct {
	dir string
	mem *lru.Cache[string, Entry]

	mu    sync.Mutex
	stats Stats
}

// New creates a RowCache with the given options.
func New(opts Options) (*RowCache, error) {
	if opts.Dir == "" {
		return nil, fmt.Errorf("cache directory is required")
	}
	size := opts.MemoryEntries
	if size <= 0 {
		size = 64
	}
	mem, err := lru.New[string, Entry](size)
	if err != nil {
		return nil, fmt.Errorf("creating memory cache: %w", err)
	}
	return &RowCache{dir: opts.Dir, mem: mem}, nil
}

func (c *RowCache) path(key string) string {
	return filepath.Join(c.dir, key+".msgpack")
}

// Get returns the entry stored under key, or ErrMiss.
func (c *RowCache) Get(key string) (Entry, error) {
	if e, ok := c.mem.Get(key); ok {
		c.count(func(s *Stats) { s.Hits++ })
		return e, nil
	}

	data, err := os.ReadFile(c.path(key))
	if err != nil {
		if os.IsNotExist(err) {
			c.count(func(s *Stats) { s.Misses++ })
			return Entry{}, ErrMiss
		}
		return Entry{}, fmt.Errorf("reading cache entry: %w", err)
	}

	var e Entry
	if err := msgpack.Unmarshal(data, &e); err != nil {
		return Entry{}, fmt.Errorf("failed to decode cache entry %s: %w", key, err)
	}
	if e.Version != formatVersion {
		c.count(func(s *Stats) { s.Misses++ })
		return Entry{}, ErrMiss
	}

	c.mem.Add(key, e)
	c.count(func(s *Stats) { s.Hits++ })
	return e, nil
}

// Put stores e under key, stamping its version and creation time. The file
// is written to a temporary name and renamed so that readers never see a
// partial entry.
func (c *RowCache) Put(key string, e Entry) error {
	e.Version = formatVersion
	e.CreatedAt = time.Now().UTC()
	data, err := msgpack.Marshal(&e)
	if err != nil {
		return fmt.Errorf("failed to encode cache entry: %w", err)
	}

	if err := os.MkdirAll(c.dir, 0755); err != nil {
		return fmt.Errorf("failed to create cache directory %s: %w", c.dir, err)
	}
	tmp, err := os.CreateTemp(c.dir, key+".*.tmp")
	if err != nil {
		return fmt.Errorf("creating cache file: %w", err)
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("writing cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("closing cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), c.path(key)); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("committing cache file: %w", err)
	}

	c.mem.Add(key, e)
	c.count(func(s *Stats) { s.Writes++ })
	return nil
}

// Stats returns a snapshot of hit and miss counters.
func (c *RowCache) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stats
}

func (c *RowCache) count(f func(*Stats)) {
	c.mu.Lock()
	f(&c.stats)
	c.mu.Unlock()
}
