package explore

import (
	"os"
	"sync"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/ezoic/carprice/dataset"
	"github.com/ezoic/carprice/pkg/errors"
)

type cachedTable struct {
	modTime time.Time
	size    int64
	table   *dataset.Table
}

// TableCache keeps loaded tables by path, reloading when the file's
// modification time or size changes. Missing files are not cached.
// Callers must not modify returned tables.
type TableCache struct {
	mu  sync.Mutex
	lru *lru.Cache[string, cachedTable]
}

// NewTableCache creates a cache holding at most size tables.
func NewTableCache(size int) (*TableCache, error) {
	c, err := lru.New[string, cachedTable](size)
	if err != nil {
		return nil, errors.NewValidationError("cache size", "must be positive", size)
	}
	return &TableCache{lru: c}, nil
}

// Get returns the table at path as LoadOrEmpty would.
func (c *TableCache) Get(path string) (*dataset.Table, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	info, err := os.Stat(path)
	if err != nil {
		c.lru.Remove(path)
		return LoadOrEmpty(path)
	}
	if e, ok := c.lru.Get(path); ok && e.modTime.Equal(info.ModTime()) && e.size == info.Size() {
		return e.table, nil
	}
	t, err := LoadOrEmpty(path)
	if err != nil {
		return nil, err
	}
	c.lru.Add(path, cachedTable{modTime: info.ModTime(), size: info.Size(), table: t})
	return t, nil
}

// Invalidate drops the entry for path.
func (c *TableCache) Invalidate(path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lru.Remove(path)
}

// Len returns the number of cached tables.
func (c *TableCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lru.Len()
}
