package storage

import (
	"context"
	"io"
	"strings"
	"sync"
)

// Cached wraps a FileStore with a metadata cache for Exists and ListDir
// results, cutting round trips on remote backends where every existence
// check is a network call. Data reads and writes pass through untouched.
//
// The cache has no expiry: entries live until [Cached.InvalidateCache]
// drops them. Callers that write through the underlying store must
// invalidate the written path to observe their own writes.
type Cached struct {
	fs FileStore

	mu     sync.Mutex
	exists map[string]bool
	lists  map[string][]string
}

// NewCached wraps fs with a metadata cache.
func NewCached(fs FileStore) *Cached {
	return &Cached{
		fs:     fs,
		exists: make(map[string]bool),
		lists:  make(map[string][]string),
	}
}

// Read passes through to the underlying store.
func (c *Cached) Read(ctx context.Context, path string, opts OpenOptions) (io.ReadCloser, error) {
	return c.fs.Read(ctx, path, opts)
}

// Write passes through to the underlying store. The written path is not
// invalidated implicitly; see the type comment.
func (c *Cached) Write(ctx context.Context, path string, opts OpenOptions) (io.WriteCloser, error) {
	return c.fs.Write(ctx, path, opts)
}

// Delete passes through and invalidates the deleted path.
func (c *Cached) Delete(ctx context.Context, path string) error {
	if err := c.fs.Delete(ctx, path); err != nil {
		return err
	}
	c.InvalidateCache(path)
	return nil
}

// Exists returns the cached result when present, querying the underlying
// store otherwise. Errors are never cached.
func (c *Cached) Exists(ctx context.Context, path string) (bool, error) {
	c.mu.Lock()
	ok, hit := c.exists[path]
	c.mu.Unlock()
	if hit {
		return ok, nil
	}
	ok, err := c.fs.Exists(ctx, path)
	if err != nil {
		return false, err
	}
	c.mu.Lock()
	c.exists[path] = ok
	c.mu.Unlock()
	return ok, nil
}

// ListDir returns the cached listing when present.
func (c *Cached) ListDir(ctx context.Context, path string) ([]string, error) {
	c.mu.Lock()
	names, hit := c.lists[path]
	c.mu.Unlock()
	if hit {
		return append([]string(nil), names...), nil
	}
	names, err := c.fs.ListDir(ctx, path)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.lists[path] = append([]string(nil), names...)
	c.mu.Unlock()
	return names, nil
}

// InvalidateCache drops cached entries for the path, everything beneath
// it, and the listings of its ancestors (whose contents may have
// changed). An empty path clears the whole cache. The underlying
// store's own invalidation hook runs as well.
func (c *Cached) InvalidateCache(path string) {
	c.mu.Lock()
	if path == "" {
		clear(c.exists)
		clear(c.lists)
	} else {
		prefix := path + "/"
		for k := range c.exists {
			if k == path || strings.HasPrefix(k, prefix) {
				delete(c.exists, k)
			}
		}
		for k := range c.lists {
			if k == path || strings.HasPrefix(k, prefix) {
				delete(c.lists, k)
			}
		}
		for _, parent := range parentDirs(path) {
			delete(c.lists, parent)
		}
	}
	c.mu.Unlock()
	c.fs.InvalidateCache(path)
}

var _ FileStore = (*Cached)(nil)
