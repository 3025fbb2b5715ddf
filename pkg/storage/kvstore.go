package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"github.com/haivivi/dset/pkg/kv"
)

// Key namespaces inside the kv store. Blob bytes and blob metadata are
// stored under separate prefixes so a prefix listing of blobs never
// touches metadata entries.
const (
	kvBlobPrefix = "blob/"
	kvMetaPrefix = "meta/"
)

// KVStore implements FileStore on top of a [kv.Store], storing each file
// as a single blob plus a msgpack-encoded metadata record. It backs the
// "badger" and "memory" protocols.
type KVStore struct {
	store kv.Store
}

// BlobMeta describes a stored blob.
type BlobMeta struct {
	Size    int64     `msgpack:"size"`
	ModTime time.Time `msgpack:"mtime"`
}

// NewKV creates a FileStore over an existing kv.Store.
func NewKV(store kv.Store) *KVStore {
	return &KVStore{store: store}
}

func init() {
	Register("badger", func(_, args map[string]any) (FileStore, error) {
		dir, err := popString(args, "dir", "")
		if err != nil {
			return nil, err
		}
		inMemory, err := popBool(args, "in_memory", false)
		if err != nil {
			return nil, err
		}
		s, err := kv.NewBadger(kv.BadgerOptions{Dir: dir, InMemory: inMemory})
		if err != nil {
			return nil, err
		}
		return NewKV(s), nil
	})
	Register("memory", func(_, _ map[string]any) (FileStore, error) {
		return NewKV(kv.NewMemory()), nil
	})
}

func normalize(path string) string {
	return strings.Trim(path, "/")
}

// Read opens the named blob for reading.
func (s *KVStore) Read(ctx context.Context, path string, opts OpenOptions) (io.ReadCloser, error) {
	if err := readMode(opts); err != nil {
		return nil, err
	}
	data, err := s.store.Get(ctx, kvBlobPrefix+normalize(path))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return nil, fmt.Errorf("storage: read %s: %w", path, os.ErrNotExist)
		}
		return nil, err
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

// Write buffers the blob in memory and commits it on Close, together
// with its metadata record. ModeAppend extends any existing blob.
func (s *KVStore) Write(ctx context.Context, path string, opts OpenOptions) (io.WriteCloser, error) {
	appendTo, err := writeMode(opts)
	if err != nil {
		return nil, err
	}
	w := &kvWriter{ctx: ctx, store: s.store, path: normalize(path)}
	if appendTo {
		existing, err := s.store.Get(ctx, kvBlobPrefix+w.path)
		if err != nil && !errors.Is(err, kv.ErrNotFound) {
			return nil, err
		}
		w.buf.Write(existing)
	}
	return w, nil
}

// Delete removes the blob and its metadata. Absent blobs are not an error.
func (s *KVStore) Delete(ctx context.Context, path string) error {
	p := normalize(path)
	if err := s.store.Delete(ctx, kvBlobPrefix+p); err != nil {
		return err
	}
	return s.store.Delete(ctx, kvMetaPrefix+p)
}

// Exists reports whether the named blob exists.
func (s *KVStore) Exists(ctx context.Context, path string) (bool, error) {
	return s.store.Has(ctx, kvBlobPrefix+normalize(path))
}

// Meta returns the metadata record for the named blob.
func (s *KVStore) Meta(ctx context.Context, path string) (BlobMeta, error) {
	raw, err := s.store.Get(ctx, kvMetaPrefix+normalize(path))
	if err != nil {
		if errors.Is(err, kv.ErrNotFound) {
			return BlobMeta{}, fmt.Errorf("storage: meta %s: %w", path, os.ErrNotExist)
		}
		return BlobMeta{}, err
	}
	var m BlobMeta
	if err := msgpack.Unmarshal(raw, &m); err != nil {
		return BlobMeta{}, fmt.Errorf("storage: meta %s: %w", path, err)
	}
	return m, nil
}

// ListDir returns the distinct first path segments under the prefix.
func (s *KVStore) ListDir(ctx context.Context, path string) ([]string, error) {
	prefix := kvBlobPrefix + normalize(path) + "/"
	keys, err := s.store.List(ctx, prefix)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	for _, k := range keys {
		rest := strings.TrimPrefix(k, prefix)
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[:i]
		}
		if rest != "" {
			seen[rest] = true
		}
	}
	names := make([]string, 0, len(seen))
	for n := range seen {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

// InvalidateCache is a no-op: the kv store is always authoritative.
func (s *KVStore) InvalidateCache(string) {}

// Close closes the underlying kv store.
func (s *KVStore) Close() error { return s.store.Close() }

// kvWriter accumulates blob bytes and commits them atomically on Close.
type kvWriter struct {
	ctx    context.Context
	store  kv.Store
	path   string
	buf    bytes.Buffer
	closed bool
}

func (w *kvWriter) Write(p []byte) (int, error) {
	if w.closed {
		return 0, errors.New("storage: write on closed writer")
	}
	return w.buf.Write(p)
}

func (w *kvWriter) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true
	data := w.buf.Bytes()
	if err := w.store.Set(w.ctx, kvBlobPrefix+w.path, data); err != nil {
		return err
	}
	meta, err := msgpack.Marshal(BlobMeta{Size: int64(len(data)), ModTime: time.Now().UTC()})
	if err != nil {
		return err
	}
	return w.store.Set(w.ctx, kvMetaPrefix+w.path, meta)
}

var _ FileStore = (*KVStore)(nil)
