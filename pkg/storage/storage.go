// Package storage defines the FileStore interface for reading and writing
// files. It abstracts the underlying storage backend so that callers can
// swap between local disk, S3-compatible object stores, or key-value
// backed stores without changing application code.
//
// Backends are constructed by protocol name through [Open], mirroring the
// scheme prefix of a dataset filepath ("file", "s3", "badger", "memory").
// Remote backends are wrapped in a metadata cache whose entries are
// dropped explicitly via [FileStore.InvalidateCache].
package storage

import (
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
)

// Open mode strings, following the binary open-mode convention of the
// tools this package interoperates with.
const (
	ModeRead   = "rb"
	ModeWrite  = "wb"
	ModeAppend = "ab"
)

// OpenOptions carries per-open settings. The zero value means "backend
// default mode" (read for Read, write for Write).
type OpenOptions struct {
	// Mode is one of ModeRead, ModeWrite, ModeAppend. Read calls accept
	// only ModeRead; Write calls accept ModeWrite and ModeAppend.
	Mode string

	// Extra holds backend-specific settings that are not interpreted by
	// this package.
	Extra map[string]any
}

// OptionsFromMap builds OpenOptions from a loosely typed map, as found
// in catalog files. The "mode" key is extracted; everything else lands
// in Extra.
func OptionsFromMap(m map[string]any) (OpenOptions, error) {
	var o OpenOptions
	for k, v := range m {
		if k == "mode" {
			s, ok := v.(string)
			if !ok {
				return OpenOptions{}, fmt.Errorf("storage: mode must be a string, got %T", v)
			}
			o.Mode = s
			continue
		}
		if o.Extra == nil {
			o.Extra = make(map[string]any)
		}
		o.Extra[k] = v
	}
	return o, nil
}

// mode returns the configured mode, or def when unset.
func (o OpenOptions) mode(def string) string {
	if o.Mode == "" {
		return def
	}
	return o.Mode
}

// FileStore is the interface for file-oriented storage.
//
// Paths are forward-slash separated. Implementations must be safe for
// concurrent use.
type FileStore interface {
	// Read opens the named file for reading. The caller must close the
	// returned ReadCloser. If the file does not exist, an error wrapping
	// os.ErrNotExist is returned.
	Read(ctx context.Context, path string, opts OpenOptions) (io.ReadCloser, error)

	// Write opens the named file for writing. ModeWrite truncates any
	// existing file; ModeAppend extends it where the backend supports
	// appends. The caller must close the returned WriteCloser to flush.
	Write(ctx context.Context, path string, opts OpenOptions) (io.WriteCloser, error)

	// Delete removes the named file. Deleting an absent file is not an
	// error (idempotent).
	Delete(ctx context.Context, path string) error

	// Exists reports whether the named file exists.
	Exists(ctx context.Context, path string) (bool, error)

	// ListDir returns the names (not full paths) of the immediate
	// children of the named directory, sorted ascending. A missing
	// directory yields an error wrapping os.ErrNotExist on backends
	// with real directories, or an empty list on object stores.
	ListDir(ctx context.Context, path string) ([]string, error)

	// InvalidateCache drops any cached metadata for the path and
	// everything beneath it. A no-op for backends without a cache.
	InvalidateCache(path string)
}

// Factory constructs a FileStore from a credentials map and backend
// constructor arguments.
type Factory func(credentials, args map[string]any) (FileStore, error)

var (
	registryMu sync.RWMutex
	registry   = make(map[string]Factory)
)

// Register makes a backend available under a protocol name. Backends
// shipped with this package register themselves; third-party backends
// can do the same from an init function.
func Register(protocol string, f Factory) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[protocol] = f
}

// Open constructs the FileStore for a protocol name.
//
// The reserved arg "cache" (bool) controls the metadata cache wrapper:
// remote protocols are wrapped by default, local ones are not. All other
// args pass through to the backend factory.
func Open(protocol string, credentials, args map[string]any) (FileStore, error) {
	registryMu.RLock()
	f, ok := registry[protocol]
	registryMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("storage: unknown protocol %q", protocol)
	}

	rest := make(map[string]any, len(args))
	for k, v := range args {
		rest[k] = v
	}
	useCache, err := popBool(rest, "cache", protocol == "s3")
	if err != nil {
		return nil, err
	}

	fs, err := f(credentials, rest)
	if err != nil {
		return nil, err
	}
	if useCache {
		fs = NewCached(fs)
	}
	return fs, nil
}

// Protocols returns the registered protocol names, sorted.
func Protocols() []string {
	registryMu.RLock()
	defer registryMu.RUnlock()
	names := make([]string, 0, len(registry))
	for p := range registry {
		names = append(names, p)
	}
	sort.Strings(names)
	return names
}

func popBool(args map[string]any, key string, def bool) (bool, error) {
	v, ok := args[key]
	if !ok {
		return def, nil
	}
	delete(args, key)
	b, ok := v.(bool)
	if !ok {
		return false, fmt.Errorf("storage: arg %q must be a bool, got %T", key, v)
	}
	return b, nil
}

func popString(args map[string]any, key, def string) (string, error) {
	v, ok := args[key]
	if !ok {
		return def, nil
	}
	delete(args, key)
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("storage: arg %q must be a string, got %T", key, v)
	}
	return s, nil
}

// readMode validates an open mode for a Read call.
func readMode(o OpenOptions) error {
	if m := o.mode(ModeRead); m != ModeRead {
		return fmt.Errorf("storage: invalid read mode %q", m)
	}
	return nil
}

// writeMode validates an open mode for a Write call and reports whether
// it requests an append.
func writeMode(o OpenOptions) (appendTo bool, err error) {
	switch m := o.mode(ModeWrite); m {
	case ModeWrite:
		return false, nil
	case ModeAppend:
		return true, nil
	default:
		return false, fmt.Errorf("storage: invalid write mode %q", m)
	}
}

// parentDirs yields the ancestor directories of a path, nearest first:
// "a/b/c" yields "a/b", then "a".
func parentDirs(path string) []string {
	var out []string
	for {
		i := strings.LastIndexByte(path, '/')
		if i < 0 {
			return out
		}
		path = path[:i]
		out = append(out, path)
	}
}
