package storage

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
)

// Local implements FileStore on top of the local filesystem.
// Paths are used as given (absolute, or relative to the working
// directory), translated from forward slashes for the host OS.
type Local struct {
	autoMkdir bool
}

// NewLocal creates a local-disk store. When autoMkdir is set, Write
// creates missing parent directories.
func NewLocal(autoMkdir bool) *Local {
	return &Local{autoMkdir: autoMkdir}
}

func init() {
	Register("file", func(_, args map[string]any) (FileStore, error) {
		autoMkdir, err := popBool(args, "auto_mkdir", false)
		if err != nil {
			return nil, err
		}
		return NewLocal(autoMkdir), nil
	})
}

// Read opens the named file for reading.
func (l *Local) Read(_ context.Context, path string, opts OpenOptions) (io.ReadCloser, error) {
	if err := readMode(opts); err != nil {
		return nil, err
	}
	return os.Open(filepath.FromSlash(path))
}

// Write opens the named file for writing, creating parent directories
// first when auto-mkdir is enabled.
func (l *Local) Write(_ context.Context, path string, opts OpenOptions) (io.WriteCloser, error) {
	appendTo, err := writeMode(opts)
	if err != nil {
		return nil, err
	}
	full := filepath.FromSlash(path)
	if l.autoMkdir {
		if dir := filepath.Dir(full); dir != "." {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, err
			}
		}
	}
	flag := os.O_WRONLY | os.O_CREATE | os.O_TRUNC
	if appendTo {
		flag = os.O_WRONLY | os.O_CREATE | os.O_APPEND
	}
	return os.OpenFile(full, flag, 0o644)
}

// Delete removes the named file. Deleting an absent file returns nil.
func (l *Local) Delete(_ context.Context, path string) error {
	err := os.Remove(filepath.FromSlash(path))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

// Exists reports whether the named file exists.
func (l *Local) Exists(_ context.Context, path string) (bool, error) {
	_, err := os.Stat(filepath.FromSlash(path))
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

// ListDir returns the sorted names of the directory's children.
func (l *Local) ListDir(_ context.Context, path string) ([]string, error) {
	entries, err := os.ReadDir(filepath.FromSlash(path))
	if err != nil {
		return nil, err
	}
	names := make([]string, len(entries))
	for i, e := range entries {
		names[i] = e.Name()
	}
	return names, nil
}

// InvalidateCache is a no-op: the local store keeps no metadata cache.
func (l *Local) InvalidateCache(string) {}

var _ FileStore = (*Local)(nil)
