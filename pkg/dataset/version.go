package dataset

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"
)

// ErrVersionNotFound indicates that load-path resolution failed: either
// a pinned load version does not exist, or no versions have been saved
// yet. Exists reports this condition as false instead of an error.
var ErrVersionNotFound = errors.New("dataset: version not found")

// Version selects dataset versions. Either slot may be empty: an empty
// Load resolves to the newest existing version, an empty Save generates
// a fresh timestamp token on first use.
type Version struct {
	Load string
	Save string
}

// versionLayout is the token format for generated save versions, a UTC
// timestamp whose lexicographic order matches chronological order.
const versionLayout = "2006-01-02T15.04.05.000Z"

// GenerateVersion returns a new save-version token for the current time.
func GenerateVersion() string {
	return time.Now().UTC().Format(versionLayout)
}

// baseName returns the final path segment.
func baseName(path string) string {
	if i := strings.LastIndexByte(path, '/'); i >= 0 {
		return path[i+1:]
	}
	return path
}

// versionedPath maps a version token to the concrete storage path:
// the logical path becomes a directory holding one subdirectory per
// version, each containing a file named after the original.
func (d *SVMLight) versionedPath(version string) string {
	return d.filepath + "/" + version + "/" + baseName(d.filepath)
}

// resolveLoadPath returns the concrete path a load should read. For
// versioned datasets without a pinned load version, the newest version
// whose file actually exists wins.
func (d *SVMLight) resolveLoadPath(ctx context.Context) (string, error) {
	if !d.versioned {
		return d.filepath, nil
	}
	if d.version.Load != "" {
		path := d.versionedPath(d.version.Load)
		ok, err := d.fs.Exists(ctx, path)
		if err != nil {
			return "", fmt.Errorf("dataset: resolve %s: %w", d.filepath, err)
		}
		if !ok {
			return "", fmt.Errorf("%w: %q for %s", ErrVersionNotFound, d.version.Load, d.filepath)
		}
		return path, nil
	}

	versions, err := d.listVersions(ctx)
	if err != nil {
		return "", err
	}
	if len(versions) == 0 {
		return "", fmt.Errorf("%w: no versions of %s", ErrVersionNotFound, d.filepath)
	}
	return d.versionedPath(versions[0]), nil
}

// resolveSavePath returns the concrete path a save should write. The
// auto-generated version token is cached so repeated resolution within
// one lifecycle stays stable; Release clears it.
func (d *SVMLight) resolveSavePath(ctx context.Context) (string, error) {
	if !d.versioned {
		return d.filepath, nil
	}
	version := d.version.Save
	if version == "" {
		if d.saveVersion == "" {
			d.saveVersion = GenerateVersion()
		}
		version = d.saveVersion
	}
	path := d.versionedPath(version)
	ok, err := d.fs.Exists(ctx, path)
	if err != nil {
		return "", fmt.Errorf("dataset: resolve %s: %w", d.filepath, err)
	}
	if ok {
		return "", fmt.Errorf("dataset: save path %s already exists; versioned saves never overwrite", path)
	}
	return path, nil
}

// Versions returns the existing version tokens, newest first. An
// unversioned dataset has none.
func (d *SVMLight) Versions(ctx context.Context) ([]string, error) {
	if !d.versioned {
		return nil, nil
	}
	return d.listVersions(ctx)
}

// listVersions enumerates version directories that contain the dataset
// file, sorted newest first. A missing logical directory means no
// versions have been saved yet.
func (d *SVMLight) listVersions(ctx context.Context) ([]string, error) {
	entries, err := d.fs.ListDir(ctx, d.filepath)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("dataset: resolve %s: %w", d.filepath, err)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(entries)))
	var versions []string
	for _, e := range entries {
		ok, err := d.fs.Exists(ctx, d.versionedPath(e))
		if err != nil {
			return nil, fmt.Errorf("dataset: resolve %s: %w", d.filepath, err)
		}
		if ok {
			versions = append(versions, e)
		}
	}
	return versions, nil
}
