// Package dataset provides load/save adapters for tabular feature data
// over pluggable storage. An adapter composes three pieces: a versioned
// path resolver, a [storage.FileStore] selected by the filepath's
// protocol prefix, and a codec for the on-disk format.
//
// The SVMLight adapter reads and writes the svmlight/libsvm text format.
// A filepath like "s3://bucket/data/train.svm" selects the s3 backend;
// a bare path uses local disk. With versioning enabled, every save lands
// in a fresh timestamped location under the logical path and loads
// resolve to the newest version by default:
//
//	data/train.svm/2026-08-31T12.00.00.000Z/train.svm
package dataset

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/haivivi/dset/pkg/sparse"
	"github.com/haivivi/dset/pkg/storage"
	"github.com/haivivi/dset/pkg/svmlight"
)

// Reserved fs_args keys holding per-open options rather than backend
// constructor arguments.
const (
	openArgsLoadKey = "open_args_load"
	openArgsSaveKey = "open_args_save"
)

// Spec configures an adapter. Filepath is required; everything else is
// optional.
type Spec struct {
	// Filepath locates the dataset, POSIX style, optionally prefixed
	// with a protocol like "s3://". Without a prefix the local "file"
	// protocol is used.
	Filepath string

	// LoadArgs are passed verbatim to the codec's decoder.
	LoadArgs svmlight.DecodeOptions

	// SaveArgs are passed verbatim to the codec's encoder.
	SaveArgs svmlight.EncodeOptions

	// Version enables versioned resolution. A nil Version means the
	// filepath is used as-is for both load and save.
	Version *Version

	// Credentials are handed to the storage backend constructor.
	Credentials map[string]any

	// FSArgs are extra storage constructor arguments. The reserved keys
	// "open_args_load" and "open_args_save" are extracted and merged
	// over the default open modes ("rb" for load, "wb" for save);
	// everything else passes through to the backend.
	FSArgs map[string]any

	// Metadata is stored opaquely and never interpreted.
	Metadata map[string]any
}

// SVMLight loads and saves (features, labels) pairs in svmlight format.
//
// The adapter itself holds no locks; concurrent use relies on the
// underlying FileStore's guarantees. The one mutable field is the cached
// auto-generated save version, cleared by Release.
type SVMLight struct {
	filepath  string // bare path, protocol stripped
	protocol  string
	fs        storage.FileStore
	loadArgs  svmlight.DecodeOptions
	saveArgs  svmlight.EncodeOptions
	openLoad  storage.OpenOptions
	openSave  storage.OpenOptions
	version   Version
	versioned bool
	metadata  map[string]any

	saveVersion string
}

// NewSVMLight constructs an adapter from a Spec. The storage backend is
// built once, here; construction fails if the protocol is unknown or
// the backend rejects its arguments.
func NewSVMLight(spec Spec) (*SVMLight, error) {
	protocol, path, err := splitProtocol(spec.Filepath)
	if err != nil {
		return nil, err
	}

	fsArgs := make(map[string]any, len(spec.FSArgs))
	for k, v := range spec.FSArgs {
		fsArgs[k] = v
	}
	loadMap, err := popArgsMap(fsArgs, openArgsLoadKey)
	if err != nil {
		return nil, err
	}
	saveMap, err := popArgsMap(fsArgs, openArgsSaveKey)
	if err != nil {
		return nil, err
	}
	if protocol == "file" {
		if _, ok := fsArgs["auto_mkdir"]; !ok {
			fsArgs["auto_mkdir"] = true
		}
	}

	fs, err := storage.Open(protocol, spec.Credentials, fsArgs)
	if err != nil {
		return nil, fmt.Errorf("dataset: %s: %w", spec.Filepath, err)
	}

	openLoad, err := mergeOpenArgs(map[string]any{"mode": storage.ModeRead}, loadMap)
	if err != nil {
		return nil, err
	}
	openSave, err := mergeOpenArgs(map[string]any{"mode": storage.ModeWrite}, saveMap)
	if err != nil {
		return nil, err
	}

	d := &SVMLight{
		filepath: path,
		protocol: protocol,
		fs:       fs,
		loadArgs: spec.LoadArgs,
		saveArgs: spec.SaveArgs,
		openLoad: openLoad,
		openSave: openSave,
		metadata: spec.Metadata,
	}
	if spec.Version != nil {
		d.versioned = true
		d.version = *spec.Version
	}
	return d, nil
}

// Load resolves the current load path, opens it, and decodes the
// features and labels. The stream is closed on every exit path.
func (d *SVMLight) Load(ctx context.Context) (*sparse.CSR, []float64, error) {
	path, err := d.resolveLoadPath(ctx)
	if err != nil {
		return nil, nil, err
	}
	r, err := d.fs.Read(ctx, path, d.openLoad)
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: load %s: %w", path, err)
	}
	defer r.Close()
	m, labels, err := svmlight.Decode(r, d.loadArgs)
	if err != nil {
		return nil, nil, fmt.Errorf("dataset: load %s: %w", path, err)
	}
	return m, labels, nil
}

// Save encodes the features and labels to the current save path, then
// invalidates the storage cache for the logical path so subsequent
// Exists and Load calls observe the new file. A failed save gives no
// transactional guarantee; a partial file may remain.
func (d *SVMLight) Save(ctx context.Context, features sparse.Matrix, labels []float64) error {
	path, err := d.resolveSavePath(ctx)
	if err != nil {
		return err
	}
	w, err := d.fs.Write(ctx, path, d.openSave)
	if err != nil {
		return fmt.Errorf("dataset: save %s: %w", path, err)
	}
	encErr := svmlight.Encode(features, labels, w, d.saveArgs)
	closeErr := w.Close()
	if err := errors.Join(encErr, closeErr); err != nil {
		return fmt.Errorf("dataset: save %s: %w", path, err)
	}
	d.fs.InvalidateCache(d.filepath)

	if d.versioned {
		// The just-saved version should be what a fresh load resolves
		// to; a mismatch means an explicit pin or a concurrent writer.
		if loadPath, err := d.resolveLoadPath(ctx); err == nil && loadPath != path {
			slog.Warn("dataset: save version is not the version a load would pick",
				"filepath", d.filepath, "saved", path, "loads", loadPath)
		}
	}
	return nil
}

// Exists reports whether a load would find data. A missing version (or
// no versions at all) is reported as false, not as an error.
func (d *SVMLight) Exists(ctx context.Context) (bool, error) {
	path, err := d.resolveLoadPath(ctx)
	if err != nil {
		if errors.Is(err, ErrVersionNotFound) {
			return false, nil
		}
		return false, err
	}
	return d.fs.Exists(ctx, path)
}

// Release clears the cached auto-generated save version and drops any
// storage metadata cached for the logical path.
func (d *SVMLight) Release() {
	d.saveVersion = ""
	d.fs.InvalidateCache(d.filepath)
}

// Describe returns the adapter configuration for logging and
// introspection. It has no behavioral effect.
func (d *SVMLight) Describe() map[string]any {
	desc := map[string]any{
		"filepath":  d.filepath,
		"protocol":  d.protocol,
		"load_args": d.loadArgs,
		"save_args": d.saveArgs,
	}
	if d.versioned {
		desc["version"] = d.version
	}
	return desc
}

// splitProtocol separates an optional scheme prefix from the bare path.
func splitProtocol(filepath string) (protocol, path string, err error) {
	protocol, path = "file", filepath
	if scheme, rest, ok := strings.Cut(filepath, "://"); ok {
		protocol, path = scheme, rest
		if protocol == "" {
			return "", "", fmt.Errorf("dataset: malformed filepath %q", filepath)
		}
	}
	path = strings.TrimSuffix(path, "/")
	if path == "" {
		return "", "", fmt.Errorf("dataset: empty path in filepath %q", filepath)
	}
	return protocol, path, nil
}

// popArgsMap removes a reserved key from fsArgs and returns its map
// value, or nil when absent.
func popArgsMap(fsArgs map[string]any, key string) (map[string]any, error) {
	v, ok := fsArgs[key]
	if !ok {
		return nil, nil
	}
	delete(fsArgs, key)
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("dataset: fs_args[%q] must be a map, got %T", key, v)
	}
	return m, nil
}

// mergeOpenArgs applies defaults first and caller values second, per
// key, so a caller-supplied "mode" wins over the default open mode.
func mergeOpenArgs(defaults, caller map[string]any) (storage.OpenOptions, error) {
	merged := make(map[string]any, len(defaults)+len(caller))
	for k, v := range defaults {
		merged[k] = v
	}
	for k, v := range caller {
		merged[k] = v
	}
	return storage.OptionsFromMap(merged)
}
