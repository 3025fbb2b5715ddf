// Package catalog loads dataset definitions from a YAML file and turns
// them into ready-to-use adapters. A catalog maps dataset names to
// entries; the reserved top-level "credentials" section holds named
// credential sets that entries reference by name, keeping secrets out
// of the per-dataset configuration:
//
//	train:
//	  type: svmlight
//	  filepath: s3://bucket/data/train.svm
//	  versioned: true
//	  save_args: {zero_based: false}
//	  credentials: ml_bucket
//	credentials:
//	  ml_bucket:
//	    access_key_id: AKIA...
//	    secret_access_key: ...
package catalog

import (
	"context"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/goccy/go-yaml"

	"github.com/haivivi/dset/pkg/dataset"
	"github.com/haivivi/dset/pkg/sparse"
)

// credentialsKey is the reserved top-level section name.
const credentialsKey = "credentials"

// Dataset is the adapter surface a catalog hands out. The SVMLight
// adapter satisfies it; additional dataset types register a Builder.
type Dataset interface {
	Load(ctx context.Context) (*sparse.CSR, []float64, error)
	Save(ctx context.Context, features sparse.Matrix, labels []float64) error
	Exists(ctx context.Context) (bool, error)
	Release()
	Describe() map[string]any
}

// Entry is one dataset definition as written in the catalog file.
type Entry struct {
	// Type names the dataset adapter; defaults to "svmlight".
	Type string `yaml:"type"`

	// Filepath is the dataset location, with optional protocol prefix.
	Filepath string `yaml:"filepath"`

	// Versioned enables versioned resolution with both slots unset.
	Versioned bool `yaml:"versioned"`

	// Version pins load and/or save versions; implies Versioned.
	Version *struct {
		Load string `yaml:"load"`
		Save string `yaml:"save"`
	} `yaml:"version"`

	// LoadArgs and SaveArgs pass to the codec, keys per dataset type.
	LoadArgs map[string]any `yaml:"load_args"`
	SaveArgs map[string]any `yaml:"save_args"`

	// Credentials names an entry in the catalog's credentials section.
	Credentials string `yaml:"credentials"`

	// FSArgs pass to the storage backend constructor.
	FSArgs map[string]any `yaml:"fs_args"`

	// Metadata is carried opaquely.
	Metadata map[string]any `yaml:"metadata"`
}

// Builder constructs a Dataset from an Entry and its resolved
// credentials.
type Builder func(e Entry, credentials map[string]any) (Dataset, error)

var (
	buildersMu sync.RWMutex
	builders   = make(map[string]Builder)
)

// RegisterType makes a dataset type available to catalogs.
func RegisterType(name string, b Builder) {
	buildersMu.Lock()
	defer buildersMu.Unlock()
	builders[name] = b
}

// Catalog holds parsed dataset entries and named credential sets.
type Catalog struct {
	entries map[string]Entry
	creds   map[string]map[string]any
}

// Load reads and parses a catalog file.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("catalog: read %s: %w", path, err)
	}
	c, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("catalog: %s: %w", path, err)
	}
	return c, nil
}

// Parse parses catalog YAML.
func Parse(data []byte) (*Catalog, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse: %w", err)
	}

	c := &Catalog{
		entries: make(map[string]Entry),
		creds:   make(map[string]map[string]any),
	}
	if rawCreds, ok := raw[credentialsKey]; ok {
		if err := reparse(rawCreds, &c.creds); err != nil {
			return nil, fmt.Errorf("credentials section: %w", err)
		}
		delete(raw, credentialsKey)
	}
	for name, v := range raw {
		var e Entry
		if err := reparse(v, &e); err != nil {
			return nil, fmt.Errorf("dataset %q: %w", name, err)
		}
		if e.Type == "" {
			e.Type = "svmlight"
		}
		if e.Filepath == "" {
			return nil, fmt.Errorf("dataset %q: filepath is required", name)
		}
		c.entries[name] = e
	}
	return c, nil
}

// reparse round-trips a decoded YAML value into a typed destination.
func reparse(v any, dst any) error {
	b, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(b, dst)
}

// Names returns the dataset names, sorted.
func (c *Catalog) Names() []string {
	names := make([]string, 0, len(c.entries))
	for n := range c.entries {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// Entry returns the raw definition for a dataset name.
func (c *Catalog) Entry(name string) (Entry, bool) {
	e, ok := c.entries[name]
	return e, ok
}

// Get builds the adapter for a dataset name.
func (c *Catalog) Get(name string) (Dataset, error) {
	e, ok := c.entries[name]
	if !ok {
		return nil, fmt.Errorf("catalog: no dataset %q", name)
	}
	var creds map[string]any
	if e.Credentials != "" {
		creds, ok = c.creds[e.Credentials]
		if !ok {
			return nil, fmt.Errorf("catalog: dataset %q references unknown credentials %q", name, e.Credentials)
		}
	}
	buildersMu.RLock()
	b, ok := builders[e.Type]
	buildersMu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("catalog: dataset %q has unknown type %q", name, e.Type)
	}
	ds, err := b(e, creds)
	if err != nil {
		return nil, fmt.Errorf("catalog: dataset %q: %w", name, err)
	}
	return ds, nil
}

// version translates the versioning fields into a dataset.Version.
func (e Entry) version() *dataset.Version {
	if e.Version != nil {
		return &dataset.Version{Load: e.Version.Load, Save: e.Version.Save}
	}
	if e.Versioned {
		return &dataset.Version{}
	}
	return nil
}
