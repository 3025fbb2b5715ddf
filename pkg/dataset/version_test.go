package dataset

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/haivivi/dset/pkg/sparse"
)

func TestGenerateVersionFormat(t *testing.T) {
	v := GenerateVersion()
	if _, err := time.Parse(versionLayout, v); err != nil {
		t.Fatalf("generated version %q does not parse: %v", v, err)
	}
}

func TestVersionTokensSortChronologically(t *testing.T) {
	a := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC).Format(versionLayout)
	b := time.Date(2026, 1, 2, 3, 4, 6, 0, time.UTC).Format(versionLayout)
	if !(a < b) {
		t.Fatalf("token order broken: %q should sort before %q", a, b)
	}
}

func TestVersionedSaveLoad(t *testing.T) {
	d := newDataset(t, Spec{
		Filepath: localFile(t, "data", "x.svm"),
		Version:  &Version{},
	})
	ctx := context.Background()

	features := mustMatrix(t, [][]float64{{0, 1}, {2, 3.14159}})
	if err := d.Save(ctx, features, []float64{7, 3}); err != nil {
		t.Fatal(err)
	}

	ok, err := d.Exists(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected true after versioned save")
	}

	got, labels, err := d.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !sparse.Equal(got, features) || labels[0] != 7 {
		t.Fatal("versioned round trip changed values")
	}

	versions, err := d.Versions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 1 {
		t.Fatalf("Versions = %v, want one entry", versions)
	}
}

func TestVersionedExistsFalseBeforeSave(t *testing.T) {
	d := newDataset(t, Spec{
		Filepath: localFile(t, "data", "x.svm"),
		Version:  &Version{},
	})
	ok, err := d.Exists(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected false, no versions saved yet")
	}
}

func TestVersionedLoadNoVersions(t *testing.T) {
	d := newDataset(t, Spec{
		Filepath: localFile(t, "data", "x.svm"),
		Version:  &Version{},
	})
	_, _, err := d.Load(context.Background())
	if !errors.Is(err, ErrVersionNotFound) {
		t.Fatalf("Load = %v, want ErrVersionNotFound", err)
	}
}

func TestPinnedLoadVersion(t *testing.T) {
	path := localFile(t, "data", "x.svm")
	ctx := context.Background()

	// Write two explicit versions.
	for i, v := range []string{"2026-01-01T00.00.00.000Z", "2026-02-01T00.00.00.000Z"} {
		d := newDataset(t, Spec{Filepath: path, Version: &Version{Save: v}})
		if err := d.Save(ctx, mustMatrix(t, [][]float64{{float64(i + 1)}}), []float64{0}); err != nil {
			t.Fatal(err)
		}
	}

	// Default load resolves the newest version.
	d := newDataset(t, Spec{Filepath: path, Version: &Version{}})
	m, _, err := d.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.At(0, 0); got != 2 {
		t.Fatalf("newest version value = %v, want 2", got)
	}

	// A pin selects the older one.
	d = newDataset(t, Spec{Filepath: path, Version: &Version{Load: "2026-01-01T00.00.00.000Z"}})
	m, _, err = d.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if got := m.At(0, 0); got != 1 {
		t.Fatalf("pinned version value = %v, want 1", got)
	}

	// A pin on a version that was never saved resolves to not-found,
	// and Exists swallows it.
	d = newDataset(t, Spec{Filepath: path, Version: &Version{Load: "2020-01-01T00.00.00.000Z"}})
	if _, _, err := d.Load(ctx); !errors.Is(err, ErrVersionNotFound) {
		t.Fatalf("Load = %v, want ErrVersionNotFound", err)
	}
	ok, err := d.Exists(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Fatal("expected false for missing pinned version")
	}
}

func TestSaveVersionCachedUntilRelease(t *testing.T) {
	d := newDataset(t, Spec{
		Filepath: localFile(t, "data", "x.svm"),
		Version:  &Version{},
	})
	ctx := context.Background()

	if err := d.Save(ctx, mustMatrix(t, [][]float64{{1}}), []float64{0}); err != nil {
		t.Fatal(err)
	}
	// The generated token is cached, so a second save targets the same
	// existing path and must refuse to overwrite.
	err := d.Save(ctx, mustMatrix(t, [][]float64{{2}}), []float64{0})
	if err == nil {
		t.Fatal("expected error saving the same version twice")
	}
	if !strings.Contains(err.Error(), "already exists") {
		t.Fatalf("error %q should mention the existing path", err)
	}

	// Release clears the cached token; the next save gets a new one.
	// Tokens have millisecond precision, so step past the current one.
	d.Release()
	time.Sleep(2 * time.Millisecond)
	if err := d.Save(ctx, mustMatrix(t, [][]float64{{2}}), []float64{0}); err != nil {
		t.Fatal(err)
	}
	versions, err := d.Versions(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(versions) != 2 {
		t.Fatalf("Versions = %v, want two entries", versions)
	}
}

func TestExplicitSaveVersionRefusesOverwrite(t *testing.T) {
	path := localFile(t, "x.svm")
	ctx := context.Background()
	spec := Spec{Filepath: path, Version: &Version{Save: "2026-01-01T00.00.00.000Z"}}

	d := newDataset(t, spec)
	if err := d.Save(ctx, mustMatrix(t, [][]float64{{1}}), []float64{0}); err != nil {
		t.Fatal(err)
	}
	// Even a fresh adapter with the same pinned save version must not
	// overwrite.
	d = newDataset(t, spec)
	if err := d.Save(ctx, mustMatrix(t, [][]float64{{2}}), []float64{0}); err == nil {
		t.Fatal("expected error overwriting a pinned version")
	}
}

func TestUnversionedVersionsEmpty(t *testing.T) {
	d := newDataset(t, Spec{Filepath: "memory://x.svm"})
	versions, err := d.Versions(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if versions != nil {
		t.Fatalf("Versions = %v, want nil for unversioned dataset", versions)
	}
}

func TestVersionedOnObjectStore(t *testing.T) {
	d := newDataset(t, Spec{
		Filepath: "memory://data/train.svm",
		Version:  &Version{},
	})
	ctx := context.Background()

	features := mustMatrix(t, [][]float64{{1, 0, 2}})
	if err := d.Save(ctx, features, []float64{5}); err != nil {
		t.Fatal(err)
	}
	got, _, err := d.Load(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if !sparse.Equal(got, features) {
		t.Fatal("object-store versioned round trip changed values")
	}
}
