package commands

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// runCommand executes the root command with args and returns its output.
func runCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var buf bytes.Buffer
	rootCmd.SetOut(&buf)
	rootCmd.SetErr(&buf)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return buf.String(), err
}

// writeCatalog writes a single-dataset catalog pointing at a temp path
// and returns the catalog path.
func writeCatalog(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	dataPath := filepath.ToSlash(filepath.Join(dir, "data", "train.svm"))
	content := fmt.Sprintf("train:\n  type: svmlight\n  filepath: %s\n", dataPath)
	path := filepath.Join(dir, "catalog.yaml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestExistsCommand(t *testing.T) {
	cat := writeCatalog(t)
	out, err := runCommand(t, "-f", cat, "exists", "train")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != "false" {
		t.Fatalf("exists output = %q, want false", out)
	}
}

func TestDescribeCommand(t *testing.T) {
	cat := writeCatalog(t)
	out, err := runCommand(t, "-f", cat, "describe", "train")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out, "protocol: file") {
		t.Fatalf("describe output %q should include the protocol", out)
	}
}

func TestUnknownDataset(t *testing.T) {
	cat := writeCatalog(t)
	if _, err := runCommand(t, "-f", cat, "exists", "nope"); err == nil {
		t.Fatal("expected error for unknown dataset")
	}
}

// Runs before TestConvertCommand: required-flag state sticks to the
// command once a prior run has set the flags.
func TestConvertRequiresFlags(t *testing.T) {
	if _, err := runCommand(t, "convert"); err == nil {
		t.Fatal("expected error when --in and --out are missing")
	}
}

func TestConvertCommand(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "in.svm")
	out := filepath.Join(dir, "out.svm")
	if err := os.WriteFile(in, []byte("7 2:1\n3 1:2 2:3.14159\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	if _, err := runCommand(t, "convert", "--in", in, "--out", out, "--zero-based"); err != nil {
		t.Fatal(err)
	}
	got, err := os.ReadFile(out)
	if err != nil {
		t.Fatal(err)
	}
	want := "7 1:1\n3 0:2 1:3.14159\n"
	if string(got) != want {
		t.Fatalf("converted %q, want %q", got, want)
	}
}
