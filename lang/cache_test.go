package lang

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

// TestLoadFile_CachesByContent verifies that identical content loads
// to one shared compiled unit.
func TestLoadFile_CachesByContent(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	const source = "import template\ncached_probe_value = 1\n"

	path := filepath.Join(dir, "shared"+DefaultExtension)
	if err := os.WriteFile(path, []byte(source), 0o644); err != nil {
		t.Fatal(err)
	}

	first, err := LoadFile(ctx, path, quietOpts()...)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}

	second, err := LoadFile(ctx, path, quietOpts()...)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}

	if first != second {
		t.Error("identical content compiled twice")
	}

	if first.Name != "shared" || first.Path != path {
		t.Errorf("unit = %q at %q, want shared at %q",
			first.Name, first.Path, path)
	}
}

// TestLoadFile_DistinctContent verifies that different content under
// the same name does not collide.
func TestLoadFile_DistinctContent(t *testing.T) {
	ctx := context.Background()

	dirA, dirB := t.TempDir(), t.TempDir()

	pathA := filepath.Join(dirA, "unit"+DefaultExtension)
	pathB := filepath.Join(dirB, "unit"+DefaultExtension)

	if err := os.WriteFile(
		pathA, []byte("version = 'a'\n"), 0o644,
	); err != nil {
		t.Fatal(err)
	}

	if err := os.WriteFile(
		pathB, []byte("version = 'b'\n"), 0o644,
	); err != nil {
		t.Fatal(err)
	}

	a, err := LoadFile(ctx, pathA, quietOpts()...)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}

	b, err := LoadFile(ctx, pathB, quietOpts()...)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}

	if a == b {
		t.Error("distinct content shared one cache entry")
	}
}

// TestClearCache verifies that clearing forces recompilation.
func TestClearCache(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	path := filepath.Join(dir, "evict"+DefaultExtension)
	if err := os.WriteFile(
		path, []byte("evict_probe = 1\n"), 0o644,
	); err != nil {
		t.Fatal(err)
	}

	first, err := LoadFile(ctx, path, quietOpts()...)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}

	ClearCache()

	second, err := LoadFile(ctx, path, quietOpts()...)
	if err != nil {
		t.Fatalf("LoadFile error: %v", err)
	}

	if first == second {
		t.Error("cache entry survived ClearCache")
	}
}

// TestLoadFile_MissingFile verifies the read error surface.
func TestLoadFile_MissingFile(t *testing.T) {
	_, err := LoadFile(
		context.Background(),
		filepath.Join(t.TempDir(), "absent"+DefaultExtension),
		quietOpts()...,
	)
	if err == nil {
		t.Fatal("LoadFile of missing file succeeded")
	}
}
