package repl

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHistory_WriteAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)

	if _, err := h.WriteWithMode("1 + 2", modeEval); err != nil {
		t.Fatalf("WriteWithMode() error = %v", err)
	}

	if _, err := h.WriteWithMode("list", modeCtrl); err != nil {
		t.Fatalf("WriteWithMode() error = %v", err)
	}

	// Reload from disk into a fresh instance.
	h2 := NewHistory(path)
	if err := h2.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if h2.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h2.Len())
	}

	first, err := h2.GetEntry(0)
	if err != nil {
		t.Fatalf("GetEntry(0) error = %v", err)
	}

	if first.Line != "1 + 2" || first.Mode != modeEval {
		t.Errorf("GetEntry(0) = %+v, want eval entry %q", first, "1 + 2")
	}

	second, err := h2.GetEntry(1)
	if err != nil {
		t.Fatalf("GetEntry(1) error = %v", err)
	}

	if second.Line != "list" || second.Mode != modeCtrl {
		t.Errorf("GetEntry(1) = %+v, want ctrl entry %q", second, "list")
	}
}

func TestHistory_DeduplicatesEntries(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)

	for _, line := range []string{"a", "b", "a"} {
		if _, err := h.WriteWithMode(line, modeEval); err != nil {
			t.Fatalf("WriteWithMode(%q) error = %v", line, err)
		}
	}

	if h.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", h.Len())
	}

	// The duplicate moves to the most recent position.
	last, err := h.GetEntry(h.Len() - 1)
	if err != nil {
		t.Fatalf("GetEntry() error = %v", err)
	}

	if last.Line != "a" {
		t.Errorf("last entry = %q, want %q", last.Line, "a")
	}
}

func TestHistory_SkipsAdjacentDuplicate(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)

	for range 3 {
		if _, err := h.WriteWithMode("same", modeEval); err != nil {
			t.Fatalf("WriteWithMode() error = %v", err)
		}
	}

	if h.Len() != 1 {
		t.Errorf("Len() = %d, want 1", h.Len())
	}
}

func TestHistory_LoadMissingFile(t *testing.T) {
	h := NewHistory(filepath.Join(t.TempDir(), "missing"))

	if err := h.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if h.Len() != 0 {
		t.Errorf("Len() = %d, want 0", h.Len())
	}
}

func TestHistory_ModePrefixFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), baseHistory)

	h := NewHistory(path)

	if _, err := h.WriteWithMode("x", modeEval); err != nil {
		t.Fatalf("WriteWithMode() error = %v", err)
	}

	if _, err := h.WriteWithMode("quit", modeCtrl); err != nil {
		t.Fatalf("WriteWithMode() error = %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}

	want := "E:x\nC:quit\n"
	if string(data) != want {
		t.Errorf("history file = %q, want %q", data, want)
	}
}
