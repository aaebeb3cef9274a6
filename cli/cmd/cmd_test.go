package cmd

import (
	"context"
	"testing"
)

func TestWithSearchPath_RoundTrip(t *testing.T) {
	dirs := []string{"/lib/templates", "shared"}

	ctx := WithSearchPath(context.Background(), dirs)

	got := SearchPathFrom(ctx)
	if len(got) != len(dirs) {
		t.Fatalf("SearchPathFrom() = %v, want %v", got, dirs)
	}

	for i := range dirs {
		if got[i] != dirs[i] {
			t.Errorf("SearchPathFrom()[%d] = %q, want %q", i, got[i], dirs[i])
		}
	}
}

func TestSearchPathFrom_Empty(t *testing.T) {
	if got := SearchPathFrom(context.Background()); got != nil {
		t.Errorf("SearchPathFrom() = %v, want nil", got)
	}
}

func TestKongContextFrom_Empty(t *testing.T) {
	if got := KongContextFrom(context.Background()); got != nil {
		t.Errorf("KongContextFrom() = %v, want nil", got)
	}
}
