package lang

import (
	"bytes"
	"context"
	"errors"
	"testing"
)

// TestRenderTo_RequiresDirective verifies that units without an import
// directive are rejected as plain sources.
func TestRenderTo_RequiresDirective(t *testing.T) {
	ctx := context.Background()

	u, err := LoadString(ctx, "plain",
		"def render(): 'never'\n", quietOpts()...)
	if err != nil {
		t.Fatalf("LoadString error: %v", err)
	}

	var buf bytes.Buffer

	err = RenderTo(ctx, u, &buf, quietOpts()...)
	if !errors.Is(err, ErrNotTemplate) {
		t.Errorf("error = %v, want %v", err, ErrNotTemplate)
	}

	if buf.Len() != 0 {
		t.Errorf("wrote %q, want no output", buf.String())
	}
}

// TestRenderTo_AbsentEntryPoint verifies that a template with no entry
// point succeeds with no output.
func TestRenderTo_AbsentEntryPoint(t *testing.T) {
	var buf bytes.Buffer

	err := RenderString(
		context.Background(),
		"main",
		"import template\nx = 'bound but unused'\n",
		&buf,
		quietOpts()...,
	)
	if err != nil {
		t.Fatalf("RenderString error: %v", err)
	}

	if buf.Len() != 0 {
		t.Errorf("wrote %q, want no output", buf.String())
	}
}

// TestRenderTo_EntryPointNotCallable verifies that a non-function
// binding of the entry point name is a fatal run error.
func TestRenderTo_EntryPointNotCallable(t *testing.T) {
	var buf bytes.Buffer

	err := RenderString(
		context.Background(),
		"main",
		"import template\nrender = 'not a function'\n",
		&buf,
		quietOpts()...,
	)
	if !errors.Is(err, ErrEntryPoint) {
		t.Errorf("error = %v, want %v", err, ErrEntryPoint)
	}
}

// TestRenderTo_EntryPointFailure verifies that a failing entry point
// propagates as a fatal run error with nothing written.
func TestRenderTo_EntryPointFailure(t *testing.T) {
	var buf bytes.Buffer

	err := RenderString(
		context.Background(),
		"main",
		"import template\ndef render(): missing()\n",
		&buf,
		quietOpts()...,
	)
	if !errors.Is(err, ErrEntryPoint) {
		t.Errorf("error = %v, want %v", err, ErrEntryPoint)
	}

	if buf.Len() != 0 {
		t.Errorf("wrote %q, want no output", buf.String())
	}
}

// TestRenderTo_AbsentResultRendersEmpty verifies that an entry point
// returning the absent value writes nothing but succeeds.
func TestRenderTo_AbsentResultRendersEmpty(t *testing.T) {
	var buf bytes.Buffer

	err := RenderString(
		context.Background(),
		"main",
		"import template\ndef render():\n\tx = 1\n",
		&buf,
		quietOpts()...,
	)
	if err != nil {
		t.Fatalf("RenderString error: %v", err)
	}

	if buf.Len() != 0 {
		t.Errorf("wrote %q, want no output", buf.String())
	}
}
