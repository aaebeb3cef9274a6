package cmd

import (
	"context"
	"errors"
	"testing"

	"github.com/ardnew/pyt/lang"
)

func TestCheck_ValidTemplate(t *testing.T) {
	dir := t.TempDir()

	tmpl := writeTemplate(t, dir, "ok", ""+
		"import template\n"+
		"def render():\n"+
		"\t'static'\n")

	c := Check{Paths: []string{tmpl}}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestCheck_FollowsImports(t *testing.T) {
	dir := t.TempDir()

	writeTemplate(t, dir, "lib", "def f(): return 1\n")

	tmpl := writeTemplate(t, dir, "main", ""+
		"import template.lib\n"+
		"def render():\n"+
		"\t'{{ f() }}'\n")

	c := Check{Paths: []string{tmpl}}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}

func TestCheck_ReportsUnresolvedImport(t *testing.T) {
	dir := t.TempDir()

	tmpl := writeTemplate(t, dir, "main", ""+
		"import template.missing\n"+
		"def render():\n"+
		"\t'x'\n")

	c := Check{Paths: []string{tmpl}}

	err := c.Run(context.Background())
	if !errors.Is(err, lang.ErrUnresolvedImport) {
		t.Fatalf("Run() error = %v, want ErrUnresolvedImport", err)
	}
}

func TestCheck_ReportsCompileError(t *testing.T) {
	dir := t.TempDir()

	tmpl := writeTemplate(t, dir, "broken", ""+
		"import template\n"+
		"def render():\n"+
		"\t'{{ unterminated'\n")

	c := Check{Paths: []string{tmpl}}

	err := c.Run(context.Background())
	if err == nil {
		t.Fatal("Run() error = nil, want compile error")
	}
}

func TestCheck_CycleIsNotFatal(t *testing.T) {
	dir := t.TempDir()

	writeTemplate(t, dir, "a", "import template.b\nx = 1\n")
	writeTemplate(t, dir, "b", "import template.a\ny = 2\n")

	tmpl := writeTemplate(t, dir, "main", ""+
		"import template.a\n"+
		"def render():\n"+
		"\t'{{ x }}{{ y }}'\n")

	c := Check{Paths: []string{tmpl}}
	if err := c.Run(context.Background()); err != nil {
		t.Fatalf("Run() error = %v", err)
	}
}
