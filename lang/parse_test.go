package lang

import (
	"context"
	"errors"
	"testing"
)

func mustParse(t *testing.T, source string) *Unit {
	t.Helper()

	u, err := ParseString(context.Background(), "test", source)
	if err != nil {
		t.Fatalf("ParseString error: %v", err)
	}

	return u
}

// TestParseString_SimpleStatements verifies simple statement forms.
func TestParseString_SimpleStatements(t *testing.T) {
	u := mustParse(t, ""+
		"x = 1\n"+
		"x + 2\n"+
		"pass\n"+
		"return x\n")

	want := []StmtKind{StmtAssign, StmtExpr, StmtPass, StmtReturn}

	if len(u.Body) != len(want) {
		t.Fatalf("got %d statements, want %d", len(u.Body), len(want))
	}

	for i, kind := range want {
		if u.Body[i].Kind != kind {
			t.Errorf("statement[%d] = %v, want %v", i, u.Body[i].Kind, kind)
		}
	}

	if u.Body[0].Name != "x" || u.Body[0].Expr.Raw != "1" {
		t.Errorf("assign = %q = %q, want x = 1",
			u.Body[0].Name, u.Body[0].Expr.Raw)
	}

	if u.Body[3].Expr == nil || u.Body[3].Expr.Raw != "x" {
		t.Errorf("return expression = %+v, want x", u.Body[3].Expr)
	}
}

// TestParseString_Semicolons verifies ';'-separated statements on one
// logical line.
func TestParseString_Semicolons(t *testing.T) {
	u := mustParse(t, "x = 1; y = 2; x + y\n")

	if len(u.Body) != 3 {
		t.Fatalf("got %d statements, want 3", len(u.Body))
	}

	if u.Body[0].Name != "x" || u.Body[1].Name != "y" {
		t.Errorf("targets = %q, %q, want x, y",
			u.Body[0].Name, u.Body[1].Name)
	}

	if u.Body[2].Kind != StmtExpr || u.Body[2].Expr.Raw != "x + y" {
		t.Errorf("statement[2] = %v %q, want Expr \"x + y\"",
			u.Body[2].Kind, u.Body[2].Expr.Raw)
	}
}

// TestParseString_FunctionDef verifies def headers, parameters, and
// indented bodies.
func TestParseString_FunctionDef(t *testing.T) {
	u := mustParse(t, ""+
		"def greet(name, punct):\n"+
		"\t'hi {{name}}'\n"+
		"\treturn punct\n")

	if len(u.Body) != 1 || u.Body[0].Kind != StmtFunc {
		t.Fatalf("got %+v, want one function definition", u.Body)
	}

	fn := u.Body[0]

	if fn.Name != "greet" {
		t.Errorf("name = %q, want greet", fn.Name)
	}

	if len(fn.Params) != 2 || fn.Params[0] != "name" || fn.Params[1] != "punct" {
		t.Errorf("params = %v, want [name punct]", fn.Params)
	}

	if len(fn.Body) != 2 {
		t.Fatalf("body has %d statements, want 2", len(fn.Body))
	}

	if fn.Body[0].Kind != StmtExpr || fn.Body[1].Kind != StmtReturn {
		t.Errorf("body kinds = %v, %v, want Expr, Return",
			fn.Body[0].Kind, fn.Body[1].Kind)
	}
}

// TestParseString_InlineSuite verifies single-line compound statements.
func TestParseString_InlineSuite(t *testing.T) {
	u := mustParse(t, "def render(): f(); g()\n")

	if len(u.Body) != 1 || u.Body[0].Kind != StmtFunc {
		t.Fatalf("got %+v, want one function definition", u.Body)
	}

	body := u.Body[0].Body
	if len(body) != 2 {
		t.Fatalf("inline suite has %d statements, want 2", len(body))
	}

	if body[0].Expr.Raw != "f()" || body[1].Expr.Raw != "g()" {
		t.Errorf("suite = %q, %q, want f(), g()",
			body[0].Expr.Raw, body[1].Expr.Raw)
	}
}

// TestParseString_IfChain verifies elif/else chaining structure.
func TestParseString_IfChain(t *testing.T) {
	u := mustParse(t, ""+
		"if a:\n"+
		"\tx = 1\n"+
		"elif b:\n"+
		"\tx = 2\n"+
		"else:\n"+
		"\tx = 3\n")

	if len(u.Body) != 1 || u.Body[0].Kind != StmtIf {
		t.Fatalf("got %+v, want one conditional", u.Body)
	}

	outer := u.Body[0]
	if outer.Expr.Raw != "a" || len(outer.Body) != 1 {
		t.Errorf("outer = %q with %d statements, want a with 1",
			outer.Expr.Raw, len(outer.Body))
	}

	if len(outer.Else) != 1 || outer.Else[0].Kind != StmtIf {
		t.Fatalf("elif did not nest: %+v", outer.Else)
	}

	inner := outer.Else[0]
	if inner.Expr.Raw != "b" {
		t.Errorf("inner condition = %q, want b", inner.Expr.Raw)
	}

	if len(inner.Else) != 1 || inner.Else[0].Kind != StmtAssign {
		t.Errorf("else block = %+v, want one assignment", inner.Else)
	}
}

// TestParseString_Loops verifies for and while statements.
func TestParseString_Loops(t *testing.T) {
	u := mustParse(t, ""+
		"for item in items:\n"+
		"\tif item == stop:\n"+
		"\t\tbreak\n"+
		"\titem\n"+
		"while n > 0:\n"+
		"\tn = n - 1\n"+
		"\tcontinue\n")

	if len(u.Body) != 2 {
		t.Fatalf("got %d statements, want 2", len(u.Body))
	}

	loop := u.Body[0]
	if loop.Kind != StmtFor || loop.Name != "item" ||
		loop.Expr.Raw != "items" {
		t.Errorf("for = %v %q in %q, want For item in items",
			loop.Kind, loop.Name, loop.Expr.Raw)
	}

	if len(loop.Body) != 2 || loop.Body[0].Kind != StmtIf {
		t.Fatalf("for body = %+v, want conditional then expression",
			loop.Body)
	}

	if loop.Body[0].Body[0].Kind != StmtBreak {
		t.Errorf("nested = %v, want Break", loop.Body[0].Body[0].Kind)
	}

	while := u.Body[1]
	if while.Kind != StmtWhile || while.Expr.Raw != "n > 0" {
		t.Errorf("while = %v %q, want While \"n > 0\"",
			while.Kind, while.Expr.Raw)
	}

	if len(while.Body) != 2 || while.Body[1].Kind != StmtContinue {
		t.Errorf("while body = %+v, want assignment then continue",
			while.Body)
	}
}

// TestParseString_Imports verifies import directive parsing.
func TestParseString_Imports(t *testing.T) {
	u := mustParse(t, ""+
		"import template\n"+
		"import template.base\n")

	if len(u.Body) != 2 {
		t.Fatalf("got %d statements, want 2", len(u.Body))
	}

	if u.Body[0].Kind != StmtImport || u.Body[0].Name != "" {
		t.Errorf("bare directive = %v %q, want Import \"\"",
			u.Body[0].Kind, u.Body[0].Name)
	}

	if u.Body[1].Kind != StmtImport || u.Body[1].Name != "base" {
		t.Errorf("named directive = %v %q, want Import base",
			u.Body[1].Kind, u.Body[1].Name)
	}

	if !u.ImportsTemplate() {
		t.Error("ImportsTemplate() = false, want true")
	}

	if got := u.Imports(); len(got) != 1 || got[0] != "base" {
		t.Errorf("Imports() = %v, want [base]", got)
	}
}

// TestParseString_TripleQuote verifies that triple-quoted literals fold
// to a single-line quoted form spanning their newlines.
func TestParseString_TripleQuote(t *testing.T) {
	u := mustParse(t, "x = '''line1\nline2'''\n")

	if len(u.Body) != 1 || u.Body[0].Kind != StmtAssign {
		t.Fatalf("got %+v, want one assignment", u.Body)
	}

	if got, want := u.Body[0].Expr.Raw, `"line1\nline2"`; got != want {
		t.Errorf("folded literal = %q, want %q", got, want)
	}
}

// TestParseString_BracketContinuation verifies that open brackets join
// physical lines into one logical line.
func TestParseString_BracketContinuation(t *testing.T) {
	u := mustParse(t, "x = [1,\n2,\n3]\n")

	if len(u.Body) != 1 || u.Body[0].Kind != StmtAssign {
		t.Fatalf("got %+v, want one assignment", u.Body)
	}

	if got, want := u.Body[0].Expr.Raw, "[1, 2, 3]"; got != want {
		t.Errorf("joined expression = %q, want %q", got, want)
	}
}

// TestParseString_HostComments verifies that # comments and blank lines
// vanish before statement parsing.
func TestParseString_HostComments(t *testing.T) {
	u := mustParse(t, ""+
		"# leading comment\n"+
		"\n"+
		"x = 1 # trailing comment\n"+
		"\n"+
		"# and a '#' inside a literal is content:\n"+
		"y = 'a # b'\n")

	if len(u.Body) != 2 {
		t.Fatalf("got %d statements, want 2", len(u.Body))
	}

	if u.Body[0].Expr.Raw != "1" {
		t.Errorf("x = %q, want 1", u.Body[0].Expr.Raw)
	}

	if u.Body[1].Expr.Raw != "'a # b'" {
		t.Errorf("y = %q, want 'a # b'", u.Body[1].Expr.Raw)
	}
}

// TestParseString_Errors verifies rejection of malformed sources.
func TestParseString_Errors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   error
	}{
		{
			name:   "orphan else",
			source: "else:\n\tx = 1\n",
			want:   ErrParse,
		},
		{
			name:   "unexpected indent",
			source: "x = 1\n\ty = 2\n",
			want:   ErrParse,
		},
		{
			name:   "def without colon",
			source: "def f()\n\tx = 1\n",
			want:   ErrParse,
		},
		{
			name:   "def without body",
			source: "def f():\nx = 1\n",
			want:   ErrParse,
		},
		{
			name:   "invalid parameter",
			source: "def f(1x):\n\tpass\n",
			want:   ErrParse,
		},
		{
			name:   "foreign import",
			source: "import os\n",
			want:   ErrParse,
		},
		{
			name:   "assignment to keyword",
			source: "def = 1\n",
			want:   ErrParse,
		},
		{
			name:   "unterminated string",
			source: "x = 'abc\n",
			want:   ErrUnterminatedString,
		},
		{
			name:   "unterminated triple quote",
			source: "x = '''abc\n",
			want:   ErrUnterminatedString,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseString(context.Background(), "test", tt.source)
			if !errors.Is(err, tt.want) {
				t.Errorf("error = %v, want %v", err, tt.want)
			}
		})
	}
}
