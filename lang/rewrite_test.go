package lang

import (
	"context"
	"errors"
	"testing"
)

func mustRewrite(t *testing.T, source string) *Unit {
	t.Helper()

	u := mustParse(t, source)
	if err := u.Rewrite(); err != nil {
		t.Fatalf("Rewrite error: %v", err)
	}

	return u
}

// TestRewrite_GatherMarking verifies that only functions containing
// bare expression statements become gathering functions.
func TestRewrite_GatherMarking(t *testing.T) {
	u := mustRewrite(t, ""+
		"def quiet():\n"+
		"\tx = 1\n"+
		"\treturn x\n"+
		"def loud():\n"+
		"\t'a'\n"+
		"\t'b'\n")

	quiet, loud := u.Body[0], u.Body[1]

	if quiet.Gather {
		t.Error("function without bare expressions marked as gathering")
	}

	if !loud.Gather {
		t.Error("function with bare expressions not marked as gathering")
	}

	for i := range loud.Body {
		if loud.Body[i].Kind != StmtGather {
			t.Errorf("loud body[%d] = %v, want Gather",
				i, loud.Body[i].Kind)
		}
	}

	for i := range quiet.Body {
		if quiet.Body[i].Kind == StmtGather {
			t.Errorf("quiet body[%d] rewritten to Gather", i)
		}
	}
}

// TestRewrite_GatherInsideControlFlow verifies that bare expressions
// nested in loops and conditionals still qualify.
func TestRewrite_GatherInsideControlFlow(t *testing.T) {
	u := mustRewrite(t, ""+
		"def f(items):\n"+
		"\tfor item in items:\n"+
		"\t\tif item != '':\n"+
		"\t\t\t'{{item}}'\n")

	fn := u.Body[0]
	if !fn.Gather {
		t.Fatal("function not marked as gathering")
	}

	inner := fn.Body[0].Body[0].Body[0]
	if inner.Kind != StmtGather {
		t.Errorf("nested statement = %v, want Gather", inner.Kind)
	}
}

// TestRewrite_ValuelessReturn verifies that value-less returns in
// gathering functions yield the accumulator, while returns carrying a
// value are preserved.
func TestRewrite_ValuelessReturn(t *testing.T) {
	u := mustRewrite(t, ""+
		"def f(flag):\n"+
		"\t'out'\n"+
		"\tif flag:\n"+
		"\t\treturn\n"+
		"\treturn 'explicit'\n")

	fn := u.Body[0]
	if !fn.Gather {
		t.Fatal("function not marked as gathering")
	}

	bare := fn.Body[1].Body[0]
	if bare.Kind != StmtReturnGathered {
		t.Errorf("value-less return = %v, want ReturnGathered", bare.Kind)
	}

	explicit := fn.Body[2]
	if explicit.Kind != StmtReturn || explicit.Expr == nil {
		t.Errorf("explicit return rewritten: %v", explicit.Kind)
	}
}

// TestRewrite_NestedFunctionsIndependent verifies that nested
// definitions gather independently of their enclosing scope.
func TestRewrite_NestedFunctionsIndependent(t *testing.T) {
	u := mustRewrite(t, ""+
		"def outer():\n"+
		"\tdef inner():\n"+
		"\t\t'gathered'\n"+
		"\treturn inner\n")

	outer := u.Body[0]
	if outer.Gather {
		t.Error("outer marked as gathering by nested bare expression")
	}

	inner := outer.Body[0]
	if !inner.Gather {
		t.Error("inner function not marked as gathering")
	}
}

// TestRewrite_ModuleLevelUntouched verifies that top-level bare
// expressions are not rewritten to gather.
func TestRewrite_ModuleLevelUntouched(t *testing.T) {
	u := mustRewrite(t, "'top'\nx = 1\n")

	if u.Body[0].Kind != StmtExpr {
		t.Errorf("top-level statement = %v, want Expr", u.Body[0].Kind)
	}
}

// TestRewrite_LoopControlOutsideLoop verifies static rejection of
// break and continue outside loops.
func TestRewrite_LoopControlOutsideLoop(t *testing.T) {
	tests := []struct {
		name   string
		source string
	}{
		{name: "break at top level", source: "break\n"},
		{name: "continue in function", source: "def f():\n\tcontinue\n"},
		{
			name:   "break in nested def inside loop",
			source: "for x in items:\n\tdef f():\n\t\tbreak\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, err := ParseString(context.Background(), "test", tt.source)
			if err != nil {
				t.Fatalf("ParseString error: %v", err)
			}

			if err := u.Rewrite(); !errors.Is(err, ErrRewrite) {
				t.Errorf("Rewrite error = %v, want %v", err, ErrRewrite)
			}
		})
	}
}
