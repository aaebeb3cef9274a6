// Package lang implements the pyt template compilation and composition
// pipeline: a small Python-flavored statement language whose string
// literals carry {{...}} splices, whose bare expression statements
// accumulate into a function's implicit result, and whose units merge
// into one shared namespace. All expression semantics are delegated to
// expr-lang.
//
// # Philosophy
//
// A template is a program. There is no separate template-rendering API:
// writing a .pyt unit and letting its render() function fall out of the
// accumulated expression statements *is* the rendering model. The
// pipeline only has to do four things well: dequote string literals,
// rewrite function bodies to gather bare expression values, merge
// imported units into one namespace, and invoke the entry point.
//
// # Grammar
//
// Informal layout (indentation-delimited, one statement per logical
// line, ';' separates simple statements):
//
//	Unit       → Statement* EOF
//	Statement  → Import | Assign | FuncDef | Return | If | For | While
//	           | 'break' | 'continue' | 'pass' | Expression
//	Import     → 'import' 'template' ('.' Identifier)?
//	Assign     → Identifier '=' Expression
//	FuncDef    → 'def' Identifier '(' Params? ')' ':' Suite
//	Return     → 'return' Expression?
//	If         → 'if' Expression ':' Suite ('elif' ...)* ('else' ':' Suite)?
//	For        → 'for' Identifier 'in' Expression ':' Suite
//	While      → 'while' Expression ':' Suite
//	Suite      → SimpleList | NEWLINE INDENT Statement+ DEDENT
//	Expression → <expr-lang source, strings dequoted before compilation>
//
// Expressions are raw expr-lang with one extension: every string
// literal is dequoted. Each {{...}} splice becomes a stringified
// sub-expression, nesting resolved innermost-first, and ## comments
// inside literal text are dropped to end of line:
//
//	"a{{b}}c"                 becomes  ("a" + str(b) + "c")
//	"a {{f('{{x}} b')}} c"    becomes  ("a " + str(f((str(x) + " b"))) + " c")
//
// # Accumulation
//
// Inside a function body, a statement that is a bare expression has its
// value gathered instead of discarded. When such a function would
// return the absent value, it returns the concatenation of the gathered
// values (cast through str) instead:
//
//	def render():
//	    1
//	    " Render a={{a}}, f()={{f()}}."
//
// # Composition
//
// "import template.child" executes child.pyt's top-level statements
// directly in the importing root's shared namespace, at most once per
// root. Later bindings override earlier ones, and functions look names
// up at call time, so a parent unit that rebinds x after importing a
// child changes the behavior of the child's functions:
//
//	# file parent.pyt
//	import template.child
//	a = 'X'
//
// # Scoping
//
// Name lookup, innermost first:
//
//  1. Function parameters and locals (per activation)
//  2. The shared namespace (one per compilation root)
//  3. Builtins (str, env, target, platform, cwd, file.*, path.*, mung.*)
package lang
