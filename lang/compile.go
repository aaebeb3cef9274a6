package lang

import (
	"log/slog"

	"github.com/expr-lang/expr"
)

// Compile dequotes and compiles every expression in the unit. The
// expressions compile without a static environment and with the
// engine's own builtin functions disabled: every identifier resolves
// dynamically at evaluation time against the shared namespace, so a
// unit may reference names that only a later import (or an overriding
// parent) provides, and namespace identifiers that happen to collide
// with an engine builtin name (count, len, max, ...) still bind to
// the namespace.
//
// Compile requires [Unit.Rewrite] and is idempotent.
func (u *Unit) Compile() error {
	if u.compiled {
		return nil
	}

	if !u.rewritten {
		if err := u.Rewrite(); err != nil {
			return err
		}
	}

	if err := u.compileBlock(u.Body); err != nil {
		return err
	}

	u.compiled = true

	return nil
}

func (u *Unit) compileBlock(body []Stmt) error {
	for i := range body {
		s := &body[i]

		if s.Expr != nil {
			if err := u.compileExpr(s.Expr); err != nil {
				return err
			}
		}

		if err := u.compileBlock(s.Body); err != nil {
			return err
		}

		if err := u.compileBlock(s.Else); err != nil {
			return err
		}
	}

	return nil
}

func (u *Unit) compileExpr(e *Expr) error {
	source, err := DequoteSource(e.Raw)
	if err != nil {
		return WrapError(err).
			WithSnippet(u.Source, e.Pos).
			WithUnit(u)
	}

	e.Source = source

	program, err := expr.Compile(source, expr.DisableAllBuiltins())
	if err != nil {
		return ErrExprCompile.Wrap(err).
			WithSnippet(u.Source, e.Pos).
			WithUnit(u).
			With(slog.String("expression", clip(source, 80)))
	}

	e.Program = program

	return nil
}
