package lang

import (
	"log/slog"
)

// Rewrite performs the accumulator rewrite over every function defined
// in the unit, at any nesting depth.
//
// A function containing at least one bare expression statement is
// rewritten to gather: each bare expression appends its value to an
// accumulator scoped to the activation, and value-less returns (and
// falling off the end of the body) return the concatenation of the
// accumulator instead of the absent value. Functions containing no
// bare expression statement are left untouched, so calling them still
// yields the absent value rather than an empty string.
//
// Rewrite is idempotent and must precede [Unit.Compile].
func (u *Unit) Rewrite() error {
	if u.rewritten {
		return nil
	}

	if err := u.validateBlock(u.Body, false); err != nil {
		return err
	}

	for i := range u.Body {
		if u.Body[i].Kind == StmtFunc {
			rewriteFunc(&u.Body[i])
		}
	}

	u.rewritten = true

	return nil
}

// validateBlock rejects statements that are meaningless in their
// context before execution can trip over them.
func (u *Unit) validateBlock(body []Stmt, inLoop bool) error {
	for i := range body {
		s := &body[i]

		switch s.Kind {
		case StmtBreak, StmtContinue:
			if !inLoop {
				return ErrRewrite.
					WithSnippet(u.Source, s.Pos).
					With(slog.String(
						"detail", s.Kind.String()+" outside loop",
					))
			}

		case StmtFor, StmtWhile:
			if err := u.validateBlock(s.Body, true); err != nil {
				return err
			}

		case StmtFunc:
			// A new activation: enclosing loops do not carry in.
			if err := u.validateBlock(s.Body, false); err != nil {
				return err
			}

		case StmtIf:
			if err := u.validateBlock(s.Body, inLoop); err != nil {
				return err
			}

			if err := u.validateBlock(s.Else, inLoop); err != nil {
				return err
			}
		}
	}

	return nil
}

// rewriteFunc rewrites one function definition in place, then recurses
// into functions it defines.
func rewriteFunc(fn *Stmt) {
	if gatherBlock(fn.Body) {
		fn.Gather = true

		returnGathered(fn.Body)
	}

	// Nested definitions gather independently of the enclosing scope.
	rewriteNested(fn.Body)
}

func rewriteNested(body []Stmt) {
	for i := range body {
		s := &body[i]

		switch s.Kind {
		case StmtFunc:
			rewriteFunc(s)

		case StmtIf:
			rewriteNested(s.Body)
			rewriteNested(s.Else)

		case StmtFor, StmtWhile:
			rewriteNested(s.Body)
		}
	}
}

// gatherBlock converts bare expression statements to gathering ones,
// descending into control flow but not into nested definitions. It
// reports whether any statement was converted.
func gatherBlock(body []Stmt) bool {
	found := false

	for i := range body {
		s := &body[i]

		switch s.Kind {
		case StmtExpr:
			s.Kind = StmtGather
			found = true

		case StmtIf:
			found = gatherBlock(s.Body) || found
			found = gatherBlock(s.Else) || found

		case StmtFor, StmtWhile:
			found = gatherBlock(s.Body) || found
		}
	}

	return found
}

// returnGathered replaces value-less returns with the gathered form,
// descending into control flow but not into nested definitions.
// Returns that carry an explicit value are preserved: they bypass the
// accumulator, which is discarded (with a diagnostic if non-empty) at
// execution time.
func returnGathered(body []Stmt) {
	for i := range body {
		s := &body[i]

		switch s.Kind {
		case StmtReturn:
			if s.Expr == nil {
				s.Kind = StmtReturnGathered
			}

		case StmtIf:
			returnGathered(s.Body)
			returnGathered(s.Else)

		case StmtFor, StmtWhile:
			returnGathered(s.Body)
		}
	}
}
