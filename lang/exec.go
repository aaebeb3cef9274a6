package lang

import (
	"context"
	"log/slog"
	"maps"
	"strings"

	"github.com/expr-lang/expr/vm"
)

// Interp executes compiled units against a single shared namespace.
// One Interp corresponds to one compilation root: every unit merged by
// an import directive executes into the same namespace, at most once.
//
// An Interp is not safe for concurrent use.
type Interp struct {
	ns       map[string]any
	builtins map[string]any
	units    map[string]*unitState
	opts     options

	// evalCtx is the context of the expression currently evaluating,
	// so functions invoked from inside expressions stay cancellable.
	evalCtx context.Context
}

// phase tracks per-root execution state of a merged unit.
type phase int

const (
	phaseUnexecuted phase = iota
	phaseExecuting
	phaseExecuted
)

// unitState pairs a resolved unit with its execution phase under the
// owning root.
type unitState struct {
	unit  *Unit
	phase phase
}

// NewInterp creates an interpreter with an empty namespace.
func NewInterp(opts ...Option) *Interp {
	o := makeOptions(opts...)

	builtins := makeBuiltinCache()
	builtins["env"] = envFunc(makeProcessEnvMap(o.processEnv))

	return &Interp{
		ns:       make(map[string]any),
		builtins: builtins,
		units:    make(map[string]*unitState),
		opts:     o,
	}
}

// Lookup returns the value bound to name in the shared namespace.
func (in *Interp) Lookup(name string) (any, bool) {
	v, ok := in.ns[name]

	return v, ok
}

// Names returns every identifier bound in the shared namespace.
func (in *Interp) Names() []string {
	names := make([]string, 0, len(in.ns))
	for k := range in.ns {
		names = append(names, k)
	}

	return names
}

// Execute merges a compiled unit into the shared namespace by running
// its top-level statements. Import directives encountered during
// execution resolve, merge, and execute their named units at the point
// of the directive, so later definitions in u override same-named
// definitions from its imports.
func (in *Interp) Execute(ctx context.Context, u *Unit) error {
	if err := u.Compile(); err != nil {
		return err
	}

	state, ok := in.units[u.Name]
	if !ok {
		state = &unitState{unit: u}
		in.units[u.Name] = state
	}

	if state.phase != phaseUnexecuted {
		return nil
	}

	state.phase = phaseExecuting
	defer func() { state.phase = phaseExecuted }()

	in.opts.logger.TraceContext(ctx, "executing unit",
		slog.String("unit", u.Name))

	_, _, err := in.execBlock(ctx, u, u.Body, nil)
	if err != nil {
		return WrapError(err).WithUnit(u)
	}

	return nil
}

// ExecString parses, compiles, and executes source as a top-level
// fragment of the shared namespace, returning the value of its final
// bare expression statement (or the absent value). It backs
// interactive evaluation.
func (in *Interp) ExecString(
	ctx context.Context,
	source string,
) (any, error) {
	u, err := ParseString(ctx, "(interactive)", source,
		WithLogger(in.opts.logger))
	if err != nil {
		return nil, err
	}

	// Interactive top-level fragments skip the accumulator rewrite at
	// statement level (functions they define still gather), so the
	// final expression's value can be reported instead of discarded.
	if err := u.Compile(); err != nil {
		return nil, err
	}

	var last any

	for i := range u.Body {
		s := &u.Body[i]

		if s.Kind == StmtExpr {
			v, err := in.eval(ctx, u, s.Expr, nil)
			if err != nil {
				return nil, err
			}

			last = v

			continue
		}

		last = nil

		_, _, err := in.execStmt(ctx, u, s, nil)
		if err != nil {
			return nil, err
		}
	}

	return last, nil
}

// gatherable reports whether a bare expression value participates in
// accumulation: absent values and empty strings are skipped.
func gatherable(v any) bool {
	if v == nil {
		return false
	}

	if s, ok := v.(string); ok && s == "" {
		return false
	}

	return true
}

// ctrl is the control-flow disposition of a statement or block.
type ctrl int

const (
	ctrlNone ctrl = iota
	ctrlReturn
	ctrlReturnGathered
	ctrlBreak
	ctrlContinue
)

// frame is one function activation: local bindings and the gather
// accumulator. A nil frame denotes module scope, where bindings go
// directly to the shared namespace.
type frame struct {
	locals map[string]any
	acc    []string
	gather bool
}

// bind writes a name in the innermost scope.
func (in *Interp) bind(fr *frame, name string, v any) {
	if fr == nil {
		in.ns[name] = v

		return
	}

	fr.locals[name] = v
}

// execBlock executes a statement block, returning the first non-nil
// control disposition.
func (in *Interp) execBlock(
	ctx context.Context,
	u *Unit,
	body []Stmt,
	fr *frame,
) (ctrl, any, error) {
	for i := range body {
		c, v, err := in.execStmt(ctx, u, &body[i], fr)
		if err != nil || c != ctrlNone {
			return c, v, err
		}
	}

	return ctrlNone, nil, nil
}

func (in *Interp) execStmt(
	ctx context.Context,
	u *Unit,
	s *Stmt,
	fr *frame,
) (ctrl, any, error) {
	switch s.Kind {
	case StmtPass:
		return ctrlNone, nil, nil

	case StmtBreak:
		return ctrlBreak, nil, nil

	case StmtContinue:
		return ctrlContinue, nil, nil

	case StmtExpr:
		_, err := in.eval(ctx, u, s.Expr, fr)

		return ctrlNone, nil, err

	case StmtGather:
		v, err := in.eval(ctx, u, s.Expr, fr)
		if err != nil {
			return ctrlNone, nil, err
		}

		if fr != nil && gatherable(v) {
			fr.acc = append(fr.acc, Str(v))
		}

		return ctrlNone, nil, nil

	case StmtAssign:
		v, err := in.eval(ctx, u, s.Expr, fr)
		if err != nil {
			return ctrlNone, nil, err
		}

		in.bind(fr, s.Name, v)

		return ctrlNone, nil, nil

	case StmtFunc:
		in.bind(fr, s.Name, in.makeFun(u, s))

		return ctrlNone, nil, nil

	case StmtReturn:
		if s.Expr == nil {
			return ctrlReturn, nil, nil
		}

		v, err := in.eval(ctx, u, s.Expr, fr)

		return ctrlReturn, v, err

	case StmtReturnGathered:
		return ctrlReturnGathered, nil, nil

	case StmtIf:
		v, err := in.eval(ctx, u, s.Expr, fr)
		if err != nil {
			return ctrlNone, nil, err
		}

		if Truthy(v) {
			return in.execBlock(ctx, u, s.Body, fr)
		}

		return in.execBlock(ctx, u, s.Else, fr)

	case StmtFor:
		return in.execFor(ctx, u, s, fr)

	case StmtWhile:
		return in.execWhile(ctx, u, s, fr)

	case StmtImport:
		if fr != nil {
			return ctrlNone, nil, ErrRewrite.
				WithSnippet(u.Source, s.Pos).
				With(slog.String(
					"detail", "import is only valid at the top level",
				))
		}

		if s.Name == "" {
			// Bare opt-in directive: nothing to merge.
			return ctrlNone, nil, nil
		}

		return ctrlNone, nil, in.importUnit(ctx, u, s)
	}

	return ctrlNone, nil, ErrRewrite.
		WithSnippet(u.Source, s.Pos).
		With(slog.String("detail", "unexpected statement "+s.Kind.String()))
}

func (in *Interp) execFor(
	ctx context.Context,
	u *Unit,
	s *Stmt,
	fr *frame,
) (ctrl, any, error) {
	v, err := in.eval(ctx, u, s.Expr, fr)
	if err != nil {
		return ctrlNone, nil, err
	}

	elems, err := iterate(v)
	if err != nil {
		return ctrlNone, nil, WrapError(err).
			WithSnippet(u.Source, s.Pos).
			WithUnit(u)
	}

	for _, elem := range elems {
		if err := ctx.Err(); err != nil {
			return ctrlNone, nil, err
		}

		in.bind(fr, s.Name, elem)

		c, rv, err := in.execBlock(ctx, u, s.Body, fr)
		if err != nil {
			return ctrlNone, nil, err
		}

		switch c {
		case ctrlReturn, ctrlReturnGathered:
			return c, rv, nil
		case ctrlBreak:
			return ctrlNone, nil, nil
		}
	}

	return ctrlNone, nil, nil
}

func (in *Interp) execWhile(
	ctx context.Context,
	u *Unit,
	s *Stmt,
	fr *frame,
) (ctrl, any, error) {
	for {
		if err := ctx.Err(); err != nil {
			return ctrlNone, nil, err
		}

		v, err := in.eval(ctx, u, s.Expr, fr)
		if err != nil {
			return ctrlNone, nil, err
		}

		if !Truthy(v) {
			return ctrlNone, nil, nil
		}

		c, rv, err := in.execBlock(ctx, u, s.Body, fr)
		if err != nil {
			return ctrlNone, nil, err
		}

		switch c {
		case ctrlReturn, ctrlReturnGathered:
			return c, rv, nil
		case ctrlBreak:
			return ctrlNone, nil, nil
		}
	}
}

// eval runs one compiled expression against the merged view of
// builtins, shared namespace, and activation locals.
func (in *Interp) eval(
	ctx context.Context,
	u *Unit,
	e *Expr,
	fr *frame,
) (any, error) {
	if e.Program == nil {
		return nil, ErrExprCompile.
			WithSnippet(u.Source, e.Pos).
			WithUnit(u).
			With(slog.String("detail", "expression was never compiled"))
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	prev := in.evalCtx
	in.evalCtx = ctx

	defer func() { in.evalCtx = prev }()

	v, err := vm.Run(e.Program, in.evalEnv(fr))
	if err != nil {
		return nil, ErrExprEvaluate.Wrap(err).
			WithSnippet(u.Source, e.Pos).
			WithUnit(u).
			With(slog.String("expression", clip(e.Source, 80)))
	}

	return v, nil
}

// evalEnv assembles the evaluation environment for one expression.
// Locals shadow the namespace, which shadows builtins; lookups are
// dynamic, so functions observe namespace overrides made after their
// definition.
func (in *Interp) evalEnv(fr *frame) map[string]any {
	env := maps.Clone(in.builtins)

	for k, v := range in.ns {
		env[k] = callable(v)
	}

	if fr != nil {
		for k, v := range fr.locals {
			env[k] = callable(v)
		}
	}

	return env
}

// callable converts namespace values to forms the expression engine
// can invoke directly.
func callable(v any) any {
	if f, ok := v.(*Fun); ok {
		return f.wrapper
	}

	return v
}

// Fun is a function defined by a unit, bound to the interpreter whose
// namespace its body resolves against at call time.
type Fun struct {
	Name   string
	Params []string
	Body   []Stmt
	Gather bool
	Pos    Position

	unit    *Unit
	interp  *Interp
	wrapper func(args ...any) (any, error)
}

func (in *Interp) makeFun(u *Unit, s *Stmt) *Fun {
	f := &Fun{
		Name:   s.Name,
		Params: s.Params,
		Body:   s.Body,
		Gather: s.Gather,
		Pos:    s.Pos,
		unit:   u,
		interp: in,
	}

	f.wrapper = func(args ...any) (any, error) {
		ctx := f.interp.evalCtx
		if ctx == nil {
			ctx = context.Background()
		}

		return f.Call(ctx, args...)
	}

	return f
}

// Call invokes the function with the given arguments. Gathering
// functions concatenate their accumulator when no explicit value is
// returned; an explicit non-absent return discards the accumulator,
// with a diagnostic if it gathered anything.
func (f *Fun) Call(ctx context.Context, args ...any) (any, error) {
	if len(args) != len(f.Params) {
		return nil, ErrParamCountMismatch.
			WithPosition(f.Pos).
			With(
				slog.String("function", f.Name),
				slog.Int("want", len(f.Params)),
				slog.Int("have", len(args)),
			)
	}

	fr := &frame{
		locals: make(map[string]any, len(f.Params)),
		gather: f.Gather,
	}

	for i, p := range f.Params {
		fr.locals[p] = args[i]
	}

	c, v, err := f.interp.execBlock(ctx, f.unit, f.Body, fr)
	if err != nil {
		return nil, err
	}

	if !f.Gather {
		if c == ctrlReturn {
			return v, nil
		}

		return nil, nil
	}

	// Accumulation substitutes only for an otherwise-absent result:
	// value-less returns, fall-through exits, and explicit returns
	// whose value is absent at runtime.
	if c != ctrlReturn || v == nil {
		return strings.Join(fr.acc, ""), nil
	}

	if len(fr.acc) > 0 {
		f.interp.opts.logger.WarnContext(ctx,
			"discarding gathered value",
			slog.String("function", f.Name),
			slog.String("gathered", clip(strings.Join(fr.acc, ""), 80)))
	}

	return v, nil
}
