package lang

import (
	"strconv"

	"github.com/expr-lang/expr/vm"

	"github.com/ardnew/pyt/log"
)

// Position locates a point in unit source text.
type Position struct {
	Offset int
	Line   int
	Column int
}

// String returns "line:col" for diagnostics.
func (p Position) String() string {
	return strconv.Itoa(p.Line) + ":" + strconv.Itoa(p.Column)
}

// Unit represents one template-flavored source file after parsing.
// Rewrite and Compile complete the compilation; a compiled Unit is
// immutable and safe to execute under any number of roots.
type Unit struct {
	Name   string // import name (file base without extension)
	Path   string // resolved file path, or "" for in-memory sources
	Source string // raw source text, retained for diagnostics
	Body   []Stmt

	rewritten bool
	compiled  bool
}

// ImportsTemplate reports whether the unit opts into template semantics
// with at least one import directive (bare or unit-naming).
func (u *Unit) ImportsTemplate() bool {
	for i := range u.Body {
		if u.Body[i].Kind == StmtImport {
			return true
		}
	}

	return false
}

// Imports returns the names of all units imported at the unit's top
// level, in source order. Bare "import template" directives contribute
// nothing.
func (u *Unit) Imports() []string {
	var names []string

	for i := range u.Body {
		if u.Body[i].Kind == StmtImport && u.Body[i].Name != "" {
			names = append(names, u.Body[i].Name)
		}
	}

	return names
}

// StmtKind discriminates the statement forms of the language.
type StmtKind int

const (
	// StmtExpr is a bare expression statement.
	StmtExpr StmtKind = iota

	// StmtGather is a bare expression statement rewritten to append its
	// value to the activation's accumulator. Produced only by Rewrite.
	StmtGather

	// StmtAssign binds Name to the value of Expr.
	StmtAssign

	// StmtFunc defines a function.
	StmtFunc

	// StmtReturn returns the value of Expr, or the absent value if Expr
	// is nil.
	StmtReturn

	// StmtReturnGathered returns the concatenation of the accumulator.
	// Produced only by Rewrite, replacing value-less returns in
	// gathering functions.
	StmtReturnGathered

	// StmtIf is a conditional with optional else block. Chained elif
	// clauses parse as nested StmtIf in Else.
	StmtIf

	// StmtFor iterates Expr binding each element to Name.
	StmtFor

	// StmtWhile loops while Expr is truthy.
	StmtWhile

	// StmtBreak exits the innermost loop.
	StmtBreak

	// StmtContinue advances the innermost loop.
	StmtContinue

	// StmtPass does nothing.
	StmtPass

	// StmtImport merges the named unit into the shared namespace.
	// Name is "" for the bare opt-in form "import template".
	StmtImport
)

// String returns a string representation of the statement kind.
func (k StmtKind) String() string {
	switch k {
	case StmtExpr:
		return "Expr"
	case StmtGather:
		return "Gather"
	case StmtAssign:
		return "Assign"
	case StmtFunc:
		return "Func"
	case StmtReturn:
		return "Return"
	case StmtReturnGathered:
		return "ReturnGathered"
	case StmtIf:
		return "If"
	case StmtFor:
		return "For"
	case StmtWhile:
		return "While"
	case StmtBreak:
		return "Break"
	case StmtContinue:
		return "Continue"
	case StmtPass:
		return "Pass"
	case StmtImport:
		return "Import"
	default:
		return "Unknown"
	}
}

// Stmt represents one statement. Which fields are meaningful depends
// on Kind.
type Stmt struct {
	Kind StmtKind
	Pos  Position

	// Expr is the bare/gathered expression, return value, condition of
	// If/While, or iterable of For.
	Expr *Expr

	// Name is the assignment target, function name, loop variable, or
	// imported unit name.
	Name string

	// Params are the parameter names of a function definition.
	Params []string

	// Gather marks a function definition whose body was rewritten to
	// accumulate bare expression values.
	Gather bool

	// Body is the block of a function, conditional, or loop.
	Body []Stmt

	// Else is the else block of a conditional.
	Else []Stmt
}

// Expr holds one expression: the source captured from the unit, the
// dequoted expr-lang source derived from it, and the compiled program.
type Expr struct {
	Raw     string // captured source, literals not yet dequoted
	Source  string // dequoted expr-lang source (set by Compile)
	Program *vm.Program
	Pos     Position
}

// options holds per-load and per-interpreter configuration.
type options struct {
	searchPath []string
	extension  string
	processEnv []string
	logger     log.Logger
}

// DefaultExtension is the file suffix that marks a unit as
// template-flavored.
const DefaultExtension = ".pyt"

// EntryPointName is the reserved identifier looked up in the shared
// namespace and auto-invoked after root execution.
const EntryPointName = "render"

func makeOptions(opts ...Option) options {
	o := options{
		searchPath: nil,
		extension:  DefaultExtension,
		processEnv: nil,
		logger:     log.Default(),
	}

	for _, opt := range opts {
		opt(&o)
	}

	return o
}

// Option configures unit loading or interpreter behavior.
type Option func(*options)

// WithSearchPath sets the directories searched, in order, when
// resolving an imported unit name.
func WithSearchPath(dirs ...string) Option {
	return func(o *options) {
		o.searchPath = append(o.searchPath, dirs...)
	}
}

// WithExtension overrides the template file suffix. The leading dot is
// required.
func WithExtension(ext string) Option {
	return func(o *options) {
		if ext != "" {
			o.extension = ext
		}
	}
}

// WithProcessEnv sets the environment variables visible to the env()
// builtin. The format is []string{"KEY=VALUE", ...}. If nil,
// os.Environ() is used.
func WithProcessEnv(env []string) Option {
	return func(o *options) {
		o.processEnv = env
	}
}

// WithLogger sets the structured logger used by the pipeline.
func WithLogger(logger log.Logger) Option {
	return func(o *options) {
		o.logger = logger
	}
}
