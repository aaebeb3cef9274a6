package lang

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ParseReader parses a unit from an io.Reader.
func ParseReader(
	ctx context.Context,
	name string,
	r io.Reader,
	opts ...Option,
) (*Unit, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("unit", name))
	}

	return ParseString(ctx, name, string(data), opts...)
}

// ParseString parses a unit from a string. The returned unit has not
// been rewritten or compiled; see [Unit.Rewrite] and [Unit.Compile],
// or use [LoadString] for the full pipeline.
func ParseString(
	ctx context.Context,
	name, source string,
	opts ...Option,
) (*Unit, error) {
	o := makeOptions(opts...)

	lines, err := scanLogicalLines(source)
	if err != nil {
		return nil, WrapError(err).
			With(slog.String("unit", name))
	}

	p := &parser{
		unit:  &Unit{Name: name, Source: source},
		lines: lines,
	}

	body, err := p.parseBlock(-1)
	if err != nil {
		return nil, WrapError(err).
			With(slog.String("unit", name))
	}

	if p.i < len(p.lines) {
		return nil, ErrParse.
			WithSnippet(source, p.lines[p.i].pos).
			With(
				slog.String("unit", name),
				slog.String("detail", "unexpected indentation"),
			)
	}

	p.unit.Body = body

	o.logger.TraceContext(ctx, "parse complete",
		slog.String("unit", name),
		slog.Int("statement_count", len(body)))

	return p.unit, nil
}

// line is one logical line: a statement (or compound header plus inline
// suite) with physical line continuations already joined and
// triple-quoted literals folded into single-line quoted form.
type line struct {
	indent int
	text   string
	pos    Position
}

// tabStop is the width a tab advances the indentation column to.
const tabStop = 8

// scanLogicalLines splits unit source into logical lines. A logical
// line continues across physical newlines while a bracket pair or a
// triple-quoted literal remains open. Host comments (# outside string
// literals) are dropped; blank lines produce nothing.
func scanLogicalLines(source string) ([]line, error) {
	var (
		lines   []line
		text    strings.Builder
		current line
		depth   int
		open    bool // logical line in progress
	)

	flush := func() {
		t := strings.TrimSpace(text.String())
		if t != "" {
			current.text = t
			lines = append(lines, current)
		}

		text.Reset()

		open = false
		depth = 0
	}

	lineNo := 1

	i := 0
	for i < len(source) {
		if !open {
			// Measure indentation of a fresh logical line.
			indent := 0
		measure:
			for i < len(source) {
				switch source[i] {
				case ' ':
					indent++
				case '\t':
					indent = indent/tabStop*tabStop + tabStop
				default:
					break measure
				}
				i++
			}

			if i >= len(source) {
				break
			}

			switch source[i] {
			case '\n':
				lineNo++
				i++

				continue

			case '#':
				for i < len(source) && source[i] != '\n' {
					i++
				}

				continue
			}

			current = line{
				indent: indent,
				pos:    Position{Offset: i, Line: lineNo, Column: indent + 1},
			}
			open = true
		}

		ch := source[i]

		switch {
		case ch == '\n':
			lineNo++
			i++

			if depth > 0 {
				text.WriteByte(' ')

				continue
			}

			flush()

		case ch == '#':
			for i < len(source) && source[i] != '\n' {
				i++
			}

		case ch == '\'' || ch == '"':
			lit, next, nl, err := foldStringLiteral(source, i)
			if err != nil {
				return nil, WrapError(err).WithPosition(
					Position{Offset: i, Line: lineNo, Column: 0},
				)
			}

			text.WriteString(lit)

			lineNo += nl
			i = next

		default:
			switch ch {
			case '(', '[', '{':
				depth++
			case ')', ']', '}':
				if depth > 0 {
					depth--
				}
			}

			text.WriteByte(ch)
			i++
		}
	}

	if open {
		flush()
	}

	return lines, nil
}

// foldStringLiteral consumes the string literal opening at source[i]
// and returns its single-line quoted form, the offset just past the
// closing quote, and the number of newlines consumed. Triple-quoted
// literals are folded to an escaped double-quoted literal so that
// every downstream stage sees one uniform string syntax.
func foldStringLiteral(
	source string,
	i int,
) (lit string, next int, newlines int, err error) {
	quote := source[i]
	triple := strings.HasPrefix(source[i:], strings.Repeat(string(quote), 3))

	if triple {
		closer := strings.Repeat(string(quote), 3)

		end := strings.Index(source[i+3:], closer)
		if end < 0 {
			return "", 0, 0, ErrUnterminatedString.
				With(slog.String("literal", clip(source[i:], 40)))
		}

		content := source[i+3 : i+3+end]

		return strconv.Quote(unescapeString(content)),
			i + 3 + end + 3,
			strings.Count(content, "\n"),
			nil
	}

	j := i + 1
	for j < len(source) {
		switch source[j] {
		case '\\':
			j += 2

		case quote:
			return source[i : j+1], j + 1, 0, nil

		case '\n':
			return "", 0, 0, ErrUnterminatedString.
				With(slog.String("literal", clip(source[i:], 40)))

		default:
			j++
		}
	}

	return "", 0, 0, ErrUnterminatedString.
		With(slog.String("literal", clip(source[i:], 40)))
}

// parser holds the statement parser state.
type parser struct {
	unit  *Unit
	lines []line
	i     int
}

// parseBlock parses a run of statements more indented than the
// enclosing header. The block's indentation is fixed by its first
// line; a deeper line without a preceding compound header is an error.
func (p *parser) parseBlock(enclosing int) ([]Stmt, error) {
	if p.i >= len(p.lines) {
		return nil, nil
	}

	blockIndent := p.lines[p.i].indent
	if blockIndent <= enclosing {
		return nil, nil
	}

	var stmts []Stmt

	for p.i < len(p.lines) {
		ln := p.lines[p.i]

		if ln.indent < blockIndent {
			break
		}

		if ln.indent > blockIndent {
			return nil, ErrParse.
				WithSnippet(p.unit.Source, ln.pos).
				With(slog.String("detail", "unexpected indentation"))
		}

		parsed, err := p.parseStatement()
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, parsed...)
	}

	return stmts, nil
}

// parseStatement parses the logical line at the cursor, consuming any
// nested block it owns.
func (p *parser) parseStatement() ([]Stmt, error) {
	ln := p.lines[p.i]

	switch {
	case keywordArgOK(ln.text, "def"):
		s, err := p.parseDef()
		if err != nil {
			return nil, err
		}

		return []Stmt{s}, nil

	case keywordArgOK(ln.text, "if"):
		s, err := p.parseIf("if")
		if err != nil {
			return nil, err
		}

		return []Stmt{s}, nil

	case keywordArgOK(ln.text, "for"):
		s, err := p.parseFor()
		if err != nil {
			return nil, err
		}

		return []Stmt{s}, nil

	case keywordArgOK(ln.text, "while"):
		s, err := p.parseWhile()
		if err != nil {
			return nil, err
		}

		return []Stmt{s}, nil

	case keywordArgOK(ln.text, "elif"), keywordArgOK(ln.text, "else"):
		return nil, ErrParse.
			WithSnippet(p.unit.Source, ln.pos).
			With(slog.String("detail", "clause without matching if"))
	}

	p.i++

	return p.parseSimpleList(ln.text, ln.pos)
}

// parseSuite parses the suite of a compound header: either the inline
// remainder after the colon, or the indented block on following lines.
func (p *parser) parseSuite(header line, rest string) ([]Stmt, error) {
	if strings.TrimSpace(rest) != "" {
		return p.parseSimpleList(rest, header.pos)
	}

	body, err := p.parseBlock(header.indent)
	if err != nil {
		return nil, err
	}

	if len(body) == 0 {
		return nil, ErrParse.
			WithSnippet(p.unit.Source, header.pos).
			With(slog.String("detail", "expected an indented block"))
	}

	return body, nil
}

// parseDef parses: def Identifier '(' Params? ')' ':' Suite.
func (p *parser) parseDef() (Stmt, error) {
	ln := p.lines[p.i]
	p.i++

	header, rest, ok := splitColon(ln.text)
	if !ok {
		return Stmt{}, ErrParse.
			WithSnippet(p.unit.Source, ln.pos).
			With(slog.String("expected", ":"))
	}

	arg, _ := keywordArg(header, "def")

	open := strings.IndexByte(arg, '(')
	closed := strings.LastIndexByte(arg, ')')

	if open < 0 || closed < open ||
		strings.TrimSpace(arg[closed+1:]) != "" {
		return Stmt{}, ErrParse.
			WithSnippet(p.unit.Source, ln.pos).
			With(slog.String("detail", "malformed function header"))
	}

	name := strings.TrimSpace(arg[:open])
	if !isIdentifier(name) {
		return Stmt{}, ErrParse.
			WithSnippet(p.unit.Source, ln.pos).
			With(slog.String("detail", "invalid function name"))
	}

	var params []string

	if inner := strings.TrimSpace(arg[open+1 : closed]); inner != "" {
		for _, param := range strings.Split(inner, ",") {
			param = strings.TrimSpace(param)
			if !isIdentifier(param) {
				return Stmt{}, ErrParse.
					WithSnippet(p.unit.Source, ln.pos).
					With(slog.String("detail", "invalid parameter name"))
			}

			params = append(params, param)
		}
	}

	body, err := p.parseSuite(ln, rest)
	if err != nil {
		return Stmt{}, err
	}

	return Stmt{
		Kind:   StmtFunc,
		Pos:    ln.pos,
		Name:   name,
		Params: params,
		Body:   body,
	}, nil
}

// parseIf parses an if (or elif) clause and any chained elif/else
// clauses at the same indentation. Chained elifs become nested If
// statements in Else.
func (p *parser) parseIf(kw string) (Stmt, error) {
	ln := p.lines[p.i]
	p.i++

	header, rest, ok := splitColon(ln.text)
	if !ok {
		return Stmt{}, ErrParse.
			WithSnippet(p.unit.Source, ln.pos).
			With(slog.String("expected", ":"))
	}

	cond, _ := keywordArg(header, kw)
	if strings.TrimSpace(cond) == "" {
		return Stmt{}, ErrParse.
			WithSnippet(p.unit.Source, ln.pos).
			With(slog.String("detail", "missing condition"))
	}

	body, err := p.parseSuite(ln, rest)
	if err != nil {
		return Stmt{}, err
	}

	stmt := Stmt{
		Kind: StmtIf,
		Pos:  ln.pos,
		Expr: &Expr{Raw: strings.TrimSpace(cond), Pos: ln.pos},
		Body: body,
	}

	if p.i >= len(p.lines) || p.lines[p.i].indent != ln.indent {
		return stmt, nil
	}

	next := p.lines[p.i]

	switch {
	case keywordArgOK(next.text, "elif"):
		chained, err := p.parseIf("elif")
		if err != nil {
			return Stmt{}, err
		}

		stmt.Else = []Stmt{chained}

	case keywordArgOK(next.text, "else"):
		p.i++

		header, rest, ok := splitColon(next.text)
		if !ok || strings.TrimSpace(strings.TrimPrefix(header, "else")) != "" {
			return Stmt{}, ErrParse.
				WithSnippet(p.unit.Source, next.pos).
				With(slog.String("expected", ":"))
		}

		stmt.Else, err = p.parseSuite(next, rest)
		if err != nil {
			return Stmt{}, err
		}
	}

	return stmt, nil
}

// parseFor parses: for Identifier in Expression ':' Suite.
func (p *parser) parseFor() (Stmt, error) {
	ln := p.lines[p.i]
	p.i++

	header, rest, ok := splitColon(ln.text)
	if !ok {
		return Stmt{}, ErrParse.
			WithSnippet(p.unit.Source, ln.pos).
			With(slog.String("expected", ":"))
	}

	arg, _ := keywordArg(header, "for")

	name, iterable, ok := strings.Cut(arg, " in ")
	if !ok || !isIdentifier(strings.TrimSpace(name)) ||
		strings.TrimSpace(iterable) == "" {
		return Stmt{}, ErrParse.
			WithSnippet(p.unit.Source, ln.pos).
			With(slog.String("detail", "malformed for header"))
	}

	body, err := p.parseSuite(ln, rest)
	if err != nil {
		return Stmt{}, err
	}

	return Stmt{
		Kind: StmtFor,
		Pos:  ln.pos,
		Name: strings.TrimSpace(name),
		Expr: &Expr{Raw: strings.TrimSpace(iterable), Pos: ln.pos},
		Body: body,
	}, nil
}

// parseWhile parses: while Expression ':' Suite.
func (p *parser) parseWhile() (Stmt, error) {
	ln := p.lines[p.i]
	p.i++

	header, rest, ok := splitColon(ln.text)
	if !ok {
		return Stmt{}, ErrParse.
			WithSnippet(p.unit.Source, ln.pos).
			With(slog.String("expected", ":"))
	}

	cond, _ := keywordArg(header, "while")
	if strings.TrimSpace(cond) == "" {
		return Stmt{}, ErrParse.
			WithSnippet(p.unit.Source, ln.pos).
			With(slog.String("detail", "missing condition"))
	}

	body, err := p.parseSuite(ln, rest)
	if err != nil {
		return Stmt{}, err
	}

	return Stmt{
		Kind: StmtWhile,
		Pos:  ln.pos,
		Expr: &Expr{Raw: strings.TrimSpace(cond), Pos: ln.pos},
		Body: body,
	}, nil
}

// parseSimpleList parses one or more ';'-separated simple statements.
func (p *parser) parseSimpleList(text string, pos Position) ([]Stmt, error) {
	var stmts []Stmt

	for _, part := range splitTopLevel(text, ';') {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}

		stmt, err := p.parseSimple(part, pos)
		if err != nil {
			return nil, err
		}

		stmts = append(stmts, stmt)
	}

	return stmts, nil
}

// importPrefix is the package-style prefix that marks a template
// import directive.
const importPrefix = "template"

// parseSimple parses one simple statement.
func (p *parser) parseSimple(text string, pos Position) (Stmt, error) {
	switch text {
	case "pass":
		return Stmt{Kind: StmtPass, Pos: pos}, nil
	case "break":
		return Stmt{Kind: StmtBreak, Pos: pos}, nil
	case "continue":
		return Stmt{Kind: StmtContinue, Pos: pos}, nil
	case "return":
		return Stmt{Kind: StmtReturn, Pos: pos}, nil
	}

	if arg, ok := keywordArg(text, "return"); ok {
		return Stmt{
			Kind: StmtReturn,
			Pos:  pos,
			Expr: &Expr{Raw: strings.TrimSpace(arg), Pos: pos},
		}, nil
	}

	if arg, ok := keywordArg(text, "import"); ok {
		return p.parseImport(strings.TrimSpace(arg), pos)
	}

	if name, rhs, ok := findAssign(text); ok {
		if !isIdentifier(name) {
			return Stmt{}, ErrParse.
				WithSnippet(p.unit.Source, pos).
				With(slog.String("detail", "invalid assignment target"))
		}

		if strings.TrimSpace(rhs) == "" {
			return Stmt{}, ErrParse.
				WithSnippet(p.unit.Source, pos).
				With(slog.String("detail", "missing assignment value"))
		}

		return Stmt{
			Kind: StmtAssign,
			Pos:  pos,
			Name: name,
			Expr: &Expr{Raw: strings.TrimSpace(rhs), Pos: pos},
		}, nil
	}

	return Stmt{
		Kind: StmtExpr,
		Pos:  pos,
		Expr: &Expr{Raw: text, Pos: pos},
	}, nil
}

// parseImport parses the argument of an import statement. Only the
// template package is importable: "import template" opts the unit into
// template semantics, "import template.name" merges the named unit.
func (p *parser) parseImport(arg string, pos Position) (Stmt, error) {
	if arg == importPrefix {
		return Stmt{Kind: StmtImport, Pos: pos}, nil
	}

	name, ok := strings.CutPrefix(arg, importPrefix+".")
	if !ok || !isIdentifier(name) {
		return Stmt{}, ErrParse.
			WithSnippet(p.unit.Source, pos).
			With(
				slog.String("detail", "only template imports are supported"),
				slog.String("import", arg),
			)
	}

	return Stmt{Kind: StmtImport, Pos: pos, Name: name}, nil
}

// Text helpers. All of these operate on logical-line text, where string
// literals are single-line and quoted with ' or ".

// keywordArg returns the text following the leading keyword kw, and
// whether text begins with kw as a whole word.
func keywordArg(text, kw string) (string, bool) {
	if text == kw {
		return "", true
	}

	rest, ok := strings.CutPrefix(text, kw)
	if !ok {
		return "", false
	}

	r, _ := utf8.DecodeRuneInString(rest)
	if r != ' ' && r != '\t' && r != ':' && r != '(' {
		return "", false
	}

	return strings.TrimSpace(strings.TrimSuffix(rest, ":")), ok
}

func keywordArgOK(text, kw string) bool {
	_, ok := keywordArg(text, kw)

	return ok
}

// splitColon splits text at the first ':' that is outside string
// literals and balanced brackets.
func splitColon(text string) (head, rest string, ok bool) {
	depth := 0

	i := 0
	for i < len(text) {
		switch ch := text[i]; ch {
		case '\'', '"':
			_, next, err := scanQuoted(text, i)
			if err != nil {
				return "", "", false
			}

			i = next

		case '(', '[', '{':
			depth++
			i++

		case ')', ']', '}':
			depth--
			i++

		case ':':
			if depth == 0 {
				return text[:i], text[i+1:], true
			}

			i++

		default:
			i++
		}
	}

	return "", "", false
}

// splitTopLevel splits text on sep occurring outside string literals
// and balanced brackets.
func splitTopLevel(text string, sep byte) []string {
	var (
		parts []string
		depth int
		start int
	)

	i := 0
	for i < len(text) {
		switch ch := text[i]; ch {
		case '\'', '"':
			_, next, err := scanQuoted(text, i)
			if err != nil {
				// Unterminated literal: surface during compilation.
				return append(parts, text[start:])
			}

			i = next

		case '(', '[', '{':
			depth++
			i++

		case ')', ']', '}':
			depth--
			i++

		case sep:
			if depth == 0 {
				parts = append(parts, text[start:i])
				start = i + 1
			}

			i++

		default:
			i++
		}
	}

	return append(parts, text[start:])
}

// findAssign locates a top-level simple assignment "name = value",
// rejecting comparison operators that also contain '='.
func findAssign(text string) (name, value string, ok bool) {
	depth := 0

	i := 0
	for i < len(text) {
		switch ch := text[i]; ch {
		case '\'', '"':
			_, next, err := scanQuoted(text, i)
			if err != nil {
				return "", "", false
			}

			i = next

		case '(', '[', '{':
			depth++
			i++

		case ')', ']', '}':
			depth--
			i++

		case '=':
			if depth != 0 {
				i++

				continue
			}

			// Skip ==, !=, <=, >= and anything right of the first '='.
			if i+1 < len(text) && text[i+1] == '=' {
				i += 2

				continue
			}

			if i > 0 && strings.ContainsRune("!<>", rune(text[i-1])) {
				i++

				continue
			}

			return strings.TrimSpace(text[:i]), text[i+1:], true

		default:
			i++
		}
	}

	return "", "", false
}

// isIdentifier reports whether s is a valid identifier.
func isIdentifier(s string) bool {
	if s == "" {
		return false
	}

	for i, r := range s {
		if i == 0 {
			if !unicode.IsLetter(r) && r != '_' {
				return false
			}

			continue
		}

		if !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '_' {
			return false
		}
	}

	return !isKeyword(s)
}

// isKeyword reports whether s is a reserved statement keyword.
func isKeyword(s string) bool {
	switch s {
	case "def", "return", "if", "elif", "else", "for", "while",
		"break", "continue", "pass", "import", "in":
		return true
	default:
		return false
	}
}
