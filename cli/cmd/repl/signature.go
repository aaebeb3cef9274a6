package repl

import (
	"strings"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss"

	"github.com/ardnew/pyt/lang"
)

// builtinSignatures defines parameter hints for the built-in
// environment functions exposed to template expressions.
var builtinSignatures = map[string]struct {
	signature string
	params    []string
}{
	"str":           {"str(value)", []string{"value"}},
	"join":          {"join(args...)", []string{"...args"}},
	"len":           {"len(value)", []string{"value"}},
	"env":           {"env(name)", []string{"name"}},
	"cwd":           {"cwd()", nil},
	"file.exists":   {"file.exists(path)", []string{"path"}},
	"file.isDir":    {"file.isDir(path)", []string{"path"}},
	"file.isRegular": {
		"file.isRegular(path)",
		[]string{"path"},
	},
	"file.isSymlink": {
		"file.isSymlink(path)",
		[]string{"path"},
	},
	"file.read": {"file.read(path)", []string{"path"}},
	"path.abs":  {"path.abs(path)", []string{"path"}},
	"path.cat":  {"path.cat(elems...)", []string{"...elems"}},
	"path.rel":  {"path.rel(base, target)", []string{"base", "target"}},
	"mung.prefix": {
		"mung.prefix(prefix, items...)",
		[]string{"prefix", "...items"},
	},
	"mung.prefixif": {
		"mung.prefixif(cond, prefix, items...)",
		[]string{"cond", "prefix", "...items"},
	},
}

// Styles for parameter hints.
var (
	signatureStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	signatureNameStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("6")).
				Bold(true)
	currentParamStyle = lipgloss.NewStyle().
				Foreground(lipgloss.Color("11")).
				Bold(true)
	signatureSeparatorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
)

// functionCall represents a detected function call in the input.
type functionCall struct {
	name     string // possibly dotted function name (e.g., "path.cat")
	argIndex int    // current argument index (0-based)
	inCall   bool   // true if cursor is inside parameter list
}

// detectFunctionCall analyzes the input to determine if the cursor is
// inside a function call's parameter list. It returns the function
// name, current argument index, and whether we're inside a call.
func detectFunctionCall(input string, cursor int) functionCall {
	if cursor > len(input) {
		cursor = len(input)
	}

	// Scan backward from cursor to find the opening paren of the
	// innermost unclosed call.
	parenDepth := 0
	openParenPos := -1

	for i := cursor - 1; i >= 0; i-- {
		ch, size := utf8.DecodeLastRuneInString(input[:i+1])

		switch ch {
		case ')':
			parenDepth++
		case '(':
			if parenDepth == 0 {
				openParenPos = i

				goto foundOpenParen
			}

			parenDepth--
		}

		if i > 0 {
			i -= (size - 1)
		}
	}

foundOpenParen:
	if openParenPos == -1 {
		return functionCall{inCall: false}
	}

	// Extract the possibly dotted identifier before the '('.
	nameEnd := openParenPos
	nameStart := openParenPos

	for nameStart > 0 {
		r, size := utf8.DecodeLastRuneInString(input[:nameStart])

		if r == '.' || r == '_' ||
			(r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') ||
			(r >= '0' && r <= '9') {
			nameStart -= size
		} else {
			break
		}
	}

	funcName := strings.TrimSpace(input[nameStart:nameEnd])
	if funcName == "" {
		return functionCall{inCall: false}
	}

	// Count arguments by counting commas at depth 0 in the parameter
	// list.
	argIndex := 0
	depth := 0

	for i := 0; i < cursor-openParenPos-1; {
		ch, size := utf8.DecodeRuneInString(input[openParenPos+1+i:])

		switch ch {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				argIndex++
			}
		}

		i += size
	}

	return functionCall{
		name:     funcName,
		argIndex: argIndex,
		inCall:   true,
	}
}

// getSignature retrieves the signature for a given function name. It
// looks in the shared namespace for template-defined functions and in
// the built-in signature table. Returns empty string if the name does
// not resolve to a function.
func getSignature(
	in *lang.Interp,
	funcName string,
) (signature string, params []string) {
	if v, ok := in.Lookup(funcName); ok {
		if f, ok := v.(*lang.Fun); ok {
			return formatSignature(f.Name, f.Params), f.Params
		}
	}

	if b, ok := builtinSignatures[funcName]; ok {
		return b.signature, b.params
	}

	return "", nil
}

// formatSignature formats a function signature with parameter names.
func formatSignature(name string, params []string) string {
	return name + "(" + strings.Join(params, ", ") + ")"
}

// renderSignatureHint renders the function signature with the current
// parameter highlighted.
func renderSignatureHint(
	signature string,
	params []string,
	currentArgIdx int,
) string {
	if signature == "" {
		return ""
	}

	openParen := strings.Index(signature, "(")
	if openParen == -1 {
		return signatureStyle.Render(signature)
	}

	funcName := signature[:openParen]

	if len(params) == 0 {
		return signatureNameStyle.Render(funcName) +
			signatureStyle.Render("()")
	}

	var b strings.Builder

	b.WriteString(signatureNameStyle.Render(funcName))
	b.WriteString(signatureStyle.Render("("))

	for i, param := range params {
		if i > 0 {
			b.WriteString(signatureSeparatorStyle.Render(", "))
		}

		// Variadic parameters stay highlighted for every argument at
		// or beyond their position.
		isVariadic := strings.HasPrefix(param, "...")

		if (isVariadic && currentArgIdx >= i) ||
			(!isVariadic && currentArgIdx == i) {
			b.WriteString(currentParamStyle.Render(param))
		} else {
			b.WriteString(signatureStyle.Render(param))
		}
	}

	b.WriteString(signatureStyle.Render(")"))

	return b.String()
}
