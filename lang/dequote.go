package lang

import (
	"log/slog"
	"strconv"
	"strings"
)

// SegmentKind discriminates the output of the dequoting scanner.
type SegmentKind int

const (
	// SegText is a run of literal text.
	SegText SegmentKind = iota

	// SegSplice is an embedded expression delimited by {{ and }}.
	SegSplice
)

// Segment is one piece of a scanned literal: either literal text or the
// source of a splice expression.
type Segment struct {
	Kind SegmentKind
	Text string
}

// ScanLiteral tokenizes literal text into alternating runs of text and
// splice expression sources. Splice delimiters nest like parentheses:
// "a{{f('{{x}} b')}}c" yields Text("a"), Splice("f('{{x}} b')"),
// Text("c") — the inner pair is part of the outer splice's source and
// is resolved when that source is rewritten.
//
// Within non-splice text, a run beginning with ## is dropped up to (not
// including) the end of its line. An unbalanced {{ or }} is an
// [ErrUnterminatedSplice]; a splice with no expression source is an
// [ErrEmptySplice].
func ScanLiteral(text string) ([]Segment, error) {
	var (
		segs  []Segment
		run   strings.Builder
		depth int
		start int // opening offset of the current splice source
	)

	i := 0
	for i < len(text) {
		switch {
		case strings.HasPrefix(text[i:], "{{"):
			if depth == 0 {
				if run.Len() > 0 {
					segs = append(segs, Segment{Kind: SegText, Text: run.String()})
					run.Reset()
				}

				start = i + 2
			}

			depth++
			i += 2

		case strings.HasPrefix(text[i:], "}}"):
			if depth == 0 {
				return nil, ErrUnterminatedSplice.
					With(slog.String("detail", "unbalanced }}"))
			}

			depth--
			if depth == 0 {
				src := text[start:i]
				if strings.TrimSpace(src) == "" {
					return nil, ErrEmptySplice
				}

				segs = append(segs, Segment{Kind: SegSplice, Text: src})
			}

			i += 2

		case depth == 0 && strings.HasPrefix(text[i:], "##"):
			// Comment: drop the remainder of the line, keep the newline.
			for i < len(text) && text[i] != '\n' {
				i++
			}

		default:
			if depth == 0 {
				run.WriteByte(text[i])
			}

			i++
		}
	}

	if depth > 0 {
		return nil, ErrUnterminatedSplice.
			With(slog.String("detail", "unbalanced {{"))
	}

	if run.Len() > 0 {
		segs = append(segs, Segment{Kind: SegText, Text: run.String()})
	}

	return segs, nil
}

// DequoteSource rewrites every string literal in an expr-lang source so
// that its splices expand to stringified sub-expressions. The rewrite
// recurses on splice sources before embedding them, so nesting resolves
// innermost-first. Source text outside string literals passes through
// verbatim.
func DequoteSource(src string) (string, error) {
	var out strings.Builder

	i := 0
	for i < len(src) {
		ch := src[i]
		if ch != '\'' && ch != '"' {
			out.WriteByte(ch)
			i++

			continue
		}

		raw, next, err := scanQuoted(src, i)
		if err != nil {
			return "", err
		}

		rewritten, err := dequoteLiteral(unescapeString(raw))
		if err != nil {
			return "", err
		}

		out.WriteString(rewritten)

		i = next
	}

	return out.String(), nil
}

// dequoteLiteral rewrites one literal's (unescaped) content into an
// expr-lang expression: text runs become quoted constants, splices
// become str(...) applications of their recursively-dequoted source,
// all joined with +. A literal with zero segments rewrites to the
// empty-string constant.
func dequoteLiteral(text string) (string, error) {
	segs, err := ScanLiteral(text)
	if err != nil {
		return "", err
	}

	switch {
	case len(segs) == 0:
		return `""`, nil

	case len(segs) == 1 && segs[0].Kind == SegText:
		return strconv.Quote(segs[0].Text), nil
	}

	parts := make([]string, len(segs))

	for i, seg := range segs {
		switch seg.Kind {
		case SegText:
			parts[i] = strconv.Quote(seg.Text)

		case SegSplice:
			inner, err := DequoteSource(seg.Text)
			if err != nil {
				return "", err
			}

			parts[i] = "str(" + strings.TrimSpace(inner) + ")"
		}
	}

	return "(" + strings.Join(parts, " + ") + ")", nil
}

// scanQuoted scans the string literal opening at src[start] and returns
// its raw (still escaped) content and the offset just past the closing
// quote.
func scanQuoted(src string, start int) (raw string, next int, err error) {
	quote := src[start]

	i := start + 1
	for i < len(src) {
		switch src[i] {
		case '\\':
			i += 2

		case quote:
			return src[start+1 : i], i + 1, nil

		default:
			i++
		}
	}

	return "", 0, ErrUnterminatedString.
		With(slog.String("literal", clip(src[start:], 40)))
}

// unescapeString interprets the standard backslash escapes of a quoted
// literal's raw content. Unrecognized escapes keep the escaped
// character.
func unescapeString(raw string) string {
	if !strings.ContainsRune(raw, '\\') {
		return raw
	}

	var out strings.Builder

	out.Grow(len(raw))

	i := 0
	for i < len(raw) {
		if raw[i] != '\\' || i+1 >= len(raw) {
			out.WriteByte(raw[i])
			i++

			continue
		}

		switch raw[i+1] {
		case 'n':
			out.WriteByte('\n')
		case 't':
			out.WriteByte('\t')
		case 'r':
			out.WriteByte('\r')
		case '\\':
			out.WriteByte('\\')
		case '\'':
			out.WriteByte('\'')
		case '"':
			out.WriteByte('"')
		default:
			out.WriteByte(raw[i+1])
		}

		i += 2
	}

	return out.String()
}

// clip truncates s to at most n bytes for diagnostics.
func clip(s string, n int) string {
	if len(s) <= n {
		return s
	}

	return s[:n] + "..."
}
