package lang

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
)

// RenderTo executes a compiled root unit into a fresh namespace and
// drives the entry point.
//
// The root must opt into template semantics with at least one import
// directive. After its top-level statements (and all transitively
// merged imports) execute, the entry point is looked up in the shared
// namespace: if absent, the run succeeds with no output; if present,
// it is invoked with zero arguments and its textual result is written
// to w exactly once, with no implicit trailing newline.
func RenderTo(
	ctx context.Context,
	u *Unit,
	w io.Writer,
	opts ...Option,
) error {
	if !u.ImportsTemplate() {
		return ErrNotTemplate.WithUnit(u)
	}

	in := NewInterp(opts...)

	if err := in.Execute(ctx, u); err != nil {
		return err
	}

	return in.renderEntryPoint(ctx, w)
}

// RenderFile loads the unit at path and renders it to w. The unit's
// directory is prepended to the import search path, so sibling units
// resolve without configuration.
func RenderFile(
	ctx context.Context,
	path string,
	w io.Writer,
	opts ...Option,
) error {
	opts = append(
		[]Option{WithSearchPath(filepath.Dir(path))}, opts...,
	)

	u, err := LoadFile(ctx, path, opts...)
	if err != nil {
		return err
	}

	return RenderTo(ctx, u, w, opts...)
}

// RenderString compiles an in-memory root unit and renders it to w.
func RenderString(
	ctx context.Context,
	name, source string,
	w io.Writer,
	opts ...Option,
) error {
	u, err := LoadString(ctx, name, source, opts...)
	if err != nil {
		return err
	}

	return RenderTo(ctx, u, w, opts...)
}

// renderEntryPoint invokes the entry point bound in the namespace, if
// any, and writes its result to w.
func (in *Interp) renderEntryPoint(ctx context.Context, w io.Writer) error {
	v, ok := in.ns[EntryPointName]
	if !ok {
		in.opts.logger.DebugContext(ctx, "no entry point defined",
			slog.String("name", EntryPointName))

		return nil
	}

	f, ok := v.(*Fun)
	if !ok {
		return ErrEntryPoint.
			Wrap(ErrNotCallable.With(typeAttr(v))).
			With(slog.String("name", EntryPointName))
	}

	result, err := f.Call(ctx)
	if err != nil {
		return ErrEntryPoint.Wrap(err).
			With(slog.String("name", EntryPointName))
	}

	if _, err := io.WriteString(w, Str(result)); err != nil {
		return ErrEntryPoint.Wrap(err).
			With(slog.String("name", EntryPointName))
	}

	return nil
}
