package cmd

import (
	"context"

	"github.com/alecthomas/kong"
)

// contextKey is used to store a [kong.Context] value in [context.Context].
type contextKey struct{}

// WithContext returns a new context.Context containing the given kong.Context.
func WithContext(ctx context.Context, ktx *kong.Context) context.Context {
	return context.WithValue(ctx, contextKey{}, ktx)
}

func kongContextFrom(ctx context.Context) *kong.Context {
	ktx, ok := ctx.Value(contextKey{}).(*kong.Context)
	if !ok || ktx == nil {
		return nil
	}

	return ktx
}

// KongContextFrom retrieves the kong.Context stored in ctx by
// [WithContext]. Returns nil if none was stored.
func KongContextFrom(ctx context.Context) *kong.Context {
	return kongContextFrom(ctx)
}

// searchPathKey is used to store template search directories in
// [context.Context].
type searchPathKey struct{}

// WithSearchPath returns a new context.Context containing the given
// template import search directories.
func WithSearchPath(ctx context.Context, dirs []string) context.Context {
	return context.WithValue(ctx, searchPathKey{}, dirs)
}

// SearchPathFrom retrieves the search directories stored in ctx by
// [WithSearchPath]. Returns nil if none were stored.
func SearchPathFrom(ctx context.Context) []string {
	dirs, _ := ctx.Value(searchPathKey{}).([]string)

	return dirs
}

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"
