package cmd

import (
	"bufio"
	"context"
	"io"
	"log/slog"
	"os"

	"github.com/ardnew/pyt/lang"
	"github.com/ardnew/pyt/log"
)

// Render loads each template root, executes it, and writes the entry
// point's result to the output sink.
type Render struct {
	Paths  []string `arg:"" help:"Template files to render ('-' for stdin)" name:"path" optional:""`
	Output string   `       help:"Output file ('-' for stdout)"             name:"output" default:"-" short:"o"`
}

// Run executes the render command.
func (r *Render) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	out, closeOut, err := r.openOutput()
	if err != nil {
		return err
	}

	paths := r.Paths
	if len(paths) == 0 {
		paths = []string{stdinSource}
	}

	opts := []lang.Option{
		lang.WithSearchPath(SearchPathFrom(ctx)...),
	}

	for _, path := range paths {
		if err := renderPath(ctx, path, out, opts); err != nil {
			_ = closeOut()

			return ErrRenderFailed.
				With(slog.String("path", path)).
				Wrap(err)
		}

		log.DebugContext(ctx, "rendered template",
			slog.String("path", path),
		)
	}

	return closeOut()
}

// openOutput returns the sink writer and a close function. The writer
// is buffered so partial results of a failed render never reach a
// regular file before the error surfaces.
func (r *Render) openOutput() (io.Writer, func() error, error) {
	if r.Output == stdinSource {
		w := bufio.NewWriter(os.Stdout)

		return w, w.Flush, nil
	}

	file, err := os.Create(r.Output)
	if err != nil {
		return nil, nil, ErrOpenOutput.
			With(slog.String("file", r.Output)).
			Wrap(err)
	}

	w := bufio.NewWriter(file)

	return w, func() error {
		if err := w.Flush(); err != nil {
			file.Close()

			return err
		}

		return file.Close()
	}, nil
}

// renderPath renders a single template root to w.
func renderPath(
	ctx context.Context,
	path string,
	w io.Writer,
	opts []lang.Option,
) error {
	if path == stdinSource {
		source, err := io.ReadAll(bufio.NewReader(os.Stdin))
		if err != nil {
			return lang.ErrReadInput.Wrap(err)
		}

		return lang.RenderString(ctx, "(stdin)", string(source), w, opts...)
	}

	return lang.RenderFile(ctx, path, w, opts...)
}
