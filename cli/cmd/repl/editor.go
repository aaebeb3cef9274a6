package repl

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/ardnew/pyt/lang"
	"github.com/ardnew/pyt/log"
)

const defaultEditor = "vi"

// editSourceCommand implements [tea.ExecCommand] for the
// edit-compile-retry loop. It writes a scratch template to a temp
// file, opens the user's editor, and compiles the result. On compile
// error the user is prompted to re-edit; declining exits the program.
// The validated source is executed into the shared namespace by the
// model once the command returns.
type editSourceCommand struct {
	ctxFunc func() context.Context
	logger  log.Logger
	source  string
	stdin   io.Reader
	stdout  io.Writer
	stderr  io.Writer
}

// SetStdin sets the stdin reader for the command.
func (c *editSourceCommand) SetStdin(r io.Reader) { c.stdin = r }

// SetStdout sets the stdout writer for the command.
func (c *editSourceCommand) SetStdout(w io.Writer) { c.stdout = w }

// SetStderr sets the stderr writer for the command.
func (c *editSourceCommand) SetStderr(w io.Writer) { c.stderr = w }

// Run executes the edit-compile-retry loop. If the user declines to
// re-edit after a compile error, it returns [ErrEditDeclined]. A
// cleared file is treated as a cancelled edit.
func (c *editSourceCommand) Run() error {
	ctx := c.ctxFunc()

	f, err := os.CreateTemp(os.TempDir(), "pyt-repl-*"+lang.DefaultExtension)
	if err != nil {
		return err
	}

	tmpPath := f.Name()

	defer os.Remove(tmpPath)

	if err := f.Chmod(0o600); err != nil {
		f.Close()

		return err
	}

	f.Close()

	content := ""

	for {
		if err := os.WriteFile(tmpPath, []byte(content), 0o600); err != nil {
			return err
		}

		r, err := runEditor(ctx, c.stdin, c.stdout, c.stderr, tmpPath)
		if err != nil {
			return err
		}

		// Check for empty file (user cleared content).
		br := bufio.NewReader(r)
		if _, err := br.Peek(1); err != nil {
			return nil
		}

		data, err := io.ReadAll(br)
		if err != nil {
			return err
		}

		_, compileErr := lang.LoadString(
			ctx,
			"(editor)",
			string(data),
			lang.WithLogger(c.logger),
		)
		c.logger.TraceContext(
			ctx,
			"editor compile attempt",
			slog.Int("content_length", len(data)),
			slog.Bool("success", compileErr == nil),
		)

		if compileErr == nil {
			c.source = string(data)

			return nil
		}

		// Show error and prompt.
		fmt.Fprintf(c.stderr, "\nCompile error: %s\n", compileErr)
		fmt.Fprintf(c.stdout, "Re-edit? [Y/n] ")

		scanner := bufio.NewScanner(c.stdin)
		if !scanner.Scan() {
			return ErrEditDeclined
		}

		response := strings.TrimSpace(strings.ToLower(scanner.Text()))
		if response == "n" || response == "no" {
			return ErrEditDeclined
		}

		// Re-read the (failed) content for the next editor iteration.
		data, readErr := os.ReadFile(tmpPath)
		if readErr != nil {
			return readErr
		}

		content = string(data)
	}
}

// runEditor launches the user's editor on the given file path and
// returns a reader over the edited file content.
func runEditor(
	ctx context.Context,
	stdin io.Reader,
	stdout io.Writer,
	stderr io.Writer,
	path string,
) (io.Reader, error) {
	editor := os.Getenv("EDITOR")
	if editor == "" {
		editor = defaultEditor
	}

	cmd := exec.CommandContext(ctx, editor, path)
	cmd.Stdin = stdin
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	if err := cmd.Run(); err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}

	return f, nil
}
