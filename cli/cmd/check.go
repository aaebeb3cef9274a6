package cmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/ardnew/pyt/lang"
	"github.com/ardnew/pyt/log"
)

// Check parses, rewrites, and compiles templates without executing
// them. The import graph is walked statically: unresolved imports are
// errors, and import cycles are reported as warnings since execution
// would break them without failing.
type Check struct {
	Paths []string `arg:"" help:"Template files to check" name:"path" type:"existingfile"`
}

// importState tracks a unit's position in the static import walk.
type importState int

const (
	importUnvisited importState = iota
	importWalking
	importDone
)

// Run executes the check command.
func (c *Check) Run(ctx context.Context) (err error) {
	ctx, cancel := context.WithCancelCause(ctx)

	defer func(err *error) { cancel(*err) }(&err)

	for _, path := range c.Paths {
		walk := checker{
			dirs:  searchDirsFor(ctx, path),
			state: make(map[string]importState),
		}

		if err := walk.checkFile(ctx, path); err != nil {
			return ErrCheckFailed.
				With(slog.String("path", path)).
				Wrap(err)
		}

		log.InfoContext(ctx, "template ok",
			slog.String("path", path),
		)
	}

	return nil
}

// searchDirsFor returns the import search directories used when
// checking path, mirroring the order the renderer resolves in: the
// root's own directory, configured directories, the environment, and
// the working directory.
func searchDirsFor(ctx context.Context, path string) []string {
	dirs := []string{filepath.Dir(path)}
	dirs = append(dirs, SearchPathFrom(ctx)...)
	dirs = append(dirs, lang.SearchPathFromEnv()...)

	return append(dirs, ".")
}

// checker walks a root's static import graph.
type checker struct {
	dirs  []string
	state map[string]importState
}

// checkFile compiles the unit at path and recursively checks every
// import it names.
func (c *checker) checkFile(ctx context.Context, path string) error {
	u, err := lang.LoadFile(ctx, path)
	if err != nil {
		return err
	}

	c.state[u.Name] = importWalking

	for _, name := range u.Imports() {
		switch c.state[name] {
		case importWalking:
			log.WarnContext(ctx, "import cycle detected",
				slog.String("unit", u.Name),
				slog.String("imports", name),
			)

			continue

		case importDone:
			continue
		}

		resolved, ok := c.resolve(name)
		if !ok {
			return lang.ErrUnresolvedImport.
				WithUnit(u).
				With(
					slog.String("name", name),
					slog.Any("search_path", c.dirs),
				)
		}

		if err := c.checkFile(ctx, resolved); err != nil {
			return err
		}
	}

	c.state[u.Name] = importDone

	return nil
}

// resolve returns the first regular file matching name in the search
// directories.
func (c *checker) resolve(name string) (string, bool) {
	for _, dir := range c.dirs {
		path := filepath.Join(dir, name+lang.DefaultExtension)

		info, err := os.Stat(path)
		if err == nil && info.Mode().IsRegular() {
			return path, true
		}
	}

	return "", false
}
