package lang

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/ardnew/mung"
	"github.com/sahilm/fuzzy"
)

// SearchPathEnvVar names the process environment variable holding
// additional unit search directories, delimited like PATH.
const SearchPathEnvVar = "PYTPATH"

// SearchPathFromEnv returns the search directories named by
// [SearchPathEnvVar], in order, with empty and duplicate entries
// removed.
func SearchPathFromEnv() []string {
	value, ok := os.LookupEnv(SearchPathEnvVar)
	if !ok || value == "" {
		return nil
	}

	delim := string(os.PathListSeparator)

	munged := mung.Make(
		mung.WithSubjectItems(value),
		mung.WithDelim(delim),
	).String()

	var dirs []string

	for _, dir := range strings.Split(munged, delim) {
		if dir != "" {
			dirs = append(dirs, dir)
		}
	}

	return dirs
}

// searchDirs returns every directory consulted when resolving an
// imported unit name: configured directories first, then the process
// environment's, then the working directory.
func (in *Interp) searchDirs() []string {
	dirs := make([]string, 0, len(in.opts.searchPath)+2)
	dirs = append(dirs, in.opts.searchPath...)
	dirs = append(dirs, SearchPathFromEnv()...)
	dirs = append(dirs, ".")

	seen := make(map[string]bool, len(dirs))
	uniq := dirs[:0]

	for _, d := range dirs {
		if d == "" || seen[d] {
			continue
		}

		seen[d] = true

		uniq = append(uniq, d)
	}

	return uniq
}

// importUnit merges the unit named by an import directive into the
// shared namespace. An import of a unit that is mid-execution (a
// cycle) is treated as already executed: execution proceeds, but any
// identifier the cyclic unit has not yet bound remains absent until
// its own execution reaches that binding.
func (in *Interp) importUnit(
	ctx context.Context,
	from *Unit,
	s *Stmt,
) error {
	if state, ok := in.units[s.Name]; ok {
		switch state.phase {
		case phaseExecuting:
			in.opts.logger.WarnContext(ctx, "import cycle detected",
				slog.String("unit", s.Name),
				slog.String("imported_by", from.Name))

			return nil

		case phaseExecuted:
			return nil
		}

		return in.Execute(ctx, state.unit)
	}

	u, err := in.resolveUnit(ctx, s.Name)
	if err != nil {
		return WrapError(err).
			WithSnippet(from.Source, s.Pos).
			WithUnit(from)
	}

	return in.Execute(ctx, u)
}

// resolveUnit locates, parses, and compiles the unit with the given
// import name, consulting the search directories in order.
func (in *Interp) resolveUnit(
	ctx context.Context,
	name string,
) (*Unit, error) {
	filename := name + in.opts.extension

	for _, dir := range in.searchDirs() {
		path := filepath.Join(dir, filename)
		if !fileIsRegular(path) {
			continue
		}

		in.opts.logger.TraceContext(ctx, "resolved import",
			slog.String("unit", name),
			slog.String("path", path))

		return loadFileCached(ctx, path, name, in.opts)
	}

	err := ErrUnresolvedImport.With(
		slog.String("unit", name),
		slog.String("file", filename),
		slog.String("search_path",
			strings.Join(in.searchDirs(), string(os.PathListSeparator))),
	)

	if suggest := in.suggestUnits(name); len(suggest) > 0 {
		err = err.With(slog.String(
			"did_you_mean", strings.Join(suggest, ", "),
		))
	}

	return nil, err
}

// maxSuggestions caps the did-you-mean list on unresolved imports.
const maxSuggestions = 3

// suggestUnits fuzzy-matches name against every importable unit found
// in the search directories.
func (in *Interp) suggestUnits(name string) []string {
	var candidates []string

	seen := make(map[string]bool)

	for _, dir := range in.searchDirs() {
		entries, err := os.ReadDir(dir)
		if err != nil {
			continue
		}

		for _, entry := range entries {
			if entry.IsDir() {
				continue
			}

			base, ok := strings.CutSuffix(entry.Name(), in.opts.extension)
			if !ok || seen[base] {
				continue
			}

			seen[base] = true

			candidates = append(candidates, base)
		}
	}

	matches := fuzzy.Find(name, candidates)
	if len(matches) > maxSuggestions {
		matches = matches[:maxSuggestions]
	}

	suggest := make([]string, len(matches))
	for i, m := range matches {
		suggest[i] = m.Str
	}

	return suggest
}
