package lang

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"github.com/klauspost/readahead"
	"github.com/zeebo/xxh3"
)

// unitCache stores compiled units keyed by (source_hash:name). Units
// are immutable once compiled, so one compilation is shared by every
// root that imports the same content.
//
//nolint:gochecknoglobals
var unitCache sync.Map

// unitEntry tracks the one-time compilation of a source.
type unitEntry struct {
	once sync.Once
	unit *Unit
	err  error
}

// LoadFile reads, parses, rewrites, and compiles the unit at path.
// The import name is the file base without its extension. Repeated
// loads of identical content return the same compiled unit.
func LoadFile(
	ctx context.Context,
	path string,
	opts ...Option,
) (*Unit, error) {
	o := makeOptions(opts...)

	name := filepath.Base(path)
	name = strings.TrimSuffix(name, o.extension)

	return loadFileCached(ctx, path, name, o)
}

// LoadString parses, rewrites, and compiles an in-memory unit without
// consulting the cache.
func LoadString(
	ctx context.Context,
	name, source string,
	opts ...Option,
) (*Unit, error) {
	o := makeOptions(opts...)

	u, err := ParseString(ctx, name, source, WithLogger(o.logger))
	if err != nil {
		return nil, err
	}

	if err := u.Compile(); err != nil {
		return nil, err
	}

	return u, nil
}

func loadFileCached(
	ctx context.Context,
	path, name string,
	o options,
) (*Unit, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("path", path))
	}

	defer f.Close()

	// Wrap with async read-ahead so data pre-fetches while previous
	// chunks hash.
	ra := readahead.NewReader(f)
	defer ra.Close()

	data, err := io.ReadAll(ra)
	if err != nil {
		return nil, ErrReadInput.Wrap(err).
			With(slog.String("path", path))
	}

	sourceHash := xxh3.Hash(data)
	cacheKey := strconv.FormatUint(sourceHash, 36) + ":" + name

	value, cacheHit := unitCache.LoadOrStore(cacheKey, new(unitEntry))

	entry, ok := value.(*unitEntry)
	if !ok {
		return nil, ErrReadInput.
			With(slog.String("issue", "invalid entry type in cache"))
	}

	o.logger.TraceContext(ctx, "cache lookup",
		slog.String("unit", name),
		slog.String("source_hash", strconv.FormatUint(sourceHash, 16)),
		slog.Bool("cache_hit", cacheHit))

	entry.once.Do(func() {
		u, parseErr := ParseString(
			ctx, name, string(data), WithLogger(o.logger),
		)
		if parseErr != nil {
			entry.err = WrapError(parseErr).
				With(slog.String("path", path))

			return
		}

		u.Path = path

		if compileErr := u.Compile(); compileErr != nil {
			entry.err = WrapError(compileErr).
				With(slog.String("path", path))

			return
		}

		entry.unit = u
	})

	if entry.err != nil {
		return nil, entry.err
	}

	return entry.unit, nil
}

// ClearCache removes every cached unit. This is primarily useful for
// testing or when memory needs to be reclaimed.
func ClearCache() {
	unitCache = sync.Map{}
}
