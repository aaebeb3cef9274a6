package lang

// This file defines the built-in evaluation environment visible to all
// template expressions. The static portion is lazily initialized once
// per process via builtinCache and cloned on every access; the dynamic
// portion (str, env) binds per-interpreter state.
//
// Built-in names can be shadowed by namespace identifiers.

import (
	"bufio"
	"log/slog"
	"maps"
	"os"
	"os/user"
	"path/filepath"
	"reflect"
	"runtime"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ardnew/mung"
)

// Private singleton cache.
//
//nolint:gochecknoglobals
var (
	builtinCacheOnce sync.Once
	builtinCache     map[string]any
)

// makeBuiltinCache returns a clone of the lazily-initialized,
// process-scoped environment of built-in variables and functions. The
// returned map can be safely mutated without affecting the cache.
func makeBuiltinCache() map[string]any {
	builtinCacheOnce.Do(func() {
		builtinCache = map[string]any{
			// Splice stringification and accumulator concatenation.
			"str":  Str,
			"join": joinValues,

			// Collection length. The expression engine compiles with
			// its own builtins disabled so namespace identifiers always
			// win; len is re-exposed here, where it shadows correctly.
			"len": lenValue,

			// System information (struct/string values).
			"target":   getTarget(),
			"platform": getPlatform(),
			"hostname": getHostname(),
			"user":     getUser(),
			"shell":    getShell(),

			// Working directory.
			"cwd": getCwd,

			// Filesystem functions.
			"file": map[string]any{
				"exists":    fileExists,
				"isDir":     fileIsDir,
				"isRegular": fileIsRegular,
				"isSymlink": fileIsSymlink,
				"read":      fileRead,
			},

			// Path manipulation functions.
			"path": map[string]any{
				"abs": pathAbs,
				"cat": pathCat,
				"rel": pathRel,
			},

			// PATH-like string manipulation via mung.
			"mung": map[string]any{
				"prefix":   mungPrefix,
				"prefixif": mungPrefixIf,
			},
		}
	})

	return maps.Clone(builtinCache)
}

// BuiltinKeys returns the top-level names in the built-in environment.
// This is useful for code completion and introspection.
func BuiltinKeys() []string {
	env := makeBuiltinCache()
	keys := make([]string, 0, len(env)+1)

	for k := range env {
		keys = append(keys, k)
	}

	// Add "env" which is populated per interpreter.
	keys = append(keys, "env")

	return keys
}

// BuiltinLookup looks up a dot-separated path in the built-in
// environment and returns the keys of any map found at that path.
// Returns nil if the path doesn't exist or doesn't point to a map.
//
// Special case: "env" returns environment variable names from
// os.Environ().
func BuiltinLookup(path string) []string {
	if path == "" {
		return BuiltinKeys()
	}

	if path == "env" {
		envMap := makeProcessEnvMap(nil)

		keys := make([]string, 0, len(envMap))
		for k := range envMap {
			keys = append(keys, k)
		}

		return keys
	}

	env := makeBuiltinCache()
	segments := strings.Split(path, ".")

	var current any = env

	for _, seg := range segments {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}

		current, ok = m[seg]
		if !ok {
			return nil
		}
	}

	if m, ok := current.(map[string]any); ok {
		keys := make([]string, 0, len(m))
		for k := range m {
			keys = append(keys, k)
		}

		return keys
	}

	return nil
}

// lenValue returns the element count of a string, slice, array, or
// map. Strings count runes, not bytes.
func lenValue(v any) (int, error) {
	if v == nil {
		return 0, nil
	}

	if s, ok := v.(string); ok {
		return utf8.RuneCountInString(s), nil
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map:
		return rv.Len(), nil
	}

	return 0, ErrExprEvaluate.With(
		slog.String("detail", "len: unsupported type"),
		slog.String("type", reflect.TypeOf(v).String()),
	)
}

// joinValues concatenates the textual form of each element, skipping
// absent values and empty strings.
func joinValues(values []any) string {
	var sb strings.Builder

	for _, v := range values {
		if v == nil {
			continue
		}

		sb.WriteString(Str(v))
	}

	return sb.String()
}

// ---------------------------------------------------------------------------
// System information helpers
// ---------------------------------------------------------------------------

// target contains string identifiers for a target operating system and
// instruction set architecture.
type target struct {
	OS   string
	Arch string
}

// getTarget returns the host target using GNU GCC/LLVM naming
// conventions.
func getTarget() target {
	t := getPlatform()

	switch t.Arch {
	case "386":
		t.Arch = "i386"
	case "amd64":
		t.Arch = "x86_64"
	case "arm":
		arm, ok := os.LookupEnv("GOARM")
		if ok {
			arm, _, _ = strings.Cut(arm, ",")
			switch strings.TrimSpace(arm) {
			case "5", "6", "7":
				t.Arch = "armv" + arm
			}
		}
	case "arm64":
		if t.OS != "darwin" {
			t.Arch = "aarch64"
		}
	case "mipsle":
		t.Arch = "mipsel"
	}

	return t
}

// getPlatform returns the host target using Go conventions.
//
// [Go conventions]:
// https://cs.opensource.google/go/go/+/master:src/cmd/dist/build.go
func getPlatform() target {
	var (
		o, a string
		ok   bool
	)

	if o, ok = os.LookupEnv("GOHOSTOS"); !ok {
		if o, ok = os.LookupEnv("GOOS"); !ok {
			o = runtime.GOOS
		}
	}

	if a, ok = os.LookupEnv("GOHOSTARCH"); !ok {
		if a, ok = os.LookupEnv("GOARCH"); !ok {
			a = runtime.GOARCH
		}
	}

	return target{
		OS:   o,
		Arch: a,
	}
}

func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return ""
	}

	return hostname
}

func getUser() *user.User {
	u, err := user.Current()
	if err != nil {
		return nil
	}

	return u
}

func getShell() string {
	shell, ok := os.LookupEnv("SHELL")
	if ok {
		return shell
	}

	u := getUser()
	if u == nil || u.Username == "" {
		return ""
	}

	f, err := os.Open("/etc/passwd")
	if err != nil {
		return ""
	}

	defer f.Close()

	s := bufio.NewScanner(f)
	for s.Scan() {
		l := s.Text()

		e := strings.Split(l, ":")
		if len(e) > 6 && e[0] == u.Username {
			return e[6]
		}
	}

	return ""
}

// ---------------------------------------------------------------------------
// Working directory
// ---------------------------------------------------------------------------

func getCwd() string {
	cwd, err := os.Getwd()
	if err != nil {
		return pathAbs(".")
	}

	return cwd
}

// ---------------------------------------------------------------------------
// Filesystem functions
// ---------------------------------------------------------------------------

func fileExists(path string) bool {
	_, err := os.Stat(path)

	return !os.IsNotExist(err)
}

func fileIsDir(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.IsDir()
}

func fileIsRegular(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}

	return info.Mode().IsRegular()
}

func fileIsSymlink(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}

	return info.Mode()&os.ModeSymlink != 0
}

func fileRead(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return ""
	}

	return string(data)
}

// ---------------------------------------------------------------------------
// Path manipulation functions
// ---------------------------------------------------------------------------

func pathAbs(path string) string {
	p, err := filepath.Abs(path)
	if err != nil {
		return path
	}

	return p
}

func pathCat(elem ...string) string {
	return filepath.Join(elem...)
}

func pathRel(from, to string) string {
	p, err := filepath.Rel(pathAbs(from), pathAbs(to))
	if err != nil {
		return pathCat(from, to)
	}

	return p
}

// ---------------------------------------------------------------------------
// PATH-like string manipulation (mung)
// ---------------------------------------------------------------------------

func mungPrefix(key string, prefix ...string) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
	).String()
}

func mungPrefixIf(
	key string,
	predicate func(string) bool,
	prefix ...string,
) string {
	return mung.Make(
		mung.WithSubjectItems(key),
		mung.WithDelim(string(os.PathListSeparator)),
		mung.WithPrefixItems(prefix...),
		mung.WithFilter(predicate),
	).String()
}

// ---------------------------------------------------------------------------
// Environment variable function
// ---------------------------------------------------------------------------

// makeProcessEnvMap converts a "KEY=VALUE" string slice to a map.
// If envList is nil, os.Environ() is used.
func makeProcessEnvMap(envList []string) map[string]string {
	if len(envList) == 0 {
		envList = os.Environ()
	}

	result := make(map[string]string, len(envList))

	for _, entry := range envList {
		key, value, ok := strings.Cut(entry, "=")
		if ok {
			result[key] = value
		}
	}

	return result
}

// envFunc returns the built-in env() function providing process
// environment access to template expressions.
func envFunc(processEnv map[string]string) func(string) string {
	return func(key string) string {
		return processEnv[key]
	}
}
