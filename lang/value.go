package lang

import (
	"fmt"
	"log/slog"
	"sort"
	"strconv"
	"strings"
)

func typeAttr(v any) slog.Attr {
	return slog.String("type", fmt.Sprintf("%T", v))
}

// Str converts a value to its textual form for splice interpolation
// and accumulator concatenation. The absent value converts to the
// empty string so that splicing an unset result never prints a
// placeholder token into rendered output.
func Str(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case uint64:
		return strconv.FormatUint(t, 10)
	case float32:
		return strconv.FormatFloat(float64(t), 'f', -1, 32)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case []string:
		return "[" + strings.Join(t, ", ") + "]"
	case []any:
		elems := make([]string, len(t))
		for i, e := range t {
			elems[i] = Str(e)
		}

		return "[" + strings.Join(elems, ", ") + "]"
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		pairs := make([]string, len(keys))
		for i, k := range keys {
			pairs[i] = k + ": " + Str(t[k])
		}

		return "{" + strings.Join(pairs, ", ") + "}"
	case *Fun:
		return "<function " + t.Name + ">"
	case fmt.Stringer:
		return t.String()
	default:
		return fmt.Sprintf("%v", t)
	}
}

// Truthy reports whether a value selects the true branch of a
// conditional: the absent value, false, numeric zero, and empty
// strings, slices, and maps are all falsy.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return t != ""
	case int:
		return t != 0
	case int64:
		return t != 0
	case uint64:
		return t != 0
	case float32:
		return t != 0
	case float64:
		return t != 0
	case []any:
		return len(t) > 0
	case []string:
		return len(t) > 0
	case map[string]any:
		return len(t) > 0
	default:
		return true
	}
}

// iterate returns the elements of an iterable value in order. Maps
// iterate over their keys in sorted order so loops are deterministic.
func iterate(v any) ([]any, error) {
	switch t := v.(type) {
	case []any:
		return t, nil
	case []string:
		elems := make([]any, len(t))
		for i, s := range t {
			elems[i] = s
		}

		return elems, nil
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}

		sort.Strings(keys)

		elems := make([]any, len(keys))
		for i, k := range keys {
			elems[i] = k
		}

		return elems, nil
	case string:
		elems := make([]any, 0, len(t))
		for _, r := range t {
			elems = append(elems, string(r))
		}

		return elems, nil
	case int:
		if t < 0 {
			t = 0
		}

		elems := make([]any, t)
		for i := range t {
			elems[i] = i
		}

		return elems, nil
	default:
		return nil, ErrNotIterable.With(typeAttr(v))
	}
}
