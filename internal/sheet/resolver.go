package sheet

import (
	"sort"
	"strconv"
	"strings"

	"github.com/rollkeeper/rollkeeper/internal/pdf/forms"
)

// Resolve tries each candidate name against the raw map in order, in two
// passes. The first pass requires an exact match ignoring case and
// surrounding whitespace. Only if the entire candidate list misses does a
// second pass run, allowing substring containment in either direction with
// all whitespace removed. The strict first pass runs to completion before any
// loose matching so an early candidate can never be shadowed by a loose hit
// on a later one.
//
// Raw keys are scanned in sorted order: when a candidate matches more than
// one key, the lexicographically first key wins, so repeated extractions of
// the same raw map resolve identically.
//
// A miss returns ("", false) and is the normal outcome, not an error.
func Resolve(raw forms.RawFieldMap, candidates []string) (string, bool) {
	keys := sortedKeys(raw)
	if v, ok := resolveExact(raw, keys, candidates); ok {
		return v, true
	}

	for _, candidate := range candidates {
		squashed := squash(candidate)
		if squashed == "" {
			continue
		}
		for _, key := range keys {
			k := squash(key)
			if strings.Contains(k, squashed) || strings.Contains(squashed, k) {
				return stringify(raw[key]), true
			}
		}
	}
	return "", false
}

// ResolveExact performs only the strict pass. Personality and background
// fields use it exclusively: loose matching there caused field bleed, with
// short candidates like "Notes" swallowing unrelated widgets.
func ResolveExact(raw forms.RawFieldMap, candidates []string) (string, bool) {
	return resolveExact(raw, sortedKeys(raw), candidates)
}

func resolveExact(raw forms.RawFieldMap, keys []string, candidates []string) (string, bool) {
	for _, candidate := range candidates {
		want := normalize(candidate)
		for _, key := range keys {
			if normalize(key) == want {
				return stringify(raw[key]), true
			}
		}
	}
	return "", false
}

func sortedKeys(raw forms.RawFieldMap) []string {
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}

func normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

func squash(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), ""))
}

func stringify(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case bool:
		return strconv.FormatBool(val)
	default:
		return ""
	}
}
