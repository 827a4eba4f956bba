package exports

import (
	"strings"
)

// MatchSubpath returns the key among keys that serves subpath. An exact key
// wins outright. Otherwise the candidates are folder keys ending in "/"
// that prefix subpath, and single-wildcard keys whose prefix and suffix
// both match around a non-empty middle. Candidates are ranked by
// comparePatternKeys.
func MatchSubpath(subpath string, keys []string) (string, bool) {
	best := ""
	found := false
	for _, key := range keys {
		if key == subpath {
			return key, true
		}
		if !matchesPattern(subpath, key) {
			continue
		}
		if !found || comparePatternKeys(key, best) < 0 {
			best = key
			found = true
		}
	}
	return best, found
}

// ReplaceMatch substitutes the part of subpath matched by key into target.
// Wildcard keys replace every "*" of target with the matched middle, folder
// keys append the remainder to target.
func ReplaceMatch(subpath, key, target string) string {
	if prefix, suffix, ok := splitPattern(key); ok {
		middle := subpath[len(prefix) : len(subpath)-len(suffix)]
		return strings.ReplaceAll(target, "*", middle)
	}
	if strings.HasSuffix(key, "/") {
		return target + strings.TrimPrefix(subpath, key)
	}
	return target
}

func matchesPattern(subpath, key string) bool {
	if prefix, suffix, ok := splitPattern(key); ok {
		return len(subpath) > len(prefix)+len(suffix) &&
			strings.HasPrefix(subpath, prefix) &&
			strings.HasSuffix(subpath, suffix)
	}
	return strings.HasSuffix(key, "/") && strings.HasPrefix(subpath, key)
}

// splitPattern splits a key with exactly one "*" into its fixed bounds.
func splitPattern(key string) (prefix, suffix string, ok bool) {
	if strings.Count(key, "*") != 1 {
		return "", "", false
	}
	prefix, suffix, _ = strings.Cut(key, "*")
	return prefix, suffix, true
}

// comparePatternKeys orders candidate keys, most specific first. The key
// with the longer base (everything up to and including the "*", or the
// whole folder key) wins. On equal bases a wildcard beats a folder, then
// the longer key wins, then the lexically smaller one, so the order is total.
func comparePatternKeys(a, b string) int {
	aStar := strings.Index(a, "*")
	bStar := strings.Index(b, "*")
	aBase := baseLength(a, aStar)
	bBase := baseLength(b, bStar)

	switch {
	case aBase > bBase:
		return -1
	case bBase > aBase:
		return 1
	case aStar == -1 && bStar != -1:
		return 1
	case bStar == -1 && aStar != -1:
		return -1
	case len(a) > len(b):
		return -1
	case len(b) > len(a):
		return 1
	default:
		return strings.Compare(a, b)
	}
}

func baseLength(key string, star int) int {
	if star == -1 {
		return len(key)
	}
	return star + 1
}
