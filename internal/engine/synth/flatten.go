package synth

import (
	"cmp"
	"maps"
	"net/url"
	"slices"
	"strings"

	"go.trai.ch/lockmap/internal/core/domain"
)

// combine replaces groups of subpath mappings of one package with a single
// folder mapping when every member maps to the same root plus its subpath.
func combine(mapping map[string]string) {
	groups := make(map[string][]string)
	for key := range mapping {
		if strings.HasSuffix(key, "/") {
			continue
		}
		name, subpath := domain.SplitSpecifier(key)
		if name == "" || subpath == "." {
			continue
		}
		groups[name] = append(groups[name], key)
	}

	for name, keys := range groups {
		if len(keys) < 2 {
			continue
		}
		root, ok := commonRoot(name, keys, mapping)
		if !ok {
			continue
		}
		if existing, has := mapping[name+"/"]; has && existing != root {
			continue
		}
		for _, key := range keys {
			delete(mapping, key)
		}
		mapping[name+"/"] = root
	}
}

func commonRoot(name string, keys []string, mapping map[string]string) (string, bool) {
	var root string
	for _, key := range keys {
		rel := strings.TrimPrefix(key, name+"/")
		base, found := strings.CutSuffix(mapping[key], rel)
		if !found || !strings.HasSuffix(base, "/") {
			return "", false
		}
		if root == "" {
			root = base
		} else if root != base {
			return "", false
		}
	}
	return root, root != ""
}

// flatten hoists package scope entries into one scope per origin when no
// referrer would resolve differently, then drops entries that repeat what
// the referrer would fall back to anyway.
func flatten(m *domain.ImportMap) {
	byOrigin := make(map[string][]string)
	for _, scopeURL := range m.ScopeURLs() {
		origin := originOf(scopeURL)
		if origin == "" || origin == scopeURL {
			continue
		}
		byOrigin[origin] = append(byOrigin[origin], scopeURL)
	}

	for _, origin := range slices.Sorted(maps.Keys(byOrigin)) {
		hoist(m, origin, byOrigin[origin])
	}
	dedupe(m)
}

func hoist(m *domain.ImportMap, origin string, scopeURLs []string) {
	merged := make(map[string]string)
	conflicted := make(map[string]bool)
	for _, scopeURL := range scopeURLs {
		for key, target := range m.Scopes[scopeURL] {
			if prev, ok := merged[key]; ok && prev != target {
				conflicted[key] = true
				continue
			}
			merged[key] = target
		}
	}

	target := m.Scopes[origin]
	if target == nil {
		target = make(map[string]string)
	}
	for _, key := range slices.Sorted(maps.Keys(merged)) {
		value := merged[key]
		if conflicted[key] {
			continue
		}
		// Hoisting must not shadow a top-level import for sibling scopes.
		if imported, ok := m.Imports[key]; ok && imported != value {
			continue
		}
		if prev, ok := target[key]; ok && prev != value {
			continue
		}
		target[key] = value
		for _, scopeURL := range scopeURLs {
			if m.Scopes[scopeURL][key] == value {
				delete(m.Scopes[scopeURL], key)
			}
		}
	}
	if len(target) > 0 {
		m.Scopes[origin] = target
	}
}

// dedupe removes scope entries equal to what the next enclosing scope, or
// the top-level imports, already provide.
func dedupe(m *domain.ImportMap) {
	scopeURLs := m.ScopeURLs()
	slices.SortStableFunc(scopeURLs, func(a, b string) int {
		return cmp.Compare(len(a), len(b))
	})
	for _, scopeURL := range scopeURLs {
		scope := m.Scopes[scopeURL]
		for _, key := range slices.Sorted(maps.Keys(scope)) {
			if inherited, ok := fallback(m, scopeURL, key); ok && inherited == scope[key] {
				delete(scope, key)
			}
		}
		if len(scope) == 0 {
			delete(m.Scopes, scopeURL)
		}
	}
}

// fallback returns what key resolves to for a referrer in scopeURL if the
// scope itself did not define it.
func fallback(m *domain.ImportMap, scopeURL, key string) (string, bool) {
	best := ""
	value, found := "", false
	for other, scope := range m.Scopes {
		if other == scopeURL || !strings.HasPrefix(scopeURL, other) || len(other) <= len(best) {
			continue
		}
		if v, ok := scope[key]; ok {
			best, value, found = other, v, true
		}
	}
	if found {
		return value, true
	}
	value, found = m.Imports[key]
	return value, found
}

func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return ""
	}
	return u.Scheme + "://" + u.Host + "/"
}
