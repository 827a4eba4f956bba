package exports

import (
	"errors"
	"strings"

	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/zerr"
)

// ResolveExports expands every subpath of m under env into the file a
// loader would be served.
//
// When files is non-nil, wildcard subpaths are expanded against it and
// every resolution whose target is missing is dropped. A file found through
// a wildcard is only kept if re-resolving the derived subpath against the
// whole map still selects that wildcard, so a more specific sibling always
// shadows it. When files is nil, resolutions are kept literally.
//
// A malformed entry fails only its own subpath: the other subpaths are
// still resolved and the failures are returned joined.
func ResolveExports(m domain.ExportsMap, env *domain.ConditionSet, files *FileSet) (map[string]string, error) {
	keys := m.Subpaths()
	out := make(map[string]string, m.Len())
	var errs []error

	for _, entry := range m.Entries() {
		targets, err := ExpandTargetResolutions(entry.Node, env, true)
		if err != nil {
			errs = append(errs, subpathError(err, entry.Subpath))
			continue
		}
		if len(targets) == 0 {
			continue
		}
		target := targets[0]

		subpathStars := strings.Count(entry.Subpath, "*")
		targetStars := strings.Count(target, "*")
		switch {
		case subpathStars == 0 && targetStars == 0:
			if keepLiteral(entry.Subpath, target, files) {
				out[entry.Subpath] = target
			}
		case subpathStars == 1 && targetStars == 1:
			if files == nil {
				out[entry.Subpath] = target
				continue
			}
			expandWildcard(keys, entry.Subpath, target, files, out)
		}
	}

	return out, errors.Join(errs...)
}

func keepLiteral(subpath, target string, files *FileSet) bool {
	if files == nil {
		return true
	}
	if strings.HasSuffix(subpath, "/") {
		return files.HasPrefix(target)
	}
	return files.Has(target)
}

func expandWildcard(keys []string, subpath, target string, files *FileSet, out map[string]string) {
	prefix, suffix, _ := splitPattern(normalizeFile(target))
	for _, file := range files.files {
		if len(file) <= len(prefix)+len(suffix) ||
			!strings.HasPrefix(file, prefix) || !strings.HasSuffix(file, suffix) {
			continue
		}
		middle := file[len(prefix) : len(file)-len(suffix)]
		derived := strings.Replace(subpath, "*", middle, 1)
		if best, ok := MatchSubpath(derived, keys); !ok || best != subpath {
			continue
		}
		out[derived] = "./" + file
	}
}

// ResolveSubpath resolves a single requested subpath the way a loader
// would. It reports false when the selected entry matches no condition.
func ResolveSubpath(m domain.ExportsMap, subpath string, env *domain.ConditionSet) (string, bool, error) {
	key, ok := MatchSubpath(subpath, m.Subpaths())
	if !ok {
		return "", false, subpathError(domain.ErrSubpathNotExported, subpath)
	}
	node, _ := m.Lookup(key)
	targets, err := ExpandTargetResolutions(node, env, true)
	if err != nil {
		return "", false, subpathError(err, key)
	}
	if len(targets) == 0 {
		return "", false, nil
	}
	return ReplaceMatch(subpath, key, targets[0]), true, nil
}

// ResolutionSet expands every subpath of m into all the targets any viable
// alternative could serve. Subpaths that resolve to nothing are omitted.
func ResolutionSet(m domain.ExportsMap, env *domain.ConditionSet) (map[string][]string, error) {
	out := make(map[string][]string, m.Len())
	var errs []error
	for _, entry := range m.Entries() {
		targets, err := ExpandTargetResolutions(entry.Node, env, false)
		if err != nil {
			errs = append(errs, subpathError(err, entry.Subpath))
			continue
		}
		if len(targets) > 0 {
			out[entry.Subpath] = targets
		}
	}
	return out, errors.Join(errs...)
}

// HasPatterns reports whether any subpath of m is a wildcard or folder key,
// in which case resolving it needs the package file list.
func HasPatterns(m domain.ExportsMap) bool {
	for _, subpath := range m.Subpaths() {
		if strings.Contains(subpath, "*") || strings.HasSuffix(subpath, "/") {
			return true
		}
	}
	return false
}

func subpathError(err error, subpath string) error {
	return zerr.With(zerr.Wrap(err, "exports "+subpath), "subpath", subpath)
}
