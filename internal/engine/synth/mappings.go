package synth

import (
	"strings"

	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/core/ports"
	"go.trai.ch/lockmap/internal/engine/exports"
)

// pkgInfo is everything needed to map one installed package.
type pkgInfo struct {
	coordinate domain.Coordinate
	url        string
	config     *domain.PackageConfig
	exports    domain.ExportsMap
	exportsErr error
	// files is nil when the package contents are unknown.
	files []string
}

func (p *pkgInfo) label() string {
	if p.coordinate.Name != "" {
		return p.coordinate.String()
	}
	return p.url
}

// mappings returns the specifier mappings of every subpath the package
// exports under env, keyed below name. A package without an exports field
// also maps "name/" to its root.
func (p *pkgInfo) mappings(name string, env *domain.ConditionSet, logger ports.Logger) map[string]string {
	out := make(map[string]string)
	if p.exportsErr != nil {
		logger.Warn("exports field is malformed, package is not mapped",
			"package", p.label(), "error", p.exportsErr.Error())
		return out
	}

	var files *exports.FileSet
	if p.files != nil {
		files = exports.NewFileSet(p.files)
	}
	resolved, err := exports.ResolveExports(p.exports, env, files)
	if err != nil {
		logger.Warn("some exports could not be resolved", "package", p.label(), "error", err.Error())
	}

	for subpath, target := range resolved {
		if key, url, ok := p.mapping(name, subpath, target); ok {
			out[key] = url
		}
	}
	if !p.config.HasExports() {
		out[name+"/"] = p.url
	}
	return out
}

// mapping turns one resolved export into an import map entry. Wildcards
// left unexpanded only map when they are plain folder patterns, since
// import maps have no suffix matching.
func (p *pkgInfo) mapping(name, subpath, target string) (key, url string, ok bool) {
	if strings.Contains(subpath, "*") {
		prefix, suffix, _ := strings.Cut(subpath, "*")
		targetPrefix, targetSuffix, _ := strings.Cut(target, "*")
		if suffix != "" || targetSuffix != "" ||
			!strings.HasSuffix(prefix, "/") || !strings.HasSuffix(targetPrefix, "/") {
			return "", "", false
		}
		subpath, target = prefix, targetPrefix
	}
	return name + strings.TrimPrefix(subpath, "."), p.url + strings.TrimPrefix(target, "./"), true
}

// resolve maps a single subpath the way a loader would.
func (p *pkgInfo) resolve(subpath string, env *domain.ConditionSet, logger ports.Logger) (string, bool) {
	if p.exportsErr != nil {
		logger.Warn("exports field is malformed, package is not mapped",
			"package", p.label(), "error", p.exportsErr.Error())
		return "", false
	}
	target, ok, err := exports.ResolveSubpath(p.exports, subpath, env)
	if err != nil {
		logger.Warn("subpath could not be resolved", "package", p.label(), "subpath", subpath, "error", err.Error())
		return "", false
	}
	if !ok {
		return "", false
	}
	return p.url + strings.TrimPrefix(target, "./"), true
}

func ensureSlash(url string) string {
	if strings.HasSuffix(url, "/") {
		return url
	}
	return url + "/"
}
