package provider

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/core/ports"
	"go.trai.ch/lockmap/internal/semver"
	"go.trai.ch/zerr"
)

// packument is the subset of an npm registry package document we read.
type packument struct {
	DistTags map[string]string          `json:"dist-tags"`
	Versions map[string]json.RawMessage `json:"versions"`
}

// versionIndex is what a latest-version lookup needs from an origin: the
// published versions and the origin's own latest pointer.
type versionIndex struct {
	latest   string
	tags     map[string]string
	versions []string
}

// pick selects the version of idx that serves r: the tagged version for a
// tag, the latest pointer for a wildcard and otherwise the highest
// published version satisfying r.
func (idx versionIndex) pick(r semver.Range) (string, bool) {
	if tag, ok := r.Tag(); ok {
		v, found := idx.tags[tag]
		return v, found
	}
	if idx.latest != "" && r.IsWildcard() {
		return idx.latest, true
	}
	return semver.MaxSatisfying(idx.versions, r)
}

func fetchPackument(ctx context.Context, fetcher ports.Fetcher, registryURL, name string) (versionIndex, error) {
	url := registryURL + strings.Replace(name, "/", "%2f", 1)
	data, err := fetcher.Get(ctx, url, ports.Mutable)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return versionIndex{}, zerr.With(zerr.Wrap(fmt.Errorf("%w: %w", domain.ErrPackageNotFound, err), "npm:"+name), "package", name)
		}
		return versionIndex{}, err
	}

	var doc packument
	if err := json.Unmarshal(data, &doc); err != nil {
		return versionIndex{}, zerr.With(zerr.Wrap(fmt.Errorf("%w: %w", domain.ErrProviderResponseInvalid, err), "npm:"+name), "url", url)
	}

	return versionIndex{
		latest:   doc.DistTags["latest"],
		tags:     doc.DistTags,
		versions: slices.Sorted(maps.Keys(doc.Versions)),
	}, nil
}

func versionNotFound(target domain.VersionTarget) error {
	err := zerr.Wrap(domain.ErrVersionNotFound, target.String())
	err = zerr.With(err, "package", target.Package().String())
	return zerr.With(err, "range", target.Range.String())
}

func registryNotOwned(provider, registry string) error {
	err := zerr.Wrap(domain.ErrRegistryNotOwned, provider)
	return zerr.With(err, "registry", registry)
}

// splitNameVersionPath splits "name@version/rest" honoring scoped names.
func splitNameVersionPath(s string) (name, version, subpath string, ok bool) {
	start := 0
	if strings.HasPrefix(s, "@") {
		slash := strings.IndexByte(s, '/')
		if slash < 0 {
			return "", "", "", false
		}
		start = slash + 1
	}
	at := strings.IndexByte(s[start:], '@')
	if at < 0 {
		return "", "", "", false
	}
	at += start
	name = s[:at]
	version, rest, _ := strings.Cut(s[at+1:], "/")
	if name == "" || version == "" {
		return "", "", "", false
	}
	subpath = "."
	if rest != "" {
		subpath = "./" + rest
	}
	return name, version, subpath, true
}
