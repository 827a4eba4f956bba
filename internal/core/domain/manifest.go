package domain

import (
	"encoding/json"
	"fmt"
	"maps"
	"slices"
	"strings"

	"go.trai.ch/zerr"
)

// DefaultMain is the entry point assumed when a manifest declares neither
// "exports" nor "main".
const DefaultMain = "./index.js"

// DependencyMap holds one dependencies field of a manifest. Entries whose
// value is not a string are kept in Invalid so that only they fail.
type DependencyMap struct {
	Ranges  map[string]string
	Invalid []string
}

// Names returns the declared names in sorted order.
func (d DependencyMap) Names() []string {
	return slices.Sorted(maps.Keys(d.Ranges))
}

// Len returns the number of valid entries.
func (d DependencyMap) Len() int {
	return len(d.Ranges)
}

// UnmarshalJSON implements json.Unmarshaler.
func (d *DependencyMap) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("dependencies must be an object: %w", err)
	}
	d.Ranges = make(map[string]string, len(raw))
	d.Invalid = nil
	for name, value := range raw {
		var s string
		if err := json.Unmarshal(value, &s); err != nil {
			d.Invalid = append(d.Invalid, name)
			continue
		}
		d.Ranges[name] = s
	}
	slices.Sort(d.Invalid)
	return nil
}

// MarshalJSON implements json.Marshaler.
func (d DependencyMap) MarshalJSON() ([]byte, error) {
	if d.Ranges == nil {
		return []byte("{}"), nil
	}
	return json.Marshal(d.Ranges)
}

// PackageConfig is the subset of a package.json the engine reads.
type PackageConfig struct {
	Name                 string        `json:"name,omitempty"`
	Version              string        `json:"version,omitempty"`
	Main                 string        `json:"main,omitempty"`
	Exports              *ExportsMap   `json:"-"`
	Dependencies         DependencyMap `json:"dependencies"`
	PeerDependencies     DependencyMap `json:"peerDependencies"`
	DevDependencies      DependencyMap `json:"devDependencies"`
	OptionalDependencies DependencyMap `json:"optionalDependencies"`

	// ExportsErr is set when the "exports" field exists but cannot be decoded.
	ExportsErr error `json:"-"`
}

// ParsePackageConfig decodes a package.json document. A malformed "exports"
// field does not fail the manifest; it is reported through ExportsErr.
func ParsePackageConfig(data []byte) (*PackageConfig, error) {
	var raw struct {
		PackageConfig
		Exports json.RawMessage `json:"exports"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, zerr.Wrap(fmt.Errorf("%w: %w", ErrInvalidManifest, err), "failed to decode package.json")
	}

	cfg := raw.PackageConfig
	if len(raw.Exports) > 0 {
		exports, err := ParseExportsMap(raw.Exports)
		if err != nil {
			cfg.ExportsErr = err
		} else {
			cfg.Exports = &exports
		}
	}
	return &cfg, nil
}

// HasExports reports whether the manifest declares an "exports" field.
func (p *PackageConfig) HasExports() bool {
	return p.Exports != nil || p.ExportsErr != nil
}

// ResolvedExports returns the exports map, deriving {".": main} when the
// manifest has no "exports" field.
func (p *PackageConfig) ResolvedExports() (ExportsMap, error) {
	if p.ExportsErr != nil {
		return ExportsMap{}, p.ExportsErr
	}
	if p.Exports != nil {
		return *p.Exports, nil
	}
	return NewExportsMap(ExportsEntry{Subpath: ".", Node: ExportsTarget(p.MainEntry())}), nil
}

// MainEntry returns "main" as a "./"-relative target.
func (p *PackageConfig) MainEntry() string {
	main := strings.TrimSpace(p.Main)
	if main == "" {
		return DefaultMain
	}
	main = strings.TrimPrefix(main, "./")
	return "./" + strings.TrimPrefix(main, "/")
}

// RuntimeDependencies returns dependencies and peer dependencies merged; a
// name declared in both keeps its dependencies range.
func (p *PackageConfig) RuntimeDependencies() map[string]string {
	out := make(map[string]string, p.Dependencies.Len()+p.PeerDependencies.Len())
	maps.Copy(out, p.PeerDependencies.Ranges)
	maps.Copy(out, p.Dependencies.Ranges)
	return out
}
