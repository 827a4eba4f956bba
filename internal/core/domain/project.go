package domain

import (
	"maps"
	"path/filepath"
	"runtime"
	"slices"
	"time"
)

// Provider names accepted for the npm registry.
const (
	ProviderJSPM     = "jspm"
	ProviderUnpkg    = "unpkg"
	ProviderJSDelivr = "jsdelivr"
)

// DefaultLayer is the provider layer used unless configured otherwise.
const DefaultLayer = "default"

// DefaultCacheTTL bounds how long mutable origin indexes are served from cache.
const DefaultCacheTTL = 10 * time.Minute

// Settings are the effective options of one project after merging
// lockmap.yaml with defaults.
type Settings struct {
	Env          []string
	Exclusions   map[string]string
	Registry     string
	Provider     string
	Layer        string
	LocalDir     string
	LocalBaseURL string
	CacheDir     string
	CacheTTL     time.Duration
	Offline      bool
	Lockfile     string
	Output       string
	Flatten      bool
	Combine      bool
	Integrity    bool
	Parallelism  int
	MetricsFile  string
	SelfBaseURL  string
}

// DefaultSettings returns the settings used when lockmap.yaml is absent.
func DefaultSettings() Settings {
	return Settings{
		Env:         slices.Clone(DefaultConditions),
		Registry:    RegistryNPM,
		Provider:    ProviderJSPM,
		Layer:       DefaultLayer,
		LocalDir:    ".",
		CacheDir:    DefaultCachePath(),
		CacheTTL:    DefaultCacheTTL,
		Lockfile:    LockFileName,
		Output:      ImportMapFileName,
		Flatten:     true,
		Combine:     true,
		Parallelism: runtime.NumCPU(),
	}
}

// Project is a loaded project: its root, settings and own manifest.
type Project struct {
	Root       string
	ConfigPath string
	Manifest   *PackageConfig
	Settings   Settings
}

// Path resolves rel against the project root unless it is absolute.
func (p *Project) Path(rel string) string {
	if filepath.IsAbs(rel) {
		return rel
	}
	return filepath.Join(p.Root, rel)
}

// Conditions builds the condition set from the settings.
func (p *Project) Conditions() *ConditionSet {
	return NewConditionSet(p.Settings.Env, p.exclusions())
}

func (p *Project) exclusions() map[string]string {
	if len(p.Settings.Exclusions) == 0 {
		return nil
	}
	merged := make(map[string]string, len(DefaultExclusions)+len(p.Settings.Exclusions))
	maps.Copy(merged, DefaultExclusions)
	maps.Copy(merged, p.Settings.Exclusions)
	return merged
}
