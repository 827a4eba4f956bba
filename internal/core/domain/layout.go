package domain

import "path/filepath"

const (
	// StateDirName is the name of the internal project state directory.
	StateDirName = ".lockmap"

	// CacheDirName is the name of the fetch cache directory.
	CacheDirName = "cache"

	// ConfigFileName is the name of the project configuration file.
	ConfigFileName = "lockmap.yaml"

	// ManifestFileName is the name of a package manifest.
	ManifestFileName = "package.json"

	// LockFileName is the default name of the serialized dependency graph.
	LockFileName = "lockmap.lock"

	// ImportMapFileName is the default name of the synthesized import map.
	ImportMapFileName = "importmap.json"

	// MetricsFileName is the default name of the metrics textfile.
	MetricsFileName = "metrics.prom"

	// DirPerm is the default permission for directories (rwxr-x---).
	DirPerm = 0o750

	// FilePerm is the default permission for files (rw-r--r--).
	FilePerm = 0o644

	// PrivateFilePerm is the default permission for private files (rw-------).
	PrivateFilePerm = 0o600
)

// DefaultStatePath returns the default root directory for lockmap state.
func DefaultStatePath() string {
	return StateDirName
}

// DefaultCachePath returns the default path for the fetch cache.
// It joins .lockmap and cache.
func DefaultCachePath() string {
	return filepath.Join(StateDirName, CacheDirName)
}

// DefaultMetricsPath returns the default path for the metrics textfile.
// It joins .lockmap and metrics.prom.
func DefaultMetricsPath() string {
	return filepath.Join(StateDirName, MetricsFileName)
}
