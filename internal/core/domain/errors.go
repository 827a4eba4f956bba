package domain

import (
	"errors"

	"go.trai.ch/zerr"
)

// Input errors: the caller handed the engine something malformed.
var (
	// ErrInvalidExports is returned when an exports node has an unsupported shape.
	ErrInvalidExports = zerr.New("invalid exports")

	// ErrInvalidSpecifier is returned when an install target cannot be parsed.
	ErrInvalidSpecifier = zerr.New("invalid package specifier")

	// ErrInvalidVersionRange is returned when a version range string does not parse.
	ErrInvalidVersionRange = zerr.New("invalid version range")

	// ErrInvalidCoordinate is returned when a serialized coordinate does not parse.
	ErrInvalidCoordinate = zerr.New("invalid package coordinate")

	// ErrMissingManifestField is returned when a required package.json field is absent.
	ErrMissingManifestField = zerr.New("missing manifest field")

	// ErrInvalidManifest is returned when a package.json document cannot be decoded.
	ErrInvalidManifest = zerr.New("invalid package manifest")

	// ErrSubpathNotExported is returned when a requested subpath is not exported by a package.
	ErrSubpathNotExported = zerr.New("subpath is not exported")

	// ErrPrimaryNotFound is returned when an operation names a dependency that is not installed.
	ErrPrimaryNotFound = zerr.New("dependency is not installed")

	// ErrNoTargetsSpecified is returned when an operation requires at least one target.
	ErrNoTargetsSpecified = zerr.New("no targets specified")

	// ErrInvalidImportMap is returned when an existing import map cannot be decoded.
	ErrInvalidImportMap = zerr.New("invalid import map")

	// ErrNotLocalPath is returned when link is given a target that is not a local package directory.
	ErrNotLocalPath = zerr.New("target is not a local package directory")
)

// Provider errors: a content origin could not answer.
var (
	// ErrProviderUnavailable is returned when an origin cannot be reached.
	ErrProviderUnavailable = zerr.New("provider unavailable")

	// ErrPackageNotFound is returned when an origin does not know a package name.
	ErrPackageNotFound = zerr.New("package not found")

	// ErrVersionNotFound is returned when no published version satisfies a range.
	ErrVersionNotFound = zerr.New("no version satisfies range")

	// ErrProviderRequestFailed is returned when an origin answers with an unexpected status.
	ErrProviderRequestFailed = zerr.New("provider request failed")

	// ErrProviderResponseInvalid is returned when an origin response cannot be decoded.
	ErrProviderResponseInvalid = zerr.New("failed to parse provider response")

	// ErrNotFound is returned by the fetch layer when a URL does not exist.
	ErrNotFound = zerr.New("resource not found")
)

// Graph-consistency errors: configuration or programming mistakes.
var (
	// ErrUnknownRegistry is returned when no provider claims a registry.
	ErrUnknownRegistry = zerr.New("no provider claims registry")

	// ErrRegistryNotOwned is returned when a provider is asked to handle a registry it does not own.
	ErrRegistryNotOwned = zerr.New("registry not owned by provider")

	// ErrUnknownProvider is returned when the configuration names a provider that does not exist.
	ErrUnknownProvider = zerr.New("unknown provider")

	// ErrGraphInconsistent is returned when the dependency graph violates an invariant.
	ErrGraphInconsistent = zerr.New("dependency graph is inconsistent")
)

// Infrastructure errors.
var (
	// ErrConfigReadFailed is returned when the config file cannot be read.
	ErrConfigReadFailed = zerr.New("failed to read config file")

	// ErrConfigParseFailed is returned when the config file cannot be parsed.
	ErrConfigParseFailed = zerr.New("failed to parse config file")

	// ErrConfigNotFound is returned when neither lockmap.yaml nor package.json can be found.
	ErrConfigNotFound = zerr.New("could not find lockmap.yaml or package.json")

	// ErrInvalidConfig is returned when the config file holds an unsupported value.
	ErrInvalidConfig = zerr.New("invalid configuration")

	// ErrManifestReadFailed is returned when the project package.json cannot be read.
	ErrManifestReadFailed = zerr.New("failed to read package.json")

	// ErrLockReadFailed is returned when the lockfile cannot be read.
	ErrLockReadFailed = zerr.New("failed to read lockfile")

	// ErrLockUnmarshalFailed is returned when the lockfile cannot be decoded.
	ErrLockUnmarshalFailed = zerr.New("failed to unmarshal lockfile")

	// ErrLockMarshalFailed is returned when the lockfile cannot be encoded.
	ErrLockMarshalFailed = zerr.New("failed to marshal lockfile")

	// ErrLockWriteFailed is returned when the lockfile cannot be written.
	ErrLockWriteFailed = zerr.New("failed to write lockfile")

	// ErrCacheCreateFailed is returned when the fetch cache directory cannot be created.
	ErrCacheCreateFailed = zerr.New("failed to create cache directory")

	// ErrCacheReadFailed is returned when reading from the fetch cache fails.
	ErrCacheReadFailed = zerr.New("failed to read from cache")

	// ErrCacheWriteFailed is returned when writing to the fetch cache fails.
	ErrCacheWriteFailed = zerr.New("failed to write to cache")

	// ErrCacheMiss is returned when a requested item is not found in the cache.
	ErrCacheMiss = zerr.New("cache miss")

	// ErrInstallFailed is returned when an install, update or link operation fails.
	ErrInstallFailed = zerr.New("install failed")

	// ErrMetricsWriteFailed is returned when the metrics textfile cannot be written.
	ErrMetricsWriteFailed = zerr.New("failed to write metrics")
)

// ErrorKind classifies errors into the families callers act on.
type ErrorKind int

const (
	// KindInternal covers infrastructure failures and anything unclassified.
	KindInternal ErrorKind = iota
	// KindInput covers malformed manifests, specifiers and ranges.
	KindInput
	// KindProvider covers unreachable origins and unknown names or versions.
	KindProvider
	// KindGraph covers graph-consistency violations.
	KindGraph
)

func (k ErrorKind) String() string {
	switch k {
	case KindInput:
		return "input"
	case KindProvider:
		return "provider"
	case KindGraph:
		return "graph"
	default:
		return "internal"
	}
}

var (
	inputErrors = []error{
		ErrInvalidExports, ErrInvalidSpecifier, ErrInvalidVersionRange, ErrInvalidCoordinate,
		ErrMissingManifestField, ErrInvalidManifest, ErrSubpathNotExported, ErrPrimaryNotFound,
		ErrNoTargetsSpecified, ErrInvalidImportMap, ErrNotLocalPath,
	}
	providerErrors = []error{
		ErrProviderUnavailable, ErrPackageNotFound, ErrVersionNotFound,
		ErrProviderRequestFailed, ErrProviderResponseInvalid, ErrNotFound,
	}
	graphErrors = []error{
		ErrUnknownRegistry, ErrRegistryNotOwned, ErrUnknownProvider, ErrGraphInconsistent,
	}
)

// KindOf returns the family of err. Graph errors take precedence over
// provider errors, which take precedence over input errors, so a joined
// error reports its most severe member.
func KindOf(err error) ErrorKind {
	switch {
	case err == nil:
		return KindInternal
	case isAny(err, graphErrors):
		return KindGraph
	case isAny(err, providerErrors):
		return KindProvider
	case isAny(err, inputErrors):
		return KindInput
	default:
		return KindInternal
	}
}

func isAny(err error, targets []error) bool {
	for _, target := range targets {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}
