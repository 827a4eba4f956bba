// Package fetch implements the Fetcher port over HTTP with a local content cache.
package fetch

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/core/ports"
	"go.trai.ch/zerr"
)

const (
	httpClientTimeout = 30 * time.Second
	userAgent         = "lockmap"
)

// Options configure a Fetcher.
type Options struct {
	CacheDir string
	// TTL bounds how long mutable resources are served from cache.
	TTL time.Duration
	// Offline serves the cache only, regardless of age.
	Offline bool
}

// Fetcher implements ports.Fetcher with an on-disk cache keyed by URL.
type Fetcher struct {
	cacheDir   string
	ttl        time.Duration
	offline    bool
	httpClient *http.Client
	metrics    ports.Metrics
	now        func() time.Time
}

// New creates a Fetcher backed by the cache directory in opts.
func New(opts Options, metrics ports.Metrics) (*Fetcher, error) {
	return newFetcherWithClient(opts, metrics, &http.Client{Timeout: httpClientTimeout})
}

// newFetcherWithClient creates a Fetcher with a custom http client (used for testing).
func newFetcherWithClient(opts Options, metrics ports.Metrics, client *http.Client) (*Fetcher, error) {
	cleanPath := filepath.Clean(opts.CacheDir)
	if err := os.MkdirAll(cleanPath, domain.DirPerm); err != nil {
		return nil, zerr.With(zerr.Wrap(err, domain.ErrCacheCreateFailed.Error()), "path", cleanPath)
	}

	return &Fetcher{
		cacheDir:   cleanPath,
		ttl:        opts.TTL,
		offline:    opts.Offline,
		httpClient: client,
		metrics:    metrics,
		now:        time.Now,
	}, nil
}

// Get returns the body of url, from cache when the cached copy is fresh.
// When the origin cannot be reached, a stale cached copy is served instead.
func (f *Fetcher) Get(ctx context.Context, url string, policy ports.FetchPolicy) ([]byte, error) {
	cachePath := f.getCachePath(url)

	data, err := f.loadFromCache(cachePath, policy)
	if err == nil {
		f.observe(true)
		return data, nil
	}

	if f.offline {
		if stale, staleErr := f.readCache(cachePath); staleErr == nil {
			f.observe(true)
			return stale, nil
		}
		return nil, zerr.With(zerr.Wrap(domain.ErrProviderUnavailable, "offline mode and not cached"), "url", url)
	}

	data, err = f.download(ctx, url)
	if err != nil {
		if errors.Is(err, domain.ErrProviderUnavailable) {
			if stale, staleErr := f.readCache(cachePath); staleErr == nil {
				f.observe(true)
				return stale, nil
			}
		}
		return nil, err
	}
	f.observe(false)

	// A failed cache write only costs a refetch later.
	_ = f.saveToCache(cachePath, data)

	return data, nil
}

func (f *Fetcher) observe(cached bool) {
	if f.metrics != nil {
		f.metrics.ObserveFetch(cached)
	}
}

// getCachePath returns the file path for the cache entry of url.
func (f *Fetcher) getCachePath(url string) string {
	hash := sha256.Sum256([]byte(url))
	return filepath.Join(f.cacheDir, hex.EncodeToString(hash[:]))
}

// loadFromCache returns the cached body if it is fresh under policy.
func (f *Fetcher) loadFromCache(path string, policy ports.FetchPolicy) ([]byte, error) {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrCacheMiss
		}
		return nil, zerr.Wrap(err, domain.ErrCacheReadFailed.Error())
	}
	if policy == ports.Mutable && f.now().Sub(info.ModTime()) > f.ttl {
		return nil, domain.ErrCacheMiss
	}
	return f.readCache(path)
}

func (f *Fetcher) readCache(path string) ([]byte, error) {
	//nolint:gosec // Path is constructed from trusted directory and hashed filename
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.ErrCacheMiss
		}
		return nil, zerr.Wrap(err, domain.ErrCacheReadFailed.Error())
	}
	return data, nil
}

// saveToCache writes data atomically by writing to a temp file and renaming it.
func (f *Fetcher) saveToCache(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, domain.DirPerm); err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}

	tmpFile, err := os.CreateTemp(dir, "fetch-cache-*")
	if err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	tmpName := tmpFile.Name()

	// Clean up temp file on error
	defer func() {
		if _, statErr := os.Stat(tmpName); statErr == nil {
			_ = os.Remove(tmpName)
		}
	}()

	if _, err := tmpFile.Write(data); err != nil {
		_ = tmpFile.Close()
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	if err := tmpFile.Close(); err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	if err := os.Chmod(tmpName, domain.FilePerm); err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	if err := os.Rename(tmpName, path); err != nil {
		return zerr.Wrap(err, domain.ErrCacheWriteFailed.Error())
	}
	return nil
}

// download performs the request and classifies failures into provider errors.
func (f *Fetcher) download(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(fmt.Errorf("%w: %w", domain.ErrProviderRequestFailed, err), "GET "+url), "url", url)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err), "GET "+url), "url", url)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, zerr.With(zerr.Wrap(domain.ErrNotFound, "GET "+url), "url", url)
	case resp.StatusCode >= http.StatusInternalServerError:
		unavailable := zerr.With(zerr.Wrap(domain.ErrProviderUnavailable, "GET "+url), "url", url)
		return nil, zerr.With(unavailable, "status_code", resp.StatusCode)
	case resp.StatusCode != http.StatusOK:
		failed := zerr.With(zerr.Wrap(domain.ErrProviderRequestFailed, fmt.Sprintf("GET %s: status %d", url, resp.StatusCode)), "url", url)
		return nil, zerr.With(failed, "status_code", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, zerr.With(zerr.Wrap(fmt.Errorf("%w: %w", domain.ErrProviderUnavailable, err), "GET "+url), "url", url)
	}
	return body, nil
}

// Factory implements ports.FetcherFactory.
type Factory struct {
	metrics ports.Metrics
}

// NewFactory creates a Factory whose fetchers report to metrics.
func NewFactory(metrics ports.Metrics) *Factory {
	return &Factory{metrics: metrics}
}

// New creates a Fetcher configured from settings.
func (f *Factory) New(settings domain.Settings) (ports.Fetcher, error) {
	return New(Options{
		CacheDir: settings.CacheDir,
		TTL:      settings.CacheTTL,
		Offline:  settings.Offline,
	}, f.metrics)
}
