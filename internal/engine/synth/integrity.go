package synth

import (
	"context"
	"crypto/sha512"
	"encoding/base64"
	"errors"
	"strings"
	"sync"

	"go.trai.ch/lockmap/internal/core/domain"
	"go.trai.ch/lockmap/internal/core/ports"
	"go.trai.ch/zerr"
	"golang.org/x/sync/errgroup"
)

// Integrity returns the subresource integrity string of content.
func Integrity(content []byte) string {
	sum := sha512.Sum384(content)
	return "sha384-" + base64.StdEncoding.EncodeToString(sum[:])
}

// addIntegrity hashes every remote module the map points at. Folder
// mappings and non-http targets have no single body to hash.
func (s *Synthesizer) addIntegrity(ctx context.Context, m *domain.ImportMap, parallelism int) error {
	if s.fetcher == nil {
		return zerr.New("integrity requested without a fetcher")
	}
	ctx, span := s.tracer.Start(ctx, "integrity")
	defer span.End()

	var targets []string
	for _, u := range m.URLs() {
		if strings.HasSuffix(u, "/") {
			continue
		}
		if !strings.HasPrefix(u, "https://") && !strings.HasPrefix(u, "http://") {
			continue
		}
		targets = append(targets, u)
	}
	span.SetAttribute("lockmap.modules", len(targets))

	var mu sync.Mutex
	errs := make([]error, len(targets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(parallelism)
	for idx, u := range targets {
		g.Go(func() error {
			body, err := s.fetcher.Get(gctx, u, ports.Immutable)
			if err != nil {
				errs[idx] = zerr.With(zerr.Wrap(err, "integrity"), "url", u)
				return nil
			}
			sri := Integrity(body)
			mu.Lock()
			m.Integrity[u] = sri
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}
	if err := errors.Join(errs...); err != nil {
		span.RecordError(err)
		return err
	}
	return ctx.Err()
}
