// Package funds serves scheme lookups, searches and comparisons from the upstream cache.
package funds

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strconv"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/hongminglow/mf-tracker-be/internal/upstream"
)

// ErrNoSchemeCodes is returned by Compare when called with an empty list.
var ErrNoSchemeCodes = errors.New("at least one scheme code is required")

// Fetcher is the read-through lookup the gateway depends on.
type Fetcher interface {
	Fetch(ctx context.Context, key string) (json.RawMessage, error)
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithPartialCompare makes Compare return null for failed slots instead of
// failing the whole call. Compare still fails when every slot failed.
func WithPartialCompare() Option {
	return func(g *Gateway) { g.allowPartial = true }
}

// WithLogger sets the logger used for per-slot failures in partial mode.
func WithLogger(l *slog.Logger) Option {
	return func(g *Gateway) { g.logger = l }
}

// Gateway is read-only: it never touches user data.
type Gateway struct {
	fetcher      Fetcher
	allowPartial bool
	logger       *slog.Logger
}

func NewGateway(fetcher Fetcher, opts ...Option) *Gateway {
	g := &Gateway{fetcher: fetcher, logger: slog.Default()}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Search looks up schemes matching query; the upstream body is returned as is.
func (g *Gateway) Search(ctx context.Context, query string) (json.RawMessage, error) {
	return g.fetcher.Fetch(ctx, SearchKey(query))
}

// Scheme returns metadata and NAV history for one scheme code.
func (g *Gateway) Scheme(ctx context.Context, code int) (json.RawMessage, error) {
	return g.fetcher.Fetch(ctx, SchemeKey(code))
}

// Compare fetches every code in parallel and returns the bodies in input order.
func (g *Gateway) Compare(ctx context.Context, codes []int) ([]json.RawMessage, error) {
	if len(codes) == 0 {
		return nil, ErrNoSchemeCodes
	}
	if g.allowPartial {
		return g.comparePartial(ctx, codes)
	}

	results := make([]json.RawMessage, len(codes))
	eg, egCtx := errgroup.WithContext(ctx)
	for i, code := range codes {
		eg.Go(func() error {
			body, err := g.fetcher.Fetch(egCtx, SchemeKey(code))
			if err != nil {
				return fmt.Errorf("compare scheme %d: %w", code, err)
			}
			results[i] = body
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		if !errors.Is(err, upstream.ErrUnavailable) {
			err = fmt.Errorf("%w: %v", upstream.ErrUnavailable, err)
		}
		return nil, err
	}
	return results, nil
}

func (g *Gateway) comparePartial(ctx context.Context, codes []int) ([]json.RawMessage, error) {
	results := make([]json.RawMessage, len(codes))
	failed := make([]error, len(codes))

	var eg errgroup.Group
	for i, code := range codes {
		eg.Go(func() error {
			body, err := g.fetcher.Fetch(ctx, SchemeKey(code))
			if err != nil {
				g.logger.WarnContext(ctx, "compare slot failed", "scheme_code", code, "error", err)
				failed[i] = err
				results[i] = json.RawMessage("null")
				return nil
			}
			results[i] = body
			return nil
		})
	}
	_ = eg.Wait()

	for _, err := range failed {
		if err == nil {
			return results, nil
		}
	}
	return nil, fmt.Errorf("%w: every compared scheme failed: %v", upstream.ErrUnavailable, errors.Join(failed...))
}

// SearchKey builds the cache key for a search. Surrounding whitespace is
// dropped and inner runs collapse to one space, so equivalent queries share an entry.
func SearchKey(query string) string {
	normalized := strings.Join(strings.Fields(query), " ")
	return "/mf/search?" + url.Values{"q": {normalized}}.Encode()
}

// SchemeKey builds the cache key for a single scheme.
func SchemeKey(code int) string {
	return "/mf/" + strconv.Itoa(code)
}
