// resolver.go: Package localize resolves the Korean display name of an entity.
package localize

import (
	"context"
	"log/slog"
	"strings"

	"github.com/patrickmn/go-cache"

	"github.com/pinggame/pingharvest/internal/errors"
	"github.com/pinggame/pingharvest/internal/logging"
	"github.com/pinggame/pingharvest/internal/patterns"
)

const componentName = "localize"

// Strategy looks up a localized name. ok is false when the strategy found nothing.
type Strategy interface {
	Name() string
	Lookup(ctx context.Context, name string) (localized string, ok bool, err error)
}

// Observer is notified with the strategy that settled each lookup,
// or "miss" and "cache".
type Observer func(outcome string)

// entry is the memoized outcome of one lookup
type entry struct {
	localized string
	ok        bool
}

// Resolver runs its strategies in order and memoizes the outcome per name,
// including misses. Failed lookups are not memoized.
type Resolver struct {
	strategies []Strategy
	memo       *cache.Cache
	observe    Observer
	logger     *slog.Logger
}

// NewResolver creates a resolver over an ordered list of strategies
func NewResolver(logger *slog.Logger, strategies ...Strategy) *Resolver {
	return &Resolver{
		strategies: strategies,
		// No expiry and no janitor goroutine: entries live for the run
		memo:    cache.New(cache.NoExpiration, 0),
		observe: func(string) {},
		logger:  logging.OrDiscard(logger).With("component", componentName),
	}
}

// NewDefaultResolver searches the localized wiki first and falls back to the
// canonical page text.
func NewDefaultResolver(localized, canonical WikiSource, searchLimit int, logger *slog.Logger) *Resolver {
	return NewResolver(logger,
		&SearchStrategy{Source: localized, Limit: searchLimit},
		&PageTextStrategy{Source: canonical},
	)
}

// SetObserver registers a callback for lookup outcomes
func (r *Resolver) SetObserver(fn Observer) {
	if fn == nil {
		fn = func(string) {}
	}
	r.observe = fn
}

// Resolve returns the localized name of name, if any.
func (r *Resolver) Resolve(ctx context.Context, name string) (string, bool, error) {
	if v, found := r.memo.Get(name); found {
		e := v.(entry)
		r.observe("cache")
		return e.localized, e.ok, nil
	}

	for _, s := range r.strategies {
		localized, ok, err := s.Lookup(ctx, name)
		if err != nil {
			return "", false, errors.New(err).
				Component(componentName).
				Category(errors.CategoryLocalization).
				Context("strategy", s.Name()).
				Context("name", name).
				Build()
		}
		if ok {
			r.memo.Set(name, entry{localized: localized, ok: true}, cache.NoExpiration)
			r.observe(s.Name())
			r.logger.Debug("Resolved localized name", "name", name, "localized", localized, "strategy", s.Name())
			return localized, true, nil
		}
	}

	r.memo.Set(name, entry{}, cache.NoExpiration)
	r.observe("miss")
	r.logger.Debug("No localized name found", "name", name)
	return "", false, nil
}

// Cached returns the number of memoized names
func (r *Resolver) Cached() int {
	return r.memo.ItemCount()
}

// WikiSource is the subset of the wiki client used for localization
type WikiSource interface {
	SearchTitles(ctx context.Context, query string, limit int) ([]string, error)
	Wikitext(ctx context.Context, page string) (string, error)
}

// SearchStrategy searches the localized wiki for the canonical name and
// accepts the first title that is a Hangul name ending in 핑.
type SearchStrategy struct {
	Source WikiSource
	Limit  int
}

// Name implements Strategy
func (s *SearchStrategy) Name() string { return "search" }

// Lookup implements Strategy
func (s *SearchStrategy) Lookup(ctx context.Context, name string) (string, bool, error) {
	titles, err := s.Source.SearchTitles(ctx, name, s.Limit)
	if err != nil {
		return "", false, err
	}
	for _, t := range titles {
		title := strings.TrimSpace(t)
		if title != "" && patterns.IsLocalizedName(title) {
			return title, true, nil
		}
	}
	return "", false, nil
}

// PageTextStrategy scans the canonical page markup for a localized name.
type PageTextStrategy struct {
	Source WikiSource
}

// Name implements Strategy
func (s *PageTextStrategy) Name() string { return "page-text" }

// Lookup implements Strategy
func (s *PageTextStrategy) Lookup(ctx context.Context, name string) (string, bool, error) {
	text, err := s.Source.Wikitext(ctx, name)
	if err != nil {
		return "", false, err
	}
	if matches := patterns.LocalizedNames(text); len(matches) > 0 {
		return matches[0], true, nil
	}
	return "", false, nil
}
