// discovery.go: Package discovery finds the canonical entity names and their
// seasons from the fandom wiki.
package discovery

import (
	"context"
	"log/slog"
	"strings"

	"github.com/pinggame/pingharvest/internal/conf"
	"github.com/pinggame/pingharvest/internal/errors"
	"github.com/pinggame/pingharvest/internal/logging"
	"github.com/pinggame/pingharvest/internal/patterns"
)

const componentName = "discovery"

// WikiSource is the subset of the wiki client used for discovery
type WikiSource interface {
	SearchTitles(ctx context.Context, query string, limit int) ([]string, error)
	CategoryMembers(ctx context.Context, category string, limit int) ([]string, error)
	Wikitext(ctx context.Context, page string) (string, error)
}

// Strategy produces a set of entity names
type Strategy interface {
	Name() string
	Discover(ctx context.Context) (*SeasonMap, error)
}

// Discoverer runs its strategies in order and keeps the first non-empty result
type Discoverer struct {
	strategies []Strategy
	logger     *slog.Logger
}

// NewDiscoverer creates a discoverer over an ordered list of strategies
func NewDiscoverer(logger *slog.Logger, strategies ...Strategy) *Discoverer {
	return &Discoverer{
		strategies: strategies,
		logger:     logging.OrDiscard(logger).With("component", componentName),
	}
}

// NewDefaultDiscoverer builds the season listing strategy followed by the
// category fallback, both reading from source.
func NewDefaultDiscoverer(source WikiSource, settings *conf.WikiSettings, logger *slog.Logger) *Discoverer {
	return NewDiscoverer(logger,
		&SeasonListingStrategy{
			Source: source,
			Query:  settings.SeasonSearch,
			Limit:  settings.SeasonSearchLimit,
			Logger: logger,
		},
		&CategoryStrategy{
			Source:   source,
			Category: settings.Category,
			Limit:    settings.CategoryLimit,
		},
	)
}

// Discover returns the names found by the first productive strategy.
// An empty map means no strategy found anything; any strategy error aborts.
func (d *Discoverer) Discover(ctx context.Context) (*SeasonMap, error) {
	for _, s := range d.strategies {
		names, err := s.Discover(ctx)
		if err != nil {
			return nil, errors.New(err).
				Component(componentName).
				Category(errors.CategoryDiscovery).
				Context("strategy", s.Name()).
				Build()
		}
		if names.Len() > 0 {
			d.logger.Info("Discovered entity names", "strategy", s.Name(), "count", names.Len())
			return names, nil
		}
		d.logger.Debug("Strategy found no names", "strategy", s.Name())
	}
	return NewSeasonMap(), nil
}

// SeasonListingStrategy reads per season listing pages and collects the
// entity links on each page.
type SeasonListingStrategy struct {
	Source WikiSource
	Query  string // search terms for the listing pages
	Limit  int
	Logger *slog.Logger
}

// Name implements Strategy
func (s *SeasonListingStrategy) Name() string { return "season-listing" }

// Discover implements Strategy. A name listed on several pages keeps the
// season of the last page read.
func (s *SeasonListingStrategy) Discover(ctx context.Context) (*SeasonMap, error) {
	logger := logging.OrDiscard(s.Logger)

	titles, err := s.Source.SearchTitles(ctx, s.Query, s.Limit)
	if err != nil {
		return nil, err
	}

	seasons := NewSeasonMap()
	for _, title := range titles {
		season, ok := patterns.SeasonNumber(title)
		if !ok {
			continue
		}

		text, err := s.Source.Wikitext(ctx, title)
		if err != nil {
			return nil, err
		}

		found := 0
		for _, link := range patterns.WikiLinks(text) {
			if !patterns.IsEntityName(link) {
				continue
			}
			seasons.Put(link, season)
			found++
		}
		logger.Debug("Read season listing page", "title", title, "season", season, "entities", found)
	}

	return seasons, nil
}

// CategoryStrategy enumerates a wiki category. Seasons are unknown.
type CategoryStrategy struct {
	Source   WikiSource
	Category string
	Limit    int
}

// Name implements Strategy
func (s *CategoryStrategy) Name() string { return "category" }

// Discover implements Strategy
func (s *CategoryStrategy) Discover(ctx context.Context) (*SeasonMap, error) {
	members, err := s.Source.CategoryMembers(ctx, s.Category, s.Limit)
	if err != nil {
		return nil, err
	}

	names := NewSeasonMap()
	for _, m := range members {
		title := strings.TrimSpace(m)
		if title == "" || patterns.IsListingTitle(title) || names.Contains(title) {
			continue
		}
		names.PutUnknown(title)
	}
	return names, nil
}
