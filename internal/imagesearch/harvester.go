package imagesearch

import (
	"context"
	"log/slog"

	"github.com/pinggame/pingharvest/internal/logging"
	"github.com/pinggame/pingharvest/internal/patterns"
)

// PageFetcher returns the raw result page for a query.
type PageFetcher interface {
	FetchHTML(ctx context.Context, query string) (string, error)
}

// Extractor pulls candidate URLs out of a result page.
type Extractor func(html string) []string

// DefaultExtractors are tried in order; a later tier only runs when every
// earlier tier found nothing.
var DefaultExtractors = []Extractor{
	patterns.ThumbnailURLs,
	patterns.ImageURLs,
}

// Harvester turns a search query into a bounded, duplicate free list of image URLs.
type Harvester struct {
	fetcher    PageFetcher
	extractors []Extractor
	logger     *slog.Logger
}

// NewHarvester creates a harvester using the default extraction tiers
func NewHarvester(fetcher PageFetcher, logger *slog.Logger) *Harvester {
	return &Harvester{
		fetcher:    fetcher,
		extractors: DefaultExtractors,
		logger:     logging.OrDiscard(logger).With("component", componentName),
	}
}

// Search returns at most limit distinct candidate URLs for query, in page order.
// An empty result is not an error.
func (h *Harvester) Search(ctx context.Context, query string, limit int) ([]string, error) {
	if limit <= 0 {
		return []string{}, nil
	}

	html, err := h.fetcher.FetchHTML(ctx, query)
	if err != nil {
		return nil, err
	}

	var candidates []string
	for tier, extract := range h.extractors {
		candidates = extract(html)
		if len(candidates) > 0 {
			h.logger.Debug("Extracted image candidates", "query", query, "tier", tier, "count", len(candidates))
			break
		}
	}

	seen := make(map[string]struct{}, len(candidates))
	urls := make([]string, 0, min(limit, len(candidates)))
	for _, c := range candidates {
		u := patterns.UnescapeAmpersands(c)
		if _, dup := seen[u]; dup {
			continue
		}
		seen[u] = struct{}{}
		urls = append(urls, u)
		if len(urls) == limit {
			break
		}
	}

	return urls, nil
}
