// client.go: Package wiki provides a rate limited MediaWiki API client for the
// fandom wiki that lists every teenieping.
package wiki

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"cgt.name/pkg/go-mwclient"
	"github.com/antonholmquist/jason"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/pinggame/pingharvest/internal/errors"
	"github.com/pinggame/pingharvest/internal/logging"
)

const (
	// DefaultUserAgent identifies the harvester to the wiki
	DefaultUserAgent = "tinyping-game/1.0 (local)"

	// DefaultRateLimit is the default number of API requests per second
	DefaultRateLimit = 5.0

	// DefaultTimeout is the default per request timeout
	DefaultTimeout = 30 * time.Second

	componentName = "wiki"
)

// Config holds the configuration for a wiki client
type Config struct {
	BaseURL   string        // api.php endpoint
	UserAgent string        // User-Agent header
	Timeout   time.Duration // HTTP timeout per request
	RateLimit float64       // requests per second, burst 1
}

// DefaultConfig returns the default configuration bound to baseURL
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:   baseURL,
		UserAgent: DefaultUserAgent,
		Timeout:   DefaultTimeout,
		RateLimit: DefaultRateLimit,
	}
}

// Client wraps a MediaWiki api.php endpoint
type Client struct {
	config  Config
	client  *mwclient.Client
	limiter *rate.Limiter
	logger  *slog.Logger
}

// NewClient creates a new wiki client
func NewClient(config Config, logger *slog.Logger) (*Client, error) {
	if config.UserAgent == "" {
		config.UserAgent = DefaultUserAgent
	}
	if config.Timeout == 0 {
		config.Timeout = DefaultTimeout
	}
	if config.RateLimit <= 0 {
		config.RateLimit = DefaultRateLimit
	}

	client, err := mwclient.New(config.BaseURL, config.UserAgent)
	if err != nil {
		return nil, errors.New(err).
			Component(componentName).
			Category(errors.CategoryConfiguration).
			Context("operation", "create_mwclient").
			Context("api_url", config.BaseURL).
			Build()
	}
	client.SetHTTPTimeout(config.Timeout)

	logger = logging.OrDiscard(logger).With("component", componentName, "api_url", config.BaseURL)

	return &Client{
		config:  config,
		client:  client,
		limiter: rate.NewLimiter(rate.Limit(config.RateLimit), 1),
		logger:  logger,
	}, nil
}

// BaseURL returns the api.php endpoint the client is bound to
func (c *Client) BaseURL() string {
	return c.config.BaseURL
}

// SearchTitles runs a full text search and returns the matching page titles in rank order
func (c *Client) SearchTitles(ctx context.Context, query string, limit int) ([]string, error) {
	params := map[string]string{
		"action":   "query",
		"list":     "search",
		"srsearch": query,
		"srlimit":  strconv.Itoa(limit),
	}

	resp, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	results, err := resp.GetObjectArray("query", "search")
	if err != nil {
		// No search block means no hits
		c.logger.Debug("Search response has no results", "query", query)
		return []string{}, nil
	}

	return titles(results), nil
}

// CategoryMembers lists the page titles in a category
func (c *Client) CategoryMembers(ctx context.Context, category string, limit int) ([]string, error) {
	params := map[string]string{
		"action":  "query",
		"list":    "categorymembers",
		"cmtitle": category,
		"cmlimit": strconv.Itoa(limit),
	}

	resp, err := c.get(ctx, params)
	if err != nil {
		return nil, err
	}

	members, err := resp.GetObjectArray("query", "categorymembers")
	if err != nil {
		c.logger.Debug("Category response has no members", "category", category)
		return []string{}, nil
	}

	return titles(members), nil
}

// Wikitext returns the raw markup of a page. A page that does not exist
// yields an empty string.
func (c *Client) Wikitext(ctx context.Context, page string) (string, error) {
	params := map[string]string{
		"action": "parse",
		"page":   page,
		"prop":   "wikitext",
	}

	resp, err := c.get(ctx, params)
	if err != nil {
		var apiErr mwclient.APIError
		if errors.As(err, &apiErr) && apiErr.Code == "missingtitle" {
			c.logger.Debug("Page does not exist", "page", page)
			return "", nil
		}
		return "", err
	}

	if text, err := resp.GetString("parse", "wikitext"); err == nil {
		return text, nil
	}
	// formatversion 1 nests the markup under "*"
	if text, err := resp.GetString("parse", "wikitext", "*"); err == nil {
		return text, nil
	}

	c.logger.Debug("Parse response has no wikitext", "page", page)
	return "", nil
}

// get waits on the politeness limiter and performs one API call
func (c *Client) get(ctx context.Context, params map[string]string) (*jason.Object, error) {
	reqID := uuid.New().String()[:8]
	logger := c.logger.With("request_id", reqID, "api_action", params["action"])

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, errors.New(err).
			Component(componentName).
			Category(errors.CategoryCancellation).
			Context("request_id", reqID).
			Context("operation", "rate_limiter_wait").
			Build()
	}

	params["formatversion"] = "2"

	start := time.Now()
	logger.Debug("Sending wiki API request", "params", params)
	resp, err := c.client.Get(params)
	if err != nil {
		var warnings mwclient.APIWarnings
		if errors.As(err, &warnings) && resp != nil {
			logger.Debug("Wiki API returned warnings", "warnings", warnings.Error())
			return resp, nil
		}

		var apiErr mwclient.APIError
		category := errors.CategoryNetwork
		if errors.As(err, &apiErr) {
			category = errors.CategoryHTTP
		}

		logger.Debug("Wiki API request failed", "error", err, "duration", time.Since(start))
		return nil, errors.New(err).
			Component(componentName).
			Category(category).
			Context("request_id", reqID).
			Context("api_action", params["action"]).
			NetworkContext(c.config.BaseURL, c.config.Timeout).
			Timing("wiki_api_request", time.Since(start)).
			Build()
	}

	logger.Debug("Wiki API request succeeded", "duration", time.Since(start))
	return resp, nil
}

// titles collects the non-empty "title" field of each result object
func titles(objects []*jason.Object) []string {
	out := make([]string, 0, len(objects))
	for _, obj := range objects {
		title, err := obj.GetString("title")
		if err != nil || title == "" {
			continue
		}
		out = append(out, title)
	}
	return out
}
