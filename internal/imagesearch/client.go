// client.go: Package imagesearch queries an HTML image search page and turns
// the result markup into a bounded list of candidate image URLs.
package imagesearch

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/pinggame/pingharvest/internal/errors"
	"github.com/pinggame/pingharvest/internal/httpclient"
	"github.com/pinggame/pingharvest/internal/logging"
)

const (
	// DefaultEndpoint is the HTML image search surface
	DefaultEndpoint = "https://www.google.com/search"

	// DefaultLanguage is sent as the hl parameter
	DefaultLanguage = "ko"

	acceptLanguage = "ko,en;q=0.8"
	componentName  = "imagesearch"
)

// Config holds the configuration for an image search client
type Config struct {
	Endpoint string
	Language string
	Timeout  time.Duration
}

// DefaultConfig returns the default image search configuration
func DefaultConfig() Config {
	return Config{
		Endpoint: DefaultEndpoint,
		Language: DefaultLanguage,
		Timeout:  httpclient.DefaultTimeout,
	}
}

// Client fetches image search result pages
type Client struct {
	config Config
	http   *httpclient.Client
	logger *slog.Logger
}

// NewClient creates an image search client on top of a shared HTTP client
func NewClient(config Config, httpClient *httpclient.Client, logger *slog.Logger) *Client {
	if config.Endpoint == "" {
		config.Endpoint = DefaultEndpoint
	}
	if config.Language == "" {
		config.Language = DefaultLanguage
	}
	if httpClient == nil {
		httpClient = httpclient.New(&httpclient.Config{DefaultTimeout: config.Timeout})
	}
	return &Client{
		config: config,
		http:   httpClient,
		logger: logging.OrDiscard(logger).With("component", componentName),
	}
}

// FetchHTML returns the result page for query as text.
// Bytes that are not valid UTF-8 are dropped.
func (c *Client) FetchHTML(ctx context.Context, query string) (string, error) {
	params := url.Values{}
	params.Set("tbm", "isch")
	params.Set("q", query)
	params.Set("hl", c.config.Language)
	reqURL := c.config.Endpoint + "?" + params.Encode()

	start := time.Now()
	resp, err := c.http.Get(ctx, reqURL, map[string]string{"Accept-Language": acceptLanguage})
	if err != nil {
		return "", errors.New(err).
			Component(componentName).
			Category(errors.CategoryNetwork).
			Context("query", query).
			NetworkContext(c.config.Endpoint, c.config.Timeout).
			Build()
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			c.logger.Debug("Failed to close search response body", "error", err)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return "", errors.Newf("image search returned status %d", resp.StatusCode).
			Component(componentName).
			Category(errors.CategoryHTTP).
			Context("query", query).
			Context("status_code", resp.StatusCode).
			Build()
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", errors.New(err).
			Component(componentName).
			Category(errors.CategoryNetwork).
			Context("query", query).
			Context("operation", "read_body").
			Build()
	}

	c.logger.Debug("Fetched image search page",
		"query", query,
		"bytes", len(body),
		"duration", time.Since(start))

	return strings.ToValidUTF8(string(body), ""), nil
}
