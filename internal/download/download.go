// download.go: Package download fetches candidate images to disk without ever
// leaving a partially written file behind.
package download

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/pinggame/pingharvest/internal/errors"
	"github.com/pinggame/pingharvest/internal/httpclient"
	"github.com/pinggame/pingharvest/internal/logging"
)

const (
	// DefaultReferer is sent with every image request
	DefaultReferer = "https://www.google.com/"

	componentName = "download"
)

// ErrBadStatus is returned when the image server answers with a non 2xx status
var ErrBadStatus = errors.Newf("unexpected HTTP status").
	Component(componentName).
	Category(errors.CategoryNetwork).
	Build()

// Config holds downloader configuration
type Config struct {
	Referer string
	Timeout time.Duration
}

// Downloader writes remote images to local files
type Downloader struct {
	config Config
	http   *httpclient.Client
	logger *slog.Logger
}

// New creates a downloader on top of a shared HTTP client
func New(config Config, httpClient *httpclient.Client, logger *slog.Logger) *Downloader {
	if config.Referer == "" {
		config.Referer = DefaultReferer
	}
	if httpClient == nil {
		httpClient = httpclient.New(&httpclient.Config{DefaultTimeout: config.Timeout})
	}
	return &Downloader{
		config: config,
		http:   httpClient,
		logger: logging.OrDiscard(logger).With("component", componentName),
	}
}

// Download fetches url into path. On success path holds the complete body;
// on failure nothing is left at path or in its directory.
func (d *Downloader) Download(ctx context.Context, url, path string) error {
	if d.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, d.config.Timeout)
		defer cancel()
	}

	resp, err := d.http.Get(ctx, url, map[string]string{"Referer": d.config.Referer})
	if err != nil {
		return errors.New(err).
			Component(componentName).
			Category(errors.CategoryImageFetch).
			NetworkContext(url, d.config.Timeout).
			Build()
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			d.logger.Debug("Failed to close image response body", "error", err)
		}
	}()

	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return errors.New(fmt.Errorf("%w: %d", ErrBadStatus, resp.StatusCode)).
			Component(componentName).
			Category(errors.CategoryImageFetch).
			Context("status_code", resp.StatusCode).
			NetworkContext(url, d.config.Timeout).
			Build()
	}

	written, err := writeAtomic(path, resp.Body)
	if err != nil {
		return err
	}

	d.logger.Debug("Downloaded image", "path", path, "bytes", written)
	return nil
}

// writeAtomic streams r into a temp file beside path and renames it into place.
func writeAtomic(path string, r io.Reader) (int64, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fileError(err, "create_directory", dir)
	}

	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return 0, fileError(err, "create_temp_file", dir)
	}
	tmpPath := tmp.Name()

	written, copyErr := io.Copy(tmp, r)
	closeErr := tmp.Close()
	if copyErr == nil {
		copyErr = closeErr
	}
	if copyErr != nil {
		_ = os.Remove(tmpPath)
		return 0, fileError(copyErr, "write_temp_file", tmpPath)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		_ = os.Remove(tmpPath)
		return 0, fileError(err, "rename_temp_file", path)
	}
	return written, nil
}

func fileError(err error, operation, path string) error {
	return errors.New(err).
		Component(componentName).
		Category(errors.CategoryFileIO).
		Context("operation", operation).
		Context("path", path).
		Build()
}
