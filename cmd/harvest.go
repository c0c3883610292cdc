package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"time"

	"github.com/google/uuid"

	"github.com/pinggame/pingharvest/internal/conf"
	"github.com/pinggame/pingharvest/internal/discovery"
	"github.com/pinggame/pingharvest/internal/download"
	"github.com/pinggame/pingharvest/internal/errors"
	"github.com/pinggame/pingharvest/internal/harvest"
	"github.com/pinggame/pingharvest/internal/httpclient"
	"github.com/pinggame/pingharvest/internal/imagesearch"
	"github.com/pinggame/pingharvest/internal/localize"
	"github.com/pinggame/pingharvest/internal/observability"
	"github.com/pinggame/pingharvest/internal/wiki"
)

const (
	noNamesMessage = "No names found from fandom."
	pushTimeout    = 10 * time.Second
)

// newRunID returns the short identifier attached to logs and pushed metrics
func newRunID() string {
	return uuid.NewString()[:8]
}

// runHarvest wires every component from settings, runs one harvest and
// prints the outcome line to stdout.
func runHarvest(ctx context.Context, settings *conf.Settings, opts *options, logger *slog.Logger, stdout io.Writer) error {
	runID := newRunID()
	logger = logger.With("run_id", runID)

	m, err := observability.NewMetrics()
	if err != nil {
		return err
	}
	errors.AddErrorHook(m.Errors.Hook())
	defer errors.ClearErrorHooks()

	searchHTTP := httpclient.New(&httpclient.Config{
		DefaultTimeout: settings.Search.Timeout,
		UserAgent:      settings.UserAgent,
		Transport:      opts.transport,
	})
	defer searchHTTP.Close()
	searchHTTP.SetAfterResponseHook(m.HTTP.Observe)

	downloadHTTP := httpclient.New(&httpclient.Config{
		DefaultTimeout: settings.Download.Timeout,
		UserAgent:      settings.UserAgent,
		Transport:      opts.transport,
	})
	defer downloadHTTP.Close()
	downloadHTTP.SetAfterResponseHook(m.HTTP.Observe)

	canonical, err := newWikiClient(settings, settings.Wiki.BaseURL, logger)
	if err != nil {
		return err
	}
	localized, err := newWikiClient(settings, settings.Wiki.LocalizedBaseURL, logger)
	if err != nil {
		return err
	}

	resolver := localize.NewDefaultResolver(localized, canonical, settings.Wiki.LocalizedSearchLimit, logger)
	resolver.SetObserver(m.Harvest.Localization)

	searchClient := imagesearch.NewClient(imagesearch.Config{
		Endpoint: settings.Search.Endpoint,
		Language: settings.Search.Language,
		Timeout:  settings.Search.Timeout,
	}, searchHTTP, logger)

	deps := harvest.Deps{
		Discoverer: discovery.NewDefaultDiscoverer(canonical, &settings.Wiki, logger),
		Localizer:  resolver,
		Searcher:   imagesearch.NewHarvester(searchClient, logger),
		Downloader: download.New(download.Config{
			Referer: settings.Download.Referer,
			Timeout: settings.Download.Timeout,
		}, downloadHTTP, logger),
		Metrics: m.Harvest,
		Logger:  logger,
		RunID:   runID,
	}
	if seed := settings.Harvest.Seed; seed != 0 {
		deps.Rand = rand.New(rand.NewPCG(seed, seed))
	}

	orchestrator, err := harvest.New(harvest.Config{
		Target:       settings.Harvest.Target,
		MaxNames:     settings.Harvest.MaxNames,
		Keyword:      settings.Search.Keyword,
		PaceDelay:    settings.Search.PaceDelay,
		ImagesPath:   settings.Harvest.ImagesPath(),
		ImagesDir:    settings.Harvest.ImagesDir,
		ManifestPath: settings.Harvest.ManifestPath(),
		Source:       settings.Harvest.Source,
	}, deps)
	if err != nil {
		return err
	}

	result, runErr := orchestrator.Run(ctx)
	pushMetrics(ctx, m, &settings.Metrics, runID, logger)

	if errors.Is(runErr, harvest.ErrNoNames) {
		_, err := fmt.Fprintln(stdout, noNamesMessage)
		return err
	}
	if runErr != nil {
		logger.Error("Harvest failed", "state", orchestrator.State().String(), "error", runErr)
		return runErr
	}

	_, err = fmt.Fprintln(stdout, result.Summary.String())
	return err
}

func newWikiClient(settings *conf.Settings, baseURL string, logger *slog.Logger) (*wiki.Client, error) {
	return wiki.NewClient(wiki.Config{
		BaseURL:   baseURL,
		UserAgent: settings.UserAgent,
		Timeout:   settings.Wiki.Timeout,
		RateLimit: settings.Wiki.RateLimit,
	}, logger)
}

// pushMetrics exports the run's registry when a Pushgateway is configured.
// Failures are logged only.
func pushMetrics(ctx context.Context, m *observability.Metrics, settings *conf.MetricsSettings, runID string, logger *slog.Logger) {
	if settings.PushGateway == "" {
		return
	}

	// The run context may already be cancelled by a signal
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), pushTimeout)
	defer cancel()

	if err := m.Push(ctx, settings.PushGateway, settings.Job, runID); err != nil {
		logger.Warn("Failed to push metrics", "gateway", settings.PushGateway, "error", err)
		return
	}
	logger.Debug("Pushed metrics", "gateway", settings.PushGateway)
}
