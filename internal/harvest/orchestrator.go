// orchestrator.go: Package harvest drives a single harvest run from name
// discovery to the written manifest.
package harvest

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/pinggame/pingharvest/internal/discovery"
	"github.com/pinggame/pingharvest/internal/errors"
	"github.com/pinggame/pingharvest/internal/logging"
	"github.com/pinggame/pingharvest/internal/manifest"
	"github.com/pinggame/pingharvest/internal/observability/metrics"
	"github.com/pinggame/pingharvest/internal/patterns"
)

const componentName = "harvest"

// minPerNameQuota is the smallest number of candidates requested per name
const minPerNameQuota = 2

// ErrNoNames is returned when discovery yields no entity names at all
var ErrNoNames = errors.Newf("no names found from fandom").
	Component(componentName).
	Category(errors.CategoryNotFound).
	Build()

// State is the orchestrator's position in a run
type State int32

const (
	StateInit State = iota
	StateDiscovering
	StateSelecting
	StatePerNameLoop
	StateDone
	StateAborted
)

func (s State) String() string {
	switch s {
	case StateInit:
		return "INIT"
	case StateDiscovering:
		return "DISCOVERING"
	case StateSelecting:
		return "SELECTING"
	case StatePerNameLoop:
		return "PER_NAME_LOOP"
	case StateDone:
		return "DONE"
	case StateAborted:
		return "ABORTED"
	default:
		return fmt.Sprintf("State(%d)", int32(s))
	}
}

// Discoverer finds the canonical entity names
type Discoverer interface {
	Discover(ctx context.Context) (*discovery.SeasonMap, error)
}

// Localizer resolves the localized display name of an entity
type Localizer interface {
	Resolve(ctx context.Context, name string) (string, bool, error)
}

// ImageSearcher returns candidate image URLs for a query
type ImageSearcher interface {
	Search(ctx context.Context, query string, limit int) ([]string, error)
}

// Downloader stores one remote image at a local path
type Downloader interface {
	Download(ctx context.Context, url, path string) error
}

// Pacer pauses between search requests
type Pacer func(ctx context.Context, d time.Duration) error

// SleepPacer waits for d or until ctx is done
func SleepPacer(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Config bounds a run and places its output
type Config struct {
	Target       int           // global record target
	MaxNames     int           // names kept after shuffling
	Keyword      string        // appended to every search query
	PaceDelay    time.Duration // pause after each search
	ImagesPath   string        // directory images are written to
	ImagesDir    string        // image directory as recorded in the manifest
	ManifestPath string        // manifest document location
	Source       string        // provenance tag
}

// Deps are the collaborators of an orchestrator
type Deps struct {
	Discoverer    Discoverer
	Localizer     Localizer
	Searcher      ImageSearcher
	Downloader    Downloader
	WriteManifest func(path string, records []manifest.Record) error // defaults to manifest.Write
	Rand          *rand.Rand                                         // defaults to a clock seeded PCG
	Pacer         Pacer                                              // defaults to SleepPacer
	Metrics       metrics.Recorder                                   // defaults to NopRecorder
	Logger        *slog.Logger
	RunID         string
}

// Result is the outcome of a completed run
type Result struct {
	RunID   string
	Records []manifest.Record
	Summary manifest.Summary
}

// Orchestrator owns all mutable state of one run
type Orchestrator struct {
	config  Config
	deps    Deps
	state   atomic.Int32
	records []manifest.Record
	logger  *slog.Logger
}

// New validates the configuration and fills in default collaborators
func New(config Config, deps Deps) (*Orchestrator, error) {
	switch {
	case config.Target < 1:
		return nil, configError("target must be at least 1")
	case config.MaxNames < 1:
		return nil, configError("max names must be at least 1")
	case deps.Discoverer == nil || deps.Localizer == nil || deps.Searcher == nil || deps.Downloader == nil:
		return nil, configError("discoverer, localizer, searcher and downloader are required")
	}

	if deps.WriteManifest == nil {
		deps.WriteManifest = manifest.Write
	}
	if deps.Rand == nil {
		seed := uint64(time.Now().UnixNano())
		deps.Rand = rand.New(rand.NewPCG(seed, seed>>1|1))
	}
	if deps.Pacer == nil {
		deps.Pacer = SleepPacer
	}
	if deps.Metrics == nil {
		deps.Metrics = metrics.NopRecorder{}
	}

	logger := logging.OrDiscard(deps.Logger).With("component", componentName)
	if deps.RunID != "" {
		logger = logger.With("run_id", deps.RunID)
	}

	return &Orchestrator{
		config: config,
		deps:   deps,
		logger: logger,
	}, nil
}

// State returns the current state of the run
func (o *Orchestrator) State() State {
	return State(o.state.Load())
}

func (o *Orchestrator) setState(s State) {
	o.state.Store(int32(s))
	o.logger.Debug("State changed", "state", s.String())
}

// Run performs the whole harvest. It returns ErrNoNames without writing a
// manifest when discovery finds nothing.
func (o *Orchestrator) Run(ctx context.Context) (*Result, error) {
	start := time.Now()

	o.setState(StateDiscovering)
	seasons, err := o.deps.Discoverer.Discover(ctx)
	if err != nil {
		return nil, err
	}
	o.deps.Metrics.NamesDiscovered(seasons.Len())
	if seasons.Len() == 0 {
		o.setState(StateAborted)
		o.logger.Warn("Discovery returned no names")
		return nil, ErrNoNames
	}

	o.setState(StateSelecting)
	names := o.selectNames(seasons)
	o.deps.Metrics.NamesSelected(len(names))

	o.setState(StatePerNameLoop)
	quota := perNameQuota(o.config.Target, len(names))
	o.logger.Info("Harvesting images",
		"discovered", seasons.Len(),
		"selected", len(names),
		"target", o.config.Target,
		"per_name", quota)

	for _, name := range names {
		if o.targetReached() {
			break
		}
		if err := o.harvestName(ctx, name, seasons, quota); err != nil {
			return nil, err
		}
	}

	if err := o.deps.WriteManifest(o.config.ManifestPath, o.records); err != nil {
		return nil, err
	}
	o.deps.Metrics.RecordsWritten(len(o.records))
	o.setState(StateDone)

	summary := manifest.Summarize(o.records)
	o.logger.Info("Harvest completed",
		"images", summary.Images,
		"names", summary.Names,
		"manifest", o.config.ManifestPath,
		"duration", time.Since(start))

	return &Result{
		RunID:   o.deps.RunID,
		Records: o.records,
		Summary: summary,
	}, nil
}

// selectNames shuffles the discovered names and keeps at most MaxNames
func (o *Orchestrator) selectNames(seasons *discovery.SeasonMap) []string {
	names := seasons.Names()
	o.deps.Rand.Shuffle(len(names), func(i, j int) {
		names[i], names[j] = names[j], names[i]
	})
	if len(names) > o.config.MaxNames {
		names = names[:o.config.MaxNames]
	}
	return names
}

// harvestName resolves, searches and downloads for one entity. Only
// localization and search errors are returned; download failures are skipped.
func (o *Orchestrator) harvestName(ctx context.Context, name string, seasons *discovery.SeasonMap, quota int) error {
	logger := o.logger.With("name", name)

	localized, ok, err := o.deps.Localizer.Resolve(ctx, name)
	if err != nil {
		return err
	}

	display := name
	var nameKo *string
	if ok {
		display = localized
		nameKo = &localized
	}

	query := display + " " + o.config.Keyword
	urls, err := o.deps.Searcher.Search(ctx, query, quota)
	if err != nil {
		return err
	}
	o.deps.Metrics.SearchRequest(len(urls))
	logger.Debug("Image search finished", "query", query, "candidates", len(urls))

	if err := o.deps.Pacer(ctx, o.config.PaceDelay); err != nil {
		return errors.New(err).
			Component(componentName).
			Category(errors.CategoryCancellation).
			Context("operation", "pace").
			Build()
	}

	base := patterns.SanitizeFilename(name)
	for _, u := range urls {
		if o.targetReached() {
			break
		}

		filename := fmt.Sprintf("%s_%d.jpg", base, len(o.records)+1)
		target := filepath.Join(o.config.ImagesPath, filename)

		started := time.Now()
		err := o.deps.Downloader.Download(ctx, u, target)
		o.deps.Metrics.Download(time.Since(started), err)
		if err != nil {
			logger.Debug("Skipping candidate", "url", u, "error", err)
			continue
		}

		o.records = append(o.records, manifest.Record{
			Name:   display,
			NameKo: nameKo,
			NameEn: name,
			Season: seasons.SeasonPtr(name),
			File:   path.Join(o.config.ImagesDir, filename),
			Source: o.config.Source,
		})
	}

	return nil
}

func (o *Orchestrator) targetReached() bool {
	return len(o.records) >= o.config.Target
}

// perNameQuota spreads the target over the selected names, never below two
func perNameQuota(target, names int) int {
	return max(minPerNameQuota, target/max(1, names)+1)
}

func configError(msg string) error {
	return errors.Newf("invalid harvest configuration: %s", msg).
		Component(componentName).
		Category(errors.CategoryConfiguration).
		Build()
}
