// config.go: Package conf loads pingharvest settings from defaults, an optional
// config file and PINGHARVEST_* environment variables.
package conf

import (
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/viper"

	"github.com/pinggame/pingharvest/internal/errors"
)

// Settings contains all configuration options for a harvest run.
type Settings struct {
	Debug     bool   // true to enable debug logging
	UserAgent string // User-Agent sent on every outbound request

	Wiki     WikiSettings
	Search   SearchSettings
	Download DownloadSettings
	Harvest  HarvestSettings
	Log      LogSettings
	Metrics  MetricsSettings
}

// WikiSettings configures the MediaWiki knowledge source.
type WikiSettings struct {
	BaseURL              string        // api.php of the canonical (English) wiki
	LocalizedBaseURL     string        // api.php of the localized (Korean) wiki
	Timeout              time.Duration // per request HTTP timeout
	RateLimit            float64       // requests per second towards the wiki API
	SeasonSearch         string        // search terms that find season listing pages
	SeasonSearchLimit    int           // srlimit for the season listing search
	Category             string        // category enumerated by the fallback strategy
	CategoryLimit        int           // cmlimit for the category listing
	LocalizedSearchLimit int           // srlimit for the localized title search
}

// SearchSettings configures the image search surface.
type SearchSettings struct {
	Endpoint  string        // HTML search endpoint
	Language  string        // hl parameter
	Keyword   string        // domain keyword appended to every query
	PaceDelay time.Duration // pause after each name's search request
	Timeout   time.Duration
}

// DownloadSettings configures image downloads.
type DownloadSettings struct {
	Referer string
	Timeout time.Duration
}

// HarvestSettings bounds a harvest run and places its output.
type HarvestSettings struct {
	Target       int    // global record target
	MaxNames     int    // ceiling on names selected per run
	OutputDir    string // base directory for images and data
	ImagesDir    string // image directory, relative to OutputDir
	DataDir      string // manifest directory, relative to OutputDir
	ManifestFile string // manifest file name inside DataDir
	Source       string // provenance tag written into every record
	Seed         uint64 // non-zero pins the name shuffle
}

// LogSettings configures logging.
type LogSettings struct {
	Level      string // trace, debug, info, warn or error
	Path       string // optional JSON log file, empty disables it
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
}

// MetricsSettings configures the optional Prometheus Pushgateway export.
type MetricsSettings struct {
	PushGateway string // Pushgateway URL, empty disables pushing
	Job         string // job label used for the push
}

// ImagesPath returns the absolute or working-directory relative image directory.
func (h *HarvestSettings) ImagesPath() string {
	return filepath.Join(h.OutputDir, h.ImagesDir)
}

// ManifestPath returns the path of the manifest document.
func (h *HarvestSettings) ManifestPath() string {
	return filepath.Join(h.OutputDir, h.DataDir, h.ManifestFile)
}

// Load reads the configuration into Settings.
// The viper instance may already carry bound command line flags; configFile
// selects an explicit config file, otherwise config.yaml is searched in the
// default paths and its absence is not an error.
func Load(v *viper.Viper, configFile string) (*Settings, error) {
	if v == nil {
		v = viper.New()
	}

	if err := initViper(v, configFile); err != nil {
		return nil, err
	}

	settings := &Settings{}
	if err := v.Unmarshal(settings); err != nil {
		return nil, errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "unmarshal_settings").
			Build()
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, err
	}

	return settings, nil
}

// initViper sets defaults, binds the environment and reads the config file.
func initViper(v *viper.Viper, configFile string) error {
	setDefaultConfig(v)
	bindEnv(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		for _, path := range GetDefaultConfigPaths() {
			v.AddConfigPath(path)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile == "" && errors.As(err, &notFound) {
			// Defaults and environment are enough to run
			return nil
		}
		return errors.New(err).
			Component("conf").
			Category(errors.CategoryConfiguration).
			Context("operation", "read_config").
			Context("config_file", configFile).
			Build()
	}

	return nil
}

// GetDefaultConfigPaths returns the directories searched for config.yaml.
func GetDefaultConfigPaths() []string {
	paths := []string{"."}
	if homeDir, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(homeDir, ".config", "pingharvest"))
	}
	return paths
}
