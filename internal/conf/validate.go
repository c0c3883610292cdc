// conf/validate.go

package conf

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/pinggame/pingharvest/internal/errors"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ErrorCategory marks validation failures as configuration errors
func (ve ValidationError) ErrorCategory() errors.ErrorCategory {
	return errors.CategoryValidation
}

// ValidateSettings validates the entire Settings struct
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if strings.TrimSpace(settings.UserAgent) == "" {
		ve.Errors = append(ve.Errors, "useragent must not be empty")
	}
	ve.Errors = append(ve.Errors, validateWikiSettings(&settings.Wiki)...)
	ve.Errors = append(ve.Errors, validateSearchSettings(&settings.Search)...)
	ve.Errors = append(ve.Errors, validateHarvestSettings(&settings.Harvest)...)

	if settings.Metrics.PushGateway != "" {
		if err := validateEndpoint("metrics.pushgateway", settings.Metrics.PushGateway); err != "" {
			ve.Errors = append(ve.Errors, err)
		}
		if settings.Metrics.Job == "" {
			ve.Errors = append(ve.Errors, "metrics.job must be set when metrics.pushgateway is configured")
		}
	}

	if len(ve.Errors) > 0 {
		return errors.New(ve).
			Component("conf").
			Category(errors.CategoryValidation).
			Context("error_count", len(ve.Errors)).
			Build()
	}
	return nil
}

func validateWikiSettings(w *WikiSettings) []string {
	var errs []string
	if err := validateEndpoint("wiki.baseurl", w.BaseURL); err != "" {
		errs = append(errs, err)
	}
	if err := validateEndpoint("wiki.localizedbaseurl", w.LocalizedBaseURL); err != "" {
		errs = append(errs, err)
	}
	if w.RateLimit <= 0 {
		errs = append(errs, fmt.Sprintf("wiki.ratelimit must be greater than 0, got %v", w.RateLimit))
	}
	if w.SeasonSearch == "" {
		errs = append(errs, "wiki.seasonsearch must not be empty")
	}
	if w.Category == "" {
		errs = append(errs, "wiki.category must not be empty")
	}
	if w.SeasonSearchLimit < 1 || w.CategoryLimit < 1 || w.LocalizedSearchLimit < 1 {
		errs = append(errs, "wiki search and category limits must be at least 1")
	}
	return errs
}

func validateSearchSettings(s *SearchSettings) []string {
	var errs []string
	if err := validateEndpoint("search.endpoint", s.Endpoint); err != "" {
		errs = append(errs, err)
	}
	if strings.TrimSpace(s.Keyword) == "" {
		errs = append(errs, "search.keyword must not be empty")
	}
	if s.PaceDelay < 0 {
		errs = append(errs, fmt.Sprintf("search.pacedelay must not be negative, got %s", s.PaceDelay))
	}
	return errs
}

func validateHarvestSettings(h *HarvestSettings) []string {
	var errs []string
	if h.Target < 1 {
		errs = append(errs, fmt.Sprintf("harvest.target must be at least 1, got %d", h.Target))
	}
	if h.MaxNames < 1 {
		errs = append(errs, fmt.Sprintf("harvest.maxnames must be at least 1, got %d", h.MaxNames))
	}
	if h.ImagesDir == "" || h.DataDir == "" || h.ManifestFile == "" {
		errs = append(errs, "harvest.imagesdir, harvest.datadir and harvest.manifestfile must be set")
	}
	if h.Source == "" {
		errs = append(errs, "harvest.source must not be empty")
	}
	return errs
}

// validateEndpoint returns an error message for anything that is not an absolute http(s) URL.
func validateEndpoint(key, raw string) string {
	if raw == "" {
		return key + " must not be empty"
	}
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Sprintf("%s must be an absolute http(s) URL, got %q", key, raw)
	}
	return ""
}
