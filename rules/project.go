//go:build ruleguard

// Package gorules contains custom linting rules for golangci-lint via ruleguard.
// They keep the harvest pipeline on its shared infrastructure.
package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// StdoutReserved flags direct writes to stdout outside cmd and main.
// Stdout carries only the run summary line; logs go through slog on stderr.
//
// Old pattern:
//
//	fmt.Println("downloaded", url)
//
// New pattern:
//
//	logger.Debug("Downloaded image", "url", url)
func StdoutReserved(m dsl.Matcher) {
	m.Match(
		`fmt.Println($*_)`,
		`fmt.Printf($*_)`,
		`fmt.Print($*_)`,
		`log.Println($*_)`,
		`log.Printf($*_)`,
	).
		Where(!m.File().PkgPath.Matches(`/cmd$`) &&
			!m.File().Name.Matches(`^main\.go$`) &&
			!m.File().Name.Matches(`_test\.go$`)).
		Report("stdout is reserved for the run summary; log through the component *slog.Logger instead")
}

// EnhancedErrors flags bare error construction in internal packages.
// Errors leaving a component carry a component and category so the error
// metrics hook can count them.
//
// Old pattern:
//
//	return fmt.Errorf("search failed: %w", err)
//
// New pattern:
//
//	return errors.New(err).Component("imagesearch").Category(errors.CategoryNetwork).Build()
func EnhancedErrors(m dsl.Matcher) {
	m.Match(`errors.New($msg)`).
		Where(m["msg"].Type.Is("string") && m.File().PkgPath.Matches(`/internal/`)).
		Report("use internal/errors: errors.Newf($msg).Component(...).Category(...).Build()")
}

// SharedHTTPClient flags ad hoc HTTP clients.
// Outbound requests go through internal/httpclient for the shared
// User-Agent, pooled transport and the metrics hook.
func SharedHTTPClient(m dsl.Matcher) {
	m.Match(
		`http.Get($*_)`,
		`http.DefaultClient.Do($*_)`,
		`&http.Client{$*_}`,
		`http.Client{$*_}`,
	).
		Where(!m.File().PkgPath.Matches(`/internal/httpclient$`) &&
			!m.File().Name.Matches(`_test\.go$`)).
		Report("use internal/httpclient instead of a bare net/http client")
}

// PartialFiles flags direct writes of output files.
// Images and the manifest are written to a temp file and renamed into place.
func PartialFiles(m dsl.Matcher) {
	m.Match(
		`os.Create($path)`,
		`os.WriteFile($path, $*_)`,
	).
		Where(m.File().PkgPath.Matches(`/internal/(download|manifest)$`) &&
			!m.File().Name.Matches(`_test\.go$`)).
		Report("write $path through a temp file in the target directory and rename it")
}
