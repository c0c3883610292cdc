//go:build ruleguard

package gorules

import "github.com/quasilyte/go-ruleguard/dsl"

// TestingContext detects context.Background() and context.TODO() in tests.
//
// Old pattern:
//
//	client.SearchTitles(context.Background(), "Hachuping", 5)
//
// New pattern (Go 1.24+):
//
//	client.SearchTitles(t.Context(), "Hachuping", 5)
func TestingContext(m dsl.Matcher) {
	m.Match(
		`$ctx := context.Background()`,
		`$ctx := context.TODO()`,
	).
		Where(m.File().Name.Matches(`_test\.go$`)).
		Report("in tests, use t.Context() instead for automatic cancellation on test completion (Go 1.24+)")

	m.Match(
		`$fn(context.Background(), $*args)`,
		`$fn(context.TODO(), $*args)`,
	).
		Where(m.File().Name.Matches(`_test\.go$`)).
		Report("in tests, use t.Context() instead (Go 1.24+)")
}

// HTTPMockCleanup flags httpmock activation without a matching reset.
func HTTPMockCleanup(m dsl.Matcher) {
	m.Match(`httpmock.Activate(); $*_`).
		Where(!m.File().Name.Matches(`_test\.go$`)).
		Report("httpmock belongs in tests only")

	m.Match(`defer httpmock.DeactivateAndReset()`).
		Where(m.File().Name.Matches(`_test\.go$`)).
		Report("prefer t.Cleanup(httpmock.DeactivateAndReset) so helpers can own activation")
}

// TempDirInTests flags os.MkdirTemp in tests.
func TempDirInTests(m dsl.Matcher) {
	m.Match(`os.MkdirTemp($*_)`).
		Where(m.File().Name.Matches(`_test\.go$`)).
		Report("use t.TempDir() which is removed automatically")
}
