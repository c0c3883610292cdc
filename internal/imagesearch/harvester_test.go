package imagesearch

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinggame/pingharvest/internal/errors"
)

// stubFetcher serves canned pages and counts calls.
type stubFetcher struct {
	pages   map[string]string
	err     error
	calls   int
	queries []string
}

func (s *stubFetcher) FetchHTML(_ context.Context, query string) (string, error) {
	s.calls++
	s.queries = append(s.queries, query)
	if s.err != nil {
		return "", s.err
	}
	return s.pages[query], nil
}

func thumb(id string) string {
	return "https://encrypted-tbn0.gstatic.com/images?q=tbn:" + id
}

func TestSearchDedupesAndTruncates(t *testing.T) {
	t.Parallel()

	page := `<img src="` + thumb("U1") + `"><img src="` + thumb("U1") + `"><img src="` + thumb("U2") + `"><img src="` + thumb("U3") + `">`
	fetcher := &stubFetcher{pages: map[string]string{"Alphaping 티니핑": page}}

	urls, err := NewHarvester(fetcher, nil).Search(t.Context(), "Alphaping 티니핑", 2)
	require.NoError(t, err)

	assert.Equal(t, []string{thumb("U1"), thumb("U2")}, urls)
	assert.Equal(t, 1, fetcher.calls)
}

func TestSearchUnescapesBeforeDedupe(t *testing.T) {
	t.Parallel()

	page := `"` + thumb("A&amp;s=1") + `" "` + thumb("A&s=1") + `"`
	fetcher := &stubFetcher{pages: map[string]string{"q": page}}

	urls, err := NewHarvester(fetcher, nil).Search(t.Context(), "q", 10)
	require.NoError(t, err)
	assert.Equal(t, []string{thumb("A&s=1")}, urls)
}

func TestSearchFallsBackToGenericImages(t *testing.T) {
	t.Parallel()

	page := `<a href="https://cdn.test/one.png"></a><a href="https://cdn.test/two.jpg"></a>`
	fetcher := &stubFetcher{pages: map[string]string{"q": page}}

	urls, err := NewHarvester(fetcher, nil).Search(t.Context(), "q", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{"https://cdn.test/one.png", "https://cdn.test/two.jpg"}, urls)
}

func TestSearchPrefersThumbnailTier(t *testing.T) {
	t.Parallel()

	page := `"` + thumb("T") + `" "https://cdn.test/one.png"`
	fetcher := &stubFetcher{pages: map[string]string{"q": page}}

	urls, err := NewHarvester(fetcher, nil).Search(t.Context(), "q", 5)
	require.NoError(t, err)
	assert.Equal(t, []string{thumb("T")}, urls)
}

func TestSearchEmptyPage(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{pages: map[string]string{}}
	urls, err := NewHarvester(fetcher, nil).Search(t.Context(), "q", 5)
	require.NoError(t, err)
	assert.NotNil(t, urls)
	assert.Empty(t, urls)
}

func TestSearchNonPositiveLimit(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{pages: map[string]string{"q": `"` + thumb("X") + `"`}}
	urls, err := NewHarvester(fetcher, nil).Search(t.Context(), "q", 0)
	require.NoError(t, err)
	assert.Empty(t, urls)
	assert.Zero(t, fetcher.calls)
}

func TestSearchPropagatesFetchError(t *testing.T) {
	t.Parallel()

	fetcher := &stubFetcher{err: errors.NewStd("boom")}
	_, err := NewHarvester(fetcher, nil).Search(t.Context(), "q", 3)
	require.Error(t, err)
}

func TestSearchNeverExceedsLimitOrRepeats(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	for i := range 40 {
		id := string(rune('A' + i%7))
		b.WriteString(`"` + thumb(id) + `"`)
	}
	fetcher := &stubFetcher{pages: map[string]string{"q": b.String()}}
	h := NewHarvester(fetcher, nil)

	for limit := 1; limit <= 10; limit++ {
		urls, err := h.Search(t.Context(), "q", limit)
		require.NoError(t, err)
		assert.LessOrEqual(t, len(urls), limit)

		seen := map[string]bool{}
		for _, u := range urls {
			assert.False(t, seen[u], "duplicate %s", u)
			seen[u] = true
		}
	}
}
