package localize

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinggame/pingharvest/internal/errors"
)

type stubWiki struct {
	search map[string][]string
	pages  map[string]string
	err    error

	searchCalls   int
	wikitextCalls int
}

func (s *stubWiki) SearchTitles(_ context.Context, query string, _ int) ([]string, error) {
	s.searchCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.search[query], nil
}

func (s *stubWiki) Wikitext(_ context.Context, page string) (string, error) {
	s.wikitextCalls++
	if s.err != nil {
		return "", s.err
	}
	return s.pages[page], nil
}

func TestResolveFromSearch(t *testing.T) {
	t.Parallel()

	ko := &stubWiki{search: map[string][]string{
		"Hachuping": {"캐치! 티니핑 (시즌 1)", "Hachuping", " 하츄핑 ", "조아핑"},
	}}
	en := &stubWiki{}

	r := NewDefaultResolver(ko, en, 5, nil)
	name, ok, err := r.Resolve(t.Context(), "Hachuping")
	require.NoError(t, err)

	assert.True(t, ok)
	assert.Equal(t, "하츄핑", name)
	assert.Zero(t, en.wikitextCalls, "page text is only read when search finds nothing")
}

func TestResolveFromPageText(t *testing.T) {
	t.Parallel()

	ko := &stubWiki{search: map[string][]string{"Hachuping": {"Hachuping"}}}
	en := &stubWiki{pages: map[string]string{
		"Hachuping": "'''Hachuping''' (Korean: 하츄핑) is the main teenieping, friend of 조아핑.",
	}}

	r := NewDefaultResolver(ko, en, 5, nil)
	name, ok, err := r.Resolve(t.Context(), "Hachuping")
	require.NoError(t, err)

	assert.True(t, ok)
	assert.Equal(t, "하츄핑", name)
	assert.Equal(t, 1, ko.searchCalls)
	assert.Equal(t, 1, en.wikitextCalls)
}

func TestResolveIsMemoized(t *testing.T) {
	t.Parallel()

	ko := &stubWiki{search: map[string][]string{"Hachuping": {"하츄핑"}}}
	en := &stubWiki{}

	var outcomes []string
	r := NewDefaultResolver(ko, en, 5, nil)
	r.SetObserver(func(o string) { outcomes = append(outcomes, o) })

	first, ok1, err := r.Resolve(t.Context(), "Hachuping")
	require.NoError(t, err)
	second, ok2, err := r.Resolve(t.Context(), "Hachuping")
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, ok1, ok2)
	assert.Equal(t, 1, ko.searchCalls, "second resolve must not reach the network")
	assert.Equal(t, []string{"search", "cache"}, outcomes)
	assert.Equal(t, 1, r.Cached())
}

func TestResolveMissIsMemoized(t *testing.T) {
	t.Parallel()

	ko := &stubWiki{}
	en := &stubWiki{pages: map[string]string{"Alphaping": "no korean text"}}

	r := NewDefaultResolver(ko, en, 5, nil)
	for range 3 {
		name, ok, err := r.Resolve(t.Context(), "Alphaping")
		require.NoError(t, err)
		assert.False(t, ok)
		assert.Empty(t, name)
	}

	assert.Equal(t, 1, ko.searchCalls)
	assert.Equal(t, 1, en.wikitextCalls)
	assert.Equal(t, 1, r.Cached())
}

func TestResolveErrorIsNotMemoized(t *testing.T) {
	t.Parallel()

	ko := &stubWiki{err: errors.NewStd("wiki down")}
	en := &stubWiki{}

	r := NewDefaultResolver(ko, en, 5, nil)
	_, _, err := r.Resolve(t.Context(), "Alphaping")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryLocalization))
	assert.Zero(t, r.Cached())

	ko.err = nil
	ko.search = map[string][]string{"Alphaping": {"알파핑"}}
	name, ok, err := r.Resolve(t.Context(), "Alphaping")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "알파핑", name)
}
