package cmd

import (
	"bytes"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/jarcoal/httpmock"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pinggame/pingharvest/internal/conf"
	"github.com/pinggame/pingharvest/internal/errors"
	"github.com/pinggame/pingharvest/internal/manifest"
)

const (
	canonicalAPI = `=~^https://wiki\.test/api\.php`
	localizedAPI = `=~^https://wiki\.test/ko/api\.php`
	searchPage   = `=~^https://search\.test/search`
	thumbnails   = `=~^https://encrypted-tbn0\.gstatic\.com/images`
)

// setupTestEnv isolates the command from local config files and points every
// endpoint at httpmock.
func setupTestEnv(t *testing.T) string {
	t.Helper()

	dir := t.TempDir()
	t.Chdir(dir)
	t.Setenv("HOME", dir)
	t.Setenv("PINGHARVEST_WIKI_BASEURL", "https://wiki.test/api.php")
	t.Setenv("PINGHARVEST_WIKI_LOCALIZEDBASEURL", "https://wiki.test/ko/api.php")
	t.Setenv("PINGHARVEST_WIKI_RATELIMIT", "1000")
	t.Setenv("PINGHARVEST_SEARCH_ENDPOINT", "https://search.test/search")

	httpmock.Activate()
	t.Cleanup(httpmock.DeactivateAndReset)

	return dir
}

func jsonResponse(body string) *http.Response {
	resp := httpmock.NewStringResponse(http.StatusOK, body)
	resp.Header.Set("Content-Type", "application/json; charset=utf-8")
	return resp
}

func searchResult(titles ...string) string {
	items := make([]string, 0, len(titles))
	for _, title := range titles {
		items = append(items, fmt.Sprintf(`{"ns":0,"title":%q}`, title))
	}
	return `{"batchcomplete":true,"query":{"search":[` + strings.Join(items, ",") + `]}}`
}

func parseResult(title, wikitext string) string {
	return fmt.Sprintf(`{"parse":{"title":%q,"wikitext":%q}}`, title, wikitext)
}

// registerWikis serves one season listing page naming two entities, a
// localized title for Hachuping only, and thumbnails for every search.
func registerWikis(t *testing.T) {
	t.Helper()

	httpmock.RegisterResponder("GET", canonicalAPI, func(req *http.Request) (*http.Response, error) {
		q := req.URL.Query()
		switch {
		case q.Get("list") == "search":
			return jsonResponse(searchResult("List of Teeniepings/Season 1")), nil
		case q.Get("action") == "parse" && q.Get("page") == "List of Teeniepings/Season 1":
			return jsonResponse(parseResult(q.Get("page"), "* [[Hachuping]]\n* [[Heartsping]]")), nil
		case q.Get("action") == "parse":
			return jsonResponse(parseResult(q.Get("page"), "No localized name here.")), nil
		}
		return httpmock.NewStringResponse(http.StatusNotFound, "unexpected request"), nil
	})

	httpmock.RegisterResponder("GET", localizedAPI, func(req *http.Request) (*http.Response, error) {
		if req.URL.Query().Get("srsearch") == "Hachuping" {
			return jsonResponse(searchResult("하츄핑")), nil
		}
		return jsonResponse(searchResult()), nil
	})

	var served int
	httpmock.RegisterResponder("GET", searchPage, func(req *http.Request) (*http.Response, error) {
		var html strings.Builder
		for range 3 {
			served++
			fmt.Fprintf(&html, `<img src="https://encrypted-tbn0.gstatic.com/images?q=tbn:img%d&amp;s">`, served)
		}
		return httpmock.NewStringResponse(http.StatusOK, html.String()), nil
	})

	httpmock.RegisterResponder("GET", thumbnails, httpmock.NewBytesResponder(http.StatusOK, []byte("\xff\xd8\xff\xe0jpeg")))
}

func executeRoot(t *testing.T, args ...string) (stdout, stderr string, err error) {
	t.Helper()

	var out, errOut bytes.Buffer
	root := newRootCommand(viper.New(), &options{transport: httpmock.DefaultTransport})
	root.SetArgs(args)
	root.SetOut(&out)
	root.SetErr(&errOut)

	err = root.ExecuteContext(t.Context())
	return out.String(), errOut.String(), err
}

func TestRootCommandHarvest(t *testing.T) {
	dir := setupTestEnv(t)
	registerWikis(t)

	stdout, _, err := executeRoot(t, "--target", "2", "--seed", "7", "--pace-delay", "0s", "--output", dir)
	require.NoError(t, err)
	assert.Equal(t, "Downloaded 2 images for 1 names.\n", stdout)

	records, err := manifest.Read(filepath.Join(dir, "data", "mapping.json"))
	require.NoError(t, err)
	require.Len(t, records, 2)

	for i, r := range records {
		assert.Equal(t, records[0].NameEn, r.NameEn)
		require.NotNil(t, r.Season)
		assert.Equal(t, 1, *r.Season)
		assert.Equal(t, "google", r.Source)
		assert.Equal(t, fmt.Sprintf("images/%s_%d.jpg", r.NameEn, i+1), r.File)
		assert.FileExists(t, filepath.Join(dir, filepath.FromSlash(r.File)))
	}

	switch records[0].NameEn {
	case "Hachuping":
		require.NotNil(t, records[0].NameKo)
		assert.Equal(t, "하츄핑", *records[0].NameKo)
		assert.Equal(t, "하츄핑", records[0].Name)
	case "Heartsping":
		assert.Nil(t, records[0].NameKo)
		assert.Equal(t, "Heartsping", records[0].Name)
	default:
		t.Fatalf("unexpected name %q", records[0].NameEn)
	}
}

func TestRootCommandNoNames(t *testing.T) {
	dir := setupTestEnv(t)

	httpmock.RegisterResponder("GET", canonicalAPI, func(req *http.Request) (*http.Response, error) {
		if req.URL.Query().Get("list") == "categorymembers" {
			return jsonResponse(`{"batchcomplete":true,"query":{"categorymembers":[]}}`), nil
		}
		return jsonResponse(searchResult()), nil
	})

	stdout, _, err := executeRoot(t, "--pace-delay", "0s", "--output", dir)
	require.NoError(t, err)
	assert.Equal(t, "No names found from fandom.\n", stdout)

	_, statErr := os.Stat(filepath.Join(dir, "data", "mapping.json"))
	assert.True(t, os.IsNotExist(statErr), "no manifest is written")
	assert.Zero(t, httpmock.GetCallCountInfo()["GET "+searchPage])
}

func TestRootCommandDiscoveryError(t *testing.T) {
	dir := setupTestEnv(t)

	httpmock.RegisterResponder("GET", canonicalAPI,
		httpmock.NewStringResponder(http.StatusOK, `{"error":{"code":"internal_api_error","info":"boom"}}`))

	stdout, _, err := executeRoot(t, "--pace-delay", "0s", "--output", dir)
	require.Error(t, err)
	assert.Empty(t, stdout)
	assert.True(t, errors.IsCategory(err, errors.CategoryDiscovery))
}

func TestRootCommandRejectsInvalidFlags(t *testing.T) {
	setupTestEnv(t)

	_, _, err := executeRoot(t, "--target", "0")
	require.Error(t, err)

	var validationErr conf.ValidationError
	require.ErrorAs(t, err, &validationErr)
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestRootCommandRejectsArguments(t *testing.T) {
	setupTestEnv(t)

	_, _, err := executeRoot(t, "extra")
	require.Error(t, err)
}

func TestRootCommandWritesLogFile(t *testing.T) {
	dir := setupTestEnv(t)
	registerWikis(t)

	logPath := filepath.Join(dir, "logs", "harvest.log")
	_, _, err := executeRoot(t, "--target", "1", "--pace-delay", "0s", "--output", dir, "--log-file", logPath)
	require.NoError(t, err)

	data, err := os.ReadFile(logPath)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"service":"pingharvest"`)
	assert.Contains(t, string(data), "Harvest completed")
}

func TestRootCommandVersion(t *testing.T) {
	setupTestEnv(t)

	stdout, _, err := executeRoot(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, "pingharvest version unknown")
	assert.Zero(t, httpmock.GetTotalCallCount())
}

func TestNewRunID(t *testing.T) {
	id := newRunID()
	assert.Len(t, id, 8)
	assert.NotEqual(t, id, newRunID())
}
