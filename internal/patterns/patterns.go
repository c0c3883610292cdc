// Package patterns holds the text heuristics used to pull entity names,
// localized names and image URLs out of wiki markup and search result HTML.
// All functions are pure.
package patterns

import (
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

// DefaultFilename replaces names that sanitize to nothing.
const DefaultFilename = "tinyping"

var (
	wikiLinkPattern       = regexp.MustCompile(`\[\[([^\]|#]+)`)
	seasonPattern         = regexp.MustCompile(`Season\s*(\d+)`)
	localizedNamePattern  = regexp.MustCompile(`[가-힣]{2,6}핑`)
	thumbnailPattern      = regexp.MustCompile(`https://encrypted-tbn0\.gstatic\.com/images\?[^"\\]+`)
	imageURLPattern       = regexp.MustCompile(`https?://[^\s"']+\.(?:jpg|jpeg|png)`)
	unsafeFilenamePattern = regexp.MustCompile(`[^0-9A-Za-z_-]`)
)

// Generic franchise titles that share the entity suffix.
var excludedEntityNames = map[string]struct{}{
	"teeneeping": {},
	"teenieping": {},
}

const (
	entitySuffix    = "ping"
	listingPrefix   = "list of"
	localizedSuffix = "핑"
	hangulFirst     = '가'
	hangulLast      = '힣'
)

// WikiLinks returns the targets of [[...]] links in order of appearance.
// Labels and anchors are cut off and empty targets are dropped.
func WikiLinks(text string) []string {
	matches := wikiLinkPattern.FindAllStringSubmatch(text, -1)
	links := make([]string, 0, len(matches))
	for _, m := range matches {
		if link := strings.TrimSpace(m[1]); link != "" {
			links = append(links, link)
		}
	}
	return links
}

// SeasonNumber extracts the season number from a page title.
func SeasonNumber(title string) (int, bool) {
	m := seasonPattern.FindStringSubmatch(title)
	if m == nil {
		return 0, false
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0, false
	}
	return n, true
}

// IsEntityName reports whether a link target names an individual entity.
func IsEntityName(name string) bool {
	lower := strings.ToLower(strings.TrimSpace(name))
	if !strings.HasSuffix(lower, entitySuffix) {
		return false
	}
	_, excluded := excludedEntityNames[lower]
	return !excluded
}

// IsListingTitle reports whether a title is an index page such as "List of ...".
func IsListingTitle(title string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(title)), listingPrefix)
}

// ContainsHangul reports whether s has at least one precomposed Hangul syllable.
func ContainsHangul(s string) bool {
	for _, r := range s {
		if r >= hangulFirst && r <= hangulLast {
			return true
		}
	}
	return false
}

// IsLocalizedName reports whether a title looks like a localized entity name.
func IsLocalizedName(title string) bool {
	title = norm.NFC.String(strings.TrimSpace(title))
	return ContainsHangul(title) && strings.HasSuffix(title, localizedSuffix)
}

// LocalizedNames returns every localized entity name found in text.
func LocalizedNames(text string) []string {
	return localizedNamePattern.FindAllString(norm.NFC.String(text), -1)
}

// ThumbnailURLs returns image CDN thumbnail URLs embedded in search HTML.
func ThumbnailURLs(html string) []string {
	return thumbnailPattern.FindAllString(html, -1)
}

// ImageURLs returns any absolute jpg, jpeg or png URL in html.
func ImageURLs(html string) []string {
	return imageURLPattern.FindAllString(html, -1)
}

// UnescapeAmpersands undoes the &amp; escaping found in attribute values.
func UnescapeAmpersands(s string) string {
	return strings.ReplaceAll(s, "&amp;", "&")
}

// SanitizeFilename keeps ASCII letters, digits, underscores and hyphens.
func SanitizeFilename(s string) string {
	if !utf8.ValidString(s) {
		s = strings.ToValidUTF8(s, "")
	}
	clean := unsafeFilenamePattern.ReplaceAllString(s, "")
	if clean == "" {
		return DefaultFilename
	}
	return clean
}
