// Package htmlutil extracts author identity from publication homepages.
package htmlutil

import (
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// IsBotChallenge reports whether the body looks like a bot-detection
// interstitial rather than real content. Such responses must not be cached.
func IsBotChallenge(body []byte) bool {
	return strings.Contains(string(body), "Just a moment")
}

// AuthorHandle extracts the author's handle from a publication homepage.
//
// Preference order: anchor hrefs pointing at a profile (absolute
// substack.com/@handle or relative /@handle), then the "handle" key embedded
// in the page's JSON state. Returns "" if nothing matches.
func AuthorHandle(htmlContent string) string {
	if h := handleFromLinks(htmlContent); h != "" {
		return h
	}

	for _, pattern := range handleFallbacks {
		if matches := pattern.FindStringSubmatch(htmlContent); len(matches) > 1 {
			return matches[1]
		}
	}
	return ""
}

func handleFromLinks(htmlContent string) string {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(htmlContent))
	if err != nil {
		return ""
	}

	var handle string
	doc.Find("a[href]").EachWithBreak(func(_ int, sel *goquery.Selection) bool {
		href, _ := sel.Attr("href")
		if h := handleFromHref(href); h != "" {
			handle = h
			return false
		}
		return true
	})
	return handle
}

func handleFromHref(href string) string {
	at := strings.Index(href, "/@")
	if at == -1 {
		return ""
	}
	// Absolute links must be profile links on substack.com itself.
	if strings.Contains(href, "://") && !profileHostPattern.MatchString(href) {
		return ""
	}
	rest := href[at+2:]
	for _, stop := range []string{"/", "?", "#"} {
		if idx := strings.Index(rest, stop); idx != -1 {
			rest = rest[:idx]
		}
	}
	if !handleCharsPattern.MatchString(rest) {
		return ""
	}
	return rest
}

var (
	profileHostPattern = regexp.MustCompile(`(?i)^https?://(?:www\.)?substack\.com/@`)
	handleCharsPattern = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

	// Same patterns the page state embeds the handle under, tried in order.
	handleFallbacks = []*regexp.Regexp{
		regexp.MustCompile(`substack\.com/@([a-zA-Z0-9_-]+)`),
		regexp.MustCompile(`"handle":"([a-zA-Z0-9_-]+)"`),
	}
)
