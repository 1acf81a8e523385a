// Package auth provides session cookie management for authenticated
// Substack requests. The subscriber-lists API only answers for logged-in
// accounts, so the finder borrows an existing browser session instead of
// automating a login.
package auth

import (
	"context"
	"net/http"
	"net/http/cookiejar"
	"net/url"
)

// Domain is the cookie domain all sources read for.
const Domain = "substack.com"

// SessionCookie is the cookie that authenticates subscriber-lists requests.
const SessionCookie = "substack.sid"

// Source represents a source of authentication cookies.
type Source interface {
	// Cookies returns Substack cookies, or nil if this source has none.
	Cookies(ctx context.Context) (map[string]string, error)
}

// ChainSources returns cookies from the first source that provides them.
func ChainSources(ctx context.Context, sources ...Source) (map[string]string, error) {
	for _, src := range sources {
		cookies, err := src.Cookies(ctx)
		if err != nil {
			return nil, err
		}
		if len(cookies) > 0 {
			return cookies, nil
		}
	}
	return nil, nil //nolint:nilnil // no source had cookies, but this is not an error
}

// NewCookieJar creates an http.CookieJar populated with the given cookies
// for the Substack domain and all of its publication subdomains.
func NewCookieJar(cookies map[string]string) (*cookiejar.Jar, error) {
	jar, err := cookiejar.New(nil)
	if err != nil {
		return nil, err
	}

	u, err := url.Parse("https://" + Domain)
	if err != nil {
		return nil, err
	}

	var httpCookies []*http.Cookie
	for name, value := range cookies {
		if value != "" {
			httpCookies = append(httpCookies, &http.Cookie{
				Name:   name,
				Value:  value,
				Domain: "." + Domain,
				Path:   "/",
			})
		}
	}

	jar.SetCookies(u, httpCookies)
	return jar, nil
}

// HasSession reports whether the cookie set carries a login session.
func HasSession(cookies map[string]string) bool {
	return cookies[SessionCookie] != ""
}
