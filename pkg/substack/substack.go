// Package substack implements the finder's data source against the
// substack.com API: profile resolution, subscription lists, and
// subscriber/follower audience samples.
package substack

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/codeGROOVE-dev/parasocial/pkg/auth"
	"github.com/codeGROOVE-dev/parasocial/pkg/finder"
	"github.com/codeGROOVE-dev/parasocial/pkg/htmlutil"
	"github.com/codeGROOVE-dev/parasocial/pkg/httpcache"
	"github.com/codeGROOVE-dev/parasocial/pkg/person"
)

const apiBase = "https://substack.com/api/v1"

// ErrAuthRequired is returned when an operation needs a login session and
// no substack.sid cookie is available.
var ErrAuthRequired = errors.New("authentication required: set " + auth.EnvSession + " or log into Substack in your browser")

// Client handles Substack API requests. It implements finder.Source.
type Client struct {
	httpClient *http.Client
	cache      httpcache.Cacher
	logger     *slog.Logger
	authed     bool
}

// Option configures a Client.
type Option func(*config)

type config struct {
	cache   httpcache.Cacher
	logger  *slog.Logger
	cookies map[string]string
}

// WithHTTPCache sets the HTTP cache.
func WithHTTPCache(cache httpcache.Cacher) Option {
	return func(c *config) { c.cache = cache }
}

// WithLogger sets a custom logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *config) { c.logger = logger }
}

// WithCookies sets session cookies for authenticated endpoints.
func WithCookies(cookies map[string]string) Option {
	return func(c *config) { c.cookies = cookies }
}

// New creates a Substack client. Cookies are optional: public profile and
// subscription data works without them, audience fetches do not.
func New(_ context.Context, opts ...Option) (*Client, error) {
	cfg := &config{logger: slog.Default()}
	for _, opt := range opts {
		opt(cfg)
	}

	client := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		cache:      cfg.cache,
		logger:     cfg.logger,
	}

	if len(cfg.cookies) > 0 {
		jar, err := auth.NewCookieJar(cfg.cookies)
		if err != nil {
			return nil, fmt.Errorf("build cookie jar: %w", err)
		}
		client.httpClient.Jar = jar
		client.authed = auth.HasSession(cfg.cookies)
	}

	return client, nil
}

// Authenticated reports whether the client carries a login session.
func (c *Client) Authenticated() bool { return c.authed }

// Profile resolves a handle to a Person. Handles that were renamed are
// followed through their redirect first. Returns person.ErrNotFound for
// unknown accounts.
func (c *Client) Profile(ctx context.Context, handle string) (person.Person, error) {
	resolved := c.resolveHandle(ctx, handle)

	prof, err := c.publicProfile(ctx, resolved)
	if err != nil {
		return person.Person{}, err
	}
	return prof.person(resolved), nil
}

// Subscriptions returns the newsletters a person subscribes to. The
// public_profile response embeds them, so this shares the profile fetch
// (and its cache entry).
func (c *Client) Subscriptions(ctx context.Context, handle string) ([]person.Newsletter, error) {
	resolved := c.resolveHandle(ctx, handle)

	prof, err := c.publicProfile(ctx, resolved)
	if err != nil {
		return nil, err
	}

	var newsletters []person.Newsletter
	for _, sub := range prof.Subscriptions {
		if sub.Publication == nil {
			continue
		}
		newsletters = append(newsletters, sub.Publication.newsletter())
	}
	return newsletters, nil
}

// AuthorHandle resolves the handle of a newsletter's author by scanning the
// publication homepage for a profile link.
func (c *Client) AuthorHandle(ctx context.Context, n person.Newsletter) (string, error) {
	if n.Subdomain == "" {
		return "", fmt.Errorf("newsletter %q has no subdomain", n.Name)
	}

	pageURL := n.CanonicalURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, http.NoBody)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", httpcache.UserAgent)

	// Bot-challenge interstitials must not poison the cache.
	body, err := httpcache.FetchURLWithValidator(ctx, c.cache, c.httpClient, req, c.logger,
		func(body []byte) bool { return !htmlutil.IsBotChallenge(body) })
	if err != nil {
		return "", fmt.Errorf("fetch publication page: %w", err)
	}

	handle := htmlutil.AuthorHandle(string(body))
	if handle == "" {
		return "", fmt.Errorf("no author handle on %s", pageURL)
	}
	return handle, nil
}

// Audience fetches one sample of a newsletter audience via the
// subscriber-lists endpoint, which is keyed by the author's numeric ID and
// requires a login session. Failures are tagged, not raised: the pipeline
// decides what a failed or empty sample means.
func (c *Client) Audience(ctx context.Context, authorHandle string, kind finder.AudienceKind, limit int) finder.Audience {
	if !c.authed {
		c.logger.WarnContext(ctx, "audience fetch needs a session cookie", "author", authorHandle, "error", ErrAuthRequired)
		return finder.Audience{Outcome: finder.OutcomeFailed}
	}

	author, err := c.Profile(ctx, authorHandle)
	if err != nil {
		c.logger.WarnContext(ctx, "could not resolve author for audience fetch", "author", authorHandle, "error", err)
		return finder.Audience{Outcome: finder.OutcomeFailed}
	}

	url := fmt.Sprintf("%s/user/%d/subscriber-lists?lists=%s", apiBase, author.ID, kind)
	body, err := c.fetchJSON(ctx, url)
	if err != nil {
		c.logger.WarnContext(ctx, "audience fetch failed", "author", authorHandle, "kind", kind, "error", err)
		return finder.Audience{Outcome: finder.OutcomeFailed}
	}

	var lists apiSubscriberLists
	if err := json.Unmarshal(body, &lists); err != nil {
		c.logger.WarnContext(ctx, "audience response unparseable", "author", authorHandle, "kind", kind, "error", err)
		return finder.Audience{Outcome: finder.OutcomeFailed}
	}

	users := lists.users(kind)
	if limit > 0 && len(users) > limit {
		users = users[:limit]
	}
	if len(users) == 0 {
		return finder.Audience{Outcome: finder.OutcomeEmpty}
	}

	people := make([]person.Person, 0, len(users))
	for _, u := range users {
		people = append(people, u.person())
	}
	return finder.Audience{Outcome: finder.OutcomeData, People: people}
}

// publicProfile fetches and parses /user/{handle}/public_profile.
func (c *Client) publicProfile(ctx context.Context, handle string) (*apiProfile, error) {
	body, err := c.fetchJSON(ctx, apiBase+"/user/"+handle+"/public_profile")
	if err != nil {
		var httpErr *httpcache.HTTPError
		if errors.As(err, &httpErr) && httpErr.StatusCode == http.StatusNotFound {
			return nil, fmt.Errorf("%w: @%s", person.ErrNotFound, handle)
		}
		return nil, err
	}

	var prof apiProfile
	if err := json.Unmarshal(body, &prof); err != nil {
		return nil, fmt.Errorf("parse profile for @%s: %w", handle, err)
	}
	if prof.ID == 0 {
		return nil, fmt.Errorf("%w: @%s", person.ErrNotFound, handle)
	}
	return &prof, nil
}

func (c *Client) fetchJSON(ctx context.Context, url string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, http.NoBody)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", httpcache.UserAgent)
	req.Header.Set("Accept", "application/json")

	return httpcache.FetchURL(ctx, c.cache, c.httpClient, req, c.logger)
}

// resolveHandle follows the profile redirect for handles that were renamed.
// On any failure the original handle is returned unchanged.
func (c *Client) resolveHandle(ctx context.Context, handle string) string {
	final := httpcache.ResolveFinalURL(ctx, c.cache, c.httpClient, "https://substack.com/@"+handle, c.logger)

	at := strings.LastIndex(final, "/@")
	if at == -1 {
		return handle
	}
	resolved := final[at+2:]
	for _, stop := range []string{"/", "?", "#"} {
		if idx := strings.Index(resolved, stop); idx != -1 {
			resolved = resolved[:idx]
		}
	}
	if resolved == "" {
		return handle
	}
	if resolved != handle {
		c.logger.InfoContext(ctx, "handle was renamed", "from", handle, "to", resolved)
	}
	return resolved
}

// Ensure Client implements the pipeline's source contract.
var _ finder.Source = (*Client)(nil)
