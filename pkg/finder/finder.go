// Package finder implements the two-phase friend discovery pipeline:
// collect audience samples from the seed user's nichest subscriptions, then
// score accumulated appearances without any further fetching.
package finder

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/codeGROOVE-dev/parasocial/pkg/person"
	"github.com/codeGROOVE-dev/parasocial/pkg/score"
)

// AudienceKind selects which sample of a newsletter's audience to fetch.
type AudienceKind string

// Audience sample kinds.
const (
	KindSubscribers AudienceKind = "subscribers"
	KindFollowers   AudienceKind = "followers"
)

// Outcome tags an audience fetch so that "nobody subscribes" and "could not
// fetch" stay distinguishable.
type Outcome int

// Audience fetch outcomes.
const (
	OutcomeData   Outcome = iota // fetch succeeded and returned people
	OutcomeEmpty                 // fetch succeeded but the list was empty
	OutcomeFailed                // fetch failed; People is nil
)

// Audience is the result of one audience sample fetch.
type Audience struct {
	Outcome Outcome
	People  []person.Person
}

// Source is the external data contract the pipeline consumes. All retries,
// caching and rate limiting live behind it; the pipeline treats every call
// as already-final.
type Source interface {
	// Profile resolves a handle to a Person. Returns person.ErrNotFound if
	// the identity does not resolve.
	Profile(ctx context.Context, handle string) (person.Person, error)

	// Subscriptions returns the newsletters a person subscribes to, each
	// annotated with its author ID and subscriber-count snapshot. An empty
	// slice is a valid answer.
	Subscriptions(ctx context.Context, handle string) ([]person.Newsletter, error)

	// AuthorHandle resolves the handle of a newsletter's author, needed
	// because audience fetches are keyed by handle rather than numeric ID.
	AuthorHandle(ctx context.Context, n person.Newsletter) (string, error)

	// Audience fetches up to limit people from one sample of a
	// newsletter's audience.
	Audience(ctx context.Context, authorHandle string, kind AudienceKind, limit int) Audience
}

// Options bound the scan and configure match filtering.
type Options struct {
	MaxNewsletters int // Newsletters to scan, nichest first (default 5)
	PerNewsletter  int // Cap per audience sample fetch (default 50)
	Filters        score.Filters
}

func (o Options) withDefaults() Options {
	if o.MaxNewsletters <= 0 {
		o.MaxNewsletters = 5
	}
	if o.PerNewsletter <= 0 {
		o.PerNewsletter = 50
	}
	return o
}

// Summary describes what a run saw, for reporting.
type Summary struct {
	Seed               string `json:",omitempty"` // Seed handle
	SeedID             int64  `json:",omitempty"`
	Subscriptions      int    // Seed's subscription count
	NewslettersScanned int    // Includes newsletters skipped for unresolvable authors
	Candidates         int    // Unique candidates observed
	Matches            int    // Candidates surviving filters
}

// Result is the canonical output of a run: the summary plus the full
// filtered, ranked match list. Display limits are a view concern.
type Result struct {
	Summary Summary
	Matches []person.Match
}

// Finder runs the discovery pipeline against a Source.
type Finder struct {
	source Source
	logger *slog.Logger
}

// New creates a Finder. A nil logger falls back to slog.Default.
func New(source Source, logger *slog.Logger) *Finder {
	if logger == nil {
		logger = slog.Default()
	}
	return &Finder{source: source, logger: logger}
}

// Find discovers friend candidates for the seed handle.
//
// Phase one scans the seed's nichest subscriptions serially, feeding each
// newsletter's deduplicated audience into a Tracker. No per-newsletter
// failure aborts the scan; an unresolvable author skips that newsletter but
// still counts it as scanned. Cancelling ctx stops the scan after the
// current newsletter and whatever was aggregated is still scored.
//
// Phase two is pure computation over the tracker: every appearance set is a
// subset of the seed's subscriptions, so the weighted overlap needs zero
// additional fetches.
//
// An unresolvable seed is the only fatal error. A seed with no subscriptions
// produces an empty result, and zero matches is a fully successful outcome.
func (f *Finder) Find(ctx context.Context, handle string, opts Options) (*Result, error) {
	opts = opts.withDefaults()

	seed, err := f.source.Profile(ctx, handle)
	if err != nil {
		return nil, fmt.Errorf("resolve seed %q: %w", handle, err)
	}

	subs, err := f.source.Subscriptions(ctx, handle)
	if err != nil {
		f.logger.Warn("could not fetch seed subscriptions", "handle", handle, "error", err)
		subs = nil
	}
	if len(subs) == 0 {
		f.logger.Info("seed has no visible subscriptions", "handle", handle)
		return &Result{Summary: Summary{Seed: handle, SeedID: seed.ID}}, nil
	}

	toScan := selectNichest(subs, opts.MaxNewsletters)
	f.logger.Info("scanning newsletters",
		"handle", handle, "subscriptions", len(subs), "scanning", len(toScan))

	tracker := NewTracker(seed.ID)
	scanned := 0
scan:
	for i, n := range toScan {
		select {
		case <-ctx.Done():
			f.logger.Info("scan cancelled, scoring partial results", "scanned", scanned, "error", ctx.Err())
			break scan
		default:
		}

		f.logger.Info("scanning newsletter",
			"index", i+1, "of", len(toScan), "name", n.Name, "subscribers", n.SubscriberCount)
		scanned++

		author, err := f.source.AuthorHandle(ctx, n)
		if err != nil || author == "" {
			f.logger.Warn("skipping newsletter, author handle unresolved",
				"name", n.Name, "subdomain", n.Subdomain, "error", err)
			continue
		}

		audience := f.collectAudience(ctx, n, author, opts.PerNewsletter)
		tracker.Observe(n, audience)
	}

	candidates := tracker.Candidates()
	f.logger.Info("scoring candidates", "count", len(candidates))

	matches := score.Rank(subs, candidates, opts.Filters)

	return &Result{
		Summary: Summary{
			Seed:               handle,
			SeedID:             seed.ID,
			Subscriptions:      len(subs),
			NewslettersScanned: scanned,
			Candidates:         len(candidates),
			Matches:            len(matches),
		},
		Matches: matches,
	}, nil
}

// collectAudience fetches the subscriber and follower samples for one
// newsletter and concatenates them; the Tracker deduplicates by person ID
// with first occurrence winning, so subscribers take precedence.
func (f *Finder) collectAudience(ctx context.Context, n person.Newsletter, author string, limit int) []person.Person {
	var audience []person.Person
	for _, kind := range []AudienceKind{KindSubscribers, KindFollowers} {
		sample := f.source.Audience(ctx, author, kind, limit)
		switch sample.Outcome {
		case OutcomeData:
			audience = append(audience, sample.People...)
		case OutcomeEmpty:
			f.logger.Debug("audience sample empty", "newsletter", n.Name, "kind", kind)
		case OutcomeFailed:
			f.logger.Warn("audience sample fetch failed, results may be degraded",
				"newsletter", n.Name, "author", author, "kind", kind)
		}
	}
	return audience
}

// selectNichest returns up to max newsletters with a known author, smallest
// audience first. Niche newsletters carry the strongest signal, so they get
// the scanning budget.
func selectNichest(subs []person.Newsletter, max int) []person.Newsletter {
	withAuthor := make([]person.Newsletter, 0, len(subs))
	for _, n := range subs {
		if n.AuthorID != 0 {
			withAuthor = append(withAuthor, n)
		}
	}
	sort.Slice(withAuthor, func(i, j int) bool {
		if withAuthor[i].SubscriberCount != withAuthor[j].SubscriberCount {
			return withAuthor[i].SubscriberCount < withAuthor[j].SubscriberCount
		}
		return withAuthor[i].ID < withAuthor[j].ID
	})
	if len(withAuthor) > max {
		withAuthor = withAuthor[:max]
	}
	return withAuthor
}
