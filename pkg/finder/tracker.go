package finder

import (
	"sort"
	"sync"

	"github.com/codeGROOVE-dev/parasocial/pkg/person"
	"github.com/codeGROOVE-dev/parasocial/pkg/score"
)

// Tracker accumulates which newsletters each candidate was observed in
// during phase one of a scan. It is an explicit accumulator passed through
// the pipeline rather than package state, so runs are re-entrant and tests
// need no global reset.
//
// Audience merges may run concurrently; appearance-set membership is a set
// union, so the final contents are independent of insertion order.
type Tracker struct {
	mu         sync.Mutex
	seedID     int64
	candidates map[int64]*candidate
}

type candidate struct {
	person      person.Person
	appearances []person.Newsletter
}

// NewTracker creates a tracker for a scan seeded by the given person ID.
// The seed is never tracked, even when their own account shows up in a
// subscriber list.
func NewTracker(seedID int64) *Tracker {
	return &Tracker{
		seedID:     seedID,
		candidates: make(map[int64]*candidate),
	}
}

// Observe records that everyone in audience appeared in newsletter n.
//
// The audience is deduplicated by person ID before tracking (first occurrence
// wins, fields are not merged), so a person listed as both subscriber and
// follower gains the newsletter exactly once. A person already known from an
// earlier newsletter has their record superseded by this observation and the
// newsletter appended to their appearance set.
func (t *Tracker) Observe(n person.Newsletter, audience []person.Person) {
	seen := make(map[int64]bool, len(audience))

	t.mu.Lock()
	defer t.mu.Unlock()
	for _, p := range audience {
		if p.ID == 0 || p.ID == t.seedID || seen[p.ID] {
			continue
		}
		seen[p.ID] = true

		c, ok := t.candidates[p.ID]
		if !ok {
			c = &candidate{}
			t.candidates[p.ID] = c
		}
		c.person = p
		c.appearances = append(c.appearances, n)
	}
}

// Len returns the number of unique candidates observed so far.
func (t *Tracker) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.candidates)
}

// Candidates snapshots the accumulated appearance sets for scoring, ordered
// by person ID for determinism. Safe to call mid-scan: scoring partial
// aggregations is valid and does not disturb tracker state.
func (t *Tracker) Candidates() []score.Candidate {
	t.mu.Lock()
	defer t.mu.Unlock()

	out := make([]score.Candidate, 0, len(t.candidates))
	for _, c := range t.candidates {
		subs := make([]person.Newsletter, len(c.appearances))
		copy(subs, c.appearances)
		out = append(out, score.Candidate{Person: c.person, Subscriptions: subs})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Person.ID < out[j].Person.ID })
	return out
}
