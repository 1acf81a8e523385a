// Package score implements nicheness-weighted subscription overlap scoring.
//
// The premise: sharing a 200-subscriber newsletter is a much stronger
// friendship signal than sharing a 500k-subscriber one, so each shared
// newsletter contributes the inverse log of its audience size.
package score

import (
	"math"
	"sort"

	"github.com/codeGROOVE-dev/parasocial/pkg/person"
)

// Damping scales the profile-quality bonus before it is added to the overlap
// score, so overlap always dominates the ranking and quality only breaks
// near-ties.
const Damping = 0.1

// NichenessWeight maps a newsletter's subscriber count to an importance
// weight: 1 / ln(count + 2). The +2 offset keeps the result finite and
// positive for counts of 0 and 1. Strictly decreasing; no clamping, so very
// large audiences approach zero weight and weight(0) = 1/ln(2) ~= 1.4427.
func NichenessWeight(subscriberCount int) float64 {
	return 1.0 / math.Log(float64(subscriberCount)+2)
}

// Overlap computes the weighted overlap between two subscription sets.
//
// Newsletters are matched by numeric ID, not record identity; the seed-side
// copy of each shared newsletter supplies the subscriber count so the score
// reflects a single consistent snapshot. Returns the score and the shared
// newsletters sorted nichest-first. An empty intersection yields (0, nil),
// which is a valid result, not an error.
func Overlap(seedSubs, candidateSubs []person.Newsletter) (float64, []person.Newsletter) {
	candidateIDs := make(map[int64]bool, len(candidateSubs))
	for _, n := range candidateSubs {
		candidateIDs[n.ID] = true
	}

	var shared []person.Newsletter
	seen := make(map[int64]bool)
	for _, n := range seedSubs {
		if candidateIDs[n.ID] && !seen[n.ID] {
			seen[n.ID] = true
			shared = append(shared, n)
		}
	}
	if len(shared) == 0 {
		return 0, nil
	}

	total := 0.0
	for _, n := range shared {
		total += NichenessWeight(n.SubscriberCount)
	}

	sortNichest(shared)
	return total, shared
}

// QualityBonus computes a profile-completeness bonus that favors
// apparently-real, content-producing accounts over bot-like ones.
// Bio +1.0, owned publication +2.0, avatar +0.5; independent and additive.
// Callers scale the result by Damping before adding it to an overlap score.
func QualityBonus(p person.Person) float64 {
	bonus := 0.0
	if p.Bio != "" {
		bonus += 1.0
	}
	if p.HasPublication {
		bonus += 2.0
	}
	if p.AvatarURL != "" {
		bonus += 0.5
	}
	return bonus
}

// Filters holds the per-candidate emission thresholds.
type Filters struct {
	MinOverlap         int  // Minimum shared newsletters, inclusive
	RequireBio         bool // Drop candidates without a bio
	RequirePublication bool // Drop candidates without their own publication
}

// DefaultFilters requires two shared newsletters: a single shared newsletter,
// even a niche one, produces too many false positives.
func DefaultFilters() Filters {
	return Filters{MinOverlap: 2}
}

// Candidate pairs a person with the subscriptions observed for them. In the
// two-phase pipeline the subscription list is the appearance set, which by
// construction is a subset of the seed's subscriptions.
type Candidate struct {
	Person        person.Person
	Subscriptions []person.Newsletter
}

// Rank filters and scores candidates against the seed's subscriptions and
// returns matches ordered best-first (score descending, person ID ascending
// on ties). The full filtered list is returned; display truncation is the
// caller's concern.
func Rank(seedSubs []person.Newsletter, candidates []Candidate, f Filters) []person.Match {
	var matches []person.Match
	for _, c := range candidates {
		if f.RequireBio && c.Person.Bio == "" {
			continue
		}
		if f.RequirePublication && !c.Person.HasPublication {
			continue
		}

		overlap, shared := Overlap(seedSubs, c.Subscriptions)
		if len(shared) < f.MinOverlap {
			continue
		}

		matches = append(matches, person.Match{
			Person: c.Person,
			Score:  overlap + Damping*QualityBonus(c.Person),
			Shared: shared,
		})
	}

	sort.Slice(matches, func(i, j int) bool {
		return person.MoreRelevant(matches[i], matches[j])
	})
	return matches
}

// sortNichest orders newsletters by ascending subscriber count, newsletter ID
// ascending on equal counts.
func sortNichest(newsletters []person.Newsletter) {
	sort.Slice(newsletters, func(i, j int) bool {
		if newsletters[i].SubscriberCount != newsletters[j].SubscriberCount {
			return newsletters[i].SubscriberCount < newsletters[j].SubscriberCount
		}
		return newsletters[i].ID < newsletters[j].ID
	})
}
