// Package person defines the entity records shared across the matching pipeline.
package person

import "errors"

// ErrNotFound is returned when an identity does not resolve to an account.
var ErrNotFound = errors.New("profile not found")

// Person represents a Substack account observed during a scan.
//
// The numeric ID is the only reliable identity key: handles can be renamed
// and every other field may differ between fetches. A later observation of
// the same ID supersedes the earlier record wholesale; fields are never
// merged.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Person struct {
	ID     int64  `json:",omitempty"` // Stable numeric account ID
	Handle string `json:",omitempty"` // Username without @ prefix; may be empty or stale

	Name           string `json:",omitempty"` // Display name
	Bio            string `json:",omitempty"` // Profile bio, empty if unset
	AvatarURL      string `json:",omitempty"` // Profile photo URL
	HasPublication bool   `json:",omitempty"` // Whether the account owns a publication
	PublicationURL string `json:",omitempty"` // URL of the owned publication
	FollowerCount  int    `json:",omitempty"` // Follower count at fetch time
}

// Newsletter represents a publication a Person can subscribe to.
//
// SubscriberCount is a snapshot taken when the seed's subscription list was
// fetched; it is never re-validated during a run.
//
//nolint:govet // fieldalignment: intentional layout for readability
type Newsletter struct {
	ID        int64  `json:",omitempty"` // Stable numeric publication ID
	Name      string `json:",omitempty"`
	Subdomain string `json:",omitempty"` // e.g. "platformer" for platformer.substack.com
	AuthorID  int64  `json:",omitempty"` // Numeric ID of the owning author

	SubscriberCount int    `json:",omitempty"` // Drives the nicheness weight
	URL             string `json:",omitempty"` // Canonical publication URL
}

// CanonicalURL derives the publication URL from the subdomain when the API
// did not provide one.
func (n Newsletter) CanonicalURL() string {
	if n.URL != "" {
		return n.URL
	}
	if n.Subdomain == "" {
		return ""
	}
	return "https://" + n.Subdomain + ".substack.com"
}

// Match pairs a candidate Person with an overlap score and the newsletters
// shared with the seed user. Shared is sorted nichest-first (ascending
// subscriber count). Matches are immutable once constructed.
type Match struct {
	Person Person       `json:",omitempty"`
	Score  float64      `json:",omitempty"`
	Shared []Newsletter `json:",omitempty"`
}

// MoreRelevant reports whether match a ranks ahead of match b: higher score
// first, person ID ascending on equal scores. The tie-break keeps output
// stable regardless of collection order.
func MoreRelevant(a, b Match) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Person.ID < b.Person.ID
}
