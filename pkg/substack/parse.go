package substack

import (
	"github.com/codeGROOVE-dev/parasocial/pkg/finder"
	"github.com/codeGROOVE-dev/parasocial/pkg/person"
)

// API response shapes. Substack's API is undocumented and drifts, so every
// field is optional and parsing defaults rather than fails.

type apiProfile struct {
	ID                 int64              `json:"id"`
	Handle             string             `json:"handle"`
	Name               string             `json:"name"`
	Bio                string             `json:"bio"`
	PhotoURL           string             `json:"photo_url"`
	FollowerCount      int                `json:"followerCount"`
	PrimaryPublication *apiPublicationRef `json:"primaryPublication"`
	Subscriptions      []apiSubscription  `json:"subscriptions"`
}

type apiPublicationRef struct {
	URL       string `json:"url"`
	Subdomain string `json:"subdomain"`
}

type apiSubscription struct {
	Publication *apiPublication `json:"publication"`
}

type apiPublication struct {
	ID              int64      `json:"id"`
	Name            string     `json:"name"`
	Subdomain       string     `json:"subdomain"`
	AuthorID        int64      `json:"author_id"`
	PrimaryUserID   int64      `json:"primary_user_id"`
	Author          *apiAuthor `json:"author"`
	SubscriberCount int        `json:"subscriber_count"`
}

type apiAuthor struct {
	ID int64 `json:"id"`
}

type apiUser struct {
	ID                 int64              `json:"id"`
	Handle             string             `json:"handle"`
	Username           string             `json:"username"`
	Name               string             `json:"name"`
	Bio                string             `json:"bio"`
	PhotoURL           string             `json:"photo_url"`
	FollowerCount      int                `json:"followerCount"`
	PrimaryPublication *apiPublicationRef `json:"primaryPublication"`
}

// apiSubscriberLists covers both response shapes the subscriber-lists
// endpoint has been seen returning: flat per-kind arrays, and a grouped
// subscriberLists structure.
type apiSubscriberLists struct {
	Subscribers     []apiUser `json:"subscribers"`
	Followers       []apiUser `json:"followers"`
	SubscriberLists []struct {
		Groups []struct {
			Users []apiUser `json:"users"`
		} `json:"groups"`
	} `json:"subscriberLists"`
}

func (p *apiProfile) person(resolvedHandle string) person.Person {
	handle := p.Handle
	if handle == "" {
		handle = resolvedHandle
	}
	name := p.Name
	if name == "" {
		name = handle
	}
	out := person.Person{
		ID:            p.ID,
		Handle:        handle,
		Name:          name,
		Bio:           p.Bio,
		AvatarURL:     p.PhotoURL,
		FollowerCount: p.FollowerCount,
	}
	if p.PrimaryPublication != nil {
		out.HasPublication = true
		out.PublicationURL = p.PrimaryPublication.url()
	}
	return out
}

func (u *apiUser) person() person.Person {
	handle := u.Handle
	if handle == "" {
		handle = u.Username
	}
	name := u.Name
	if name == "" {
		name = handle
	}
	out := person.Person{
		ID:            u.ID,
		Handle:        handle,
		Name:          name,
		Bio:           u.Bio,
		AvatarURL:     u.PhotoURL,
		FollowerCount: u.FollowerCount,
	}
	if u.PrimaryPublication != nil {
		out.HasPublication = true
		out.PublicationURL = u.PrimaryPublication.url()
	}
	return out
}

func (r *apiPublicationRef) url() string {
	if r.URL != "" {
		return r.URL
	}
	if r.Subdomain != "" {
		return "https://" + r.Subdomain + ".substack.com"
	}
	return ""
}

func (p *apiPublication) newsletter() person.Newsletter {
	authorID := p.AuthorID
	if authorID == 0 {
		authorID = p.PrimaryUserID
	}
	if authorID == 0 && p.Author != nil {
		authorID = p.Author.ID
	}
	n := person.Newsletter{
		ID:              p.ID,
		Name:            p.Name,
		Subdomain:       p.Subdomain,
		AuthorID:        authorID,
		SubscriberCount: p.SubscriberCount,
	}
	n.URL = n.CanonicalURL()
	if n.Name == "" {
		n.Name = p.Subdomain
	}
	return n
}

// users extracts the audience for the requested kind, covering both
// response shapes. The grouped shape does not label kinds, so its users are
// included regardless.
func (l *apiSubscriberLists) users(kind finder.AudienceKind) []apiUser {
	var out []apiUser
	switch kind {
	case finder.KindFollowers:
		out = append(out, l.Followers...)
	case finder.KindSubscribers:
		out = append(out, l.Subscribers...)
	}
	for _, list := range l.SubscriberLists {
		for _, group := range list.Groups {
			out = append(out, group.Users...)
		}
	}
	return out
}
