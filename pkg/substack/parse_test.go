package substack

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codeGROOVE-dev/parasocial/pkg/finder"
	"github.com/codeGROOVE-dev/parasocial/pkg/person"
)

func TestNewsletterAuthorIDFallbacks(t *testing.T) {
	tests := []struct {
		name string
		pub  apiPublication
		want int64
	}{
		{"author_id", apiPublication{AuthorID: 1, PrimaryUserID: 2, Author: &apiAuthor{ID: 3}}, 1},
		{"primary_user_id", apiPublication{PrimaryUserID: 2, Author: &apiAuthor{ID: 3}}, 2},
		{"nested author", apiPublication{Author: &apiAuthor{ID: 3}}, 3},
		{"nothing known", apiPublication{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.pub.newsletter().AuthorID; got != tt.want {
				t.Errorf("AuthorID = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestNewsletterDefaults(t *testing.T) {
	pub := apiPublication{ID: 7, Subdomain: "unnamed"}
	got := pub.newsletter()

	if got.Name != "unnamed" {
		t.Errorf("Name = %q, want subdomain fallback", got.Name)
	}
	if got.URL != "https://unnamed.substack.com" {
		t.Errorf("URL = %q, want derived from subdomain", got.URL)
	}
}

func TestUserPersonDefaults(t *testing.T) {
	tests := []struct {
		name       string
		user       apiUser
		wantHandle string
		wantName   string
	}{
		{"handle and name", apiUser{ID: 1, Handle: "h", Name: "N"}, "h", "N"},
		{"username fallback", apiUser{ID: 1, Username: "u"}, "u", "u"},
		{"name falls back to handle", apiUser{ID: 1, Handle: "h"}, "h", "h"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.user.person()
			if got.Handle != tt.wantHandle || got.Name != tt.wantName {
				t.Errorf("person() = (%q, %q), want (%q, %q)",
					got.Handle, got.Name, tt.wantHandle, tt.wantName)
			}
		})
	}
}

func TestUserPersonPublication(t *testing.T) {
	u := apiUser{ID: 1, Handle: "h", PrimaryPublication: &apiPublicationRef{Subdomain: "mypub"}}
	got := u.person()
	if !got.HasPublication {
		t.Error("HasPublication = false with primaryPublication set")
	}
	if got.PublicationURL != "https://mypub.substack.com" {
		t.Errorf("PublicationURL = %q, want derived from subdomain", got.PublicationURL)
	}
}

func TestSubscriberListsShapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		kind finder.AudienceKind
		want []int64
	}{
		{
			"flat subscribers",
			`{"subscribers": [{"id": 1}, {"id": 2}]}`,
			finder.KindSubscribers,
			[]int64{1, 2},
		},
		{
			"flat followers",
			`{"followers": [{"id": 3}]}`,
			finder.KindFollowers,
			[]int64{3},
		},
		{
			"kind selects the matching flat list",
			`{"subscribers": [{"id": 1}], "followers": [{"id": 3}]}`,
			finder.KindFollowers,
			[]int64{3},
		},
		{
			"grouped shape",
			`{"subscriberLists": [{"groups": [{"users": [{"id": 4}]}, {"users": [{"id": 5}]}]}]}`,
			finder.KindSubscribers,
			[]int64{4, 5},
		},
		{
			"flat and grouped combined",
			`{"subscribers": [{"id": 1}], "subscriberLists": [{"groups": [{"users": [{"id": 4}]}]}]}`,
			finder.KindSubscribers,
			[]int64{1, 4},
		},
		{
			"empty response",
			`{}`,
			finder.KindSubscribers,
			nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var lists apiSubscriberLists
			if err := json.Unmarshal([]byte(tt.body), &lists); err != nil {
				t.Fatalf("Unmarshal() error = %v", err)
			}

			var ids []int64
			for _, u := range lists.users(tt.kind) {
				ids = append(ids, u.ID)
			}
			if diff := cmp.Diff(tt.want, ids); diff != "" {
				t.Errorf("users() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestProfileParseDefensive(t *testing.T) {
	// Fields the API has been seen omitting must default, not fail.
	body := `{"id": 9, "subscriptions": [{"publication": {"id": 1}}, {}]}`

	var prof apiProfile
	if err := json.Unmarshal([]byte(body), &prof); err != nil {
		t.Fatalf("Unmarshal() error = %v", err)
	}

	got := prof.person("fallback")
	want := person.Person{ID: 9, Handle: "fallback", Name: "fallback"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("person() mismatch (-want +got):\n%s", diff)
	}
}
