package substack

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codeGROOVE-dev/parasocial/pkg/finder"
	"github.com/codeGROOVE-dev/parasocial/pkg/person"
)

// mockTransport redirects all requests to the test server while the client
// code keeps building real substack.com URLs.
type mockTransport struct {
	mockURL string
}

func (t *mockTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.URL.Scheme = "http"
	req.URL.Host = t.mockURL[7:] // Strip "http://"
	return http.DefaultTransport.RoundTrip(req)
}

func testClient(t *testing.T, handler http.Handler, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(context.Background(), opts...)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	jar := client.httpClient.Jar
	client.httpClient = &http.Client{
		Transport: &mockTransport{mockURL: server.URL},
		Jar:       jar,
	}
	return client
}

const profileJSON = `{
	"id": 42,
	"handle": "caseynewton",
	"name": "Casey Newton",
	"bio": "Writes about platforms.",
	"photo_url": "https://substackcdn.com/avatar.jpg",
	"followerCount": 1200,
	"primaryPublication": {"url": "https://www.platformer.news"},
	"subscriptions": [
		{"publication": {"id": 1, "name": "Niche Letter", "subdomain": "nicheletter", "author_id": 100, "subscriber_count": 100}},
		{"publication": {"id": 2, "name": "Big Letter", "subdomain": "bigletter", "primary_user_id": 200, "subscriber_count": 10000}},
		{"publication": null}
	]
}`

func TestProfile(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/@oldname":
			// Renamed account: profile page redirects to the new handle.
			http.Redirect(w, r, "https://substack.com/@caseynewton", http.StatusMovedPermanently)
		case "/@caseynewton":
			w.WriteHeader(http.StatusOK)
		case "/api/v1/user/caseynewton/public_profile":
			_, _ = w.Write([]byte(profileJSON))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))

	got, err := client.Profile(context.Background(), "oldname")
	if err != nil {
		t.Fatalf("Profile() error = %v", err)
	}

	want := person.Person{
		ID:             42,
		Handle:         "caseynewton",
		Name:           "Casey Newton",
		Bio:            "Writes about platforms.",
		AvatarURL:      "https://substackcdn.com/avatar.jpg",
		HasPublication: true,
		PublicationURL: "https://www.platformer.news",
		FollowerCount:  1200,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Profile() mismatch (-want +got):\n%s", diff)
	}
}

func TestProfileNotFound(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/@ghost" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))

	_, err := client.Profile(context.Background(), "ghost")
	if !errors.Is(err, person.ErrNotFound) {
		t.Fatalf("Profile() error = %v, want person.ErrNotFound", err)
	}
}

func TestSubscriptions(t *testing.T) {
	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/api/v1/user/caseynewton/public_profile" {
			_, _ = w.Write([]byte(profileJSON))
			return
		}
		w.WriteHeader(http.StatusOK)
	}))

	got, err := client.Subscriptions(context.Background(), "caseynewton")
	if err != nil {
		t.Fatalf("Subscriptions() error = %v", err)
	}

	want := []person.Newsletter{
		{ID: 1, Name: "Niche Letter", Subdomain: "nicheletter", AuthorID: 100,
			SubscriberCount: 100, URL: "https://nicheletter.substack.com"},
		{ID: 2, Name: "Big Letter", Subdomain: "bigletter", AuthorID: 200,
			SubscriberCount: 10000, URL: "https://bigletter.substack.com"},
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Subscriptions() mismatch (-want +got):\n%s", diff)
	}
}

func TestAudienceUnauthenticated(t *testing.T) {
	client, err := New(context.Background())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	got := client.Audience(context.Background(), "anyone", finder.KindSubscribers, 50)
	if got.Outcome != finder.OutcomeFailed {
		t.Errorf("Outcome = %v, want OutcomeFailed without a session", got.Outcome)
	}
}

func TestAudience(t *testing.T) {
	if testing.Short() {
		t.Skip("audience round trip waits out the rate limiter")
	}

	client := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/@author1":
			w.WriteHeader(http.StatusOK)
		case "/api/v1/user/author1/public_profile":
			_, _ = w.Write([]byte(`{"id": 100, "handle": "author1", "name": "Author One"}`))
		case "/api/v1/user/100/subscriber-lists":
			if r.URL.Query().Get("lists") != "subscribers" {
				t.Errorf("lists = %q, want subscribers", r.URL.Query().Get("lists"))
			}
			_, _ = w.Write([]byte(`{"subscribers": [
				{"id": 10, "handle": "p1", "name": "Person One", "bio": "hi"},
				{"id": 20, "name": "No Handle"},
				{"id": 30, "handle": "p3"},
				{"id": 40, "handle": "p4"}
			]}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}), WithCookies(map[string]string{"substack.sid": "session"}))

	got := client.Audience(context.Background(), "author1", finder.KindSubscribers, 3)
	if got.Outcome != finder.OutcomeData {
		t.Fatalf("Outcome = %v, want OutcomeData", got.Outcome)
	}
	if len(got.People) != 3 {
		t.Fatalf("len(People) = %d, want limit 3", len(got.People))
	}
	if got.People[0].ID != 10 || got.People[0].Bio != "hi" {
		t.Errorf("People[0] = %+v, want person 10 with bio", got.People[0])
	}
	if got.People[1].Name != "No Handle" {
		t.Errorf("People[1].Name = %q, want %q", got.People[1].Name, "No Handle")
	}
}

func TestNewAuthenticated(t *testing.T) {
	client, err := New(context.Background(), WithCookies(map[string]string{"substack.sid": "x"}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if !client.Authenticated() {
		t.Error("Authenticated() = false with session cookie")
	}

	client, err = New(context.Background(), WithCookies(map[string]string{"other": "x"}))
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if client.Authenticated() {
		t.Error("Authenticated() = true without session cookie")
	}
}
