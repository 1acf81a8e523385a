package finder

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/codeGROOVE-dev/parasocial/pkg/person"
)

func TestTrackerObserve(t *testing.T) {
	n1 := person.Newsletter{ID: 1, Name: "First"}
	n2 := person.Newsletter{ID: 2, Name: "Second"}
	alice := person.Person{ID: 10, Handle: "alice"}
	bob := person.Person{ID: 20, Handle: "bob"}

	t.Run("seed is never tracked", func(t *testing.T) {
		tr := NewTracker(10)
		tr.Observe(n1, []person.Person{alice, bob})
		if tr.Len() != 1 {
			t.Fatalf("Len() = %d, want 1", tr.Len())
		}
		if got := tr.Candidates(); got[0].Person.ID != 20 {
			t.Errorf("tracked ID = %d, want 20", got[0].Person.ID)
		}
	})

	t.Run("zero ID skipped", func(t *testing.T) {
		tr := NewTracker(1)
		tr.Observe(n1, []person.Person{{ID: 0, Handle: "ghost"}, alice})
		if tr.Len() != 1 {
			t.Errorf("Len() = %d, want 1", tr.Len())
		}
	})

	t.Run("duplicate within one audience counted once", func(t *testing.T) {
		// The same person appears as subscriber and follower of one
		// newsletter; their appearance set must gain it exactly once.
		tr := NewTracker(1)
		tr.Observe(n1, []person.Person{alice, alice})
		got := tr.Candidates()
		if len(got[0].Subscriptions) != 1 {
			t.Errorf("appearances = %d, want 1", len(got[0].Subscriptions))
		}
	})

	t.Run("first occurrence wins within one audience", func(t *testing.T) {
		tr := NewTracker(1)
		richer := person.Person{ID: 10, Handle: "alice", Bio: "from follower record"}
		tr.Observe(n1, []person.Person{alice, richer})
		if got := tr.Candidates(); got[0].Person.Bio != "" {
			t.Errorf("Bio = %q, want first-seen record", got[0].Person.Bio)
		}
	})

	t.Run("later newsletter supersedes the person record", func(t *testing.T) {
		tr := NewTracker(1)
		tr.Observe(n1, []person.Person{alice})
		updated := person.Person{ID: 10, Handle: "alice_renamed", Bio: "now with bio"}
		tr.Observe(n2, []person.Person{updated})

		got := tr.Candidates()
		if len(got) != 1 {
			t.Fatalf("len(candidates) = %d, want 1", len(got))
		}
		if got[0].Person.Handle != "alice_renamed" {
			t.Errorf("Handle = %q, want superseded record", got[0].Person.Handle)
		}
		want := []person.Newsletter{n1, n2}
		if diff := cmp.Diff(want, got[0].Subscriptions); diff != "" {
			t.Errorf("appearances mismatch (-want +got):\n%s", diff)
		}
	})

	t.Run("candidates ordered by person ID", func(t *testing.T) {
		tr := NewTracker(1)
		tr.Observe(n1, []person.Person{bob, alice})
		got := tr.Candidates()
		if got[0].Person.ID != 10 || got[1].Person.ID != 20 {
			t.Errorf("order = [%d, %d], want [10, 20]", got[0].Person.ID, got[1].Person.ID)
		}
	})

	t.Run("snapshot does not alias tracker state", func(t *testing.T) {
		tr := NewTracker(1)
		tr.Observe(n1, []person.Person{alice})
		snap := tr.Candidates()
		tr.Observe(n2, []person.Person{alice})
		if len(snap[0].Subscriptions) != 1 {
			t.Errorf("snapshot grew after later Observe: %d appearances", len(snap[0].Subscriptions))
		}
	})
}
