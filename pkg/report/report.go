// Package report renders finder results for terminal and JSON output.
package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/codeGROOVE-dev/parasocial/pkg/finder"
	"github.com/codeGROOVE-dev/parasocial/pkg/person"
)

const (
	maxBioLen        = 120
	maxSharedShown   = 5
	defaultShowLimit = 20
)

// Text writes a human-readable report. limit caps how many matches are
// shown; the result itself always carries the full list.
func Text(w io.Writer, res *finder.Result, limit int) error {
	if limit <= 0 {
		limit = defaultShowLimit
	}

	s := res.Summary
	fmt.Fprintf(w, "Friend candidates for @%s\n\n", s.Seed)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Subscriptions:\t%d\n", s.Subscriptions)
	fmt.Fprintf(tw, "Newsletters scanned:\t%d\n", s.NewslettersScanned)
	fmt.Fprintf(tw, "Candidates observed:\t%d\n", s.Candidates)
	fmt.Fprintf(tw, "Matches:\t%d\n", s.Matches)
	if err := tw.Flush(); err != nil {
		return err
	}

	if len(res.Matches) == 0 {
		fmt.Fprintln(w, "\nNo matches. Try lowering -min-overlap or relaxing filters.")
		return nil
	}

	shown := res.Matches
	if len(shown) > limit {
		shown = shown[:limit]
	}
	fmt.Fprintf(w, "\nTop %d of %d:\n\n", len(shown), len(res.Matches))

	for i, m := range shown {
		writeMatch(w, i+1, m)
	}
	if len(res.Matches) > limit {
		fmt.Fprintf(w, "... and %d more (raise -limit to see them)\n", len(res.Matches)-limit)
	}
	return nil
}

func writeMatch(w io.Writer, rank int, m person.Match) {
	p := m.Person

	var badges []string
	if p.HasPublication {
		badges = append(badges, "writer")
	}
	if p.Bio != "" {
		badges = append(badges, "bio")
	}
	badge := ""
	if len(badges) > 0 {
		badge = "  [" + strings.Join(badges, ", ") + "]"
	}

	fmt.Fprintf(w, "%2d. %s (@%s)  score %.2f%s\n", rank, p.Name, p.Handle, m.Score, badge)
	if p.Bio != "" {
		fmt.Fprintf(w, "    %s\n", truncate(p.Bio, maxBioLen))
	}
	fmt.Fprintf(w, "    shared: %s\n", sharedNames(m.Shared))
	fmt.Fprintf(w, "    https://substack.com/@%s\n", p.Handle)
	if p.PublicationURL != "" {
		fmt.Fprintf(w, "    writes: %s\n", p.PublicationURL)
	}
	fmt.Fprintln(w)
}

// sharedNames lists up to maxSharedShown shared newsletters, nichest first
// (the slice is already sorted that way).
func sharedNames(shared []person.Newsletter) string {
	names := make([]string, 0, len(shared))
	for i, n := range shared {
		if i == maxSharedShown {
			names = append(names, fmt.Sprintf("+%d more", len(shared)-maxSharedShown))
			break
		}
		names = append(names, n.Name)
	}
	return strings.Join(names, ", ")
}

// JSON writes the full result as indented JSON.
func JSON(w io.Writer, res *finder.Result) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

func truncate(s string, n int) string {
	s = strings.Join(strings.Fields(s), " ")
	if len(s) <= n {
		return s
	}
	cut := strings.LastIndex(s[:n], " ")
	if cut < n/2 {
		cut = n
	}
	return s[:cut] + "..."
}
