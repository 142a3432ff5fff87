package focus

import (
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/semistrict/iterm2focus/pkg/iterm2"
)

// sessionPrefix matches the window/tab/pane prefix of ITERM_SESSION_ID,
// e.g. "w0t1p2:".
var sessionPrefix = regexp.MustCompile(`^w\d+t\d+p\d+:`)

// FindSession returns the first session whose ID equals id, scanning windows,
// tabs and panes in order. It returns nil when there is no such session.
func FindSession(snap *iterm2.Snapshot, id string) *iterm2.Session {
	for _, s := range snap.Sessions() {
		if s.ID == id {
			return s
		}
	}
	return nil
}

// StripPrefix removes a leading "w<n>t<n>p<n>:" from id, so that both the
// value of ITERM_SESSION_ID and the bare session ID can be passed in.
func StripPrefix(id string) string {
	if loc := sessionPrefix.FindStringIndex(id); loc != nil {
		return id[loc[1]:]
	}
	return id
}

// FindByName returns the sessions whose title or profile name equals name.
// If nothing matches exactly it falls back to a case-insensitive fuzzy match.
func FindByName(snap *iterm2.Snapshot, name string) []*iterm2.Session {
	sessions := snap.Sessions()

	var exact []*iterm2.Session
	for _, s := range sessions {
		if s.Title == name || s.Name == name {
			exact = append(exact, s)
		}
	}
	if len(exact) > 0 || strings.TrimSpace(name) == "" {
		return exact
	}

	var fuzzyMatches []*iterm2.Session
	for _, s := range sessions {
		if fuzzy.MatchFold(name, s.Title) || fuzzy.MatchFold(name, s.Name) {
			fuzzyMatches = append(fuzzyMatches, s)
		}
	}
	return fuzzyMatches
}
