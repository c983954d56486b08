package services

import (
	"fmt"
	"strings"
	"time"
)

// Direction selects which side of the conversation a query counts.
type Direction int

const (
	DirectionEither Direction = iota
	DirectionSent
	DirectionReceived
)

// DefaultKeywords is the built-in vocabulary used when the caller
// supplies no keyword override.
var DefaultKeywords = []string{
	"workshop", "student", "class", "course", "assignment",
	"homework", "project", "lesson", "session", "training",
	"enrollment", "registration", "question", "help", "support",
}

// TimeWindow is a half-open interval [Start, End).
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// LastDays returns the window covering the past n days ending at now.
func LastDays(now time.Time, n int) TimeWindow {
	return TimeWindow{Start: now.AddDate(0, 0, -n), End: now}
}

// Prior returns the equal-length window immediately preceding w.
func (w TimeWindow) Prior() TimeWindow {
	return TimeWindow{Start: w.Start.Add(-w.End.Sub(w.Start)), End: w.Start}
}

// Day returns the window covering the calendar day of t.
func Day(t time.Time) TimeWindow {
	start := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return TimeWindow{Start: start, End: start.AddDate(0, 0, 1)}
}

// QuerySpec describes one provider search. Immutable once built;
// Compose is deterministic so the prior-period query is derived by
// shifting only the window.
type QuerySpec struct {
	Window    TimeWindow
	Direction Direction
	Domains   []string
	Keywords  []string
}

// Compose builds the Gmail search string:
//
//	after:<unix> before:<unix> (<domain-clause> OR (<keyword-clause>)) <direction>
//
// Domains are matched on both sides (from: OR to:); keywords are quoted
// and OR-joined, falling back to DefaultKeywords when empty. The domain
// clause is always unioned with the keyword clause, never intersected.
func Compose(w TimeWindow, dir Direction, domains, keywords []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "after:%d before:%d", w.Start.Unix(), w.End.Unix())

	if len(keywords) == 0 {
		keywords = DefaultKeywords
	}
	quoted := make([]string, len(keywords))
	for i, kw := range keywords {
		quoted[i] = `"` + kw + `"`
	}
	keywordClause := strings.Join(quoted, " OR ")

	if len(domains) > 0 {
		domainParts := make([]string, 0, len(domains)*2)
		for _, d := range domains {
			domainParts = append(domainParts, "from:"+d, "to:"+d)
		}
		fmt.Fprintf(&b, " (%s OR (%s))", strings.Join(domainParts, " OR "), keywordClause)
	} else {
		fmt.Fprintf(&b, " (%s)", keywordClause)
	}

	switch dir {
	case DirectionSent:
		b.WriteString(" in:sent")
	case DirectionReceived:
		b.WriteString(" -in:sent")
	}
	return b.String()
}

// String renders q as a provider query string.
func (q QuerySpec) String() string {
	return Compose(q.Window, q.Direction, q.Domains, q.Keywords)
}
