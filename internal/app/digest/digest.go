// Package digest builds the daily operator notification: which
// upcoming dates have enough available divers to be worth a boat trip.
//
// The computation is a single pass over a rolling three-week window of
// availability records, grouped by date and compared against each
// operator's threshold. Dates whose records include one created in the
// last 24 hours are additionally flagged "new today" so the email can
// highlight freshly crossed thresholds without sending a separate
// notification.
package digest

import (
	"sort"
	"time"

	"github.com/dalemusser/boatfinder/internal/domain/models"
)

// DefaultWindowDays is the forward-looking window: today plus three
// weeks, inclusive.
const DefaultWindowDays = 21

// newWithin is the lookback for the "new today" flag.
const newWithin = 24 * time.Hour

// Diver is the per-person detail shown in the email.
type Diver struct {
	Name     string
	MaxDepth int
}

// DateSummary is one qualifying date with its diver roster.
type DateSummary struct {
	Date   string // YYYY-MM-DD
	Count  int    // distinct available divers
	New    bool   // some record created within the last 24h
	Divers []Diver
}

// Operator is a notification recipient with their threshold. The
// on-demand test trigger builds a synthetic one; the scheduled run
// loads them from the user collection.
type Operator struct {
	Email     string
	FirstName string
	Threshold int
}

// OperatorDigest is everything needed to render one operator's email.
type OperatorDigest struct {
	Operator Operator
	NewToday []DateSummary // qualifying dates flagged new, ascending
	All      []DateSummary // every qualifying date, ascending
}

// Compute derives per-operator digests from the availability records in
// the window. users maps user id to profile; records with no matching
// profile are skipped entirely, since a diver who cannot be named or
// contacted should not count toward a trip.
//
// Operators whose qualifying set is empty are omitted: no email.
func Compute(records []models.AvailabilityRecord, users map[string]models.User, operators []Operator, now time.Time) []OperatorDigest {
	cutoff := now.Add(-newWithin)

	type group struct {
		userIDs map[string]struct{}
		isNew   bool
	}
	byDate := make(map[string]*group)
	for _, rec := range records {
		if _, ok := users[rec.UserID]; !ok {
			continue
		}
		g := byDate[rec.Date]
		if g == nil {
			g = &group{userIDs: make(map[string]struct{})}
			byDate[rec.Date] = g
		}
		g.userIDs[rec.UserID] = struct{}{}
		if !rec.CreatedAt.Before(cutoff) {
			g.isNew = true
		}
	}

	summaries := make([]DateSummary, 0, len(byDate))
	for date, g := range byDate {
		divers := make([]Diver, 0, len(g.userIDs))
		for id := range g.userIDs {
			u := users[id]
			divers = append(divers, Diver{Name: u.FullName(), MaxDepth: u.MaxDepth})
		}
		// Deepest-certified divers first; ties by name for stable output.
		sort.Slice(divers, func(i, j int) bool {
			if divers[i].MaxDepth != divers[j].MaxDepth {
				return divers[i].MaxDepth > divers[j].MaxDepth
			}
			return divers[i].Name < divers[j].Name
		})
		summaries = append(summaries, DateSummary{
			Date:   date,
			Count:  len(g.userIDs),
			New:    g.isNew,
			Divers: divers,
		})
	}
	// ISO dates order lexicographically.
	sort.Slice(summaries, func(i, j int) bool { return summaries[i].Date < summaries[j].Date })

	var out []OperatorDigest
	for _, op := range operators {
		var d OperatorDigest
		d.Operator = op
		for _, s := range summaries {
			if s.Count < op.Threshold {
				continue
			}
			d.All = append(d.All, s)
			if s.New {
				d.NewToday = append(d.NewToday, s)
			}
		}
		if len(d.All) == 0 {
			continue
		}
		out = append(out, d)
	}
	return out
}

// Window returns the inclusive [start, end] date strings for a run
// starting at now.
func Window(now time.Time, days int) (start, end string) {
	if days <= 0 {
		days = DefaultWindowDays
	}
	return now.Format("2006-01-02"), now.AddDate(0, 0, days).Format("2006-01-02")
}
