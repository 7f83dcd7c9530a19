package digest_test

import (
	"strings"
	"testing"
	"time"

	"github.com/dalemusser/boatfinder/internal/app/digest"
	"github.com/dalemusser/boatfinder/internal/domain/models"
)

var testNow = time.Date(2026, 2, 15, 9, 0, 0, 0, time.UTC)

func record(userID, date string, createdAgo time.Duration) models.AvailabilityRecord {
	return models.AvailabilityRecord{
		ID:        userID + "-" + date,
		UserID:    userID,
		Date:      date,
		CreatedAt: testNow.Add(-createdAgo),
	}
}

func testUsers() map[string]models.User {
	return map[string]models.User{
		"u1": {ID: "u1", FirstName: "Alice", LastName: "Chen", MaxDepth: 40},
		"u2": {ID: "u2", FirstName: "Bob", LastName: "Reed", MaxDepth: 18},
		"u3": {ID: "u3", FirstName: "Cara", LastName: "Singh", MaxDepth: 30},
		"u4": {ID: "u4", FirstName: "Dev", LastName: "Okafor", MaxDepth: 30},
	}
}

func TestCompute_ThresholdFiltering(t *testing.T) {
	records := []models.AvailabilityRecord{
		record("u1", "2026-02-20", 48*time.Hour),
		record("u2", "2026-02-20", 48*time.Hour),
		record("u3", "2026-02-20", 48*time.Hour),
		record("u1", "2026-02-21", 48*time.Hour),
		record("u2", "2026-02-21", 48*time.Hour),
	}
	operators := []digest.Operator{
		{Email: "op3@example.com", Threshold: 3},
		{Email: "op4@example.com", Threshold: 4},
	}

	out := digest.Compute(records, testUsers(), operators, testNow)

	if len(out) != 1 {
		t.Fatalf("expected 1 digest, got %d", len(out))
	}
	d := out[0]
	if d.Operator.Email != "op3@example.com" {
		t.Errorf("recipient: got %q, want op3@example.com", d.Operator.Email)
	}
	if len(d.All) != 1 {
		t.Fatalf("expected 1 qualifying date, got %d", len(d.All))
	}
	if d.All[0].Date != "2026-02-20" {
		t.Errorf("date: got %q, want 2026-02-20", d.All[0].Date)
	}
	if d.All[0].Count != 3 {
		t.Errorf("count: got %d, want 3", d.All[0].Count)
	}
}

func TestCompute_ExactThresholdQualifies(t *testing.T) {
	records := []models.AvailabilityRecord{
		record("u1", "2026-02-20", 48*time.Hour),
		record("u2", "2026-02-20", 48*time.Hour),
	}
	operators := []digest.Operator{{Email: "op@example.com", Threshold: 2}}

	out := digest.Compute(records, testUsers(), operators, testNow)
	if len(out) != 1 || len(out[0].All) != 1 {
		t.Fatalf("a date with exactly threshold divers should qualify: %+v", out)
	}
}

func TestCompute_NewTodayFlag(t *testing.T) {
	records := []models.AvailabilityRecord{
		// Fresh record, one hour old.
		record("u1", "2026-02-20", 1*time.Hour),
		record("u2", "2026-02-20", 48*time.Hour),
		// All stale, 25 hours and older.
		record("u1", "2026-02-22", 25*time.Hour),
		record("u2", "2026-02-22", 72*time.Hour),
	}
	operators := []digest.Operator{{Email: "op@example.com", Threshold: 2}}

	out := digest.Compute(records, testUsers(), operators, testNow)
	if len(out) != 1 {
		t.Fatalf("expected 1 digest, got %d", len(out))
	}
	d := out[0]
	if len(d.All) != 2 {
		t.Fatalf("expected 2 qualifying dates, got %d", len(d.All))
	}
	if len(d.NewToday) != 1 {
		t.Fatalf("expected 1 new-today date, got %d", len(d.NewToday))
	}
	if d.NewToday[0].Date != "2026-02-20" {
		t.Errorf("new-today date: got %q, want 2026-02-20", d.NewToday[0].Date)
	}
	if !d.All[0].New || d.All[1].New {
		t.Errorf("New flags wrong: %+v", d.All)
	}
}

func TestCompute_NoQualifyingDatesOmitsOperator(t *testing.T) {
	records := []models.AvailabilityRecord{
		record("u1", "2026-02-20", 48*time.Hour),
	}
	operators := []digest.Operator{{Email: "op@example.com", Threshold: 5}}

	out := digest.Compute(records, testUsers(), operators, testNow)
	if len(out) != 0 {
		t.Fatalf("operator with no qualifying dates should get no digest, got %+v", out)
	}
}

func TestCompute_DiversSortedDeepestFirst(t *testing.T) {
	records := []models.AvailabilityRecord{
		record("u2", "2026-02-20", 48*time.Hour), // 18m
		record("u1", "2026-02-20", 48*time.Hour), // 40m
		record("u4", "2026-02-20", 48*time.Hour), // 30m, Dev
		record("u3", "2026-02-20", 48*time.Hour), // 30m, Cara
	}
	operators := []digest.Operator{{Email: "op@example.com", Threshold: 1}}

	out := digest.Compute(records, testUsers(), operators, testNow)
	divers := out[0].All[0].Divers
	want := []string{"Alice Chen", "Cara Singh", "Dev Okafor", "Bob Reed"}
	if len(divers) != len(want) {
		t.Fatalf("expected %d divers, got %d", len(want), len(divers))
	}
	for i, name := range want {
		if divers[i].Name != name {
			t.Errorf("diver[%d]: got %q, want %q", i, divers[i].Name, name)
		}
	}
}

func TestCompute_DatesAscending(t *testing.T) {
	records := []models.AvailabilityRecord{
		record("u1", "2026-03-01", 48*time.Hour),
		record("u1", "2026-02-16", 48*time.Hour),
		record("u1", "2026-02-28", 48*time.Hour),
	}
	operators := []digest.Operator{{Email: "op@example.com", Threshold: 1}}

	out := digest.Compute(records, testUsers(), operators, testNow)
	got := make([]string, len(out[0].All))
	for i, s := range out[0].All {
		got[i] = s.Date
	}
	want := []string{"2026-02-16", "2026-02-28", "2026-03-01"}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("dates out of order: got %v, want %v", got, want)
		}
	}
}

func TestCompute_SkipsRecordsWithoutProfile(t *testing.T) {
	records := []models.AvailabilityRecord{
		record("u1", "2026-02-20", 48*time.Hour),
		record("ghost", "2026-02-20", 48*time.Hour),
	}
	operators := []digest.Operator{{Email: "op@example.com", Threshold: 2}}

	out := digest.Compute(records, testUsers(), operators, testNow)
	if len(out) != 0 {
		t.Fatalf("record without a profile must not count toward the threshold: %+v", out)
	}
}

func TestCompute_DuplicateRecordsCountOnce(t *testing.T) {
	records := []models.AvailabilityRecord{
		record("u1", "2026-02-20", 48*time.Hour),
		record("u1", "2026-02-20", 1*time.Hour),
	}
	operators := []digest.Operator{{Email: "op@example.com", Threshold: 2}}

	out := digest.Compute(records, testUsers(), operators, testNow)
	if len(out) != 0 {
		t.Fatalf("the same diver twice on one date is one diver: %+v", out)
	}
}

func TestWindow(t *testing.T) {
	start, end := digest.Window(testNow, 21)
	if start != "2026-02-15" {
		t.Errorf("start: got %q, want 2026-02-15", start)
	}
	if end != "2026-03-08" {
		t.Errorf("end: got %q, want 2026-03-08", end)
	}

	// Zero falls back to the default window.
	_, end = digest.Window(testNow, 0)
	if end != "2026-03-08" {
		t.Errorf("default window end: got %q, want 2026-03-08", end)
	}
}

func TestRender(t *testing.T) {
	d := digest.OperatorDigest{
		Operator: digest.Operator{Email: "op@example.com", FirstName: "Sam", Threshold: 3},
		All: []digest.DateSummary{
			{Date: "2026-02-20", Count: 3, New: true, Divers: []digest.Diver{
				{Name: "Alice Chen", MaxDepth: 40},
				{Name: "Cara Singh", MaxDepth: 30},
				{Name: "Bob Reed", MaxDepth: 18},
			}},
		},
		NewToday: []digest.DateSummary{
			{Date: "2026-02-20", Count: 3, New: true},
		},
	}

	email := digest.Render(d, "https://boatfinder.example.com")

	if email.To != "op@example.com" {
		t.Errorf("to: got %q", email.To)
	}
	if email.Subject != "Boat Finder: 1 date with 3+ divers" {
		t.Errorf("subject: got %q", email.Subject)
	}
	if !strings.Contains(email.TextBody, "Hi Sam,") {
		t.Errorf("text body missing greeting:\n%s", email.TextBody)
	}
	if !strings.Contains(email.TextBody, "Alice Chen (40m)") {
		t.Errorf("text body missing diver detail:\n%s", email.TextBody)
	}
	if !strings.Contains(email.HTMLBody, "https://boatfinder.example.com") {
		t.Errorf("html body missing calendar link")
	}
	if !strings.Contains(email.HTMLBody, "Fri, 20 Feb") {
		t.Errorf("html body missing pretty date:\n%s", email.HTMLBody)
	}
}
