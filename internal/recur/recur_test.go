package recur

import (
	"testing"
	"time"

	"github.com/andrevf/planday/internal/date"
)

func d(y int, m time.Month, day int) date.Date { return date.New(y, m, day) }

func expandStrings(r Rule, from, to date.Date) []string {
	var out []string
	for _, day := range r.Expand(from, to) {
		out = append(out, day.String())
	}
	return out
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// ============================================================
// Applies
// ============================================================

func TestNoneNeverApplies(t *testing.T) {
	anchor := d(2024, time.January, 1)
	r := Rule{Anchor: anchor, Pattern: None}
	if r.Applies(anchor) {
		t.Fatal("none pattern must not apply, even on the anchor")
	}
}

func TestAnchorAlwaysApplies(t *testing.T) {
	// 2024-01-06 is a Saturday; a weekdays rule still applies there
	// because it is the anchor.
	anchor := d(2024, time.January, 6)
	r := Rule{Anchor: anchor, Pattern: Weekdays}
	if !r.Applies(anchor) {
		t.Fatal("anchor date must apply")
	}
	if r.Applies(d(2024, time.January, 7)) {
		t.Fatal("Sunday must not match weekdays")
	}
	if !r.Applies(d(2024, time.January, 8)) {
		t.Fatal("Monday must match weekdays")
	}
}

func TestNothingBeforeAnchor(t *testing.T) {
	r := Rule{Anchor: d(2024, time.January, 10), Pattern: Daily}
	if r.Applies(d(2024, time.January, 9)) {
		t.Fatal("dates before the anchor must not apply")
	}
}

func TestUntilIsInclusive(t *testing.T) {
	until := d(2024, time.January, 5)
	r := Rule{Anchor: d(2024, time.January, 1), Pattern: Daily, Until: &until}
	if !r.Applies(until) {
		t.Fatal("until date itself must apply")
	}
	if r.Applies(until.AddDays(1)) {
		t.Fatal("dates after until must not apply")
	}
}

func TestWeeklyKeepsAnchorWeekday(t *testing.T) {
	// 2024-01-01 is a Monday.
	r := Rule{Anchor: d(2024, time.January, 1), Pattern: Weekly}
	if !r.Applies(d(2024, time.January, 8)) || !r.Applies(d(2024, time.January, 15)) {
		t.Fatal("following Mondays must apply")
	}
	if r.Applies(d(2024, time.January, 9)) {
		t.Fatal("Tuesday must not apply to a Monday-anchored weekly rule")
	}
	if r.Applies(d(2024, time.January, 14)) {
		t.Fatal("Sunday must not apply to a Monday-anchored weekly rule")
	}
}

func TestMonthlySkipsShortMonths(t *testing.T) {
	r := Rule{Anchor: d(2024, time.January, 31), Pattern: Monthly}
	if r.Applies(d(2024, time.February, 29)) {
		t.Fatal("day-31 rule must not fire on Feb 29")
	}
	if !r.Applies(d(2024, time.March, 31)) {
		t.Fatal("day-31 rule must fire on Mar 31")
	}
	if r.Applies(d(2024, time.April, 30)) {
		t.Fatal("day-31 rule must not fire on Apr 30")
	}
}

func TestWeekends(t *testing.T) {
	r := Rule{Anchor: d(2024, time.January, 6), Pattern: Weekends}
	if !r.Applies(d(2024, time.January, 7)) || !r.Applies(d(2024, time.January, 13)) {
		t.Fatal("weekend days must apply")
	}
	if r.Applies(d(2024, time.January, 10)) {
		t.Fatal("Wednesday must not apply")
	}
}

func TestCustomDays(t *testing.T) {
	// Monday and Thursday.
	r := Rule{Anchor: d(2024, time.January, 1), Pattern: Custom, Days: []int{0, 3}}
	if !r.Applies(d(2024, time.January, 4)) {
		t.Fatal("Thursday must apply")
	}
	if r.Applies(d(2024, time.January, 3)) {
		t.Fatal("Wednesday must not apply")
	}
}

// ============================================================
// Expand
// ============================================================

func TestExpandDailyInclusiveBounds(t *testing.T) {
	r := Rule{Anchor: d(2024, time.March, 1), Pattern: Daily}
	got := expandStrings(r, d(2024, time.March, 1), d(2024, time.March, 5))
	want := []string{"2024-03-01", "2024-03-02", "2024-03-03", "2024-03-04", "2024-03-05"}
	if !equalStrings(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}
}

func TestExpandDeterministic(t *testing.T) {
	r := Rule{Anchor: d(2024, time.January, 1), Pattern: Weekly}
	from, to := d(2024, time.January, 1), d(2024, time.March, 31)
	first := expandStrings(r, from, to)
	second := expandStrings(r, from, to)
	if !equalStrings(first, second) {
		t.Fatal("expansion must be deterministic")
	}
	if len(first) != 13 {
		t.Fatalf("expected 13 Mondays, got %d", len(first))
	}
}

func TestExpandEmptyWhenRangePrecedesAnchor(t *testing.T) {
	r := Rule{Anchor: d(2024, time.June, 1), Pattern: Daily}
	if got := r.Expand(d(2024, time.May, 1), d(2024, time.May, 31)); len(got) != 0 {
		t.Fatalf("expected no dates, got %d", len(got))
	}
}

// ============================================================
// Parsing
// ============================================================

func TestParsePattern(t *testing.T) {
	if _, err := ParsePattern("weekly"); err != nil {
		t.Fatal(err)
	}
	if _, err := ParsePattern("fortnightly"); err == nil {
		t.Fatal("expected error for unknown pattern")
	}
}

func TestParseDays(t *testing.T) {
	days, err := ParseDays("0, 2,4")
	if err != nil {
		t.Fatal(err)
	}
	if len(days) != 3 || days[0] != 0 || days[1] != 2 || days[2] != 4 {
		t.Fatalf("unexpected days %v", days)
	}
	for _, bad := range []string{"", "7", "-1", "1,x"} {
		if _, err := ParseDays(bad); err == nil {
			t.Errorf("expected error for %q", bad)
		}
	}
}
