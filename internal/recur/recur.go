// Package recur implements the recurrence rule for repeating tasks.
// Every date-range expansion in the system goes through Rule.Applies;
// nothing else re-derives pattern matching.
package recur

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/andrevf/planday/internal/date"
)

// Pattern identifies how a task repeats.
type Pattern string

const (
	None     Pattern = "none"
	Daily    Pattern = "daily"
	Weekdays Pattern = "weekdays"
	Weekends Pattern = "weekends"
	Weekly   Pattern = "weekly"
	Monthly  Pattern = "monthly"
	Custom   Pattern = "custom"
)

// ParsePattern validates a pattern string.
func ParsePattern(s string) (Pattern, error) {
	switch p := Pattern(s); p {
	case None, Daily, Weekdays, Weekends, Weekly, Monthly, Custom:
		return p, nil
	default:
		return "", fmt.Errorf("unknown repeat pattern %q", s)
	}
}

// ParseDays parses a comma-separated weekday list like "0,2,4"
// (0=Monday .. 6=Sunday) into a sorted-free set slice.
func ParseDays(s string) ([]int, error) {
	if strings.TrimSpace(s) == "" {
		return nil, fmt.Errorf("empty repeat day list")
	}
	var days []int
	for _, part := range strings.Split(s, ",") {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil {
			return nil, fmt.Errorf("invalid repeat day %q", part)
		}
		if n < 0 || n > 6 {
			return nil, fmt.Errorf("repeat day %d out of range 0-6", n)
		}
		days = append(days, n)
	}
	return days, nil
}

// Rule is the recurrence rule of a template task.
type Rule struct {
	Anchor  date.Date  // the task's own date; always an applying date
	Pattern Pattern
	Days    []int      // custom pattern weekdays, 0=Monday
	Until   *date.Date // inclusive end of the recurrence, nil = open
}

// Applies reports whether the rule produces an occurrence on d.
// None never applies: non-recurring tasks are matched by exact date
// equality, not by this rule.
func (r Rule) Applies(d date.Date) bool {
	if r.Pattern == None {
		return false
	}
	if d.Before(r.Anchor) {
		return false
	}
	if r.Until != nil && d.After(*r.Until) {
		return false
	}
	if d.Equal(r.Anchor) {
		return true
	}

	wd := d.Weekday()
	switch r.Pattern {
	case Daily:
		return true
	case Weekdays:
		return wd < 5
	case Weekends:
		return wd >= 5
	case Weekly:
		return wd == r.Anchor.Weekday() && d.DaysSince(r.Anchor)%7 == 0
	case Monthly:
		return d.Day() == r.Anchor.Day()
	case Custom:
		for _, day := range r.Days {
			if day == wd {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Expand returns every date in [from, to] (inclusive) on which the rule
// applies, in ascending order.
func (r Rule) Expand(from, to date.Date) []date.Date {
	var dates []date.Date
	for d := from; !d.After(to); d = d.AddDays(1) {
		if r.Applies(d) {
			dates = append(dates, d)
		}
	}
	return dates
}
