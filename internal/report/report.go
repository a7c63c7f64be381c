// Package report aggregates tasks and goals into summary views. All
// figures are derived from the merged schedule, so virtual projections
// of recurring tasks count as pending work and skipped dates are
// excluded entirely.
package report

import (
	"log/slog"
	"math"
	"time"

	"github.com/andrevf/planday/internal/date"
	"github.com/andrevf/planday/internal/store"
	"github.com/andrevf/planday/internal/tracker"
)

type Reporter struct {
	svc *tracker.Service
	log *slog.Logger
}

func New(svc *tracker.Service, log *slog.Logger) *Reporter {
	if log == nil {
		log = slog.Default()
	}
	return &Reporter{svc: svc, log: log}
}

// TaskReport summarizes the schedule over a date range.
type TaskReport struct {
	From           date.Date        `json:"from"`
	To             date.Date        `json:"to"`
	Total          int              `json:"total"`
	Completed      int              `json:"completed"`
	CompletionRate float64          `json:"completion_rate"`
	ByStatus       map[string]int   `json:"by_status"`
	ByCategory     map[string]int   `json:"by_category"`
	ByDay          []DayCount       `json:"by_day"`
	MinutesPlanned int              `json:"minutes_planned"`
	MinutesDone    int              `json:"minutes_done"`
}

// DayCount is one day's slice of a task report.
type DayCount struct {
	Date      date.Date `json:"date"`
	Total     int       `json:"total"`
	Completed int       `json:"completed"`
}

func (r *Reporter) TaskReport(userID int64, from, to date.Date) (*TaskReport, error) {
	items, err := r.svc.Range(userID, from, to)
	if err != nil {
		return nil, err
	}
	categories, err := r.categoryNames()
	if err != nil {
		return nil, err
	}

	rep := &TaskReport{
		From:       from,
		To:         to,
		ByStatus:   make(map[string]int),
		ByCategory: make(map[string]int),
	}
	days := make(map[date.Date]*DayCount)
	for _, it := range items {
		rep.Total++
		rep.ByStatus[string(it.Status)]++
		rep.ByCategory[categories[it.Task.CategoryID]]++
		rep.MinutesPlanned += it.Task.DurationMinutes

		dc := days[it.Date]
		if dc == nil {
			dc = &DayCount{Date: it.Date}
			days[it.Date] = dc
		}
		dc.Total++
		if it.Status == store.StatusCompleted {
			rep.Completed++
			rep.MinutesDone += it.Task.DurationMinutes
			dc.Completed++
		}
	}
	for d := from; !d.After(to); d = d.AddDays(1) {
		if dc := days[d]; dc != nil {
			rep.ByDay = append(rep.ByDay, *dc)
		}
	}
	rep.CompletionRate = rate(rep.Completed, rep.Total)
	return rep, nil
}

// GoalReport summarizes a user's goals.
type GoalReport struct {
	Total       int                    `json:"total"`
	Completed   int                    `json:"completed"`
	AvgProgress float64                `json:"avg_progress"`
	ByCategory  map[string]GoalSummary `json:"by_category"`
	ByPeriod    map[string]GoalSummary `json:"by_period"`
}

// GoalSummary is a grouped slice of a goal report.
type GoalSummary struct {
	Total       int     `json:"total"`
	Completed   int     `json:"completed"`
	AvgProgress float64 `json:"avg_progress"`
}

func (r *Reporter) GoalReport(userID int64) (*GoalReport, error) {
	goals, err := r.svc.Store().ListGoals(userID)
	if err != nil {
		return nil, err
	}
	categories, err := r.categoryNames()
	if err != nil {
		return nil, err
	}

	rep := &GoalReport{
		ByCategory: make(map[string]GoalSummary),
		ByPeriod:   make(map[string]GoalSummary),
	}
	var sum float64
	catSums := make(map[string]float64)
	periodSums := make(map[string]float64)
	for i := range goals {
		g := &goals[i]
		rep.Total++
		sum += g.ProgressPercentage
		if g.IsCompleted {
			rep.Completed++
		}

		cat := categories[g.CategoryID]
		cs := rep.ByCategory[cat]
		cs.Total++
		if g.IsCompleted {
			cs.Completed++
		}
		catSums[cat] += g.ProgressPercentage
		rep.ByCategory[cat] = cs

		ps := rep.ByPeriod[g.Period]
		ps.Total++
		if g.IsCompleted {
			ps.Completed++
		}
		periodSums[g.Period] += g.ProgressPercentage
		rep.ByPeriod[g.Period] = ps
	}
	if rep.Total > 0 {
		rep.AvgProgress = round2(sum / float64(rep.Total))
	}
	for cat, cs := range rep.ByCategory {
		cs.AvgProgress = round2(catSums[cat] / float64(cs.Total))
		rep.ByCategory[cat] = cs
	}
	for period, ps := range rep.ByPeriod {
		ps.AvgProgress = round2(periodSums[period] / float64(ps.Total))
		rep.ByPeriod[period] = ps
	}
	return rep, nil
}

// Dashboard is the combined landing view: today, the current week,
// goal standing and a 30-day completion trend.
type Dashboard struct {
	Today DashboardDay   `json:"today"`
	Week  DashboardWeek  `json:"week"`
	Goals DashboardGoals `json:"goals"`
	Trend []DayCount     `json:"trend"`
}

type DashboardDay struct {
	Date           date.Date `json:"date"`
	Total          int       `json:"total"`
	Completed      int       `json:"completed"`
	Pending        int       `json:"pending"`
	CompletionRate float64   `json:"completion_rate"`
}

type DashboardWeek struct {
	From           date.Date `json:"from"`
	To             date.Date `json:"to"`
	Total          int       `json:"total"`
	Completed      int       `json:"completed"`
	CompletionRate float64   `json:"completion_rate"`
}

type DashboardGoals struct {
	Total           int          `json:"total"`
	Completed       int          `json:"completed"`
	AvgProgress     float64      `json:"avg_progress"`
	CloseToDeadline []store.Goal `json:"close_to_deadline"`
}

func (r *Reporter) Dashboard(userID int64, now time.Time) (*Dashboard, error) {
	today := date.New(now.Year(), now.Month(), now.Day())
	weekStart := today.AddDays(-today.Weekday())
	weekEnd := weekStart.AddDays(6)

	todayItems, err := r.svc.Day(userID, today)
	if err != nil {
		return nil, err
	}
	weekItems, err := r.svc.Range(userID, weekStart, weekEnd)
	if err != nil {
		return nil, err
	}
	goals, err := r.svc.Store().ListGoals(userID)
	if err != nil {
		return nil, err
	}
	trendItems, err := r.svc.Range(userID, today.AddDays(-29), today)
	if err != nil {
		return nil, err
	}

	d := &Dashboard{}
	d.Today.Date = today
	for _, it := range todayItems {
		d.Today.Total++
		switch it.Status {
		case store.StatusCompleted:
			d.Today.Completed++
		case store.StatusPending, store.StatusInProgress:
			d.Today.Pending++
		}
	}
	d.Today.CompletionRate = rate(d.Today.Completed, d.Today.Total)

	d.Week.From = weekStart
	d.Week.To = weekEnd
	for _, it := range weekItems {
		d.Week.Total++
		if it.Status == store.StatusCompleted {
			d.Week.Completed++
		}
	}
	d.Week.CompletionRate = rate(d.Week.Completed, d.Week.Total)

	var sum float64
	for i := range goals {
		g := &goals[i]
		d.Goals.Total++
		sum += g.ProgressPercentage
		if g.IsCompleted {
			d.Goals.Completed++
			continue
		}
		daysLeft := g.EndDate.DaysSince(today)
		if daysLeft >= 0 && daysLeft <= 7 {
			d.Goals.CloseToDeadline = append(d.Goals.CloseToDeadline, *g)
		}
	}
	if d.Goals.Total > 0 {
		d.Goals.AvgProgress = round2(sum / float64(d.Goals.Total))
	}

	trend := make(map[date.Date]*DayCount)
	for _, it := range trendItems {
		dc := trend[it.Date]
		if dc == nil {
			dc = &DayCount{Date: it.Date}
			trend[it.Date] = dc
		}
		dc.Total++
		if it.Status == store.StatusCompleted {
			dc.Completed++
		}
	}
	for day := today.AddDays(-29); !day.After(today); day = day.AddDays(1) {
		dc := trend[day]
		if dc == nil {
			dc = &DayCount{Date: day}
		}
		d.Trend = append(d.Trend, *dc)
	}
	return d, nil
}

func (r *Reporter) categoryNames() (map[int64]string, error) {
	cats, err := r.svc.Store().ListCategories()
	if err != nil {
		return nil, err
	}
	names := make(map[int64]string, len(cats))
	for _, c := range cats {
		names[c.ID] = c.Name
	}
	return names, nil
}

func rate(completed, total int) float64 {
	if total == 0 {
		return 0
	}
	return round2(float64(completed) / float64(total) * 100)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
