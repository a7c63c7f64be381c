package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andrevf/planday/internal/date"
	"github.com/andrevf/planday/internal/export"
	"github.com/andrevf/planday/internal/store"
	"github.com/andrevf/planday/internal/tracker"
)

func (s *Server) handleGetEnergyProfile(c *gin.Context) {
	p, err := s.st.GetEnergyProfile(userID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	level, err := s.svc.CurrentEnergyLevel(userID(c), time.Now())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"profile": p, "current_level": level})
}

func (s *Server) handleUpdateEnergyProfile(c *gin.Context) {
	var req energyProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	p := &store.EnergyProfile{
		UserID:         userID(c),
		EarlyMorning:   req.EarlyMorning,
		MidMorning:     req.MidMorning,
		LateMorning:    req.LateMorning,
		EarlyAfternoon: req.EarlyAfternoon,
		LateAfternoon:  req.LateAfternoon,
		Evening:        req.Evening,
		Night:          req.Night,
		MondayMod:      req.MondayMod,
		TuesdayMod:     req.TuesdayMod,
		WednesdayMod:   req.WednesdayMod,
		ThursdayMod:    req.ThursdayMod,
		FridayMod:      req.FridayMod,
		SaturdayMod:    req.SaturdayMod,
		SundayMod:      req.SundayMod,
	}
	if err := s.st.UpsertEnergyProfile(p); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleGetPreferences(c *gin.Context) {
	p, err := s.st.GetPreferences(userID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleUpdatePreferences(c *gin.Context) {
	var req preferencesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	p := store.DefaultPreferences(userID(c))
	if req.DefaultView != "" {
		p.DefaultView = req.DefaultView
	}
	p.WeekStart = req.WeekStart
	p.WakeUpTime = req.WakeUpTime
	p.SleepTime = req.SleepTime
	p.WorkStartTime = req.WorkStartTime
	p.WorkEndTime = req.WorkEndTime
	p.BreakStartTime = req.BreakStartTime
	p.BreakEndTime = req.BreakEndTime
	if req.Theme != "" {
		p.Theme = req.Theme
	}
	p.ReminderBeforeMinutes = req.ReminderBeforeMinutes
	if err := s.st.UpsertPreferences(p); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (s *Server) handleTaskReport(c *gin.Context) {
	from, err := date.Parse(c.Query("from"))
	if err != nil {
		s.badRequest(c, err)
		return
	}
	to, err := date.Parse(c.Query("to"))
	if err != nil {
		s.badRequest(c, err)
		return
	}
	rep, err := s.rep.TaskReport(userID(c), from, to)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (s *Server) handleGoalReport(c *gin.Context) {
	rep, err := s.rep.GoalReport(userID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rep)
}

func (s *Server) handleDashboard(c *gin.Context) {
	d, err := s.rep.Dashboard(userID(c), time.Now())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

func (s *Server) handleExport(c *gin.Context) {
	from, err := date.Parse(c.Query("from"))
	if err != nil {
		s.badRequest(c, err)
		return
	}
	to, err := date.Parse(c.Query("to"))
	if err != nil {
		s.badRequest(c, err)
		return
	}
	items, err := s.svc.Range(userID(c), from, to)
	if err != nil {
		s.writeError(c, err)
		return
	}
	cats, err := s.st.ListCategories()
	if err != nil {
		s.writeError(c, err)
		return
	}
	byID := make(map[int64]*store.Category, len(cats))
	for i := range cats {
		byID[cats[i].ID] = &cats[i]
	}

	name := fmt.Sprintf("planday_%s_%s", from, to)
	switch c.DefaultQuery("format", "json") {
	case "csv":
		c.Header("Content-Disposition", `attachment; filename="`+name+`.csv"`)
		c.Header("Content-Type", "text/csv")
		if err := export.ToCSV(c.Writer, items, byID); err != nil {
			s.log.Error("csv export failed", "error", err)
		}
	case "json":
		c.Header("Content-Disposition", `attachment; filename="`+name+`.json"`)
		c.Header("Content-Type", "application/json")
		if err := export.ToJSON(c.Writer, items, byID); err != nil {
			s.log.Error("json export failed", "error", err)
		}
	default:
		s.writeError(c, tracker.Errorf(tracker.CodeValidation, "unknown export format %q", c.Query("format")))
	}
}
