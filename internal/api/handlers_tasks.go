package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/andrevf/planday/internal/date"
	"github.com/andrevf/planday/internal/store"
	"github.com/andrevf/planday/internal/tracker"
)

func pathID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (s *Server) handleCreateTask(c *gin.Context) {
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	t, err := s.svc.CreateTask(userID(c), req.toInput())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, t)
}

func (s *Server) handleListTasks(c *gin.Context) {
	f := store.TaskFilter{UserID: userID(c)}

	if v := c.Query("from"); v != "" {
		d, err := date.Parse(v)
		if err != nil {
			s.badRequest(c, err)
			return
		}
		f.From = &d
	}
	if v := c.Query("to"); v != "" {
		d, err := date.Parse(v)
		if err != nil {
			s.badRequest(c, err)
			return
		}
		f.To = &d
	}
	if v := c.Query("category_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.badRequest(c, err)
			return
		}
		f.CategoryID = &id
	}
	if v := c.Query("goal_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			s.badRequest(c, err)
			return
		}
		f.GoalID = &id
	}
	if v := c.Query("status"); v != "" {
		st, err := store.ParseStatus(v)
		if err != nil {
			s.badRequest(c, err)
			return
		}
		f.Status = &st
	}
	if v := c.Query("recurring"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			s.badRequest(c, err)
			return
		}
		f.Recurring = &b
	}

	tasks, err := s.st.ListTasks(f)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"tasks": tasks, "count": len(tasks)})
}

func (s *Server) handleGetTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.writeError(c, tracker.Errorf(tracker.CodeValidation, "invalid task id"))
		return
	}
	t, err := s.st.GetTask(userID(c), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleUpdateTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.writeError(c, tracker.Errorf(tracker.CodeValidation, "invalid task id"))
		return
	}
	var req taskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	t, err := s.svc.UpdateTask(userID(c), id, req.toInput())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleDeleteTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.writeError(c, tracker.Errorf(tracker.CodeValidation, "invalid task id"))
		return
	}
	if err := s.svc.DeleteTask(userID(c), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleSetStatus(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.writeError(c, tracker.Errorf(tracker.CodeValidation, "invalid task id"))
		return
	}
	var req statusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	res, err := s.svc.SetStatus(userID(c), id, tracker.StatusChange{
		Status:      store.Status(req.Status),
		ActualValue: req.ActualValue,
		Notes:       req.Notes,
		Date:        req.Date,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleCompleteTask(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.writeError(c, tracker.Errorf(tracker.CodeValidation, "invalid task id"))
		return
	}
	var req completeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	res, err := s.svc.SetStatus(userID(c), id, tracker.StatusChange{
		Status:      store.StatusCompleted,
		ActualValue: req.ActualValue,
		Notes:       req.Notes,
		Date:        req.Date,
	})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (s *Server) handleEditRecurring(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.writeError(c, tracker.Errorf(tracker.CodeValidation, "invalid task id"))
		return
	}
	var req seriesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	mode, err := tracker.ParseSeriesMode(req.Mode)
	if err != nil {
		s.writeError(c, err)
		return
	}
	t, err := s.svc.EditRecurring(userID(c), id, mode, req.Date, req.toPatch())
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, t)
}

func (s *Server) handleDeleteRecurring(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.writeError(c, tracker.Errorf(tracker.CodeValidation, "invalid task id"))
		return
	}
	// The default touches one day, never the whole series; deleting
	// everything takes an explicit mode=all.
	mode, err := tracker.ParseSeriesMode(c.DefaultQuery("mode", string(tracker.OnlyThis)))
	if err != nil {
		s.writeError(c, err)
		return
	}
	var d *date.Date
	if v := c.Query("date"); v != "" {
		parsed, err := date.Parse(v)
		if err != nil {
			s.badRequest(c, err)
			return
		}
		d = &parsed
	}
	if err := s.svc.DeleteRecurring(userID(c), id, mode, d); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGetOccurrence(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.writeError(c, tracker.Errorf(tracker.CodeValidation, "invalid task id"))
		return
	}
	d, err := date.Parse(c.Param("date"))
	if err != nil {
		s.badRequest(c, err)
		return
	}
	item, err := s.svc.OccurrenceFor(userID(c), id, d)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, item)
}

func (s *Server) handleDay(c *gin.Context) {
	d := date.Today()
	if v := c.Query("date"); v != "" {
		parsed, err := date.Parse(v)
		if err != nil {
			s.badRequest(c, err)
			return
		}
		d = parsed
	}
	items, err := s.svc.Day(userID(c), d)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"date": d, "items": items, "count": len(items)})
}

func (s *Server) handleRange(c *gin.Context) {
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
	c.JSON(http.StatusOK, gin.H{"from": from, "to": to, "items": items, "count": len(items)})
}

func (s *Server) handleMonth(c *gin.Context) {
	now := time.Now()
	year, month := now.Year(), int(now.Month())
	if v := c.Query("year"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.badRequest(c, err)
			return
		}
		year = n
	}
	if v := c.Query("month"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.badRequest(c, err)
			return
		}
		month = n
	}
	items, err := s.svc.Month(userID(c), year, month)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"year": year, "month": month, "items": items, "count": len(items)})
}

func (s *Server) handleRecommendations(c *gin.Context) {
	limit := 0
	if v := c.Query("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			s.badRequest(c, err)
			return
		}
		limit = n
	}
	recs, err := s.svc.Recommendations(userID(c), time.Now(), limit)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"recommendations": recs, "count": len(recs)})
}
