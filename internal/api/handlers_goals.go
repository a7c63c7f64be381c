package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andrevf/planday/internal/store"
	"github.com/andrevf/planday/internal/tracker"
)

func (s *Server) handleCreateGoal(c *gin.Context) {
	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if req.EndDate.Before(req.StartDate) {
		s.writeError(c, tracker.Errorf(tracker.CodeValidation, "end_date %s is before start_date %s", req.EndDate, req.StartDate))
		return
	}
	if _, err := s.st.GetCategory(req.CategoryID); err != nil {
		s.writeError(c, tracker.Errorf(tracker.CodeNotFound, "category %d not found", req.CategoryID))
		return
	}

	g := &store.Goal{
		UserID:          userID(c),
		Title:           req.Title,
		Description:     req.Description,
		CategoryID:      req.CategoryID,
		Period:          req.Period,
		StartDate:       req.StartDate,
		EndDate:         req.EndDate,
		TargetValue:     req.TargetValue,
		MeasurementUnit: req.MeasurementUnit,
		CustomUnit:      req.CustomUnit,
	}
	if err := s.st.CreateGoal(g); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

func (s *Server) handleListGoals(c *gin.Context) {
	goals, err := s.st.ListGoals(userID(c))
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goals": goals, "count": len(goals)})
}

func (s *Server) handleGetGoal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.writeError(c, tracker.Errorf(tracker.CodeValidation, "invalid goal id"))
		return
	}
	g, err := s.st.GetGoal(userID(c), id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// handleUpdateGoal replaces the goal's declared fields. current_value is
// owned by the ledger and survives the update; progress is recomputed
// against the possibly changed target.
func (s *Server) handleUpdateGoal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.writeError(c, tracker.Errorf(tracker.CodeValidation, "invalid goal id"))
		return
	}
	var req goalRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	if req.EndDate.Before(req.StartDate) {
		s.writeError(c, tracker.Errorf(tracker.CodeValidation, "end_date %s is before start_date %s", req.EndDate, req.StartDate))
		return
	}

	uid := userID(c)
	g, err := s.st.GetGoal(uid, id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	g.Title = req.Title
	g.Description = req.Description
	g.CategoryID = req.CategoryID
	g.Period = req.Period
	g.StartDate = req.StartDate
	g.EndDate = req.EndDate
	g.TargetValue = req.TargetValue
	g.MeasurementUnit = req.MeasurementUnit
	g.CustomUnit = req.CustomUnit
	if err := s.st.UpdateGoal(g); err != nil {
		s.writeError(c, err)
		return
	}

	g, err = s.svc.SetGoalValue(uid, id, g.CurrentValue)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (s *Server) handleDeleteGoal(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.writeError(c, tracker.Errorf(tracker.CodeValidation, "invalid goal id"))
		return
	}
	if err := s.st.DeleteGoal(userID(c), id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleGoalTasks(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.writeError(c, tracker.Errorf(tracker.CodeValidation, "invalid goal id"))
		return
	}
	uid := userID(c)
	g, err := s.st.GetGoal(uid, id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	tasks, err := s.st.ListTasks(store.TaskFilter{UserID: uid, GoalID: &g.ID})
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"goal": g, "tasks": tasks, "count": len(tasks)})
}

func (s *Server) handleSetGoalValue(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.writeError(c, tracker.Errorf(tracker.CodeValidation, "invalid goal id"))
		return
	}
	var req goalValueRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	g, err := s.svc.SetGoalValue(userID(c), id, req.Value)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (s *Server) handleCreateCategory(c *gin.Context) {
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	cat := &store.Category{
		Name:        req.Name,
		Icon:        req.Icon,
		Color:       req.Color,
		Description: req.Description,
	}
	if err := s.st.CreateCategory(cat); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, cat)
}

func (s *Server) handleListCategories(c *gin.Context) {
	cats, err := s.st.ListCategories()
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": cats, "count": len(cats)})
}

func (s *Server) handleGetCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.writeError(c, tracker.Errorf(tracker.CodeValidation, "invalid category id"))
		return
	}
	cat, err := s.st.GetCategory(id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (s *Server) handleUpdateCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.writeError(c, tracker.Errorf(tracker.CodeValidation, "invalid category id"))
		return
	}
	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.badRequest(c, err)
		return
	}
	cat, err := s.st.GetCategory(id)
	if err != nil {
		s.writeError(c, err)
		return
	}
	cat.Name = req.Name
	cat.Icon = req.Icon
	cat.Color = req.Color
	cat.Description = req.Description
	if err := s.st.UpdateCategory(cat); err != nil {
		s.writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cat)
}

func (s *Server) handleDeleteCategory(c *gin.Context) {
	id, ok := pathID(c)
	if !ok {
		s.writeError(c, tracker.Errorf(tracker.CodeValidation, "invalid category id"))
		return
	}
	if err := s.st.DeleteCategory(id); err != nil {
		s.writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
