// Package api exposes the tracker over HTTP. Every route under /api/v1
// is scoped to the user identified by the X-User-ID header; the handlers
// translate domain error codes to HTTP statuses and never leak internal
// error text on 500s.
package api

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/andrevf/planday/internal/report"
	"github.com/andrevf/planday/internal/store"
	"github.com/andrevf/planday/internal/tracker"
)

type Server struct {
	svc *tracker.Service
	rep *report.Reporter
	st  *store.Store
	log *slog.Logger
}

func NewServer(svc *tracker.Service, rep *report.Reporter, log *slog.Logger) *Server {
	if log == nil {
		log = slog.Default()
	}
	return &Server{svc: svc, rep: rep, st: svc.Store(), log: log}
}

// Router builds the gin engine with middleware, validators and all
// routes registered.
func (s *Server) Router() *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(gin.Recovery(), requestID(), requestLogger(s.log))

	r.GET("/health", s.handleHealth)

	v1 := r.Group("/api/v1")
	v1.Use(requireUser())
	{
		v1.POST("/tasks", s.handleCreateTask)
		v1.GET("/tasks", s.handleListTasks)
		v1.GET("/tasks/:id", s.handleGetTask)
		v1.PUT("/tasks/:id", s.handleUpdateTask)
		v1.DELETE("/tasks/:id", s.handleDeleteTask)
		v1.POST("/tasks/:id/status", s.handleSetStatus)
		v1.POST("/tasks/:id/complete", s.handleCompleteTask)
		v1.PUT("/tasks/:id/recurring", s.handleEditRecurring)
		v1.DELETE("/tasks/:id/recurring", s.handleDeleteRecurring)
		v1.GET("/tasks/:id/occurrences/:date", s.handleGetOccurrence)

		v1.GET("/schedule/day", s.handleDay)
		v1.GET("/schedule/range", s.handleRange)
		v1.GET("/schedule/month", s.handleMonth)

		v1.POST("/goals", s.handleCreateGoal)
		v1.GET("/goals", s.handleListGoals)
		v1.GET("/goals/:id", s.handleGetGoal)
		v1.PUT("/goals/:id", s.handleUpdateGoal)
		v1.DELETE("/goals/:id", s.handleDeleteGoal)
		v1.POST("/goals/:id/value", s.handleSetGoalValue)
		v1.GET("/goals/:id/tasks", s.handleGoalTasks)

		v1.POST("/categories", s.handleCreateCategory)
		v1.GET("/categories", s.handleListCategories)
		v1.GET("/categories/:id", s.handleGetCategory)
		v1.PUT("/categories/:id", s.handleUpdateCategory)
		v1.DELETE("/categories/:id", s.handleDeleteCategory)

		v1.GET("/energy/profile", s.handleGetEnergyProfile)
		v1.PUT("/energy/profile", s.handleUpdateEnergyProfile)
		v1.GET("/energy/recommendations", s.handleRecommendations)

		v1.GET("/preferences", s.handleGetPreferences)
		v1.PUT("/preferences", s.handleUpdatePreferences)

		v1.GET("/reports/tasks", s.handleTaskReport)
		v1.GET("/reports/goals", s.handleGoalReport)
		v1.GET("/dashboard", s.handleDashboard)

		v1.GET("/export", s.handleExport)
	}
	return r
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
