package api

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/andrevf/planday/internal/tracker"
)

const (
	headerRequestID = "X-Request-ID"
	headerUserID    = "X-User-ID"
	ctxUserID       = "user_id"
	ctxRequestID    = "request_id"
)

// requestID propagates the caller's X-Request-ID or mints one.
func requestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerRequestID)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(ctxRequestID, id)
		c.Header(headerRequestID, id)
		c.Next()
	}
}

// requestLogger logs one line per request with latency and status.
func requestLogger(log *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		log.Info("request",
			"request_id", c.GetString(ctxRequestID),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"duration", time.Since(start),
		)
	}
}

// requireUser resolves the acting user from the X-User-ID header.
func requireUser() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := c.GetHeader(headerUserID)
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || id <= 0 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": gin.H{"code": "UNAUTHORIZED", "message": "missing or invalid " + headerUserID + " header"},
			})
			return
		}
		c.Set(ctxUserID, id)
		c.Next()
	}
}

func userID(c *gin.Context) int64 {
	return c.GetInt64(ctxUserID)
}

// writeError maps domain error codes to HTTP statuses. Internal errors
// are logged and returned without their message.
func (s *Server) writeError(c *gin.Context, err error) {
	code := tracker.CodeOf(err)
	status := http.StatusInternalServerError
	switch code {
	case tracker.CodeValidation:
		status = http.StatusBadRequest
	case tracker.CodeNotFound:
		status = http.StatusNotFound
	case tracker.CodeConflict:
		status = http.StatusConflict
	}

	if status == http.StatusInternalServerError {
		s.log.Error("request failed",
			"request_id", c.GetString(ctxRequestID),
			"path", c.Request.URL.Path,
			"error", err,
		)
		c.JSON(status, gin.H{"error": gin.H{"code": code, "message": "internal error"}})
		return
	}

	payload := gin.H{"code": code, "message": err.Error()}
	var de *tracker.Error
	if errors.As(err, &de) && de.Details != nil {
		payload["details"] = de.Details
	}
	c.JSON(status, gin.H{"error": payload})
}

// badRequest reports a malformed request body or parameter.
func (s *Server) badRequest(c *gin.Context, err error) {
	s.writeError(c, tracker.Errorf(tracker.CodeValidation, "%v", err))
}
