package web

import (
	"errors"
	"net/http"
	"net/url"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/smith3v/sentence-trainer/pkg/accounts"
	"github.com/smith3v/sentence-trainer/pkg/db"
	"github.com/smith3v/sentence-trainer/pkg/logger"
	"github.com/smith3v/sentence-trainer/pkg/metrics"
)

const (
	requestIDHeader = "X-Request-ID"
	studentKey      = "student"
	requestIDKey    = "request_id"
)

func requestID(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		id := c.Request().Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Response().Header().Set(requestIDHeader, id)
		return next(c)
	}
}

func requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		started := time.Now()
		err := next(c)
		status := responseStatus(c, err)
		args := []any{
			"method", c.Request().Method,
			"path", c.Request().URL.Path,
			"status", status,
			"latency_ms", time.Since(started).Milliseconds(),
			"request_id", c.Get(requestIDKey),
		}
		if status >= http.StatusInternalServerError {
			logger.Error("http request", args...)
		} else {
			logger.Debug("http request", args...)
		}
		return err
	}
}

func requestMetrics(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		started := time.Now()
		err := next(c)
		route := c.Path()
		if route == "" {
			route = "unmatched"
		}
		metrics.ObserveHTTPRequest(c.Request().Method, route, responseStatus(c, err), time.Since(started))
		return err
	}
}

// responseStatus is the status that will be written for err when the
// handler did not write a response itself.
func responseStatus(c echo.Context, err error) int {
	if err == nil || c.Response().Committed {
		return c.Response().Status
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return he.Code
	}
	return http.StatusInternalServerError
}

func (s *Server) loadStudent(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		session, err := s.sessions.Get(c.Request(), s.cookieName)
		if err != nil {
			logger.Debug("ignoring unreadable session cookie", "error", err)
			return next(c)
		}
		id, ok := session.Values[sessionUserKey].(uint)
		if !ok {
			return next(c)
		}
		student, err := accounts.Get(c.Request().Context(), s.db, id)
		if err != nil {
			return err
		}
		if student != nil {
			c.Set(studentKey, student)
		}
		return next(c)
	}
}

func currentStudent(c echo.Context) *db.StudentAccount {
	student, _ := c.Get(studentKey).(*db.StudentAccount)
	return student
}

func (s *Server) requireLogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if currentStudent(c) == nil {
			target := "/auth/login?next=" + url.QueryEscape(c.Request().URL.RequestURI())
			return c.Redirect(http.StatusSeeOther, target)
		}
		return next(c)
	}
}

func (s *Server) requireAPILogin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if currentStudent(c) == nil {
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "login required"})
		}
		return next(c)
	}
}

func (s *Server) requireAdmin(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		if student := currentStudent(c); student == nil || !student.IsAdmin {
			return echo.NewHTTPError(http.StatusForbidden, "admin access required")
		}
		return next(c)
	}
}
