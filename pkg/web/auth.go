package web

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/smith3v/sentence-trainer/pkg/accounts"
	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"github.com/smith3v/sentence-trainer/pkg/logger"
)

func (s *Server) handleLoginForm(c echo.Context) error {
	if currentStudent(c) != nil {
		return c.Redirect(http.StatusSeeOther, "/sentences")
	}
	return s.render(c, http.StatusOK, "login.html", "Log in", map[string]any{"Next": c.QueryParam("next")})
}

func (s *Server) handleLogin(c echo.Context) error {
	if currentStudent(c) != nil {
		return c.Redirect(http.StatusSeeOther, "/sentences")
	}
	username := c.FormValue("username")
	student, err := accounts.Authenticate(c.Request().Context(), s.db, username, c.FormValue("password"))
	if err != nil {
		return err
	}
	next := safeNext(c.QueryParam("next"))
	if student == nil {
		logger.Info("failed login", "username", strings.ToLower(strings.TrimSpace(username)))
		s.flash(c, flashError, "Invalid username or password.")
		return s.render(c, http.StatusUnauthorized, "login.html", "Log in", map[string]any{"Next": next})
	}

	s.logIn(c, student.ID)
	s.flash(c, flashSuccess, "Logged in.")
	if next == "" {
		next = "/sentences"
	}
	return c.Redirect(http.StatusSeeOther, next)
}

// safeNext only accepts local paths as a post-login target. Browsers read
// "/\host" like "//host", so a backslash after the first slash is refused.
func safeNext(next string) string {
	if !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.HasPrefix(next, "/\\") {
		return ""
	}
	u, err := url.Parse(next)
	if err != nil || u.Scheme != "" || u.Host != "" {
		return ""
	}
	return next
}

func (s *Server) handleRegisterForm(c echo.Context) error {
	if currentStudent(c) != nil {
		return c.Redirect(http.StatusSeeOther, "/sentences")
	}
	return s.render(c, http.StatusOK, "register.html", "Register", nil)
}

func (s *Server) handleRegister(c echo.Context) error {
	if currentStudent(c) != nil {
		return c.Redirect(http.StatusSeeOther, "/sentences")
	}
	_, err := accounts.Register(c.Request().Context(), s.db,
		c.FormValue("username"), c.FormValue("password"), c.FormValue("confirm"))
	if err != nil {
		if !apperr.IsValidation(err) {
			return err
		}
		s.flash(c, flashError, apperr.Message(err))
		return s.render(c, http.StatusBadRequest, "register.html", "Register", map[string]any{
			"Username": c.FormValue("username"),
		})
	}
	s.flash(c, flashSuccess, "Account created. You can log in now.")
	return c.Redirect(http.StatusSeeOther, "/auth/login")
}

func (s *Server) handleLogout(c echo.Context) error {
	s.logOut(c)
	s.flash(c, flashSuccess, "Logged out.")
	return c.Redirect(http.StatusSeeOther, "/auth/login")
}
