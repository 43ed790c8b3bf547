package web

import (
	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/smith3v/sentence-trainer/pkg/logger"
)

const (
	sessionUserKey = "user_id"

	flashSuccess = "success"
	flashError   = "error"
)

type flashMessage struct {
	Category string
	Message  string
}

func (s *Server) session(c echo.Context) *sessions.Session {
	session, err := s.sessions.Get(c.Request(), s.cookieName)
	if err != nil {
		// A cookie signed with an old secret still yields a fresh session.
		logger.Debug("starting new session", "error", err)
	}
	return session
}

func (s *Server) saveSession(c echo.Context, session *sessions.Session) {
	if err := session.Save(c.Request(), c.Response()); err != nil {
		logger.Error("failed to save session", "error", err)
	}
}

func (s *Server) logIn(c echo.Context, userID uint) {
	session := s.session(c)
	session.Values[sessionUserKey] = userID
	s.saveSession(c, session)
}

func (s *Server) logOut(c echo.Context) {
	session := s.session(c)
	delete(session.Values, sessionUserKey)
	s.saveSession(c, session)
}

func (s *Server) flash(c echo.Context, category, message string) {
	session := s.session(c)
	session.AddFlash(message, category)
	s.saveSession(c, session)
}

// takeFlashes pops every pending flash message.
func (s *Server) takeFlashes(c echo.Context) []flashMessage {
	session := s.session(c)
	var messages []flashMessage
	for _, category := range []string{flashError, flashSuccess} {
		for _, value := range session.Flashes(category) {
			if text, ok := value.(string); ok {
				messages = append(messages, flashMessage{Category: category, Message: text})
			}
		}
	}
	if len(messages) > 0 {
		s.saveSession(c, session)
	}
	return messages
}
