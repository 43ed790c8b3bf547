package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/gorilla/sessions"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/smith3v/sentence-trainer/pkg/config"
	"github.com/smith3v/sentence-trainer/pkg/logger"
	"github.com/smith3v/sentence-trainer/pkg/providers"
	"github.com/smith3v/sentence-trainer/pkg/sentences"
	"gorm.io/gorm"
)

type Deps struct {
	DB        *gorm.DB
	Resolver  *providers.Resolver
	Trainer   *sentences.Trainer
	Shared    *sentences.Shared
	Generator sentences.Generator
	Server    config.ServerConfig
	// AudioDir is served under AudioPrefix when audio is stored locally.
	AudioDir    string
	AudioPrefix string
}

type Server struct {
	echo       *echo.Echo
	db         *gorm.DB
	resolver   *providers.Resolver
	trainer    *sentences.Trainer
	shared     *sentences.Shared
	generator  sentences.Generator
	sessions   sessions.Store
	cookieName string
}

func New(deps Deps) (*Server, error) {
	renderer, err := newRenderer()
	if err != nil {
		return nil, err
	}

	cookieName := deps.Server.CookieName
	if cookieName == "" {
		cookieName = "learning_platform_session"
	}
	store := sessions.NewCookieStore([]byte(deps.Server.SessionSecret))
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   30 * 24 * 60 * 60,
		HttpOnly: true,
		Secure:   deps.Server.CookieSecure,
		SameSite: http.SameSiteLaxMode,
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Renderer = renderer
	e.HTTPErrorHandler = httpErrorHandler

	s := &Server{
		echo:       e,
		db:         deps.DB,
		resolver:   deps.Resolver,
		trainer:    deps.Trainer,
		shared:     deps.Shared,
		generator:  deps.Generator,
		sessions:   store,
		cookieName: cookieName,
	}

	e.Use(middleware.Recover())
	e.Use(requestID)
	e.Use(requestLogger)
	e.Use(requestMetrics)
	e.Use(s.loadStudent)

	s.routes(deps)
	return s, nil
}

func (s *Server) routes(deps Deps) {
	e := s.echo

	e.GET("/", s.handleIndex)
	e.GET("/healthz", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))
	if deps.AudioDir != "" {
		prefix := "/" + strings.Trim(deps.AudioPrefix, "/")
		e.Static(prefix, deps.AudioDir)
	}

	auth := e.Group("/auth")
	auth.GET("/login", s.handleLoginForm)
	auth.POST("/login", s.handleLogin)
	auth.GET("/register", s.handleRegisterForm)
	auth.POST("/register", s.handleRegister)
	auth.GET("/logout", s.handleLogout, s.requireLogin)

	pages := e.Group("/sentences", s.requireLogin)
	pages.GET("", s.handleListSentences)
	pages.GET("/new", s.handleNewSentenceForm)
	pages.POST("/new", s.handleCreateSentence)
	pages.POST("/:id/delete", s.handleDeleteSentence)
	pages.GET("/shared", s.handleSharedSentences)
	pages.GET("/voices", s.handleVoices)

	api := e.Group("/api", s.requireAPILogin)
	api.GET("/sentences", s.handleAPIListSentences)
	api.POST("/sentences", s.handleAPICreateSentence)
	api.GET("/sentences/:id", s.handleAPIGetSentence)
	api.DELETE("/sentences/:id", s.handleAPIDeleteSentence)

	admin := e.Group("/admin", s.requireLogin, s.requireAdmin)
	admin.GET("/diagnostics", s.handleDiagnostics)
	admin.POST("/translation-provider", s.handleSetTranslationProvider)
	admin.POST("/tts-provider", s.handleSetTTSProvider)
	admin.POST("/tts-voice", s.handleSetVoice)
	admin.GET("/shared-sentences", s.handleAdminSharedSentences)
	admin.POST("/shared-sentences", s.handleGenerateSharedSentences)
	admin.POST("/shared-sentences/bulk-delete", s.handleBulkDeleteShared)
	admin.POST("/shared-sentences/:id/translate", s.handleTranslateShared)
	admin.POST("/shared-sentences/:id/delete", s.handleDeleteShared)
}

func (s *Server) Handler() http.Handler {
	return s.echo
}

func (s *Server) Start(addr string) error {
	logger.Info("http server listening", "addr", addr)
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

func (s *Server) handleIndex(c echo.Context) error {
	if currentStudent(c) != nil {
		return c.Redirect(http.StatusSeeOther, "/sentences")
	}
	return c.Redirect(http.StatusSeeOther, "/auth/login")
}

func (s *Server) handleHealth(c echo.Context) error {
	sqlDB, err := s.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		logger.Error("health check failed", "error", err)
		return c.JSON(http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}
	code := http.StatusInternalServerError
	message := http.StatusText(code)
	var he *echo.HTTPError
	if errors.As(err, &he) {
		code = he.Code
		if msg, ok := he.Message.(string); ok {
			message = msg
		} else {
			message = http.StatusText(code)
		}
	} else {
		logger.Error("unhandled request error", "path", c.Request().URL.Path, "error", err)
	}

	if isAPIRequest(c) {
		err = c.JSON(code, map[string]string{"error": message})
	} else {
		err = c.String(code, message)
	}
	if err != nil {
		logger.Error("failed to write error response", "error", err)
	}
}

func isAPIRequest(c echo.Context) bool {
	return strings.HasPrefix(c.Request().URL.Path, "/api/")
}
