package web

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"github.com/smith3v/sentence-trainer/pkg/db"
	"github.com/smith3v/sentence-trainer/pkg/languages"
	"github.com/smith3v/sentence-trainer/pkg/logger"
	"github.com/smith3v/sentence-trainer/pkg/sentences"
	"github.com/smith3v/sentence-trainer/pkg/tts"
)

const (
	listPerPage   = 20
	sharedPerPage = 50
)

// pageParam reads a 1-based page number, falling back to 1.
func pageParam(c echo.Context) int {
	page, err := strconv.Atoi(c.QueryParam("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func idParam(c echo.Context) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return 0, false
	}
	return uint(id), true
}

func sourceLanguageFilter(value string) string {
	if lang := languages.Normalize(value); languages.IsSupported(lang) {
		return lang
	}
	return ""
}

func (s *Server) handleListSentences(c echo.Context) error {
	student := currentStudent(c)
	filters := sentences.ListOptions{
		SourceLanguage: sourceLanguageFilter(c.QueryParam("source_language")),
		Query:          c.QueryParam("q"),
		Page:           pageParam(c),
		PerPage:        listPerPage,
	}
	page, err := s.trainer.List(c.Request().Context(), student.ID, filters)
	if err != nil {
		return err
	}
	return s.render(c, http.StatusOK, "sentences.html", "My sentences", map[string]any{
		"Page":      page,
		"Filters":   filters,
		"Languages": languages.Supported,
	})
}

func (s *Server) sentenceForm(c echo.Context, status int, source string, created *db.Sentence, err error) error {
	target1, target2, targetErr := languages.DetermineTargets(source)
	if targetErr != nil {
		source = "pl"
		target1, target2, _ = languages.DetermineTargets(source)
	}
	data := map[string]any{
		"Languages": languages.Supported,
		"Source":    source,
		"Targets":   []string{target1, target2},
		"Created":   created,
	}
	if err != nil {
		data["Error"] = apperr.Message(err)
	}
	return s.render(c, status, "sentence_form.html", "New sentence", data)
}

func (s *Server) handleNewSentenceForm(c echo.Context) error {
	return s.sentenceForm(c, http.StatusOK, "pl", nil, nil)
}

func (s *Server) handleCreateSentence(c echo.Context) error {
	student := currentStudent(c)
	source := c.FormValue("source_language")
	if source == "" {
		source = "pl"
	}
	created, err := s.trainer.Create(c.Request().Context(), student.ID, c.FormValue("source_text"), source)
	if err != nil {
		return s.sentenceForm(c, errorStatus(err), languages.Normalize(source), nil, err)
	}
	return s.sentenceForm(c, http.StatusOK, created.SourceLanguage, created, nil)
}

func (s *Server) handleDeleteSentence(c echo.Context) error {
	student := currentStudent(c)
	id, ok := idParam(c)
	if !ok {
		return s.redirectWithFlash(c, "/sentences", apperr.Validation("Sentence not found."), "")
	}
	deleted, err := s.trainer.Delete(c.Request().Context(), student.ID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return s.redirectWithFlash(c, "/sentences", apperr.Validation("Sentence not found."), "")
	}
	return s.redirectWithFlash(c, "/sentences", nil, "Sentence deleted.")
}

func (s *Server) handleSharedSentences(c echo.Context) error {
	filters := sentences.SharedListOptions{
		Difficulty:     c.QueryParam("difficulty"),
		Query:          c.QueryParam("q"),
		OnlyTranslated: true,
		Page:           pageParam(c),
		PerPage:        sharedPerPage,
	}
	if !db.IsDifficulty(filters.Difficulty) {
		filters.Difficulty = ""
	}
	page, err := s.shared.List(c.Request().Context(), filters)
	if err != nil {
		return err
	}

	type group struct {
		Difficulty string
		Sentences  []db.SharedSentence
	}
	groups := make([]group, 0, len(db.Difficulties))
	for _, difficulty := range db.Difficulties {
		g := group{Difficulty: difficulty}
		for _, item := range page.Items {
			if item.Difficulty == difficulty {
				g.Sentences = append(g.Sentences, item)
			}
		}
		groups = append(groups, g)
	}
	return s.render(c, http.StatusOK, "shared.html", "Shared sentences", map[string]any{
		"Groups":       groups,
		"Page":         page,
		"Filters":      filters,
		"Difficulties": db.Difficulties,
	})
}

func (s *Server) handleVoices(c echo.Context) error {
	voices, err := s.resolver.AzureVoices(c.Request().Context())
	data := map[string]any{"Languages": languages.Supported}
	if err != nil {
		logger.Warn("failed to list Azure voices", "error", err)
		data["Error"] = apperr.Message(err)
	}
	data["Groups"] = tts.GroupByLanguage(voices)
	return s.render(c, http.StatusOK, "voices.html", "Voices", data)
}
