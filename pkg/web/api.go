package web

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"github.com/smith3v/sentence-trainer/pkg/db"
	"github.com/smith3v/sentence-trainer/pkg/logger"
	"github.com/smith3v/sentence-trainer/pkg/sentences"
)

type createSentenceRequest struct {
	SourceText     string `json:"source_text"`
	SourceLanguage string `json:"source_language"`
}

type paginationJSON struct {
	Page    int   `json:"page"`
	PerPage int   `json:"per_page"`
	Total   int64 `json:"total"`
	Pages   int   `json:"pages"`
}

type sentenceListJSON struct {
	Items      []db.Sentence  `json:"items"`
	Pagination paginationJSON `json:"pagination"`
}

func jsonError(c echo.Context, status int, message string) error {
	return c.JSON(status, map[string]string{"error": message})
}

func intQuery(c echo.Context, name string, fallback int) (int, error) {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback, nil
	}
	return strconv.Atoi(raw)
}

func (s *Server) handleAPIListSentences(c echo.Context) error {
	page, err := intQuery(c, "page", 1)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "pagination parameters must be numbers")
	}
	perPage, err := intQuery(c, "per_page", listPerPage)
	if err != nil {
		return jsonError(c, http.StatusBadRequest, "pagination parameters must be numbers")
	}
	page, perPage = db.ClampPaging(page, perPage, sentences.MaxPerPage)

	result, err := s.trainer.List(c.Request().Context(), currentStudent(c).ID, sentences.ListOptions{
		SourceLanguage: sourceLanguageFilter(c.QueryParam("source_language")),
		Query:          c.QueryParam("q"),
		Page:           page,
		PerPage:        perPage,
	})
	if err != nil {
		return err
	}
	items := result.Items
	if items == nil {
		items = []db.Sentence{}
	}
	return c.JSON(http.StatusOK, sentenceListJSON{
		Items: items,
		Pagination: paginationJSON{
			Page:    result.Page,
			PerPage: result.PerPage,
			Total:   result.Total,
			Pages:   result.Pages(),
		},
	})
}

func (s *Server) handleAPICreateSentence(c echo.Context) error {
	var req createSentenceRequest
	if err := c.Bind(&req); err != nil {
		logger.Debug("ignoring unreadable sentence payload", "error", err)
	}
	if req.SourceLanguage == "" {
		req.SourceLanguage = "pl"
	}
	sentence, err := s.trainer.Create(c.Request().Context(), currentStudent(c).ID, req.SourceText, req.SourceLanguage)
	if err != nil {
		if !apperr.IsValidation(err) {
			logger.Error("sentence creation failed", "error", err)
		}
		return jsonError(c, errorStatus(err), apperr.Message(err))
	}
	return c.JSON(http.StatusCreated, sentence)
}

func (s *Server) handleAPIGetSentence(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return jsonError(c, http.StatusNotFound, "sentence not found")
	}
	sentence, err := s.trainer.Get(c.Request().Context(), currentStudent(c).ID, id)
	if err != nil {
		return err
	}
	if sentence == nil {
		return jsonError(c, http.StatusNotFound, "sentence not found")
	}
	return c.JSON(http.StatusOK, sentence)
}

func (s *Server) handleAPIDeleteSentence(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return jsonError(c, http.StatusNotFound, "sentence not found")
	}
	deleted, err := s.trainer.Delete(c.Request().Context(), currentStudent(c).ID, id)
	if err != nil {
		return err
	}
	if !deleted {
		return jsonError(c, http.StatusNotFound, "sentence not found")
	}
	return c.NoContent(http.StatusNoContent)
}
