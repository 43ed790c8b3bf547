package web

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/smith3v/sentence-trainer/pkg/apperr"
	"github.com/smith3v/sentence-trainer/pkg/db"
	"github.com/smith3v/sentence-trainer/pkg/languages"
	"github.com/smith3v/sentence-trainer/pkg/logger"
	"github.com/smith3v/sentence-trainer/pkg/providers"
	"github.com/smith3v/sentence-trainer/pkg/sentences"
)

const (
	diagnosticsPath    = "/admin/diagnostics"
	adminSharedPath    = "/admin/shared-sentences"
	adminSharedPerPage = 50
	recentBatchesLimit = 10
)

func (s *Server) handleDiagnostics(c echo.Context) error {
	ctx := c.Request().Context()
	data := map[string]any{
		"Diagnostics":          s.resolver.Diagnostics(ctx),
		"TranslationProviders": providers.TranslationKinds,
		"TTSProviders":         providers.TTSKinds,
		"Languages":            languages.Supported,
		"AzureOverrides":       s.resolver.VoiceOverrides(ctx, providers.TTSAzure),
		"GoogleOverrides":      s.resolver.VoiceOverrides(ctx, providers.TTSGoogle),
	}
	voices, err := s.resolver.AzureVoicesByLanguage(ctx)
	if err != nil {
		logger.Warn("failed to list Azure voices", "error", err)
		data["VoicesError"] = apperr.Message(err)
	}
	data["AzureVoices"] = voices
	return s.render(c, http.StatusOK, "diagnostics.html", "Diagnostics", data)
}

func (s *Server) handleSetTranslationProvider(c echo.Context) error {
	provider := strings.ToLower(strings.TrimSpace(c.FormValue("provider")))
	err := s.resolver.SetTranslationProvider(c.Request().Context(), provider)
	return s.redirectWithFlash(c, diagnosticsPath, err, "Translation provider set to "+provider+".")
}

func (s *Server) handleSetTTSProvider(c echo.Context) error {
	provider := strings.ToLower(strings.TrimSpace(c.FormValue("provider")))
	err := s.resolver.SetTTSProvider(c.Request().Context(), provider)
	return s.redirectWithFlash(c, diagnosticsPath, err, "TTS provider set to "+provider+".")
}

func (s *Server) handleSetVoice(c echo.Context) error {
	provider := strings.ToLower(strings.TrimSpace(c.FormValue("provider")))
	language := strings.ToLower(strings.TrimSpace(c.FormValue("language")))
	voice := strings.TrimSpace(c.FormValue("voice"))
	err := s.resolver.SetVoice(c.Request().Context(), provider, language, voice)
	label := voice
	if label == "" {
		label = "default"
	}
	return s.redirectWithFlash(c, diagnosticsPath, err,
		fmt.Sprintf("Voice for %s / %s set to %s.", strings.ToUpper(provider), strings.ToUpper(language), label))
}

func (s *Server) handleAdminSharedSentences(c echo.Context) error {
	ctx := c.Request().Context()
	filters := sentences.SharedListOptions{
		Difficulty:     c.QueryParam("difficulty"),
		Query:          c.QueryParam("q"),
		OnlyTranslated: c.QueryParam("only_translated") == "1",
		Page:           pageParam(c),
		PerPage:        adminSharedPerPage,
	}
	page, err := s.shared.List(ctx, filters)
	if err != nil {
		return err
	}
	batches, err := s.shared.RecentBatches(ctx, recentBatchesLimit)
	if err != nil {
		return err
	}
	type batchView struct {
		db.GenerationBatch
		Texts []string
	}
	views := make([]batchView, len(batches))
	for i, batch := range batches {
		views[i] = batchView{GenerationBatch: batch, Texts: sentences.BatchSentences(batch)}
	}
	return s.render(c, http.StatusOK, "admin_shared.html", "Shared sentence bank", map[string]any{
		"Page":         page,
		"Filters":      filters,
		"Batches":      views,
		"Difficulties": db.Difficulties,
		"Languages":    languages.Supported,
	})
}

func (s *Server) handleGenerateSharedSentences(c echo.Context) error {
	admin := currentStudent(c)
	batch, drafts, err := s.shared.GenerateDrafts(c.Request().Context(), s.generator,
		c.FormValue("prompt"), c.FormValue("difficulty"), c.FormValue("source_language"), &admin.ID)
	if err != nil {
		return s.redirectWithFlash(c, adminSharedPath, err, "")
	}
	message := fmt.Sprintf("Created %d draft sentence(s).", len(drafts))
	if batch.UsedFallback {
		message += " The mock generator was used."
	}
	return s.redirectWithFlash(c, adminSharedPath, nil, message)
}

func (s *Server) handleTranslateShared(c echo.Context) error {
	ctx := c.Request().Context()
	id, ok := idParam(c)
	if !ok {
		return s.redirectWithFlash(c, adminSharedPath, apperr.Validation("Shared sentence not found."), "")
	}
	shared, err := s.shared.Get(ctx, id)
	if err != nil {
		return err
	}
	if shared == nil {
		return s.redirectWithFlash(c, adminSharedPath, apperr.Validation("Shared sentence not found."), "")
	}
	err = s.shared.Translate(ctx, shared)
	return s.redirectWithFlash(c, adminSharedPath, err, fmt.Sprintf("Shared sentence #%d translated.", id))
}

func (s *Server) handleDeleteShared(c echo.Context) error {
	id, ok := idParam(c)
	if !ok {
		return s.redirectWithFlash(c, adminSharedPath, apperr.Validation("Shared sentence not found."), "")
	}
	deleted, err := s.shared.Delete(c.Request().Context(), id)
	if err != nil {
		return err
	}
	if !deleted {
		return s.redirectWithFlash(c, adminSharedPath, apperr.Validation("Shared sentence not found."), "")
	}
	return s.redirectWithFlash(c, adminSharedPath, nil, fmt.Sprintf("Shared sentence #%d deleted.", id))
}

func (s *Server) handleBulkDeleteShared(c echo.Context) error {
	form, err := c.FormParams()
	if err != nil {
		return s.redirectWithFlash(c, adminSharedPath, apperr.Validation("Invalid form."), "")
	}
	var ids []uint
	for _, raw := range form["ids"] {
		id, err := strconv.ParseUint(strings.TrimSpace(raw), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, uint(id))
	}
	if len(ids) == 0 {
		return s.redirectWithFlash(c, adminSharedPath, apperr.Validation("Select at least one sentence."), "")
	}
	count, err := s.shared.BulkDelete(c.Request().Context(), ids)
	if err != nil {
		return err
	}
	return s.redirectWithFlash(c, adminSharedPath, nil, fmt.Sprintf("Deleted %d shared sentence(s).", count))
}
