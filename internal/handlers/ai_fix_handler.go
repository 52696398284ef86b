package handlers

import (
	"net/http"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/interfaces"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/models"
	"github.com/ternarybob/arbor"
)

// AIFixHandler serves fix suggestions
type AIFixHandler struct {
	service interfaces.AIFixService
	logger  arbor.ILogger
}

// NewAIFixHandler creates a new AI fix handler
func NewAIFixHandler(service interfaces.AIFixService, logger arbor.ILogger) *AIFixHandler {
	return &AIFixHandler{
		service: service,
		logger:  logger,
	}
}

// SuggestHandler always answers 200; provider failures are reported in the body status
func (h *AIFixHandler) SuggestHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req models.AIFixRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	resp := h.service.Suggest(r.Context(), &req)
	h.logger.Debug().
		Str("status", resp.Status).
		Int("attempts", resp.Attempts).
		Msg("AI fix suggestion served")
	WriteJSON(w, http.StatusOK, resp)
}
