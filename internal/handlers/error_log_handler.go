package handlers

import (
	"errors"
	"net/http"
	"strings"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/services/ingestion"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/services/logparser"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/services/stats"
	"github.com/ternarybob/arbor"
)

const (
	uploadSuccessMessage = "Logs uploaded and saved successfully!"
	uploadMissingMessage = "Please select a file to upload."
	emptyMessageText     = "Error message cannot be empty"

	// multipart overhead allowed on top of the configured file size
	uploadFormSlack = 1 << 20
)

// ErrorLogHandler serves log upload, manual entry and dashboard aggregation endpoints
type ErrorLogHandler struct {
	ingestion     *ingestion.Service
	stats         *stats.Service
	maxUploadSize int64
	logger        arbor.ILogger
}

// NewErrorLogHandler creates a new error log handler
func NewErrorLogHandler(ingestionService *ingestion.Service, statsService *stats.Service, maxUploadSize int64, logger arbor.ILogger) *ErrorLogHandler {
	return &ErrorLogHandler{
		ingestion:     ingestionService,
		stats:         statsService,
		maxUploadSize: maxUploadSize,
		logger:        logger,
	}
}

// UploadHandler accepts a multipart "file" field and ingests it
func (h *ErrorLogHandler) UploadHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	if h.maxUploadSize > 0 {
		r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize+uploadFormSlack)
	}
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			WriteError(w, http.StatusBadRequest, "File too large.")
			return
		}
		WriteError(w, http.StatusBadRequest, uploadMissingMessage)
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		WriteError(w, http.StatusBadRequest, uploadMissingMessage)
		return
	}
	defer file.Close()

	result, err := h.ingestion.IngestUpload(r.Context(), header.Filename, header.Size, file)
	if err != nil {
		switch {
		case errors.Is(err, ingestion.ErrInvalidUpload), errors.Is(err, ingestion.ErrMalformedTimestamp):
			WriteError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error().Err(err).Str("file", header.Filename).Msg("Log upload failed")
			WriteError(w, http.StatusInternalServerError, "Failed to process log file: "+err.Error())
		}
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"status":  "success",
		"message": uploadSuccessMessage,
		"result":  result,
	})
}

// AllLogsHandler returns every record newest first
func (h *ErrorLogHandler) AllLogsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	records, err := h.stats.AllLogs(r.Context())
	if err != nil {
		h.internalError(w, err, "Failed to load logs")
		return
	}
	WriteJSON(w, http.StatusOK, records)
}

// LastDaysHandler returns records from the last ?lastDays=N days
func (h *ErrorLogHandler) LastDaysHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	days, err := QueryInt(r, "lastDays", 7)
	if err != nil || days < 0 {
		WriteError(w, http.StatusBadRequest, "lastDays must be a non-negative integer")
		return
	}

	records, err := h.stats.LogsLastNDays(r.Context(), days)
	if err != nil {
		h.internalError(w, err, "Failed to load logs")
		return
	}
	WriteJSON(w, http.StatusOK, records)
}

// DailyCountsHandler returns per-day error counts
func (h *ErrorLogHandler) DailyCountsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	days, err := QueryInt(r, "days", stats.DefaultDailyCountDays)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	counts, err := h.stats.DailyErrorCounts(r.Context(), days)
	if err != nil {
		h.internalError(w, err, "Failed to load daily counts")
		return
	}
	WriteJSON(w, http.StatusOK, counts)
}

// CategoryStatsHandler returns per-display-category error counts
func (h *ErrorLogHandler) CategoryStatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	days, err := QueryInt(r, "days", stats.DefaultCategoryStatsDays)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	categories, err := h.stats.ErrorCategoryStats(r.Context(), days)
	if err != nil {
		if errors.Is(err, logparser.ErrNullErrorType) {
			h.logger.Error().Err(err).Msg("Category stats hit a record without an error type")
		}
		h.internalError(w, err, "Failed to load category stats")
		return
	}
	WriteJSON(w, http.StatusOK, categories)
}

// ManualErrorHandler stores a user-entered error
func (h *ErrorLogHandler) ManualErrorHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	var req ingestion.ManualErrorRequest
	if err := DecodeJSON(w, r, &req); err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	record, err := h.ingestion.SaveManualError(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, ingestion.ErrEmptyMessage):
			WriteError(w, http.StatusBadRequest, emptyMessageText)
		case errors.Is(err, ingestion.ErrInvalidUpload):
			WriteError(w, http.StatusBadRequest, err.Error())
		default:
			h.internalError(w, err, "Failed to add error")
		}
		return
	}
	WriteJSON(w, http.StatusCreated, record)
}

// LevelStatsHandler returns per-level counts
func (h *ErrorLogHandler) LevelStatsHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	counts, err := h.stats.CountByLevel(r.Context())
	if err != nil {
		h.internalError(w, err, "Failed to load stats")
		return
	}
	WriteJSON(w, http.StatusOK, counts)
}

// ChartDataHandler returns error-type labels and counts
func (h *ErrorLogHandler) ChartDataHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	chart, err := h.stats.ChartData(r.Context())
	if err != nil {
		h.internalError(w, err, "Failed to load chart data")
		return
	}
	WriteJSON(w, http.StatusOK, chart)
}

// ErrorTypeCountHandler counts one error type, optionally within ?days=N
func (h *ErrorLogHandler) ErrorTypeCountHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	errorType := strings.TrimSpace(r.URL.Query().Get("type"))
	if errorType == "" {
		WriteError(w, http.StatusBadRequest, "type is required")
		return
	}
	days, err := QueryInt(r, "days", 0)
	if err != nil {
		WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	count, err := h.stats.CountErrorTypeInWindow(r.Context(), errorType, days)
	if err != nil {
		h.internalError(w, err, "Failed to count error type")
		return
	}
	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"error_type": errorType,
		"days":       days,
		"count":      count,
	})
}

func (h *ErrorLogHandler) internalError(w http.ResponseWriter, err error, message string) {
	h.logger.Error().Err(err).Msg(message)
	WriteError(w, http.StatusInternalServerError, message+": "+err.Error())
}
