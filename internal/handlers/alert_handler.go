package handlers

import (
	"net/http"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// AlertHandler exposes the alert job's schedule, gate and manual trigger
type AlertHandler struct {
	job       AlertJobController
	scheduler interfaces.SchedulerService
	jobName   string
	logger    arbor.ILogger
}

// NewAlertHandler creates a new alert handler
func NewAlertHandler(job AlertJobController, scheduler interfaces.SchedulerService, jobName string, logger arbor.ILogger) *AlertHandler {
	return &AlertHandler{
		job:       job,
		scheduler: scheduler,
		jobName:   jobName,
		logger:    logger,
	}
}

// StatusHandler returns the schedule status, gate and last run result
func (h *AlertHandler) StatusHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "GET") {
		return
	}

	status, err := h.scheduler.GetJobStatus(h.jobName)
	if err != nil {
		WriteError(w, http.StatusNotFound, err.Error())
		return
	}

	WriteJSON(w, http.StatusOK, map[string]interface{}{
		"enabled":     h.job.Enabled(),
		"schedule":    status,
		"last_result": h.job.LastResult(),
	})
}

// RunHandler triggers a run in the background
func (h *AlertHandler) RunHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}

	if err := h.scheduler.TriggerJob(h.jobName); err != nil {
		WriteError(w, http.StatusConflict, err.Error())
		return
	}
	WriteStarted(w, "Alert job triggered")
}

// EnableHandler opens the run gate
func (h *AlertHandler) EnableHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	h.job.SetEnabled(true)
	WriteSuccess(w, "Alert job enabled")
}

// DisableHandler closes the run gate
func (h *AlertHandler) DisableHandler(w http.ResponseWriter, r *http.Request) {
	if !RequireMethod(w, r, "POST") {
		return
	}
	h.job.SetEnabled(false)
	WriteSuccess(w, "Alert job disabled")
}
