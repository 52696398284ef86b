package handlers

import "github.com/jeevanmalviyayash/LogAnalyzer/internal/models"

// AlertJobController exposes the alert job's runtime gate and last outcome.
type AlertJobController interface {
	Enabled() bool
	SetEnabled(enabled bool)
	LastResult() *models.AlertRunResult
}
