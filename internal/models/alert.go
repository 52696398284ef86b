package models

import "time"

// AlertTypeCount is one alerting error type with its all-time count
type AlertTypeCount struct {
	ErrorType string `json:"error_type"`
	Count     int64  `json:"count"`
}

// AlertRunResult summarises one alert correlation run
type AlertRunResult struct {
	RanAt      time.Time        `json:"ran_at"`
	Skipped    bool             `json:"skipped"`
	Stage      string           `json:"stage"`
	Types      []AlertTypeCount `json:"types,omitempty"`
	Total      int64            `json:"total"`
	Recipients []string         `json:"recipients,omitempty"`
	Sent       int              `json:"sent"`
	Failed     int              `json:"failed"`
	Error      string           `json:"error,omitempty"`
}
