package models

import "time"

// Log levels captured from source lines. ManualLevel marks records entered through the API.
const (
	LevelInfo   = "INFO"
	LevelWarn   = "WARN"
	LevelError  = "ERROR"
	LevelDebug  = "DEBUG"
	LevelManual = "MANUAL"
)

// UnknownErrorType is the classifier fallback label
const UnknownErrorType = "Unknown Error"

// LogRecord is a single normalized error record, either parsed from an
// uploaded log file or entered manually.
//
// Timestamp keeps the offset given in the source line. CreatedAt is set once
// at insert. LinkedTicketID is the only field mutated after insert.
type LogRecord struct {
	ID             string    `json:"id"`
	Level          string    `json:"level" badgerhold:"index"`
	Message        string    `json:"message"`
	Timestamp      time.Time `json:"timestamp"`
	Source         string    `json:"source"`
	ErrorType      string    `json:"error_type" badgerhold:"index"`
	LinkedTicketID string    `json:"linked_ticket_id,omitempty" badgerhold:"index"`
	UserID         string    `json:"user_id,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// HasTicket reports whether a ticket has been opened against the record
func (r *LogRecord) HasTicket() bool {
	return r.LinkedTicketID != ""
}
