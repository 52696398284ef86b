package common

import (
	"github.com/google/uuid"
)

// NewRecordID generates a log record ID. Format: err_<uuid>
func NewRecordID() string {
	return "err_" + uuid.New().String()
}

// NewTicketID generates a ticket ID. Format: tkt_<uuid>
func NewTicketID() string {
	return "tkt_" + uuid.New().String()
}

// NewUserID generates a user ID. Format: usr_<uuid>
func NewUserID() string {
	return "usr_" + uuid.New().String()
}

// NewCorrelationID generates an ID used to tie log lines to one request or run
func NewCorrelationID() string {
	return uuid.New().String()
}
