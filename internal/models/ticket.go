package models

import "time"

// TicketStatus is the workflow state of a ticket
type TicketStatus string

const (
	TicketStatusOpen       TicketStatus = "OPEN"
	TicketStatusInProgress TicketStatus = "IN_PROGRESS"
	TicketStatusInReview   TicketStatus = "IN_REVIEW"
	TicketStatusReviewed   TicketStatus = "REVIEWED"
	TicketStatusResolved   TicketStatus = "RESOLVED"
	TicketStatusClosed     TicketStatus = "CLOSED"
	TicketStatusReopened   TicketStatus = "REOPENED"
)

// TicketPriority ranks tickets for triage
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

var validTicketStatuses = map[TicketStatus]bool{
	TicketStatusOpen:       true,
	TicketStatusInProgress: true,
	TicketStatusInReview:   true,
	TicketStatusReviewed:   true,
	TicketStatusResolved:   true,
	TicketStatusClosed:     true,
	TicketStatusReopened:   true,
}

var validTicketPriorities = map[TicketPriority]bool{
	TicketPriorityLow:      true,
	TicketPriorityMedium:   true,
	TicketPriorityHigh:     true,
	TicketPriorityCritical: true,
}

// IsValid reports whether s is a known status
func (s TicketStatus) IsValid() bool {
	return validTicketStatuses[s]
}

// IsValid reports whether p is a known priority
func (p TicketPriority) IsValid() bool {
	return validTicketPriorities[p]
}

// Ticket tracks work against a recurring error.
// ErrorID references the LogRecord the ticket was opened from.
type Ticket struct {
	ID           string         `json:"id"`
	Title        string         `json:"title"`
	ErrorMessage string         `json:"error_message"`
	Priority     TicketPriority `json:"priority"`
	Status       TicketStatus   `json:"status" badgerhold:"index"`
	UserID       string         `json:"user_id,omitempty"`
	CreatedBy    string         `json:"created_by,omitempty"`
	AssignedTo   string         `json:"assigned_to,omitempty" badgerhold:"index"`
	Reviewer     string         `json:"reviewer,omitempty" badgerhold:"index"`
	Comments     string         `json:"comments,omitempty"`
	ErrorID      string         `json:"error_id,omitempty" badgerhold:"index"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
