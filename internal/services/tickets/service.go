// Package tickets opens and tracks tickets against recorded errors.
package tickets

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/interfaces"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/models"
	"github.com/ternarybob/arbor"
)

var (
	// ErrTicketNotFound is returned when a ticket id has no match
	ErrTicketNotFound = errors.New("ticket not found")

	// ErrRecordNotFound is returned when a ticket references a missing error record
	ErrRecordNotFound = errors.New("error record not found")

	// ErrInvalidTicket wraps request validation failures
	ErrInvalidTicket = errors.New("invalid ticket")
)

// CreateRequest opens a ticket against an error record
type CreateRequest struct {
	Title        string                `json:"title" validate:"required"`
	ErrorMessage string                `json:"error_message"`
	Priority     models.TicketPriority `json:"priority"`
	Status       models.TicketStatus   `json:"status"`
	UserID       string                `json:"user_id"`
	CreatedBy    string                `json:"created_by"`
	AssignedTo   string                `json:"assigned_to"`
	Reviewer     string                `json:"reviewer"`
	Comments     string                `json:"comments"`
	ErrorID      string                `json:"error_id" validate:"required"`
}

// UpdateRequest carries a partial update; empty fields are left unchanged
type UpdateRequest struct {
	Title        string                `json:"title"`
	ErrorMessage string                `json:"error_message"`
	Priority     models.TicketPriority `json:"priority"`
	Status       models.TicketStatus   `json:"status"`
	AssignedTo   string                `json:"assigned_to"`
	Reviewer     string                `json:"reviewer"`
	Comments     string                `json:"comments"`
}

// Service manages ticket lifecycle
type Service struct {
	tickets  interfaces.TicketStorage
	records  interfaces.LogRecordStorage
	events   interfaces.EventService
	validate *validator.Validate
	logger   arbor.ILogger
	now      func() time.Time
}

// NewService creates a ticket service. events may be nil.
func NewService(tickets interfaces.TicketStorage, records interfaces.LogRecordStorage, events interfaces.EventService, logger arbor.ILogger) *Service {
	return &Service{
		tickets:  tickets,
		records:  records,
		events:   events,
		validate: validator.New(),
		logger:   logger,
		now:      time.Now,
	}
}

// Create saves a new ticket and links the referenced error record to it.
// The record must exist; status defaults to OPEN and priority to MEDIUM.
func (s *Service) Create(ctx context.Context, req *CreateRequest) (*models.Ticket, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", ErrInvalidTicket)
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidTicket, err)
	}

	priority, status, err := normalizeState(req.Priority, req.Status)
	if err != nil {
		return nil, err
	}
	if priority == "" {
		priority = models.TicketPriorityMedium
	}
	if status == "" {
		status = models.TicketStatusOpen
	}

	record, err := s.records.Get(ctx, req.ErrorID)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrRecordNotFound, req.ErrorID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load error record: %w", err)
	}

	errorMessage := req.ErrorMessage
	if errorMessage == "" {
		errorMessage = record.Message
	}

	now := s.now()
	ticket := &models.Ticket{
		Title:        strings.TrimSpace(req.Title),
		ErrorMessage: errorMessage,
		Priority:     priority,
		Status:       status,
		UserID:       req.UserID,
		CreatedBy:    req.CreatedBy,
		AssignedTo:   req.AssignedTo,
		Reviewer:     req.Reviewer,
		Comments:     req.Comments,
		ErrorID:      record.ID,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := s.tickets.Save(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to save ticket: %w", err)
	}
	if err := s.records.LinkTicket(ctx, record.ID, ticket.ID); err != nil {
		return nil, fmt.Errorf("failed to link error record to ticket: %w", err)
	}

	s.logger.Info().
		Str("ticket_id", ticket.ID).
		Str("error_id", record.ID).
		Str("status", string(ticket.Status)).
		Msg("Ticket created")

	s.publish(ctx, interfaces.EventTicketCreated, ticket)
	return ticket, nil
}

// Get returns a ticket by id
func (s *Service) Get(ctx context.Context, id string) (*models.Ticket, error) {
	ticket, err := s.tickets.Get(ctx, id)
	if errors.Is(err, interfaces.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrTicketNotFound, id)
	}
	if err != nil {
		return nil, err
	}
	return ticket, nil
}

// List returns all tickets newest first
func (s *Service) List(ctx context.Context) ([]*models.Ticket, error) {
	return s.tickets.List(ctx)
}

// ListForUser returns tickets assigned to or reviewed by userID
func (s *Service) ListForUser(ctx context.Context, userID string) ([]*models.Ticket, error) {
	return s.tickets.ListByAssigneeOrReviewer(ctx, userID)
}

// Update applies the non-empty fields of req to the ticket
func (s *Service) Update(ctx context.Context, id string, req *UpdateRequest) (*models.Ticket, error) {
	if req == nil {
		return nil, fmt.Errorf("%w: request is required", ErrInvalidTicket)
	}
	priority, status, err := normalizeState(req.Priority, req.Status)
	if err != nil {
		return nil, err
	}

	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Title != "" {
		ticket.Title = strings.TrimSpace(req.Title)
	}
	if req.ErrorMessage != "" {
		ticket.ErrorMessage = req.ErrorMessage
	}
	if priority != "" {
		ticket.Priority = priority
	}
	if status != "" {
		ticket.Status = status
	}
	if req.AssignedTo != "" {
		ticket.AssignedTo = req.AssignedTo
	}
	if req.Reviewer != "" {
		ticket.Reviewer = req.Reviewer
	}
	if req.Comments != "" {
		ticket.Comments = req.Comments
	}
	ticket.UpdatedAt = s.now()

	if err := s.tickets.Save(ctx, ticket); err != nil {
		return nil, fmt.Errorf("failed to save ticket: %w", err)
	}

	s.logger.Info().
		Str("ticket_id", ticket.ID).
		Str("status", string(ticket.Status)).
		Msg("Ticket updated")

	s.publish(ctx, interfaces.EventTicketUpdated, ticket)
	return ticket, nil
}

func normalizeState(priority models.TicketPriority, status models.TicketStatus) (models.TicketPriority, models.TicketStatus, error) {
	priority = models.TicketPriority(strings.ToUpper(strings.TrimSpace(string(priority))))
	status = models.TicketStatus(strings.ToUpper(strings.TrimSpace(string(status))))
	if priority != "" && !priority.IsValid() {
		return "", "", fmt.Errorf("%w: unknown priority %q", ErrInvalidTicket, priority)
	}
	if status != "" && !status.IsValid() {
		return "", "", fmt.Errorf("%w: unknown status %q", ErrInvalidTicket, status)
	}
	return priority, status, nil
}

func (s *Service) publish(ctx context.Context, eventType interfaces.EventType, ticket *models.Ticket) {
	if s.events == nil {
		return
	}
	if err := s.events.Publish(ctx, interfaces.Event{Type: eventType, Payload: *ticket}); err != nil {
		s.logger.Warn().Err(err).Str("event", string(eventType)).Msg("Failed to publish ticket event")
	}
}
