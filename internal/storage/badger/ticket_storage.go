package badger

import (
	"context"
	"errors"
	"fmt"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/common"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/interfaces"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/models"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// TicketStorage implements the TicketStorage interface for Badger
type TicketStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewTicketStorage creates a new TicketStorage instance
func NewTicketStorage(db *BadgerDB, logger arbor.ILogger) interfaces.TicketStorage {
	return &TicketStorage{
		db:     db,
		logger: logger,
	}
}

// Save inserts or replaces a ticket, assigning an ID when unset
func (s *TicketStorage) Save(ctx context.Context, ticket *models.Ticket) error {
	if ticket == nil {
		return fmt.Errorf("ticket is nil")
	}
	if ticket.ID == "" {
		ticket.ID = common.NewTicketID()
	}
	if err := s.db.Store().Upsert(ticket.ID, ticket); err != nil {
		return fmt.Errorf("failed to save ticket: %w", err)
	}
	return nil
}

// Get retrieves a ticket by ID
func (s *TicketStorage) Get(ctx context.Context, id string) (*models.Ticket, error) {
	var ticket models.Ticket
	err := s.db.Store().Get(id, &ticket)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, fmt.Errorf("ticket %s: %w", id, interfaces.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get ticket: %w", err)
	}
	return &ticket, nil
}

// List returns all tickets newest first
func (s *TicketStorage) List(ctx context.Context) ([]*models.Ticket, error) {
	var tickets []models.Ticket
	if err := s.db.Store().Find(&tickets, badgerhold.Where("ID").Ne("").SortBy("CreatedAt").Reverse()); err != nil {
		return nil, fmt.Errorf("failed to list tickets: %w", err)
	}
	return toTicketPtrs(tickets), nil
}

// ListByStatus returns tickets with the given status
func (s *TicketStorage) ListByStatus(ctx context.Context, status models.TicketStatus) ([]*models.Ticket, error) {
	var tickets []models.Ticket
	if err := s.db.Store().Find(&tickets, badgerhold.Where("Status").Eq(status).SortBy("CreatedAt").Reverse()); err != nil {
		return nil, fmt.Errorf("failed to list tickets with status %s: %w", status, err)
	}
	return toTicketPtrs(tickets), nil
}

// ListByAssigneeOrReviewer returns tickets assigned to or reviewed by userID
func (s *TicketStorage) ListByAssigneeOrReviewer(ctx context.Context, userID string) ([]*models.Ticket, error) {
	query := badgerhold.Where("AssignedTo").Eq(userID).
		Or(badgerhold.Where("Reviewer").Eq(userID)).
		SortBy("CreatedAt").Reverse()

	var tickets []models.Ticket
	if err := s.db.Store().Find(&tickets, query); err != nil {
		return nil, fmt.Errorf("failed to list tickets for %s: %w", userID, err)
	}
	return toTicketPtrs(tickets), nil
}

func toTicketPtrs(tickets []models.Ticket) []*models.Ticket {
	out := make([]*models.Ticket, len(tickets))
	for i := range tickets {
		out[i] = &tickets[i]
	}
	return out
}
