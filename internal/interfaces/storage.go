package interfaces

import (
	"context"
	"errors"
	"time"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/models"
)

// ErrNotFound is returned by storages when a keyed lookup has no match
var ErrNotFound = errors.New("not found")

// LogRecordStorage persists error records and answers the dashboard and alert queries.
// Time windows are inclusive on both ends.
type LogRecordStorage interface {
	Insert(ctx context.Context, record *models.LogRecord) (string, error)
	Get(ctx context.Context, id string) (*models.LogRecord, error)
	FindAll(ctx context.Context) ([]*models.LogRecord, error)

	// FindByTimeRange returns records in [from, to] newest first
	FindByTimeRange(ctx context.Context, from, to time.Time) ([]*models.LogRecord, error)

	CountGroupedByErrorType(ctx context.Context) ([]models.ErrorTypeCount, error)
	CountGroupedByErrorTypeBetween(ctx context.Context, from, to time.Time) ([]models.ErrorTypeCount, error)

	// CountGroupedByDay buckets records in [from, to] by calendar day in loc, ascending
	CountGroupedByDay(ctx context.Context, from, to time.Time, loc *time.Location) ([]models.DailyErrorCount, error)

	CountByErrorType(ctx context.Context, errorType string) (int64, error)
	CountByErrorTypeBetween(ctx context.Context, errorType string, from, to time.Time) (int64, error)
	CountGroupedByLevel(ctx context.Context) (map[string]int64, error)

	// DistinctErrorTypes returns the set of non-empty error types across all records
	DistinctErrorTypes(ctx context.Context) ([]string, error)

	// FindLinkedToTicketsWithStatus returns records whose linked ticket currently has status
	FindLinkedToTicketsWithStatus(ctx context.Context, status models.TicketStatus) ([]*models.LogRecord, error)

	LinkTicket(ctx context.Context, recordID, ticketID string) error
}

// TicketStorage persists tickets
type TicketStorage interface {
	Save(ctx context.Context, ticket *models.Ticket) error
	Get(ctx context.Context, id string) (*models.Ticket, error)
	List(ctx context.Context) ([]*models.Ticket, error)
	ListByStatus(ctx context.Context, status models.TicketStatus) ([]*models.Ticket, error)
	ListByAssigneeOrReviewer(ctx context.Context, userID string) ([]*models.Ticket, error)
}

// UserStorage is the user directory
type UserStorage interface {
	Save(ctx context.Context, user *models.User) error
	Get(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context) ([]*models.User, error)
	FindAllByRole(ctx context.Context, role models.Role) ([]*models.User, error)
}

// StorageManager - composite interface for all storage operations
type StorageManager interface {
	LogRecordStorage() LogRecordStorage
	TicketStorage() TicketStorage
	UserStorage() UserStorage

	// LoadUsersFromFile seeds the user directory from a TOML or YAML file
	LoadUsersFromFile(ctx context.Context, path string) (int, error)

	DB() interface{}
	Close() error
}
