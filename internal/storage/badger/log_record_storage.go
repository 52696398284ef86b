package badger

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/common"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/interfaces"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/models"
	"github.com/ternarybob/arbor"
	"github.com/timshannon/badgerhold/v4"
)

// LogRecordStorage implements the LogRecordStorage interface for Badger
type LogRecordStorage struct {
	db     *BadgerDB
	logger arbor.ILogger
}

// NewLogRecordStorage creates a new LogRecordStorage instance
func NewLogRecordStorage(db *BadgerDB, logger arbor.ILogger) interfaces.LogRecordStorage {
	return &LogRecordStorage{
		db:     db,
		logger: logger,
	}
}

// Insert stores a new record, assigning ID and CreatedAt when unset
func (s *LogRecordStorage) Insert(ctx context.Context, record *models.LogRecord) (string, error) {
	if record == nil {
		return "", fmt.Errorf("record is nil")
	}
	if record.ID == "" {
		record.ID = common.NewRecordID()
	}
	if record.CreatedAt.IsZero() {
		record.CreatedAt = time.Now()
	}

	if err := s.db.Store().Insert(record.ID, record); err != nil {
		return "", fmt.Errorf("failed to insert log record: %w", err)
	}
	return record.ID, nil
}

// Get retrieves a record by ID
func (s *LogRecordStorage) Get(ctx context.Context, id string) (*models.LogRecord, error) {
	var record models.LogRecord
	err := s.db.Store().Get(id, &record)
	if errors.Is(err, badgerhold.ErrNotFound) {
		return nil, fmt.Errorf("log record %s: %w", id, interfaces.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get log record: %w", err)
	}
	return &record, nil
}

// FindAll returns every record newest first
func (s *LogRecordStorage) FindAll(ctx context.Context) ([]*models.LogRecord, error) {
	var records []models.LogRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("ID").Ne("").SortBy("Timestamp").Reverse()); err != nil {
		return nil, fmt.Errorf("failed to list log records: %w", err)
	}
	return toRecordPtrs(records), nil
}

// FindByTimeRange returns records with Timestamp in [from, to] newest first
func (s *LogRecordStorage) FindByTimeRange(ctx context.Context, from, to time.Time) ([]*models.LogRecord, error) {
	var records []models.LogRecord
	if err := s.db.Store().Find(&records, windowQuery(from, to).SortBy("Timestamp").Reverse()); err != nil {
		return nil, fmt.Errorf("failed to find log records in range: %w", err)
	}
	return toRecordPtrs(records), nil
}

// CountGroupedByErrorType counts all records per error type
func (s *LogRecordStorage) CountGroupedByErrorType(ctx context.Context) ([]models.ErrorTypeCount, error) {
	return s.countByErrorType(badgerhold.Where("ID").Ne(""))
}

// CountGroupedByErrorTypeBetween counts records in [from, to] per error type
func (s *LogRecordStorage) CountGroupedByErrorTypeBetween(ctx context.Context, from, to time.Time) ([]models.ErrorTypeCount, error) {
	return s.countByErrorType(windowQuery(from, to))
}

func (s *LogRecordStorage) countByErrorType(query *badgerhold.Query) ([]models.ErrorTypeCount, error) {
	results, err := s.db.Store().FindAggregate(&models.LogRecord{}, query, "ErrorType")
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate log records by error type: %w", err)
	}

	counts := make([]models.ErrorTypeCount, 0, len(results))
	for _, result := range results {
		var errorType string
		result.Group(&errorType)

		row := models.ErrorTypeCount{Count: int64(result.Count())}
		// An empty key means the record was stored without classification
		if errorType != "" {
			row.ErrorType = &errorType
		}
		counts = append(counts, row)
	}

	sort.SliceStable(counts, func(i, j int) bool {
		return counts[i].Count > counts[j].Count
	})
	return counts, nil
}

// CountGroupedByDay buckets records in [from, to] by calendar day in loc, ascending.
// Days without records are omitted.
func (s *LogRecordStorage) CountGroupedByDay(ctx context.Context, from, to time.Time, loc *time.Location) ([]models.DailyErrorCount, error) {
	if loc == nil {
		loc = time.Local
	}

	var records []models.LogRecord
	if err := s.db.Store().Find(&records, windowQuery(from, to)); err != nil {
		return nil, fmt.Errorf("failed to find log records for daily counts: %w", err)
	}

	buckets := make(map[time.Time]int64)
	for _, record := range records {
		ts := record.Timestamp.In(loc)
		day := time.Date(ts.Year(), ts.Month(), ts.Day(), 0, 0, 0, 0, loc)
		buckets[day]++
	}

	counts := make([]models.DailyErrorCount, 0, len(buckets))
	for day, count := range buckets {
		counts = append(counts, models.DailyErrorCount{Date: day, Count: count})
	}
	sort.Slice(counts, func(i, j int) bool {
		return counts[i].Date.Before(counts[j].Date)
	})
	return counts, nil
}

// CountByErrorType counts all records with the given error type
func (s *LogRecordStorage) CountByErrorType(ctx context.Context, errorType string) (int64, error) {
	count, err := s.db.Store().Count(&models.LogRecord{}, badgerhold.Where("ErrorType").Eq(errorType))
	if err != nil {
		return 0, fmt.Errorf("failed to count log records for %s: %w", errorType, err)
	}
	return int64(count), nil
}

// CountByErrorTypeBetween counts records with the given error type in [from, to]
func (s *LogRecordStorage) CountByErrorTypeBetween(ctx context.Context, errorType string, from, to time.Time) (int64, error) {
	query := badgerhold.Where("ErrorType").Eq(errorType).
		And("Timestamp").Ge(from).
		And("Timestamp").Le(to)
	count, err := s.db.Store().Count(&models.LogRecord{}, query)
	if err != nil {
		return 0, fmt.Errorf("failed to count log records for %s in range: %w", errorType, err)
	}
	return int64(count), nil
}

// CountGroupedByLevel counts all records per level
func (s *LogRecordStorage) CountGroupedByLevel(ctx context.Context) (map[string]int64, error) {
	results, err := s.db.Store().FindAggregate(&models.LogRecord{}, badgerhold.Where("ID").Ne(""), "Level")
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate log records by level: %w", err)
	}

	counts := make(map[string]int64, len(results))
	for _, result := range results {
		var level string
		result.Group(&level)
		counts[level] = int64(result.Count())
	}
	return counts, nil
}

// DistinctErrorTypes returns the sorted set of non-empty error types
func (s *LogRecordStorage) DistinctErrorTypes(ctx context.Context) ([]string, error) {
	results, err := s.db.Store().FindAggregate(&models.LogRecord{}, badgerhold.Where("ErrorType").Ne(""), "ErrorType")
	if err != nil {
		return nil, fmt.Errorf("failed to list distinct error types: %w", err)
	}

	types := make([]string, 0, len(results))
	for _, result := range results {
		var errorType string
		result.Group(&errorType)
		types = append(types, errorType)
	}
	sort.Strings(types)
	return types, nil
}

// FindLinkedToTicketsWithStatus returns records whose linked ticket currently has status
func (s *LogRecordStorage) FindLinkedToTicketsWithStatus(ctx context.Context, status models.TicketStatus) ([]*models.LogRecord, error) {
	var tickets []models.Ticket
	if err := s.db.Store().Find(&tickets, badgerhold.Where("Status").Eq(status)); err != nil {
		return nil, fmt.Errorf("failed to find tickets with status %s: %w", status, err)
	}
	if len(tickets) == 0 {
		return []*models.LogRecord{}, nil
	}

	ticketIDs := make([]interface{}, 0, len(tickets))
	for _, ticket := range tickets {
		ticketIDs = append(ticketIDs, ticket.ID)
	}

	var records []models.LogRecord
	if err := s.db.Store().Find(&records, badgerhold.Where("LinkedTicketID").In(ticketIDs...)); err != nil {
		return nil, fmt.Errorf("failed to find records linked to %s tickets: %w", status, err)
	}
	return toRecordPtrs(records), nil
}

// LinkTicket attaches ticketID to the record
func (s *LogRecordStorage) LinkTicket(ctx context.Context, recordID, ticketID string) error {
	record, err := s.Get(ctx, recordID)
	if err != nil {
		return err
	}

	record.LinkedTicketID = ticketID
	if err := s.db.Store().Update(recordID, record); err != nil {
		return fmt.Errorf("failed to link ticket %s to record %s: %w", ticketID, recordID, err)
	}

	s.logger.Debug().Str("record_id", recordID).Str("ticket_id", ticketID).Msg("Linked ticket to log record")
	return nil
}

func windowQuery(from, to time.Time) *badgerhold.Query {
	return badgerhold.Where("Timestamp").Ge(from).And("Timestamp").Le(to)
}

func toRecordPtrs(records []models.LogRecord) []*models.LogRecord {
	out := make([]*models.LogRecord, len(records))
	for i := range records {
		out[i] = &records[i]
	}
	return out
}
