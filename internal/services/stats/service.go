// Package stats answers the dashboard aggregation queries.
// Every call recomputes "now"; nothing is cached.
package stats

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/interfaces"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/models"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/services/logparser"
	"github.com/ternarybob/arbor"
)

const (
	DefaultDailyCountDays    = 10
	DefaultCategoryStatsDays = 30
)

// Service implements the aggregation queries over LogRecordStorage
type Service struct {
	storage  interfaces.LogRecordStorage
	location *time.Location
	logger   arbor.ILogger
	now      func() time.Time
}

// NewService creates a stats service. Calendar days are evaluated in loc.
func NewService(storage interfaces.LogRecordStorage, loc *time.Location, logger arbor.ILogger) *Service {
	if loc == nil {
		loc = time.Local
	}
	return &Service{
		storage:  storage,
		location: loc,
		logger:   logger,
		now:      time.Now,
	}
}

// AllLogs returns every record newest first
func (s *Service) AllLogs(ctx context.Context) ([]*models.LogRecord, error) {
	return s.storage.FindAll(ctx)
}

// LogsLastNDays returns records in [now-days, now] newest first
func (s *Service) LogsLastNDays(ctx context.Context, days int) ([]*models.LogRecord, error) {
	if days < 0 {
		return nil, fmt.Errorf("days must not be negative: %d", days)
	}
	now := s.now()
	return s.storage.FindByTimeRange(ctx, now.AddDate(0, 0, -days), now)
}

// DailyErrorCounts returns per-day counts from the start of (today - (days-1))
// to the end of today, ascending. days <= 0 uses DefaultDailyCountDays.
func (s *Service) DailyErrorCounts(ctx context.Context, days int) ([]models.DailyErrorCount, error) {
	if days <= 0 {
		days = DefaultDailyCountDays
	}

	today := startOfDay(s.now().In(s.location))
	from := today.AddDate(0, 0, -(days - 1))
	to := today.AddDate(0, 0, 1).Add(-time.Nanosecond)

	return s.storage.CountGroupedByDay(ctx, from, to, s.location)
}

// ErrorCategoryStats maps per-error-type counts in [now-days, now] to display
// categories, merges rows that land on the same category, and sorts by count desc.
// A row without an error type fails the whole query.
func (s *Service) ErrorCategoryStats(ctx context.Context, days int) ([]models.ErrorCategoryStat, error) {
	if days <= 0 {
		days = DefaultCategoryStatsDays
	}
	now := s.now()

	rows, err := s.storage.CountGroupedByErrorTypeBetween(ctx, now.AddDate(0, 0, -days), now)
	if err != nil {
		return nil, err
	}

	totals := make(map[string]int64)
	order := []string{}
	for _, row := range rows {
		category, err := logparser.NormalizeToDisplayCategory(row.ErrorType)
		if err != nil {
			s.logger.Error().Err(err).Int64("count", row.Count).Msg("Error category aggregation returned a row without an error type")
			return nil, fmt.Errorf("failed to map error category: %w", err)
		}
		if _, seen := totals[category]; !seen {
			order = append(order, category)
		}
		totals[category] += row.Count
	}

	stats := make([]models.ErrorCategoryStat, 0, len(order))
	for _, category := range order {
		stats = append(stats, models.ErrorCategoryStat{Category: category, Count: totals[category]})
	}
	sort.SliceStable(stats, func(i, j int) bool {
		return stats[i].Count > stats[j].Count
	})
	return stats, nil
}

// CountByErrorType returns unfiltered per-error-type counts
func (s *Service) CountByErrorType(ctx context.Context) ([]models.ErrorTypeCount, error) {
	return s.storage.CountGroupedByErrorType(ctx)
}

// CountErrorTypeInWindow counts records of errorType in [now-days, now].
// days <= 0 counts across all time.
func (s *Service) CountErrorTypeInWindow(ctx context.Context, errorType string, days int) (int64, error) {
	if days <= 0 {
		return s.storage.CountByErrorType(ctx, errorType)
	}
	now := s.now()
	return s.storage.CountByErrorTypeBetween(ctx, errorType, now.AddDate(0, 0, -days), now)
}

// CountByLevel returns per-level counts
func (s *Service) CountByLevel(ctx context.Context) (map[string]int64, error) {
	return s.storage.CountGroupedByLevel(ctx)
}

// ChartData returns error-type labels and counts for the dashboard chart
func (s *Service) ChartData(ctx context.Context) (*models.ChartData, error) {
	rows, err := s.storage.CountGroupedByErrorType(ctx)
	if err != nil {
		return nil, err
	}

	data := &models.ChartData{
		Labels: make([]string, 0, len(rows)),
		Counts: make([]int64, 0, len(rows)),
	}
	for _, row := range rows {
		label := models.UnknownErrorType
		if row.ErrorType != nil {
			label = *row.ErrorType
		}
		data.Labels = append(data.Labels, label)
		data.Counts = append(data.Counts, row.Count)
	}
	return data, nil
}

func startOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}
