// Package alerts runs the daily correlation of high-volume error types against open tickets
// and notifies administrators.
package alerts

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/common"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/interfaces"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/models"
	"github.com/ternarybob/arbor"
)

// JobName is the scheduler key of the alert job
const JobName = "error_alert"

// Stages recorded on a run result
const (
	StageDisabled       = "disabled"
	StageBelowThreshold = "below_threshold"
	StageNoOpenTickets  = "no_open_tickets"
	StageNoCorrelation  = "no_correlation"
	StageNoRecipients   = "no_recipients"
	StageSent           = "sent"
	StageFailed         = "failed"
)

const defaultSubject = "[ALERT] Error Threshold Exceeded in Log Analyzer"

// Job correlates error types above the threshold with open tickets and emails every admin
type Job struct {
	records  interfaces.LogRecordStorage
	users    interfaces.UserStorage
	notifier interfaces.Notifier
	events   interfaces.EventService
	config   common.AlertConfig
	loc      *time.Location
	logger   arbor.ILogger
	now      func() time.Time

	enabled atomic.Bool
	mu      sync.RWMutex
	last    *models.AlertRunResult
}

// NewJob creates the alert job. events may be nil.
func NewJob(
	records interfaces.LogRecordStorage,
	users interfaces.UserStorage,
	notifier interfaces.Notifier,
	events interfaces.EventService,
	config common.AlertConfig,
	loc *time.Location,
	logger arbor.ILogger,
) *Job {
	if loc == nil {
		loc = time.Local
	}
	if strings.TrimSpace(config.Subject) == "" {
		config.Subject = defaultSubject
	}
	j := &Job{
		records:  records,
		users:    users,
		notifier: notifier,
		events:   events,
		config:   config,
		loc:      loc,
		logger:   logger,
		now:      time.Now,
	}
	j.enabled.Store(config.Enabled)
	return j
}

// Enabled reports whether runs are currently allowed
func (j *Job) Enabled() bool {
	return j.enabled.Load()
}

// SetEnabled toggles the run gate; it takes effect on the next run
func (j *Job) SetEnabled(enabled bool) {
	j.enabled.Store(enabled)
	j.logger.Info().Bool("enabled", enabled).Msg("Alert job gate updated")
}

// LastResult returns the summary of the most recent run, or nil if none has happened
func (j *Job) LastResult() *models.AlertRunResult {
	j.mu.RLock()
	defer j.mu.RUnlock()
	if j.last == nil {
		return nil
	}
	copied := *j.last
	return &copied
}

// Handler adapts Run to the scheduler's job signature. Failures are contained in Run.
func (j *Job) Handler() func() error {
	return func() error {
		j.Run(context.Background())
		return nil
	}
}

// Run executes one correlation pass. It never returns an error; failures are logged and
// recorded on the result.
func (j *Job) Run(ctx context.Context) (result *models.AlertRunResult) {
	result = &models.AlertRunResult{RanAt: j.now().In(j.loc)}
	logger := j.logger.WithCorrelationId(common.NewCorrelationID())

	defer func() {
		if r := recover(); r != nil {
			logger.Error().
				Str("panic", fmt.Sprintf("%v", r)).
				Msg("PANIC RECOVERED in alert job")
			result.Stage = StageFailed
			result.Error = fmt.Sprintf("panic: %v", r)
		}
		j.mu.Lock()
		j.last = result
		j.mu.Unlock()
	}()

	if !j.Enabled() {
		result.Skipped = true
		result.Stage = StageDisabled
		logger.Info().Msg("Alert job disabled, skipping run")
		return result
	}

	if err := j.run(ctx, logger, result); err != nil {
		result.Stage = StageFailed
		result.Error = err.Error()
		logger.Error().Err(err).Msg("Alert job failed")
		return result
	}

	logger.Info().
		Str("stage", result.Stage).
		Int("sent", result.Sent).
		Int("failed", result.Failed).
		Msg("Alert job completed")
	return result
}

func (j *Job) run(ctx context.Context, logger arbor.ILogger, result *models.AlertRunResult) error {
	exceeding, err := j.typesOverThreshold(ctx)
	if err != nil {
		return err
	}
	if len(exceeding) == 0 {
		result.Stage = StageBelowThreshold
		logger.Debug().Int64("threshold", j.config.Threshold).Msg("No error type over threshold")
		return nil
	}

	open, err := j.openTicketTypes(ctx)
	if err != nil {
		return err
	}
	if len(open) == 0 {
		result.Stage = StageNoOpenTickets
		logger.Debug().Msg("No errors linked to open tickets")
		return nil
	}

	var alerting []models.AlertTypeCount
	for _, tc := range exceeding {
		if _, ok := open[tc.ErrorType]; ok {
			alerting = append(alerting, tc)
		}
	}
	if len(alerting) == 0 {
		result.Stage = StageNoCorrelation
		logger.Debug().Msg("No error type over threshold has an open ticket")
		return nil
	}

	sort.SliceStable(alerting, func(a, b int) bool {
		if alerting[a].Count != alerting[b].Count {
			return alerting[a].Count > alerting[b].Count
		}
		return alerting[a].ErrorType < alerting[b].ErrorType
	})
	var total int64
	for _, tc := range alerting {
		total += tc.Count
	}
	result.Types = alerting
	result.Total = total

	recipients, err := j.adminRecipients(ctx)
	if err != nil {
		return err
	}
	if len(recipients) == 0 {
		result.Stage = StageNoRecipients
		logger.Warn().Msg("No admin with an email address, alert not sent")
		return nil
	}
	result.Recipients = recipients

	html, text, err := render(newAlertView(j.config.ApplicationName, j.config.Threshold, alerting, total, result.RanAt))
	if err != nil {
		return err
	}

	for _, to := range recipients {
		if err := ctx.Err(); err != nil {
			return fmt.Errorf("alert run cancelled: %w", err)
		}
		if err := j.notifier.SendHTMLEmail(ctx, to, j.config.Subject, html, text); err != nil {
			result.Failed++
			logger.Error().Str("recipient", to).Err(err).Msg("Failed to send alert email")
			continue
		}
		result.Sent++
		logger.Info().Str("recipient", to).Msg("Alert email sent")
	}
	result.Stage = StageSent

	if result.Sent > 0 && j.events != nil {
		if err := j.events.Publish(ctx, interfaces.Event{Type: interfaces.EventAlertSent, Payload: *result}); err != nil {
			logger.Warn().Err(err).Msg("Failed to publish alert event")
		}
	}
	return nil
}

// typesOverThreshold counts every distinct error type over all time and keeps those strictly above the threshold
func (j *Job) typesOverThreshold(ctx context.Context) ([]models.AlertTypeCount, error) {
	types, err := j.records.DistinctErrorTypes(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list error types: %w", err)
	}

	var exceeding []models.AlertTypeCount
	for _, errorType := range types {
		if strings.TrimSpace(errorType) == "" {
			continue
		}
		count, err := j.records.CountByErrorType(ctx, errorType)
		if err != nil {
			return nil, fmt.Errorf("failed to count error type %q: %w", errorType, err)
		}
		if count > j.config.Threshold {
			exceeding = append(exceeding, models.AlertTypeCount{ErrorType: errorType, Count: count})
		}
	}
	return exceeding, nil
}

func (j *Job) openTicketTypes(ctx context.Context) (map[string]struct{}, error) {
	linked, err := j.records.FindLinkedToTicketsWithStatus(ctx, models.TicketStatusOpen)
	if err != nil {
		return nil, fmt.Errorf("failed to find records linked to open tickets: %w", err)
	}
	set := make(map[string]struct{}, len(linked))
	for _, record := range linked {
		if record == nil || record.ErrorType == "" {
			continue
		}
		set[record.ErrorType] = struct{}{}
	}
	return set, nil
}

func (j *Job) adminRecipients(ctx context.Context) ([]string, error) {
	admins, err := j.users.FindAllByRole(ctx, models.RoleAdmin)
	if err != nil {
		return nil, fmt.Errorf("failed to load admins: %w", err)
	}
	var recipients []string
	for _, admin := range admins {
		if admin == nil {
			continue
		}
		if email, ok := admin.ContactEmail(); ok {
			recipients = append(recipients, email)
		}
	}
	return recipients, nil
}
