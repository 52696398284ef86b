// Package ingestion streams uploaded log files into error records.
package ingestion

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/common"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/interfaces"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/models"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/services/logparser"
	"github.com/klauspost/compress/gzip"
	"github.com/ternarybob/arbor"
)

var (
	// ErrMalformedTimestamp aborts an upload whose ERROR line carries an unparseable timestamp
	ErrMalformedTimestamp = errors.New("malformed timestamp")
	// ErrReadFailed wraps failures reading the upload stream
	ErrReadFailed = errors.New("failed to read log stream")
	// ErrInvalidUpload is returned when a file fails the upload gate
	ErrInvalidUpload = errors.New("invalid upload")
	// ErrEmptyMessage is returned for manual entries without a message
	ErrEmptyMessage = errors.New("error message cannot be empty")
)

const maxLineBytes = 1024 * 1024

// IngestResult counts what happened to an upload's lines
type IngestResult struct {
	LinesRead    int `json:"lines_read"`
	LinesMatched int `json:"lines_matched"`
	RecordsSaved int `json:"records_saved"`
}

// ManualErrorRequest is a user-entered error record
type ManualErrorRequest struct {
	Message   string     `json:"error_message" validate:"required"`
	Level     string     `json:"error_level,omitempty"`
	ErrorType string     `json:"error_type,omitempty"`
	Source    string     `json:"source,omitempty"`
	UserID    string     `json:"user_id,omitempty"`
	Timestamp *time.Time `json:"timestamp,omitempty"`
}

// Service converts log streams to persisted records
type Service struct {
	storage      interfaces.LogRecordStorage
	eventService interfaces.EventService
	config       common.UploadConfig
	validate     *validator.Validate
	logger       arbor.ILogger
	now          func() time.Time
}

// NewService creates an ingestion service. eventService may be nil.
func NewService(storage interfaces.LogRecordStorage, eventService interfaces.EventService, config common.UploadConfig, logger arbor.ILogger) *Service {
	return &Service{
		storage:      storage,
		eventService: eventService,
		config:       config,
		validate:     validator.New(),
		logger:       logger,
		now:          time.Now,
	}
}

// Ingest reads r line by line and persists every ERROR-level entry as it is seen.
//
// Lines that do not match the log grammar, and non-ERROR lines, are skipped.
// A malformed timestamp on an ERROR line stops the run with ErrMalformedTimestamp;
// records saved before that line remain. Stream failures return ErrReadFailed.
func (s *Service) Ingest(ctx context.Context, r io.Reader) (*IngestResult, error) {
	result := &IngestResult{}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxLineBytes)

	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.LinesRead++

		line := strings.TrimRight(scanner.Text(), "\r")
		if result.LinesRead == 1 {
			line = strings.TrimPrefix(line, "\ufeff")
		}

		fields, ok := logparser.Tokenize(line)
		if !ok {
			continue
		}
		result.LinesMatched++

		if fields.Level != models.LevelError {
			continue
		}

		timestamp, err := time.Parse(time.RFC3339Nano, fields.Timestamp)
		if err != nil {
			return result, fmt.Errorf("%w on line %d: %q: %v", ErrMalformedTimestamp, result.LinesRead, fields.Timestamp, err)
		}

		record := &models.LogRecord{
			Level:     fields.Level,
			Message:   fields.Message,
			Source:    fields.Source,
			Timestamp: timestamp,
			ErrorType: logparser.DetectErrorType(fields.Message),
		}
		if _, err := s.storage.Insert(ctx, record); err != nil {
			return result, fmt.Errorf("failed to save record from line %d: %w", result.LinesRead, err)
		}
		result.RecordsSaved++
		s.publish(ctx, interfaces.EventRecordIngested, record)
	}

	if err := scanner.Err(); err != nil {
		if errors.Is(err, ErrInvalidUpload) {
			return result, err
		}
		return result, fmt.Errorf("%w: %v", ErrReadFailed, err)
	}

	return result, nil
}

// IngestUpload gates an uploaded file by name and size, then ingests it.
// Files ending in .gz are decompressed and the inner name is gated again.
func (s *Service) IngestUpload(ctx context.Context, filename string, size int64, r io.Reader) (*IngestResult, error) {
	if err := s.checkUpload(filename, size); err != nil {
		return nil, err
	}

	reader := r
	if strings.EqualFold(filepath.Ext(filename), ".gz") {
		inner := strings.TrimSuffix(filename, filepath.Ext(filename))
		if err := s.checkExtension(inner, false); err != nil {
			return nil, err
		}

		gz, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("%w: not a valid gzip file: %v", ErrInvalidUpload, err)
		}
		defer gz.Close()

		// Bound the decompressed stream so a small archive cannot expand without limit
		reader = &capReader{r: gz, remaining: s.config.MaxSizeBytes * 10}
	}

	result, err := s.Ingest(ctx, reader)
	if err != nil {
		s.logger.Warn().Err(err).Str("file", filename).Int("records_saved", recordsSaved(result)).Msg("Log upload failed")
		return result, err
	}

	s.logger.Info().
		Str("file", filename).
		Int("lines_read", result.LinesRead).
		Int("records_saved", result.RecordsSaved).
		Msg("Log upload processed")

	s.publish(ctx, interfaces.EventUploadCompleted, map[string]interface{}{
		"file":          filename,
		"lines_read":    result.LinesRead,
		"records_saved": result.RecordsSaved,
	})
	return result, nil
}

func (s *Service) checkUpload(filename string, size int64) error {
	if size == 0 {
		return fmt.Errorf("%w: No file provided or file is empty.", ErrInvalidUpload)
	}
	if strings.TrimSpace(filename) == "" {
		return fmt.Errorf("%w: Filename is missing.", ErrInvalidUpload)
	}
	if err := s.checkExtension(filename, true); err != nil {
		return err
	}
	if s.config.MaxSizeBytes > 0 && size > s.config.MaxSizeBytes {
		return fmt.Errorf("%w: File too large. Max size is %dMB", ErrInvalidUpload, s.config.MaxSizeBytes/(1024*1024))
	}
	return nil
}

func (s *Service) checkExtension(filename string, allowArchive bool) error {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, allowed := range s.config.AllowedExtensions {
		allowed = strings.ToLower(allowed)
		if allowed == ".gz" && !allowArchive {
			continue
		}
		if ext == allowed {
			return nil
		}
	}
	return fmt.Errorf("%w: Invalid file type. Only .log and .txt files are accepted.", ErrInvalidUpload)
}

// SaveManualError stores a user-entered record.
// Level defaults to MANUAL, timestamp to now, and the error type is detected when not given.
func (s *Service) SaveManualError(ctx context.Context, req *ManualErrorRequest) (*models.LogRecord, error) {
	if req == nil || strings.TrimSpace(req.Message) == "" {
		return nil, ErrEmptyMessage
	}
	if err := s.validate.Struct(req); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidUpload, err)
	}

	record := &models.LogRecord{
		Level:     strings.TrimSpace(req.Level),
		Message:   req.Message,
		Source:    req.Source,
		UserID:    req.UserID,
		ErrorType: strings.TrimSpace(req.ErrorType),
	}
	if record.Level == "" {
		record.Level = models.LevelManual
	}
	if req.Timestamp != nil {
		record.Timestamp = *req.Timestamp
	} else {
		record.Timestamp = s.now()
	}
	if record.ErrorType == "" {
		record.ErrorType = logparser.DetectErrorType(req.Message)
	}

	if _, err := s.storage.Insert(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to save manual error: %w", err)
	}

	s.logger.Info().
		Str("record_id", record.ID).
		Str("error_type", record.ErrorType).
		Str("user_id", record.UserID).
		Msg("Manual error saved")

	s.publish(ctx, interfaces.EventRecordIngested, record)
	return record, nil
}

func (s *Service) publish(ctx context.Context, eventType interfaces.EventType, payload interface{}) {
	if s.eventService == nil {
		return
	}
	if err := s.eventService.Publish(ctx, interfaces.Event{Type: eventType, Payload: payload}); err != nil {
		s.logger.Warn().Err(err).Str("event", string(eventType)).Msg("Failed to publish event")
	}
}

func recordsSaved(result *IngestResult) int {
	if result == nil {
		return 0
	}
	return result.RecordsSaved
}

// capReader fails once more than remaining bytes have been read
type capReader struct {
	r         io.Reader
	remaining int64
}

func (c *capReader) Read(p []byte) (int, error) {
	if c.remaining <= 0 {
		return 0, fmt.Errorf("%w: decompressed file exceeds size limit", ErrInvalidUpload)
	}
	if int64(len(p)) > c.remaining {
		p = p[:c.remaining]
	}
	n, err := c.r.Read(p)
	c.remaining -= int64(n)
	return n, err
}
