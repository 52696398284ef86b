// Package aifix asks the configured LLM provider for a fix suggestion under a bounded retry policy.
package aifix

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/common"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/interfaces"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/models"
	"github.com/ternarybob/arbor"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/time/rate"
)

const (
	// LanguageSuffix is appended to the last user message
	LanguageSuffix = "Provide solution only in english language "

	// NoResponseContent replaces an empty provider reply
	NoResponseContent = "*** NO RESPONSE ***"
)

// Policy bounds each suggestion request
type Policy struct {
	Timeout    time.Duration // per attempt
	MaxRetries int           // retries after the first attempt
	RetryDelay time.Duration // fixed delay between attempts
	RateLimit  time.Duration // minimum interval between provider calls, 0 disables throttling
}

// PolicyFromConfig parses the duration fields of cfg
func PolicyFromConfig(cfg common.AIConfig) (Policy, error) {
	timeout, err := common.ParseDuration(cfg.Timeout, 9*time.Second)
	if err != nil {
		return Policy{}, fmt.Errorf("ai.timeout: %w", err)
	}
	delay, err := common.ParseDuration(cfg.RetryDelay, 500*time.Millisecond)
	if err != nil {
		return Policy{}, fmt.Errorf("ai.retry_delay: %w", err)
	}
	limit, err := common.ParseDuration(cfg.RateLimit, 0)
	if err != nil {
		return Policy{}, fmt.Errorf("ai.rate_limit: %w", err)
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	return Policy{Timeout: timeout, MaxRetries: retries, RetryDelay: delay, RateLimit: limit}, nil
}

// Service implements interfaces.AIFixService
type Service struct {
	llm      interfaces.LLMService
	policy   Policy
	role     string
	limiter  *rate.Limiter
	validate *validator.Validate
	markdown goldmark.Markdown
	logger   arbor.ILogger
}

// NewService creates the fix suggestion service. llm may be nil when no provider is configured;
// every request then fails with a structured response.
func NewService(llm interfaces.LLMService, policy Policy, role string, logger arbor.ILogger) *Service {
	if role == "" {
		role = "assistant"
	}
	s := &Service{
		llm:      llm,
		policy:   policy,
		role:     role,
		validate: validator.New(),
		markdown: goldmark.New(
			goldmark.WithExtensions(extension.Table, extension.Strikethrough, extension.Linkify),
		),
		logger: logger,
	}
	if policy.RateLimit > 0 {
		s.limiter = rate.NewLimiter(rate.Every(policy.RateLimit), 1)
	}
	return s
}

// Suggest returns a fix suggestion. It never returns nil and never surfaces an error;
// failures are reported with status Failed and a diagnostic in Content.
func (s *Service) Suggest(ctx context.Context, req *models.AIFixRequest) *models.AIFixResponse {
	if req == nil {
		return s.failed("", 0, errors.New("request is required"))
	}
	if err := s.validate.Struct(req); err != nil {
		return s.failed(req.Model, 0, fmt.Errorf("invalid request: %w", err))
	}
	if s.llm == nil {
		return s.failed(req.Model, 0, errors.New("AI provider is not configured"))
	}

	model := req.Model
	if model == "" {
		model = s.llm.DefaultModel()
	}
	messages := buildMessages(req.Messages)
	opts := interfaces.ChatOptions{
		Model:       model,
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}

	reply, attempts, err := s.callWithRetry(ctx, messages, opts)
	if err != nil {
		s.logger.Error().
			Str("provider", s.llm.Name()).
			Str("model", model).
			Int("attempts", attempts).
			Err(err).
			Msg("AI call failed")
		return s.failed(model, attempts, err)
	}

	content := reply
	if strings.TrimSpace(content) == "" {
		content = NoResponseContent
	}

	return &models.AIFixResponse{
		Status:      models.AIFixStatusSuccess,
		Role:        s.role,
		Content:     content,
		ContentHTML: s.renderHTML(content),
		Model:       model,
		Attempts:    attempts,
	}
}

// callWithRetry runs up to 1+MaxRetries attempts, each bounded by Timeout.
// Only transient errors are retried.
func (s *Service) callWithRetry(ctx context.Context, messages []interfaces.Message, opts interfaces.ChatOptions) (string, int, error) {
	maxAttempts := s.policy.MaxRetries + 1
	var lastErr error

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if s.limiter != nil {
			if err := s.limiter.Wait(ctx); err != nil {
				return "", attempt - 1, fmt.Errorf("rate limiter: %w", err)
			}
		}

		reply, err := s.attempt(ctx, messages, opts)
		if err == nil {
			return reply, attempt, nil
		}
		lastErr = err

		if !IsTransient(err) || attempt == maxAttempts {
			return "", attempt, lastErr
		}

		s.logger.Warn().
			Int("attempt", attempt).
			Dur("delay", s.policy.RetryDelay).
			Err(err).
			Msg("Retrying AI call")

		select {
		case <-ctx.Done():
			return "", attempt, ctx.Err()
		case <-time.After(s.policy.RetryDelay):
		}
	}

	return "", maxAttempts, lastErr
}

func (s *Service) attempt(ctx context.Context, messages []interfaces.Message, opts interfaces.ChatOptions) (string, error) {
	if s.policy.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.policy.Timeout)
		defer cancel()
	}
	return s.llm.Chat(ctx, messages, opts)
}

// IsTransient reports whether err is worth another attempt: a deadline, a timeout or a reset connection
func IsTransient(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "timeout") || strings.Contains(msg, "connection reset")
}

// buildMessages copies the conversation and appends the language instruction to the last user turn
func buildMessages(in []models.AIFixMessage) []interfaces.Message {
	out := make([]interfaces.Message, len(in))
	last := -1
	for i, m := range in {
		out[i] = interfaces.Message{Role: strings.ToLower(strings.TrimSpace(m.Role)), Content: m.Content}
		if out[i].Role == "user" {
			last = i
		}
	}
	if last >= 0 {
		out[last].Content = out[last].Content + "\n\n" + LanguageSuffix
	}
	return out
}

func (s *Service) renderHTML(content string) string {
	var buf bytes.Buffer
	if err := s.markdown.Convert([]byte(content), &buf); err != nil {
		s.logger.Warn().Err(err).Msg("Failed to render suggestion markdown")
		return ""
	}
	return buf.String()
}

func (s *Service) failed(model string, attempts int, err error) *models.AIFixResponse {
	return &models.AIFixResponse{
		Status:   models.AIFixStatusFailed,
		Role:     s.role,
		Content:  err.Error(),
		Model:    model,
		Attempts: attempts,
	}
}
