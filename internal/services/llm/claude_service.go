package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/common"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/interfaces"
	"github.com/ternarybob/arbor"
)

const defaultClaudeModel = "claude-haiku-4-5"

// ClaudeService implements the LLMService interface using Anthropic Claude API.
type ClaudeService struct {
	model       string
	temperature float64
	maxTokens   int
	logger      arbor.ILogger
	client      anthropic.Client
}

// NewClaudeService creates a new Claude LLM service instance.
// The SDK's own retry loop is disabled; retries are decided by the caller.
func NewClaudeService(claudeConfig common.ClaudeConfig, aiConfig common.AIConfig, logger arbor.ILogger) (*ClaudeService, error) {
	if strings.TrimSpace(claudeConfig.APIKey) == "" {
		return nil, fmt.Errorf("Anthropic API key is required for Claude service (set via ANTHROPIC_API_KEY, LOGANALYZER_CLAUDE_API_KEY, or claude.api_key in config)")
	}

	model := claudeConfig.Model
	if model == "" {
		model = defaultClaudeModel
	}

	maxTokens := aiConfig.MaxTokens
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	client := anthropic.NewClient(
		option.WithAPIKey(claudeConfig.APIKey),
		option.WithMaxRetries(0),
	)

	logger.Debug().
		Str("model", model).
		Float64("temperature", aiConfig.Temperature).
		Int("max_tokens", maxTokens).
		Msg("Claude LLM service initialized successfully")

	return &ClaudeService{
		model:       model,
		temperature: aiConfig.Temperature,
		maxTokens:   maxTokens,
		logger:      logger,
		client:      client,
	}, nil
}

// Chat sends the conversation to Claude and returns the concatenated text blocks.
func (s *ClaudeService) Chat(ctx context.Context, messages []interfaces.Message, opts interfaces.ChatOptions) (string, error) {
	claudeMessages, systemText, err := convertMessagesToClaude(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages to Claude format: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = s.model
	}
	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.maxTokens
	}

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: int64(maxTokens),
		Messages:  claudeMessages,
	}

	temperature := s.temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	if temperature > 0 {
		params.Temperature = anthropic.Float(temperature)
	}

	if systemText != "" {
		params.System = []anthropic.TextBlockParam{
			{Text: systemText},
		}
	}

	startTime := time.Now()
	resp, err := s.client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("Claude API call failed: %w", err)
	}

	var response strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			response.WriteString(block.Text)
		}
	}

	s.logger.Debug().
		Str("model", model).
		Int("message_count", len(messages)).
		Int("response_length", response.Len()).
		Dur("duration", time.Since(startTime)).
		Msg("Claude chat completion completed")

	return response.String(), nil
}

// Name returns the provider key
func (s *ClaudeService) Name() string {
	return string(common.AIProviderClaude)
}

// DefaultModel returns the configured model
func (s *ClaudeService) DefaultModel() string {
	return s.model
}

// Close releases resources. The Claude client needs no cleanup.
func (s *ClaudeService) Close() error {
	s.logger.Debug().Msg("Closing Claude LLM service")
	return nil
}
