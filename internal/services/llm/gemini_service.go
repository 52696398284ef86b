package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/common"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/interfaces"
	"github.com/ternarybob/arbor"
	"google.golang.org/genai"
)

const defaultGeminiModel = "gemini-2.5-flash"

// GeminiService implements the LLMService interface using Google Gemini API
type GeminiService struct {
	model       string
	temperature float64
	maxTokens   int
	logger      arbor.ILogger
	client      *genai.Client
}

// NewGeminiService creates a new Gemini LLM service instance
func NewGeminiService(ctx context.Context, geminiConfig common.GeminiConfig, aiConfig common.AIConfig, logger arbor.ILogger) (*GeminiService, error) {
	if strings.TrimSpace(geminiConfig.APIKey) == "" {
		return nil, fmt.Errorf("Gemini API key is required for Gemini service (set via GEMINI_API_KEY, LOGANALYZER_GEMINI_API_KEY, or gemini.api_key in config)")
	}

	model := geminiConfig.Model
	if model == "" {
		model = defaultGeminiModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  geminiConfig.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	logger.Debug().
		Str("model", model).
		Float64("temperature", aiConfig.Temperature).
		Int("max_tokens", aiConfig.MaxTokens).
		Msg("Gemini LLM service initialized successfully")

	return &GeminiService{
		model:       model,
		temperature: aiConfig.Temperature,
		maxTokens:   aiConfig.MaxTokens,
		logger:      logger,
		client:      client,
	}, nil
}

// Chat sends the conversation to Gemini and returns the response text
func (s *GeminiService) Chat(ctx context.Context, messages []interfaces.Message, opts interfaces.ChatOptions) (string, error) {
	contents, systemText, err := convertMessagesToGemini(messages)
	if err != nil {
		return "", fmt.Errorf("failed to convert messages to Gemini format: %w", err)
	}

	model := opts.Model
	if model == "" {
		model = s.model
	}

	temperature := s.temperature
	if opts.Temperature != nil {
		temperature = *opts.Temperature
	}
	config := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(temperature)),
	}

	maxTokens := opts.MaxTokens
	if maxTokens <= 0 {
		maxTokens = s.maxTokens
	}
	if maxTokens > 0 {
		config.MaxOutputTokens = int32(maxTokens)
	}

	if systemText != "" {
		config.SystemInstruction = genai.NewContentFromText(systemText, genai.RoleUser)
	}

	startTime := time.Now()
	resp, err := s.client.Models.GenerateContent(ctx, model, contents, config)
	if err != nil {
		return "", fmt.Errorf("Gemini API call failed: %w", err)
	}

	var text string
	if resp != nil && len(resp.Candidates) > 0 {
		text = resp.Text()
	}

	s.logger.Debug().
		Str("model", model).
		Int("message_count", len(messages)).
		Int("response_length", len(text)).
		Dur("duration", time.Since(startTime)).
		Msg("Gemini chat completion completed")

	return text, nil
}

// Name returns the provider key
func (s *GeminiService) Name() string {
	return string(common.AIProviderGemini)
}

// DefaultModel returns the configured model
func (s *GeminiService) DefaultModel() string {
	return s.model
}

// Close releases resources. genai.Client doesn't require explicit Close.
func (s *GeminiService) Close() error {
	s.logger.Debug().Msg("Closing Gemini LLM service")
	s.client = nil
	return nil
}
