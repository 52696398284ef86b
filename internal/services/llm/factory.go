package llm

import (
	"context"
	"fmt"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/common"
	"github.com/jeevanmalviyayash/LogAnalyzer/internal/interfaces"
	"github.com/ternarybob/arbor"
)

// NewLLMService creates the provider selected by ai.provider
func NewLLMService(ctx context.Context, cfg *common.Config, logger arbor.ILogger) (interfaces.LLMService, error) {
	logger.Info().Str("provider", string(cfg.AI.Provider)).Msg("Initializing LLM service")

	switch cfg.AI.Provider {
	case common.AIProviderClaude, "":
		return NewClaudeService(cfg.Claude, cfg.AI, logger)
	case common.AIProviderGemini:
		return NewGeminiService(ctx, cfg.Gemini, cfg.AI, logger)
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", cfg.AI.Provider)
	}
}
