package models

// AI fix result statuses
const (
	AIFixStatusSuccess = "Success"
	AIFixStatusFailed  = "Failed"
)

// AIFixMessage is one conversation turn
type AIFixMessage struct {
	Role    string `json:"role" validate:"required"`
	Content string `json:"content" validate:"required"`
}

// AIFixRequest asks the configured provider for a fix suggestion.
// Zero-valued model parameters fall back to configuration.
type AIFixRequest struct {
	Model       string         `json:"model,omitempty"`
	Messages    []AIFixMessage `json:"messages" validate:"required,min=1,dive"`
	Temperature *float64       `json:"temperature,omitempty"`
	MaxTokens   int            `json:"max_tokens,omitempty" validate:"gte=0"`
	Stream      bool           `json:"stream,omitempty"`
}

// AIFixResponse is always returned to callers, including on failure
type AIFixResponse struct {
	Status      string `json:"status"`
	Role        string `json:"role"`
	Content     string `json:"content"`
	ContentHTML string `json:"content_html,omitempty"`
	Model       string `json:"model,omitempty"`
	Attempts    int    `json:"attempts"`
}
