package interfaces

import (
	"context"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/models"
)

// AIFixService produces fix suggestions. It never returns an error;
// failures are reported in the response status.
type AIFixService interface {
	Suggest(ctx context.Context, req *models.AIFixRequest) *models.AIFixResponse
}
