package logparser

import (
	"errors"
	"regexp"
	"strings"

	"github.com/jeevanmalviyayash/LogAnalyzer/internal/models"
)

// ErrNullErrorType is returned when a grouping row carries no error type.
// It signals a data-integrity problem upstream and is never defaulted.
var ErrNullErrorType = errors.New("error type is null")

var exceptionPattern = regexp.MustCompile(`\b[a-zA-Z0-9]+Exception\b`)

// DetectErrorType derives a short label from a message.
//
// An embedded exception name wins (package prefix dropped), then the text
// before the first colon, then models.UnknownErrorType.
func DetectErrorType(message string) string {
	if exception := exceptionPattern.FindString(message); exception != "" {
		return exception
	}

	if idx := strings.Index(message, ":"); idx > 0 {
		if label := strings.TrimSpace(message[:idx]); label != "" {
			return label
		}
	}

	return models.UnknownErrorType
}

// displayCategories maps normalized codes to dashboard labels.
// Codes not present here render as models.UnknownErrorType.
var displayCategories = map[string]string{
	"DATABASE_TRANSACTION_ERROR":   "Database Transaction Error",
	"CONSTRAINT_VIOLATION_ERROR":   "Constraint Violation Error",
	"CONSTRAINTVIOLATIONEXCEPTION": "Constraint Violation Error",
	"EXTERNAL_SERVICE_ERROR":       "External Service Error",
	"VALIDATION_ERROR":             "Validation Error",
	"AUTHENTICATION_ERROR":         "Authentication Error",
	"AUTHORIZATION_ERROR":          "Authorization Error",
	"NETWORK_TIMEOUT_ERROR":        "Network Timeout Error",
	"NULL_POINTER_ERROR":           "Null Pointer Error",
	"NULLPOINTEREXCEPTION":         "Null Pointer Error",
	"UNKNOWN_ERROR":                models.UnknownErrorType,
}

var codeReplacer = strings.NewReplacer(" ", "_", "-", "_", ".", "_")

// NormalizeCode upper-cases and trims raw, then maps space, hyphen and period to underscore
func NormalizeCode(raw string) string {
	return codeReplacer.Replace(strings.TrimSpace(strings.ToUpper(raw)))
}

// NormalizeToDisplayCategory maps a raw error type to its display category.
// A nil raw value is ErrNullErrorType; unknown or blank codes fall back to models.UnknownErrorType.
func NormalizeToDisplayCategory(raw *string) (string, error) {
	if raw == nil {
		return "", ErrNullErrorType
	}
	return DisplayCategory(*raw), nil
}

// DisplayCategory is NormalizeToDisplayCategory for values that cannot be null
func DisplayCategory(raw string) string {
	if category, ok := displayCategories[NormalizeCode(raw)]; ok {
		return category
	}
	return models.UnknownErrorType
}
