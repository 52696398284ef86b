package logparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectErrorType(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{"exception wins over colon", "java.lang.NullPointerException: x is null", "NullPointerException"},
		{"package prefix dropped", "caused by java.sql.SQLException while saving", "SQLException"},
		{"first exception used", "IOException wrapped in RuntimeException", "IOException"},
		{"colon fallback", "Network Timeout Error: upstream unreachable", "Network Timeout Error"},
		{"colon fallback trims", "  Validation Error  : field missing", "Validation Error"},
		{"first colon only", "Database Transaction Error: timeout: 30s", "Database Transaction Error"},
		{"leading colon falls through", ": nothing before", "Unknown Error"},
		{"blank before colon falls through", "   : nothing before", "Unknown Error"},
		{"no structure", "totally unstructured text", "Unknown Error"},
		{"empty", "", "Unknown Error"},
		{"suffix is case sensitive", "some exception happened", "Unknown Error"},
		{"suffix must end the word", "ExceptionHandler failed", "Unknown Error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, DetectErrorType(tt.message))
		})
	}
}

func TestNormalizeToDisplayCategory_FormatInsensitive(t *testing.T) {
	for _, raw := range []string{
		"database-transaction-error",
		"Database.Transaction.Error",
		"DATABASE_TRANSACTION_ERROR",
		"  Database Transaction Error ",
	} {
		raw := raw
		got, err := NormalizeToDisplayCategory(&raw)
		require.NoError(t, err)
		assert.Equal(t, "Database Transaction Error", got, "raw %q", raw)
	}
}

func TestNormalizeToDisplayCategory_Table(t *testing.T) {
	tests := map[string]string{
		"CONSTRAINT_VIOLATION_ERROR":   "Constraint Violation Error",
		"ConstraintViolationException": "Constraint Violation Error",
		"external service error":       "External Service Error",
		"validation-error":             "Validation Error",
		"Authentication Error":         "Authentication Error",
		"authorization.error":          "Authorization Error",
		"Network Timeout Error":        "Network Timeout Error",
		"NullPointerException":         "Null Pointer Error",
		"null pointer error":           "Null Pointer Error",
		"Unknown Error":                "Unknown Error",
		"SQLException":                 "Unknown Error",
		"":                             "Unknown Error",
		"   ":                          "Unknown Error",
	}

	for raw, want := range tests {
		raw := raw
		got, err := NormalizeToDisplayCategory(&raw)
		require.NoError(t, err)
		assert.Equal(t, want, got, "raw %q", raw)
	}
}

func TestNormalizeToDisplayCategory_NilIsError(t *testing.T) {
	_, err := NormalizeToDisplayCategory(nil)
	assert.ErrorIs(t, err, ErrNullErrorType)
}

func TestNormalizeCode(t *testing.T) {
	assert.Equal(t, "NETWORK_TIMEOUT_ERROR", NormalizeCode(" network timeout-error "))
	assert.Equal(t, "A_B_C", NormalizeCode("a.b c"))
}
