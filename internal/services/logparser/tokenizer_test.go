package logparser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenize_ErrorLineKeepsEmbeddedColon(t *testing.T) {
	line := "2025-01-15T10:30:00+05:30 ERROR 123 --- [t] [l] com.x.Y : msg: detail"

	fields, ok := Tokenize(line)
	require.True(t, ok)

	assert.Equal(t, "2025-01-15T10:30:00+05:30", fields.Timestamp)
	assert.Equal(t, "ERROR", fields.Level)
	assert.Equal(t, "com.x.Y", fields.Source)
	assert.Equal(t, "msg: detail", fields.Message)
}

func TestTokenize_AllLevels(t *testing.T) {
	for _, level := range []string{"INFO", "WARN", "ERROR", "DEBUG"} {
		t.Run(level, func(t *testing.T) {
			line := "2025-01-15T10:30:00Z " + level + " 42 --- [main] [app] com.example.Service : started"
			fields, ok := Tokenize(line)
			require.True(t, ok)
			assert.Equal(t, level, fields.Level)
			assert.Equal(t, "started", fields.Message)
		})
	}
}

func TestTokenize_BracketedSpansWithSpaces(t *testing.T) {
	line := "2025-01-15T10:30:00Z ERROR 7 --- [http-nio-8080-exec-1] [request id=abc] com.example.Api : java.lang.IllegalStateException: boom [x]"

	fields, ok := Tokenize(line)
	require.True(t, ok)
	assert.Equal(t, "com.example.Api", fields.Source)
	assert.Equal(t, "java.lang.IllegalStateException: boom [x]", fields.Message)
}

func TestTokenize_NoMatch(t *testing.T) {
	lines := []string{
		"not a log line",
		"",
		"\tat com.example.Service.run(Service.java:42)",
		"2025-01-15T10:30:00Z TRACE 1 --- [t] [l] com.x.Y : msg",
		"2025-01-15T10:30:00Z ERROR abc --- [t] [l] com.x.Y : msg",
		"2025-01-15T10:30:00Z ERROR 1 [t] [l] com.x.Y : msg",
		"2025-01-15T10:30:00Z ERROR 1 --- [t] [l] com.x.Y msg",
	}

	for _, line := range lines {
		_, ok := Tokenize(line)
		assert.False(t, ok, "line %q should not match", line)
	}
}

func TestTokenize_TimestampNotValidated(t *testing.T) {
	fields, ok := Tokenize("yesterday ERROR 1 --- [t] [l] com.x.Y : msg")
	require.True(t, ok)
	assert.Equal(t, "yesterday", fields.Timestamp)
}
