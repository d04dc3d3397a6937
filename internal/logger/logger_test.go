package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs(t *testing.T) {
	got := sanitizeKVs([]interface{}{
		"reading_id", 3,
		"email", "seeker@example.com",
		"smtp_password", "hunter2",
		"dangling",
	})

	assert.Equal(t, []interface{}{
		"reading_id", 3,
		"email", "[REDACTED]@example.com",
		"smtp_password", "[REDACTED]",
		"dangling",
	}, got)
}

func TestLoggerRedactsFields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	log := &Logger{SugaredLogger: zap.New(core).Sugar()}

	log.With("component", "mailer").Info("email sent", "email", "seeker@example.com")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "mailer", fields["component"])
		assert.Equal(t, "[REDACTED]@example.com", fields["email"])
	}
}
