package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestSanitizeKVs(t *testing.T) {
	got := sanitizeKVs([]interface{}{
		"doc_type", "cookie_policy",
		"contact_email", "a@acme.com",
		"phone_number", "02 9999 0000",
		"OPENAI_API_KEY", "sk-123",
		"dangling",
	})

	assert.Equal(t, []interface{}{
		"doc_type", "cookie_policy",
		"contact_email", "[REDACTED]",
		"phone_number", "[REDACTED]",
		"OPENAI_API_KEY", "[REDACTED]",
		"dangling",
	}, got)
}

func TestLoggerRedactsFields(t *testing.T) {
	core, logs := observer.New(zap.DebugLevel)
	l := &Logger{SugaredLogger: zap.New(core).Sugar()}

	l.With("request", "r1").Info("generating", "contact_email", "a@acme.com", "state", "RETRIEVING")

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		fields := entries[0].ContextMap()
		assert.Equal(t, "[REDACTED]", fields["contact_email"])
		assert.Equal(t, "RETRIEVING", fields["state"])
		assert.Equal(t, "r1", fields["request"])
	}
}

func TestNew(t *testing.T) {
	for _, mode := range []string{"dev", "prod"} {
		l, err := New(mode)
		assert.NoError(t, err)
		assert.NotNil(t, l)
	}
	Nop().Info("discarded")
}
