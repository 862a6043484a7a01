package logger

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected zapcore.Level
	}{
		{"debug", zapcore.DebugLevel},
		{"info", zapcore.InfoLevel},
		{"WARN", zapcore.WarnLevel},
		{"error", zapcore.ErrorLevel},
		{"unknown", zapcore.InfoLevel},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, parseLevel(tt.input))
		})
	}
}

func TestNew_WritesJSONToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "purchase.log")

	log, err := New(&Config{
		Level:       "info",
		ServiceName: "ticket-purchase-test",
		OutputPath:  path,
	})
	require.NoError(t, err)

	ctx := context.WithValue(context.Background(), PurchaseIDKey, "purchase-123")
	log.InfoContext(ctx, "purchase completed")
	require.NoError(t, log.Sync())

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal([]byte(strings.TrimSpace(string(data))), &entry))
	assert.Equal(t, "purchase completed", entry["message"])
	assert.Equal(t, "ticket-purchase-test", entry["service"])
	assert.Equal(t, "purchase-123", entry["purchase_id"])
}

func TestWithContext_NoFields(t *testing.T) {
	log := NewNop()
	assert.Same(t, log, log.WithContext(context.Background()))
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "ticket-purchase", cfg.ServiceName)
	assert.Equal(t, "stdout", cfg.OutputPath)
}
