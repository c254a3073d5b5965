package logger

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Property: production log entries are single JSON objects with level,
// timestamp and message
func TestProperty_LogsAreStructured(t *testing.T) {
	properties := gopter.NewProperties(nil)

	properties.Property("all log entries are in structured JSON format", prop.ForAll(
		func(message string, level string) bool {
			var buf bytes.Buffer
			logger := NewWithWriter("production", zapcore.DebugLevel, zapcore.AddSync(&buf))

			switch level {
			case "debug":
				logger.Debug(message)
			case "info":
				logger.Info(message)
			case "warn":
				logger.Warn(message)
			default:
				logger.Error(message)
			}

			var logEntry map[string]interface{}
			if err := json.Unmarshal(buf.Bytes(), &logEntry); err != nil {
				return false
			}

			if logEntry["level"] != level {
				return false
			}
			if _, ok := logEntry["timestamp"]; !ok {
				return false
			}
			return logEntry["msg"] == message
		},
		gen.AnyString(),
		gen.OneConstOf("debug", "info", "warn", "error"),
	))

	properties.TestingRun(t, gopter.ConsoleReporter(false))
}

func TestErrorLogsIncludeContextAndStacktrace(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("production", zapcore.DebugLevel, zapcore.AddSync(&buf))

	logger.Error("Failed to seed baseline catalog", zap.Error(errors.New("disk full")))

	var logEntry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logEntry))
	assert.Equal(t, "disk full", logEntry["error"])
	assert.Contains(t, logEntry, "stacktrace")
	assert.Contains(t, logEntry, "caller")
}

func TestDevelopmentLogsAreConsole(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter("development", zapcore.DebugLevel, zapcore.AddSync(&buf))

	logger.Info("Server starting", zap.String("port", "8080"))

	out := buf.String()
	assert.False(t, json.Valid([]byte(strings.TrimSpace(out))))
	assert.Contains(t, out, "INFO")
	assert.Contains(t, out, "Server starting")
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		env, level string
		want       zapcore.Level
		wantErr    bool
	}{
		{"production", "", zapcore.InfoLevel, false},
		{"development", "", zapcore.DebugLevel, false},
		{"production", "WARN", zapcore.WarnLevel, false},
		{"development", "error", zapcore.ErrorLevel, false},
		{"development", "loud", zapcore.InfoLevel, true},
	}

	for _, tt := range tests {
		t.Run(tt.env+"/"+tt.level, func(t *testing.T) {
			got, err := ParseLevel(tt.env, tt.level)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew(t *testing.T) {
	for _, env := range []string{"production", "development"} {
		logger, err := New(env, "")
		require.NoError(t, err)
		require.NotNil(t, logger)
	}

	_, err := New("production", "loud")
	assert.Error(t, err)
}
