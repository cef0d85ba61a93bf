package logger_test

import (
	"bytes"
	"log/slog"
	"testing"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/the-dev-tools/ordering/pkg/logger"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in      string
		want    slog.Level
		wantErr bool
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: "INFO", want: slog.LevelInfo},
		{in: "", want: slog.LevelInfo},
		{in: "WARNING", want: slog.LevelWarn},
		{in: "warn", want: slog.LevelWarn},
		{in: "Error", want: slog.LevelError},
		{in: "verbose", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := logger.ParseLevel(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNew_JSON(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(&buf, "info", logger.FormatJSON)
	require.NoError(t, err)

	log.Debug("hidden")
	log.Info("Moved item", "scope", "board", "position", 2)

	var record map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &record))
	assert.Equal(t, "Moved item", record["msg"])
	assert.Equal(t, "board", record["scope"])
	assert.EqualValues(t, 2, record["position"])
}

func TestNew_Text(t *testing.T) {
	var buf bytes.Buffer
	log, err := logger.New(&buf, "warn", "")
	require.NoError(t, err)

	log.Info("hidden")
	log.Warn("Append integrity warning", "scope", "board")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "scope=board")

	_, err = logger.New(&buf, "info", "xml")
	assert.Error(t, err)
}
