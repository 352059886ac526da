package log_test

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tuanvumaihuynh/inventory-etl/internal/config"
	"github.com/tuanvumaihuynh/inventory-etl/internal/log"
	"github.com/tuanvumaihuynh/inventory-etl/pkg/runid"
)

func TestNew(t *testing.T) {
	t.Run("Should add run id to JSON records", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf, config.Log{Format: config.LogFormatJSON, Level: slog.LevelInfo})

		ctx := runid.NewContext(context.Background(), "0199f0a2-run")
		logger.With(slog.String("service", "etl")).InfoContext(ctx, "snapshot built", slog.Int("rows", 3))

		var rec map[string]any
		require.NoError(t, json.Unmarshal(buf.Bytes(), &rec))
		assert.Equal(t, "snapshot built", rec["msg"])
		assert.Equal(t, "0199f0a2-run", rec["run_id"])
		assert.Equal(t, "etl", rec["service"])
		assert.EqualValues(t, 3, rec["rows"])
		assert.NotContains(t, rec, "trace_id")
	})

	t.Run("Should respect level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := log.New(&buf, config.Log{Format: config.LogFormatText, Level: slog.LevelWarn})

		logger.Info("ignored")
		assert.Empty(t, buf.String())

		logger.Warn("kept")
		assert.Contains(t, buf.String(), "kept")
	})
}

func TestLogFormatUnmarshalText(t *testing.T) {
	var f config.LogFormat
	require.NoError(t, f.UnmarshalText([]byte("text")))
	assert.Equal(t, config.LogFormatText, f)

	assert.Error(t, f.UnmarshalText([]byte("xml")))
}
