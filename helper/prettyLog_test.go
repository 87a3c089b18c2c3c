package helper

import (
	"bytes"
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPrettyHandler(t *testing.T) {
	t.Run("Create PrettyHandler with default options", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		require.NotNil(t, handler, "Expected NewPrettyHandler to return a non-nil handler")
		assert.NotNil(t, handler.Handler, "Expected handler to have a non-nil Handler field")
		assert.NotNil(t, handler.l, "Expected handler to have a non-nil logger field")
	})
}

func TestPrettyHandlerHandle(t *testing.T) {
	ctx := context.Background()

	levels := []struct {
		level  slog.Level
		prefix string
	}{
		{slog.LevelDebug, "DEBUG:"},
		{slog.LevelInfo, "INFO:"},
		{slog.LevelWarn, "WARN:"},
		{slog.LevelError, "ERROR:"},
	}
	for _, tc := range levels {
		t.Run("Handle "+tc.prefix+" record", func(t *testing.T) {
			var buf bytes.Buffer
			handler := NewPrettyHandler(&buf, PrettyHandlerOptions{
				SlogOpts: slog.HandlerOptions{Level: slog.LevelDebug},
			})

			record := slog.NewRecord(time.Now(), tc.level, "cluster created", 0)
			record.AddAttrs(slog.String("cluster_id", "P1"), slog.Int("mentions", 3))

			err := handler.Handle(ctx, record)
			assert.NoError(t, err, "Expected Handle to not return an error")

			output := buf.String()
			assert.Contains(t, output, tc.prefix, "Expected output to contain the level")
			assert.Contains(t, output, "cluster created", "Expected output to contain the message")
			assert.Contains(t, output, "cluster_id", "Expected output to contain attribute key")
			assert.Contains(t, output, "P1", "Expected output to contain attribute value")
			assert.Regexp(t, `\[\d{2}:\d{2}:\d{2}\.\d{3}\]`, output, "Expected output to contain formatted timestamp")
		})
	}

	t.Run("Handle record without attributes", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		err := handler.Handle(ctx, slog.NewRecord(time.Now(), slog.LevelInfo, "seeded senders", 0))
		assert.NoError(t, err)
		assert.Contains(t, buf.String(), "{}", "Expected output to contain empty JSON object for attributes")
	})

	t.Run("Handle record with group attribute", func(t *testing.T) {
		var buf bytes.Buffer
		handler := NewPrettyHandler(&buf, PrettyHandlerOptions{})

		record := slog.NewRecord(time.Now(), slog.LevelInfo, "grouped", 0)
		record.AddAttrs(slog.Group("email", slog.String("message_id", "m1")))

		err := handler.Handle(ctx, record)
		assert.NoError(t, err)
		assert.Contains(t, buf.String(), "message_id")
		assert.Contains(t, buf.String(), "m1")
	})
}

func TestNewLogger(t *testing.T) {
	t.Run("Logger filters records below its level", func(t *testing.T) {
		var buf bytes.Buffer
		logger := NewLogger(&buf, slog.LevelInfo)

		logger.Debug("hidden")
		logger.Info("visible", slog.String("key", "value"))

		assert.NotContains(t, buf.String(), "hidden", "Expected debug record to be filtered")
		assert.Contains(t, buf.String(), "visible")
		assert.Contains(t, buf.String(), "value")
	})
}
