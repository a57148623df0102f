package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogger_JSONOutput(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "info", Format: "json", Output: buf})

	log.Info("inferring schema")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "info", entry["level"])
	assert.Equal(t, "inferring schema", entry["message"])
	assert.NotEmpty(t, entry["time"])
}

func TestLogger_LevelFiltering(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "warn", Format: "json", Output: buf})

	log.Debug("hidden")
	log.Info("hidden")
	assert.Empty(t, buf.String())

	log.Warn("shown")
	assert.Contains(t, buf.String(), "shown")
}

func TestLogger_WithFields(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "debug", Format: "json", Output: buf})

	child := log.With().Str("table", "users").Int("columns", 3).Logger()
	child.Debug("columns loaded")

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "users", entry["table"])
	assert.Equal(t, float64(3), entry["columns"])
}

func TestLogger_ErrorWith(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "info", Format: "json", Output: buf})

	log.ErrorWith("inference failed", errors.New("boom"), map[string]string{"schema": "public"})

	var entry map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.Equal(t, "error", entry["level"])
	assert.Equal(t, "boom", entry["error"])
	assert.Equal(t, "public", entry["schema"])
}

func TestContextRoundTrip(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "info", Format: "json", Output: buf})

	ctx := log.WithContext(context.Background())
	FromContext(ctx).Info("from context")
	assert.Contains(t, buf.String(), "from context")

	// A bare context yields a logger that writes nothing and does not panic.
	FromContext(context.Background()).Info("dropped")
}

func TestNop(t *testing.T) {
	assert.NotPanics(t, func() {
		Nop().Warn("ignored")
	})
}

func TestConsoleNoColor(t *testing.T) {
	buf := &bytes.Buffer{}
	log := New(&Config{Level: "info", Format: "console", Output: buf, NoColor: true})

	log.With().Str("table", "users").Logger().Info("inspected")
	assert.Contains(t, buf.String(), "inspected")
	assert.Contains(t, buf.String(), "table=users")
	assert.NotContains(t, buf.String(), "\x1b[")
}

func TestNewDefaults(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "info", cfg.Level)
	assert.Equal(t, "json", cfg.Format)

	buf := &bytes.Buffer{}
	cfg.Output = buf
	log := New(cfg)
	log.Debug("hidden")
	log.Info("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"message":"shown"`)
}
