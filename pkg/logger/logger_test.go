package logger

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	assert.Equal(t, zerolog.DebugLevel, ParseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, ParseLevel("warn"))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, ParseLevel("ruido"))
}

func TestComponent_JSONConCampos(t *testing.T) {
	var buf bytes.Buffer
	l := New(Config{Env: "production", Level: "info", Output: &buf})

	log := l.Component("ledger")
	log.Info().Str("product_id", "p1").Msg("ajuste registrado")
	log.Debug().Msg("no debe aparecer")

	var entry map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry))
	assert.Equal(t, "ledger", entry["component"])
	assert.Equal(t, "p1", entry["product_id"])
	assert.Equal(t, "ajuste registrado", entry["message"])
	assert.Equal(t, "info", entry["level"])
}
