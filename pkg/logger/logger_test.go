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
	assert.Equal(t, zerolog.DebugLevel, parseLevel("debug"))
	assert.Equal(t, zerolog.WarnLevel, parseLevel(" WARN "))
	assert.Equal(t, zerolog.InfoLevel, parseLevel(""))
	assert.Equal(t, zerolog.InfoLevel, parseLevel("verboso"))
}

func TestComponent_AgregaCamposFijos(t *testing.T) {
	var buf bytes.Buffer
	log := New(Config{Env: "production", Level: "info", Service: "ventas-api", Output: &buf})

	log.Component("sales").Info().Str("sale_id", "s-1").Msg("venta registrada")
	log.Debug().Msg("descartado por nivel")

	var line map[string]any
	require.NoError(t, json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &line), "una sola línea JSON")
	assert.Equal(t, "ventas-api", line["service"])
	assert.Equal(t, "sales", line["component"])
	assert.Equal(t, "s-1", line["sale_id"])
	assert.Equal(t, "venta registrada", line["message"])
}
