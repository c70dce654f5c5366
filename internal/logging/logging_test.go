package logging

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWithWriter(t *testing.T) {
	var buf bytes.Buffer
	logger := Component(NewWithWriter(&buf, "warn", false), "ledger")

	logger.Info().Msg("hidden")
	logger.Warn().Str("item", "inv-1").Msg("low stock")

	var line map[string]interface{}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &line))
	assert.Equal(t, "low stock", line["message"])
	assert.Equal(t, "ledger", line["component"])
	assert.Equal(t, "storeroom", line["service"])
	assert.Equal(t, "inv-1", line["item"])
}

func TestNewWithWriter_UnknownLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewWithWriter(&buf, "chatty", false)
	assert.Equal(t, zerolog.InfoLevel, logger.GetLevel())
}
