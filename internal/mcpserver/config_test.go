package mcpserver

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseConfig_Defaults(t *testing.T) {
	cfg, err := ParseConfig(nil)
	require.NoError(t, err)

	assert.NotEmpty(t, cfg.Description)
	assert.Nil(t, cfg.Instance.SubscriptionID)
	assert.Nil(t, cfg.Instance.DatabaseID)
}

func TestParseConfig_Instance(t *testing.T) {
	data := []byte(`
description: Production cache diagnostics
instance:
  subscription_id: 999
  database_id: 1
  subscription_type: pro
  database_name: sessions
`)

	cfg, err := ParseConfig(data)
	require.NoError(t, err)

	assert.Equal(t, "Production cache diagnostics", cfg.Description)
	require.NotNil(t, cfg.Instance.SubscriptionID)
	assert.Equal(t, 999, *cfg.Instance.SubscriptionID)
	require.NotNil(t, cfg.Instance.DatabaseID)
	assert.Equal(t, 1, *cfg.Instance.DatabaseID)
	assert.Equal(t, "pro", cfg.Instance.SubscriptionType)
	assert.Equal(t, "sessions", cfg.Instance.DatabaseName)
}

func TestParseConfig_InvalidSubscriptionType(t *testing.T) {
	data := []byte(`
instance:
  subscription_type: enterprise
`)

	_, err := ParseConfig(data)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid instance config")
}

func TestParseConfig_BadYAML(t *testing.T) {
	_, err := ParseConfig([]byte("instance: ["))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse mcp config")
}
