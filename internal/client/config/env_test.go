package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_OverlaysSetVariables(t *testing.T) {
	t.Setenv("GENZES_SERVER_ADDR", "remote:7000")
	t.Setenv("GENZES_SESSION_TTL", "90m")
	t.Setenv("GENZES_SEED_DEMO", "false")
	t.Setenv("GENZES_PASSWORD_ENCODING", "base64")

	c := defaults()
	require.NotPanics(t, func() { parseEnv(c) })

	assert.Equal(t, "remote:7000", c.ServerEndpointAddr)
	assert.Equal(t, 90*time.Minute, c.SessionTTL)
	assert.False(t, c.SeedDemo)
	assert.Equal(t, "base64", c.PasswordEncoding)
	assert.Equal(t, "genzes.db", c.StorageDSN, "unset variables keep the previous value")
}

func TestParseEnv_MalformedPanics(t *testing.T) {
	t.Setenv("GENZES_ONLINE_CHECK_INTERVAL", "soon")

	c := defaults()
	require.Panics(t, func() { parseEnv(c) })
}
