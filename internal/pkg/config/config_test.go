package config

import (
	"context"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcvid/mcvid/internal/pkg/env"
)

func TestLoadFromDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := LoadFrom(
		context.Background(),
		[]string{"--organization-id", "11AABBBC67777F0000FFF", "--region", "6"},
		env.Empty(),
	)
	require.NoError(t, err)

	assert.Equal(t, "11AABBBC67777F0000FFF", cfg.OrganizationID)
	assert.Equal(t, 6, cfg.Region)
	assert.Equal(t, "dpm.demdex.net", cfg.Host)
	assert.Equal(t, "DSID_20914", cfg.IntegrationCode)
	assert.Equal(t, uint64(5), cfg.MaxRetries)
	assert.Equal(t, time.Second, cfg.InitialDelay)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.Equal(t, "", cfg.StorePath)
	assert.False(t, cfg.Verbose)
}

func TestLoadFromEnvFallback(t *testing.T) {
	t.Parallel()

	envs := env.Empty()
	envs.Set("MCVID_ORGANIZATION_ID", "11AABBBC67777F0000FFF")
	envs.Set("MCVID_REGION", "9")
	envs.Set("MCVID_INITIAL_DELAY", "250ms")
	envs.Set("MCVID_STORE_PATH", "/tmp/mcvid.json")

	cfg, err := LoadFrom(context.Background(), nil, envs)
	require.NoError(t, err)

	assert.Equal(t, "11AABBBC67777F0000FFF", cfg.OrganizationID)
	assert.Equal(t, 9, cfg.Region)
	assert.Equal(t, 250*time.Millisecond, cfg.InitialDelay)
	assert.Equal(t, "/tmp/mcvid.json", cfg.StorePath)
}

func TestLoadFromFlagWinsOverEnv(t *testing.T) {
	t.Parallel()

	envs := env.Empty()
	envs.Set("MCVID_ORGANIZATION_ID", "fromEnv")
	envs.Set("MCVID_REGION", "9")

	cfg, err := LoadFrom(
		context.Background(),
		[]string{"--organization-id", "fromFlag", "--region", "6"},
		envs,
	)
	require.NoError(t, err)

	assert.Equal(t, "fromFlag", cfg.OrganizationID)
	assert.Equal(t, 6, cfg.Region)
}

func TestLoadFromInvalidEnvValue(t *testing.T) {
	t.Parallel()

	envs := env.Empty()
	envs.Set("MCVID_ORGANIZATION_ID", "11AABBBC67777F0000FFF")
	envs.Set("MCVID_REGION", "not a number")

	_, err := LoadFrom(context.Background(), nil, envs)
	require.Error(t, err)
	assert.Contains(t, err.Error(), `invalid value of the "MCVID_REGION" environment variable`)
}

func TestLoadFromMissingOrganizationID(t *testing.T) {
	t.Parallel()

	_, err := LoadFrom(context.Background(), []string{"--region", "6"}, env.Empty())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid configuration")
	assert.Contains(t, err.Error(), "organizationId")
}

func TestLoadFromNonPositiveRegion(t *testing.T) {
	t.Parallel()

	_, err := LoadFrom(
		context.Background(),
		[]string{"--organization-id", "11AABBBC67777F0000FFF", "--region", "0"},
		env.Empty(),
	)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "region")
}

func TestLoadFromHelp(t *testing.T) {
	t.Parallel()

	_, err := LoadFrom(context.Background(), []string{"--help"}, env.Empty())
	assert.ErrorIs(t, err, pflag.ErrHelp)
}
