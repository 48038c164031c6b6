package main

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadAppConfig(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)

	cmd := newRootCmd()

	cfg := loadAppConfig()
	assert.Equal(t, time.Hour, cfg.ReaperInterval)
	assert.Equal(t, 24*time.Hour, cfg.RoomMaxAge)
	assert.Equal(t, 8080, cfg.Port)
	assert.Empty(t, cfg.RedisHost)
	require.NoError(t, cfg.Validate())

	t.Setenv("SERVER_ROOM_MAX_AGE", "2h")
	require.NoError(t, cmd.ParseFlags([]string{"--reaper-interval=5m", "--log-level=debug", "--rate-limit-per-ip=0"}))

	cfg = loadAppConfig()
	assert.Equal(t, 5*time.Minute, cfg.ReaperInterval)
	assert.Equal(t, 2*time.Hour, cfg.RoomMaxAge)
	assert.Equal(t, "DEBUG", cfg.LogLevel)
	assert.Zero(t, cfg.RateLimitPerIP)
	require.NoError(t, cfg.Validate())
}
