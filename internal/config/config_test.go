package config_test

import (
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"hyperdbg/internal/config"
)

func TestBindFlagsDefaults(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	v := viper.New()
	config.BindFlags(cmd, v)

	cfg := config.Load(v)
	assert.Equal(t, "serial", cfg.TransportKind)
	assert.Equal(t, 50, cfg.PollIntervalMs)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.False(t, cfg.LogJSON)
}

func TestBindFlagsOverriddenByFlagValue(t *testing.T) {
	cmd := &cobra.Command{Use: "test"}
	v := viper.New()
	config.BindFlags(cmd, v)

	require.NoError(t, cmd.PersistentFlags().Set("transport", "tcp"))
	require.NoError(t, cmd.PersistentFlags().Set("tcp-address", "10.0.0.1:9000"))

	cfg := config.Load(v)
	assert.Equal(t, "tcp", cfg.TransportKind)
	assert.Equal(t, "10.0.0.1:9000", cfg.TCPAddress)
}
