package logging

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want zerolog.Level
	}{
		{"trace", zerolog.TraceLevel},
		{"DEBUG", zerolog.DebugLevel},
		{"info", zerolog.InfoLevel},
		{"Warn", zerolog.WarnLevel},
		{"error", zerolog.ErrorLevel},
		{"", zerolog.InfoLevel},
		{"verbose", zerolog.InfoLevel},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), "input %q", tt.in)
	}
}

func TestSetup_WritesToLogFile(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	dir := t.TempDir()
	viper.Set("logLevel", "debug")
	viper.Set("logsDir", dir)
	viper.Set("graylog.enabled", false)

	logger := Setup()
	logger.Info().Str("component", "test").Msg("hello from setup test")

	data, err := os.ReadFile(filepath.Join(dir, "missionstore.log"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "hello from setup test")
	assert.Contains(t, string(data), "component=test")
}

func TestSetup_MissingLogsDirIsCreated(t *testing.T) {
	t.Cleanup(viper.Reset)
	t.Cleanup(func() { zerolog.SetGlobalLevel(zerolog.TraceLevel) })

	dir := filepath.Join(t.TempDir(), "nested", "logs")
	viper.Set("logsDir", dir)
	viper.Set("graylog.enabled", false)

	logger := Setup()
	logger.Warn().Msg("created on demand")

	_, err := os.Stat(filepath.Join(dir, "missionstore.log"))
	assert.NoError(t, err)
}
