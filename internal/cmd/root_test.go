package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/devtracker/devtracker-cli/internal/config"
	"github.com/devtracker/devtracker-cli/internal/log"
)

func TestResolveLogConfig(t *testing.T) {
	cfg := config.Config{LogLevel: "info", LogFormat: "json"}

	logCfg := resolveLogConfig(cfg, false)
	assert.Equal(t, log.LevelInfo, logCfg.Level)
	assert.Equal(t, log.FormatJSON, logCfg.Format)
	assert.False(t, logCfg.AddSource)
}

func TestResolveLogConfig_VerboseKeepsFormat(t *testing.T) {
	cfg := config.Config{LogLevel: "warn", LogFormat: "json"}

	logCfg := resolveLogConfig(cfg, true)
	assert.Equal(t, log.LevelDebug, logCfg.Level)
	assert.True(t, logCfg.AddSource)
	assert.Equal(t, log.FormatJSON, logCfg.Format, "--verbose must not override the configured format")
}
