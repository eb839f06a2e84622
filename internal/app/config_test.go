package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewConfig(t *testing.T) {
	t.Run("requires a rules path", func(t *testing.T) {
		_, err := NewConfig(Config{})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "RulesPath")
	})

	t.Run("accepts standard levels and formats", func(t *testing.T) {
		for _, level := range []string{"", "debug", "info", "warn", "error"} {
			for _, format := range []string{"", "text", "json"} {
				_, err := NewConfig(Config{RulesPath: "rules/", LogLevel: level, LogFormat: format})
				assert.NoError(t, err, "level=%q format=%q", level, format)
			}
		}
	})

	t.Run("rejects unknown log level", func(t *testing.T) {
		_, err := NewConfig(Config{RulesPath: "rules/", LogLevel: "loud"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log-level")
	})

	t.Run("rejects unknown log format", func(t *testing.T) {
		_, err := NewConfig(Config{RulesPath: "rules/", LogFormat: "xml"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "invalid log-format")
	})
}
