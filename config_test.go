package camzip

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fumin/camzip/ac/witten"
)

func writeConfig(t *testing.T, content string) string {
	path := filepath.Join(t.TempDir(), "camzip.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoadConfig(t *testing.T) {
	path := writeConfig(t, "Precision = 48\nContextLen = 3\n")
	cfg := DefaultConfig
	require.NoError(t, LoadConfig(path, &cfg))
	assert.Equal(t, uint(48), cfg.Precision)
	assert.Equal(t, 3, cfg.ContextLen)
	assert.Equal(t, DefaultConfig.MaxContextLen, cfg.MaxContextLen)
	assert.Equal(t, DefaultConfig.ProgressInterval, cfg.ProgressInterval)
}

func TestLoadConfigUnknownField(t *testing.T) {
	path := writeConfig(t, "Depth = 48\n")
	cfg := DefaultConfig
	assert.Error(t, LoadConfig(path, &cfg))
}

func TestConfigValidate(t *testing.T) {
	cfg := DefaultConfig
	require.NoError(t, cfg.Validate())

	cfg.ContextLen = 5
	assert.True(t, errors.Is(cfg.Validate(), ErrContextLength))
	cfg.MaxContextLen = 5
	assert.NoError(t, cfg.Validate())

	cfg = DefaultConfig
	cfg.Precision = 4
	assert.True(t, errors.Is(cfg.Validate(), witten.ErrPrecision))

	cfg = DefaultConfig
	cfg.ProgressInterval = -1
	assert.Error(t, cfg.Validate())
}
