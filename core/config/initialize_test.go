package config

import (
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInitialize(t *testing.T) {
	fsys := afero.NewMemMapFs()
	logger := log.New(io.Discard)

	require.NoError(t, Initialize(fsys, "/home/user/.tinysh", logger))

	// Check that the config is valid
	cfg, err := Load(fsys, "/home/user/.tinysh")
	require.NoError(t, err)
	assert.Equal(t, Default().Prompt, cfg.Prompt)

	t.Run("existing file kept", func(t *testing.T) {
		path := "/home/user/.tinysh/tinysh.yaml"
		require.NoError(t, afero.WriteFile(fsys, path, []byte("prompt: \"> \"\n"), 0600))

		require.NoError(t, Initialize(fsys, "/home/user/.tinysh", logger))

		cfg, err := Load(fsys, "/home/user/.tinysh")
		require.NoError(t, err)
		assert.Equal(t, "> ", cfg.Prompt)
	})
}
