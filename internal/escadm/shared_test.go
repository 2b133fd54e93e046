package escadm

import (
	"testing"

	"github.com/dennisneo6969/esc-compose-prod/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSettingsRequiresSetup(t *testing.T) {
	t.Setenv("ESC_INSTALL_DIR", t.TempDir())
	_, err := loadSettings()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "escadm setup")
}

func TestLoadSettingsFindsCustomInstallPath(t *testing.T) {
	anchor := t.TempDir()
	t.Setenv("ESC_INSTALL_DIR", anchor)

	// Save the way setup does: to the anchor store, with the stack living
	// somewhere else entirely.
	custom := t.TempDir()
	require.NoError(t, config.NewStore(config.InstallDir()).Save(config.Settings{
		Domain:           "example.com",
		RegistryUsername: "escuser",
		InstallPath:      custom,
		TLSMode:          config.TLSModeNone,
	}))

	settings, err := loadSettings()
	require.NoError(t, err)
	assert.Equal(t, custom, settings.InstallPath)
}
