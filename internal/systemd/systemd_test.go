package systemd

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dennisneo6969/esc-compose-prod/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteHelperScripts(t *testing.T) {
	installPath := t.TempDir()
	settings := config.Settings{
		Domain:           "example.com",
		RegistryUsername: "escuser",
		InstallPath:      installPath,
		TLSMode:          config.TLSModeNone,
	}
	require.NoError(t, WriteHelperScripts(settings))

	binDir := config.BinDir(installPath)
	for name, args := range helperCommands {
		path := filepath.Join(binDir, name)
		info, err := os.Stat(path)
		require.NoError(t, err, "helper %s missing", name)
		assert.NotZero(t, info.Mode().Perm()&0o111, "helper %s is not executable", name)

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		content := string(raw)
		assert.True(t, strings.HasPrefix(content, "#!/bin/sh"), "helper %s missing shebang", name)
		// Helpers must not override the settings anchor; the record is
		// found at the fixed path regardless of the install path.
		assert.NotContains(t, content, "ESC_INSTALL_DIR")
		assert.Contains(t, content, args+` "$@"`)
	}
}
