package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(t.TempDir())
	_, found, err := store.Load()
	require.NoError(t, err, "a missing settings file is not an error")
	assert.False(t, found)
}

func TestStoreSaveLoadRoundTrip(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	saved := Settings{
		Domain:               "example.com",
		RegistryUsername:     "escuser",
		InstallPath:          dir,
		TLSMode:              TLSModeIssued,
		TLSContactEmail:      "ops@example.com",
		SecurityEnabled:      true,
		SecurityContactEmail: "security@example.com",
	}
	require.NoError(t, store.Save(saved))

	loaded, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, saved, loaded)
}

func TestStoreSaveRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	err := store.Save(Settings{Domain: "nope", InstallPath: dir})
	require.Error(t, err)

	_, found, err := store.Load()
	require.NoError(t, err)
	assert.False(t, found, "a rejected save must not leave a file behind")
}

func TestStoreSaveRestrictsPermissions(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	require.NoError(t, store.Save(Settings{
		Domain:           "example.com",
		RegistryUsername: "escuser",
		InstallPath:      dir,
		TLSMode:          TLSModeNone,
	}))

	info, err := os.Stat(store.Path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())
}

func TestStoreSaveReplacesExisting(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir)

	first := Settings{Domain: "example.com", RegistryUsername: "escuser", InstallPath: dir, TLSMode: TLSModeNone}
	require.NoError(t, store.Save(first))

	second := first
	second.Domain = "other.example.com"
	require.NoError(t, store.Save(second))

	loaded, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "other.example.com", loaded.Domain)

	// The atomic replace must not accumulate temp files.
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.NotContains(t, e.Name(), ".tmp-")
	}
}

func TestStoreLoadRejectsUnknownTLSMode(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".escadm.conf")
	require.NoError(t, os.WriteFile(path, []byte(`DOMAIN="example.com"
TLS_MODE="letsencrypt"
`), 0o600))

	store := &Store{Path: path}
	_, _, err := store.Load()
	require.Error(t, err)
}

func TestStoreLoadDefaultsInstallPath(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".escadm.conf")
	require.NoError(t, os.WriteFile(path, []byte(`DOMAIN="example.com"
REGISTRY_USERNAME="escuser"
TLS_MODE="none"
`), 0o600))

	t.Setenv("ESC_INSTALL_DIR", "/srv/esc")
	store := &Store{Path: path}
	loaded, found, err := store.Load()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "/srv/esc", loaded.InstallPath)
}
