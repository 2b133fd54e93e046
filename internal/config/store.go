package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/dennisneo6969/esc-compose-prod/internal/constants"
	"github.com/joho/godotenv"
)

// Settings file keys. The file is flat key="value" lines so it stays
// readable and editable by the operator.
const (
	keyDomain               = "DOMAIN"
	keyRegistryUsername     = "REGISTRY_USERNAME"
	keyInstallPath          = "INSTALL_PATH"
	keyTLSMode              = "TLS_MODE"
	keyTLSContactEmail      = "TLS_CONTACT_EMAIL"
	keySecurityEnabled      = "SECURITY_ENABLED"
	keySecurityContactEmail = "SECURITY_CONTACT_EMAIL"
)

// Store reads and writes the persisted settings record at a fixed path.
type Store struct {
	Path string
}

func NewStore(installPath string) *Store {
	return &Store{Path: SettingsFilePath(installPath)}
}

// Load returns the saved settings. A missing file is not an error: the
// second return value reports whether a record was found, which is the
// signal for choosing between the fresh-install and update flows.
func (s *Store) Load() (Settings, bool, error) {
	env, err := godotenv.Read(s.Path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return Settings{}, false, nil
		}
		return Settings{}, false, fmt.Errorf("failed to read settings file %s: %w", s.Path, err)
	}

	mode, err := ParseTLSMode(env[keyTLSMode])
	if err != nil {
		return Settings{}, false, fmt.Errorf("settings file %s: %w", s.Path, err)
	}
	securityEnabled, _ := strconv.ParseBool(env[keySecurityEnabled])

	settings := Settings{
		Domain:               env[keyDomain],
		RegistryUsername:     env[keyRegistryUsername],
		InstallPath:          env[keyInstallPath],
		TLSMode:              mode,
		TLSContactEmail:      env[keyTLSContactEmail],
		SecurityEnabled:      securityEnabled,
		SecurityContactEmail: env[keySecurityContactEmail],
	}
	if settings.InstallPath == "" {
		settings.InstallPath = InstallDir()
	}
	return settings, true, nil
}

// Save validates and persists the record. The write is an atomic replace:
// marshal to a temp file in the same directory, then rename over the old
// file, so a crash never leaves a partially written record behind.
func (s *Store) Save(settings Settings) error {
	if err := settings.Validate(); err != nil {
		return fmt.Errorf("refusing to save invalid settings: %w", err)
	}

	env := map[string]string{
		keyDomain:               settings.Domain,
		keyRegistryUsername:     settings.RegistryUsername,
		keyInstallPath:          settings.InstallPath,
		keyTLSMode:              string(settings.TLSMode),
		keyTLSContactEmail:      settings.TLSContactEmail,
		keySecurityEnabled:      strconv.FormatBool(settings.SecurityEnabled),
		keySecurityContactEmail: settings.SecurityContactEmail,
	}

	content, err := godotenv.Marshal(env)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	dir := filepath.Dir(s.Path)
	if err := os.MkdirAll(dir, constants.ModeDirDefault); err != nil {
		return fmt.Errorf("failed to create settings directory %s: %w", dir, err)
	}

	tmp, err := os.CreateTemp(dir, constants.SettingsFileName+".tmp-*")
	if err != nil {
		return fmt.Errorf("failed to create temp settings file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if err := tmp.Chmod(constants.ModeFileSecret); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to restrict settings file permissions: %w", err)
	}
	if _, err := tmp.WriteString(content + "\n"); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write settings: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp settings file: %w", err)
	}

	if err := os.Rename(tmpPath, s.Path); err != nil {
		return fmt.Errorf("failed to replace settings file %s: %w", s.Path, err)
	}
	return nil
}
