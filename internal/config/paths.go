package config

import (
	"os"
	"path/filepath"

	"github.com/dennisneo6969/esc-compose-prod/internal/constants"
)

// InstallDir returns the default install directory, honoring the
// ESC_INSTALL_DIR override. It anchors the settings record: the record is
// always read and written here, even when the operator picks a different
// install path for the stack, so reruns can rediscover custom installs.
func InstallDir() string {
	if dir := os.Getenv(constants.EnvVarInstallDir); dir != "" {
		return dir
	}
	return constants.DefaultInstallPath
}

func SettingsFilePath(installPath string) string {
	return filepath.Join(installPath, constants.SettingsFileName)
}

func EnvFilePath(installPath string) string {
	return filepath.Join(installPath, constants.EnvFileName)
}

func ComposeFilePath(installPath string) string {
	return filepath.Join(installPath, constants.ComposeFileName)
}

func HistoryDBPath(installPath string) string {
	return filepath.Join(installPath, constants.HistoryDBName)
}

func BinDir(installPath string) string {
	return filepath.Join(installPath, "bin")
}

func LogDir(installPath string) string {
	return filepath.Join(installPath, "logs")
}

// CertDir holds all certificate material: issued certs under
// <dir>/issued/<domain>, ACME account keys under <dir>/accounts and
// self-signed material under <dir>/selfsigned.
func CertDir(installPath string) string {
	return filepath.Join(installPath, "certs")
}

func IssuedCertDir(installPath, domain string) string {
	return filepath.Join(CertDir(installPath), "issued", domain)
}

func AccountKeyDir(installPath string) string {
	return filepath.Join(CertDir(installPath), "accounts")
}

func SelfSignedDir(installPath string) string {
	return filepath.Join(CertDir(installPath), "selfsigned")
}

// ACMEWebroot is served on port 80 for http-01 renewals once nginx is up.
func ACMEWebroot(installPath string) string {
	return filepath.Join(installPath, "acme-webroot")
}

func RenewLogPath(installPath string) string {
	return filepath.Join(LogDir(installPath), "cert-renew.log")
}
