// Package tlsmanager acquires certificate material for the selected TLS
// mode. Issued certificates come from an ACME CA via lego; self-signed
// material is generated locally. The decision is one-shot per run: once
// material exists at the expected path for the selected mode, later runs
// skip acquisition entirely.
package tlsmanager

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/dennisneo6969/esc-compose-prod/internal/config"
	"github.com/dennisneo6969/esc-compose-prod/internal/ui"
)

// CertPaths points the reverse-proxy renderer at certificate material.
// Paths only; the material itself is never copied into other documents.
type CertPaths struct {
	Cert    string
	Key     string
	DHParam string
}

func (p CertPaths) Exists() bool {
	if p.Cert == "" || p.Key == "" {
		return false
	}
	for _, f := range []string{p.Cert, p.Key} {
		if _, err := os.Stat(f); err != nil {
			return false
		}
	}
	if p.DHParam != "" {
		if _, err := os.Stat(p.DHParam); err != nil {
			return false
		}
	}
	return true
}

// IssuedPaths returns where issued material for the domain lives.
func IssuedPaths(installPath, domain string) CertPaths {
	dir := config.IssuedCertDir(installPath, domain)
	return CertPaths{
		Cert: filepath.Join(dir, "fullchain.pem"),
		Key:  filepath.Join(dir, "privkey.pem"),
	}
}

// SelfSignedPaths returns where self-signed material lives.
func SelfSignedPaths(installPath string) CertPaths {
	dir := config.SelfSignedDir(installPath)
	return CertPaths{
		Cert:    filepath.Join(dir, "selfsigned.crt"),
		Key:     filepath.Join(dir, "selfsigned.key"),
		DHParam: filepath.Join(dir, "dhparam.pem"),
	}
}

// Ensure acquires certificate material for the mode selected in settings
// and returns the paths together with the effective mode. Issued-mode
// failures degrade to "none" with a warning instead of aborting the run;
// the operator can still reach the site over plaintext and retry TLS later.
// Self-signed failures abort.
func Ensure(ctx context.Context, settings config.Settings) (CertPaths, config.TLSMode, error) {
	switch settings.TLSMode {
	case config.TLSModeNone:
		return CertPaths{}, config.TLSModeNone, nil

	case config.TLSModeSelfSigned:
		paths := SelfSignedPaths(settings.InstallPath)
		if paths.Exists() {
			return paths, config.TLSModeSelfSigned, nil
		}
		if err := generateSelfSigned(ctx, settings, paths); err != nil {
			return CertPaths{}, "", fmt.Errorf("failed to generate self-signed certificate: %w", err)
		}
		return paths, config.TLSModeSelfSigned, nil

	case config.TLSModeIssued:
		paths := IssuedPaths(settings.InstallPath, settings.Domain)
		if paths.Exists() {
			return paths, config.TLSModeIssued, nil
		}
		if err := obtainIssued(ctx, settings, paths); err != nil {
			ui.Warn("Certificate issuance failed: %v\n", err)
			ui.Warn("Continuing without TLS. Re-run setup once DNS points at this host to retry.\n")
			return CertPaths{}, config.TLSModeNone, nil
		}
		return paths, config.TLSModeIssued, nil
	}
	return CertPaths{}, "", fmt.Errorf("unknown TLS mode %q", settings.TLSMode)
}

func systemctl(ctx context.Context, verb string) error {
	if out, err := exec.CommandContext(ctx, "systemctl", verb, "nginx").CombinedOutput(); err != nil {
		return fmt.Errorf("systemctl %s nginx: %w\n%s", verb, err, out)
	}
	return nil
}
