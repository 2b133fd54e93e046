// Package nginx renders and installs the reverse-proxy site configuration.
// The site file is fully regenerated on every provisioning run; nothing is
// merged with previous content.
package nginx

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/dennisneo6969/esc-compose-prod/internal/config"
	"github.com/dennisneo6969/esc-compose-prod/internal/constants"
	"github.com/dennisneo6969/esc-compose-prod/internal/embed"
	"github.com/dennisneo6969/esc-compose-prod/internal/tlsmanager"
)

const (
	defaultMaxBodySize  = "100m"
	defaultProxyTimeout = "600s"

	// Modern cipher preference for the TLS listener.
	cipherList = "ECDHE-ECDSA-AES128-GCM-SHA256:ECDHE-RSA-AES128-GCM-SHA256:" +
		"ECDHE-ECDSA-AES256-GCM-SHA384:ECDHE-RSA-AES256-GCM-SHA384:" +
		"ECDHE-ECDSA-CHACHA20-POLY1305:ECDHE-RSA-CHACHA20-POLY1305"
)

type templateData struct {
	Domain        string
	WWWDomain     string
	AppPort       string
	AccessLog     string
	ErrorLog      string
	MaxBodySize   string
	ProxyTimeout  string
	Ciphers       string
	TLS           bool
	ACMEChallenge bool
	Webroot       string
	CertPath      string
	KeyPath       string
	DHParamPath   string
	Security      bool
	AllowedRanges []string
	DenyPaths     []string
}

// Render produces the complete site configuration for the given settings
// and certificate material. It is a pure function of its inputs.
func Render(settings config.Settings, certs tlsmanager.CertPaths, mode config.TLSMode) ([]byte, error) {
	data := templateData{
		Domain:        settings.Domain,
		WWWDomain:     settings.WWWDomain(),
		AppPort:       constants.AppPort,
		AccessLog:     constants.NginxAccessLog,
		ErrorLog:      constants.NginxErrorLog,
		MaxBodySize:   defaultMaxBodySize,
		ProxyTimeout:  defaultProxyTimeout,
		Ciphers:       cipherList,
		Security:      settings.SecurityEnabled,
		AllowedRanges: CloudflareRanges,
		DenyPaths:     DenyPaths,
	}

	if mode != config.TLSModeNone {
		if certs.Cert == "" || certs.Key == "" {
			return nil, fmt.Errorf("TLS mode %q requires certificate material", mode)
		}
		data.TLS = true
		data.CertPath = certs.Cert
		data.KeyPath = certs.Key
		data.DHParamPath = certs.DHParam
	}
	if mode == config.TLSModeIssued {
		// Renewals answer http-01 challenges from the webroot on port 80.
		data.ACMEChallenge = true
		data.Webroot = config.ACMEWebroot(settings.InstallPath)
	}

	return embed.Render(embed.NginxSiteTemplate, data)
}

// Install writes the rendered document, enables the site, verifies the
// syntax with nginx -t then reloads the server. A failed syntax check
// leaves the new file in place for inspection but reports an error.
func Install(ctx context.Context, doc []byte) error {
	if err := os.MkdirAll(filepath.Dir(constants.NginxSiteAvailable), constants.ModeDirDefault); err != nil {
		return fmt.Errorf("failed to create nginx config directory: %w", err)
	}
	if err := os.WriteFile(constants.NginxSiteAvailable, doc, constants.ModeFileDefault); err != nil {
		return fmt.Errorf("failed to write nginx site file: %w", err)
	}

	// Drop the distribution default site so the catch-all rules here win.
	_ = os.Remove(constants.NginxDefaultSite)

	if _, err := os.Lstat(constants.NginxSiteEnabled); os.IsNotExist(err) {
		if err := os.Symlink(constants.NginxSiteAvailable, constants.NginxSiteEnabled); err != nil {
			return fmt.Errorf("failed to enable nginx site: %w", err)
		}
	}

	if out, err := exec.CommandContext(ctx, "nginx", "-t").CombinedOutput(); err != nil {
		return fmt.Errorf("nginx config check failed: %w\n%s", err, out)
	}
	return Reload(ctx)
}

func Reload(ctx context.Context) error {
	if out, err := exec.CommandContext(ctx, "systemctl", "reload", "nginx").CombinedOutput(); err != nil {
		return fmt.Errorf("failed to reload nginx: %w\n%s", err, out)
	}
	return nil
}

// Stop and Start are used around standalone ACME issuance, which needs
// port 80 to itself.
func Stop(ctx context.Context) error {
	if out, err := exec.CommandContext(ctx, "systemctl", "stop", "nginx").CombinedOutput(); err != nil {
		return fmt.Errorf("failed to stop nginx: %w\n%s", err, out)
	}
	return nil
}

func Start(ctx context.Context) error {
	if out, err := exec.CommandContext(ctx, "systemctl", "start", "nginx").CombinedOutput(); err != nil {
		return fmt.Errorf("failed to start nginx: %w\n%s", err, out)
	}
	return nil
}
