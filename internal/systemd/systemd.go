// Package systemd renders and installs the service-manager units and the
// operator helper scripts. Root is required for the system paths; the
// render targets are parameterized so tests can point them elsewhere.
package systemd

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/dennisneo6969/esc-compose-prod/internal/config"
	"github.com/dennisneo6969/esc-compose-prod/internal/constants"
	"github.com/dennisneo6969/esc-compose-prod/internal/embed"
)

const (
	ComposeUnitName = "esc-compose.service"
	RenewUnitName   = "esc-cert-renew.service"
	RenewTimerName  = "esc-cert-renew.timer"
)

type unitData struct {
	InstallPath string
	ComposeFile string
	EscadmPath  string
}

func escadmPath() string {
	if exe, err := os.Executable(); err == nil {
		return exe
	}
	return "/usr/local/bin/escadm"
}

// InstallUnits writes the stack unit plus the renewal service and timer
// into unitDir, reloads systemd and enables them. The renewal timer is
// only enabled for issued TLS.
func InstallUnits(ctx context.Context, settings config.Settings, unitDir string) error {
	data := unitData{
		InstallPath: settings.InstallPath,
		ComposeFile: config.ComposeFilePath(settings.InstallPath),
		EscadmPath:  escadmPath(),
	}

	units := map[string]string{
		embed.ComposeUnitTemplate:  ComposeUnitName,
		embed.RenewServiceTemplate: RenewUnitName,
		embed.RenewTimerTemplate:   RenewTimerName,
	}
	for tmpl, name := range units {
		out, err := embed.Render(tmpl, data)
		if err != nil {
			return err
		}
		path := filepath.Join(unitDir, name)
		if err := os.WriteFile(path, out, constants.ModeFileDefault); err != nil {
			return fmt.Errorf("failed to write unit %s: %w", path, err)
		}
	}

	if err := run(ctx, "systemctl", "daemon-reload"); err != nil {
		return err
	}
	if err := run(ctx, "systemctl", "enable", ComposeUnitName); err != nil {
		return err
	}
	if settings.TLSMode == config.TLSModeIssued {
		if err := run(ctx, "systemctl", "enable", "--now", RenewTimerName); err != nil {
			return err
		}
	}
	return nil
}

func run(ctx context.Context, name string, args ...string) error {
	if out, err := exec.CommandContext(ctx, name, args...).CombinedOutput(); err != nil {
		return fmt.Errorf("%s %v failed: %w\n%s", name, args, err, out)
	}
	return nil
}

type helperData struct {
	EscadmPath string
	Args       string
}

// helperCommands maps wrapper script names to the escadm subcommand each
// one runs.
var helperCommands = map[string]string{
	"esc-start":    "start",
	"esc-stop":     "stop",
	"esc-logs":     "logs",
	"esc-status":   "status",
	"esc-env":      "env",
	"esc-security": "security status",
	"esc-unban":    "security unban",
}

// WriteHelperScripts generates the thin operator wrappers under the
// install directory's bin/.
func WriteHelperScripts(settings config.Settings) error {
	binDir := config.BinDir(settings.InstallPath)
	if err := os.MkdirAll(binDir, constants.ModeDirDefault); err != nil {
		return fmt.Errorf("failed to create helper script directory %s: %w", binDir, err)
	}

	for name, args := range helperCommands {
		out, err := embed.Render(embed.HelperScriptTemplate, helperData{
			EscadmPath: escadmPath(),
			Args:       args,
		})
		if err != nil {
			return err
		}
		path := filepath.Join(binDir, name)
		if err := os.WriteFile(path, out, constants.ModeFileExec); err != nil {
			return fmt.Errorf("failed to write helper script %s: %w", path, err)
		}
	}
	return nil
}
