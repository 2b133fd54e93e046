package escadm

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/dennisneo6969/esc-compose-prod/internal/config"
	"github.com/dennisneo6969/esc-compose-prod/internal/configure"
	"github.com/dennisneo6969/esc-compose-prod/internal/history"
	"github.com/dennisneo6969/esc-compose-prod/internal/provision"
	"github.com/dennisneo6969/esc-compose-prod/internal/ui"
)

func SetupCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "setup",
		Short: "Interactively provision (or update) the ESC stack on this host",
		Long: `Provision the full ESC stack: system packages, container runtime,
TLS certificate, reverse proxy, firewall, intrusion prevention and the
application containers.

All configuration is gathered interactively. Rerunning against an existing
install automatically offers the saved configuration and skips one-time
setup that is already in place.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			store := config.NewStore(config.InstallDir())
			saved, found, err := store.Load()
			if err != nil {
				return err
			}

			var existing *config.Settings
			if found {
				existing = &saved
			}

			configurator := configure.New()
			settings, reuseMode, err := configurator.Gather(existing)
			if err != nil {
				return err
			}

			password, err := configurator.RegistryPassword()
			if err != nil {
				return err
			}

			prov := &provision.Provisioner{
				Settings:         settings,
				RegistryPassword: password,
				ReuseMode:        reuseMode,
				Confirm:          configurator.Confirm,
			}

			started := time.Now()
			result, runErr := prov.Run(ctx)
			recordRun(settings, reuseMode, started, result, runErr)

			if runErr != nil {
				return runErr
			}

			// Persist only after every step succeeded; a partial run keeps
			// the previous record so the next invocation retries cleanly.
			// The record always lives at the fixed anchor, not under the
			// chosen install path, so reruns rediscover custom installs.
			if err := store.Save(settings); err != nil {
				return err
			}

			ui.Success("ESC stack provisioned successfully!\n\n")
			ui.Info("  Steps applied: %d, skipped: %d\n", result.Count(provision.StatusApplied), result.Count(provision.StatusSkipped))
			ui.Info("  Install path:  %s\n", settings.InstallPath)
			if prov.EffectiveTLSMode() != settings.TLSMode {
				ui.Warn("  TLS degraded from %s to %s this run; re-run setup to retry issuance.\n",
					settings.TLSMode, prov.EffectiveTLSMode())
			}
			ui.Info("  Helper commands are in %s\n", config.BinDir(settings.InstallPath))
			return nil
		},
	}
	return cmd
}

// recordRun journals the run outcome; journal failures only warn, they
// never mask the provisioning result.
func recordRun(settings config.Settings, reuseMode bool, started time.Time, result provision.Result, runErr error) {
	db, err := history.New(config.HistoryDBPath(settings.InstallPath))
	if err != nil {
		ui.Warn("Could not open the run journal: %v\n", err)
		return
	}
	defer db.Close()

	outcome := "success"
	if runErr != nil {
		var stepErr *provision.StepError
		if errors.As(runErr, &stepErr) {
			outcome = "failed:" + stepErr.Step
		} else {
			outcome = "failed"
		}
	}

	run := history.Run{
		ID:         history.NewRunID(started),
		StartedAt:  started,
		FinishedAt: time.Now(),
		ReuseMode:  reuseMode,
		Outcome:    outcome,
	}
	for _, s := range result.Statuses {
		run.Steps = append(run.Steps, history.RunStep{Step: s.Name, Status: s.Status})
	}

	if err := db.RecordRun(run); err != nil {
		ui.Warn("Could not record the run: %v\n", err)
	}
}
