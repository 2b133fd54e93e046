package escadm

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/dennisneo6969/esc-compose-prod/internal/config"
	"github.com/dennisneo6969/esc-compose-prod/internal/constants"
	"github.com/dennisneo6969/esc-compose-prod/internal/docker"
	"github.com/dennisneo6969/esc-compose-prod/internal/history"
	"github.com/dennisneo6969/esc-compose-prod/internal/ui"
)

func StatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show container states and the last provisioning run",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			cli, err := docker.NewClient(ctx)
			if err != nil {
				return err
			}
			defer cli.Close()

			states, err := docker.StackStates(ctx, cli, constants.ComposeProject)
			if err != nil {
				return err
			}

			var lines []string
			if len(states) == 0 {
				lines = append(lines, "no containers found; run 'escadm start'")
			}
			for _, s := range states {
				lines = append(lines, fmt.Sprintf("%-12s %-10s %s", s.Service, s.State, s.Status))
			}
			ui.Section("Containers", lines)

			db, err := history.New(config.HistoryDBPath(settings.InstallPath))
			if err != nil {
				ui.Warn("Run journal unavailable: %v\n", err)
				return nil
			}
			defer db.Close()

			run, found, err := db.LastRun()
			if err != nil {
				return err
			}
			if !found {
				ui.Info("No provisioning runs recorded.\n")
				return nil
			}

			runLines := []string{
				fmt.Sprintf("Started:  %s", run.StartedAt.Local().Format(time.RFC1123)),
				fmt.Sprintf("Outcome:  %s", run.Outcome),
				fmt.Sprintf("Reused:   %t", run.ReuseMode),
			}
			for _, s := range run.Steps {
				runLines = append(runLines, fmt.Sprintf("  %-22s %s", s.Step, s.Status))
			}
			ui.Section("Last provisioning run", runLines)
			return nil
		},
	}
}
