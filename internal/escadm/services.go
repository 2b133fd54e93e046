package escadm

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/dennisneo6969/esc-compose-prod/internal/config"
	"github.com/dennisneo6969/esc-compose-prod/internal/constants"
	"github.com/dennisneo6969/esc-compose-prod/internal/docker"
	"github.com/dennisneo6969/esc-compose-prod/internal/ui"
)

const startTimeout = 2 * time.Minute

func StartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start the application stack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			if err := docker.ComposeUp(ctx, config.ComposeFilePath(settings.InstallPath)); err != nil {
				return err
			}

			cli, err := docker.NewClient(ctx)
			if err != nil {
				return err
			}
			defer cli.Close()

			ui.Info("Waiting for the stack to become ready...\n")
			if err := docker.WaitForStack(ctx, cli, constants.ComposeProject, startTimeout); err != nil {
				return err
			}
			ui.Success("Stack is running.\n")
			return nil
		},
	}
}

func StopCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stop",
		Short: "Stop the application stack",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			if err := docker.ComposeDown(context.Background(), config.ComposeFilePath(settings.InstallPath)); err != nil {
				return err
			}
			ui.Success("Stack stopped.\n")
			return nil
		},
	}
}

func LogsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logs [service]",
		Short: "Tail stack logs, optionally scoped to one service",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			service := ""
			if len(args) == 1 {
				service = args[0]
			}
			return docker.ComposeLogs(context.Background(), config.ComposeFilePath(settings.InstallPath), service)
		},
	}
}
