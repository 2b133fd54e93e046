package escadm

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dennisneo6969/esc-compose-prod/internal/config"
	"github.com/dennisneo6969/esc-compose-prod/internal/configure"
	"github.com/dennisneo6969/esc-compose-prod/internal/constants"
	"github.com/dennisneo6969/esc-compose-prod/internal/docker"
	"github.com/dennisneo6969/esc-compose-prod/internal/envfile"
	"github.com/dennisneo6969/esc-compose-prod/internal/ui"
)

func EnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env",
		Short: "Edit the application environment file and offer a restart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			configurator := configure.New()
			path := config.EnvFilePath(settings.InstallPath)
			if err := envfile.EnsureValid(path, configurator.Confirm); err != nil {
				return err
			}
			ui.Success("Environment file is valid.\n")

			if !configurator.Confirm("Restart the stack so the changes take effect?") {
				return nil
			}

			composeFile := config.ComposeFilePath(settings.InstallPath)
			if err := docker.ComposeDown(ctx, composeFile); err != nil {
				return err
			}
			if err := docker.ComposeUp(ctx, composeFile); err != nil {
				return err
			}

			cli, err := docker.NewClient(ctx)
			if err != nil {
				return err
			}
			defer cli.Close()
			if err := docker.WaitForStack(ctx, cli, constants.ComposeProject, startTimeout); err != nil {
				return err
			}
			ui.Success("Stack restarted.\n")
			return nil
		},
	}
}
