package escadm

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/dennisneo6969/esc-compose-prod/internal/config"
	"github.com/dennisneo6969/esc-compose-prod/internal/logging"
	"github.com/dennisneo6969/esc-compose-prod/internal/nginx"
	"github.com/dennisneo6969/esc-compose-prod/internal/tlsmanager"
)

func CertCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:    "cert",
		Short:  "Certificate maintenance",
		Hidden: true, // invoked by the renewal timer, not by operators
	}
	cmd.AddCommand(certRenewCmd())
	return cmd
}

func certRenewCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "renew",
		Short: "Renew the issued certificate if it is close to expiry",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}

			// Unattended context: log to a file the operator can inspect.
			log, err := logging.NewFileLogger(logging.INFO, config.RenewLogPath(settings.InstallPath))
			if err != nil {
				log = logging.NewLogger(logging.INFO, false)
			}

			renewed, err := tlsmanager.Renew(settings, log)
			if err != nil {
				log.Error("certificate renewal failed", err)
				return err
			}
			if renewed {
				if err := nginx.Reload(context.Background()); err != nil {
					log.Error("failed to reload the reverse proxy after renewal", err)
					return err
				}
				log.Info("reverse proxy reloaded with renewed certificate")
			}
			return nil
		},
	}
}
