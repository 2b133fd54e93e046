package escadm

import (
	"github.com/spf13/cobra"

	"github.com/dennisneo6969/esc-compose-prod/internal/constants"
	"github.com/dennisneo6969/esc-compose-prod/internal/ui"
)

func VersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the escadm version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			ui.Info("escadm %s\n", constants.Version)
		},
	}
}
