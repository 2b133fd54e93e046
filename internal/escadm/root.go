package escadm

import (
	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "escadm",
		Short:         "Provision and operate the ESC application stack on this host",
		SilenceErrors: true, // Don't print errors automatically
		SilenceUsage:  true, // Don't show usage on error
	}

	cmd.AddCommand(
		SetupCmd(),
		StartCmd(),
		StopCmd(),
		LogsCmd(),
		StatusCmd(),
		EnvCmd(),
		SecurityCmd(),
		CertCmd(),
		VersionCmd(),
	)

	return cmd
}
