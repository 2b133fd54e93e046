package escadm

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dennisneo6969/esc-compose-prod/internal/fail2ban"
	"github.com/dennisneo6969/esc-compose-prod/internal/ui"
)

func SecurityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "security",
		Short: "Inspect and manage intrusion-prevention bans",
	}
	cmd.AddCommand(securityStatusCmd(), securityUnbanCmd())
	return cmd
}

func securityStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show ban counts per abuse category",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			settings, err := loadSettings()
			if err != nil {
				return err
			}
			if !settings.SecurityEnabled {
				return fmt.Errorf("the security profile is not enabled for this install")
			}

			statuses, err := fail2ban.Status(context.Background())
			if err != nil {
				return err
			}

			lines := []string{fmt.Sprintf("%-18s %10s %8s", "category", "banned now", "total")}
			for _, s := range statuses {
				if s.CurrentlyBanned < 0 {
					lines = append(lines, fmt.Sprintf("%-18s %10s %8s", s.Jail, "-", "-"))
					continue
				}
				lines = append(lines, fmt.Sprintf("%-18s %10d %8d", s.Jail, s.CurrentlyBanned, s.TotalBanned))
			}
			ui.Section("Intrusion prevention", lines)
			return nil
		},
	}
}

func securityUnbanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unban <address>",
		Short: "Remove an address from every category jail",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, err := loadSettings(); err != nil {
				return err
			}
			if err := fail2ban.Unban(context.Background(), args[0]); err != nil {
				return err
			}
			ui.Success("Unbanned %s across all categories.\n", args[0])
			return nil
		},
	}
}
