// Package fail2ban installs the intrusion-prevention rule set and talks to
// the running daemon through fail2ban-client. The daemon itself, its log
// matching engine and its ban actions are external collaborators.
package fail2ban

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dennisneo6969/esc-compose-prod/internal/config"
	"github.com/dennisneo6969/esc-compose-prod/internal/constants"
	"github.com/dennisneo6969/esc-compose-prod/internal/embed"
)

// Default ban policy applied to anything not overridden per category.
const (
	DefaultBanTime  = 3600
	DefaultFindTime = 600
	DefaultMaxRetry = 5
)

type jailData struct {
	DefaultBanTime  int
	DefaultFindTime int
	DefaultMaxRetry int
	DestEmail       string
	LogPath         string
	Jails           []Category
}

type filterData struct {
	Name     string
	Patterns []string
}

// RenderJail produces the jail.local document for the category set.
func RenderJail(settings config.Settings) ([]byte, error) {
	return embed.Render(embed.JailLocalTemplate, jailData{
		DefaultBanTime:  DefaultBanTime,
		DefaultFindTime: DefaultFindTime,
		DefaultMaxRetry: DefaultMaxRetry,
		DestEmail:       settings.SecurityContactEmail,
		LogPath:         constants.NginxAccessLog,
		Jails:           Categories,
	})
}

// Install writes jail.local plus one filter file per category under the
// fail2ban config root.
func Install(settings config.Settings, root string) error {
	filterDir := filepath.Join(root, "filter.d")
	if err := os.MkdirAll(filterDir, constants.ModeDirDefault); err != nil {
		return fmt.Errorf("failed to create filter directory %s: %w", filterDir, err)
	}

	jail, err := RenderJail(settings)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(root, "jail.local"), jail, constants.ModeFileDefault); err != nil {
		return fmt.Errorf("failed to write jail.local: %w", err)
	}

	for _, c := range Categories {
		filter, err := embed.Render(embed.FilterTemplate, filterData{Name: c.Name, Patterns: c.Patterns})
		if err != nil {
			return err
		}
		path := filepath.Join(filterDir, c.Name+".conf")
		if err := os.WriteFile(path, filter, constants.ModeFileDefault); err != nil {
			return fmt.Errorf("failed to write filter %s: %w", path, err)
		}
	}
	return nil
}

// Restart bounces the daemon so it picks up the new rules. A daemon that
// will not start is a hard error: the security profile depends on it.
func Restart(ctx context.Context) error {
	if out, err := exec.CommandContext(ctx, "systemctl", "restart", "fail2ban").CombinedOutput(); err != nil {
		return fmt.Errorf("failed to restart fail2ban: %w\n%s", err, out)
	}
	if out, err := exec.CommandContext(ctx, "systemctl", "is-active", "--quiet", "fail2ban").CombinedOutput(); err != nil {
		return fmt.Errorf("fail2ban did not come up after restart: %w\n%s", err, out)
	}
	return nil
}

// JailStatus is the per-category ban count view for the dashboard.
type JailStatus struct {
	Jail            string
	CurrentlyBanned int
	TotalBanned     int
}

// Status queries fail2ban-client for every category jail.
func Status(ctx context.Context) ([]JailStatus, error) {
	var statuses []JailStatus
	for _, c := range Categories {
		out, err := exec.CommandContext(ctx, "fail2ban-client", "status", c.Name).Output()
		if err != nil {
			// A jail missing from the daemon is reported, not fatal; the
			// operator may be mid-install.
			statuses = append(statuses, JailStatus{Jail: c.Name, CurrentlyBanned: -1, TotalBanned: -1})
			continue
		}
		s := parseStatus(string(out))
		s.Jail = c.Name
		statuses = append(statuses, s)
	}
	return statuses, nil
}

func parseStatus(out string) JailStatus {
	var s JailStatus
	scanner := bufio.NewScanner(strings.NewReader(out))
	for scanner.Scan() {
		line := scanner.Text()
		if i := strings.Index(line, "Currently banned:"); i >= 0 {
			s.CurrentlyBanned = parseTrailingInt(line[i:])
		}
		if i := strings.Index(line, "Total banned:"); i >= 0 {
			s.TotalBanned = parseTrailingInt(line[i:])
		}
	}
	return s
}

func parseTrailingInt(field string) int {
	parts := strings.Fields(field)
	if len(parts) == 0 {
		return 0
	}
	n, err := strconv.Atoi(parts[len(parts)-1])
	if err != nil {
		return 0
	}
	return n
}

// Unban removes the address from every category jail. Jails that never
// banned the address answer with an error, which is expected and ignored.
func Unban(ctx context.Context, ip string) error {
	if ip == "" {
		return fmt.Errorf("no address given")
	}
	var unbanned int
	for _, c := range Categories {
		if err := exec.CommandContext(ctx, "fail2ban-client", "set", c.Name, "unbanip", ip).Run(); err == nil {
			unbanned++
		}
	}
	if unbanned == 0 {
		return fmt.Errorf("%s was not banned in any jail", ip)
	}
	return nil
}
