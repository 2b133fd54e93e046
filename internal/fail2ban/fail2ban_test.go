package fail2ban

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/dennisneo6969/esc-compose-prod/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func securitySettings() config.Settings {
	return config.Settings{
		Domain:               "example.com",
		RegistryUsername:     "escuser",
		InstallPath:          "/opt/esc",
		TLSMode:              config.TLSModeNone,
		SecurityEnabled:      true,
		SecurityContactEmail: "security@example.com",
	}
}

func TestCategoriesAreNamespaced(t *testing.T) {
	require.Len(t, Categories, 9)
	seen := map[string]bool{}
	for _, c := range Categories {
		assert.True(t, strings.HasPrefix(c.Name, JailPrefix), "jail %s must carry the prefix", c.Name)
		assert.False(t, seen[c.Name], "jail %s defined twice", c.Name)
		seen[c.Name] = true
		assert.NotEmpty(t, c.Patterns, "jail %s has no patterns", c.Name)
		assert.Greater(t, c.MaxRetry, 0)
		assert.Greater(t, c.FindTime, 0)
		assert.Greater(t, c.BanTime, 0)
	}
}

func TestRenderJail(t *testing.T) {
	out, err := RenderJail(securitySettings())
	require.NoError(t, err)
	doc := string(out)

	assert.Contains(t, doc, "[DEFAULT]")
	assert.Contains(t, doc, fmt.Sprintf("bantime = %d", DefaultBanTime))
	assert.Contains(t, doc, fmt.Sprintf("findtime = %d", DefaultFindTime))
	assert.Contains(t, doc, fmt.Sprintf("maxretry = %d", DefaultMaxRetry))
	assert.Contains(t, doc, "destemail = security@example.com")
	assert.Contains(t, doc, "banaction = ufw")

	for _, c := range Categories {
		assert.Contains(t, doc, fmt.Sprintf("[%s]", c.Name))
		assert.Contains(t, doc, fmt.Sprintf("filter = %s", c.Name))
	}

	// Spot-check the severity scale: one SQL injection attempt earns a
	// week, floods are judged over a ten second window.
	assert.Contains(t, doc, "bantime = 604800")
	assert.Contains(t, doc, "findtime = 10")
}

func TestInstallWritesJailAndFilters(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, Install(securitySettings(), root))

	jail, err := os.ReadFile(filepath.Join(root, "jail.local"))
	require.NoError(t, err)
	assert.Contains(t, string(jail), "[esc-auth]")

	for _, c := range Categories {
		raw, err := os.ReadFile(filepath.Join(root, "filter.d", c.Name+".conf"))
		require.NoError(t, err, "filter for %s missing", c.Name)
		content := string(raw)
		assert.Contains(t, content, "[Definition]")
		assert.Contains(t, content, "failregex =")
		for _, p := range c.Patterns {
			assert.Contains(t, content, p)
		}
	}
}

func TestParseStatus(t *testing.T) {
	out := `Status for the jail: esc-auth
|- Filter
|  |- Currently failed:	1
|  |- Total failed:	12
|  ` + "`" + `- File list:	/var/log/nginx/esc.access.log
` + "`" + `- Actions
   |- Currently banned:	2
   |- Total banned:	7
   ` + "`" + `- Banned IP list:	203.0.113.7 198.51.100.23
`
	s := parseStatus(out)
	assert.Equal(t, 2, s.CurrentlyBanned)
	assert.Equal(t, 7, s.TotalBanned)
}

func TestParseStatusEmpty(t *testing.T) {
	s := parseStatus("")
	assert.Equal(t, 0, s.CurrentlyBanned)
	assert.Equal(t, 0, s.TotalBanned)
}
