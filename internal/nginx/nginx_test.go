package nginx

import (
	"strings"
	"testing"

	"github.com/dennisneo6969/esc-compose-prod/internal/config"
	"github.com/dennisneo6969/esc-compose-prod/internal/tlsmanager"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSettings(security bool) config.Settings {
	s := config.Settings{
		Domain:           "example.com",
		RegistryUsername: "escuser",
		InstallPath:      "/opt/esc",
		TLSMode:          config.TLSModeNone,
	}
	if security {
		s.SecurityEnabled = true
		s.SecurityContactEmail = "security@example.com"
	}
	return s
}

func testCerts() tlsmanager.CertPaths {
	return tlsmanager.CertPaths{
		Cert:    "/opt/esc/certs/issued/example.com/fullchain.pem",
		Key:     "/opt/esc/certs/issued/example.com/privkey.pem",
		DHParam: "",
	}
}

func render(t *testing.T, settings config.Settings, certs tlsmanager.CertPaths, mode config.TLSMode) string {
	t.Helper()
	doc, err := Render(settings, certs, mode)
	require.NoError(t, err)
	return string(doc)
}

func TestRenderPlainHTTP(t *testing.T) {
	out := render(t, testSettings(false), tlsmanager.CertPaths{}, config.TLSModeNone)

	assert.Contains(t, out, "upstream esc_app")
	assert.Contains(t, out, "server 127.0.0.1:8000;")
	assert.Contains(t, out, "listen 80;")
	assert.Contains(t, out, "server_name example.com www.example.com;")
	assert.Contains(t, out, "proxy_pass http://esc_app;")

	assert.NotContains(t, out, "listen 443")
	assert.NotContains(t, out, "ssl_certificate")
	assert.NotContains(t, out, "return 301")
	assert.NotContains(t, out, "limit_req_zone")
	assert.NotContains(t, out, "acme-challenge")
	assert.NotContains(t, out, "Strict-Transport-Security")
}

func TestRenderIssuedTLS(t *testing.T) {
	out := render(t, testSettings(false), testCerts(), config.TLSModeIssued)

	// Plaintext server redirects, but first answers ACME challenges so
	// renewals work without stopping the proxy.
	assert.Contains(t, out, "location /.well-known/acme-challenge/")
	assert.Contains(t, out, "root /opt/esc/acme-webroot;")
	assert.Contains(t, out, "return 301 https://$host$request_uri;")

	assert.Contains(t, out, "listen 443 ssl;")
	assert.Contains(t, out, "ssl_certificate /opt/esc/certs/issued/example.com/fullchain.pem;")
	assert.Contains(t, out, "ssl_certificate_key /opt/esc/certs/issued/example.com/privkey.pem;")
	assert.Contains(t, out, "ssl_protocols TLSv1.2 TLSv1.3;")
	assert.Contains(t, out, "Strict-Transport-Security")
	assert.NotContains(t, out, "ssl_dhparam")
}

func TestRenderSelfSignedTLS(t *testing.T) {
	certs := tlsmanager.CertPaths{
		Cert:    "/opt/esc/certs/selfsigned/selfsigned.crt",
		Key:     "/opt/esc/certs/selfsigned/selfsigned.key",
		DHParam: "/opt/esc/certs/selfsigned/dhparam.pem",
	}
	out := render(t, testSettings(false), certs, config.TLSModeSelfSigned)

	assert.Contains(t, out, "ssl_certificate /opt/esc/certs/selfsigned/selfsigned.crt;")
	assert.Contains(t, out, "ssl_dhparam /opt/esc/certs/selfsigned/dhparam.pem;")
	assert.Contains(t, out, "return 301 https://$host$request_uri;")

	// Challenge handling only exists for issued certificates.
	assert.NotContains(t, out, "acme-challenge")
}

func TestRenderTLSRequiresCertMaterial(t *testing.T) {
	_, err := Render(testSettings(false), tlsmanager.CertPaths{}, config.TLSModeIssued)
	require.Error(t, err)
	_, err = Render(testSettings(false), tlsmanager.CertPaths{}, config.TLSModeSelfSigned)
	require.Error(t, err)
}

func TestRenderSecurityProfile(t *testing.T) {
	out := render(t, testSettings(true), testCerts(), config.TLSModeIssued)

	assert.Equal(t, 3, strings.Count(out, "limit_req_zone"))
	assert.Contains(t, out, "zone=esc_general:10m rate=10r/s;")
	assert.Contains(t, out, "zone=esc_api:10m rate=5r/s;")
	assert.Contains(t, out, "zone=esc_auth:10m rate=1r/s;")
	assert.Contains(t, out, "limit_req zone=esc_general burst=20 nodelay;")
	assert.Contains(t, out, "limit_req zone=esc_api burst=10 nodelay;")
	assert.Contains(t, out, "limit_req zone=esc_auth burst=5 nodelay;")

	// The catch-all block must come before the named servers so unmatched
	// hosts on the default server hit it.
	catchAll := strings.Index(out, "server_name _;")
	named := strings.Index(out, "server_name example.com www.example.com;")
	require.Greater(t, catchAll, 0)
	require.Greater(t, named, 0)
	assert.Less(t, catchAll, named)
	assert.Contains(t, out, "return 403;")

	for _, cidr := range CloudflareRanges {
		assert.Contains(t, out, "allow "+cidr+";")
	}
	assert.Contains(t, out, "deny all;")
	for _, path := range DenyPaths {
		assert.Contains(t, out, "location ~ "+path)
	}
}

func TestRenderSecurityDisabledOmitsProfile(t *testing.T) {
	out := render(t, testSettings(false), testCerts(), config.TLSModeIssued)

	assert.NotContains(t, out, "limit_req")
	assert.NotContains(t, out, "server_name _;")
	assert.NotContains(t, out, "allow ")
}
