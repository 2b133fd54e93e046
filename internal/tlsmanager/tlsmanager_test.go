package tlsmanager

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssuedPaths(t *testing.T) {
	paths := IssuedPaths("/opt/esc", "example.com")
	assert.Equal(t, "/opt/esc/certs/issued/example.com/fullchain.pem", paths.Cert)
	assert.Equal(t, "/opt/esc/certs/issued/example.com/privkey.pem", paths.Key)
	assert.Empty(t, paths.DHParam)
}

func TestSelfSignedPaths(t *testing.T) {
	paths := SelfSignedPaths("/opt/esc")
	assert.Equal(t, "/opt/esc/certs/selfsigned/selfsigned.crt", paths.Cert)
	assert.Equal(t, "/opt/esc/certs/selfsigned/selfsigned.key", paths.Key)
	assert.Equal(t, "/opt/esc/certs/selfsigned/dhparam.pem", paths.DHParam)
}

func TestCertPathsExists(t *testing.T) {
	dir := t.TempDir()
	write := func(name string) string {
		path := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(path, []byte("x"), 0o600))
		return path
	}

	empty := CertPaths{}
	assert.False(t, empty.Exists())

	partial := CertPaths{Cert: write("cert.pem")}
	assert.False(t, partial.Exists())

	pair := CertPaths{Cert: write("fullchain.pem"), Key: write("privkey.pem")}
	assert.True(t, pair.Exists())

	withMissingDH := pair
	withMissingDH.DHParam = filepath.Join(dir, "dhparam.pem")
	assert.False(t, withMissingDH.Exists())

	withDH := pair
	withDH.DHParam = write("dhparam.pem")
	assert.True(t, withDH.Exists())
}

// writeTestCert writes a throwaway certificate expiring at notAfter.
func writeTestCert(t *testing.T, path string, notAfter time.Time) {
	t.Helper()
	key, err := rsa.GenerateKey(rand.Reader, 2048)
	require.NoError(t, err)

	tmpl := x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "example.com"},
		NotBefore:    notAfter.Add(-time.Hour),
		NotAfter:     notAfter,
		DNSNames:     []string{"example.com"},
	}
	der, err := x509.CreateCertificate(rand.Reader, &tmpl, &tmpl, &key.PublicKey, key)
	require.NoError(t, err)

	buf := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	require.NoError(t, os.WriteFile(path, buf, 0o600))
}

func TestRenewalDue(t *testing.T) {
	dir := t.TempDir()

	t.Run("missing certificate means obtain now", func(t *testing.T) {
		due, _, err := renewalDue(filepath.Join(dir, "absent.pem"))
		require.NoError(t, err)
		assert.True(t, due)
	})

	t.Run("fresh certificate is not due", func(t *testing.T) {
		path := filepath.Join(dir, "fresh.pem")
		writeTestCert(t, path, time.Now().Add(60*24*time.Hour))
		due, expiry, err := renewalDue(path)
		require.NoError(t, err)
		assert.False(t, due)
		assert.WithinDuration(t, time.Now().Add(60*24*time.Hour), expiry, time.Minute)
	})

	t.Run("certificate inside the window is due", func(t *testing.T) {
		path := filepath.Join(dir, "closing.pem")
		writeTestCert(t, path, time.Now().Add(10*24*time.Hour))
		due, _, err := renewalDue(path)
		require.NoError(t, err)
		assert.True(t, due)
	})

	t.Run("garbage is an error", func(t *testing.T) {
		path := filepath.Join(dir, "garbage.pem")
		require.NoError(t, os.WriteFile(path, []byte("not pem at all"), 0o600))
		_, _, err := renewalDue(path)
		require.Error(t, err)
	})
}
