package tlsmanager

import (
	"context"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"fmt"
	"math/big"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/dennisneo6969/esc-compose-prod/internal/config"
	"github.com/dennisneo6969/esc-compose-prod/internal/constants"
)

const (
	selfSignedKeyBits  = 2048
	selfSignedValidity = 365 * 24 * time.Hour
)

// generateSelfSigned mints a 2048-bit key and a certificate self-signed for
// the domain and its www alias, valid for one year, plus DH parameters for
// the proxy's TLS listener.
func generateSelfSigned(ctx context.Context, settings config.Settings, paths CertPaths) error {
	dir := filepath.Dir(paths.Cert)
	if err := os.MkdirAll(dir, constants.ModeDirPrivate); err != nil {
		return fmt.Errorf("failed to create certificate directory %s: %w", dir, err)
	}

	key, err := rsa.GenerateKey(rand.Reader, selfSignedKeyBits)
	if err != nil {
		return fmt.Errorf("failed to generate private key: %w", err)
	}

	serial, err := rand.Int(rand.Reader, new(big.Int).Lsh(big.NewInt(1), 128))
	if err != nil {
		return fmt.Errorf("failed to generate serial number: %w", err)
	}

	now := time.Now()
	template := x509.Certificate{
		SerialNumber: serial,
		Subject: pkix.Name{
			CommonName:   settings.Domain,
			Organization: []string{"ESC"},
		},
		NotBefore:             now,
		NotAfter:              now.Add(selfSignedValidity),
		KeyUsage:              x509.KeyUsageKeyEncipherment | x509.KeyUsageDigitalSignature,
		ExtKeyUsage:           []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
		BasicConstraintsValid: true,
		DNSNames:              []string{settings.Domain, settings.WWWDomain()},
	}

	der, err := x509.CreateCertificate(rand.Reader, &template, &template, &key.PublicKey, key)
	if err != nil {
		return fmt.Errorf("failed to create certificate: %w", err)
	}

	certPEM := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	if err := os.WriteFile(paths.Cert, certPEM, constants.ModeFileDefault); err != nil {
		return fmt.Errorf("failed to write certificate: %w", err)
	}

	keyPEM := pem.EncodeToMemory(&pem.Block{Type: "RSA PRIVATE KEY", Bytes: x509.MarshalPKCS1PrivateKey(key)})
	if err := os.WriteFile(paths.Key, keyPEM, constants.ModeFileSecret); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}

	// DH parameter generation has no stdlib equivalent; openssl is already a
	// baseline package on the host.
	out, err := exec.CommandContext(ctx, "openssl", "dhparam", "-out", paths.DHParam, "2048").CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to generate DH parameters: %w\n%s", err, out)
	}
	return nil
}
