package tlsmanager

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dennisneo6969/esc-compose-prod/internal/config"
	"github.com/dennisneo6969/esc-compose-prod/internal/constants"
	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/go-acme/lego/v4/certificate"
	"github.com/go-acme/lego/v4/challenge/http01"
	"github.com/go-acme/lego/v4/lego"
	"github.com/go-acme/lego/v4/registration"
)

// obtainIssued requests a certificate for the domain and its www variant
// using standalone http-01 validation. Port 80 must be free, so nginx is
// stopped for the duration of the challenge and started again afterwards.
func obtainIssued(ctx context.Context, settings config.Settings, paths CertPaths) error {
	key, err := loadOrCreateAccountKey(config.AccountKeyDir(settings.InstallPath), settings.TLSContactEmail)
	if err != nil {
		return err
	}

	user := &acmeUser{email: settings.TLSContactEmail, privateKey: key}
	legoCfg := lego.NewConfig(user)
	legoCfg.Certificate.KeyType = certcrypto.RSA2048

	client, err := lego.NewClient(legoCfg)
	if err != nil {
		return fmt.Errorf("failed to create ACME client: %w", err)
	}

	if err := client.Challenge.SetHTTP01Provider(http01.NewProviderServer("", "80")); err != nil {
		return fmt.Errorf("failed to configure http-01 provider: %w", err)
	}

	reg, err := client.Registration.ResolveAccountByKey()
	if err != nil {
		reg, err = client.Registration.Register(registration.RegisterOptions{TermsOfServiceAgreed: true})
		if err != nil {
			return fmt.Errorf("ACME account registration failed: %w", err)
		}
	}
	user.registration = reg

	// Standalone validation needs port 80 to itself.
	if err := systemctl(ctx, "stop"); err != nil {
		return err
	}
	defer func() {
		_ = systemctl(ctx, "start")
	}()

	res, err := client.Certificate.Obtain(certificate.ObtainRequest{
		Domains: []string{settings.Domain, settings.WWWDomain()},
		Bundle:  true,
	})
	if err != nil {
		return fmt.Errorf("certificate request for %s failed: %w", settings.Domain, err)
	}

	return writeIssued(paths, res)
}

func writeIssued(paths CertPaths, res *certificate.Resource) error {
	dir := filepath.Dir(paths.Cert)
	if err := os.MkdirAll(dir, constants.ModeDirPrivate); err != nil {
		return fmt.Errorf("failed to create certificate directory %s: %w", dir, err)
	}
	if err := os.WriteFile(paths.Cert, res.Certificate, constants.ModeFileDefault); err != nil {
		return fmt.Errorf("failed to write certificate: %w", err)
	}
	if err := os.WriteFile(paths.Key, res.PrivateKey, constants.ModeFileSecret); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}
	return nil
}
