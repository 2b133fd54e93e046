package tlsmanager

import (
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"time"

	"github.com/dennisneo6969/esc-compose-prod/internal/config"
	"github.com/dennisneo6969/esc-compose-prod/internal/logging"
	"github.com/go-acme/lego/v4/certcrypto"
	"github.com/go-acme/lego/v4/certificate"
	"github.com/go-acme/lego/v4/lego"
	"github.com/go-acme/lego/v4/providers/http/webroot"
	"github.com/go-acme/lego/v4/registration"
)

// renewBefore is how close to expiry a certificate must be before the
// daily timer actually renews it.
const renewBefore = 30 * 24 * time.Hour

// Renew checks the issued certificate's expiry and re-obtains it when it is
// within the renewal window. Unlike first issuance it answers http-01
// challenges from the webroot nginx already serves, so the proxy stays up.
// It returns true when new material was written and the proxy should be
// reloaded.
func Renew(settings config.Settings, log *logging.Logger) (bool, error) {
	if settings.TLSMode != config.TLSModeIssued {
		log.Info("TLS mode is not issued; nothing to renew")
		return false, nil
	}

	paths := IssuedPaths(settings.InstallPath, settings.Domain)
	due, expiry, err := renewalDue(paths.Cert)
	if err != nil {
		return false, err
	}
	if !due {
		log.Info(fmt.Sprintf("certificate for %s valid until %s; no renewal needed", settings.Domain, expiry.Format(time.RFC3339)))
		return false, nil
	}
	log.Info(fmt.Sprintf("certificate for %s expires %s; renewing", settings.Domain, expiry.Format(time.RFC3339)))

	key, err := loadOrCreateAccountKey(config.AccountKeyDir(settings.InstallPath), settings.TLSContactEmail)
	if err != nil {
		return false, err
	}
	user := &acmeUser{email: settings.TLSContactEmail, privateKey: key}
	legoCfg := lego.NewConfig(user)
	legoCfg.Certificate.KeyType = certcrypto.RSA2048

	client, err := lego.NewClient(legoCfg)
	if err != nil {
		return false, fmt.Errorf("failed to create ACME client: %w", err)
	}

	provider, err := webroot.NewHTTPProvider(config.ACMEWebroot(settings.InstallPath))
	if err != nil {
		return false, fmt.Errorf("failed to create webroot provider: %w", err)
	}
	if err := client.Challenge.SetHTTP01Provider(provider); err != nil {
		return false, fmt.Errorf("failed to configure http-01 provider: %w", err)
	}

	reg, err := client.Registration.ResolveAccountByKey()
	if err != nil {
		reg, err = client.Registration.Register(registration.RegisterOptions{TermsOfServiceAgreed: true})
		if err != nil {
			return false, fmt.Errorf("ACME account registration failed: %w", err)
		}
	}
	user.registration = reg

	res, err := client.Certificate.Obtain(certificate.ObtainRequest{
		Domains: []string{settings.Domain, settings.WWWDomain()},
		Bundle:  true,
	})
	if err != nil {
		return false, fmt.Errorf("certificate renewal for %s failed: %w", settings.Domain, err)
	}

	if err := writeIssued(paths, res); err != nil {
		return false, err
	}
	log.Success(fmt.Sprintf("renewed certificate for %s", settings.Domain))
	return true, nil
}

func renewalDue(certPath string) (bool, time.Time, error) {
	raw, err := os.ReadFile(certPath)
	if err != nil {
		if os.IsNotExist(err) {
			// No material yet; obtain rather than renew.
			return true, time.Time{}, nil
		}
		return false, time.Time{}, fmt.Errorf("failed to read certificate %s: %w", certPath, err)
	}

	block, _ := pem.Decode(raw)
	if block == nil {
		return false, time.Time{}, fmt.Errorf("certificate %s is not valid PEM", certPath)
	}
	cert, err := x509.ParseCertificate(block.Bytes)
	if err != nil {
		return false, time.Time{}, fmt.Errorf("failed to parse certificate %s: %w", certPath, err)
	}
	return time.Until(cert.NotAfter) < renewBefore, cert.NotAfter, nil
}
