package tlsmanager

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/pem"
	"fmt"
	"os"
	"path/filepath"

	"github.com/dennisneo6969/esc-compose-prod/internal/constants"
	"github.com/go-acme/lego/v4/registration"
)

// acmeUser satisfies lego's registration.User.
type acmeUser struct {
	email        string
	registration *registration.Resource
	privateKey   crypto.PrivateKey
}

func (u *acmeUser) GetEmail() string                        { return u.email }
func (u *acmeUser) GetRegistration() *registration.Resource { return u.registration }
func (u *acmeUser) GetPrivateKey() crypto.PrivateKey        { return u.privateKey }

// loadOrCreateAccountKey keeps one ACME account key per contact email so
// reruns and renewals reuse the same registration.
func loadOrCreateAccountKey(keyDir, email string) (crypto.PrivateKey, error) {
	if err := os.MkdirAll(keyDir, constants.ModeDirPrivate); err != nil {
		return nil, fmt.Errorf("failed to create account key directory: %w", err)
	}

	keyPath := filepath.Join(keyDir, email+".key")
	if raw, err := os.ReadFile(keyPath); err == nil {
		block, _ := pem.Decode(raw)
		if block == nil {
			return nil, fmt.Errorf("account key %s is not valid PEM", keyPath)
		}
		key, err := x509.ParseECPrivateKey(block.Bytes)
		if err != nil {
			return nil, fmt.Errorf("failed to parse account key %s: %w", keyPath, err)
		}
		return key, nil
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read account key %s: %w", keyPath, err)
	}

	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, fmt.Errorf("failed to generate account key: %w", err)
	}
	der, err := x509.MarshalECPrivateKey(key)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal account key: %w", err)
	}
	pemBytes := pem.EncodeToMemory(&pem.Block{Type: "EC PRIVATE KEY", Bytes: der})
	if err := os.WriteFile(keyPath, pemBytes, constants.ModeFileSecret); err != nil {
		return nil, fmt.Errorf("failed to write account key %s: %w", keyPath, err)
	}
	return key, nil
}
