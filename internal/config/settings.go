package config

import (
	"fmt"

	"github.com/dennisneo6969/esc-compose-prod/internal/constants"
	"github.com/dennisneo6969/esc-compose-prod/internal/helpers"
)

// TLSMode selects how certificate material is produced.
type TLSMode string

const (
	TLSModeIssued     TLSMode = "issued"
	TLSModeSelfSigned TLSMode = "self_signed"
	TLSModeNone       TLSMode = "none"
)

func ParseTLSMode(s string) (TLSMode, error) {
	switch TLSMode(s) {
	case TLSModeIssued, TLSModeSelfSigned, TLSModeNone:
		return TLSMode(s), nil
	case "":
		// Documented default when the operator makes no explicit selection.
		return TLSModeNone, nil
	}
	return "", fmt.Errorf("unknown TLS mode %q (expected issued, self_signed or none)", s)
}

// Settings is the persisted configuration record. It is passed by value
// between components and only written back to disk at the end of a
// successful run. The registry password is deliberately not part of it.
type Settings struct {
	Domain               string
	RegistryUsername     string
	InstallPath          string
	TLSMode              TLSMode
	TLSContactEmail      string
	SecurityEnabled      bool
	SecurityContactEmail string
}

// Validate enforces the record invariants: a DNS-shaped domain, a registry
// account, and contact emails exactly where the selected modes require them.
func (s Settings) Validate() error {
	if err := helpers.IsValidDomain(s.Domain); err != nil {
		return fmt.Errorf("invalid domain: %w", err)
	}
	if s.RegistryUsername == "" {
		return fmt.Errorf("registry username cannot be empty")
	}
	if s.InstallPath == "" {
		return fmt.Errorf("install path cannot be empty")
	}
	switch s.TLSMode {
	case TLSModeIssued:
		if !helpers.IsValidEmail(s.TLSContactEmail) {
			return fmt.Errorf("a valid contact email is required when TLS mode is %q", TLSModeIssued)
		}
	case TLSModeSelfSigned, TLSModeNone:
		if s.TLSContactEmail != "" {
			return fmt.Errorf("TLS contact email is only valid when TLS mode is %q", TLSModeIssued)
		}
	default:
		return fmt.Errorf("unknown TLS mode %q", s.TLSMode)
	}
	if s.SecurityEnabled {
		if !helpers.IsValidEmail(s.SecurityContactEmail) {
			return fmt.Errorf("a valid security contact email is required when the security profile is enabled")
		}
	} else if s.SecurityContactEmail != "" {
		return fmt.Errorf("security contact email is only valid when the security profile is enabled")
	}
	return nil
}

// Image is the full container image reference for the application stack.
func (s Settings) Image() string {
	return fmt.Sprintf("%s/%s:%s", s.RegistryUsername, constants.ImageRepository, constants.ImageTag)
}

// WWWDomain is the "www" alias covered by issued and self-signed certificates.
func (s Settings) WWWDomain() string {
	return "www." + s.Domain
}
