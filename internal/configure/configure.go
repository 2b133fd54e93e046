// Package configure walks the operator through the settings record. Every
// prompt re-asks until the answer is valid, so a returned record always
// satisfies the settings invariants.
package configure

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"golang.org/x/term"

	"github.com/dennisneo6969/esc-compose-prod/internal/config"
	"github.com/dennisneo6969/esc-compose-prod/internal/helpers"
	"github.com/dennisneo6969/esc-compose-prod/internal/ui"
)

// errInputClosed ends the prompt loops when stdin is exhausted, so a
// non-interactive caller gets a failing exit instead of an endless re-ask.
var errInputClosed = errors.New("input closed before configuration was complete")

type Configurator struct {
	in           *bufio.Reader
	readPassword func() (string, error)
}

func New() *Configurator {
	return &Configurator{
		in: bufio.NewReader(os.Stdin),
		readPassword: func() (string, error) {
			raw, err := term.ReadPassword(int(os.Stdin.Fd()))
			fmt.Println()
			if err != nil {
				return "", err
			}
			return string(raw), nil
		},
	}
}

// NewWithInput wires scripted input, used by tests.
func NewWithInput(r io.Reader, readPassword func() (string, error)) *Configurator {
	return &Configurator{in: bufio.NewReader(r), readPassword: readPassword}
}

// Gather produces a finalized settings record. When an existing record is
// offered and accepted, it is carried over unchanged and reuse mode is
// reported so the caller can skip one-time setup.
func (c *Configurator) Gather(existing *config.Settings) (config.Settings, bool, error) {
	if existing != nil {
		c.showSummary(*existing)
		if c.Confirm("Use the existing configuration?") {
			if err := existing.Validate(); err != nil {
				return config.Settings{}, false, fmt.Errorf("saved configuration is no longer valid: %w", err)
			}
			return *existing, true, nil
		}
	}

	var prior config.Settings
	if existing != nil {
		prior = *existing
	} else {
		prior.InstallPath = config.InstallDir()
	}

	var s config.Settings
	var err error

	s.Domain, err = c.promptValidated("Domain name (e.g. example.com)", prior.Domain, func(v string) error {
		return helpers.IsValidDomain(v)
	})
	if err != nil {
		return config.Settings{}, false, err
	}
	s.RegistryUsername, err = c.promptValidated("Container registry username", prior.RegistryUsername, func(v string) error {
		if v == "" {
			return fmt.Errorf("cannot be empty")
		}
		return nil
	})
	if err != nil {
		return config.Settings{}, false, err
	}
	s.InstallPath, err = c.promptDefault("Install path", prior.InstallPath)
	if err != nil {
		return config.Settings{}, false, err
	}
	if s.InstallPath == "" {
		s.InstallPath = config.InstallDir()
	}

	s.TLSMode, err = c.promptTLSMode(prior.TLSMode)
	if err != nil {
		return config.Settings{}, false, err
	}
	if s.TLSMode == config.TLSModeIssued {
		s.TLSContactEmail, err = c.promptValidated("Contact email for certificate issuance", prior.TLSContactEmail, func(v string) error {
			if !helpers.IsValidEmail(v) {
				return fmt.Errorf("not a valid email address")
			}
			return nil
		})
		if err != nil {
			return config.Settings{}, false, err
		}
	}

	s.SecurityEnabled, err = c.confirmDefault("Enable the security profile (CDN allow-list, rate limits, intrusion prevention)?", prior.SecurityEnabled)
	if err != nil {
		return config.Settings{}, false, err
	}
	if s.SecurityEnabled {
		s.SecurityContactEmail, err = c.promptValidated("Security contact email", prior.SecurityContactEmail, func(v string) error {
			if !helpers.IsValidEmail(v) {
				return fmt.Errorf("not a valid email address")
			}
			return nil
		})
		if err != nil {
			return config.Settings{}, false, err
		}
	}

	if err := s.Validate(); err != nil {
		return config.Settings{}, false, fmt.Errorf("gathered settings are invalid: %w", err)
	}
	return s, false, nil
}

// RegistryPassword collects the registry password without echo. It is
// asked on every run and never persisted.
func (c *Configurator) RegistryPassword() (string, error) {
	for {
		ui.Info("Container registry password: ")
		pw, err := c.readPassword()
		if err != nil {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		if pw != "" {
			return pw, nil
		}
		ui.Error("Password cannot be empty.\n")
	}
}

func (c *Configurator) showSummary(s config.Settings) {
	lines := []string{
		fmt.Sprintf("Domain:            %s", s.Domain),
		fmt.Sprintf("Registry username: %s", s.RegistryUsername),
		fmt.Sprintf("Install path:      %s", s.InstallPath),
		fmt.Sprintf("TLS mode:          %s", s.TLSMode),
	}
	if s.TLSMode == config.TLSModeIssued {
		lines = append(lines, fmt.Sprintf("TLS contact:       %s", s.TLSContactEmail))
	}
	lines = append(lines, fmt.Sprintf("Security profile:  %t", s.SecurityEnabled))
	if s.SecurityEnabled {
		lines = append(lines, fmt.Sprintf("Security contact:  %s", s.SecurityContactEmail))
	}
	ui.Section("Saved configuration", lines)
}

// readLine returns the next trimmed input line. A read error with no
// buffered line (EOF included) is surfaced so callers stop prompting.
func (c *Configurator) readLine() (string, error) {
	line, err := c.in.ReadString('\n')
	if err != nil && line == "" {
		return "", errInputClosed
	}
	return strings.TrimSpace(line), nil
}

// promptDefault asks once; empty input selects the default.
func (c *Configurator) promptDefault(label, def string) (string, error) {
	if def != "" {
		ui.Info("%s [%s]: ", label, def)
	} else {
		ui.Info("%s: ", label)
	}
	answer, err := c.readLine()
	if err != nil {
		return "", err
	}
	if answer == "" {
		return def, nil
	}
	return answer, nil
}

// promptValidated re-asks until validate accepts the answer.
func (c *Configurator) promptValidated(label, def string, validate func(string) error) (string, error) {
	for {
		answer, err := c.promptDefault(label, def)
		if err != nil {
			return "", err
		}
		if err := validate(answer); err != nil {
			ui.Error("%s\n", err)
			continue
		}
		return answer, nil
	}
}

func (c *Configurator) promptTLSMode(prior config.TLSMode) (config.TLSMode, error) {
	def := string(prior)
	for {
		ui.Info("TLS mode (issued, self_signed, none)")
		if def != "" {
			ui.Info(" [%s]", def)
		} else {
			// No explicit selection falls back to the documented default.
			ui.Info(" [none]")
		}
		ui.Info(": ")
		answer, err := c.readLine()
		if err != nil {
			return "", err
		}
		if answer == "" {
			answer = def
		}
		mode, err := config.ParseTLSMode(answer)
		if err != nil {
			ui.Error("%s\n", err)
			continue
		}
		return mode, nil
	}
}

// Confirm asks a yes/no question, defaulting to yes. Exhausted input
// counts as a decline; it cannot consent to anything.
func (c *Configurator) Confirm(question string) bool {
	ui.Info("%s [Y/n]: ", question)
	answer, err := c.readLine()
	if err != nil {
		return false
	}
	answer = strings.ToLower(answer)
	return answer == "" || answer == "y" || answer == "yes"
}

func (c *Configurator) confirmDefault(question string, def bool) (bool, error) {
	hint := "y/N"
	if def {
		hint = "Y/n"
	}
	ui.Info("%s [%s]: ", question, hint)
	answer, err := c.readLine()
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes":
		return true, nil
	case "n", "no":
		return false, nil
	default:
		return def, nil
	}
}
