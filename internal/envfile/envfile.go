// Package envfile renders, edits and validates the application's flat
// VAR=value environment document. Validation is exact-match against the
// known placeholder values the template ships with; fuzzy matching would
// risk flagging legitimate operator values.
package envfile

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/dennisneo6969/esc-compose-prod/internal/constants"
	"github.com/dennisneo6969/esc-compose-prod/internal/embed"
	"github.com/joho/godotenv"
)

// Placeholder values the template ships with. Validation compares against
// these literally.
const (
	PlaceholderSecretKey    = "change-me-to-a-long-random-string"
	PlaceholderDomainToken  = "yourdomain.com"
	PlaceholderDBCredential = "esc:change-me-password@"
	PlaceholderEmailUser    = "mailer@yourdomain.com"
	PlaceholderS3AccessKey  = "your-access-key"
	PlaceholderS3SecretKey  = "your-secret-key"
	PlaceholderPaymentKey   = "replace-me"
)

type templateData struct {
	Domain string
}

// Render produces the environment document for the given domain. The domain
// is substituted into URL-shaped derived fields (site URL, CSRF origins,
// CDN domain, OAuth callback, mail sender); ALLOWED_HOSTS keeps its
// placeholder so the operator has to confirm it explicitly during editing.
func Render(domain string) ([]byte, error) {
	return embed.Render(embed.EnvFileTemplate, templateData{Domain: domain})
}

// WriteIfMissing writes a freshly rendered document unless one already
// exists. Existing documents carry operator edits and are never overwritten.
func WriteIfMissing(path, domain string) (created bool, err error) {
	if _, statErr := os.Stat(path); statErr == nil {
		return false, nil
	} else if !os.IsNotExist(statErr) {
		return false, fmt.Errorf("failed to check environment file %s: %w", path, statErr)
	}

	doc, err := Render(domain)
	if err != nil {
		return false, err
	}
	if err := os.WriteFile(path, doc, constants.ModeFileSecret); err != nil {
		return false, fmt.Errorf("failed to write environment file %s: %w", path, err)
	}
	return true, nil
}

// Edit opens the document in the operator's editor and blocks until the
// editor exits.
func Edit(path string) error {
	editor := os.Getenv(constants.EnvVarEditor)
	if editor == "" {
		editor = "nano"
	}

	cmd := exec.Command(editor, path)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("editor %s failed: %w", editor, err)
	}
	return nil
}

// Report holds the outcome of validating a document. Errors block the run
// until fixed; warnings only need operator acknowledgment.
type Report struct {
	Errors   []string
	Warnings []string
}

func (r Report) OK() bool {
	return len(r.Errors) == 0 && len(r.Warnings) == 0
}

// Validate applies the fixed rule set to a parsed document.
func Validate(doc map[string]string) Report {
	var r Report

	secretKey := doc["SECRET_KEY"]
	if secretKey == "" || secretKey == PlaceholderSecretKey {
		r.Errors = append(r.Errors, "SECRET_KEY is empty or still the placeholder; set a long random value")
	}

	allowedHosts := doc["ALLOWED_HOSTS"]
	if allowedHosts == "" || strings.Contains(allowedHosts, PlaceholderDomainToken) {
		r.Errors = append(r.Errors, "ALLOWED_HOSTS is empty or still contains the placeholder domain")
	}

	if strings.Contains(doc["DATABASE_URL"], PlaceholderDBCredential) {
		r.Warnings = append(r.Warnings, "DATABASE_URL still uses the placeholder database password")
	}
	if doc["EMAIL_HOST_USER"] == PlaceholderEmailUser {
		r.Warnings = append(r.Warnings, "EMAIL_HOST_USER is still the placeholder mail account")
	}

	for _, key := range []string{
		"MEDIA_S3_ACCESS_KEY_ID", "STATIC_S3_ACCESS_KEY_ID", "BACKUP_S3_ACCESS_KEY_ID",
	} {
		if v, ok := doc[key]; ok && v == PlaceholderS3AccessKey {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s is still the placeholder object-storage key", key))
		}
	}
	for _, key := range []string{"PAYMENT_PUBLIC_KEY", "PAYMENT_SECRET_KEY", "PAYMENT_WEBHOOK_SECRET"} {
		if v, ok := doc[key]; ok && strings.Contains(v, PlaceholderPaymentKey) {
			r.Warnings = append(r.Warnings, fmt.Sprintf("%s is still the placeholder payment credential", key))
		}
	}

	return r
}

// ValidateFile parses and validates the document at path.
func ValidateFile(path string) (Report, error) {
	doc, err := godotenv.Read(path)
	if err != nil {
		return Report{}, fmt.Errorf("failed to parse environment file %s: %w", path, err)
	}
	return Validate(doc), nil
}
