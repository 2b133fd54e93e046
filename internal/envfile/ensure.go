package envfile

import (
	"github.com/dennisneo6969/esc-compose-prod/internal/ui"
)

// EnsureValid loops edit → validate until the document has no blocking
// errors and any warnings are acknowledged by the operator. There is no
// retry cap; the loop ends when the operator produces a valid document.
// confirm is asked whether to proceed despite warnings.
func EnsureValid(path string, confirm func(question string) bool) error {
	for {
		if err := Edit(path); err != nil {
			return err
		}

		report, err := ValidateFile(path)
		if err != nil {
			return err
		}

		if len(report.Errors) > 0 {
			ui.Error("The environment file has problems that must be fixed:\n")
			for _, e := range report.Errors {
				ui.Error("  - %s\n", e)
			}
			ui.Info("Reopening the editor...\n")
			continue
		}

		if len(report.Warnings) > 0 {
			ui.Warn("The environment file still contains placeholder credentials:\n")
			for _, w := range report.Warnings {
				ui.Warn("  - %s\n", w)
			}
			if !confirm("Continue with these placeholders in place?") {
				continue
			}
		}

		return nil
	}
}
