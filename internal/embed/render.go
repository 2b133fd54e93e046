package embed

import (
	"bytes"
	"fmt"
	"text/template"
)

// Render executes one of the embedded templates with the given data. Every
// placeholder must resolve; a missing key is a programming error, not an
// operator mistake, so it fails the render.
func Render(name string, data any) ([]byte, error) {
	raw, err := TemplatesFS.ReadFile("templates/" + name)
	if err != nil {
		return nil, fmt.Errorf("failed to read embedded template %s: %w", name, err)
	}

	tmpl, err := template.New(name).Option("missingkey=error").Parse(string(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("failed to execute template %s: %w", name, err)
	}
	return buf.Bytes(), nil
}
