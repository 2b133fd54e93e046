// Package compose generates the docker-compose.yml for the application
// stack from typed service definitions. The file is generated, never
// parsed back; operator customization belongs in the environment file.
package compose

import (
	"fmt"
	"os"

	"github.com/dennisneo6969/esc-compose-prod/internal/config"
	"github.com/dennisneo6969/esc-compose-prod/internal/constants"
	"gopkg.in/yaml.v3"
)

type Service struct {
	Image     string   `yaml:"image"`
	Command   string   `yaml:"command,omitempty"`
	EnvFile   []string `yaml:"env_file,omitempty"`
	Ports     []string `yaml:"ports,omitempty"`
	Volumes   []string `yaml:"volumes,omitempty"`
	DependsOn []string `yaml:"depends_on,omitempty"`
	Restart   string   `yaml:"restart"`
	Networks  []string `yaml:"networks"`
}

type Network struct {
	Driver string `yaml:"driver"`
}

type Project struct {
	Name     string              `yaml:"name"`
	Services map[string]Service  `yaml:"services"`
	Networks map[string]Network  `yaml:"networks"`
	Volumes  map[string]struct{} `yaml:"volumes,omitempty"`
}

// Generate builds the stack definition: the web process bound to the fixed
// local port the reverse proxy fronts, task workers and the scheduler on
// the same image, and redis as cache and broker.
func Generate(settings config.Settings) Project {
	image := settings.Image()
	network := constants.ComposeProject + "-net"
	envFile := []string{constants.EnvFileName}

	return Project{
		Name: constants.ComposeProject,
		Services: map[string]Service{
			"web": {
				Image:     image,
				EnvFile:   envFile,
				Ports:     []string{fmt.Sprintf("127.0.0.1:%s:%s", constants.AppPort, constants.AppPort)},
				Volumes:   []string{"media:/app/media"},
				DependsOn: []string{"redis"},
				Restart:   "unless-stopped",
				Networks:  []string{network},
			},
			"worker": {
				Image:     image,
				Command:   "celery -A esc worker --loglevel=info",
				EnvFile:   envFile,
				Volumes:   []string{"media:/app/media"},
				DependsOn: []string{"redis"},
				Restart:   "unless-stopped",
				Networks:  []string{network},
			},
			"scheduler": {
				Image:     image,
				Command:   "celery -A esc beat --loglevel=info",
				EnvFile:   envFile,
				DependsOn: []string{"redis"},
				Restart:   "unless-stopped",
				Networks:  []string{network},
			},
			"redis": {
				Image:    "redis:7-alpine",
				Volumes:  []string{"redis-data:/data"},
				Restart:  "unless-stopped",
				Networks: []string{network},
			},
		},
		Networks: map[string]Network{network: {Driver: "bridge"}},
		Volumes: map[string]struct{}{
			"media":      {},
			"redis-data": {},
		},
	}
}

// Write marshals the project definition to the compose file path.
func Write(settings config.Settings) error {
	project := Generate(settings)
	out, err := yaml.Marshal(project)
	if err != nil {
		return fmt.Errorf("failed to marshal compose project: %w", err)
	}

	path := config.ComposeFilePath(settings.InstallPath)
	header := []byte("# Managed by escadm. Regenerated on every provisioning run; do not edit.\n")
	if err := os.WriteFile(path, append(header, out...), constants.ModeFileDefault); err != nil {
		return fmt.Errorf("failed to write compose file %s: %w", path, err)
	}
	return nil
}
