package provision

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"os/user"
	"strings"
	"time"

	"github.com/docker/docker/client"

	"github.com/dennisneo6969/esc-compose-prod/internal/compose"
	"github.com/dennisneo6969/esc-compose-prod/internal/config"
	"github.com/dennisneo6969/esc-compose-prod/internal/constants"
	"github.com/dennisneo6969/esc-compose-prod/internal/docker"
	"github.com/dennisneo6969/esc-compose-prod/internal/envfile"
	"github.com/dennisneo6969/esc-compose-prod/internal/fail2ban"
	"github.com/dennisneo6969/esc-compose-prod/internal/helpers"
	"github.com/dennisneo6969/esc-compose-prod/internal/nginx"
	"github.com/dennisneo6969/esc-compose-prod/internal/systemd"
	"github.com/dennisneo6969/esc-compose-prod/internal/tlsmanager"
	"github.com/dennisneo6969/esc-compose-prod/internal/ui"
)

const launchTimeout = 2 * time.Minute

// basePackages is the host baseline installed once per machine. fail2ban
// is appended when the security profile is enabled.
var basePackages = []string{"curl", "git", "openssl", "nginx", "ufw"}

// Provisioner builds and runs the ordered step plan for one finalized
// settings record. Outputs of earlier steps (docker client, registry auth,
// certificate paths) are carried in the struct for later steps.
type Provisioner struct {
	Settings         config.Settings
	RegistryPassword string
	ReuseMode        bool
	Confirm          func(question string) bool

	dockerClient *client.Client
	encodedAuth  string
	certPaths    tlsmanager.CertPaths
	effectiveTLS config.TLSMode
}

// EffectiveTLSMode is the mode the run actually ended up with; issuance
// failures degrade issued to none.
func (p *Provisioner) EffectiveTLSMode() config.TLSMode { return p.effectiveTLS }

// Run executes the full plan.
func (p *Provisioner) Run(ctx context.Context) (Result, error) {
	p.effectiveTLS = p.Settings.TLSMode
	return RunSteps(ctx, p.Plan(), p.ReuseMode)
}

// Plan returns the ordered step list. Later steps assume earlier steps'
// outputs exist, so the order is fixed.
func (p *Provisioner) Plan() []Step {
	settings := p.Settings

	steps := []Step{
		{
			Name:    "system-packages",
			Desc:    "Install system package baseline",
			OneTime: true,
			Check: func(ctx context.Context) (bool, error) {
				for _, cmd := range p.packageProbes() {
					if !helpers.CommandExists(cmd) {
						return false, nil
					}
				}
				return true, nil
			},
			Run: p.installPackages,
		},
		{
			Name:    "docker-runtime",
			Desc:    "Install container runtime",
			OneTime: true,
			Check: func(ctx context.Context) (bool, error) {
				return helpers.CommandExists("docker"), nil
			},
			Run: func(ctx context.Context) error {
				out, err := exec.CommandContext(ctx, "sh", "-c", "curl -fsSL https://get.docker.com | sh").CombinedOutput()
				if err != nil {
					return fmt.Errorf("docker install script failed: %w\n%s", err, out)
				}
				return nil
			},
		},
		{
			Name:    "service-account",
			Desc:    "Create dedicated service account",
			OneTime: true,
			Check: func(ctx context.Context) (bool, error) {
				_, err := user.Lookup(constants.ServiceAccount)
				if err == nil {
					return true, nil
				}
				if _, unknown := err.(user.UnknownUserError); unknown {
					return false, nil
				}
				return false, err
			},
			Run: func(ctx context.Context) error {
				out, err := exec.CommandContext(ctx, "useradd", "--system", "--create-home",
					"--home-dir", settings.InstallPath, "--shell", "/usr/sbin/nologin",
					constants.ServiceAccount).CombinedOutput()
				if err != nil {
					return fmt.Errorf("useradd failed: %w\n%s", err, out)
				}
				return nil
			},
		},
		{
			Name: "install-dirs",
			Desc: "Create install directory layout",
			Run: func(ctx context.Context) error {
				for _, dir := range []string{
					settings.InstallPath,
					config.BinDir(settings.InstallPath),
					config.LogDir(settings.InstallPath),
					config.CertDir(settings.InstallPath),
					config.ACMEWebroot(settings.InstallPath),
				} {
					if err := os.MkdirAll(dir, constants.ModeDirDefault); err != nil {
						return fmt.Errorf("failed to create %s: %w", dir, err)
					}
				}
				return nil
			},
		},
		{
			Name: "registry-login",
			Desc: "Log in to container registry",
			Run: func(ctx context.Context) error {
				cli, err := docker.NewClient(ctx)
				if err != nil {
					return err
				}
				p.dockerClient = cli
				auth, err := docker.RegistryLogin(ctx, cli, settings.RegistryUsername, p.RegistryPassword)
				if err != nil {
					return err
				}
				p.encodedAuth = auth
				return nil
			},
		},
		{
			Name: "compose-file",
			Desc: "Generate compose file",
			Run: func(ctx context.Context) error {
				return compose.Write(settings)
			},
		},
		{
			Name: "env-file",
			Desc: "Prepare application environment file",
			Run:  p.prepareEnvFile,
		},
		{
			Name: "tls-certificate",
			Desc: "Acquire TLS certificate material",
			Check: func(ctx context.Context) (bool, error) {
				var paths tlsmanager.CertPaths
				switch settings.TLSMode {
				case config.TLSModeIssued:
					paths = tlsmanager.IssuedPaths(settings.InstallPath, settings.Domain)
				case config.TLSModeSelfSigned:
					paths = tlsmanager.SelfSignedPaths(settings.InstallPath)
				default:
					// Nothing to acquire for plaintext.
					return true, nil
				}
				if !paths.Exists() {
					return false, nil
				}
				// Skipping must still feed the renderer.
				p.certPaths = paths
				return true, nil
			},
			Run: func(ctx context.Context) error {
				paths, effective, err := tlsmanager.Ensure(ctx, settings)
				if err != nil {
					return err
				}
				p.certPaths = paths
				p.effectiveTLS = effective
				return nil
			},
		},
		{
			Name: "nginx-config",
			Desc: "Generate and install reverse-proxy config",
			Run: func(ctx context.Context) error {
				doc, err := nginx.Render(settings, p.certPaths, p.effectiveTLS)
				if err != nil {
					return err
				}
				return nginx.Install(ctx, doc)
			},
		},
	}

	if settings.SecurityEnabled {
		steps = append(steps, Step{
			Name: "intrusion-prevention",
			Desc: "Install intrusion-prevention rules",
			Run: func(ctx context.Context) error {
				if err := fail2ban.Install(settings, constants.Fail2banDir); err != nil {
					return err
				}
				return fail2ban.Restart(ctx)
			},
		})
	}

	steps = append(steps,
		Step{
			Name:    "firewall",
			Desc:    "Apply firewall baseline",
			OneTime: true,
			Check: func(ctx context.Context) (bool, error) {
				out, err := exec.CommandContext(ctx, "ufw", "status").CombinedOutput()
				if err != nil {
					return false, nil
				}
				return strings.Contains(string(out), "Status: active"), nil
			},
			Run: p.applyFirewall,
		},
		Step{
			Name: "systemd-units",
			Desc: "Install service-manager units",
			Run: func(ctx context.Context) error {
				return systemd.InstallUnits(ctx, settings, constants.SystemdUnitDir)
			},
		},
		Step{
			Name: "helper-scripts",
			Desc: "Generate operator helper scripts",
			Run: func(ctx context.Context) error {
				return systemd.WriteHelperScripts(settings)
			},
		},
		Step{
			Name: "launch",
			Desc: "Pull image and start the stack",
			Run:  p.launch,
		},
	)

	return steps
}

func (p *Provisioner) packages() []string {
	pkgs := basePackages
	if p.Settings.SecurityEnabled {
		pkgs = append(pkgs, "fail2ban")
	}
	return pkgs
}

// packageProbes maps the package list to the command each one installs,
// which is what the precondition check can actually look for.
func (p *Provisioner) packageProbes() []string {
	probes := make([]string, 0, len(basePackages)+1)
	probes = append(probes, basePackages...)
	if p.Settings.SecurityEnabled {
		probes = append(probes, "fail2ban-client")
	}
	return probes
}

func (p *Provisioner) installPackages(ctx context.Context) error {
	if out, err := exec.CommandContext(ctx, "apt-get", "update").CombinedOutput(); err != nil {
		return fmt.Errorf("apt-get update failed: %w\n%s", err, out)
	}
	args := append([]string{"install", "-y"}, p.packages()...)
	cmd := exec.CommandContext(ctx, "apt-get", args...)
	cmd.Env = append(os.Environ(), "DEBIAN_FRONTEND=noninteractive")
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("apt-get install failed: %w\n%s", err, out)
	}
	return nil
}

func (p *Provisioner) prepareEnvFile(ctx context.Context) error {
	path := config.EnvFilePath(p.Settings.InstallPath)
	created, err := envfile.WriteIfMissing(path, p.Settings.Domain)
	if err != nil {
		return err
	}

	if created {
		ui.Info("A fresh environment file was written to %s.\n", path)
		ui.Info("Your editor will now open so you can fill in the secrets.\n")
		return envfile.EnsureValid(path, p.Confirm)
	}

	report, err := envfile.ValidateFile(path)
	if err != nil {
		return err
	}
	if report.OK() {
		ui.Info("  existing environment file is valid\n")
		return nil
	}
	return envfile.EnsureValid(path, p.Confirm)
}

func (p *Provisioner) applyFirewall(ctx context.Context) error {
	rules := [][]string{
		{"default", "deny", "incoming"},
		{"default", "allow", "outgoing"},
		{"allow", "OpenSSH"},
		{"allow", "80/tcp"},
		{"allow", "443/tcp"},
		{"--force", "enable"},
	}
	for _, rule := range rules {
		if out, err := exec.CommandContext(ctx, "ufw", rule...).CombinedOutput(); err != nil {
			return fmt.Errorf("ufw %s failed: %w\n%s", strings.Join(rule, " "), err, out)
		}
	}
	return nil
}

func (p *Provisioner) launch(ctx context.Context) error {
	if p.dockerClient == nil {
		cli, err := docker.NewClient(ctx)
		if err != nil {
			return err
		}
		p.dockerClient = cli
	}

	if err := docker.PullImage(ctx, p.dockerClient, p.Settings.Image(), p.encodedAuth); err != nil {
		return err
	}
	if err := docker.ComposeUp(ctx, config.ComposeFilePath(p.Settings.InstallPath)); err != nil {
		return err
	}

	ui.Info("Waiting for the stack to become ready...\n")
	return docker.WaitForStack(ctx, p.dockerClient, constants.ComposeProject, launchTimeout)
}
