package constants

import "os"

const (
	Version = "0.1.0"

	// AppName is the short name of the deployed application. It is used for
	// container/project naming, systemd unit names and nginx file names.
	AppName = "esc"

	// ComposeProject is the docker compose project name for the stack.
	ComposeProject = "esc"

	// AppPort is the fixed local port the web container listens on. The
	// reverse proxy upstream pool points here.
	AppPort = "8000"

	// ImageRepository is the image name under the operator's registry
	// account. The full reference is <registry_username>/<ImageRepository>.
	ImageRepository = "esc"
	ImageTag        = "latest"

	DefaultInstallPath = "/opt/esc"

	// Environment variables
	EnvVarInstallDir = "ESC_INSTALL_DIR"
	EnvVarEditor     = "EDITOR"

	// File names under the install directory.
	SettingsFileName = ".escadm.conf"
	EnvFileName      = ".env"
	ComposeFileName  = "docker-compose.yml"
	HistoryDBName    = "escadm.db"

	// System paths owned by external collaborators.
	NginxSiteAvailable = "/etc/nginx/sites-available/esc.conf"
	NginxSiteEnabled   = "/etc/nginx/sites-enabled/esc.conf"
	NginxDefaultSite   = "/etc/nginx/sites-enabled/default"
	NginxAccessLog     = "/var/log/nginx/esc.access.log"
	NginxErrorLog      = "/var/log/nginx/esc.error.log"
	Fail2banDir        = "/etc/fail2ban"
	SystemdUnitDir     = "/etc/systemd/system"

	ServiceAccount = "esc"
)

// File and directory permissions
const (
	ModeFileSecret  os.FileMode = 0o600 // secrets: .env, settings, keys
	ModeFileDefault os.FileMode = 0o644 // non-secret configs
	ModeFileExec    os.FileMode = 0o755 // scripts/binaries
	ModeDirPrivate  os.FileMode = 0o700 // private dirs
	ModeDirDefault  os.FileMode = 0o755
)
