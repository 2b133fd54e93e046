package embed

import "embed"

const (
	EnvFileTemplate      = "esc.env.tmpl"
	NginxSiteTemplate    = "nginx-site.conf.tmpl"
	JailLocalTemplate    = "jail.local.tmpl"
	FilterTemplate       = "filter.conf.tmpl"
	ComposeUnitTemplate  = "esc-compose.service.tmpl"
	RenewServiceTemplate = "esc-cert-renew.service.tmpl"
	RenewTimerTemplate   = "esc-cert-renew.timer.tmpl"
	HelperScriptTemplate = "helper.sh.tmpl"
)

//go:embed templates/*
var TemplatesFS embed.FS
