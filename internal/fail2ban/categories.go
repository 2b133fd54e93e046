package fail2ban

// Category is one abuse pattern watched in the proxy logs. Thresholds
// scale with severity: a single SQL-injection attempt earns a week-long
// ban, while plain malformed requests need five hits inside five minutes
// for a half-hour ban.
type Category struct {
	Name     string
	Patterns []string
	MaxRetry int
	FindTime int // seconds
	BanTime  int // seconds
}

// JailPrefix namespaces every jail this tool owns.
const JailPrefix = "esc-"

var Categories = []Category{
	{
		Name: JailPrefix + "auth",
		Patterns: []string{
			`^<HOST> .* "(GET|POST) /(login|auth|accounts/login)[^"]*" 401`,
			`^<HOST> .* "(GET|POST) /(login|auth|accounts/login)[^"]*" 403`,
		},
		MaxRetry: 5,
		FindTime: 600,
		BanTime:  3600,
	},
	{
		Name: JailPrefix + "badrequest",
		Patterns: []string{
			`^<HOST> .* "[^"]*" 400`,
			`^<HOST> .* "[^"]*" 444`,
		},
		MaxRetry: 5,
		FindTime: 300,
		BanTime:  1800,
	},
	{
		Name: JailPrefix + "ratelimit",
		Patterns: []string{
			`^<HOST> .* "[^"]*" 429`,
			`limiting requests.*client: <HOST>`,
		},
		MaxRetry: 10,
		FindTime: 60,
		BanTime:  3600,
	},
	{
		Name: JailPrefix + "scanner",
		Patterns: []string{
			`^<HOST> .* "(GET|POST) /(\.git|\.env|wp-admin|wp-login\.php|phpmyadmin|pma|adminer)[^"]*"`,
			`^<HOST> .* "[^"]*(\.php|\.asp|\.aspx|\.jsp)[^"]*" 404`,
		},
		MaxRetry: 2,
		FindTime: 300,
		BanTime:  86400,
	},
	{
		Name: JailPrefix + "sqli",
		Patterns: []string{
			`^<HOST> .* "[^"]*(union.*select|select.*from|information_schema|sleep\(\d+\)|benchmark\()[^"]*"`,
		},
		MaxRetry: 1,
		FindTime: 600,
		BanTime:  604800,
	},
	{
		Name: JailPrefix + "xss",
		Patterns: []string{
			`^<HOST> .* "[^"]*(<script|%3Cscript|javascript:|onerror=|onload=)[^"]*"`,
		},
		MaxRetry: 1,
		FindTime: 600,
		BanTime:  604800,
	},
	{
		Name: JailPrefix + "traversal",
		Patterns: []string{
			`^<HOST> .* "[^"]*(\.\./|\.\.%2f|%2e%2e%2f|etc/passwd|proc/self)[^"]*"`,
			`^<HOST> .* "[^"]*(php://|file://|data://|expect://)[^"]*"`,
		},
		MaxRetry: 1,
		FindTime: 120,
		BanTime:  259200,
	},
	{
		Name: JailPrefix + "badbots",
		Patterns: []string{
			`^<HOST> .* "[^"]*" \d+ \d+ "[^"]*" "[^"]*(sqlmap|nikto|masscan|nmap|zgrab|gobuster|dirbuster)[^"]*"`,
		},
		MaxRetry: 1,
		FindTime: 600,
		BanTime:  86400,
	},
	{
		Name: JailPrefix + "flood",
		Patterns: []string{
			`^<HOST> .* "[^"]*" \d+`,
		},
		MaxRetry: 100,
		FindTime: 10,
		BanTime:  600,
	},
}
