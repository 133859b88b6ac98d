package rules

import "github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/model"

var builtinRules = Table{
	{
		Name:        "hardcoded_secrets",
		Pattern:     `(?i)(password|secret|key|token|api_key)\s*[=:]\s*["']([^"']{8,})["']`,
		Severity:    model.SeverityHigh,
		CWE:         "CWE-798",
		Description: "Potential hardcoded secret or credential",
	},
	{
		// Concatenation on either side of a string literal.
		Name:        "sql_injection",
		Pattern:     `(?i)(SELECT|INSERT|UPDATE|DELETE).*(\+.*["']|["']\s*\+)`,
		Severity:    model.SeverityHigh,
		CWE:         "CWE-89",
		Description: "Potential SQL injection vulnerability",
	},
	{
		Name:        "xss_vulnerability",
		Pattern:     `(?i)innerHTML\s*=\s*[^;]*\+|document\.write\s*\([^)]*\+`,
		Severity:    model.SeverityMedium,
		CWE:         "CWE-79",
		Description: "Potential XSS vulnerability",
	},
	{
		Name:        "insecure_http",
		Pattern:     `http://(?!localhost|127\.0\.0\.1|0\.0\.0\.0)`,
		Severity:    model.SeverityMedium,
		CWE:         "CWE-319",
		Description: "Insecure HTTP connection",
	},
	{
		Name:        "weak_crypto",
		Pattern:     `(?i)(md5|sha1)\s*\(`,
		Severity:    model.SeverityMedium,
		CWE:         "CWE-327",
		Description: "Weak cryptographic algorithm",
	},
	{
		Name:        "command_injection",
		Pattern:     `(?i)(exec|eval|system|shell_exec|passthru)\s*\([^)]*\$`,
		Severity:    model.SeverityCritical,
		CWE:         "CWE-78",
		Description: "Potential command injection vulnerability",
	},
	{
		Name:        "path_traversal",
		Pattern:     `\.\./|\.\.\\`,
		Severity:    model.SeverityHigh,
		CWE:         "CWE-22",
		Description: "Potential path traversal vulnerability",
	},
	{
		Name:        "insecure_random",
		Pattern:     `(?i)(math\.random|random\.seed\(|mt_rand\()`,
		Severity:    model.SeverityLow,
		CWE:         "CWE-330",
		Description: "Use of cryptographically weak random number generator",
	},
	{
		Name:        "api_key_exposure",
		Pattern:     `(?i)(api_key|apikey|api-key)\s*[=:]\s*['"][a-zA-Z0-9]{20,}['"]`,
		Severity:    model.SeverityHigh,
		CWE:         "CWE-798",
		Description: "Exposed API key in source code",
	},
	{
		Name:        "debug_mode_production",
		Pattern:     `(?i)(debug|development)\s*[=:]\s*(true|1|yes|on)`,
		Severity:    model.SeverityMedium,
		CWE:         "CWE-489",
		Description: "Debug mode potentially enabled in production",
	},
	{
		Name:        "unsafe_deserialization",
		Pattern:     `(?i)(pickle\.loads|yaml\.load|eval\(|exec\()`,
		Severity:    model.SeverityCritical,
		CWE:         "CWE-502",
		Description: "Unsafe deserialization or code execution",
	},
}

// Default returns a fresh copy of the built-in rule table.
func Default() Table {
	out := make(Table, len(builtinRules))
	copy(out, builtinRules)
	return out
}
