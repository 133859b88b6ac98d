// Package redact masks secret values in findings before a report leaves
// the process.
package redact

import (
	"regexp"

	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/model"
)

const mask = "[REDACTED]"

var (
	privateKeyPattern = regexp.MustCompile(`-----BEGIN [A-Z0-9 ]*PRIVATE KEY-----[\s\S]*?-----END [A-Z0-9 ]*PRIVATE KEY-----`)
	bearerPattern     = regexp.MustCompile(`(?i)\bBearer\s+[A-Za-z0-9._~+/=-]{8,}`)
	quotedAssign      = regexp.MustCompile(`(?i)\b(\w*(?:api[_-]?key|secret|token|password|passwd|pwd|key)\w*)(["']?\s*[:=]\s*)(["'])([^"'\n]{4,})(["'])`)
	bareAssign        = regexp.MustCompile(`(?i)\b(\w*(?:api[_-]?key|secret|token|password|passwd|pwd)\w*)(\s*[:=]\s*)([^\s"',;]{8,})`)
	awsAccessKey      = regexp.MustCompile(`\b(A3T|AKIA|ASIA|AGPA|AIDA|ANPA|ANVA|AROA|AIPA)[0-9A-Z]{16}\b`)
	githubToken       = regexp.MustCompile(`\bgh[pousr]_[A-Za-z0-9]{20,}\b`)
	connStringCreds   = regexp.MustCompile(`([a-z][a-z0-9+.-]*://[^:/\s"']+:)([^@/\s"']+)(@)`)
)

// Text masks common secret and token shapes in free text.
func Text(in string) string {
	if in == "" {
		return in
	}
	out := in
	out = privateKeyPattern.ReplaceAllString(out, "[REDACTED PRIVATE KEY]")
	out = bearerPattern.ReplaceAllString(out, "Bearer "+mask)
	out = quotedAssign.ReplaceAllString(out, `${1}${2}${3}`+mask+`${5}`)
	out = bareAssign.ReplaceAllString(out, `${1}${2}`+mask)
	out = awsAccessKey.ReplaceAllString(out, "[REDACTED_AWS_ACCESS_KEY]")
	out = githubToken.ReplaceAllString(out, "[REDACTED_GITHUB_TOKEN]")
	out = connStringCreds.ReplaceAllString(out, `${1}`+mask+`${3}`)
	return out
}

// Finding returns f with its match and context text masked.
func Finding(f model.Finding) model.Finding {
	f.Match = Text(f.Match)
	f.Context = Text(f.Context)
	return f
}

// Findings masks every finding, preserving order. The input is not modified.
func Findings(in []model.Finding) []model.Finding {
	if in == nil {
		return nil
	}
	out := make([]model.Finding, len(in))
	for i, f := range in {
		out[i] = Finding(f)
	}
	return out
}
