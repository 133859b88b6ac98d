package match

import (
	"strings"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/model"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/progress"
	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/rules"
)

func TestDevils_CatastrophicBacktrackingTimesOut(t *testing.T) {
	table := rules.Table{
		{
			Name:        "catastrophic",
			Pattern:     `(.+)*\?`,
			Severity:    model.SeverityLow,
			CWE:         "CWE-1333",
			Description: "pathological pattern",
		},
	}
	table = append(table, rules.Default()...)
	compiled, err := rules.Compile(table, 50*time.Millisecond)
	require.NoError(t, err)

	rec := &recorder{}
	m := New(Options{Rules: compiled}, rec)

	content := "Do you think you found the problem string!\npassword = \"abcdefgh12\"\n"
	start := time.Now()
	findings, err := m.ScanContent("redos.py", []byte(content))
	elapsed := time.Since(start)

	require.Error(t, err)
	assert.True(t, IsTimeout(err))
	assert.Contains(t, err.Error(), "catastrophic")
	assert.Less(t, elapsed, 10*time.Second)

	require.Len(t, findings, 1, "later rules still run after a timeout")
	assert.Equal(t, "hardcoded_secrets", findings[0].Rule)

	timeouts := rec.ofType(progress.EventMatchTimeout)
	require.Len(t, timeouts, 1)
	assert.Equal(t, "catastrophic", timeouts[0].Rule)
	assert.Equal(t, "redos.py", timeouts[0].Path)
}

func TestDevils_InvalidUTF8IsDropped(t *testing.T) {
	m := newMatcher(t, rules.Default(), nil)

	raw := []byte("\xff\xfe\n")
	raw = append(raw, []byte("pass\x80word = \"abcdefgh12\"\n")...)
	findings, err := m.ScanContent("bin.py", raw)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, 2, findings[0].Line)
	assert.True(t, utf8.ValidString(findings[0].Context))
	assert.Equal(t, `password = "abcdefgh12"`, findings[0].Match)
}

func TestDevils_LineEndings(t *testing.T) {
	m := newMatcher(t, rules.Default(), nil)

	tests := []struct {
		name    string
		content string
	}{
		{"crlf", "a = 1\r\nb = 2\r\npassword = \"abcdefgh12\"\r\nc = 3\r\n"},
		{"lone cr", "a = 1\rb = 2\rpassword = \"abcdefgh12\"\rc = 3\r"},
		{"mixed", "a = 1\nb = 2\r\npassword = \"abcdefgh12\"\rc = 3\n"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			findings, err := m.ScanContent("eol.py", []byte(tc.content))
			require.NoError(t, err)
			require.Len(t, findings, 1)
			assert.Equal(t, 3, findings[0].Line)
			assert.NotContains(t, findings[0].Context, "\r")
			assert.Equal(t, "b = 2\npassword = \"abcdefgh12\"\nc = 3\n", findings[0].Context)
		})
	}
}

func TestDevils_LongMatchTruncatedByRune(t *testing.T) {
	m := newMatcher(t, rules.Default(), nil)

	secret := strings.Repeat("é", 300)
	findings, err := m.ScanContent("long.py", []byte(`secret = "`+secret+`"`))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, maxMatchRunes, utf8.RuneCountInString(findings[0].Match))
	assert.True(t, utf8.ValidString(findings[0].Match))
	assert.True(t, strings.HasPrefix(findings[0].Match, `secret = "é`))
}

func TestDevils_MultibyteBeforeMatchKeepsLineNumbers(t *testing.T) {
	m := newMatcher(t, rules.Default(), nil)

	content := "// 日本語のコメント 🚀🚀🚀\n" + strings.Repeat("ü", 500) + "\nx = '../etc/passwd'\n"
	findings, err := m.ScanContent("mb.js", []byte(content))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, 3, findings[0].Line)
	assert.Equal(t, "../", findings[0].Match)
}

func TestDevils_MarkerOnlyInsideCodeIsNotFileLevel(t *testing.T) {
	m := newMatcher(t, rules.Default(), nil)

	content := strings.Join([]string{
		`msg = "SECURITY_TEST_IGNORE: not a directive"`,
		`password = "abcdefgh12"`,
	}, "\n")
	findings, err := m.ScanContent("s.py", []byte(content))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, 2, findings[0].Line)
}

func TestDevils_HugeSingleLine(t *testing.T) {
	m := newMatcher(t, rules.Default(), nil)

	line := strings.Repeat("a", 200_000) + ` password = "abcdefgh12"`
	findings, err := m.ScanContent("min.js", []byte(line))
	require.NoError(t, err)
	require.Len(t, findings, 1)
	assert.Equal(t, 1, findings[0].Line)
	assert.Equal(t, line, findings[0].Context)
}
