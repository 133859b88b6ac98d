package rules

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnmillerATcodemag-com/AI-Assisted-Brownfield-Development/internal/model"
)

func TestDefault_OrderAndMetadata(t *testing.T) {
	table := Default()
	assert.Equal(t, []string{
		"hardcoded_secrets",
		"sql_injection",
		"xss_vulnerability",
		"insecure_http",
		"weak_crypto",
		"command_injection",
		"path_traversal",
		"insecure_random",
		"api_key_exposure",
		"debug_mode_production",
		"unsafe_deserialization",
	}, table.Names())
	require.NoError(t, table.Validate())

	sql, ok := table.Lookup("sql_injection")
	require.True(t, ok)
	assert.Equal(t, model.SeverityHigh, sql.Severity)
	assert.Equal(t, "CWE-89", sql.CWE)
}

func TestDefault_ReturnsCopy(t *testing.T) {
	a := Default()
	a[0].Severity = model.SeverityLow
	b := Default()
	assert.Equal(t, model.SeverityHigh, b[0].Severity)
}

func TestDefault_AllCompile(t *testing.T) {
	compiled, err := Compile(Default(), 0)
	require.NoError(t, err)
	require.Len(t, compiled, len(Default()))
	for _, c := range compiled {
		assert.Equal(t, DefaultMatchTimeout, c.Regex.MatchTimeout, c.Name)
	}
}

func TestDefault_PatternSamples(t *testing.T) {
	tests := []struct {
		rule  string
		input string
		want  bool
	}{
		{"hardcoded_secrets", `password = "abcdefgh12"`, true},
		{"hardcoded_secrets", `password = "short"`, false},
		{"sql_injection", `query = "SELECT * FROM users WHERE id = " + user_id`, true},
		{"sql_injection", `q = "DELETE FROM t WHERE a=" + x + "'"`, true},
		{"sql_injection", `selection = compute()`, false},
		{"xss_vulnerability", `el.innerHTML = "<b>" + name`, true},
		{"xss_vulnerability", `document.write("x" + y)`, true},
		{"insecure_http", `fetch("http://api.example.com/x")`, true},
		{"insecure_http", `fetch("http://localhost:8080")`, false},
		{"insecure_http", `fetch("http://127.0.0.1/")`, false},
		{"insecure_http", `fetch("https://example.com")`, false},
		{"weak_crypto", `hashlib.md5(data)`, true},
		{"weak_crypto", `SHA1 (x)`, true},
		{"command_injection", `system("rm " . $file)`, true},
		{"command_injection", `system("ls")`, false},
		{"path_traversal", `open("../../etc/passwd")`, true},
		{"path_traversal", `open("..\\secret")`, true},
		{"insecure_random", `Math.random()`, true},
		{"insecure_random", `random.seed(1)`, true},
		{"api_key_exposure", `apiKey: "abcdefghijklmnopqrstuvwx"`, true},
		{"debug_mode_production", `DEBUG = True`, true},
		{"unsafe_deserialization", `pickle.loads(blob)`, true},
		{"unsafe_deserialization", `yaml.safe_load(doc)`, false},
	}
	table := Default()
	for _, tc := range tests {
		t.Run(tc.rule+"/"+tc.input, func(t *testing.T) {
			r, ok := table.Lookup(tc.rule)
			require.True(t, ok)
			re, err := CompilePattern(r.Pattern, DefaultMatchTimeout)
			require.NoError(t, err)
			got, err := re.MatchString(tc.input)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestCompilePattern_DotDoesNotCrossLines(t *testing.T) {
	re, err := CompilePattern(`SELECT.*\+`, DefaultMatchTimeout)
	require.NoError(t, err)
	got, err := re.MatchString("SELECT x\n+ y")
	require.NoError(t, err)
	assert.False(t, got)
}

func TestCompile_ReportsRuleName(t *testing.T) {
	table := Table{{Name: "broken", Pattern: "[unterminated", Severity: model.SeverityLow, CWE: "CWE-1", Description: "x"}}
	_, err := Compile(table, 0)
	require.Error(t, err)

	var ce *CompileError
	require.ErrorAs(t, err, &ce)
	assert.Equal(t, "broken", ce.Rule)
}
