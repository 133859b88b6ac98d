package suppress

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultMarkers(t *testing.T) *Markers {
	t.Helper()
	m, err := Compile(DefaultMarkers)
	require.NoError(t, err)
	return m
}

func TestCompile_InvalidPattern(t *testing.T) {
	_, err := Compile([]string{"(unclosed"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "(unclosed")
}

func TestCompile_SkipsBlankEntries(t *testing.T) {
	m, err := Compile([]string{"", "  ", "X"})
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
}

func TestNilMarkers(t *testing.T) {
	var m *Markers
	_, ok, err := m.MatchLine("SECURITY_TEST_IGNORE:")
	require.NoError(t, err)
	assert.False(t, ok)

	_, ok, err = m.FileDirective([]string{"# SECURITY_TEST_IGNORE:"})
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestMatchLine(t *testing.T) {
	m := defaultMarkers(t)
	tests := []struct {
		name   string
		line   string
		want   bool
		marker string
	}{
		{"explicit marker", `password = "abcdefgh12"  # SECURITY_TEST_IGNORE: fixture`, true, `SECURITY_TEST_IGNORE:`},
		{"fake demo value", `API_KEY = "FAKE-DEMO-1234567890"`, true, `FAKE-DEMO-.*`},
		{"demo credential comment", `TOKEN = "x" // DEMO CREDENTIAL`, true, `.*DEMO CREDENTIAL.*`},
		{"case sensitive", `x = 1 # security_test_ignore:`, false, ""},
		{"plain code", `password = "abcdefgh12"`, false, ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			marker, ok, err := m.MatchLine(tc.line)
			require.NoError(t, err)
			assert.Equal(t, tc.want, ok)
			assert.Equal(t, tc.marker, marker)
		})
	}
}

func TestFileDirective_CommentLine(t *testing.T) {
	m := defaultMarkers(t)
	lines := strings.Split(`import os

def main():
    # SECURITY_TEST_IGNORE: intentionally vulnerable sample
    password = "abcdefgh12"
`, "\n")

	hit, ok, err := m.FileDirective(lines)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, hit.Line)
	assert.Equal(t, `SECURITY_TEST_IGNORE:`, hit.Marker)
}

func TestFileDirective_CommentPrefixes(t *testing.T) {
	m := defaultMarkers(t)
	for _, line := range []string{
		"// SECURITY_TEST_IGNORE: go",
		"# SECURITY_TEST_IGNORE: python",
		"-- SECURITY_TEST_IGNORE: sql",
		"/* SECURITY_TEST_IGNORE: c */",
		"<!-- SECURITY_TEST_IGNORE: html -->",
		" * SECURITY_TEST_IGNORE: block body",
	} {
		_, ok, err := m.FileDirective([]string{"x := 1", line})
		require.NoError(t, err)
		assert.True(t, ok, line)
	}
}

func TestFileDirective_TrailingMarkerIsNotFileLevel(t *testing.T) {
	m := defaultMarkers(t)
	lines := []string{
		`password = "abcdefgh12"  # SECURITY_TEST_IGNORE: fixture`,
		`secret = "zyxwvuts98"`,
	}
	_, ok, err := m.FileDirective(lines)
	require.NoError(t, err)
	assert.False(t, ok)
}
