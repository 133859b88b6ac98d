package model

import (
	"fmt"
	"strings"
)

type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
	SeverityLow      Severity = "LOW"
)

// Severities lists every severity from most to least urgent.
var Severities = []Severity{SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow}

// ParseSeverity accepts any casing and surrounding whitespace.
func ParseSeverity(raw string) (Severity, error) {
	sev := Severity(raw).Normalize()
	if !sev.Valid() {
		return "", fmt.Errorf("unknown severity %q (want CRITICAL, HIGH, MEDIUM or LOW)", raw)
	}
	return sev, nil
}

func (s Severity) Normalize() Severity {
	return Severity(strings.ToUpper(strings.TrimSpace(string(s))))
}

func (s Severity) Valid() bool {
	switch s {
	case SeverityCritical, SeverityHigh, SeverityMedium, SeverityLow:
		return true
	}
	return false
}

// Rank orders severities with CRITICAL first; unknown values sort last.
func (s Severity) Rank() int {
	for i, sev := range Severities {
		if sev == s {
			return i
		}
	}
	return len(Severities)
}

type Finding struct {
	File        string   `json:"file"`
	Line        int      `json:"line"`
	Rule        string   `json:"rule"`
	Severity    Severity `json:"severity"`
	CWE         string   `json:"cwe"`
	Match       string   `json:"match"`
	Context     string   `json:"context"`
	Description string   `json:"description"`
}

type Summary struct {
	Total    int `json:"total"`
	Critical int `json:"critical"`
	High     int `json:"high"`
	Medium   int `json:"medium"`
	Low      int `json:"low"`
}

// Count returns the summary bucket for sev.
func (s Summary) Count(sev Severity) int {
	switch sev {
	case SeverityCritical:
		return s.Critical
	case SeverityHigh:
		return s.High
	case SeverityMedium:
		return s.Medium
	case SeverityLow:
		return s.Low
	}
	return 0
}

type ScanInfo struct {
	// TotalFilesScanned counts distinct files that produced at least one finding.
	TotalFilesScanned int            `json:"total_files_scanned"`
	PatternsUsed      []string       `json:"patterns_used"`
	FilesWalked       int            `json:"files_walked"`
	FilesSkipped      map[string]int `json:"files_skipped,omitempty"`
}

type Report struct {
	Findings []Finding `json:"findings"`
	Summary  Summary   `json:"summary"`
	ScanInfo ScanInfo  `json:"scan_info"`
}
