package progress

import "time"

type EventType string

const (
	EventScanStarted       EventType = "scan_started"
	EventScanFinished      EventType = "scan_finished"
	EventDirError          EventType = "dir_error"
	EventFileSkipped       EventType = "file_skipped"
	EventFileScanned       EventType = "file_scanned"
	EventFileError         EventType = "file_error"
	EventFindingSuppressed EventType = "finding_suppressed"
	EventMatchTimeout      EventType = "match_timeout"
)

// Skip reasons carried by EventFileSkipped.
const (
	ReasonExcludedFile = "excluded_file"
	ReasonIgnoreFile   = "ignore_file"
	ReasonSymlink      = "symlink"
	ReasonTooLarge     = "too_large"
	ReasonMarker       = "marker"
	ReasonReadError    = "read_error"
)

type Event struct {
	Type         EventType `json:"type"`
	At           time.Time `json:"at"`
	Path         string    `json:"path,omitempty"`
	Line         int       `json:"line,omitempty"`
	Rule         string    `json:"rule,omitempty"`
	Reason       string    `json:"reason,omitempty"`
	Message      string    `json:"message,omitempty"`
	Error        string    `json:"error,omitempty"`
	FindingCount int       `json:"finding_count,omitempty"`
	DurationMS   int64     `json:"duration_ms,omitempty"`
}
