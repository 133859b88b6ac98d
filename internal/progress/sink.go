package progress

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

type Sink interface {
	Emit(Event)
}

type SinkFunc func(Event)

func (f SinkFunc) Emit(e Event) {
	f(e)
}

type NoopSink struct{}

func (NoopSink) Emit(Event) {}

// OrNoop never returns nil.
func OrNoop(s Sink) Sink {
	if s == nil {
		return NoopSink{}
	}
	return s
}

// Multi fans an event out to every non-nil sink in order.
func Multi(sinks ...Sink) Sink {
	out := make([]Sink, 0, len(sinks))
	for _, s := range sinks {
		if s != nil {
			out = append(out, s)
		}
	}
	return SinkFunc(func(e Event) {
		if e.At.IsZero() {
			e.At = time.Now().UTC()
		}
		for _, s := range out {
			s.Emit(e)
		}
	})
}

type ChannelSink struct {
	ch chan<- Event
}

func NewChannelSink(ch chan<- Event) *ChannelSink {
	return &ChannelSink{ch: ch}
}

func (s *ChannelSink) Emit(e Event) {
	if s == nil || s.ch == nil {
		return
	}
	if e.At.IsZero() {
		e.At = time.Now().UTC()
	}
	select {
	case s.ch <- e:
	default:
		// Drop on backpressure so a slow UI cannot stall the scan.
	}
}

// LogSink writes events to a zap logger. Per-file scan events go to Debug;
// skips and suppressions go to Info; errors and timeouts go to Warn.
type LogSink struct {
	log *zap.SugaredLogger
}

func NewLogSink(log *zap.SugaredLogger) *LogSink {
	return &LogSink{log: log}
}

func (s *LogSink) Emit(e Event) {
	if s == nil || s.log == nil {
		return
	}
	msg := Describe(e)
	if msg == "" {
		return
	}
	kv := fields(e)
	switch e.Type {
	case EventFileScanned:
		s.log.Debugw(msg, kv...)
	case EventDirError, EventFileError, EventMatchTimeout:
		s.log.Warnw(msg, kv...)
	default:
		s.log.Infow(msg, kv...)
	}
}

func fields(e Event) []any {
	kv := make([]any, 0, 12)
	if e.Path != "" {
		kv = append(kv, "path", e.Path)
	}
	if e.Line > 0 {
		kv = append(kv, "line", e.Line)
	}
	if e.Rule != "" {
		kv = append(kv, "rule", e.Rule)
	}
	if e.Reason != "" {
		kv = append(kv, "reason", e.Reason)
	}
	if e.Error != "" {
		kv = append(kv, "error", e.Error)
	}
	if e.Type == EventScanFinished || e.Type == EventFileScanned {
		kv = append(kv, "findings", e.FindingCount)
	}
	if e.DurationMS > 0 {
		kv = append(kv, "duration_ms", e.DurationMS)
	}
	return kv
}

// Describe renders a one-line human description of e, or "" for unknown types.
func Describe(e Event) string {
	switch e.Type {
	case EventScanStarted:
		return fmt.Sprintf("scanning %s", e.Path)
	case EventScanFinished:
		return fmt.Sprintf("scan finished findings=%d duration=%dms", e.FindingCount, e.DurationMS)
	case EventDirError:
		return fmt.Sprintf("skipping unreadable directory %s", e.Path)
	case EventFileSkipped:
		switch e.Reason {
		case ReasonExcludedFile:
			return fmt.Sprintf("Skipping excluded file: %s", e.Path)
		case ReasonMarker:
			return fmt.Sprintf("Skipping file with SECURITY_TEST_IGNORE markers: %s", e.Path)
		default:
			return fmt.Sprintf("skipping %s (%s)", e.Path, e.Reason)
		}
	case EventFileScanned:
		return fmt.Sprintf("scanned %s", e.Path)
	case EventFileError:
		return fmt.Sprintf("Error scanning %s: %s", e.Path, strings.TrimSpace(e.Error))
	case EventFindingSuppressed:
		return fmt.Sprintf("Ignoring finding in %s:%d due to SECURITY_TEST_IGNORE marker", e.Path, e.Line)
	case EventMatchTimeout:
		return fmt.Sprintf("rule %s timed out on %s", e.Rule, e.Path)
	default:
		return ""
	}
}
