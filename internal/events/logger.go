package events

import (
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/jlwainwright/Auto-Claude/internal/types"
)

// Logger is the append-only session log of validation events. Recording is
// synchronized so report generation can run while the guard keeps
// validating.
type Logger struct {
	mu     sync.Mutex
	events []*Event

	logAllValidations bool
	slog              *slog.Logger
	now               func() time.Time
}

// LoggerOption customizes a Logger.
type LoggerOption func(*Logger)

// WithSlog sets the structured logger used to mirror events.
func WithSlog(l *slog.Logger) LoggerOption {
	return func(lg *Logger) {
		lg.slog = l
	}
}

// WithLogAllValidations also records allowed decisions that matched
// nothing, instead of only warnings, blocks, and overrides.
func WithLogAllValidations(all bool) LoggerOption {
	return func(lg *Logger) {
		lg.logAllValidations = all
	}
}

// WithClock overrides the time source, used in tests.
func WithClock(now func() time.Time) LoggerOption {
	return func(lg *Logger) {
		lg.now = now
	}
}

// NewLogger creates an empty session log.
func NewLogger(opts ...LoggerOption) *Logger {
	lg := &Logger{
		slog: slog.Default(),
		now:  time.Now,
	}
	for _, opt := range opts {
		opt(lg)
	}
	return lg
}

// Record appends the event to the session log and mirrors it to the
// structured logger. Plain allowed events are skipped unless
// log_all_validations is on; allowed events that used an override or hit a
// path exemption are always kept.
func (lg *Logger) Record(event *Event) *Event {
	if event == nil {
		return nil
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = lg.now().UTC()
	}

	keep := true
	if event.Decision == VerdictAllowed && !event.Overridden && event.Reason == "" {
		keep = lg.logAllValidations
	}
	if keep {
		lg.mu.Lock()
		lg.events = append(lg.events, event)
		lg.mu.Unlock()
	}

	switch event.Decision {
	case VerdictBlocked:
		lg.slog.Warn("operation blocked",
			"tool", string(event.Tool),
			"rules", event.RuleIDs,
			"severity", string(event.Severity),
			"reason", event.Reason)
	case VerdictWarned:
		lg.slog.Info("operation flagged",
			"tool", string(event.Tool),
			"rules", event.RuleIDs,
			"severity", string(event.Severity),
			"reason", event.Reason)
	default:
		if event.Overridden {
			lg.slog.Info("operation allowed via override",
				"tool", string(event.Tool),
				"rules", event.RuleIDs,
				"tokens", event.OverrideTokenIDs)
		} else {
			lg.slog.Debug("operation allowed", "tool", string(event.Tool))
		}
	}
	return event
}

// Events returns a snapshot of all recorded events in order.
func (lg *Logger) Events() []*Event {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	return append([]*Event(nil), lg.events...)
}

// BlockedEvents returns the blocked decisions.
func (lg *Logger) BlockedEvents() []*Event {
	return lg.filter(func(e *Event) bool { return e.Decision == VerdictBlocked })
}

// WarningEvents returns the warned decisions.
func (lg *Logger) WarningEvents() []*Event {
	return lg.filter(func(e *Event) bool { return e.Decision == VerdictWarned })
}

// OverrideEvents returns decisions where an override token was spent.
func (lg *Logger) OverrideEvents() []*Event {
	return lg.filter(func(e *Event) bool { return e.Overridden })
}

// EventsByTool returns events for one tool type.
func (lg *Logger) EventsByTool(tool string) []*Event {
	return lg.filter(func(e *Event) bool { return string(e.Tool) == tool })
}

// Clear discards all recorded events.
func (lg *Logger) Clear() {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	lg.events = nil
}

// Statistics summarizes the session log.
type Statistics struct {
	TotalValidations int            `json:"total_validations"`
	Blocked          int            `json:"blocked"`
	Warnings         int            `json:"warnings"`
	Allowed          int            `json:"allowed"`
	OverridesUsed    int            `json:"overrides_used"`
	ByTool           map[string]int `json:"by_tool"`
	BySeverity       map[string]int `json:"by_severity"`
}

// Statistics computes counts by decision, tool, and severity (severity is
// counted for blocked events only).
func (lg *Logger) Statistics() Statistics {
	lg.mu.Lock()
	defer lg.mu.Unlock()

	stats := Statistics{
		ByTool:     map[string]int{},
		BySeverity: map[string]int{},
	}
	for _, e := range lg.events {
		stats.TotalValidations++
		stats.ByTool[string(e.Tool)]++
		switch e.Decision {
		case VerdictBlocked:
			stats.Blocked++
			if e.Severity != "" {
				stats.BySeverity[string(e.Severity)]++
			}
		case VerdictWarned:
			stats.Warnings++
		default:
			stats.Allowed++
		}
		if e.Overridden {
			stats.OverridesUsed++
		}
	}
	return stats
}

// LoadFromFile prepends a previously saved event log, so a fresh session
// can continue an existing audit trail. A missing file is not an error.
func (lg *Logger) LoadFromFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return types.WrapError(types.EVENT_LOG_IO, "cannot read event log", err)
	}
	var saved []*Event
	if err := json.Unmarshal(data, &saved); err != nil {
		return types.WrapError(types.EVENT_LOG_IO, "cannot decode event log", err)
	}

	lg.mu.Lock()
	defer lg.mu.Unlock()
	lg.events = append(saved, lg.events...)
	return nil
}

// SaveToFile dumps the session log as JSON.
func (lg *Logger) SaveToFile(path string) error {
	snapshot := lg.Events()
	data, err := json.MarshalIndent(snapshot, "", "  ")
	if err != nil {
		return types.WrapError(types.EVENT_LOG_IO, "cannot encode event log", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return types.WrapError(types.EVENT_LOG_IO, "cannot create log directory", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return types.WrapError(types.EVENT_LOG_IO, "cannot write event log", err)
	}
	return nil
}

func (lg *Logger) filter(keep func(*Event) bool) []*Event {
	lg.mu.Lock()
	defer lg.mu.Unlock()
	var out []*Event
	for _, e := range lg.events {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}
