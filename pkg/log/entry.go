package log

import "time"

// isoTimestamp is the wire format for entry timestamps. Entries are stamped
// in UTC, so the offset renders as "Z".
const isoTimestamp = "2006-01-02T15:04:05.000Z07:00"

// Entry is one captured log event. An Entry is immutable once created;
// UserAgent, URL and Stack are derived enrichment populated only when the
// entry is persisted, never at creation.
type Entry struct {
	Level     Level  `json:"level"`
	Message   string `json:"message"`
	Timestamp string `json:"timestamp"`
	Data      any    `json:"data,omitempty"`
	Component string `json:"component,omitempty"`
	Action    string `json:"action,omitempty"`

	// Populated at persistence time from the ambient host environment.
	UserAgent string `json:"userAgent,omitempty"`
	URL       string `json:"url,omitempty"`
	Stack     string `json:"stack,omitempty"`
}

// NewEntry builds an entry stamped with the current UTC time.
func NewEntry(level Level, message string, data any, component, action string) Entry {
	return Entry{
		Level:     level,
		Message:   message,
		Timestamp: Now(),
		Data:      data,
		Component: component,
		Action:    action,
	}
}

// Now returns the current UTC time in the entry timestamp format.
func Now() string {
	return time.Now().UTC().Format(isoTimestamp)
}
