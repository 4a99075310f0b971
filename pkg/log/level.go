package log

import (
	"fmt"
	"strings"
)

// Level represents the severity level of a log entry.
type Level int

// Log levels, ordered from least to most severe.
const (
	DebugLevel Level = iota
	InfoLevel
	WarnLevel
	ErrorLevel
)

// String returns the wire representation of the log level.
func (l Level) String() string {
	switch l {
	case DebugLevel:
		return "debug"
	case InfoLevel:
		return "info"
	case WarnLevel:
		return "warn"
	case ErrorLevel:
		return "error"
	default:
		return "unknown"
	}
}

// Glyph returns the single display glyph used by the text formatter.
func (l Level) Glyph() string {
	switch l {
	case DebugLevel:
		return "🔍"
	case InfoLevel:
		return "ℹ️"
	case WarnLevel:
		return "⚠️"
	case ErrorLevel:
		return "❌"
	default:
		return "•"
	}
}

// ParseLevel parses a level name (case-insensitive). "warning" is accepted
// as an alias for "warn".
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DebugLevel, nil
	case "info":
		return InfoLevel, nil
	case "warn", "warning":
		return WarnLevel, nil
	case "error":
		return ErrorLevel, nil
	default:
		return InfoLevel, fmt.Errorf("log: unknown level %q", s)
	}
}

// MarshalJSON encodes the level as its lowercase name.
func (l Level) MarshalJSON() ([]byte, error) {
	return []byte(`"` + l.String() + `"`), nil
}

// UnmarshalJSON decodes a lowercase level name. Unknown names decode to
// InfoLevel rather than failing, so a partially corrupt stored buffer does
// not poison a whole load.
func (l *Level) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	parsed, err := ParseLevel(s)
	if err != nil {
		*l = InfoLevel
		return nil
	}
	*l = parsed
	return nil
}
