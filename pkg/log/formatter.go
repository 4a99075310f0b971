package log

import "strings"

// FormatEntry renders the single-line display form of an entry:
//
//	<glyph> <timestamp> [component] [action] message
//
// Bracketed segments are omitted when their source field is empty. Pure
// function; no failure modes.
func FormatEntry(e Entry) string {
	var b strings.Builder
	b.Grow(len(e.Message) + len(e.Component) + len(e.Action) + 48)
	b.WriteString(e.Level.Glyph())
	b.WriteByte(' ')
	b.WriteString(e.Timestamp)
	if e.Component != "" {
		b.WriteString(" [")
		b.WriteString(e.Component)
		b.WriteByte(']')
	}
	if e.Action != "" {
		b.WriteString(" [")
		b.WriteString(e.Action)
		b.WriteByte(']')
	}
	b.WriteByte(' ')
	b.WriteString(e.Message)
	return b.String()
}
