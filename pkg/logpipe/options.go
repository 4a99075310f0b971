package logpipe

type entryParams struct {
	data      any
	component string
	action    string
}

// EntryOption attaches optional context to a captured entry.
type EntryOption func(*entryParams)

// WithData attaches an arbitrary payload. Error payloads have their stack
// trace extracted when the entry is persisted.
func WithData(data any) EntryOption {
	return func(p *entryParams) { p.data = data }
}

// WithComponent tags the entry with its originating component.
func WithComponent(name string) EntryOption {
	return func(p *entryParams) { p.component = name }
}

// WithAction tags the entry with the action being performed.
func WithAction(name string) EntryOption {
	return func(p *entryParams) { p.action = name }
}
