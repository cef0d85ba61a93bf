package mocklogger

import (
	"context"
	"log/slog"
	"slices"
	"sync"
)

// Entry is one captured log record.
type Entry struct {
	Level   slog.Level
	Message string
	Attrs   map[string]any
}

// MockHandler is a slog.Handler that keeps every record in memory so tests
// can assert on what was logged.
type MockHandler struct {
	store *entryStore
	attrs []slog.Attr
}

type entryStore struct {
	mu      sync.Mutex
	entries []Entry
}

// Enabled implements slog.Handler.
func (h *MockHandler) Enabled(_ context.Context, _ slog.Level) bool {
	return true
}

// Handle implements slog.Handler.
func (h *MockHandler) Handle(_ context.Context, r slog.Record) error {
	entry := Entry{
		Level:   r.Level,
		Message: r.Message,
		Attrs:   make(map[string]any, r.NumAttrs()+len(h.attrs)),
	}
	for _, attr := range h.attrs {
		entry.Attrs[attr.Key] = attr.Value.Any()
	}
	r.Attrs(func(attr slog.Attr) bool {
		entry.Attrs[attr.Key] = attr.Value.Any()
		return true
	})

	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	h.store.entries = append(h.store.entries, entry)
	return nil
}

// WithAttrs implements slog.Handler.
func (h *MockHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &MockHandler{
		store: h.store,
		attrs: append(slices.Clone(h.attrs), attrs...),
	}
}

// WithGroup implements slog.Handler. Groups are flattened.
func (h *MockHandler) WithGroup(_ string) slog.Handler {
	return h
}

// Entries returns a copy of the captured records.
func (h *MockHandler) Entries() []Entry {
	h.store.mu.Lock()
	defer h.store.mu.Unlock()
	return slices.Clone(h.store.entries)
}

// Messages returns the captured messages in logging order.
func (h *MockHandler) Messages() []string {
	entries := h.Entries()
	messages := make([]string, len(entries))
	for i, entry := range entries {
		messages[i] = entry.Message
	}
	return messages
}

// Find returns the first entry carrying msg.
func (h *MockHandler) Find(msg string) (Entry, bool) {
	for _, entry := range h.Entries() {
		if entry.Message == msg {
			return entry, true
		}
	}
	return Entry{}, false
}

// NewMockHandler creates an empty handler.
func NewMockHandler() *MockHandler {
	return &MockHandler{store: &entryStore{}}
}

// NewMockLogger creates a new logger with the mock handler
func NewMockLogger() *slog.Logger {
	return slog.New(NewMockHandler())
}

// NewMockLoggerWithHandler returns the logger together with its handler.
func NewMockLoggerWithHandler() (*slog.Logger, *MockHandler) {
	handler := NewMockHandler()
	return slog.New(handler), handler
}
