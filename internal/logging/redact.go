package logging

import (
	"context"
	"log/slog"
	"strings"
)

// redactedPlaceholder replaces a secret wherever it appears in log output.
const redactedPlaceholder = "********"

// RedactingHandler is a slog.Handler that removes a known secret from every
// log message and attribute before delegating to the wrapped handler. The
// secret is supplied at construction and is scoped to the handler instance,
// so two sessions with different passwords redact independently.
type RedactingHandler struct {
	inner  slog.Handler
	secret string
}

// NewRedactingHandler wraps handler so that any occurrence of secret in log
// output is replaced with a placeholder. An empty secret disables redaction.
func NewRedactingHandler(handler slog.Handler, secret string) *RedactingHandler {
	return &RedactingHandler{
		inner:  handler,
		secret: secret,
	}
}

// Enabled reports whether the wrapped handler handles records at the given level.
func (h *RedactingHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.inner.Enabled(ctx, level)
}

// Handle redacts the record's message and attributes, then delegates.
func (h *RedactingHandler) Handle(ctx context.Context, record slog.Record) error {
	if h.secret == "" {
		return h.inner.Handle(ctx, record)
	}

	redacted := slog.NewRecord(record.Time, record.Level, h.redact(record.Message), record.PC)
	record.Attrs(func(attr slog.Attr) bool {
		redacted.AddAttrs(h.redactAttr(attr))
		return true
	})
	return h.inner.Handle(ctx, redacted)
}

// WithAttrs returns a new handler whose wrapped handler has the given
// (redacted) attributes.
func (h *RedactingHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	redacted := make([]slog.Attr, 0, len(attrs))
	for _, attr := range attrs {
		redacted = append(redacted, h.redactAttr(attr))
	}
	return &RedactingHandler{
		inner:  h.inner.WithAttrs(redacted),
		secret: h.secret,
	}
}

// WithGroup returns a new handler with the given group opened.
func (h *RedactingHandler) WithGroup(name string) slog.Handler {
	return &RedactingHandler{
		inner:  h.inner.WithGroup(name),
		secret: h.secret,
	}
}

func (h *RedactingHandler) redact(s string) string {
	return strings.ReplaceAll(s, h.secret, redactedPlaceholder)
}

func (h *RedactingHandler) redactAttr(attr slog.Attr) slog.Attr {
	value := attr.Value.Resolve()
	switch value.Kind() {
	case slog.KindString:
		return slog.String(attr.Key, h.redact(value.String()))
	case slog.KindGroup:
		members := value.Group()
		redacted := make([]any, 0, len(members))
		for _, member := range members {
			redacted = append(redacted, h.redactAttr(member))
		}
		return slog.Group(attr.Key, redacted...)
	default:
		return attr
	}
}
