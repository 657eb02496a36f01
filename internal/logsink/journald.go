package logsink

import (
	"context"
	"log/slog"
	"strings"

	"github.com/coreos/go-systemd/v22/journal"
)

// FieldPrefix prefixes every structured journal field written by bashrun.
const FieldPrefix = "BASHRUN_"

// SendFunc matches journal.Send.
type SendFunc func(message string, priority journal.Priority, vars map[string]string) error

// JournaldHandler writes records to systemd-journald. Record attributes become
// journal fields, e.g. label becomes BASHRUN_LABEL. Records carrying a "line"
// attribute use the line itself as MESSAGE so child output reads naturally in
// journalctl.
type JournaldHandler struct {
	level  slog.Leveler
	send   SendFunc
	fields map[string]string
	prefix string
}

// NewJournaldHandler creates a handler using journal.Send.
func NewJournaldHandler(level slog.Leveler) *JournaldHandler {
	return NewJournaldHandlerWithSend(level, journal.Send)
}

// NewJournaldHandlerWithSend creates a handler with a custom send function.
func NewJournaldHandlerWithSend(level slog.Leveler, send SendFunc) *JournaldHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	return &JournaldHandler{
		level:  level,
		send:   send,
		fields: map[string]string{"SYSLOG_IDENTIFIER": "bashrun"},
	}
}

// JournaldAvailable reports whether a journald socket is reachable.
func JournaldAvailable() bool {
	return journal.Enabled()
}

func (h *JournaldHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *JournaldHandler) Handle(_ context.Context, r slog.Record) error {
	fields := make(map[string]string, len(h.fields)+r.NumAttrs()+1)
	for k, v := range h.fields {
		fields[k] = v
	}
	message := r.Message
	r.Attrs(func(a slog.Attr) bool {
		h.addAttr(fields, h.prefix, a)
		if h.prefix == "" && a.Key == "line" {
			message = a.Value.String()
		}
		return true
	})
	if message != r.Message {
		fields[FieldPrefix+"EVENT"] = r.Message
	}
	return h.send(message, priority(r.Level), fields)
}

func (h *JournaldHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := h.clone()
	for _, a := range attrs {
		out.addAttr(out.fields, out.prefix, a)
	}
	return out
}

func (h *JournaldHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	out := h.clone()
	out.prefix = h.prefix + name + "_"
	return out
}

func (h *JournaldHandler) clone() *JournaldHandler {
	fields := make(map[string]string, len(h.fields))
	for k, v := range h.fields {
		fields[k] = v
	}
	return &JournaldHandler{level: h.level, send: h.send, fields: fields, prefix: h.prefix}
}

func (h *JournaldHandler) addAttr(fields map[string]string, prefix string, a slog.Attr) {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return
	}
	if a.Value.Kind() == slog.KindGroup {
		p := prefix
		if a.Key != "" {
			p = prefix + a.Key + "_"
		}
		for _, ga := range a.Value.Group() {
			h.addAttr(fields, p, ga)
		}
		return
	}
	fields[fieldName(prefix+a.Key)] = a.Value.String()
}

// fieldName converts an attribute key to a valid journal field name:
// upper case letters, digits and underscores.
func fieldName(key string) string {
	var b strings.Builder
	b.WriteString(FieldPrefix)
	for _, r := range strings.ToUpper(key) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}

func priority(level slog.Level) journal.Priority {
	switch {
	case level >= slog.LevelError:
		return journal.PriErr
	case level >= slog.LevelWarn:
		return journal.PriWarning
	case level >= slog.LevelInfo:
		return journal.PriInfo
	default:
		return journal.PriDebug
	}
}
