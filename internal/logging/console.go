package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"
)

// consoleHandler writes one human-readable line per record:
//
//	2026-03-01 10:00:00 INFO [3f1c2a9e] live: final recorded chars=12
//
// The session id is shortened to its first uuid group and the component is
// promoted in front of the message.
type consoleHandler struct {
	out       *lockedWriter
	level     slog.Leveler
	addSource bool

	prefix    string // group prefix, "a.b." form
	fields    []field
	component string
	session   string
}

type lockedWriter struct {
	mu sync.Mutex
	w  io.Writer
}

type field struct {
	key   string
	value string
}

func newConsoleHandler(w io.Writer, level slog.Leveler, addSource bool) *consoleHandler {
	return &consoleHandler{out: &lockedWriter{w: w}, level: level, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, r slog.Record) error {
	component, session := h.component, h.session
	fields := make([]field, 0, len(h.fields)+r.NumAttrs())
	fields = append(fields, h.fields...)
	r.Attrs(func(a slog.Attr) bool {
		fields = h.collect(fields, h.prefix, a, &component, &session)
		return true
	})

	ts := r.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	var b strings.Builder
	b.WriteString(ts.Local().Format(time.DateTime))
	b.WriteByte(' ')
	b.WriteString(levelLabel(r.Level))
	b.WriteByte(' ')
	if session != "" {
		fmt.Fprintf(&b, "[%s] ", session)
	}
	if component != "" {
		b.WriteString(component)
		b.WriteString(": ")
	}
	msg := strings.TrimSpace(r.Message)
	if msg == "" {
		msg = "(no message)"
	}
	b.WriteString(msg)
	if h.addSource {
		if src := r.Source(); src != nil {
			fmt.Fprintf(&b, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	for _, f := range fields {
		b.WriteByte(' ')
		b.WriteString(f.key)
		b.WriteByte('=')
		b.WriteString(f.value)
	}
	b.WriteByte('\n')

	h.out.mu.Lock()
	defer h.out.mu.Unlock()
	_, err := io.WriteString(h.out.w, b.String())
	return err
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.fields = append([]field(nil), h.fields...)
	for _, a := range attrs {
		clone.fields = clone.collect(clone.fields, clone.prefix, a, &clone.component, &clone.session)
	}
	return &clone
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = h.prefix + name + "."
	return &clone
}

// collect flattens a into fields, lifting the first component and session
// attributes out of the field list.
func (h *consoleHandler) collect(fields []field, prefix string, a slog.Attr, component, session *string) []field {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return fields
	}
	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			fields = h.collect(fields, prefix, ga, component, session)
		}
		return fields
	}
	if prefix == "" {
		switch {
		case a.Key == FieldComponent && *component == "":
			*component = a.Value.String()
			return fields
		case a.Key == FieldSessionID && *session == "":
			*session = shortID(a.Value.String())
			return fields
		}
	}
	return append(fields, field{key: prefix + a.Key, value: render(a.Value)})
}

func render(v slog.Value) string {
	var s string
	switch v.Kind() {
	case slog.KindTime:
		return v.Time().UTC().Format(time.RFC3339)
	case slog.KindFloat64:
		return strconv.FormatFloat(v.Float64(), 'f', -1, 64)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			s = err.Error()
		} else {
			s = fmt.Sprint(v.Any())
		}
	default:
		s = v.String()
	}
	if needsQuotes(s) {
		return strconv.Quote(s)
	}
	return s
}

func needsQuotes(s string) bool {
	if s == "" {
		return true
	}
	return strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' })
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	default:
		return "DEBUG"
	}
}

func shortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
