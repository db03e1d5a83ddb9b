// Package logging provides the slog handlers used by the retrosnake
// commands.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"runtime"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// Format selects how records are written.
type Format string

const (
	// FormatPretty writes one indented JSON object per record.
	FormatPretty Format = "pretty"
	// FormatJSON writes one compact JSON object per line.
	FormatJSON Format = "json"
	// FormatLine writes "time LEVEL msg key=value ..." lines.
	FormatLine Format = "line"
)

// ParseFormat accepts the Format names.
func ParseFormat(s string) (Format, error) {
	switch f := Format(strings.ToLower(s)); f {
	case FormatPretty, FormatJSON, FormatLine:
		return f, nil
	}
	return "", fmt.Errorf("unknown log format %q", s)
}

// ParseLevel accepts debug, info, warn and error.
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log level %q", s)
	}
	return l, nil
}

// New returns a logger writing to w.
func New(w io.Writer, format Format, level slog.Leveler) *slog.Logger {
	return slog.New(NewHandler(w, format, &slog.HandlerOptions{Level: level}))
}

// Handler is a small slog.Handler geared toward CLI logs. Records are
// serialized under a mutex, so it is not tuned for throughput.
type Handler struct {
	w         io.Writer
	mu        *sync.Mutex
	format    Format
	level     slog.Leveler
	addSource bool

	attrs  []scopedAttr
	groups []string
}

// scopedAttr remembers the groups that were open when the attr was added.
type scopedAttr struct {
	groups []string
	attr   slog.Attr
}

func NewHandler(w io.Writer, format Format, opts *slog.HandlerOptions) *Handler {
	var level slog.Leveler = slog.LevelInfo
	addSource := false
	if opts != nil {
		if opts.Level != nil {
			level = opts.Level
		}
		addSource = opts.AddSource
	}
	return &Handler{
		w:         w,
		mu:        &sync.Mutex{},
		format:    format,
		level:     level,
		addSource: addSource,
	}
}

// NewPrettyJSONHandler keeps the indented JSON layout used by long-running daemons.
func NewPrettyJSONHandler(w io.Writer, opts *slog.HandlerOptions) slog.Handler {
	return NewHandler(w, FormatPretty, opts)
}

func (h *Handler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *Handler) Handle(_ context.Context, r slog.Record) error {
	when := r.Time
	if when.IsZero() {
		when = time.Now()
	}

	fields := make(map[string]any, 8)
	for _, a := range h.attrs {
		addAttr(fields, a.groups, a.attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		addAttr(fields, h.groups, a)
		return true
	})
	source := ""
	if h.addSource {
		source = sourceFromPC(r.PC)
	}

	var b []byte
	switch h.format {
	case FormatLine:
		b = h.line(when, r, source, fields)
	default:
		fields["time"] = when.Format(time.RFC3339Nano)
		fields["level"] = r.Level.String()
		fields["msg"] = r.Message
		if source != "" {
			fields["source"] = source
		}
		var err error
		if h.format == FormatPretty {
			b, err = json.MarshalIndent(fields, "", "  ")
		} else {
			b, err = json.Marshal(fields)
		}
		if err != nil {
			// Keep the message even if an attribute can't be encoded.
			b = []byte(`{"time":` + strconv.Quote(when.Format(time.RFC3339Nano)) +
				`,"level":` + strconv.Quote(r.Level.String()) +
				`,"msg":` + strconv.Quote(r.Message) + `}`)
		}
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.w.Write(append(b, '\n'))
	return err
}

func (h *Handler) line(when time.Time, r slog.Record, source string, fields map[string]any) []byte {
	var sb strings.Builder
	sb.WriteString(when.Format("15:04:05.000"))
	sb.WriteByte(' ')
	sb.WriteString(r.Level.String())
	sb.WriteByte(' ')
	sb.WriteString(r.Message)
	if source != "" {
		sb.WriteString(" source=")
		sb.WriteString(source)
	}
	writeFields(&sb, "", fields)
	return []byte(sb.String())
}

func writeFields(sb *strings.Builder, prefix string, fields map[string]any) {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if child, ok := fields[k].(map[string]any); ok {
			writeFields(sb, prefix+k+".", child)
			continue
		}
		sb.WriteByte(' ')
		sb.WriteString(prefix)
		sb.WriteString(k)
		sb.WriteByte('=')
		v := fmt.Sprint(fields[k])
		if strings.ContainsAny(v, " \t\"=") {
			v = strconv.Quote(v)
		}
		sb.WriteString(v)
	}
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append([]scopedAttr(nil), h.attrs...)
	for _, a := range attrs {
		clone.attrs = append(clone.attrs, scopedAttr{groups: h.groups, attr: a})
	}
	return &clone
}

func (h *Handler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.groups = append(append([]string(nil), h.groups...), name)
	return &clone
}

func addAttr(root map[string]any, groups []string, attr slog.Attr) {
	if attr.Key == "" {
		return
	}
	dst := root
	for _, g := range groups {
		m, ok := dst[g].(map[string]any)
		if !ok {
			m = map[string]any{}
			dst[g] = m
		}
		dst = m
	}
	addAttrToMap(dst, attr)
}

func addAttrToMap(dst map[string]any, attr slog.Attr) {
	v := attr.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		child := map[string]any{}
		for _, ga := range v.Group() {
			if ga.Key != "" {
				addAttrToMap(child, ga)
			}
		}
		dst[attr.Key] = child
		return
	}
	dst[attr.Key] = valueToAny(v)
}

func valueToAny(v slog.Value) any {
	switch v.Kind() {
	case slog.KindString:
		return v.String()
	case slog.KindInt64:
		return v.Int64()
	case slog.KindUint64:
		return v.Uint64()
	case slog.KindFloat64:
		return v.Float64()
	case slog.KindBool:
		return v.Bool()
	case slog.KindDuration:
		return v.Duration().String()
	case slog.KindTime:
		return v.Time().Format(time.RFC3339Nano)
	case slog.KindAny:
		if err, ok := v.Any().(error); ok {
			return err.Error()
		}
		return v.Any()
	default:
		return v.String()
	}
}

func sourceFromPC(pc uintptr) string {
	if pc == 0 {
		return ""
	}
	frames := runtime.CallersFrames([]uintptr{pc})
	f, _ := frames.Next()
	if f.File == "" {
		return ""
	}
	file := f.File
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		file = file[idx+1:]
	}
	return file + ":" + strconv.Itoa(f.Line)
}
