package logging

import (
	"context"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"
)

var levelTags = map[slog.Level]string{
	LevelTrace:      "[TRACE] ",
	slog.LevelDebug: "[DEBUG] ",
	slog.LevelInfo:  "[INFO]  ",
	slog.LevelWarn:  "[WARN]  ",
	slog.LevelError: "[ERROR] ",
}

// shortKeys are ID attributes printed as their first 8 characters
var shortKeys = map[string]string{
	"runID":     "run",
	"requestID": "req",
}

// CompactHandler writes one line per record for console use:
//
//	[INFO]  15:04:05 classified electrodes | patient=HUP064 dilate=+1 resected=12
//
// Attributes bound with WithAttrs keep the group prefix that was active when
// they were bound; nested groups join with dots.
type CompactHandler struct {
	level  slog.Leveler
	mu     *sync.Mutex
	out    io.Writer
	bound  []byte // Pre-rendered WithAttrs attributes
	prefix string // Active group path, "" or ending in "."
}

// NewCompactHandler creates a compact console handler writing to w
func NewCompactHandler(w io.Writer, opts *slog.HandlerOptions) *CompactHandler {
	var level slog.Leveler = slog.LevelInfo
	if opts != nil && opts.Level != nil {
		level = opts.Level
	}
	return &CompactHandler{level: level, mu: &sync.Mutex{}, out: w}
}

func (h *CompactHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *CompactHandler) Handle(_ context.Context, r slog.Record) error {
	buf := make([]byte, 0, 256)

	if tag, ok := levelTags[r.Level]; ok {
		buf = append(buf, tag...)
	} else {
		buf = append(buf, '[')
		buf = append(buf, r.Level.String()...)
		buf = append(buf, "] "...)
	}
	buf = r.Time.AppendFormat(buf, "15:04:05")
	buf = append(buf, ' ')
	buf = append(buf, r.Message...)

	mark := len(buf)
	buf = append(buf, " |"...)
	buf = append(buf, h.bound...)
	r.Attrs(func(a slog.Attr) bool {
		buf = appendAttr(buf, h.prefix, a)
		return true
	})
	if len(buf) == mark+2 {
		buf = buf[:mark]
	}
	buf = append(buf, '\n')

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf)
	return err
}

func (h *CompactHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	if len(attrs) == 0 {
		return h
	}
	out := *h
	out.bound = append([]byte(nil), h.bound...)
	for _, a := range attrs {
		out.bound = appendAttr(out.bound, h.prefix, a)
	}
	return &out
}

func (h *CompactHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	out := *h
	out.prefix = h.prefix + name + "."
	return &out
}

// appendAttr renders a as " key=value", flattening groups
func appendAttr(buf []byte, prefix string, a slog.Attr) []byte {
	a.Value = a.Value.Resolve()
	if a.Equal(slog.Attr{}) {
		return buf
	}

	if a.Value.Kind() == slog.KindGroup {
		if a.Key != "" {
			prefix += a.Key + "."
		}
		for _, ga := range a.Value.Group() {
			buf = appendAttr(buf, prefix, ga)
		}
		return buf
	}

	buf = append(buf, ' ')
	if short, ok := shortKeys[a.Key]; ok && prefix == "" {
		if s := a.Value.String(); len(s) > 8 {
			buf = append(buf, short...)
			buf = append(buf, '=')
			return append(buf, s[:8]...)
		}
	}

	switch a.Key {
	case "durationMs":
		buf = append(buf, prefix...)
		buf = append(buf, "duration="...)
		buf = append(buf, a.Value.String()...)
		return append(buf, "ms"...)
	case "dilate":
		// Signed so erosion and dilation read differently at a glance
		if a.Value.Kind() == slog.KindInt64 {
			buf = append(buf, prefix...)
			buf = append(buf, "dilate="...)
			if n := a.Value.Int64(); n > 0 {
				buf = append(buf, '+')
			}
			return strconv.AppendInt(buf, a.Value.Int64(), 10)
		}
	case "error":
		buf = append(buf, prefix...)
		buf = append(buf, "error="...)
		return strconv.AppendQuote(buf, a.Value.String())
	}

	buf = append(buf, prefix...)
	buf = append(buf, a.Key...)
	buf = append(buf, '=')
	return appendValue(buf, a.Value)
}

func appendValue(buf []byte, v slog.Value) []byte {
	switch v.Kind() {
	case slog.KindString:
		s := v.String()
		if strings.ContainsAny(s, " \t\n\"=") || s == "" {
			return strconv.AppendQuote(buf, s)
		}
		return append(buf, s...)
	case slog.KindInt64:
		return strconv.AppendInt(buf, v.Int64(), 10)
	case slog.KindUint64:
		return strconv.AppendUint(buf, v.Uint64(), 10)
	case slog.KindFloat64:
		return strconv.AppendFloat(buf, v.Float64(), 'g', -1, 64)
	case slog.KindBool:
		return strconv.AppendBool(buf, v.Bool())
	case slog.KindDuration:
		return append(buf, v.Duration().String()...)
	case slog.KindTime:
		return v.Time().AppendFormat(buf, time.RFC3339)
	default:
		s := v.String()
		if strings.ContainsAny(s, " \t\n\"=") {
			return strconv.AppendQuote(buf, s)
		}
		return append(buf, s...)
	}
}
