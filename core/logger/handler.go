package logger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"
)

type logFormat string

const (
	formatJSON logFormat = "json"
	formatKV   logFormat = "kv"
)

// leadingKeys fixes the first columns of every line. Other keys follow sorted by name.
var leadingKeys = []string{
	"ts", "level", "component", "event", "status",
	"rid", "rid_full", "ts_unix_nano",
	"update_id", "user_id", "chat_id", "chat_type", "handler", "cb_key",
	"action", "directive", "mode", "mode_before", "codes", "valid",
	"outcome", "duration_ms", "messages", "kb",
	"err", "err_code", "attempts", "backoff_ms",
}

var (
	knownStatus  = []string{"ok", "fail", "skip", "retry", "denied", "rate_limited"}
	knownOutcome = []string{"ok", "fail", "ignored", "rate_limited"}
)

// lineHandler is a slog.Handler writing one flat line per record.
type lineHandler struct {
	level  slog.Leveler
	sink   *asyncSink
	format logFormat
	order  []string

	attrs  []slog.Attr
	prefix string
}

func newLineHandler(level slog.Leveler, sink *asyncSink, format logFormat, order []string) *lineHandler {
	if level == nil {
		level = slog.LevelInfo
	}
	if len(order) == 0 {
		order = leadingKeys
	}
	return &lineHandler{level: level, sink: sink, format: format, order: order}
}

func (h *lineHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *lineHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	c := *h
	c.attrs = append(slices.Clip(h.attrs), h.qualify(attrs)...)
	return &c
}

func (h *lineHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	c := *h
	c.prefix = joinKey(h.prefix, name)
	return &c
}

func (h *lineHandler) Handle(ctx context.Context, r slog.Record) error {
	f := make(fields, 16)
	ts := r.Time.UTC()
	f["ts"] = ts.Format("2006-01-02T15:04:05.000Z07:00")
	f["level"] = levelName(r.Level)
	if h.format == formatJSON {
		f["ts_unix_nano"] = ts.UnixNano()
	}

	for _, a := range h.attrs {
		f.add("", a)
	}
	r.Attrs(func(a slog.Attr) bool {
		f.add(h.prefix, a)
		return true
	})
	f.fromContext(ctx)
	f.setDefault("event", r.Message, "unknown")
	f.setDefault("component", "app")
	f.normalize(h.format == formatJSON)

	var buf bytes.Buffer
	if h.format == formatJSON {
		if err := f.encodeJSON(&buf, h.order); err != nil {
			return err
		}
	} else {
		f.encodeKV(&buf, h.order)
	}
	buf.WriteByte('\n')
	return h.sink.Write(buf.Bytes())
}

func (h *lineHandler) qualify(attrs []slog.Attr) []slog.Attr {
	if h.prefix == "" {
		return attrs
	}
	out := make([]slog.Attr, len(attrs))
	for i, a := range attrs {
		out[i] = slog.Attr{Key: joinKey(h.prefix, a.Key), Value: a.Value}
	}
	return out
}

func levelName(l slog.Level) string {
	switch {
	case l < slog.LevelInfo:
		return "DEBUG"
	case l < slog.LevelWarn:
		return "INFO"
	case l < slog.LevelError:
		return "WARN"
	}
	return "ERROR"
}

func joinKey(prefix, key string) string {
	switch {
	case prefix == "":
		return key
	case key == "":
		return prefix
	}
	return prefix + "." + key
}

// fields is one record flattened to key/value pairs.
type fields map[string]any

func (f fields) add(prefix string, a slog.Attr) {
	key := joinKey(prefix, a.Key)
	v := a.Value.Resolve()
	if v.Kind() == slog.KindGroup {
		for _, child := range v.Group() {
			f.add(key, child)
		}
		return
	}
	if key == "" {
		return
	}
	switch v.Kind() {
	case slog.KindDuration:
		f[msKey(key)] = RoundMS(v.Duration()).Milliseconds()
	case slog.KindString:
		f[key] = strings.TrimSpace(v.String())
	case slog.KindTime:
		f[key] = v.Time().UTC().Format(time.RFC3339Nano)
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			f[key] = int64(u)
		} else {
			f[key] = u
		}
	case slog.KindInt64, slog.KindBool, slog.KindFloat64:
		f[key] = v.Any()
	default:
		switch x := v.Any().(type) {
		case nil:
		case error:
			f[key] = x.Error()
		case fmt.Stringer:
			f[key] = x.String()
		default:
			f[key] = fmt.Sprint(x)
		}
	}
}

// msKey makes duration keys end in _ms.
func msKey(key string) string {
	if key == "duration" || strings.HasSuffix(key, "_ms") {
		return strings.TrimSuffix(key, "_ms") + "_ms"
	}
	return key + "_ms"
}

func (f fields) str(key string) string {
	s, _ := f[key].(string)
	return s
}

func (f fields) setDefault(key string, candidates ...string) {
	if f.str(key) != "" {
		return
	}
	for _, c := range candidates {
		if c != "" {
			f[key] = c
			return
		}
	}
}

func (f fields) setMissing(key string, v any, present bool) {
	if _, ok := f[key]; !ok && present {
		f[key] = v
	}
}

func (f fields) fromContext(ctx context.Context) {
	m := metaFrom(ctx)
	f.setMissing("rid", m.rid, m.rid != "")
	f.setMissing("update_id", m.updateID, m.updateID != 0)
	f.setMissing("user_id", m.userID, m.userID != 0)
	f.setMissing("chat_id", m.chatID, m.chatID != 0)
	f.setMissing("handler", m.handler, m.handler != "")
}

// normalize compacts the rid, canonicalizes enums and drops empty values.
func (f fields) normalize(keepFullRID bool) {
	if rid := f.str("rid"); rid != "" {
		if short := CompactRID(rid); short != rid {
			f["rid"] = short
			if keepFullRID {
				f["rid_full"] = rid
			}
		}
	}
	f.enum("status", knownStatus)
	f.enum("outcome", knownOutcome)
	for k, v := range f {
		if s, ok := v.(string); ok && s == "" {
			delete(f, k)
		}
	}
}

// enum lowercases key and drops it when the value is not in allowed.
func (f fields) enum(key string, allowed []string) {
	v := strings.ToLower(f.str(key))
	if slices.Contains(allowed, v) {
		f[key] = v
	} else {
		delete(f, key)
	}
}

func (f fields) keys(order []string) []string {
	out := make([]string, 0, len(f))
	for _, k := range order {
		if _, ok := f[k]; ok {
			out = append(out, k)
		}
	}
	lead := len(out)
	for k := range f {
		if !slices.Contains(out[:lead], k) {
			out = append(out, k)
		}
	}
	slices.Sort(out[lead:])
	return out
}

func (f fields) encodeKV(buf *bytes.Buffer, order []string) {
	for i, k := range f.keys(order) {
		if i > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(k)
		buf.WriteByte('=')
		s := fmt.Sprint(f[k])
		if strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
			s = strconv.Quote(s)
		}
		buf.WriteString(s)
	}
}

func (f fields) encodeJSON(buf *bytes.Buffer, order []string) error {
	buf.WriteByte('{')
	for i, k := range f.keys(order) {
		v, err := json.Marshal(f[k])
		if err != nil {
			return fmt.Errorf("logger: encode %s: %w", k, err)
		}
		if i > 0 {
			buf.WriteByte(',')
		}
		buf.WriteString(strconv.Quote(k))
		buf.WriteByte(':')
		buf.Write(v)
	}
	buf.WriteByte('}')
	return nil
}
