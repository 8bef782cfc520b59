package logger

import (
	"context"
	"encoding/json"
	"errors"
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

	timeFormatMillis = "2006-01-02T15:04:05.000Z07:00"
)

type handlerConfig struct {
	level    slog.Leveler
	writer   *asyncWriter
	format   logFormat
	keyOrder []string
}

// structuredHandler renders each record as one flat line, kv or JSON, with
// keys in a fixed order.
type structuredHandler struct {
	cfg    handlerConfig
	attrs  []slog.Attr
	prefix string
}

func newStructuredHandler(cfg handlerConfig) *structuredHandler {
	if cfg.level == nil {
		cfg.level = slog.LevelInfo
	}
	if cfg.keyOrder == nil {
		cfg.keyOrder = slices.Clone(defaultKeyOrder)
	}
	return &structuredHandler{cfg: cfg}
}

func (h *structuredHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.cfg.level.Level()
}

func (h *structuredHandler) Handle(ctx context.Context, r slog.Record) error {
	if h.cfg.writer == nil {
		return errors.New("logger: writer not initialized")
	}
	jsonOut := h.cfg.format == formatJSON

	f := fields{}
	ts := r.Time.UTC()
	f["ts"] = ts.Truncate(time.Millisecond).Format(timeFormatMillis)
	f["level"] = levelName(r.Level)
	if jsonOut {
		f["ts_unix_nano"] = ts.UnixNano()
	}
	for _, a := range h.attrs {
		f.add(h.prefix, a)
	}
	r.Attrs(func(a slog.Attr) bool {
		f.add(h.prefix, a)
		return true
	})
	f.fromContext(ctx)
	f.compactRID(jsonOut)
	f.fallback("event", orDefault(r.Message, "unknown"))
	f.fallback("component", "app")
	f.cleanEnums()
	f.prune()

	var line []byte
	if jsonOut {
		var err error
		if line, err = f.json(h.cfg.keyOrder); err != nil {
			return err
		}
	} else {
		line = f.kv(h.cfg.keyOrder)
	}
	return h.cfg.writer.Write(append(line, '\n'))
}

func (h *structuredHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(slices.Clone(h.attrs), attrs...)
	return &clone
}

func (h *structuredHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	clone := *h
	clone.prefix = joinKey(h.prefix, name)
	return &clone
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}
	return s
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

// fields holds one record's values, already normalized, keyed by output name.
type fields map[string]any

// add flattens groups into dotted keys.
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
	if k, val, ok := normalizeValue(key, v); ok {
		f[k] = val
	}
}

func (f fields) str(key string) string {
	switch v := f[key].(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		return fmt.Sprint(v)
	}
}

func (f fields) fallback(key string, val any) {
	if f.str(key) == "" {
		f[key] = val
	}
}

// fromContext fills correlation ids the record did not set itself.
func (f fields) fromContext(ctx context.Context) {
	if ctx == nil {
		return
	}
	put := func(key string, val any, zero bool) {
		if _, set := f[key]; !set && !zero {
			f[key] = val
		}
	}
	rid := RIDFrom(ctx)
	put("rid", rid, rid == "")
	uid := UserIDFrom(ctx)
	put("user_id", uid, uid == 0)
	upd := UpdateIDFrom(ctx)
	put("update_id", int64(upd), upd == 0)
	cid := ChatIDFrom(ctx)
	put("chat_id", cid, cid == 0)
	hid := HandlerFrom(ctx)
	put("handler", hid, hid == "")
}

// compactRID shortens rid; JSON output keeps the original as rid_full.
func (f fields) compactRID(keepFull bool) {
	rid := f.str("rid")
	if rid == "" {
		return
	}
	short := CompactRID(rid)
	if short == rid {
		return
	}
	if _, set := f["rid_full"]; keepFull && !set {
		f["rid_full"] = rid
	}
	f["rid"] = short
}

// cleanEnums lowercases known status values and drops unknown outcomes.
func (f fields) cleanEnums() {
	if s := f.str("status"); s != "" {
		if v, ok := normalizeEnum(statusValues, s); ok {
			f["status"] = v
		}
	}
	if o := f.str("outcome"); o != "" {
		if v, ok := normalizeEnum(outcomeValues, o); ok {
			f["outcome"] = v
		} else {
			delete(f, "outcome")
		}
	}
}

func (f fields) prune() {
	for k, v := range f {
		if v == nil || v == "" {
			delete(f, k)
		}
	}
}

// order lists keys from preferred first, then the rest sorted.
func (f fields) order(preferred []string) []string {
	keys := make([]string, 0, len(f))
	for _, k := range preferred {
		if _, ok := f[k]; ok && !slices.Contains(keys, k) {
			keys = append(keys, k)
		}
	}
	listed := len(keys)
	for k := range f {
		if !slices.Contains(keys[:listed], k) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys[listed:])
	return keys
}

func (f fields) json(preferred []string) ([]byte, error) {
	buf := []byte{'{'}
	for i, k := range f.order(preferred) {
		data, err := json.Marshal(f[k])
		if err != nil {
			return nil, fmt.Errorf("logger: encode %s: %w", k, err)
		}
		if i > 0 {
			buf = append(buf, ',')
		}
		buf = strconv.AppendQuote(buf, k)
		buf = append(buf, ':')
		buf = append(buf, data...)
	}
	return append(buf, '}'), nil
}

func (f fields) kv(preferred []string) []byte {
	var buf []byte
	for i, k := range f.order(preferred) {
		if i > 0 {
			buf = append(buf, ' ')
		}
		buf = append(buf, k...)
		buf = append(buf, '=')
		buf = append(buf, kvValue(f[k])...)
	}
	return buf
}

func kvValue(v any) string {
	switch x := v.(type) {
	case bool:
		return strconv.FormatBool(x)
	case int64:
		return strconv.FormatInt(x, 10)
	}
	s := fmt.Sprint(v)
	if strings.ContainsFunc(s, func(r rune) bool { return r <= ' ' || r == '=' || r == '"' }) {
		return strconv.Quote(s)
	}
	return s
}

// msKey puts the unit into a duration key: duration becomes duration_ms.
func msKey(key string) string {
	if strings.HasSuffix(key, "_ms") {
		return key
	}
	return key + "_ms"
}

func normalizeValue(key string, v slog.Value) (string, any, bool) {
	switch v.Kind() {
	case slog.KindString:
		return key, strings.TrimSpace(v.String()), true
	case slog.KindBool:
		return key, v.Bool(), true
	case slog.KindInt64:
		return key, v.Int64(), true
	case slog.KindUint64:
		if u := v.Uint64(); u <= math.MaxInt64 {
			return key, int64(u), true
		}
		return key, v.Uint64(), true
	case slog.KindFloat64:
		return key, v.Float64(), true
	case slog.KindDuration:
		return msKey(key), RoundMS(v.Duration()).Milliseconds(), true
	case slog.KindTime:
		return key, v.Time().UTC().Format(time.RFC3339Nano), true
	}
	switch x := v.Any().(type) {
	case nil:
		return "", nil, false
	case error:
		return key, x.Error(), true
	case fmt.Stringer:
		return key, x.String(), true
	default:
		return key, fmt.Sprint(x), true
	}
}
