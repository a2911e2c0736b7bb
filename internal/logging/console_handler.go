package logging

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"sync"
	"time"
)

// consoleHandler renders one headline per record followed by an indented
// field list. Info and above show a curated subset; debug shows every field.
type consoleHandler struct {
	mu        *sync.Mutex
	out       io.Writer
	level     *slog.LevelVar
	addSource bool
	preset    []slog.Attr
	groups    []string
}

func newPrettyHandler(w io.Writer, lvl *slog.LevelVar, addSource bool) slog.Handler {
	return &consoleHandler{mu: &sync.Mutex{}, out: w, level: lvl, addSource: addSource}
}

func (h *consoleHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *consoleHandler) Handle(_ context.Context, record slog.Record) error {
	if !h.Enabled(context.Background(), record.Level) {
		return nil
	}

	fields := newFieldList(record.NumAttrs() + len(h.preset))
	for _, attr := range h.preset {
		fields.add(h.groups, attr)
	}
	record.Attrs(func(attr slog.Attr) bool {
		fields.add(h.groups, attr)
		return true
	})

	var buf bytes.Buffer
	h.writeHeadline(&buf, record, fields)
	if record.Level < slog.LevelInfo {
		writeDebugFields(&buf, fields.items)
	} else {
		writeInfoFields(&buf, fields.items)
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	_, err := h.out.Write(buf.Bytes())
	return err
}

// writeHeadline prints "time LEVEL [component] subject – message [file:line]".
func (h *consoleHandler) writeHeadline(buf *bytes.Buffer, record slog.Record, fields *fieldList) {
	ts := record.Time
	if ts.IsZero() {
		ts = time.Now()
	}
	buf.WriteString(formatTimestamp(ts))
	buf.WriteByte(' ')
	buf.WriteString(levelLabel(record.Level))
	if component := fields.text(FieldComponent); component != "" {
		fmt.Fprintf(buf, " [%s]", component)
	}
	if subject := FormatSubject(fields.text(FieldKind), fields.text(FieldTitle), fields.text(FieldStage)); subject != "" {
		buf.WriteByte(' ')
		buf.WriteString(subject)
	}
	message := strings.TrimSpace(record.Message)
	if message == "" {
		message = "(no message)"
	}
	buf.WriteString(" – ")
	buf.WriteString(message)
	if h.addSource {
		if src := record.Source(); src != nil && src.File != "" {
			fmt.Fprintf(buf, " [%s:%d]", filepath.Base(src.File), src.Line)
		}
	}
	buf.WriteByte('\n')
}

func writeInfoFields(buf *bytes.Buffer, items []kv) {
	shown, hidden := selectInfoFields(items)
	for _, field := range shown {
		fmt.Fprintf(buf, "    - %s: %s\n", field.label, field.value)
	}
	switch {
	case hidden == 1:
		buf.WriteString("    + 1 more field hidden\n")
	case hidden > 1:
		fmt.Fprintf(buf, "    + %d more fields hidden\n", hidden)
	}
}

func writeDebugFields(buf *bytes.Buffer, items []kv) {
	for _, item := range items {
		if item.key == FieldComponent {
			continue
		}
		fmt.Fprintf(buf, "    %s: %s\n", item.key, formatValue(item.value))
	}
}

func (h *consoleHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := *h
	next.preset = append(append([]slog.Attr(nil), h.preset...), attrs...)
	return &next
}

func (h *consoleHandler) WithGroup(name string) slog.Handler {
	if name == "" {
		return h
	}
	next := *h
	next.groups = append(append([]string(nil), h.groups...), name)
	return &next
}

type kv struct {
	key   string
	value slog.Value
}

// fieldList keeps attributes in first-seen order. A repeated key keeps its
// original position and takes the latest value.
type fieldList struct {
	items []kv
	index map[string]int
}

func newFieldList(capacity int) *fieldList {
	return &fieldList{items: make([]kv, 0, capacity), index: make(map[string]int, capacity)}
}

func (f *fieldList) add(groups []string, attr slog.Attr) {
	if attr.Equal(slog.Attr{}) {
		return
	}
	value := attr.Value.Resolve()
	if value.Kind() == slog.KindGroup {
		nested := groups
		if attr.Key != "" {
			nested = append(append([]string(nil), groups...), attr.Key)
		}
		for _, child := range value.Group() {
			f.add(nested, child)
		}
		return
	}
	key := attr.Key
	if len(groups) > 0 {
		key = strings.Join(groups, ".") + "." + key
	}
	if key == "" {
		return
	}
	if pos, ok := f.index[key]; ok {
		f.items[pos].value = value
		return
	}
	f.index[key] = len(f.items)
	f.items = append(f.items, kv{key: key, value: value})
}

func (f *fieldList) text(key string) string {
	if pos, ok := f.index[key]; ok {
		return attrString(f.items[pos].value)
	}
	return ""
}

func levelLabel(level slog.Level) string {
	switch {
	case level >= slog.LevelError:
		return "ERROR"
	case level >= slog.LevelWarn:
		return "WARN"
	case level >= slog.LevelInfo:
		return "INFO"
	}
	return "DEBUG"
}
