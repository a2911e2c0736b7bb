package logging

import (
	"cmp"
	"log/slog"
	"slices"
	"strings"
)

type infoField struct {
	label string
	value string
}

// highlightRank orders the fields shown at info level. Unranked keys follow
// in the order they were logged.
var highlightRank = func() map[string]int {
	keys := []string{
		FieldAlert, FieldEventType, FieldReason, "error", FieldErrorHint, FieldImpact,
		"segments", "raw_segments", "inserted", "succeeded", "failed",
		"language", "downloads", "audio_bytes", "strategy", "stage_duration",
	}
	rank := make(map[string]int, len(keys))
	for i, key := range keys {
		rank[key] = i
	}
	return rank
}()

const maxInfoValueLen = 160

func selectInfoFields(items []kv) ([]infoField, int) {
	visible := make([]kv, 0, len(items))
	hidden := 0
	for _, item := range items {
		switch {
		case skipInfoKey(item.key):
		case isDebugOnlyKey(item.key):
			hidden++
		default:
			visible = append(visible, item)
		}
	}
	slices.SortStableFunc(visible, func(a, b kv) int {
		return cmp.Compare(rankOf(a.key), rankOf(b.key))
	})

	shown := make([]infoField, 0, len(visible))
	for _, item := range visible {
		value := formatValueForKey(item.key, item.value)
		if item.key != "error" && len(value) > maxInfoValueLen {
			hidden++
			continue
		}
		shown = append(shown, infoField{label: displayLabel(item.key), value: value})
	}
	return shown, hidden
}

func rankOf(key string) int {
	if r, ok := highlightRank[key]; ok {
		return r
	}
	return len(highlightRank)
}

func formatValueForKey(key string, v slog.Value) string {
	v = v.Resolve()
	switch {
	case isByteSizeKey(key) && v.Kind() == slog.KindInt64:
		return formatBytes(v.Int64())
	case isByteSizeKey(key) && v.Kind() == slog.KindUint64:
		return formatBytes(int64(v.Uint64()))
	case isDurationKey(key) && v.Kind() == slog.KindDuration:
		return formatDurationHuman(v.Duration())
	case isPercentKey(key) && v.Kind() == slog.KindFloat64:
		return formatPercent(v.Float64())
	case v.Kind() == slog.KindBool:
		if v.Bool() {
			return "yes"
		}
		return "no"
	}
	value := formatValue(v)
	if key == "error" && len(value) > 2*maxInfoValueLen {
		value = value[:2*maxInfoValueLen] + "…"
	}
	return value
}

func isByteSizeKey(key string) bool {
	return strings.HasSuffix(key, "_bytes") || strings.HasSuffix(key, "_size") || key == "size"
}

func isDurationKey(key string) bool {
	return strings.HasSuffix(key, "_duration") ||
		strings.HasSuffix(key, "_elapsed") ||
		key == "elapsed" ||
		key == "duration" ||
		key == "backoff" ||
		key == "pause"
}

func isPercentKey(key string) bool {
	return strings.HasSuffix(key, "_percent")
}

func skipInfoKey(key string) bool {
	switch key {
	case "", FieldComponent, FieldKind, FieldTitle, FieldStage:
		return true
	default:
		return false
	}
}

func isDebugOnlyKey(key string) bool {
	switch key {
	case FieldRunID, "file_id", "remote_file", "prompt", "response_snippet", "args":
		return true
	}
	return strings.Contains(key, "_path") || strings.Contains(key, "_dir")
}

func displayLabel(key string) string {
	switch key {
	case FieldAlert:
		return "Alert"
	case FieldEventType:
		return "Event"
	case FieldErrorHint:
		return "Hint"
	case "raw_segments":
		return "Raw"
	case "audio_bytes":
		return "Audio"
	case "stage_duration":
		return "Duration"
	default:
		return titleizeKey(key)
	}
}

func titleizeKey(key string) string {
	parts := strings.FieldsFunc(strings.ToLower(key), func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	for i, part := range parts {
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
