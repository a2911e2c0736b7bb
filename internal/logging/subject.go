package logging

import "strings"

// FormatSubject builds the kind/title/stage subject shown in console output,
// for example "Subtitles · IfkZMODd0A0 (extract)".
func FormatSubject(kind, title, stage string) string {
	kind = strings.TrimSpace(kind)
	title = strings.TrimSpace(title)
	stage = strings.TrimSpace(stage)
	parts := make([]string, 0, 2)
	switch {
	case kind == "":
	case len(kind) <= 2:
		parts = append(parts, strings.ToUpper(kind))
	default:
		parts = append(parts, strings.ToUpper(kind[:1])+strings.ToLower(kind[1:]))
	}
	switch {
	case title != "" && stage != "":
		parts = append(parts, title+" ("+stage+")")
	case title != "":
		parts = append(parts, title)
	case stage != "":
		parts = append(parts, stage)
	}
	return strings.Join(parts, " · ")
}
