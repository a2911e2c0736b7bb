package textutil

import (
	"strings"
	"unicode"
)

// maxFileNameRunes bounds display names sent with uploads.
const maxFileNameRunes = 120

// SanitizeFileName makes name safe to use as a file or upload display name.
// Path separators, colons and asterisks become dashes. Quotes, angle
// brackets, pipes, question marks and control characters are dropped.
func SanitizeFileName(name string) string {
	cleaned := strings.Map(func(r rune) rune {
		switch {
		case strings.ContainsRune(`/\:*`, r):
			return '-'
		case strings.ContainsRune(`?"<>|`, r), unicode.IsControl(r):
			return -1
		}
		return r
	}, name)
	cleaned = strings.TrimSpace(cleaned)
	if runes := []rune(cleaned); len(runes) > maxFileNameRunes {
		cleaned = strings.TrimSpace(string(runes[:maxFileNameRunes]))
	}
	return cleaned
}

// Slug converts a string to a lowercase hyphenated token. ASCII letters and
// digits are kept, every other run of characters becomes a single hyphen.
// Returns "unknown" for input with nothing to keep.
func Slug(value string) string {
	value = strings.TrimSpace(value)
	var b strings.Builder
	pendingDash := false
	for _, r := range value {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
		case r >= 'A' && r <= 'Z':
			r += 'a' - 'A'
		default:
			pendingDash = b.Len() > 0
			continue
		}
		if pendingDash {
			b.WriteByte('-')
			pendingDash = false
		}
		b.WriteRune(r)
	}
	if b.Len() == 0 {
		return "unknown"
	}
	return b.String()
}
