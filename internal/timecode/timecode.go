// Package timecode converts between subtitle timecodes, fractional seconds
// and integer milliseconds.
package timecode

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Parse converts "HH:MM:SS,mmm" to milliseconds. A '.' fraction separator is
// accepted, the fraction may have any number of digits, and it may be absent.
// Fractional milliseconds are truncated.
func Parse(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	parts := strings.Split(trimmed, ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("timecode %q: want HH:MM:SS,mmm", value)
	}
	hours, err := parseField(parts[0], "hours", value)
	if err != nil {
		return 0, err
	}
	minutes, err := parseField(parts[1], "minutes", value)
	if err != nil {
		return 0, err
	}
	secPart := strings.Replace(parts[2], ",", ".", 1)
	whole, frac, _ := strings.Cut(secPart, ".")
	seconds, err := parseField(whole, "seconds", value)
	if err != nil {
		return 0, err
	}
	var millis int64
	if frac != "" {
		for _, r := range frac {
			if r < '0' || r > '9' {
				return 0, fmt.Errorf("timecode %q: invalid fraction", value)
			}
		}
		digits := (frac + "000")[:3]
		millis, _ = strconv.ParseInt(digits, 10, 64)
	}
	return ((hours*60+minutes)*60+seconds)*1000 + millis, nil
}

func parseField(field, name, original string) (int64, error) {
	field = strings.TrimSpace(field)
	if field == "" {
		return 0, fmt.Errorf("timecode %q: empty %s", original, name)
	}
	n, err := strconv.ParseInt(field, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("timecode %q: invalid %s", original, name)
	}
	return n, nil
}

// Format renders milliseconds as "HH:MM:SS,mmm". Negative input renders as zero.
func Format(ms int64) string {
	if ms < 0 {
		ms = 0
	}
	hours := ms / 3_600_000
	ms -= hours * 3_600_000
	minutes := ms / 60_000
	ms -= minutes * 60_000
	seconds := ms / 1000
	ms -= seconds * 1000
	return fmt.Sprintf("%02d:%02d:%02d,%03d", hours, minutes, seconds, ms)
}

// FromSeconds converts fractional seconds to milliseconds, truncating toward
// zero. NaN and infinities yield ok=false.
func FromSeconds(seconds float64) (int64, bool) {
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, false
	}
	return int64(seconds * 1000), true
}
