package audio

import (
	"path/filepath"
	"strings"
)

var mimeTypes = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".webm": "audio/webm",
	".opus": "audio/ogg",
	".ogg":  "audio/ogg",
	".wav":  "audio/wav",
	".flac": "audio/flac",
	".aac":  "audio/aac",
}

// DefaultMIMEType is used for extensions outside the known audio set.
const DefaultMIMEType = "audio/mpeg"

// IsAudioFile reports whether path has a recognised audio extension.
func IsAudioFile(path string) bool {
	_, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]
	return ok
}

// MIMEType maps an audio file extension to the MIME type sent on upload.
func MIMEType(path string) string {
	if mime, ok := mimeTypes[strings.ToLower(filepath.Ext(path))]; ok {
		return mime
	}
	return DefaultMIMEType
}
