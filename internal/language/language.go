package language

import "strings"

// Info describes one language the pipeline can name or classify.
type Info struct {
	Code   string // ISO 639-1
	Name   string
	Script string // key into unicode.Scripts
}

// known lists each language followed by the aliases that resolve to it:
// ISO 639-2 codes (terminologic and bibliographic) and English word forms.
var known = []struct {
	info    Info
	aliases []string
}{
	{Info{"ta", "Tamil", "Tamil"}, []string{"tam", "tamil"}},
	{Info{"en", "English", "Latin"}, []string{"eng", "english"}},
	{Info{"te", "Telugu", "Telugu"}, []string{"tel", "telugu"}},
	{Info{"ml", "Malayalam", "Malayalam"}, []string{"mal", "malayalam"}},
	{Info{"kn", "Kannada", "Kannada"}, []string{"kan", "kannada"}},
	{Info{"hi", "Hindi", "Devanagari"}, []string{"hin", "hindi"}},
	{Info{"mr", "Marathi", "Devanagari"}, []string{"mar", "marathi"}},
	{Info{"bn", "Bengali", "Bengali"}, []string{"ben", "bengali", "bangla"}},
	{Info{"pa", "Punjabi", "Gurmukhi"}, []string{"pan", "punjabi"}},
	{Info{"gu", "Gujarati", "Gujarati"}, []string{"guj", "gujarati"}},
	{Info{"si", "Sinhala", "Sinhala"}, []string{"sin", "sinhala", "sinhalese"}},
	{Info{"es", "Spanish", "Latin"}, []string{"spa", "spanish"}},
	{Info{"fr", "French", "Latin"}, []string{"fra", "fre", "french"}},
	{Info{"de", "German", "Latin"}, []string{"deu", "ger", "german"}},
	{Info{"ja", "Japanese", "Han"}, []string{"jpn", "japanese"}},
	{Info{"ko", "Korean", "Hangul"}, []string{"kor", "korean"}},
	{Info{"zh", "Chinese", "Han"}, []string{"zho", "chi", "chinese"}},
	{Info{"ru", "Russian", "Cyrillic"}, []string{"rus", "russian"}},
	{Info{"ar", "Arabic", "Arabic"}, []string{"ara", "arabic"}},
}

var index = func() map[string]Info {
	m := make(map[string]Info, len(known)*4)
	for _, k := range known {
		m[k.info.Code] = k.info
		for _, alias := range k.aliases {
			m[alias] = k.info
		}
	}
	return m
}()

// Lookup resolves a code or English name, case-insensitively.
func Lookup(code string) (Info, bool) {
	info, ok := index[strings.ToLower(strings.TrimSpace(code))]
	return info, ok
}

// ToISO2 converts a recognized code or name to ISO 639-1. Unknown two-letter
// input passes through unchanged; anything else unknown yields "".
func ToISO2(code string) string {
	if info, ok := Lookup(code); ok {
		return info.Code
	}
	if code = strings.ToLower(strings.TrimSpace(code)); len(code) == 2 {
		return code
	}
	return ""
}

// DisplayName returns "Unknown" for blank input and the uppercased input
// when the language is not recognized.
func DisplayName(code string) string {
	code = strings.TrimSpace(code)
	if code == "" {
		return "Unknown"
	}
	if info, ok := Lookup(code); ok {
		return info.Name
	}
	return strings.ToUpper(code)
}

// Script returns the Unicode script a language is written in, or "".
func Script(code string) string {
	info, _ := Lookup(code)
	return info.Script
}
