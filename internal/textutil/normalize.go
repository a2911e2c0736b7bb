package textutil

import (
	"strings"

	"golang.org/x/text/unicode/norm"
)

// CollapseSpace trims text and folds every whitespace run to a single space.
func CollapseSpace(text string) string {
	return strings.Join(strings.Fields(text), " ")
}

// NormalizeDialogue returns text in Unicode NFC with whitespace collapsed.
// Transcribers and subtitle authors emit Tamil vowel signs in both composed
// and decomposed forms.
func NormalizeDialogue(text string) string {
	return CollapseSpace(norm.NFC.String(text))
}
