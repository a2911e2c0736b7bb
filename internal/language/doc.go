// Package language provides language code normalization and dialogue
// language classification.
//
// The code table maps ISO 639 codes and word forms to display names and the
// Unicode script each language is written in. Classifier uses that script to
// bucket a line of dialogue as source-language, target-language or
// code-switched.
package language
