package language

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Class is the coarse language bucket assigned to a line of dialogue.
type Class int

const (
	ClassMixed Class = iota
	ClassSource
	ClassTarget
)

func (c Class) String() string {
	switch c {
	case ClassSource:
		return "source"
	case ClassTarget:
		return "target"
	default:
		return "mixed"
	}
}

// Labels are the catalog values written for each class.
type Labels struct {
	Source string
	Target string
	Mixed  string
}

// Classifier buckets text into source script, target (Latin) or mixed.
type Classifier struct {
	script    *unicode.RangeTable
	threshold float64
	labels    Labels
}

// NewClassifier builds a classifier for the named Unicode script. Text is
// labelled target when the share of ASCII letters is strictly above threshold.
func NewClassifier(script string, threshold float64, labels Labels) (*Classifier, error) {
	table, ok := unicode.Scripts[strings.TrimSpace(script)]
	if !ok {
		return nil, fmt.Errorf("classifier: unknown script %q", script)
	}
	if threshold <= 0 || threshold > 1 {
		return nil, fmt.Errorf("classifier: threshold %v out of range", threshold)
	}
	if labels.Source == "" {
		labels.Source = ClassSource.String()
	}
	if labels.Target == "" {
		labels.Target = ClassTarget.String()
	}
	if labels.Mixed == "" {
		labels.Mixed = ClassMixed.String()
	}
	return &Classifier{script: table, threshold: threshold, labels: labels}, nil
}

// Class returns the bucket for text. Any rune from the source script wins
// outright; otherwise the ASCII letter ratio is measured against the total
// rune count.
func (c *Classifier) Class(text string) Class {
	letters := 0
	for _, r := range text {
		if unicode.Is(c.script, r) {
			return ClassSource
		}
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') {
			letters++
		}
	}
	total := max(utf8.RuneCountInString(text), 1)
	if float64(letters)/float64(total) > c.threshold {
		return ClassTarget
	}
	return ClassMixed
}

// Classify returns the catalog label for text.
func (c *Classifier) Classify(text string) string {
	return c.Label(c.Class(text))
}

// Label maps a class to its catalog value.
func (c *Classifier) Label(class Class) string {
	switch class {
	case ClassSource:
		return c.labels.Source
	case ClassTarget:
		return c.labels.Target
	default:
		return c.labels.Mixed
	}
}
