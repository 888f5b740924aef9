// Package metrics derives lexical counts and rule-based engagement
// suggestions from an optimized post. Every function is pure.
package metrics

import (
	"strings"
	"unicode/utf8"
)

// Metrics compares an original description with its optimized rewrite.
// Lengths are in Unicode code points.
type Metrics struct {
	OriginalLength   int `json:"original_length"`
	OptimizedLength  int `json:"optimized_length"`
	LengthChange     int `json:"length_change"`
	HashtagCount     int `json:"hashtag_count"`
	EmojiCount       int `json:"emoji_count"`
	QuestionCount    int `json:"question_count"`
	ExclamationCount int `json:"exclamation_count"`
}

// Compute counts characters of interest in optimized relative to original.
// EmojiCount is the number of code points above U+007F, so accented
// letters count too.
func Compute(original, optimized string) Metrics {
	origLen := utf8.RuneCountInString(original)
	optLen := utf8.RuneCountInString(optimized)

	return Metrics{
		OriginalLength:   origLen,
		OptimizedLength:  optLen,
		LengthChange:     optLen - origLen,
		HashtagCount:     strings.Count(optimized, "#"),
		EmojiCount:       countNonASCII(optimized),
		QuestionCount:    strings.Count(optimized, "?"),
		ExclamationCount: strings.Count(optimized, "!"),
	}
}

func countNonASCII(s string) int {
	n := 0
	for _, r := range s {
		if r >= utf8.RuneSelf {
			n++
		}
	}
	return n
}
