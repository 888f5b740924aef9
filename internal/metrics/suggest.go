package metrics

import (
	"strings"
	"unicode/utf8"

	"github.com/alnah/postopt/internal/platform"
)

// Suggestion texts, in the order they are evaluated for each platform.
const (
	SuggestMoreHashtags      = "Consider adding more relevant hashtags"
	SuggestAskQuestion       = "Add a question to drive more comments"
	SuggestExclamation       = "Use exclamations to convey more enthusiasm"
	SuggestLongerPost        = "Longer posts tend to get better engagement on LinkedIn"
	SuggestEndWithQuestion   = "End with a question to spark discussion"
	SuggestThread            = "Consider splitting longer posts into a thread"
	SuggestHashtagVisibility = "Add relevant hashtags to increase visibility"
)

// Thresholds used by the suggestion rules.
const (
	instagramMinHashtags = 3
	linkedinMinLength    = 100
	twitterMaxLength     = 200
	twitterMinHashtags   = 2
)

// Suggest returns engagement hints for text on p, in a fixed order.
// The result is never nil; an unknown or zero platform yields no hints.
func Suggest(text string, p platform.Platform) []string {
	suggestions := []string{}

	switch p.String() {
	case platform.Instagram:
		if strings.Count(text, "#") < instagramMinHashtags {
			suggestions = append(suggestions, SuggestMoreHashtags)
		}
		if !strings.Contains(text, "?") {
			suggestions = append(suggestions, SuggestAskQuestion)
		}
		if !strings.Contains(text, "!") {
			suggestions = append(suggestions, SuggestExclamation)
		}
	case platform.LinkedIn:
		if utf8.RuneCountInString(text) < linkedinMinLength {
			suggestions = append(suggestions, SuggestLongerPost)
		}
		if !strings.Contains(text, "?") {
			suggestions = append(suggestions, SuggestEndWithQuestion)
		}
	case platform.Twitter:
		if utf8.RuneCountInString(text) > twitterMaxLength {
			suggestions = append(suggestions, SuggestThread)
		}
		if strings.Count(text, "#") < twitterMinHashtags {
			suggestions = append(suggestions, SuggestHashtagVisibility)
		}
	}

	return suggestions
}
