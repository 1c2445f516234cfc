// Package language provides lightweight language detection for submitted text.
// Detection is heuristic: script ranges identify non-Latin languages, and
// stop-word frequency separates the supported Latin-script languages. The
// result drives per-language minimum length validation and accuracy warnings.
package language

import (
	"fmt"
	"regexp"
	"strings"
)

// Accuracy describes how reliable text detection is for a language.
type Accuracy string

const (
	AccuracyHigh   Accuracy = "high"
	AccuracyMedium Accuracy = "medium"
	AccuracyLow    Accuracy = "low"
)

// Info describes a supported language.
type Info struct {
	Code      string   `json:"code"`
	Name      string   `json:"name"`
	Accuracy  Accuracy `json:"accuracy"`
	MinLength int      `json:"min_length"`
}

// Supported is the static table of languages the classifier understands.
// It is never mutated after startup.
var Supported = map[string]Info{
	"en": {Code: "en", Name: "English", Accuracy: AccuracyHigh, MinLength: 50},
	"es": {Code: "es", Name: "Spanish", Accuracy: AccuracyHigh, MinLength: 50},
	"fr": {Code: "fr", Name: "French", Accuracy: AccuracyHigh, MinLength: 50},
	"de": {Code: "de", Name: "German", Accuracy: AccuracyHigh, MinLength: 50},
	"it": {Code: "it", Name: "Italian", Accuracy: AccuracyMedium, MinLength: 50},
	"pt": {Code: "pt", Name: "Portuguese", Accuracy: AccuracyMedium, MinLength: 50},
	"nl": {Code: "nl", Name: "Dutch", Accuracy: AccuracyMedium, MinLength: 50},
	"zh": {Code: "zh", Name: "Chinese", Accuracy: AccuracyMedium, MinLength: 30},
	"ja": {Code: "ja", Name: "Japanese", Accuracy: AccuracyMedium, MinLength: 30},
	"ko": {Code: "ko", Name: "Korean", Accuracy: AccuracyMedium, MinLength: 30},
	"ru": {Code: "ru", Name: "Russian", Accuracy: AccuracyMedium, MinLength: 50},
	"ar": {Code: "ar", Name: "Arabic", Accuracy: AccuracyLow, MinLength: 50},
}

// scriptCheck ties a code-point range to a language. Checked in order;
// the first matching script wins for mixed-script text.
type scriptCheck struct {
	code    string
	pattern *regexp.Regexp
}

var scriptChecks = []scriptCheck{
	{"zh", regexp.MustCompile(`[\x{4e00}-\x{9fff}]`)},
	{"ja", regexp.MustCompile(`[\x{3040}-\x{309f}\x{30a0}-\x{30ff}]`)},
	{"ko", regexp.MustCompile(`[\x{ac00}-\x{d7af}]`)},
	{"ar", regexp.MustCompile(`[\x{0600}-\x{06ff}]`)},
	{"ru", regexp.MustCompile(`[\x{0400}-\x{04ff}]`)},
}

// stopWords are frequent function words per Latin-script language.
var stopWords = map[string][]string{
	"es": {"el", "la", "de", "que", "y", "es", "en", "un", "te", "lo"},
	"fr": {"le", "de", "et", "un", "il", "être", "en", "avoir", "que", "ne"},
	"de": {"der", "die", "und", "in", "den", "von", "zu", "das", "mit", "sich"},
	"it": {"di", "che", "e", "il", "un", "a", "è", "per", "una", "in"},
	"pt": {"de", "a", "o", "que", "e", "do", "da", "em", "um", "para"},
	"nl": {"de", "het", "een", "en", "van", "te", "dat", "die", "in", "op"},
}

// latinOrder fixes the tie-break order for stop-word scoring.
var latinOrder = []string{"es", "fr", "de", "it", "pt", "nl"}

// maxScoredWords bounds how much of the text stop-word scoring looks at.
const maxScoredWords = 20

// minStopWordMatches is the threshold below which stop-word scoring is
// considered inconclusive and the text defaults to English.
const minStopWordMatches = 2

// Detect classifies text into one of the supported languages. It is a pure
// function: it never fails and defaults to English when no signal is strong
// enough.
func Detect(text string) Info {
	for _, sc := range scriptChecks {
		if sc.pattern.MatchString(text) {
			return Supported[sc.code]
		}
	}

	words := strings.Fields(strings.ToLower(text))
	if len(words) > maxScoredWords {
		words = words[:maxScoredWords]
	}

	bestCode := ""
	bestScore := 0
	for _, code := range latinOrder {
		list := stopWords[code]
		score := 0
		for _, w := range words {
			for _, sw := range list {
				if w == sw {
					score++
					break
				}
			}
		}
		if score > bestScore {
			bestCode = code
			bestScore = score
		}
	}

	if bestScore >= minStopWordMatches {
		return Supported[bestCode]
	}

	return Supported["en"]
}

// MinimumTextLength returns the minimum number of characters required for a
// meaningful detection in the given language.
func MinimumTextLength(info Info) int {
	return info.MinLength
}

// AccuracyWarning returns a user-facing warning for languages where pattern
// accuracy is reduced. It returns the empty string for high-accuracy
// languages.
func AccuracyWarning(info Info) string {
	switch info.Accuracy {
	case AccuracyMedium:
		return fmt.Sprintf("Detection accuracy may be lower for %s text. For best results, use English content.", info.Name)
	case AccuracyLow:
		return fmt.Sprintf("Limited support for %s. Detection accuracy may be significantly lower. Consider translating to English for better results.", info.Name)
	default:
		return ""
	}
}
