package detection

import (
	"math"
	"regexp"
	"strings"

	"github.com/stopfakeai/detection-api/internal/language"
)

// Scoring weights. Strong patterns are near-definitive phrases, weak
// patterns are connectives merely common in generated text, and structural
// signals carry less weight than any direct pattern hit.
const (
	strongAIWeight    = 30
	weakAIWeight      = 8
	humanWeight       = 15
	spreadWeight      = 20
	repetitionWeightA = 10
	repetitionWeightH = 5
)

// Structural thresholds.
const (
	lowSpreadThreshold    = 3.0  // uniform sentence lengths suggest AI
	highSpreadThreshold   = 10.0 // bursty sentence lengths suggest a human
	highRepetitionRatio   = 2.0
	lowRepetitionRatio    = 1.5
	minSentencesForSpread = 2
)

// Confidence bounds and neutral fallback values. Confidence never reaches
// 0 or 1: the heuristic cannot justify certainty.
const (
	confidenceFloor   = 0.15
	confidenceCeiling = 0.90
	neutralHuman      = 0.30
	neutralAI         = 0.70
	neutralUnknown    = 0.50
)

var strongAIPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)as an ai`),
	regexp.MustCompile(`(?i)i'm an ai`),
	regexp.MustCompile(`(?i)as a language model`),
	regexp.MustCompile(`(?i)as an artificial intelligence`),
	regexp.MustCompile(`(?i)i cannot provide`),
	regexp.MustCompile(`(?i)i don't have access to`),
	regexp.MustCompile(`(?i)i'm not able to`),
	regexp.MustCompile(`(?i)i cannot assist`),
}

var weakAIPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)it(?:'s| is) important to note`),
	regexp.MustCompile(`(?i)however, it(?:'s| is) worth noting`),
	regexp.MustCompile(`(?i)\bin conclusion\b`),
	regexp.MustCompile(`(?i)\bfurthermore\b`),
	regexp.MustCompile(`(?i)\bmoreover\b`),
	regexp.MustCompile(`(?i)\bnevertheless\b`),
	regexp.MustCompile(`(?i)it should be noted`),
	regexp.MustCompile(`(?i)it(?:'s| is) worth mentioning`),
}

var humanPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bi\s+think\b`),
	regexp.MustCompile(`(?i)\bmy\s+opinion\b`),
	regexp.MustCompile(`(?i)\bpersonally\b`),
	regexp.MustCompile(`(?i)\byesterday\b`),
	regexp.MustCompile(`(?i)\btomorrow\b`),
	regexp.MustCompile(`(?i)\blol\b`),
	regexp.MustCompile(`(?i)\bomg\b`),
	regexp.MustCompile(`(?i)\bwtf\b`),
	regexp.MustCompile(`(?i)\byeah\b`),
	regexp.MustCompile(`(?i)\bnah\b`),
	regexp.MustCompile(`(?i)\bawesome\b`),
	regexp.MustCompile(`(?i)\bcool\b`),
	regexp.MustCompile(`(?i)\bwow\b`),
}

// Neutral-fallback markers for texts that match no pattern at all.
var (
	complexVocabulary = regexp.MustCompile(`(?i)\b(?:furthermore|moreover|consequently|nevertheless|accordingly|specifically|particularly)\b`)
	personalPronouns  = regexp.MustCompile(`(?i)\b(?:i|my|me|myself)\b`)
)

var sentenceSplit = regexp.MustCompile(`[.!?]+`)

// Classifier is the rule-based text scorer. It is stateless and safe for
// concurrent use.
type Classifier struct{}

// NewClassifier returns a heuristic classifier.
func NewClassifier() *Classifier {
	return &Classifier{}
}

// Classify scores text and returns a pattern-method result. It is a pure
// function of its input and never fails.
func (c *Classifier) Classify(text string, lang language.Info) Result {
	aiScore := 0
	humanScore := 0
	strongFound := false
	humanFound := false

	for _, p := range strongAIPatterns {
		if p.MatchString(text) {
			aiScore += strongAIWeight
			strongFound = true
		}
	}
	for _, p := range weakAIPatterns {
		if p.MatchString(text) {
			aiScore += weakAIWeight
		}
	}
	for _, p := range humanPatterns {
		if p.MatchString(text) {
			humanScore += humanWeight
			humanFound = true
		}
	}

	sentences := splitSentences(text)
	avgLen, spread := sentenceStats(sentences)
	if len(sentences) >= minSentencesForSpread {
		if spread < lowSpreadThreshold {
			aiScore += spreadWeight
		} else if spread > highSpreadThreshold {
			humanScore += spreadWeight
		}
	}

	ratio := repetitionRatio(text)
	if ratio > highRepetitionRatio {
		aiScore += repetitionWeightA
	} else if ratio > 0 && ratio < lowRepetitionRatio {
		humanScore += repetitionWeightH
	}

	neutral := false
	var confidence float64
	if total := aiScore + humanScore; total > 0 {
		confidence = float64(aiScore) / float64(total)
	} else {
		neutral = true
		confidence = neutralConfidence(text)
	}

	// Patterns are tuned for English; pull other languages toward
	// uncertainty before clamping.
	if lang.Code != "en" {
		confidence = confidence*0.8 + 0.1
	}
	confidence = clamp(confidence)

	return Result{
		LikelyAI:   confidence > 0.5,
		Confidence: confidence,
		Method:     MethodPattern,
		Language:   lang,
		Details: Details{
			Pattern: &PatternDetails{
				AIScore:              aiScore,
				HumanScore:           humanScore,
				Sentences:            len(sentences),
				AvgWordsPerSentence:  math.Round(avgLen*100) / 100,
				SentenceLengthSpread: math.Round(spread*100) / 100,
				RepetitionRatio:      math.Round(ratio*100) / 100,
				StrongAIPatternFound: strongFound,
				HumanPatternFound:    humanFound,
				NeutralFallback:      neutral,
			},
		},
	}
}

// neutralConfidence decides a fixed confidence for texts with no pattern
// hits, from the balance of complex vocabulary against personal pronouns.
func neutralConfidence(text string) float64 {
	vocab := complexVocabulary.MatchString(text)
	pronouns := personalPronouns.MatchString(text)
	switch {
	case pronouns && !vocab:
		return neutralHuman
	case vocab && !pronouns:
		return neutralAI
	default:
		return neutralUnknown
	}
}

func splitSentences(text string) []string {
	parts := sentenceSplit.Split(text, -1)
	sentences := make([]string, 0, len(parts))
	for _, p := range parts {
		if strings.TrimSpace(p) != "" {
			sentences = append(sentences, p)
		}
	}
	return sentences
}

// sentenceStats returns mean words per sentence and the mean absolute
// deviation of sentence length from that mean.
func sentenceStats(sentences []string) (avg, spread float64) {
	if len(sentences) == 0 {
		return 0, 0
	}
	lengths := make([]int, len(sentences))
	total := 0
	for i, s := range sentences {
		lengths[i] = len(strings.Fields(s))
		total += lengths[i]
	}
	avg = float64(total) / float64(len(sentences))
	var dev float64
	for _, l := range lengths {
		dev += math.Abs(float64(l) - avg)
	}
	return avg, dev / float64(len(sentences))
}

// repetitionRatio is total word count over unique lowercased word count.
func repetitionRatio(text string) float64 {
	words := strings.Fields(text)
	if len(words) == 0 {
		return 0
	}
	unique := make(map[string]struct{}, len(words))
	for _, w := range words {
		unique[strings.ToLower(w)] = struct{}{}
	}
	return float64(len(words)) / float64(len(unique))
}

func clamp(v float64) float64 {
	return math.Max(confidenceFloor, math.Min(confidenceCeiling, v))
}
