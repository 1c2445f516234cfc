// Package detection implements the text-detection scoring engine: a
// rule-based classifier, a content-addressed result cache, and the tiered
// router that picks between the local heuristic and the paid vendor API.
package detection

import "github.com/stopfakeai/detection-api/internal/language"

// Method identifies which path produced a detection result.
type Method string

const (
	MethodCache   Method = "cache"
	MethodPattern Method = "pattern"
	MethodAPI     Method = "api"
	MethodMLModel Method = "ml-model"
)

// Result is the normalized outcome of a detection request. Results are
// immutable once stored in the cache.
type Result struct {
	LikelyAI   bool          `json:"likely_ai"`
	Confidence float64       `json:"confidence"`
	Method     Method        `json:"method"`
	Language   language.Info `json:"language"`
	Details    Details       `json:"details"`
}

// Details is a tagged union keyed by Result.Method. Exactly one variant is
// populated; the zero variants are omitted from JSON.
type Details struct {
	Pattern *PatternDetails `json:"pattern,omitempty"`
	API     *APIDetails     `json:"api,omitempty"`
	Demo    bool            `json:"demo,omitempty"`
}

// PatternDetails carries the heuristic classifier's signals.
type PatternDetails struct {
	AIScore              int     `json:"ai_score"`
	HumanScore           int     `json:"human_score"`
	Sentences            int     `json:"sentences"`
	AvgWordsPerSentence  float64 `json:"avg_words_per_sentence"`
	SentenceLengthSpread float64 `json:"sentence_length_spread"`
	RepetitionRatio      float64 `json:"repetition_ratio"`
	StrongAIPatternFound bool    `json:"strong_ai_pattern_found"`
	HumanPatternFound    bool    `json:"human_pattern_found"`
	NeutralFallback      bool    `json:"neutral_fallback,omitempty"`
}

// APIDetails carries vendor response metadata for API-served results.
type APIDetails struct {
	Vendor          string  `json:"vendor"`
	RawScore        float64 `json:"raw_score"`
	DocumentClasses string  `json:"document_classes,omitempty"`
}

// CostPerWordUSD is the vendor price per scanned word, used for the
// cost-saved estimate surfaced to callers.
const CostPerWordUSD = 0.00015

// CostEstimateUSD returns the vendor cost a detection would have incurred.
// Local methods are free.
func CostEstimateUSD(wordCount int, method Method) float64 {
	if method != MethodAPI && method != MethodMLModel {
		return 0
	}
	return float64(wordCount) * CostPerWordUSD
}
