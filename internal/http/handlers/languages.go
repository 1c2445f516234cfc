package handlers

import (
	"context"
	"sort"

	"github.com/stopfakeai/detection-api/internal/language"
)

// LanguageResponse describes one supported detection language.
type LanguageResponse struct {
	Code      string `json:"code" doc:"ISO 639-1 language code"`
	Name      string `json:"name" doc:"English language name"`
	Accuracy  string `json:"accuracy" doc:"Heuristic accuracy level (high, medium, low)"`
	MinLength int    `json:"min_length" doc:"Minimum text length for detection"`
}

// ListLanguagesOutput is the supported-languages response.
type ListLanguagesOutput struct {
	Body struct {
		Languages []LanguageResponse `json:"languages"`
	}
}

// ListLanguages returns the languages the detector supports. Public
// endpoint.
func ListLanguages(ctx context.Context, _ *struct{}) (*ListLanguagesOutput, error) {
	langs := make([]LanguageResponse, 0, len(language.Supported))
	for _, info := range language.Supported {
		langs = append(langs, LanguageResponse{
			Code:      info.Code,
			Name:      info.Name,
			Accuracy:  string(info.Accuracy),
			MinLength: info.MinLength,
		})
	}
	sort.Slice(langs, func(i, j int) bool { return langs[i].Code < langs[j].Code })

	out := &ListLanguagesOutput{}
	out.Body.Languages = langs
	return out, nil
}
