package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/danielgtaylor/huma/v2"

	"github.com/stopfakeai/detection-api/internal/apiclient"
	"github.com/stopfakeai/detection-api/internal/detection"
	"github.com/stopfakeai/detection-api/internal/service"
)

// DetectHandler handles text, image, and audio detection endpoints. The
// daily check is charged by the quota middleware before requests reach
// these handlers.
type DetectHandler struct {
	detectionSvc *service.DetectionService
	mediaSvc     *service.MediaService
	logger       *slog.Logger
}

// NewDetectHandler creates a new detection handler.
func NewDetectHandler(detectionSvc *service.DetectionService, mediaSvc *service.MediaService, logger *slog.Logger) *DetectHandler {
	return &DetectHandler{
		detectionSvc: detectionSvc,
		mediaSvc:     mediaSvc,
		logger:       logger,
	}
}

// DetectedLanguage describes the language the classifier ran against.
type DetectedLanguage struct {
	Detected string `json:"detected" doc:"Language name"`
	Code     string `json:"code" doc:"ISO 639-1 code"`
	Accuracy string `json:"accuracy" doc:"Expected detection accuracy (high, medium, low)"`
	Warning  string `json:"warning,omitempty" doc:"Warning for reduced-accuracy languages"`
}

// DetectionResponse is the client representation of a detection result.
type DetectionResponse struct {
	LikelyAI      bool               `json:"likely_ai" doc:"Whether the content is likely AI-generated"`
	Confidence    float64            `json:"confidence" doc:"Confidence score between 0 and 1"`
	Method        string             `json:"method" doc:"Detection method used (cache, pattern, api, ml-model)"`
	Language      *DetectedLanguage  `json:"language,omitempty" doc:"Detected language"`
	WordCount     int                `json:"word_count,omitempty" doc:"Number of words analyzed"`
	CostSavedUSD  float64            `json:"cost_saved_usd,omitempty" doc:"Estimated vendor spend avoided"`
	RateRemaining int                `json:"rate_remaining,omitempty" doc:"Requests left in the current rate window"`
	Details       *detection.Details `json:"details,omitempty" doc:"Method-specific detail"`
}

func buildDetectionResponse(result detection.Result) DetectionResponse {
	resp := DetectionResponse{
		LikelyAI:   result.LikelyAI,
		Confidence: result.Confidence,
		Method:     string(result.Method),
	}
	// Media results carry no language info
	if result.Language.Code != "" {
		resp.Language = &DetectedLanguage{
			Detected: result.Language.Name,
			Code:     result.Language.Code,
			Accuracy: string(result.Language.Accuracy),
		}
	}
	if result.Details != (detection.Details{}) {
		d := result.Details
		resp.Details = &d
	}
	return resp
}

// DetectTextInput is the text detection request.
type DetectTextInput struct {
	Body struct {
		Text string `json:"text" minLength:"1" maxLength:"50000" doc:"Text to analyze"`
	}
}

// DetectTextOutput is the text detection response.
type DetectTextOutput struct {
	Body DetectionResponse
}

// DetectText analyzes text for AI generation.
func (h *DetectHandler) DetectText(ctx context.Context, input *DetectTextInput) (*DetectTextOutput, error) {
	userID := getUserID(ctx)
	if userID == "" {
		return nil, huma.Error401Unauthorized("unauthorized")
	}

	result, err := h.detectionSvc.DetectText(ctx, userID, getUserTier(ctx), input.Body.Text)
	if err != nil {
		return nil, mapDetectionError(err)
	}

	resp := buildDetectionResponse(result.Result)
	resp.WordCount = result.WordCount
	resp.CostSavedUSD = result.CostSavedUSD
	resp.RateRemaining = result.RateRemaining
	if resp.Language != nil {
		resp.Language.Warning = result.LanguageWarning
	}

	return &DetectTextOutput{Body: resp}, nil
}

// upstreamFailure reports a classified vendor failure. Implementing
// huma.StatusError makes it the response body as-is.
type upstreamFailure struct {
	Message   string `json:"error"`
	Code      string `json:"code"`
	Retryable bool   `json:"retryable"`
}

func (e *upstreamFailure) Error() string {
	return e.Message
}

func (e *upstreamFailure) GetStatus() int {
	return http.StatusInternalServerError
}

// mapDetectionError translates service errors to HTTP status errors.
func mapDetectionError(err error) error {
	var tooShort *service.TextTooShortError
	var rateLimited *service.RateLimitError
	var apiErr *apiclient.APIError

	switch {
	case errors.Is(err, service.ErrEmptyText):
		return huma.Error400BadRequest(err.Error())
	case errors.As(err, &tooShort):
		return huma.Error400BadRequest(tooShort.Error())
	case errors.As(err, &rateLimited):
		return huma.Error429TooManyRequests(rateLimited.Error())
	case errors.As(err, &apiErr):
		return &upstreamFailure{
			Message:   "detection vendor unavailable",
			Code:      apiErr.Code,
			Retryable: apiErr.Retryable,
		}
	default:
		return huma.Error500InternalServerError("detection failed")
	}
}

// maxMemory bounds multipart parsing; larger parts spill to disk.
const maxMemory = 4 << 20

// DetectImage analyzes an uploaded image for AI generation. Raw handler
// since huma does not handle multipart uploads well.
func (h *DetectHandler) DetectImage(w http.ResponseWriter, r *http.Request) {
	h.detectMedia(w, r, h.mediaSvc.DetectImage)
}

// DetectAudio analyzes an uploaded audio clip for synthetic speech.
func (h *DetectHandler) DetectAudio(w http.ResponseWriter, r *http.Request) {
	h.detectMedia(w, r, h.mediaSvc.DetectAudio)
}

func (h *DetectHandler) detectMedia(w http.ResponseWriter, r *http.Request, detect func(context.Context, string, []byte) (detection.Result, error)) {
	userID := getUserID(r.Context())
	if userID == "" {
		writeJSONError(w, http.StatusUnauthorized, "unauthorized")
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, service.MaxMediaBytes+maxMemory)
	if err := r.ParseMultipartForm(maxMemory); err != nil {
		writeJSONError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "file field is required")
		return
	}
	defer func() { _ = file.Close() }()

	data, err := io.ReadAll(io.LimitReader(file, service.MaxMediaBytes+1))
	if err != nil {
		writeJSONError(w, http.StatusBadRequest, "failed to read file")
		return
	}

	result, err := detect(r.Context(), header.Filename, data)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyMedia), errors.Is(err, service.ErrMediaTooLarge):
			writeJSONError(w, http.StatusBadRequest, err.Error())
		default:
			var apiErr *apiclient.APIError
			if errors.As(err, &apiErr) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusInternalServerError)
				_ = json.NewEncoder(w).Encode(&upstreamFailure{
					Message:   "detection vendor unavailable",
					Code:      apiErr.Code,
					Retryable: apiErr.Retryable,
				})
				return
			}
			h.logger.Error("media detection failed", "user_id", userID, "error", err)
			writeJSONError(w, http.StatusInternalServerError, "detection failed")
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_ = json.NewEncoder(w).Encode(buildDetectionResponse(result))
}

func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
