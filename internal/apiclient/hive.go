package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
)

const hiveURL = "https://api.thehive.ai/api/v2/task/sync"

// HiveClient wraps the Hive media moderation API used for AI-generated
// image and video detection.
type HiveClient struct {
	client *Client
	apiKey string
	url    string
}

// NewHiveClient creates a Hive client.
func NewHiveClient(client *Client, apiKey string) *HiveClient {
	return &HiveClient{client: client, apiKey: apiKey, url: hiveURL}
}

// IsConfigured reports whether an API key is present.
func (h *HiveClient) IsConfigured() bool {
	return h.apiKey != ""
}

// HiveOutputClass is one scored class in a Hive task response.
type HiveOutputClass struct {
	Class string  `json:"class"`
	Score float64 `json:"score"`
}

// HiveResponse is the subset of the Hive task response we consume.
type HiveResponse struct {
	Status []struct {
		Response struct {
			TaskID string            `json:"task_id"`
			Output []HiveOutputClass `json:"output"`
		} `json:"response"`
	} `json:"status"`
}

// AIGeneratedScore extracts the ai-generated/deepfake confidence, or 0 if
// the response carried no such class.
func (r *HiveResponse) AIGeneratedScore() float64 {
	for _, s := range r.Status {
		for _, out := range s.Response.Output {
			if out.Class == "ai_generated_image" || out.Class == "deepfake" {
				return out.Score
			}
		}
	}
	return 0
}

// DetectMedia submits a media file for synchronous analysis.
func (h *HiveClient) DetectMedia(ctx context.Context, filename string, media []byte) (*HiveResponse, error) {
	if !h.IsConfigured() {
		return nil, &APIError{
			Message:   "Hive API key is not configured.",
			Code:      CodeUnauthorized,
			Retryable: false,
		}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("media", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(media); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	body := buf.Bytes()

	resp, err := h.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, h.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("authorization", "token "+h.apiKey)
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, FromStatus("Hive", resp.StatusCode, string(respBody))
	}

	var parsed HiveResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode Hive response: %w", err)
	}
	return &parsed, nil
}
