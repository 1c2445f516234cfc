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

const resembleURL = "https://app.resemble.ai/api/v2/detect"

// ResembleClient wraps the Resemble Detect API for synthetic-voice
// detection.
type ResembleClient struct {
	client *Client
	apiKey string
	url    string
}

// NewResembleClient creates a Resemble client.
func NewResembleClient(client *Client, apiKey string) *ResembleClient {
	return &ResembleClient{client: client, apiKey: apiKey, url: resembleURL}
}

// IsConfigured reports whether an API key is present.
func (r *ResembleClient) IsConfigured() bool {
	return r.apiKey != ""
}

// ResembleResponse is the subset of the detect response we consume.
type ResembleResponse struct {
	Item struct {
		Score float64 `json:"score"`
		Label string  `json:"label"`
	} `json:"item"`
}

// DetectAudio submits an audio file for synthetic-voice analysis.
func (r *ResembleClient) DetectAudio(ctx context.Context, filename string, audio []byte) (*ResembleResponse, error) {
	if !r.IsConfigured() {
		return nil, &APIError{
			Message:   "Resemble API key is not configured.",
			Code:      CodeUnauthorized,
			Retryable: false,
		}
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return nil, err
	}
	if _, err := part.Write(audio); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	body := buf.Bytes()

	resp, err := r.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, r.url, bytes.NewReader(body))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+r.apiKey)
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, FromStatus("Resemble", resp.StatusCode, string(respBody))
	}

	var parsed ResembleResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode Resemble response: %w", err)
	}
	return &parsed, nil
}
