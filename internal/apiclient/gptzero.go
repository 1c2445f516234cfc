package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
)

const gptZeroURL = "https://api.gptzero.me/v2/predict/text"

// GPTZeroClient wraps the GPTZero text detection API.
type GPTZeroClient struct {
	client *Client
	apiKey string
	url    string
}

// NewGPTZeroClient creates a GPTZero client. An empty apiKey leaves the
// client unconfigured; callers should check IsConfigured before use.
func NewGPTZeroClient(client *Client, apiKey string) *GPTZeroClient {
	return &GPTZeroClient{client: client, apiKey: apiKey, url: gptZeroURL}
}

// IsConfigured reports whether an API key is present.
func (g *GPTZeroClient) IsConfigured() bool {
	return g.apiKey != ""
}

// GPTZeroDocument is a scored document in a GPTZero response.
type GPTZeroDocument struct {
	CompletelyGeneratedProb float64 `json:"completely_generated_prob"`
	AverageGeneratedProb    float64 `json:"average_generated_prob"`
	PredictedClass          string  `json:"predicted_class"`
}

// GPTZeroResponse is the vendor response shape.
type GPTZeroResponse struct {
	Documents []GPTZeroDocument `json:"documents"`
}

// DetectText submits text for detection and returns the parsed response.
// Completed responses with error statuses become classified APIErrors.
func (g *GPTZeroClient) DetectText(ctx context.Context, text string) (*GPTZeroResponse, error) {
	if !g.IsConfigured() {
		return nil, &APIError{
			Message:   "GPTZero API key is not configured.",
			Code:      CodeUnauthorized,
			Retryable: false,
		}
	}

	payload, err := json.Marshal(map[string]string{"document": text})
	if err != nil {
		return nil, err
	}

	resp, err := g.client.Do(ctx, func(ctx context.Context) (*http.Request, error) {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.url, bytes.NewReader(payload))
		if err != nil {
			return nil, err
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("x-api-key", g.apiKey)
		return req, nil
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, FromStatus("GPTZero", resp.StatusCode, string(body))
	}

	var parsed GPTZeroResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode GPTZero response: %w", err)
	}
	if len(parsed.Documents) == 0 {
		return nil, fmt.Errorf("GPTZero response contained no documents")
	}
	return &parsed, nil
}
