package ocr

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// visionEngine implements Engine for the Google Cloud Vision REST API
// (images:annotate with TEXT_DETECTION).
type visionEngine struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewVision creates a Google Cloud Vision OCR engine.
func NewVision(baseURL, apiKey string, timeout time.Duration) Engine {
	if baseURL == "" {
		baseURL = "https://vision.googleapis.com"
	}
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &visionEngine{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

type visionRequest struct {
	Requests []visionAnnotateRequest `json:"requests"`
}

type visionAnnotateRequest struct {
	Image    visionImage     `json:"image"`
	Features []visionFeature `json:"features"`
}

type visionImage struct {
	Content string `json:"content"`
}

type visionFeature struct {
	Type string `json:"type"`
}

type visionResponse struct {
	Responses []struct {
		TextAnnotations []struct {
			Description string `json:"description"`
		} `json:"textAnnotations"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	} `json:"responses"`
}

func (e *visionEngine) ExtractText(ctx context.Context, imageBase64 string) (string, error) {
	body, err := json.Marshal(visionRequest{
		Requests: []visionAnnotateRequest{{
			Image:    visionImage{Content: imageBase64},
			Features: []visionFeature{{Type: "TEXT_DETECTION"}},
		}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal vision request: %w", err)
	}

	url := fmt.Sprintf("%s/v1/images:annotate?key=%s", e.baseURL, e.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create vision request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("call vision: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return "", fmt.Errorf("vision status %d: %s", resp.StatusCode, respBody)
	}

	var out visionResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("decode vision response: %w", err)
	}

	if len(out.Responses) == 0 {
		return "", ErrNoText
	}
	first := out.Responses[0]
	if first.Error != nil {
		return "", fmt.Errorf("vision annotate: %s", first.Error.Message)
	}
	if len(first.TextAnnotations) == 0 {
		return "", ErrNoText
	}

	// The first annotation carries the full extracted text.
	return first.TextAnnotations[0].Description, nil
}
