package server

import (
	"net/http"
	"time"
)

type serviceHealth struct {
	Status string `json:"status"` // "configured" or "missing_key"
}

type healthResponse struct {
	Status    string                   `json:"status"` // "healthy" or "degraded"
	Timestamp string                   `json:"timestamp"`
	Services  map[string]serviceHealth `json:"services"`
}

// handleHealth reports whether the upstream credentials are present. It
// never calls the upstreams; a probe must stay cheap and quota-free.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ocrStatus := "configured"
	if s.cfg.OCR.APIKey() == "" {
		ocrStatus = "missing_key"
	}
	llmStatus := "configured"
	if s.cfg.LLM.APIKey() == "" {
		llmStatus = "missing_key"
	}

	resp := healthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Services: map[string]serviceHealth{
			"ocr":      {Status: ocrStatus},
			"analysis": {Status: llmStatus},
		},
	}

	status := http.StatusOK
	if ocrStatus != "configured" || llmStatus != "configured" {
		resp.Status = "degraded"
		status = http.StatusServiceUnavailable
	}

	s.writeJSON(w, status, resp)
}
