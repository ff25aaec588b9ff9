package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/amr05008/glutenornot.com/internal/analysis"
	"github.com/amr05008/glutenornot.com/internal/ratelimit"
)

type analyzeRequest struct {
	Image string `json:"image"` // base64-encoded photo, data URI prefix allowed
}

// handleAnalyze runs the photo path: admission check, OCR, LLM analysis,
// parse, then a single quota commit. Failed upstream calls never consume
// quota.
func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || strings.TrimSpace(req.Image) == "" {
		requestsTotal.WithLabelValues("analyze", "bad_request").Inc()
		s.writeError(w, http.StatusBadRequest, errorBody{
			Error:   "Missing image",
			Message: "No image provided",
		})
		return
	}

	id := clientIdentifier(r)
	if !s.admit(w, r, "analyze", id) {
		return
	}

	// Clients send either bare base64 or a data URI; the OCR engine wants
	// bare base64.
	image := req.Image
	if i := strings.Index(image, ","); i != -1 && strings.HasPrefix(image, "data:") {
		image = image[i+1:]
	}

	ocrStart := time.Now()
	text, err := s.ocr.ExtractText(ctx, image)
	upstreamDuration.WithLabelValues("ocr").Observe(time.Since(ocrStart).Seconds())
	// Blank text with a nil error is still a failed read: an engine may
	// return an annotation whose description is empty.
	if err != nil || strings.TrimSpace(text) == "" {
		s.logger.Warn().Err(err).Msg("ocr extraction failed")
		requestsTotal.WithLabelValues("analyze", "ocr_failed").Inc()
		s.writeError(w, http.StatusBadRequest, errorBody{
			Error:   "OCR failed",
			Code:    "OCR_FAILED",
			Message: "Couldn't read the label. Try getting the ingredients list in focus.",
		})
		return
	}

	llmStart := time.Now()
	completion, err := s.llm.Complete(ctx, analysis.ScanPrompt(text))
	upstreamDuration.WithLabelValues("llm").Observe(time.Since(llmStart).Seconds())
	if err != nil {
		s.logger.Error().Err(err).Msg("analysis call failed")
		requestsTotal.WithLabelValues("analyze", "llm_unavailable").Inc()
		s.writeError(w, http.StatusServiceUnavailable, errorBody{
			Error:   "Analysis service unavailable",
			Message: "Our analysis service is temporarily unavailable. Please try again in a few minutes.",
		})
		return
	}

	result := analysis.Parse(completion, analysis.ScanFlavor)

	// The request did real work even when the parse degraded to the
	// fail-safe result, so it counts against the quota.
	s.commit(ctx, id)

	requestsTotal.WithLabelValues("analyze", "ok").Inc()
	s.writeJSON(w, http.StatusOK, result)
}

// admit runs the rate-limit check and writes the 429 when the quota is
// spent. Store errors fail open: a broken Redis should degrade limiting,
// not take scanning down. Returns true when the request may proceed.
func (s *Server) admit(w http.ResponseWriter, r *http.Request, endpoint, id string) bool {
	dec, err := s.limiter.Check(r.Context(), id)
	if err != nil {
		s.logger.Warn().Err(err).Str("client", id).Msg("rate check failed, allowing")
		return true
	}
	if dec.Allowed {
		return true
	}

	retryAfter := int(dec.ResetIn / time.Second)
	requestsTotal.WithLabelValues(endpoint, "rate_limited").Inc()
	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	s.writeError(w, http.StatusTooManyRequests, errorBody{
		Error: "Rate limit exceeded",
		Message: fmt.Sprintf("You've reached today's scan limit (%d). Resets in %s.",
			s.limiter.Quota(), ratelimit.FormatTimeRemaining(dec.ResetIn)),
		RetryAfter: retryAfter,
	})
	return false
}

// commit charges one unit of quota. Errors are logged, not surfaced; the
// user already got their result.
func (s *Server) commit(ctx context.Context, id string) {
	if err := s.limiter.Commit(ctx, id); err != nil {
		s.logger.Warn().Err(err).Str("client", id).Msg("rate commit failed")
	}
}
