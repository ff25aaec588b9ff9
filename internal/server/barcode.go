package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/amr05008/glutenornot.com/internal/analysis"
	"github.com/amr05008/glutenornot.com/pkg/verdict"
)

var barcodePattern = regexp.MustCompile(`^\d{8,14}$`)

type barcodeRequest struct {
	Barcode string `json:"barcode"`
}

// handleBarcode runs the barcode path: admission check, provider waterfall,
// then either an LLM analysis of the ingredient data or a synthetic
// no-ingredient-data result. Quota is committed once, only after a 200.
func (s *Server) handleBarcode(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req barcodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		req.Barcode = ""
	}
	barcode := strings.TrimSpace(req.Barcode)
	if barcode == "" {
		requestsTotal.WithLabelValues("barcode", "bad_request").Inc()
		s.writeError(w, http.StatusBadRequest, errorBody{
			Error:   "Missing barcode",
			Message: "No barcode provided",
		})
		return
	}
	if !barcodePattern.MatchString(barcode) {
		requestsTotal.WithLabelValues("barcode", "bad_request").Inc()
		s.writeError(w, http.StatusBadRequest, errorBody{
			Error:   "Invalid barcode",
			Message: "Invalid barcode format",
		})
		return
	}

	id := clientIdentifier(r)
	if !s.admit(w, r, "barcode", id) {
		return
	}

	lookupStart := time.Now()
	product := s.lookup.Lookup(ctx, barcode)
	upstreamDuration.WithLabelValues("lookup").Observe(time.Since(lookupStart).Seconds())
	if product == nil {
		requestsTotal.WithLabelValues("barcode", "not_found").Inc()
		s.writeError(w, http.StatusNotFound, errorBody{
			Error:   "Product not found",
			Message: "Product not found in our database. Try scanning the ingredient label instead.",
		})
		return
	}

	promptContext := analysis.BuildIngredientContext(product)
	if promptContext == "" {
		// Known product, no ingredient data anywhere. Answering "caution"
		// without analysis is still more useful than a 404: the user learns
		// the product exists and what to do next.
		result := verdict.AnalysisResult{
			Mode:               verdict.ModeLabel,
			Verdict:            verdict.Caution,
			FlaggedIngredients: []string{},
			AllergenWarnings:   []string{},
			Explanation: fmt.Sprintf(
				"Found %q but no ingredient data is available. Try scanning the ingredient label instead.",
				product.ProductName),
			Confidence:  verdict.Low,
			ProductName: product.ProductName,
			Barcode:     barcode,
			DataSource:  product.Source,
		}
		s.commit(ctx, id)
		requestsTotal.WithLabelValues("barcode", "no_ingredient_data").Inc()
		s.writeJSON(w, http.StatusOK, result)
		return
	}

	llmStart := time.Now()
	completion, err := s.llm.Complete(ctx, analysis.LookupPrompt(promptContext))
	upstreamDuration.WithLabelValues("llm").Observe(time.Since(llmStart).Seconds())
	if err != nil {
		s.logger.Error().Err(err).Str("barcode", barcode).Msg("analysis call failed")
		requestsTotal.WithLabelValues("barcode", "llm_unavailable").Inc()
		s.writeError(w, http.StatusServiceUnavailable, errorBody{
			Error:   "Analysis service unavailable",
			Message: "Our analysis service is temporarily unavailable. Please try again in a few minutes.",
		})
		return
	}

	result := analysis.Parse(completion, analysis.LookupFlavor)
	result.ProductName = product.ProductName
	result.Barcode = barcode
	result.DataSource = product.Source

	s.commit(ctx, id)
	requestsTotal.WithLabelValues("barcode", "ok").Inc()
	s.writeJSON(w, http.StatusOK, result)
}
