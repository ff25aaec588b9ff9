package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

const openFoodFactsName = "Open Food Facts"

// userAgent identifies us to the free databases, per their API guidelines.
const userAgent = "GlutenOrNot/1.0 (https://glutenornot.com)"

// OpenFoodFacts is the primary, credential-free provider. Products are
// keyed by EAN-13 in its database, so short or unpadded scans are retried
// as zero-padded UPC-A (12) and EAN-13 (13) variants.
type OpenFoodFacts struct {
	baseURL string
	client  *http.Client
	limiter *rate.Limiter
}

// NewOpenFoodFacts builds the provider. The limiter is the shared
// politeness throttle for free databases; nil disables throttling.
func NewOpenFoodFacts(baseURL string, timeout time.Duration, limiter *rate.Limiter) *OpenFoodFacts {
	if baseURL == "" {
		baseURL = "https://world.openfoodfacts.org"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &OpenFoodFacts{
		baseURL: baseURL,
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

func (p *OpenFoodFacts) Name() string { return openFoodFactsName }

type offResponse struct {
	Status  int `json:"status"`
	Product *struct {
		ProductName     string   `json:"product_name"`
		Brands          string   `json:"brands"`
		IngredientsText string   `json:"ingredients_text"`
		AllergensTags   []string `json:"allergens_tags"`
		TracesTags      []string `json:"traces_tags"`
		LabelsTags      []string `json:"labels_tags"`
	} `json:"product"`
}

// Lookup tries the barcode as given, then zero-padded to 12 and 13 digits,
// stopping at the first hit.
func (p *OpenFoodFacts) Lookup(ctx context.Context, barcode string) (*Product, error) {
	tried := make(map[string]bool, 3)
	for _, code := range []string{barcode, padBarcode(barcode, 12), padBarcode(barcode, 13)} {
		if tried[code] {
			continue
		}
		tried[code] = true

		product, err := p.fetch(ctx, code)
		if err != nil {
			return nil, err
		}
		if product != nil {
			return product, nil
		}
	}
	return nil, nil
}

func (p *OpenFoodFacts) fetch(ctx context.Context, code string) (*Product, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("openfoodfacts throttle: %w", err)
		}
	}

	url := fmt.Sprintf("%s/api/v2/product/%s?fields=product_name,brands,ingredients_text,allergens_tags,traces_tags,labels_tags", p.baseURL, code)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("openfoodfacts request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("openfoodfacts call: %w", err)
	}
	defer resp.Body.Close()

	// 404 is how Open Food Facts reports an unknown barcode.
	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("openfoodfacts status %d", resp.StatusCode)
	}

	var out offResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("openfoodfacts decode: %w", err)
	}
	if out.Status != 1 || out.Product == nil {
		return nil, nil
	}

	return &Product{
		Source:          openFoodFactsName,
		Barcode:         code,
		ProductName:     out.Product.ProductName,
		Brand:           out.Product.Brands,
		IngredientsText: out.Product.IngredientsText,
		AllergensTags:   out.Product.AllergensTags,
		TracesTags:      out.Product.TracesTags,
		LabelsTags:      out.Product.LabelsTags,
	}, nil
}
