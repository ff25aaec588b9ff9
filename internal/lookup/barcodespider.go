package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const barcodeSpiderName = "Barcode Spider"

// BarcodeSpider is the last-resort credentialed provider. It sometimes
// carries an ingredients string the free databases lack.
type BarcodeSpider struct {
	baseURL string
	apiKey  string
	client  *http.Client
}

// NewBarcodeSpider builds the provider. An empty apiKey yields nil, which
// the caller omits from the waterfall.
func NewBarcodeSpider(baseURL, apiKey string, timeout time.Duration) *BarcodeSpider {
	if apiKey == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = "https://api.barcodespider.com"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BarcodeSpider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
	}
}

func (p *BarcodeSpider) Name() string { return barcodeSpiderName }

type barcodeSpiderResponse struct {
	ItemResponse struct {
		Code int `json:"code"`
	} `json:"item_response"`
	ItemAttributes *struct {
		Title       string `json:"title"`
		Brand       string `json:"brand"`
		Ingredients string `json:"ingredients"`
	} `json:"item_attributes"`
}

func (p *BarcodeSpider) Lookup(ctx context.Context, barcode string) (*Product, error) {
	endpoint := fmt.Sprintf("%s/v1/lookup?upc=%s", p.baseURL, url.QueryEscape(barcode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("barcodespider request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("token", p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("barcodespider call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("barcodespider status %d", resp.StatusCode)
	}

	var out barcodeSpiderResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("barcodespider decode: %w", err)
	}
	if out.ItemResponse.Code != http.StatusOK || out.ItemAttributes == nil || out.ItemAttributes.Title == "" {
		return nil, nil
	}

	return &Product{
		Source:          barcodeSpiderName,
		Barcode:         barcode,
		ProductName:     out.ItemAttributes.Title,
		Brand:           out.ItemAttributes.Brand,
		IngredientsText: out.ItemAttributes.Ingredients,
	}, nil
}
