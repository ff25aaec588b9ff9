package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"golang.org/x/time/rate"
)

const upcItemDBName = "UPCitemdb"

// UPCItemDB is the second-choice provider, used only when its key is
// configured. Its search is fuzzy enough to return an unrelated product,
// so every answer's barcode is verified against the query; a mismatch is
// treated as not found rather than a hit.
type UPCItemDB struct {
	baseURL string
	apiKey  string
	client  *http.Client
	limiter *rate.Limiter
}

// NewUPCItemDB builds the provider. An empty apiKey yields a nil provider,
// which the caller omits from the waterfall.
func NewUPCItemDB(baseURL, apiKey string, timeout time.Duration, limiter *rate.Limiter) *UPCItemDB {
	if apiKey == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = "https://api.upcitemdb.com"
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &UPCItemDB{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: timeout},
		limiter: limiter,
	}
}

func (p *UPCItemDB) Name() string { return upcItemDBName }

type upcItemDBResponse struct {
	Code  string `json:"code"`
	Items []struct {
		EAN         string `json:"ean"`
		UPC         string `json:"upc"`
		Title       string `json:"title"`
		Brand       string `json:"brand"`
		Description string `json:"description"`
	} `json:"items"`
}

func (p *UPCItemDB) Lookup(ctx context.Context, barcode string) (*Product, error) {
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, fmt.Errorf("upcitemdb throttle: %w", err)
		}
	}

	endpoint := fmt.Sprintf("%s/prod/v1/lookup?upc=%s", p.baseURL, url.QueryEscape(barcode))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("upcitemdb request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("user_key", p.apiKey)
	req.Header.Set("key_type", "3scale")

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("upcitemdb call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, nil
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("upcitemdb status %d", resp.StatusCode)
	}

	var out upcItemDBResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("upcitemdb decode: %w", err)
	}
	if out.Code != "OK" || len(out.Items) == 0 {
		return nil, nil
	}

	item := out.Items[0]
	if !sameCode(item.EAN, barcode) && !sameCode(item.UPC, barcode) {
		// Fuzzy match on an unrelated product.
		return nil, nil
	}

	return &Product{
		Source:      upcItemDBName,
		Barcode:     barcode,
		ProductName: item.Title,
		Brand:       item.Brand,
	}, nil
}
