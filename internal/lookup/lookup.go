// Package lookup resolves barcodes to product data by trying a sequence of
// product-database providers in priority order.
package lookup

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

// Product is the normalized output of a successful lookup. It is built
// fresh per request and discarded after prompt-context building.
type Product struct {
	Source          string // display name of the provider that answered
	Barcode         string
	ProductName     string
	Brand           string
	IngredientsText string
	AllergensTags   []string
	TracesTags      []string
	LabelsTags      []string
}

// Provider resolves a barcode against one product database.
// (nil, nil) means the provider answered but has no matching product.
type Provider interface {
	Name() string
	Lookup(ctx context.Context, barcode string) (*Product, error)
}

// Waterfall tries providers strictly in order and returns the first usable
// result. Individual provider failures are logged and swallowed; they are
// indistinguishable from "not found" so one flaky upstream never fails the
// whole lookup. Exhausting every provider yields nil.
type Waterfall struct {
	providers []Provider
	logger    zerolog.Logger
}

// NewWaterfall builds a waterfall over the given providers, in order.
func NewWaterfall(logger zerolog.Logger, providers ...Provider) *Waterfall {
	return &Waterfall{providers: providers, logger: logger}
}

// Lookup returns the first provider hit, or nil when no provider knows the
// barcode.
func (w *Waterfall) Lookup(ctx context.Context, barcode string) *Product {
	for _, p := range w.providers {
		product, err := p.Lookup(ctx, barcode)
		if err != nil {
			w.logger.Warn().Err(err).Str("provider", p.Name()).Str("barcode", barcode).
				Msg("lookup provider failed, trying next")
			continue
		}
		if product == nil {
			continue
		}
		w.logger.Debug().Str("provider", p.Name()).Str("barcode", barcode).
			Str("product", product.ProductName).Msg("lookup hit")
		return product
	}
	return nil
}

// padBarcode left-pads a digit string with zeros to the given width. Codes
// already at or beyond the width come back unchanged.
func padBarcode(code string, width int) string {
	if len(code) >= width {
		return code
	}
	return strings.Repeat("0", width-len(code)) + code
}

// sameCode compares two barcodes ignoring leading zeros, so a UPC-A answer
// matches its zero-padded EAN-13 query and vice versa.
func sameCode(a, b string) bool {
	return strings.TrimLeft(a, "0") == strings.TrimLeft(b, "0")
}
