// Package ocr abstracts the external text-extraction service. The rest of
// the system only needs "base64 image in, text out"; how the image was
// captured or resized is the client's problem.
package ocr

import (
	"context"
	"errors"
)

// ErrNoText means the service answered but found no readable text in the
// image. Handlers map it to the retry-with-a-better-photo outcome, distinct
// from transport failures.
var ErrNoText = errors.New("ocr: no text detected")

// Engine extracts text from a base64-encoded image.
type Engine interface {
	ExtractText(ctx context.Context, imageBase64 string) (string, error)
}
