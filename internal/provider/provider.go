// Package provider abstracts the upstream LLM service. The orchestrators
// hand it a fully-built prompt and get back the raw completion text; all
// interpretation of that text happens in the analysis parser.
package provider

import (
	"context"
	"errors"
)

// ErrUnavailable wraps every transport-level provider failure (network
// error, non-2xx status, empty completion). Handlers map it to 503; it is
// deliberately distinct from unparseable content, which is not an error at
// all.
var ErrUnavailable = errors.New("provider: analysis service unavailable")

// Provider is the interface to the upstream LLM.
type Provider interface {
	Complete(ctx context.Context, prompt string) (string, error)
}
