package aisdk

import "context"

// ModelClient is the language-model invocation boundary. Implementations must
// surface rate limiting so that errors.Is(err, ErrThrottled) holds, distinct
// from every other failure.
type ModelClient interface {
	Invoke(ctx context.Context, req *InvokeRequest) (*InvokeResponse, error)
}
