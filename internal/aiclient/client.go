// Package aiclient abstracts the generative model behind a small
// interface so extraction logic can be tested without network access.
package aiclient

import "context"

// Status classifies the outcome of a model call. The caller's retry
// decision depends only on this value.
type Status int

const (
	// StatusOK means text was produced, possibly truncated.
	StatusOK Status = iota
	// StatusRateLimited means the call was rejected for quota reasons
	// and is worth retrying after a delay.
	StatusRateLimited
	// StatusFatal means retrying the same call cannot help.
	StatusFatal
)

// Request is one generation call. Document is optional; when present it
// is sent alongside the prompt as an inline blob.
type Request struct {
	Model           string
	Prompt          string
	Document        []byte
	MIMEType        string
	MaxOutputTokens int32
}

// Result carries the model's answer or the reason there is none.
// Truncated is set when the model stopped at the output token limit;
// the text up to that point is still usable after repair.
type Result struct {
	Status    Status
	Text      string
	Truncated bool
	Err       error
}

// ModelClient is implemented by anything able to answer a Request.
type ModelClient interface {
	Generate(ctx context.Context, req Request) Result
}
