package aiclient

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"fjacquet/statement-extract/internal/logging"
)

// GeminiClient calls the Gemini API.
type GeminiClient struct {
	client *genai.Client
	log    logging.Logger
}

// NewGeminiClient creates a client authenticated with apiKey.
func NewGeminiClient(ctx context.Context, apiKey string, log logging.Logger) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("missing Gemini API key, set GEMINI_API_KEY")
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	return &GeminiClient{client: client, log: log}, nil
}

// Close releases the underlying connection.
func (g *GeminiClient) Close() error {
	return g.client.Close()
}

// Generate sends one request and classifies the outcome. Rate limits
// come back as StatusRateLimited; everything else that fails is fatal
// for this request.
func (g *GeminiClient) Generate(ctx context.Context, req Request) Result {
	model := g.client.GenerativeModel(req.Model)
	model.SetTemperature(0.1)
	if req.MaxOutputTokens > 0 {
		model.SetMaxOutputTokens(req.MaxOutputTokens)
	}

	parts := []genai.Part{genai.Text(req.Prompt)}
	if len(req.Document) > 0 {
		parts = append(parts, genai.Blob{MIMEType: req.MIMEType, Data: req.Document})
	}

	g.log.WithFields(
		logging.Field{Key: logging.FieldModel, Value: req.Model},
		logging.Field{Key: "promptChars", Value: len(req.Prompt)},
		logging.Field{Key: "documentBytes", Value: len(req.Document)},
	).Debug("Calling generative model")

	resp, err := model.GenerateContent(ctx, parts...)
	if err != nil {
		return classifyError(err)
	}

	if len(resp.Candidates) == 0 {
		return Result{Status: StatusFatal, Err: fmt.Errorf("model returned no candidates")}
	}
	cand := resp.Candidates[0]

	var sb strings.Builder
	if cand.Content != nil {
		for _, part := range cand.Content.Parts {
			if text, ok := part.(genai.Text); ok {
				sb.WriteString(string(text))
			}
		}
	}
	text := sb.String()
	if text == "" {
		return Result{Status: StatusFatal, Err: fmt.Errorf("model returned empty response, finish reason %v", cand.FinishReason)}
	}

	truncated := cand.FinishReason == genai.FinishReasonMaxTokens
	if truncated {
		g.log.WithField(logging.FieldModel, req.Model).Warn("Model response truncated at output token limit")
	}
	return Result{Status: StatusOK, Text: text, Truncated: truncated}
}

func classifyError(err error) Result {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.Code == 429:
			return Result{Status: StatusRateLimited, Err: err}
		case apiErr.Code >= 500:
			// Transient server trouble behaves like a rate limit from
			// the caller's perspective.
			return Result{Status: StatusRateLimited, Err: err}
		}
	}
	if strings.Contains(err.Error(), "429") || strings.Contains(strings.ToLower(err.Error()), "quota") {
		return Result{Status: StatusRateLimited, Err: err}
	}
	return Result{Status: StatusFatal, Err: err}
}
