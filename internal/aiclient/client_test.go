package aiclient

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"google.golang.org/api/googleapi"
)

func TestClassifyError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want Status
	}{
		{"rate limit", &googleapi.Error{Code: 429, Message: "quota exceeded"}, StatusRateLimited},
		{"server error", &googleapi.Error{Code: 503, Message: "unavailable"}, StatusRateLimited},
		{"bad request", &googleapi.Error{Code: 400, Message: "invalid"}, StatusFatal},
		{"wrapped rate limit", fmt.Errorf("call failed: %w", &googleapi.Error{Code: 429}), StatusRateLimited},
		{"quota text without typed error", errors.New("resource quota exhausted"), StatusRateLimited},
		{"generic", errors.New("connection refused"), StatusFatal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := classifyError(tt.err)
			assert.Equal(t, tt.want, res.Status)
			assert.Error(t, res.Err)
		})
	}
}

func TestMockClientScript(t *testing.T) {
	m := &MockClient{Script: []Result{
		{Status: StatusRateLimited, Err: errors.New("slow down")},
		{Status: StatusOK, Text: `{"transactions": []}`},
	}}

	r1 := m.Generate(context.Background(), Request{Model: "gemini-1.5-flash"})
	assert.Equal(t, StatusRateLimited, r1.Status)

	r2 := m.Generate(context.Background(), Request{Model: "gemini-1.5-flash"})
	assert.Equal(t, StatusOK, r2.Status)

	// Script exhausted: the last result repeats.
	r3 := m.Generate(context.Background(), Request{})
	assert.Equal(t, StatusOK, r3.Status)

	assert.Equal(t, 3, m.Calls())
}
