package aiclient

import "context"

// MockClient returns scripted results in order and records every request
// it receives. When the script runs out, the last result repeats.
type MockClient struct {
	Script   []Result
	Requests []Request
}

// Generate pops the next scripted result.
func (m *MockClient) Generate(_ context.Context, req Request) Result {
	m.Requests = append(m.Requests, req)
	if len(m.Script) == 0 {
		return Result{Status: StatusOK, Text: `{"transactions": []}`}
	}
	idx := len(m.Requests) - 1
	if idx >= len(m.Script) {
		idx = len(m.Script) - 1
	}
	return m.Script[idx]
}

// Calls reports how many requests were made.
func (m *MockClient) Calls() int {
	return len(m.Requests)
}
