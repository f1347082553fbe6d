package mocks

import (
	"context"

	"github.com/custodia-labs/ragpipe/internal/core/ports/driven"
)

// MockCompletionService is a scripted CompletionService for testing.
type MockCompletionService struct {
	// Answer is returned by every Complete call
	Answer string
	// Err makes Complete fail
	Err error

	// Prompts records every prompt passed to Complete
	Prompts []driven.Prompt
}

// NewMockCompletionService creates a mock returning the given answer.
func NewMockCompletionService(answer string) *MockCompletionService {
	return &MockCompletionService{Answer: answer}
}

func (m *MockCompletionService) Complete(ctx context.Context, prompt driven.Prompt) (string, error) {
	if m.Err != nil {
		return "", m.Err
	}
	m.Prompts = append(m.Prompts, prompt)
	return m.Answer, nil
}

func (m *MockCompletionService) Model() string {
	return "mock-completion-model"
}

func (m *MockCompletionService) Ping(ctx context.Context) error {
	return nil
}

func (m *MockCompletionService) Close() error {
	return nil
}

// MockVisionService is a scripted VisionService for testing.
// Pages are returned in order; when the script runs out it returns "".
type MockVisionService struct {
	Pages []string
	// FailOnPage makes the call for that page index (0-based) fail
	FailOnPage int
	// Err is the error returned when FailOnPage is reached
	Err error

	calls int
}

// NewMockVisionService creates a mock transcribing the given page texts.
func NewMockVisionService(pages ...string) *MockVisionService {
	return &MockVisionService{Pages: pages, FailOnPage: -1}
}

func (m *MockVisionService) Transcribe(ctx context.Context, instruction string, image []byte) (string, error) {
	call := m.calls
	m.calls++
	if m.FailOnPage >= 0 && call == m.FailOnPage {
		return "", m.Err
	}
	if call < len(m.Pages) {
		return m.Pages[call], nil
	}
	return "", nil
}

func (m *MockVisionService) Model() string {
	return "mock-vision-model"
}
