package driven

import (
	"context"
)

// PromptRole identifies the author of a prompt message.
type PromptRole string

const (
	RoleSystem PromptRole = "system"
	RoleHuman  PromptRole = "user"
)

// PromptMessage is one message of a structured prompt.
type PromptMessage struct {
	Role    PromptRole
	Content string
}

// Prompt is an ordered sequence of messages sent to the completion model.
type Prompt []PromptMessage

// CompletionService provides single-turn text completion
type CompletionService interface {
	// Complete renders the prompt against the model and returns its text output
	Complete(ctx context.Context, prompt Prompt) (string, error)

	// Model returns the model name being used
	Model() string

	// Ping verifies the completion service is available
	Ping(ctx context.Context) error

	// Close releases resources held by the completion service
	Close() error
}

// VisionService provides vision-capable completion for page transcription
type VisionService interface {
	// Transcribe sends one page image with a text instruction and returns
	// the model's transcription. The image is JPEG-encoded bytes.
	Transcribe(ctx context.Context, instruction string, image []byte) (string, error)

	// Model returns the model name being used
	Model() string
}
