package ai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/custodia-labs/ragpipe/internal/core/ports/driven"
)

// Ensure GroqLLM implements CompletionService
var _ driven.CompletionService = (*GroqLLM)(nil)

// GroqLLM implements CompletionService against Groq's OpenAI-compatible
// chat completions endpoint.
type GroqLLM struct {
	apiKey      string
	model       string
	baseURL     string
	temperature float64
	client      *http.Client
}

// NewGroqLLM creates a new completion service.
func NewGroqLLM(apiKey, model, baseURL string, temperature float64) (*GroqLLM, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Groq API key is required")
	}
	if model == "" {
		model = "llama-3.1-8b-instant"
	}
	if baseURL == "" {
		baseURL = "https://api.groq.com/openai/v1"
	}

	return &GroqLLM{
		apiKey:      apiKey,
		model:       model,
		baseURL:     baseURL,
		temperature: temperature,
		client: &http.Client{
			Timeout: 120 * time.Second,
		},
	}, nil
}

// chatMessage is one message of a chat completion request.
// Content is either a string or, for vision requests, a part list.
type chatMessage struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type contentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type chatRequest struct {
	Messages    []chatMessage `json:"messages"`
	Model       string        `json:"model"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete renders the prompt against the model and returns its text output.
func (g *GroqLLM) Complete(ctx context.Context, prompt driven.Prompt) (string, error) {
	messages := make([]chatMessage, len(prompt))
	for i, m := range prompt {
		messages[i] = chatMessage{Role: string(m.Role), Content: m.Content}
	}
	return g.doChat(ctx, g.model, messages)
}

// Model returns the model name being used
func (g *GroqLLM) Model() string {
	return g.model
}

// Ping verifies the completion service is available
func (g *GroqLLM) Ping(ctx context.Context) error {
	_, err := g.doChat(ctx, g.model, []chatMessage{
		{Role: "user", Content: "ping"},
	})
	return err
}

// Close releases resources held by the completion service
func (g *GroqLLM) Close() error {
	g.client.CloseIdleConnections()
	return nil
}

// GroqVision implements VisionService on the same chat endpoint with a
// vision-capable model.
type GroqVision struct {
	llm   *GroqLLM
	model string
}

// Ensure GroqVision implements VisionService
var _ driven.VisionService = (*GroqVision)(nil)

// NewGroqVision creates a vision transcription service sharing the LLM's
// connection and credentials.
func NewGroqVision(llm *GroqLLM, model string) *GroqVision {
	if model == "" {
		model = "meta-llama/llama-4-scout-17b-16e-instruct"
	}
	return &GroqVision{llm: llm, model: model}
}

// Transcribe sends one page image with a text instruction and returns the
// model's transcription.
func (v *GroqVision) Transcribe(ctx context.Context, instruction string, image []byte) (string, error) {
	dataURL := "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString(image)
	messages := []chatMessage{
		{
			Role: "user",
			Content: []contentPart{
				{Type: "text", Text: instruction},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL}},
			},
		},
	}
	return v.llm.doChat(ctx, v.model, messages)
}

// Model returns the model name being used
func (v *GroqVision) Model() string {
	return v.model
}

func (g *GroqLLM) doChat(ctx context.Context, model string, messages []chatMessage) (string, error) {
	body, err := json.Marshal(chatRequest{
		Messages:    messages,
		Model:       model,
		Temperature: g.temperature,
	})
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+g.apiKey)

	resp, err := g.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}

	var chatResp chatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}

	if chatResp.Error != nil {
		return "", fmt.Errorf("chat API error: %s (type: %s)", chatResp.Error.Message, chatResp.Error.Type)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API returned status %d", resp.StatusCode)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("chat API returned no choices")
	}

	return chatResp.Choices[0].Message.Content, nil
}
