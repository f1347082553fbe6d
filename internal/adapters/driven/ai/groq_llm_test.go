package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/custodia-labs/ragpipe/internal/core/ports/driven"
)

func TestNewGroqLLM_RequiresAPIKey(t *testing.T) {
	_, err := NewGroqLLM("", "", "", 0)
	if err == nil {
		t.Error("expected error for empty API key")
	}
}

func TestNewGroqLLM_Defaults(t *testing.T) {
	llm, err := NewGroqLLM("gsk-test", "", "", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if llm.model != "llama-3.1-8b-instant" {
		t.Errorf("expected default model, got %s", llm.model)
	}
	if llm.baseURL != "https://api.groq.com/openai/v1" {
		t.Errorf("expected Groq base URL, got %s", llm.baseURL)
	}
}

func TestGroqLLM_Complete(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}

		var req chatRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if len(req.Messages) != 3 {
			t.Errorf("expected 3 messages, got %d", len(req.Messages))
		}
		if req.Messages[0].Role != "system" {
			t.Errorf("expected system role first, got %s", req.Messages[0].Role)
		}
		if req.Temperature != 0 {
			t.Errorf("expected temperature 0, got %v", req.Temperature)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "Paris."}},
			},
		})
	}))
	defer server.Close()

	llm, err := NewGroqLLM("gsk-test", "", server.URL, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	answer, err := llm.Complete(context.Background(), driven.Prompt{
		{Role: driven.RoleSystem, Content: "You are a helpful assistant."},
		{Role: driven.RoleSystem, Content: "Context:\nParis is the capital of France."},
		{Role: driven.RoleHuman, Content: "What is the capital of France?"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if answer != "Paris." {
		t.Errorf("unexpected answer %q", answer)
	}
}

func TestGroqLLM_Complete_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limit exceeded", "type": "rate_limit"},
		})
	}))
	defer server.Close()

	llm, err := NewGroqLLM("gsk-test", "", server.URL, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = llm.Complete(context.Background(), driven.Prompt{{Role: driven.RoleHuman, Content: "hi"}})
	if err == nil || !strings.Contains(err.Error(), "rate limit exceeded") {
		t.Errorf("expected rate limit error, got %v", err)
	}
}

func TestGroqLLM_Complete_NoChoices(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{"choices": []any{}})
	}))
	defer server.Close()

	llm, err := NewGroqLLM("gsk-test", "", server.URL, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err = llm.Complete(context.Background(), driven.Prompt{{Role: driven.RoleHuman, Content: "hi"}})
	if err == nil {
		t.Error("expected error for empty choices")
	}
}

func TestGroqVision_Transcribe(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string        `json:"role"`
				Content []contentPart `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decoding request: %v", err)
		}
		if req.Model != "meta-llama/llama-4-scout-17b-16e-instruct" {
			t.Errorf("unexpected vision model %s", req.Model)
		}
		parts := req.Messages[0].Content
		if len(parts) != 2 || parts[0].Type != "text" || parts[1].Type != "image_url" {
			t.Errorf("unexpected content parts: %+v", parts)
		}
		if !strings.HasPrefix(parts[1].ImageURL.URL, "data:image/jpeg;base64,") {
			t.Errorf("expected base64 data URL, got %q", parts[1].ImageURL.URL)
		}

		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]string{"content": "Transcribed page text."}},
			},
		})
	}))
	defer server.Close()

	llm, err := NewGroqLLM("gsk-test", "", server.URL, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	vision := NewGroqVision(llm, "")

	text, err := vision.Transcribe(context.Background(), "Transcribe this image.", []byte{0xFF, 0xD8, 0xFF})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if text != "Transcribed page text." {
		t.Errorf("unexpected transcription %q", text)
	}
}

func TestNewCompletionServices_InvalidProvider(t *testing.T) {
	_, _, err := NewCompletionServices(LLMSettings{Provider: "mystery", APIKey: "k"})
	if err == nil {
		t.Error("expected error for unknown provider")
	}
}
