package brain

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestOpenAIAdapterGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Model    string `json:"model"`
			Messages []struct {
				Role    string `json:"role"`
				Content string `json:"content"`
			} `json:"messages"`
		}
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "gpt-4o-mini" {
			t.Errorf("model = %q, want gpt-4o-mini", req.Model)
		}
		if len(req.Messages) != 2 || req.Messages[0].Role != "system" || req.Messages[1].Role != "user" {
			t.Errorf("unexpected messages: %+v", req.Messages)
		}

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{{
				"message": map[string]any{
					"role":    "assistant",
					"content": "  Hello there. ",
				},
				"finish_reason": "stop",
			}},
		})
	}))
	defer srv.Close()

	a, err := NewOpenAIAdapter(OpenAIConfig{APIKey: "k", BaseURL: srv.URL})
	if err != nil {
		t.Fatalf("NewOpenAIAdapter() error = %v", err)
	}

	got, err := a.Generate(context.Background(), Preamble, "hi")
	if err != nil {
		t.Fatalf("Generate() error = %v", err)
	}
	if got != "Hello there." {
		t.Fatalf("Generate() = %q, want trimmed content", got)
	}
}

func TestNewOpenAIAdapterRequiresKey(t *testing.T) {
	if _, err := NewOpenAIAdapter(OpenAIConfig{}); err == nil {
		t.Fatalf("NewOpenAIAdapter() accepted empty API key")
	}
}
