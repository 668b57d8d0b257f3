package brain

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	oai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/openai/openai-go/shared"
)

// OpenAIAdapter implements Adapter using the OpenAI chat completions API.
type OpenAIAdapter struct {
	client oai.Client
	model  string
}

// OpenAIConfig configures the adapter. BaseURL is overridable for tests and
// compatible gateways.
type OpenAIConfig struct {
	APIKey  string
	Model   string
	BaseURL string
	Timeout time.Duration
}

func NewOpenAIAdapter(cfg OpenAIConfig) (*OpenAIAdapter, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	model := strings.TrimSpace(cfg.Model)
	if model == "" {
		model = "gpt-4o-mini"
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	reqOpts := []option.RequestOption{
		option.WithAPIKey(strings.TrimSpace(cfg.APIKey)),
		option.WithHTTPClient(&http.Client{Timeout: timeout}),
	}
	if strings.TrimSpace(cfg.BaseURL) != "" {
		reqOpts = append(reqOpts, option.WithBaseURL(strings.TrimSpace(cfg.BaseURL)))
	}

	return &OpenAIAdapter{
		client: oai.NewClient(reqOpts...),
		model:  model,
	}, nil
}

func (a *OpenAIAdapter) Generate(ctx context.Context, preamble, userText string) (string, error) {
	resp, err := a.client.Chat.Completions.New(ctx, oai.ChatCompletionNewParams{
		Model: shared.ChatModel(a.model),
		Messages: []oai.ChatCompletionMessageParamUnion{
			oai.SystemMessage(preamble),
			oai.UserMessage(userText),
		},
	})
	if err != nil {
		return "", fmt.Errorf("openai: completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("openai: no choices in response")
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
