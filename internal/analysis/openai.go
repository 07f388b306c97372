package analysis

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/sashabaranov/go-openai"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"codereview/internal/config"
	"codereview/internal/model"
)

// OpenAI reviews code through an OpenAI-compatible chat completion endpoint.
type OpenAI struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAI builds the provider. The HTTP client carries no timeout of its own;
// callers bound each Analyze call through ctx.
func NewOpenAI(cfg config.AnalysisConfig) (*OpenAI, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("openai provider requires OPENAI_API_KEY")
	}
	oc := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}
	oc.HTTPClient = &http.Client{Transport: otelhttp.NewTransport(http.DefaultTransport)}

	m := cfg.Model
	if m == "" {
		m = openai.GPT4oMini
	}
	return &OpenAI{
		client:    openai.NewClientWithConfig(oc),
		model:     m,
		maxTokens: cfg.MaxTokens,
	}, nil
}

func (o *OpenAI) Name() string { return "openai" }

func (o *OpenAI) Analyze(ctx context.Context, contents []string, names []string) (*model.AnalysisResult, error) {
	if err := checkInput(contents, names); err != nil {
		return nil, err
	}

	req := openai.ChatCompletionRequest{
		Model: o.model,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(contents, names)},
		},
	}
	if o.maxTokens > 0 {
		// reasoning models reject max_tokens
		if isReasoningModel(o.model) {
			req.MaxCompletionTokens = o.maxTokens
		} else {
			req.MaxTokens = o.maxTokens
		}
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return nil, errors.New("create chat completion: empty response")
	}
	return ParseResult(resp.Choices[0].Message.Content), nil
}

func isReasoningModel(m string) bool {
	for _, p := range []string{"o1", "o3", "o4", "gpt-5"} {
		if strings.HasPrefix(m, p) {
			return true
		}
	}
	return false
}
