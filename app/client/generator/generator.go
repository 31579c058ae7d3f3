package generator

import (
	"context"
	"net/http"
	"strings"
	"time"

	"babybites/app/config"

	"github.com/samber/do"
	"github.com/samber/oops"
	"github.com/sashabaranov/go-openai"
)

const (
	callTimeout         = 30 * time.Second
	maxCompletionTokens = 1024
)

// Generator produces unstructured candidate text for a structured prompt.
// Everything it returns is untrusted and goes through the rule engine.
type Generator interface {
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

func NewOpenAI(di *do.Injector) (Generator, error) {
	cfg := do.MustInvoke[*config.Config](di)

	clientConfig := openai.DefaultConfig(cfg.OpenAI.Token)
	clientConfig.BaseURL = cfg.OpenAI.BaseURL
	clientConfig.HTTPClient = &http.Client{
		Timeout: callTimeout,
	}

	return &OpenAIGenerator{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.OpenAI.Model,
	}, nil
}

func (g *OpenAIGenerator) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, callTimeout)
	defer cancel()

	resp, err := g.client.CreateChatCompletion(
		ctx,
		openai.ChatCompletionRequest{
			Model: g.model,
			Messages: []openai.ChatCompletionMessage{
				{
					Role:    openai.ChatMessageRoleSystem,
					Content: systemPrompt,
				},
				{
					Role:    openai.ChatMessageRoleUser,
					Content: userPrompt,
				},
			},
			MaxCompletionTokens: maxCompletionTokens,
		},
	)
	if err != nil {
		return "", oops.Code("generation_error").Errorf("failed to create chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", oops.Code("generation_error").Errorf("no chat completion found")
	}

	return StripFences(resp.Choices[0].Message.Content), nil
}

// StripFences removes markdown code fences models like to wrap output in.
func StripFences(s string) string {
	s = strings.TrimSpace(s)
	s = strings.Trim(s, "`")
	s = strings.TrimPrefix(s, "json")

	return strings.TrimSpace(s)
}
