package llm

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	openai "github.com/sashabaranov/go-openai"
)

// Azure answers through an Azure OpenAI chat deployment.
type Azure struct {
	client     *openai.Client
	deployment string
	retry      RetryConfig
}

// NewAzure builds the provider. Missing endpoint or key leaves it
// unconfigured; Ready then reports false and the selector skips it.
func NewAzure(endpoint, apiKey, deployment string) *Azure {
	a := &Azure{deployment: deployment, retry: DefaultRetryConfig()}
	if endpoint == "" || apiKey == "" || deployment == "" {
		return a
	}

	cfg := openai.DefaultAzureConfig(apiKey, endpoint)
	cfg.AzureModelMapperFunc = func(model string) string { return deployment }
	a.client = openai.NewClientWithConfig(cfg)
	return a
}

func (a *Azure) Name() string { return "azure" }

func (a *Azure) Ready() bool { return a.client != nil }

func (a *Azure) Complete(ctx context.Context, req Request) (*Response, error) {
	if a.client == nil {
		return nil, fmt.Errorf("azure openai is not configured")
	}

	messages := []openai.ChatCompletionMessage{}
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: req.System,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: req.Prompt,
	})

	var out *Response
	err := WithRetry(ctx, a.retry, func() error {
		resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:       a.deployment,
			Messages:    messages,
			Temperature: float32(req.Temperature),
			MaxTokens:   req.MaxTokens,
		})
		if err != nil {
			var apiErr *openai.APIError
			if errors.As(err, &apiErr) &&
				(apiErr.HTTPStatusCode == http.StatusTooManyRequests || apiErr.HTTPStatusCode >= 500) {
				return Retryable(fmt.Errorf("calling azure openai: %w", err))
			}
			return fmt.Errorf("calling azure openai: %w", err)
		}
		if len(resp.Choices) == 0 {
			return fmt.Errorf("azure openai returned no choices")
		}
		out = &Response{
			Content:    resp.Choices[0].Message.Content,
			Model:      resp.Model,
			TokensUsed: resp.Usage.TotalTokens,
		}
		return nil
	})
	return out, err
}
