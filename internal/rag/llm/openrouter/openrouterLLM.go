// Package openrouter is the OpenAI-compatible completion provider,
// pointed at OpenRouter by default but usable against any compatible
// endpoint via its base URL.
package openrouter

import (
	"context"
	"fmt"
	"sync"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/ramate-ai/ramate/internal/rag/llm"
	"github.com/ramate-ai/ramate/internal/rag/ragerr"
	"github.com/ramate-ai/ramate/pkg/logger_i"
)

type llmClient struct {
	client          openai.Client
	modelName       string
	temperature     float64
	maxOutputTokens int64
}

var logger *logger_i.Logger
var once sync.Once
var routerClient *llmClient

func GetOpenRouterClient(apikey string, baseURL string, modelName string, temperature float32, maxOutputTokens int32) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_openrouter")
		routerClient = &llmClient{
			client: openai.NewClient(
				option.WithAPIKey(apikey),
				option.WithBaseURL(baseURL),
			),
			modelName:       modelName,
			temperature:     float64(temperature),
			maxOutputTokens: int64(maxOutputTokens),
		}
		logger.Info("OpenRouter client created", "model", modelName, "baseURL", baseURL)
	})

	return routerClient
}

func (c *llmClient) Generate(ctx context.Context, system string, user string) (string, error) {
	completion, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: c.modelName,
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(system),
			openai.UserMessage(user),
		},
		MaxTokens:   openai.Int(c.maxOutputTokens),
		Temperature: openai.Float(c.temperature),
	})
	if err != nil {
		return "", err
	}

	if len(completion.Choices) == 0 || completion.Choices[0].Message.Content == "" {
		return "", fmt.Errorf("%w: empty completion response", ragerr.ErrCompletionUnavailable)
	}
	return completion.Choices[0].Message.Content, nil
}
