package gemini

import (
	"context"
	"fmt"
	"sync"

	"github.com/ramate-ai/ramate/internal/rag/llm"
	"github.com/ramate-ai/ramate/internal/rag/ragerr"
	"github.com/ramate-ai/ramate/pkg/logger_i"
	"google.golang.org/genai"
)

type llmClient struct {
	client          *genai.Client
	modelName       string
	temperature     float32
	maxOutputTokens int32
}

var logger *logger_i.Logger
var geminiClient *llmClient
var once sync.Once

func GetGeminiClient(ctx context.Context, apikey string, modelName string, temperature float32, maxOutputTokens int32) llm.Provider {
	once.Do(func() {
		logger = logger_i.NewLogger("llm_gemini")
		newGeminiClient(ctx, apikey, modelName, temperature, maxOutputTokens)
	})

	if geminiClient == nil {
		return nil
	}
	return geminiClient
}

func newGeminiClient(ctx context.Context, apikey string, modelName string, temperature float32, maxOutputTokens int32) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Gemini client:", "error", err)
		return
	}
	geminiClient = &llmClient{
		client:          c,
		modelName:       modelName,
		temperature:     temperature,
		maxOutputTokens: maxOutputTokens,
	}
	logger.Info("Gemini client created", "model", modelName)
	go closeClient(ctx, geminiClient)
}

func (c *llmClient) Generate(ctx context.Context, system string, user string) (string, error) {
	contentConfig := &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{
			Parts: []*genai.Part{{Text: system}},
		},
		Temperature:     genai.Ptr(c.temperature),
		MaxOutputTokens: c.maxOutputTokens,
	}

	result, err := c.client.Models.GenerateContent(ctx, c.modelName, genai.Text(user), contentConfig)
	if err != nil {
		return "", err
	}

	// The SDK surface is loosely typed; anything without a text candidate
	// counts as an unavailable completion, not a panic.
	if result == nil || len(result.Candidates) == 0 {
		return "", fmt.Errorf("%w: empty gemini response", ragerr.ErrCompletionUnavailable)
	}
	text := result.Text()
	if text == "" {
		return "", fmt.Errorf("%w: gemini response had no text part", ragerr.ErrCompletionUnavailable)
	}
	return text, nil
}

func closeClient(ctx context.Context, llm *llmClient) {
	<-ctx.Done()
	logger.Info("Closing Gemini client")
	llm.client = nil
}
