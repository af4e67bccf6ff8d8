package googleEmbedding

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/ramate-ai/ramate/internal/rag/embedding"
	"github.com/ramate-ai/ramate/internal/rag/ragerr"
	"github.com/ramate-ai/ramate/pkg/logger_i"
	"google.golang.org/genai"
)

var logger *logger_i.Logger
var once sync.Once
var embeddingClient *client

type client struct {
	genAi     *genai.Client
	model     string
	dimension int32
	batchSize int
}

// GetGoogleEmbeddingClient returns the process-wide Gemini embedder, or
// nil when the client could not be created. Embeddings are deterministic
// for identical text and model version.
func GetGoogleEmbeddingClient(ctx context.Context, modelName string, apikey string, dimension int32, batchSize int) embedding.Embedder {
	once.Do(func() {
		logger = logger_i.NewLogger("google_embedding")
		newGoogleEmbedder(ctx, modelName, apikey, dimension, batchSize)
	})

	if embeddingClient == nil {
		return nil
	}
	return embeddingClient
}

func newGoogleEmbedder(ctx context.Context, modelName string, apikey string, dimension int32, batchSize int) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apikey})
	if err != nil {
		logger.Error("Error creating Google Embedding client:", "error", err)
		return
	}
	embeddingClient = &client{
		genAi:     c,
		model:     modelName,
		dimension: dimension,
		batchSize: batchSize,
	}
	logger.Info("Google Embedding client created", "model", modelName, "dimension", dimension)
	go closeClient(ctx, embeddingClient)
}

func closeClient(ctx context.Context, embeddingClient *client) {
	<-ctx.Done()
	logger.Info("Closing Google Embedding client")
	embeddingClient.genAi = nil
}

func (c *client) GetEmbedding(ctx context.Context, query string) ([]float32, error) {
	if strings.TrimSpace(query) == "" {
		return nil, ragerr.ErrEmptyText
	}

	result, err := c.genAi.Models.EmbedContent(ctx, c.model, genai.Text(query),
		&genai.EmbedContentConfig{OutputDimensionality: &c.dimension, TaskType: "RETRIEVAL_QUERY"})
	if err != nil {
		logger.Error("Error getting embedding from Google", "error", err.Error())
		return nil, err
	}
	return result.Embeddings[0].Values, nil
}

// BatchEmbedding embeds ingestion chunks in fixed-size batches. A single
// retry is attempted when the API reports rate exhaustion; all other
// failures abort the batch.
func (c *client) BatchEmbedding(ctx context.Context, texts []string) ([][]float32, error) {
	vectors := make([][]float32, 0, len(texts))

	for i := 0; i < len(texts); i += c.batchSize {
		end := i + c.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		res, err := c.doCall(ctx, getContent(texts[i:end]))
		if err != nil {
			if !doRetry(err, logger) {
				return nil, err
			}
			logger.Debug("Retrying batch in 5 seconds", "batch start", i)
			time.Sleep(5 * time.Second)
			res, err = c.doCall(ctx, getContent(texts[i:end]))
			if err != nil {
				logger.Error("Error getting batch embeddings from Google", "error", err.Error())
				return nil, err
			}
		}

		for _, r := range res.Embeddings {
			vectors = append(vectors, r.Values)
		}
	}

	return vectors, nil
}

func (c *client) doCall(ctx context.Context, content []*genai.Content) (*genai.EmbedContentResponse, error) {
	return c.genAi.Models.EmbedContent(ctx, c.model, content,
		&genai.EmbedContentConfig{OutputDimensionality: &c.dimension, TaskType: "RETRIEVAL_DOCUMENT"})
}
