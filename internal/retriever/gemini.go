package retriever

import (
	"context"
	"fmt"

	"github.com/google/generative-ai-go/genai"
)

// DefaultGeminiEmbeddingModel is used when no embedding model is configured.
const DefaultGeminiEmbeddingModel = "text-embedding-004"

// GeminiEmbedder embeds texts with a Gemini embedding model.
type GeminiEmbedder struct {
	docs  *genai.EmbeddingModel
	query *genai.EmbeddingModel
}

// NewGeminiEmbedder uses client for both document and query embeddings.
func NewGeminiEmbedder(client *genai.Client, model string) *GeminiEmbedder {
	if model == "" {
		model = DefaultGeminiEmbeddingModel
	}
	docs := client.EmbeddingModel(model)
	docs.TaskType = genai.TaskTypeRetrievalDocument
	query := client.EmbeddingModel(model)
	query.TaskType = genai.TaskTypeRetrievalQuery
	return &GeminiEmbedder{docs: docs, query: query}
}

// Embed implements Embedder with a single batch request.
func (g *GeminiEmbedder) Embed(ctx context.Context, texts []string, purpose Purpose) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	em := g.docs
	if purpose == PurposeQuery {
		em = g.query
	}

	batch := em.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}
	resp, err := em.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, fmt.Errorf("gemini embed: %w", err)
	}
	if len(resp.Embeddings) != len(texts) {
		return nil, fmt.Errorf("gemini embed: got %d embeddings for %d texts", len(resp.Embeddings), len(texts))
	}

	out := make([][]float32, len(texts))
	for i, e := range resp.Embeddings {
		if e == nil {
			return nil, fmt.Errorf("gemini embed: missing embedding %d", i)
		}
		out[i] = normalize(append([]float32(nil), e.Values...))
	}
	return out, nil
}
