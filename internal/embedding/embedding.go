// Package embedding provides text embedding generation and vector similarity math.
package embedding

import (
	"context"
	"fmt"
	"math"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is the embedding model used for topic vectors
const DefaultModel = "text-embedding-004"

// Embedder generates fixed-length numeric vectors for text
type Embedder interface {
	// Embed returns the embedding vector for the given text
	Embed(ctx context.Context, text string) ([]float32, error)
	// Close releases any resources held by the embedder
	Close() error
}

// GeminiEmbedder implements Embedder using the Gemini embedding API
type GeminiEmbedder struct {
	client *genai.Client
	model  string
}

// NewGeminiEmbedder creates an embedder backed by the Gemini API
func NewGeminiEmbedder(ctx context.Context, apiKey, model string) (*GeminiEmbedder, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create embedding client: %w", err)
	}

	return &GeminiEmbedder{client: client, model: model}, nil
}

// Embed returns the embedding vector for the given text
func (e *GeminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	em := e.client.EmbeddingModel(e.model)
	res, err := em.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, fmt.Errorf("failed to embed content: %w", err)
	}
	if res.Embedding == nil || len(res.Embedding.Values) == 0 {
		return nil, fmt.Errorf("embedding response contained no values")
	}
	return res.Embedding.Values, nil
}

// Close releases resources held by the embedder
func (e *GeminiEmbedder) Close() error {
	if e.client != nil {
		return e.client.Close()
	}
	return nil
}

// CosineSimilarity calculates the cosine similarity between two vectors.
// Returns a value between -1 and 1, where 1 means identical direction.
func CosineSimilarity(a, b []float32) (float64, error) {
	if len(a) != len(b) {
		return 0, fmt.Errorf("vectors must have the same length: %d != %d", len(a), len(b))
	}

	var dot, aMag, bMag float64
	for i := 0; i < len(a); i++ {
		dot += float64(a[i]) * float64(b[i])
		aMag += float64(a[i]) * float64(a[i])
		bMag += float64(b[i]) * float64(b[i])
	}

	if aMag == 0 || bMag == 0 {
		return 0, nil
	}

	return dot / (math.Sqrt(aMag) * math.Sqrt(bMag)), nil
}
