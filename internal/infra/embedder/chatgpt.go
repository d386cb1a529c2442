package embedder

import (
	"context"
	"log/slog"
	"strings"

	"github.com/tessely/summarizer/internal/domain/summarizer"
	"github.com/tessely/summarizer/internal/infra/llm/chatgpt"
	apperrors "github.com/tessely/summarizer/pkg/errors"
)

// ChatGPTEmbedder calls an OpenAI-compatible embeddings API.
type ChatGPTEmbedder struct {
	client *chatgpt.Client
	model  string
	logger *slog.Logger
}

// NewChatGPTEmbedder constructs an embedder backed by the shared LLM client.
func NewChatGPTEmbedder(client *chatgpt.Client, model string, logger *slog.Logger) *ChatGPTEmbedder {
	if logger == nil {
		logger = slog.Default()
	}
	return &ChatGPTEmbedder{
		client: client,
		model:  strings.TrimSpace(model),
		logger: logger.With("component", "embedder.chatgpt"),
	}
}

// Embed requests embeddings for the given texts, preserving input order.
// Failures are wrapped as model_unavailable so the orchestrator degrades
// instead of failing the request.
func (e *ChatGPTEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	resp, err := e.client.CreateEmbedding(ctx, chatgpt.EmbeddingRequest{
		Model: e.model,
		Input: texts,
	})
	if err != nil {
		return nil, apperrors.Wrap(summarizer.CodeModelUnavailable, "create embedding", err)
	}
	if len(resp.Data) != len(texts) {
		e.logger.Warn("embedding result count mismatch", "expected", len(texts), "got", len(resp.Data))
		return nil, apperrors.Wrap(summarizer.CodeModelUnavailable, "embedding result count mismatch", nil)
	}
	out := make([][]float32, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(out) {
			return nil, apperrors.Wrap(summarizer.CodeModelUnavailable, "embedding index out of range", nil)
		}
		vector := make([]float32, len(item.Embedding))
		copy(vector, item.Embedding)
		out[item.Index] = vector
	}
	return out, nil
}

var _ summarizer.Embedder = (*ChatGPTEmbedder)(nil)
