package summarizer

import (
	"context"
	"math"

	apperrors "github.com/tessely/summarizer/pkg/errors"
)

// Embedder exposes the embedding capability as an opaque function. Adapters
// wrap transport failures with CodeModelUnavailable so the orchestrator can
// degrade instead of failing the request.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// docQueryRunes caps the portion of the document embedded as the relevance
// query, keeping the embedding cost bounded on large tickets.
const docQueryRunes = 500

// rerank re-scores the extractive top candidates by semantic similarity to
// the whole document and returns the reranked candidate pool plus the
// document embedding. The final score blends the extractive score with the
// document similarity: blendWeight*extractive + (1-blendWeight)*semantic.
//
// Only the candidate pool (max(topK, topK*multiplier) sentences, capped at
// the sentence count) is embedded, so the expensive call stays bounded.
func rerank(ctx context.Context, embedder Embedder, docText string, sentences []Sentence, topK int, multiplier int, blendWeight float64) ([]Sentence, []float32, error) {
	poolSize := topK * multiplier
	if poolSize < topK {
		poolSize = topK
	}
	if poolSize > len(sentences) {
		poolSize = len(sentences)
	}
	candidates := selectTop(sentences, poolSize)

	texts := make([]string, 0, len(candidates)+1)
	texts = append(texts, truncateRunes(docText, docQueryRunes))
	for _, c := range candidates {
		texts = append(texts, c.Text)
	}

	vectors, err := embedder.Embed(ctx, texts)
	if err != nil {
		return nil, nil, apperrors.Wrap(CodeModelUnavailable, "embedding capability unreachable", err)
	}
	if len(vectors) != len(texts) {
		return nil, nil, apperrors.Wrap(CodeModelUnavailable, "embedding result count mismatch", nil)
	}

	docVector := vectors[0]
	for i := range candidates {
		similarity := cosine32(docVector, vectors[i+1])
		candidates[i].Score = blendWeight*candidates[i].Score + (1-blendWeight)*similarity
	}
	return candidates, docVector, nil
}

func cosine32(a, b []float32) float64 {
	length := len(a)
	if len(b) < length {
		length = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < length; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
