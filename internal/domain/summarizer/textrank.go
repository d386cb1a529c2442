package summarizer

import (
	"math"
	"sort"
)

// rankSentences scores sentences by structural importance using a damped
// power iteration over the sentence similarity graph, then normalizes the
// converged scores into [0, 1]. Scores are written in place.
//
// Edges carry the cosine similarity of term-frequency vectors; self-loops are
// excluded. Iteration stops once the total score change drops below tol or
// after maxIterations, so it never loops unboundedly.
func rankSentences(sentences []Sentence, damping float64, maxIterations int, tol float64) {
	n := len(sentences)
	if n == 0 {
		return
	}
	if n == 1 {
		sentences[0].Score = 1.0
		return
	}

	vectors := make([]map[string]float64, n)
	norms := make([]float64, n)
	for i, s := range sentences {
		vectors[i] = termFrequencies(tokenize(s.Text))
		norms[i] = vectorNorm(vectors[i])
	}

	weights := make([][]float64, n)
	outWeight := make([]float64, n)
	for i := range weights {
		weights[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			sim := cosineTF(vectors[i], norms[i], vectors[j], norms[j])
			weights[i][j] = sim
			weights[j][i] = sim
			outWeight[i] += sim
			outWeight[j] += sim
		}
	}

	scores := make([]float64, n)
	next := make([]float64, n)
	for i := range scores {
		scores[i] = 1.0 / float64(n)
	}

	base := (1.0 - damping) / float64(n)
	for iter := 0; iter < maxIterations; iter++ {
		for i := range next {
			next[i] = base
		}
		for j := 0; j < n; j++ {
			if outWeight[j] == 0 {
				// Disconnected node: its mass spreads uniformly.
				share := damping * scores[j] / float64(n)
				for i := range next {
					next[i] += share
				}
				continue
			}
			for i := 0; i < n; i++ {
				if w := weights[j][i]; w > 0 {
					next[i] += damping * scores[j] * w / outWeight[j]
				}
			}
		}
		var delta float64
		for i := range scores {
			delta += math.Abs(next[i] - scores[i])
			scores[i] = next[i]
		}
		if delta < tol {
			break
		}
	}

	// Max-normalize into [0, 1]. base > 0 guarantees a positive maximum, so
	// the degenerate all-equal case lands on 1.0 for every sentence.
	max := 0.0
	for _, s := range scores {
		if s > max {
			max = s
		}
	}
	for i := range sentences {
		sentences[i].Score = scores[i] / max
	}
}

func termFrequencies(tokens []string) map[string]float64 {
	tf := make(map[string]float64, len(tokens))
	for _, t := range tokens {
		tf[t]++
	}
	return tf
}

func vectorNorm(tf map[string]float64) float64 {
	var sum float64
	for _, v := range tf {
		sum += v * v
	}
	return math.Sqrt(sum)
}

func cosineTF(a map[string]float64, normA float64, b map[string]float64, normB float64) float64 {
	if normA == 0 || normB == 0 {
		return 0
	}
	if len(b) < len(a) {
		a, b = b, a
	}
	var dot float64
	for term, v := range a {
		if w, ok := b[term]; ok {
			dot += v * w
		}
	}
	return dot / (normA * normB)
}

// selectTop returns the top k sentences ordered by descending score, ties
// broken by ascending original index. The input slice is not modified.
func selectTop(sentences []Sentence, k int) []Sentence {
	ranked := append([]Sentence(nil), sentences...)
	sort.Slice(ranked, func(i, j int) bool {
		if ranked[i].Score != ranked[j].Score {
			return ranked[i].Score > ranked[j].Score
		}
		return ranked[i].Index < ranked[j].Index
	})
	if k > len(ranked) {
		k = len(ranked)
	}
	return ranked[:k]
}
