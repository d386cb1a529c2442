package generator

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/pkoukk/tiktoken-go"

	"github.com/tessely/summarizer/internal/domain/summarizer"
	"github.com/tessely/summarizer/internal/infra/llm/chatgpt"
	apperrors "github.com/tessely/summarizer/pkg/errors"
)

const systemPrompt = "You are a professional assistant that summarizes customer support content concisely and clearly. Respond with the summary text only, no preamble."

// maxPromptTokens bounds the sentence payload handed to the model. Sentences
// beyond the budget are the lowest ranked ones, so dropping them is safe.
const maxPromptTokens = 3000

// ChatGPTGenerator paraphrases ranked sentences through an OpenAI-compatible
// chat completion.
type ChatGPTGenerator struct {
	client      *chatgpt.Client
	model       string
	temperature float32
	maxTokens   int
	logger      *slog.Logger

	// The tokenizer loads a BPE table; encInit makes sure concurrent early
	// requests trigger exactly one load. After that the encoding is shared
	// read-only state.
	encInit  sync.Once
	encoding *tiktoken.Tiktoken
}

// NewChatGPTGenerator constructs the generator.
func NewChatGPTGenerator(client *chatgpt.Client, model string, temperature float32, maxTokens int, logger *slog.Logger) *ChatGPTGenerator {
	if logger == nil {
		logger = slog.Default()
	}
	if maxTokens <= 0 {
		maxTokens = 1000
	}
	return &ChatGPTGenerator{
		client:      client,
		model:       strings.TrimSpace(model),
		temperature: temperature,
		maxTokens:   maxTokens,
		logger:      logger.With("component", "generator.chatgpt"),
	}
}

// Generate paraphrases the ranked sentences into a fluent summary. The caller
// owns the deadline; this method only honors ctx.
func (g *ChatGPTGenerator) Generate(ctx context.Context, sentences []string, targetWords int) (string, error) {
	if len(sentences) == 0 {
		return "", apperrors.Wrap(summarizer.CodeGenerationFailed, "no sentences to summarize", nil)
	}

	prompt := g.buildPrompt(sentences, targetWords)
	resp, err := g.client.CreateChatCompletion(ctx, chatgpt.ChatCompletionRequest{
		Model: g.model,
		Messages: []chatgpt.Message{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: prompt},
		},
		Temperature: g.temperature,
		MaxTokens:   g.maxTokens,
	})
	if err != nil {
		return "", apperrors.Wrap(summarizer.CodeGenerationFailed, "chat completion failed", err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.Wrap(summarizer.CodeGenerationFailed, "chat completion returned no choices", nil)
	}
	if usage := resp.TokenUsage(); !usage.IsZero() {
		g.logger.Debug("generation token usage", "prompt", usage.PromptTokens, "completion", usage.CompletionTokens)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

func (g *ChatGPTGenerator) buildPrompt(sentences []string, targetWords int) string {
	var builder strings.Builder
	fmt.Fprintf(&builder, "Rewrite the following key sentences from a customer support thread into one fluent summary of at most %d words:\n\n", targetWords)

	budget := maxPromptTokens
	for _, sentence := range sentences {
		cost := g.countTokens(sentence)
		if cost > budget {
			break
		}
		budget -= cost
		builder.WriteString("- ")
		builder.WriteString(sentence)
		builder.WriteString("\n")
	}
	return builder.String()
}

func (g *ChatGPTGenerator) countTokens(text string) int {
	g.encInit.Do(func() {
		encoding, err := tiktoken.EncodingForModel(g.model)
		if err != nil {
			g.logger.Warn("tokenizer unavailable, using rough token estimate", "model", g.model, "error", err)
			return
		}
		g.encoding = encoding
	})
	if g.encoding != nil {
		return len(g.encoding.Encode(text, nil, nil))
	}
	// Rough upper-biased estimate: one token per two runes, never below the
	// word count.
	runes := len([]rune(text))
	words := len(strings.Fields(text))
	estimate := (runes + 1) / 2
	if estimate < words {
		return words
	}
	return estimate
}

var _ summarizer.Generator = (*ChatGPTGenerator)(nil)
